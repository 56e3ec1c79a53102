package service

import (
	"fmt"
	"sort"

	"github.com/brawlhub/elo-ladder/internal/domain"
	"github.com/google/uuid"
)

// RatedPlayer is one balancing input: a participant with their
// pre-match rating.
type RatedPlayer struct {
	PlayerID uuid.UUID
	Rating   int
}

// SplitBySnake partitions exactly six players into two sides. Players
// are sorted by rating ascending and dealt alternately (ranks 1, 3, 5
// to blue, ranks 2, 4, 6 to red), which keeps the side averages close
// and puts the two strongest players on opposite sides.
//
// Receiving anything but six players is an upstream bug, not a
// user-facing condition.
func SplitBySnake(players []RatedPlayer) (blue, red []uuid.UUID) {
	if len(players) != domain.MatchSize {
		panic(fmt.Sprintf("balancer: expected %d players, got %d", domain.MatchSize, len(players)))
	}

	sorted := make([]RatedPlayer, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rating < sorted[j].Rating
	})

	for i, p := range sorted {
		if i%2 == 0 {
			blue = append(blue, p.PlayerID)
		} else {
			red = append(red, p.PlayerID)
		}
	}
	return blue, red
}

// SplitTeams maps two pre-formed trio teams onto the two sides
// unchanged. Team composition is a player commitment, not a
// matchmaking decision.
func SplitTeams(teamA, teamB *domain.Team) (blue, red []uuid.UUID) {
	if teamA == nil || teamB == nil {
		panic("balancer: expected two teams")
	}
	return teamA.MemberIDs(), teamB.MemberIDs()
}

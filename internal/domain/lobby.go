package domain

import (
	"time"

	"github.com/google/uuid"
)

// Lobby is an open queue for one mode: the set of entrants waiting for
// a match. Lobbies live in memory inside the queue service (they are
// discarded when the match forms, never persisted) and are reached only
// through the queue service's operations.
type Lobby struct {
	ID        uuid.UUID   `json:"id"`
	Mode      Mode        `json:"mode"`
	RoomCode  string      `json:"roomCode"`
	CreatedBy uuid.UUID   `json:"createdBy"`
	CreatedAt time.Time   `json:"createdAt"`
	Players   []uuid.UUID `json:"players"`           // solo/chaos entrants
	TeamIDs   []uuid.UUID `json:"teamIds,omitempty"` // trio entrants
}

// NewLobby creates an empty lobby for a mode.
func NewLobby(mode Mode, roomCode string, createdBy uuid.UUID) *Lobby {
	return &Lobby{
		ID:        uuid.New(),
		Mode:      mode,
		RoomCode:  roomCode,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}
}

// IsFull reports whether the lobby has enough entrants to form a match.
func (l *Lobby) IsFull() bool {
	if l.Mode.UsesFixedTeams() {
		return len(l.TeamIDs) >= 2
	}
	return len(l.Players) >= MatchSize
}

// EntrantCount returns the number of queued entrants: players in
// solo/chaos, teams in trio.
func (l *Lobby) EntrantCount() int {
	if l.Mode.UsesFixedTeams() {
		return len(l.TeamIDs)
	}
	return len(l.Players)
}

// HasPlayer reports whether the player already joined this lobby.
func (l *Lobby) HasPlayer(playerID uuid.UUID) bool {
	for _, id := range l.Players {
		if id == playerID {
			return true
		}
	}
	return false
}

// HasTeam reports whether the team already joined this lobby.
func (l *Lobby) HasTeam(teamID uuid.UUID) bool {
	for _, id := range l.TeamIDs {
		if id == teamID {
			return true
		}
	}
	return false
}

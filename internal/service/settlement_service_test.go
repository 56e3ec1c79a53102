package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brawlhub/elo-ladder/internal/domain"
	"github.com/brawlhub/elo-ladder/internal/service"
)

func TestSettlementService_EvenMatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	players := env.newPlayers(t, 6)
	blue, red := players[:3], players[3:]
	match := env.newPendingMatch(t, domain.ModeSolo, blue, red)

	event, err := env.settlement.Settle(ctx, service.SettleInput{
		Match:      match,
		WinnerSide: domain.SideBlue,
		Reason:     "majority",
	})
	require.NoError(t, err)

	// Six fresh players at 1000: every winner gains 15, every loser
	// drops 15.
	for _, id := range blue {
		pr := env.ratingOf(t, id, domain.ModeSolo)
		assert.Equal(t, 1015, pr.Rating)
		assert.Equal(t, 1, pr.Wins)
		assert.Equal(t, 0, pr.Losses)
	}
	for _, id := range red {
		pr := env.ratingOf(t, id, domain.ModeSolo)
		assert.Equal(t, 985, pr.Rating)
		assert.Equal(t, 0, pr.Wins)
		assert.Equal(t, 1, pr.Losses)
	}

	assert.Equal(t, domain.MatchStatusSettled, match.Status)
	require.NotNil(t, match.SettledAt)

	require.Len(t, event.Winners, 3)
	require.Len(t, event.Losers, 3)
	assert.Equal(t, 15, event.Winners[0].Delta)
	assert.Equal(t, -15, event.Losers[0].Delta)

	entry, err := env.repos.MatchHistory.MostRecent(ctx, domain.ModeSolo)
	require.NoError(t, err)
	result := entry.Data.Data()
	assert.Equal(t, match.ID, result.MatchID)
	assert.Equal(t, domain.SideBlue, result.WinnerSide)
	assert.Equal(t, []int{15, 15, 15}, result.WinnerDeltas)
	assert.Equal(t, []int{-15, -15, -15}, result.LoserDeltas)
}

func TestSettlementService_UnevenSides(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	players := env.newPlayers(t, 6)
	blue, red := players[:3], players[3:]
	for _, id := range blue {
		env.setRating(t, id, domain.ModeSolo, 1400)
	}
	match := env.newPendingMatch(t, domain.ModeSolo, blue, red)

	event, err := env.settlement.Settle(ctx, service.SettleInput{
		Match:      match,
		WinnerSide: domain.SideBlue,
		Reason:     "majority",
	})
	require.NoError(t, err)

	// Heavy favorites gain little for winning.
	for _, d := range event.Winners {
		assert.Equal(t, 3, d.Delta)
		assert.Equal(t, 1403, d.NewRating)
	}
	for _, d := range event.Losers {
		assert.Equal(t, -3, d.Delta)
		assert.Equal(t, 997, d.NewRating)
	}
}

func TestSettlementService_DodgeScaling(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	players := env.newPlayers(t, 6)
	blue, red := players[:3], players[3:]
	dodger := red[0]
	match := env.newPendingMatch(t, domain.ModeSolo, blue, red)

	event, err := env.settlement.Settle(ctx, service.SettleInput{
		Match:      match,
		WinnerSide: domain.SideBlue,
		Reason:     "confirmed dodge",
		DodgerID:   &dodger,
	})
	require.NoError(t, err)

	// Winners keep 80% of their credit, truncated.
	for _, d := range event.Winners {
		assert.Equal(t, 12, d.Delta)
	}
	// The dodger eats the full loss plus the penalty, teammates are
	// shielded to 30%.
	for _, d := range event.Losers {
		if d.PlayerID == dodger {
			assert.Equal(t, -30, d.Delta)
			assert.Equal(t, 970, d.NewRating)
		} else {
			assert.Equal(t, -4, d.Delta)
			assert.Equal(t, 996, d.NewRating)
		}
	}
	assert.Equal(t, 15, event.DodgePenalty)

	count, err := env.repos.Dodge.CountFor(ctx, dodger, domain.ModeSolo)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSettlementService_DodgePenaltyDoubles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	players := env.newPlayers(t, 6)
	dodger := players[3]

	// Two prior confirmed dodges already on the ledger.
	require.NoError(t, env.repos.Dodge.Record(ctx, dodger, domain.ModeSolo))
	require.NoError(t, env.repos.Dodge.Record(ctx, dodger, domain.ModeSolo))

	match := env.newPendingMatch(t, domain.ModeSolo, players[:3], players[3:])
	event, err := env.settlement.Settle(ctx, service.SettleInput{
		Match:      match,
		WinnerSide: domain.SideBlue,
		Reason:     "confirmed dodge",
		DodgerID:   &dodger,
	})
	require.NoError(t, err)
	assert.Equal(t, 60, event.DodgePenalty)
}

func TestSettlementService_RatingFloor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	players := env.newPlayers(t, 6)
	blue, red := players[:3], players[3:]
	dodger := red[0]
	env.setRating(t, dodger, domain.ModeSolo, 10)

	match := env.newPendingMatch(t, domain.ModeSolo, blue, red)
	event, err := env.settlement.Settle(ctx, service.SettleInput{
		Match:      match,
		WinnerSide: domain.SideBlue,
		Reason:     "confirmed dodge",
		DodgerID:   &dodger,
	})
	require.NoError(t, err)

	for _, d := range event.Losers {
		if d.PlayerID == dodger {
			assert.Equal(t, 0, d.NewRating)
		}
	}
	assert.Equal(t, 0, env.ratingOf(t, dodger, domain.ModeSolo).Rating)
}

func TestSettlementService_Cancel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	players := env.newPlayers(t, 6)
	match := env.newPendingMatch(t, domain.ModeChaos, players[:3], players[3:])

	require.NoError(t, env.settlement.Cancel(ctx, match))
	assert.Equal(t, domain.MatchStatusCancelled, match.Status)

	// No ratings moved, no history written.
	for _, id := range players {
		assert.Equal(t, domain.DefaultRating, env.ratingOf(t, id, domain.ModeChaos).Rating)
	}
	_, err := env.repos.MatchHistory.MostRecent(ctx, domain.ModeChaos)
	assert.Error(t, err)
}

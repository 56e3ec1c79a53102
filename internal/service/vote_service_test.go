package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brawlhub/elo-ladder/internal/domain"
	"github.com/brawlhub/elo-ladder/internal/service"
)

func TestVoteService_MajoritySettles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	players := env.newPlayers(t, 6)
	match := env.newPendingMatch(t, domain.ModeSolo, players[:3], players[3:])

	// Three votes are not enough.
	for _, id := range players[:3] {
		require.NoError(t, env.votes.CastVote(ctx, match.ID, id, domain.VoteBlueWin))
	}
	_, ok := env.notifier.LastSettled()
	assert.False(t, ok)

	// The fourth vote reaches the majority and settles immediately.
	require.NoError(t, env.votes.CastVote(ctx, match.ID, players[3], domain.VoteBlueWin))

	event, ok := env.notifier.LastSettled()
	require.True(t, ok)
	assert.Equal(t, match.ID, event.MatchID)
	assert.Equal(t, domain.SideBlue, event.WinnerSide)
	assert.Equal(t, "majority", event.Reason)

	// Stragglers are rejected, not blocked.
	err := env.votes.CastVote(ctx, match.ID, players[4], domain.VoteRedWin)
	assert.ErrorIs(t, err, domain.ErrMatchSettled)
}

func TestVoteService_VoteOverwrite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	players := env.newPlayers(t, 6)
	match := env.newPendingMatch(t, domain.ModeSolo, players[:3], players[3:])

	voter := players[0]
	require.NoError(t, env.votes.CastVote(ctx, match.ID, voter, domain.VoteBlueWin))
	require.NoError(t, env.votes.CastVote(ctx, match.ID, voter, domain.VoteRedWin))

	status, err := env.votes.Status(match.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, status.BlueVotes)
	assert.Equal(t, 1, status.RedVotes)
	assert.Equal(t, 1, status.VotesCast)
}

func TestVoteService_TieHangsPending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	players := env.newPlayers(t, 6)
	match := env.newPendingMatch(t, domain.ModeSolo, players[:3], players[3:])

	for _, id := range players[:3] {
		require.NoError(t, env.votes.CastVote(ctx, match.ID, id, domain.VoteBlueWin))
	}
	for _, id := range players[3:] {
		require.NoError(t, env.votes.CastVote(ctx, match.ID, id, domain.VoteRedWin))
	}

	// All six voted 3-3: nothing settles and no rating moves.
	_, ok := env.notifier.LastSettled()
	assert.False(t, ok)
	stored, err := env.repos.Match.GetByID(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchStatusPending, stored.Status)
	for _, id := range players {
		assert.Equal(t, domain.DefaultRating, env.ratingOf(t, id, domain.ModeSolo).Rating)
	}

	// A changed mind breaks the tie.
	require.NoError(t, env.votes.CastVote(ctx, match.ID, players[5], domain.VoteBlueWin))
	event, ok := env.notifier.LastSettled()
	require.True(t, ok)
	assert.Equal(t, domain.SideBlue, event.WinnerSide)
	assert.Equal(t, "majority", event.Reason)
}

func TestVoteService_NonParticipantRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	players := env.newPlayers(t, 7)
	match := env.newPendingMatch(t, domain.ModeSolo, players[:3], players[3:6])

	err := env.votes.CastVote(ctx, match.ID, players[6], domain.VoteBlueWin)
	assert.ErrorIs(t, err, domain.ErrNotParticipant)
}

func TestVoteService_CancelOnlyInChaos(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	players := env.newPlayers(t, 6)
	solo := env.newPendingMatch(t, domain.ModeSolo, players[:3], players[3:])
	err := env.votes.CastVote(ctx, solo.ID, players[0], domain.VoteCancel)
	assert.ErrorIs(t, err, domain.ErrCancelNotAllowed)

	chaosPlayers := env.newPlayers(t, 6)
	chaos := env.newPendingMatch(t, domain.ModeChaos, chaosPlayers[:3], chaosPlayers[3:])
	for _, id := range chaosPlayers[:4] {
		require.NoError(t, env.votes.CastVote(ctx, chaos.ID, id, domain.VoteCancel))
	}

	require.Len(t, env.notifier.Cancelled, 1)
	stored, err := env.repos.Match.GetByID(ctx, chaos.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchStatusCancelled, stored.Status)
	for _, id := range chaosPlayers {
		assert.Equal(t, domain.DefaultRating, env.ratingOf(t, id, domain.ModeChaos).Rating)
	}
}

func TestVoteService_UnknownMatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	players := env.newPlayers(t, 1)
	err := env.votes.CastVote(ctx, uuid.New(), players[0], domain.VoteBlueWin)
	assert.ErrorIs(t, err, domain.ErrMatchNotFound)
}

func TestVoteService_DodgeQuorum(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	players := env.newPlayers(t, 6)
	blue, red := players[:3], players[3:]
	accused := red[0]
	match := env.newPendingMatch(t, domain.ModeSolo, blue, red)

	require.NoError(t, env.votes.ReportDodge(ctx, match.ID, blue[0], accused))
	require.NoError(t, env.votes.ReportDodge(ctx, match.ID, blue[1], accused))
	_, ok := env.notifier.LastSettled()
	assert.False(t, ok)

	// The third distinct accuser confirms the dodge: the accused's side
	// loses regardless of votes.
	require.NoError(t, env.votes.ReportDodge(ctx, match.ID, red[1], accused))

	event, ok := env.notifier.LastSettled()
	require.True(t, ok)
	assert.Equal(t, domain.SideBlue, event.WinnerSide)
	assert.Equal(t, "confirmed dodge", event.Reason)
	require.NotNil(t, event.DodgerID)
	assert.Equal(t, accused, *event.DodgerID)

	count, err := env.repos.Dodge.CountFor(ctx, accused, domain.ModeSolo)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestVoteService_DodgeAccusationRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	players := env.newPlayers(t, 7)
	match := env.newPendingMatch(t, domain.ModeSolo, players[:3], players[3:6])

	err := env.votes.ReportDodge(ctx, match.ID, players[0], players[0])
	assert.ErrorIs(t, err, domain.ErrSelfAccusation)

	err = env.votes.ReportDodge(ctx, match.ID, players[6], players[0])
	assert.ErrorIs(t, err, domain.ErrNotParticipant)

	err = env.votes.ReportDodge(ctx, match.ID, players[0], players[6])
	assert.ErrorIs(t, err, domain.ErrNotParticipant)

	// An accuser has one outstanding accusation: renaming moves it.
	require.NoError(t, env.votes.ReportDodge(ctx, match.ID, players[0], players[3]))
	require.NoError(t, env.votes.ReportDodge(ctx, match.ID, players[0], players[4]))
	require.NoError(t, env.votes.ReportDodge(ctx, match.ID, players[1], players[3]))
	require.NoError(t, env.votes.ReportDodge(ctx, match.ID, players[2], players[3]))
	_, ok := env.notifier.LastSettled()
	assert.False(t, ok, "two votes on the original target must not confirm")

	require.NoError(t, env.votes.ReportDodge(ctx, match.ID, players[4], players[3]))
	_, ok = env.notifier.LastSettled()
	assert.True(t, ok)
}

func TestVoteService_RetriesSettlementAfterStorageFailure(t *testing.T) {
	env, flaky := newFlakyEnv(t)
	ctx := context.Background()

	players := env.newPlayers(t, 6)
	match := env.newPendingMatch(t, domain.ModeSolo, players[:3], players[3:])

	for _, id := range players[:3] {
		require.NoError(t, env.votes.CastVote(ctx, match.ID, id, domain.VoteBlueWin))
	}

	// The qualifying fourth vote hits a store failure. The match must
	// stay pending, in memory and in the store, so voting can retry.
	flaky.FailUpdates = 1
	err := env.votes.CastVote(ctx, match.ID, players[3], domain.VoteBlueWin)
	require.ErrorIs(t, err, service.ErrStorageFailure)

	stored, err := env.repos.Match.GetByID(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchStatusPending, stored.Status)
	assert.False(t, match.IsTerminal())
	_, ok := env.notifier.LastSettled()
	assert.False(t, ok)

	// Re-casting the same vote retries settlement and succeeds.
	require.NoError(t, env.votes.CastVote(ctx, match.ID, players[3], domain.VoteBlueWin))

	stored, err = env.repos.Match.GetByID(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchStatusSettled, stored.Status)
	assert.Len(t, env.notifier.Settled, 1)

	// The dropped session now reports the match as settled.
	err = env.votes.CastVote(ctx, match.ID, players[4], domain.VoteBlueWin)
	assert.ErrorIs(t, err, domain.ErrMatchSettled)
}

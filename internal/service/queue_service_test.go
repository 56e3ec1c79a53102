package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brawlhub/elo-ladder/internal/config"
	"github.com/brawlhub/elo-ladder/internal/domain"
	"github.com/brawlhub/elo-ladder/internal/service"
	"github.com/brawlhub/elo-ladder/internal/testutil"
)

func TestQueueService_CreateAndFill(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	players := env.newPlayers(t, 6)
	lobby, err := env.queue.CreateLobby(ctx, domain.ModeSolo, players[0], "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", lobby.RoomCode)

	var last *service.JoinResult
	for _, id := range players[1:] {
		last, err = env.queue.Join(ctx, domain.ModeSolo, lobby.ID, id)
		require.NoError(t, err)
	}

	// The sixth join forms the match and dequeues the lobby.
	require.NotNil(t, last.MatchFormed)
	assert.Empty(t, env.queue.ListLobbies(domain.ModeSolo))

	match := last.MatchFormed
	blue, red, err := match.Sides()
	require.NoError(t, err)
	assert.Len(t, blue, domain.TeamSize)
	assert.Len(t, red, domain.TeamSize)
	assert.Equal(t, domain.MatchStatusPending, match.Status)

	// The vote session opened with the match.
	status, err := env.votes.Status(match.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, status.VotesCast)

	require.Len(t, env.notifier.Formed, 1)
	formed := env.notifier.Formed[0]
	assert.Equal(t, match.ID, formed.MatchID)
	assert.Len(t, formed.Blue, domain.TeamSize)
	assert.Len(t, formed.Red, domain.TeamSize)
}

func TestQueueService_AlreadyQueued(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	players := env.newPlayers(t, 2)
	lobby, err := env.queue.CreateLobby(ctx, domain.ModeSolo, players[0], "")
	require.NoError(t, err)

	_, err = env.queue.Join(ctx, domain.ModeSolo, lobby.ID, players[0])
	assert.ErrorIs(t, err, domain.ErrAlreadyQueued)

	// Queued in one lobby blocks joining another in the same mode.
	second, err := env.queue.CreateLobby(ctx, domain.ModeSolo, players[1], "")
	require.NoError(t, err)
	_, err = env.queue.Join(ctx, domain.ModeSolo, second.ID, players[0])
	assert.ErrorIs(t, err, domain.ErrAlreadyQueued)
}

func TestQueueService_LeaveAndRejoin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	players := env.newPlayers(t, 2)
	lobby, err := env.queue.CreateLobby(ctx, domain.ModeSolo, players[0], "")
	require.NoError(t, err)

	require.NoError(t, env.queue.Leave(ctx, domain.ModeSolo, lobby.ID, players[0]))
	err = env.queue.Leave(ctx, domain.ModeSolo, lobby.ID, players[0])
	assert.ErrorIs(t, err, domain.ErrNotQueued)

	result, err := env.queue.Join(ctx, domain.ModeSolo, lobby.ID, players[0])
	require.NoError(t, err)
	assert.Equal(t, 1, result.Entrants)
}

func TestQueueService_LobbyLimit(t *testing.T) {
	repos := testutil.NewFakeRepositories()
	notifier := testutil.NewRecorderNotifier()
	log := zerolog.Nop()
	limits := map[domain.Mode]config.ModeLimits{
		domain.ModeSolo: {MaxOpenLobbies: 1, CreationCooldown: time.Hour},
	}
	queue := service.NewQueueService(repos, limits, nil, notifier, log)
	env := &testEnv{repos: repos}
	players := env.newPlayers(t, 2)
	ctx := context.Background()

	_, err := queue.CreateLobby(ctx, domain.ModeSolo, players[0], "")
	require.NoError(t, err)

	_, err = queue.CreateLobby(ctx, domain.ModeSolo, players[1], "")
	assert.ErrorIs(t, err, domain.ErrLobbyLimit)
}

func TestQueueService_Cooldown(t *testing.T) {
	repos := testutil.NewFakeRepositories()
	notifier := testutil.NewRecorderNotifier()
	log := zerolog.Nop()
	limits := map[domain.Mode]config.ModeLimits{
		domain.ModeSolo: {MaxOpenLobbies: 5, CreationCooldown: time.Hour},
	}
	queue := service.NewQueueService(repos, limits, nil, notifier, log)
	env := &testEnv{repos: repos}
	players := env.newPlayers(t, 2)
	ctx := context.Background()

	_, err := queue.CreateLobby(ctx, domain.ModeSolo, players[0], "")
	require.NoError(t, err)

	_, err = queue.CreateLobby(ctx, domain.ModeSolo, players[1], "")
	assert.ErrorIs(t, err, domain.ErrLobbyCooldown)
}

func TestQueueService_TrioRequiresTeam(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	players := env.newPlayers(t, 1)
	_, err := env.queue.CreateLobby(ctx, domain.ModeTrio, players[0], "")
	assert.ErrorIs(t, err, domain.ErrTeamRequired)
}

func TestQueueService_TrioMatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	players := env.newPlayers(t, 6)
	teamA := &domain.Team{ID: uuid.New(), Name: "Alpha", CaptainID: players[0], Player2ID: players[1], Player3ID: players[2]}
	teamB := &domain.Team{ID: uuid.New(), Name: "Bravo", CaptainID: players[3], Player2ID: players[4], Player3ID: players[5]}
	require.NoError(t, env.repos.Team.Create(ctx, teamA))
	require.NoError(t, env.repos.Team.Create(ctx, teamB))

	lobby, err := env.queue.CreateLobby(ctx, domain.ModeTrio, players[0], "")
	require.NoError(t, err)

	// A teammate of an already queued team cannot re-enter.
	_, err = env.queue.Join(ctx, domain.ModeTrio, lobby.ID, players[1])
	assert.ErrorIs(t, err, domain.ErrAlreadyQueued)

	result, err := env.queue.Join(ctx, domain.ModeTrio, lobby.ID, players[3])
	require.NoError(t, err)
	require.NotNil(t, result.MatchFormed)

	// Fixed teams stay intact as sides.
	blue, red, err := result.MatchFormed.Sides()
	require.NoError(t, err)
	assert.ElementsMatch(t, teamA.MemberIDs(), blue)
	assert.ElementsMatch(t, teamB.MemberIDs(), red)
}

func TestQueueService_SnakeBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	players := env.newPlayers(t, 6)
	ratings := []int{1500, 1400, 1300, 1200, 1100, 1000}
	for i, id := range players {
		env.setRating(t, id, domain.ModeSolo, ratings[i])
	}

	lobby, err := env.queue.CreateLobby(ctx, domain.ModeSolo, players[0], "")
	require.NoError(t, err)
	var last *service.JoinResult
	for _, id := range players[1:] {
		last, err = env.queue.Join(ctx, domain.ModeSolo, lobby.ID, id)
		require.NoError(t, err)
	}
	require.NotNil(t, last.MatchFormed)

	blue, red, err := last.MatchFormed.Sides()
	require.NoError(t, err)

	byID := make(map[string]int, len(players))
	for i, id := range players {
		byID[id.String()] = ratings[i]
	}
	blueSum, redSum := 0, 0
	for _, id := range blue {
		blueSum += byID[id.String()]
	}
	for _, id := range red {
		redSum += byID[id.String()]
	}

	// Alternating deal over 1000..1500 in 100 steps: 3600 vs 3900.
	assert.Equal(t, 3600, blueSum)
	assert.Equal(t, 3900, redSum)
}

func TestQueueService_RejoinRetriesFormation(t *testing.T) {
	env, flaky := newFlakyEnv(t)
	ctx := context.Background()

	players := env.newPlayers(t, 7)
	lobby, err := env.queue.CreateLobby(ctx, domain.ModeSolo, players[0], "")
	require.NoError(t, err)
	for _, id := range players[1:5] {
		_, err = env.queue.Join(ctx, domain.ModeSolo, lobby.ID, id)
		require.NoError(t, err)
	}

	// The filling join cannot persist the match; the lobby is requeued
	// with all six entrants instead of being lost.
	flaky.FailCreates = 1
	_, err = env.queue.Join(ctx, domain.ModeSolo, lobby.ID, players[5])
	require.ErrorIs(t, err, service.ErrStorageFailure)

	lobbies := env.queue.ListLobbies(domain.ModeSolo)
	require.Len(t, lobbies, 1)
	assert.Len(t, lobbies[0].Players, 6)

	// An outsider still bounces off the full lobby.
	_, err = env.queue.Join(ctx, domain.ModeSolo, lobby.ID, players[6])
	assert.ErrorIs(t, err, domain.ErrLobbyFull)

	// A re-join by one of the stranded entrants retries formation.
	result, err := env.queue.Join(ctx, domain.ModeSolo, lobby.ID, players[5])
	require.NoError(t, err)
	require.NotNil(t, result.MatchFormed)
	assert.Empty(t, env.queue.ListLobbies(domain.ModeSolo))
}

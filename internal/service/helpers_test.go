package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/brawlhub/elo-ladder/internal/config"
	"github.com/brawlhub/elo-ladder/internal/domain"
	"github.com/brawlhub/elo-ladder/internal/rating"
	"github.com/brawlhub/elo-ladder/internal/repository"
	"github.com/brawlhub/elo-ladder/internal/service"
	"github.com/brawlhub/elo-ladder/internal/testutil"
)

// testEnv wires the service graph over in-memory repositories.
type testEnv struct {
	repos      *repository.Repositories
	notifier   *testutil.RecorderNotifier
	settlement *service.SettlementService
	votes      *service.VoteService
	queue      *service.QueueService
	undo       *service.UndoService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repos := testutil.NewFakeRepositories()
	notifier := testutil.NewRecorderNotifier()
	log := zerolog.Nop()

	settlement := service.NewSettlementService(repos, rating.PenaltyPolicy{Base: 15, Cap: 120}, log)
	votes := service.NewVoteService(repos.Match, settlement, notifier, log)

	// No cooldown so tests can open lobbies back to back.
	limits := map[domain.Mode]config.ModeLimits{
		domain.ModeSolo:  {MaxOpenLobbies: 3, CreationCooldown: 0},
		domain.ModeTrio:  {MaxOpenLobbies: 2, CreationCooldown: 0},
		domain.ModeChaos: {MaxOpenLobbies: 3, CreationCooldown: 0},
	}
	queue := service.NewQueueService(repos, limits, votes, notifier, log)
	undo := service.NewUndoService(repos, notifier, log)

	return &testEnv{
		repos:      repos,
		notifier:   notifier,
		settlement: settlement,
		votes:      votes,
		queue:      queue,
		undo:       undo,
	}
}

// newFlakyEnv wires the same graph with the match repository wrapped so
// tests can inject store write failures.
func newFlakyEnv(t *testing.T) (*testEnv, *testutil.FlakyMatchRepo) {
	t.Helper()

	repos := testutil.NewFakeRepositories()
	flaky := &testutil.FlakyMatchRepo{MatchRepository: repos.Match, Err: assert.AnError}
	repos.Match = flaky

	notifier := testutil.NewRecorderNotifier()
	log := zerolog.Nop()

	settlement := service.NewSettlementService(repos, rating.PenaltyPolicy{Base: 15, Cap: 120}, log)
	votes := service.NewVoteService(repos.Match, settlement, notifier, log)
	limits := map[domain.Mode]config.ModeLimits{
		domain.ModeSolo:  {MaxOpenLobbies: 3, CreationCooldown: 0},
		domain.ModeTrio:  {MaxOpenLobbies: 2, CreationCooldown: 0},
		domain.ModeChaos: {MaxOpenLobbies: 3, CreationCooldown: 0},
	}
	queue := service.NewQueueService(repos, limits, votes, notifier, log)
	undo := service.NewUndoService(repos, notifier, log)

	return &testEnv{
		repos:      repos,
		notifier:   notifier,
		settlement: settlement,
		votes:      votes,
		queue:      queue,
		undo:       undo,
	}, flaky
}

// newPlayers registers n players with sequential display names.
func (env *testEnv) newPlayers(t *testing.T, n int) []uuid.UUID {
	t.Helper()
	ctx := context.Background()
	ids := make([]uuid.UUID, n)
	for i := range ids {
		player := &domain.Player{
			ID:          uuid.New(),
			DisplayName: "player_" + uuid.New().String()[:8],
			CreatedAt:   time.Now(),
		}
		if err := env.repos.Player.Create(ctx, player); err != nil {
			t.Fatalf("failed to create player: %v", err)
		}
		ids[i] = player.ID
	}
	return ids
}

// setRating forces a player's rating for a mode.
func (env *testEnv) setRating(t *testing.T, playerID uuid.UUID, mode domain.Mode, value int) {
	t.Helper()
	ctx := context.Background()
	if _, err := env.repos.Rating.GetOrCreate(ctx, playerID, mode); err != nil {
		t.Fatalf("failed to create rating: %v", err)
	}
	// Apply bumps the win counter; the zero-delta revert undoes it.
	if err := env.repos.Rating.Apply(ctx, playerID, mode, value, true); err != nil {
		t.Fatalf("failed to set rating: %v", err)
	}
	if err := env.repos.Rating.Revert(ctx, playerID, mode, 0, true); err != nil {
		t.Fatalf("failed to reset counter: %v", err)
	}
}

// newPendingMatch creates and registers a pending match with the given
// sides.
func (env *testEnv) newPendingMatch(t *testing.T, mode domain.Mode, blue, red []uuid.UUID) *domain.Match {
	t.Helper()
	ctx := context.Background()
	match := domain.NewMatch(mode, "TEST", blue, red)
	if err := env.repos.Match.Create(ctx, match); err != nil {
		t.Fatalf("failed to create match: %v", err)
	}
	if err := env.votes.Register(match); err != nil {
		t.Fatalf("failed to register vote session: %v", err)
	}
	return match
}

func (env *testEnv) ratingOf(t *testing.T, playerID uuid.UUID, mode domain.Mode) *domain.PlayerRating {
	t.Helper()
	pr, err := env.repos.Rating.GetOrCreate(context.Background(), playerID, mode)
	if err != nil {
		t.Fatalf("failed to load rating: %v", err)
	}
	return pr
}

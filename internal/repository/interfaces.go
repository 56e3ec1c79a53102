package repository

import (
	"context"

	"github.com/brawlhub/elo-ladder/internal/domain"
	"github.com/google/uuid"
)

type PlayerRepository interface {
	Create(ctx context.Context, player *domain.Player) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Player, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Player, error)
	GetByDisplayName(ctx context.Context, displayName string) (*domain.Player, error)
	Update(ctx context.Context, player *domain.Player) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	GetByPlayerID(ctx context.Context, playerID uuid.UUID) (*domain.UserSession, error)
	DeleteByPlayerID(ctx context.Context, playerID uuid.UUID) error
}

type RatingRepository interface {
	// GetOrCreate auto-registers unseen players at the default rating.
	GetOrCreate(ctx context.Context, playerID uuid.UUID, mode domain.Mode) (*domain.PlayerRating, error)
	GetByPlayerIDs(ctx context.Context, playerIDs []uuid.UUID, mode domain.Mode) (map[uuid.UUID]*domain.PlayerRating, error)
	// Apply writes a new rating and bumps the win or loss counter.
	Apply(ctx context.Context, playerID uuid.UUID, mode domain.Mode, newRating int, won bool) error
	// Revert subtracts a stored delta and decrements the counter,
	// flooring both at zero.
	Revert(ctx context.Context, playerID uuid.UUID, mode domain.Mode, delta int, won bool) error
	Leaderboard(ctx context.Context, mode domain.Mode, limit int) ([]*domain.PlayerRating, error)
	// RankOf returns the 1-based leaderboard position for a player.
	RankOf(ctx context.Context, playerID uuid.UUID, mode domain.Mode) (int, error)
}

type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Team, error)
	GetByPlayerID(ctx context.Context, playerID uuid.UUID) (*domain.Team, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type MatchRepository interface {
	Create(ctx context.Context, match *domain.Match) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Match, error)
	Update(ctx context.Context, match *domain.Match) error
}

type MatchHistoryRepository interface {
	Append(ctx context.Context, entry *domain.MatchHistory) error
	MostRecent(ctx context.Context, mode domain.Mode) (*domain.MatchHistory, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type DodgeRepository interface {
	Record(ctx context.Context, playerID uuid.UUID, mode domain.Mode) error
	CountFor(ctx context.Context, playerID uuid.UUID, mode domain.Mode) (int, error)
	DeleteMostRecent(ctx context.Context, playerID uuid.UUID, mode domain.Mode) error
}

// Transactor runs a function against a transactional view of every
// repository. Settlement and undo use it so their multi-row writes are
// a single logical unit.
type Transactor interface {
	InTx(ctx context.Context, fn func(repos *Repositories) error) error
}

type Repositories struct {
	Player       PlayerRepository
	Session      SessionRepository
	Rating       RatingRepository
	Team         TeamRepository
	Match        MatchRepository
	MatchHistory MatchHistoryRepository
	Dodge        DodgeRepository
	Tx           Transactor
}

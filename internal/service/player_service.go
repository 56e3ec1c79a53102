package service

import (
	"context"
	"errors"

	"github.com/brawlhub/elo-ladder/internal/domain"
	"github.com/brawlhub/elo-ladder/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlayerService serves the read side: per-mode stats, rank and the
// leaderboard.
type PlayerService struct {
	playerRepo      repository.PlayerRepository
	ratingRepo      repository.RatingRepository
	dodgeRepo       repository.DodgeRepository
	leaderboardSize int
}

func NewPlayerService(repos *repository.Repositories, leaderboardSize int) *PlayerService {
	return &PlayerService{
		playerRepo:      repos.Player,
		ratingRepo:      repos.Rating,
		dodgeRepo:       repos.Dodge,
		leaderboardSize: leaderboardSize,
	}
}

// PlayerStats is one player's standing in one mode.
type PlayerStats struct {
	Player     *domain.Player
	Rating     *domain.PlayerRating
	Rank       int
	DodgeCount int
}

// GetStats returns a player's rating, rank and dodge count for a mode,
// auto-registering them at the default rating on first contact.
func (s *PlayerService) GetStats(ctx context.Context, playerID uuid.UUID, mode domain.Mode) (*PlayerStats, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, err
	}

	pr, err := s.ratingRepo.GetOrCreate(ctx, playerID, mode)
	if err != nil {
		return nil, err
	}

	rank, err := s.ratingRepo.RankOf(ctx, playerID, mode)
	if err != nil {
		return nil, err
	}

	dodges, err := s.dodgeRepo.CountFor(ctx, playerID, mode)
	if err != nil {
		return nil, err
	}

	return &PlayerStats{
		Player:     player,
		Rating:     pr,
		Rank:       rank,
		DodgeCount: dodges,
	}, nil
}

// Leaderboard returns the top players for a mode by rating.
func (s *PlayerService) Leaderboard(ctx context.Context, mode domain.Mode) ([]*domain.PlayerRating, error) {
	return s.ratingRepo.Leaderboard(ctx, mode, s.leaderboardSize)
}

package postgres

import (
	"context"
	"errors"

	"github.com/brawlhub/elo-ladder/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) *ratingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) GetOrCreate(ctx context.Context, playerID uuid.UUID, mode domain.Mode) (*domain.PlayerRating, error) {
	var pr domain.PlayerRating
	err := r.db.WithContext(ctx).
		Where("player_id = ? AND mode = ?", playerID, mode).
		First(&pr).Error
	if err == nil {
		return &pr, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pr = domain.PlayerRating{
		ID:       uuid.New(),
		PlayerID: playerID,
		Mode:     mode,
		Rating:   domain.DefaultRating,
	}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&pr).Error
	if err != nil {
		return nil, err
	}
	// Re-read in case a concurrent insert won the conflict.
	err = r.db.WithContext(ctx).
		Where("player_id = ? AND mode = ?", playerID, mode).
		First(&pr).Error
	if err != nil {
		return nil, err
	}
	return &pr, nil
}

func (r *ratingRepository) GetByPlayerIDs(ctx context.Context, playerIDs []uuid.UUID, mode domain.Mode) (map[uuid.UUID]*domain.PlayerRating, error) {
	var rows []*domain.PlayerRating
	err := r.db.WithContext(ctx).
		Where("player_id IN ? AND mode = ?", playerIDs, mode).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	byPlayer := make(map[uuid.UUID]*domain.PlayerRating, len(rows))
	for _, row := range rows {
		byPlayer[row.PlayerID] = row
	}
	return byPlayer, nil
}

func (r *ratingRepository) Apply(ctx context.Context, playerID uuid.UUID, mode domain.Mode, newRating int, won bool) error {
	counter := "losses"
	if won {
		counter = "wins"
	}
	return r.db.WithContext(ctx).
		Model(&domain.PlayerRating{}).
		Where("player_id = ? AND mode = ?", playerID, mode).
		Updates(map[string]interface{}{
			"rating": newRating,
			counter:  gorm.Expr(counter + " + 1"),
		}).Error
}

func (r *ratingRepository) Revert(ctx context.Context, playerID uuid.UUID, mode domain.Mode, delta int, won bool) error {
	counter := "losses"
	if won {
		counter = "wins"
	}
	return r.db.WithContext(ctx).
		Model(&domain.PlayerRating{}).
		Where("player_id = ? AND mode = ?", playerID, mode).
		Updates(map[string]interface{}{
			"rating": gorm.Expr("GREATEST(rating - ?, 0)", delta),
			counter:  gorm.Expr("GREATEST(" + counter + " - 1, 0)"),
		}).Error
}

func (r *ratingRepository) Leaderboard(ctx context.Context, mode domain.Mode, limit int) ([]*domain.PlayerRating, error) {
	var rows []*domain.PlayerRating
	err := r.db.WithContext(ctx).
		Preload("Player").
		Where("mode = ?", mode).
		Order("rating DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ratingRepository) RankOf(ctx context.Context, playerID uuid.UUID, mode domain.Mode) (int, error) {
	var pr domain.PlayerRating
	err := r.db.WithContext(ctx).
		Where("player_id = ? AND mode = ?", playerID, mode).
		First(&pr).Error
	if err != nil {
		return 0, err
	}

	var better int64
	err = r.db.WithContext(ctx).
		Model(&domain.PlayerRating{}).
		Where("mode = ? AND rating > ?", mode, pr.Rating).
		Count(&better).Error
	if err != nil {
		return 0, err
	}
	return int(better) + 1, nil
}

package postgres

import (
	"context"
	"errors"

	"github.com/brawlhub/elo-ladder/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type dodgeRepository struct {
	db *gorm.DB
}

func NewDodgeRepository(db *gorm.DB) *dodgeRepository {
	return &dodgeRepository{db: db}
}

func (r *dodgeRepository) Record(ctx context.Context, playerID uuid.UUID, mode domain.Mode) error {
	entry := &domain.DodgeEntry{
		ID:       uuid.New(),
		PlayerID: playerID,
		Mode:     mode,
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *dodgeRepository) CountFor(ctx context.Context, playerID uuid.UUID, mode domain.Mode) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.DodgeEntry{}).
		Where("player_id = ? AND mode = ?", playerID, mode).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *dodgeRepository) DeleteMostRecent(ctx context.Context, playerID uuid.UUID, mode domain.Mode) error {
	var entry domain.DodgeEntry
	err := r.db.WithContext(ctx).
		Where("player_id = ? AND mode = ?", playerID, mode).
		Order("created_at DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&entry).Error
}

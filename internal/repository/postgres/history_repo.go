package postgres

import (
	"context"

	"github.com/brawlhub/elo-ladder/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type matchHistoryRepository struct {
	db *gorm.DB
}

func NewMatchHistoryRepository(db *gorm.DB) *matchHistoryRepository {
	return &matchHistoryRepository{db: db}
}

func (r *matchHistoryRepository) Append(ctx context.Context, entry *domain.MatchHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *matchHistoryRepository) MostRecent(ctx context.Context, mode domain.Mode) (*domain.MatchHistory, error) {
	var entry domain.MatchHistory
	err := r.db.WithContext(ctx).
		Where("mode = ?", mode).
		Order("created_at DESC").
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *matchHistoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.MatchHistory{}, "id = ?", id).Error
}

package postgres

import (
	"context"

	"github.com/brawlhub/elo-ladder/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type matchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *matchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) Create(ctx context.Context, match *domain.Match) error {
	return r.db.WithContext(ctx).Create(match).Error
}

func (r *matchRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Match, error) {
	var match domain.Match
	err := r.db.WithContext(ctx).First(&match, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (r *matchRepository) Update(ctx context.Context, match *domain.Match) error {
	return r.db.WithContext(ctx).Save(match).Error
}

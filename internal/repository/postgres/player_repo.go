package postgres

import (
	"context"

	"github.com/brawlhub/elo-ladder/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type playerRepository struct {
	db *gorm.DB
}

func NewPlayerRepository(db *gorm.DB) *playerRepository {
	return &playerRepository{db: db}
}

func (r *playerRepository) Create(ctx context.Context, player *domain.Player) error {
	return r.db.WithContext(ctx).Create(player).Error
}

func (r *playerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Player, error) {
	var player domain.Player
	err := r.db.WithContext(ctx).First(&player, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &player, nil
}

func (r *playerRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Player, error) {
	var players []*domain.Player
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&players).Error
	if err != nil {
		return nil, err
	}
	return players, nil
}

func (r *playerRepository) GetByDisplayName(ctx context.Context, displayName string) (*domain.Player, error) {
	var player domain.Player
	err := r.db.WithContext(ctx).First(&player, "display_name = ?", displayName).Error
	if err != nil {
		return nil, err
	}
	return &player, nil
}

func (r *playerRepository) Update(ctx context.Context, player *domain.Player) error {
	return r.db.WithContext(ctx).Save(player).Error
}

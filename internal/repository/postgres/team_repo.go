package postgres

import (
	"context"

	"github.com/brawlhub/elo-ladder/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type teamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) *teamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) Create(ctx context.Context, team *domain.Team) error {
	return r.db.WithContext(ctx).Create(team).Error
}

func (r *teamRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Team, error) {
	var team domain.Team
	err := r.db.WithContext(ctx).Preload("Captain").First(&team, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) GetByPlayerID(ctx context.Context, playerID uuid.UUID) (*domain.Team, error) {
	var team domain.Team
	err := r.db.WithContext(ctx).
		Where("captain_id = ? OR player2_id = ? OR player3_id = ?", playerID, playerID, playerID).
		First(&team).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Team{}, "id = ?", id).Error
}

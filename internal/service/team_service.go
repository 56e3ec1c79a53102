package service

import (
	"context"
	"errors"
	"time"

	"github.com/brawlhub/elo-ladder/internal/domain"
	"github.com/brawlhub/elo-ladder/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TeamService manages the fixed trio rosters.
type TeamService struct {
	teamRepo   repository.TeamRepository
	playerRepo repository.PlayerRepository
}

func NewTeamService(teamRepo repository.TeamRepository, playerRepo repository.PlayerRepository) *TeamService {
	return &TeamService{
		teamRepo:   teamRepo,
		playerRepo: playerRepo,
	}
}

type CreateTeamInput struct {
	Name      string
	CaptainID uuid.UUID
	Player2ID uuid.UUID
	Player3ID uuid.UUID
}

// CreateTeam registers a fixed team of three distinct players, none of
// whom may already belong to one. The creator becomes captain.
func (s *TeamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*domain.Team, error) {
	if len(input.Name) == 0 || len(input.Name) > domain.MaxTeamNameLength {
		return nil, domain.ErrTeamNameTooLong
	}
	if input.CaptainID == input.Player2ID ||
		input.CaptainID == input.Player3ID ||
		input.Player2ID == input.Player3ID {
		return nil, domain.ErrDuplicateMembers
	}

	members := []uuid.UUID{input.CaptainID, input.Player2ID, input.Player3ID}
	for _, id := range members {
		if _, err := s.playerRepo.GetByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrPlayerNotFound
			}
			return nil, err
		}
		_, err := s.teamRepo.GetByPlayerID(ctx, id)
		if err == nil {
			return nil, domain.ErrAlreadyInTeam
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	team := &domain.Team{
		ID:        uuid.New(),
		Name:      input.Name,
		CaptainID: input.CaptainID,
		Player2ID: input.Player2ID,
		Player3ID: input.Player3ID,
		CreatedAt: time.Now(),
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

// GetTeamOf returns the team a player belongs to.
func (s *TeamService) GetTeamOf(ctx context.Context, playerID uuid.UUID) (*domain.Team, error) {
	team, err := s.teamRepo.GetByPlayerID(ctx, playerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNoTeam
		}
		return nil, err
	}
	return team, nil
}

// DissolveTeam deletes a team. Captain only; irreversible. History rows
// keep the member ids.
func (s *TeamService) DissolveTeam(ctx context.Context, teamID, requesterID uuid.UUID) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrTeamNotFound
		}
		return err
	}
	if team.CaptainID != requesterID {
		return domain.ErrNotTeamCaptain
	}
	return s.teamRepo.Delete(ctx, teamID)
}

package service

import (
	"github.com/brawlhub/elo-ladder/internal/config"
	"github.com/brawlhub/elo-ladder/internal/domain"
	"github.com/brawlhub/elo-ladder/internal/rating"
	"github.com/brawlhub/elo-ladder/internal/repository"
	"github.com/rs/zerolog"
)

type Services struct {
	Auth       *AuthService
	Player     *PlayerService
	Team       *TeamService
	Queue      *QueueService
	Vote       *VoteService
	Settlement *SettlementService
	Undo       *UndoService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, notifier domain.Notifier, log zerolog.Logger) *Services {
	penalty := rating.PenaltyPolicy{
		Base: cfg.DodgePenaltyBase,
		Cap:  cfg.DodgePenaltyCap,
	}

	settlement := NewSettlementService(repos, penalty, log)
	vote := NewVoteService(repos.Match, settlement, notifier, log)
	queue := NewQueueService(repos, cfg.Limits, vote, notifier, log)

	return &Services{
		Auth:       NewAuthService(repos.Player, repos.Session, cfg),
		Player:     NewPlayerService(repos, cfg.LeaderboardSize),
		Team:       NewTeamService(repos.Team, repos.Player),
		Queue:      queue,
		Vote:       vote,
		Settlement: settlement,
		Undo:       NewUndoService(repos, notifier, log),
	}
}

package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/brawlhub/elo-ladder/internal/config"
	"github.com/brawlhub/elo-ladder/internal/domain"
	"github.com/brawlhub/elo-ladder/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// modeQueue owns one mode's open lobbies. Every join/leave/formation
// decision happens under its lock, so the dequeue-on-full transition is
// exactly-once; store I/O and notifications never run under it.
type modeQueue struct {
	mu           sync.Mutex
	lobbies      map[uuid.UUID]*domain.Lobby
	lastCreation time.Time
}

// QueueService admits entrants per mode and forms a match the moment a
// lobby fills.
type QueueService struct {
	queues      map[domain.Mode]*modeQueue
	limits      map[domain.Mode]config.ModeLimits
	playerRepo  repository.PlayerRepository
	ratingRepo  repository.RatingRepository
	teamRepo    repository.TeamRepository
	matchRepo   repository.MatchRepository
	voteService *VoteService
	notifier    domain.Notifier
	log         zerolog.Logger
}

func NewQueueService(
	repos *repository.Repositories,
	limits map[domain.Mode]config.ModeLimits,
	voteService *VoteService,
	notifier domain.Notifier,
	log zerolog.Logger,
) *QueueService {
	queues := make(map[domain.Mode]*modeQueue, len(domain.AllModes))
	for _, mode := range domain.AllModes {
		queues[mode] = &modeQueue{lobbies: make(map[uuid.UUID]*domain.Lobby)}
	}
	return &QueueService{
		queues:      queues,
		limits:      limits,
		playerRepo:  repos.Player,
		ratingRepo:  repos.Rating,
		teamRepo:    repos.Team,
		matchRepo:   repos.Match,
		voteService: voteService,
		notifier:    notifier,
		log:         log.With().Str("component", "queue").Logger(),
	}
}

// CreateLobby opens a new lobby and joins the creator to it. Per-mode
// concurrency limits and the creation cooldown apply.
func (s *QueueService) CreateLobby(ctx context.Context, mode domain.Mode, creatorID uuid.UUID, roomCode string) (*domain.Lobby, error) {
	roomCode = strings.ToUpper(strings.TrimSpace(roomCode))
	if roomCode == "" {
		roomCode = generateRoomCode()
	}

	q := s.queues[mode]
	limits := s.limits[mode]

	q.mu.Lock()
	if len(q.lobbies) >= limits.MaxOpenLobbies {
		q.mu.Unlock()
		return nil, domain.ErrLobbyLimit
	}
	if !q.lastCreation.IsZero() && time.Since(q.lastCreation) < limits.CreationCooldown {
		q.mu.Unlock()
		return nil, domain.ErrLobbyCooldown
	}
	lobby := domain.NewLobby(mode, roomCode, creatorID)
	q.lobbies[lobby.ID] = lobby
	q.lastCreation = time.Now()
	q.mu.Unlock()

	s.log.Info().
		Str("mode", string(mode)).
		Str("lobby_id", lobby.ID.String()).
		Str("room_code", roomCode).
		Msg("lobby created")

	if _, err := s.Join(ctx, mode, lobby.ID, creatorID); err != nil {
		return nil, err
	}
	return lobby, nil
}

// JoinResult reports a successful admission, with the entrant's current
// rating for display.
type JoinResult struct {
	Lobby    *domain.Lobby
	Rating   int
	Entrants int
	// MatchFormed is set when this join filled the lobby.
	MatchFormed *domain.Match
}

// Join admits a player (or, in trio mode, the player's whole team) to a
// lobby. Filling the lobby atomically dequeues it and forms the match.
func (s *QueueService) Join(ctx context.Context, mode domain.Mode, lobbyID, playerID uuid.UUID) (*JoinResult, error) {
	// Auto-register on first contact and fetch the display rating
	// before taking the queue lock.
	pr, err := s.ratingRepo.GetOrCreate(ctx, playerID, mode)
	if err != nil {
		return nil, errors.Join(ErrStorageFailure, err)
	}

	var team *domain.Team
	if mode.UsesFixedTeams() {
		team, err = s.teamRepo.GetByPlayerID(ctx, playerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrTeamRequired
			}
			return nil, errors.Join(ErrStorageFailure, err)
		}
	}

	q := s.queues[mode]
	q.mu.Lock()
	lobby, ok := q.lobbies[lobbyID]
	if !ok {
		q.mu.Unlock()
		return nil, domain.ErrLobbyNotFound
	}

	// An open lobby that is already full means an earlier formation
	// attempt failed after the dequeue; a re-join by any of its
	// entrants retries formation instead of losing the lobby.
	alreadyHere := lobby.HasPlayer(playerID)
	if mode.UsesFixedTeams() {
		alreadyHere = lobby.HasTeam(team.ID)
	}
	if alreadyHere {
		if !lobby.IsFull() {
			q.mu.Unlock()
			return nil, domain.ErrAlreadyQueued
		}
		delete(q.lobbies, lobbyID)
		q.mu.Unlock()
		result := &JoinResult{Lobby: lobby, Rating: pr.Rating, Entrants: lobby.EntrantCount()}
		return s.finishFormation(ctx, q, lobby, result)
	}

	if mode.UsesFixedTeams() {
		for _, l := range q.lobbies {
			if l.HasTeam(team.ID) {
				q.mu.Unlock()
				return nil, domain.ErrAlreadyQueued
			}
		}
		if lobby.IsFull() {
			q.mu.Unlock()
			return nil, domain.ErrLobbyFull
		}
		lobby.TeamIDs = append(lobby.TeamIDs, team.ID)
	} else {
		for _, l := range q.lobbies {
			if l.HasPlayer(playerID) {
				q.mu.Unlock()
				return nil, domain.ErrAlreadyQueued
			}
		}
		if lobby.IsFull() {
			q.mu.Unlock()
			return nil, domain.ErrLobbyFull
		}
		lobby.Players = append(lobby.Players, playerID)
	}

	entrants := lobby.EntrantCount()
	full := lobby.IsFull()
	if full {
		// Atomic dequeue: once removed, no concurrent join or leave
		// can see this lobby again.
		delete(q.lobbies, lobbyID)
	}
	q.mu.Unlock()

	result := &JoinResult{Lobby: lobby, Rating: pr.Rating, Entrants: entrants}
	if !full {
		return result, nil
	}
	return s.finishFormation(ctx, q, lobby, result)
}

// finishFormation forms the match for a dequeued full lobby. On failure
// the lobby is requeued intact so a re-join can retry formation.
func (s *QueueService) finishFormation(ctx context.Context, q *modeQueue, lobby *domain.Lobby, result *JoinResult) (*JoinResult, error) {
	match, err := s.formMatch(ctx, lobby)
	if err != nil {
		q.mu.Lock()
		q.lobbies[lobby.ID] = lobby
		q.mu.Unlock()
		return nil, err
	}
	result.MatchFormed = match
	return result, nil
}

// Leave removes an entrant from a lobby before a match forms.
func (s *QueueService) Leave(ctx context.Context, mode domain.Mode, lobbyID, playerID uuid.UUID) error {
	var teamID uuid.UUID
	if mode.UsesFixedTeams() {
		team, err := s.teamRepo.GetByPlayerID(ctx, playerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrTeamRequired
			}
			return errors.Join(ErrStorageFailure, err)
		}
		teamID = team.ID
	}

	q := s.queues[mode]
	q.mu.Lock()
	defer q.mu.Unlock()

	lobby, ok := q.lobbies[lobbyID]
	if !ok {
		return domain.ErrLobbyNotFound
	}

	if mode.UsesFixedTeams() {
		for i, id := range lobby.TeamIDs {
			if id == teamID {
				lobby.TeamIDs = append(lobby.TeamIDs[:i], lobby.TeamIDs[i+1:]...)
				return nil
			}
		}
	} else {
		for i, id := range lobby.Players {
			if id == playerID {
				lobby.Players = append(lobby.Players[:i], lobby.Players[i+1:]...)
				return nil
			}
		}
	}
	return domain.ErrNotQueued
}

// ListLobbies snapshots the open lobbies for a mode.
func (s *QueueService) ListLobbies(mode domain.Mode) []*domain.Lobby {
	q := s.queues[mode]
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]*domain.Lobby, 0, len(q.lobbies))
	for _, lobby := range q.lobbies {
		copied := *lobby
		out = append(out, &copied)
	}
	return out
}

// formMatch balances a full lobby into two sides, persists the pending
// match, opens its vote session, and announces it.
func (s *QueueService) formMatch(ctx context.Context, lobby *domain.Lobby) (*domain.Match, error) {
	var blue, red []uuid.UUID

	if lobby.Mode.UsesFixedTeams() {
		teamA, err := s.teamRepo.GetByID(ctx, lobby.TeamIDs[0])
		if err != nil {
			return nil, errors.Join(ErrStorageFailure, err)
		}
		teamB, err := s.teamRepo.GetByID(ctx, lobby.TeamIDs[1])
		if err != nil {
			return nil, errors.Join(ErrStorageFailure, err)
		}
		blue, red = SplitTeams(teamA, teamB)
		// Teams may contain players with no rating row yet.
		for _, id := range append(teamA.MemberIDs(), teamB.MemberIDs()...) {
			if _, err := s.ratingRepo.GetOrCreate(ctx, id, lobby.Mode); err != nil {
				return nil, errors.Join(ErrStorageFailure, err)
			}
		}
	} else {
		rated := make([]RatedPlayer, 0, len(lobby.Players))
		for _, id := range lobby.Players {
			pr, err := s.ratingRepo.GetOrCreate(ctx, id, lobby.Mode)
			if err != nil {
				return nil, errors.Join(ErrStorageFailure, err)
			}
			rated = append(rated, RatedPlayer{PlayerID: id, Rating: pr.Rating})
		}
		blue, red = SplitBySnake(rated)
	}

	match := domain.NewMatch(lobby.Mode, lobby.RoomCode, blue, red)
	if err := s.matchRepo.Create(ctx, match); err != nil {
		return nil, errors.Join(ErrStorageFailure, err)
	}

	if err := s.voteService.Register(match); err != nil {
		return nil, err
	}

	event, err := s.buildFormedEvent(ctx, match)
	if err != nil {
		s.log.Warn().Err(err).
			Str("match_id", match.ID.String()).
			Msg("match formed but event enrichment failed")
	} else {
		s.notifier.MatchFormed(*event)
	}

	s.log.Info().
		Str("match_id", match.ID.String()).
		Str("mode", string(lobby.Mode)).
		Str("room_code", lobby.RoomCode).
		Msg("match formed")
	return match, nil
}

func (s *QueueService) buildFormedEvent(ctx context.Context, match *domain.Match) (*domain.MatchFormedEvent, error) {
	blue, red, err := match.Sides()
	if err != nil {
		return nil, err
	}

	sidePlayers := func(ids []uuid.UUID) ([]domain.SidePlayer, error) {
		players, err := s.playerRepo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		names := make(map[uuid.UUID]string, len(players))
		for _, p := range players {
			names[p.ID] = p.DisplayName
		}
		ratings, err := s.ratingRepo.GetByPlayerIDs(ctx, ids, match.Mode)
		if err != nil {
			return nil, err
		}
		out := make([]domain.SidePlayer, len(ids))
		for i, id := range ids {
			sp := domain.SidePlayer{PlayerID: id, DisplayName: names[id], Rating: domain.DefaultRating}
			if pr, ok := ratings[id]; ok {
				sp.Rating = pr.Rating
			}
			out[i] = sp
		}
		return out, nil
	}

	blueSide, err := sidePlayers(blue)
	if err != nil {
		return nil, err
	}
	redSide, err := sidePlayers(red)
	if err != nil {
		return nil, err
	}

	return &domain.MatchFormedEvent{
		MatchID:  match.ID,
		Mode:     match.Mode,
		RoomCode: match.RoomCode,
		Blue:     blueSide,
		Red:      redSide,
		Cosmetic: NewCosmeticGenerator(match.Mode)(),
	}, nil
}

// generateRoomCode makes a short invite code when the creator did not
// supply one.
func generateRoomCode() string {
	bytes := make([]byte, 4)
	if _, err := rand.Read(bytes); err != nil {
		return "LOBBY"
	}
	return strings.ToUpper(hex.EncodeToString(bytes))
}

package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brawlhub/elo-ladder/internal/domain"
	"github.com/brawlhub/elo-ladder/internal/repository"
)

// NewFakeRepositories builds a fully in-memory repository set for
// service tests that do not need a real database.
func NewFakeRepositories() *repository.Repositories {
	store := &memStore{
		players:  make(map[uuid.UUID]*domain.Player),
		sessions: make(map[uuid.UUID]*domain.UserSession),
		ratings:  make(map[ratingKey]*domain.PlayerRating),
		teams:    make(map[uuid.UUID]*domain.Team),
		matches:  make(map[uuid.UUID]*domain.Match),
	}
	repos := &repository.Repositories{
		Player:       &fakePlayerRepo{store: store},
		Session:      &fakeSessionRepo{store: store},
		Rating:       &fakeRatingRepo{store: store},
		Team:         &fakeTeamRepo{store: store},
		Match:        &fakeMatchRepo{store: store},
		MatchHistory: &fakeHistoryRepo{store: store},
		Dodge:        &fakeDodgeRepo{store: store},
	}
	repos.Tx = &fakeTransactor{repos: repos}
	return repos
}

type ratingKey struct {
	playerID uuid.UUID
	mode     domain.Mode
}

type memStore struct {
	mu       sync.Mutex
	players  map[uuid.UUID]*domain.Player
	sessions map[uuid.UUID]*domain.UserSession
	ratings  map[ratingKey]*domain.PlayerRating
	teams    map[uuid.UUID]*domain.Team
	matches  map[uuid.UUID]*domain.Match
	history  []*domain.MatchHistory
	dodges   []*domain.DodgeEntry
}

// fakeTransactor applies the function directly. Rollback fidelity is
// not simulated; tests that need it use the postgres transactor.
type fakeTransactor struct {
	repos *repository.Repositories
}

func (t *fakeTransactor) InTx(ctx context.Context, fn func(repos *repository.Repositories) error) error {
	return fn(t.repos)
}

type fakePlayerRepo struct{ store *memStore }

func (r *fakePlayerRepo) Create(ctx context.Context, player *domain.Player) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *player
	r.store.players[player.ID] = &cp
	return nil
}

func (r *fakePlayerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Player, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	player, ok := r.store.players[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *player
	return &cp, nil
}

func (r *fakePlayerRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Player, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*domain.Player, 0, len(ids))
	for _, id := range ids {
		if player, ok := r.store.players[id]; ok {
			cp := *player
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakePlayerRepo) GetByDisplayName(ctx context.Context, displayName string) (*domain.Player, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, player := range r.store.players {
		if player.DisplayName == displayName {
			cp := *player
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePlayerRepo) Update(ctx context.Context, player *domain.Player) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *player
	r.store.players[player.ID] = &cp
	return nil
}

type fakeSessionRepo struct{ store *memStore }

func (r *fakeSessionRepo) Create(ctx context.Context, session *domain.UserSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *session
	r.store.sessions[session.PlayerID] = &cp
	return nil
}

func (r *fakeSessionRepo) GetByPlayerID(ctx context.Context, playerID uuid.UUID) (*domain.UserSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	session, ok := r.store.sessions[playerID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *session
	return &cp, nil
}

func (r *fakeSessionRepo) DeleteByPlayerID(ctx context.Context, playerID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.sessions, playerID)
	return nil
}

type fakeRatingRepo struct{ store *memStore }

func (r *fakeRatingRepo) GetOrCreate(ctx context.Context, playerID uuid.UUID, mode domain.Mode) (*domain.PlayerRating, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := ratingKey{playerID: playerID, mode: mode}
	rating, ok := r.store.ratings[key]
	if !ok {
		rating = &domain.PlayerRating{
			ID:       uuid.New(),
			PlayerID: playerID,
			Mode:     mode,
			Rating:   domain.DefaultRating,
		}
		r.store.ratings[key] = rating
	}
	cp := *rating
	return &cp, nil
}

func (r *fakeRatingRepo) GetByPlayerIDs(ctx context.Context, playerIDs []uuid.UUID, mode domain.Mode) (map[uuid.UUID]*domain.PlayerRating, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make(map[uuid.UUID]*domain.PlayerRating)
	for _, id := range playerIDs {
		if rating, ok := r.store.ratings[ratingKey{playerID: id, mode: mode}]; ok {
			cp := *rating
			out[id] = &cp
		}
	}
	return out, nil
}

func (r *fakeRatingRepo) Apply(ctx context.Context, playerID uuid.UUID, mode domain.Mode, newRating int, won bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rating, ok := r.store.ratings[ratingKey{playerID: playerID, mode: mode}]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rating.Rating = newRating
	if won {
		rating.Wins++
	} else {
		rating.Losses++
	}
	rating.UpdatedAt = time.Now()
	return nil
}

func (r *fakeRatingRepo) Revert(ctx context.Context, playerID uuid.UUID, mode domain.Mode, delta int, won bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rating, ok := r.store.ratings[ratingKey{playerID: playerID, mode: mode}]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rating.Rating -= delta
	if rating.Rating < 0 {
		rating.Rating = 0
	}
	if won {
		if rating.Wins > 0 {
			rating.Wins--
		}
	} else {
		if rating.Losses > 0 {
			rating.Losses--
		}
	}
	rating.UpdatedAt = time.Now()
	return nil
}

func (r *fakeRatingRepo) Leaderboard(ctx context.Context, mode domain.Mode, limit int) ([]*domain.PlayerRating, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*domain.PlayerRating, 0)
	for _, rating := range r.store.ratings {
		if rating.Mode == mode {
			cp := *rating
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRatingRepo) RankOf(ctx context.Context, playerID uuid.UUID, mode domain.Mode) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	own, ok := r.store.ratings[ratingKey{playerID: playerID, mode: mode}]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	rank := 1
	for _, rating := range r.store.ratings {
		if rating.Mode == mode && rating.Rating > own.Rating {
			rank++
		}
	}
	return rank, nil
}

type fakeTeamRepo struct{ store *memStore }

func (r *fakeTeamRepo) Create(ctx context.Context, team *domain.Team) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *team
	r.store.teams[team.ID] = &cp
	return nil
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Team, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	team, ok := r.store.teams[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *team
	return &cp, nil
}

func (r *fakeTeamRepo) GetByPlayerID(ctx context.Context, playerID uuid.UUID) (*domain.Team, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, team := range r.store.teams {
		if team.HasMember(playerID) {
			cp := *team
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTeamRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.teams, id)
	return nil
}

type fakeMatchRepo struct{ store *memStore }

func (r *fakeMatchRepo) Create(ctx context.Context, match *domain.Match) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *match
	r.store.matches[match.ID] = &cp
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Match, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	match, ok := r.store.matches[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *match
	return &cp, nil
}

func (r *fakeMatchRepo) Update(ctx context.Context, match *domain.Match) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.matches[match.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *match
	r.store.matches[match.ID] = &cp
	return nil
}

type fakeHistoryRepo struct{ store *memStore }

func (r *fakeHistoryRepo) Append(ctx context.Context, entry *domain.MatchHistory) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *entry
	r.store.history = append(r.store.history, &cp)
	return nil
}

func (r *fakeHistoryRepo) MostRecent(ctx context.Context, mode domain.Mode) (*domain.MatchHistory, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i := len(r.store.history) - 1; i >= 0; i-- {
		if r.store.history[i].Mode == mode {
			cp := *r.store.history[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeHistoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i, entry := range r.store.history {
		if entry.ID == id {
			r.store.history = append(r.store.history[:i], r.store.history[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeDodgeRepo struct{ store *memStore }

func (r *fakeDodgeRepo) Record(ctx context.Context, playerID uuid.UUID, mode domain.Mode) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.dodges = append(r.store.dodges, &domain.DodgeEntry{
		ID:        uuid.New(),
		PlayerID:  playerID,
		Mode:      mode,
		CreatedAt: time.Now(),
	})
	return nil
}

func (r *fakeDodgeRepo) CountFor(ctx context.Context, playerID uuid.UUID, mode domain.Mode) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	count := 0
	for _, entry := range r.store.dodges {
		if entry.PlayerID == playerID && entry.Mode == mode {
			count++
		}
	}
	return count, nil
}

func (r *fakeDodgeRepo) DeleteMostRecent(ctx context.Context, playerID uuid.UUID, mode domain.Mode) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i := len(r.store.dodges) - 1; i >= 0; i-- {
		entry := r.store.dodges[i]
		if entry.PlayerID == playerID && entry.Mode == mode {
			r.store.dodges = append(r.store.dodges[:i], r.store.dodges[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// FlakyMatchRepo wraps a MatchRepository and fails a configured number
// of writes before passing through, for storage-failure paths.
type FlakyMatchRepo struct {
	repository.MatchRepository
	mu          sync.Mutex
	FailCreates int
	FailUpdates int
	Err         error
}

func (r *FlakyMatchRepo) Create(ctx context.Context, match *domain.Match) error {
	r.mu.Lock()
	if r.FailCreates > 0 {
		r.FailCreates--
		r.mu.Unlock()
		return r.Err
	}
	r.mu.Unlock()
	return r.MatchRepository.Create(ctx, match)
}

func (r *FlakyMatchRepo) Update(ctx context.Context, match *domain.Match) error {
	r.mu.Lock()
	if r.FailUpdates > 0 {
		r.FailUpdates--
		r.mu.Unlock()
		return r.Err
	}
	r.mu.Unlock()
	return r.MatchRepository.Update(ctx, match)
}

// RecorderNotifier captures published events for assertions.
type RecorderNotifier struct {
	mu        sync.Mutex
	Formed    []domain.MatchFormedEvent
	Votes     []domain.VoteUpdateEvent
	Settled   []domain.MatchSettledEvent
	Cancelled []domain.MatchCancelledEvent
	Undone    []domain.MatchUndoneEvent
}

func NewRecorderNotifier() *RecorderNotifier {
	return &RecorderNotifier{}
}

func (n *RecorderNotifier) MatchFormed(ev domain.MatchFormedEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Formed = append(n.Formed, ev)
}

func (n *RecorderNotifier) VoteUpdate(ev domain.VoteUpdateEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Votes = append(n.Votes, ev)
}

func (n *RecorderNotifier) MatchSettled(ev domain.MatchSettledEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Settled = append(n.Settled, ev)
}

func (n *RecorderNotifier) MatchCancelled(ev domain.MatchCancelledEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Cancelled = append(n.Cancelled, ev)
}

func (n *RecorderNotifier) MatchUndone(ev domain.MatchUndoneEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Undone = append(n.Undone, ev)
}

// LastSettled returns the most recent settlement event, if any.
func (n *RecorderNotifier) LastSettled() (domain.MatchSettledEvent, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Settled) == 0 {
		return domain.MatchSettledEvent{}, false
	}
	return n.Settled[len(n.Settled)-1], true
}

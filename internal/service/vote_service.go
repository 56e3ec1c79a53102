package service

import (
	"context"
	"sync"

	"github.com/brawlhub/elo-ladder/internal/domain"
	"github.com/brawlhub/elo-ladder/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// dodgeQuorum is the number of distinct accusers that auto-confirms a
// dodge.
const dodgeQuorum = 3

// majorityThreshold settles a match immediately, pre-empting the
// remaining voters.
const majorityThreshold = 4

// voteSession is the ephemeral per-match vote and accusation state. It
// exists only while the match is pending and is discarded on
// settlement.
type voteSession struct {
	mu           sync.Mutex
	match        *domain.Match
	participants map[uuid.UUID]bool
	votes        map[uuid.UUID]domain.VoteChoice
	accusations  map[uuid.UUID]uuid.UUID
	// settling blocks further mutation while the decided outcome is
	// being persisted outside the lock.
	settling bool
}

func (vs *voteSession) tally() (blue, red, cancel int) {
	for _, choice := range vs.votes {
		switch choice {
		case domain.VoteBlueWin:
			blue++
		case domain.VoteRedWin:
			red++
		case domain.VoteCancel:
			cancel++
		}
	}
	return blue, red, cancel
}

// outcome is a resolved vote decision.
type outcome struct {
	choice domain.VoteChoice
	reason string
}

// resolve applies the resolution rule: a choice reaching the 4-vote
// majority wins outright; otherwise, once all six have voted, the
// choice with strictly more votes than every other wins; a tie leaves
// the match pending.
func (vs *voteSession) resolve() (outcome, bool) {
	blue, red, cancel := vs.tally()

	switch {
	case blue >= majorityThreshold:
		return outcome{domain.VoteBlueWin, "majority"}, true
	case red >= majorityThreshold:
		return outcome{domain.VoteRedWin, "majority"}, true
	case cancel >= majorityThreshold:
		return outcome{domain.VoteCancel, "majority"}, true
	}

	if len(vs.votes) < domain.MatchSize {
		return outcome{}, false
	}

	// All six voted: strict plurality wins, a tie hangs the match.
	switch {
	case blue > red && blue > cancel:
		return outcome{domain.VoteBlueWin, "final votes"}, true
	case red > blue && red > cancel:
		return outcome{domain.VoteRedWin, "final votes"}, true
	case cancel > blue && cancel > red:
		return outcome{domain.VoteCancel, "final votes"}, true
	}
	return outcome{}, false
}

// accusedByQuorum returns the player named by at least dodgeQuorum
// distinct accusers, if any.
func (vs *voteSession) accusedByQuorum() (uuid.UUID, bool) {
	counts := make(map[uuid.UUID]int)
	for _, accused := range vs.accusations {
		counts[accused]++
		if counts[accused] >= dodgeQuorum {
			return accused, true
		}
	}
	return uuid.Nil, false
}

// VoteService coordinates the result-confirmation protocol for every
// pending match. All vote and accusation mutation for one match is
// serialized on the session lock so the majority check fires exactly
// once; persistence and notification happen after the decision, outside
// the lock.
type VoteService struct {
	mu         sync.RWMutex
	sessions   map[uuid.UUID]*voteSession
	matchRepo  repository.MatchRepository
	settlement *SettlementService
	notifier   domain.Notifier
	log        zerolog.Logger
}

func NewVoteService(matchRepo repository.MatchRepository, settlement *SettlementService, notifier domain.Notifier, log zerolog.Logger) *VoteService {
	return &VoteService{
		sessions:   make(map[uuid.UUID]*voteSession),
		matchRepo:  matchRepo,
		settlement: settlement,
		notifier:   notifier,
		log:        log.With().Str("component", "votes").Logger(),
	}
}

// Register opens a vote session for a freshly formed match.
func (s *VoteService) Register(match *domain.Match) error {
	ids, err := match.Participants()
	if err != nil {
		return err
	}
	participants := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		participants[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[match.ID] = &voteSession{
		match:        match,
		participants: participants,
		votes:        make(map[uuid.UUID]domain.VoteChoice),
		accusations:  make(map[uuid.UUID]uuid.UUID),
	}
	s.log.Info().
		Str("match_id", match.ID.String()).
		Str("mode", string(match.Mode)).
		Msg("vote session opened")
	return nil
}

func (s *VoteService) session(matchID uuid.UUID) (*voteSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vs, ok := s.sessions[matchID]
	return vs, ok
}

func (s *VoteService) dropSession(matchID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, matchID)
}

// Status returns the running tallies for a pending match.
func (s *VoteService) Status(matchID uuid.UUID) (*domain.VoteUpdateEvent, error) {
	vs, ok := s.session(matchID)
	if !ok {
		return nil, domain.ErrMatchNotFound
	}
	vs.mu.Lock()
	defer vs.mu.Unlock()
	blue, red, cancel := vs.tally()
	return &domain.VoteUpdateEvent{
		MatchID:     matchID,
		Mode:        vs.match.Mode,
		BlueVotes:   blue,
		RedVotes:    red,
		CancelVotes: cancel,
		VotesCast:   len(vs.votes),
	}, nil
}

// CastVote records or overwrites a participant's outcome vote, then
// evaluates the resolution rule.
func (s *VoteService) CastVote(ctx context.Context, matchID, voterID uuid.UUID, choice domain.VoteChoice) error {
	vs, ok := s.session(matchID)
	if !ok {
		return s.missingSessionErr(ctx, matchID)
	}

	vs.mu.Lock()
	if vs.settling || vs.match.IsTerminal() {
		vs.mu.Unlock()
		return domain.ErrMatchSettled
	}
	if !vs.participants[voterID] {
		vs.mu.Unlock()
		return domain.ErrNotParticipant
	}
	if choice == domain.VoteCancel && !vs.match.Mode.AllowsCancelVote() {
		vs.mu.Unlock()
		return domain.ErrCancelNotAllowed
	}

	// Later votes overwrite earlier ones.
	vs.votes[voterID] = choice

	decided, ok := vs.resolve()
	if !ok {
		blue, red, cancel := vs.tally()
		update := domain.VoteUpdateEvent{
			MatchID:     matchID,
			Mode:        vs.match.Mode,
			BlueVotes:   blue,
			RedVotes:    red,
			CancelVotes: cancel,
			VotesCast:   len(vs.votes),
		}
		vs.mu.Unlock()
		s.notifier.VoteUpdate(update)
		return nil
	}

	vs.settling = true
	vs.mu.Unlock()

	return s.finalize(ctx, vs, decided, nil)
}

// missingSessionErr distinguishes a vote on a settled match from a vote
// on a match that never existed.
func (s *VoteService) missingSessionErr(ctx context.Context, matchID uuid.UUID) error {
	if _, err := s.matchRepo.GetByID(ctx, matchID); err != nil {
		return domain.ErrMatchNotFound
	}
	return domain.ErrMatchSettled
}

// ReportDodge records or overwrites an accuser's single outstanding
// accusation. Three distinct accusers naming the same player
// auto-confirms the dodge and settles the match against the accused's
// side regardless of vote tallies.
func (s *VoteService) ReportDodge(ctx context.Context, matchID, accuserID, accusedID uuid.UUID) error {
	vs, ok := s.session(matchID)
	if !ok {
		return s.missingSessionErr(ctx, matchID)
	}

	vs.mu.Lock()
	if vs.settling || vs.match.IsTerminal() {
		vs.mu.Unlock()
		return domain.ErrMatchSettled
	}
	if !vs.participants[accuserID] {
		vs.mu.Unlock()
		return domain.ErrNotParticipant
	}
	if accuserID == accusedID {
		vs.mu.Unlock()
		return domain.ErrSelfAccusation
	}
	if !vs.participants[accusedID] {
		vs.mu.Unlock()
		return domain.ErrNotParticipant
	}

	vs.accusations[accuserID] = accusedID

	accused, confirmed := vs.accusedByQuorum()
	if !confirmed {
		vs.mu.Unlock()
		return nil
	}

	dodgerSide, _ := vs.match.SideOf(accused)
	winner := dodgerSide.Opposite()
	winChoice := domain.VoteBlueWin
	if winner == domain.SideRed {
		winChoice = domain.VoteRedWin
	}

	vs.settling = true
	vs.mu.Unlock()

	return s.finalize(ctx, vs, outcome{winChoice, "confirmed dodge"}, &accused)
}

// finalize persists a decided outcome. The session is already marked
// settling, so concurrent votes are rejected rather than blocked. On
// storage failure the session reopens and the match stays pending.
func (s *VoteService) finalize(ctx context.Context, vs *voteSession, decided outcome, dodgerID *uuid.UUID) error {
	if decided.choice == domain.VoteCancel {
		if err := s.settlement.Cancel(ctx, vs.match); err != nil {
			s.reopen(vs)
			return err
		}
		s.dropSession(vs.match.ID)
		s.notifier.MatchCancelled(domain.MatchCancelledEvent{
			MatchID: vs.match.ID,
			Mode:    vs.match.Mode,
		})
		return nil
	}

	winnerSide := domain.SideBlue
	if decided.choice == domain.VoteRedWin {
		winnerSide = domain.SideRed
	}

	event, err := s.settlement.Settle(ctx, SettleInput{
		Match:      vs.match,
		WinnerSide: winnerSide,
		Reason:     decided.reason,
		DodgerID:   dodgerID,
	})
	if err != nil {
		s.reopen(vs)
		return err
	}

	s.dropSession(vs.match.ID)
	s.notifier.MatchSettled(*event)
	return nil
}

func (s *VoteService) reopen(vs *voteSession) {
	vs.mu.Lock()
	vs.settling = false
	vs.mu.Unlock()
}

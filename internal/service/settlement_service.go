package service

import (
	"context"
	"errors"
	"time"

	"github.com/brawlhub/elo-ladder/internal/domain"
	"github.com/brawlhub/elo-ladder/internal/rating"
	"github.com/brawlhub/elo-ladder/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrStorageFailure = errors.New("storage failure")
)

// SettlementService applies a decided outcome: it computes every rating
// delta, persists ratings, counters, the dodge ledger entry and the
// history snapshot in one transaction, and flips the match to its
// terminal state.
type SettlementService struct {
	repos   *repository.Repositories
	penalty rating.PenaltyPolicy
	log     zerolog.Logger
}

func NewSettlementService(repos *repository.Repositories, penalty rating.PenaltyPolicy, log zerolog.Logger) *SettlementService {
	return &SettlementService{
		repos:   repos,
		penalty: penalty,
		log:     log.With().Str("component", "settlement").Logger(),
	}
}

// SettleInput is a decided match outcome awaiting persistence.
type SettleInput struct {
	Match      *domain.Match
	WinnerSide domain.Side
	Reason     string
	DodgerID   *uuid.UUID
}

// Settle runs the full settlement procedure. On storage failure
// everything rolls back and the match stays pending for a retry on the
// next qualifying vote.
func (s *SettlementService) Settle(ctx context.Context, input SettleInput) (*domain.MatchSettledEvent, error) {
	match := input.Match
	blue, red, err := match.Sides()
	if err != nil {
		return nil, err
	}

	winnerIDs, loserIDs := blue, red
	if input.WinnerSide == domain.SideRed {
		winnerIDs, loserIDs = red, blue
	}

	now := time.Now()
	var event *domain.MatchSettledEvent
	err = s.repos.Tx.InTx(ctx, func(repos *repository.Repositories) error {
		winnerRatings, err := loadRatings(ctx, repos.Rating, winnerIDs, match.Mode)
		if err != nil {
			return err
		}
		loserRatings, err := loadRatings(ctx, repos.Rating, loserIDs, match.Mode)
		if err != nil {
			return err
		}

		winnerAvg := rating.Average(winnerRatings)
		loserAvg := rating.Average(loserRatings)
		hasDodge := input.DodgerID != nil

		dodgePenalty := 0
		if hasDodge {
			prior, err := repos.Dodge.CountFor(ctx, *input.DodgerID, match.Mode)
			if err != nil {
				return err
			}
			dodgePenalty = s.penalty.Penalty(prior)
		}

		winners := make([]domain.PlayerDelta, len(winnerIDs))
		winnerDeltas := make([]int, len(winnerIDs))
		for i, id := range winnerIDs {
			delta := rating.Delta(winnerRatings[i], loserAvg, true)
			if hasDodge {
				delta = rating.ScaleWinnerForDodge(delta)
			}
			newRating := rating.Floor(winnerRatings[i] + delta)
			if err := repos.Rating.Apply(ctx, id, match.Mode, newRating, true); err != nil {
				return err
			}
			winnerDeltas[i] = delta
			winners[i] = domain.PlayerDelta{
				PlayerID:  id,
				OldRating: winnerRatings[i],
				NewRating: newRating,
				Delta:     delta,
			}
		}

		losers := make([]domain.PlayerDelta, len(loserIDs))
		loserDeltas := make([]int, len(loserIDs))
		for i, id := range loserIDs {
			delta := rating.Delta(loserRatings[i], winnerAvg, false)
			if hasDodge {
				if id == *input.DodgerID {
					delta -= dodgePenalty
				} else {
					delta = rating.ScaleLoserForDodge(delta)
				}
			}
			newRating := rating.Floor(loserRatings[i] + delta)
			if err := repos.Rating.Apply(ctx, id, match.Mode, newRating, false); err != nil {
				return err
			}
			loserDeltas[i] = delta
			losers[i] = domain.PlayerDelta{
				PlayerID:  id,
				OldRating: loserRatings[i],
				NewRating: newRating,
				Delta:     delta,
			}
		}

		if hasDodge {
			if err := repos.Dodge.Record(ctx, *input.DodgerID, match.Mode); err != nil {
				return err
			}
		}

		result := domain.MatchResult{
			MatchID:      match.ID,
			RoomCode:     match.RoomCode,
			WinnerSide:   input.WinnerSide,
			WinnerIDs:    winnerIDs,
			LoserIDs:     loserIDs,
			WinnerDeltas: winnerDeltas,
			LoserDeltas:  loserDeltas,
			DodgerID:     input.DodgerID,
			DodgePenalty: dodgePenalty,
		}
		if err := repos.MatchHistory.Append(ctx, domain.NewMatchHistory(match.Mode, result)); err != nil {
			return err
		}

		// Flip a copy inside the transaction. The shared match object
		// is only marked settled after the commit, so a rollback leaves
		// it pending and the vote session can retry.
		settled := *match
		settled.Status = domain.MatchStatusSettled
		settled.SettledAt = &now
		if err := repos.Match.Update(ctx, &settled); err != nil {
			return err
		}

		event = &domain.MatchSettledEvent{
			MatchID:      match.ID,
			Mode:         match.Mode,
			WinnerSide:   input.WinnerSide,
			Reason:       input.Reason,
			Winners:      winners,
			Losers:       losers,
			DodgerID:     input.DodgerID,
			DodgePenalty: dodgePenalty,
		}
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).
			Str("match_id", match.ID.String()).
			Str("mode", string(match.Mode)).
			Msg("settlement aborted, match stays pending")
		return nil, errors.Join(ErrStorageFailure, err)
	}

	match.Status = domain.MatchStatusSettled
	match.SettledAt = &now

	s.log.Info().
		Str("match_id", match.ID.String()).
		Str("mode", string(match.Mode)).
		Str("winner_side", string(input.WinnerSide)).
		Str("reason", input.Reason).
		Msg("match settled")
	return event, nil
}

// Cancel flips a match to cancelled without touching ratings. As in
// Settle, the shared match object is only updated once the store write
// succeeded.
func (s *SettlementService) Cancel(ctx context.Context, match *domain.Match) error {
	now := time.Now()
	cancelled := *match
	cancelled.Status = domain.MatchStatusCancelled
	cancelled.SettledAt = &now
	if err := s.repos.Match.Update(ctx, &cancelled); err != nil {
		return errors.Join(ErrStorageFailure, err)
	}
	match.Status = cancelled.Status
	match.SettledAt = cancelled.SettledAt
	s.log.Info().
		Str("match_id", match.ID.String()).
		Str("mode", string(match.Mode)).
		Msg("match cancelled")
	return nil
}

// loadRatings reads each side's pre-match ratings in side order,
// auto-registering unseen players.
func loadRatings(ctx context.Context, repo repository.RatingRepository, ids []uuid.UUID, mode domain.Mode) ([]int, error) {
	ratings := make([]int, len(ids))
	for i, id := range ids {
		pr, err := repo.GetOrCreate(ctx, id, mode)
		if err != nil {
			return nil, err
		}
		ratings[i] = pr.Rating
	}
	return ratings, nil
}

package service

import (
	"context"
	"errors"

	"github.com/brawlhub/elo-ladder/internal/domain"
	"github.com/brawlhub/elo-ladder/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// UndoService reverses the most recently settled match for a mode. It
// is a compensating action, not a transactional rollback: it assumes no
// later matches were settled for the affected players in the meantime.
type UndoService struct {
	repos    *repository.Repositories
	notifier domain.Notifier
	log      zerolog.Logger
}

func NewUndoService(repos *repository.Repositories, notifier domain.Notifier, log zerolog.Logger) *UndoService {
	return &UndoService{
		repos:    repos,
		notifier: notifier,
		log:      log.With().Str("component", "undo").Logger(),
	}
}

// UndoLast locates the most recent history entry for the mode and
// reverses its rating deltas, win/loss counters and dodge-ledger entry,
// then deletes the entry. All writes commit or roll back together.
func (s *UndoService) UndoLast(ctx context.Context, mode domain.Mode) (*domain.MatchUndoneEvent, error) {
	var event *domain.MatchUndoneEvent

	err := s.repos.Tx.InTx(ctx, func(repos *repository.Repositories) error {
		entry, err := repos.MatchHistory.MostRecent(ctx, mode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNoMatchToUndo
			}
			return err
		}

		result := entry.Data.Data()
		reversed := make([]domain.PlayerDelta, 0, len(result.WinnerIDs)+len(result.LoserIDs))

		revert := func(ids []uuid.UUID, deltas []int, won bool) error {
			for i, id := range ids {
				pr, err := repos.Rating.GetOrCreate(ctx, id, mode)
				if err != nil {
					return err
				}
				if err := repos.Rating.Revert(ctx, id, mode, deltas[i], won); err != nil {
					return err
				}
				newRating := pr.Rating - deltas[i]
				if newRating < 0 {
					newRating = 0
				}
				reversed = append(reversed, domain.PlayerDelta{
					PlayerID:  id,
					OldRating: pr.Rating,
					NewRating: newRating,
					Delta:     -deltas[i],
				})
			}
			return nil
		}

		if err := revert(result.WinnerIDs, result.WinnerDeltas, true); err != nil {
			return err
		}
		if err := revert(result.LoserIDs, result.LoserDeltas, false); err != nil {
			return err
		}

		if result.DodgerID != nil {
			if err := repos.Dodge.DeleteMostRecent(ctx, *result.DodgerID, mode); err != nil {
				return err
			}
		}

		if err := repos.MatchHistory.Delete(ctx, entry.ID); err != nil {
			return err
		}

		event = &domain.MatchUndoneEvent{
			MatchID:  result.MatchID,
			Mode:     mode,
			Reversed: reversed,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoMatchToUndo) {
			return nil, err
		}
		s.log.Error().Err(err).Str("mode", string(mode)).Msg("undo aborted, nothing reversed")
		return nil, errors.Join(ErrStorageFailure, err)
	}

	s.notifier.MatchUndone(*event)
	s.log.Info().
		Str("mode", string(mode)).
		Str("match_id", event.MatchID.String()).
		Msg("last match undone")
	return event, nil
}

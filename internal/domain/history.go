package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MatchResult is the persisted snapshot of a settled match. Deltas are
// stored verbatim (not re-derived) so undo can reverse them exactly.
type MatchResult struct {
	MatchID      uuid.UUID   `json:"matchId"`
	RoomCode     string      `json:"roomCode"`
	WinnerSide   Side        `json:"winnerSide"`
	WinnerIDs    []uuid.UUID `json:"winnerIds"`
	LoserIDs     []uuid.UUID `json:"loserIds"`
	WinnerDeltas []int       `json:"winnerDeltas"`
	LoserDeltas  []int       `json:"loserDeltas"`
	DodgerID     *uuid.UUID  `json:"dodgerId,omitempty"`
	DodgePenalty int         `json:"dodgePenalty,omitempty"`
}

// MatchHistory is one append-only history row per settled match.
type MatchHistory struct {
	ID        uuid.UUID                       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Mode      Mode                            `json:"mode" gorm:"type:varchar(10);not null;index"`
	Data      datatypes.JSONType[MatchResult] `json:"data" gorm:"not null"`
	CreatedAt time.Time                       `json:"createdAt" gorm:"index"`
}

// TableName returns the table name for GORM
func (MatchHistory) TableName() string {
	return "match_history"
}

// NewMatchHistory wraps a result snapshot in a history row.
func NewMatchHistory(mode Mode, result MatchResult) *MatchHistory {
	return &MatchHistory{
		ID:        uuid.New(),
		Mode:      mode,
		Data:      datatypes.NewJSONType(result),
		CreatedAt: time.Now(),
	}
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// DodgeEntry is one confirmed no-show in the append-only dodge ledger.
// The most recent entry for a player/mode is removed when the match
// that produced it is undone.
type DodgeEntry struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PlayerID  uuid.UUID `json:"playerId" gorm:"type:uuid;not null;index:idx_dodge_player_mode"`
	Mode      Mode      `json:"mode" gorm:"type:varchar(10);not null;index:idx_dodge_player_mode"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName returns the table name for GORM
func (DodgeEntry) TableName() string {
	return "dodges"
}

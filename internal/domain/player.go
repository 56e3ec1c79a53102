package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultRating is the rating every player starts with in every mode.
const DefaultRating = 1000

// Player is a registered account. Players are created on first contact
// and never deleted.
type Player struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	DisplayName  string    `json:"displayName" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	IsAdmin      bool      `json:"isAdmin" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName returns the table name for GORM
func (Player) TableName() string {
	return "players"
}

// PlayerRating holds one player's rating state for one mode. Rows are
// created lazily at the default rating and mutated only through
// settlement and undo.
type PlayerRating struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PlayerID  uuid.UUID `json:"playerId" gorm:"type:uuid;not null;uniqueIndex:idx_player_mode"`
	Mode      Mode      `json:"mode" gorm:"type:varchar(10);not null;uniqueIndex:idx_player_mode"`
	Rating    int       `json:"rating" gorm:"not null;default:1000"`
	Wins      int       `json:"wins" gorm:"not null;default:0"`
	Losses    int       `json:"losses" gorm:"not null;default:0"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	Player *Player `json:"player,omitempty" gorm:"foreignKey:PlayerID"`
}

// TableName returns the table name for GORM
func (PlayerRating) TableName() string {
	return "player_ratings"
}

// Winrate returns the win percentage rounded to one decimal.
func (r *PlayerRating) Winrate() float64 {
	games := r.Wins + r.Losses
	if games == 0 {
		return 0
	}
	return float64(int(float64(r.Wins)/float64(games)*1000+0.5)) / 10
}

// UserSession is a refresh-token session for a logged-in player.
type UserSession struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PlayerID         uuid.UUID `json:"playerId" gorm:"type:uuid;not null"`
	RefreshTokenHash string    `json:"-" gorm:"not null"`
	ExpiresAt        time.Time `json:"expiresAt" gorm:"not null"`
	CreatedAt        time.Time `json:"createdAt"`
}

// TableName returns the table name for GORM
func (UserSession) TableName() string {
	return "user_sessions"
}

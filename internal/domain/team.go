package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxTeamNameLength caps fixed-team names.
const MaxTeamNameLength = 30

// Team is a fixed 3-player roster for trio mode. A player belongs to at
// most one team at a time; only the captain may dissolve it. Settled
// matches keep the member player ids even after the team is deleted.
type Team struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name      string    `json:"name" gorm:"size:30;not null"`
	CaptainID uuid.UUID `json:"captainId" gorm:"type:uuid;not null;uniqueIndex"`
	Player2ID uuid.UUID `json:"player2Id" gorm:"type:uuid;not null;uniqueIndex"`
	Player3ID uuid.UUID `json:"player3Id" gorm:"type:uuid;not null;uniqueIndex"`
	CreatedAt time.Time `json:"createdAt"`

	// Relations
	Captain *Player `json:"captain,omitempty" gorm:"foreignKey:CaptainID"`
}

// TableName returns the table name for GORM
func (Team) TableName() string {
	return "teams"
}

// MemberIDs returns the three member player ids, captain first.
func (t *Team) MemberIDs() []uuid.UUID {
	return []uuid.UUID{t.CaptainID, t.Player2ID, t.Player3ID}
}

// HasMember reports whether the given player is on the team.
func (t *Team) HasMember(playerID uuid.UUID) bool {
	return playerID == t.CaptainID || playerID == t.Player2ID || playerID == t.Player3ID
}

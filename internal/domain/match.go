package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Side is one of the two 3-player groupings within a match.
type Side string

const (
	SideBlue Side = "blue"
	SideRed  Side = "red"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideBlue {
		return SideRed
	}
	return SideBlue
}

// VoteChoice is a participant's outcome vote.
type VoteChoice string

const (
	VoteBlueWin VoteChoice = "blue_win"
	VoteRedWin  VoteChoice = "red_win"
	VoteCancel  VoteChoice = "cancel"
)

// ParseVoteChoice validates a vote choice string from the API surface.
func ParseVoteChoice(s string) (VoteChoice, error) {
	switch VoteChoice(s) {
	case VoteBlueWin, VoteRedWin, VoteCancel:
		return VoteChoice(s), nil
	default:
		return "", ErrInvalidVoteChoice
	}
}

// MatchStatus represents the lifecycle state of a match.
type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusSettled   MatchStatus = "settled"
	MatchStatusCancelled MatchStatus = "cancelled"
)

// Match is a formed contest between two 3-player sides. It is created
// pending and transitions to settled or cancelled exactly once; after
// that it is immutable except for reversal by undo.
type Match struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Mode        Mode           `json:"mode" gorm:"type:varchar(10);not null;index"`
	RoomCode    string         `json:"roomCode" gorm:"size:20;not null"`
	Status      MatchStatus    `json:"status" gorm:"type:varchar(10);not null;default:'pending'"`
	BlueTeamIDs datatypes.JSON `json:"blueTeamIds" gorm:"not null"`
	RedTeamIDs  datatypes.JSON `json:"redTeamIds" gorm:"not null"`
	CreatedAt   time.Time      `json:"createdAt"`
	SettledAt   *time.Time     `json:"settledAt"`
}

// TableName returns the table name for GORM
func (Match) TableName() string {
	return "matches"
}

// NewMatch builds a pending match from two full sides.
func NewMatch(mode Mode, roomCode string, blue, red []uuid.UUID) *Match {
	blueJSON, _ := json.Marshal(blue)
	redJSON, _ := json.Marshal(red)
	return &Match{
		ID:          uuid.New(),
		Mode:        mode,
		RoomCode:    roomCode,
		Status:      MatchStatusPending,
		BlueTeamIDs: blueJSON,
		RedTeamIDs:  redJSON,
		CreatedAt:   time.Now(),
	}
}

// Sides decodes the two stored 3-id lists.
func (m *Match) Sides() (blue, red []uuid.UUID, err error) {
	if err = json.Unmarshal(m.BlueTeamIDs, &blue); err != nil {
		return nil, nil, err
	}
	if err = json.Unmarshal(m.RedTeamIDs, &red); err != nil {
		return nil, nil, err
	}
	return blue, red, nil
}

// Participants returns all six participant ids, blue side first.
func (m *Match) Participants() ([]uuid.UUID, error) {
	blue, red, err := m.Sides()
	if err != nil {
		return nil, err
	}
	return append(blue, red...), nil
}

// SideOf returns the side a participant plays on.
func (m *Match) SideOf(playerID uuid.UUID) (Side, bool) {
	blue, red, err := m.Sides()
	if err != nil {
		return "", false
	}
	for _, id := range blue {
		if id == playerID {
			return SideBlue, true
		}
	}
	for _, id := range red {
		if id == playerID {
			return SideRed, true
		}
	}
	return "", false
}

// IsTerminal reports whether the match has left the pending state.
func (m *Match) IsTerminal() bool {
	return m.Status != MatchStatusPending
}

// CosmeticPayload is presentation-only data attached to a formed match.
// It never influences settlement.
type CosmeticPayload struct {
	SuggestedMaps []string `json:"suggestedMaps,omitempty"`
	Map           string   `json:"map,omitempty"`
	Brawlers      []string `json:"brawlers,omitempty"`
	Modifier      string   `json:"modifier,omitempty"`
}

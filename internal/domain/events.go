package domain

import "github.com/google/uuid"

// Notifier receives the core's structured events. The presentation
// layer (websocket hub, chat bridge) renders them; the core never
// formats user-facing text.
type Notifier interface {
	MatchFormed(event MatchFormedEvent)
	VoteUpdate(event VoteUpdateEvent)
	MatchSettled(event MatchSettledEvent)
	MatchCancelled(event MatchCancelledEvent)
	MatchUndone(event MatchUndoneEvent)
}

// SidePlayer is one participant with their pre-match rating, for display.
type SidePlayer struct {
	PlayerID    uuid.UUID `json:"playerId"`
	DisplayName string    `json:"displayName"`
	Rating      int       `json:"rating"`
}

// MatchFormedEvent announces a newly balanced match.
type MatchFormedEvent struct {
	MatchID  uuid.UUID       `json:"matchId"`
	Mode     Mode            `json:"mode"`
	RoomCode string          `json:"roomCode"`
	Blue     []SidePlayer    `json:"blue"`
	Red      []SidePlayer    `json:"red"`
	Cosmetic CosmeticPayload `json:"cosmetic"`
}

// VoteUpdateEvent carries the running tallies for a pending match.
type VoteUpdateEvent struct {
	MatchID     uuid.UUID `json:"matchId"`
	Mode        Mode      `json:"mode"`
	BlueVotes   int       `json:"blueVotes"`
	RedVotes    int       `json:"redVotes"`
	CancelVotes int       `json:"cancelVotes"`
	VotesCast   int       `json:"votesCast"`
}

// PlayerDelta is one player's rating movement from a settlement.
type PlayerDelta struct {
	PlayerID  uuid.UUID `json:"playerId"`
	OldRating int       `json:"oldRating"`
	NewRating int       `json:"newRating"`
	Delta     int       `json:"delta"`
}

// MatchSettledEvent announces a finalized outcome.
type MatchSettledEvent struct {
	MatchID      uuid.UUID     `json:"matchId"`
	Mode         Mode          `json:"mode"`
	WinnerSide   Side          `json:"winnerSide"`
	Reason       string        `json:"reason"`
	Winners      []PlayerDelta `json:"winners"`
	Losers       []PlayerDelta `json:"losers"`
	DodgerID     *uuid.UUID    `json:"dodgerId,omitempty"`
	DodgePenalty int           `json:"dodgePenalty,omitempty"`
}

// MatchCancelledEvent announces a cancelled match.
type MatchCancelledEvent struct {
	MatchID uuid.UUID `json:"matchId"`
	Mode    Mode      `json:"mode"`
}

// MatchUndoneEvent announces a reversed settlement.
type MatchUndoneEvent struct {
	MatchID  uuid.UUID     `json:"matchId"`
	Mode     Mode          `json:"mode"`
	Reversed []PlayerDelta `json:"reversed"`
}

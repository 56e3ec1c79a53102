package domain

import "errors"

// Mode and vote validation errors
var (
	ErrUnknownMode       = errors.New("unknown mode")
	ErrInvalidVoteChoice = errors.New("invalid vote choice")
)

// Queue errors
var (
	ErrLobbyNotFound    = errors.New("lobby not found")
	ErrLobbyFull        = errors.New("lobby is full")
	ErrAlreadyQueued    = errors.New("already queued in this mode")
	ErrNotQueued        = errors.New("not queued in this lobby")
	ErrLobbyLimit       = errors.New("lobby limit reached for this mode")
	ErrLobbyCooldown    = errors.New("lobby creation is on cooldown")
	ErrNoTeam           = errors.New("player has no team")
	ErrTeamRequired     = errors.New("this mode queues fixed teams")
)

// Match and vote errors
var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchSettled     = errors.New("match already settled")
	ErrNotParticipant   = errors.New("not a participant of this match")
	ErrSelfAccusation   = errors.New("cannot accuse yourself of dodging")
	ErrCancelNotAllowed = errors.New("cancel votes are not supported in this mode")
	ErrNoMatchToUndo    = errors.New("no match to undo for this mode")
)

// Team errors
var (
	ErrTeamNotFound      = errors.New("team not found")
	ErrTeamNameTooLong   = errors.New("team name too long")
	ErrDuplicateMembers  = errors.New("team members must be three distinct players")
	ErrAlreadyInTeam     = errors.New("a player is already in a team")
	ErrNotTeamCaptain    = errors.New("only the captain can dissolve the team")
)

// Player errors
var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrAdminOnly      = errors.New("admin only")
)

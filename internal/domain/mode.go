package domain

import "fmt"

// Mode identifies an independent matchmaking pool. Each mode has its own
// queue, ratings, match history and dodge ledger.
type Mode string

const (
	ModeSolo  Mode = "solo"
	ModeTrio  Mode = "trio"
	ModeChaos Mode = "chaos"
)

// AllModes lists every matchmaking pool.
var AllModes = []Mode{ModeSolo, ModeTrio, ModeChaos}

// MatchSize is the number of participants in every match.
const MatchSize = 6

// TeamSize is the number of players on each side.
const TeamSize = 3

// ParseMode validates a mode string from the API surface.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSolo, ModeTrio, ModeChaos:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// UsesFixedTeams reports whether entrants queue as pre-formed teams.
func (m Mode) UsesFixedTeams() bool {
	return m == ModeTrio
}

// AllowsCancelVote reports whether participants may vote to cancel the
// match instead of picking a winner. Only chaos supports it; its fully
// randomized setups can turn out unplayable.
func (m Mode) AllowsCancelVote() bool {
	return m == ModeChaos
}

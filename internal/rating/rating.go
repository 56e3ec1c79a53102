// Package rating implements the logistic rating update used for all
// three matchmaking pools.
package rating

import "math"

// KFactor scales every rating delta.
const KFactor = 30

// Dodge scaling applied to a tainted match: winners earn less credit,
// non-dodging losers are largely shielded.
const (
	dodgeWinnerScale = 0.8
	dodgeLoserScale  = 0.3
)

// ExpectedScore returns the win probability of a player rated a against
// an opponent rated b on the standard 400-point logistic curve.
func ExpectedScore(a, b int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(b-a)/400.0))
}

// Delta returns the rating change for a player against the opposing
// side's average pre-match rating.
func Delta(playerRating int, opponentAvg float64, won bool) int {
	expected := 1.0 / (1.0 + math.Pow(10, (opponentAvg-float64(playerRating))/400.0))
	actual := 0.0
	if won {
		actual = 1.0
	}
	return int(math.Round(KFactor * (actual - expected)))
}

// ScaleWinnerForDodge reduces a winner's delta in a dodge-tainted
// match, truncating toward zero.
func ScaleWinnerForDodge(delta int) int {
	return int(float64(delta) * dodgeWinnerScale)
}

// ScaleLoserForDodge shields a non-dodging loser's delta in a
// dodge-tainted match, truncating toward zero.
func ScaleLoserForDodge(delta int) int {
	return int(float64(delta) * dodgeLoserScale)
}

// Average returns the mean of a side's pre-match ratings.
func Average(ratings []int) float64 {
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return float64(sum) / float64(len(ratings))
}

// Floor clamps a rating at zero. Ratings are never negative.
func Floor(r int) int {
	if r < 0 {
		return 0
	}
	return r
}

// PenaltyPolicy computes the explicit rating penalty subtracted from a
// confirmed dodger's delta. The penalty doubles with every prior dodge
// in the same mode, up to Cap.
type PenaltyPolicy struct {
	Base int
	Cap  int
}

// Penalty returns the penalty for a player with the given number of
// prior confirmed dodges in the mode.
func (p PenaltyPolicy) Penalty(priorDodges int) int {
	penalty := p.Base
	for i := 0; i < priorDodges; i++ {
		penalty *= 2
		if penalty >= p.Cap {
			return p.Cap
		}
	}
	return penalty
}

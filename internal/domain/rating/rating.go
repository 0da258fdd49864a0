// Package rating implements the head-to-head rating update used after every
// observed match.
//
// The model is a logistic Elo expectation scaled by a margin-of-victory
// multiplier. Each side's change is clamped independently into [-k, k], so the
// two changes are not forced to cancel out and total rating mass in the
// population is not strictly conserved.
package rating

import "math"

// Default engine parameters.
const (
	DefaultK              = 40.0
	DefaultGoalDiffWeight = 0.2
	DefaultSensitivity    = 1.5
	DefaultRating         = 1000.0

	// logisticScale is the rating gap at which the stronger side is 10x as likely to win.
	logisticScale = 400.0
)

// Outcome is the result of a match from player 1's point of view.
type Outcome int

const (
	// Draw means both players scored the same.
	Draw Outcome = iota
	// Player1Win means player 1 scored strictly more.
	Player1Win
	// Player2Win means player 2 scored strictly more.
	Player2Win
)

// OutcomeFromScores derives the outcome of a match from the two scores.
func OutcomeFromScores(score1, score2 int) Outcome {
	switch {
	case score1 > score2:
		return Player1Win
	case score1 < score2:
		return Player2Win
	default:
		return Draw
	}
}

// Score converts the outcome to player 1's actual score in {1, 0.5, 0}.
func (o Outcome) Score() float64 {
	switch o {
	case Player1Win:
		return 1
	case Player2Win:
		return 0
	default:
		return 0.5
	}
}

func (o Outcome) String() string {
	switch o {
	case Player1Win:
		return "player1_win"
	case Player2Win:
		return "player2_win"
	default:
		return "draw"
	}
}

// Params holds the tunable constants of the update.
type Params struct {
	K              float64
	GoalDiffWeight float64
	Sensitivity    float64
}

// DefaultParams returns K=40, goal difference weight 0.2 and sensitivity 1.5.
func DefaultParams() Params {
	return Params{
		K:              DefaultK,
		GoalDiffWeight: DefaultGoalDiffWeight,
		Sensitivity:    DefaultSensitivity,
	}
}

// Expectation returns the probability that a player rated rX beats one rated rY.
func Expectation(rX, rY float64) float64 {
	return 1 / (1 + math.Pow(10, (rY-rX)/logisticScale))
}

// MarginMultiplier scales a rating change by the score difference.
// A zero margin yields 1-weight, so drawn scores move ratings less than the base term.
func MarginMultiplier(scoreDifference int, goalDiffWeight float64) float64 {
	return 1 + goalDiffWeight*(math.Log2(float64(scoreDifference)+1)-1)
}

// UpdateRatings returns the new ratings of both players. outcome is player 1's
// actual score (1, 0.5 or 0) and scoreDifference is the absolute score margin.
func UpdateRatings(r1, r2, outcome float64, scoreDifference int, p Params) (float64, float64) {
	g := MarginMultiplier(scoreDifference, p.GoalDiffWeight)

	deltaA := p.K * p.Sensitivity * (outcome - Expectation(r1, r2)) * g
	deltaB := p.K * p.Sensitivity * ((1 - outcome) - Expectation(r2, r1)) * g

	return r1 + clamp(deltaA, -p.K, p.K), r2 + clamp(deltaB, -p.K, p.K)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

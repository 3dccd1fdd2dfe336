package scoring

import "math"

// Default weight distribution for the weighted score.
// The three weights must sum to 1.0.
const (
	defaultWeightEffort         = 0.2
	defaultWeightSkillGrowth    = 0.3
	defaultWeightPerceivedValue = 0.5
)

// Input holds the four measures fed into the time-ROI formula.
type Input struct {
	// TimeSpent is the invested time in hours. Must be finite and > 0.
	TimeSpent float64

	// Effort, SkillGrowth and PerceivedValue are subjective ratings,
	// each in the range 0-10 inclusive.
	Effort         float64
	SkillGrowth    float64
	PerceivedValue float64
}

// Weights defines the relative importance of each rating dimension.
// All weights must be non-negative and sum to 1.0 (±0.001 tolerance).
type Weights struct {
	Effort         float64 `json:"effort"`
	SkillGrowth    float64 `json:"skill_growth"`
	PerceivedValue float64 `json:"perceived_value"`
}

// DefaultWeights returns the standard weight distribution (0.2, 0.3, 0.5).
func DefaultWeights() Weights {
	return Weights{
		Effort:         defaultWeightEffort,
		SkillGrowth:    defaultWeightSkillGrowth,
		PerceivedValue: defaultWeightPerceivedValue,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Effort + w.SkillGrowth + w.PerceivedValue
}

// WeightedScore computes the time-ROI score using the given weights.
//
// Formula:
//
//	composite = effort*wE + skillGrowth*wS + perceivedValue*wV
//	score     = round2(composite / timeSpent * 100)
//
// The input is validated first, then the weights; the computation never
// runs on invalid data. The result has no upper bound — low time spent
// against high ratings can push it well past 100.
func WeightedScore(in Input, w Weights) (float64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	if err := w.Validate(); err != nil {
		return 0, err
	}

	composite := in.Effort*w.Effort +
		in.SkillGrowth*w.SkillGrowth +
		in.PerceivedValue*w.PerceivedValue

	return round2(composite / in.TimeSpent * 100), nil
}

// EqualWeightScore computes the time-ROI score with all three ratings
// weighted equally.
//
// The composite is (effort+skillGrowth+perceivedValue)/3 rather than a
// WeightedScore call with thirds: the implicit weights exist only by
// construction and are deliberately not run through weight validation,
// which would be at the mercy of 1/3+1/3+1/3 floating-point noise.
func EqualWeightScore(in Input) (float64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}

	composite := (in.Effort + in.SkillGrowth + in.PerceivedValue) / 3

	return round2(composite / in.TimeSpent * 100), nil
}

// Evaluation bundles a computed score with its interpretation.
type Evaluation struct {
	Score float64 `json:"score"`
	Interpretation
}

// Evaluate computes the weighted score and interprets it in one step.
func Evaluate(in Input, w Weights) (Evaluation, error) {
	score, err := WeightedScore(in, w)
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluation{Score: score, Interpretation: Interpret(score)}, nil
}

// EvaluateEqual computes the equal-weight score and interprets it.
func EvaluateEqual(in Input) (Evaluation, error) {
	score, err := EqualWeightScore(in)
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluation{Score: score, Interpretation: Interpret(score)}, nil
}

// round2 rounds to 2 decimal places, half away from zero.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

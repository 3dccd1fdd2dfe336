package scoring

import (
	"fmt"
	"math"

	"github.com/ZanzyTHEbar/time-roi-meter/internal/errors"
)

// weightSumTolerance is how far the weight sum may drift from 1.0
// before validation rejects it.
const weightSumTolerance = 0.001

// ratingMax is the upper bound for the three rating dimensions.
const ratingMax = 10.0

// Validate checks the four measures in a fixed order and returns a
// validation AppError for the first rule violated: time spent must be a
// finite number greater than zero, and each rating must be a finite
// number in [0, 10]. Weights are checked separately by Weights.Validate.
func (in Input) Validate() error {
	if !isFinite(in.TimeSpent) {
		return errors.NewValidationError("Time spent must be a finite number")
	}
	if in.TimeSpent <= 0 {
		return errors.NewValidationError("Time spent must be greater than 0")
	}
	if !validRating(in.Effort) {
		return errors.NewValidationError("Effort must be a finite number between 0 and 10")
	}
	if !validRating(in.SkillGrowth) {
		return errors.NewValidationError("Skill growth must be a finite number between 0 and 10")
	}
	if !validRating(in.PerceivedValue) {
		return errors.NewValidationError("Perceived value must be a finite number between 0 and 10")
	}
	return nil
}

// Validate checks that all weights are finite, that they sum to 1.0
// within tolerance, and that none are negative — in that order, failing
// on the first violation.
func (w Weights) Validate() error {
	if !isFinite(w.Effort) || !isFinite(w.SkillGrowth) || !isFinite(w.PerceivedValue) {
		return errors.NewValidationError("Weights must be finite numbers")
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > weightSumTolerance {
		return errors.NewValidationError(fmt.Sprintf("Weights must sum to 1.0 (current sum: %.4g)", sum))
	}
	if w.Effort < 0 || w.SkillGrowth < 0 || w.PerceivedValue < 0 {
		return errors.NewValidationError("Weights must not be negative")
	}
	return nil
}

func validRating(x float64) bool {
	return isFinite(x) && x >= 0 && x <= ratingMax
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

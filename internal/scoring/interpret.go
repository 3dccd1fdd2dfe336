package scoring

// Category names a score band.
type Category string

const (
	CategoryInvalid     Category = "Invalid"
	CategoryLow         Category = "Low"
	CategoryModerate    Category = "Moderate"
	CategoryGood        Category = "Good"
	CategoryExcellent   Category = "Excellent"
	CategoryExceptional Category = "Exceptional"
)

// Thresholds that map a score to a category. Bands are half-open: a
// score sitting exactly on a threshold belongs to the band below it.
const (
	thresholdLow       = 30.0
	thresholdModerate  = 60.0
	thresholdGood      = 80.0
	thresholdExcellent = 100.0
)

// Interpretation is the human-readable reading of a score.
type Interpretation struct {
	Category    Category `json:"category"`
	Description string   `json:"description"`
}

// Interpret maps a score to its category and description. It is total
// over all reals: the score is not re-validated against the input
// domain, negative values read as Invalid, and there is no upper cap.
// NaN falls through every band and lands on Invalid.
func Interpret(score float64) Interpretation {
	switch {
	case score > thresholdExcellent:
		return Interpretation{CategoryExceptional, "Extremely high value per hour"}
	case score > thresholdGood:
		return Interpretation{CategoryExcellent, "Highly efficient use of time"}
	case score > thresholdModerate:
		return Interpretation{CategoryGood, "Strong returns relative to time invested"}
	case score > thresholdLow:
		return Interpretation{CategoryModerate, "Decent returns, room for improvement"}
	case score >= 0:
		return Interpretation{CategoryLow, "Consider if activity is worth continuing"}
	default:
		return Interpretation{CategoryInvalid, "Score cannot be negative"}
	}
}

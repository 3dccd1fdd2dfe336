package types

// ScoreWeights is the optional weight triple on the wire. A nil value
// means the default distribution (0.2, 0.3, 0.5).
type ScoreWeights struct {
	Effort         float64 `json:"effort"`
	SkillGrowth    float64 `json:"skill_growth"`
	PerceivedValue float64 `json:"perceived_value"`
}

// ScoreRequest is the request body for the scoring endpoints. All four
// measures are plain numbers; validation happens in the scoring core so
// that out-of-range values produce the exact rule message rather than a
// generic binding error.
type ScoreRequest struct {
	TimeSpent      float64       `json:"time_spent"`
	Effort         float64       `json:"effort"`
	SkillGrowth    float64       `json:"skill_growth"`
	PerceivedValue float64       `json:"perceived_value"`
	Weights        *ScoreWeights `json:"weights,omitempty"`
}

// ScoreResponse carries a computed score with its interpretation. The
// weighted endpoint echoes the weights it applied; the equal-weight
// endpoint leaves them out.
type ScoreResponse struct {
	Score       float64       `json:"score"`
	Category    string        `json:"category"`
	Description string        `json:"description"`
	Weights     *ScoreWeights `json:"weights,omitempty"`
}

// InterpretResponse is the result of interpreting a raw score.
type InterpretResponse struct {
	Score       float64 `json:"score"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
}

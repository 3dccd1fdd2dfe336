package scoring

import (
	"testing"

	apperrors "github.com/ZanzyTHEbar/time-roi-meter/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightedScoreCanonical(t *testing.T) {
	// 10 hours, ratings 7/8/9 with default weights:
	// (7*0.2 + 8*0.3 + 9*0.5) / 10 * 100 = 83.0
	score, err := WeightedScore(Input{
		TimeSpent:      10,
		Effort:         7,
		SkillGrowth:    8,
		PerceivedValue: 9,
	}, DefaultWeights())

	require.NoError(t, err)
	assert.Equal(t, 83.0, score)
}

func TestEqualWeightScoreCanonical(t *testing.T) {
	// Same input equally weighted: (7+8+9)/3 / 10 * 100 = 80.0
	score, err := EqualWeightScore(Input{
		TimeSpent:      10,
		Effort:         7,
		SkillGrowth:    8,
		PerceivedValue: 9,
	})

	require.NoError(t, err)
	assert.Equal(t, 80.0, score)
}

func TestWeightedScoreCustomWeights(t *testing.T) {
	tests := []struct {
		name    string
		input   Input
		weights Weights
		want    float64
	}{
		{
			name:    "all weight on one dimension",
			input:   Input{TimeSpent: 10, Effort: 7, SkillGrowth: 8, PerceivedValue: 9},
			weights: Weights{Effort: 1, SkillGrowth: 0, PerceivedValue: 0},
			want:    70.0,
		},
		{
			name:    "uniform thirds within tolerance",
			input:   Input{TimeSpent: 10, Effort: 6, SkillGrowth: 6, PerceivedValue: 6},
			weights: Weights{Effort: 0.3333, SkillGrowth: 0.3333, PerceivedValue: 0.3334},
			want:    60.0,
		},
		{
			name:    "fractional result rounds to 2 decimals",
			input:   Input{TimeSpent: 3, Effort: 7, SkillGrowth: 8, PerceivedValue: 9},
			weights: DefaultWeights(),
			want:    276.67,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := WeightedScore(tt.input, tt.weights)
			require.NoError(t, err)
			assert.Equal(t, tt.want, score)
		})
	}
}

func TestScoreUnbounded(t *testing.T) {
	// Tiny time investment pushes the score far past 100
	score, err := WeightedScore(Input{
		TimeSpent:      0.1,
		Effort:         10,
		SkillGrowth:    10,
		PerceivedValue: 10,
	}, DefaultWeights())

	require.NoError(t, err)
	assert.Equal(t, 10000.0, score)
}

func TestScoreMonotonicInTime(t *testing.T) {
	in := Input{Effort: 7, SkillGrowth: 8, PerceivedValue: 9}

	var prev float64 = 1e18
	for _, hours := range []float64{1, 2, 5, 10, 50, 200} {
		in.TimeSpent = hours
		score, err := WeightedScore(in, DefaultWeights())
		require.NoError(t, err)
		assert.Less(t, score, prev, "score should decrease as time spent grows (at %v hours)", hours)
		prev = score
	}
}

func TestScoreDeterministic(t *testing.T) {
	in := Input{TimeSpent: 7.5, Effort: 3.3, SkillGrowth: 6.1, PerceivedValue: 8.8}

	first, err := WeightedScore(in, DefaultWeights())
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		score, err := WeightedScore(in, DefaultWeights())
		require.NoError(t, err)
		assert.Equal(t, first, score)
	}
}

func TestZeroRatingsScoreZero(t *testing.T) {
	in := Input{TimeSpent: 5}

	weighted, err := WeightedScore(in, DefaultWeights())
	require.NoError(t, err)
	assert.Equal(t, 0.0, weighted)

	equal, err := EqualWeightScore(in)
	require.NoError(t, err)
	assert.Equal(t, 0.0, equal)
}

func TestWeightedScoreRejectsInvalidInput(t *testing.T) {
	_, err := WeightedScore(Input{TimeSpent: 0, Effort: 7, SkillGrowth: 8, PerceivedValue: 9}, DefaultWeights())
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
}

func TestEvaluate(t *testing.T) {
	eval, err := Evaluate(Input{TimeSpent: 10, Effort: 7, SkillGrowth: 8, PerceivedValue: 9}, DefaultWeights())
	require.NoError(t, err)
	assert.Equal(t, 83.0, eval.Score)
	assert.Equal(t, CategoryExcellent, eval.Category)
	assert.NotEmpty(t, eval.Description)
}

func TestEvaluateEqual(t *testing.T) {
	eval, err := EvaluateEqual(Input{TimeSpent: 10, Effort: 7, SkillGrowth: 8, PerceivedValue: 9})
	require.NoError(t, err)
	assert.Equal(t, 80.0, eval.Score)
	assert.Equal(t, CategoryGood, eval.Category)
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	w := DefaultWeights()
	assert.InDelta(t, 1.0, w.Sum(), 1e-12)
	require.NoError(t, w.Validate())
}

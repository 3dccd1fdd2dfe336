package encoding

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecMarshalMatchesStdlib(t *testing.T) {
	codec := NewJSONCodec()

	payload := map[string]interface{}{
		"score":    83.0,
		"category": "Excellent",
		"weights": map[string]float64{
			"effort":          0.2,
			"skill_growth":    0.3,
			"perceived_value": 0.5,
		},
	}

	got, err := codec.Marshal(payload)
	require.NoError(t, err)

	want, err := json.Marshal(payload)
	require.NoError(t, err)

	assert.JSONEq(t, string(want), string(got))
}

func TestCodecRoundTrip(t *testing.T) {
	codec := NewJSONCodec()

	type scorePayload struct {
		Score    float64 `json:"score"`
		Category string  `json:"category"`
	}

	in := scorePayload{Score: 80.0, Category: "Good"}

	data, err := codec.Marshal(in)
	require.NoError(t, err)

	var out scorePayload
	require.NoError(t, codec.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestCodecStats(t *testing.T) {
	codec := NewJSONCodec()

	for i := 0; i < 5; i++ {
		_, err := codec.Marshal(map[string]int{"i": i})
		require.NoError(t, err)
	}

	require.NoError(t, codec.Unmarshal([]byte(`{"score":83}`), &map[string]float64{}))

	stats := codec.GetStats()
	assert.Equal(t, int64(5), stats["marshals"])
	assert.Equal(t, int64(1), stats["unmarshals"])
}

func TestCodecConcurrentUse(t *testing.T) {
	codec := NewJSONCodec()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				data, err := codec.Marshal(map[string]int{"n": n, "j": j})
				assert.NoError(t, err)

				var out map[string]int
				assert.NoError(t, codec.Unmarshal(data, &out))
				assert.Equal(t, n, out["n"])
			}
		}(i)
	}
	wg.Wait()
}

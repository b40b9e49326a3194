package score

import (
	"testing"

	"precision/internal/metric"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemeKey(t *testing.T) {
	assert.Equal(t, "1-0-2", SchemeKey([]int{1, 0, 2}))
	assert.Equal(t, "3", SchemeKey([]int{3}))
	assert.Equal(t, "", SchemeKey(nil))
}

func TestParseSchemeKey(t *testing.T) {
	levels, err := ParseSchemeKey("1-0-2")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 2}, levels)

	for _, key := range []string{"", "1--2", "a-1", "1-(-1)", "-1"} {
		_, err := ParseSchemeKey(key)
		assert.Error(t, err, "key %q", key)
	}
}

func evaluationsOf(values ...float64) []Evaluation {
	result := make([]Evaluation, len(values))
	for i, v := range values {
		result[i] = Evaluation{Loss: metric.NewInformationLoss(v, 0)}
	}
	return result
}

func TestSummarize(t *testing.T) {
	s := Summarize(evaluationsOf(0.2, 0.4, 0.6))

	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 0.2, s.Min, 1e-12)
	assert.InDelta(t, 0.6, s.Max, 1e-12)
	assert.InDelta(t, 0.4, s.Mean, 1e-12)
	assert.InDelta(t, 0.2, s.StdDev, 1e-12)
}

func TestSummarize_Single(t *testing.T) {
	s := Summarize(evaluationsOf(0.3))

	assert.Equal(t, Summary{Count: 1, Min: 0.3, Max: 0.3, Mean: 0.3}, s)
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
}

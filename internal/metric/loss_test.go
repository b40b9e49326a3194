package metric

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInformationLoss_Compare(t *testing.T) {
	low := NewInformationLoss(0.1, 5)
	high := NewInformationLoss(0.2, 0)

	assert.Equal(t, -1, low.Compare(high))
	assert.Equal(t, 1, high.Compare(low))
	assert.Equal(t, 0, low.Compare(NewInformationLoss(0.1, 0)), "lower bound does not take part in ordering")
}

func TestInformationLoss_MaxMin(t *testing.T) {
	a := NewInformationLoss(0.3, 1)
	b := NewInformationLoss(0.7, 2)

	assert.Equal(t, b, a.Max(b))
	assert.Equal(t, b, b.Max(a))
	assert.Equal(t, a, a.Min(b))
	assert.Equal(t, a, b.Min(a))

	tie := NewInformationLoss(0.3, 9)
	assert.Equal(t, a, a.Max(tie), "receiver wins ties")
}

func TestInformationLoss_RelativeTo(t *testing.T) {
	l := NewInformationLoss(0.25, 0)

	assert.InDelta(t, 0.25, l.RelativeTo(MinInformationLoss(), MaxInformationLoss()), delta)
	assert.InDelta(t, 0.5, l.RelativeTo(NewInformationLoss(0, 0), NewInformationLoss(0.5, 0)), delta)
	assert.Equal(t, 0.0, l.RelativeTo(MaxInformationLoss(), MaxInformationLoss()), "degenerate bounds")
}

func TestInformationLoss_JSON(t *testing.T) {
	l := NewInformationLoss(0.125, 3)

	data, err := json.Marshal(l)
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":0.125,"lowerBound":3}`, string(data))

	var decoded InformationLoss
	require.NoError(t, json.Unmarshal(data, &decoded))
	if diff := cmp.Diff(l, decoded, cmp.AllowUnexported(InformationLoss{})); diff != "" {
		t.Errorf("decoded loss mismatch (-want +got):\n%s", diff)
	}
}

func TestInformationLoss_String(t *testing.T) {
	assert.Equal(t, "0.5 (lower bound 2)", NewInformationLoss(0.5, 2).String())
}

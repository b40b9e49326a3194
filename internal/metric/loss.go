package metric

import (
	"encoding/json"
	"strconv"
)

// InformationLoss is the score of one candidate scheme: the loss value and an
// optimistic lower bound for it. Values are immutable and passed by value.
//
// Ordering is defined by Value only. Ties are left to the caller.
type InformationLoss struct {
	value      float64
	lowerBound float64
}

// NewInformationLoss creates a loss with the given value and lower bound.
func NewInformationLoss(value, lowerBound float64) InformationLoss {
	return InformationLoss{value: value, lowerBound: lowerBound}
}

// Value returns the loss value.
func (l InformationLoss) Value() float64 {
	return l.value
}

// LowerBound returns the lower bound of the loss.
func (l InformationLoss) LowerBound() float64 {
	return l.lowerBound
}

// Compare returns -1, 0 or +1 depending on whether l is lower than, equal to
// or greater than other by value.
func (l InformationLoss) Compare(other InformationLoss) int {
	switch {
	case l.value < other.value:
		return -1
	case l.value > other.value:
		return 1
	default:
		return 0
	}
}

// Max returns the loss with the greater value. On equal values l is returned.
func (l InformationLoss) Max(other InformationLoss) InformationLoss {
	if other.Compare(l) > 0 {
		return other
	}
	return l
}

// Min returns the loss with the lower value. On equal values l is returned.
func (l InformationLoss) Min(other InformationLoss) InformationLoss {
	if other.Compare(l) < 0 {
		return other
	}
	return l
}

// RelativeTo maps the value into [0, 1] relative to the given bounds.
// Returns 0 when both bounds have the same value.
func (l InformationLoss) RelativeTo(min, max InformationLoss) float64 {
	span := max.value - min.value
	if span == 0 {
		return 0
	}
	return (l.value - min.value) / span
}

func (l InformationLoss) String() string {
	return strconv.FormatFloat(l.value, 'g', -1, 64) +
		" (lower bound " + strconv.FormatFloat(l.lowerBound, 'g', -1, 64) + ")"
}

// MarshalJSON encodes the loss as {"value": ..., "lowerBound": ...}.
func (l InformationLoss) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Value      float64 `json:"value"`
		LowerBound float64 `json:"lowerBound"`
	}{l.value, l.lowerBound})
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (l *InformationLoss) UnmarshalJSON(data []byte) error {
	var raw struct {
		Value      float64 `json:"value"`
		LowerBound float64 `json:"lowerBound"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	l.value, l.lowerBound = raw.Value, raw.LowerBound
	return nil
}

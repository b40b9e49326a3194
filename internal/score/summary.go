package score

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the spread of loss values over a batch of evaluations.
type Summary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
}

// Summarize computes a Summary of the loss values. The standard deviation of a
// single evaluation is 0.
func Summarize(evaluations []Evaluation) Summary {
	if len(evaluations) == 0 {
		return Summary{}
	}

	values := make([]float64, len(evaluations))
	for i, e := range evaluations {
		values[i] = e.Loss.Value()
	}

	s := Summary{
		Count: len(values),
		Min:   floats.Min(values),
		Max:   floats.Max(values),
	}
	if len(values) == 1 {
		s.Mean = values[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	return s
}

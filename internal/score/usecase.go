package score

import (
	"context"

	"precision/internal/metric"
)

// Evaluation is the outcome of scoring one generalization scheme.
type Evaluation struct {
	ID       string                 `json:"id"`
	Scheme   []int                  `json:"scheme"`
	Loss     metric.InformationLoss `json:"loss"`
	Classes  int                    `json:"classes"`
	Outliers int                    `json:"outliers"`
	// Relative — loss value placed between the metric's minimum and maximum, in [0, 1]
	Relative float64 `json:"relative"`
}

// Instrumentation records scorer metrics.
type Instrumentation interface {
	IncrementEvaluations(ctx context.Context)
	IncrementEvaluationErrors(ctx context.Context)
	RecordEvaluationDuration(ctx context.Context, ms float64)
}

// NoopInstrumentation discards all metrics.
type NoopInstrumentation struct{}

func (NoopInstrumentation) IncrementEvaluations(context.Context)              {}
func (NoopInstrumentation) IncrementEvaluationErrors(context.Context)         {}
func (NoopInstrumentation) RecordEvaluationDuration(context.Context, float64) {}

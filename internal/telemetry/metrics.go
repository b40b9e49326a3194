package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "precision"

// Instruments holds the metric instruments of the scorer.
type Instruments struct {
	Evaluations        metric.Int64Counter
	EvaluationErrors   metric.Int64Counter
	EvaluationDuration metric.Float64Histogram
}

// NewInstruments creates instruments from the global MeterProvider.
func NewInstruments() *Instruments {
	return newInstrumentsFromMeter(otel.Meter(meterName))
}

// NoopInstruments returns instruments that record nothing.
func NoopInstruments() *Instruments {
	return newInstrumentsFromMeter(noop.NewMeterProvider().Meter(meterName))
}

func newInstrumentsFromMeter(meter metric.Meter) *Instruments {
	// The SDK hands out noop instruments on error.
	evaluations, _ := meter.Int64Counter("precision.evaluation.count",
		metric.WithDescription("Number of scored generalization schemes"),
	)
	evaluationErrors, _ := meter.Int64Counter("precision.evaluation.errors",
		metric.WithDescription("Number of schemes that could not be scored"),
	)
	evaluationDuration, _ := meter.Float64Histogram("precision.evaluation.duration",
		metric.WithDescription("Grouping and scoring time per scheme in milliseconds"),
		metric.WithUnit("ms"),
	)

	return &Instruments{
		Evaluations:        evaluations,
		EvaluationErrors:   evaluationErrors,
		EvaluationDuration: evaluationDuration,
	}
}

func (i *Instruments) IncrementEvaluations(ctx context.Context) {
	i.Evaluations.Add(ctx, 1)
}

func (i *Instruments) IncrementEvaluationErrors(ctx context.Context) {
	i.EvaluationErrors.Add(ctx, 1)
}

func (i *Instruments) RecordEvaluationDuration(ctx context.Context, ms float64) {
	i.EvaluationDuration.Record(ctx, ms)
}

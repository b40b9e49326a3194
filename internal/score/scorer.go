package score

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"time"

	"precision/internal/dataset"
	"precision/internal/groupify"
	"precision/internal/hierarchy"
	"precision/internal/history"
	"precision/internal/metric"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "precision/internal/score"

// Options are the optional collaborators of a Scorer. Zero values are replaced
// by defaults: runtime.NumCPU() workers and no-op history, results and metrics.
type Options struct {
	Workers     int
	History     *history.Repository[Evaluation]
	Results     dataset.ResultRepository
	Instruments Instrumentation
}

// Scorer groups the input table under candidate generalization schemes and scores
// every resulting partition with the precision metric. It never ranks schemes;
// results are returned in the order they were requested.
//
// Scorer is safe for concurrent use.
type Scorer struct {
	table       *dataset.Table
	hierarchies []*hierarchy.Hierarchy
	metric      *metric.Precision
	rule        *groupify.SuppressionRule
	k           int

	workers     int
	history     *history.Repository[Evaluation]
	results     dataset.ResultRepository
	instruments Instrumentation
	tracer      trace.Tracer
}

// NewScorer creates a scorer for table. hierarchies must follow the table's
// column order. The metric is initialized here, once, from the table's shape.
func NewScorer(
	table *dataset.Table,
	hierarchies []*hierarchy.Hierarchy,
	rule *groupify.SuppressionRule,
	k int,
	opts Options,
) (*Scorer, error) {
	providers := make([]metric.Hierarchy, len(hierarchies))
	for i, h := range hierarchies {
		providers[i] = h
	}
	precision, err := metric.New(table.Shape(), providers)
	if err != nil {
		return nil, fmt.Errorf("initializing metric: %w", err)
	}

	s := Scorer{
		table:       table,
		hierarchies: hierarchies,
		metric:      precision,
		rule:        rule,
		k:           k,
		workers:     opts.Workers,
		history:     opts.History,
		results:     opts.Results,
		instruments: opts.Instruments,
		tracer:      otel.Tracer(tracerName),
	}
	if s.workers <= 0 {
		s.workers = runtime.NumCPU()
	}
	if s.results == nil {
		s.results = dataset.NoopResultRepository{}
	}
	if s.instruments == nil {
		s.instruments = NoopInstrumentation{}
	}

	return &s, nil
}

// Metric returns the initialized metric.
func (s *Scorer) Metric() *metric.Precision {
	return s.metric
}

// Attributes returns the column names in scheme order.
func (s *Scorer) Attributes() []string {
	return slices.Clone(s.table.Header)
}

// Score groups the table under levels and evaluates the partition.
func (s *Scorer) Score(ctx context.Context, levels []int) (Evaluation, error) {
	start := time.Now()

	g, err := groupify.Build(s.table, s.hierarchies, levels, s.rule, s.k)
	if err != nil {
		s.instruments.IncrementEvaluationErrors(ctx)
		return Evaluation{}, err
	}

	loss := s.metric.Evaluate(g.Classes())
	evaluation := Evaluation{
		ID:       uuid.NewString(),
		Scheme:   slices.Clone(levels),
		Loss:     loss,
		Classes:  g.Len(),
		Outliers: g.Outliers(),
		Relative: loss.RelativeTo(s.metric.MinInformationLoss(), s.metric.MaxInformationLoss()),
	}

	s.instruments.IncrementEvaluations(ctx)
	s.instruments.RecordEvaluationDuration(ctx, float64(time.Since(start).Microseconds())/1000)

	if s.history != nil {
		s.history.Append(SchemeKey(levels), evaluation)
	}
	s.results.Append(dataset.Record{
		Run:        evaluation.ID,
		Scheme:     evaluation.Scheme,
		Value:      evaluation.Loss.Value(),
		LowerBound: evaluation.Loss.LowerBound(),
		Classes:    evaluation.Classes,
		Outliers:   evaluation.Outliers,
	})

	slog.Debug("Scheme scored",
		"scheme", SchemeKey(levels),
		"loss", evaluation.Loss.Value(),
		"lowerBound", evaluation.Loss.LowerBound(),
		"classes", evaluation.Classes,
		"outliers", evaluation.Outliers,
	)

	return evaluation, nil
}

// ScoreAll scores schemes concurrently on up to Options.Workers goroutines.
// The i-th evaluation belongs to the i-th scheme. The first failure cancels the
// remaining work and is returned.
func (s *Scorer) ScoreAll(ctx context.Context, schemes [][]int) ([]Evaluation, error) {
	ctx, span := s.tracer.Start(ctx, "score.ScoreAll",
		trace.WithAttributes(
			attribute.Int("schemes", len(schemes)),
			attribute.Int("workers", s.workers),
		),
	)
	defer span.End()

	evaluations := make([]Evaluation, len(schemes))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(s.workers)

	for i, levels := range schemes {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			evaluation, err := s.Score(ctx, levels)
			if err != nil {
				return fmt.Errorf("scheme %s: %w", SchemeKey(levels), err)
			}
			evaluations[i] = evaluation
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return evaluations, nil
}

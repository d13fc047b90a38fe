// Package metrics records compiler pipeline instruments through
// OpenTelemetry. Nothing is exported unless the caller installs a meter
// provider; the global no-op provider applies otherwise.
package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/chazu/partforge"

// Pipeline holds the compiler's instruments.
type Pipeline struct {
	compiles         metric.Int64Counter
	violations       metric.Int64Counter
	stageDuration    metric.Float64Histogram
	solverIterations metric.Int64Histogram
	cacheLookups     metric.Int64Counter
}

// New creates the instruments on the global meter provider.
func New() (*Pipeline, error) {
	return NewWithMeter(otel.Meter(instrumentationName))
}

// NewWithMeter creates the instruments on meter.
func NewWithMeter(meter metric.Meter) (*Pipeline, error) {
	compiles, err := meter.Int64Counter(
		"partforge.compile.count",
		metric.WithDescription("Compilations run, by entry point"),
		metric.WithUnit("{compile}"),
	)
	if err != nil {
		return nil, err
	}

	violations, err := meter.Int64Counter(
		"partforge.rules.violations",
		metric.WithDescription("Rule findings reported, by severity"),
		metric.WithUnit("{finding}"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		"partforge.stage.duration",
		metric.WithDescription("Duration of a pipeline stage in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	solverIterations, err := meter.Int64Histogram(
		"partforge.solver.iterations",
		metric.WithDescription("Candidates evaluated per solver run"),
		metric.WithUnit("{candidate}"),
	)
	if err != nil {
		return nil, err
	}

	cacheLookups, err := meter.Int64Counter(
		"partforge.geometry.cache",
		metric.WithDescription("Geometry cache lookups, by result"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		compiles:         compiles,
		violations:       violations,
		stageDuration:    stageDuration,
		solverIterations: solverIterations,
		cacheLookups:     cacheLookups,
	}, nil
}

// RecordCompile counts one compilation entered through source ("text",
// "intent", "follow_up").
func (p *Pipeline) RecordCompile(ctx context.Context, source string) {
	p.compiles.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

// RecordViolations counts rule findings per severity.
func (p *Pipeline) RecordViolations(ctx context.Context, blockers, warnings int) {
	if blockers > 0 {
		p.violations.Add(ctx, int64(blockers), metric.WithAttributes(attribute.String("severity", "blocker")))
	}
	if warnings > 0 {
		p.violations.Add(ctx, int64(warnings), metric.WithAttributes(attribute.String("severity", "warn")))
	}
}

// RecordStage records how long a stage took.
func (p *Pipeline) RecordStage(ctx context.Context, stage string, d time.Duration) {
	p.stageDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordSolver records a solver run.
func (p *Pipeline) RecordSolver(ctx context.Context, class string, iterations int, found bool) {
	p.solverIterations.Record(ctx, int64(iterations),
		metric.WithAttributes(
			attribute.String("class", class),
			attribute.Bool("found", found),
		),
	)
}

// RecordCacheLookup counts a geometry cache hit or miss.
func (p *Pipeline) RecordCacheLookup(ctx context.Context, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	p.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// Time returns a func that records the elapsed time of stage when called:
//
//	defer p.Time(ctx, "synthesize")()
func (p *Pipeline) Time(ctx context.Context, stage string) func() {
	start := time.Now()
	return func() { p.RecordStage(ctx, stage, time.Since(start)) }
}

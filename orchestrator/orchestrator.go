// Package orchestrator coordinates one scan run: plan → schedule → aggregate.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/awsmap/awsmap/aggregator"
	"github.com/awsmap/awsmap/collector"
	"github.com/awsmap/awsmap/inventory"
	"github.com/awsmap/awsmap/planner"
	"github.com/awsmap/awsmap/scheduler"
	"github.com/awsmap/awsmap/tagfilter"
	"github.com/awsmap/awsmap/telemetry"
)

// Request is the full run configuration accepted from the caller.
type Request struct {
	AccountID      string
	AccountAlias   string
	EnabledRegions []string
	Regions        []string
	Services       []string
	IncludeGlobal  bool
	TagFilter      tagfilter.Spec
	// Workers sets the pool width; zero uses the scheduler default of 40.
	Workers int
	Timings bool
}

// Orchestrator owns the per-run state; two orchestrators in one process
// never share anything.
type Orchestrator struct {
	registry *collector.Registry
	logger   *telemetry.Logger
	metrics  *telemetry.ScanMetrics
}

// New creates an orchestrator over the given collector registry.
func New(registry *collector.Registry) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		logger:   telemetry.NewLogger("orchestrator"),
	}
}

// WithMetrics attaches scan instruments.
func (o *Orchestrator) WithMetrics(m *telemetry.ScanMetrics) *Orchestrator {
	o.metrics = m
	return o
}

// Run executes one scan. Planning errors (unknown services) are joined into
// the returned error while the valid remainder of the plan still runs; the
// ScanResult is always returned, possibly partial after cancellation.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*inventory.ScanResult, error) {
	started := time.Now()

	ctx, span := telemetry.Tracer.Start(ctx, "awsmap.scan",
		trace.WithAttributes(
			attribute.String("account.id", req.AccountID),
			attribute.Int("regions.requested", len(req.Regions)),
			attribute.Int("services.requested", len(req.Services)),
		),
	)
	defer span.End()

	planReq := planner.Request{
		EnabledRegions: req.EnabledRegions,
		Regions:        req.Regions,
		Services:       req.Services,
		IncludeGlobal:  req.IncludeGlobal,
	}
	units, planErrs := planner.Plan(planReq, o.registry)

	logger := o.logger.WithContext(ctx)
	for _, err := range planErrs {
		logger.Warn().Err(err).Msg("planning error")
	}
	logger.Info().
		Int("units", len(units)).
		Int("workers", req.Workers).
		Msg("scan planned")

	schedOpts := []scheduler.Option{scheduler.WithMetrics(o.metrics)}
	if req.Workers > 0 {
		schedOpts = append(schedOpts, scheduler.WithWidth(req.Workers))
	}
	outcomes := scheduler.New(schedOpts...).Run(ctx, units)

	effective := planReq.EffectiveRegions()
	result := aggregator.Aggregate(outcomes, aggregator.Options{
		AccountID:       req.AccountID,
		AccountAlias:    req.AccountAlias,
		Filter:          req.TagFilter,
		Regions:         req.Regions,
		ServicesScanned: len(planner.Summary(units)),
		RegionsScanned:  len(effective),
		Timings:         req.Timings,
		Started:         started,
	})

	span.SetAttributes(
		attribute.Int("resources.total", result.Metadata.ResourceCount),
		attribute.Int("units.failed", len(result.Errors)),
	)

	logger.Info().
		Int("resources", result.Metadata.ResourceCount).
		Int("failed_units", len(result.Errors)).
		Dur("duration", result.Metadata.Duration).
		Msg("scan complete")

	return result, errors.Join(planErrs...)
}

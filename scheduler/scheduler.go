// Package scheduler executes a planned set of work units on a fixed-size
// worker pool. Collector failures are absorbed at the unit boundary; the
// scheduler itself only fails on programming errors.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/awsmap/awsmap/inventory"
	"github.com/awsmap/awsmap/planner"
	"github.com/awsmap/awsmap/telemetry"
)

// DefaultWidth is the worker pool size when the caller does not tune it.
const DefaultWidth = 40

// Outcome is the result of executing one work unit. Exactly one outcome is
// produced per unit and it is never updated after insertion. Records and Err
// are mutually exclusive: a failed unit carries no records.
type Outcome struct {
	Unit    planner.WorkUnit
	Records []inventory.Record
	Err     error
	Elapsed time.Duration
}

// Scheduler runs work units with bounded concurrency. All mutable run state
// lives on the instance, so concurrent runs in one process never interfere.
type Scheduler struct {
	width   int
	logger  *telemetry.Logger
	metrics *telemetry.ScanMetrics
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithWidth sets the worker pool size. Values below 1 fall back to 1.
func WithWidth(width int) Option {
	return func(s *Scheduler) {
		if width < 1 {
			width = 1
		}
		s.width = width
	}
}

// WithMetrics attaches scan instruments recorded per unit.
func WithMetrics(m *telemetry.ScanMetrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// WithLogger replaces the default logger.
func WithLogger(l *telemetry.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// New creates a scheduler with the default width of 40 workers.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		width:  DefaultWidth,
		logger: telemetry.NewLogger("scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes all units and returns one outcome per dispatched unit.
// Outcome order is not guaranteed; the aggregator imposes the total order.
//
// Cancellation is cooperative at the queue boundary: once ctx is done no new
// unit is dispatched, but in-flight collector calls run to completion under a
// detached context, so a unit is never truncated mid-call. The returned
// outcomes then cover only the units that completed.
func (s *Scheduler) Run(ctx context.Context, units []planner.WorkUnit) []Outcome {
	if len(units) == 0 {
		return nil
	}

	width := s.width
	if width > len(units) {
		width = len(units)
	}

	queue := make(chan planner.WorkUnit)
	var (
		mu       sync.Mutex
		outcomes = make([]Outcome, 0, len(units))
		wg       sync.WaitGroup
	)

	for i := 0; i < width; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for unit := range queue {
				outcome := s.execute(ctx, unit)
				mu.Lock()
				outcomes = append(outcomes, outcome)
				mu.Unlock()
			}
		}()
	}

	dispatched := 0
dispatch:
	for _, unit := range units {
		// Checked before the send: with an idle worker and a done context
		// both select cases are ready and the send could win the race.
		if ctx.Err() != nil {
			break
		}
		select {
		case queue <- unit:
			dispatched++
		case <-ctx.Done():
			break dispatch
		}
	}
	if dispatched < len(units) {
		s.logger.WithContext(ctx).Warn().
			Int("dispatched", dispatched).
			Int("planned", len(units)).
			Msg("scan cancelled, waiting for in-flight units")
	}
	close(queue)
	wg.Wait()

	return outcomes
}

// execute invokes one unit's collector and wraps the result. All remote
// failures are converted into the outcome, never propagated.
func (s *Scheduler) execute(ctx context.Context, unit planner.WorkUnit) Outcome {
	logger := s.logger.WithContext(ctx)
	logger.Debug().
		Str("service", unit.Service).
		Str("region", unit.Region).
		Msg("unit started")

	// In-flight calls survive cancellation; only dispatch stops.
	callCtx := context.WithoutCancel(ctx)

	start := time.Now()
	records, err := unit.Collector.Collect(callCtx, unit.Region)
	elapsed := time.Since(start)

	s.metrics.RecordUnit(ctx, unit.Service, unit.Region, elapsed, len(records), err != nil)

	if err != nil {
		logger.Warn().
			Err(err).
			Str("service", unit.Service).
			Str("region", unit.Region).
			Dur("elapsed", elapsed).
			Msg("unit failed")
		return Outcome{Unit: unit, Err: err, Elapsed: elapsed}
	}

	logger.Debug().
		Str("service", unit.Service).
		Str("region", unit.Region).
		Int("records", len(records)).
		Dur("elapsed", elapsed).
		Msg("unit complete")

	return Outcome{Unit: unit, Records: records, Elapsed: elapsed}
}

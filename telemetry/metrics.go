package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ScanMetrics holds the instruments the scheduler records per work unit.
type ScanMetrics struct {
	UnitsCompleted      metric.Int64Counter
	UnitsFailed         metric.Int64Counter
	ResourcesDiscovered metric.Int64Counter
	UnitDuration        metric.Float64Histogram
}

// NewScanMetrics creates the scan instruments on the given meter. A nil meter
// uses the global provider, which is a no-op until InitOTEL runs; the
// scheduler works the same either way.
func NewScanMetrics(meter metric.Meter) (*ScanMetrics, error) {
	if meter == nil {
		meter = otel.Meter("github.com/awsmap/awsmap")
	}

	m := &ScanMetrics{}
	var err error

	m.UnitsCompleted, err = meter.Int64Counter("awsmap.units.completed.total",
		metric.WithDescription("Work units that finished, including failures"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	m.UnitsFailed, err = meter.Int64Counter("awsmap.units.failed.total",
		metric.WithDescription("Work units whose collector returned an error"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	m.ResourcesDiscovered, err = meter.Int64Counter("awsmap.resources.discovered.total",
		metric.WithDescription("Resources returned by successful work units"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	m.UnitDuration, err = meter.Float64Histogram("awsmap.unit.duration.seconds",
		metric.WithDescription("Elapsed time of one collector invocation"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordUnit records the outcome of one work unit.
func (m *ScanMetrics) RecordUnit(ctx context.Context, service, region string, elapsed time.Duration, records int, failed bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("region", region),
	)
	m.UnitsCompleted.Add(ctx, 1, attrs)
	m.UnitDuration.Record(ctx, elapsed.Seconds(), attrs)
	if failed {
		m.UnitsFailed.Add(ctx, 1, attrs)
		return
	}
	m.ResourcesDiscovered.Add(ctx, int64(records), attrs)
}

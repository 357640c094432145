package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awsmap/awsmap/collector"
	"github.com/awsmap/awsmap/inventory"
	"github.com/awsmap/awsmap/planner"
)

func unit(service, region string, fn func(ctx context.Context, region string) ([]inventory.Record, error)) planner.WorkUnit {
	return planner.WorkUnit{
		Service:   service,
		Region:    region,
		Collector: collector.Func{Name: service, Fn: fn},
	}
}

func okCollect(service string) func(ctx context.Context, region string) ([]inventory.Record, error) {
	return func(ctx context.Context, region string) ([]inventory.Record, error) {
		return []inventory.Record{{Service: service, Type: "thing", ID: service + "-1", Region: region}}, nil
	}
}

func TestRunProducesOneOutcomePerUnit(t *testing.T) {
	units := []planner.WorkUnit{
		unit("ec2", "us-east-1", okCollect("ec2")),
		unit("rds", "us-east-1", okCollect("rds")),
		unit("sqs", "eu-west-1", okCollect("sqs")),
	}

	outcomes := New(WithWidth(2)).Run(context.Background(), units)

	require.Len(t, outcomes, 3)
	seen := make(map[string]bool)
	for _, o := range outcomes {
		require.NoError(t, o.Err)
		require.Len(t, o.Records, 1)
		assert.GreaterOrEqual(t, o.Elapsed, time.Duration(0))
		seen[o.Unit.Service] = true
	}
	assert.Len(t, seen, 3)
}

func TestRunFailureIsolation(t *testing.T) {
	boom := errors.New("throttled")
	units := []planner.WorkUnit{
		unit("ec2", "us-east-1", okCollect("ec2")),
		unit("rds", "us-east-1", func(ctx context.Context, region string) ([]inventory.Record, error) {
			return nil, boom
		}),
		unit("sqs", "us-east-1", okCollect("sqs")),
		unit("eks", "us-east-1", okCollect("eks")),
	}

	outcomes := New(WithWidth(4)).Run(context.Background(), units)

	require.Len(t, outcomes, 4, "a failing unit never swallows its siblings")
	var failed, succeeded int
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			assert.Equal(t, "rds", o.Unit.Service)
			assert.Empty(t, o.Records, "failed units carry no records")
			assert.True(t, errors.Is(o.Err, boom))
		} else {
			succeeded++
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 3, succeeded)
}

func TestRunBoundedConcurrency(t *testing.T) {
	const width = 3
	var current, peak atomic.Int32

	var units []planner.WorkUnit
	for i := 0; i < 20; i++ {
		units = append(units, unit(fmt.Sprintf("svc%d", i), "us-east-1",
			func(ctx context.Context, region string) ([]inventory.Record, error) {
				n := current.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				current.Add(-1)
				return nil, nil
			}))
	}

	outcomes := New(WithWidth(width)).Run(context.Background(), units)

	require.Len(t, outcomes, 20)
	assert.LessOrEqual(t, peak.Load(), int32(width))
}

func TestRunCancellationStopsDispatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	proceed := make(chan struct{})
	var once sync.Once

	blocker := func(c context.Context, region string) ([]inventory.Record, error) {
		once.Do(func() { close(started) })
		<-proceed
		return []inventory.Record{{Service: "ec2", Type: "thing", ID: "a", Region: region}}, nil
	}

	units := []planner.WorkUnit{
		unit("ec2", "us-east-1", blocker),
		unit("ec2", "eu-west-1", blocker),
		unit("ec2", "ap-south-1", blocker),
	}

	done := make(chan []Outcome, 1)
	go func() {
		done <- New(WithWidth(1)).Run(ctx, units)
	}()

	// First unit is in flight and the single worker is busy, so the
	// dispatcher is blocked on the second unit. Cancelling now must stop
	// dispatch deterministically.
	<-started
	cancel()
	// Give the dispatcher time to observe cancellation before the worker
	// frees up; the queue send stays unready until then.
	time.Sleep(50 * time.Millisecond)
	close(proceed)

	outcomes := <-done
	require.Len(t, outcomes, 1, "only the in-flight unit completes after cancellation")
	assert.NoError(t, outcomes[0].Err, "in-flight units run to completion, not truncation")
	assert.Len(t, outcomes[0].Records, 1)
}

func TestRunPreCancelledDispatchesNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	var units []planner.WorkUnit
	for i := 0; i < 8; i++ {
		units = append(units, unit(fmt.Sprintf("svc%d", i), "us-east-1",
			func(c context.Context, region string) ([]inventory.Record, error) {
				calls.Add(1)
				return nil, nil
			}))
	}

	// Idle workers make both select branches ready at once; the dispatcher
	// must still prefer the dead context. Repeat to shake out the race.
	for i := 0; i < 50; i++ {
		outcomes := New(WithWidth(4)).Run(ctx, units)
		assert.Empty(t, outcomes, "a dead context must never hand out a unit")
	}
	assert.Zero(t, calls.Load())
}

func TestRunInFlightSurvivesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The collector cancels the scan mid-call and must still observe a live
	// context of its own.
	var sawLiveContext atomic.Bool
	units := []planner.WorkUnit{
		unit("ec2", "us-east-1", func(c context.Context, region string) ([]inventory.Record, error) {
			cancel()
			sawLiveContext.Store(c.Err() == nil)
			return []inventory.Record{{Service: "ec2", Type: "thing", ID: "a", Region: region}}, nil
		}),
	}

	outcomes := New(WithWidth(1)).Run(ctx, units)

	require.Len(t, outcomes, 1)
	require.NoError(t, outcomes[0].Err)
	assert.True(t, sawLiveContext.Load(), "in-flight calls run under a detached context")
}

func TestRunEmptyPlan(t *testing.T) {
	outcomes := New().Run(context.Background(), nil)
	assert.Nil(t, outcomes)
}

func TestWithWidthClampsToOne(t *testing.T) {
	s := New(WithWidth(0))
	assert.Equal(t, 1, s.width)
	s = New(WithWidth(-5))
	assert.Equal(t, 1, s.width)
}

func TestDefaultWidth(t *testing.T) {
	assert.Equal(t, 40, New().width)
}

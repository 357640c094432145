package aggregator

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awsmap/awsmap/inventory"
	"github.com/awsmap/awsmap/planner"
	"github.com/awsmap/awsmap/scheduler"
	"github.com/awsmap/awsmap/tagfilter"
)

func outcome(service, region string, records ...inventory.Record) scheduler.Outcome {
	return scheduler.Outcome{
		Unit:    planner.WorkUnit{Service: service, Region: region},
		Records: records,
		Elapsed: 10 * time.Millisecond,
	}
}

func record(service, typ, id, region string, tags map[string]string) inventory.Record {
	return inventory.Record{
		Service: service,
		Type:    typ,
		ID:      id,
		Name:    id,
		Region:  region,
		Tags:    tags,
	}
}

func TestAggregateDeterministicOrder(t *testing.T) {
	outcomes := []scheduler.Outcome{
		outcome("sqs", "us-east-1", record("sqs", "queue", "q1", "us-east-1", nil)),
		outcome("ec2", "us-west-2", record("ec2", "instance", "i-2", "us-west-2", nil)),
		outcome("ec2", "us-east-1",
			record("ec2", "volume", "v-1", "us-east-1", nil),
			record("ec2", "instance", "i-1", "us-east-1", nil),
		),
	}
	shuffled := []scheduler.Outcome{outcomes[2], outcomes[0], outcomes[1]}

	first := Aggregate(outcomes, Options{Started: time.Now()})
	second := Aggregate(shuffled, Options{Started: time.Now()})

	require.Len(t, first.Records, 4)
	assert.Equal(t, first.Records, second.Records, "record order is independent of completion order")

	ids := make([]string, 0, len(first.Records))
	for _, r := range first.Records {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"i-1", "v-1", "i-2", "q1"}, ids)
}

func TestAggregateDedupLastWins(t *testing.T) {
	stale := record("ec2", "instance", "i-1", "us-east-1", map[string]string{"State": "pending"})
	fresh := record("ec2", "instance", "i-1", "us-east-1", map[string]string{"State": "running"})

	result := Aggregate([]scheduler.Outcome{
		outcome("ec2", "us-east-1", stale),
		outcome("ec2", "us-east-1", fresh),
	}, Options{Started: time.Now()})

	require.Len(t, result.Records, 1)
	assert.Equal(t, "running", result.Records[0].Tags["State"])
}

func TestAggregateErrors(t *testing.T) {
	outcomes := []scheduler.Outcome{
		outcome("ec2", "us-east-1", record("ec2", "instance", "i-1", "us-east-1", nil)),
		{
			Unit: planner.WorkUnit{Service: "sqs", Region: "us-west-2"},
			Err:  errors.New("access denied"),
		},
		{
			Unit: planner.WorkUnit{Service: "rds", Region: "eu-west-1"},
			Err:  errors.New("throttled"),
		},
	}

	result := Aggregate(outcomes, Options{Started: time.Now()})

	require.Len(t, result.Records, 1, "failures never hide successful units")
	require.Len(t, result.Errors, 2)
	// Sorted by service then region, regardless of completion order.
	assert.Equal(t, "rds", result.Errors[0].Service)
	assert.Equal(t, "sqs", result.Errors[1].Service)
	assert.Equal(t, "access denied", result.Errors[1].Message)
}

func TestAggregateTagFilter(t *testing.T) {
	spec := tagfilter.Spec{"Owner": {"John", "Jane"}, "Env": {"Prod"}}

	result := Aggregate([]scheduler.Outcome{
		outcome("ec2", "us-east-1",
			record("ec2", "instance", "i-keep", "us-east-1", map[string]string{"Owner": "Jane", "Env": "Prod"}),
			record("ec2", "instance", "i-wrong-owner", "us-east-1", map[string]string{"Owner": "Bob", "Env": "Prod"}),
			record("ec2", "instance", "i-no-env", "us-east-1", map[string]string{"Owner": "John"}),
		),
	}, Options{Filter: spec, Started: time.Now()})

	require.Len(t, result.Records, 1)
	assert.Equal(t, "i-keep", result.Records[0].ID)
	assert.Equal(t, map[string][]string(spec), result.Metadata.TagFilter)
}

func TestAggregateExclusions(t *testing.T) {
	defaultSG := record("ec2", "security_group", "sg-1", "us-east-1", nil)
	defaultSG.Name = "default"
	defaultVPC := record("ec2", "vpc", "vpc-1", "us-east-1", nil)
	defaultVPC.Details = map[string]any{"is_default": true}
	awsKey := record("kms", "key", "k-1", "us-east-1", nil)
	awsKey.Name = "aws/s3"

	result := Aggregate([]scheduler.Outcome{
		outcome("ec2", "us-east-1",
			defaultSG,
			defaultVPC,
			record("ec2", "instance", "i-1", "us-east-1", nil),
		),
		outcome("kms", "us-east-1", awsKey),
		outcome("rds", "us-east-1", record("rds", "parameter_group", "default.mysql8.0", "us-east-1", nil)),
	}, Options{Started: time.Now()})

	require.Len(t, result.Records, 1)
	assert.Equal(t, "i-1", result.Records[0].ID)
}

func TestAggregateSelfRegionalRegionFilter(t *testing.T) {
	buckets := outcome("s3", "eu-west-1",
		record("s3", "bucket", "logs-eu", "eu-west-1", nil),
		record("s3", "bucket", "logs-us", "us-east-1", nil),
	)

	// Region-restricted run: buckets outside the restriction are dropped.
	restricted := Aggregate([]scheduler.Outcome{buckets}, Options{
		Regions: []string{"eu-west-1"},
		Started: time.Now(),
	})
	require.Len(t, restricted.Records, 1)
	assert.Equal(t, "logs-eu", restricted.Records[0].ID)

	// Unrestricted run: everything passes.
	full := Aggregate([]scheduler.Outcome{buckets}, Options{Started: time.Now()})
	assert.Len(t, full.Records, 2)
}

func TestAggregateRegionFilterOnlyAppliesToSelfRegional(t *testing.T) {
	// A regional service never has its records region-filtered here; the
	// resolver already pinned its units.
	result := Aggregate([]scheduler.Outcome{
		outcome("ec2", "us-east-1", record("ec2", "instance", "i-1", "us-east-1", nil)),
	}, Options{Regions: []string{"eu-west-1"}, Started: time.Now()})

	assert.Len(t, result.Records, 1)
}

func TestAggregateMetadata(t *testing.T) {
	started := time.Now().Add(-2 * time.Second)
	result := Aggregate([]scheduler.Outcome{
		outcome("ec2", "us-east-1", record("ec2", "instance", "i-1", "us-east-1", nil)),
	}, Options{
		AccountID:       "123456789012",
		AccountAlias:    "prod",
		ServicesScanned: 1,
		RegionsScanned:  1,
		Started:         started,
	})

	assert.Equal(t, "123456789012", result.Metadata.AccountID)
	assert.Equal(t, "prod", result.Metadata.AccountAlias)
	assert.Equal(t, 1, result.Metadata.ResourceCount)
	assert.Equal(t, started.UTC(), result.Metadata.Timestamp)
	assert.GreaterOrEqual(t, result.Metadata.Duration, 2*time.Second)
	assert.Nil(t, result.Metadata.ServiceTimings, "timings are opt-in")
}

func TestAggregateTimings(t *testing.T) {
	result := Aggregate([]scheduler.Outcome{
		outcome("ec2", "us-east-1", record("ec2", "instance", "i-1", "us-east-1", nil)),
		outcome("ec2", "eu-west-1"),
	}, Options{Timings: true, Started: time.Now()})

	require.NotNil(t, result.Metadata.ServiceTimings)
	assert.Equal(t, 20*time.Millisecond, result.Metadata.ServiceTimings["ec2"])
}

func TestAggregateNormalizesNilMaps(t *testing.T) {
	r := inventory.Record{Service: "ec2", Type: "instance", ID: "i-1", Region: "us-east-1"}
	result := Aggregate([]scheduler.Outcome{outcome("ec2", "us-east-1", r)}, Options{Started: time.Now()})

	require.Len(t, result.Records, 1)
	assert.NotNil(t, result.Records[0].Tags)
	assert.NotNil(t, result.Records[0].Details)
}

func TestAggregatePanicsOnCorruptOutcome(t *testing.T) {
	assert.Panics(t, func() {
		Aggregate([]scheduler.Outcome{{}}, Options{Started: time.Now()})
	})
}

func TestAggregateEmpty(t *testing.T) {
	result := Aggregate(nil, Options{Started: time.Now()})
	assert.Empty(t, result.Records)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 0, result.Metadata.ResourceCount)
}

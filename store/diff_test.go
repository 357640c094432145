package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awsmap/awsmap/inventory"
)

func result(records ...inventory.Record) *inventory.ScanResult {
	return &inventory.ScanResult{Records: records}
}

func instance(id string, tags map[string]string) inventory.Record {
	return inventory.Record{
		Service: "ec2",
		Type:    "instance",
		ID:      id,
		Region:  "us-east-1",
		Tags:    tags,
	}
}

func TestDiffNoChanges(t *testing.T) {
	a := instance("i-1", map[string]string{"Env": "prod"})
	changes := Diff(result(a), result(a))
	assert.True(t, changes.Empty())
}

func TestDiffAddedRemoved(t *testing.T) {
	older := result(instance("i-1", nil), instance("i-2", nil))
	newer := result(instance("i-2", nil), instance("i-3", nil))

	changes := Diff(older, newer)

	require.Len(t, changes.Added, 1)
	assert.Equal(t, "i-3", changes.Added[0].ID)
	require.Len(t, changes.Removed, 1)
	assert.Equal(t, "i-1", changes.Removed[0].ID)
	assert.Empty(t, changes.Changed)
}

func TestDiffChangedTags(t *testing.T) {
	older := result(instance("i-1", map[string]string{"Env": "staging"}))
	newer := result(instance("i-1", map[string]string{"Env": "prod"}))

	changes := Diff(older, newer)

	require.Len(t, changes.Changed, 1)
	assert.Equal(t, "prod", changes.Changed[0].Tags["Env"], "the newer copy is reported")
	assert.Empty(t, changes.Added)
	assert.Empty(t, changes.Removed)
}

func TestDiffChangedDetails(t *testing.T) {
	a := instance("i-1", nil)
	a.Details = map[string]any{"state": "running"}
	b := instance("i-1", nil)
	b.Details = map[string]any{"state": "stopped"}

	changes := Diff(result(a), result(b))
	require.Len(t, changes.Changed, 1)
}

func TestDiffIdentityIsFourPart(t *testing.T) {
	// The same ID in a different region is a distinct resource.
	a := instance("i-1", nil)
	b := instance("i-1", nil)
	b.Region = "eu-west-1"

	changes := Diff(result(a), result(b))
	require.Len(t, changes.Added, 1)
	require.Len(t, changes.Removed, 1)
}

func TestDiffEmptyScans(t *testing.T) {
	changes := Diff(result(), result())
	assert.True(t, changes.Empty())
}

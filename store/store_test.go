package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awsmap/awsmap/inventory"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func snapshotAt(ts time.Time, ids ...string) *inventory.ScanResult {
	records := make([]inventory.Record, 0, len(ids))
	for _, id := range ids {
		records = append(records, inventory.Record{
			Service: "ec2",
			Type:    "instance",
			ID:      id,
			Region:  "us-east-1",
			Tags:    map[string]string{},
			Details: map[string]any{},
		})
	}
	return &inventory.ScanResult{
		Metadata: inventory.Metadata{
			AccountID:     "123456789012",
			Timestamp:     ts,
			ResourceCount: len(records),
		},
		Records: records,
	}
}

func TestSaveAndLatest(t *testing.T) {
	s := tempStore(t)
	base := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.Save(snapshotAt(base, "i-1")))
	require.NoError(t, s.Save(snapshotAt(base.Add(time.Hour), "i-1", "i-2")))

	latest, err := s.Latest()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 2, latest.Metadata.ResourceCount)
	assert.Equal(t, base.Add(time.Hour), latest.Metadata.Timestamp)
}

func TestLatestEmpty(t *testing.T) {
	s := tempStore(t)
	latest, err := s.Latest()
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestLastTwo(t *testing.T) {
	s := tempStore(t)
	base := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.Save(snapshotAt(base, "i-1")))
	require.NoError(t, s.Save(snapshotAt(base.Add(time.Hour), "i-2")))
	require.NoError(t, s.Save(snapshotAt(base.Add(2*time.Hour), "i-3")))

	older, newer, err := s.LastTwo()
	require.NoError(t, err)
	require.NotNil(t, older)
	require.NotNil(t, newer)
	assert.Equal(t, base.Add(time.Hour), older.Metadata.Timestamp)
	assert.Equal(t, base.Add(2*time.Hour), newer.Metadata.Timestamp)
}

func TestLastTwoSingleSnapshot(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, s.Save(snapshotAt(time.Now().UTC(), "i-1")))

	older, newer, err := s.LastTwo()
	require.NoError(t, err)
	assert.Nil(t, older)
	assert.NotNil(t, newer)
}

func TestCount(t *testing.T) {
	s := tempStore(t)

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	base := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.Save(snapshotAt(base, "i-1")))
	require.NoError(t, s.Save(snapshotAt(base.Add(time.Minute), "i-1")))

	count, err = s.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSaveSameTimestampOverwrites(t *testing.T) {
	s := tempStore(t)
	ts := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.Save(snapshotAt(ts, "i-1")))
	require.NoError(t, s.Save(snapshotAt(ts, "i-1", "i-2")))

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	latest, err := s.Latest()
	require.NoError(t, err)
	assert.Equal(t, 2, latest.Metadata.ResourceCount)
}

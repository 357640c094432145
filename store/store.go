// Package store persists finished scan results in a local bbolt database so
// consecutive runs can be compared.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/awsmap/awsmap/inventory"
)

var snapshotBucket = []byte("snapshots")

// Store is a snapshot store over one bbolt file. Keys are RFC3339Nano scan
// timestamps, so bbolt's key order is chronological.
type Store struct {
	db *bolt.DB
}

// Open creates or opens the snapshot database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(snapshotBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create snapshot bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists one scan result keyed by its metadata timestamp.
func (s *Store) Save(result *inventory.ScanResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	key := []byte(result.Metadata.Timestamp.UTC().Format(time.RFC3339Nano))
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(snapshotBucket).Put(key, data)
	})
}

// Latest returns the most recent snapshot, or nil when the store is empty.
func (s *Store) Latest() (*inventory.ScanResult, error) {
	var result *inventory.ScanResult

	err := s.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket(snapshotBucket).Cursor()
		_, value := cursor.Last()
		if value == nil {
			return nil
		}
		result = &inventory.ScanResult{}
		return json.Unmarshal(value, result)
	})
	if err != nil {
		return nil, fmt.Errorf("load latest snapshot: %w", err)
	}

	return result, nil
}

// LastTwo returns the two most recent snapshots, older first. Either may be
// nil when fewer than two scans have been stored.
func (s *Store) LastTwo() (older, newer *inventory.ScanResult, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket(snapshotBucket).Cursor()

		_, newest := cursor.Last()
		if newest == nil {
			return nil
		}
		newer = &inventory.ScanResult{}
		if err := json.Unmarshal(newest, newer); err != nil {
			return err
		}

		_, previous := cursor.Prev()
		if previous == nil {
			return nil
		}
		older = &inventory.ScanResult{}
		return json.Unmarshal(previous, older)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("load snapshots: %w", err)
	}

	return older, newer, nil
}

// Count returns the number of stored snapshots.
func (s *Store) Count() (int, error) {
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(snapshotBucket).Stats().KeyN
		return nil
	})
	return count, err
}

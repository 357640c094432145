package store

import (
	"reflect"

	"github.com/awsmap/awsmap/inventory"
)

// ChangeSet describes what changed between two scans.
type ChangeSet struct {
	Added   []inventory.Record `json:"added"`
	Removed []inventory.Record `json:"removed"`
	Changed []inventory.Record `json:"changed"`
}

// Empty reports whether nothing changed.
func (c ChangeSet) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Changed) == 0
}

// Diff compares two scan results by record identity key. A record present in
// both but with different details or tags counts as changed (the newer copy
// is reported). Input results are already sorted, so output order follows
// the newer scan's order.
func Diff(older, newer *inventory.ScanResult) ChangeSet {
	var changes ChangeSet

	previous := make(map[inventory.Key]inventory.Record, len(older.Records))
	for _, record := range older.Records {
		previous[record.IdentityKey()] = record
	}

	seen := make(map[inventory.Key]bool, len(newer.Records))
	for _, record := range newer.Records {
		key := record.IdentityKey()
		seen[key] = true

		old, existed := previous[key]
		if !existed {
			changes.Added = append(changes.Added, record)
			continue
		}
		if !reflect.DeepEqual(old.Details, record.Details) || !reflect.DeepEqual(old.Tags, record.Tags) {
			changes.Changed = append(changes.Changed, record)
		}
	}

	for _, record := range older.Records {
		if !seen[record.IdentityKey()] {
			changes.Removed = append(changes.Removed, record)
		}
	}

	return changes
}

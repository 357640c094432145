// Package aggregator merges work-unit outcomes into one ordered, filtered
// ScanResult. It is the only place records are dropped: static provider
// default-noise exclusions, the user's tag filter, and the region-membership
// filter for self-regional services.
package aggregator

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/btree"

	"github.com/awsmap/awsmap/catalog"
	"github.com/awsmap/awsmap/inventory"
	"github.com/awsmap/awsmap/scheduler"
	"github.com/awsmap/awsmap/tagfilter"
	"github.com/awsmap/awsmap/telemetry"
)

// Options carries the run configuration the aggregation step needs.
type Options struct {
	AccountID    string
	AccountAlias string
	// Filter drops records whose tags do not match. Nil means no filtering.
	Filter tagfilter.Spec
	// Regions is the effective region set of a region-restricted run. When
	// non-empty, records of self-regional services whose true region falls
	// outside it are dropped here (the resolver cannot, it never sees them).
	// Empty means the run had no region restriction and everything passes.
	Regions []string
	// ServicesScanned / RegionsScanned feed the metadata block.
	ServicesScanned int
	RegionsScanned  int
	// Timings enables per-service elapsed-time totals in the metadata.
	Timings bool
	// Started stamps the metadata; the duration is measured against it.
	Started time.Time
}

// keyedRecord orders records in the dedup tree by identity key.
type keyedRecord struct {
	key    inventory.Key
	record inventory.Record
}

func (a keyedRecord) Less(b keyedRecord) bool {
	return a.key.Less(b.key)
}

// Aggregate builds the final ScanResult from all outcomes of a run. Two
// calls over the same outcome set, in any order, produce identical output:
// the btree imposes the (service, region, type, id) total order and
// ReplaceOrInsert makes the last-seen duplicate win.
//
// A structurally corrupt outcome (a unit that produced neither records nor
// an error reference) is a programming-contract violation and panics;
// remote failures never reach this path, they arrive as Outcome.Err.
func Aggregate(outcomes []scheduler.Outcome, opts Options) *inventory.ScanResult {
	logger := telemetry.NewLogger("aggregator")

	tree := btree.NewG[keyedRecord](2, keyedRecord.Less)
	var errs []inventory.UnitError
	timings := make(map[string]time.Duration)
	dropped := struct{ excluded, filtered, outOfRegion int }{}

	allowed := regionSet(opts.Regions)

	for _, outcome := range outcomes {
		if outcome.Unit.Service == "" {
			panic(fmt.Sprintf("aggregator: outcome without a unit: %+v", outcome))
		}

		timings[outcome.Unit.Service] += outcome.Elapsed

		if outcome.Err != nil {
			errs = append(errs, inventory.UnitError{
				Service: outcome.Unit.Service,
				Region:  outcome.Unit.Region,
				Message: outcome.Err.Error(),
			})
			continue
		}

		for _, record := range outcome.Records {
			record.NonNilMaps()

			if Excluded(record) {
				dropped.excluded++
				continue
			}
			if len(opts.Filter) > 0 && !tagfilter.Matches(record.Tags, opts.Filter) {
				dropped.filtered++
				continue
			}
			// Explicit region-membership filter for self-regional services:
			// the scan was restricted to regions the resolver never planned.
			if allowed != nil && catalog.SelfRegional(record.Service) && !allowed[record.Region] {
				dropped.outOfRegion++
				continue
			}

			tree.ReplaceOrInsert(keyedRecord{key: record.IdentityKey(), record: record})
		}
	}

	records := make([]inventory.Record, 0, tree.Len())
	tree.Ascend(func(item keyedRecord) bool {
		records = append(records, item.record)
		return true
	})

	sortErrors(errs)

	logger.Debug().
		Int("records", len(records)).
		Int("errors", len(errs)).
		Int("excluded", dropped.excluded).
		Int("tag_filtered", dropped.filtered).
		Int("out_of_region", dropped.outOfRegion).
		Msg("aggregation complete")

	meta := inventory.Metadata{
		AccountID:       opts.AccountID,
		AccountAlias:    opts.AccountAlias,
		Timestamp:       opts.Started.UTC(),
		Duration:        time.Since(opts.Started),
		ServicesScanned: opts.ServicesScanned,
		RegionsScanned:  opts.RegionsScanned,
		ResourceCount:   len(records),
		TagFilter:       opts.Filter,
	}
	if opts.Timings {
		meta.ServiceTimings = timings
	}

	return &inventory.ScanResult{
		Metadata: meta,
		Records:  records,
		Errors:   errs,
	}
}

func regionSet(regions []string) map[string]bool {
	if len(regions) == 0 {
		return nil
	}
	set := make(map[string]bool, len(regions))
	for _, r := range regions {
		set[r] = true
	}
	return set
}

// sortErrors orders the error list by service then region so the final
// result is reproducible regardless of completion order.
func sortErrors(errs []inventory.UnitError) {
	sort.Slice(errs, func(i, j int) bool {
		if errs[i].Service != errs[j].Service {
			return errs[i].Service < errs[j].Service
		}
		return errs[i].Region < errs[j].Region
	})
}

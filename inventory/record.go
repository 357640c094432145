// Package inventory defines the unified resource model shared by collectors,
// the scheduler and the aggregator.
package inventory

import "time"

// Record represents one discovered AWS resource in unified format.
// Details holds service-specific attributes and is never normalized further;
// any collector can add fields without touching the orchestrator.
type Record struct {
	Service string            `json:"service"`
	Type    string            `json:"type"`
	ID      string            `json:"id"`
	ARN     string            `json:"arn,omitempty"`
	Name    string            `json:"name,omitempty"`
	Region  string            `json:"region"`
	Details map[string]any    `json:"details"`
	Tags    map[string]string `json:"tags"`
}

// Key identifies a record within one account. Two records with the same key
// describe the same resource; the aggregator keeps the last one seen.
type Key struct {
	Service string
	Region  string
	Type    string
	ID      string
}

// IdentityKey returns the dedup/sort key for the record.
func (r Record) IdentityKey() Key {
	return Key{Service: r.Service, Region: r.Region, Type: r.Type, ID: r.ID}
}

// Less orders keys by service, then region, then type, then id. This is the
// total order every ScanResult is emitted in.
func (k Key) Less(other Key) bool {
	if k.Service != other.Service {
		return k.Service < other.Service
	}
	if k.Region != other.Region {
		return k.Region < other.Region
	}
	if k.Type != other.Type {
		return k.Type < other.Type
	}
	return k.ID < other.ID
}

// Valid reports whether the record carries the mandatory identity fields.
func (r Record) Valid() bool {
	return r.Service != "" && r.Type != "" && r.ID != "" && r.Region != ""
}

// UnitError describes one failed (service, region) work unit.
type UnitError struct {
	Service string `json:"service"`
	Region  string `json:"region"`
	Message string `json:"message"`
}

// Metadata describes one finished scan run.
type Metadata struct {
	AccountID       string                   `json:"account_id"`
	AccountAlias    string                   `json:"account_alias,omitempty"`
	Timestamp       time.Time                `json:"timestamp"`
	Duration        time.Duration            `json:"scan_duration"`
	ServicesScanned int                      `json:"services_scanned"`
	RegionsScanned  int                      `json:"regions_scanned"`
	ResourceCount   int                      `json:"resource_count"`
	TagFilter       map[string][]string      `json:"tag_filter,omitempty"`
	ServiceTimings  map[string]time.Duration `json:"service_timings,omitempty"`
}

// ScanResult is the aggregate handed to report exporters. It is constructed
// once per run and never mutated afterwards.
type ScanResult struct {
	Metadata Metadata    `json:"metadata"`
	Records  []Record    `json:"resources"`
	Errors   []UnitError `json:"errors,omitempty"`
}

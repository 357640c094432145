// Package planner resolves which (service, region) pairs a scan run executes.
// The plan is computed once, up front; the scheduler never generates work
// mid-run.
package planner

import (
	"fmt"
	"sort"

	"github.com/awsmap/awsmap/catalog"
	"github.com/awsmap/awsmap/collector"
)

// WorkUnit is one (service, region) pair scheduled for independent
// execution. Created here, consumed exactly once by the scheduler, never
// mutated after creation.
type WorkUnit struct {
	Service   string
	Region    string
	Collector collector.Collector
}

// UnknownServiceError reports a requested service the catalog does not know.
// It is fatal to that service only; the rest of the plan proceeds.
type UnknownServiceError struct {
	Service string
}

func (e *UnknownServiceError) Error() string {
	return fmt.Sprintf("unknown service %q", e.Service)
}

// Request carries the caller-supplied scan configuration the planner acts on.
type Request struct {
	// EnabledRegions is the account's enabled region list (opaque input).
	EnabledRegions []string
	// Regions restricts the scan; empty means all enabled regions.
	Regions []string
	// Services restricts the scan; empty means all cataloged services.
	Services []string
	// IncludeGlobal forces global services into the plan even when the
	// region restriction excludes their control-plane region.
	IncludeGlobal bool
}

// Restricted reports whether the caller narrowed the region set.
func (r Request) Restricted() bool { return len(r.Regions) > 0 }

// EffectiveRegions is the region set regional services fan out over.
func (r Request) EffectiveRegions() []string {
	if len(r.Regions) > 0 {
		return r.Regions
	}
	return r.EnabledRegions
}

// Plan computes the ordered work-unit set for a run. Unknown services and
// services with no registered collector are reported as planning errors
// without aborting the rest of the plan.
//
// Global services yield exactly one unit pinned to their control-plane
// region, included when no region restriction was given, when the restriction
// contains the control-plane region, or when IncludeGlobal is set. Regional
// services yield one unit per effective region. Self-regional services (S3)
// are listed account-wide in a single call, so they yield one unit; their
// records self-report a region and the aggregator applies the region filter.
func Plan(req Request, reg *collector.Registry) ([]WorkUnit, []error) {
	services := req.Services
	if len(services) == 0 {
		// Full scan covers every service with a registered collector; the
		// catalog may describe more services than this build implements.
		services = reg.Services()
	} else {
		services = normalize(services)
	}

	regions := req.EffectiveRegions()

	var units []WorkUnit
	var errs []error

	for _, service := range services {
		if !catalog.Known(service) {
			errs = append(errs, &UnknownServiceError{Service: service})
			continue
		}
		col, err := reg.Lookup(service)
		if err != nil {
			errs = append(errs, fmt.Errorf("plan %s: %w", service, err))
			continue
		}

		switch {
		case catalog.IsGlobal(service):
			cp := catalog.ControlPlaneRegion(service)
			if includeGlobal(req, cp) {
				units = append(units, WorkUnit{Service: service, Region: cp, Collector: col})
			}
		case catalog.SelfRegional(service):
			// One account-wide listing; attribute the call to the first
			// effective region, records carry their own.
			if len(regions) > 0 {
				units = append(units, WorkUnit{Service: service, Region: regions[0], Collector: col})
			}
		default:
			for _, region := range regions {
				units = append(units, WorkUnit{Service: service, Region: region, Collector: col})
			}
		}
	}

	return units, errs
}

// includeGlobal evaluates the global-service inclusion rule. It is checked
// independently of the regional fan-out, so an empty effective region set
// still admits global services on a full-account scan.
func includeGlobal(req Request, controlPlane string) bool {
	if !req.Restricted() || req.IncludeGlobal {
		return true
	}
	for _, region := range req.Regions {
		if region == controlPlane {
			return true
		}
	}
	return false
}

// normalize dedups and sorts a requested service list so plan output is
// stable regardless of flag order.
func normalize(services []string) []string {
	seen := make(map[string]bool, len(services))
	out := make([]string, 0, len(services))
	for _, s := range services {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Summary counts the plan by service for progress reporting.
func Summary(units []WorkUnit) map[string]int {
	counts := make(map[string]int)
	for _, u := range units {
		counts[u.Service]++
	}
	return counts
}

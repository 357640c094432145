// Package collector defines the enumeration interface the orchestrator
// consumes and a registry mapping service identifiers to implementations.
// The orchestrator never depends on a concrete collector; it looks one up by
// the service's catalog key and invokes it per planned region.
package collector

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/awsmap/awsmap/inventory"
)

// Collector enumerates all resources of one service in one region.
// Implementations must be read-only and idempotent, and must return an empty
// slice (not an error) when nothing is found. Retry and backoff for
// throttling is internal to the implementation.
type Collector interface {
	// Service returns the catalog key this collector serves.
	Service() string
	// Collect lists resources in the given region. For global services the
	// region is the control-plane region and is informational only.
	Collect(ctx context.Context, region string) ([]inventory.Record, error)
}

// Func adapts a plain function to the Collector interface.
type Func struct {
	Name string
	Fn   func(ctx context.Context, region string) ([]inventory.Record, error)
}

func (f Func) Service() string { return f.Name }

func (f Func) Collect(ctx context.Context, region string) ([]inventory.Record, error) {
	return f.Fn(ctx, region)
}

// ErrNotRegistered is wrapped by Lookup when no collector serves a service.
var ErrNotRegistered = fmt.Errorf("no collector registered")

// Registry maps service identifiers to collectors.
type Registry struct {
	mu         sync.RWMutex
	collectors map[string]Collector
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{collectors: make(map[string]Collector)}
}

// Register adds a collector. Registering the same service twice replaces the
// previous collector; providers register at wiring time, before any scan.
func (r *Registry) Register(c Collector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collectors[c.Service()] = c
}

// Lookup returns the collector for a service.
func (r *Registry) Lookup(service string) (Collector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.collectors[service]
	if !ok {
		return nil, fmt.Errorf("%w for service %q", ErrNotRegistered, service)
	}
	return c, nil
}

// Services returns the sorted list of registered service identifiers.
func (r *Registry) Services() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.collectors))
	for name := range r.collectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

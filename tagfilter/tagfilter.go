// Package tagfilter evaluates resource tag sets against a filter
// specification: OR within a key's accepted values, AND across keys.
package tagfilter

import (
	"fmt"
	"strings"
)

// Spec maps a tag key to its accepted values. An empty spec matches
// everything.
type Spec map[string][]string

// Parse builds a Spec from Key=Value pairs as given on the command line.
// Repeating a key ORs its values; distinct keys are ANDed.
func Parse(pairs []string) (Spec, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	spec := make(Spec)
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid tag filter %q: expected Key=Value", pair)
		}
		spec[key] = append(spec[key], value)
	}
	return spec, nil
}

// Matches reports whether tags satisfy the spec. Every key in the spec must
// be present on the resource with one of that key's accepted values; a
// resource missing a spec key never matches that clause.
func Matches(tags map[string]string, spec Spec) bool {
	for key, accepted := range spec {
		value, ok := tags[key]
		if !ok {
			return false
		}
		if !contains(accepted, value) {
			return false
		}
	}
	return true
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

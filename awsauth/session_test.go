package awsauth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/awsmap/awsmap/catalog"
)

func TestFallbackRegions(t *testing.T) {
	assert.NotEmpty(t, fallbackRegions)

	seen := make(map[string]bool)
	for _, region := range fallbackRegions {
		assert.False(t, seen[region], "duplicate fallback region %s", region)
		seen[region] = true
	}

	// Both control-plane regions must survive the fallback, or global
	// services silently disappear from offline-planned scans.
	assert.True(t, seen["us-east-1"])
	assert.True(t, seen["us-west-2"])
	for _, service := range catalog.All() {
		if cp := catalog.ControlPlaneRegion(service); cp != "" {
			assert.True(t, seen[cp], "control plane %s of %s missing from fallback", cp, service)
		}
	}
}

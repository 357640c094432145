package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awsmap/awsmap/collector"
	"github.com/awsmap/awsmap/inventory"
)

func registryWith(services ...string) *collector.Registry {
	reg := collector.NewRegistry()
	for _, name := range services {
		name := name
		reg.Register(collector.Func{
			Name: name,
			Fn: func(ctx context.Context, region string) ([]inventory.Record, error) {
				return nil, nil
			},
		})
	}
	return reg
}

func unitSet(units []WorkUnit) map[[2]string]bool {
	set := make(map[[2]string]bool, len(units))
	for _, u := range units {
		set[[2]string{u.Service, u.Region}] = true
	}
	return set
}

func TestPlanRegionalCrossProduct(t *testing.T) {
	reg := registryWith("ec2", "rds")
	units, errs := Plan(Request{
		Regions:  []string{"us-east-1", "eu-west-1"},
		Services: []string{"ec2", "rds"},
	}, reg)

	require.Empty(t, errs)
	require.Len(t, units, 4)
	set := unitSet(units)
	assert.True(t, set[[2]string{"ec2", "us-east-1"}])
	assert.True(t, set[[2]string{"ec2", "eu-west-1"}])
	assert.True(t, set[[2]string{"rds", "us-east-1"}])
	assert.True(t, set[[2]string{"rds", "eu-west-1"}])
}

func TestPlanGlobalInclusion(t *testing.T) {
	tests := []struct {
		name          string
		regions       []string
		includeGlobal bool
		wantIAM       bool
	}{
		{"unrestricted run includes global", nil, false, true},
		{"restriction covering control plane includes global", []string{"us-east-1", "eu-west-1"}, false, true},
		{"restriction excluding control plane drops global", []string{"eu-west-1"}, false, false},
		{"include-global overrides the restriction", []string{"eu-west-1"}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := registryWith("iam")
			units, errs := Plan(Request{
				EnabledRegions: []string{"us-east-1", "eu-west-1", "ap-south-1"},
				Regions:        tt.regions,
				Services:       []string{"iam"},
				IncludeGlobal:  tt.includeGlobal,
			}, reg)

			require.Empty(t, errs)
			if !tt.wantIAM {
				assert.Empty(t, units)
				return
			}
			require.Len(t, units, 1, "global services are planned exactly once")
			assert.Equal(t, "iam", units[0].Service)
			assert.Equal(t, "us-east-1", units[0].Region, "global unit is pinned to its control plane")
		})
	}
}

func TestPlanGlobalNeverFansOut(t *testing.T) {
	reg := registryWith("iam", "ec2")
	units, errs := Plan(Request{
		EnabledRegions: []string{"us-east-1", "eu-west-1", "ap-south-1"},
		Services:       []string{"iam", "ec2"},
	}, reg)

	require.Empty(t, errs)
	counts := Summary(units)
	assert.Equal(t, 1, counts["iam"])
	assert.Equal(t, 3, counts["ec2"])
}

func TestPlanSelfRegionalSingleUnit(t *testing.T) {
	reg := registryWith("s3")
	units, errs := Plan(Request{
		Regions:  []string{"eu-west-1", "us-east-1"},
		Services: []string{"s3"},
	}, reg)

	require.Empty(t, errs)
	require.Len(t, units, 1, "account-wide listing is planned once, not per region")
	assert.Equal(t, "s3", units[0].Service)
	assert.Equal(t, "eu-west-1", units[0].Region)
}

func TestPlanEmptyRegions(t *testing.T) {
	// No restriction and no enabled regions: regional services produce
	// nothing, but a global service still runs.
	reg := registryWith("ec2", "iam")
	units, errs := Plan(Request{Services: []string{"ec2", "iam"}}, reg)

	require.Empty(t, errs)
	require.Len(t, units, 1)
	assert.Equal(t, "iam", units[0].Service)
}

func TestPlanUnknownService(t *testing.T) {
	reg := registryWith("ec2")
	units, errs := Plan(Request{
		Regions:  []string{"us-east-1"},
		Services: []string{"ec2", "nosuch"},
	}, reg)

	require.Len(t, errs, 1)
	var unknown *UnknownServiceError
	require.True(t, errors.As(errs[0], &unknown))
	assert.Equal(t, "nosuch", unknown.Service)

	// The valid service still plans.
	require.Len(t, units, 1)
	assert.Equal(t, "ec2", units[0].Service)
}

func TestPlanUnregisteredService(t *testing.T) {
	// Cataloged but without a collector in this build.
	reg := registryWith("ec2")
	units, errs := Plan(Request{
		Regions:  []string{"us-east-1"},
		Services: []string{"ec2", "organizations"},
	}, reg)

	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], collector.ErrNotRegistered))
	require.Len(t, units, 1)
	assert.Equal(t, "ec2", units[0].Service)
}

func TestPlanDefaultsToRegisteredServices(t *testing.T) {
	reg := registryWith("ec2", "rds")
	units, errs := Plan(Request{Regions: []string{"us-east-1"}}, reg)

	require.Empty(t, errs)
	counts := Summary(units)
	assert.Len(t, counts, 2)
	assert.Equal(t, 1, counts["ec2"])
	assert.Equal(t, 1, counts["rds"])
}

func TestPlanDedupsRequestedServices(t *testing.T) {
	reg := registryWith("ec2")
	units, errs := Plan(Request{
		Regions:  []string{"us-east-1"},
		Services: []string{"ec2", "ec2", ""},
	}, reg)

	require.Empty(t, errs)
	assert.Len(t, units, 1)
}

func TestPlanCarriesCollector(t *testing.T) {
	reg := registryWith("ec2")
	units, _ := Plan(Request{Regions: []string{"us-east-1"}, Services: []string{"ec2"}}, reg)
	require.Len(t, units, 1)
	require.NotNil(t, units[0].Collector)
	assert.Equal(t, "ec2", units[0].Collector.Service())
}

func TestEffectiveRegions(t *testing.T) {
	req := Request{EnabledRegions: []string{"a", "b"}}
	assert.Equal(t, []string{"a", "b"}, req.EffectiveRegions())
	assert.False(t, req.Restricted())

	req.Regions = []string{"c"}
	assert.Equal(t, []string{"c"}, req.EffectiveRegions())
	assert.True(t, req.Restricted())
}

// Package catalog holds static per-service metadata: which services are
// global (account-wide rather than per-region) and which region hosts their
// control plane. The table is compile-time data with no external I/O;
// a malformed entry is a build problem, never a runtime one.
package catalog

import "sort"

// Entry describes one service's scan behavior.
type Entry struct {
	// Global services are scanned once per account and attributed to
	// ControlPlaneRegion instead of once per region.
	Global bool
	// ControlPlaneRegion is set only for global services.
	ControlPlaneRegion string
	// SelfRegional marks the one exception to regional-vs-global: the
	// service is listed account-wide but every resource reports its own
	// true region (S3 buckets). Planned once, region-filtered by the
	// aggregator.
	SelfRegional bool
}

// Control plane attribution follows the AWS fault isolation boundaries
// whitepaper: most global services live in us-east-1, a few in us-west-2.
var entries = map[string]Entry{
	// us-east-1 control plane
	"iam":            {Global: true, ControlPlaneRegion: "us-east-1"},
	"organizations":  {Global: true, ControlPlaneRegion: "us-east-1"},
	"route53":        {Global: true, ControlPlaneRegion: "us-east-1"},
	"route53domains": {Global: true, ControlPlaneRegion: "us-east-1"},
	"cloudfront":     {Global: true, ControlPlaneRegion: "us-east-1"},
	"shield":         {Global: true, ControlPlaneRegion: "us-east-1"},
	"budgets":        {Global: true, ControlPlaneRegion: "us-east-1"},
	"ce":             {Global: true, ControlPlaneRegion: "us-east-1"},
	"health":         {Global: true, ControlPlaneRegion: "us-east-1"},

	// us-west-2 control plane
	"networkmanager":    {Global: true, ControlPlaneRegion: "us-west-2"},
	"globalaccelerator": {Global: true, ControlPlaneRegion: "us-west-2"},

	// Buckets are listed account-wide but carry their own region.
	"s3": {SelfRegional: true},

	// Regional services
	"autoscaling": {},
	"cloudtrail":  {},
	"dynamodb":    {},
	"ec2":         {},
	"ecr":         {},
	"ecs":         {},
	"eks":         {},
	"elbv2":       {},
	"kms":         {},
	"lambda":      {},
	"logs":        {},
	"memorydb":    {},
	"rds":         {},
	"redshift":    {},
	"sqs":         {},
}

// Known reports whether the service exists in the catalog.
func Known(service string) bool {
	_, ok := entries[service]
	return ok
}

// IsGlobal reports whether the service is account-wide.
func IsGlobal(service string) bool {
	return entries[service].Global
}

// ControlPlaneRegion returns the region a global service is attributed to,
// or "" for regional services.
func ControlPlaneRegion(service string) string {
	return entries[service].ControlPlaneRegion
}

// SelfRegional reports whether each of the service's resources carries its
// own true region.
func SelfRegional(service string) bool {
	return entries[service].SelfRegional
}

// All returns every cataloged service identifier, sorted.
func All() []string {
	services := make([]string, 0, len(entries))
	for name := range entries {
		services = append(services, name)
	}
	sort.Strings(services)
	return services
}

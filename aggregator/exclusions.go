package aggregator

import (
	"strings"

	"github.com/awsmap/awsmap/inventory"
)

// exclusionRule drops a known provider-default resource nobody created on
// purpose. Rules are static per-service predicates, not user configuration.
type exclusionRule func(inventory.Record) bool

var exclusions = map[string][]exclusionRule{
	"ec2": {
		// The default security group exists in every VPC and cannot be
		// deleted.
		func(r inventory.Record) bool {
			return r.Type == "security_group" && r.Name == "default"
		},
		// Default VPCs and their subnets are account furniture.
		func(r inventory.Record) bool {
			return r.Type == "vpc" && detailBool(r, "is_default")
		},
		func(r inventory.Record) bool {
			return r.Type == "subnet" && detailBool(r, "default_for_az")
		},
		// The main route table every VPC ships with.
		func(r inventory.Record) bool {
			return r.Type == "route_table" && detailBool(r, "is_main")
		},
	},
	"rds": {
		// AWS-managed default parameter and option groups.
		func(r inventory.Record) bool {
			return (r.Type == "parameter_group" || r.Type == "option_group") &&
				strings.HasPrefix(r.ID, "default.")
		},
	},
	"kms": {
		// AWS-managed keys (aws/s3, aws/ebs, ...) are not user resources.
		func(r inventory.Record) bool {
			return strings.HasPrefix(r.Name, "aws/")
		},
	},
}

// Excluded reports whether the record matches a default-noise rule for its
// service. Excluded records never appear in a ScanResult, regardless of tag
// filters.
func Excluded(r inventory.Record) bool {
	for _, rule := range exclusions[r.Service] {
		if rule(r) {
			return true
		}
	}
	return false
}

func detailBool(r inventory.Record, key string) bool {
	v, ok := r.Details[key]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

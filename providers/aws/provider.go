// Package aws implements the per-service enumeration collectors. Each
// collector is a thin wrapper over one service's list/describe API: paginate,
// normalize tags, fill the unified record. All orchestration lives elsewhere.
package aws

import (
	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/awsmap/awsmap/collector"
)

// base carries what every collector needs: the shared credential config and
// the account id for ARN construction. Clients are built per call with the
// unit's region, so one collector serves all regions.
type base struct {
	cfg       aws.Config
	accountID string
}

// Register wires every implemented collector into the registry. Called once
// at startup after credentials are validated.
func Register(cfg aws.Config, accountID string, reg *collector.Registry) {
	b := base{cfg: cfg, accountID: accountID}

	for _, c := range []collector.Collector{
		&ec2Collector{b},
		&s3Collector{b},
		&rdsCollector{b},
		&lambdaCollector{b},
		&dynamoDBCollector{b},
		&sqsCollector{b},
		&eksCollector{b},
		&ecsCollector{b},
		&ecrCollector{b},
		&kmsCollector{b},
		&elbv2Collector{b},
		&autoscalingCollector{b},
		&cloudtrailCollector{b},
		&logsCollector{b},
		&memoryDBCollector{b},
		&redshiftCollector{b},
		&iamCollector{b},
		&route53Collector{b},
	} {
		reg.Register(c)
	}
}

// regional returns a copy of the base config pinned to the unit's region.
func (b base) regional(region string) aws.Config {
	cfg := b.cfg.Copy()
	cfg.Region = region
	return cfg
}

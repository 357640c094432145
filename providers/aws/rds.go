package aws

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"

	"github.com/awsmap/awsmap/inventory"
)

// rdsCollector enumerates DB instances, clusters and parameter groups.
type rdsCollector struct{ base }

func (c *rdsCollector) Service() string { return "rds" }

func (c *rdsCollector) Collect(ctx context.Context, region string) ([]inventory.Record, error) {
	client := rds.NewFromConfig(c.regional(region))

	records, err := c.instances(ctx, client, region)
	if err != nil {
		return nil, err
	}

	if clusters, err := c.clusters(ctx, client, region); err == nil {
		records = append(records, clusters...)
	}
	if groups, err := c.parameterGroups(ctx, client, region); err == nil {
		records = append(records, groups...)
	}

	return records, nil
}

func (c *rdsCollector) instances(ctx context.Context, client *rds.Client, region string) ([]inventory.Record, error) {
	var records []inventory.Record

	paginator := rds.NewDescribeDBInstancesPaginator(client, &rds.DescribeDBInstancesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe db instances: %w", err)
		}
		for _, instance := range page.DBInstances {
			id := aws.ToString(instance.DBInstanceIdentifier)
			tags := rdsTagMap(instance.TagList)

			endpoint := ""
			if instance.Endpoint != nil {
				endpoint = aws.ToString(instance.Endpoint.Address)
			}

			records = append(records, inventory.Record{
				Service: "rds",
				Type:    "instance",
				ID:      id,
				ARN:     aws.ToString(instance.DBInstanceArn),
				Name:    inventory.NameFromTags(tags, id),
				Region:  region,
				Details: map[string]any{
					"engine":         aws.ToString(instance.Engine),
					"engine_version": aws.ToString(instance.EngineVersion),
					"instance_class": aws.ToString(instance.DBInstanceClass),
					"status":         aws.ToString(instance.DBInstanceStatus),
					"storage_gb":     aws.ToInt32(instance.AllocatedStorage),
					"multi_az":       aws.ToBool(instance.MultiAZ),
					"endpoint":       endpoint,
				},
				Tags: tags,
			})
		}
	}

	return records, nil
}

func (c *rdsCollector) clusters(ctx context.Context, client *rds.Client, region string) ([]inventory.Record, error) {
	var records []inventory.Record

	paginator := rds.NewDescribeDBClustersPaginator(client, &rds.DescribeDBClustersInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe db clusters: %w", err)
		}
		for _, cluster := range page.DBClusters {
			id := aws.ToString(cluster.DBClusterIdentifier)
			tags := rdsTagMap(cluster.TagList)
			records = append(records, inventory.Record{
				Service: "rds",
				Type:    "cluster",
				ID:      id,
				ARN:     aws.ToString(cluster.DBClusterArn),
				Name:    inventory.NameFromTags(tags, id),
				Region:  region,
				Details: map[string]any{
					"engine":         aws.ToString(cluster.Engine),
					"engine_version": aws.ToString(cluster.EngineVersion),
					"status":         aws.ToString(cluster.Status),
					"members":        len(cluster.DBClusterMembers),
				},
				Tags: tags,
			})
		}
	}

	return records, nil
}

func (c *rdsCollector) parameterGroups(ctx context.Context, client *rds.Client, region string) ([]inventory.Record, error) {
	var records []inventory.Record

	paginator := rds.NewDescribeDBParameterGroupsPaginator(client, &rds.DescribeDBParameterGroupsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe db parameter groups: %w", err)
		}
		for _, group := range page.DBParameterGroups {
			id := aws.ToString(group.DBParameterGroupName)
			records = append(records, inventory.Record{
				Service: "rds",
				Type:    "parameter_group",
				ID:      id,
				ARN:     aws.ToString(group.DBParameterGroupArn),
				Name:    id,
				Region:  region,
				Details: map[string]any{
					"family":      aws.ToString(group.DBParameterGroupFamily),
					"description": aws.ToString(group.Description),
					"is_default":  strings.HasPrefix(id, "default."),
				},
				Tags: map[string]string{},
			})
		}
	}

	return records, nil
}

func rdsTagMap(tags []rdstypes.Tag) map[string]string {
	return kvTagMap(tags,
		func(t rdstypes.Tag) string { return aws.ToString(t.Key) },
		func(t rdstypes.Tag) string { return aws.ToString(t.Value) })
}

package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/kms"

	"github.com/awsmap/awsmap/inventory"
)

type cloudtrailCollector struct{ base }

func (c *cloudtrailCollector) Service() string { return "cloudtrail" }

func (c *cloudtrailCollector) Collect(ctx context.Context, region string) ([]inventory.Record, error) {
	client := cloudtrail.NewFromConfig(c.regional(region))

	out, err := client.DescribeTrails(ctx, &cloudtrail.DescribeTrailsInput{})
	if err != nil {
		return nil, fmt.Errorf("describe trails: %w", err)
	}

	var records []inventory.Record
	for _, trail := range out.TrailList {
		// Multi-region trails surface in every region; keep only the copy
		// in the trail's home region so dedup has a single canonical record.
		if aws.ToString(trail.HomeRegion) != region {
			continue
		}
		name := aws.ToString(trail.Name)
		records = append(records, inventory.Record{
			Service: "cloudtrail",
			Type:    "trail",
			ID:      name,
			ARN:     aws.ToString(trail.TrailARN),
			Name:    name,
			Region:  region,
			Details: map[string]any{
				"s3_bucket":      aws.ToString(trail.S3BucketName),
				"is_multiregion": aws.ToBool(trail.IsMultiRegionTrail),
				"is_org_trail":   aws.ToBool(trail.IsOrganizationTrail),
			},
			Tags: map[string]string{},
		})
	}

	return records, nil
}

type logsCollector struct{ base }

func (c *logsCollector) Service() string { return "logs" }

func (c *logsCollector) Collect(ctx context.Context, region string) ([]inventory.Record, error) {
	client := cloudwatchlogs.NewFromConfig(c.regional(region))

	var records []inventory.Record

	paginator := cloudwatchlogs.NewDescribeLogGroupsPaginator(client, &cloudwatchlogs.DescribeLogGroupsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe log groups: %w", err)
		}
		for _, group := range page.LogGroups {
			name := aws.ToString(group.LogGroupName)
			records = append(records, inventory.Record{
				Service: "logs",
				Type:    "log_group",
				ID:      name,
				ARN:     aws.ToString(group.Arn),
				Name:    name,
				Region:  region,
				Details: map[string]any{
					"retention_days": aws.ToInt32(group.RetentionInDays),
					"stored_bytes":   aws.ToInt64(group.StoredBytes),
				},
				Tags: map[string]string{},
			})
		}
	}

	return records, nil
}

type kmsCollector struct{ base }

func (c *kmsCollector) Service() string { return "kms" }

func (c *kmsCollector) Collect(ctx context.Context, region string) ([]inventory.Record, error) {
	client := kms.NewFromConfig(c.regional(region))

	var records []inventory.Record

	paginator := kms.NewListKeysPaginator(client, &kms.ListKeysInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list keys: %w", err)
		}
		for _, key := range page.Keys {
			id := aws.ToString(key.KeyId)
			record := inventory.Record{
				Service: "kms",
				Type:    "key",
				ID:      id,
				ARN:     aws.ToString(key.KeyArn),
				Name:    id,
				Region:  region,
				Details: map[string]any{},
				Tags:    map[string]string{},
			}

			// Aliases give keys their human name; aws/* aliases mark
			// AWS-managed keys the aggregator excludes.
			if out, err := client.ListAliases(ctx, &kms.ListAliasesInput{KeyId: key.KeyId}); err == nil && len(out.Aliases) > 0 {
				alias := aws.ToString(out.Aliases[0].AliasName)
				record.Name = trimAliasPrefix(alias)
				record.Details["alias"] = alias
			}
			if out, err := client.DescribeKey(ctx, &kms.DescribeKeyInput{KeyId: key.KeyId}); err == nil && out.KeyMetadata != nil {
				record.Details["state"] = string(out.KeyMetadata.KeyState)
				record.Details["key_manager"] = string(out.KeyMetadata.KeyManager)
			}

			records = append(records, record)
		}
	}

	return records, nil
}

func trimAliasPrefix(alias string) string {
	const prefix = "alias/"
	if len(alias) > len(prefix) && alias[:len(prefix)] == prefix {
		return alias[len(prefix):]
	}
	return alias
}

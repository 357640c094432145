package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/memorydb"
	"github.com/aws/aws-sdk-go-v2/service/redshift"
	redshifttypes "github.com/aws/aws-sdk-go-v2/service/redshift/types"

	"github.com/awsmap/awsmap/inventory"
)

type dynamoDBCollector struct{ base }

func (c *dynamoDBCollector) Service() string { return "dynamodb" }

func (c *dynamoDBCollector) Collect(ctx context.Context, region string) ([]inventory.Record, error) {
	client := dynamodb.NewFromConfig(c.regional(region))

	var records []inventory.Record

	paginator := dynamodb.NewListTablesPaginator(client, &dynamodb.ListTablesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list tables: %w", err)
		}
		for _, name := range page.TableNames {
			record := inventory.Record{
				Service: "dynamodb",
				Type:    "table",
				ID:      name,
				ARN:     fmt.Sprintf("arn:aws:dynamodb:%s:%s:table/%s", region, c.accountID, name),
				Name:    name,
				Region:  region,
				Details: map[string]any{},
				Tags:    map[string]string{},
			}

			if out, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(name)}); err == nil && out.Table != nil {
				record.ARN = aws.ToString(out.Table.TableArn)
				record.Details["status"] = string(out.Table.TableStatus)
				record.Details["item_count"] = aws.ToInt64(out.Table.ItemCount)
				record.Details["size_bytes"] = aws.ToInt64(out.Table.TableSizeBytes)
			}

			records = append(records, record)
		}
	}

	return records, nil
}

type memoryDBCollector struct{ base }

func (c *memoryDBCollector) Service() string { return "memorydb" }

func (c *memoryDBCollector) Collect(ctx context.Context, region string) ([]inventory.Record, error) {
	client := memorydb.NewFromConfig(c.regional(region))

	var records []inventory.Record
	var nextToken *string

	for {
		out, err := client.DescribeClusters(ctx, &memorydb.DescribeClustersInput{NextToken: nextToken})
		if err != nil {
			return nil, fmt.Errorf("describe memorydb clusters: %w", err)
		}
		for _, cluster := range out.Clusters {
			id := aws.ToString(cluster.Name)
			records = append(records, inventory.Record{
				Service: "memorydb",
				Type:    "cluster",
				ID:      id,
				ARN:     aws.ToString(cluster.ARN),
				Name:    id,
				Region:  region,
				Details: map[string]any{
					"status":    aws.ToString(cluster.Status),
					"node_type": aws.ToString(cluster.NodeType),
					"engine":    aws.ToString(cluster.EngineVersion),
					"shards":    aws.ToInt32(cluster.NumberOfShards),
				},
				Tags: map[string]string{},
			})
		}
		if out.NextToken == nil {
			break
		}
		nextToken = out.NextToken
	}

	return records, nil
}

type redshiftCollector struct{ base }

func (c *redshiftCollector) Service() string { return "redshift" }

func (c *redshiftCollector) Collect(ctx context.Context, region string) ([]inventory.Record, error) {
	client := redshift.NewFromConfig(c.regional(region))

	var records []inventory.Record

	paginator := redshift.NewDescribeClustersPaginator(client, &redshift.DescribeClustersInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe redshift clusters: %w", err)
		}
		for _, cluster := range page.Clusters {
			id := aws.ToString(cluster.ClusterIdentifier)
			tags := kvTagMap(cluster.Tags,
				func(t redshifttypes.Tag) string { return aws.ToString(t.Key) },
				func(t redshifttypes.Tag) string { return aws.ToString(t.Value) })

			records = append(records, inventory.Record{
				Service: "redshift",
				Type:    "cluster",
				ID:      id,
				ARN:     fmt.Sprintf("arn:aws:redshift:%s:%s:cluster:%s", region, c.accountID, id),
				Name:    inventory.NameFromTags(tags, id),
				Region:  region,
				Details: map[string]any{
					"node_type": aws.ToString(cluster.NodeType),
					"nodes":     aws.ToInt32(cluster.NumberOfNodes),
					"status":    aws.ToString(cluster.ClusterStatus),
					"database":  aws.ToString(cluster.DBName),
				},
				Tags: tags,
			})
		}
	}

	return records, nil
}

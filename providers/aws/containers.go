package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/eks"

	"github.com/awsmap/awsmap/inventory"
)

type eksCollector struct{ base }

func (c *eksCollector) Service() string { return "eks" }

func (c *eksCollector) Collect(ctx context.Context, region string) ([]inventory.Record, error) {
	client := eks.NewFromConfig(c.regional(region))

	var records []inventory.Record

	paginator := eks.NewListClustersPaginator(client, &eks.ListClustersInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list eks clusters: %w", err)
		}
		for _, name := range page.Clusters {
			record := inventory.Record{
				Service: "eks",
				Type:    "cluster",
				ID:      name,
				ARN:     fmt.Sprintf("arn:aws:eks:%s:%s:cluster/%s", region, c.accountID, name),
				Name:    name,
				Region:  region,
				Details: map[string]any{},
				Tags:    map[string]string{},
			}

			if out, err := client.DescribeCluster(ctx, &eks.DescribeClusterInput{Name: aws.String(name)}); err == nil && out.Cluster != nil {
				record.ARN = aws.ToString(out.Cluster.Arn)
				record.Details["version"] = aws.ToString(out.Cluster.Version)
				record.Details["status"] = string(out.Cluster.Status)
				record.Details["platform_version"] = aws.ToString(out.Cluster.PlatformVersion)
				if out.Cluster.Tags != nil {
					record.Tags = out.Cluster.Tags
				}
			}

			records = append(records, record)
		}
	}

	return records, nil
}

type ecsCollector struct{ base }

func (c *ecsCollector) Service() string { return "ecs" }

func (c *ecsCollector) Collect(ctx context.Context, region string) ([]inventory.Record, error) {
	client := ecs.NewFromConfig(c.regional(region))

	var arns []string
	paginator := ecs.NewListClustersPaginator(client, &ecs.ListClustersInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list ecs clusters: %w", err)
		}
		arns = append(arns, page.ClusterArns...)
	}

	if len(arns) == 0 {
		return nil, nil
	}

	out, err := client.DescribeClusters(ctx, &ecs.DescribeClustersInput{Clusters: arns})
	if err != nil {
		return nil, fmt.Errorf("describe ecs clusters: %w", err)
	}

	var records []inventory.Record
	for _, cluster := range out.Clusters {
		name := aws.ToString(cluster.ClusterName)
		records = append(records, inventory.Record{
			Service: "ecs",
			Type:    "cluster",
			ID:      name,
			ARN:     aws.ToString(cluster.ClusterArn),
			Name:    name,
			Region:  region,
			Details: map[string]any{
				"status":            aws.ToString(cluster.Status),
				"running_tasks":     cluster.RunningTasksCount,
				"active_services":   cluster.ActiveServicesCount,
				"container_insight": len(cluster.Settings) > 0,
			},
			Tags: map[string]string{},
		})
	}

	return records, nil
}

type ecrCollector struct{ base }

func (c *ecrCollector) Service() string { return "ecr" }

func (c *ecrCollector) Collect(ctx context.Context, region string) ([]inventory.Record, error) {
	client := ecr.NewFromConfig(c.regional(region))

	var records []inventory.Record

	paginator := ecr.NewDescribeRepositoriesPaginator(client, &ecr.DescribeRepositoriesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe repositories: %w", err)
		}
		for _, repo := range page.Repositories {
			name := aws.ToString(repo.RepositoryName)
			records = append(records, inventory.Record{
				Service: "ecr",
				Type:    "repository",
				ID:      name,
				ARN:     aws.ToString(repo.RepositoryArn),
				Name:    name,
				Region:  region,
				Details: map[string]any{
					"uri":              aws.ToString(repo.RepositoryUri),
					"tag_immutability": string(repo.ImageTagMutability),
				},
				Tags: map[string]string{},
			})
		}
	}

	return records, nil
}

package aws

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/awsmap/awsmap/inventory"
)

type sqsCollector struct{ base }

func (c *sqsCollector) Service() string { return "sqs" }

func (c *sqsCollector) Collect(ctx context.Context, region string) ([]inventory.Record, error) {
	client := sqs.NewFromConfig(c.regional(region))

	var records []inventory.Record

	paginator := sqs.NewListQueuesPaginator(client, &sqs.ListQueuesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list queues: %w", err)
		}
		for _, url := range page.QueueUrls {
			name := url
			if idx := strings.LastIndex(url, "/"); idx >= 0 {
				name = url[idx+1:]
			}

			tags := map[string]string{}
			if out, err := client.ListQueueTags(ctx, &sqs.ListQueueTagsInput{QueueUrl: aws.String(url)}); err == nil {
				tags = out.Tags
			}

			records = append(records, inventory.Record{
				Service: "sqs",
				Type:    "queue",
				ID:      name,
				ARN:     fmt.Sprintf("arn:aws:sqs:%s:%s:%s", region, c.accountID, name),
				Name:    name,
				Region:  region,
				Details: map[string]any{
					"url":  url,
					"fifo": strings.HasSuffix(name, ".fifo"),
				},
				Tags: tags,
			})
		}
	}

	return records, nil
}

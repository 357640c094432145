package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"

	"github.com/awsmap/awsmap/inventory"
)

type lambdaCollector struct{ base }

func (c *lambdaCollector) Service() string { return "lambda" }

func (c *lambdaCollector) Collect(ctx context.Context, region string) ([]inventory.Record, error) {
	client := lambda.NewFromConfig(c.regional(region))

	var records []inventory.Record

	paginator := lambda.NewListFunctionsPaginator(client, &lambda.ListFunctionsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list functions: %w", err)
		}
		for _, fn := range page.Functions {
			arn := aws.ToString(fn.FunctionArn)

			// Tags need a separate call per function.
			tags := map[string]string{}
			if out, err := client.ListTags(ctx, &lambda.ListTagsInput{Resource: fn.FunctionArn}); err == nil {
				tags = out.Tags
			}

			records = append(records, inventory.Record{
				Service: "lambda",
				Type:    "function",
				ID:      aws.ToString(fn.FunctionName),
				ARN:     arn,
				Name:    aws.ToString(fn.FunctionName),
				Region:  region,
				Details: map[string]any{
					"runtime":     string(fn.Runtime),
					"memory_mb":   aws.ToInt32(fn.MemorySize),
					"timeout_s":   aws.ToInt32(fn.Timeout),
					"handler":     aws.ToString(fn.Handler),
					"code_size":   fn.CodeSize,
					"last_update": aws.ToString(fn.LastModified),
				},
				Tags: tags,
			})
		}
	}

	return records, nil
}

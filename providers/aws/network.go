package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	asgtypes "github.com/aws/aws-sdk-go-v2/service/autoscaling/types"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"

	"github.com/awsmap/awsmap/inventory"
)

type elbv2Collector struct{ base }

func (c *elbv2Collector) Service() string { return "elbv2" }

func (c *elbv2Collector) Collect(ctx context.Context, region string) ([]inventory.Record, error) {
	client := elasticloadbalancingv2.NewFromConfig(c.regional(region))

	var records []inventory.Record

	paginator := elasticloadbalancingv2.NewDescribeLoadBalancersPaginator(client, &elasticloadbalancingv2.DescribeLoadBalancersInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe load balancers: %w", err)
		}
		for _, lb := range page.LoadBalancers {
			name := aws.ToString(lb.LoadBalancerName)

			state := ""
			if lb.State != nil {
				state = string(lb.State.Code)
			}

			records = append(records, inventory.Record{
				Service: "elbv2",
				Type:    "load_balancer",
				ID:      name,
				ARN:     aws.ToString(lb.LoadBalancerArn),
				Name:    name,
				Region:  region,
				Details: map[string]any{
					"type":     string(lb.Type),
					"scheme":   string(lb.Scheme),
					"state":    state,
					"vpc_id":   aws.ToString(lb.VpcId),
					"dns_name": aws.ToString(lb.DNSName),
				},
				Tags: map[string]string{},
			})
		}
	}

	tgPaginator := elasticloadbalancingv2.NewDescribeTargetGroupsPaginator(client, &elasticloadbalancingv2.DescribeTargetGroupsInput{})
	for tgPaginator.HasMorePages() {
		page, err := tgPaginator.NextPage(ctx)
		if err != nil {
			break
		}
		for _, tg := range page.TargetGroups {
			name := aws.ToString(tg.TargetGroupName)
			records = append(records, inventory.Record{
				Service: "elbv2",
				Type:    "target_group",
				ID:      name,
				ARN:     aws.ToString(tg.TargetGroupArn),
				Name:    name,
				Region:  region,
				Details: map[string]any{
					"protocol":    string(tg.Protocol),
					"port":        aws.ToInt32(tg.Port),
					"target_type": string(tg.TargetType),
					"vpc_id":      aws.ToString(tg.VpcId),
				},
				Tags: map[string]string{},
			})
		}
	}

	return records, nil
}

type autoscalingCollector struct{ base }

func (c *autoscalingCollector) Service() string { return "autoscaling" }

func (c *autoscalingCollector) Collect(ctx context.Context, region string) ([]inventory.Record, error) {
	client := autoscaling.NewFromConfig(c.regional(region))

	var records []inventory.Record

	paginator := autoscaling.NewDescribeAutoScalingGroupsPaginator(client, &autoscaling.DescribeAutoScalingGroupsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe auto scaling groups: %w", err)
		}
		for _, group := range page.AutoScalingGroups {
			name := aws.ToString(group.AutoScalingGroupName)
			tags := kvTagMap(group.Tags,
				func(t asgtypes.TagDescription) string { return aws.ToString(t.Key) },
				func(t asgtypes.TagDescription) string { return aws.ToString(t.Value) })

			records = append(records, inventory.Record{
				Service: "autoscaling",
				Type:    "group",
				ID:      name,
				ARN:     aws.ToString(group.AutoScalingGroupARN),
				Name:    inventory.NameFromTags(tags, name),
				Region:  region,
				Details: map[string]any{
					"min_size":  aws.ToInt32(group.MinSize),
					"max_size":  aws.ToInt32(group.MaxSize),
					"desired":   aws.ToInt32(group.DesiredCapacity),
					"instances": len(group.Instances),
				},
				Tags: tags,
			})
		}
	}

	return records, nil
}

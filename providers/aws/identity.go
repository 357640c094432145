package aws

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/route53"

	"github.com/awsmap/awsmap/inventory"
)

// iamCollector enumerates users and roles. IAM is global; records are
// attributed to the us-east-1 control plane by the planner.
type iamCollector struct{ base }

func (c *iamCollector) Service() string { return "iam" }

func (c *iamCollector) Collect(ctx context.Context, region string) ([]inventory.Record, error) {
	client := iam.NewFromConfig(c.regional(region))

	records, err := c.users(ctx, client, region)
	if err != nil {
		return nil, err
	}

	roles, err := c.roles(ctx, client, region)
	if err != nil {
		return nil, err
	}

	return append(records, roles...), nil
}

func (c *iamCollector) users(ctx context.Context, client *iam.Client, region string) ([]inventory.Record, error) {
	var records []inventory.Record

	paginator := iam.NewListUsersPaginator(client, &iam.ListUsersInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		for _, user := range page.Users {
			name := aws.ToString(user.UserName)
			details := map[string]any{
				"path": aws.ToString(user.Path),
			}
			if user.CreateDate != nil {
				details["created"] = user.CreateDate.UTC().String()
			}
			if user.PasswordLastUsed != nil {
				details["password_last_used"] = user.PasswordLastUsed.UTC().String()
			}
			records = append(records, inventory.Record{
				Service: "iam",
				Type:    "user",
				ID:      name,
				ARN:     aws.ToString(user.Arn),
				Name:    name,
				Region:  region,
				Details: details,
				Tags:    map[string]string{},
			})
		}
	}

	return records, nil
}

func (c *iamCollector) roles(ctx context.Context, client *iam.Client, region string) ([]inventory.Record, error) {
	var records []inventory.Record

	paginator := iam.NewListRolesPaginator(client, &iam.ListRolesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list roles: %w", err)
		}
		for _, role := range page.Roles {
			name := aws.ToString(role.RoleName)
			records = append(records, inventory.Record{
				Service: "iam",
				Type:    "role",
				ID:      name,
				ARN:     aws.ToString(role.Arn),
				Name:    name,
				Region:  region,
				Details: map[string]any{
					"path":            aws.ToString(role.Path),
					"service_linked":  strings.HasPrefix(aws.ToString(role.Path), "/aws-service-role/"),
					"max_session_sec": aws.ToInt32(role.MaxSessionDuration),
				},
				Tags: map[string]string{},
			})
		}
	}

	return records, nil
}

// route53Collector enumerates hosted zones. Global, us-east-1 control plane.
type route53Collector struct{ base }

func (c *route53Collector) Service() string { return "route53" }

func (c *route53Collector) Collect(ctx context.Context, region string) ([]inventory.Record, error) {
	client := route53.NewFromConfig(c.regional(region))

	var records []inventory.Record

	paginator := route53.NewListHostedZonesPaginator(client, &route53.ListHostedZonesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list hosted zones: %w", err)
		}
		for _, zone := range page.HostedZones {
			// Zone IDs come back as "/hostedzone/Z123..."
			id := strings.TrimPrefix(aws.ToString(zone.Id), "/hostedzone/")
			name := strings.TrimSuffix(aws.ToString(zone.Name), ".")

			private := false
			if zone.Config != nil {
				private = zone.Config.PrivateZone
			}

			records = append(records, inventory.Record{
				Service: "route53",
				Type:    "hosted_zone",
				ID:      id,
				ARN:     fmt.Sprintf("arn:aws:route53:::hostedzone/%s", id),
				Name:    name,
				Region:  region,
				Details: map[string]any{
					"private":      private,
					"record_count": aws.ToInt64(zone.ResourceRecordSetCount),
				},
				Tags: map[string]string{},
			})
		}
	}

	return records, nil
}

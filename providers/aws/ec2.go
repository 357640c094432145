package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/awsmap/awsmap/inventory"
)

// ec2Collector enumerates instances, volumes, security groups, VPCs,
// subnets, route tables, elastic IPs and NAT gateways.
type ec2Collector struct{ base }

func (c *ec2Collector) Service() string { return "ec2" }

func (c *ec2Collector) Collect(ctx context.Context, region string) ([]inventory.Record, error) {
	client := ec2.NewFromConfig(c.regional(region))

	var records []inventory.Record

	instances, err := c.instances(ctx, client, region)
	if err != nil {
		return nil, err
	}
	records = append(records, instances...)

	// The remaining listings are best-effort enrichments of the same
	// service; a denied Describe* on one type should not lose the others.
	for _, list := range []func(context.Context, *ec2.Client, string) ([]inventory.Record, error){
		c.volumes, c.securityGroups, c.vpcs, c.subnets, c.routeTables, c.elasticIPs, c.natGateways,
	} {
		recs, err := list(ctx, client, region)
		if err != nil {
			continue
		}
		records = append(records, recs...)
	}

	return records, nil
}

func (c *ec2Collector) instances(ctx context.Context, client *ec2.Client, region string) ([]inventory.Record, error) {
	var records []inventory.Record

	paginator := ec2.NewDescribeInstancesPaginator(client, &ec2.DescribeInstancesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe instances: %w", err)
		}
		for _, reservation := range page.Reservations {
			for _, instance := range reservation.Instances {
				records = append(records, c.convertInstance(instance, region))
			}
		}
	}

	return records, nil
}

func (c *ec2Collector) convertInstance(instance ec2types.Instance, region string) inventory.Record {
	id := aws.ToString(instance.InstanceId)
	tags := ec2TagMap(instance.Tags)

	state := ""
	if instance.State != nil {
		state = string(instance.State.Name)
	}

	return inventory.Record{
		Service: "ec2",
		Type:    "instance",
		ID:      id,
		ARN:     fmt.Sprintf("arn:aws:ec2:%s:%s:instance/%s", region, c.accountID, id),
		Name:    inventory.NameFromTags(tags, id),
		Region:  region,
		Details: map[string]any{
			"instance_type": string(instance.InstanceType),
			"state":         state,
			"private_ip":    aws.ToString(instance.PrivateIpAddress),
			"public_ip":     aws.ToString(instance.PublicIpAddress),
			"vpc_id":        aws.ToString(instance.VpcId),
			"subnet_id":     aws.ToString(instance.SubnetId),
			"architecture":  string(instance.Architecture),
		},
		Tags: tags,
	}
}

func (c *ec2Collector) volumes(ctx context.Context, client *ec2.Client, region string) ([]inventory.Record, error) {
	var records []inventory.Record

	paginator := ec2.NewDescribeVolumesPaginator(client, &ec2.DescribeVolumesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe volumes: %w", err)
		}
		for _, volume := range page.Volumes {
			id := aws.ToString(volume.VolumeId)
			tags := ec2TagMap(volume.Tags)
			records = append(records, inventory.Record{
				Service: "ec2",
				Type:    "volume",
				ID:      id,
				ARN:     fmt.Sprintf("arn:aws:ec2:%s:%s:volume/%s", region, c.accountID, id),
				Name:    inventory.NameFromTags(tags, id),
				Region:  region,
				Details: map[string]any{
					"size_gb":     aws.ToInt32(volume.Size),
					"volume_type": string(volume.VolumeType),
					"state":       string(volume.State),
					"encrypted":   aws.ToBool(volume.Encrypted),
				},
				Tags: tags,
			})
		}
	}

	return records, nil
}

func (c *ec2Collector) securityGroups(ctx context.Context, client *ec2.Client, region string) ([]inventory.Record, error) {
	var records []inventory.Record

	paginator := ec2.NewDescribeSecurityGroupsPaginator(client, &ec2.DescribeSecurityGroupsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe security groups: %w", err)
		}
		for _, group := range page.SecurityGroups {
			id := aws.ToString(group.GroupId)
			records = append(records, inventory.Record{
				Service: "ec2",
				Type:    "security_group",
				ID:      id,
				ARN:     fmt.Sprintf("arn:aws:ec2:%s:%s:security-group/%s", region, c.accountID, id),
				Name:    aws.ToString(group.GroupName),
				Region:  region,
				Details: map[string]any{
					"description":   aws.ToString(group.Description),
					"vpc_id":        aws.ToString(group.VpcId),
					"ingress_rules": len(group.IpPermissions),
					"egress_rules":  len(group.IpPermissionsEgress),
				},
				Tags: ec2TagMap(group.Tags),
			})
		}
	}

	return records, nil
}

func (c *ec2Collector) vpcs(ctx context.Context, client *ec2.Client, region string) ([]inventory.Record, error) {
	var records []inventory.Record

	paginator := ec2.NewDescribeVpcsPaginator(client, &ec2.DescribeVpcsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe vpcs: %w", err)
		}
		for _, vpc := range page.Vpcs {
			id := aws.ToString(vpc.VpcId)
			tags := ec2TagMap(vpc.Tags)
			records = append(records, inventory.Record{
				Service: "ec2",
				Type:    "vpc",
				ID:      id,
				ARN:     fmt.Sprintf("arn:aws:ec2:%s:%s:vpc/%s", region, c.accountID, id),
				Name:    inventory.NameFromTags(tags, id),
				Region:  region,
				Details: map[string]any{
					"cidr_block": aws.ToString(vpc.CidrBlock),
					"is_default": aws.ToBool(vpc.IsDefault),
					"state":      string(vpc.State),
				},
				Tags: tags,
			})
		}
	}

	return records, nil
}

func (c *ec2Collector) subnets(ctx context.Context, client *ec2.Client, region string) ([]inventory.Record, error) {
	var records []inventory.Record

	paginator := ec2.NewDescribeSubnetsPaginator(client, &ec2.DescribeSubnetsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe subnets: %w", err)
		}
		for _, subnet := range page.Subnets {
			id := aws.ToString(subnet.SubnetId)
			tags := ec2TagMap(subnet.Tags)
			records = append(records, inventory.Record{
				Service: "ec2",
				Type:    "subnet",
				ID:      id,
				ARN:     aws.ToString(subnet.SubnetArn),
				Name:    inventory.NameFromTags(tags, id),
				Region:  region,
				Details: map[string]any{
					"cidr_block":        aws.ToString(subnet.CidrBlock),
					"availability_zone": aws.ToString(subnet.AvailabilityZone),
					"vpc_id":            aws.ToString(subnet.VpcId),
					"default_for_az":    aws.ToBool(subnet.DefaultForAz),
				},
				Tags: tags,
			})
		}
	}

	return records, nil
}

func (c *ec2Collector) routeTables(ctx context.Context, client *ec2.Client, region string) ([]inventory.Record, error) {
	var records []inventory.Record

	paginator := ec2.NewDescribeRouteTablesPaginator(client, &ec2.DescribeRouteTablesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe route tables: %w", err)
		}
		for _, table := range page.RouteTables {
			id := aws.ToString(table.RouteTableId)
			tags := ec2TagMap(table.Tags)

			isMain := false
			for _, assoc := range table.Associations {
				if aws.ToBool(assoc.Main) {
					isMain = true
					break
				}
			}

			records = append(records, inventory.Record{
				Service: "ec2",
				Type:    "route_table",
				ID:      id,
				ARN:     fmt.Sprintf("arn:aws:ec2:%s:%s:route-table/%s", region, c.accountID, id),
				Name:    inventory.NameFromTags(tags, id),
				Region:  region,
				Details: map[string]any{
					"vpc_id":  aws.ToString(table.VpcId),
					"is_main": isMain,
					"routes":  len(table.Routes),
				},
				Tags: tags,
			})
		}
	}

	return records, nil
}

func (c *ec2Collector) elasticIPs(ctx context.Context, client *ec2.Client, region string) ([]inventory.Record, error) {
	out, err := client.DescribeAddresses(ctx, &ec2.DescribeAddressesInput{})
	if err != nil {
		return nil, fmt.Errorf("describe addresses: %w", err)
	}

	var records []inventory.Record
	for _, address := range out.Addresses {
		id := aws.ToString(address.AllocationId)
		tags := ec2TagMap(address.Tags)
		records = append(records, inventory.Record{
			Service: "ec2",
			Type:    "elastic_ip",
			ID:      id,
			ARN:     fmt.Sprintf("arn:aws:ec2:%s:%s:elastic-ip/%s", region, c.accountID, id),
			Name:    inventory.NameFromTags(tags, aws.ToString(address.PublicIp)),
			Region:  region,
			Details: map[string]any{
				"public_ip":   aws.ToString(address.PublicIp),
				"instance_id": aws.ToString(address.InstanceId),
				"associated":  address.AssociationId != nil,
			},
			Tags: tags,
		})
	}

	return records, nil
}

func (c *ec2Collector) natGateways(ctx context.Context, client *ec2.Client, region string) ([]inventory.Record, error) {
	var records []inventory.Record

	paginator := ec2.NewDescribeNatGatewaysPaginator(client, &ec2.DescribeNatGatewaysInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe nat gateways: %w", err)
		}
		for _, gateway := range page.NatGateways {
			id := aws.ToString(gateway.NatGatewayId)
			tags := ec2TagMap(gateway.Tags)
			records = append(records, inventory.Record{
				Service: "ec2",
				Type:    "nat_gateway",
				ID:      id,
				ARN:     fmt.Sprintf("arn:aws:ec2:%s:%s:natgateway/%s", region, c.accountID, id),
				Name:    inventory.NameFromTags(tags, id),
				Region:  region,
				Details: map[string]any{
					"state":     string(gateway.State),
					"vpc_id":    aws.ToString(gateway.VpcId),
					"subnet_id": aws.ToString(gateway.SubnetId),
				},
				Tags: tags,
			})
		}
	}

	return records, nil
}

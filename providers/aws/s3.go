package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/awsmap/awsmap/inventory"
)

// s3Collector lists buckets account-wide. S3 is the self-regional exception:
// each record's region is the bucket's true location, not the scan region,
// so the aggregator does the region filtering.
type s3Collector struct{ base }

func (c *s3Collector) Service() string { return "s3" }

func (c *s3Collector) Collect(ctx context.Context, region string) ([]inventory.Record, error) {
	client := s3.NewFromConfig(c.regional(region))

	out, err := client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}

	var records []inventory.Record
	for _, bucket := range out.Buckets {
		records = append(records, c.convertBucket(ctx, client, bucket))
	}

	return records, nil
}

func (c *s3Collector) convertBucket(ctx context.Context, client *s3.Client, bucket s3types.Bucket) inventory.Record {
	name := aws.ToString(bucket.Name)

	// GetBucketLocation returns "" for us-east-1.
	bucketRegion := "us-east-1"
	if loc, err := client.GetBucketLocation(ctx, &s3.GetBucketLocationInput{Bucket: bucket.Name}); err == nil {
		if loc.LocationConstraint != "" {
			bucketRegion = string(loc.LocationConstraint)
		}
	}

	tags := map[string]string{}
	if tagging, err := client.GetBucketTagging(ctx, &s3.GetBucketTaggingInput{Bucket: bucket.Name}); err == nil {
		tags = kvTagMap(tagging.TagSet,
			func(t s3types.Tag) string { return aws.ToString(t.Key) },
			func(t s3types.Tag) string { return aws.ToString(t.Value) })
	}

	details := map[string]any{}
	if bucket.CreationDate != nil {
		details["creation_date"] = bucket.CreationDate.UTC().String()
	}
	if versioning, err := client.GetBucketVersioning(ctx, &s3.GetBucketVersioningInput{Bucket: bucket.Name}); err == nil {
		details["versioning"] = string(versioning.Status)
	}
	if enc, err := client.GetBucketEncryption(ctx, &s3.GetBucketEncryptionInput{Bucket: bucket.Name}); err == nil {
		if enc.ServerSideEncryptionConfiguration != nil && len(enc.ServerSideEncryptionConfiguration.Rules) > 0 {
			rule := enc.ServerSideEncryptionConfiguration.Rules[0]
			if rule.ApplyServerSideEncryptionByDefault != nil {
				details["encryption"] = string(rule.ApplyServerSideEncryptionByDefault.SSEAlgorithm)
			}
		}
	}

	return inventory.Record{
		Service: "s3",
		Type:    "bucket",
		ID:      name,
		ARN:     fmt.Sprintf("arn:aws:s3:::%s", name),
		Name:    name,
		Region:  bucketRegion,
		Details: details,
		Tags:    tags,
	}
}

package aws

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// ec2TagMap converts an EC2-style tag list to a plain map.
func ec2TagMap(tags []ec2types.Tag) map[string]string {
	out := make(map[string]string, len(tags))
	for _, tag := range tags {
		out[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	return out
}

// kvTagMap converts any Key/Value tag list to a map via an accessor pair.
// Most AWS services duplicate the same tag shape in their own types package.
func kvTagMap[T any](tags []T, key, value func(T) string) map[string]string {
	out := make(map[string]string, len(tags))
	for _, tag := range tags {
		out[key(tag)] = value(tag)
	}
	return out
}

package inventory

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyLessOrdering(t *testing.T) {
	keys := []Key{
		{Service: "s3", Region: "us-east-1", Type: "bucket", ID: "b"},
		{Service: "ec2", Region: "us-west-2", Type: "instance", ID: "i-2"},
		{Service: "ec2", Region: "us-east-1", Type: "volume", ID: "v-1"},
		{Service: "ec2", Region: "us-east-1", Type: "instance", ID: "i-1"},
		{Service: "ec2", Region: "us-east-1", Type: "instance", ID: "i-0"},
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	expected := []Key{
		{Service: "ec2", Region: "us-east-1", Type: "instance", ID: "i-0"},
		{Service: "ec2", Region: "us-east-1", Type: "instance", ID: "i-1"},
		{Service: "ec2", Region: "us-east-1", Type: "volume", ID: "v-1"},
		{Service: "ec2", Region: "us-west-2", Type: "instance", ID: "i-2"},
		{Service: "s3", Region: "us-east-1", Type: "bucket", ID: "b"},
	}
	assert.Equal(t, expected, keys)
}

func TestKeyLessIsStrict(t *testing.T) {
	k := Key{Service: "ec2", Region: "us-east-1", Type: "instance", ID: "i-1"}
	assert.False(t, k.Less(k))
}

func TestIdentityKey(t *testing.T) {
	r := Record{
		Service: "ec2",
		Type:    "instance",
		ID:      "i-123",
		Region:  "eu-west-1",
		Name:    "web",
		Tags:    map[string]string{"Env": "prod"},
	}
	assert.Equal(t, Key{Service: "ec2", Region: "eu-west-1", Type: "instance", ID: "i-123"}, r.IdentityKey())
}

func TestValid(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   bool
	}{
		{"complete", Record{Service: "ec2", Type: "instance", ID: "i-1", Region: "us-east-1"}, true},
		{"missing service", Record{Type: "instance", ID: "i-1", Region: "us-east-1"}, false},
		{"missing type", Record{Service: "ec2", ID: "i-1", Region: "us-east-1"}, false},
		{"missing id", Record{Service: "ec2", Type: "instance", Region: "us-east-1"}, false},
		{"missing region", Record{Service: "ec2", Type: "instance", ID: "i-1"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.Valid())
		})
	}
}

func TestNonNilMaps(t *testing.T) {
	r := Record{Service: "ec2", Type: "instance", ID: "i-1", Region: "us-east-1"}
	r.NonNilMaps()
	assert.NotNil(t, r.Details)
	assert.NotNil(t, r.Tags)

	// Existing maps are untouched.
	r2 := Record{Tags: map[string]string{"Env": "prod"}, Details: map[string]any{"state": "running"}}
	r2.NonNilMaps()
	assert.Equal(t, "prod", r2.Tags["Env"])
	assert.Equal(t, "running", r2.Details["state"])
}

func TestNameFromTags(t *testing.T) {
	assert.Equal(t, "web-1", NameFromTags(map[string]string{"Name": "web-1"}, "i-123"))
	assert.Equal(t, "i-123", NameFromTags(map[string]string{"Env": "prod"}, "i-123"))
	assert.Equal(t, "i-123", NameFromTags(map[string]string{"Name": ""}, "i-123"))
	assert.Equal(t, "i-123", NameFromTags(nil, "i-123"))
}

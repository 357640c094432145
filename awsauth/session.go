// Package awsauth loads AWS credentials and resolves account identity and
// the set of regions enabled for the account.
package awsauth

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/account"
	accounttypes "github.com/aws/aws-sdk-go-v2/service/account/types"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Identity is the validated caller identity.
type Identity struct {
	AccountID string
	UserID    string
	ARN       string
}

// Session bundles the loaded AWS config with the identity clients.
type Session struct {
	Config aws.Config

	stsClient     *sts.Client
	accountClient *account.Client
	iamClient     *iam.Client
}

// NewSession loads the default credential chain, honoring an optional named
// profile. The region set here only anchors the control-plane calls;
// collectors override it per work unit.
func NewSession(ctx context.Context, profile string) (*Session, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion("us-east-1"),
	}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Session{
		Config:        cfg,
		stsClient:     sts.NewFromConfig(cfg),
		accountClient: account.NewFromConfig(cfg),
		iamClient:     iam.NewFromConfig(cfg),
	}, nil
}

// ValidateCredentials calls STS GetCallerIdentity and returns who we are.
func (s *Session) ValidateCredentials(ctx context.Context) (Identity, error) {
	out, err := s.stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return Identity{}, fmt.Errorf("invalid aws credentials: %w", err)
	}
	return Identity{
		AccountID: aws.ToString(out.Account),
		UserID:    aws.ToString(out.UserId),
		ARN:       aws.ToString(out.Arn),
	}, nil
}

// AccountAlias returns the account alias if one is set. Best effort: callers
// get "" when the API is denied or no alias exists.
func (s *Session) AccountAlias(ctx context.Context) string {
	out, err := s.iamClient.ListAccountAliases(ctx, &iam.ListAccountAliasesInput{})
	if err != nil || len(out.AccountAliases) == 0 {
		return ""
	}
	return out.AccountAliases[0]
}

// fallbackRegions is used when the Account API is unavailable (older
// partitions, denied permissions).
var fallbackRegions = []string{
	"us-east-1", "us-east-2", "us-west-1", "us-west-2",
	"eu-west-1", "eu-west-2", "eu-west-3", "eu-central-1", "eu-north-1",
	"ap-northeast-1", "ap-northeast-2", "ap-northeast-3",
	"ap-southeast-1", "ap-southeast-2", "ap-south-1",
	"sa-east-1", "ca-central-1",
}

// EnabledRegions lists the regions enabled for the account, sorted. Falls
// back to the common default-enabled set when ListRegions fails.
func (s *Session) EnabledRegions(ctx context.Context) []string {
	var regions []string

	paginator := account.NewListRegionsPaginator(s.accountClient, &account.ListRegionsInput{
		RegionOptStatusContains: []accounttypes.RegionOptStatus{
			accounttypes.RegionOptStatusEnabled,
			accounttypes.RegionOptStatusEnabledByDefault,
		},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fallbackRegions
		}
		for _, region := range page.Regions {
			regions = append(regions, aws.ToString(region.RegionName))
		}
	}

	if len(regions) == 0 {
		return fallbackRegions
	}
	sort.Strings(regions)
	return regions
}

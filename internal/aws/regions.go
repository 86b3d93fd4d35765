package aws

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
)

// GetAvailableRegions returns the regions enabled for the account, sorted
func GetAvailableRegions(ctx context.Context, client ec2iface.EC2API) ([]string, error) {
	result, err := client.DescribeRegionsWithContext(ctx, &ec2.DescribeRegionsInput{
		AllRegions: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe regions: %w", err)
	}

	regions := make([]string, 0, len(result.Regions))
	for _, region := range result.Regions {
		regions = append(regions, aws.StringValue(region.RegionName))
	}
	sort.Strings(regions)
	return regions, nil
}

// ValidateRegions checks that every requested region is in available
func ValidateRegions(available, requested []string) error {
	regionMap := make(map[string]bool, len(available))
	for _, region := range available {
		regionMap[region] = true
	}

	var invalid []string
	for _, region := range requested {
		if !regionMap[region] {
			invalid = append(invalid, region)
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("region(s) %s not available in this account. Available regions: %s",
			strings.Join(invalid, ", "), strings.Join(available, ", "))
	}
	return nil
}

package scanners

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"

	awslib "cloudsweep/internal/aws"
	"cloudsweep/internal/logging"
)

// ElasticIPScanner flags addresses that are allocated but not associated
type ElasticIPScanner struct{}

func init() {
	register(&ElasticIPScanner{})
}

// ArgumentName implements Scanner interface
func (s *ElasticIPScanner) ArgumentName() string {
	return "elastic-ips"
}

// Label implements Scanner interface
func (s *ElasticIPScanner) Label() string {
	return "Elastic IPs"
}

// Scan implements Scanner interface
func (s *ElasticIPScanner) Scan(ctx context.Context, clients *awslib.Clients, opts awslib.ScanOptions) (awslib.ScanResults, error) {
	out, err := clients.EC2.DescribeAddressesWithContext(ctx, &ec2.DescribeAddressesInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe addresses in %s: %w", opts.Region, err)
	}

	var results awslib.ScanResults
	for _, addr := range out.Addresses {
		if addr.AssociationId != nil || addr.InstanceId != nil || addr.NetworkInterfaceId != nil {
			continue
		}

		id := aws.StringValue(addr.AllocationId)
		if id == "" {
			id = aws.StringValue(addr.PublicIp)
		}
		tags := ec2Tags(addr.Tags)

		logging.Debug("Found unassociated Elastic IP", map[string]interface{}{
			"region":      opts.Region,
			"resource_id": id,
			"public_ip":   aws.StringValue(addr.PublicIp),
		})

		results = append(results, awslib.ScanResult{
			ResourceType: s.Label(),
			ResourceName: nameOr(tags, aws.StringValue(addr.PublicIp)),
			ResourceID:   id,
			Reason:       fmt.Sprintf("Elastic IP %s is not associated with any resource", aws.StringValue(addr.PublicIp)),
			MonthlyCost:  opts.Rates.EIPMonthly,
			Tags:         tags,
			Details: map[string]interface{}{
				"public_ip": aws.StringValue(addr.PublicIp),
				"domain":    aws.StringValue(addr.Domain),
			},
		})
	}

	return results, nil
}

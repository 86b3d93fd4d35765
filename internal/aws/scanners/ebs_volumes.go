package scanners

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"

	awslib "cloudsweep/internal/aws"
	"cloudsweep/internal/aws/pricing"
	"cloudsweep/internal/logging"
)

// EBSVolumeScanner flags volumes that are not attached to any instance
type EBSVolumeScanner struct{}

func init() {
	register(&EBSVolumeScanner{})
}

// ArgumentName implements Scanner interface
func (s *EBSVolumeScanner) ArgumentName() string {
	return "ebs-volumes"
}

// Label implements Scanner interface
func (s *EBSVolumeScanner) Label() string {
	return "EBS Volumes"
}

// Scan implements Scanner interface
func (s *EBSVolumeScanner) Scan(ctx context.Context, clients *awslib.Clients, opts awslib.ScanOptions) (awslib.ScanResults, error) {
	input := &ec2.DescribeVolumesInput{
		Filters: []*ec2.Filter{
			{Name: aws.String("status"), Values: []*string{aws.String(ec2.VolumeStateAvailable)}},
		},
	}

	var results awslib.ScanResults
	err := clients.EC2.DescribeVolumesPagesWithContext(ctx, input, func(page *ec2.DescribeVolumesOutput, lastPage bool) bool {
		for _, volume := range page.Volumes {
			if aws.StringValue(volume.State) != ec2.VolumeStateAvailable || len(volume.Attachments) > 0 {
				continue
			}

			id := aws.StringValue(volume.VolumeId)
			size := aws.Int64Value(volume.Size)
			tags := ec2Tags(volume.Tags)

			logging.Debug("Found unattached EBS volume", map[string]interface{}{
				"region":      opts.Region,
				"resource_id": id,
				"size_gb":     size,
			})

			results = append(results, awslib.ScanResult{
				ResourceType: s.Label(),
				ResourceName: nameOr(tags, id),
				ResourceID:   id,
				Reason:       fmt.Sprintf("Unattached %dGB %s volume", size, aws.StringValue(volume.VolumeType)),
				MonthlyCost:  pricing.PerGB(size, opts.Rates.EBSGBMonth),
				Tags:         tags,
				Details: map[string]interface{}{
					"size_gb":     size,
					"volume_type": aws.StringValue(volume.VolumeType),
					"encrypted":   aws.BoolValue(volume.Encrypted),
					"created":     aws.TimeValue(volume.CreateTime),
				},
			})
		}
		return !lastPage
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe volumes in %s: %w", opts.Region, err)
	}

	return results, nil
}

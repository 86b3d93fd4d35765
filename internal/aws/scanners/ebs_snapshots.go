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

// EBSSnapshotScanner flags snapshots whose source volume no longer exists
type EBSSnapshotScanner struct{}

func init() {
	register(&EBSSnapshotScanner{})
}

// ArgumentName implements Scanner interface
func (s *EBSSnapshotScanner) ArgumentName() string {
	return "ebs-snapshots"
}

// Label implements Scanner interface
func (s *EBSSnapshotScanner) Label() string {
	return "Snapshots"
}

// Scan implements Scanner interface
func (s *EBSSnapshotScanner) Scan(ctx context.Context, clients *awslib.Clients, opts awslib.ScanOptions) (awslib.ScanResults, error) {
	volumes := make(map[string]struct{})
	err := clients.EC2.DescribeVolumesPagesWithContext(ctx, &ec2.DescribeVolumesInput{}, func(page *ec2.DescribeVolumesOutput, lastPage bool) bool {
		for _, v := range page.Volumes {
			volumes[aws.StringValue(v.VolumeId)] = struct{}{}
		}
		return !lastPage
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe volumes in %s: %w", opts.Region, err)
	}

	input := &ec2.DescribeSnapshotsInput{
		OwnerIds: []*string{aws.String("self")},
	}

	var results awslib.ScanResults
	err = clients.EC2.DescribeSnapshotsPagesWithContext(ctx, input, func(page *ec2.DescribeSnapshotsOutput, lastPage bool) bool {
		for _, snapshot := range page.Snapshots {
			volumeID := aws.StringValue(snapshot.VolumeId)
			if _, exists := volumes[volumeID]; exists && volumeID != "" {
				continue
			}

			id := aws.StringValue(snapshot.SnapshotId)
			size := aws.Int64Value(snapshot.VolumeSize)
			tags := ec2Tags(snapshot.Tags)

			reason := fmt.Sprintf("Orphaned %dGB snapshot, source volume %s no longer exists", size, volumeID)
			if volumeID == "" {
				reason = fmt.Sprintf("Orphaned %dGB snapshot with no source volume", size)
			}
			if snapshot.StartTime != nil {
				reason += fmt.Sprintf(" (age %s)", awslib.FormatTimeDifference(now(), snapshot.StartTime))
			}

			logging.Debug("Found orphaned snapshot", map[string]interface{}{
				"region":      opts.Region,
				"resource_id": id,
				"volume_id":   volumeID,
			})

			results = append(results, awslib.ScanResult{
				ResourceType: s.Label(),
				ResourceName: nameOr(tags, id),
				ResourceID:   id,
				Reason:       reason,
				MonthlyCost:  pricing.PerGB(size, opts.Rates.SnapshotGBMonth),
				Tags:         tags,
				Details: map[string]interface{}{
					"volume_id":   volumeID,
					"volume_size": size,
					"encrypted":   aws.BoolValue(snapshot.Encrypted),
					"start_time":  aws.TimeValue(snapshot.StartTime),
				},
			})
		}
		return !lastPage
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe snapshots in %s: %w", opts.Region, err)
	}

	return results, nil
}

package scanners

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"

	awslib "cloudsweep/internal/aws"
	"cloudsweep/internal/logging"
)

// S3Scanner flags empty buckets and buckets whose first object is stale
type S3Scanner struct{}

func init() {
	register(&S3Scanner{})
}

// ArgumentName implements Scanner interface
func (s *S3Scanner) ArgumentName() string {
	return "s3-buckets"
}

// Label implements Scanner interface
func (s *S3Scanner) Label() string {
	return "S3 Buckets"
}

// Global implements GlobalScanner: bucket listing is account wide
func (s *S3Scanner) Global() bool {
	return true
}

// Scan implements Scanner interface
func (s *S3Scanner) Scan(ctx context.Context, clients *awslib.Clients, opts awslib.ScanOptions) (awslib.ScanResults, error) {
	out, err := clients.S3.ListBucketsWithContext(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list buckets: %w", err)
	}

	staleDays := opts.Thresholds.S3StaleDays
	current := now()

	var results awslib.ScanResults
	for _, bucket := range out.Buckets {
		name := aws.StringValue(bucket.Name)

		objects, err := clients.S3.ListObjectsV2WithContext(ctx, &s3.ListObjectsV2Input{
			Bucket:  aws.String(name),
			MaxKeys: aws.Int64(1),
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logging.Warn("Skipping bucket, cannot list objects", map[string]interface{}{
				"bucket": name,
				"error":  err.Error(),
			})
			continue
		}

		if aws.Int64Value(objects.KeyCount) == 0 || len(objects.Contents) == 0 {
			results = append(results, awslib.ScanResult{
				ResourceType: s.Label(),
				ResourceName: name,
				ResourceID:   name,
				Reason:       "Empty bucket",
				MonthlyCost:  0,
				Details: map[string]interface{}{
					"created": aws.TimeValue(bucket.CreationDate),
				},
			})
			continue
		}

		first := objects.Contents[0]
		if first.LastModified == nil {
			continue
		}
		age := awslib.DaysSince(current, *first.LastModified)
		if age <= staleDays {
			continue
		}

		logging.Debug("Found stale bucket", map[string]interface{}{
			"bucket":   name,
			"age_days": age,
		})

		results = append(results, awslib.ScanResult{
			ResourceType: s.Label(),
			ResourceName: name,
			ResourceID:   name,
			Reason:       fmt.Sprintf("Stale data (%d days old)", age),
			MonthlyCost:  opts.Rates.S3StaleMonthly,
			Details: map[string]interface{}{
				"sample_key":    aws.StringValue(first.Key),
				"last_modified": aws.TimeValue(first.LastModified),
				"created":       aws.TimeValue(bucket.CreationDate),
			},
		})
	}

	return results, nil
}

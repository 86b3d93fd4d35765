package scanners

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/eks"

	awslib "cloudsweep/internal/aws"
	"cloudsweep/internal/logging"
)

// EKSClusterScanner reports every cluster since the control plane bills hourly
// whether or not workloads run on it.
type EKSClusterScanner struct{}

func init() {
	register(&EKSClusterScanner{})
}

// ArgumentName implements Scanner interface
func (s *EKSClusterScanner) ArgumentName() string {
	return "eks-clusters"
}

// Label implements Scanner interface
func (s *EKSClusterScanner) Label() string {
	return "EKS Clusters"
}

// Scan implements Scanner interface
func (s *EKSClusterScanner) Scan(ctx context.Context, clients *awslib.Clients, opts awslib.ScanOptions) (awslib.ScanResults, error) {
	var names []string
	err := clients.EKS.ListClustersPagesWithContext(ctx, &eks.ListClustersInput{}, func(page *eks.ListClustersOutput, lastPage bool) bool {
		names = append(names, aws.StringValueSlice(page.Clusters)...)
		return !lastPage
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list EKS clusters in %s: %w", opts.Region, err)
	}

	var results awslib.ScanResults
	for _, name := range names {
		details := map[string]interface{}{}
		var tags map[string]string

		out, err := clients.EKS.DescribeClusterWithContext(ctx, &eks.DescribeClusterInput{Name: aws.String(name)})
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logging.Debug("Cluster details unavailable", map[string]interface{}{
				"region":  opts.Region,
				"cluster": name,
				"error":   err.Error(),
			})
		case out.Cluster != nil:
			c := out.Cluster
			details["arn"] = aws.StringValue(c.Arn)
			details["version"] = aws.StringValue(c.Version)
			details["status"] = aws.StringValue(c.Status)
			details["created"] = aws.TimeValue(c.CreatedAt)
			tags = aws.StringValueMap(c.Tags)
		}

		results = append(results, awslib.ScanResult{
			ResourceType: s.Label(),
			ResourceName: name,
			ResourceID:   name,
			Reason:       "Control plane is billable",
			MonthlyCost:  opts.Rates.EKSControlPlaneMonthly,
			Tags:         tags,
			Details:      details,
		})
	}

	return results, nil
}

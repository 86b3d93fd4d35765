package scanners

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/rds"

	awslib "cloudsweep/internal/aws"
	"cloudsweep/internal/aws/pricing"
	"cloudsweep/internal/aws/utils"
	"cloudsweep/internal/logging"
)

// RDSScanner flags stopped database instances and ones with no connections
type RDSScanner struct{}

func init() {
	register(&RDSScanner{})
}

// ArgumentName implements Scanner interface
func (s *RDSScanner) ArgumentName() string {
	return "rds-instances"
}

// Label implements Scanner interface
func (s *RDSScanner) Label() string {
	return "RDS Instances"
}

// Scan implements Scanner interface
func (s *RDSScanner) Scan(ctx context.Context, clients *awslib.Clients, opts awslib.ScanOptions) (awslib.ScanResults, error) {
	var instances []*rds.DBInstance
	err := clients.RDS.DescribeDBInstancesPagesWithContext(ctx, &rds.DescribeDBInstancesInput{},
		func(page *rds.DescribeDBInstancesOutput, lastPage bool) bool {
			instances = append(instances, page.DBInstances...)
			return !lastPage
		})
	if err != nil {
		return nil, fmt.Errorf("failed to describe RDS instances in %s: %w", opts.Region, err)
	}

	lookback := opts.Thresholds.RDSLookbackDays
	start, end, period := utils.LookbackWindow(now().UTC(), lookback, opts.Thresholds.MetricPeriodHours)

	var results awslib.ScanResults
	for _, instance := range instances {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		id := aws.StringValue(instance.DBInstanceIdentifier)
		storage := aws.Int64Value(instance.AllocatedStorage)
		storageCost := pricing.PerGB(storage, opts.Rates.RDSStorageGBMonth)

		var reason string
		var cost float64

		switch aws.StringValue(instance.DBInstanceStatus) {
		case "stopped":
			reason = fmt.Sprintf("Stopped instance still billed for %dGB storage", storage)
			cost = storageCost
		case "available":
			summary, err := utils.GetResourceMetrics(ctx, clients.CloudWatch, utils.MetricConfig{
				Namespace:     "AWS/RDS",
				ResourceID:    id,
				DimensionName: "DBInstanceIdentifier",
				MetricName:    "DatabaseConnections",
				Statistic:     cloudwatch.StatisticSum,
				StartTime:     start,
				EndTime:       end,
				Period:        period,
			})
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				logging.Warn("Skipping RDS instance, metrics unavailable", map[string]interface{}{
					"region":      opts.Region,
					"instance_id": id,
					"error":       err.Error(),
				})
				continue
			}
			if summary.Sum > 0 {
				continue
			}
			reason = fmt.Sprintf("No database connections in the last %d days", lookback)
			cost = pricing.RoundCost(storageCost + opts.Rates.RDSIdleMonthly)
		default:
			continue
		}

		logging.Debug("Found wasteful RDS instance", map[string]interface{}{
			"region":      opts.Region,
			"instance_id": id,
			"reason":      reason,
		})

		results = append(results, awslib.ScanResult{
			ResourceType: s.Label(),
			ResourceName: id,
			ResourceID:   id,
			Reason:       reason,
			MonthlyCost:  cost,
			Details: map[string]interface{}{
				"arn":            aws.StringValue(instance.DBInstanceArn),
				"instance_class": aws.StringValue(instance.DBInstanceClass),
				"engine":         aws.StringValue(instance.Engine),
				"status":         aws.StringValue(instance.DBInstanceStatus),
				"storage_gb":     storage,
				"multi_az":       aws.BoolValue(instance.MultiAZ),
			},
		})
	}

	return results, nil
}

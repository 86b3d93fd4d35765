package scanners

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/ec2"

	awslib "cloudsweep/internal/aws"
	"cloudsweep/internal/aws/utils"
	"cloudsweep/internal/logging"
)

// EC2InstanceScanner flags stopped instances and running ones with near-zero CPU
type EC2InstanceScanner struct{}

func init() {
	register(&EC2InstanceScanner{})
}

// ArgumentName implements Scanner interface
func (s *EC2InstanceScanner) ArgumentName() string {
	return "ec2-instances"
}

// Label implements Scanner interface
func (s *EC2InstanceScanner) Label() string {
	return "EC2 Instances"
}

// Scan implements Scanner interface
func (s *EC2InstanceScanner) Scan(ctx context.Context, clients *awslib.Clients, opts awslib.ScanOptions) (awslib.ScanResults, error) {
	var instances []*ec2.Instance
	input := &ec2.DescribeInstancesInput{
		Filters: []*ec2.Filter{
			{
				Name: aws.String("instance-state-name"),
				Values: []*string{
					aws.String(ec2.InstanceStateNameRunning),
					aws.String(ec2.InstanceStateNameStopped),
				},
			},
		},
	}
	err := clients.EC2.DescribeInstancesPagesWithContext(ctx, input, func(page *ec2.DescribeInstancesOutput, lastPage bool) bool {
		for _, reservation := range page.Reservations {
			instances = append(instances, reservation.Instances...)
		}
		return !lastPage
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe instances in %s: %w", opts.Region, err)
	}

	lookback := opts.Thresholds.EC2LookbackDays
	start, end, period := utils.LookbackWindow(now().UTC(), lookback, opts.Thresholds.MetricPeriodHours)

	var results awslib.ScanResults
	for _, instance := range instances {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		id := aws.StringValue(instance.InstanceId)
		state := ""
		if instance.State != nil {
			state = aws.StringValue(instance.State.Name)
		}

		details := map[string]interface{}{
			"instance_type": aws.StringValue(instance.InstanceType),
			"state":         state,
			"launch_time":   aws.TimeValue(instance.LaunchTime),
		}

		var reason string
		var cost float64

		switch state {
		case ec2.InstanceStateNameStopped:
			reason = "Stopped instance"
			if instance.LaunchTime != nil {
				reason = fmt.Sprintf("Stopped instance (launched %s ago)", awslib.FormatTimeDifference(now(), instance.LaunchTime))
			}
			cost = opts.Rates.EC2StoppedMonthly
		case ec2.InstanceStateNameRunning:
			summary, err := utils.GetResourceMetrics(ctx, clients.CloudWatch, utils.MetricConfig{
				Namespace:     "AWS/EC2",
				ResourceID:    id,
				DimensionName: "InstanceId",
				MetricName:    "CPUUtilization",
				Statistic:     cloudwatch.StatisticAverage,
				StartTime:     start,
				EndTime:       end,
				Period:        period,
			})
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				logging.Warn("Skipping instance, metrics unavailable", map[string]interface{}{
					"region":      opts.Region,
					"instance_id": id,
					"error":       err.Error(),
				})
				continue
			}
			// Instances without datapoints are too new or have detailed
			// monitoring disabled; nothing to judge.
			if summary.Datapoints == 0 || summary.Average >= opts.Thresholds.EC2CPUPercent {
				continue
			}
			reason = fmt.Sprintf("Low CPU (%.2f%%)", summary.Average)
			cost = opts.Rates.EC2IdleMonthly
			details["cpu_average"] = summary.Average
			details["cpu_maximum"] = summary.Maximum
			details["lookback_days"] = lookback
		default:
			continue
		}

		tags := ec2Tags(instance.Tags)

		logging.Debug("Found wasteful instance", map[string]interface{}{
			"region":      opts.Region,
			"instance_id": id,
			"reason":      reason,
		})

		results = append(results, awslib.ScanResult{
			ResourceType: s.Label(),
			ResourceName: nameOr(tags, id),
			ResourceID:   id,
			Reason:       reason,
			MonthlyCost:  cost,
			Tags:         tags,
			Details:      details,
		})
	}

	return results, nil
}

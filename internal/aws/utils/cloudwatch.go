package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
)

// MetricConfig represents configuration for retrieving CloudWatch metrics
type MetricConfig struct {
	Namespace     string
	ResourceID    string
	DimensionName string
	MetricName    string
	Statistic     string
	StartTime     time.Time
	EndTime       time.Time
	Period        int64
}

// MetricSummary aggregates the datapoints returned for one metric
type MetricSummary struct {
	Datapoints int
	Sum        float64
	Average    float64
	Maximum    float64
}

// LookbackWindow returns a metric config window ending at now
func LookbackWindow(now time.Time, days int, periodHours int) (time.Time, time.Time, int64) {
	if days < 1 {
		days = 1
	}
	if periodHours < 1 {
		periodHours = 24
	}
	return now.AddDate(0, 0, -days), now, int64(periodHours) * 3600
}

// GetResourceMetrics retrieves CloudWatch statistics for a resource and
// summarizes every datapoint, not just the first.
func GetResourceMetrics(ctx context.Context, cw cloudwatchiface.CloudWatchAPI, config MetricConfig) (MetricSummary, error) {
	input := &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String(config.Namespace),
		MetricName: aws.String(config.MetricName),
		StartTime:  aws.Time(config.StartTime),
		EndTime:    aws.Time(config.EndTime),
		Period:     aws.Int64(config.Period),
		Statistics: []*string{aws.String(config.Statistic)},
		Dimensions: []*cloudwatch.Dimension{
			{
				Name:  aws.String(config.DimensionName),
				Value: aws.String(config.ResourceID),
			},
		},
	}

	output, err := cw.GetMetricStatisticsWithContext(ctx, input)
	if err != nil {
		return MetricSummary{}, fmt.Errorf("failed to get %s/%s for %s: %w",
			config.Namespace, config.MetricName, config.ResourceID, err)
	}

	var summary MetricSummary
	for _, dp := range output.Datapoints {
		v := statValue(dp, config.Statistic)
		summary.Datapoints++
		summary.Sum += v
		if summary.Datapoints == 1 || v > summary.Maximum {
			summary.Maximum = v
		}
	}
	if summary.Datapoints > 0 {
		summary.Average = summary.Sum / float64(summary.Datapoints)
	}
	return summary, nil
}

func statValue(dp *cloudwatch.Datapoint, statistic string) float64 {
	switch statistic {
	case cloudwatch.StatisticAverage:
		return aws.Float64Value(dp.Average)
	case cloudwatch.StatisticSum:
		return aws.Float64Value(dp.Sum)
	case cloudwatch.StatisticMaximum:
		return aws.Float64Value(dp.Maximum)
	case cloudwatch.StatisticMinimum:
		return aws.Float64Value(dp.Minimum)
	case cloudwatch.StatisticSampleCount:
		return aws.Float64Value(dp.SampleCount)
	default:
		return 0
	}
}

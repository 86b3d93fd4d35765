package scanners

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/elbv2"

	awslib "cloudsweep/internal/aws"
	"cloudsweep/internal/aws/utils"
	"cloudsweep/internal/logging"
)

// LoadBalancerScanner flags application and network load balancers that
// served no traffic over the lookback window.
type LoadBalancerScanner struct{}

func init() {
	register(&LoadBalancerScanner{})
}

// ArgumentName implements Scanner interface
func (s *LoadBalancerScanner) ArgumentName() string {
	return "load-balancers"
}

// Label implements Scanner interface
func (s *LoadBalancerScanner) Label() string {
	return "Load Balancers"
}

type trafficMetric struct {
	namespace string
	name      string
}

var trafficMetrics = map[string]trafficMetric{
	elbv2.LoadBalancerTypeEnumApplication: {namespace: "AWS/ApplicationELB", name: "RequestCount"},
	elbv2.LoadBalancerTypeEnumNetwork:     {namespace: "AWS/NetworkELB", name: "NewFlowCount"},
}

// metricDimension returns the CloudWatch LoadBalancer dimension value,
// e.g. "app/my-lb/50dc6c495c0c9188", taken from the ARN.
func metricDimension(arn string) string {
	if i := strings.Index(arn, "loadbalancer/"); i >= 0 {
		return arn[i+len("loadbalancer/"):]
	}
	return arn
}

// Scan implements Scanner interface
func (s *LoadBalancerScanner) Scan(ctx context.Context, clients *awslib.Clients, opts awslib.ScanOptions) (awslib.ScanResults, error) {
	var lbs []*elbv2.LoadBalancer
	err := clients.ELBv2.DescribeLoadBalancersPagesWithContext(ctx, &elbv2.DescribeLoadBalancersInput{},
		func(page *elbv2.DescribeLoadBalancersOutput, lastPage bool) bool {
			lbs = append(lbs, page.LoadBalancers...)
			return !lastPage
		})
	if err != nil {
		return nil, fmt.Errorf("failed to describe load balancers in %s: %w", opts.Region, err)
	}

	lookback := opts.Thresholds.LBLookbackDays
	start, end, period := utils.LookbackWindow(now().UTC(), lookback, opts.Thresholds.MetricPeriodHours)

	var results awslib.ScanResults
	for _, lb := range lbs {
		lbType := aws.StringValue(lb.Type)
		metric, ok := trafficMetrics[lbType]
		if !ok {
			// Gateway load balancers have no comparable traffic metric
			continue
		}

		arn := aws.StringValue(lb.LoadBalancerArn)
		name := aws.StringValue(lb.LoadBalancerName)

		summary, err := utils.GetResourceMetrics(ctx, clients.CloudWatch, utils.MetricConfig{
			Namespace:     metric.namespace,
			ResourceID:    metricDimension(arn),
			DimensionName: "LoadBalancer",
			MetricName:    metric.name,
			Statistic:     cloudwatch.StatisticSum,
			StartTime:     start,
			EndTime:       end,
			Period:        period,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logging.Warn("Skipping load balancer, metrics unavailable", map[string]interface{}{
				"region":        opts.Region,
				"load_balancer": name,
				"error":         err.Error(),
			})
			continue
		}
		if summary.Sum > 0 {
			continue
		}

		logging.Debug("Found idle load balancer", map[string]interface{}{
			"region":        opts.Region,
			"load_balancer": name,
			"type":          lbType,
		})

		results = append(results, awslib.ScanResult{
			ResourceType: s.Label(),
			ResourceName: name,
			ResourceID:   arn,
			Reason:       fmt.Sprintf("No %s in the last %d days", metric.name, lookback),
			MonthlyCost:  opts.Rates.LBMonthly,
			Details: map[string]interface{}{
				"type":     lbType,
				"scheme":   aws.StringValue(lb.Scheme),
				"dns_name": aws.StringValue(lb.DNSName),
				"vpc_id":   aws.StringValue(lb.VpcId),
				"created":  aws.TimeValue(lb.CreatedTime),
			},
		})
	}

	return results, nil
}

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

// NATGatewayScanner flags available NAT gateways that carried no connections
type NATGatewayScanner struct{}

func init() {
	register(&NATGatewayScanner{})
}

// ArgumentName implements Scanner interface
func (s *NATGatewayScanner) ArgumentName() string {
	return "nat-gateways"
}

// Label implements Scanner interface
func (s *NATGatewayScanner) Label() string {
	return "NAT Gateways"
}

// Scan implements Scanner interface
func (s *NATGatewayScanner) Scan(ctx context.Context, clients *awslib.Clients, opts awslib.ScanOptions) (awslib.ScanResults, error) {
	var gateways []*ec2.NatGateway
	input := &ec2.DescribeNatGatewaysInput{
		Filter: []*ec2.Filter{
			{Name: aws.String("state"), Values: []*string{aws.String(ec2.NatGatewayStateAvailable)}},
		},
	}
	err := clients.EC2.DescribeNatGatewaysPagesWithContext(ctx, input, func(page *ec2.DescribeNatGatewaysOutput, lastPage bool) bool {
		gateways = append(gateways, page.NatGateways...)
		return !lastPage
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe NAT gateways in %s: %w", opts.Region, err)
	}

	lookback := opts.Thresholds.NATLookbackDays
	start, end, period := utils.LookbackWindow(now().UTC(), lookback, opts.Thresholds.MetricPeriodHours)

	var results awslib.ScanResults
	for _, nat := range gateways {
		if aws.StringValue(nat.State) != ec2.NatGatewayStateAvailable {
			continue
		}
		id := aws.StringValue(nat.NatGatewayId)

		summary, err := utils.GetResourceMetrics(ctx, clients.CloudWatch, utils.MetricConfig{
			Namespace:     "AWS/NATGateway",
			ResourceID:    id,
			DimensionName: "NatGatewayId",
			MetricName:    "ConnectionEstablishedCount",
			Statistic:     cloudwatch.StatisticSum,
			StartTime:     start,
			EndTime:       end,
			Period:        period,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logging.Warn("Skipping NAT gateway, metrics unavailable", map[string]interface{}{
				"region":         opts.Region,
				"nat_gateway_id": id,
				"error":          err.Error(),
			})
			continue
		}
		if summary.Sum > 0 {
			continue
		}

		reason := fmt.Sprintf("No connections established in the last %d days", lookback)
		if summary.Datapoints == 0 {
			reason = fmt.Sprintf("No connection metrics reported in the last %d days", lookback)
		}
		tags := ec2Tags(nat.Tags)

		logging.Debug("Found idle NAT gateway", map[string]interface{}{
			"region":         opts.Region,
			"nat_gateway_id": id,
		})

		results = append(results, awslib.ScanResult{
			ResourceType: s.Label(),
			ResourceName: nameOr(tags, id),
			ResourceID:   id,
			Reason:       reason,
			MonthlyCost:  opts.Rates.NATMonthly,
			Tags:         tags,
			Details: map[string]interface{}{
				"vpc_id":    aws.StringValue(nat.VpcId),
				"subnet_id": aws.StringValue(nat.SubnetId),
			},
		})
	}

	return results, nil
}

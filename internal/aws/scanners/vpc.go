package scanners

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"

	awslib "cloudsweep/internal/aws"
	"cloudsweep/internal/logging"
)

// VPCScanner scans for non-default VPCs with nothing attached
type VPCScanner struct{}

func init() {
	register(&VPCScanner{})
}

// ArgumentName implements Scanner interface
func (s *VPCScanner) ArgumentName() string {
	return "vpcs"
}

// Label implements Scanner interface
func (s *VPCScanner) Label() string {
	return "VPCs"
}

// interfaceCount counts the network interfaces in a VPC. Every instance,
// load balancer, NAT gateway and endpoint owns at least one.
func interfaceCount(ctx context.Context, client ec2iface.EC2API, vpcID string) (int, error) {
	input := &ec2.DescribeNetworkInterfacesInput{
		Filters: []*ec2.Filter{
			{
				Name:   aws.String("vpc-id"),
				Values: []*string{aws.String(vpcID)},
			},
		},
	}

	var count int
	err := client.DescribeNetworkInterfacesPagesWithContext(ctx, input, func(page *ec2.DescribeNetworkInterfacesOutput, lastPage bool) bool {
		count += len(page.NetworkInterfaces)
		return !lastPage
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count network interfaces in VPC %s: %w", vpcID, err)
	}
	return count, nil
}

// Scan implements Scanner interface
func (s *VPCScanner) Scan(ctx context.Context, clients *awslib.Clients, opts awslib.ScanOptions) (awslib.ScanResults, error) {
	var vpcs []*ec2.Vpc
	err := clients.EC2.DescribeVpcsPagesWithContext(ctx, &ec2.DescribeVpcsInput{}, func(page *ec2.DescribeVpcsOutput, lastPage bool) bool {
		vpcs = append(vpcs, page.Vpcs...)
		return !lastPage
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe VPCs in %s: %w", opts.Region, err)
	}

	var results awslib.ScanResults
	for _, vpc := range vpcs {
		vpcID := aws.StringValue(vpc.VpcId)

		if aws.BoolValue(vpc.IsDefault) {
			logging.Debug("Skipping default VPC", map[string]interface{}{
				"vpc_id": vpcID,
			})
			continue
		}

		count, err := interfaceCount(ctx, clients.EC2, vpcID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logging.Warn("Skipping VPC, cannot count interfaces", map[string]interface{}{
				"region": opts.Region,
				"vpc_id": vpcID,
				"error":  err.Error(),
			})
			continue
		}
		if count > 0 {
			continue
		}

		tags := ec2Tags(vpc.Tags)
		results = append(results, awslib.ScanResult{
			ResourceType: s.Label(),
			ResourceName: nameOr(tags, vpcID),
			ResourceID:   vpcID,
			Reason:       "VPC has no network interfaces",
			MonthlyCost:  0,
			Tags:         tags,
			Details: map[string]interface{}{
				"cidr_block": aws.StringValue(vpc.CidrBlock),
				"state":      aws.StringValue(vpc.State),
			},
		})
	}

	return results, nil
}

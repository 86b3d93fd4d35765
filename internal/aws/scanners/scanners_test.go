package scanners

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
	"github.com/aws/aws-sdk-go/service/eks"
	"github.com/aws/aws-sdk-go/service/eks/eksiface"
	"github.com/aws/aws-sdk-go/service/elbv2"
	"github.com/aws/aws-sdk-go/service/elbv2/elbv2iface"
	"github.com/aws/aws-sdk-go/service/rds"
	"github.com/aws/aws-sdk-go/service/rds/rdsiface"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	awslib "cloudsweep/internal/aws"
)

var frozen = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func freezeTime(t *testing.T) {
	t.Helper()
	orig := now
	now = func() time.Time { return frozen }
	t.Cleanup(func() { now = orig })
}

func daysAgo(n int) *time.Time {
	at := frozen.AddDate(0, 0, -n)
	return &at
}

type mockEC2 struct {
	mock.Mock
	ec2iface.EC2API
}

func (m *mockEC2) DescribeVolumesPagesWithContext(ctx aws.Context, in *ec2.DescribeVolumesInput, fn func(*ec2.DescribeVolumesOutput, bool) bool, _ ...request.Option) error {
	args := m.Called(in)
	if out, ok := args.Get(0).(*ec2.DescribeVolumesOutput); ok {
		fn(out, true)
	}
	return args.Error(1)
}

func (m *mockEC2) DescribeSnapshotsPagesWithContext(ctx aws.Context, in *ec2.DescribeSnapshotsInput, fn func(*ec2.DescribeSnapshotsOutput, bool) bool, _ ...request.Option) error {
	args := m.Called(in)
	if out, ok := args.Get(0).(*ec2.DescribeSnapshotsOutput); ok {
		fn(out, true)
	}
	return args.Error(1)
}

func (m *mockEC2) DescribeAddressesWithContext(ctx aws.Context, in *ec2.DescribeAddressesInput, _ ...request.Option) (*ec2.DescribeAddressesOutput, error) {
	args := m.Called(in)
	if out := args.Get(0); out != nil {
		return out.(*ec2.DescribeAddressesOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockEC2) DescribeNatGatewaysPagesWithContext(ctx aws.Context, in *ec2.DescribeNatGatewaysInput, fn func(*ec2.DescribeNatGatewaysOutput, bool) bool, _ ...request.Option) error {
	args := m.Called(in)
	if out, ok := args.Get(0).(*ec2.DescribeNatGatewaysOutput); ok {
		fn(out, true)
	}
	return args.Error(1)
}

func (m *mockEC2) DescribeInstancesPagesWithContext(ctx aws.Context, in *ec2.DescribeInstancesInput, fn func(*ec2.DescribeInstancesOutput, bool) bool, _ ...request.Option) error {
	args := m.Called(in)
	if out, ok := args.Get(0).(*ec2.DescribeInstancesOutput); ok {
		fn(out, true)
	}
	return args.Error(1)
}

func (m *mockEC2) DescribeVpcsPagesWithContext(ctx aws.Context, in *ec2.DescribeVpcsInput, fn func(*ec2.DescribeVpcsOutput, bool) bool, _ ...request.Option) error {
	args := m.Called(in)
	if out, ok := args.Get(0).(*ec2.DescribeVpcsOutput); ok {
		fn(out, true)
	}
	return args.Error(1)
}

func (m *mockEC2) DescribeNetworkInterfacesPagesWithContext(ctx aws.Context, in *ec2.DescribeNetworkInterfacesInput, fn func(*ec2.DescribeNetworkInterfacesOutput, bool) bool, _ ...request.Option) error {
	args := m.Called(aws.StringValue(in.Filters[0].Values[0]))
	if out, ok := args.Get(0).(*ec2.DescribeNetworkInterfacesOutput); ok {
		fn(out, true)
	}
	return args.Error(1)
}

// mockCloudWatch answers by the first dimension value
type mockCloudWatch struct {
	mock.Mock
	cloudwatchiface.CloudWatchAPI
}

func (m *mockCloudWatch) GetMetricStatisticsWithContext(ctx aws.Context, in *cloudwatch.GetMetricStatisticsInput, _ ...request.Option) (*cloudwatch.GetMetricStatisticsOutput, error) {
	args := m.Called(aws.StringValue(in.Dimensions[0].Value))
	if out := args.Get(0); out != nil {
		return out.(*cloudwatch.GetMetricStatisticsOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func sums(values ...float64) *cloudwatch.GetMetricStatisticsOutput {
	out := &cloudwatch.GetMetricStatisticsOutput{}
	for _, v := range values {
		out.Datapoints = append(out.Datapoints, &cloudwatch.Datapoint{Sum: aws.Float64(v), Average: aws.Float64(v)})
	}
	return out
}

type mockRDS struct {
	mock.Mock
	rdsiface.RDSAPI
}

func (m *mockRDS) DescribeDBInstancesPagesWithContext(ctx aws.Context, in *rds.DescribeDBInstancesInput, fn func(*rds.DescribeDBInstancesOutput, bool) bool, _ ...request.Option) error {
	args := m.Called(in)
	if out, ok := args.Get(0).(*rds.DescribeDBInstancesOutput); ok {
		fn(out, true)
	}
	return args.Error(1)
}

type mockS3 struct {
	mock.Mock
	s3iface.S3API
}

func (m *mockS3) ListBucketsWithContext(ctx aws.Context, in *s3.ListBucketsInput, _ ...request.Option) (*s3.ListBucketsOutput, error) {
	args := m.Called(in)
	if out := args.Get(0); out != nil {
		return out.(*s3.ListBucketsOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockS3) ListObjectsV2WithContext(ctx aws.Context, in *s3.ListObjectsV2Input, _ ...request.Option) (*s3.ListObjectsV2Output, error) {
	args := m.Called(aws.StringValue(in.Bucket))
	if out := args.Get(0); out != nil {
		return out.(*s3.ListObjectsV2Output), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockELBv2 struct {
	mock.Mock
	elbv2iface.ELBV2API
}

func (m *mockELBv2) DescribeLoadBalancersPagesWithContext(ctx aws.Context, in *elbv2.DescribeLoadBalancersInput, fn func(*elbv2.DescribeLoadBalancersOutput, bool) bool, _ ...request.Option) error {
	args := m.Called(in)
	if out, ok := args.Get(0).(*elbv2.DescribeLoadBalancersOutput); ok {
		fn(out, true)
	}
	return args.Error(1)
}

type mockEKS struct {
	mock.Mock
	eksiface.EKSAPI
}

func (m *mockEKS) ListClustersPagesWithContext(ctx aws.Context, in *eks.ListClustersInput, fn func(*eks.ListClustersOutput, bool) bool, _ ...request.Option) error {
	args := m.Called(in)
	if out, ok := args.Get(0).(*eks.ListClustersOutput); ok {
		fn(out, true)
	}
	return args.Error(1)
}

func (m *mockEKS) DescribeClusterWithContext(ctx aws.Context, in *eks.DescribeClusterInput, _ ...request.Option) (*eks.DescribeClusterOutput, error) {
	args := m.Called(aws.StringValue(in.Name))
	if out := args.Get(0); out != nil {
		return out.(*eks.DescribeClusterOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func byID(results awslib.ScanResults) map[string]awslib.ScanResult {
	out := make(map[string]awslib.ScanResult, len(results))
	for _, r := range results {
		out[r.ResourceID] = r
	}
	return out
}

func TestScannersRegistered(t *testing.T) {
	assert.Equal(t, []string{
		"ebs-snapshots",
		"ebs-volumes",
		"ec2-instances",
		"eks-clusters",
		"elastic-ips",
		"load-balancers",
		"nat-gateways",
		"rds-instances",
		"s3-buckets",
		"vpcs",
	}, awslib.DefaultRegistry.ListScanners())

	s, err := awslib.DefaultRegistry.GetScanner("Load Balancers")
	require.NoError(t, err)
	assert.Equal(t, "load-balancers", s.ArgumentName())
}

func TestEBSVolumeScanner(t *testing.T) {
	m := &mockEC2{}
	m.On("DescribeVolumesPagesWithContext", mock.Anything).Return(&ec2.DescribeVolumesOutput{
		Volumes: []*ec2.Volume{
			{
				VolumeId:   aws.String("vol-1"),
				State:      aws.String(ec2.VolumeStateAvailable),
				Size:       aws.Int64(100),
				VolumeType: aws.String("gp3"),
				Tags:       []*ec2.Tag{{Key: aws.String("Name"), Value: aws.String("data")}},
			},
			{
				VolumeId:    aws.String("vol-2"),
				State:       aws.String(ec2.VolumeStateInUse),
				Size:        aws.Int64(8),
				Attachments: []*ec2.VolumeAttachment{{InstanceId: aws.String("i-1")}},
			},
		},
	}, nil)

	results, err := (&EBSVolumeScanner{}).Scan(context.Background(), &awslib.Clients{EC2: m}, awslib.DefaultScanOptions("us-east-1"))
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "vol-1", r.ResourceID)
	assert.Equal(t, "data", r.ResourceName)
	assert.Equal(t, "Unattached 100GB gp3 volume", r.Reason)
	assert.InDelta(t, 8.0, r.MonthlyCost, 0.0001)
}

func TestEBSVolumeScannerError(t *testing.T) {
	m := &mockEC2{}
	m.On("DescribeVolumesPagesWithContext", mock.Anything).Return(nil, errors.New("UnauthorizedOperation"))

	_, err := (&EBSVolumeScanner{}).Scan(context.Background(), &awslib.Clients{EC2: m}, awslib.DefaultScanOptions("us-east-1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to describe volumes in us-east-1")
}

func TestElasticIPScanner(t *testing.T) {
	m := &mockEC2{}
	m.On("DescribeAddressesWithContext", mock.Anything).Return(&ec2.DescribeAddressesOutput{
		Addresses: []*ec2.Address{
			{AllocationId: aws.String("eipalloc-used"), PublicIp: aws.String("1.1.1.1"), AssociationId: aws.String("eipassoc-1")},
			{AllocationId: aws.String("eipalloc-free"), PublicIp: aws.String("2.2.2.2"), Domain: aws.String("vpc")},
		},
	}, nil)

	results, err := (&ElasticIPScanner{}).Scan(context.Background(), &awslib.Clients{EC2: m}, awslib.DefaultScanOptions("us-east-1"))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "eipalloc-free", results[0].ResourceID)
	assert.Equal(t, "2.2.2.2", results[0].ResourceName)
	assert.InDelta(t, 3.60, results[0].MonthlyCost, 0.0001)
}

func TestEBSSnapshotScanner(t *testing.T) {
	freezeTime(t)

	m := &mockEC2{}
	m.On("DescribeVolumesPagesWithContext", mock.Anything).Return(&ec2.DescribeVolumesOutput{
		Volumes: []*ec2.Volume{{VolumeId: aws.String("vol-1")}},
	}, nil)
	m.On("DescribeSnapshotsPagesWithContext", mock.Anything).Return(&ec2.DescribeSnapshotsOutput{
		Snapshots: []*ec2.Snapshot{
			{SnapshotId: aws.String("snap-1"), VolumeId: aws.String("vol-1"), VolumeSize: aws.Int64(10)},
			{SnapshotId: aws.String("snap-2"), VolumeId: aws.String("vol-gone"), VolumeSize: aws.Int64(50), StartTime: daysAgo(30)},
			{SnapshotId: aws.String("snap-3"), VolumeSize: aws.Int64(20)},
		},
	}, nil)

	results, err := (&EBSSnapshotScanner{}).Scan(context.Background(), &awslib.Clients{EC2: m}, awslib.DefaultScanOptions("us-east-1"))
	require.NoError(t, err)
	require.Len(t, results, 2)

	found := byID(results)
	assert.Equal(t, "Orphaned 50GB snapshot, source volume vol-gone no longer exists (age 1 month)", found["snap-2"].Reason)
	assert.InDelta(t, 2.5, found["snap-2"].MonthlyCost, 0.0001)
	assert.Equal(t, "Orphaned 20GB snapshot with no source volume", found["snap-3"].Reason)
	assert.InDelta(t, 1.0, found["snap-3"].MonthlyCost, 0.0001)
}

func TestRDSScanner(t *testing.T) {
	freezeTime(t)

	m := &mockRDS{}
	m.On("DescribeDBInstancesPagesWithContext", mock.Anything).Return(&rds.DescribeDBInstancesOutput{
		DBInstances: []*rds.DBInstance{
			{DBInstanceIdentifier: aws.String("db-stopped"), DBInstanceStatus: aws.String("stopped"), AllocatedStorage: aws.Int64(100)},
			{DBInstanceIdentifier: aws.String("db-idle"), DBInstanceStatus: aws.String("available"), AllocatedStorage: aws.Int64(20)},
			{DBInstanceIdentifier: aws.String("db-busy"), DBInstanceStatus: aws.String("available"), AllocatedStorage: aws.Int64(20)},
			{DBInstanceIdentifier: aws.String("db-broken"), DBInstanceStatus: aws.String("available"), AllocatedStorage: aws.Int64(20)},
			{DBInstanceIdentifier: aws.String("db-creating"), DBInstanceStatus: aws.String("creating"), AllocatedStorage: aws.Int64(20)},
		},
	}, nil)

	cw := &mockCloudWatch{}
	cw.On("GetMetricStatisticsWithContext", "db-idle").Return(sums(0, 0), nil)
	cw.On("GetMetricStatisticsWithContext", "db-busy").Return(sums(0, 5), nil)
	cw.On("GetMetricStatisticsWithContext", "db-broken").Return(nil, errors.New("throttled"))

	results, err := (&RDSScanner{}).Scan(context.Background(), &awslib.Clients{RDS: m, CloudWatch: cw}, awslib.DefaultScanOptions("us-east-1"))
	require.NoError(t, err)
	require.Len(t, results, 2)

	found := byID(results)
	assert.InDelta(t, 11.5, found["db-stopped"].MonthlyCost, 0.0001)
	assert.Equal(t, "Stopped instance still billed for 100GB storage", found["db-stopped"].Reason)
	assert.InDelta(t, 27.3, found["db-idle"].MonthlyCost, 0.0001)
	assert.Equal(t, "No database connections in the last 7 days", found["db-idle"].Reason)
	cw.AssertExpectations(t)
}

func TestNATGatewayScanner(t *testing.T) {
	freezeTime(t)

	m := &mockEC2{}
	m.On("DescribeNatGatewaysPagesWithContext", mock.Anything).Return(&ec2.DescribeNatGatewaysOutput{
		NatGateways: []*ec2.NatGateway{
			{NatGatewayId: aws.String("nat-idle"), State: aws.String(ec2.NatGatewayStateAvailable), VpcId: aws.String("vpc-1")},
			{NatGatewayId: aws.String("nat-busy"), State: aws.String(ec2.NatGatewayStateAvailable)},
		},
	}, nil)

	cw := &mockCloudWatch{}
	cw.On("GetMetricStatisticsWithContext", "nat-idle").Return(sums(), nil)
	cw.On("GetMetricStatisticsWithContext", "nat-busy").Return(sums(42), nil)

	results, err := (&NATGatewayScanner{}).Scan(context.Background(), &awslib.Clients{EC2: m, CloudWatch: cw}, awslib.DefaultScanOptions("us-east-1"))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "nat-idle", results[0].ResourceID)
	assert.Equal(t, "No connection metrics reported in the last 1 days", results[0].Reason)
	assert.InDelta(t, 32.40, results[0].MonthlyCost, 0.0001)
}

func TestS3Scanner(t *testing.T) {
	freezeTime(t)

	m := &mockS3{}
	m.On("ListBucketsWithContext", mock.Anything).Return(&s3.ListBucketsOutput{
		Buckets: []*s3.Bucket{
			{Name: aws.String("empty")},
			{Name: aws.String("stale")},
			{Name: aws.String("fresh")},
			{Name: aws.String("denied")},
		},
	}, nil)
	m.On("ListObjectsV2WithContext", "empty").Return(&s3.ListObjectsV2Output{KeyCount: aws.Int64(0)}, nil)
	m.On("ListObjectsV2WithContext", "stale").Return(&s3.ListObjectsV2Output{
		KeyCount: aws.Int64(1),
		Contents: []*s3.Object{{Key: aws.String("a.log"), LastModified: daysAgo(200)}},
	}, nil)
	m.On("ListObjectsV2WithContext", "fresh").Return(&s3.ListObjectsV2Output{
		KeyCount: aws.Int64(1),
		Contents: []*s3.Object{{Key: aws.String("b.log"), LastModified: daysAgo(10)}},
	}, nil)
	m.On("ListObjectsV2WithContext", "denied").Return(nil, errors.New("AccessDenied"))

	scanner := &S3Scanner{}
	assert.True(t, scanner.Global())

	results, err := scanner.Scan(context.Background(), &awslib.Clients{S3: m}, awslib.DefaultScanOptions("us-east-1"))
	require.NoError(t, err)
	require.Len(t, results, 2)

	found := byID(results)
	assert.Equal(t, "Empty bucket", found["empty"].Reason)
	assert.Zero(t, found["empty"].MonthlyCost)
	assert.Equal(t, "Stale data (200 days old)", found["stale"].Reason)
	assert.InDelta(t, 2.50, found["stale"].MonthlyCost, 0.0001)
}

func TestEC2InstanceScanner(t *testing.T) {
	freezeTime(t)

	instance := func(id, state string) *ec2.Instance {
		return &ec2.Instance{
			InstanceId:   aws.String(id),
			InstanceType: aws.String("t3.micro"),
			State:        &ec2.InstanceState{Name: aws.String(state)},
			LaunchTime:   daysAgo(400),
		}
	}

	m := &mockEC2{}
	m.On("DescribeInstancesPagesWithContext", mock.Anything).Return(&ec2.DescribeInstancesOutput{
		Reservations: []*ec2.Reservation{
			{Instances: []*ec2.Instance{instance("i-stopped", ec2.InstanceStateNameStopped), instance("i-idle", ec2.InstanceStateNameRunning)}},
			{Instances: []*ec2.Instance{instance("i-busy", ec2.InstanceStateNameRunning), instance("i-new", ec2.InstanceStateNameRunning)}},
		},
	}, nil)

	cw := &mockCloudWatch{}
	cw.On("GetMetricStatisticsWithContext", "i-idle").Return(sums(0.5, 0.3), nil)
	cw.On("GetMetricStatisticsWithContext", "i-busy").Return(sums(40, 60), nil)
	cw.On("GetMetricStatisticsWithContext", "i-new").Return(sums(), nil)

	results, err := (&EC2InstanceScanner{}).Scan(context.Background(), &awslib.Clients{EC2: m, CloudWatch: cw}, awslib.DefaultScanOptions("us-east-1"))
	require.NoError(t, err)
	require.Len(t, results, 2)

	found := byID(results)
	assert.Equal(t, "Stopped instance (launched 1 year 1 month 5 days ago)", found["i-stopped"].Reason)
	assert.InDelta(t, 2.0, found["i-stopped"].MonthlyCost, 0.0001)
	assert.Equal(t, "Low CPU (0.40%)", found["i-idle"].Reason)
	assert.InDelta(t, 20.0, found["i-idle"].MonthlyCost, 0.0001)
}

func TestEC2InstanceScannerCancelled(t *testing.T) {
	m := &mockEC2{}
	m.On("DescribeInstancesPagesWithContext", mock.Anything).Return(&ec2.DescribeInstancesOutput{
		Reservations: []*ec2.Reservation{{Instances: []*ec2.Instance{
			{InstanceId: aws.String("i-1"), State: &ec2.InstanceState{Name: aws.String(ec2.InstanceStateNameRunning)}},
		}}},
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&EC2InstanceScanner{}).Scan(ctx, &awslib.Clients{EC2: m, CloudWatch: &mockCloudWatch{}}, awslib.DefaultScanOptions("us-east-1"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEKSClusterScanner(t *testing.T) {
	m := &mockEKS{}
	m.On("ListClustersPagesWithContext", mock.Anything).Return(&eks.ListClustersOutput{
		Clusters: []*string{aws.String("prod"), aws.String("legacy")},
	}, nil)
	m.On("DescribeClusterWithContext", "prod").Return(&eks.DescribeClusterOutput{
		Cluster: &eks.Cluster{
			Name:    aws.String("prod"),
			Version: aws.String("1.29"),
			Tags:    map[string]*string{"team": aws.String("platform")},
		},
	}, nil)
	m.On("DescribeClusterWithContext", "legacy").Return(nil, errors.New("AccessDenied"))

	results, err := (&EKSClusterScanner{}).Scan(context.Background(), &awslib.Clients{EKS: m}, awslib.DefaultScanOptions("us-east-1"))
	require.NoError(t, err)
	require.Len(t, results, 2)

	found := byID(results)
	for _, name := range []string{"prod", "legacy"} {
		assert.Equal(t, "Control plane is billable", found[name].Reason)
		assert.InDelta(t, 72.0, found[name].MonthlyCost, 0.0001)
	}
	assert.Equal(t, "platform", found["prod"].Tags["team"])
	assert.Equal(t, "1.29", found["prod"].Details["version"])
}

func TestVPCScanner(t *testing.T) {
	m := &mockEC2{}
	m.On("DescribeVpcsPagesWithContext", mock.Anything).Return(&ec2.DescribeVpcsOutput{
		Vpcs: []*ec2.Vpc{
			{VpcId: aws.String("vpc-default"), IsDefault: aws.Bool(true)},
			{VpcId: aws.String("vpc-empty"), CidrBlock: aws.String("10.1.0.0/16"), Tags: []*ec2.Tag{{Key: aws.String("Name"), Value: aws.String("sandbox")}}},
			{VpcId: aws.String("vpc-used")},
		},
	}, nil)
	m.On("DescribeNetworkInterfacesPagesWithContext", "vpc-empty").Return(&ec2.DescribeNetworkInterfacesOutput{}, nil)
	m.On("DescribeNetworkInterfacesPagesWithContext", "vpc-used").Return(&ec2.DescribeNetworkInterfacesOutput{
		NetworkInterfaces: []*ec2.NetworkInterface{{NetworkInterfaceId: aws.String("eni-1")}},
	}, nil)

	results, err := (&VPCScanner{}).Scan(context.Background(), &awslib.Clients{EC2: m}, awslib.DefaultScanOptions("us-east-1"))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "vpc-empty", results[0].ResourceID)
	assert.Equal(t, "sandbox", results[0].ResourceName)
	assert.Zero(t, results[0].MonthlyCost)
	m.AssertNotCalled(t, "DescribeNetworkInterfacesPagesWithContext", "vpc-default")
}

func TestLoadBalancerScanner(t *testing.T) {
	freezeTime(t)

	const albARN = "arn:aws:elasticloadbalancing:us-east-1:123456789012:loadbalancer/app/web/50dc6c495c0c9188"
	const nlbARN = "arn:aws:elasticloadbalancing:us-east-1:123456789012:loadbalancer/net/tcp/73e2d6bc24d8a067"

	m := &mockELBv2{}
	m.On("DescribeLoadBalancersPagesWithContext", mock.Anything).Return(&elbv2.DescribeLoadBalancersOutput{
		LoadBalancers: []*elbv2.LoadBalancer{
			{LoadBalancerArn: aws.String(albARN), LoadBalancerName: aws.String("web"), Type: aws.String(elbv2.LoadBalancerTypeEnumApplication)},
			{LoadBalancerArn: aws.String(nlbARN), LoadBalancerName: aws.String("tcp"), Type: aws.String(elbv2.LoadBalancerTypeEnumNetwork)},
			{LoadBalancerArn: aws.String("gwy"), LoadBalancerName: aws.String("gwy"), Type: aws.String(elbv2.LoadBalancerTypeEnumGateway)},
		},
	}, nil)

	cw := &mockCloudWatch{}
	cw.On("GetMetricStatisticsWithContext", "app/web/50dc6c495c0c9188").Return(sums(0), nil)
	cw.On("GetMetricStatisticsWithContext", "net/tcp/73e2d6bc24d8a067").Return(sums(12), nil)

	results, err := (&LoadBalancerScanner{}).Scan(context.Background(), &awslib.Clients{ELBv2: m, CloudWatch: cw}, awslib.DefaultScanOptions("us-east-1"))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, albARN, results[0].ResourceID)
	assert.Equal(t, "web", results[0].ResourceName)
	assert.Equal(t, "No RequestCount in the last 7 days", results[0].Reason)
	assert.InDelta(t, 16.20, results[0].MonthlyCost, 0.0001)
	cw.AssertExpectations(t)
}

func TestMetricDimension(t *testing.T) {
	assert.Equal(t, "app/web/abc", metricDimension("arn:aws:elasticloadbalancing:eu-west-1:1:loadbalancer/app/web/abc"))
	assert.Equal(t, "plain", metricDimension("plain"))
}

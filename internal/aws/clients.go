package aws

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
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
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/aws/aws-sdk-go/service/sts/stsiface"
)

// Clients bundles the read-only service clients a scanner may use.
// Fields are interfaces so tests can substitute mocks.
type Clients struct {
	Region     string
	EC2        ec2iface.EC2API
	CloudWatch cloudwatchiface.CloudWatchAPI
	RDS        rdsiface.RDSAPI
	S3         s3iface.S3API
	ELBv2      elbv2iface.ELBV2API
	EKS        eksiface.EKSAPI
	STS        stsiface.STSAPI
}

// NewClients creates every service client from one regional session
func NewClients(sess *session.Session) *Clients {
	return &Clients{
		Region:     aws.StringValue(sess.Config.Region),
		EC2:        ec2.New(sess),
		CloudWatch: cloudwatch.New(sess),
		RDS:        rds.New(sess),
		S3:         s3.New(sess),
		ELBv2:      elbv2.New(sess),
		EKS:        eks.New(sess),
		STS:        sts.New(sess),
	}
}

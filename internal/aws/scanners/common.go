// Package scanners holds one Scanner implementation per AWS resource type.
// Each registers itself with the default registry from init.
package scanners

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"

	awslib "cloudsweep/internal/aws"
)

// now is replaced in tests
var now = time.Now

func register(s awslib.Scanner) {
	if err := awslib.DefaultRegistry.RegisterScanner(s); err != nil {
		panic(fmt.Sprintf("registering scanner %s: %v", s.ArgumentName(), err))
	}
}

// ec2Tags converts EC2 tags to a map
func ec2Tags(tags []*ec2.Tag) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	out := make(map[string]string, len(tags))
	for _, tag := range tags {
		out[aws.StringValue(tag.Key)] = aws.StringValue(tag.Value)
	}
	return out
}

// nameOr returns the Name tag, falling back to id
func nameOr(tags map[string]string, id string) string {
	if name, ok := tags["Name"]; ok && name != "" {
		return name
	}
	return id
}

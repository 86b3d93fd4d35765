package list

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
	"github.com/spf13/cobra"

	"cloudsweep/internal/aws"
	"cloudsweep/internal/config"
)

// newEC2Client is replaced in tests
var newEC2Client = func(profile, region string) (ec2iface.EC2API, error) {
	sess, err := aws.NewSession(profile, region)
	if err != nil {
		return nil, err
	}
	return ec2.New(sess), nil
}

// NewRegionsCmd creates and returns the regions command
func NewRegionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regions",
		Short: "List regions enabled for the account",
		Example: `  # List regions visible to the prod profile
  cloudsweep list regions --profile prod`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegions(cmd.Context(), cmd.OutOrStdout())
		},
	}

	return cmd
}

func runRegions(ctx context.Context, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	client, err := newEC2Client(config.Config.Profile, config.Config.Region)
	if err != nil {
		return err
	}

	regions, err := aws.GetAvailableRegions(ctx, client)
	if err != nil {
		return err
	}
	for _, r := range regions {
		fmt.Fprintln(out, r)
	}
	return nil
}

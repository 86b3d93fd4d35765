package list

import (
	"fmt"
	"io"
	"text/tabwriter"

	"cloudsweep/internal/aws"

	"github.com/spf13/cobra"
)

// NewProfilesCmd creates and returns the profiles command
func NewProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List available AWS profiles",
		Long: `List all available AWS credential profiles from the system.
These profiles are read from the AWS credentials and config files.`,
		Example: `  # List all available AWS profiles
  cloudsweep list profiles`,
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, err := aws.ListProfiles()
			if err != nil {
				return fmt.Errorf("failed to list profiles: %w", err)
			}
			return printProfiles(cmd.OutOrStdout(), profiles)
		},
	}

	return cmd
}

func printProfiles(out io.Writer, profiles []aws.Profile) error {
	if len(profiles) == 0 {
		fmt.Fprintln(out, "No AWS profiles found")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PROFILE\tREGION\tSOURCE")
	for _, p := range profiles {
		region := p.Region
		if region == "" {
			region = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, region, p.Source)
	}
	return tw.Flush()
}

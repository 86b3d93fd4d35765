package list

import (
	_ "cloudsweep/internal/aws/scanners" // Import for side effects (scanner registration)

	"github.com/spf13/cobra"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scanners, profiles and regions",
		Long: `List what a scan can be pointed at.
Currently supports listing:
  - Available resource scanners
  - Available AWS credential profiles
  - Regions enabled for the current account`,
	}

	cmd.AddCommand(NewScannersCmd())
	cmd.AddCommand(NewProfilesCmd())
	cmd.AddCommand(NewRegionsCmd())

	return cmd
}

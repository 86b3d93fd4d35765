package list

import (
	"fmt"
	"io"
	"text/tabwriter"

	"cloudsweep/internal/aws"

	"github.com/spf13/cobra"
)

// NewScannersCmd creates and returns the scanners command
func NewScannersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scanners",
		Short: "List available resource scanners",
		Long: `List all resource scanners that can be passed to "scan --scanners".
Each scanner looks for one kind of idle or orphaned resource.`,
		Example: `  # List all available resource scanners
  cloudsweep list scanners`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printScanners(cmd.OutOrStdout(), aws.DefaultRegistry)
		},
	}

	return cmd
}

func printScanners(out io.Writer, registry *aws.Registry) error {
	names := registry.ListScanners()
	if len(names) == 0 {
		fmt.Fprintln(out, "No scanners registered")
		return nil
	}

	fmt.Fprintln(out, "Available scanners:")
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, name := range names {
		scanner, err := registry.GetScanner(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(tw, "  %s\t%s\n", scanner.ArgumentName(), scanner.Label())
	}
	return tw.Flush()
}

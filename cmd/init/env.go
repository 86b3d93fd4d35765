package initcmd

import (
	"github.com/spf13/cobra"

	"cloudsweep/internal/config"
)

// NewEnvCmd creates the env subcommand
func NewEnvCmd() *cobra.Command {
	var force bool
	var output string

	cmd := &cobra.Command{
		Use:   "env",
		Short: "Create a default .env file",
		Long: `Create a .env file with the CLOUDSWEEP_ environment overrides.

"cloudsweep serve" loads this file on start, so it is the usual place for
the database URL and listen address.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeTemplate(cmd, output, config.DefaultEnvFile, force, "env file")
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing file")
	cmd.Flags().StringVarP(&output, "output", "o", ".env", "Output file path")

	return cmd
}

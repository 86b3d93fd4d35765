package initcmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"cloudsweep/internal/config"
)

// NewConfigCmd creates the config subcommand
func NewConfigCmd() *cobra.Command {
	var force bool
	var output string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create a default config.yaml file",
		Long: `Create a default config.yaml file carrying every setting with its default,
including the pricing rates and idle thresholds used by the scanners.

The file will be created in the current directory by default.
You can specify a different location using the --output flag.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeTemplate(cmd, output, config.DefaultConfigYAML, force, "config file")
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing file")
	cmd.Flags().StringVarP(&output, "output", "o", "config.yaml", "Output file path")

	return cmd
}

func writeTemplate(cmd *cobra.Command, path, content string, force bool, what string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	if err := config.WriteDefaultFile(absPath, content, force); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s: %s\n", what, absPath)
	return nil
}

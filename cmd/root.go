package cmd

import (
	initcmd "cloudsweep/cmd/init"
	"cloudsweep/cmd/list"
	"cloudsweep/cmd/scan"
	"cloudsweep/cmd/serve"
	"cloudsweep/cmd/version"
	"cloudsweep/internal/config"
	"cloudsweep/internal/logging"
	internalversion "cloudsweep/internal/version"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// persistentKeys binds root flags to their config keys
var persistentKeys = map[string]string{
	"profile":     "aws.profile",
	"region":      "aws.region",
	"max-workers": "app.max_workers",
	"log-format":  "app.log_format",
	"log-level":   "app.log_level",
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "cloudsweep",
		Short: "CloudSweep - find and price idle AWS resources",
		Long: `CloudSweep scans an AWS account for resources that cost money without doing
useful work (unattached volumes, idle NAT gateways, stopped instances and so on)
and reports an estimated monthly waste per service.`,
		Version:      internalversion.ShortString(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.InitConfig(false, cmd); err != nil {
				return err
			}
			if configFile != "" {
				if err := config.SetConfigFile(configFile); err != nil {
					return err
				}
			}
			for flag, key := range persistentKeys {
				if err := viper.BindPFlag(key, cmd.Root().PersistentFlags().Lookup(flag)); err != nil {
					return err
				}
			}
			config.Load()

			logging.Configure(logging.LogConfig{
				Level:  logging.ParseLevel(config.Config.LogLevel),
				Format: logging.ParseFormat(config.Config.LogFormat),
			})
			config.LogConfigurationSources(logging.Enabled(logging.DEBUG), cmd)
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "Path to config file")
	flags.StringP("profile", "p", "default", "AWS profile to use (supports SSO profiles)")
	flags.String("region", "ap-south-1", "Region used when no scan regions are given")
	flags.Int("max-workers", config.DefaultMaxWorkers, "Maximum number of scanners running at once")
	flags.String("log-format", "text", "Log output format (text or json)")
	flags.String("log-level", "INFO", "Set logging level (DEBUG, INFO, WARN, ERROR)")

	rootCmd.AddCommand(scan.NewScanCmd())
	rootCmd.AddCommand(list.NewListCmd())
	rootCmd.AddCommand(initcmd.NewInitCmd())
	rootCmd.AddCommand(serve.NewServeCmd())
	rootCmd.AddCommand(version.NewVersionCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

package scan

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	awslib "cloudsweep/internal/aws"
	_ "cloudsweep/internal/aws/scanners" // Import for side effects (scanner registration)
	"cloudsweep/internal/config"
	"cloudsweep/internal/logging"
	"cloudsweep/internal/output"
	"cloudsweep/internal/output/html"
	"cloudsweep/internal/scan"
)

// flagKeys binds scan flags to their config keys
var flagKeys = map[string]string{
	"regions":       "scan.regions",
	"scanners":      "scan.scanners",
	"output":        "scan.output",
	"output-format": "scan.output_format",
	"output-dir":    "scan.output_dir",
	"bucket":        "scan.bucket",
	"bucket-region": "scan.bucket_region",
	"timeout":       "scan.timeout",
	"task-timeout":  "scan.task_timeout",
}

var (
	// registry and newRegionalClients are replaced in tests
	registry           = awslib.DefaultRegistry
	newRegionalClients = connectRegions
	now                = time.Now
)

// NewScanCmd creates the scan command
func NewScanCmd() *cobra.Command {
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan AWS resources for waste",
		Long: `Scan AWS resources for potential cost savings.

Every selected scanner runs in every selected region on a bounded worker pool.
A failing scanner is reported but never stops the others.

Examples:
  # Run every scanner in the configured region
  cloudsweep scan

  # Scan EBS volumes and NAT gateways in two regions with 4 workers
  cloudsweep scan --scanners ebs-volumes,nat-gateways --regions us-east-1,eu-west-1 --max-workers 4

  # CSV to stdout
  cloudsweep scan -o csv > waste.csv

  # Upload the JSON report to S3
  cloudsweep scan -o json --output s3 --bucket my-bucket --bucket-region us-west-2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			for flag, key := range flagKeys {
				if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
					return err
				}
			}

			cfg, err := config.LoadScanConfig()
			if err != nil {
				return err
			}
			return runScan(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, !noProgress)
		},
	}

	cmd.Flags().StringSlice("regions", nil, "Comma-separated list of regions to scan (default: --region)")
	cmd.Flags().StringSlice("scanners", nil, "Comma-separated list of scanners to run (default: all)")
	cmd.Flags().String("output", "filesystem", "Report destination for json (filesystem, s3)")
	cmd.Flags().StringP("output-format", "o", "table", "Output format (table, csv, json, html)")
	cmd.Flags().String("output-dir", "output", "Directory for json and html reports")
	cmd.Flags().String("bucket", "", "S3 bucket name (required when --output=s3)")
	cmd.Flags().String("bucket-region", "", "S3 bucket region")
	cmd.Flags().Duration("timeout", 0, "Deadline for the whole scan (0 disables)")
	cmd.Flags().Duration("task-timeout", 0, "Deadline for each scanner (0 disables)")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")

	return cmd
}

// resolveRegions falls back to the configured default region
func resolveRegions(requested []string) []string {
	regions := config.SplitList(requested)
	if len(regions) == 0 && config.Config.Region != "" {
		regions = []string{config.Config.Region}
	}
	return regions
}

// connectRegions verifies credentials, validates the requested regions and
// builds a throttled client set for each.
func connectRegions(ctx context.Context, profile string, regions []string) ([]*awslib.Clients, error) {
	if !awslib.IsValidProfile(profile) {
		logging.Warn("Profile not found in shared AWS files, relying on the default credential chain", map[string]interface{}{
			"profile": profile,
		})
	}

	base, err := awslib.NewSession(profile, regions[0])
	if err != nil {
		return nil, err
	}

	identity, err := awslib.GetCallerIdentity(sts.New(base))
	if err != nil {
		return nil, fmt.Errorf("failed to verify AWS credentials for profile %s: %w", profile, err)
	}
	logging.Info("Using AWS account", map[string]interface{}{
		"account_id": identity.AccountID,
		"profile":    profile,
	})

	available, err := awslib.GetAvailableRegions(ctx, ec2.New(base))
	if err != nil {
		logging.Warn("Could not list regions, skipping validation", map[string]interface{}{
			"error": err.Error(),
		})
	} else if err := awslib.ValidateRegions(available, regions); err != nil {
		return nil, err
	}

	rl := config.LoadRateLimitConfig()
	clients := make([]*awslib.Clients, 0, len(regions))
	for _, region := range regions {
		sess, err := awslib.GetSessionInRegion(base, region)
		if err != nil {
			return nil, err
		}
		awslib.ThrottleSession(sess, region, &rl)
		clients = append(clients, awslib.NewClients(sess))
	}
	return clients, nil
}

func runScan(ctx context.Context, stdout, stderr io.Writer, cfg *config.ScanConfig, showProgress bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	scanners, err := registry.Resolve(config.SplitList(cfg.Scanners))
	if err != nil {
		return err
	}
	regions := resolveRegions(cfg.Regions)
	if len(regions) == 0 {
		return fmt.Errorf("no region to scan: set --regions or --region")
	}

	clients, err := newRegionalClients(ctx, config.Config.Profile, regions)
	if err != nil {
		return err
	}

	base := awslib.DefaultScanOptions("")
	base.Rates = cfg.Rates
	base.Thresholds = cfg.Thresholds
	tasks := awslib.BuildTasks(clients, scanners, base)

	names := make([]string, 0, len(scanners))
	for _, s := range scanners {
		names = append(names, s.ArgumentName())
	}
	logging.ScanStart(names, regions, config.Config.MaxWorkers)

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	opts := []scan.Option{scan.WithTaskTimeout(cfg.TaskTimeout)}
	var bar *output.ScanProgress
	if showProgress {
		bar = output.NewScanProgress(stderr, len(tasks))
		opts = append(opts, scan.WithProgress(bar.Update))
	}

	result, err := scan.RunBatch(ctx, tasks, config.Config.MaxWorkers, opts...)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("scan aborted: %w", err)
	}

	logging.ScanComplete(result.FindingCount(), len(result.Errors), result.TotalMonthlyCost, result.Duration)
	return writeReport(ctx, stdout, cfg, result)
}

func writeReport(ctx context.Context, stdout io.Writer, cfg *config.ScanConfig, result *scan.BatchResult) error {
	switch cfg.OutputFormat {
	case "table":
		return output.WriteTable(stdout, result)
	case "csv":
		return output.WriteCSV(stdout, result)
	case "html":
		path := filepath.Join(cfg.OutputDir, "cloudsweep-"+now().Format("2006-01-02-15-04-05")+".html")
		if err := html.WriteHTML(result, path); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "HTML report written to %s\n", path)
		return nil
	case "json":
		w := output.NewWriter(output.Config{
			Type:      output.Type(cfg.Output),
			S3Bucket:  cfg.Bucket,
			S3Region:  cfg.BucketRegion,
			Profile:   config.Config.Profile,
			OutputDir: cfg.OutputDir,
		})
		dest, err := w.Write(ctx, result)
		if err != nil {
			return err
		}
		if cfg.Output == string(output.S3) {
			fmt.Fprintf(stdout, "Report uploaded to s3://%s/%s\n", cfg.Bucket, dest)
		} else {
			fmt.Fprintf(stdout, "Report written to %s\n", dest)
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", cfg.OutputFormat)
	}
}

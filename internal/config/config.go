package config

import (
	"fmt"
	"time"

	"cloudsweep/internal/aws/pricing"

	"github.com/spf13/viper"
)

// DefaultMaxWorkers is the scan pool size used when nothing is configured.
const DefaultMaxWorkers = 10

// GlobalConfig holds the global configuration for the application
type GlobalConfig struct {
	// Profile is the AWS profile to use
	Profile string

	// Region is the fallback region when no scan regions are given
	Region string

	// MaxWorkers defines the maximum number of concurrent scanners
	MaxWorkers int

	LogFormat string
	LogLevel  string
}

// Config is the global configuration instance
var Config = &GlobalConfig{
	Profile:    "default",
	Region:     "ap-south-1",
	MaxWorkers: DefaultMaxWorkers,
}

// ScanConfig is the resolved configuration for one scan command.
type ScanConfig struct {
	Regions      []string
	Scanners     []string
	Output       string
	OutputFormat string
	OutputDir    string
	Bucket       string
	BucketRegion string
	Timeout      time.Duration
	TaskTimeout  time.Duration
	Rates        pricing.Rates
	Thresholds   pricing.Thresholds
}

// ServerConfig is the resolved configuration for the task service.
type ServerConfig struct {
	Addr        string
	DatabaseURL string
	CORSOrigins []string
}

// Load copies the viper state into Config.
func Load() {
	Config.Profile = viper.GetString("aws.profile")
	Config.Region = viper.GetString("aws.region")
	Config.MaxWorkers = viper.GetInt("app.max_workers")
	Config.LogFormat = viper.GetString("app.log_format")
	Config.LogLevel = viper.GetString("app.log_level")
}

// LoadScanConfig resolves scan settings from viper. Rates and thresholds
// start from the built-in defaults and are overridden key by key.
func LoadScanConfig() (*ScanConfig, error) {
	cfg := &ScanConfig{
		Regions:      viper.GetStringSlice("scan.regions"),
		Scanners:     viper.GetStringSlice("scan.scanners"),
		Output:       viper.GetString("scan.output"),
		OutputFormat: viper.GetString("scan.output_format"),
		OutputDir:    viper.GetString("scan.output_dir"),
		Bucket:       viper.GetString("scan.bucket"),
		BucketRegion: viper.GetString("scan.bucket_region"),
		Timeout:      viper.GetDuration("scan.timeout"),
		TaskTimeout:  viper.GetDuration("scan.task_timeout"),
		Rates:        pricing.DefaultRates,
		Thresholds:   pricing.DefaultThresholds,
	}

	if err := viper.UnmarshalKey("pricing", &cfg.Rates); err != nil {
		return nil, fmt.Errorf("invalid pricing configuration: %w", err)
	}
	if err := viper.UnmarshalKey("thresholds", &cfg.Thresholds); err != nil {
		return nil, fmt.Errorf("invalid thresholds configuration: %w", err)
	}

	switch cfg.Output {
	case "filesystem", "s3":
	default:
		return nil, fmt.Errorf("invalid output type %q: must be filesystem or s3", cfg.Output)
	}
	switch cfg.OutputFormat {
	case "table", "csv", "json", "html":
	default:
		return nil, fmt.Errorf("invalid output format %q: must be table, csv, json or html", cfg.OutputFormat)
	}
	if cfg.Output == "s3" && cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required when output is s3")
	}

	return cfg, nil
}

// LoadServerConfig resolves task service settings from viper.
func LoadServerConfig() ServerConfig {
	return ServerConfig{
		Addr:        viper.GetString("server.addr"),
		DatabaseURL: viper.GetString("server.database_url"),
		CORSOrigins: viper.GetStringSlice("server.cors_origins"),
	}
}

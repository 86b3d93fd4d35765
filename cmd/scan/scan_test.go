package scan

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	awslib "cloudsweep/internal/aws"
	"cloudsweep/internal/aws/pricing"
	"cloudsweep/internal/config"
	"cloudsweep/internal/scan"
)

type stubScanner struct {
	arg, label string
	results    awslib.ScanResults
	err        error
}

func (s *stubScanner) ArgumentName() string { return s.arg }
func (s *stubScanner) Label() string        { return s.label }
func (s *stubScanner) Scan(ctx context.Context, clients *awslib.Clients, opts awslib.ScanOptions) (awslib.ScanResults, error) {
	return s.results, s.err
}

func withStubs(t *testing.T, scanners ...awslib.Scanner) *[]string {
	t.Helper()
	r := awslib.NewRegistry()
	for _, s := range scanners {
		require.NoError(t, r.RegisterScanner(s))
	}

	var connected []string
	origRegistry, origClients, origNow := registry, newRegionalClients, now
	registry = r
	newRegionalClients = func(ctx context.Context, profile string, regions []string) ([]*awslib.Clients, error) {
		connected = append(connected, regions...)
		clients := make([]*awslib.Clients, 0, len(regions))
		for _, region := range regions {
			clients = append(clients, &awslib.Clients{Region: region})
		}
		return clients, nil
	}
	now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { registry, newRegionalClients, now = origRegistry, origClients, origNow })
	return &connected
}

func baseConfig(format string) *config.ScanConfig {
	return &config.ScanConfig{
		Regions:      []string{"us-east-1"},
		Output:       "filesystem",
		OutputFormat: format,
		Rates:        pricing.DefaultRates,
		Thresholds:   pricing.DefaultThresholds,
	}
}

func sampleResult() *scan.BatchResult {
	return &scan.BatchResult{
		Findings: map[string][]scan.Finding{
			"NAT Gateways": {{ResourceID: "nat-1", Reason: "No traffic", MonthlyCost: 32.4}},
		},
		Errors:           map[string]string{},
		TotalMonthlyCost: 32.4,
	}
}

func TestRunScanCSV(t *testing.T) {
	withStubs(t,
		&stubScanner{arg: "nat-gateways", label: "NAT Gateways", results: awslib.ScanResults{
			{ResourceID: "nat-1", Reason: "No traffic", MonthlyCost: 32.4},
		}},
		&stubScanner{arg: "vpcs", label: "VPCs", err: errors.New("access denied")},
	)

	var stdout bytes.Buffer
	require.NoError(t, runScan(context.Background(), &stdout, &bytes.Buffer{}, baseConfig("csv"), false))

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Service,Resource ID,Reason,Cost ($)", lines[0])
	assert.Equal(t, "NAT Gateways,nat-1,No traffic,$32.40", lines[1])
}

func TestRunScanSelectsScanners(t *testing.T) {
	withStubs(t,
		&stubScanner{arg: "nat-gateways", label: "NAT Gateways", results: awslib.ScanResults{
			{ResourceID: "nat-1", Reason: "No traffic", MonthlyCost: 32.4},
		}},
		&stubScanner{arg: "vpcs", label: "VPCs", results: awslib.ScanResults{
			{ResourceID: "vpc-1", Reason: "VPC has no network interfaces"},
		}},
	)

	cfg := baseConfig("csv")
	cfg.Scanners = []string{"vpcs"}
	var stdout bytes.Buffer
	require.NoError(t, runScan(context.Background(), &stdout, &bytes.Buffer{}, cfg, false))

	assert.Contains(t, stdout.String(), "vpc-1")
	assert.NotContains(t, stdout.String(), "nat-1")
}

func TestRunScanUnknownScanner(t *testing.T) {
	withStubs(t, &stubScanner{arg: "vpcs", label: "VPCs"})

	cfg := baseConfig("table")
	cfg.Scanners = []string{"lambda"}
	err := runScan(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, cfg, false)
	assert.Error(t, err)
}

func TestRunScanMultiRegion(t *testing.T) {
	connected := withStubs(t, &stubScanner{arg: "vpcs", label: "VPCs", results: awslib.ScanResults{
		{ResourceID: "vpc-1", Reason: "VPC has no network interfaces"},
	}})

	cfg := baseConfig("csv")
	cfg.Regions = []string{"us-east-1,eu-west-1"}
	var stdout bytes.Buffer
	require.NoError(t, runScan(context.Background(), &stdout, &bytes.Buffer{}, cfg, false))

	assert.Equal(t, []string{"us-east-1", "eu-west-1"}, *connected)
	assert.Contains(t, stdout.String(), "VPCs [us-east-1],vpc-1")
	assert.Contains(t, stdout.String(), "VPCs [eu-west-1],vpc-1")
}

func TestRunScanCancelled(t *testing.T) {
	withStubs(t, &stubScanner{arg: "vpcs", label: "VPCs"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := runScan(ctx, &bytes.Buffer{}, &bytes.Buffer{}, baseConfig("table"), false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolveRegions(t *testing.T) {
	orig := config.Config.Region
	t.Cleanup(func() { config.Config.Region = orig })
	config.Config.Region = "ap-south-1"

	assert.Equal(t, []string{"ap-south-1"}, resolveRegions(nil))
	assert.Equal(t, []string{"us-east-1", "eu-west-1"}, resolveRegions([]string{"us-east-1, eu-west-1"}))

	config.Config.Region = ""
	assert.Empty(t, resolveRegions(nil))
}

func TestWriteReportTable(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeReport(context.Background(), &out, baseConfig("table"), sampleResult()))
	assert.Contains(t, out.String(), "NAT Gateways")
	assert.Contains(t, out.String(), "Total Monthly Waste: $32.40")
}

func TestWriteReportJSON(t *testing.T) {
	cfg := baseConfig("json")
	cfg.OutputDir = t.TempDir()

	var out bytes.Buffer
	require.NoError(t, writeReport(context.Background(), &out, cfg, sampleResult()))
	assert.Contains(t, out.String(), "Report written to ")

	matches, err := filepath.Glob(filepath.Join(cfg.OutputDir, "*", "*", "*", "*.json.gz"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestWriteReportHTML(t *testing.T) {
	withStubs(t)
	cfg := baseConfig("html")
	cfg.OutputDir = t.TempDir()

	var out bytes.Buffer
	require.NoError(t, writeReport(context.Background(), &out, cfg, sampleResult()))

	path := filepath.Join(cfg.OutputDir, "cloudsweep-2024-06-01-12-00-00.html")
	assert.Contains(t, out.String(), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "nat-1")
}

func TestWriteReportUnsupported(t *testing.T) {
	err := writeReport(context.Background(), &bytes.Buffer{}, baseConfig("xml"), sampleResult())
	assert.EqualError(t, err, "unsupported output format: xml")
}

func TestScanCmdFlags(t *testing.T) {
	cmd := NewScanCmd()
	for flag := range flagKeys {
		assert.NotNil(t, cmd.Flags().Lookup(flag), flag)
	}
	assert.Equal(t, "o", cmd.Flags().Lookup("output-format").Shorthand)
	assert.NotNil(t, cmd.Flags().Lookup("no-progress"))
}

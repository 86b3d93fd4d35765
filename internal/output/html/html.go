package html

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"cloudsweep/internal/aws/pricing"
	"cloudsweep/internal/logging"
	"cloudsweep/internal/output"
	"cloudsweep/internal/scan"
)

//go:embed assets/* templates/*
var content embed.FS

// TemplateData represents the data structure passed to the HTML template
type TemplateData struct {
	GeneratedAt time.Time
	Metrics     ScanMetrics
	Services    []ServiceBar
	Findings    []output.FindingRow
	Errors      []output.ErrorRow
	Styles      template.CSS
}

// ScanMetrics represents the headline numbers of the batch
type ScanMetrics struct {
	TotalMonthlyCost float64
	TotalYearlyCost  float64
	Cost             pricing.CostBreakdown
	ServicesScanned  int
	ServicesFailed   int
	ResourcesFlagged int
	Duration         time.Duration
	PeakParallel     int
}

// ServiceBar is one row of the per-service cost chart. Width is a percentage
// of the most expensive service.
type ServiceBar struct {
	output.ServiceSummary
	Width float64
	Cost  pricing.CostBreakdown
}

func parse() (*template.Template, template.CSS, error) {
	tmpl, err := template.New("report.html").Funcs(template.FuncMap{
		"money": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
		"rate":  func(v float64) string { return fmt.Sprintf("$%.4f", v) },
		"truncate": func(s string, n int) string {
			if len(s) <= n {
				return s
			}
			return s[:n] + "..."
		},
	}).ParseFS(content, "templates/report.html")
	if err != nil {
		return nil, "", fmt.Errorf("error parsing template: %w", err)
	}

	styles, err := content.ReadFile("assets/styles.css")
	if err != nil {
		return nil, "", fmt.Errorf("error reading styles: %w", err)
	}
	return tmpl, template.CSS(styles), nil
}

// Render writes the report for result to w
func Render(w io.Writer, result *scan.BatchResult, generatedAt time.Time) error {
	tmpl, styles, err := parse()
	if err != nil {
		return err
	}

	data := processResults(result)
	data.GeneratedAt = generatedAt
	data.Styles = styles

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("error executing template: %w", err)
	}
	if _, err := io.Copy(w, &buf); err != nil {
		return fmt.Errorf("error writing report: %w", err)
	}
	return nil
}

// WriteHTML writes the report to outputPath, creating parent directories
func WriteHTML(result *scan.BatchResult, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	defer f.Close()

	if err := Render(f, result, time.Now()); err != nil {
		return err
	}

	logging.Debug("Wrote HTML report", map[string]interface{}{
		"path":     outputPath,
		"findings": result.FindingCount(),
	})
	return nil
}

func processResults(result *scan.BatchResult) TemplateData {
	services := output.Services(result)

	maxCost := 0.0
	for _, s := range services {
		if s.MonthlyCost > maxCost {
			maxCost = s.MonthlyCost
		}
	}

	bars := make([]ServiceBar, 0, len(services))
	for _, s := range services {
		width := 0.0
		if maxCost > 0 {
			width = s.MonthlyCost / maxCost * 100
		}
		bars = append(bars, ServiceBar{
			ServiceSummary: s,
			Width:          width,
			Cost:           pricing.CalculateRates(s.MonthlyCost),
		})
	}

	total := pricing.CalculateRates(result.TotalMonthlyCost)
	return TemplateData{
		Metrics: ScanMetrics{
			TotalMonthlyCost: result.TotalMonthlyCost,
			TotalYearlyCost:  total.YearlyRate,
			Cost:             total,
			ServicesScanned:  len(result.Findings),
			ServicesFailed:   len(result.Errors),
			ResourcesFlagged: result.FindingCount(),
			Duration:         result.Duration.Round(time.Millisecond),
			PeakParallel:     result.PeakParallel,
		},
		Services: bars,
		Findings: output.Rows(result),
		Errors:   output.Errors(result),
	}
}

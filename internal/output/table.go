package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"cloudsweep/internal/scan"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	costColor   = color.New(color.FgYellow)
	failColor   = color.New(color.FgRed)
	totalColor  = color.New(color.FgGreen, color.Bold)
)

// WriteTable prints a per-service summary followed by totals and any
// task errors.
func WriteTable(w io.Writer, result *scan.BatchResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, headerColor.Sprint("SERVICE")+"\t"+headerColor.Sprint("RESOURCES")+"\t"+headerColor.Sprint("MONTHLY COST"))
	for _, row := range Services(result) {
		service := row.Service
		if row.Failed {
			service = failColor.Sprintf("%s (failed)", row.Service)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", service, row.Resources, costColor.Sprintf("$%.2f", row.MonthlyCost))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", totalColor.Sprint("Total Monthly Waste:"), costColor.Sprintf("$%.2f", result.TotalMonthlyCost))
	fmt.Fprintf(w, "Services Scanned:    %d\n", len(result.Findings))
	fmt.Fprintf(w, "Resources Flagged:   %d\n", result.FindingCount())

	if errs := Errors(result); len(errs) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, failColor.Sprintf("Errors (%d):", len(errs)))
		for _, e := range errs {
			fmt.Fprintf(w, "  - %s: %s\n", e.Service, e.Message)
		}
	}
	return nil
}

package output

import (
	"encoding/csv"
	"fmt"
	"io"

	"cloudsweep/internal/scan"
)

var csvHeader = []string{"Service", "Resource ID", "Reason", "Cost ($)"}

// WriteCSV writes one line per finding, most expensive first
func WriteCSV(w io.Writer, result *scan.BatchResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range Rows(result) {
		record := []string{row.Service, row.ResourceID, row.Reason, fmt.Sprintf("$%.2f", row.MonthlyCost)}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

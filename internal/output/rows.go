package output

import (
	"sort"

	"cloudsweep/internal/scan"
)

// ServiceSummary is one task's row in a report
type ServiceSummary struct {
	Service     string
	Resources   int
	MonthlyCost float64
	Failed      bool
}

// FindingRow is a finding tagged with the task that produced it
type FindingRow struct {
	Service string
	scan.Finding
}

// Services summarizes every task in the batch, most expensive first
func Services(result *scan.BatchResult) []ServiceSummary {
	rows := make([]ServiceSummary, 0, len(result.Findings))
	for name, findings := range result.Findings {
		_, failed := result.Errors[name]
		rows = append(rows, ServiceSummary{
			Service:     name,
			Resources:   len(findings),
			MonthlyCost: result.ServiceTotal(name),
			Failed:      failed,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].MonthlyCost != rows[j].MonthlyCost {
			return rows[i].MonthlyCost > rows[j].MonthlyCost
		}
		return rows[i].Service < rows[j].Service
	})
	return rows
}

// Rows flattens the batch into one row per finding, most expensive first.
// Ties keep a deterministic service then resource order.
func Rows(result *scan.BatchResult) []FindingRow {
	rows := make([]FindingRow, 0, result.FindingCount())
	for name, findings := range result.Findings {
		for _, f := range findings {
			rows = append(rows, FindingRow{Service: name, Finding: f})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].MonthlyCost != rows[j].MonthlyCost {
			return rows[i].MonthlyCost > rows[j].MonthlyCost
		}
		if rows[i].Service != rows[j].Service {
			return rows[i].Service < rows[j].Service
		}
		return rows[i].ResourceID < rows[j].ResourceID
	})
	return rows
}

// ErrorRow is one failed task
type ErrorRow struct {
	Service string
	Message string
}

// Errors lists failed tasks by name
func Errors(result *scan.BatchResult) []ErrorRow {
	rows := make([]ErrorRow, 0, len(result.Errors))
	for name, msg := range result.Errors {
		rows = append(rows, ErrorRow{Service: name, Message: msg})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Service < rows[j].Service })
	return rows
}

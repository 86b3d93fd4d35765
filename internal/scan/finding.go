// Package scan runs waste scanners on a bounded worker pool and folds their
// heterogeneous results into a uniform batch report.
package scan

import (
	"context"
	"time"
)

const (
	// UnknownResourceID is used when a result carries no usable identifier
	UnknownResourceID = "N/A"
	// DefaultReason is used when a result carries no usable reason
	DefaultReason = "No reason provided"
	// InvalidItemReason marks a result item that was not record-shaped
	InvalidItemReason = "invalid item"
)

// Finding is one flagged resource after normalization. Every field is
// always populated and MonthlyCost is never negative.
type Finding struct {
	ResourceID  string  `json:"resource_id"`
	Reason      string  `json:"reason"`
	MonthlyCost float64 `json:"monthly_cost"`
}

// Record is implemented by scanner result types that can expose themselves
// as a loosely typed field map.
type Record interface {
	Fields() map[string]interface{}
}

// Task is one named scanner invocation with its clients already bound.
type Task struct {
	Name string
	Run  func(ctx context.Context) (interface{}, error)
}

// BatchResult is the outcome of a batch. Findings has a key for every task;
// Errors only for the ones that failed.
type BatchResult struct {
	Findings         map[string][]Finding `json:"findings"`
	Errors           map[string]string    `json:"errors"`
	TotalMonthlyCost float64              `json:"total_monthly_cost"`
	Warnings         map[string][]string  `json:"warnings,omitempty"`
	Duration         time.Duration        `json:"duration_ns"`
	PeakParallel     int                  `json:"peak_parallel"`
}

// FindingCount returns the number of findings across all tasks
func (r *BatchResult) FindingCount() int {
	n := 0
	for _, f := range r.Findings {
		n += len(f)
	}
	return n
}

// ServiceTotal returns the summed monthly cost of one task's findings
func (r *BatchResult) ServiceTotal(name string) float64 {
	total := 0.0
	for _, f := range r.Findings[name] {
		total += f.MonthlyCost
	}
	return total
}

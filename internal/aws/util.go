package aws

import (
	"fmt"
	"strings"
	"time"
)

// FormatTimeDifference formats the duration between now and a given time into a human-readable string
// showing years, months, and days. If the time pointer is nil, returns "Never used".
// Example output: "2 years 3 months 5 days"
func FormatTimeDifference(now time.Time, then *time.Time) string {
	if then == nil {
		return "Never used"
	}

	totalDays := int(now.Sub(*then).Hours() / 24)
	if totalDays < 0 {
		totalDays = 0
	}

	years := totalDays / 365
	months := (totalDays % 365) / 30
	days := (totalDays % 365) % 30

	parts := make([]string, 0, 3)
	if years > 0 {
		parts = append(parts, plural(years, "year"))
	}
	if months > 0 {
		parts = append(parts, plural(months, "month"))
	}
	if days > 0 || len(parts) == 0 {
		parts = append(parts, plural(days, "day"))
	}

	return strings.Join(parts, " ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// DaysSince returns the whole days elapsed between then and now
func DaysSince(now, then time.Time) int {
	return int(now.Sub(then).Hours() / 24)
}

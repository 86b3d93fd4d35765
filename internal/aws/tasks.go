package aws

import (
	"context"
	"fmt"

	"cloudsweep/internal/logging"
	"cloudsweep/internal/scan"
)

// TaskName is the batch key for a scanner in a region. The bare label is
// used when only one region is scanned.
func TaskName(s Scanner, region string, multiRegion bool) string {
	if !multiRegion || region == "" {
		return s.Label()
	}
	return fmt.Sprintf("%s [%s]", s.Label(), region)
}

// GlobalScanner is implemented by scanners whose API is account wide rather
// than regional. They run once, against the first region.
type GlobalScanner interface {
	Global() bool
}

func isGlobal(s Scanner) bool {
	g, ok := s.(GlobalScanner)
	return ok && g.Global()
}

// BuildTasks binds every scanner to every regional client set. The returned
// thunks share nothing but the read-only clients.
func BuildTasks(regional []*Clients, scanners []Scanner, base ScanOptions) []scan.Task {
	multiRegion := len(regional) > 1
	tasks := make([]scan.Task, 0, len(regional)*len(scanners))

	for i, clients := range regional {
		for _, s := range scanners {
			clients, s := clients, s
			if i > 0 && isGlobal(s) {
				continue
			}
			opts := base
			opts.Region = clients.Region

			tasks = append(tasks, scan.Task{
				Name: TaskName(s, clients.Region, multiRegion && !isGlobal(s)),
				Run: func(ctx context.Context) (interface{}, error) {
					logging.ScannerStart(s.Label(), clients.Region)
					results, err := s.Scan(ctx, clients, opts)
					if err != nil {
						return nil, fmt.Errorf("%s scan failed in %s: %w", s.ArgumentName(), clients.Region, err)
					}
					return results, nil
				},
			})
		}
	}
	return tasks
}

package aws

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"cloudsweep/internal/aws/pricing"
)

// ScanOptions contains configuration for the scan operation
type ScanOptions struct {
	Region     string             // AWS region being scanned
	Rates      pricing.Rates      // Monthly cost heuristics
	Thresholds pricing.Thresholds // Idle and stale thresholds
}

// DefaultScanOptions returns options carrying the built-in rates and thresholds
func DefaultScanOptions(region string) ScanOptions {
	return ScanOptions{
		Region:     region,
		Rates:      pricing.DefaultRates,
		Thresholds: pricing.DefaultThresholds,
	}
}

// Scanner represents a resource scanner that can scan AWS resources
type Scanner interface {
	// ArgumentName returns the command-line argument name for the scanner
	ArgumentName() string

	// Label returns the service label used in reports
	Label() string

	// Scan inspects one region through clients and returns the flagged resources.
	// It must stop early when ctx is done.
	Scan(ctx context.Context, clients *Clients, opts ScanOptions) (ScanResults, error)
}

// Registry maintains a central registry of all available scanners
type Registry struct {
	mu       sync.RWMutex
	scanners map[string]Scanner
}

// NewRegistry creates a new scanner registry
func NewRegistry() *Registry {
	return &Registry{
		scanners: make(map[string]Scanner),
	}
}

// RegisterScanner adds a new scanner to the registry
func (r *Registry) RegisterScanner(s Scanner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	argName := s.ArgumentName()
	if _, exists := r.scanners[argName]; exists {
		return fmt.Errorf("scanner with argument name '%s' already registered", argName)
	}
	r.scanners[argName] = s
	return nil
}

// GetScanner retrieves a scanner by its argument name or label, ignoring case
func (r *Registry) GetScanner(identifier string) (Scanner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if scanner, ok := r.scanners[identifier]; ok {
		return scanner, nil
	}

	needle := strings.ToLower(strings.TrimSpace(identifier))
	for _, scanner := range r.scanners {
		if strings.ToLower(scanner.ArgumentName()) == needle ||
			strings.ToLower(scanner.Label()) == needle {
			return scanner, nil
		}
	}

	return nil, fmt.Errorf("no scanner found for identifier '%s'", identifier)
}

// ListScanners returns a sorted list of all registered scanner argument names
func (r *Registry) ListScanners() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.scanners))
	for name := range r.scanners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve maps identifiers to scanners, returning every registered scanner
// in argument-name order when identifiers is empty.
func (r *Registry) Resolve(identifiers []string) ([]Scanner, error) {
	if len(identifiers) == 0 {
		identifiers = r.ListScanners()
	}

	var (
		out     []Scanner
		invalid []string
		seen    = make(map[string]struct{})
	)
	for _, id := range identifiers {
		s, err := r.GetScanner(id)
		if err != nil {
			invalid = append(invalid, id)
			continue
		}
		if _, dup := seen[s.ArgumentName()]; dup {
			continue
		}
		seen[s.ArgumentName()] = struct{}{}
		out = append(out, s)
	}

	if len(invalid) > 0 {
		return nil, fmt.Errorf("invalid scanner(s): %s. Available scanners: %s",
			strings.Join(invalid, ", "), strings.Join(r.ListScanners(), ", "))
	}
	return out, nil
}

// DefaultRegistry is the default scanner registry instance
var DefaultRegistry = NewRegistry()

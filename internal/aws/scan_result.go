package aws

// ScanResult represents a single resource found during a scan
type ScanResult struct {
	ResourceType string                 `json:"resource_type"`
	ResourceName string                 `json:"resource_name"`
	ResourceID   string                 `json:"resource_id"`
	Reason       string                 `json:"reason"`
	MonthlyCost  float64                `json:"monthly_cost"`
	Tags         map[string]string      `json:"tags,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// Fields exposes the result under the keys the batch normalizer understands
func (r ScanResult) Fields() map[string]interface{} {
	return map[string]interface{}{
		"ID":     r.ResourceID,
		"Reason": r.Reason,
		"Cost":   r.MonthlyCost,
	}
}

// ScanResults is a slice of ScanResult
type ScanResults []ScanResult

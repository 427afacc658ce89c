package session

type FindingType string

const (
	FindingNewIP               FindingType = "new_ip"
	FindingNewDevice           FindingType = "new_device"
	FindingRapidLocationChange FindingType = "rapid_location_change"
)

type Severity string

const (
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Finding is one suspicious aspect of a login compared with the user's recent
// session history.
type Finding struct {
	Type     FindingType            `json:"type"`
	Message  string                 `json:"message"`
	Severity Severity               `json:"severity"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

// HasHighSeverity reports whether any finding is high severity.
func HasHighSeverity(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityHigh {
			return true
		}
	}
	return false
}

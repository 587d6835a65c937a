package diag

import "fmt"

// Severity defines the importance of a diagnostic. Higher is more severe.
type Severity uint8

const (
	// SevHidden is for diagnostics that are never shown but may still carry fixes.
	SevHidden Severity = iota
	// SevInfo is for informational diagnostics.
	SevInfo
	// SevWarning is for warning diagnostics.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevHidden:
		return "HIDDEN"
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ParseSeverity converts a case-insensitive name into a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "hidden", "HIDDEN":
		return SevHidden, nil
	case "info", "INFO":
		return SevInfo, nil
	case "warning", "WARNING", "warn":
		return SevWarning, nil
	case "error", "ERROR":
		return SevError, nil
	}
	return SevHidden, fmt.Errorf("invalid severity: %q (expected: hidden|info|warning|error)", s)
}

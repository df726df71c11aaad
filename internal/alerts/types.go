// Package alerts provides threshold- and trend-based alerting for DAB
// converter telemetry.
package alerts

import "fmt"

// Severity is the ordered classification of how badly a metric violates its
// safe operating range.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityCritical
	SeverityEmergency
)

// SeveritiesDesc lists severities from most to least severe, for display
// in breakdowns.
var SeveritiesDesc = []Severity{
	SeverityEmergency,
	SeverityCritical,
	SeverityWarning,
	SeverityInfo,
}

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	case SeverityEmergency:
		return "emergency"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// ParseSeverity converts a severity name to a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "info":
		return SeverityInfo, nil
	case "warning":
		return SeverityWarning, nil
	case "critical":
		return SeverityCritical, nil
	case "emergency":
		return SeverityEmergency, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity %q", s)
	}
}

// Kind identifies what produced an alert.
type Kind string

const (
	KindThreshold         Kind = "threshold"
	KindTrend             Kind = "trend"
	KindHealthDegradation Kind = "health_degradation"
)

// String returns the kind name.
func (k Kind) String() string {
	return string(k)
}

// ParseKind converts a kind name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindThreshold, KindTrend, KindHealthDegradation:
		return Kind(s), nil
	default:
		return KindThreshold, fmt.Errorf("unknown alert kind %q", s)
	}
}

// Direction encodes which way a metric degrades.
type Direction string

const (
	// LowerIsWorse applies to efficiency and health score.
	LowerIsWorse Direction = "lower_is_worse"
	// HigherIsWorse applies to temperature and loss metrics.
	HigherIsWorse Direction = "higher_is_worse"
)

// Violated reports whether value breaches the boundary in the worse
// direction. Boundaries themselves count as violations, matching the
// converter's stock limits.
func (d Direction) Violated(value, boundary float64) bool {
	if d == LowerIsWorse {
		return value <= boundary
	}
	return value >= boundary
}

// IsValid returns true if the direction is recognized.
func (d Direction) IsValid() bool {
	return d == LowerIsWorse || d == HigherIsWorse
}

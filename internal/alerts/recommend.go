package alerts

import "dabmon/internal/telemetry"

// ZVSRecommendation is attached when the converter has lost zero-voltage
// switching at evaluation time.
const ZVSRecommendation = "Adjust phase shift to restore ZVS operation"

// Recommendations returns operator hints for a metric at a severity.
// Unknown metrics and sub-warning severities yield nothing.
func Recommendations(metric string, severity Severity) []string {
	if severity < SeverityWarning {
		return nil
	}
	critical := severity >= SeverityCritical

	switch metric {
	case telemetry.MetricEfficiency:
		if critical {
			return []string{"Critical: Increase phase shift to improve efficiency"}
		}
		return []string{"Warning: Consider optimizing phase shift for better efficiency"}
	case telemetry.MetricTemperature:
		if critical {
			return []string{"Critical: Reduce load power to lower temperature"}
		}
		return []string{"Warning: Monitor temperature and consider cooling improvements"}
	case telemetry.MetricHealthScore:
		if critical {
			return []string{"Critical: Perform maintenance on power components"}
		}
		return []string{"Warning: Schedule preventive maintenance"}
	default:
		return nil
	}
}

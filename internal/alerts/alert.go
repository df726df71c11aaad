package alerts

import (
	"fmt"
	"strings"
	"time"
)

// TrendDetail captures the trend computation behind a trend alert.
type TrendDetail struct {
	// Start is the earliest in-window value.
	Start float64

	// End is the latest in-window value.
	End float64

	// PctChange is (End - Start) / |Start| * 100.
	PctChange float64

	// Average is the arithmetic mean of the in-window values.
	Average float64

	// Smoothed is an exponentially weighted average of the in-window
	// values, less sensitive to outliers than Average.
	Smoothed float64

	// WindowHours is the trailing window the trend was computed over.
	WindowHours float64
}

// Alert is a single raised alert. Alerts are immutable once appended to the
// store; acknowledgment is the only permitted mutation.
type Alert struct {
	// ID is assigned by the store on append.
	ID int64

	// Timestamp is the telemetry timestamp the alert was raised for.
	Timestamp time.Time

	Severity Severity
	Kind     Kind

	// Metric is the telemetry metric that violated its limits.
	Metric string

	// Value is the observed value.
	Value float64

	// Threshold is the exact boundary that was crossed (threshold alerts).
	Threshold *float64

	// Trend holds the trend computation (trend and degradation alerts).
	Trend *TrendDetail

	// Recommendations are operator hints attached at evaluation time.
	Recommendations []string

	// Message is the human-readable alert text.
	Message string

	// AcknowledgedAt is when the alert was acknowledged (nil if not).
	AcknowledgedAt *time.Time

	// AcknowledgedBy is who acknowledged the alert.
	AcknowledgedBy string
}

// IsAcknowledged returns true if the alert has been acknowledged.
func (a *Alert) IsAcknowledged() bool {
	return a.AcknowledgedAt != nil
}

// acknowledge marks the alert acknowledged. Calling it again is a no-op so
// repeated acknowledgment stays idempotent.
func (a *Alert) acknowledge(by string, at time.Time) {
	if a.AcknowledgedAt != nil {
		return
	}
	a.AcknowledgedAt = &at
	a.AcknowledgedBy = by
}

// metricTitle renders a metric name for messages: "efficiency_percent"
// becomes "Efficiency Percent".
func metricTitle(metric string) string {
	words := strings.Split(metric, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// thresholdMessage formats the message for a threshold alert.
func thresholdMessage(metric string, value, threshold float64) string {
	return fmt.Sprintf("%s: %.2f (threshold: %.2f)", metricTitle(metric), value, threshold)
}

// trendMessage formats the message for a trend alert.
func trendMessage(metric string, pctChange, windowHours float64) string {
	return fmt.Sprintf("%s trend %+.1f%% over %gh", metricTitle(metric), pctChange, windowHours)
}

// Package telemetry provides converter telemetry readings and snapshot loading.
package telemetry

import (
	"math"
	"time"
)

// Metric names present in converter snapshots.
const (
	MetricEfficiency     = "efficiency_percent"
	MetricTemperature    = "temperature_C"
	MetricHealthScore    = "health_score"
	MetricPowerLoss      = "power_loss_W"
	MetricSwitchingLoss  = "switching_loss_W"
	MetricConductionLoss = "conduction_loss_W"
)

// Reading is a single timestamped telemetry measurement.
type Reading struct {
	// Timestamp is when the measurement was taken.
	Timestamp time.Time

	// Values maps metric names to measured values.
	Values map[string]float64

	// ZVS indicates whether the converter was in zero-voltage switching.
	ZVS bool
}

// NewReading creates a Reading at the given timestamp.
func NewReading(ts time.Time) Reading {
	return Reading{
		Timestamp: ts,
		Values:    make(map[string]float64),
	}
}

// Get returns the value for a metric and whether it is present.
// NaN and Inf values are treated as absent.
func (r Reading) Get(name string) (float64, bool) {
	v, ok := r.Values[name]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Set records a metric value on the reading.
func (r Reading) Set(name string, value float64) {
	r.Values[name] = value
}

// IsValid returns true if the reading has a usable timestamp.
func (r Reading) IsValid() bool {
	return !r.Timestamp.IsZero()
}

// Latest returns the last reading of an ordered sequence.
func Latest(readings []Reading) (Reading, bool) {
	if len(readings) == 0 {
		return Reading{}, false
	}
	return readings[len(readings)-1], true
}

// Window returns the right-aligned slice of readings whose timestamps fall
// within d of the latest timestamp in the sequence. The anchor is the latest
// reading, not wall-clock now, so results are reproducible on historical data.
func Window(readings []Reading, d time.Duration) []Reading {
	if len(readings) == 0 {
		return nil
	}
	cutoff := readings[len(readings)-1].Timestamp.Add(-d)
	for i, r := range readings {
		if !r.Timestamp.Before(cutoff) {
			return readings[i:]
		}
	}
	return nil
}

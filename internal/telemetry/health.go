package telemetry

import "math"

// Health score weighting over efficiency, temperature headroom, and ZVS.
const (
	healthEfficiencyRef = 98.0
	healthTempFloor     = 35.0
	healthTempCeiling   = 65.0
)

// HealthScore computes the 0-100 converter health score from efficiency,
// temperature, and ZVS status, rounded to one decimal place.
func HealthScore(efficiencyPct, temperatureC float64, zvs bool) float64 {
	zvsTerm := 0.0
	if zvs {
		zvsTerm = 1.0
	}
	score := 0.5*(efficiencyPct/healthEfficiencyRef) +
		0.3*(1-(temperatureC-healthTempFloor)/(healthTempCeiling-healthTempFloor)) +
		0.2*zvsTerm
	return math.Round(score*1000) / 10
}

// AddHealthScores fills in the health_score metric for readings that carry
// efficiency and temperature but no health score of their own.
func AddHealthScores(readings []Reading) {
	for _, r := range readings {
		if _, ok := r.Get(MetricHealthScore); ok {
			continue
		}
		eff, okEff := r.Get(MetricEfficiency)
		temp, okTemp := r.Get(MetricTemperature)
		if !okEff || !okTemp {
			continue
		}
		r.Set(MetricHealthScore, HealthScore(eff, temp, r.ZVS))
	}
}

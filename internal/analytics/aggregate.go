// Package analytics implements the weekly health analytics engine:
// aggregation, trend classification, consistency analysis, risk scoring
// and insight generation over a user's time-ordered readings. Every
// computation is a pure function of its inputs; the engine holds no
// state between calls and is safe to invoke concurrently.
package analytics

import (
	"github.com/SVPraveen1/health-ai-sub000/internal/health"
)

// Selector extracts one numeric field from a reading. The second return
// reports whether the field was recorded.
type Selector func(m health.HealthMetric) (float64, bool)

func fromPtr(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Field selectors used by the aggregator and trend classifier.
var (
	HeartRateOf       Selector = func(m health.HealthMetric) (float64, bool) { return fromPtr(m.HeartRate) }
	SystolicOf        Selector = func(m health.HealthMetric) (float64, bool) { return fromPtr(m.SystolicBP) }
	DiastolicOf       Selector = func(m health.HealthMetric) (float64, bool) { return fromPtr(m.DiastolicBP) }
	SleepHoursOf      Selector = func(m health.HealthMetric) (float64, bool) { return fromPtr(m.SleepHours) }
	ActivityMinutesOf Selector = func(m health.HealthMetric) (float64, bool) { return fromPtr(m.ActivityMinutes) }
	WeightOf          Selector = func(m health.HealthMetric) (float64, bool) { return fromPtr(m.Weight) }
	StepsOf           Selector = func(m health.HealthMetric) (float64, bool) { return fromPtr(m.Steps) }
)

// Average returns the arithmetic mean of the defined values of one
// field. An empty series, or a series where the field is never
// recorded, yields 0 rather than an error.
func Average(metrics []health.HealthMetric, sel Selector) float64 {
	var sum float64
	var n int
	for _, m := range metrics {
		if v, ok := sel(m); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Sum returns the total of the defined values of one field, 0 if none.
func Sum(metrics []health.HealthMetric, sel Selector) float64 {
	var sum float64
	for _, m := range metrics {
		if v, ok := sel(m); ok {
			sum += v
		}
	}
	return sum
}

// WeightChange returns last defined weight minus first defined weight
// over the window, or 0 when fewer than two weights were recorded.
func WeightChange(metrics []health.HealthMetric) float64 {
	var first, last float64
	var n int
	for _, m := range metrics {
		if v, ok := WeightOf(m); ok {
			if n == 0 {
				first = v
			}
			last = v
			n++
		}
	}
	if n < 2 {
		return 0
	}
	return last - first
}

// Values collects the defined values of one field in series order.
func Values(metrics []health.HealthMetric, sel Selector) []float64 {
	var out []float64
	for _, m := range metrics {
		if v, ok := sel(m); ok {
			out = append(out, v)
		}
	}
	return out
}

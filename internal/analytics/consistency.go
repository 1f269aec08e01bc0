package analytics

import (
	"math"

	"github.com/SVPraveen1/health-ai-sub000/internal/health"
)

// ConsistencyRating buckets an adherence percentage.
type ConsistencyRating string

const (
	ConsistencyExcellent ConsistencyRating = "excellent"
	ConsistencyGood      ConsistencyRating = "good"
	ConsistencyFair      ConsistencyRating = "fair"
	ConsistencyPoor      ConsistencyRating = "poor"
)

// ActivityConsistency measures how regularly the user was active across
// the series: distinct calendar days with recorded activity divided by
// the elapsed days between first and last reading.
//
// A single-reading series has a zero-day span; it counts as 100% when
// that day was active and 0% otherwise, so the division is always
// defined.
func ActivityConsistency(metrics []health.HealthMetric) (float64, ConsistencyRating) {
	if len(metrics) == 0 {
		return 0, ConsistencyPoor
	}

	activeDates := make(map[string]struct{})
	for _, m := range metrics {
		if v, ok := ActivityMinutesOf(m); ok && v > 0 {
			activeDates[m.CreatedAt.Format("2006-01-02")] = struct{}{}
		}
	}
	activeDays := len(activeDates)

	span := metrics[len(metrics)-1].CreatedAt.Sub(metrics[0].CreatedAt)
	totalDays := int(math.Ceil(span.Hours() / 24))

	var percent float64
	if totalDays == 0 {
		if activeDays >= 1 {
			percent = 100
		}
	} else {
		percent = float64(activeDays) / float64(totalDays) * 100
	}

	return percent, RateConsistency(percent)
}

// RateConsistency buckets a percentage; lower bounds are inclusive.
func RateConsistency(percent float64) ConsistencyRating {
	switch {
	case percent >= 80:
		return ConsistencyExcellent
	case percent >= 60:
		return ConsistencyGood
	case percent >= 40:
		return ConsistencyFair
	default:
		return ConsistencyPoor
	}
}

package analytics

import (
	"github.com/SVPraveen1/health-ai-sub000/internal/health"
)

// Trend labels the direction of a time-ordered series.
type Trend string

const (
	TrendStable           Trend = "stable"
	TrendImproving        Trend = "improving"
	TrendDeclining        Trend = "declining"
	TrendHighlyVariable   Trend = "highly_variable"
	TrendInsufficientData Trend = "insufficient_data"
)

// ClassifyValues labels a numeric series by its pairwise transitions.
// "Improving" means numerically increasing; the caller owns whether an
// increase is clinically better (it is not for e.g. resting heart
// rate). Fewer than 3 values yields TrendInsufficientData.
//
// A side wins only when it beats the other by more than 1.5x. The
// asymmetric threshold is hysteresis against label flapping on noisy
// series; do not tighten it.
func ClassifyValues(values []float64) Trend {
	if len(values) < 3 {
		return TrendInsufficientData
	}

	var improving, declining int
	for i := 1; i < len(values); i++ {
		switch {
		case values[i] > values[i-1]:
			improving++
		case values[i] < values[i-1]:
			declining++
		}
	}

	return classifyTransitions(improving, declining, len(values)-1)
}

// ClassifySleepQuality labels an ordinal sleep-quality series using the
// fixed rank order poor < fair < good < excellent. Readings without a
// valid rating are skipped.
func ClassifySleepQuality(qualities []health.SleepQuality) Trend {
	var ranks []float64
	for _, q := range qualities {
		if r := q.Rank(); r >= 0 {
			ranks = append(ranks, float64(r))
		}
	}
	return ClassifyValues(ranks)
}

func classifyTransitions(improving, declining, total int) Trend {
	switch {
	case float64(improving) > float64(declining)*1.5:
		return TrendImproving
	case float64(declining) > float64(improving)*1.5:
		return TrendDeclining
	}

	// Neither side dominates. A series that moves on nearly every
	// transition, in both directions, is highly variable; anything
	// flatter is stable.
	moved := improving + declining
	if improving > 0 && declining > 0 && moved*4 > total*3 {
		return TrendHighlyVariable
	}
	return TrendStable
}

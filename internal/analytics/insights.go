package analytics

import (
	"fmt"
	"math"

	"github.com/SVPraveen1/health-ai-sub000/internal/health"
)

// InsightType tags an advisory message.
type InsightType string

const (
	InsightSuccess InsightType = "success"
	InsightWarning InsightType = "warning"
	InsightInfo    InsightType = "info"
)

// Insight is one generated advisory message. Ephemeral; regenerated on
// every run.
type Insight struct {
	Type    InsightType `json:"type"`
	Message string      `json:"message"`
}

const weeklyActivityTarget = 150 // minutes, WHO guideline

// GenerateInsights evaluates the seven advisory rules against the
// week's aggregates and goals. All rules are independent and all are
// evaluated; emission order is fixed. Identical inputs always produce
// the identical ordered list.
func GenerateInsights(m WeeklyMetrics, goals []health.HealthGoal) []Insight {
	insights := []Insight{}

	if m.AverageHeartRate > 100 {
		insights = append(insights, Insight{
			Type:    InsightWarning,
			Message: fmt.Sprintf("Your average heart rate of %.0f bpm is elevated. Consider consulting a doctor.", m.AverageHeartRate),
		})
	}

	if m.AverageSystolicBP >= 140 || m.AverageDiastolicBP >= 90 {
		insights = append(insights, Insight{
			Type:    InsightWarning,
			Message: fmt.Sprintf("Your average blood pressure of %.0f/%.0f is in the high range. Please consult your doctor.", m.AverageSystolicBP, m.AverageDiastolicBP),
		})
	}

	if m.AverageSleepHours < 7 {
		insights = append(insights, Insight{
			Type:    InsightWarning,
			Message: fmt.Sprintf("You averaged %.1f hours of sleep, below the recommended 7 hours.", m.AverageSleepHours),
		})
	} else if m.SleepQualityTrend == TrendImproving {
		insights = append(insights, Insight{
			Type:    InsightSuccess,
			Message: "Your sleep quality is improving. Keep it up!",
		})
	}

	if m.TotalActivityMinutes >= weeklyActivityTarget {
		insights = append(insights, Insight{
			Type:    InsightSuccess,
			Message: fmt.Sprintf("You logged %.0f active minutes, meeting the %d-minute weekly goal.", m.TotalActivityMinutes, weeklyActivityTarget),
		})
	} else {
		shortfall := weeklyActivityTarget - int(m.TotalActivityMinutes)
		insights = append(insights, Insight{
			Type:    InsightInfo,
			Message: fmt.Sprintf("You were %d minutes short of weekly goal of %d active minutes.", shortfall, weeklyActivityTarget),
		})
	}

	if m.ActivityConsistency == ConsistencyExcellent {
		insights = append(insights, Insight{
			Type:    InsightSuccess,
			Message: "Excellent activity consistency this week.",
		})
	}

	if total := len(goals); total > 0 {
		completed := 0
		for _, g := range goals {
			if g.Completed {
				completed++
			}
		}
		ratio := float64(completed) / float64(total)
		if ratio >= 0.8 {
			insights = append(insights, Insight{
				Type:    InsightSuccess,
				Message: fmt.Sprintf("You've completed %d of %d health goals. Great progress!", completed, total),
			})
		} else if ratio < 0.3 {
			insights = append(insights, Insight{
				Type:    InsightInfo,
				Message: fmt.Sprintf("Only %d of %d goals complete. Small consistent steps add up.", completed, total),
			})
		}
	}

	if math.Abs(m.WeightChange) > 2 {
		insights = append(insights, Insight{
			Type:    InsightInfo,
			Message: fmt.Sprintf("Your weight changed by %.1f this week. Significant changes are worth tracking closely.", math.Abs(m.WeightChange)),
		})
	}

	return insights
}

package analytics

import (
	"sort"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/SVPraveen1/health-ai-sub000/internal/errors"
	"github.com/SVPraveen1/health-ai-sub000/internal/health"
)

// Window is a half-open report interval [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// WeeklyMetrics holds the aggregates for one report window.
type WeeklyMetrics struct {
	AverageHeartRate     float64 `json:"average_heart_rate"`
	AverageSystolicBP    float64 `json:"average_systolic_bp"`
	AverageDiastolicBP   float64 `json:"average_diastolic_bp"`
	AverageSleepHours    float64 `json:"average_sleep_hours"`
	TotalActivityMinutes float64 `json:"total_activity_minutes"`
	TotalSteps           float64 `json:"total_steps"`
	WeightChange         float64 `json:"weight_change"`

	SleepQualityTrend      Trend             `json:"sleep_quality_trend"`
	ActivityConsistency    ConsistencyRating `json:"activity_consistency"`
	ActivityConsistencyPct float64           `json:"activity_consistency_pct"`
}

// GoalDeadline is one upcoming goal deadline in a report.
type GoalDeadline struct {
	Title    string    `json:"title"`
	Deadline time.Time `json:"deadline"`
}

// GoalsSummary counts goal completion and surfaces at most the three
// nearest incomplete deadlines.
type GoalsSummary struct {
	Completed     int            `json:"completed"`
	Total         int            `json:"total"`
	NextDeadlines []GoalDeadline `json:"next_deadlines"`
}

// WeeklyReport is the full analytics output for one user and window.
// It carries no generation timestamp: the same readings, goals and
// window always marshal to the same bytes, which is what lets the
// report cache serve stale-free hits.
type WeeklyReport struct {
	UserID       string         `json:"user_id"`
	Window       Window         `json:"window"`
	ReadingCount int            `json:"reading_count"`
	Metrics      WeeklyMetrics  `json:"metrics"`
	Risk         RiskAssessment `json:"risk"`
	Goals        GoalsSummary   `json:"goals"`
	Insights     []Insight      `json:"insights"`
}

// Engine builds weekly reports. It is stateless and safe for
// concurrent use.
type Engine struct {
	logger *zap.Logger
}

func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

const maxReportDeadlines = 3

// WeeklyReport computes the full report for one user's readings inside
// the window. Readings must already be ascending by CreatedAt and all
// belong to userID; the store's window query guarantees both, and the
// engine rejects input that violates either.
func (e *Engine) WeeklyReport(userID string, metrics []health.HealthMetric, goals []health.HealthGoal, window Window) (*WeeklyReport, error) {
	if userID == "" {
		return nil, apperrors.ErrMissingUser
	}
	if !window.End.After(window.Start) {
		return nil, apperrors.ErrInvalidWindow
	}
	for i, m := range metrics {
		if m.UserID != userID {
			return nil, apperrors.ErrInvalidMetrics
		}
		if i > 0 && m.CreatedAt.Before(metrics[i-1].CreatedAt) {
			return nil, apperrors.ErrInvalidMetrics
		}
	}

	consistencyPct, consistency := ActivityConsistency(metrics)

	wm := WeeklyMetrics{
		AverageHeartRate:     Average(metrics, HeartRateOf),
		AverageSystolicBP:    Average(metrics, SystolicOf),
		AverageDiastolicBP:   Average(metrics, DiastolicOf),
		AverageSleepHours:    Average(metrics, SleepHoursOf),
		TotalActivityMinutes: Sum(metrics, ActivityMinutesOf),
		TotalSteps:           Sum(metrics, StepsOf),
		WeightChange:         WeightChange(metrics),

		SleepQualityTrend:      sleepQualityTrend(metrics),
		ActivityConsistency:    consistency,
		ActivityConsistencyPct: consistencyPct,
	}

	report := &WeeklyReport{
		UserID:       userID,
		Window:       window,
		ReadingCount: len(metrics),
		Metrics:      wm,
		Risk:         weeklyRisk(metrics, wm),
		Goals:        summarizeGoals(goals),
		Insights:     GenerateInsights(wm, goals),
	}

	e.logger.Debug("weekly report built",
		zap.String("user_id", userID),
		zap.Int("readings", len(metrics)),
		zap.Int("risk_score", report.Risk.Score),
		zap.Int("insights", len(report.Insights)))

	return report, nil
}

// weeklyRisk scores the week's averaged vitals under the prediction
// profile, with the week's own trends as context.
func weeklyRisk(metrics []health.HealthMetric, wm WeeklyMetrics) RiskAssessment {
	synthetic := health.HealthMetric{}
	if len(Values(metrics, HeartRateOf)) > 0 {
		hr := wm.AverageHeartRate
		synthetic.HeartRate = &hr
	}
	if len(Values(metrics, SystolicOf)) > 0 {
		sys := wm.AverageSystolicBP
		synthetic.SystolicBP = &sys
	}
	if len(Values(metrics, DiastolicOf)) > 0 {
		dia := wm.AverageDiastolicBP
		synthetic.DiastolicBP = &dia
	}

	trends := &TrendContext{
		HeartRate:     ClassifyValues(Values(metrics, HeartRateOf)),
		BloodPressure: ClassifyValues(Values(metrics, SystolicOf)),
	}

	return ScoreReading(synthetic, ProfilePrediction, trends)
}

func sleepQualityTrend(metrics []health.HealthMetric) Trend {
	qualities := make([]health.SleepQuality, 0, len(metrics))
	for _, m := range metrics {
		qualities = append(qualities, m.SleepQuality)
	}
	return ClassifySleepQuality(qualities)
}

func summarizeGoals(goals []health.HealthGoal) GoalsSummary {
	summary := GoalsSummary{Total: len(goals), NextDeadlines: []GoalDeadline{}}

	var pending []health.HealthGoal
	for _, g := range goals {
		if g.Completed {
			summary.Completed++
		} else {
			pending = append(pending, g)
		}
	}

	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Deadline.Before(pending[j].Deadline)
	})
	for _, g := range pending {
		if len(summary.NextDeadlines) == maxReportDeadlines {
			break
		}
		summary.NextDeadlines = append(summary.NextDeadlines, GoalDeadline{
			Title:    g.Title,
			Deadline: g.Deadline,
		})
	}

	return summary
}

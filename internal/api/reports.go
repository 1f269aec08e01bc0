package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/SVPraveen1/health-ai-sub000/internal/analytics"
	apperrors "github.com/SVPraveen1/health-ai-sub000/internal/errors"
	"github.com/SVPraveen1/health-ai-sub000/internal/health"
)

// WeekStart returns the UTC midnight Monday of the week containing t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}

// handleWeeklyReport serves the weekly analytics report. Optional
// week_start=YYYY-MM-DD selects a past week; the default is the current
// week. Reports are read through the cache when one is configured.
func (s *Server) handleWeeklyReport(c *fiber.Ctx) error {
	uid := userID(c)

	start := WeekStart(time.Now())
	if q := c.Query("week_start"); q != "" {
		parsed, err := time.Parse("2006-01-02", q)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": apperrors.ErrInvalidWindow.Message})
		}
		start = WeekStart(parsed)
	}
	window := analytics.Window{Start: start, End: start.AddDate(0, 0, 7)}

	if s.cache != nil {
		cached, err := s.cache.Get(uid, window.Start)
		if err == nil && cached != nil {
			if s.metrics != nil {
				s.metrics.CacheHits.Inc()
			}
			return c.JSON(cached)
		}
		if s.metrics != nil {
			s.metrics.CacheMisses.Inc()
		}
	}

	report, err := s.buildReport(uid, window)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok {
			return c.Status(400).JSON(fiber.Map{"error": appErr.Message})
		}
		s.logger.Error("Failed to build weekly report", zap.String("user_id", uid), zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to build report"})
	}

	if s.cache != nil {
		if err := s.cache.Put(report); err != nil {
			s.logger.Warn("Failed to cache weekly report", zap.Error(err))
		}
	}

	return c.JSON(report)
}

func (s *Server) buildReport(uid string, window analytics.Window) (*analytics.WeeklyReport, error) {
	start := time.Now()

	readings, err := s.store.GetMetricsWindow(uid, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	goals, err := s.store.ListGoals(uid)
	if err != nil {
		return nil, err
	}

	report, err := s.engine.WeeklyReport(uid, readings, goals, window)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ReportsBuilt.Inc()
		s.metrics.ReportDuration.Observe(time.Since(start).Seconds())
	}
	return report, nil
}

// invalidateReportWeek drops the cached report covering t, so edits
// show up on the next fetch instead of after TTL expiry.
func (s *Server) invalidateReportWeek(uid string, t time.Time) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(uid, WeekStart(t)); err != nil {
		s.logger.Warn("Failed to invalidate cached report", zap.String("user_id", uid), zap.Error(err))
	}
}

// handleRisk scores a single reading without persisting it. The
// optional trend context only affects the prediction profile.
func (s *Server) handleRisk(c *fiber.Ctx) error {
	var req struct {
		HeartRate   *float64                `json:"heart_rate"`
		SystolicBP  *float64                `json:"systolic_bp"`
		DiastolicBP *float64                `json:"diastolic_bp"`
		Profile     string                  `json:"profile"`
		Trends      *analytics.TrendContext `json:"trends"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": apperrors.ErrInvalidMetrics.Message})
	}

	profile := analytics.ProfileDashboard
	switch req.Profile {
	case "", string(analytics.ProfileDashboard):
	case string(analytics.ProfilePrediction):
		profile = analytics.ProfilePrediction
	default:
		return c.Status(400).JSON(fiber.Map{"error": "profile must be dashboard or prediction"})
	}

	reading := health.HealthMetric{
		HeartRate:   req.HeartRate,
		SystolicBP:  req.SystolicBP,
		DiastolicBP: req.DiastolicBP,
	}

	return c.JSON(analytics.ScoreReading(reading, profile, req.Trends))
}

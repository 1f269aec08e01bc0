package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/SVPraveen1/health-ai-sub000/internal/errors"
	"github.com/SVPraveen1/health-ai-sub000/internal/health"
)

// ==================== Readings ====================

func (s *Server) handleCreateMetric(c *fiber.Ctx) error {
	var metric health.HealthMetric
	if err := c.BodyParser(&metric); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": apperrors.ErrInvalidMetrics.Message})
	}

	if metric.SleepQuality != "" && !metric.SleepQuality.Valid() {
		return c.Status(400).JSON(fiber.Map{"error": apperrors.ErrInvalidMetrics.Message})
	}
	if metric.ActivityType != "" && !metric.ActivityType.Valid() {
		return c.Status(400).JSON(fiber.Map{"error": apperrors.ErrInvalidMetrics.Message})
	}
	if metric.Mood != "" && !metric.Mood.Valid() {
		return c.Status(400).JSON(fiber.Map{"error": apperrors.ErrInvalidMetrics.Message})
	}

	metric.ID = ""
	metric.UserID = userID(c)

	if err := s.store.CreateMetric(&metric); err != nil {
		s.logger.Error("Failed to create metric", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to create metric"})
	}

	s.invalidateReportWeek(metric.UserID, metric.CreatedAt)

	return c.Status(201).JSON(metric)
}

func (s *Server) handleListMetrics(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	metrics, err := s.store.ListMetrics(userID(c), limit, offset)
	if err != nil {
		s.logger.Error("Failed to list metrics", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to list metrics"})
	}

	return c.JSON(metrics)
}

func (s *Server) handleGetMetric(c *fiber.Ctx) error {
	metric, err := s.store.GetMetric(c.Params("id"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to get metric"})
	}
	if metric == nil || metric.UserID != userID(c) {
		return c.Status(404).JSON(fiber.Map{"error": apperrors.ErrNotFound.Message})
	}
	return c.JSON(metric)
}

func (s *Server) handleUpdateMetric(c *fiber.Ctx) error {
	existing, err := s.store.GetMetric(c.Params("id"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to get metric"})
	}
	if existing == nil || existing.UserID != userID(c) {
		return c.Status(404).JSON(fiber.Map{"error": apperrors.ErrNotFound.Message})
	}

	var update health.HealthMetric
	if err := c.BodyParser(&update); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": apperrors.ErrInvalidMetrics.Message})
	}

	// Identity and ordering fields are not editable.
	update.ID = existing.ID
	update.UserID = existing.UserID
	update.CreatedAt = existing.CreatedAt

	if err := s.store.UpdateMetric(&update); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to update metric"})
	}

	s.invalidateReportWeek(update.UserID, update.CreatedAt)

	return c.JSON(update)
}

func (s *Server) handleDeleteMetric(c *fiber.Ctx) error {
	existing, err := s.store.GetMetric(c.Params("id"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to get metric"})
	}
	if existing == nil || existing.UserID != userID(c) {
		return c.Status(404).JSON(fiber.Map{"error": apperrors.ErrNotFound.Message})
	}

	if err := s.store.DeleteMetric(existing.ID); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete metric"})
	}

	s.invalidateReportWeek(existing.UserID, existing.CreatedAt)

	return c.SendStatus(204)
}

// ==================== Goals ====================

func (s *Server) handleCreateGoal(c *fiber.Ctx) error {
	var goal health.HealthGoal
	if err := c.BodyParser(&goal); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": apperrors.ErrInvalidGoal.Message})
	}

	if goal.Type != "" && !goal.Type.Valid() {
		return c.Status(400).JSON(fiber.Map{"error": apperrors.ErrInvalidGoal.Message})
	}

	goal.ID = ""
	goal.UserID = userID(c)

	if err := s.store.CreateGoal(&goal); err != nil {
		if err == apperrors.ErrInvalidGoal {
			return c.Status(400).JSON(fiber.Map{"error": apperrors.ErrInvalidGoal.Message})
		}
		s.logger.Error("Failed to create goal", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to create goal"})
	}

	return c.Status(201).JSON(goal)
}

func (s *Server) handleListGoals(c *fiber.Ctx) error {
	goals, err := s.store.ListGoals(userID(c))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to list goals"})
	}
	return c.JSON(goals)
}

func (s *Server) handleUpdateGoalProgress(c *fiber.Ctx) error {
	var req struct {
		Progress float64 `json:"progress"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}

	existing, err := s.store.GetGoal(c.Params("id"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to get goal"})
	}
	if existing == nil || existing.UserID != userID(c) {
		return c.Status(404).JSON(fiber.Map{"error": apperrors.ErrNotFound.Message})
	}

	goal, err := s.store.UpdateGoalProgress(existing.ID, req.Progress)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to update goal"})
	}

	return c.JSON(goal)
}

func (s *Server) handleDeleteGoal(c *fiber.Ctx) error {
	existing, err := s.store.GetGoal(c.Params("id"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to get goal"})
	}
	if existing == nil || existing.UserID != userID(c) {
		return c.Status(404).JSON(fiber.Map{"error": apperrors.ErrNotFound.Message})
	}

	if err := s.store.DeleteGoal(existing.ID); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete goal"})
	}
	return c.SendStatus(204)
}

// ==================== Medications ====================

func (s *Server) handleCreateMedication(c *fiber.Ctx) error {
	var med health.Medication
	if err := c.BodyParser(&med); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}
	if med.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name is required"})
	}

	med.ID = ""
	med.UserID = userID(c)
	med.Enabled = true

	if err := s.store.CreateMedication(&med); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to create medication"})
	}

	return c.Status(201).JSON(med)
}

func (s *Server) handleListMedications(c *fiber.Ctx) error {
	activeOnly := c.QueryBool("active", false)

	meds, err := s.store.ListMedications(userID(c), activeOnly)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to list medications"})
	}
	return c.JSON(meds)
}

func (s *Server) handleDeleteMedication(c *fiber.Ctx) error {
	existing, err := s.store.GetMedication(c.Params("id"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to get medication"})
	}
	if existing == nil || existing.UserID != userID(c) {
		return c.Status(404).JSON(fiber.Map{"error": apperrors.ErrNotFound.Message})
	}

	if err := s.store.DeleteMedication(existing.ID); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete medication"})
	}
	return c.SendStatus(204)
}

func (s *Server) handleLogMedication(c *fiber.Ctx) error {
	med, err := s.store.GetMedication(c.Params("id"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to get medication"})
	}
	if med == nil || med.UserID != userID(c) {
		return c.Status(404).JSON(fiber.Map{"error": apperrors.ErrNotFound.Message})
	}

	var log health.MedicationLog
	if err := c.BodyParser(&log); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}

	switch log.Status {
	case "taken", "missed", "skipped":
	default:
		return c.Status(400).JSON(fiber.Map{"error": "status must be taken, missed or skipped"})
	}

	log.ID = ""
	log.UserID = med.UserID
	log.MedicationID = med.ID
	if log.ScheduledTime.IsZero() {
		log.ScheduledTime = time.Now()
	}

	if err := s.store.CreateMedicationLog(&log); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to log medication"})
	}

	return c.Status(201).JSON(log)
}

func (s *Server) handleMedicationAdherence(c *fiber.Ctx) error {
	med, err := s.store.GetMedication(c.Params("id"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to get medication"})
	}
	if med == nil || med.UserID != userID(c) {
		return c.Status(404).JSON(fiber.Map{"error": apperrors.ErrNotFound.Message})
	}

	days := c.QueryInt("days", 30)
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	logs, err := s.store.GetMedicationLogs(med.UserID, med.ID, start, end)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to get medication logs"})
	}

	return c.JSON(fiber.Map{
		"medication_id": med.ID,
		"days":          days,
		"doses":         len(logs),
		"adherence_pct": health.CalculateAdherence(logs),
	})
}

// ==================== Appointments ====================

func (s *Server) handleCreateAppointment(c *fiber.Ctx) error {
	var appt health.HealthAppointment
	if err := c.BodyParser(&appt); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}
	if appt.Title == "" {
		return c.Status(400).JSON(fiber.Map{"error": "title is required"})
	}

	appt.ID = ""
	appt.UserID = userID(c)

	if err := s.store.CreateAppointment(&appt); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to create appointment"})
	}

	return c.Status(201).JSON(appt)
}

func (s *Server) handleListAppointments(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)

	appts, err := s.store.GetUpcomingAppointments(userID(c), limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to list appointments"})
	}
	return c.JSON(appts)
}

func (s *Server) handleDeleteAppointment(c *fiber.Ctx) error {
	existing, err := s.store.GetAppointment(c.Params("id"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to get appointment"})
	}
	if existing == nil || existing.UserID != userID(c) {
		return c.Status(404).JSON(fiber.Map{"error": apperrors.ErrNotFound.Message})
	}

	if err := s.store.DeleteAppointment(existing.ID); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete appointment"})
	}
	return c.SendStatus(204)
}

package health

import (
	"database/sql"
	"fmt"
	"time"

	apperrors "github.com/SVPraveen1/health-ai-sub000/internal/errors"
	"github.com/google/uuid"
	_ "github.com/glebarez/go-sqlite" // Pure Go SQLite driver
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store handles health data persistence.
type Store struct {
	db *gorm.DB
}

// Open opens the SQLite database at path with WAL mode and sane pool
// settings, and migrates the health schema.
func Open(path string) (*Store, error) {
	sqliteDB, err := sql.Open("sqlite", path+"?_journal=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	sqliteDB.SetMaxOpenConns(10)
	sqliteDB.SetMaxIdleConns(5)
	sqliteDB.SetConnMaxLifetime(time.Hour)

	db, err := gorm.Open(sqlite.Dialector{Conn: sqliteDB}, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	return NewStore(db)
}

// NewStore wraps an existing gorm DB and migrates the health schema.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&HealthMetric{}, &HealthGoal{}, &Medication{}, &MedicationLog{}, &HealthAppointment{}); err != nil {
		return nil, fmt.Errorf("failed to migrate health schemas: %w", err)
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying gorm handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func generateID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// HealthMetric operations

func (s *Store) CreateMetric(metric *HealthMetric) error {
	if metric.UserID == "" {
		return apperrors.ErrMissingUser
	}
	if metric.ID == "" {
		metric.ID = generateID("met")
	}
	if metric.CreatedAt.IsZero() {
		metric.CreatedAt = time.Now()
	}
	metric.UpdatedAt = time.Now()
	return s.db.Create(metric).Error
}

func (s *Store) GetMetric(id string) (*HealthMetric, error) {
	var metric HealthMetric
	err := s.db.Where("id = ?", id).First(&metric).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return &metric, err
}

func (s *Store) UpdateMetric(metric *HealthMetric) error {
	metric.UpdatedAt = time.Now()
	return s.db.Save(metric).Error
}

func (s *Store) DeleteMetric(id string) error {
	return s.db.Where("id = ?", id).Delete(&HealthMetric{}).Error
}

// GetMetricsWindow returns the user's readings inside [start, end),
// ascending by created_at. Trend and consistency analysis depend on
// this ordering.
func (s *Store) GetMetricsWindow(userID string, start, end time.Time) ([]HealthMetric, error) {
	var metrics []HealthMetric
	err := s.db.Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, start, end).
		Order("created_at ASC").
		Find(&metrics).Error
	return metrics, err
}

func (s *Store) ListMetrics(userID string, limit, offset int) ([]HealthMetric, error) {
	query := s.db.Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var metrics []HealthMetric
	err := query.Find(&metrics).Error
	return metrics, err
}

// MetricUserIDs returns the distinct users with at least one reading in
// [start, end). Used by the weekly precompute scheduler.
func (s *Store) MetricUserIDs(start, end time.Time) ([]string, error) {
	var users []string
	err := s.db.Model(&HealthMetric{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Distinct().
		Pluck("user_id", &users).Error
	return users, err
}

// HealthGoal operations

func (s *Store) CreateGoal(goal *HealthGoal) error {
	if goal.UserID == "" {
		return apperrors.ErrMissingUser
	}
	if goal.Target <= 0 {
		return apperrors.ErrInvalidGoal
	}
	if goal.ID == "" {
		goal.ID = generateID("goal")
	}
	goal.CreatedAt = time.Now()
	goal.UpdatedAt = time.Now()
	return s.db.Create(goal).Error
}

func (s *Store) GetGoal(id string) (*HealthGoal, error) {
	var goal HealthGoal
	err := s.db.Where("id = ?", id).First(&goal).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return &goal, err
}

// UpdateGoalProgress clamps progress to [0,100] and flips Completed at 100.
func (s *Store) UpdateGoalProgress(id string, progress float64) (*HealthGoal, error) {
	goal, err := s.GetGoal(id)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, apperrors.ErrNotFound
	}

	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	goal.Progress = progress
	if progress >= 100 {
		goal.Completed = true
	}
	goal.UpdatedAt = time.Now()

	return goal, s.db.Save(goal).Error
}

func (s *Store) UpdateGoal(goal *HealthGoal) error {
	goal.UpdatedAt = time.Now()
	return s.db.Save(goal).Error
}

func (s *Store) DeleteGoal(id string) error {
	return s.db.Where("id = ?", id).Delete(&HealthGoal{}).Error
}

func (s *Store) ListGoals(userID string) ([]HealthGoal, error) {
	var goals []HealthGoal
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&goals).Error
	return goals, err
}

// Medication operations

func (s *Store) CreateMedication(med *Medication) error {
	if med.UserID == "" {
		return apperrors.ErrMissingUser
	}
	if med.ID == "" {
		med.ID = generateID("med")
	}
	med.CreatedAt = time.Now()
	med.UpdatedAt = time.Now()
	return s.db.Create(med).Error
}

func (s *Store) GetMedication(id string) (*Medication, error) {
	var med Medication
	err := s.db.Where("id = ?", id).First(&med).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return &med, err
}

func (s *Store) DeleteMedication(id string) error {
	return s.db.Where("id = ?", id).Delete(&Medication{}).Error
}

func (s *Store) ListMedications(userID string, activeOnly bool) ([]Medication, error) {
	query := s.db.Where("user_id = ?", userID)
	if activeOnly {
		query = query.Where("enabled = ?", true)
	}

	var meds []Medication
	err := query.Order("created_at DESC").Find(&meds).Error
	return meds, err
}

func (s *Store) CreateMedicationLog(log *MedicationLog) error {
	if log.ID == "" {
		log.ID = generateID("mlog")
	}
	log.CreatedAt = time.Now()
	return s.db.Create(log).Error
}

func (s *Store) GetMedicationLogs(userID, medicationID string, start, end time.Time) ([]MedicationLog, error) {
	query := s.db.Where("user_id = ?", userID)

	if medicationID != "" {
		query = query.Where("medication_id = ?", medicationID)
	}
	if !start.IsZero() {
		query = query.Where("scheduled_time >= ?", start)
	}
	if !end.IsZero() {
		query = query.Where("scheduled_time <= ?", end)
	}

	var logs []MedicationLog
	err := query.Order("scheduled_time DESC").Find(&logs).Error
	return logs, err
}

// HealthAppointment operations

func (s *Store) CreateAppointment(appt *HealthAppointment) error {
	if appt.UserID == "" {
		return apperrors.ErrMissingUser
	}
	if appt.ID == "" {
		appt.ID = generateID("appt")
	}
	if appt.Status == "" {
		appt.Status = "scheduled"
	}
	appt.CreatedAt = time.Now()
	appt.UpdatedAt = time.Now()
	return s.db.Create(appt).Error
}

func (s *Store) GetAppointment(id string) (*HealthAppointment, error) {
	var appt HealthAppointment
	err := s.db.Where("id = ?", id).First(&appt).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return &appt, err
}

func (s *Store) UpdateAppointment(appt *HealthAppointment) error {
	appt.UpdatedAt = time.Now()
	return s.db.Save(appt).Error
}

func (s *Store) DeleteAppointment(id string) error {
	return s.db.Where("id = ?", id).Delete(&HealthAppointment{}).Error
}

func (s *Store) GetUpcomingAppointments(userID string, limit int) ([]HealthAppointment, error) {
	query := s.db.Where("user_id = ? AND date_time >= ? AND status = ?", userID, time.Now(), "scheduled")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var appts []HealthAppointment
	err := query.Order("date_time ASC").Find(&appts).Error
	return appts, err
}

// DeleteUserData removes all records owned by userID (account deletion
// cascade).
func (s *Store) DeleteUserData(userID string) error {
	for _, model := range []interface{}{
		&HealthMetric{}, &HealthGoal{}, &Medication{}, &MedicationLog{}, &HealthAppointment{},
	} {
		if err := s.db.Where("user_id = ?", userID).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

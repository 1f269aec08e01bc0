package health

import (
	"time"
)

// SleepQuality is an ordered rating for a night's sleep.
type SleepQuality string

const (
	SleepPoor      SleepQuality = "poor"
	SleepFair      SleepQuality = "fair"
	SleepGood      SleepQuality = "good"
	SleepExcellent SleepQuality = "excellent"
)

// Rank maps the quality to its fixed ordinal. Unknown values rank -1 so
// they never count as a transition in trend analysis.
func (q SleepQuality) Rank() int {
	switch q {
	case SleepPoor:
		return 0
	case SleepFair:
		return 1
	case SleepGood:
		return 2
	case SleepExcellent:
		return 3
	default:
		return -1
	}
}

// Valid reports whether q is one of the closed set of ratings.
func (q SleepQuality) Valid() bool {
	return q.Rank() >= 0
}

// ActivityType classifies the intensity of recorded activity.
type ActivityType string

const (
	ActivitySedentary ActivityType = "sedentary"
	ActivityLight     ActivityType = "light"
	ActivityModerate  ActivityType = "moderate"
	ActivityVigorous  ActivityType = "vigorous"
)

func (a ActivityType) Valid() bool {
	switch a {
	case ActivitySedentary, ActivityLight, ActivityModerate, ActivityVigorous:
		return true
	default:
		return false
	}
}

// Mood is a self-reported state attached to a reading.
type Mood string

const (
	MoodGreat    Mood = "great"
	MoodGood     Mood = "good"
	MoodOkay     Mood = "okay"
	MoodLow      Mood = "low"
	MoodStressed Mood = "stressed"
)

func (m Mood) Valid() bool {
	switch m {
	case MoodGreat, MoodGood, MoodOkay, MoodLow, MoodStressed:
		return true
	default:
		return false
	}
}

// GoalType categorizes a goal by the metric it targets.
type GoalType string

const (
	GoalWeight     GoalType = "weight"
	GoalExercise   GoalType = "exercise"
	GoalSleep      GoalType = "sleep"
	GoalHeartRate  GoalType = "heart_rate"
	GoalSteps      GoalType = "steps"
	GoalGeneral    GoalType = "general"
)

func (g GoalType) Valid() bool {
	switch g {
	case GoalWeight, GoalExercise, GoalSleep, GoalHeartRate, GoalSteps, GoalGeneral:
		return true
	default:
		return false
	}
}

// HealthMetric is one reading. Vitals the user did not record are nil;
// the analytics engine skips undefined values rather than treating them
// as zero. Immutable once created except for corrective edits by its
// owner. CreatedAt orders readings inside a report window.
type HealthMetric struct {
	ID     string `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"index"`

	HeartRate   *float64 `json:"heart_rate,omitempty"`   // bpm
	SystolicBP  *float64 `json:"systolic_bp,omitempty"`  // mmHg
	DiastolicBP *float64 `json:"diastolic_bp,omitempty"` // mmHg

	SleepHours   *float64     `json:"sleep_hours,omitempty"`
	SleepQuality SleepQuality `json:"sleep_quality,omitempty"`

	ActivityMinutes *float64     `json:"activity_minutes,omitempty"`
	ActivityType    ActivityType `json:"activity_type,omitempty"`

	Weight *float64 `json:"weight,omitempty"`
	Steps  *float64 `json:"steps,omitempty"`
	Mood   Mood     `json:"mood,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HealthGoal is a user-defined target. Target must be positive; Deadline
// is a calendar date, not a timestamp. Completed flips true when
// Progress reaches 100 or when the owner sets it explicitly.
type HealthGoal struct {
	ID     string `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"index"`

	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Type        GoalType `json:"type"`

	Target    float64   `json:"target"`
	Deadline  time.Time `json:"deadline"`
	Progress  float64   `json:"progress"` // 0-100
	Completed bool      `json:"completed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Medication is a scheduled medication with supply tracking.
type Medication struct {
	ID     string `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"index"`

	Name      string `json:"name"`
	Dosage    string `json:"dosage"`    // e.g. "10mg", "1 tablet"
	Frequency string `json:"frequency"` // daily, weekly, as_needed
	WithFood  bool   `json:"with_food,omitempty"`
	Notes     string `json:"notes,omitempty"`
	Enabled   bool   `json:"enabled" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MedicationLog records whether a scheduled dose was taken.
type MedicationLog struct {
	ID           string `json:"id" gorm:"primaryKey"`
	UserID       string `json:"user_id" gorm:"index"`
	MedicationID string `json:"medication_id" gorm:"index"`

	ScheduledTime time.Time  `json:"scheduled_time"`
	TakenTime     *time.Time `json:"taken_time,omitempty"`
	Status        string     `json:"status"` // taken, missed, skipped
	Notes         string     `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// HealthAppointment is a medical appointment record.
type HealthAppointment struct {
	ID     string `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"index"`

	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	ProviderName string    `json:"provider_name,omitempty"`
	Location     string    `json:"location,omitempty"`
	DateTime     time.Time `json:"date_time"`
	Status       string    `json:"status" gorm:"default:scheduled"` // scheduled, completed, cancelled
	Notes        string    `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CalculateAdherence returns the taken percentage for a set of dose logs.
func CalculateAdherence(logs []MedicationLog) float64 {
	if len(logs) == 0 {
		return 0
	}

	taken := 0
	for _, log := range logs {
		if log.Status == "taken" {
			taken++
		}
	}

	return float64(taken) / float64(len(logs)) * 100
}

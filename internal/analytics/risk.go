package analytics

import (
	"github.com/SVPraveen1/health-ai-sub000/internal/health"
)

// Profile selects one of the two risk-weight tables. The dashboard
// per-reading scorer and the cross-metric prediction calculator
// historically assign different weights to the same condition (low
// heart rate: +15 vs +20) and only the dashboard scores low blood
// pressure. The two tables are kept distinct on purpose; do not merge
// them.
type Profile string

const (
	ProfileDashboard  Profile = "dashboard"
	ProfilePrediction Profile = "prediction"
)

// TrendContext carries cross-metric trend labels into the prediction
// profile. Ignored by the dashboard profile.
type TrendContext struct {
	HeartRate     Trend `json:"heart_rate"`
	BloodPressure Trend `json:"blood_pressure"`
}

// RiskAssessment is a bounded score with ordered recommendations.
type RiskAssessment struct {
	Score           int      `json:"risk_score"`
	Recommendations []string `json:"recommendations"`
}

const (
	msgElevatedHeartRate = "Elevated heart rate detected. Consider consulting a doctor if this persists."
	msgLowHeartRate      = "Low heart rate detected. Monitor for dizziness or fatigue."
	msgHighBloodPressure = "High blood pressure detected. Please consult your doctor."
	msgLowBloodPressure  = "Low blood pressure detected. Stay hydrated and monitor for symptoms."
	msgVariableHeartRate = "Your heart rate has been highly variable. Track readings at consistent times."
	msgVariableBP        = "Your blood pressure has been highly variable. Track readings at consistent times."
	msgDecliningHR       = "Your heart rate trend is worsening week over week."
	msgDecliningBP       = "Your blood pressure trend is worsening week over week."
	msgScheduleCheckup   = "Your combined risk indicators are elevated. Schedule a check-up with your doctor."
	msgWithinNormal      = "All readings are within normal ranges. Keep up the good work."
)

// ScoreReading applies the additive point rules for one reading and
// clamps the total at 100. Rules fire in a fixed order (heart rate,
// blood pressure, trend context, general) and recommendation order
// follows rule order. Unrecorded fields skip their rules.
func ScoreReading(m health.HealthMetric, profile Profile, trends *TrendContext) RiskAssessment {
	score := 0
	var recs []string

	if hr, ok := fromPtr(m.HeartRate); ok {
		switch {
		case hr > 100:
			score += 20
			recs = append(recs, msgElevatedHeartRate)
		case hr < 60:
			if profile == ProfilePrediction {
				score += 20
			} else {
				score += 15
			}
			recs = append(recs, msgLowHeartRate)
		}
	}

	sys, sysOK := fromPtr(m.SystolicBP)
	dia, diaOK := fromPtr(m.DiastolicBP)
	switch {
	case (sysOK && sys >= 140) || (diaOK && dia >= 90):
		score += 30
		recs = append(recs, msgHighBloodPressure)
	case (sysOK && sys >= 130) || (diaOK && dia >= 85):
		score += 15
		recs = append(recs, msgHighBloodPressure)
	case profile == ProfileDashboard && ((sysOK && sys < 90) || (diaOK && dia < 60)):
		score += 20
		recs = append(recs, msgLowBloodPressure)
	}

	if profile == ProfilePrediction && trends != nil {
		if trends.HeartRate == TrendHighlyVariable {
			score += 15
			recs = append(recs, msgVariableHeartRate)
		}
		if trends.BloodPressure == TrendHighlyVariable {
			score += 15
			recs = append(recs, msgVariableBP)
		}
		if trends.HeartRate == TrendDeclining {
			score += 10
			recs = append(recs, msgDecliningHR)
		}
		if trends.BloodPressure == TrendDeclining {
			score += 10
			recs = append(recs, msgDecliningBP)
		}
	}

	if score >= 50 {
		recs = append(recs, msgScheduleCheckup)
	}
	if len(recs) == 0 {
		recs = append(recs, msgWithinNormal)
	}

	if score > 100 {
		score = 100
	}

	return RiskAssessment{Score: score, Recommendations: recs}
}

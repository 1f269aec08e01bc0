// Package assess produces structured symptom assessments from a text
// completion service. The model is instructed to answer in a fixed
// plain-text layout; a regex parser lifts that into a structured
// result. Output is advisory and never feeds back into the analytics
// engine or risk scorer.
package assess

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/SVPraveen1/health-ai-sub000/internal/llm"
)

// Request carries the user's symptom description.
type Request struct {
	Symptoms []string `json:"symptoms"`
	Age      int      `json:"age,omitempty"`
	Duration string   `json:"duration,omitempty"`
	Notes    string   `json:"notes,omitempty"`
}

// Condition is one possible explanation with the model's stated
// likelihood.
type Condition struct {
	Name       string `json:"name"`
	Likelihood int    `json:"likelihood"` // percent, 0-100
}

// Assessment is the structured result. All fields are zero when the
// completion could not be parsed; callers must treat that as "no
// assessment available", never as "no risk".
type Assessment struct {
	Conditions        []Condition `json:"conditions"`
	RiskPercent       int         `json:"risk_percent"`
	Advice            string      `json:"advice,omitempty"`
	FollowUpQuestions []string    `json:"follow_up_questions"`
}

const systemPrompt = `You are a cautious health information assistant. You are not a doctor and you never diagnose. Given symptoms, list possible conditions with rough likelihoods, an overall risk estimate, one piece of general advice, and follow-up questions a clinician might ask.

Respond in EXACTLY this format and nothing else:

CONDITIONS:
1. <condition name> (<likelihood>%)
2. <condition name> (<likelihood>%)
RISK: <overall risk>%
ADVICE: <one sentence>
FOLLOW-UP:
- <question>?
- <question>?`

// Assessor runs symptom assessments through a completion service.
type Assessor struct {
	completer llm.Completer
	logger    *zap.Logger
}

func New(completer llm.Completer, logger *zap.Logger) *Assessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assessor{completer: completer, logger: logger}
}

// Assess sends the symptoms to the completion service and parses the
// reply. A completion error is returned to the caller; an unparseable
// reply is not, it yields an empty Assessment.
func (a *Assessor) Assess(ctx context.Context, req Request) (*Assessment, error) {
	reply, err := a.completer.Complete(ctx, systemPrompt, buildPrompt(req))
	if err != nil {
		return nil, err
	}

	result := Parse(reply)
	if len(result.Conditions) == 0 {
		a.logger.Warn("assessment reply did not match expected format",
			zap.Int("reply_len", len(reply)))
	}
	return result, nil
}

func buildPrompt(req Request) string {
	var b strings.Builder

	b.WriteString("Symptoms: ")
	b.WriteString(strings.Join(req.Symptoms, ", "))
	b.WriteString("\n")

	if req.Age > 0 {
		fmt.Fprintf(&b, "Age: %d\n", req.Age)
	}
	if req.Duration != "" {
		fmt.Fprintf(&b, "Duration: %s\n", req.Duration)
	}
	if req.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", req.Notes)
	}

	return b.String()
}

package assess

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wellFormedReply = `CONDITIONS:
1. Tension headache (60%)
2. Migraine (25%)
3. Dehydration (10%)
RISK: 35%
ADVICE: Rest, hydrate, and see a doctor if the pain persists beyond three days.
FOLLOW-UP:
- How long have you had the headache?
- Does light make it worse?`

func TestParseWellFormed(t *testing.T) {
	result := Parse(wellFormedReply)

	require.Len(t, result.Conditions, 3)
	assert.Equal(t, Condition{Name: "Tension headache", Likelihood: 60}, result.Conditions[0])
	assert.Equal(t, Condition{Name: "Migraine", Likelihood: 25}, result.Conditions[1])
	assert.Equal(t, Condition{Name: "Dehydration", Likelihood: 10}, result.Conditions[2])

	assert.Equal(t, 35, result.RiskPercent)
	assert.Equal(t, "Rest, hydrate, and see a doctor if the pain persists beyond three days.", result.Advice)

	require.Len(t, result.FollowUpQuestions, 2)
	assert.Equal(t, "How long have you had the headache?", result.FollowUpQuestions[0])
	assert.Equal(t, "Does light make it worse?", result.FollowUpQuestions[1])
}

func TestParseToleratesSurroundingProse(t *testing.T) {
	reply := "Here is my assessment:\n\n```\n" + wellFormedReply + "\n```\n\nTake care!"

	result := Parse(reply)
	assert.Len(t, result.Conditions, 3)
	assert.Equal(t, 35, result.RiskPercent)
}

func TestParseUnstructuredReply(t *testing.T) {
	result := Parse("I'm sorry, I can't help with medical questions.")

	assert.Empty(t, result.Conditions)
	assert.Zero(t, result.RiskPercent)
	assert.Empty(t, result.Advice)
	assert.Empty(t, result.FollowUpQuestions)
}

func TestParseRejectsImpossiblePercentages(t *testing.T) {
	reply := `CONDITIONS:
1. Something (250%)
2. Plausible (40%)
RISK: 900%`

	result := Parse(reply)
	require.Len(t, result.Conditions, 1)
	assert.Equal(t, "Plausible", result.Conditions[0].Name)
	assert.Zero(t, result.RiskPercent)
}

func TestParsePartialReply(t *testing.T) {
	reply := `CONDITIONS:
1. Common cold (70%)
RISK: 10%`

	result := Parse(reply)
	require.Len(t, result.Conditions, 1)
	assert.Equal(t, 10, result.RiskPercent)
	assert.Empty(t, result.Advice)
	assert.Empty(t, result.FollowUpQuestions)
}

type stubCompleter struct {
	reply string
	err   error
}

func (s *stubCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	return s.reply, s.err
}

func (s *stubCompleter) CompleteStream(ctx context.Context, system, user string, onChunk func(string)) error {
	onChunk(s.reply)
	return s.err
}

func TestAssessReturnsParsedResult(t *testing.T) {
	assessor := New(&stubCompleter{reply: wellFormedReply}, nil)

	result, err := assessor.Assess(context.Background(), Request{Symptoms: []string{"headache"}})
	require.NoError(t, err)
	assert.Len(t, result.Conditions, 3)
}

func TestAssessPropagatesCompletionError(t *testing.T) {
	assessor := New(&stubCompleter{err: errors.New("upstream down")}, nil)

	_, err := assessor.Assess(context.Background(), Request{Symptoms: []string{"headache"}})
	assert.Error(t, err)
}

func TestAssessUnparseableIsNotAnError(t *testing.T) {
	assessor := New(&stubCompleter{reply: "no structure here"}, nil)

	result, err := assessor.Assess(context.Background(), Request{Symptoms: []string{"headache"}})
	require.NoError(t, err)
	assert.Empty(t, result.Conditions)
}

func TestBuildPromptIncludesOptionalFields(t *testing.T) {
	prompt := buildPrompt(Request{
		Symptoms: []string{"headache", "nausea"},
		Age:      42,
		Duration: "3 days",
	})

	assert.Contains(t, prompt, "headache, nausea")
	assert.Contains(t, prompt, "Age: 42")
	assert.Contains(t, prompt, "Duration: 3 days")
	assert.NotContains(t, prompt, "Notes:")
}

package assess

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	conditionRe = regexp.MustCompile(`(?m)^\s*\d+\.\s*(.+?)\s*\((\d{1,3})%\)\s*$`)
	riskRe      = regexp.MustCompile(`(?mi)^RISK:\s*(\d{1,3})\s*%`)
	adviceRe    = regexp.MustCompile(`(?mi)^ADVICE:\s*(.+?)\s*$`)
	followRe    = regexp.MustCompile(`(?m)^\s*[-*]\s*(.+\?)\s*$`)
)

// Parse extracts a structured Assessment from a completion reply. It
// tolerates surrounding prose and markdown fences; anything it cannot
// match is simply absent from the result. A reply with no recognizable
// structure parses to the empty Assessment.
func Parse(reply string) *Assessment {
	result := &Assessment{
		Conditions:        []Condition{},
		FollowUpQuestions: []string{},
	}

	for _, m := range conditionRe.FindAllStringSubmatch(reply, -1) {
		pct, err := strconv.Atoi(m[2])
		if err != nil || pct > 100 {
			continue
		}
		name := strings.TrimSpace(m[1])
		if name == "" {
			continue
		}
		result.Conditions = append(result.Conditions, Condition{Name: name, Likelihood: pct})
	}

	if m := riskRe.FindStringSubmatch(reply); m != nil {
		if pct, err := strconv.Atoi(m[1]); err == nil && pct <= 100 {
			result.RiskPercent = pct
		}
	}

	if m := adviceRe.FindStringSubmatch(reply); m != nil {
		result.Advice = strings.TrimSpace(m[1])
	}

	for _, m := range followRe.FindAllStringSubmatch(reply, -1) {
		result.FollowUpQuestions = append(result.FollowUpQuestions, strings.TrimSpace(m[1]))
	}

	return result
}

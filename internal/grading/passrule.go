package grading

import (
	"github.com/quizforge/scorm-engine/internal/models"
)

// Passes evaluates a pass rule against an achieved percentage and a count of
// fully correct questions. A nil rule always passes (no constraint configured).
//
// Percent rules compare the point-weighted percentage, so partial credit
// counts; absolute rules compare the strict fully-correct question count, so
// partial credit does not. The asymmetry is deliberate and must be preserved.
func Passes(rule *models.PassRule, achievedPercent float64, fullyCorrect int) bool {
	if rule == nil {
		return true
	}
	switch rule.Type {
	case models.PassRulePercent:
		return achievedPercent >= rule.Value
	case models.PassRuleAbsolute:
		return float64(fullyCorrect) >= rule.Value
	}
	return true
}

package results

import (
	"time"

	"github.com/quizforge/scorm-engine/internal/grading"
	"github.com/quizforge/scorm-engine/internal/models"
	"github.com/quizforge/scorm-engine/internal/variant"
)

// TopicResult is one section's slice of the report. Passed is nil when the
// topic has no pass rule configured.
type TopicResult struct {
	SectionID      string          `json:"section_id"`
	Name           string          `json:"name"`
	FullyCorrect   int             `json:"fully_correct"`
	EarnedPoints   float64         `json:"earned_points"`
	PossiblePoints int             `json:"possible_points"`
	Percent        float64         `json:"percent"`
	Passed         *bool           `json:"passed"`
	Feedback       string          `json:"feedback,omitempty"`
	Courses        []models.Course `json:"courses,omitempty"`
}

// Report is the aggregated outcome of one attempt. It is derived state,
// recomputed from the variant and answers, never persisted by the engine.
type Report struct {
	TestID         string        `json:"test_id"`
	Title          string        `json:"title"`
	FullyCorrect   int           `json:"fully_correct"`
	EarnedPoints   float64       `json:"earned_points"`
	PossiblePoints int           `json:"possible_points"`
	Percent        float64       `json:"percent"`
	Passed         bool          `json:"passed"`
	TimeExpired    bool          `json:"time_expired"`
	Topics         []TopicResult `json:"topics"`
	CompletedAt    time.Time     `json:"completed_at"`
}

// Outcome bundles everything a result sink needs: the aggregate report plus
// the per-question material (variant, answers) for interaction records.
type Outcome struct {
	Test    *models.Test
	Variant *variant.Variant
	Answers map[string]*models.Answer
	Report  *Report
}

// Sink consumes a finished attempt. Sinks are fire-and-forget from the state
// machine's perspective and must handle their own failures.
type Sink interface {
	AttemptCompleted(outcome Outcome)
}

// Aggregate folds per-question scores into per-topic and overall totals and
// applies the pass rules hierarchically: the test passes only when the overall
// rule is satisfied and every topic with a configured rule is individually
// satisfied. Topic percentages are point-weighted the same way as the overall
// percentage, so an external grading double-check can reproduce them.
func Aggregate(t *models.Test, v *variant.Variant, answers map[string]*models.Answer) *Report {
	report := &Report{
		TestID:      t.ID,
		Title:       t.Title,
		CompletedAt: time.Now(),
	}

	type bucket struct {
		section *models.Section
		result  TopicResult
	}
	buckets := make(map[string]*bucket, len(t.Sections))
	for _, sec := range t.Sections {
		buckets[sec.ID] = &bucket{
			section: sec,
			result: TopicResult{
				SectionID: sec.ID,
				Name:      sec.Name,
				Feedback:  sec.Feedback,
				Courses:   sec.Courses,
			},
		}
	}

	for _, drawn := range v.Questions {
		q := drawn.Question
		ratio := grading.Ratio(q, answers[q.ID])

		report.EarnedPoints += float64(q.Points) * ratio
		report.PossiblePoints += q.Points
		if ratio == 1 {
			report.FullyCorrect++
		}

		b, ok := buckets[drawn.SectionID]
		if !ok {
			continue
		}
		b.result.EarnedPoints += float64(q.Points) * ratio
		b.result.PossiblePoints += q.Points
		if ratio == 1 {
			b.result.FullyCorrect++
		}
	}

	report.Percent = percent(report.EarnedPoints, report.PossiblePoints)

	passed := grading.Passes(t.PassRule, report.Percent, report.FullyCorrect)
	for _, sec := range t.Sections {
		b := buckets[sec.ID]
		b.result.Percent = percent(b.result.EarnedPoints, b.result.PossiblePoints)
		if sec.PassRule != nil {
			topicPassed := grading.Passes(sec.PassRule, b.result.Percent, b.result.FullyCorrect)
			b.result.Passed = &topicPassed
			passed = passed && topicPassed
		}
		report.Topics = append(report.Topics, b.result)
	}
	report.Passed = passed

	return report
}

func percent(earned float64, possible int) float64 {
	if possible == 0 {
		return 0
	}
	return earned / float64(possible) * 100
}

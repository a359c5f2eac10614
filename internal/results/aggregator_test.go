package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizforge/scorm-engine/internal/models"
	"github.com/quizforge/scorm-engine/internal/variant"
)

func intPtr(v int) *int { return &v }

func buildTest(overallRule, topicARule *models.PassRule) *models.Test {
	return &models.Test{
		ID:       "t1",
		Title:    "Aggregation",
		PassRule: overallRule,
		Sections: []*models.Section{
			{
				ID: "sec-a", Name: "Topic A", DrawCount: 2, PassRule: topicARule,
				Feedback: "Review topic A",
				Courses:  []models.Course{{Title: "Course A", URL: "https://example.com/a"}},
				Questions: []*models.Question{
					{
						ID: "a1", Type: models.SingleChoice, Prompt: "a1", Points: 2,
						Single: &models.SingleChoiceContent{Options: []string{"x", "y"}, CorrectIndex: 0},
					},
					{
						ID: "a2", Type: models.SingleChoice, Prompt: "a2", Points: 2,
						Single: &models.SingleChoiceContent{Options: []string{"x", "y"}, CorrectIndex: 1},
					},
				},
			},
			{
				ID: "sec-b", Name: "Topic B", DrawCount: 1,
				Questions: []*models.Question{
					{
						ID: "b1", Type: models.MultipleChoice, Prompt: "b1", Points: 4,
						Multiple: &models.MultipleChoiceContent{
							Options:        []string{"p", "q", "r", "s"},
							CorrectIndexes: []int{0, 1},
						},
					},
				},
			},
		},
	}
}

func identityVariant(t *models.Test) *variant.Variant {
	v := &variant.Variant{Drawn: make(map[string][]string)}
	for _, sec := range t.Sections {
		for _, q := range sec.Questions {
			v.Questions = append(v.Questions, variant.DrawnQuestion{Question: q, SectionID: sec.ID})
			v.Drawn[sec.ID] = append(v.Drawn[sec.ID], q.ID)
		}
	}
	return v
}

func TestAggregate_PointWeightedTotals(t *testing.T) {
	test := buildTest(nil, nil)
	v := identityVariant(test)

	// a1 correct (2/2), a2 wrong (0/2), b1 half credit (2/4): 4 of 8 points.
	answers := map[string]*models.Answer{
		"a1": {Selected: intPtr(0)},
		"a2": {Selected: intPtr(0)},
		"b1": {Selections: []int{0}},
	}

	report := Aggregate(test, v, answers)

	assert.Equal(t, 8, report.PossiblePoints)
	assert.InDelta(t, 4.0, report.EarnedPoints, 1e-9)
	assert.InDelta(t, 50.0, report.Percent, 1e-9)
	assert.Equal(t, 1, report.FullyCorrect)
	assert.True(t, report.Passed, "no rules configured means pass")

	require.Len(t, report.Topics, 2)
	topicA, topicB := report.Topics[0], report.Topics[1]

	assert.Equal(t, "sec-a", topicA.SectionID)
	assert.InDelta(t, 50.0, topicA.Percent, 1e-9)
	assert.Equal(t, 1, topicA.FullyCorrect)
	assert.Nil(t, topicA.Passed)
	assert.Equal(t, "Review topic A", topicA.Feedback)

	assert.Equal(t, "sec-b", topicB.SectionID)
	assert.InDelta(t, 50.0, topicB.Percent, 1e-9)
	assert.Equal(t, 0, topicB.FullyCorrect)
	assert.Nil(t, topicB.Passed)
}

func TestAggregate_TopicRuleFailsOverallPass(t *testing.T) {
	// Overall percent rule is satisfied but topic A's absolute rule is not:
	// the attempt must fail as a whole.
	test := buildTest(
		&models.PassRule{Type: models.PassRulePercent, Value: 40},
		&models.PassRule{Type: models.PassRuleAbsolute, Value: 2},
	)
	v := identityVariant(test)

	answers := map[string]*models.Answer{
		"a1": {Selected: intPtr(0)},
		"a2": {Selected: intPtr(0)},
		"b1": {Selections: []int{0, 1}},
	}

	report := Aggregate(test, v, answers)

	assert.InDelta(t, 75.0, report.Percent, 1e-9)
	require.NotNil(t, report.Topics[0].Passed)
	assert.False(t, *report.Topics[0].Passed)
	assert.False(t, report.Passed)
}

func TestAggregate_AllRulesSatisfied(t *testing.T) {
	test := buildTest(
		&models.PassRule{Type: models.PassRulePercent, Value: 70},
		&models.PassRule{Type: models.PassRuleAbsolute, Value: 1},
	)
	v := identityVariant(test)

	answers := map[string]*models.Answer{
		"a1": {Selected: intPtr(0)},
		"a2": {Selected: intPtr(1)},
		"b1": {Selections: []int{0}},
	}

	report := Aggregate(test, v, answers)

	assert.InDelta(t, 75.0, report.Percent, 1e-9)
	require.NotNil(t, report.Topics[0].Passed)
	assert.True(t, *report.Topics[0].Passed)
	assert.True(t, report.Passed)
}

func TestAggregate_MissingAnswersScoreZero(t *testing.T) {
	test := buildTest(nil, nil)
	v := identityVariant(test)

	report := Aggregate(test, v, map[string]*models.Answer{})

	assert.Equal(t, 0.0, report.EarnedPoints)
	assert.Equal(t, 0.0, report.Percent)
	assert.Equal(t, 0, report.FullyCorrect)
}

func TestAggregate_EmptyVariant(t *testing.T) {
	test := buildTest(nil, nil)
	v := &variant.Variant{Drawn: map[string][]string{}}

	report := Aggregate(test, v, nil)

	assert.Equal(t, 0.0, report.Percent)
	assert.True(t, report.Passed)
}

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionUnmarshal_DefaultsPointsToOne(t *testing.T) {
	raw := `{
		"id": "q1",
		"type": "single",
		"prompt": "Pick one",
		"single": {"options": ["a", "b"], "correct_index": 1}
	}`

	var q Question
	require.NoError(t, json.Unmarshal([]byte(raw), &q))
	assert.Equal(t, 1, q.Points)
	assert.Equal(t, 1, q.Single.CorrectIndex)
}

func TestQuestionUnmarshal_KeepsExplicitPoints(t *testing.T) {
	raw := `{
		"id": "q1",
		"type": "multiple",
		"prompt": "Pick all",
		"points": 5,
		"multiple": {"options": ["a", "b", "c"], "correct_indexes": [0, 2]}
	}`

	var q Question
	require.NoError(t, json.Unmarshal([]byte(raw), &q))
	assert.Equal(t, 5, q.Points)
}

func TestQuestionUnmarshal_RejectsMismatchedPayload(t *testing.T) {
	raw := `{
		"id": "q1",
		"type": "matching",
		"prompt": "Match",
		"single": {"options": ["a", "b"], "correct_index": 0}
	}`

	var q Question
	err := json.Unmarshal([]byte(raw), &q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing matching payload")
}

func TestQuestionUnmarshal_RejectsUnknownType(t *testing.T) {
	raw := `{"id": "q1", "type": "essay", "prompt": "Write"}`

	var q Question
	err := json.Unmarshal([]byte(raw), &q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown type")
}

func TestPassRuleUnmarshal_CountAlias(t *testing.T) {
	var rule PassRule
	require.NoError(t, json.Unmarshal([]byte(`{"type": "count", "value": 3}`), &rule))
	assert.Equal(t, PassRuleAbsolute, rule.Type)
	assert.Equal(t, 3.0, rule.Value)
}

func TestPassRuleUnmarshal_PercentRange(t *testing.T) {
	var rule PassRule
	require.NoError(t, json.Unmarshal([]byte(`{"type": "percent", "value": 70}`), &rule))
	assert.Equal(t, PassRulePercent, rule.Type)

	err := json.Unmarshal([]byte(`{"type": "percent", "value": 170}`), &rule)
	assert.Error(t, err)
}

func TestParseTest(t *testing.T) {
	raw := `{
		"id": "t1",
		"title": "Sample",
		"pass_rule": {"type": "percent", "value": 60},
		"time_limit_minutes": 30,
		"max_attempts": 2,
		"sections": [
			{
				"id": "sec",
				"name": "Topic",
				"draw_count": 1,
				"pass_rule": {"type": "count", "value": 1},
				"questions": [
					{
						"id": "q1",
						"type": "ranking",
						"prompt": "Order",
						"ranking": {"items": ["a", "b", "c"], "correct_order": [2, 0, 1]}
					}
				]
			}
		]
	}`

	test, err := ParseTest([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "t1", test.ID)
	assert.Equal(t, 30, test.TimeLimitMinutes)
	assert.Equal(t, 2, test.MaxAttempts)
	require.Len(t, test.Sections, 1)
	assert.Equal(t, PassRuleAbsolute, test.Sections[0].PassRule.Type)
	assert.Equal(t, 1, test.TotalPoolSize())

	q, sec := test.QuestionByID("q1")
	require.NotNil(t, q)
	assert.Equal(t, "sec", sec.ID)

	q, sec = test.QuestionByID("missing")
	assert.Nil(t, q)
	assert.Nil(t, sec)
}

func TestAnswered(t *testing.T) {
	single := &Question{ID: "s", Type: SingleChoice, Single: &SingleChoiceContent{Options: []string{"a", "b"}, CorrectIndex: 0}}
	multiple := &Question{ID: "m", Type: MultipleChoice, Multiple: &MultipleChoiceContent{Options: []string{"a", "b"}, CorrectIndexes: []int{0}}}
	matching := &Question{ID: "p", Type: Matching, Matching: &MatchingContent{
		LeftItems:    []string{"l0", "l1"},
		RightItems:   []string{"r0", "r1"},
		CorrectPairs: []MatchPair{{Left: 0, Right: 0}},
	}}
	ranking := &Question{ID: "r", Type: Ranking, Ranking: &RankingContent{Items: []string{"a", "b"}, CorrectOrder: []int{0, 1}}}

	zero := 0
	assert.False(t, (*Answer)(nil).Answered(single))
	assert.False(t, (&Answer{}).Answered(single))
	assert.True(t, (&Answer{Selected: &zero}).Answered(single))

	assert.False(t, (&Answer{}).Answered(multiple))
	assert.True(t, (&Answer{Selections: []int{1}}).Answered(multiple))

	// Matching needs every left item assigned.
	assert.False(t, (&Answer{Matches: map[int]int{0: 1}}).Answered(matching))
	assert.True(t, (&Answer{Matches: map[int]int{0: 1, 1: 0}}).Answered(matching))

	// Ranking always counts as answered.
	assert.True(t, (*Answer)(nil).Answered(ranking))
}

func TestAnswerClone(t *testing.T) {
	one := 1
	original := &Answer{
		Selected:   &one,
		Selections: []int{0, 1},
		Matches:    map[int]int{0: 1},
		Order:      []int{1, 0},
	}

	clone := original.Clone()
	require.NotNil(t, clone)

	*clone.Selected = 9
	clone.Selections[0] = 9
	clone.Matches[0] = 9
	clone.Order[0] = 9

	assert.Equal(t, 1, *original.Selected)
	assert.Equal(t, 0, original.Selections[0])
	assert.Equal(t, 1, original.Matches[0])
	assert.Equal(t, 1, original.Order[0])

	assert.Nil(t, (*Answer)(nil).Clone())
}

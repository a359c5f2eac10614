package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quizforge/scorm-engine/internal/models"
)

func intPtr(v int) *int { return &v }

func singleQuestion() *models.Question {
	return &models.Question{
		ID:     "q-single",
		Type:   models.SingleChoice,
		Prompt: "Pick one",
		Points: 1,
		Single: &models.SingleChoiceContent{
			Options:      []string{"a", "b", "c", "d"},
			CorrectIndex: 2,
		},
	}
}

func multipleQuestion() *models.Question {
	return &models.Question{
		ID:     "q-multiple",
		Type:   models.MultipleChoice,
		Prompt: "Pick all that apply",
		Points: 2,
		Multiple: &models.MultipleChoiceContent{
			Options:        []string{"a", "b", "c", "d", "e"},
			CorrectIndexes: []int{0, 2, 4},
		},
	}
}

func matchingQuestion() *models.Question {
	return &models.Question{
		ID:     "q-matching",
		Type:   models.Matching,
		Prompt: "Match the pairs",
		Points: 3,
		Matching: &models.MatchingContent{
			LeftItems:  []string{"l0", "l1", "l2"},
			RightItems: []string{"r0", "r1", "r2"},
			CorrectPairs: []models.MatchPair{
				{Left: 0, Right: 1},
				{Left: 1, Right: 2},
				{Left: 2, Right: 0},
			},
		},
	}
}

func rankingQuestion() *models.Question {
	return &models.Question{
		ID:     "q-ranking",
		Type:   models.Ranking,
		Prompt: "Order the items",
		Points: 2,
		Ranking: &models.RankingContent{
			Items:        []string{"i0", "i1", "i2", "i3"},
			CorrectOrder: []int{3, 1, 0, 2},
		},
	}
}

func TestRatio_SingleChoice(t *testing.T) {
	q := singleQuestion()

	tests := []struct {
		name   string
		answer *models.Answer
		want   float64
	}{
		{"correct option", &models.Answer{Selected: intPtr(2)}, 1},
		{"wrong option", &models.Answer{Selected: intPtr(0)}, 0},
		{"no selection", &models.Answer{}, 0},
		{"nil answer", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Ratio(q, tt.answer))
		})
	}
}

func TestRatio_MultipleChoice(t *testing.T) {
	q := multipleQuestion()

	tests := []struct {
		name   string
		answer *models.Answer
		want   float64
	}{
		{"all correct", &models.Answer{Selections: []int{0, 2, 4}}, 1},
		{"two of three correct", &models.Answer{Selections: []int{0, 2}}, 2.0 / 3.0},
		{"one hit one miss", &models.Answer{Selections: []int{0, 1}}, 0},
		{"two hits one miss", &models.Answer{Selections: []int{0, 2, 1}}, 1.0 / 3.0},
		{"everything selected", &models.Answer{Selections: []int{0, 1, 2, 3, 4}}, 1.0 / 3.0},
		{"only wrong options floors at zero", &models.Answer{Selections: []int{1, 3}}, 0},
		{"duplicates count once", &models.Answer{Selections: []int{0, 0, 2, 2, 4}}, 1},
		{"empty selection", &models.Answer{}, 0},
		{"nil answer", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Ratio(q, tt.answer), 1e-9)
		})
	}
}

func TestRatio_Matching(t *testing.T) {
	q := matchingQuestion()

	tests := []struct {
		name   string
		answer *models.Answer
		want   float64
	}{
		{"all pairs correct", &models.Answer{Matches: map[int]int{0: 1, 1: 2, 2: 0}}, 1},
		{"one pair correct", &models.Answer{Matches: map[int]int{0: 1, 1: 0, 2: 2}}, 1.0 / 3.0},
		{"partial assignment scores the hits", &models.Answer{Matches: map[int]int{0: 1}}, 1.0 / 3.0},
		{"all wrong", &models.Answer{Matches: map[int]int{0: 0, 1: 1, 2: 2}}, 0},
		{"nil answer", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Ratio(q, tt.answer), 1e-9)
		})
	}
}

func TestRatio_Ranking(t *testing.T) {
	q := rankingQuestion()

	tests := []struct {
		name   string
		answer *models.Answer
		want   float64
	}{
		{"exact order", &models.Answer{Order: []int{3, 1, 0, 2}}, 1},
		{"two positions match", &models.Answer{Order: []int{3, 1, 2, 0}}, 0.5},
		{"no position matches", &models.Answer{Order: []int{0, 2, 3, 1}}, 0},
		{"wrong length scores zero", &models.Answer{Order: []int{3, 1, 0}}, 0},
		{"nil answer", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Ratio(q, tt.answer), 1e-9)
		})
	}
}

func TestRatio_UnknownTypeScoresZero(t *testing.T) {
	q := &models.Question{ID: "q", Type: "essay", Points: 1}
	assert.Equal(t, 0.0, Ratio(q, &models.Answer{Selected: intPtr(0)}))
}

func TestFullyCorrect(t *testing.T) {
	q := multipleQuestion()

	assert.True(t, FullyCorrect(q, &models.Answer{Selections: []int{4, 2, 0}}))
	assert.False(t, FullyCorrect(q, &models.Answer{Selections: []int{0, 2}}))
	assert.False(t, FullyCorrect(q, nil))
}

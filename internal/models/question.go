package models

import (
	"encoding/json"
	"fmt"
)

type QuestionType string

const (
	SingleChoice   QuestionType = "single"
	MultipleChoice QuestionType = "multiple"
	Matching       QuestionType = "matching"
	Ranking        QuestionType = "ranking"
)

type FeedbackMode string

const (
	FeedbackGeneral     FeedbackMode = "general"
	FeedbackConditional FeedbackMode = "conditional"
)

// Feedback is the per-question feedback configuration. In general mode Text is
// shown regardless of correctness; in conditional mode CorrectText/IncorrectText
// are selected by the achieved score.
type Feedback struct {
	Mode          FeedbackMode `json:"mode" validate:"omitempty,oneof=general conditional"`
	Text          string       `json:"text,omitempty"`
	CorrectText   string       `json:"correct_text,omitempty"`
	IncorrectText string       `json:"incorrect_text,omitempty"`
}

// Question is one item of a topic pool. Exactly one of the type-specific payloads
// is set, matching Type; all index references are in original (authored) order.
// Questions are immutable for the lifetime of an attempt.
type Question struct {
	ID       string       `json:"id" validate:"required"`
	Type     QuestionType `json:"type" validate:"required,question_type"`
	Prompt   string       `json:"prompt" validate:"required"`
	Points   int          `json:"points" validate:"min=1,max=100"`
	MediaURL string       `json:"media_url,omitempty"`
	Feedback *Feedback    `json:"feedback,omitempty"`

	Single   *SingleChoiceContent   `json:"single,omitempty"`
	Multiple *MultipleChoiceContent `json:"multiple,omitempty"`
	Matching *MatchingContent       `json:"matching,omitempty"`
	Ranking  *RankingContent        `json:"ranking,omitempty"`
}

type SingleChoiceContent struct {
	Options      []string `json:"options" validate:"min=2"`
	CorrectIndex int      `json:"correct_index"`
}

type MultipleChoiceContent struct {
	Options        []string `json:"options" validate:"min=2"`
	CorrectIndexes []int    `json:"correct_indexes"`
}

type MatchPair struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

type MatchingContent struct {
	LeftItems    []string    `json:"left_items" validate:"min=2"`
	RightItems   []string    `json:"right_items" validate:"min=2"`
	CorrectPairs []MatchPair `json:"correct_pairs"`
}

type RankingContent struct {
	Items []string `json:"items" validate:"min=2"`
	// CorrectOrder lists original item indices in the correct order.
	CorrectOrder []int `json:"correct_order"`
}

// UnmarshalJSON applies the default point weight and rejects payloads whose
// type tag does not match the embedded content.
func (q *Question) UnmarshalJSON(data []byte) error {
	type alias Question
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if a.Points == 0 {
		a.Points = 1
	}
	*q = Question(a)
	if err := q.checkPayload(); err != nil {
		return err
	}
	return nil
}

func (q *Question) checkPayload() error {
	var want bool
	switch q.Type {
	case SingleChoice:
		want = q.Single != nil
	case MultipleChoice:
		want = q.Multiple != nil
	case Matching:
		want = q.Matching != nil
	case Ranking:
		want = q.Ranking != nil
	default:
		return fmt.Errorf("question %q: unknown type %q", q.ID, q.Type)
	}
	if !want {
		return fmt.Errorf("question %q: missing %s payload", q.ID, q.Type)
	}
	return nil
}

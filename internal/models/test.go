package models

import (
	"encoding/json"
	"fmt"
)

type PassRuleType string

const (
	PassRulePercent  PassRuleType = "percent"
	PassRuleAbsolute PassRuleType = "absolute"
)

// PassRule is a threshold over an attempt's result: a minimum percentage of the
// weighted points, or a minimum count of fully correct questions. Partial credit
// contributes to percent rules only.
type PassRule struct {
	Type  PassRuleType `json:"type" validate:"required,pass_rule_type"`
	Value float64      `json:"value" validate:"min=0"`
}

// UnmarshalJSON accepts "count" as a legacy alias for the absolute rule type.
func (r *PassRule) UnmarshalJSON(data []byte) error {
	type alias PassRule
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if a.Type == "count" {
		a.Type = PassRuleAbsolute
	}
	if a.Type == PassRulePercent && (a.Value < 0 || a.Value > 100) {
		return fmt.Errorf("percent pass rule value %v out of range [0,100]", a.Value)
	}
	*r = PassRule(a)
	return nil
}

// Course is a remediation recommendation attached to a topic.
type Course struct {
	Title string `json:"title" validate:"required"`
	URL   string `json:"url" validate:"omitempty,url"`
}

// Section is one topic's draw specification: the full question pool plus how
// many questions to sample per attempt.
type Section struct {
	ID        string      `json:"id" validate:"required"`
	Name      string      `json:"name" validate:"required"`
	DrawCount int         `json:"draw_count" validate:"min=1"`
	Questions []*Question `json:"questions" validate:"required,min=1,dive"`
	PassRule  *PassRule   `json:"pass_rule,omitempty"`
	Feedback  string      `json:"feedback,omitempty"`
	Courses   []Course    `json:"courses,omitempty" validate:"dive"`
}

// Test is the fully resolved, denormalized test definition the engine consumes.
// It is produced by the authoring side and embedded into the exported package;
// the engine treats it as read-only.
type Test struct {
	ID          string `json:"id" validate:"required"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description,omitempty" validate:"max=1000"`

	PassRule *PassRule  `json:"pass_rule,omitempty"`
	Sections []*Section `json:"sections" validate:"required,min=1,dive"`

	// TimeLimitMinutes of 0 means no limit; MaxAttempts of 0 means unlimited.
	TimeLimitMinutes int `json:"time_limit_minutes,omitempty" validate:"min=0,max=600"`
	MaxAttempts      int `json:"max_attempts,omitempty" validate:"min=0,max=100"`

	ShowCorrectAnswers bool   `json:"show_correct_answers,omitempty"`
	StartPageContent   string `json:"start_page_content,omitempty"`
	Feedback           string `json:"feedback,omitempty"`
	WebhookURL         string `json:"webhook_url,omitempty" validate:"omitempty,url"`
}

// QuestionByID looks a question up across all section pools.
func (t *Test) QuestionByID(id string) (*Question, *Section) {
	for _, sec := range t.Sections {
		for _, q := range sec.Questions {
			if q.ID == id {
				return q, sec
			}
		}
	}
	return nil, nil
}

// TotalPoolSize is the number of questions across all sections.
func (t *Test) TotalPoolSize() int {
	n := 0
	for _, sec := range t.Sections {
		n += len(sec.Questions)
	}
	return n
}

// ParseTest decodes and structurally normalizes a resolved test definition.
func ParseTest(data []byte) (*Test, error) {
	var t Test
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse test definition: %w", err)
	}
	return &t, nil
}

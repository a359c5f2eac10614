package validator

import (
	"fmt"

	"github.com/quizforge/scorm-engine/internal/models"
)

// TestValidator handles the semantic checks on a resolved test definition:
// index bounds, permutation validity and draw counts. Struct tags catch the
// shape, this catches the references.
type TestValidator struct{}

// NewTestValidator creates a new test validator
func NewTestValidator() *TestValidator {
	return &TestValidator{}
}

// Validate checks every section and question of a test definition.
func (v *TestValidator) Validate(t *models.Test) error {
	seen := make(map[string]bool)
	for _, section := range t.Sections {
		if err := v.ValidateSection(section); err != nil {
			return fmt.Errorf("section %q: %w", section.ID, err)
		}
		for _, question := range section.Questions {
			if seen[question.ID] {
				return fmt.Errorf("duplicate question id %q", question.ID)
			}
			seen[question.ID] = true
		}
	}
	return nil
}

// ValidateSection checks the draw specification and every pooled question.
func (v *TestValidator) ValidateSection(section *models.Section) error {
	if section.DrawCount > len(section.Questions) {
		return fmt.Errorf("draw count %d exceeds pool size %d",
			section.DrawCount, len(section.Questions))
	}

	for _, question := range section.Questions {
		if err := v.ValidateQuestion(question); err != nil {
			return fmt.Errorf("question %q: %w", question.ID, err)
		}
	}
	return nil
}

// ValidateQuestion validates the type-specific payload of one question.
func (v *TestValidator) ValidateQuestion(q *models.Question) error {
	switch q.Type {
	case models.SingleChoice:
		return v.validateSingleChoice(q.Single)
	case models.MultipleChoice:
		return v.validateMultipleChoice(q.Multiple)
	case models.Matching:
		return v.validateMatching(q.Matching)
	case models.Ranking:
		return v.validateRanking(q.Ranking)
	default:
		return fmt.Errorf("unsupported question type: %s", q.Type)
	}
}

func (v *TestValidator) validateSingleChoice(content *models.SingleChoiceContent) error {
	if content == nil {
		return fmt.Errorf("missing single choice content")
	}
	if len(content.Options) < 2 {
		return fmt.Errorf("must have at least 2 options")
	}
	if content.CorrectIndex < 0 || content.CorrectIndex >= len(content.Options) {
		return fmt.Errorf("correct index %d out of range for %d options",
			content.CorrectIndex, len(content.Options))
	}
	return nil
}

func (v *TestValidator) validateMultipleChoice(content *models.MultipleChoiceContent) error {
	if content == nil {
		return fmt.Errorf("missing multiple choice content")
	}
	if len(content.Options) < 2 {
		return fmt.Errorf("must have at least 2 options")
	}
	if len(content.CorrectIndexes) == 0 {
		return fmt.Errorf("must have at least 1 correct option")
	}

	seen := make(map[int]bool)
	for _, idx := range content.CorrectIndexes {
		if idx < 0 || idx >= len(content.Options) {
			return fmt.Errorf("correct index %d out of range for %d options",
				idx, len(content.Options))
		}
		if seen[idx] {
			return fmt.Errorf("duplicate correct index %d", idx)
		}
		seen[idx] = true
	}
	return nil
}

func (v *TestValidator) validateMatching(content *models.MatchingContent) error {
	if content == nil {
		return fmt.Errorf("missing matching content")
	}
	if len(content.LeftItems) < 2 || len(content.RightItems) < 2 {
		return fmt.Errorf("must have at least 2 items on each side")
	}
	if len(content.CorrectPairs) == 0 {
		return fmt.Errorf("must have at least 1 correct pair")
	}

	seenLeft := make(map[int]bool)
	for _, pair := range content.CorrectPairs {
		if pair.Left < 0 || pair.Left >= len(content.LeftItems) {
			return fmt.Errorf("pair references non-existent left item %d", pair.Left)
		}
		if pair.Right < 0 || pair.Right >= len(content.RightItems) {
			return fmt.Errorf("pair references non-existent right item %d", pair.Right)
		}
		if seenLeft[pair.Left] {
			return fmt.Errorf("left item %d appears in more than one pair", pair.Left)
		}
		seenLeft[pair.Left] = true
	}
	return nil
}

func (v *TestValidator) validateRanking(content *models.RankingContent) error {
	if content == nil {
		return fmt.Errorf("missing ranking content")
	}
	if len(content.Items) < 2 {
		return fmt.Errorf("must have at least 2 items")
	}
	if len(content.CorrectOrder) != len(content.Items) {
		return fmt.Errorf("correct order must include all %d items exactly once", len(content.Items))
	}

	// The correct order must be a permutation of the item indices.
	seen := make(map[int]bool)
	for _, idx := range content.CorrectOrder {
		if idx < 0 || idx >= len(content.Items) {
			return fmt.Errorf("correct order references non-existent item %d", idx)
		}
		if seen[idx] {
			return fmt.Errorf("correct order contains duplicate item %d", idx)
		}
		seen[idx] = true
	}
	return nil
}

package scorm

import (
	"sort"
	"strconv"
	"strings"

	"github.com/quizforge/scorm-engine/internal/grading"
	"github.com/quizforge/scorm-engine/internal/models"
)

// Interaction is one question's reportable outcome in the runtime data model.
// Responses and patterns are serialized 1-based for human readability in LMS
// report screens.
type Interaction struct {
	ID              string
	Type            string
	Result          string
	LearnerResponse string
	CorrectPattern  string
	Description     string
}

// BuildInteraction formats a question/answer pair into an interaction record.
func BuildInteraction(q *models.Question, ans *models.Answer) Interaction {
	return Interaction{
		ID:              q.ID,
		Type:            interactionType(q.Type),
		Result:          interactionResult(q, ans),
		LearnerResponse: serializeAnswer(q, ans),
		CorrectPattern:  serializeCorrect(q),
		Description:     q.Prompt,
	}
}

func interactionType(t models.QuestionType) string {
	switch t {
	case models.SingleChoice:
		return InteractionChoice
	case models.MultipleChoice:
		return InteractionMultipleChoice
	case models.Matching:
		return InteractionMatching
	case models.Ranking:
		return InteractionSequencing
	}
	return InteractionOther
}

func interactionResult(q *models.Question, ans *models.Answer) string {
	switch ratio := grading.Ratio(q, ans); ratio {
	case 1:
		return "correct"
	case 0:
		return "incorrect"
	default:
		return strconv.FormatFloat(ratio, 'f', 2, 64)
	}
}

func serializeAnswer(q *models.Question, ans *models.Answer) string {
	if ans == nil {
		return ""
	}
	switch q.Type {
	case models.SingleChoice:
		if ans.Selected == nil {
			return ""
		}
		return strconv.Itoa(*ans.Selected + 1)
	case models.MultipleChoice:
		return joinIndexes(ans.Selections)
	case models.Matching:
		pairs := make([]models.MatchPair, 0, len(ans.Matches))
		for left, right := range ans.Matches {
			pairs = append(pairs, models.MatchPair{Left: left, Right: right})
		}
		return joinPairs(pairs)
	case models.Ranking:
		return joinSequence(ans.Order)
	}
	return ""
}

func serializeCorrect(q *models.Question) string {
	switch q.Type {
	case models.SingleChoice:
		return strconv.Itoa(q.Single.CorrectIndex + 1)
	case models.MultipleChoice:
		return joinIndexes(q.Multiple.CorrectIndexes)
	case models.Matching:
		return joinPairs(q.Matching.CorrectPairs)
	case models.Ranking:
		return joinSequence(q.Ranking.CorrectOrder)
	}
	return ""
}

// joinIndexes renders an unordered selection sorted ascending, 1-based.
func joinIndexes(idx []int) string {
	sorted := append([]int(nil), idx...)
	sort.Ints(sorted)
	return joinSequence(sorted)
}

// joinSequence renders an ordered list 1-based, comma separated.
func joinSequence(idx []int) string {
	parts := make([]string, len(idx))
	for i, v := range idx {
		parts[i] = strconv.Itoa(v + 1)
	}
	return strings.Join(parts, ",")
}

// joinPairs renders matching pairs as "left.right" terms sorted by left, both
// sides 1-based.
func joinPairs(pairs []models.MatchPair) string {
	sorted := append([]models.MatchPair(nil), pairs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Left < sorted[j].Left })
	parts := make([]string, len(sorted))
	for i, p := range sorted {
		parts[i] = strconv.Itoa(p.Left+1) + "." + strconv.Itoa(p.Right+1)
	}
	return strings.Join(parts, ",")
}

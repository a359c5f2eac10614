package grading

import (
	"github.com/quizforge/scorm-engine/internal/models"
)

// scorer computes the credit ratio in [0,1] for one question type. Scorers are
// total: a nil or mistyped answer yields 0, never an error. The grading
// policies here are load-bearing; LMS-reported scores must stay bit-compatible
// with what learners were historically shown, so do not substitute "fairer"
// metrics (e.g. rank correlation for ranking questions).
type scorer func(q *models.Question, ans *models.Answer) float64

var scorers = map[models.QuestionType]scorer{
	models.SingleChoice:   scoreSingle,
	models.MultipleChoice: scoreMultiple,
	models.Matching:       scoreMatching,
	models.Ranking:        scoreRanking,
}

// Ratio routes by question type to the matching scorer and returns the
// fractional score in [0,1]. Unknown types score 0.
func Ratio(q *models.Question, ans *models.Answer) float64 {
	s, ok := scorers[q.Type]
	if !ok {
		return 0
	}
	r := s(q, ans)
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

// FullyCorrect reports whether the answer earns the full credit ratio of 1.
func FullyCorrect(q *models.Question, ans *models.Answer) bool {
	return Ratio(q, ans) == 1
}

func scoreSingle(q *models.Question, ans *models.Answer) float64 {
	if q.Single == nil || ans == nil || ans.Selected == nil {
		return 0
	}
	if *ans.Selected == q.Single.CorrectIndex {
		return 1
	}
	return 0
}

// scoreMultiple awards (selected-correct − selected-wrong) / |correct|,
// floored at zero. Over-selection is penalized: picking every option never
// beats picking only the correct subset.
func scoreMultiple(q *models.Question, ans *models.Answer) float64 {
	if q.Multiple == nil || len(q.Multiple.CorrectIndexes) == 0 {
		return 0
	}
	if ans == nil || len(ans.Selections) == 0 {
		return 0
	}
	correct := make(map[int]struct{}, len(q.Multiple.CorrectIndexes))
	for _, i := range q.Multiple.CorrectIndexes {
		correct[i] = struct{}{}
	}
	hits, misses := 0, 0
	seen := make(map[int]struct{}, len(ans.Selections))
	for _, i := range ans.Selections {
		if _, dup := seen[i]; dup {
			continue
		}
		seen[i] = struct{}{}
		if _, ok := correct[i]; ok {
			hits++
		} else {
			misses++
		}
	}
	score := float64(hits-misses) / float64(len(correct))
	if score < 0 {
		return 0
	}
	return score
}

// scoreMatching counts left items whose assigned right index equals the
// correct pairing, over the number of correct pairs. Pairs missing from the
// answer contribute nothing.
func scoreMatching(q *models.Question, ans *models.Answer) float64 {
	if q.Matching == nil || len(q.Matching.CorrectPairs) == 0 {
		return 0
	}
	if ans == nil || len(ans.Matches) == 0 {
		return 0
	}
	hits := 0
	for _, pair := range q.Matching.CorrectPairs {
		if right, ok := ans.Matches[pair.Left]; ok && right == pair.Right {
			hits++
		}
	}
	return float64(hits) / float64(len(q.Matching.CorrectPairs))
}

// scoreRanking is a positional exact-match count over the correct order. An
// answer of the wrong length scores 0.
func scoreRanking(q *models.Question, ans *models.Answer) float64 {
	if q.Ranking == nil || len(q.Ranking.CorrectOrder) == 0 {
		return 0
	}
	if ans == nil || len(ans.Order) != len(q.Ranking.CorrectOrder) {
		return 0
	}
	hits := 0
	for i, item := range ans.Order {
		if item == q.Ranking.CorrectOrder[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(q.Ranking.CorrectOrder))
}

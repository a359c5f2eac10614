package models

// Answer is a learner response, typed per question type. All indices are in
// original (authored) space, never display space: the UI resolves its shuffle
// mapping before storing a selection.
//
// Exactly one field is populated, matching the question's type.
type Answer struct {
	// Selected is the chosen option index for single-choice questions.
	Selected *int `json:"selected,omitempty"`
	// Selections are the chosen option indices for multiple-choice questions.
	Selections []int `json:"selections,omitempty"`
	// Matches maps original left index to the assigned original right index.
	Matches map[int]int `json:"matches,omitempty"`
	// Order lists original item indices in the learner's chosen order.
	Order []int `json:"order,omitempty"`
}

// Answered reports whether the answer satisfies the presence rule for the
// given question: single needs a selection, multiple a non-empty set, matching
// an assignment for every left item. Ranking always counts as answered because
// a default order exists from the moment the question is shown.
func (a *Answer) Answered(q *Question) bool {
	if q.Type == Ranking {
		return true
	}
	if a == nil {
		return false
	}
	switch q.Type {
	case SingleChoice:
		return a.Selected != nil
	case MultipleChoice:
		return len(a.Selections) > 0
	case Matching:
		if q.Matching == nil {
			return false
		}
		for left := range q.Matching.LeftItems {
			if _, ok := a.Matches[left]; !ok {
				return false
			}
		}
		return true
	}
	return false
}

// Clone returns a deep copy so stored answers cannot be mutated through the
// caller's slices and maps.
func (a *Answer) Clone() *Answer {
	if a == nil {
		return nil
	}
	c := &Answer{}
	if a.Selected != nil {
		v := *a.Selected
		c.Selected = &v
	}
	if a.Selections != nil {
		c.Selections = append([]int(nil), a.Selections...)
	}
	if a.Matches != nil {
		c.Matches = make(map[int]int, len(a.Matches))
		for k, v := range a.Matches {
			c.Matches[k] = v
		}
	}
	if a.Order != nil {
		c.Order = append([]int(nil), a.Order...)
	}
	return c
}

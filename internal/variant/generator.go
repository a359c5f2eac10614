package variant

import (
	"math/rand/v2"

	"github.com/quizforge/scorm-engine/internal/models"
)

// ShuffleMapping records how a question's displayed choice order maps back to
// the authored order: mapping[displayPosition] = originalIndex. Each slice is a
// permutation. Matching questions shuffle their two columns independently.
//
// Mappings are generated once per question per attempt and must stay stable for
// the attempt's duration so in-progress selections remain valid.
type ShuffleMapping struct {
	Options []int `json:"options,omitempty"`
	Left    []int `json:"left,omitempty"`
	Right   []int `json:"right,omitempty"`
}

// DrawnQuestion is one question materialized into an attempt, in display order.
type DrawnQuestion struct {
	Question  *models.Question
	SectionID string
	Shuffle   ShuffleMapping
}

// InitialAnswer returns the answer state a question starts from. Ranking
// questions begin at their shuffled display order rather than the authored
// order, so the learner starts from a non-trivial arrangement. Other types
// start unanswered.
func (d *DrawnQuestion) InitialAnswer() *models.Answer {
	if d.Question.Type != models.Ranking {
		return nil
	}
	return &models.Answer{Order: append([]int(nil), d.Shuffle.Options...)}
}

// Variant is one attempt's materialized draw: the per-section drawn question
// IDs and the flattened, topic-interleaved display sequence. It is ephemeral,
// created fresh at attempt start and discarded at attempt end or restart.
type Variant struct {
	Drawn     map[string][]string
	Questions []DrawnQuestion
}

// Generator draws test variants. Each call is an independent draw from a
// non-cryptographic uniform PRNG; there is no cross-attempt reproducibility
// requirement.
type Generator struct {
	rng *rand.Rand
}

func NewGenerator() *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// Generate draws min(drawCount, pool size) questions per section without
// replacement, interleaves the flattened sequence with a second independent
// shuffle so display order does not reveal topic grouping, and attaches a
// fresh shuffle mapping to every drawn question.
//
// A drawCount exceeding the pool size draws the whole pool; that is an
// authoring-side configuration concern the engine must tolerate, not reject.
func (g *Generator) Generate(t *models.Test) *Variant {
	v := &Variant{Drawn: make(map[string][]string, len(t.Sections))}

	for _, sec := range t.Sections {
		take := sec.DrawCount
		if take > len(sec.Questions) {
			take = len(sec.Questions)
		}
		order := g.rng.Perm(len(sec.Questions))
		ids := make([]string, 0, take)
		for _, poolIdx := range order[:take] {
			q := sec.Questions[poolIdx]
			v.Questions = append(v.Questions, DrawnQuestion{
				Question:  q,
				SectionID: sec.ID,
				Shuffle:   g.shuffleFor(q),
			})
			ids = append(ids, q.ID)
		}
		v.Drawn[sec.ID] = ids
	}

	g.rng.Shuffle(len(v.Questions), func(i, j int) {
		v.Questions[i], v.Questions[j] = v.Questions[j], v.Questions[i]
	})

	return v
}

func (g *Generator) shuffleFor(q *models.Question) ShuffleMapping {
	switch q.Type {
	case models.SingleChoice:
		return ShuffleMapping{Options: g.rng.Perm(len(q.Single.Options))}
	case models.MultipleChoice:
		return ShuffleMapping{Options: g.rng.Perm(len(q.Multiple.Options))}
	case models.Matching:
		return ShuffleMapping{
			Left:  g.rng.Perm(len(q.Matching.LeftItems)),
			Right: g.rng.Perm(len(q.Matching.RightItems)),
		}
	case models.Ranking:
		return ShuffleMapping{Options: g.rng.Perm(len(q.Ranking.Items))}
	}
	return ShuffleMapping{}
}

package attempt

import (
	"log/slog"
	"time"

	"github.com/quizforge/scorm-engine/internal/models"
	"github.com/quizforge/scorm-engine/internal/results"
	"github.com/quizforge/scorm-engine/internal/scorm"
	"github.com/quizforge/scorm-engine/internal/variant"
)

type Phase string

const (
	PhaseStart    Phase = "start"
	PhaseQuestion Phase = "question"
	PhaseResults  Phase = "results"
)

// Machine owns all mutable attempt state: the current variant, accumulated
// answers, navigation index, timer deadline and the submitted latch. It is a
// plain value driven from a single goroutine (see Session); nothing here is
// safe for concurrent use.
// StartSink observes successful attempt starts, once per Begin.
type StartSink interface {
	AttemptStarted(test *models.Test, attempt, questions int)
}

type Machine struct {
	test       *models.Test
	gen        *variant.Generator
	session    *scorm.SessionStore
	logger     *slog.Logger
	sinks      []results.Sink
	startSinks []StartSink

	phase        Phase
	variant      *variant.Variant
	answers      map[string]*models.Answer
	confirmed    map[string]bool
	index        int
	deadline     time.Time
	submitted    bool
	timeExpired  bool
	attemptsUsed int
	report       *results.Report
}

type Option func(*Machine)

// WithSessionStore enables cross-reload attempt counting through the runtime
// channel. Without it, gating falls back to the in-memory counter.
func WithSessionStore(s *scorm.SessionStore) Option {
	return func(m *Machine) { m.session = s }
}

// WithResultSink registers a consumer of the finished attempt. Sinks fire
// exactly once per submission, in registration order.
func WithResultSink(sink results.Sink) Option {
	return func(m *Machine) { m.sinks = append(m.sinks, sink) }
}

// WithStartSink registers a consumer of successful attempt starts.
func WithStartSink(sink StartSink) Option {
	return func(m *Machine) { m.startSinks = append(m.startSinks, sink) }
}

func NewMachine(test *models.Test, logger *slog.Logger, opts ...Option) *Machine {
	m := &Machine{
		test:   test,
		gen:    variant.NewGenerator(),
		logger: logger,
		phase:  PhaseStart,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.session != nil {
		m.attemptsUsed = m.session.Load().AttemptsUsed
	}
	return m
}

func (m *Machine) Phase() Phase       { return m.phase }
func (m *Machine) Test() *models.Test { return m.test }
func (m *Machine) Submitted() bool    { return m.submitted }
func (m *Machine) AttemptsUsed() int  { return m.attemptsUsed }

// CanStart reports whether the attempt-count gate allows a new attempt.
func (m *Machine) CanStart() bool {
	return m.test.MaxAttempts == 0 || m.attemptsUsed < m.test.MaxAttempts
}

// Begin transitions start → question: re-checks the attempt gate, draws a
// fresh variant with fresh shuffle mappings, seeds ranking answers from their
// shuffled display order, increments the persisted attempt counter and arms
// the deadline when a time limit is configured.
func (m *Machine) Begin() error {
	if m.phase == PhaseQuestion {
		return ErrAttemptInProgress
	}
	if m.session != nil {
		m.attemptsUsed = m.session.Load().AttemptsUsed
	}
	if !m.CanStart() {
		return ErrNoAttemptsRemaining
	}

	m.variant = m.gen.Generate(m.test)
	m.answers = make(map[string]*models.Answer, len(m.variant.Questions))
	m.confirmed = make(map[string]bool)
	for i := range m.variant.Questions {
		drawn := &m.variant.Questions[i]
		if initial := drawn.InitialAnswer(); initial != nil {
			m.answers[drawn.Question.ID] = initial
		}
	}

	m.index = 0
	m.submitted = false
	m.timeExpired = false
	m.report = nil

	m.attemptsUsed++
	if m.session != nil {
		m.session.Save(scorm.SessionState{AttemptsUsed: m.attemptsUsed})
	}

	if m.test.TimeLimitMinutes > 0 {
		m.deadline = time.Now().Add(time.Duration(m.test.TimeLimitMinutes) * time.Minute)
	} else {
		m.deadline = time.Time{}
	}

	m.phase = PhaseQuestion
	m.logger.Info("attempt started",
		"test_id", m.test.ID,
		"questions", len(m.variant.Questions),
		"attempt", m.attemptsUsed)
	for _, sink := range m.startSinks {
		sink.AttemptStarted(m.test, m.attemptsUsed, len(m.variant.Questions))
	}
	return nil
}

// Current returns the question on display.
func (m *Machine) Current() (*variant.DrawnQuestion, error) {
	if m.phase != PhaseQuestion {
		return nil, ErrNotStarted
	}
	return &m.variant.Questions[m.index], nil
}

func (m *Machine) Index() int { return m.index }

func (m *Machine) Len() int {
	if m.variant == nil {
		return 0
	}
	return len(m.variant.Questions)
}

// AnswerFor returns a copy of the stored answer for a drawn question.
func (m *Machine) AnswerFor(questionID string) *models.Answer {
	return m.answers[questionID].Clone()
}

// Confirmed reports whether the current question's answer has been locked.
func (m *Machine) Confirmed() bool {
	cur, err := m.Current()
	if err != nil {
		return false
	}
	return m.confirmed[cur.Question.ID]
}

// SetAnswer stores the learner's answer for the question on display. Answers
// are refused once the question is confirmed or the attempt submitted.
func (m *Machine) SetAnswer(ans models.Answer) error {
	cur, err := m.Current()
	if err != nil {
		return err
	}
	if m.submitted {
		return ErrAlreadySubmitted
	}
	if m.confirmed[cur.Question.ID] {
		return ErrAnswerLocked
	}
	m.answers[cur.Question.ID] = ans.Clone()
	return nil
}

// Confirm is the reveal sub-step used when the test shows correct answers:
// it requires a present answer, locks further edits to the question, and makes
// Next available.
func (m *Machine) Confirm() error {
	cur, err := m.Current()
	if err != nil {
		return err
	}
	if !m.test.ShowCorrectAnswers {
		return ErrConfirmDisabled
	}
	if m.submitted {
		return ErrAlreadySubmitted
	}
	if !m.answers[cur.Question.ID].Answered(cur.Question) {
		return ErrAnswerRequired
	}
	m.confirmed[cur.Question.ID] = true
	return nil
}

// Next advances to the following question, gated by answer presence and, when
// correct answers are shown, by prior confirmation.
func (m *Machine) Next() error {
	cur, err := m.Current()
	if err != nil {
		return err
	}
	if m.submitted {
		return ErrAlreadySubmitted
	}
	if !m.answers[cur.Question.ID].Answered(cur.Question) {
		return ErrAnswerRequired
	}
	if m.test.ShowCorrectAnswers && !m.confirmed[cur.Question.ID] {
		return ErrConfirmRequired
	}
	if m.index >= len(m.variant.Questions)-1 {
		return ErrNoMoreQuestions
	}
	m.index++
	return nil
}

// Submit finishes the attempt from the last question. Earlier questions are
// only ever left behind through Next's answer gate, so manual submission is
// refused anywhere else; it applies the same answer-presence validation as
// Next, and a repeated call while already submitted is a no-op.
func (m *Machine) Submit() error {
	if m.submitted {
		return nil
	}
	cur, err := m.Current()
	if err != nil {
		return err
	}
	if m.index != len(m.variant.Questions)-1 {
		return ErrNotLastQuestion
	}
	if !m.answers[cur.Question.ID].Answered(cur.Question) {
		return ErrAnswerRequired
	}
	m.finish(false)
	return nil
}

// Tick is the countdown callback. On deadline expiry it forces submission
// exactly once, bypassing answer validation, and reports true so the caller
// can tear the timer down. The submitted latch makes residual ticks inert.
func (m *Machine) Tick(now time.Time) bool {
	if m.phase != PhaseQuestion || m.submitted || m.deadline.IsZero() {
		return false
	}
	if now.Before(m.deadline) {
		return false
	}
	m.logger.Info("time limit reached, forcing submission", "test_id", m.test.ID)
	m.finish(true)
	return true
}

// TimeRemaining reports the countdown left, zero when no limit is configured.
func (m *Machine) TimeRemaining(now time.Time) time.Duration {
	if m.deadline.IsZero() {
		return 0
	}
	remaining := m.deadline.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (m *Machine) finish(expired bool) {
	m.submitted = true
	m.timeExpired = expired
	m.phase = PhaseResults

	m.report = results.Aggregate(m.test, m.variant, m.answers)
	m.report.TimeExpired = expired

	m.logger.Info("attempt submitted",
		"test_id", m.test.ID,
		"percent", m.report.Percent,
		"passed", m.report.Passed,
		"time_expired", expired)

	outcome := results.Outcome{
		Test:    m.test,
		Variant: m.variant,
		Answers: m.answers,
		Report:  m.report,
	}
	for _, sink := range m.sinks {
		sink.AttemptCompleted(outcome)
	}
}

// Report returns the aggregated result, available after submission.
func (m *Machine) Report() (*results.Report, error) {
	if m.report == nil {
		return nil, ErrNotSubmitted
	}
	return m.report, nil
}

// Restart discards the variant and all answers and returns to the start
// phase. The next Begin re-checks the attempt gate and draws fresh.
func (m *Machine) Restart() {
	m.phase = PhaseStart
	m.variant = nil
	m.answers = nil
	m.confirmed = nil
	m.report = nil
	m.submitted = false
	m.timeExpired = false
	m.deadline = time.Time{}
	m.index = 0
}

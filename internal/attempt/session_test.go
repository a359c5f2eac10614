package attempt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizforge/scorm-engine/internal/models"
)

// drive runs a session loop and returns a helper that posts an event and
// waits for it to be applied.
func drive(t *testing.T, test *models.Test) (*Session, func(Event), func() error) {
	t.Helper()

	m := NewMachine(test, testLogger())
	s := NewSession(m, testLogger())

	applied := make(chan struct{}, 16)
	notices := make(chan error, 16)
	s.OnUpdate = func(*Machine) { applied <- struct{}{} }
	s.OnNotice = func(err error) { notices <- err }

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go s.Run(ctx)

	post := func(ev Event) {
		s.Post(ev)
		select {
		case <-applied:
		case <-time.After(5 * time.Second):
			t.Fatal("event was never applied")
		}
	}
	lastNotice := func() error {
		select {
		case err := <-notices:
			return err
		default:
			return nil
		}
	}
	return s, post, lastNotice
}

func TestSession_FullAttemptFlow(t *testing.T) {
	s, post, notice := drive(t, twoQuestionTest())

	post(StartEvent{})
	require.NoError(t, notice())
	assert.Equal(t, PhaseQuestion, s.Machine().Phase())

	post(AnswerEvent{Answer: models.Answer{Selected: intPtr(0)}})
	require.NoError(t, notice())
	post(NextEvent{})
	require.NoError(t, notice())

	post(AnswerEvent{Answer: models.Answer{Selected: intPtr(1)}})
	require.NoError(t, notice())
	post(SubmitEvent{})
	require.NoError(t, notice())

	assert.True(t, s.Machine().Submitted())
	report, err := s.Machine().Report()
	require.NoError(t, err)
	assert.NotNil(t, report)
}

func TestSession_RefusalsSurfaceAsNotices(t *testing.T) {
	s, post, notice := drive(t, twoQuestionTest())

	post(StartEvent{})
	require.NoError(t, notice())

	// Advancing with no answer is refused but never fatal.
	post(NextEvent{})
	assert.ErrorIs(t, notice(), ErrAnswerRequired)
	assert.Equal(t, PhaseQuestion, s.Machine().Phase())
	assert.Equal(t, 0, s.Machine().Index())
}

func TestSession_RestartReturnsToStart(t *testing.T) {
	s, post, notice := drive(t, twoQuestionTest())

	post(StartEvent{})
	require.NoError(t, notice())
	post(RestartEvent{})

	assert.Equal(t, PhaseStart, s.Machine().Phase())
}

func TestSession_StartWhileRunningIsRefused(t *testing.T) {
	_, post, notice := drive(t, twoQuestionTest())

	post(StartEvent{})
	require.NoError(t, notice())

	post(StartEvent{})
	assert.ErrorIs(t, notice(), ErrAttemptInProgress)
}

package attempt

import "errors"

// Validation refusals are soft: the UI surfaces them as transient notices
// and the attempt state stays unchanged.
var (
	ErrAttemptInProgress   = errors.New("attempt already in progress")
	ErrNotStarted          = errors.New("attempt not started")
	ErrNoAttemptsRemaining = errors.New("no attempts remaining")
	ErrAnswerRequired      = errors.New("answer required before advancing")
	ErrAnswerLocked        = errors.New("answer is locked after confirmation")
	ErrConfirmRequired     = errors.New("answer must be confirmed before advancing")
	ErrConfirmDisabled     = errors.New("answer confirmation is not enabled for this test")
	ErrNoMoreQuestions     = errors.New("already at the last question")
	ErrNotLastQuestion     = errors.New("submission is only available from the last question")
	ErrAlreadySubmitted    = errors.New("attempt already submitted")
	ErrNotSubmitted        = errors.New("attempt not submitted yet")
)

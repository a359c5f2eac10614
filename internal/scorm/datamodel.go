package scorm

import "fmt"

// SCORM 2004 (CMI) data model elements the engine writes on completion.
const (
	KeyScoreRaw         = "cmi.score.raw"
	KeyScoreMin         = "cmi.score.min"
	KeyScoreMax         = "cmi.score.max"
	KeyScoreScaled      = "cmi.score.scaled"
	KeyCompletionStatus = "cmi.completion_status"
	KeySuccessStatus    = "cmi.success_status"
	KeyProgressMeasure  = "cmi.progress_measure"
	KeyExit             = "cmi.exit"

	// KeySuspendData is the single reserved slot for cross-reload session
	// state (attempt counter), stored as a JSON object.
	KeySuspendData = "cmi.suspend_data"
)

const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusUnknown = "unknown"

	CompletionCompleted = "completed"
	ExitNormal          = "normal"
)

// Interaction type vocabulary.
const (
	InteractionChoice         = "choice"
	InteractionMultipleChoice = "multiple_choice"
	InteractionMatching       = "matching"
	InteractionSequencing     = "sequencing"
	InteractionOther          = "other"
)

func objectiveKey(n int, field string) string {
	return fmt.Sprintf("cmi.objectives.%d.%s", n, field)
}

func interactionKey(n int, field string) string {
	return fmt.Sprintf("cmi.interactions.%d.%s", n, field)
}

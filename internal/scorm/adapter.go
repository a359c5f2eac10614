package scorm

import (
	"log/slog"
	"math"
	"strconv"

	"github.com/quizforge/scorm-engine/internal/results"
)

// Adapter translates a finished attempt into runtime data-model writes. It
// implements results.Sink; every individual write is attempted even when
// earlier ones fail, so a flaky channel still receives as much as possible.
type Adapter struct {
	api    RuntimeAPI
	logger *slog.Logger
}

func NewAdapter(api RuntimeAPI, logger *slog.Logger) *Adapter {
	return &Adapter{api: api, logger: logger}
}

func (a *Adapter) AttemptCompleted(outcome results.Outcome) {
	report := outcome.Report

	a.logger.Info("reporting attempt to runtime",
		"test_id", report.TestID,
		"percent", report.Percent,
		"passed", report.Passed)

	a.set(KeyScoreRaw, formatPoints(report.EarnedPoints))
	a.set(KeyScoreMin, "0")
	a.set(KeyScoreMax, strconv.Itoa(report.PossiblePoints))
	a.set(KeyScoreScaled, formatScaled(report.EarnedPoints, report.PossiblePoints))
	a.set(KeyCompletionStatus, CompletionCompleted)
	a.set(KeySuccessStatus, successStatus(report.Passed))
	a.set(KeyProgressMeasure, "1")
	a.set(KeyExit, ExitNormal)

	for i, topic := range report.Topics {
		a.set(objectiveKey(i, "id"), topic.SectionID)
		a.set(objectiveKey(i, "score.raw"), strconv.Itoa(int(math.Round(topic.Percent))))
		status := StatusUnknown
		if topic.Passed != nil {
			status = successStatus(*topic.Passed)
		}
		a.set(objectiveKey(i, "success_status"), status)
	}

	for i, drawn := range outcome.Variant.Questions {
		record := BuildInteraction(drawn.Question, outcome.Answers[drawn.Question.ID])
		a.set(interactionKey(i, "id"), record.ID)
		a.set(interactionKey(i, "type"), record.Type)
		a.set(interactionKey(i, "result"), record.Result)
		a.set(interactionKey(i, "learner_response"), record.LearnerResponse)
		a.set(interactionKey(i, "correct_responses.0.pattern"), record.CorrectPattern)
		a.set(interactionKey(i, "description"), record.Description)
	}

	if err := a.api.Commit(); err != nil {
		a.logger.Warn("runtime commit failed", "error", err)
	}
}

func (a *Adapter) set(key, value string) {
	if err := a.api.SetValue(key, value); err != nil {
		a.logger.Warn("runtime write failed", "key", key, "error", err)
	}
}

func successStatus(passed bool) string {
	if passed {
		return StatusPassed
	}
	return StatusFailed
}

func formatPoints(earned float64) string {
	return strconv.FormatFloat(earned, 'f', -1, 64)
}

func formatScaled(earned float64, possible int) string {
	if possible == 0 {
		return "0"
	}
	return strconv.FormatFloat(earned/float64(possible), 'f', 4, 64)
}

package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quizforge/scorm-engine/internal/results"
)

// EventType represents the attempt lifecycle events published on the bus.
type EventType string

const (
	EventAttemptStarted   EventType = "attempt.started"
	EventAttemptCompleted EventType = "attempt.completed"
	EventAttemptExpired   EventType = "attempt.time_expired"
)

const (
	eventSource  = "scorm-engine"
	eventVersion = "1.0"
)

// AttemptEvent is the envelope for all attempt events.
type AttemptEvent struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Source    string          `json:"source"`
	Version   string          `json:"version"`
	Data      json.RawMessage `json:"data"`
}

// AttemptStartedEvent payload.
type AttemptStartedEvent struct {
	TestID    string    `json:"test_id"`
	Title     string    `json:"title"`
	Attempt   int       `json:"attempt"`
	Questions int       `json:"questions"`
	StartedAt time.Time `json:"started_at"`
}

// AttemptCompletedEvent payload: the result summary the webhook forwards.
type AttemptCompletedEvent struct {
	TestID       string                `json:"test_id"`
	Title        string                `json:"title"`
	Percent      float64               `json:"percent"`
	Passed       bool                  `json:"passed"`
	FullyCorrect int                   `json:"fully_correct"`
	TimeExpired  bool                  `json:"time_expired"`
	Topics       []results.TopicResult `json:"topics"`
	CompletedAt  time.Time             `json:"completed_at"`
}

func newEvent(eventType EventType, payload any) (*AttemptEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return &AttemptEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}, nil
}

func NewAttemptStartedEvent(testID, title string, attempt, questions int) (*AttemptEvent, error) {
	return newEvent(EventAttemptStarted, AttemptStartedEvent{
		TestID:    testID,
		Title:     title,
		Attempt:   attempt,
		Questions: questions,
		StartedAt: time.Now(),
	})
}

func NewAttemptCompletedEvent(report *results.Report) (*AttemptEvent, error) {
	eventType := EventAttemptCompleted
	if report.TimeExpired {
		eventType = EventAttemptExpired
	}
	return newEvent(eventType, AttemptCompletedEvent{
		TestID:       report.TestID,
		Title:        report.Title,
		Percent:      report.Percent,
		Passed:       report.Passed,
		FullyCorrect: report.FullyCorrect,
		TimeExpired:  report.TimeExpired,
		Topics:       report.Topics,
		CompletedAt:  report.CompletedAt,
	})
}

// DecodeCompleted unpacks a completed/expired event payload.
func (e *AttemptEvent) DecodeCompleted() (*AttemptCompletedEvent, error) {
	if e.Type != EventAttemptCompleted && e.Type != EventAttemptExpired {
		return nil, fmt.Errorf("event %s is not a completion event", e.Type)
	}
	var payload AttemptCompletedEvent
	if err := json.Unmarshal(e.Data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode completion payload: %w", err)
	}
	return &payload, nil
}

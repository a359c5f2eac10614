package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/quizforge/scorm-engine/internal/models"
	"github.com/quizforge/scorm-engine/internal/results"
)

// TopicAttempts is the single in-process topic attempt events flow on.
const TopicAttempts = "attempt-events"

// Publisher publishes attempt events.
type Publisher interface {
	PublishAttemptEvent(ctx context.Context, event *AttemptEvent) error
	Close() error
}

// Bus is a Watermill gochannel pub/sub carrying attempt events inside the
// process: the engine publishes, subscribers such as the webhook notifier
// consume. The package is self-contained and offline, so no broker-backed
// transport applies.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 16},
		watermill.NewSlogLogger(logger),
	)
	return &Bus{pubsub: pubsub, logger: logger}
}

func (b *Bus) PublishAttemptEvent(ctx context.Context, event *AttemptEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal attempt event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("source", event.Source)
	msg.Metadata.Set("version", event.Version)
	msg.Metadata.Set("timestamp", event.Timestamp.Format(time.RFC3339))

	if err := b.pubsub.Publish(TopicAttempts, msg); err != nil {
		b.logger.Error("Failed to publish attempt event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
		return fmt.Errorf("failed to publish attempt event: %w", err)
	}

	b.logger.Debug("Published attempt event",
		"event_id", event.ID,
		"event_type", event.Type)
	return nil
}

// Subscribe returns the attempt event stream. Call before publishing starts;
// the gochannel transport does not replay.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, TopicAttempts)
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// Sink bridges the attempt state machine to the bus: it implements
// results.Sink and attempt.StartSink, publishing one started event per Begin
// and one completion event per finished attempt. Publish failures are logged
// and swallowed; events are fire-and-forget.
type Sink struct {
	pub    Publisher
	logger *slog.Logger
}

func NewSink(pub Publisher, logger *slog.Logger) *Sink {
	return &Sink{pub: pub, logger: logger}
}

func (s *Sink) AttemptStarted(test *models.Test, attempt, questions int) {
	event, err := NewAttemptStartedEvent(test.ID, test.Title, attempt, questions)
	if err != nil {
		s.logger.Error("Failed to build started event", "error", err)
		return
	}
	if err := s.pub.PublishAttemptEvent(context.Background(), event); err != nil {
		s.logger.Error("Failed to publish started event", "error", err)
	}
}

func (s *Sink) AttemptCompleted(outcome results.Outcome) {
	event, err := NewAttemptCompletedEvent(outcome.Report)
	if err != nil {
		s.logger.Error("Failed to build completion event", "error", err)
		return
	}
	if err := s.pub.PublishAttemptEvent(context.Background(), event); err != nil {
		s.logger.Error("Failed to publish completion event", "error", err)
	}
}

// MockPublisher records events in memory for tests.
type MockPublisher struct {
	Events []AttemptEvent
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Events: make([]AttemptEvent, 0)}
}

func (m *MockPublisher) PublishAttemptEvent(_ context.Context, event *AttemptEvent) error {
	m.Events = append(m.Events, *event)
	return nil
}

func (m *MockPublisher) Close() error { return nil }

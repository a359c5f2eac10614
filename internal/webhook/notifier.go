package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/quizforge/scorm-engine/internal/events"
)

const defaultTimeout = 10 * time.Second

// Subscriber is the slice of the event bus the notifier consumes.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan *message.Message, error)
}

// Notifier forwards attempt completion events to a configured webhook URL as
// a JSON POST. Delivery is strictly best-effort: failures are logged and
// swallowed, never retried, and never surface to the learner.
type Notifier struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// NewNotifier builds a notifier for the given endpoint. A non-positive
// timeout falls back to the default.
func NewNotifier(url string, timeout time.Duration, logger *slog.Logger) *Notifier {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Notifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Run consumes the completion event stream until the context is cancelled.
func (n *Notifier) Run(ctx context.Context, sub Subscriber) error {
	messages, err := sub.Subscribe(ctx)
	if err != nil {
		return err
	}
	go func() {
		for msg := range messages {
			n.handle(ctx, msg)
			msg.Ack()
		}
	}()
	return nil
}

func (n *Notifier) handle(ctx context.Context, msg *message.Message) {
	var event events.AttemptEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		n.logger.Warn("discarding unreadable attempt event", "error", err)
		return
	}
	if event.Type != events.EventAttemptCompleted && event.Type != events.EventAttemptExpired {
		return
	}
	payload, err := event.DecodeCompleted()
	if err != nil {
		n.logger.Warn("discarding malformed completion event", "error", err)
		return
	}
	n.Notify(ctx, payload)
}

// Notify posts one result summary. All errors are swallowed after logging.
func (n *Notifier) Notify(ctx context.Context, payload *events.AttemptCompletedEvent) {
	if n.url == "" {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		n.logger.Error("failed to marshal webhook payload", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		n.logger.Warn("failed to build webhook request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn("webhook delivery failed", "url", n.url, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		n.logger.Warn("webhook rejected result", "url", n.url, "status", resp.StatusCode)
		return
	}
	n.logger.Info("webhook delivered", "url", n.url, "test_id", payload.TestID)
}

package scorm

import (
	"encoding/json"
	"log/slog"
	"time"
)

// SessionState is the small cross-reload state persisted under the reserved
// suspend-data key. It is read at attempt start to enforce max-attempts gating
// and written immediately after a successful start.
type SessionState struct {
	AttemptsUsed int       `json:"attempts_used"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// SessionStore reads and writes SessionState through the runtime channel.
// Both directions are best-effort: a missing or broken channel degrades to a
// fresh zero state and must never fail the attempt flow.
type SessionStore struct {
	api    RuntimeAPI
	logger *slog.Logger
}

func NewSessionStore(api RuntimeAPI, logger *slog.Logger) *SessionStore {
	return &SessionStore{api: api, logger: logger}
}

func (s *SessionStore) Load() SessionState {
	var state SessionState
	raw, err := s.api.GetValue(KeySuspendData)
	if err != nil {
		s.logger.Debug("session state unavailable", "error", err)
		return state
	}
	if raw == "" {
		return state
	}
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		s.logger.Warn("discarding unreadable session state", "error", err)
		return SessionState{}
	}
	return state
}

func (s *SessionStore) Save(state SessionState) {
	state.UpdatedAt = time.Now()
	raw, err := json.Marshal(state)
	if err != nil {
		s.logger.Error("failed to marshal session state", "error", err)
		return
	}
	if err := s.api.SetValue(KeySuspendData, string(raw)); err != nil {
		s.logger.Warn("failed to persist session state", "error", err)
		return
	}
	if err := s.api.Commit(); err != nil {
		s.logger.Warn("failed to commit session state", "error", err)
	}
}

package scorm

import (
	"log/slog"
	"sort"
)

// RuntimeAPI is the narrow key/value channel a hosting LMS supplies to a
// SCORM 2004 package. The engine only ever consumes this capability; it is
// injected once at startup and never re-probed per call.
type RuntimeAPI interface {
	Initialize() error
	GetValue(key string) (string, error)
	SetValue(key, value string) error
	Commit() error
	Terminate() error
}

// Connect probes the channel once and selects standalone mode when it is
// absent or refuses to initialize. The engine keeps functioning either way;
// with a NullAPI every write degenerates to a log line.
func Connect(api RuntimeAPI, logger *slog.Logger) RuntimeAPI {
	if api == nil {
		logger.Info("no runtime channel configured, running standalone")
		return NewNullAPI(logger)
	}
	if err := api.Initialize(); err != nil {
		logger.Warn("runtime channel unavailable, falling back to standalone", "error", err)
		return NewNullAPI(logger)
	}
	return api
}

// NullAPI is the standalone-mode adapter: every operation succeeds locally and
// writes are visible only in debug logs.
type NullAPI struct {
	logger *slog.Logger
}

func NewNullAPI(logger *slog.Logger) *NullAPI {
	return &NullAPI{logger: logger}
}

func (n *NullAPI) Initialize() error { return nil }

func (n *NullAPI) GetValue(key string) (string, error) { return "", nil }

func (n *NullAPI) SetValue(key, value string) error {
	n.logger.Debug("standalone runtime write", "key", key, "value", value)
	return nil
}

func (n *NullAPI) Commit() error    { return nil }
func (n *NullAPI) Terminate() error { return nil }

// MemoryAPI is an in-memory runtime channel used by the LMS emulator harness
// and by tests to assert the exact write sequence.
type MemoryAPI struct {
	Values      map[string]string
	Initialized bool
	Commits     int
	Terminated  bool
}

func NewMemoryAPI() *MemoryAPI {
	return &MemoryAPI{Values: make(map[string]string)}
}

func (m *MemoryAPI) Initialize() error {
	m.Initialized = true
	return nil
}

func (m *MemoryAPI) GetValue(key string) (string, error) {
	return m.Values[key], nil
}

func (m *MemoryAPI) SetValue(key, value string) error {
	m.Values[key] = value
	return nil
}

func (m *MemoryAPI) Commit() error {
	m.Commits++
	return nil
}

func (m *MemoryAPI) Terminate() error {
	m.Terminated = true
	return nil
}

// Keys returns the written keys in sorted order, for inspection.
func (m *MemoryAPI) Keys() []string {
	keys := make([]string, 0, len(m.Values))
	for k := range m.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package harness

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizforge/scorm-engine/internal/scorm"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) (*httptest.Server, Store) {
	t.Helper()
	store := NewMemoryStore()
	server := httptest.NewServer(NewServer(store, testLogger()).Router())
	t.Cleanup(server.Close)
	return server, store
}

func TestClient_ImplementsRuntimeAPI(t *testing.T) {
	var _ scorm.RuntimeAPI = (*Client)(nil)
}

func TestClientServer_FullRuntimeFlow(t *testing.T) {
	server, store := newTestServer(t)
	client := NewClient(server.URL, "attempt-1")

	require.NoError(t, client.Initialize())

	require.NoError(t, client.SetValue("cmi.score.raw", "7"))
	require.NoError(t, client.SetValue("cmi.success_status", "passed"))
	require.NoError(t, client.Commit())

	value, err := client.GetValue("cmi.score.raw")
	require.NoError(t, err)
	assert.Equal(t, "7", value)

	require.NoError(t, client.Terminate())

	snapshot, err := store.Snapshot(context.Background(), "attempt-1")
	require.NoError(t, err)
	assert.Equal(t, "7", snapshot["cmi.score.raw"])
	assert.Equal(t, "passed", snapshot["cmi.success_status"])
	assert.Equal(t, "terminated", snapshot["harness.state"])
}

func TestClient_MissingKeyReadsEmpty(t *testing.T) {
	server, _ := newTestServer(t)
	client := NewClient(server.URL, "attempt-1")

	value, err := client.GetValue("cmi.suspend_data")
	require.NoError(t, err)
	assert.Equal(t, "", value)
}

func TestServer_SessionsAreIsolated(t *testing.T) {
	server, _ := newTestServer(t)
	first := NewClient(server.URL, "session-a")
	second := NewClient(server.URL, "session-b")

	require.NoError(t, first.SetValue("cmi.score.raw", "10"))
	require.NoError(t, second.SetValue("cmi.score.raw", "3"))

	value, err := first.GetValue("cmi.score.raw")
	require.NoError(t, err)
	assert.Equal(t, "10", value)

	value, err = second.GetValue("cmi.score.raw")
	require.NoError(t, err)
	assert.Equal(t, "3", value)
}

func TestClient_ConnectsThroughEngineProbe(t *testing.T) {
	server, _ := newTestServer(t)
	client := NewClient(server.URL, "probe")

	api := scorm.Connect(client, testLogger())
	assert.Equal(t, client, api, "reachable harness must be selected as the runtime channel")
}

func TestConnect_UnreachableHarnessFallsBack(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "probe")

	api := scorm.Connect(client, testLogger())
	_, isNull := api.(*scorm.NullAPI)
	assert.True(t, isNull)
}

func TestMemoryStore_Clear(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "s", "k", "v"))
	require.NoError(t, store.Clear(ctx, "s"))

	value, err := store.Get(ctx, "s", "k")
	require.NoError(t, err)
	assert.Equal(t, "", value)
}

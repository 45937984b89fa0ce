package logbull

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logbull/internal/diagnostics"
	"logbull/internal/models"
)

type fakeServer struct {
	*httptest.Server
	mu      sync.Mutex
	entries []models.LogEntry
	headers []http.Header
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var batch models.LogBatch
		if err := json.Unmarshal(body, &batch); err != nil {
			t.Errorf("invalid request body: %v", err)
		}

		fs.mu.Lock()
		fs.entries = append(fs.entries, batch.Logs...)
		fs.headers = append(fs.headers, r.Header.Clone())
		fs.mu.Unlock()

		w.WriteHeader(http.StatusAccepted)
		io.WriteString(w, `{"accepted":1,"rejected":0}`)
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeServer) received() []models.LogEntry {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	out := make([]models.LogEntry, len(fs.entries))
	copy(out, fs.entries)
	return out
}

func newTestLogger(t *testing.T, host string, opts ...Option) *Logger {
	t.Helper()
	all := append([]Option{WithBatchInterval(time.Hour), withReporter(diagnostics.NewRecorder())}, opts...)
	l, err := New(NewConfig(uuid.NewString(), host, ""), all...)
	require.NoError(t, err)
	return l
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(NewConfig("bad", "http://localhost", ""))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewHandler(NewConfig(uuid.NewString(), "", ""))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLogger_EndToEnd(t *testing.T) {
	srv := newFakeServer(t)
	l := newTestLogger(t, srv.URL)

	require.NoError(t, l.Info("  hello  ", nil))
	l.Shutdown()

	got := srv.received()
	require.Len(t, got, 1)
	assert.Equal(t, "INFO", got[0].Level)
	assert.Equal(t, "hello", got[0].Message)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{9}Z$`, got[0].Timestamp)
	assert.Empty(t, got[0].Fields)
}

func TestLogger_LevelFiltering(t *testing.T) {
	srv := newFakeServer(t)
	cfg := NewConfig(uuid.NewString(), srv.URL, "")
	cfg.MinLevel = LevelWarning
	l, err := New(cfg, WithBatchInterval(time.Hour))
	require.NoError(t, err)

	assert.NoError(t, l.Debug("dropped", nil))
	assert.NoError(t, l.Info("dropped", nil))
	// filtered entries are not validated either
	assert.NoError(t, l.Info("", nil))
	assert.NoError(t, l.Warning("kept warning", nil))
	assert.NoError(t, l.Error("kept error", nil))
	assert.NoError(t, l.Critical("kept critical", nil))
	assert.Equal(t, LevelWarning, l.MinLevel())
	l.Shutdown()

	var levels []string
	for _, e := range srv.received() {
		levels = append(levels, e.Level)
	}
	assert.ElementsMatch(t, []string{"WARNING", "ERROR", "CRITICAL"}, levels)
}

func TestLogger_InvalidInput(t *testing.T) {
	srv := newFakeServer(t)
	l := newTestLogger(t, srv.URL)

	assert.ErrorIs(t, l.Info("   ", nil), ErrInvalidInput)
	assert.ErrorIs(t, l.Error("ok", map[string]any{"": 1}), ErrInvalidInput)
	assert.ErrorIs(t, l.Log(LevelInfo, string(make([]byte, 10_001)), nil), ErrInvalidInput)
	assert.ErrorIs(t, l.Log(Level(25), "between info and warning", nil), ErrInvalidInput)
	assert.ErrorIs(t, l.Log(Level(0), "zero", nil), ErrInvalidInput)
	l.Shutdown()

	assert.Empty(t, srv.received())
}

func TestLogger_WithContext(t *testing.T) {
	srv := newFakeServer(t)
	l := newTestLogger(t, srv.URL)

	child := l.WithContext(map[string]any{"service": "api", "env": "dev"})
	grandchild := child.WithContext(map[string]any{"request_id": "r-1"})

	require.NoError(t, child.Info("from child", map[string]any{"env": "prod"}))
	require.NoError(t, grandchild.Info("from grandchild", nil))
	require.NoError(t, l.Info("from parent", map[string]any{" user ": "alice"}))
	grandchild.Shutdown()

	byMessage := map[string]models.LogEntry{}
	for _, e := range srv.received() {
		byMessage[e.Message] = e
	}
	require.Len(t, byMessage, 3)

	assert.Equal(t, map[string]any{"service": "api", "env": "prod"}, byMessage["from child"].Fields)
	assert.Equal(t, map[string]any{"service": "api", "env": "dev", "request_id": "r-1"}, byMessage["from grandchild"].Fields)
	assert.Equal(t, map[string]any{"user": "alice"}, byMessage["from parent"].Fields)

	// one generator is shared by the whole family
	assert.Less(t, byMessage["from child"].Timestamp, byMessage["from grandchild"].Timestamp)
	assert.Less(t, byMessage["from grandchild"].Timestamp, byMessage["from parent"].Timestamp)
}

func TestLogger_ConsoleEcho(t *testing.T) {
	srv := newFakeServer(t)
	var stdout, stderr bytes.Buffer
	l := newTestLogger(t, srv.URL, WithConsoleWriters(&stdout, &stderr))

	require.NoError(t, l.Info("visible", map[string]any{"k": "v"}))
	require.NoError(t, l.Error("broken", nil))
	l.Shutdown()

	assert.Contains(t, stdout.String(), "[INFO] visible (k=v)")
	assert.Contains(t, stderr.String(), "[ERROR] broken")
	assert.Len(t, srv.received(), 2)
}

func TestLogger_ShutdownIsShared(t *testing.T) {
	srv := newFakeServer(t)
	l := newTestLogger(t, srv.URL)
	child := l.WithContext(map[string]any{"a": 1})

	require.NoError(t, l.Info("one", nil))
	child.Shutdown()
	l.Shutdown()

	require.NoError(t, l.Info("after shutdown", nil))
	l.Flush()
	assert.Len(t, srv.received(), 1)
}

func TestFromEnv(t *testing.T) {
	srv := newFakeServer(t)
	t.Setenv("LOGBULL_PROJECT_ID", uuid.NewString())
	t.Setenv("LOGBULL_HOST", srv.URL)
	t.Setenv("LOGBULL_API_KEY", "lb_env_key_0001")
	t.Setenv("LOGBULL_LOG_LEVEL", "ERROR")

	l, err := FromEnv()
	require.NoError(t, err)

	require.NoError(t, l.Warning("filtered", nil))
	require.NoError(t, l.Error("shipped", nil))
	l.Shutdown()

	got := srv.received()
	require.Len(t, got, 1)
	assert.Equal(t, "shipped", got[0].Message)
	srv.mu.Lock()
	assert.Equal(t, "lb_env_key_0001", srv.headers[0].Get("X-API-Key"))
	srv.mu.Unlock()
}

func TestFromEnv_Disabled(t *testing.T) {
	t.Setenv("LOGBULL_ENABLED", "false")

	l, err := FromEnv()
	require.NoError(t, err)

	assert.NoError(t, l.Info("goes nowhere", nil))
	assert.ErrorIs(t, l.Info("", nil), ErrInvalidInput)
	l.Flush()
	l.Shutdown()
}

func TestFromEnv_Invalid(t *testing.T) {
	t.Setenv("LOGBULL_PROJECT_ID", "bad")
	t.Setenv("LOGBULL_HOST", "http://localhost")

	_, err := FromEnv()
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, LevelWarning, lvl)

	_, err = ParseLevel("nope")
	assert.Error(t, err)
}

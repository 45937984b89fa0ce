package diagnostics

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"logbull/internal/models"
	"logbull/internal/utils"
)

func TestRecorder_OfKind(t *testing.T) {
	rec := NewRecorder()
	rec.Report(NewEvent(KindQueueFull, "a"))
	rec.Report(NewEvent(KindServerFailure, "b"))
	rec.Report(NewEvent(KindQueueFull, "c"))

	assert.Len(t, rec.Events(), 3)
	full := rec.OfKind(KindQueueFull)
	assert.Len(t, full, 2)
	assert.Equal(t, "c", full[1].Message)
	assert.Empty(t, rec.OfKind(KindShutdownTimeout))
}

func TestMulti_FansOut(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	Multi{a, nil, b, Discard{}}.Report(NewEvent(KindTransportFailure, "x"))

	assert.Len(t, a.Events(), 1)
	assert.Len(t, b.Events(), 1)
}

func TestNewEvent_UniqueIDs(t *testing.T) {
	first := NewEvent(KindQueueFull, "m")
	second := NewEvent(KindQueueFull, "m")
	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, first.Time.IsZero())
}

func TestLoggerReporter_Rejection(t *testing.T) {
	var buf bytes.Buffer
	logger := utils.NewLogger("logbull", utils.Debug)
	logger.SetOutput(&buf)

	ev := NewEvent(KindServerRejection, "Rejected 1 log entries")
	ev.Accepted = 1
	ev.BatchSize = 2
	ev.Rejected = []RejectedRecord{{
		Index:  1,
		Reason: "message too long",
		Record: models.NewLogEntry(models.LevelWarning, "second", "2024-01-01T00:00:00.000000000Z",
			map[string]any{"b": 2, "a": 1}),
	}}
	NewLoggerReporter(logger).Report(ev)

	out := buf.String()
	assert.Contains(t, out, "Rejected 1 log entries accepted=1 batch_size=2")
	assert.Contains(t, out, "Log #1 rejected (message too long):")
	assert.Contains(t, out, "level=WARNING")
	assert.Contains(t, out, "message=second")
	assert.Contains(t, out, "timestamp=2024-01-01T00:00:00.000000000Z")
	assert.Contains(t, out, "fields={a=1, b=2}")
}

func TestLoggerReporter_OmitsEmptyFields(t *testing.T) {
	var buf bytes.Buffer
	logger := utils.NewLogger("logbull", utils.Debug)
	logger.SetOutput(&buf)

	ev := NewEvent(KindServerRejection, "Rejected 1 log entries")
	ev.Rejected = []RejectedRecord{{Index: 0, Reason: "bad", Record: models.NewLogEntry(models.LevelInfo, "m", "t", nil)}}
	NewLoggerReporter(logger).Report(ev)

	assert.NotContains(t, buf.String(), "fields=")
}

func TestLoggerReporter_Failures(t *testing.T) {
	var buf bytes.Buffer
	logger := utils.NewLogger("logbull", utils.Warning)
	logger.SetOutput(&buf)
	r := NewLoggerReporter(logger)

	failure := NewEvent(KindServerFailure, "Server returned error")
	failure.Status = 500
	failure.Body = "boom"
	r.Report(failure)

	transport := NewEvent(KindTransportFailure, "Failed to send batch")
	transport.Err = "connection refused"
	r.Report(transport)

	out := buf.String()
	assert.Contains(t, out, "[ERROR] Server returned error status=500 body=boom")
	assert.Contains(t, out, "error=connection refused")
}

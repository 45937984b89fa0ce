// Package diagnostics carries the delivery engine's out-of-band signals:
// dropped records, failed or partially rejected batches, shutdown timeouts.
// None of these reach the code that produced the logs.
package diagnostics

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"logbull/internal/models"
)

// Kind classifies a diagnostic event.
type Kind string

const (
	KindQueueFull        Kind = "queue_full"
	KindTransportFailure Kind = "transport_failure"
	KindServerFailure    Kind = "server_failure"
	KindServerRejection  Kind = "server_rejection"
	KindEncodeFailure    Kind = "encode_failure"
	KindShutdownTimeout  Kind = "shutdown_timeout"
)

// RejectedRecord pairs a server rejection with the record it refers to.
type RejectedRecord struct {
	Index  int             `json:"index"`
	Reason string          `json:"reason"`
	Record models.LogEntry `json:"record"`
}

// Event is one diagnostic occurrence.
type Event struct {
	ID        string           `json:"id"`
	Kind      Kind             `json:"kind"`
	Time      time.Time        `json:"time"`
	Message   string           `json:"message"`
	Err       string           `json:"error,omitempty"`
	Status    int              `json:"status,omitempty"`
	Body      string           `json:"body,omitempty"`
	BatchSize int              `json:"batch_size,omitempty"`
	Accepted  int              `json:"accepted,omitempty"`
	Rejected  []RejectedRecord `json:"rejected,omitempty"`
}

// NewEvent stamps a fresh event with an ID and the current time.
func NewEvent(kind Kind, message string) Event {
	return Event{
		ID:      uuid.NewString(),
		Kind:    kind,
		Time:    time.Now().UTC(),
		Message: message,
	}
}

// Reporter receives diagnostic events. Report must not block for long; it is
// called from producer and delivery goroutines.
type Reporter interface {
	Report(ev Event)
}

// Multi fans an event out to several reporters.
type Multi []Reporter

func (m Multi) Report(ev Event) {
	for _, r := range m {
		if r != nil {
			r.Report(ev)
		}
	}
}

// Discard drops every event.
type Discard struct{}

func (Discard) Report(Event) {}

// Recorder keeps events in memory. Tests use it to assert on what the engine
// reported.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Report(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfKind returns the recorded events of one kind.
func (r *Recorder) OfKind(kind Kind) []Event {
	var out []Event
	for _, ev := range r.Events() {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

// Package logging defines where formatted log entries go once the facade has
// built them.
package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"logbull/internal/models"
)

// Sink receives finished log entries. Implementations must not block the
// caller of AddLog.
type Sink interface {
	AddLog(entry models.LogEntry)
	Flush()
	Shutdown()
}

// NoopSink discards everything. It backs a disabled client.
type NoopSink struct{}

func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (s *NoopSink) AddLog(models.LogEntry) {}
func (s *NoopSink) Flush()                 {}
func (s *NoopSink) Shutdown()              {}

// ConsoleSink echoes every entry to the console before handing it on.
// ERROR and CRITICAL go to stderr, everything else to stdout.
type ConsoleSink struct {
	next   Sink
	mu     sync.Mutex
	stdout io.Writer
	stderr io.Writer
}

func NewConsoleSink(next Sink) *ConsoleSink {
	return NewConsoleSinkWithWriters(next, os.Stdout, os.Stderr)
}

func NewConsoleSinkWithWriters(next Sink, stdout, stderr io.Writer) *ConsoleSink {
	if next == nil {
		next = NewNoopSink()
	}
	return &ConsoleSink{next: next, stdout: stdout, stderr: stderr}
}

func (s *ConsoleSink) AddLog(entry models.LogEntry) {
	s.write(entry)
	s.next.AddLog(entry)
}

func (s *ConsoleSink) Flush() {
	s.next.Flush()
}

func (s *ConsoleSink) Shutdown() {
	s.next.Shutdown()
}

func (s *ConsoleSink) write(entry models.LogEntry) {
	w := s.stdout
	if entry.Level == models.LevelError.String() || entry.Level == models.LevelCritical.String() {
		w = s.stderr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(w, FormatConsoleLine(entry))
}

// FormatConsoleLine renders "[ts] [LEVEL] message (k=v, ...)" with keys sorted.
func FormatConsoleLine(entry models.LogEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] %s", entry.Timestamp, entry.Level, entry.Message)

	if len(entry.Fields) > 0 {
		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, entry.Fields[k]))
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
	}
	return b.String()
}

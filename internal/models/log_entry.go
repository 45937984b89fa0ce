package models

import "maps"

// LogEntry is a single record as it travels to the ingestion endpoint.
// Entries are treated as immutable once built.
type LogEntry struct {
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Timestamp string         `json:"timestamp"`
	Fields    map[string]any `json:"fields"`
}

// NewLogEntry builds an entry, taking a private copy of fields.
func NewLogEntry(level LogLevel, message, timestamp string, fields map[string]any) LogEntry {
	copied := make(map[string]any, len(fields))
	maps.Copy(copied, fields)
	return LogEntry{
		Level:     level.String(),
		Message:   message,
		Timestamp: timestamp,
		Fields:    copied,
	}
}

// LogBatch is an ordered group of entries sent in one request.
type LogBatch struct {
	Logs []LogEntry `json:"logs"`
}

func NewLogBatch(entries []LogEntry) LogBatch {
	return LogBatch{Logs: entries}
}

func (b LogBatch) Size() int {
	return len(b.Logs)
}

// Entry returns the record at index, or false when the index is outside the batch.
func (b LogBatch) Entry(index int) (LogEntry, bool) {
	if index < 0 || index >= len(b.Logs) {
		return LogEntry{}, false
	}
	return b.Logs[index], true
}

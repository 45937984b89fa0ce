package diagnostics

import (
	"fmt"
	"sort"
	"strings"

	"logbull/internal/utils"
)

// LoggerReporter writes events through the client's own logger.
type LoggerReporter struct {
	logger *utils.Logger
}

// NewLoggerReporter uses logger, or a stderr logger prefixed "logbull" at
// Warning level when logger is nil.
func NewLoggerReporter(logger *utils.Logger) *LoggerReporter {
	if logger == nil {
		logger = utils.NewLogger("logbull", utils.Warning)
	}
	return &LoggerReporter{logger: logger}
}

func (r *LoggerReporter) Report(ev Event) {
	switch ev.Kind {
	case KindQueueFull:
		r.logger.Warn(ev.Message)
	case KindServerRejection:
		r.logger.Warn(ev.Message, "accepted", ev.Accepted, "batch_size", ev.BatchSize)
		for _, rej := range ev.Rejected {
			keyvals := []interface{}{
				"level", rej.Record.Level,
				"message", rej.Record.Message,
				"timestamp", rej.Record.Timestamp,
			}
			if len(rej.Record.Fields) > 0 {
				keyvals = append(keyvals, "fields", formatFields(rej.Record.Fields))
			}
			r.logger.Warn(fmt.Sprintf("Log #%d rejected (%s):", rej.Index, rej.Reason), keyvals...)
		}
	case KindServerFailure:
		r.logger.Error(ev.Message, "status", ev.Status, "body", ev.Body, "batch_size", ev.BatchSize)
	case KindTransportFailure, KindEncodeFailure:
		r.logger.Error(ev.Message, "error", ev.Err, "batch_size", ev.BatchSize)
	case KindShutdownTimeout:
		r.logger.Error(ev.Message)
	default:
		r.logger.Info(ev.Message, "kind", ev.Kind)
	}
}

func formatFields(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

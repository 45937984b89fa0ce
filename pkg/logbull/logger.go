// Package logbull ships structured logs to a LogBull server without blocking
// the caller.
//
//	logger, err := logbull.New(logbull.NewConfig(projectID, "https://logbull.example.com", apiKey))
//	if err != nil { ... }
//	defer logger.Shutdown()
//
//	logger.Info("user logged in", map[string]any{"user_id": 42})
package logbull

import (
	"sync"

	"logbull/internal/config"
	"logbull/internal/diagnostics"
	"logbull/internal/formatting"
	"logbull/internal/logging"
	"logbull/internal/models"
	"logbull/internal/sender"
	"logbull/internal/timestamp"
	"logbull/internal/utils"
	"logbull/internal/validation"
)

type (
	Config = models.Config
	Level  = models.LogLevel
)

const (
	LevelDebug    = models.LevelDebug
	LevelInfo     = models.LevelInfo
	LevelWarning  = models.LevelWarning
	LevelError    = models.LevelError
	LevelCritical = models.LevelCritical
)

// ErrInvalidInput is wrapped by every configuration or log input error.
var ErrInvalidInput = validation.ErrInvalidInput

// NewConfig returns a Config with the minimum level set to INFO.
func NewConfig(projectID, host, apiKey string) Config {
	return models.NewConfig(projectID, host, apiKey)
}

// ParseLevel parses DEBUG, INFO, WARNING (or WARN), ERROR or CRITICAL.
func ParseLevel(s string) (Level, error) {
	return models.ParseLogLevel(s)
}

// core is shared by a logger, its children and its handlers.
type core struct {
	cfg       models.Config
	sink      logging.Sink
	ts        *timestamp.Generator
	addSource bool

	closeOnce sync.Once
	closers   []func() error
}

func (c *core) shutdown() {
	c.closeOnce.Do(func() {
		c.sink.Shutdown()
		for _, closeFn := range c.closers {
			_ = closeFn()
		}
	})
}

// Logger is safe for concurrent use.
type Logger struct {
	core    *core
	context map[string]any
}

// New validates cfg and starts shipping. Call Shutdown before the process
// exits so queued entries are sent.
func New(cfg Config, opts ...Option) (*Logger, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	cfg = o.applyOverrides(cfg)

	s, err := sender.New(cfg, o.sender)
	if err != nil {
		return nil, err
	}

	return newLogger(cfg, s, o), nil
}

func newLogger(cfg models.Config, sink logging.Sink, o *options) *Logger {
	if o.console {
		sink = logging.NewConsoleSinkWithWriters(sink, o.stdout, o.stderr)
	}
	return &Logger{
		core: &core{
			cfg:       cfg,
			sink:      sink,
			ts:        timestamp.NewGenerator(),
			addSource: o.addSource,
		},
		context: map[string]any{},
	}
}

// FromEnv builds a Logger from LOGBULL_* environment variables.
func FromEnv(opts ...Option) (*Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return fromConfig(cfg, opts)
}

// FromFile builds a Logger from a YAML file; LOGBULL_* variables override it.
func FromFile(path string, opts ...Option) (*Logger, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return fromConfig(cfg, opts)
}

func fromConfig(c *config.Config, opts []Option) (*Logger, error) {
	mc, err := c.ModelConfig()
	if err != nil {
		return nil, err
	}

	diagLogger := utils.NewLogger("logbull", c.Diagnostics.DiagnosticsLevel())
	reporters := diagnostics.Multi{diagnostics.NewLoggerReporter(diagLogger)}

	var closers []func() error
	if c.IsEnabled() && c.Diagnostics.Redis.Enabled {
		rr, err := diagnostics.NewRedisReporter(c.Diagnostics.Redis.RedisReporterConfig())
		if err != nil {
			return nil, err
		}
		reporters = append(reporters, rr)
		closers = append(closers, rr.Close)
	}

	all := append([]Option{
		withSenderOptions(c.Sender.SenderOptions()),
		withReporter(reporters),
		WithConsole(c.Console),
	}, opts...)

	if !c.IsEnabled() {
		o := defaultOptions()
		for _, opt := range all {
			opt(o)
		}
		diagLogger.Info("log shipping disabled")
		return newLogger(o.applyOverrides(mc), logging.NewNoopSink(), o), nil
	}

	l, err := New(mc, all...)
	if err != nil {
		for _, closeFn := range closers {
			_ = closeFn()
		}
		return nil, err
	}
	l.core.closers = closers
	return l, nil
}

func (l *Logger) Debug(message string, fields map[string]any) error {
	return l.log(LevelDebug, message, fields)
}

func (l *Logger) Info(message string, fields map[string]any) error {
	return l.log(LevelInfo, message, fields)
}

func (l *Logger) Warning(message string, fields map[string]any) error {
	return l.log(LevelWarning, message, fields)
}

func (l *Logger) Error(message string, fields map[string]any) error {
	return l.log(LevelError, message, fields)
}

func (l *Logger) Critical(message string, fields map[string]any) error {
	return l.log(LevelCritical, message, fields)
}

// Log records message at level. Entries below the configured minimum level
// are ignored; an undefined level or invalid input is returned as an
// ErrInvalidInput error and nothing is queued.
func (l *Logger) Log(level Level, message string, fields map[string]any) error {
	return l.log(level, message, fields)
}

func (l *Logger) log(level Level, message string, fields map[string]any) error {
	if err := validation.ValidateLogLevel(level); err != nil {
		return err
	}
	if level < l.core.cfg.EffectiveMinLevel() {
		return nil
	}
	if err := validation.ValidateLogMessage(message); err != nil {
		return err
	}
	if err := validation.ValidateLogFields(fields); err != nil {
		return err
	}

	entry := models.NewLogEntry(
		level,
		formatting.FormatMessage(message),
		l.core.ts.Next(),
		formatting.MergeFields(l.context, fields),
	)
	l.core.sink.AddLog(entry)
	return nil
}

// WithContext returns a child logger that adds fields to every entry. Call
// fields override the context on key collisions. The child shares the
// parent's delivery engine.
func (l *Logger) WithContext(fields map[string]any) *Logger {
	return &Logger{
		core:    l.core,
		context: formatting.MergeFields(l.context, fields),
	}
}

// Flush sends queued entries now without waiting for the network.
func (l *Logger) Flush() {
	l.core.sink.Flush()
}

// Shutdown sends everything still queued and stops the logger. It is shared
// with children and handlers and safe to call more than once.
func (l *Logger) Shutdown() {
	l.core.shutdown()
}

// MinLevel is the lowest level this logger ships.
func (l *Logger) MinLevel() Level {
	return l.core.cfg.EffectiveMinLevel()
}

package logbull

import (
	"io"
	"net/http"
	"os"
	"time"

	"logbull/internal/diagnostics"
	"logbull/internal/sender"
)

// Option customizes a Logger or Handler
type Option func(*options)

type options struct {
	sender    sender.Options
	console   bool
	stdout    io.Writer
	stderr    io.Writer
	addSource bool

	apiKey   *string
	minLevel *Level
}

func defaultOptions() *options {
	return &options{
		sender: sender.DefaultOptions(),
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// WithConsole echoes every shipped entry to stdout (ERROR and CRITICAL to stderr).
func WithConsole(enabled bool) Option {
	return func(o *options) { o.console = enabled }
}

// WithConsoleWriters echoes entries to the given writers instead of the
// process streams.
func WithConsoleWriters(stdout, stderr io.Writer) Option {
	return func(o *options) {
		o.console = true
		o.stdout = stdout
		o.stderr = stderr
	}
}

func WithBatchSize(n int) Option {
	return func(o *options) { o.sender.BatchSize = n }
}

func WithBatchInterval(d time.Duration) Option {
	return func(o *options) { o.sender.BatchInterval = d }
}

func WithQueueCapacity(n int) Option {
	return func(o *options) { o.sender.QueueCapacity = n }
}

func WithMaxWorkers(n int) Option {
	return func(o *options) { o.sender.MaxWorkers = n }
}

func WithHTTPTimeout(d time.Duration) Option {
	return func(o *options) { o.sender.HTTPTimeout = d }
}

func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) { o.sender.ShutdownTimeout = d }
}

// WithHTTPClient replaces the HTTP client used for delivery
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.sender.HTTPClient = client
		}
	}
}

// WithSource adds a "source" field (file:line) to entries coming through the
// slog Handler.
func WithSource(enabled bool) Option {
	return func(o *options) { o.addSource = enabled }
}

// WithAPIKey overrides the API key of the Config, including one loaded by
// FromEnv or FromFile.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = &key }
}

// WithMinLevel overrides the minimum level of the Config, including one
// loaded by FromEnv or FromFile.
func WithMinLevel(level Level) Option {
	return func(o *options) { o.minLevel = &level }
}

func (o *options) applyOverrides(cfg Config) Config {
	if o.apiKey != nil {
		cfg.APIKey = *o.apiKey
	}
	if o.minLevel != nil {
		cfg.MinLevel = *o.minLevel
	}
	return cfg
}

func withSenderOptions(so sender.Options) Option {
	return func(o *options) {
		reporter, client := o.sender.Reporter, o.sender.HTTPClient
		o.sender = so
		if o.sender.Reporter == nil {
			o.sender.Reporter = reporter
		}
		if o.sender.HTTPClient == nil {
			o.sender.HTTPClient = client
		}
	}
}

func withReporter(r diagnostics.Reporter) Option {
	return func(o *options) { o.sender.Reporter = r }
}

package sender

import (
	"net/http"
	"time"

	"logbull/internal/diagnostics"
)

const (
	DefaultBatchSize       = 1_000
	DefaultBatchInterval   = 1_000 * time.Millisecond
	DefaultQueueCapacity   = 10_000
	DefaultMinWorkers      = 1
	DefaultMaxWorkers      = 10
	DefaultHTTPTimeout     = 30_000 * time.Millisecond
	DefaultShutdownTimeout = 10 * time.Second

	UserAgent = "LogBull-Go-Client/1.0"
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options tune the engine. Zero values fall back to the defaults above.
type Options struct {
	// BatchSize is the maximum number of records per request
	BatchSize int

	// BatchInterval is how often the queue is cut into a batch
	BatchInterval time.Duration

	// QueueCapacity bounds the number of records waiting for delivery
	QueueCapacity int

	// MinWorkers is the starting value of the advisory permit counter
	MinWorkers int

	// MaxWorkers caps concurrent deliveries and the permit counter
	MaxWorkers int

	// HTTPTimeout bounds the connect phase and the read phase separately
	HTTPTimeout time.Duration

	// ShutdownTimeout bounds how long Shutdown waits for in-flight deliveries
	ShutdownTimeout time.Duration

	// HTTPClient replaces the default client, mostly for tests
	HTTPClient Doer

	// Reporter receives diagnostics; defaults to a stderr logger
	Reporter diagnostics.Reporter
}

// DefaultOptions returns the engine defaults
func DefaultOptions() Options {
	return Options{
		BatchSize:       DefaultBatchSize,
		BatchInterval:   DefaultBatchInterval,
		QueueCapacity:   DefaultQueueCapacity,
		MinWorkers:      DefaultMinWorkers,
		MaxWorkers:      DefaultMaxWorkers,
		HTTPTimeout:     DefaultHTTPTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.BatchSize <= 0 {
		o.BatchSize = d.BatchSize
	}
	if o.BatchInterval <= 0 {
		o.BatchInterval = d.BatchInterval
	}
	if o.QueueCapacity <= 0 {
		o.QueueCapacity = d.QueueCapacity
	}
	if o.MaxWorkers <= 0 {
		o.MaxWorkers = d.MaxWorkers
	}
	if o.MinWorkers <= 0 {
		o.MinWorkers = d.MinWorkers
	}
	if o.MinWorkers > o.MaxWorkers {
		o.MinWorkers = o.MaxWorkers
	}
	if o.HTTPTimeout <= 0 {
		o.HTTPTimeout = d.HTTPTimeout
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = d.ShutdownTimeout
	}
	if o.Reporter == nil {
		o.Reporter = diagnostics.NewLoggerReporter(nil)
	}
	return o
}

package diagnostics

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the Redis event sink.
type RedisConfig struct {
	Address      string
	Password     string
	DB           int
	Key          string
	MaxLen       int64
	BufferSize   int
	WriteTimeout time.Duration
}

// DefaultRedisConfig returns defaults for a local Redis.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Address:      "localhost:6379",
		Key:          "logbull:diagnostics",
		MaxLen:       1000,
		BufferSize:   256,
		WriteTimeout: 2 * time.Second,
	}
}

// RedisReporter appends events as JSON to a capped Redis list so that several
// processes can be watched from one place. Reporting never blocks: events are
// buffered and written by a background goroutine, and dropped when the buffer
// is full.
type RedisReporter struct {
	client    *redis.Client
	ownClient bool
	cfg       RedisConfig
	events    chan Event
	mu        sync.RWMutex
	closed    bool
	done      chan struct{}
	dropped   atomic.Int64
	failed    atomic.Int64
}

// NewRedisReporter connects to Redis using cfg and verifies the connection.
func NewRedisReporter(cfg RedisConfig) (*RedisReporter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	r := NewRedisReporterWithClient(client, cfg)
	r.ownClient = true
	return r, nil
}

// NewRedisReporterWithClient reuses an existing client. The caller keeps
// ownership of it.
func NewRedisReporterWithClient(client *redis.Client, cfg RedisConfig) *RedisReporter {
	defaults := DefaultRedisConfig()
	if cfg.Key == "" {
		cfg.Key = defaults.Key
	}
	if cfg.MaxLen <= 0 {
		cfg.MaxLen = defaults.MaxLen
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaults.BufferSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}

	r := &RedisReporter{
		client: client,
		cfg:    cfg,
		events: make(chan Event, cfg.BufferSize),
		done:   make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *RedisReporter) Report(ev Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return
	}

	select {
	case r.events <- ev:
	default:
		r.dropped.Add(1)
	}
}

// Dropped is the number of events lost to a full buffer.
func (r *RedisReporter) Dropped() int64 {
	return r.dropped.Load()
}

// Failed is the number of events Redis refused or never acknowledged.
func (r *RedisReporter) Failed() int64 {
	return r.failed.Load()
}

// Close writes the buffered events and stops the reporter.
func (r *RedisReporter) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.events)
	r.mu.Unlock()

	<-r.done

	if r.ownClient {
		return r.client.Close()
	}
	return nil
}

func (r *RedisReporter) run() {
	defer close(r.done)
	for ev := range r.events {
		if err := r.write(ev); err != nil {
			r.failed.Add(1)
		}
	}
}

func (r *RedisReporter) write(ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.WriteTimeout)
	defer cancel()

	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, r.cfg.Key, data)
	pipe.LTrim(ctx, r.cfg.Key, -r.cfg.MaxLen, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push event: %w", err)
	}
	return nil
}

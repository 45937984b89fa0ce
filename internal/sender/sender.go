// Package sender is the asynchronous delivery engine. Producers hand it
// finished log entries; a ticker cuts them into batches that are POSTed to
// the ingestion endpoint by a bounded set of delivery goroutines.
//
//	AddLog ─▶ bounded queue ─▶ cut (ticker / Flush) ─▶ delivery pool ─▶ HTTP
//	                                                        │
//	                                           diagnostics ◀┘
//
// Nothing that happens after AddLog returns is reported back to producers.
package sender

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"logbull/internal/diagnostics"
	"logbull/internal/models"
	"logbull/internal/queue"
	"logbull/internal/validation"
)

type state int32

const (
	stateRunning state = iota + 1
	stateDraining
	stateStopped
)

func (s state) String() string {
	switch s {
	case stateRunning:
		return "running"
	case stateDraining:
		return "draining"
	case stateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Stats is a point-in-time snapshot of engine counters.
type Stats struct {
	Enqueued    int64
	Dropped     int64
	BatchesSent int64
	Delivered   int64
	Failed      int64
	Rejected    int64
	QueueLength int
	Pending     int
	Permits     int
	State       string
}

// Sender owns one queue, one ticker goroutine and its delivery goroutines.
// Several senders can coexist in a process.
type Sender struct {
	cfg      models.Config
	opts     Options
	endpoint string
	client   Doer
	reporter diagnostics.Reporter

	queue   *queue.MemoryQueue[models.LogEntry]
	permits *permits
	slots   chan struct{}

	// pending counts cut batches not yet finished, including those waiting
	// for a slot. Timer and Flush cuts stop at maxPending.
	pending    atomic.Int32
	maxPending int

	// stateMu is held for reading while enqueueing and for writing while
	// leaving Running, so no record can slip in after the state flips.
	stateMu sync.RWMutex
	state   atomic.Int32

	// submitMu orders batch cuts and guards sealed; once sealed no more
	// deliveries are added to inflight.
	submitMu sync.Mutex
	sealed   bool
	inflight sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	stopChan    chan struct{}
	stoppedChan chan struct{}

	enqueued    atomic.Int64
	dropped     atomic.Int64
	batchesSent atomic.Int64
	delivered   atomic.Int64
	failed      atomic.Int64
	rejected    atomic.Int64
}

// New validates cfg and starts the batch timer. The returned error wraps
// validation.ErrInvalidInput.
func New(cfg models.Config, opts Options) (*Sender, error) {
	if err := validation.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	opts = opts.withDefaults()

	client := opts.HTTPClient
	if client == nil {
		client = newHTTPClient(opts.HTTPTimeout, opts.MaxWorkers)
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Sender{
		cfg:      cfg,
		opts:     opts,
		endpoint: endpointURL(cfg.Host, cfg.ProjectID),
		client:   client,
		reporter: opts.Reporter,
		queue: queue.NewMemoryQueue[models.LogEntry](&queue.Config{
			Capacity:  opts.QueueCapacity,
			QueueName: "logbull",
		}),
		permits:     newPermits(opts.MinWorkers, opts.MaxWorkers),
		slots:       make(chan struct{}, opts.MaxWorkers),
		maxPending:  2 * opts.MaxWorkers,
		ctx:         ctx,
		cancel:      cancel,
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}
	s.state.Store(int32(stateRunning))

	go s.run()
	return s, nil
}

// AddLog enqueues entry without blocking. When the queue is full the entry
// is dropped and a QueueFull diagnostic is reported. After Shutdown has
// begun AddLog does nothing.
func (s *Sender) AddLog(entry models.LogEntry) {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	if state(s.state.Load()) != stateRunning {
		return
	}

	if err := s.queue.Offer(entry); err != nil {
		s.dropped.Add(1)
		ev := diagnostics.NewEvent(diagnostics.KindQueueFull, "Log queue is full, dropping log entry")
		ev.Err = err.Error()
		s.reporter.Report(ev)
		return
	}
	s.enqueued.Add(1)
}

// Flush cuts one batch immediately. Delivery still happens in the
// background.
func (s *Sender) Flush() {
	if state(s.state.Load()) != stateRunning {
		return
	}
	s.cutBatch()
}

// Shutdown stops accepting records, sends everything still queued and waits
// up to ShutdownTimeout for deliveries to finish. Safe to call more than once.
func (s *Sender) Shutdown() {
	s.stateMu.Lock()
	if state(s.state.Load()) != stateRunning {
		s.stateMu.Unlock()
		return
	}
	s.state.Store(int32(stateDraining))
	s.stateMu.Unlock()

	close(s.stopChan)
	<-s.stoppedChan

	s.submitMu.Lock()
	for s.cutLocked(true) {
	}
	s.sealed = true
	s.submitMu.Unlock()
	s.queue.Close()

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	timer := time.NewTimer(s.opts.ShutdownTimeout)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		s.reporter.Report(diagnostics.NewEvent(diagnostics.KindShutdownTimeout,
			fmt.Sprintf("Timed out after %s waiting for log deliveries, abandoning them", s.opts.ShutdownTimeout)))
	}

	s.cancel()
	s.state.Store(int32(stateStopped))
}

// Stats returns a snapshot of the engine counters.
func (s *Sender) Stats() Stats {
	return Stats{
		Enqueued:    s.enqueued.Load(),
		Dropped:     s.dropped.Load(),
		BatchesSent: s.batchesSent.Load(),
		Delivered:   s.delivered.Load(),
		Failed:      s.failed.Load(),
		Rejected:    s.rejected.Load(),
		QueueLength: s.queue.Length(),
		Pending:     int(s.pending.Load()),
		Permits:     s.permits.value(),
		State:       state(s.state.Load()).String(),
	}
}

func (s *Sender) run() {
	defer close(s.stoppedChan)

	ticker := time.NewTicker(s.opts.BatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cutBatch()
		}
	}
}

func (s *Sender) cutBatch() bool {
	s.submitMu.Lock()
	defer s.submitMu.Unlock()
	return s.cutLocked(false)
}

// cutLocked takes up to BatchSize records from the head of the queue and
// submits them. It reports whether a batch was cut. Unless force is set,
// nothing is cut while maxPending batches are outstanding, so records wait
// in the bounded queue instead. submitMu must be held.
func (s *Sender) cutLocked(force bool) bool {
	if s.sealed {
		return false
	}
	if !force && int(s.pending.Load()) >= s.maxPending {
		return false
	}

	entries := s.queue.Drain(s.opts.BatchSize)
	if len(entries) == 0 {
		return false
	}

	s.submit(models.NewLogBatch(entries))
	return true
}

func (s *Sender) submit(batch models.LogBatch) {
	s.inflight.Add(1)
	s.pending.Add(1)
	acquired := s.permits.tryAcquire()

	go func() {
		defer s.inflight.Done()
		defer s.pending.Add(-1)
		if acquired {
			defer s.permits.release()
		}

		select {
		case s.slots <- struct{}{}:
		case <-s.ctx.Done():
			s.failed.Add(int64(batch.Size()))
			return
		}
		defer func() { <-s.slots }()

		s.deliver(batch)
	}()
}

func (s *Sender) deliver(batch models.LogBatch) {
	body, err := encodeBatch(batch)
	if err != nil {
		s.failed.Add(int64(batch.Size()))
		ev := diagnostics.NewEvent(diagnostics.KindEncodeFailure, "Failed to encode log batch")
		ev.Err = err.Error()
		ev.BatchSize = batch.Size()
		s.reporter.Report(ev)
		return
	}

	s.batchesSent.Add(1)

	res, err := s.post(s.ctx, body)
	if err != nil {
		s.failed.Add(int64(batch.Size()))
		ev := diagnostics.NewEvent(diagnostics.KindTransportFailure, "Failed to send log batch")
		ev.Err = err.Error()
		ev.BatchSize = batch.Size()
		s.reporter.Report(ev)
		return
	}

	if !isSuccess(res.status) {
		s.failed.Add(int64(batch.Size()))
		ev := diagnostics.NewEvent(diagnostics.KindServerFailure,
			fmt.Sprintf("Server returned error: %d", res.status))
		ev.Status = res.status
		ev.Body = string(res.body)
		ev.BatchSize = batch.Size()
		s.reporter.Report(ev)
		return
	}

	resp, err := parseResponse(res.body)
	if err != nil {
		// delivered, but the server's accounting is unknown
		s.delivered.Add(int64(batch.Size()))
		return
	}

	if !resp.HasRejections() {
		s.delivered.Add(int64(batch.Size()))
		return
	}

	s.handleRejections(batch, resp)
}

// handleRejections matches each rejection index to the record that was sent
// and reports them together. Indexes outside the batch are ignored.
func (s *Sender) handleRejections(batch models.LogBatch, resp *models.DeliveryResponse) {
	rejected := resp.Rejected
	if rejected <= 0 {
		rejected = len(resp.Errors)
	}
	if rejected > batch.Size() {
		rejected = batch.Size()
	}
	s.rejected.Add(int64(rejected))
	s.delivered.Add(int64(batch.Size() - rejected))

	ev := diagnostics.NewEvent(diagnostics.KindServerRejection,
		fmt.Sprintf("Rejected %d log entries", rejected))
	ev.Accepted = resp.Accepted
	ev.BatchSize = batch.Size()
	if resp.Message != "" {
		ev.Body = resp.Message
	}

	for _, e := range resp.Errors {
		record, ok := batch.Entry(e.Index)
		if !ok {
			continue
		}
		ev.Rejected = append(ev.Rejected, diagnostics.RejectedRecord{
			Index:  e.Index,
			Reason: e.Message,
			Record: record,
		})
	}

	s.reporter.Report(ev)
}

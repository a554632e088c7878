// Package imagestore persists finished paintings on a background worker so
// encoding and disk I/O never hold up frame processing.
package imagestore

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-virtualpainting/internal/log"
)

// Sink is notified on the worker goroutine after every job, failed or not.
type Sink interface {
	Name() string
	Handle(ctx context.Context, r Result) error
}

// Stats are cumulative counters.
type Stats struct {
	Queued  uint64 `json:"queued"`
	Pending int    `json:"pending"`
	Saved   uint64 `json:"saved"`
	Failed  uint64 `json:"failed"`
	Last    string `json:"last,omitempty"`
}

// DefaultSinkTimeout bounds each sink call.
const DefaultSinkTimeout = 60 * time.Second

// Store is a single-worker FIFO of save jobs. The queue is unbounded, so
// Save never blocks.
type Store struct {
	sinks       []Sink
	sinkTimeout time.Duration
	now         func() time.Time

	mu      sync.Mutex
	queue   []Job
	closed  bool
	last    string
	wake    chan struct{}
	drained chan struct{}

	queued atomic.Uint64
	saved  atomic.Uint64
	failed atomic.Uint64
}

// Option configures a Store.
type Option func(*Store)

// WithSinks adds post-save sinks.
func WithSinks(sinks ...Sink) Option {
	return func(s *Store) { s.sinks = append(s.sinks, sinks...) }
}

// WithClock overrides the clock that stamps jobs saved without a request time.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithSinkTimeout overrides DefaultSinkTimeout. Zero or less disables it.
func WithSinkTimeout(d time.Duration) Option {
	return func(s *Store) { s.sinkTimeout = d }
}

// New creates a store. Call Run to start the worker.
func New(opts ...Option) *Store {
	s := &Store{
		sinkTimeout: DefaultSinkTimeout,
		now:         time.Now,
		wake:        make(chan struct{}, 1),
		drained:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save queues a job and returns immediately.
func (s *Store) Save(job Job) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	if job.Requested.IsZero() {
		job.Requested = s.now()
	}
	if job.ID.IsZero() {
		job.ID = NewJobID(job.Requested)
	}
	s.queue = append(s.queue, job)
	s.mu.Unlock()

	s.queued.Add(1)
	s.signal()
	log.Debug("save queued", "job", job.ID.String(), "session", job.SessionID)
	return nil
}

func (s *Store) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Close stops accepting jobs. Run finishes the queue and returns.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.signal()
}

// Drained is closed when Run returns.
func (s *Store) Drained() <-chan struct{} {
	return s.drained
}

// Run processes jobs until the store is closed and empty, or ctx is done.
// A job in progress is always finished.
func (s *Store) Run(ctx context.Context) {
	defer close(s.drained)
	log.Info("image store worker started", "sinks", len(s.sinks))

	for {
		job, ok, closed := s.next()
		if ok {
			s.process(ctx, job)
			continue
		}
		if closed {
			log.Info("image store worker stopped", "saved", s.saved.Load(), "failed", s.failed.Load())
			return
		}

		select {
		case <-ctx.Done():
			s.mu.Lock()
			left := len(s.queue)
			s.mu.Unlock()
			log.Warn("image store worker cancelled", "pending", left)
			return
		case <-s.wake:
		}
	}
}

func (s *Store) next() (Job, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return Job{}, false, s.closed
	}
	job := s.queue[0]
	s.queue[0] = Job{}
	s.queue = s.queue[1:]
	return job, true, s.closed
}

func (s *Store) process(ctx context.Context, job Job) {
	start := time.Now()
	res := s.write(job)
	res.Duration = time.Since(start)

	if res.Err != nil {
		s.failed.Add(1)
		log.Error("save failed", "job", job.ID.String(), "error", res.Err)
	} else {
		s.saved.Add(1)
		s.mu.Lock()
		s.last = res.Primary()
		s.mu.Unlock()
		log.Info("painting saved", "job", job.ID.String(), "name", res.Name, "files", len(res.Files), "took", res.Duration)
	}

	for _, sink := range s.sinks {
		if err := s.notify(ctx, sink, res); err != nil {
			log.Warn("save sink failed", "sink", sink.Name(), "job", job.ID.String(), "error", err)
		}
	}
}

func (s *Store) notify(ctx context.Context, sink Sink, res Result) error {
	if s.sinkTimeout <= 0 {
		return sink.Handle(ctx, res)
	}
	ctx, cancel := context.WithTimeout(ctx, s.sinkTimeout)
	defer cancel()
	return sink.Handle(ctx, res)
}

// Stats returns the counters
func (s *Store) Stats() Stats {
	s.mu.Lock()
	pending, last := len(s.queue), s.last
	s.mu.Unlock()
	return Stats{
		Queued:  s.queued.Load(),
		Pending: pending,
		Saved:   s.saved.Load(),
		Failed:  s.failed.Load(),
		Last:    last,
	}
}

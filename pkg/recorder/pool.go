// Package recorder provides an asynchronous worker pool for persisting chat
// transcripts using the provided storage.Driver.
//
// The pool keeps storage writes off the path that renders a streaming reply,
// so a slow disk never stalls the terminal.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/scentshop/perfumery/pkg/storage"
)

var (
	// One worker keeps the turns of a session in the order they were queued.
	defaultNumWorkers   uint = 1
	defaultJobQueueSize uint = 64
)

// Job is a unit of work for the pool: an optional session to create and the
// turns to append to it, in order.
type Job struct {
	// Session is created before the turns are stored. Creating an existing
	// session is a no-op, so it is safe to send on every job.
	Session *storage.Session

	Turns []*storage.Turn
}

func (j Job) sessionID() string {
	if j.Session != nil {
		return j.Session.ID
	}
	if len(j.Turns) > 0 {
		return j.Turns[0].SessionID
	}
	return ""
}

// Config is the configuration options for the pool.
type Config struct {
	// Driver is the storage backend for persisting transcripts.
	Driver storage.Driver

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 64).
	QueueSize uint

	Logger *slog.Logger
}

// Pool processes storage jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger

	// mu guards closed so Enqueue never sends on a closed queue.
	mu     sync.RWMutex
	closed bool
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Driver == nil {
		return nil, errors.New("recorder: storage driver is required")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the pool.
// Returns true if enqueued, false if the queue is full or the pool is
// closed, resulting in the job being dropped.
func (p *Pool) Enqueue(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.logger.Warn("job not queued, recorder closed", "session", job.sessionID())
		return false
	}

	select {
	case p.queue <- job:
		p.logger.Debug("job queued",
			"session", job.sessionID(),
			"turns", len(job.Turns),
		)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			"session", job.sessionID(),
			"turns", len(job.Turns),
		)
		return false
	}
}

// Close signals workers to stop and waits for queued jobs to drain. It is
// safe to call more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("recorder worker stopped", "worker_id", id)
}

// processJob stores the job's session and turns. A failed turn stops the
// job so later turns are not stored out of order.
func (p *Pool) processJob(job Job) {
	ctx := context.Background()

	if job.Session != nil {
		if err := p.config.Driver.CreateSession(ctx, job.Session); err != nil {
			p.logger.Error("storing session failed",
				"session", job.Session.ID,
				"error", err,
			)
			return
		}
	}

	for _, turn := range job.Turns {
		if err := p.config.Driver.AppendTurn(ctx, turn); err != nil {
			p.logger.Error("storing turn failed",
				"session", turn.SessionID,
				"turn", turn.ID,
				"error", err,
			)
			return
		}

		p.logger.Debug("stored turn",
			"session", turn.SessionID,
			"role", turn.Role,
			"cancelled", turn.Cancelled,
		)
	}
}

// Package importer bulk-loads text files as notes. A bounded worker pool
// drains a job queue and runs each job through the notebook's ingestion flow,
// so large imports never hold more than QueueSize files in memory.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/papercomputeco/ragnotes/pkg/logger"
	"github.com/papercomputeco/ragnotes/pkg/rag"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
)

// NoteAdder ingests a single note. *rag.Notebook satisfies it.
type NoteAdder interface {
	AddNote(ctx context.Context, text string) (*rag.AddNoteResult, error)
}

// Job is a unit of work for the worker pool.
type Job struct {
	// Source names where the text came from, usually a file path.
	Source string

	Text string
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Notes ingests each job's text.
	Notes NoteAdder

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	Logger *slog.Logger
}

// Stats counts finished jobs.
type Stats struct {
	Imported int64 `json:"imported"`
	Failed   int64 `json:"failed"`
}

// Pool processes import jobs asynchronously.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger

	imported atomic.Int64
	failed   atomic.Int64
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Notes == nil {
		return nil, fmt.Errorf("importer requires a note adder")
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

	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job without blocking.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		p.logger.Debug("job queued", "source", job.Source)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped", "source", job.Source)
		return false
	}
}

// Submit blocks until the job is queued or ctx is done.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	select {
	case p.queue <- job:
		p.logger.Debug("job queued", "source", job.Source)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// No job may be enqueued after Close.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// Stats returns counts of finished jobs so far.
func (p *Pool) Stats() Stats {
	return Stats{
		Imported: p.imported.Load(),
		Failed:   p.failed.Load(),
	}
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("import worker stopped", "worker_id", id)
}

func (p *Pool) processJob(job Job) {
	result, err := p.config.Notes.AddNote(context.Background(), job.Text)
	if err != nil {
		p.failed.Add(1)
		p.logger.Error("import failed",
			"source", job.Source,
			logger.Err(err),
		)
		return
	}

	p.imported.Add(1)
	p.logger.Info("note imported",
		"source", job.Source,
		logger.NoteID(result.ID),
	)
}

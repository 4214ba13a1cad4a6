package planner

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// jobTimeout bounds a single persistence call.
const jobTimeout = 10 * time.Second

type job struct {
	op  string
	id  string
	run func(ctx context.Context) error
}

// persistQueue runs repository writes in FIFO order on one goroutine so the
// in-memory state never waits on storage. Failed writes are logged and
// counted; nothing is rolled back.
type persistQueue struct {
	jobs     chan job
	pending  sync.WaitGroup
	done     chan struct{}
	logger   *log.Logger
	failures atomic.Int64
	stopOnce sync.Once
}

func newPersistQueue(logger *log.Logger, size int) *persistQueue {
	q := &persistQueue{
		jobs:   make(chan job, size),
		done:   make(chan struct{}),
		logger: logger,
	}
	go q.worker()
	return q
}

func (q *persistQueue) submit(op, id string, run func(ctx context.Context) error) {
	q.pending.Add(1)
	q.jobs <- job{op: op, id: id, run: run}
}

func (q *persistQueue) worker() {
	defer close(q.done)
	for j := range q.jobs {
		q.process(j)
	}
}

func (q *persistQueue) process(j job) {
	defer q.pending.Done()

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := j.run(ctx); err != nil {
		q.failures.Add(1)
		q.logger.Error("persist failed", "op", j.op, "id", j.id, "err", err)
		return
	}
	q.logger.Debug("persisted", "op", j.op, "id", j.id, "duration", time.Since(start))
}

// flush waits until every submitted job has run.
func (q *persistQueue) flush() {
	q.pending.Wait()
}

// stop drains the queue and stops the worker.
func (q *persistQueue) stop() {
	q.stopOnce.Do(func() {
		close(q.jobs)
		<-q.done
	})
}

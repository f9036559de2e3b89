// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"apivro/internal/domain/ports/adapter"
	"apivro/internal/infra/metrics"
)

var _ adapter.TaskRunner = (*Pool)(nil)

// A small worker pool for best-effort side effects (last_used_at, lifetime
// counters, invoice and email follow-ups). Tasks never report back to the caller.

type Task func(ctx context.Context) error

type job struct {
	name string
	fn   Task
}

type Pool struct {
	wg      sync.WaitGroup
	jobs    chan job
	quit    chan struct{}
	n       int
	timeout time.Duration
	log     *zerolog.Logger
}

func NewPool(workers, queue int, taskTimeout time.Duration, logger *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if queue <= 0 {
		queue = workers * 4
	}
	if taskTimeout <= 0 {
		taskTimeout = 30 * time.Second
	}
	l := logger.With().Str("component", "worker_pool").Logger()
	return &Pool{
		jobs:    make(chan job, queue),
		quit:    make(chan struct{}),
		n:       workers,
		timeout: taskTimeout,
		log:     &l,
	}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-p.quit:
					p.drain(ctx, id)
					return
				case j := <-p.jobs:
					p.run(ctx, id, j)
				}
			}
		}(i)
	}
}

// drain runs what is already queued so shutdown does not lose accepted work.
func (p *Pool) drain(ctx context.Context, id int) {
	for {
		select {
		case j := <-p.jobs:
			p.run(ctx, id, j)
		default:
			return
		}
	}
}

func (p *Pool) run(parent context.Context, id int, j job) {
	if j.fn == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), p.timeout)
	defer cancel()
	defer func() {
		if rec := recover(); rec != nil {
			p.log.Error().Int("worker", id).Str("task", j.name).Interface("panic", rec).Msg("task panicked")
			metrics.IncBackgroundTask(j.name, "failed")
		}
	}()
	if err := j.fn(ctx); err != nil {
		p.log.Warn().Err(err).Int("worker", id).Str("task", j.name).Msg("task failed")
		metrics.IncBackgroundTask(j.name, "failed")
		return
	}
	metrics.IncBackgroundTask(j.name, "completed")
}

func (p *Pool) Stop() {
	close(p.quit)
	p.wg.Wait()
}

// Submit enqueues a task. When the queue is saturated the task is dropped.
func (p *Pool) Submit(name string, task func(ctx context.Context) error) bool {
	if task == nil {
		return false
	}
	select {
	case p.jobs <- job{name: name, fn: task}:
		return true
	default:
		p.log.Warn().Str("task", name).Msg("worker queue full, task dropped")
		metrics.IncBackgroundTask(name, "dropped")
		return false
	}
}

// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

var (
	ErrQueueFull   = errors.New("worker queue full")
	ErrPoolStopped = errors.New("worker pool stopped")
)

// Task is one unit of work, such as the dispatch of a single webhook update.
type Task func(ctx context.Context) error

// Pool runs submitted tasks on a fixed number of goroutines. A failing or
// panicking task is logged and never affects other tasks.
type Pool struct {
	wg   sync.WaitGroup
	mu   sync.RWMutex
	jobs chan Task
	n    int
	stop bool
	log  *zerolog.Logger
}

func NewPool(workers int, logger *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	poolLog := logger.With().Str("component", "WorkerPool").Logger()
	return &Pool{jobs: make(chan Task, workers*4), n: workers, log: &poolLog}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for task := range p.jobs {
				if err := p.run(ctx, task); err != nil {
					p.log.Error().Err(err).Int("worker", id).Msg("task error")
				}
			}
		}(i)
	}
}

func (p *Pool) run(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panic: %v", r)
		}
	}()
	return task(ctx)
}

// Stop rejects new tasks, lets the workers drain the queue and waits for them.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stop {
		p.mu.Unlock()
		return
	}
	p.stop = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}

// Submit enqueues task without blocking.
func (p *Pool) Submit(task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stop {
		return ErrPoolStopped
	}
	select {
	case p.jobs <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

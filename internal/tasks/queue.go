// Package tasks provides the async task-queue abstraction the notification
// pipeline runs on. The contract for consumers is at-least-once execution,
// so every handler must be idempotent.
package tasks

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Handler executes one task invocation.
type Handler func(ctx context.Context, args []string) error

// Enqueuer schedules a task for asynchronous execution, fire-and-forget.
type Enqueuer interface {
	Enqueue(task string, args ...string)
}

type job struct {
	id      string
	task    string
	args    []string
	attempt int
}

// Pool is an in-process Enqueuer backed by a worker pool. Jobs that fail
// are re-enqueued up to maxAttempts times.
type Pool struct {
	mu       sync.RWMutex
	handlers map[string]Handler

	jobs        chan job
	workers     int
	maxAttempts int
	wg          sync.WaitGroup
}

// NewPool creates a pool with the given number of workers
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		handlers:    make(map[string]Handler),
		jobs:        make(chan job, 256),
		workers:     workers,
		maxAttempts: 3,
	}
}

// Handle registers the handler for a task name. Must be called before
// Start; registering twice for the same name is a programming error.
func (p *Pool) Handle(task string, h Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, dup := p.handlers[task]; dup {
		log.Fatalf("task handler for %q registered twice", task)
	}
	p.handlers[task] = h
}

// Enqueue schedules a task invocation
func (p *Pool) Enqueue(task string, args ...string) {
	p.mu.RLock()
	_, known := p.handlers[task]
	p.mu.RUnlock()
	if !known {
		log.Printf("dropping task %q: no handler registered", task)
		return
	}
	p.jobs <- job{id: uuid.NewString(), task: task, args: args, attempt: 1}
}

// Start launches the workers. They run until ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work(ctx)
	}
}

// Wait blocks until all workers have exited
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) work(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-p.jobs:
			p.run(ctx, j)
		}
	}
}

func (p *Pool) run(ctx context.Context, j job) {
	p.mu.RLock()
	h := p.handlers[j.task]
	p.mu.RUnlock()

	if err := h(ctx, j.args); err != nil {
		if j.attempt < p.maxAttempts {
			log.Printf("task %s %q attempt %d failed, retrying: %v", j.id, j.task, j.attempt, err)
			j.attempt++
			select {
			case p.jobs <- j:
			case <-ctx.Done():
			}
			return
		}
		log.Printf("task %s %q gave up after %d attempts: %v", j.id, j.task, j.attempt, err)
	}
}

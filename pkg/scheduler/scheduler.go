package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kubev2v/taskrunner/pkg/errors"
)

type queue[T comparable] []T

func (q *queue[T]) Len() int { return len(*q) }

func (q *queue[T]) Pop() T {
	old := *q
	x := old[0]
	var zero T
	old[0] = zero
	*q = old[1:]
	return x
}

func (q *queue[T]) Push(t T) {
	*q = append(*q, t)
}

// Remove deletes the first occurrence of t and reports whether it was found.
func (q *queue[T]) Remove(t T) bool {
	for i, x := range *q {
		if x == t {
			*q = append((*q)[:i], (*q)[i+1:]...)
			return true
		}
	}
	return false
}

func (q *queue[T]) Drain() []T {
	items := *q
	*q = nil
	return items
}

type submitOptions struct {
	first bool
}

type SubmitOption func(*submitOptions)

// WithFirst places the task ahead of every task submitted without it.
func WithFirst() SubmitOption {
	return func(o *submitOptions) {
		o.first = true
	}
}

// Scheduler is a fixed-size pool of workers pulling tasks from a shared queue.
type Scheduler struct {
	name       string
	front      *queue[*Task]
	back       *queue[*Task]
	running    map[*Task]struct{}
	closing    bool
	mu         sync.Mutex
	cond       *sync.Cond
	workers    []chan struct{}
	mainCtx    context.Context
	mainCancel context.CancelFunc
	once       sync.Once
	log        *zap.SugaredLogger
}

func NewScheduler(nbWorkers int, name string) *Scheduler {
	if nbWorkers < 1 {
		nbWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		name:       name,
		front:      &queue[*Task]{},
		back:       &queue[*Task]{},
		running:    make(map[*Task]struct{}),
		workers:    make([]chan struct{}, 0, nbWorkers),
		mainCtx:    ctx,
		mainCancel: cancel,
		log:        zap.S().Named("scheduler").With("pool", name),
	}
	s.cond = sync.NewCond(&s.mu)

	for i := range nbWorkers {
		done := make(chan struct{})
		s.workers = append(s.workers, done)
		go s.run(fmt.Sprintf("%s-%d", name, i), done)
	}
	s.log.Debugw("scheduler started", "workers", nbWorkers)
	return s
}

func (s *Scheduler) Name() string {
	return s.name
}

func (s *Scheduler) Size() int {
	return len(s.workers)
}

// Submit queues t. The task must not have been queued before.
func (s *Scheduler) Submit(t *Task, opts ...SubmitOption) (*Task, error) {
	var o submitOptions
	for _, opt := range opts {
		opt(&o)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing {
		return t, errors.NewPoolShutdownError(s.name)
	}
	if err := t.Queued(); err != nil {
		return t, err
	}
	if o.first {
		s.front.Push(t)
	} else {
		s.back.Push(t)
	}
	s.cond.Signal()
	return t, nil
}

// AddWork wraps w in a new Task and submits it.
func (s *Scheduler) AddWork(w Work, opts ...SubmitOption) (*Task, error) {
	return s.Submit(NewTask(w), opts...)
}

// Shutdown stops accepting work. Queued and running tasks finish normally and
// workers exit once the queue is empty.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closing {
		s.log.Debug("graceful shutdown requested")
	}
	s.closing = true
	s.cond.Broadcast()
}

// ShutdownNow stops accepting work, interrupts running tasks and cancels every
// queued task. It returns the tasks removed from the queue.
func (s *Scheduler) ShutdownNow() []*Task {
	s.mu.Lock()
	s.closing = true
	drained := append(s.front.Drain(), s.back.Drain()...)
	running := make([]*Task, 0, len(s.running))
	for t := range s.running {
		running = append(running, t)
	}
	s.cond.Broadcast()
	s.mu.Unlock()

	s.log.Infow("immediate shutdown requested", "queued", len(drained), "running", len(running))

	s.mainCancel()
	for _, t := range running {
		t.RaiseError(errors.NewInterruptedError())
	}
	for _, t := range drained {
		t.RaiseError(errors.NewShutdownCancellationError())
	}
	return drained
}

// Delete removes tasks that have not started yet and returns those removed.
// Removed tasks stay queued; the caller owns them.
func (s *Scheduler) Delete(tasks ...*Task) []*Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted []*Task
	for _, t := range tasks {
		if s.front.Remove(t) || s.back.Remove(t) {
			deleted = append(deleted, t)
		}
	}
	return deleted
}

// WaitFor joins every worker, waiting at most timeout for each one.
// A zero timeout waits without bound. It reports whether all workers exited.
func (s *Scheduler) WaitFor(timeout time.Duration) bool {
	joined := true
	for _, done := range s.workers {
		if timeout <= 0 {
			<-done
			continue
		}
		timer := time.NewTimer(timeout)
		select {
		case <-done:
		case <-timer.C:
			joined = false
		}
		timer.Stop()
	}
	return joined
}

// Close shuts the scheduler down gracefully and waits for the workers.
func (s *Scheduler) Close() {
	s.once.Do(func() {
		s.Shutdown()
		s.WaitFor(0)
		s.mainCancel()
	})
}

func (s *Scheduler) IsShutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}

func (s *Scheduler) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.front.Len() + s.back.Len()
}

func (s *Scheduler) run(id string, done chan struct{}) {
	defer close(done)
	for {
		t, ok := s.next()
		if !ok {
			s.log.Debugw("worker exiting", "worker", id)
			return
		}

		if err := t.Execute(s.mainCtx); err != nil {
			s.log.Debugw("task interrupted", "worker", id, "task", t.Name(), "error", err)
		}

		s.mu.Lock()
		delete(s.running, t)
		s.mu.Unlock()
	}
}

// next blocks until a task is available. It returns false once the scheduler
// is closing and the queue is empty.
func (s *Scheduler) next() (*Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.front.Len() == 0 && s.back.Len() == 0 && !s.closing {
		s.cond.Wait()
	}

	var t *Task
	switch {
	case s.front.Len() > 0:
		t = s.front.Pop()
	case s.back.Len() > 0:
		t = s.back.Pop()
	default:
		return nil, false
	}
	s.running[t] = struct{}{}
	return t, true
}

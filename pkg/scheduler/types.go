package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/kubev2v/taskrunner/pkg/errors"
	"github.com/kubev2v/taskrunner/pkg/future"
)

// Work is the unit of computation carried by a Task. The context is cancelled
// when the task is interrupted by an immediate shutdown or aborted.
type Work func(ctx context.Context) (any, error)

type State int

const (
	StateNew State = iota
	StateQueued
	StateRunning
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateQueued:
		return "queued"
	case StateRunning:
		return "running"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

type TaskOption func(*Task)

func WithName(name string) TaskOption {
	return func(t *Task) {
		t.name = name
	}
}

// Task is a unit of asynchronous work with a monotonic lifecycle:
// new -> queued -> running -> complete. RaiseError can complete it from any
// earlier state.
type Task struct {
	mu         sync.Mutex
	name       string
	state      State
	work       Work
	future     *future.Future[any]
	cancel     context.CancelCauseFunc
	startedAt  time.Time
	finishedAt time.Time
}

func NewTask(w Work, opts ...TaskOption) *Task {
	t := &Task{
		work:   w,
		future: future.NewFuture[any](),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Task) Name() string {
	return t.name
}

// Queued marks the task as queued. A task can be queued only once.
func (t *Task) Queued() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateNew {
		return errors.NewTaskAlreadyQueuedError(t.state.String())
	}
	t.state = StateQueued
	return nil
}

// Execute runs the work function. It must be called by exactly one worker.
// A task completed by RaiseError while still queued is skipped.
//
// The returned error is non-nil only when ctx was cancelled while the work was
// running; the task then carries an interrupted error.
func (t *Task) Execute(ctx context.Context) error {
	t.mu.Lock()
	switch t.state {
	case StateQueued:
	case StateComplete:
		t.mu.Unlock()
		return nil
	default:
		state := t.state
		t.mu.Unlock()
		return errors.NewInvalidArgumentError("task cannot be executed: task is %s", state)
	}
	runCtx, cancel := context.WithCancelCause(ctx)
	t.state = StateRunning
	t.cancel = cancel
	t.startedAt = time.Now()
	t.mu.Unlock()
	defer cancel(nil)

	v, err := t.run(runCtx)
	if ctx.Err() != nil {
		interrupted := errors.NewInterruptedError()
		t.complete(nil, interrupted)
		return interrupted
	}
	t.complete(v, err)
	return nil
}

func (t *Task) run(ctx context.Context) (v any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			v, err = nil, errors.NewWorkPanicError(rec)
		}
	}()
	return t.work(ctx)
}

func (t *Task) complete(v any, err error) {
	t.mu.Lock()
	if t.state == StateComplete {
		t.mu.Unlock()
		return
	}
	t.state = StateComplete
	t.finishedAt = time.Now()
	t.cancel = nil
	t.mu.Unlock()

	t.future.Complete(v, err)
}

// RaiseError force-completes the task with err and releases every waiter.
// Running work is cancelled with err as the cause. It returns false and keeps
// the existing outcome when the task is already complete.
func (t *Task) RaiseError(err error) bool {
	t.mu.Lock()
	if t.state == StateComplete {
		t.mu.Unlock()
		return false
	}
	cancel := t.cancel
	t.state = StateComplete
	t.finishedAt = time.Now()
	t.cancel = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel(err)
	}
	t.future.Complete(nil, err)
	return true
}

// Result blocks until the task is complete and returns its value, or its error
// when one was captured.
func (t *Task) Result() (any, error) {
	return t.future.Result()
}

// Wait is Result bounded by ctx.
func (t *Task) Wait(ctx context.Context) (any, error) {
	return t.future.Wait(ctx)
}

func (t *Task) Done() <-chan struct{} {
	return t.future.Done()
}

// Err returns the captured error of a completed task, nil otherwise.
func (t *Task) Err() error {
	r, ok := t.future.Peek()
	if !ok {
		return nil
	}
	return r.Err
}

// OnComplete registers fn to be called once with the task outcome.
func (t *Task) OnComplete(fn func(v any, err error)) {
	t.future.OnComplete(func(r future.Result[any]) {
		fn(r.Data, r.Err)
	})
}

func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Task) IsQueued() bool {
	return t.State() == StateQueued
}

func (t *Task) IsRunning() bool {
	return t.State() == StateRunning
}

func (t *Task) IsComplete() bool {
	return t.State() == StateComplete
}

func (t *Task) StartedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.startedAt
}

func (t *Task) FinishedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finishedAt
}

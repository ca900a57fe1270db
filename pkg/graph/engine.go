package graph

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kubev2v/taskrunner/pkg/errors"
	"github.com/kubev2v/taskrunner/pkg/scheduler"
)

// Submitter accepts a unit of work for execution. *scheduler.Scheduler
// implements it.
type Submitter interface {
	Submit(t *scheduler.Task, opts ...scheduler.SubmitOption) (*scheduler.Task, error)
}

// Engine owns the named tasks of one execution and releases each of them to a
// Submitter as soon as its dependencies are complete.
type Engine struct {
	name      string
	tasks     map[string]*Task
	order     []*Task
	mu        sync.Mutex
	compiled  bool
	stopped   bool
	pool      Submitter
	policy    FailurePolicy
	listeners []OutcomeListener
	log       *zap.SugaredLogger
}

func New(opts ...Option) *Engine {
	e := &Engine{
		name:  "graph",
		tasks: make(map[string]*Task),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = zap.S().Named("graph").With("graph", e.name)
	}
	return e
}

func (e *Engine) Name() string {
	return e.name
}

// Define creates a task named name running work after every task in dependsOn.
func (e *Engine) Define(name string, work scheduler.Work, dependsOn ...string) (*Task, error) {
	return e.DefineTask(name, work, DependsOn(dependsOn...))
}

// DefineTask is Define with options.
func (e *Engine) DefineTask(name string, work scheduler.Work, opts ...DefineOption) (*Task, error) {
	var o defineOptions
	for _, opt := range opts {
		opt(&o)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.definableLocked(); err != nil {
		return nil, err
	}
	if _, ok := e.tasks[name]; ok {
		return nil, errors.NewTaskAlreadyDefinedError(name)
	}

	t := newTask(e, name, work, o.priority)
	for _, dep := range o.dependsOn {
		t.deps = append(t.deps, newDependency(t, dep))
	}
	e.tasks[name] = t
	e.order = append(e.order, t)
	return t, nil
}

// Resolve returns the task named name.
func (e *Engine) Resolve(name string) (*Task, error) {
	t, ok := e.tasks[name]
	if !ok {
		return nil, errors.NewTaskNotFoundError(name)
	}
	return t, nil
}

// Tasks returns the tasks in definition order.
func (e *Engine) Tasks() []*Task {
	tasks := make([]*Task, len(e.order))
	copy(tasks, e.order)
	return tasks
}

// Execute compiles the graph and submits every task without dependencies to
// pool. Remaining tasks are submitted as their prerequisites complete.
// With wait set, it blocks like Wait.
//
// An invalid graph (unknown prerequisite, self dependency or cycle) is aborted
// before anything is submitted.
func (e *Engine) Execute(ctx context.Context, pool Submitter, wait bool) error {
	e.mu.Lock()
	if err := e.definableLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.compiled = true
	e.pool = pool
	e.mu.Unlock()

	if err := e.validate(); err != nil {
		e.log.Errorw("invalid graph", "error", err)
		e.RaiseError(err)
		return err
	}

	for _, t := range e.order {
		if err := t.ResolveDependencies(); err != nil {
			e.RaiseError(err)
			return err
		}
	}

	e.log.Infow("graph compiled", "tasks", len(e.order))

	for _, t := range e.order {
		t.fireIfReady()
	}

	if !wait {
		return nil
	}
	return e.Wait(ctx)
}

// Wait blocks until every task is complete and returns the error of the first
// failed task in definition order.
func (e *Engine) Wait(ctx context.Context) error {
	var first error
	for _, t := range e.order {
		_, err := t.Wait(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}

// WaitAll blocks until every task is complete and joins the errors of all
// failed tasks, in definition order.
func (e *Engine) WaitAll(ctx context.Context) error {
	var errs []error
	for _, t := range e.order {
		_, err := t.Wait(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("task %q: %w", t.Name(), err))
		}
	}
	return stderrors.Join(errs...)
}

// RaiseError stops the graph and completes every outstanding task with a
// graph aborted error wrapping err. Tasks already complete keep their outcome.
func (e *Engine) RaiseError(err error) {
	e.mu.Lock()
	wasStopped := e.stopped
	e.stopped = true
	e.mu.Unlock()

	if !wasStopped {
		e.log.Warnw("graph aborted", "error", err)
	}

	aborted := errors.NewGraphAbortedError(err)
	for _, t := range e.order {
		t.RaiseError(aborted)
	}
}

func (e *Engine) IsStopped() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopped
}

func (e *Engine) IsCompiled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.compiled
}

func (e *Engine) checkDefinable() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.definableLocked()
}

func (e *Engine) definableLocked() error {
	if e.stopped {
		return errors.NewGraphStoppedError()
	}
	if e.compiled {
		return errors.NewGraphCompiledError()
	}
	return nil
}

func (e *Engine) notify(ev Event, t *Task) {
	switch ev {
	case EventReady:
		e.onTaskReady(t)
	case EventComplete:
		e.onTaskComplete(t)
	}
}

func (e *Engine) onTaskReady(t *Task) {
	e.mu.Lock()
	stopped := e.stopped
	pool := e.pool
	e.mu.Unlock()

	if stopped || pool == nil {
		return
	}

	var opts []scheduler.SubmitOption
	if t.priority {
		opts = append(opts, scheduler.WithFirst())
	}
	if _, err := pool.Submit(t.Task, opts...); err != nil {
		e.log.Errorw("failed to submit task", "task", t.Name(), "error", err)
		t.RaiseError(err)
		return
	}
	e.log.Debugw("task submitted", "task", t.Name())
}

func (e *Engine) onTaskComplete(t *Task) {
	v, err := t.Result()

	if err != nil {
		e.log.Errorw("task failed", "task", t.Name(), "error", err)
	} else {
		e.log.Infow("task completed", "task", t.Name())
	}

	outcome := Outcome{
		Task:       t.Name(),
		Value:      v,
		Err:        err,
		StartedAt:  t.StartedAt(),
		FinishedAt: t.FinishedAt(),
	}
	for _, l := range e.listeners {
		l(outcome)
	}

	if err == nil || e.policy == nil || e.IsStopped() {
		return
	}
	if abort := e.policy(t, err); abort != nil {
		e.RaiseError(abort)
	}
}

package graph

import (
	"sync"

	"github.com/kubev2v/taskrunner/pkg/errors"
	"github.com/kubev2v/taskrunner/pkg/scheduler"
)

// Task is a named scheduler.Task owned by an Engine. It becomes ready when all
// of its dependencies have completed.
type Task struct {
	*scheduler.Task
	engine     *Engine
	priority   bool
	mu         sync.Mutex
	deps       []*Dependency
	satisfied  int
	readyFired bool
	resolved   bool
}

func newTask(e *Engine, name string, work scheduler.Work, priority bool) *Task {
	t := &Task{
		Task:     scheduler.NewTask(work, scheduler.WithName(name)),
		engine:   e,
		priority: priority,
	}
	t.Task.OnComplete(func(any, error) {
		e.notify(EventComplete, t)
	})
	return t
}

// DependsOn records one dependency per name. Names may refer to tasks defined
// later; they are resolved when the engine executes.
func (t *Task) DependsOn(names ...string) error {
	if err := t.engine.checkDefinable(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, name := range names {
		t.deps = append(t.deps, newDependency(t, name))
	}
	return nil
}

func (t *Task) Dependencies() []*Dependency {
	t.mu.Lock()
	defer t.mu.Unlock()
	deps := make([]*Dependency, len(t.deps))
	copy(deps, t.deps)
	return deps
}

// ResolveDependencies resolves every dependency of the task. It runs once per
// task, after every task of the engine has been defined.
func (t *Task) ResolveDependencies() error {
	t.mu.Lock()
	if t.resolved {
		t.mu.Unlock()
		return errors.NewInvalidArgumentError("dependencies of task %q already resolved", t.Name())
	}
	t.resolved = true
	deps := t.deps
	t.mu.Unlock()

	for _, d := range deps {
		if err := d.Resolve(); err != nil {
			return err
		}
	}
	return nil
}

// Ready reports whether every dependency has completed.
func (t *Task) Ready() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.satisfied >= len(t.deps)
}

// SatisfiedCount returns how many dependencies have completed so far.
func (t *Task) SatisfiedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.satisfied
}

func (t *Task) dependencySatisfied(_ *Dependency) {
	t.mu.Lock()
	t.satisfied++
	fire := t.satisfied == len(t.deps) && !t.readyFired
	if fire {
		t.readyFired = true
	}
	t.mu.Unlock()

	if fire {
		t.engine.notify(EventReady, t)
	}
}

// fireIfReady raises EventReady for a task with no pending dependency, unless
// it was already raised.
func (t *Task) fireIfReady() {
	t.mu.Lock()
	fire := t.satisfied >= len(t.deps) && !t.readyFired
	if fire {
		t.readyFired = true
	}
	t.mu.Unlock()

	if fire {
		t.engine.notify(EventReady, t)
	}
}

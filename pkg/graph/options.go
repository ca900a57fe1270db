package graph

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kubev2v/taskrunner/pkg/errors"
)

// Outcome describes a completed task. It is handed to every OutcomeListener.
type Outcome struct {
	Task       string
	Value      any
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// OutcomeListener is called once per task, on the goroutine that completed it.
type OutcomeListener func(Outcome)

// FailurePolicy decides what a task failure means for the whole graph. A non-nil
// return aborts the graph with that error.
type FailurePolicy func(t *Task, err error) error

type Option func(*Engine)

func WithName(name string) Option {
	return func(e *Engine) {
		e.name = name
	}
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

func WithFailurePolicy(p FailurePolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// StopOnFailure aborts the graph as soon as one task fails.
func StopOnFailure() Option {
	return WithFailurePolicy(func(t *Task, err error) error {
		if errors.IsCancellationError(err) {
			return nil
		}
		return fmt.Errorf("task %q failed: %w", t.Name(), err)
	})
}

func WithOutcomeListener(l OutcomeListener) Option {
	return func(e *Engine) {
		e.listeners = append(e.listeners, l)
	}
}

type defineOptions struct {
	dependsOn []string
	priority  bool
}

type DefineOption func(*defineOptions)

func DependsOn(names ...string) DefineOption {
	return func(o *defineOptions) {
		o.dependsOn = append(o.dependsOn, names...)
	}
}

// Priority submits the task ahead of already queued work once it is ready.
func Priority() DefineOption {
	return func(o *defineOptions) {
		o.priority = true
	}
}

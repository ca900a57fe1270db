package errors

import (
	"errors"
	"fmt"
	"strings"
)

// UsageError is returned synchronously to a caller that violated a precondition:
// queueing a task twice, defining a task after compile, resolving an unknown name...
type UsageError struct {
	msg         string
	concurrency bool
}

func (e *UsageError) Error() string {
	return e.msg
}

func NewTaskAlreadyQueuedError(state string) *UsageError {
	return &UsageError{msg: fmt.Sprintf("task cannot be queued: task is %s", state), concurrency: true}
}

func NewPoolShutdownError(pool string) *UsageError {
	return &UsageError{msg: fmt.Sprintf("pool %q is shutting down: no new work accepted", pool), concurrency: true}
}

func NewTaskNotFoundError(name string) *UsageError {
	return &UsageError{msg: fmt.Sprintf("task %q not found", name)}
}

func NewTaskAlreadyDefinedError(name string) *UsageError {
	return &UsageError{msg: fmt.Sprintf("task %q already exists", name)}
}

func NewGraphCompiledError() *UsageError {
	return &UsageError{msg: "graph already compiled"}
}

func NewGraphStoppedError() *UsageError {
	return &UsageError{msg: "graph stopped"}
}

func NewDependencyAlreadyResolvedError(dependent, prerequisite string) *UsageError {
	return &UsageError{msg: fmt.Sprintf("dependency %q -> %q already resolved", dependent, prerequisite)}
}

func NewDependencyCycleError(path []string) *UsageError {
	return &UsageError{msg: "dependency cycle: " + strings.Join(path, " -> ")}
}

func NewSelfDependencyError(name string) *UsageError {
	return &UsageError{msg: fmt.Sprintf("task %q depends on itself", name)}
}

func NewInvalidArgumentError(format string, args ...any) *UsageError {
	return &UsageError{msg: fmt.Sprintf(format, args...)}
}

// IsUsageError reports whether err is, or wraps, a UsageError.
func IsUsageError(err error) bool {
	var e *UsageError
	return errors.As(err, &e)
}

// IsConcurrencyError reports whether err is a UsageError caused by a lifecycle
// race: a task already queued or a pool already shutting down.
func IsConcurrencyError(err error) bool {
	var e *UsageError
	return errors.As(err, &e) && e.concurrency
}

// CancellationError is injected into a task by an immediate pool shutdown or a
// graph abort. Waiters see it exactly like a work error.
type CancellationError struct {
	reason string
	cause  error
}

func (e *CancellationError) Error() string {
	if e.cause == nil {
		return e.reason
	}
	return fmt.Sprintf("%s: %v", e.reason, e.cause)
}

func (e *CancellationError) Unwrap() error {
	return e.cause
}

func NewShutdownCancellationError() *CancellationError {
	return &CancellationError{reason: "task cancelled by pool shutdown"}
}

func NewInterruptedError() *CancellationError {
	return &CancellationError{reason: "task interrupted by shutdown"}
}

func NewGraphAbortedError(cause error) *CancellationError {
	return &CancellationError{reason: "graph aborted", cause: cause}
}

func IsCancellationError(err error) bool {
	var e *CancellationError
	return errors.As(err, &e)
}

// WorkPanicError wraps a value recovered from a panicking work function.
type WorkPanicError struct {
	Value any
}

func (e *WorkPanicError) Error() string {
	return fmt.Sprintf("work panicked: %v", e.Value)
}

func NewWorkPanicError(v any) *WorkPanicError {
	return &WorkPanicError{Value: v}
}

func IsWorkPanicError(err error) bool {
	var e *WorkPanicError
	return errors.As(err, &e)
}

// GraphDefinitionError reports an invalid graph file.
type GraphDefinitionError struct {
	msg string
}

func (e *GraphDefinitionError) Error() string {
	return e.msg
}

func NewGraphDefinitionError(format string, args ...any) *GraphDefinitionError {
	return &GraphDefinitionError{msg: fmt.Sprintf(format, args...)}
}

func IsGraphDefinitionError(err error) bool {
	var e *GraphDefinitionError
	return errors.As(err, &e)
}

// ResourceNotFoundError is returned by the store when a record does not exist.
type ResourceNotFoundError struct {
	kind string
	id   string
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.kind, e.id)
}

func NewRunNotFoundError(id string) *ResourceNotFoundError {
	return &ResourceNotFoundError{kind: "run", id: id}
}

func IsResourceNotFoundError(err error) bool {
	var e *ResourceNotFoundError
	return errors.As(err, &e)
}

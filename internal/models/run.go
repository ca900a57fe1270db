package models

import (
	"fmt"
	"time"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
	RunStatusAborted   RunStatus = "aborted"
)

type TaskStatus string

const (
	TaskStatusSucceeded TaskStatus = "succeeded"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusCancelled TaskStatus = "cancelled"
)

func ParseTaskStatus(s string) (TaskStatus, error) {
	switch s {
	case "succeeded":
		return TaskStatusSucceeded, nil
	case "failed":
		return TaskStatusFailed, nil
	case "cancelled":
		return TaskStatusCancelled, nil
	default:
		return "", fmt.Errorf("invalid task status: %s", s)
	}
}

// Run is one execution of a graph.
type Run struct {
	ID         string
	Graph      string
	Status     RunStatus
	Workers    int
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// TaskResult is the recorded outcome of one task of a run.
type TaskResult struct {
	RunID      string
	Task       string
	Status     TaskStatus
	Output     string
	Error      string
	Attempts   int
	StartedAt  *time.Time
	FinishedAt *time.Time
}

func (r TaskResult) Duration() time.Duration {
	if r.StartedAt == nil || r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(*r.StartedAt)
}

// RunSummary is returned by the runner once every task of a run is complete.
type RunSummary struct {
	Run     Run
	Results []TaskResult
	Err     error
}

// Count returns the number of results with the given status.
func (s RunSummary) Count(status TaskStatus) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

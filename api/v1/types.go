package v1

import (
	"time"
)

// Defines values for RunStatus.
const (
	RunStatusAborted   RunStatus = "aborted"
	RunStatusFailed    RunStatus = "failed"
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
)

// Defines values for TaskResultStatus.
const (
	TaskResultStatusCancelled TaskResultStatus = "cancelled"
	TaskResultStatusFailed    TaskResultStatus = "failed"
	TaskResultStatusSucceeded TaskResultStatus = "succeeded"
)

// Error defines model for Error.
type Error struct {
	Error string `json:"error"`
}

// Run defines model for Run.
type Run struct {
	Error      *string    `json:"error,omitempty"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Graph      string     `json:"graph"`
	Id         string     `json:"id"`
	StartedAt  time.Time  `json:"startedAt"`
	Status     RunStatus  `json:"status"`
	Workers    int        `json:"workers"`
}

// RunStatus defines model for Run.Status.
type RunStatus string

// RunListResponse defines model for RunListResponse.
type RunListResponse struct {
	Page      int   `json:"page"`
	PageCount int   `json:"pageCount"`
	Runs      []Run `json:"runs"`
	Total     int   `json:"total"`
}

// TaskResult defines model for TaskResult.
type TaskResult struct {
	Attempts   int              `json:"attempts"`
	DurationMs int64            `json:"durationMs"`
	Error      *string          `json:"error,omitempty"`
	FinishedAt *time.Time       `json:"finishedAt,omitempty"`
	Output     *string          `json:"output,omitempty"`
	StartedAt  *time.Time       `json:"startedAt,omitempty"`
	Status     TaskResultStatus `json:"status"`
	Task       string           `json:"task"`
}

// TaskResultStatus defines model for TaskResult.Status.
type TaskResultStatus string

// TaskResultListResponse defines model for TaskResultListResponse.
type TaskResultListResponse struct {
	Page      int          `json:"page"`
	PageCount int          `json:"pageCount"`
	Results   []TaskResult `json:"results"`
	Total     int          `json:"total"`
}

// GetRunsParams defines parameters for GetRuns.
type GetRunsParams struct {
	Graph    *[]string `form:"graph,omitempty" json:"graph,omitempty"`
	Status   *[]string `form:"status,omitempty" json:"status,omitempty"`
	Page     *int      `form:"page,omitempty" json:"page,omitempty"`
	PageSize *int      `form:"pageSize,omitempty" json:"pageSize,omitempty"`
}

// GetRunResultsParams defines parameters for GetRunResults.
type GetRunResultsParams struct {
	Status   *[]string `form:"status,omitempty" json:"status,omitempty"`
	Task     *[]string `form:"task,omitempty" json:"task,omitempty"`
	Sort     *[]string `form:"sort,omitempty" json:"sort,omitempty"`
	Page     *int      `form:"page,omitempty" json:"page,omitempty"`
	PageSize *int      `form:"pageSize,omitempty" json:"pageSize,omitempty"`
}

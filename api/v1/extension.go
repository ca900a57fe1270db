package v1

import (
	"strings"

	"github.com/kubev2v/taskrunner/internal/models"
	"github.com/kubev2v/taskrunner/internal/store"
)

// NewRunFromModel converts a models.Run to an API Run.
func NewRunFromModel(run models.Run) Run {
	apiRun := Run{
		Id:         run.ID,
		Graph:      run.Graph,
		Status:     RunStatus(run.Status),
		Workers:    run.Workers,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}
	if run.Error != "" {
		apiRun.Error = &run.Error
	}
	return apiRun
}

// NewTaskResultFromModel converts a models.TaskResult to an API TaskResult.
func NewTaskResultFromModel(r models.TaskResult) TaskResult {
	apiResult := TaskResult{
		Task:       r.Task,
		Status:     TaskResultStatus(r.Status),
		Attempts:   r.Attempts,
		DurationMs: r.Duration().Milliseconds(),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
	if r.Error != "" {
		apiResult.Error = &r.Error
	}
	if r.Output != "" {
		apiResult.Output = &r.Output
	}
	return apiResult
}

// ParseSortParams converts API sort params ("task", "-started") to store sort
// params. A leading dash sorts descending.
func ParseSortParams(sorts []string) []store.SortParam {
	result := make([]store.SortParam, 0, len(sorts))
	for _, s := range sorts {
		if s == "" {
			continue
		}
		field, desc := strings.CutPrefix(s, "-")
		result = append(result, store.SortParam{Field: field, Desc: desc})
	}
	return result
}

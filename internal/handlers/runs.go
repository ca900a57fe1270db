package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/kubev2v/taskrunner/api/v1"
	"github.com/kubev2v/taskrunner/internal/models"
	"github.com/kubev2v/taskrunner/internal/services"
	srvErrors "github.com/kubev2v/taskrunner/pkg/errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var validSortFields = map[string]bool{
	"task":     true,
	"status":   true,
	"started":  true,
	"finished": true,
}

// GetRuns returns the list of runs with filtering and pagination
// (GET /runs)
func (h *Handler) GetRuns(c *gin.Context, params v1.GetRunsParams) {
	page, pageSize := paginate(params.Page, params.PageSize)

	svcParams := services.RunListParams{
		Limit:  uint64(pageSize),
		Offset: uint64((page - 1) * pageSize),
	}
	if params.Graph != nil {
		svcParams.Graphs = *params.Graph
	}
	if params.Status != nil {
		for _, s := range *params.Status {
			switch models.RunStatus(s) {
			case models.RunStatusRunning, models.RunStatusSucceeded, models.RunStatusFailed, models.RunStatusAborted:
			default:
				c.JSON(http.StatusBadRequest, v1.Error{Error: fmt.Sprintf("invalid run status: %s", s)})
				return
			}
		}
		svcParams.Statuses = *params.Status
	}

	result, err := h.resultSrv.ListRuns(c.Request.Context(), svcParams)
	if err != nil {
		zap.S().Named("run_handler").Errorw("failed to list runs", "error", err)
		c.JSON(http.StatusInternalServerError, v1.Error{Error: "failed to list runs"})
		return
	}

	apiRuns := make([]v1.Run, 0, len(result.Runs))
	for _, run := range result.Runs {
		apiRuns = append(apiRuns, v1.NewRunFromModel(run))
	}

	c.JSON(http.StatusOK, v1.RunListResponse{
		Page:      page,
		PageCount: pageCount(result.Total, pageSize),
		Total:     result.Total,
		Runs:      apiRuns,
	})
}

// GetRun returns a single run
// (GET /runs/{id})
func (h *Handler) GetRun(c *gin.Context, id string) {
	run, err := h.resultSrv.Run(c.Request.Context(), id)
	if err != nil {
		if srvErrors.IsResourceNotFoundError(err) {
			c.JSON(http.StatusNotFound, v1.Error{Error: err.Error()})
			return
		}
		zap.S().Named("run_handler").Errorw("failed to get run", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, v1.Error{Error: "failed to get run"})
		return
	}

	c.JSON(http.StatusOK, v1.NewRunFromModel(*run))
}

// GetRunResults returns the task results of a run
// (GET /runs/{id}/results)
func (h *Handler) GetRunResults(c *gin.Context, id string, params v1.GetRunResultsParams) {
	if _, err := h.resultSrv.Run(c.Request.Context(), id); err != nil {
		if srvErrors.IsResourceNotFoundError(err) {
			c.JSON(http.StatusNotFound, v1.Error{Error: err.Error()})
			return
		}
		zap.S().Named("run_handler").Errorw("failed to get run", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, v1.Error{Error: "failed to get run"})
		return
	}

	page, pageSize := paginate(params.Page, params.PageSize)

	svcParams := services.ResultListParams{
		RunIDs: []string{id},
		Limit:  uint64(pageSize),
		Offset: uint64((page - 1) * pageSize),
	}
	if params.Task != nil {
		svcParams.Tasks = *params.Task
	}
	if params.Status != nil {
		for _, s := range *params.Status {
			if _, err := models.ParseTaskStatus(s); err != nil {
				c.JSON(http.StatusBadRequest, v1.Error{Error: err.Error()})
				return
			}
		}
		svcParams.Statuses = *params.Status
	}
	if params.Sort != nil {
		for _, s := range *params.Sort {
			if !validSortFields[strings.TrimPrefix(s, "-")] {
				c.JSON(http.StatusBadRequest, v1.Error{Error: fmt.Sprintf("invalid sort field: %s", s)})
				return
			}
		}
		svcParams.Sort = v1.ParseSortParams(*params.Sort)
	}

	result, err := h.resultSrv.List(c.Request.Context(), svcParams)
	if err != nil {
		zap.S().Named("run_handler").Errorw("failed to list task results", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, v1.Error{Error: "failed to list task results"})
		return
	}

	apiResults := make([]v1.TaskResult, 0, len(result.Results))
	for _, r := range result.Results {
		apiResults = append(apiResults, v1.NewTaskResultFromModel(r))
	}

	c.JSON(http.StatusOK, v1.TaskResultListResponse{
		Page:      page,
		PageCount: pageCount(result.Total, pageSize),
		Total:     result.Total,
		Results:   apiResults,
	})
}

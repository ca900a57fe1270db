package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// List runs
	// (GET /runs)
	GetRuns(c *gin.Context, params GetRunsParams)
	// Get a run
	// (GET /runs/{id})
	GetRun(c *gin.Context, id string)
	// List the task results of a run
	// (GET /runs/{id}/results)
	GetRunResults(c *gin.Context, id string, params GetRunResultsParams)
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	ErrorHandler       func(*gin.Context, error, int)
	HandlerMiddlewares []gin.HandlerFunc
}

// GetRuns operation middleware
func (siw *ServerInterfaceWrapper) GetRuns(c *gin.Context) {
	var err error

	var params GetRunsParams

	err = runtime.BindQueryParameter("form", true, false, "graph", c.Request.URL.Query(), &params.Graph)
	if err != nil {
		siw.ErrorHandler(c, fmt.Errorf("Invalid format for parameter graph: %w", err), http.StatusBadRequest)
		return
	}

	err = runtime.BindQueryParameter("form", true, false, "status", c.Request.URL.Query(), &params.Status)
	if err != nil {
		siw.ErrorHandler(c, fmt.Errorf("Invalid format for parameter status: %w", err), http.StatusBadRequest)
		return
	}

	err = runtime.BindQueryParameter("form", true, false, "page", c.Request.URL.Query(), &params.Page)
	if err != nil {
		siw.ErrorHandler(c, fmt.Errorf("Invalid format for parameter page: %w", err), http.StatusBadRequest)
		return
	}

	err = runtime.BindQueryParameter("form", true, false, "pageSize", c.Request.URL.Query(), &params.PageSize)
	if err != nil {
		siw.ErrorHandler(c, fmt.Errorf("Invalid format for parameter pageSize: %w", err), http.StatusBadRequest)
		return
	}

	for _, middleware := range siw.HandlerMiddlewares {
		middleware(c)
		if c.IsAborted() {
			return
		}
	}

	siw.Handler.GetRuns(c, params)
}

// GetRun operation middleware
func (siw *ServerInterfaceWrapper) GetRun(c *gin.Context) {
	var err error

	var id string

	err = runtime.BindStyledParameterWithOptions("simple", "id", c.Param("id"), &id, runtime.BindStyledParameterOptions{Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandler(c, fmt.Errorf("Invalid format for parameter id: %w", err), http.StatusBadRequest)
		return
	}

	for _, middleware := range siw.HandlerMiddlewares {
		middleware(c)
		if c.IsAborted() {
			return
		}
	}

	siw.Handler.GetRun(c, id)
}

// GetRunResults operation middleware
func (siw *ServerInterfaceWrapper) GetRunResults(c *gin.Context) {
	var err error

	var id string

	err = runtime.BindStyledParameterWithOptions("simple", "id", c.Param("id"), &id, runtime.BindStyledParameterOptions{Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandler(c, fmt.Errorf("Invalid format for parameter id: %w", err), http.StatusBadRequest)
		return
	}

	var params GetRunResultsParams

	err = runtime.BindQueryParameter("form", true, false, "status", c.Request.URL.Query(), &params.Status)
	if err != nil {
		siw.ErrorHandler(c, fmt.Errorf("Invalid format for parameter status: %w", err), http.StatusBadRequest)
		return
	}

	err = runtime.BindQueryParameter("form", true, false, "task", c.Request.URL.Query(), &params.Task)
	if err != nil {
		siw.ErrorHandler(c, fmt.Errorf("Invalid format for parameter task: %w", err), http.StatusBadRequest)
		return
	}

	err = runtime.BindQueryParameter("form", true, false, "sort", c.Request.URL.Query(), &params.Sort)
	if err != nil {
		siw.ErrorHandler(c, fmt.Errorf("Invalid format for parameter sort: %w", err), http.StatusBadRequest)
		return
	}

	err = runtime.BindQueryParameter("form", true, false, "page", c.Request.URL.Query(), &params.Page)
	if err != nil {
		siw.ErrorHandler(c, fmt.Errorf("Invalid format for parameter page: %w", err), http.StatusBadRequest)
		return
	}

	err = runtime.BindQueryParameter("form", true, false, "pageSize", c.Request.URL.Query(), &params.PageSize)
	if err != nil {
		siw.ErrorHandler(c, fmt.Errorf("Invalid format for parameter pageSize: %w", err), http.StatusBadRequest)
		return
	}

	for _, middleware := range siw.HandlerMiddlewares {
		middleware(c)
		if c.IsAborted() {
			return
		}
	}

	siw.Handler.GetRunResults(c, id, params)
}

// RegisterHandlers mounts the v1 routes on router.
func RegisterHandlers(router gin.IRouter, si ServerInterface) {
	errorHandler := func(c *gin.Context, err error, statusCode int) {
		c.JSON(statusCode, Error{Error: err.Error()})
	}

	wrapper := ServerInterfaceWrapper{
		Handler:      si,
		ErrorHandler: errorHandler,
	}

	router.GET("/runs", wrapper.GetRuns)
	router.GET("/runs/:id", wrapper.GetRun)
	router.GET("/runs/:id/results", wrapper.GetRunResults)
}

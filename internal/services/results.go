package services

import (
	"context"

	"github.com/kubev2v/taskrunner/internal/models"
	"github.com/kubev2v/taskrunner/internal/store"
)

type ResultService struct {
	store *store.Store
}

func NewResultService(st *store.Store) *ResultService {
	return &ResultService{store: st}
}

type ResultListParams struct {
	RunIDs   []string
	Tasks    []string
	Statuses []string
	Sort     []store.SortParam
	Limit    uint64
	Offset   uint64
}

type ResultListResult struct {
	Results []models.TaskResult
	Total   int
}

func (s *ResultService) List(ctx context.Context, params ResultListParams) (*ResultListResult, error) {
	opts := s.buildListOptions(params)
	if len(params.Sort) > 0 {
		opts = append(opts, store.WithSort(params.Sort))
	} else {
		opts = append(opts, store.WithDefaultSort())
	}
	if params.Limit > 0 {
		opts = append(opts, store.WithLimit(params.Limit))
	}
	if params.Offset > 0 {
		opts = append(opts, store.WithOffset(params.Offset))
	}

	results, err := s.store.Results().List(ctx, opts...)
	if err != nil {
		return nil, err
	}

	// Get total count without pagination
	total, err := s.store.Results().Count(ctx, s.buildListOptions(params)...)
	if err != nil {
		return nil, err
	}

	return &ResultListResult{
		Results: results,
		Total:   total,
	}, nil
}

type RunListParams struct {
	Graphs   []string
	Statuses []string
	Limit    uint64
	Offset   uint64
}

type RunListResult struct {
	Runs  []models.Run
	Total int
}

// ListRuns returns runs, most recent first.
func (s *ResultService) ListRuns(ctx context.Context, params RunListParams) (*RunListResult, error) {
	var filters []store.ListOption
	if len(params.Graphs) > 0 {
		filters = append(filters, store.ByGraph(params.Graphs...))
	}
	if len(params.Statuses) > 0 {
		filters = append(filters, store.ByStatus(params.Statuses...))
	}

	opts := append([]store.ListOption{}, filters...)
	opts = append(opts, store.WithSort([]store.SortParam{{Field: "started", Desc: true}}))
	if params.Limit > 0 {
		opts = append(opts, store.WithLimit(params.Limit))
	}
	if params.Offset > 0 {
		opts = append(opts, store.WithOffset(params.Offset))
	}

	runs, err := s.store.Runs().List(ctx, opts...)
	if err != nil {
		return nil, err
	}

	total, err := s.store.Runs().Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	return &RunListResult{Runs: runs, Total: total}, nil
}

// LatestRun returns the most recent run, optionally restricted to one graph.
func (s *ResultService) LatestRun(ctx context.Context, graphName string) (*models.Run, error) {
	opts := []store.ListOption{
		store.WithSort([]store.SortParam{{Field: "started", Desc: true}}),
		store.WithLimit(1),
	}
	if graphName != "" {
		opts = append(opts, store.ByGraph(graphName))
	}

	runs, err := s.store.Runs().List(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

func (s *ResultService) Run(ctx context.Context, id string) (*models.Run, error) {
	return s.store.Runs().Get(ctx, id)
}

func (s *ResultService) buildListOptions(params ResultListParams) []store.ListOption {
	var opts []store.ListOption

	if len(params.RunIDs) > 0 {
		opts = append(opts, store.ByRun(params.RunIDs...))
	}
	if len(params.Tasks) > 0 {
		opts = append(opts, store.ByTask(params.Tasks...))
	}
	if len(params.Statuses) > 0 {
		opts = append(opts, store.ByStatus(params.Statuses...))
	}

	return opts
}

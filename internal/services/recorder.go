package services

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/kubev2v/taskrunner/internal/models"
	"github.com/kubev2v/taskrunner/internal/store"
	"github.com/kubev2v/taskrunner/internal/util"
	"github.com/kubev2v/taskrunner/pkg/errors"
	"github.com/kubev2v/taskrunner/pkg/graph"
	"github.com/kubev2v/taskrunner/pkg/work"
)

const maxOutputBytes = 64 * 1024

// recorder turns graph outcomes into task results and saves them. It is called
// from worker goroutines.
type recorder struct {
	ctx      context.Context
	runID    string
	store    *store.Store
	log      *zap.SugaredLogger
	attempts map[string]*atomic.Int32
	pending  sync.WaitGroup

	mu      sync.Mutex
	results map[string]models.TaskResult
}

func newRecorder(ctx context.Context, runID string, st *store.Store, log *zap.SugaredLogger) *recorder {
	return &recorder{
		ctx:      context.WithoutCancel(ctx),
		runID:    runID,
		store:    st,
		log:      log,
		attempts: make(map[string]*atomic.Int32),
		results:  make(map[string]models.TaskResult),
	}
}

// track registers a task before the graph executes. It returns the counter
// incremented by every attempt of the task.
func (r *recorder) track(task string) *atomic.Int32 {
	c := &atomic.Int32{}
	r.attempts[task] = c
	r.pending.Add(1)
	return c
}

func (r *recorder) record(o graph.Outcome) {
	defer r.pending.Done()

	result := models.TaskResult{
		RunID:      r.runID,
		Task:       o.Task,
		Status:     taskStatus(o.Err),
		StartedAt:  util.TimePtr(o.StartedAt),
		FinishedAt: util.TimePtr(o.FinishedAt),
	}
	if c, ok := r.attempts[o.Task]; ok {
		result.Attempts = int(c.Load())
	}
	if o.Err != nil {
		result.Error = o.Err.Error()
	}
	if res, ok := o.Value.(*work.CommandResult); ok && res != nil {
		result.Output = util.Tail(res.Output, maxOutputBytes)
	}

	r.mu.Lock()
	r.results[o.Task] = result
	r.mu.Unlock()

	if err := r.store.Results().Save(r.ctx, result); err != nil {
		r.log.Errorw("failed to save task result", "task", o.Task, "error", err)
	}
}

// wait blocks until every tracked task has been recorded.
func (r *recorder) wait() {
	r.pending.Wait()
}

// ordered returns the results in the order of names.
func (r *recorder) ordered(names []string) []models.TaskResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	results := make([]models.TaskResult, 0, len(names))
	for _, name := range names {
		if res, ok := r.results[name]; ok {
			results = append(results, res)
		}
	}
	return results
}

func taskStatus(err error) models.TaskStatus {
	switch {
	case err == nil:
		return models.TaskStatusSucceeded
	case errors.IsCancellationError(err), stderrors.Is(err, context.Canceled):
		return models.TaskStatusCancelled
	default:
		return models.TaskStatusFailed
	}
}

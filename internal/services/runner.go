package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kubev2v/taskrunner/internal/models"
	"github.com/kubev2v/taskrunner/internal/store"
	srvErrors "github.com/kubev2v/taskrunner/pkg/errors"
	"github.com/kubev2v/taskrunner/pkg/graph"
	"github.com/kubev2v/taskrunner/pkg/scheduler"
	"github.com/kubev2v/taskrunner/pkg/work"
)

type RunnerOption func(*Runner)

// WithStopOnFailure aborts a run on the first failed task.
func WithStopOnFailure(stop bool) RunnerOption {
	return func(r *Runner) {
		r.stopOnFailure = stop
	}
}

// WithRetryInterval sets the first delay between two attempts of a task
// declaring retries.
func WithRetryInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.retryInterval = d
	}
}

// Runner executes graph definitions on a shared scheduler and records every
// run in the store.
type Runner struct {
	scheduler     *scheduler.Scheduler
	store         *store.Store
	stopOnFailure bool
	retryInterval time.Duration
}

func NewRunner(s *scheduler.Scheduler, st *store.Store, opts ...RunnerOption) *Runner {
	r := &Runner{
		scheduler:     s,
		store:         st,
		retryInterval: time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes def and blocks until every task is complete. Cancelling ctx
// aborts the graph; the summary is still returned.
//
// The returned error is reserved for a run that could not start: an invalid
// definition or a store failure. Task failures are reported in the summary.
func (r *Runner) Run(ctx context.Context, def models.GraphDefinition) (*models.RunSummary, error) {
	if err := def.Validate(); err != nil {
		return nil, srvErrors.NewGraphDefinitionError("invalid graph definition: %v", err)
	}

	run := models.Run{
		ID:        uuid.NewString(),
		Graph:     def.Name,
		Status:    models.RunStatusRunning,
		Workers:   r.scheduler.Size(),
		StartedAt: time.Now(),
	}
	if err := r.store.Runs().Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	log := zap.S().Named("runner").With("run", run.ID, "graph", def.Name)
	log.Infow("run started", "tasks", len(def.Tasks), "workers", run.Workers)

	rec := newRecorder(ctx, run.ID, r.store, log)
	opts := []graph.Option{
		graph.WithName(def.Name),
		graph.WithLogger(log.Named("graph")),
		graph.WithOutcomeListener(rec.record),
	}
	if r.stopOnFailure {
		opts = append(opts, graph.StopOnFailure())
	}
	g := graph.New(opts...)

	names := make([]string, 0, len(def.Tasks))
	for _, td := range def.Tasks {
		defineOpts := []graph.DefineOption{graph.DependsOn(td.DependsOn...)}
		if td.Priority {
			defineOpts = append(defineOpts, graph.Priority())
		}
		if _, err := g.DefineTask(td.Name, r.buildWork(td, rec.track(td.Name)), defineOpts...); err != nil {
			_ = r.store.Runs().Finish(context.WithoutCancel(ctx), run.ID, models.RunStatusFailed, err)
			return nil, err
		}
		names = append(names, td.Name)
	}

	runErr := g.Execute(ctx, r.scheduler, false)
	if runErr == nil {
		runErr = g.WaitAll(ctx)
	}
	if ctx.Err() != nil {
		log.Warnw("run cancelled", "cause", context.Cause(ctx))
		g.RaiseError(context.Cause(ctx))
		runErr = g.WaitAll(context.WithoutCancel(ctx))
	}
	rec.wait()

	summary := &models.RunSummary{
		Run:     run,
		Results: rec.ordered(names),
		Err:     runErr,
	}
	summary.Run.Status = runStatus(g, runErr)

	finishCtx := context.WithoutCancel(ctx)
	if err := r.store.Runs().Finish(finishCtx, run.ID, summary.Run.Status, runErr); err != nil {
		log.Errorw("failed to finish run", "error", err)
	}
	if stored, err := r.store.Runs().Get(finishCtx, run.ID); err == nil {
		summary.Run = *stored
	}

	log.Infow("run finished",
		"status", summary.Run.Status,
		"succeeded", summary.Count(models.TaskStatusSucceeded),
		"failed", summary.Count(models.TaskStatusFailed),
		"cancelled", summary.Count(models.TaskStatusCancelled),
	)
	return summary, nil
}

func (r *Runner) buildWork(td models.TaskDefinition, attempts *atomic.Int32) scheduler.Work {
	cmd := work.Command(work.CommandSpec{
		Name: td.Command,
		Args: td.Args,
		Dir:  td.Dir,
		Env:  td.Env,
	})
	counted := func(ctx context.Context) (any, error) {
		attempts.Add(1)
		return cmd(ctx)
	}
	w := work.WithTimeout(counted, td.Timeout)
	return work.WithRetry(w, td.Retries,
		work.WithInitialInterval(r.retryInterval),
		work.OnRetry(func(attempt int, err error, next time.Duration) {
			zap.S().Named("runner").Infow("retrying task", "task", td.Name, "attempt", attempt, "error", err, "next", next)
		}),
	)
}

func runStatus(g *graph.Engine, err error) models.RunStatus {
	switch {
	case g.IsStopped():
		return models.RunStatusAborted
	case err != nil:
		return models.RunStatusFailed
	default:
		return models.RunStatusSucceeded
	}
}

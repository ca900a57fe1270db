// Package store implements the data access layer for taskrunner.
//
// This package persists graph runs and the outcome of every task using DuckDB.
// The database lives in the data folder (taskrunner.duckdb) or in memory when no
// folder is configured.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                         Store (facade)                          │
//	├─────────────────────────────────────────────────────────────────┤
//	│            RunStore            │        TaskResultStore         │
//	│               ▼                │               ▼                │
//	│             runs               │          task_results          │
//	├────────────────────────────────┴────────────────────────────────┤
//	│                 QueryInterceptor (debug logging)                │
//	└─────────────────────────────────────────────────────────────────┘
//
// # Tables
//
// Tables created by migrations (internal/store/migrations/sql/):
//
//	┌────────────────────┬─────────────────────────────────────────────┐
//	│  Table             │  Purpose                                    │
//	├────────────────────┼─────────────────────────────────────────────┤
//	│  runs              │  One row per graph execution                │
//	│  task_results      │  One row per task of a run                  │
//	│  schema_migrations │  Migration version tracking                 │
//	└────────────────────┴─────────────────────────────────────────────┘
//
// # Initialization Flow
//
//	db, _ := NewDBInFolder(cfg.Store.DataFolder)
//	migrations.Run(ctx, db)
//	s := NewStore(db)
//	    └── Initializes all sub-stores with a QueryInterceptor
//
// # RunStore
//
// Schema:
//
//	runs (
//	    id VARCHAR PRIMARY KEY,
//	    graph VARCHAR NOT NULL,
//	    status VARCHAR NOT NULL,      -- running, succeeded, failed, aborted
//	    workers INTEGER NOT NULL,
//	    error VARCHAR,
//	    started_at TIMESTAMP NOT NULL,
//	    finished_at TIMESTAMP
//	)
//
// Methods:
//   - Create(ctx, run) → error
//   - Finish(ctx, id, status, err) → error (ResourceNotFoundError for an unknown id)
//   - Get(ctx, id) → *models.Run
//   - List(ctx, opts...) → []models.Run (most recent first by default)
//
// # TaskResultStore
//
// Schema:
//
//	task_results (
//	    run_id VARCHAR NOT NULL,
//	    task VARCHAR NOT NULL,
//	    status VARCHAR NOT NULL,      -- succeeded, failed, cancelled
//	    output VARCHAR,
//	    error VARCHAR,
//	    attempts INTEGER NOT NULL,
//	    started_at TIMESTAMP,         -- NULL for a task that never ran
//	    finished_at TIMESTAMP,
//	    PRIMARY KEY (run_id, task)
//	)
//
// Methods:
//   - Save(ctx, result) → error (uses UPSERT)
//   - List(ctx, opts...) → []models.TaskResult (oldest start first by default)
//   - Count(ctx, opts...) → int
//
// # List Options
//
// List uses the functional options pattern. Each ListOption is a function that
// modifies the squirrel query builder:
//
//	results, err := s.Results().List(ctx,
//	    store.ByRun(runID),
//	    store.ByStatus("failed"),
//	    store.WithSort([]store.SortParam{{Field: "task"}}),
//	    store.WithLimit(50),
//	)
//
// Filtering: ByRun, ByTask (task results), ByGraph (runs), ByStatus (both).
// Pagination: WithLimit, WithOffset.
// Sorting: WithSort maps task, graph, status, started and finished to their
// columns and appends the start time as a tie-breaker; WithDefaultSort orders by
// start time.
//
// # QueryInterceptor
//
// All database operations go through a QueryInterceptor that logs the query, its
// arguments and its duration at debug level.
//
// Logged operations:
//   - QueryRowContext
//   - QueryContext
//   - ExecContext
package store

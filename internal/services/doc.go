// Package services implements the business logic layer of taskrunner.
//
// Services sit between the command line and the lower layers: the graph engine
// (pkg/graph), the worker pool (pkg/scheduler) and the results store
// (internal/store).
//
// # Service Dependency Graph
//
//	cmd/taskrunner
//	    │
//	    ▼
//	Services Layer
//	    ├── Runner ─────────► Scheduler, Graph Engine, Work, Store
//	    ├── ResultService ──► Store
//	    └── LoadGraph ──────► YAML graph file
//
// # Runner
//
// Runner executes one GraphDefinition per call to Run:
//
//	Run(ctx, def)
//	    ├── def.Validate()                    → GraphDefinitionError
//	    ├── store.Runs().Create(run)          run id is a random UUID
//	    ├── graph.New(WithOutcomeListener)    one engine per run
//	    ├── DefineTask for every task         Command + WithTimeout + WithRetry
//	    ├── Execute(ctx, scheduler, false)
//	    ├── WaitAll(ctx)                      joins every task failure
//	    ├── ctx cancelled → RaiseError(cause) → WaitAll
//	    └── store.Runs().Finish(status)
//
// Every completed task is recorded by an outcome listener, on the worker that
// completed it, as a TaskResult:
//
//	┌──────────────────────────────┬───────────┐
//	│ Task outcome                 │ Status    │
//	├──────────────────────────────┼───────────┤
//	│ nil error                    │ succeeded │
//	│ cancellation or graph abort  │ cancelled │
//	│ any other error              │ failed    │
//	└──────────────────────────────┴───────────┘
//
// Run status:
//   - aborted: the graph was stopped (invalid graph, stop on failure, cancellation)
//   - failed: at least one task failed
//   - succeeded: otherwise
//
// A failed task does not prevent its dependents from running unless the runner
// is built with WithStopOnFailure(true). Output of a command is kept up to its
// last 64KiB.
//
// # ResultService
//
// ResultService lists stored task results with filters, sorting and pagination
// and returns the total number of matching results alongside a page. ListRuns
// does the same for runs, most recent first; LatestRun backs `taskrunner results`
// and the HTTP handlers use both.
//
// # Graph Files
//
//	name: nightly
//	tasks:
//	  - name: build
//	    command: make
//	    args: [build]
//	    priority: true
//	  - name: test
//	    command: make
//	    args: [test]
//	    depends_on: [build]
//	    retries: 2
//	    timeout: 10m
//
// Unknown fields are rejected.
package services

// Package graph schedules named tasks according to their dependencies.
//
// An Engine holds the tasks of one execution. Each Task names the tasks it
// depends on; when the engine executes, every name is resolved to the live task
// and the dependent subscribes to its completion. A task is submitted to the
// worker pool the moment its last prerequisite completes.
//
// # Execution Flow
//
//	Define(a)  Define(b, a)  Define(c, a)  Define(d, b, c)
//	    │
//	    ▼
//	Execute(ctx, pool, wait)
//	    ├── validate()                 unknown names, self dependency, cycles
//	    ├── ResolveDependencies()      name -> *Task, subscribe to completion
//	    └── fireIfReady()              tasks without dependencies -> pool
//	                │
//	                ▼
//	     a completes ──► b.dependencySatisfied ──► EventReady ──► pool
//	                 └─► c.dependencySatisfied ──► EventReady ──► pool
//	     b, c complete ─► d.dependencySatisfied (x2) ──► EventReady ──► pool
//
// # Task States
//
//	Defined ──► DependenciesPending ──► Ready ──► Queued ──► Running ──► Complete
//	   │                                  ▲
//	   └──────── (no dependencies) ───────┘
//
// EventReady is raised exactly once per task, by the goroutine that observes
// the satisfied count reach the number of dependencies. A dependency is
// satisfied by completion, not by success: a failing prerequisite still
// releases its dependents.
//
// # Failure Handling
//
// A task failure never cancels anything on its own. Embedding code chooses the
// policy:
//   - StopOnFailure() aborts the graph on the first non cancellation failure
//   - WithFailurePolicy(fn) installs a custom decision
//   - a work function may Resolve its prerequisite and inspect its Result
//
// RaiseError aborts the graph: it is marked stopped, every task that is not yet
// complete is completed with a graph aborted error, and ready events are ignored
// from then on. Tasks that already completed keep their own outcome.
//
// # Outcomes
//
// WithOutcomeListener registers a callback invoked once per completed task with
// its Outcome; the runner service uses it to persist results.
//
// # Usage Example
//
//	pool := scheduler.NewScheduler(2, "tests")
//	defer pool.Close()
//
//	g := graph.New(graph.WithName("nightly"), graph.StopOnFailure())
//	g.Define("build", build)
//	g.Define("unit", unit, "build")
//	g.Define("integration", integration, "build")
//	g.Define("report", report, "unit", "integration")
//
//	if err := g.Execute(ctx, pool, true); err != nil {
//	    return err
//	}
package graph

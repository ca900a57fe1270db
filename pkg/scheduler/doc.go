// Package scheduler implements a bounded worker pool executing Tasks.
//
// The scheduler owns a fixed set of workers that pull tasks from a shared
// queue. Work is submitted with Submit (or AddWork for a bare Work function) and
// the returned Task is used to wait for the result or to cancel it.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────────┐
//	│                           Scheduler                                 │
//	│                                                                     │
//	│  ┌──────────────┐      ┌──────────────┐      ┌──────────────┐       │
//	│  │  worker p-0  │      │  worker p-1  │      │  worker p-N  │       │
//	│  └──────────────┘      └──────────────┘      └──────────────┘       │
//	│         ▲                     ▲                     ▲               │
//	│         └─────────────────────┼─────────────────────┘               │
//	│                               │  next() (cond wait)                 │
//	│  ┌────────────────────────────┴────────────────────────────┐        │
//	│  │  front queue  [prio1] [prio2]            (WithFirst)    │        │
//	│  │  back queue   [task1] [task2] [task3] ...               │        │
//	│  └─────────────────────────────────────────────────────────┘        │
//	│                               ▲                                     │
//	│                        Submit(task, opts...)                        │
//	└─────────────────────────────────────────────────────────────────────┘
//
// The front queue is always drained before the back queue, so tasks submitted
// with WithFirst jump ahead of bulk work that is already waiting.
//
// # Task Lifecycle
//
//	┌─────┐  Submit   ┌────────┐  worker   ┌─────────┐  return   ┌──────────┐
//	│ New │ ────────► │ Queued │ ────────► │ Running │ ────────► │ Complete │
//	└─────┘           └────────┘           └─────────┘           └──────────┘
//	   │                  │                     │                      ▲
//	   └──────────────────┴─────────────────────┴──────────────────────┘
//	                          RaiseError(err)
//
// A task is queued at most once: Submit on a task that is not New fails with a
// concurrency error. The result is captured in a future.Future so any number of
// goroutines may block in Result and all are released together.
//
// # Failure Semantics
//
// Errors returned by a work function are stored on the task unchanged. Panics are
// recovered and stored as a WorkPanicError. Neither stops the worker; only a
// shutdown ends a worker loop.
//
// # Shutdown
//
// Shutdown (graceful):
//  1. New submissions fail with a pool shutdown error
//  2. Queued and running tasks finish normally
//  3. Workers exit once the queue is empty
//
// ShutdownNow (immediate):
//  1. New submissions fail with a pool shutdown error
//  2. The scheduler context is cancelled; running tasks see ctx.Done() and are
//     completed with an interrupted error
//  3. Every queued task is removed and completed with a cancellation error, so
//     nobody blocked in Result hangs
//
// WaitFor joins the workers with an optional per-worker timeout. Close is a
// graceful shutdown followed by an unbounded WaitFor and may be called more than once.
//
// # Usage Example
//
//	sched := scheduler.NewScheduler(4, "tests")
//	defer sched.Close()
//
//	task, err := sched.AddWork(func(ctx context.Context) (any, error) {
//	    return runSuite(ctx)
//	})
//	if err != nil {
//	    return err
//	}
//	result, err := task.Result()
package scheduler

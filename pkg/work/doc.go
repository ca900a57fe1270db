// Package work provides scheduler.Work builders for running external commands
// and decorators adding a timeout or retries to any Work.
//
//	w := work.Command(work.CommandSpec{Name: "make", Args: []string{"test"}})
//	w = work.WithTimeout(w, 10*time.Minute)
//	w = work.WithRetry(w, 2)
//
// Retries are opt-in. The scheduler and the graph engine never retry on their own.
package work

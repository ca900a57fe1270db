package graph_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	srvErrors "github.com/kubev2v/taskrunner/pkg/errors"
	"github.com/kubev2v/taskrunner/pkg/graph"
	"github.com/kubev2v/taskrunner/pkg/scheduler"
)

var _ = Describe("Engine", func() {
	var (
		ctx  context.Context
		pool *scheduler.Scheduler
		g    *graph.Engine
	)

	noop := func(ctx context.Context) (any, error) { return nil, nil }

	BeforeEach(func() {
		ctx = context.Background()
		pool = scheduler.NewScheduler(2, "graph-test")
		g = graph.New(graph.WithName("test"))
	})

	AfterEach(func() {
		pool.ShutdownNow()
		pool.WaitFor(time.Second)
	})

	Context("Define", func() {
		// Given a task named "a"
		// When another task named "a" is defined
		// Then the second definition fails with a usage error
		It("should reject duplicate task names", func() {
			_, err := g.Define("a", noop)
			Expect(err).NotTo(HaveOccurred())

			_, err = g.Define("a", noop)
			Expect(srvErrors.IsUsageError(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("already exists"))
		})

		It("should reject definitions after compile", func() {
			_, err := g.Define("a", noop)
			Expect(err).NotTo(HaveOccurred())
			Expect(g.Execute(ctx, pool, true)).To(Succeed())

			_, err = g.Define("b", noop)
			Expect(srvErrors.IsUsageError(err)).To(BeTrue())
		})

		It("should reject new dependencies after compile", func() {
			a, err := g.Define("a", noop)
			Expect(err).NotTo(HaveOccurred())
			Expect(g.Execute(ctx, pool, true)).To(Succeed())

			Expect(srvErrors.IsUsageError(a.DependsOn("x"))).To(BeTrue())
		})

		It("should accept dependencies on tasks defined later", func() {
			b, err := g.Define("b", noop, "a")
			Expect(err).NotTo(HaveOccurred())
			_, err = g.Define("a", noop)
			Expect(err).NotTo(HaveOccurred())

			Expect(g.Execute(ctx, pool, true)).To(Succeed())
			Expect(b.IsComplete()).To(BeTrue())
		})
	})

	Context("Resolve", func() {
		It("should return a defined task", func() {
			a, err := g.Define("a", noop)
			Expect(err).NotTo(HaveOccurred())

			found, err := g.Resolve("a")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeIdenticalTo(a))
		})

		It("should fail for an undefined name", func() {
			_, err := g.Resolve("missing")
			Expect(srvErrors.IsUsageError(err)).To(BeTrue())
		})
	})

	Context("Execute", func() {
		// Given a -> {b, c} -> d on a pool of two workers
		// When the graph executes and waits
		// Then a runs first, d runs after both b and c, and every task completes
		It("should run a diamond in dependency order", func() {
			tl := newTimeline()
			_, err := g.Define("a", tl.work("a", 20*time.Millisecond))
			Expect(err).NotTo(HaveOccurred())
			_, err = g.Define("b", tl.work("b", 50*time.Millisecond), "a")
			Expect(err).NotTo(HaveOccurred())
			_, err = g.Define("c", tl.work("c", 50*time.Millisecond), "a")
			Expect(err).NotTo(HaveOccurred())
			d, err := g.Define("d", tl.work("d", 10*time.Millisecond), "b", "c")
			Expect(err).NotTo(HaveOccurred())

			Expect(g.Execute(ctx, pool, true)).To(Succeed())

			Expect(d.IsComplete()).To(BeTrue())
			v, err := d.Result()
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal("d"))

			a, b, c, dd := tl.get("a"), tl.get("b"), tl.get("c"), tl.get("d")
			Expect(b.start).NotTo(BeTemporally("<", a.end))
			Expect(c.start).NotTo(BeTemporally("<", a.end))
			Expect(dd.start).NotTo(BeTemporally("<", b.end))
			Expect(dd.start).NotTo(BeTemporally("<", c.end))
			// b and c overlap on two workers
			Expect(b.start).To(BeTemporally("<", c.end))
			Expect(c.start).To(BeTemporally("<", b.end))
		})

		It("should never submit a task before its dependencies complete", func() {
			release := make(chan struct{})
			a, err := g.Define("a", func(ctx context.Context) (any, error) {
				<-release
				return nil, nil
			})
			Expect(err).NotTo(HaveOccurred())
			b, err := g.Define("b", noop, "a")
			Expect(err).NotTo(HaveOccurred())

			Expect(g.Execute(ctx, pool, false)).To(Succeed())

			Eventually(a.IsRunning, time.Second).Should(BeTrue())
			Consistently(func() scheduler.State { return b.State() }, 100*time.Millisecond).Should(Equal(scheduler.StateNew))
			Expect(b.Ready()).To(BeFalse())
			Expect(b.Dependencies()[0].Satisfied()).To(BeFalse())

			close(release)
			Expect(g.Wait(ctx)).To(Succeed())
			Expect(b.Ready()).To(BeTrue())
			Expect(b.Dependencies()[0].Satisfied()).To(BeTrue())
		})

		It("should fail when executed twice", func() {
			_, err := g.Define("a", noop)
			Expect(err).NotTo(HaveOccurred())
			Expect(g.Execute(ctx, pool, true)).To(Succeed())

			err = g.Execute(ctx, pool, true)
			Expect(srvErrors.IsUsageError(err)).To(BeTrue())
		})

		It("should succeed on an empty graph", func() {
			Expect(g.Execute(ctx, pool, true)).To(Succeed())
		})

		It("should abort a graph with an unknown prerequisite", func() {
			a, err := g.Define("a", noop, "missing")
			Expect(err).NotTo(HaveOccurred())

			err = g.Execute(ctx, pool, true)
			Expect(srvErrors.IsUsageError(err)).To(BeTrue())
			Expect(g.IsStopped()).To(BeTrue())

			_, err = a.Result()
			Expect(srvErrors.IsCancellationError(err)).To(BeTrue())
		})

		It("should reject a self dependency", func() {
			_, err := g.Define("a", noop, "a")
			Expect(err).NotTo(HaveOccurred())

			err = g.Execute(ctx, pool, true)
			Expect(err).To(MatchError(ContainSubstring("depends on itself")))
		})

		It("should report a dependency cycle", func() {
			_, err := g.Define("a", noop, "c")
			Expect(err).NotTo(HaveOccurred())
			_, err = g.Define("b", noop, "a")
			Expect(err).NotTo(HaveOccurred())
			_, err = g.Define("c", noop, "b")
			Expect(err).NotTo(HaveOccurred())

			err = g.Execute(ctx, pool, true)
			Expect(srvErrors.IsUsageError(err)).To(BeTrue())
			Expect(err).To(MatchError("dependency cycle: a -> c -> b -> a"))
		})

		It("should honor the wait deadline", func() {
			_, err := g.Define("slow", func(ctx context.Context) (any, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			})
			Expect(err).NotTo(HaveOccurred())

			waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
			defer cancel()
			err = g.Execute(waitCtx, pool, true)
			Expect(err).To(MatchError(context.DeadlineExceeded))

			g.RaiseError(err)
		})
	})

	Context("Readiness", func() {
		// Given a task with two prerequisites finishing at the same moment
		// When both complete concurrently on different workers
		// Then the dependent is submitted exactly once
		It("should submit a task with concurrent prerequisites exactly once", func() {
			for i := 0; i < 25; i++ {
				g := graph.New()
				counting := newCountingSubmitter(pool)

				var barrier sync.WaitGroup
				barrier.Add(2)
				meet := func(ctx context.Context) (any, error) {
					barrier.Done()
					barrier.Wait()
					return nil, nil
				}
				var ran atomic.Int32

				_, err := g.Define("left", meet)
				Expect(err).NotTo(HaveOccurred())
				_, err = g.Define("right", meet)
				Expect(err).NotTo(HaveOccurred())
				join, err := g.Define("join", func(ctx context.Context) (any, error) {
					ran.Add(1)
					return nil, nil
				}, "left", "right")
				Expect(err).NotTo(HaveOccurred())

				Expect(g.Execute(ctx, counting, true)).To(Succeed())
				Expect(counting.Count("join")).To(Equal(1))
				Expect(ran.Load()).To(Equal(int32(1)))
				Expect(join.SatisfiedCount()).To(Equal(2))
			}
		})

		It("should submit tasks without dependencies immediately", func() {
			counting := newCountingSubmitter(pool)
			for _, name := range []string{"x", "y", "z"} {
				_, err := g.Define(name, noop)
				Expect(err).NotTo(HaveOccurred())
			}

			Expect(g.Execute(ctx, counting, false)).To(Succeed())
			Expect(counting.Count("x")).To(Equal(1))
			Expect(counting.Count("y")).To(Equal(1))
			Expect(counting.Count("z")).To(Equal(1))
			Expect(g.Wait(ctx)).To(Succeed())
		})
	})

	Context("Failures", func() {
		// Given a task whose work returns "boom"
		// When the graph executes
		// Then its Result returns "boom" and its dependents still run
		It("should satisfy dependents of a failed task", func() {
			x, err := g.Define("x", func(ctx context.Context) (any, error) {
				return nil, errors.New("boom")
			})
			Expect(err).NotTo(HaveOccurred())
			var ran atomic.Bool
			y, err := g.Define("y", func(ctx context.Context) (any, error) {
				ran.Store(true)
				return "y", nil
			}, "x")
			Expect(err).NotTo(HaveOccurred())

			err = g.Execute(ctx, pool, true)
			Expect(err).To(MatchError("boom"))

			_, err = x.Result()
			Expect(err).To(MatchError("boom"))
			Expect(y.Wait(ctx)).To(Equal("y"))
			Expect(ran.Load()).To(BeTrue())
		})

		It("should let a work function check its prerequisite outcome", func() {
			_, err := g.Define("x", func(ctx context.Context) (any, error) {
				return nil, errors.New("boom")
			})
			Expect(err).NotTo(HaveOccurred())
			y, err := g.Define("y", func(ctx context.Context) (any, error) {
				x, err := g.Resolve("x")
				if err != nil {
					return nil, err
				}
				if _, err := x.Result(); err != nil {
					return nil, errors.New("prerequisite failed")
				}
				return "y", nil
			}, "x")
			Expect(err).NotTo(HaveOccurred())

			_ = g.Execute(ctx, pool, true)
			_, err = y.Result()
			Expect(err).To(MatchError("prerequisite failed"))
		})

		It("should join every failure with WaitAll", func() {
			for _, name := range []string{"f1", "ok", "f2"} {
				n := name
				_, err := g.Define(n, func(ctx context.Context) (any, error) {
					if n == "ok" {
						return nil, nil
					}
					return nil, errors.New(n + " failed")
				})
				Expect(err).NotTo(HaveOccurred())
			}

			Expect(g.Execute(ctx, pool, false)).To(Succeed())
			err := g.WaitAll(ctx)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(Equal("task \"f1\": f1 failed\ntask \"f2\": f2 failed"))
		})

		It("should abort the graph with StopOnFailure", func() {
			g = graph.New(graph.StopOnFailure())
			_, err := g.Define("fail", func(ctx context.Context) (any, error) {
				return nil, errors.New("boom")
			})
			Expect(err).NotTo(HaveOccurred())
			var ran atomic.Bool
			after, err := g.Define("after", func(ctx context.Context) (any, error) {
				ran.Store(true)
				return nil, nil
			}, "fail")
			Expect(err).NotTo(HaveOccurred())

			err = g.Execute(ctx, pool, true)
			Expect(err).To(MatchError("boom"))
			Expect(g.IsStopped()).To(BeTrue())

			_, err = after.Result()
			Expect(srvErrors.IsCancellationError(err)).To(BeTrue())
			Expect(err).To(MatchError(ContainSubstring(`task "fail" failed`)))
			Consistently(ran.Load, 100*time.Millisecond).Should(BeFalse())
		})

		It("should call a custom failure policy", func() {
			var seen atomic.Value
			g = graph.New(graph.WithFailurePolicy(func(t *graph.Task, err error) error {
				seen.Store(t.Name())
				return nil
			}))
			_, err := g.Define("fail", func(ctx context.Context) (any, error) {
				return nil, errors.New("boom")
			})
			Expect(err).NotTo(HaveOccurred())

			_ = g.Execute(ctx, pool, true)
			Eventually(seen.Load, time.Second).Should(Equal("fail"))
			Expect(g.IsStopped()).To(BeFalse())
		})
	})

	Context("RaiseError", func() {
		It("should release waiters and never submit the remaining tasks", func() {
			counting := newCountingSubmitter(pool)
			started := make(chan struct{})
			first, err := g.Define("first", func(ctx context.Context) (any, error) {
				close(started)
				<-ctx.Done()
				return nil, ctx.Err()
			})
			Expect(err).NotTo(HaveOccurred())
			second, err := g.Define("second", noop, "first")
			Expect(err).NotTo(HaveOccurred())

			Expect(g.Execute(ctx, counting, false)).To(Succeed())
			Eventually(started, time.Second).Should(BeClosed())

			errs := make(chan error, 1)
			go func() {
				_, err := second.Result()
				errs <- err
			}()

			g.RaiseError(errors.New("stop"))

			var got error
			Eventually(errs, time.Second).Should(Receive(&got))
			Expect(srvErrors.IsCancellationError(got)).To(BeTrue())
			Expect(got).To(MatchError(ContainSubstring("stop")))

			_, err = first.Result()
			Expect(srvErrors.IsCancellationError(err)).To(BeTrue())
			Consistently(func() int { return counting.Count("second") }, 100*time.Millisecond).Should(BeZero())
		})

		It("should keep the outcome of tasks that already completed", func() {
			done, err := g.Define("done", func(ctx context.Context) (any, error) {
				return nil, errors.New("original")
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(g.Execute(ctx, pool, true)).To(MatchError("original"))

			g.RaiseError(errors.New("abort"))
			_, err = done.Result()
			Expect(err).To(MatchError("original"))
		})

		It("should refuse to execute a stopped graph", func() {
			_, err := g.Define("a", noop)
			Expect(err).NotTo(HaveOccurred())
			g.RaiseError(errors.New("abort"))

			err = g.Execute(ctx, pool, true)
			Expect(srvErrors.IsUsageError(err)).To(BeTrue())
		})
	})

	Context("Pool shutdown", func() {
		It("should release graph waiters when the pool shuts down immediately", func() {
			started := make(chan struct{})
			_, err := g.Define("running", func(ctx context.Context) (any, error) {
				close(started)
				<-ctx.Done()
				return nil, ctx.Err()
			})
			Expect(err).NotTo(HaveOccurred())
			_, err = g.Define("next", noop, "running")
			Expect(err).NotTo(HaveOccurred())

			Expect(g.Execute(ctx, pool, false)).To(Succeed())
			Eventually(started, time.Second).Should(BeClosed())

			pool.ShutdownNow()

			errs := g.WaitAll(ctx)
			Expect(errs).To(HaveOccurred())
			next, err := g.Resolve("next")
			Expect(err).NotTo(HaveOccurred())
			Expect(next.IsComplete()).To(BeTrue())
			Expect(srvErrors.IsConcurrencyError(next.Err())).To(BeTrue())
		})
	})

	Context("Outcomes", func() {
		It("should report every task outcome", func() {
			var mu sync.Mutex
			outcomes := map[string]graph.Outcome{}
			g = graph.New(graph.WithOutcomeListener(func(o graph.Outcome) {
				mu.Lock()
				defer mu.Unlock()
				outcomes[o.Task] = o
			}))
			_, err := g.Define("ok", func(ctx context.Context) (any, error) { return 1, nil })
			Expect(err).NotTo(HaveOccurred())
			_, err = g.Define("ko", func(ctx context.Context) (any, error) { return nil, errors.New("ko") }, "ok")
			Expect(err).NotTo(HaveOccurred())

			_ = g.Execute(ctx, pool, true)

			// listeners run after waiters are released
			Eventually(func() int {
				mu.Lock()
				defer mu.Unlock()
				return len(outcomes)
			}, time.Second).Should(Equal(2))

			mu.Lock()
			defer mu.Unlock()
			Expect(outcomes["ok"].Value).To(Equal(1))
			Expect(outcomes["ok"].Err).NotTo(HaveOccurred())
			Expect(outcomes["ko"].Err).To(MatchError("ko"))
			Expect(outcomes["ko"].FinishedAt).NotTo(BeTemporally("<", outcomes["ko"].StartedAt))
		})
	})

	Context("Priority", func() {
		It("should submit priority tasks ahead of queued work", func() {
			single := scheduler.NewScheduler(1, "single")
			defer single.Close()

			var mu sync.Mutex
			var order []string
			record := func(name string) func(ctx context.Context) (any, error) {
				return func(ctx context.Context) (any, error) {
					mu.Lock()
					defer mu.Unlock()
					order = append(order, name)
					return nil, nil
				}
			}

			_, err := g.Define("gate", func(ctx context.Context) (any, error) {
				time.Sleep(20 * time.Millisecond)
				return nil, nil
			})
			Expect(err).NotTo(HaveOccurred())
			_, err = g.Define("bulk", record("bulk"))
			Expect(err).NotTo(HaveOccurred())
			_, err = g.DefineTask("setup", record("setup"), graph.Priority())
			Expect(err).NotTo(HaveOccurred())

			Expect(g.Execute(ctx, single, true)).To(Succeed())
			Expect(order).To(Equal([]string{"setup", "bulk"}))
		})
	})
})

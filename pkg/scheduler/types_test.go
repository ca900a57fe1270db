package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	srvErrors "github.com/kubev2v/taskrunner/pkg/errors"
	"github.com/kubev2v/taskrunner/pkg/scheduler"
)

var _ = Describe("Task", func() {
	noop := func(ctx context.Context) (any, error) { return "ok", nil }

	Context("Queued", func() {
		// Given a task that has been queued once
		// When it is queued again
		// Then every further attempt fails with a concurrency error
		It("should reject queueing a task more than once", func() {
			task := scheduler.NewTask(noop)

			Expect(task.Queued()).To(Succeed())
			Expect(task.IsQueued()).To(BeTrue())

			for range 2 {
				err := task.Queued()
				Expect(srvErrors.IsUsageError(err)).To(BeTrue())
				Expect(srvErrors.IsConcurrencyError(err)).To(BeTrue())
			}
		})

		It("should reject queueing a completed task", func() {
			task := scheduler.NewTask(noop)
			task.RaiseError(errors.New("stop"))

			err := task.Queued()
			Expect(srvErrors.IsConcurrencyError(err)).To(BeTrue())
		})
	})

	Context("Execute", func() {
		It("should move through queued, running and complete", func() {
			running := make(chan struct{})
			unblock := make(chan struct{})
			task := scheduler.NewTask(func(ctx context.Context) (any, error) {
				close(running)
				<-unblock
				return "v", nil
			}, scheduler.WithName("t1"))
			Expect(task.Name()).To(Equal("t1"))
			Expect(task.State()).To(Equal(scheduler.StateNew))

			Expect(task.Queued()).To(Succeed())
			go func() {
				_ = task.Execute(context.Background())
			}()

			Eventually(running, time.Second).Should(BeClosed())
			Expect(task.IsRunning()).To(BeTrue())

			close(unblock)
			v, err := task.Result()
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal("v"))
			Expect(task.IsComplete()).To(BeTrue())
			Expect(task.FinishedAt()).NotTo(BeTemporally("<", task.StartedAt()))
		})

		It("should refuse to execute a task that was never queued", func() {
			task := scheduler.NewTask(noop)
			err := task.Execute(context.Background())
			Expect(srvErrors.IsUsageError(err)).To(BeTrue())
		})

		It("should skip the work of a task completed while queued", func() {
			var ran atomic.Bool
			task := scheduler.NewTask(func(ctx context.Context) (any, error) {
				ran.Store(true)
				return nil, nil
			})
			Expect(task.Queued()).To(Succeed())
			task.RaiseError(errors.New("aborted"))

			Expect(task.Execute(context.Background())).To(Succeed())
			Expect(ran.Load()).To(BeFalse())
			_, err := task.Result()
			Expect(err).To(MatchError("aborted"))
		})

		It("should report interruption when the worker context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			task := scheduler.NewTask(func(ctx context.Context) (any, error) {
				cancel()
				<-ctx.Done()
				return "late", nil
			})
			Expect(task.Queued()).To(Succeed())

			err := task.Execute(ctx)
			Expect(srvErrors.IsCancellationError(err)).To(BeTrue())

			_, err = task.Result()
			Expect(err).To(MatchError(ContainSubstring("interrupted by shutdown")))
		})
	})

	Context("RaiseError", func() {
		It("should release a blocked waiter without running the work", func() {
			task := scheduler.NewTask(noop)

			errs := make(chan error, 1)
			go func() {
				_, err := task.Result()
				errs <- err
			}()

			Expect(task.RaiseError(errors.New("injected"))).To(BeTrue())
			Eventually(errs, time.Second).Should(Receive(MatchError("injected")))
			Expect(task.Err()).To(MatchError("injected"))
		})

		It("should not overwrite the outcome of a completed task", func() {
			task := scheduler.NewTask(func(ctx context.Context) (any, error) {
				return nil, errors.New("original")
			})
			Expect(task.Queued()).To(Succeed())
			Expect(task.Execute(context.Background())).To(Succeed())

			Expect(task.RaiseError(errors.New("abort"))).To(BeFalse())
			_, err := task.Result()
			Expect(err).To(MatchError("original"))
		})

		It("should cancel running work with the injected cause", func() {
			started := make(chan struct{})
			causes := make(chan error, 1)
			task := scheduler.NewTask(func(ctx context.Context) (any, error) {
				close(started)
				<-ctx.Done()
				causes <- context.Cause(ctx)
				return nil, ctx.Err()
			})
			Expect(task.Queued()).To(Succeed())
			go func() {
				_ = task.Execute(context.Background())
			}()
			Eventually(started, time.Second).Should(BeClosed())

			abort := errors.New("abort")
			task.RaiseError(abort)

			Eventually(causes, time.Second).Should(Receive(MatchError(abort)))
			_, err := task.Result()
			Expect(err).To(MatchError(abort))
		})
	})

	Context("Wait", func() {
		It("should give up when the context expires", func() {
			task := scheduler.NewTask(noop)
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()

			_, err := task.Wait(ctx)
			Expect(err).To(MatchError(context.DeadlineExceeded))
		})
	})
})

package future_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/taskrunner/pkg/future"
)

var _ = Describe("Future", func() {
	var f *future.Future[string]

	BeforeEach(func() {
		f = future.NewFuture[string]()
	})

	Describe("Complete", func() {
		It("should keep the first result", func() {
			Expect(f.Complete("first", nil)).To(BeTrue())
			Expect(f.Complete("second", errors.New("late"))).To(BeFalse())

			v, err := f.Result()
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal("first"))
		})

		It("should close the done channel", func() {
			Expect(f.Done()).NotTo(BeClosed())
			f.Complete("x", nil)
			Expect(f.Done()).To(BeClosed())
			Expect(f.IsComplete()).To(BeTrue())
		})
	})

	Describe("Result", func() {
		// Given several goroutines blocked on the same future
		// When the future is completed
		// Then all of them receive the same value and error
		It("should release every waiter with the same result", func() {
			const waiters = 8
			boom := errors.New("boom")

			var wg sync.WaitGroup
			errs := make(chan error, waiters)
			for range waiters {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := f.Result()
					errs <- err
				}()
			}

			Consistently(errs, 100*time.Millisecond).ShouldNot(Receive())
			f.Complete("", boom)
			wg.Wait()
			close(errs)

			for err := range errs {
				Expect(err).To(MatchError(boom))
			}
		})
	})

	Describe("Wait", func() {
		It("should return the context error when the deadline expires first", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			_, err := f.Wait(ctx)
			Expect(err).To(MatchError(context.DeadlineExceeded))
			Expect(f.IsComplete()).To(BeFalse())
		})

		It("should return the result when completed before the deadline", func() {
			go f.Complete("ok", nil)

			v, err := f.Wait(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal("ok"))
		})
	})

	Describe("OnComplete", func() {
		It("should run callbacks registered before completion once", func() {
			var calls atomic.Int32
			f.OnComplete(func(r future.Result[string]) { calls.Add(1) })
			f.OnComplete(func(r future.Result[string]) { calls.Add(1) })

			f.Complete("v", nil)
			f.Complete("v", nil)

			Expect(calls.Load()).To(Equal(int32(2)))
		})

		It("should run callbacks registered after completion immediately", func() {
			f.Complete("v", nil)

			var got string
			f.OnComplete(func(r future.Result[string]) { got = r.Data })
			Expect(got).To(Equal("v"))
		})
	})

	Describe("Peek", func() {
		It("should report pending futures", func() {
			_, ok := f.Peek()
			Expect(ok).To(BeFalse())

			f.Complete("v", nil)
			r, ok := f.Peek()
			Expect(ok).To(BeTrue())
			Expect(r.Data).To(Equal("v"))
		})
	})
})

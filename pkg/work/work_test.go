package work_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/taskrunner/pkg/work"
)

var _ = Describe("Command", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	// Given a command writing to stdout and stderr
	// When it runs
	// Then both streams are captured and the exit code is zero
	It("should capture the combined output", func() {
		w := work.Command(work.CommandSpec{Name: "sh", Args: []string{"-c", "echo out; echo err 1>&2"}})

		v, err := w(ctx)

		Expect(err).NotTo(HaveOccurred())
		res := v.(*work.CommandResult)
		Expect(res.ExitCode).To(Equal(0))
		Expect(res.Output).To(ContainSubstring("out"))
		Expect(res.Output).To(ContainSubstring("err"))
	})

	It("should return an exit error with the output", func() {
		w := work.Command(work.CommandSpec{Name: "sh", Args: []string{"-c", "echo failing; exit 3"}})

		v, err := w(ctx)

		Expect(work.IsExitError(err)).To(BeTrue())
		Expect(err).To(MatchError(`command "sh" exited with code 3`))
		res := v.(*work.CommandResult)
		Expect(res.ExitCode).To(Equal(3))
		Expect(res.Output).To(Equal("failing\n"))
	})

	It("should pass environment variables and working directory", func() {
		dir := GinkgoT().TempDir()
		w := work.Command(work.CommandSpec{
			Name: "sh",
			Args: []string{"-c", "echo $GREETING; pwd"},
			Dir:  dir,
			Env:  map[string]string{"GREETING": "hello"},
		})

		v, err := w(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(v.(*work.CommandResult).Output).To(ContainSubstring("hello"))
		Expect(v.(*work.CommandResult).Output).To(ContainSubstring(dir))
	})

	It("should fail for an unknown executable", func() {
		w := work.Command(work.CommandSpec{Name: "definitely-not-a-command-on-path"})

		_, err := w(ctx)

		Expect(err).To(HaveOccurred())
		Expect(work.IsExitError(err)).To(BeFalse())
	})

	It("should kill the process when the context is cancelled", func() {
		cctx, cancel := context.WithCancelCause(ctx)
		cause := errors.New("stop")
		time.AfterFunc(50*time.Millisecond, func() { cancel(cause) })

		start := time.Now()
		_, err := work.Command(work.CommandSpec{Name: "sleep", Args: []string{"10"}})(cctx)

		Expect(err).To(MatchError(cause))
		Expect(time.Since(start)).To(BeNumerically("<", 5*time.Second))
	})
})

var _ = Describe("WithTimeout", func() {
	It("should cancel work running longer than the timeout", func() {
		w := work.WithTimeout(func(ctx context.Context) (any, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}, 20*time.Millisecond)

		_, err := w(context.Background())
		Expect(err).To(MatchError(context.DeadlineExceeded))
	})

	It("should leave work unchanged without a timeout", func() {
		w := work.WithTimeout(func(ctx context.Context) (any, error) {
			_, ok := ctx.Deadline()
			return ok, nil
		}, 0)

		v, err := w(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(BeFalse())
	})
})

var _ = Describe("WithRetry", func() {
	fast := work.WithInitialInterval(time.Millisecond)

	// Given a work failing twice before succeeding
	// When it is wrapped with two retries
	// Then it succeeds on the third attempt
	It("should retry until the work succeeds", func() {
		var calls atomic.Int32
		w := work.WithRetry(func(ctx context.Context) (any, error) {
			if calls.Add(1) < 3 {
				return nil, errors.New("flaky")
			}
			return "ok", nil
		}, 2, fast)

		v, err := w(context.Background())

		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal("ok"))
		Expect(calls.Load()).To(Equal(int32(3)))
	})

	It("should return the last error and value once retries are exhausted", func() {
		var calls atomic.Int32
		var retried []int
		w := work.WithRetry(func(ctx context.Context) (any, error) {
			n := calls.Add(1)
			return n, errors.New("always")
		}, 2, fast, work.OnRetry(func(attempt int, err error, next time.Duration) {
			retried = append(retried, attempt)
		}))

		v, err := w(context.Background())

		Expect(err).To(MatchError("always"))
		Expect(v).To(Equal(int32(3)))
		Expect(calls.Load()).To(Equal(int32(3)))
		Expect(retried).To(Equal([]int{1, 2}))
	})

	It("should not retry a cancelled work", func() {
		ctx, cancel := context.WithCancel(context.Background())
		var calls atomic.Int32
		w := work.WithRetry(func(ctx context.Context) (any, error) {
			calls.Add(1)
			cancel()
			return nil, ctx.Err()
		}, 5, fast)

		_, err := w(ctx)

		Expect(err).To(MatchError(context.Canceled))
		Expect(calls.Load()).To(Equal(int32(1)))
	})

	It("should run the work once without retries", func() {
		var calls atomic.Int32
		w := work.WithRetry(func(ctx context.Context) (any, error) {
			calls.Add(1)
			return nil, errors.New("once")
		}, 0)

		_, err := w(context.Background())
		Expect(err).To(MatchError("once"))
		Expect(calls.Load()).To(Equal(int32(1)))
	})
})

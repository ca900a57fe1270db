package work

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kubev2v/taskrunner/pkg/scheduler"
)

// CommandSpec describes an external process.
type CommandSpec struct {
	Name string
	Args []string
	Dir  string
	// Env is added to the environment of the current process.
	Env map[string]string
}

// CommandResult is the value produced by a Command work, also when it fails.
type CommandResult struct {
	ExitCode int
	Output   string
	Duration time.Duration
}

// ExitError is returned when the process ran and exited with a non-zero code.
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command %q exited with code %d", e.Command, e.Code)
}

func IsExitError(err error) bool {
	var e *ExitError
	return errors.As(err, &e)
}

// Command returns a Work running spec. The process is killed when the work
// context is cancelled. Standard output and error are captured together.
func Command(spec CommandSpec) scheduler.Work {
	return func(ctx context.Context) (any, error) {
		log := zap.S().Named("work").With("command", spec.Name)

		cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)
		cmd.Dir = spec.Dir
		if len(spec.Env) > 0 {
			cmd.Env = append(os.Environ(), envList(spec.Env)...)
		}

		var output bytes.Buffer
		cmd.Stdout = &output
		cmd.Stderr = &output

		start := time.Now()
		err := cmd.Run()
		result := &CommandResult{
			Output:   output.String(),
			Duration: time.Since(start),
		}

		if err == nil {
			log.Debugw("command succeeded", "duration", result.Duration)
			return result, nil
		}

		if ctx.Err() != nil {
			result.ExitCode = -1
			return result, context.Cause(ctx)
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			log.Debugw("command failed", "exit_code", result.ExitCode, "duration", result.Duration)
			return result, &ExitError{Command: spec.Name, Code: result.ExitCode}
		}

		result.ExitCode = -1
		return result, fmt.Errorf("failed to run command %q: %w", spec.Name, err)
	}
}

func envList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	list := make([]string, 0, len(keys))
	for _, k := range keys {
		list = append(list, k+"="+env[k])
	}
	return list
}

package orchestrator

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner abstracts external-process execution for testability.
type CommandRunner interface {
	Run(ctx context.Context, program string, args []string) (stdout string, stderr string, exitCode int, err error)
}

// ExecRunner implements CommandRunner on os/exec. Cancelling the context
// kills the child process.
type ExecRunner struct{}

func (e *ExecRunner) Run(ctx context.Context, program string, args []string) (string, string, int, error) {
	cmd := exec.CommandContext(ctx, program, args...)

	var stdoutBuf, stderrBuf strings.Builder
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			// The process never started: missing executable, permission
			// denied, or similar.
			return stdoutBuf.String(), stderrBuf.String(), -1, fmt.Errorf("exec %s: %w", program, err)
		}
	}
	return stdoutBuf.String(), stderrBuf.String(), exitCode, nil
}

package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/bashhack/gitloop/internal/errors"
)

// CommandExecutor runs external commands on behalf of the git helpers.
type CommandExecutor interface {
	// Execute runs a command and reports only whether it succeeded.
	Execute(ctx context.Context, name string, args ...string) error

	// ExecuteWithOutput runs a command and returns its stdout.
	ExecuteWithOutput(ctx context.Context, name string, args ...string) (string, error)
}

// waitDelay bounds how long Run waits for the output pipes to close after the
// process group was killed.
const waitDelay = 2 * time.Second

// ExecExecutor is the default CommandExecutor. It delegates to os/exec and
// bounds every invocation by Timeout when Timeout is positive.
type ExecExecutor struct {
	Timeout time.Duration
}

// NewExecExecutor creates an ExecExecutor with the given per-invocation timeout.
// A zero timeout leaves invocations bounded only by the caller's context.
func NewExecExecutor(timeout time.Duration) *ExecExecutor {
	return &ExecExecutor{Timeout: timeout}
}

// Execute implements CommandExecutor.Execute
func (e *ExecExecutor) Execute(ctx context.Context, name string, args ...string) error {
	_, err := e.run(ctx, name, args)
	return err
}

// ExecuteWithOutput implements CommandExecutor.ExecuteWithOutput
func (e *ExecExecutor) ExecuteWithOutput(ctx context.Context, name string, args ...string) (string, error) {
	return e.run(ctx, name, args)
}

func (e *ExecExecutor) run(ctx context.Context, name string, args []string) (string, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		// ssh, credential helpers and hooks run as children of git and hold
		// the output pipes; kill the whole group.
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	if err == nil {
		return stdout.String(), nil
	}

	cause := err
	if ctxErr := ctx.Err(); ctxErr != nil {
		if e.Timeout > 0 && ctxErr == context.DeadlineExceeded {
			cause = fmt.Errorf("timed out after %s: %w", e.Timeout, ctxErr)
		} else {
			cause = fmt.Errorf("%w: %w", ctxErr, err)
		}
	}

	// Both stdout and stderr are kept: git reports some conditions, such as
	// "nothing to commit", on stdout while exiting non-zero.
	output := strings.TrimSpace(strings.Join(nonEmpty(stdout.String(), stderr.String()), "\n"))

	return stdout.String(), errors.NewGitError(operationName(name, args), args,
		fmt.Errorf("%w: %w", errors.ErrGitOperationFailed, cause), output)
}

// operationName picks the subcommand out of a git invocation, skipping the
// leading "-C <dir>" added by Repo.
func operationName(name string, args []string) string {
	for i := 0; i < len(args); i++ {
		if args[i] == "-C" {
			i++
			continue
		}
		if strings.HasPrefix(args[i], "-") {
			continue
		}
		return args[i]
	}
	return name
}

func nonEmpty(parts ...string) []string {
	var out []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, strings.TrimSpace(p))
		}
	}
	return out
}

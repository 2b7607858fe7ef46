package runner

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bashhack/gitloop/internal/constants"
	"github.com/bashhack/gitloop/internal/errors"
	"github.com/bashhack/gitloop/internal/logger"
)

// commandContext is swapped out in tests.
var commandContext = exec.CommandContext

// waitDelay bounds how long Run waits for output pipes after the process
// group has been killed.
const waitDelay = 5 * time.Second

// Result is the captured outcome of one command run.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner executes the user command from the repository root.
type Runner struct {
	repoPath string
	path     string
	timeout  time.Duration
	logger   logger.Logger
}

// New creates a Runner for commandPath. A relative commandPath is resolved
// against repoPath; an empty one means cmd.sh. A zero timeout disables the
// per-run limit.
func New(repoPath, commandPath string, timeout time.Duration, log logger.Logger) *Runner {
	if commandPath == "" {
		commandPath = constants.DefaultCommandPath
	}
	if !filepath.IsAbs(commandPath) {
		commandPath = filepath.Join(repoPath, commandPath)
	}
	return &Runner{
		repoPath: repoPath,
		path:     commandPath,
		timeout:  timeout,
		logger:   log,
	}
}

// Path returns the resolved command path.
func (r *Runner) Path() string {
	return r.path
}

// Run executes the command once and captures its output. A non-zero exit
// status is reported in Result.ExitCode with a nil error. Errors are reserved
// for a missing command, a timeout, cancellation, or a failure to start.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	info, err := os.Stat(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{}, errors.NewCommandError(r.path, errors.ErrCommandNotFound)
		}
		return Result{}, errors.NewCommandError(r.path, err)
	}
	if info.IsDir() {
		return Result{}, errors.NewCommandError(r.path, errors.Wrap(errors.ErrCommandNotFound, "is a directory"))
	}

	direct := info.Mode().Perm()&0o111 != 0
	result, err := r.run(ctx, direct)

	// An executable without a shebang cannot be exec'd directly; let the
	// shell interpret it as it would from a terminal.
	if direct && errors.Is(err, syscall.ENOEXEC) {
		r.logger.Warning("%s is not directly executable, retrying through sh", r.path)
		result, err = r.run(ctx, false)
	}
	return result, err
}

func (r *Runner) run(ctx context.Context, direct bool) (Result, error) {
	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var cmd *exec.Cmd
	if direct {
		cmd = commandContext(runCtx, r.path)
	} else {
		cmd = commandContext(runCtx, "sh", r.path)
	}

	var stdout, stderr bytes.Buffer
	cmd.Dir = r.repoPath
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		// Kill the whole group so children of the script die with it.
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = waitDelay

	r.logger.Info("running %s (direct=%v)", r.path, direct)
	start := time.Now()
	err := cmd.Run()

	result := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if ctx.Err() != nil {
		return result, ctx.Err()
	}
	if runCtx.Err() == context.DeadlineExceeded {
		return result, errors.NewCommandError(r.path, errors.Wrapf(errors.ErrCommandTimeout, "exceeded %s", r.timeout))
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, errors.NewCommandError(r.path, err)
	}

	return result, nil
}

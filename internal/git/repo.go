package git

import (
	"context"
	"os/exec"
	"strings"

	"github.com/bashhack/gitloop/internal/errors"
	"github.com/bashhack/gitloop/internal/logger"
)

// Repo runs git commands against one working tree.
type Repo struct {
	path     string
	executor CommandExecutor
	logger   logger.Logger
}

// NewRepo creates a Repo rooted at path.
func NewRepo(path string, executor CommandExecutor, log logger.Logger) *Repo {
	return &Repo{
		path:     path,
		executor: executor,
		logger:   log,
	}
}

// Path returns the repository root.
func (r *Repo) Path() string {
	return r.path
}

// IsRepository checks if the given path is inside a git working tree.
// Exit code 128 is git's generic fatal error and is reported as (false, nil);
// anything else (git missing, permissions) comes back as an error.
func IsRepository(ctx context.Context, path string) (bool, error) {
	executor := NewExecExecutor(0)
	if err := executor.Execute(ctx, "git", "-C", path, "rev-parse", "--is-inside-work-tree"); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 128 {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CurrentBranch returns the short name of HEAD ("HEAD" when detached).
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	output, err := r.runGitWithOutput(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// runGit executes a git command in the repository directory.
func (r *Repo) runGit(ctx context.Context, args ...string) error {
	allArgs := append([]string{"-C", r.path}, args...)
	r.logger.Info("git %s", strings.Join(args, " "))
	return r.executor.Execute(ctx, "git", allArgs...)
}

// runGitWithOutput executes a git command and returns its stdout.
func (r *Repo) runGitWithOutput(ctx context.Context, args ...string) (string, error) {
	allArgs := append([]string{"-C", r.path}, args...)
	r.logger.Info("git %s", strings.Join(args, " "))
	return r.executor.ExecuteWithOutput(ctx, "git", allArgs...)
}

// lines splits command output into trimmed, non-empty lines.
func lines(output string) []string {
	var result []string
	for _, line := range strings.Split(output, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			result = append(result, line)
		}
	}
	return result
}

package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bashhack/gitloop/internal/constants"
	"github.com/bashhack/gitloop/internal/errors"
)

// CommitResult describes what CommitAndPush did.
type CommitResult struct {
	Committed   bool
	Pushed      bool
	SetUpstream bool

	// Warning holds the push failure, if any. Push failures never fail the
	// iteration.
	Warning string
}

// Committer records the latest command output in the repository and
// publishes it to origin.
type Committer struct {
	repo   *Repo
	branch string
	now    func() time.Time
}

// NewCommitter creates a Committer that pushes to branch.
func NewCommitter(repo *Repo, branch string) *Committer {
	if branch == "" {
		branch = constants.DefaultBranch
	}
	return &Committer{
		repo:   repo,
		branch: branch,
		now:    time.Now,
	}
}

// WithClock replaces the clock used for commit timestamps.
func (c *Committer) WithClock(now func() time.Time) *Committer {
	c.now = now
	return c
}

// WriteOutputs overwrites the stdout file with out and the stdin file with
// errText. The stderr capture lands in "stdin"; the name is historical and
// downstream consumers depend on it.
func (c *Committer) WriteOutputs(out, errText string) error {
	files := []struct {
		name    string
		content string
	}{
		{constants.OutputFileName, out},
		{constants.ErrorFileName, errText},
	}

	for _, f := range files {
		path := filepath.Join(c.repo.Path(), f.name)
		if err := os.WriteFile(path, []byte(f.content), 0o644); err != nil {
			return errors.Wrapf(err, "failed to write %s", f.name)
		}
	}
	return nil
}

// Stage adds the two output files to the index.
func (c *Committer) Stage(ctx context.Context) error {
	if err := c.repo.runGit(ctx, "add", "--", constants.OutputFileName, constants.ErrorFileName); err != nil {
		return errors.Wrap(err, "failed to stage outputs")
	}
	return nil
}

// HasStagedChanges reports whether the index differs from HEAD.
func (c *Committer) HasStagedChanges(ctx context.Context) (bool, error) {
	output, err := c.repo.runGitWithOutput(ctx, "diff", "--cached", "--name-only")
	if err != nil {
		return false, errors.Wrap(err, "failed to list staged changes")
	}
	return len(lines(output)) > 0, nil
}

// CommitMessage builds the commit message for the given instant.
func CommitMessage(at time.Time) string {
	return fmt.Sprintf("%s %s", constants.CommitMessagePrefix, at.UTC().Format(constants.CommitTimestampFormat))
}

// CommitAndPush commits whatever is staged and pushes it. With nothing staged
// it does nothing. When git reports "nothing to commit" (the index was
// emptied since HasStagedChanges) it returns an error wrapping
// ErrNothingToCommit and does not push.
func (c *Committer) CommitAndPush(ctx context.Context) (CommitResult, error) {
	var result CommitResult

	staged, err := c.HasStagedChanges(ctx)
	if err != nil {
		return result, err
	}
	if !staged {
		return result, nil
	}

	message := CommitMessage(c.now())
	if err := c.repo.runGit(ctx, "commit", "-m", message); err != nil {
		if errors.OutputContains(err, "nothing to commit") {
			c.repo.logger.Info("git reported nothing to commit; skipping push")
			return result, fmt.Errorf("%w: %w", errors.ErrNothingToCommit, err)
		}
		return result, errors.Wrap(err, "failed to commit outputs")
	}
	result.Committed = true
	c.repo.logger.Success("Committed outputs: %s", message)

	hasUpstream, err := c.hasUpstream(ctx)
	if err != nil {
		result.Warning = fmt.Sprintf("upstream query failed: %v", err)
		c.repo.logger.WarningToUser("%s", result.Warning)
		return result, nil
	}

	if hasUpstream {
		err = c.repo.runGit(ctx, "push")
	} else {
		result.SetUpstream = true
		err = c.repo.runGit(ctx, "push", "--set-upstream", constants.RemoteName, c.branch)
	}

	if err != nil {
		result.SetUpstream = false
		result.Warning = fmt.Sprintf("push failed: %v", err)
		c.repo.logger.WarningToUser("%s", result.Warning)
		return result, nil
	}

	result.Pushed = true
	c.repo.logger.Success("Pushed to %s/%s", constants.RemoteName, c.branch)
	return result, nil
}

// hasUpstream reports whether the current branch tracks a remote branch.
// git exits non-zero with "no upstream configured" when it does not.
func (c *Committer) hasUpstream(ctx context.Context) (bool, error) {
	output, err := c.repo.runGitWithOutput(ctx, "rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{u}")
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false, err
		}
		return false, nil
	}
	return len(lines(output)) > 0, nil
}

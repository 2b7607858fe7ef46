package git

import (
	"context"
	"fmt"

	"github.com/bashhack/gitloop/internal/constants"
	"github.com/bashhack/gitloop/internal/errors"
)

// Synchronizer brings the working tree up to date with origin before each
// command run.
type Synchronizer struct {
	repo      *Repo
	branch    string
	remoteURL string
}

// SyncResult describes what Sync did.
type SyncResult struct {
	// OriginAdded is true when the origin remote had to be created.
	OriginAdded bool

	// SwitchedFrom holds the previous branch when a checkout happened.
	SwitchedFrom string

	// Warnings lists fetch and pull failures that did not stop the sync.
	Warnings []string
}

// NewSynchronizer creates a Synchronizer that keeps repo on branch and adds
// remoteURL as origin when no origin exists.
func NewSynchronizer(repo *Repo, branch, remoteURL string) *Synchronizer {
	if branch == "" {
		branch = constants.DefaultBranch
	}
	if remoteURL == "" {
		remoteURL = constants.DefaultRemoteURL
	}
	return &Synchronizer{
		repo:      repo,
		branch:    branch,
		remoteURL: remoteURL,
	}
}

// Branch returns the branch the Synchronizer keeps checked out.
func (s *Synchronizer) Branch() string {
	return s.branch
}

// EnsureOrigin adds the origin remote when it is missing. An existing origin
// is left alone regardless of its URL.
func (s *Synchronizer) EnsureOrigin(ctx context.Context) (bool, error) {
	output, err := s.repo.runGitWithOutput(ctx, "remote")
	if err != nil {
		return false, errors.Wrap(err, "failed to list remotes")
	}

	for _, remote := range lines(output) {
		if remote == constants.RemoteName {
			return false, nil
		}
	}

	if err := s.repo.runGit(ctx, "remote", "add", constants.RemoteName, s.remoteURL); err != nil {
		return false, errors.Wrap(err, "failed to add origin remote")
	}
	s.repo.logger.InfoToUser("Added remote %s -> %s", constants.RemoteName, s.remoteURL)
	return true, nil
}

// EnsureOnBranch checks out the target branch when HEAD is elsewhere. It
// returns the branch it switched away from, or "" when no checkout was needed.
// A failed checkout wraps both ErrCheckoutFailed and the git error.
func (s *Synchronizer) EnsureOnBranch(ctx context.Context) (string, error) {
	current, err := s.repo.CurrentBranch(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: could not determine current branch: %w", errors.ErrCheckoutFailed, err)
	}

	if current == s.branch {
		return "", nil
	}

	if err := s.repo.runGit(ctx, "checkout", s.branch); err != nil {
		return "", fmt.Errorf("%w: checkout %s: %w", errors.ErrCheckoutFailed, s.branch, err)
	}
	s.repo.logger.InfoToUser("Switched from %s to %s", current, s.branch)
	return current, nil
}

// PullLatest fetches the branch and rebases onto it with autostash. Failures
// are logged and returned as warnings; neither step aborts the iteration.
func (s *Synchronizer) PullLatest(ctx context.Context) []string {
	var warnings []string

	if err := s.repo.runGit(ctx, "fetch", constants.RemoteName, s.branch); err != nil {
		msg := fmt.Sprintf("fetch %s/%s failed: %v", constants.RemoteName, s.branch, err)
		s.repo.logger.WarningToUser("%s", msg)
		warnings = append(warnings, msg)
	}

	if err := s.repo.runGit(ctx, "pull", "--rebase", "--autostash", constants.RemoteName, s.branch); err != nil {
		msg := fmt.Sprintf("pull --rebase %s/%s failed: %v", constants.RemoteName, s.branch, err)
		s.repo.logger.WarningToUser("%s", msg)
		warnings = append(warnings, msg)
	}

	return warnings
}

// Sync runs EnsureOrigin, EnsureOnBranch and PullLatest in order.
func (s *Synchronizer) Sync(ctx context.Context) (SyncResult, error) {
	var result SyncResult

	added, err := s.EnsureOrigin(ctx)
	if err != nil {
		return result, err
	}
	result.OriginAdded = added

	previous, err := s.EnsureOnBranch(ctx)
	if err != nil {
		return result, err
	}
	result.SwitchedFrom = previous

	result.Warnings = s.PullLatest(ctx)
	return result, nil
}

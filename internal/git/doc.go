// Package git wraps the git command line for gitloop.
//
// Everything here shells out to the git binary through a CommandExecutor.
// The default ExecExecutor bounds each invocation with a timeout and turns
// failures into *errors.GitError values carrying the subcommand, its
// arguments and the captured output, so callers can match on text such as
// "nothing to commit".
//
// # Core Components
//
//   - Repo: a working tree plus the executor used to drive it
//   - Synchronizer: makes sure origin exists, the target branch is checked
//     out, and the branch is rebased onto origin with autostash
//   - Committer: writes the captured command output to the stdout and stdin
//     files, stages them, commits when the index changed, and pushes
//
// # Failure Handling
//
// Fetch, pull and push failures are reported as warnings and never returned
// as errors. A failed checkout wraps errors.ErrCheckoutFailed, which the loop
// treats as fatal for the iteration. Any other failure is returned as-is.
//
// # Usage
//
//	repo := git.NewRepo(path, git.NewExecExecutor(2*time.Minute), log)
//	sync := git.NewSynchronizer(repo, "main", remoteURL)
//	committer := git.NewCommitter(repo, "main")
//
//	if _, err := sync.Sync(ctx); err != nil {
//	    return err
//	}
//	if err := committer.WriteOutputs(stdout, stderr); err != nil {
//	    return err
//	}
//	if err := committer.Stage(ctx); err != nil {
//	    return err
//	}
//	result, err := committer.CommitAndPush(ctx)
package git

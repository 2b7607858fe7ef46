package constants

import "time"

// Fixed names at the repository root.
const (
	// OutputFileName receives the captured standard output of the command.
	OutputFileName = "stdout"

	// ErrorFileName receives the captured standard error of the command.
	// The name is kept as "stdin" for compatibility with existing repositories.
	ErrorFileName = "stdin"

	// LockFileName is the hidden PID lock file.
	LockFileName = ".gitloop.lock"

	// DefaultCommandPath is the command run each iteration, relative to the repository root.
	DefaultCommandPath = "cmd.sh"
)

// Git defaults.
const (
	// RemoteName is the only remote gitloop manages.
	RemoteName = "origin"

	// DefaultBranch is the branch results are committed to.
	DefaultBranch = "main"

	// DefaultRemoteURL is added as origin when a repository has no origin remote.
	DefaultRemoteURL = "git@github.com:bashhack/gitloop-results.git"

	// CommitMessagePrefix starts every result commit message.
	CommitMessagePrefix = "gitloop: update outputs"

	// CommitTimestampFormat is ISO-8601 UTC with seconds precision.
	CommitTimestampFormat = "2006-01-02T15:04:05Z"
)

// Timing defaults.
const (
	DefaultIntervalSeconds = 60
	MinIntervalSeconds     = 1

	DefaultGitTimeout     = 2 * time.Minute
	DefaultCommandTimeout = 10 * time.Minute
)

// Tagline is shown in the command help.
const Tagline = "Run a command on an interval and keep its output under version control."

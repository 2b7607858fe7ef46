// Package gitloop runs a command on an interval and keeps its output under
// version control.
//
// Each iteration gitloop makes sure the repository has an origin remote,
// checks out the target branch, pulls it with rebase, runs the command, and
// writes the command's standard output to "stdout" and its standard error to
// "stdin" at the repository root. When either file changed, the two files are
// committed with a timestamped message and pushed, setting the upstream on the
// first push.
//
// # Quick Start
//
//	# Navigate to your Git repository
//	cd /path/to/results-repo
//
//	# Put the command to run at the repository root
//	printf '#!/bin/sh\nuptime\n' > cmd.sh && chmod +x cmd.sh
//
//	# Run it every minute, or once
//	gitloop
//	gitloop --once
//
// # Module Structure
//
// The module is organized into these packages:
//
//   - cmd/gitloop: Command-line interface
//   - internal/config: Defaults, YAML file, dotenv, environment and flags
//   - internal/loop: The iteration driver and retry policy
//   - internal/git: Remote and branch synchronization, commit and push
//   - internal/runner: Running the command with a timeout
//   - internal/lock: PID lock file guarding the repository
//   - internal/logger: Console messages and the structured log
//   - internal/errors: Sentinel and structured error types
//   - internal/constants: File names and defaults
//
// # Configuration
//
//	# Run every five minutes
//	gitloop --interval 300
//
//	# Commit to a different branch
//	gitloop --branch results
//
//	# Read settings from a file
//	gitloop --config gitloop.yaml
//
//	# Refuse to run next to another instance
//	gitloop --lock-mode enforce
//
// # Failure Handling
//
// Failures to fetch, pull or push are reported and the loop carries on; the
// next iteration tries again. A command that exits non-zero still has its
// output committed. Only a failed checkout of the target branch stops an
// iteration before the command runs.
//
// # Platform Support
//
// gitloop runs on Linux, macOS and other Unix-like systems with a POSIX
// shell.
//
// # Implementation Notes
//
// gitloop uses the command-line Git executable rather than a Go Git library
// so that credentials, hooks and configuration behave exactly as they do for
// the user. Commands are executed through an abstracted interface that can be
// replaced for testing.
package gitloop

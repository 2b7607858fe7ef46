// Package main implements gitloop, a command runner that keeps its output
// under version control.
//
// Every iteration gitloop makes sure the repository has an origin remote,
// checks out the target branch, pulls the latest history, runs the command,
// writes the command's standard output to "stdout" and its standard error to
// "stdin" at the repository root, and commits and pushes the two files when
// their content changed.
//
// # Basic Usage
//
//	gitloop                         # run cmd.sh every 60 seconds
//	gitloop --once                  # run a single iteration and exit
//	gitloop --interval 300          # run every five minutes
//	gitloop --command ./collect.sh  # run a different script
//	gitloop --lock-mode enforce     # refuse to start next to another instance
//
// # Exit Status
//
// gitloop exits 0 after a signal-driven shutdown and after a single-shot run
// whose iteration did not fail fatally. A failed checkout in single-shot
// mode, an invalid configuration, a held lock in enforce mode, and hitting
// --max-retries all exit 1.
//
// # Signals
//
// SIGINT, SIGTERM and SIGHUP cancel the running iteration. The session
// summary is printed and the lock released. If the iteration does not stop
// within a few seconds the cleanup is forced.
package main

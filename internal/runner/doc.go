// Package runner executes the user command that gitloop publishes.
//
// The command is a script at a path relative to the repository root
// (cmd.sh unless configured otherwise). Scripts with any execute bit are run
// directly, everything else through sh. The working directory is the
// repository root and the environment is inherited.
//
// A Run captures stdout and stderr separately along with the exit code. A
// non-zero exit code is data, not an error: it is returned in Result with a
// nil error so the output still gets committed.
//
// Each run can be bounded by a timeout. The command is started in its own
// process group and the whole group is killed when the timeout fires or the
// context is cancelled; the returned error then wraps errors.ErrCommandTimeout
// or the context error respectively.
package runner

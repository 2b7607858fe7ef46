// Package constants provides application-wide constant values for the gitloop application.
//
// This package centralizes the fixed names and defaults that define gitloop's
// on-disk footprint and behaviour:
//
//   - OutputFileName / ErrorFileName: the two result files at the repository root
//   - LockFileName: the hidden PID lock file
//   - DefaultCommandPath: the command run every iteration
//   - DefaultRemoteURL, DefaultBranch: git defaults
//   - DefaultIntervalSeconds, MinIntervalSeconds and the timeouts
//
// # Usage
//
//	import "github.com/bashhack/gitloop/internal/constants"
//
//	out := filepath.Join(repoPath, constants.OutputFileName)
//
// # Compatibility
//
// ErrorFileName is "stdin" even though it holds standard error. Repositories
// already populated by earlier versions depend on that name; do not rename it.
package constants

// Package errors provides error handling utilities for the gitloop application.
//
// This package implements the sentinel errors and typed errors used throughout
// gitloop, while staying compatible with the standard library errors package.
//
// # Sentinels
//
// Callers classify failures with errors.Is:
//
//   - ErrCheckoutFailed: the target branch could not be checked out (fatal for the iteration)
//   - ErrCommandNotFound, ErrCommandTimeout: the user command could not run to completion
//   - ErrAlreadyRunning, ErrLockAcquisitionFailure: lock conflicts
//   - ErrGitOperationFailed: any git subprocess exited non-zero
//
// # Typed Errors
//
// GitError, LockError, ConfigError and CommandError carry the context of the
// failing operation and unwrap to their cause:
//
//	if err != nil {
//	    return errors.NewGitError("push", args, errors.Wrap(errors.ErrGitOperationFailed, err.Error()), output)
//	}
//
// # Thread Safety
//
// All types and functions in this package are safe for concurrent use
// by multiple goroutines.
package errors

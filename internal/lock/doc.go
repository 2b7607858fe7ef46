// Package lock keeps two gitloop processes from driving the same repository.
//
// A Locker owns a single file, .gitloop.lock, at the root of the repository
// it guards. Acquire creates the file exclusively, takes a non-blocking
// flock on it and writes the current PID. Release unlocks, closes and
// removes it.
//
// # Conflicts
//
// When the file already exists and its flock is held by a live process,
// Acquire returns an error wrapping errors.ErrAlreadyRunning. What happens
// next is the caller's decision, expressed as a Mode:
//
//   - ModeWarn: log the conflict and keep going without the lock
//   - ModeEnforce: refuse to start
//
// # Stale Locks
//
// A lock file whose recorded PID no longer exists (or that nobody holds a
// flock on) is treated as stale and taken over.
//
// # Usage
//
//	locker, err := lock.New(repoPath)
//	if err != nil {
//	    return err
//	}
//	if err := locker.Acquire(); err != nil {
//	    return err
//	}
//	defer locker.Release()
//
// A Locker is not safe for concurrent use by multiple goroutines. Only
// Unix-like systems are supported.
package lock

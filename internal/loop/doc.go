// Package loop drives gitloop iterations.
//
// One iteration synchronizes the repository with origin, runs the user
// command, writes its output to the stdout and stdin files, and commits and
// pushes them when they changed. RunOnce performs a single iteration and
// returns an IterationResult; Run repeats iterations with a fixed pause
// until its context is cancelled.
//
// Failures never escape an iteration as panics or returned errors. They are
// classified instead:
//
//   - Fatal: the target branch could not be checked out
//   - Recoverable: any other step failed (remote setup, command missing or
//     timed out, writing, staging, committing)
//   - Success: everything ran; fetch, pull and push problems are attached as
//     warnings
//
// Run keeps going after both Recoverable and Fatal iterations. With
// Options.MaxRetries set it gives up once the same error has repeated more
// than that many times in a row.
package loop

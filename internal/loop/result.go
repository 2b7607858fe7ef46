package loop

import "time"

// Outcome classifies how an iteration ended.
type Outcome int

const (
	// Success means every step ran. Transient fetch, pull or push failures
	// may still be listed in Warnings.
	Success Outcome = iota

	// Recoverable means a step failed but the next iteration may succeed.
	Recoverable

	// Fatal means the iteration could not establish the target branch.
	Fatal
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Recoverable:
		return "recoverable"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// IterationResult describes one pass through the loop.
type IterationResult struct {
	ID        string
	Outcome   Outcome
	Err       error
	Warnings  []string
	Committed bool
	Pushed    bool
	ExitCode  int
	Started   time.Time
	Duration  time.Duration
}

package loop

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bashhack/gitloop/internal/errors"
	"github.com/bashhack/gitloop/internal/git"
	"github.com/bashhack/gitloop/internal/logger"
	"github.com/bashhack/gitloop/internal/runner"
)

// Synchronizer prepares the working tree before the command runs.
type Synchronizer interface {
	Sync(ctx context.Context) (git.SyncResult, error)
}

// CommandRunner runs the user command once.
type CommandRunner interface {
	Run(ctx context.Context) (runner.Result, error)
}

// Publisher records command output in the repository and pushes it.
type Publisher interface {
	WriteOutputs(out, errText string) error
	Stage(ctx context.Context) error
	CommitAndPush(ctx context.Context) (git.CommitResult, error)
}

// Options tune a Driver.
type Options struct {
	// Interval is the pause between iterations in Run.
	Interval time.Duration

	// MaxRetries stops Run after this many consecutive identical errors.
	// 0 never stops.
	MaxRetries int

	// CommandName labels the command in log lines. Defaults to cmd.sh.
	CommandName string
}

// Stats accumulates per-session counters.
type Stats struct {
	Iterations  int
	Commits     int
	Pushes      int
	Recoverable int
	Fatal       int
}

// Driver runs gitloop iterations: sync, run the command, publish its output.
type Driver struct {
	syncer    Synchronizer
	runner    CommandRunner
	publisher Publisher
	logger    logger.Logger
	opts      Options

	mu        sync.Mutex
	stats     Stats
	startTime time.Time
}

// errorState tracks repeats of the same failure across iterations.
type errorState struct {
	consecutiveErrors int
	lastErrorMsg      string
}

// New creates a Driver.
func New(syncer Synchronizer, run CommandRunner, publisher Publisher, log logger.Logger, opts Options) *Driver {
	if opts.CommandName == "" {
		opts.CommandName = "cmd.sh"
	}
	opts.CommandName = filepath.Base(opts.CommandName)
	return &Driver{
		syncer:    syncer,
		runner:    run,
		publisher: publisher,
		logger:    log,
		opts:      opts,
		startTime: time.Now(),
	}
}

// Stats returns the counters accumulated so far.
func (d *Driver) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// RunOnce performs a single iteration. It never panics on step failures;
// everything is reported through the returned IterationResult.
func (d *Driver) RunOnce(ctx context.Context) IterationResult {
	res := IterationResult{
		ID:      uuid.NewString(),
		Started: time.Now(),
	}
	d.logger.Info("iteration %s started", res.ID)

	res = d.iterate(ctx, res)
	res.Duration = time.Since(res.Started)

	d.record(res)
	d.logOutcome(res)
	return res
}

func (d *Driver) iterate(ctx context.Context, res IterationResult) IterationResult {
	synced, err := d.syncer.Sync(ctx)
	res.Warnings = append(res.Warnings, synced.Warnings...)
	if err != nil {
		return d.fail(ctx, res, err)
	}

	output, err := d.runner.Run(ctx)
	if err != nil {
		return d.fail(ctx, res, err)
	}
	res.ExitCode = output.ExitCode
	d.logger.InfoToUser("%s exited with code %d", d.opts.CommandName, output.ExitCode)

	if err := d.publisher.WriteOutputs(output.Stdout, output.Stderr); err != nil {
		return d.fail(ctx, res, err)
	}
	if err := d.publisher.Stage(ctx); err != nil {
		return d.fail(ctx, res, err)
	}

	// Losing the race against an emptied index is not a failure.
	committed, err := d.publisher.CommitAndPush(ctx)
	if err != nil && !errors.Is(err, errors.ErrNothingToCommit) {
		return d.fail(ctx, res, err)
	}
	res.Committed = committed.Committed
	res.Pushed = committed.Pushed
	if committed.Warning != "" {
		res.Warnings = append(res.Warnings, committed.Warning)
	}
	if !committed.Committed {
		d.logger.Info("no changes to commit")
	}

	res.Outcome = Success
	return res
}

// fail classifies err. A failed checkout is fatal for the iteration unless git
// only timed out, cancellation is reported as the context error, anything
// else is recoverable.
func (d *Driver) fail(ctx context.Context, res IterationResult, err error) IterationResult {
	switch {
	case ctx.Err() != nil:
		res.Outcome = Recoverable
		res.Err = ctx.Err()
	case errors.Is(err, errors.ErrCheckoutFailed) && !errors.Is(err, context.DeadlineExceeded):
		res.Outcome = Fatal
		res.Err = err
	default:
		res.Outcome = Recoverable
		res.Err = err
	}
	return res
}

func (d *Driver) record(res IterationResult) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stats.Iterations++
	if res.Committed {
		d.stats.Commits++
	}
	if res.Pushed {
		d.stats.Pushes++
	}
	switch res.Outcome {
	case Recoverable:
		d.stats.Recoverable++
	case Fatal:
		d.stats.Fatal++
	}
}

func (d *Driver) logOutcome(res IterationResult) {
	if errors.Is(res.Err, context.Canceled) {
		d.logger.Info("iteration %s interrupted", res.ID)
		return
	}

	switch res.Outcome {
	case Success:
		d.logger.Info("iteration %s succeeded in %s (committed=%v pushed=%v warnings=%d)",
			res.ID, res.Duration.Round(time.Millisecond), res.Committed, res.Pushed, len(res.Warnings))
	case Recoverable:
		d.logger.Error("Iteration failed: %v", res.Err)
	case Fatal:
		d.logger.Error("Iteration aborted: %v", res.Err)
	}
}

// Run loops until ctx is cancelled: one iteration, then a pause of
// Options.Interval. Failed iterations are logged and the loop carries on,
// unless MaxRetries is set and the same error keeps repeating.
func (d *Driver) Run(ctx context.Context) error {
	d.startTime = time.Now()
	var state errorState

	for {
		res := d.RunOnce(ctx)
		if ctx.Err() != nil {
			d.logger.Info("Received cancellation signal, shutting down gracefully...")
			return ctx.Err()
		}

		if err := d.trackErrors(&state, res.Err); err != nil {
			return err
		}

		timer := time.NewTimer(d.opts.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			d.logger.Info("Received cancellation signal, shutting down gracefully...")
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// trackErrors counts consecutive identical errors and returns an error once
// MaxRetries is exceeded.
func (d *Driver) trackErrors(state *errorState, err error) error {
	if err == nil {
		state.consecutiveErrors = 0
		state.lastErrorMsg = ""
		return nil
	}

	currentErrorMsg := err.Error()
	if currentErrorMsg == state.lastErrorMsg {
		state.consecutiveErrors++
	} else {
		state.consecutiveErrors = 1
		state.lastErrorMsg = currentErrorMsg
	}

	// '>' so that MaxRetries = 1 still allows one retry.
	if d.opts.MaxRetries > 0 && state.consecutiveErrors > d.opts.MaxRetries {
		d.logger.WarningToUser("Too many consecutive errors (same error %d times in a row). Stopping gitloop.", state.consecutiveErrors)
		return errors.Wrap(err, fmt.Sprintf("maximum retries (%d) exceeded", d.opts.MaxRetries))
	}
	return nil
}

// PrintSummary prints a summary of the session
func (d *Driver) PrintSummary() {
	stats := d.Stats()
	duration := time.Since(d.startTime)
	hours := int(duration.Hours())
	minutes := int(duration.Minutes()) % 60
	seconds := int(duration.Seconds()) % 60

	d.logger.StatusMessage("")
	d.logger.StatusMessage("---------------------------------------------")
	d.logger.StatusMessage("📊 gitloop Session Summary")
	d.logger.StatusMessage("---------------------------------------------")
	d.logger.StatusMessage("🔁 Iterations: %d", stats.Iterations)
	d.logger.StatusMessage("✅ Commits: %d (pushed: %d)", stats.Commits, stats.Pushes)
	d.logger.StatusMessage("⚠️  Failed iterations: %d recoverable, %d fatal", stats.Recoverable, stats.Fatal)
	d.logger.StatusMessage("⏱️  Session duration: %dh %dm %ds", hours, minutes, seconds)
	d.logger.StatusMessage("---------------------------------------------")
	d.logger.StatusMessage("🛑 gitloop terminated at %s", time.Now().Format("2006-01-02 15:04:05"))
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/bashhack/gitloop/internal/config"
	"github.com/bashhack/gitloop/internal/constants"
	loopErrors "github.com/bashhack/gitloop/internal/errors"
	"github.com/bashhack/gitloop/internal/git"
	"github.com/bashhack/gitloop/internal/lock"
	"github.com/bashhack/gitloop/internal/logger"
	"github.com/bashhack/gitloop/internal/loop"
	"github.com/bashhack/gitloop/internal/runner"
)

// Looper runs gitloop iterations
type Looper interface {
	RunOnce(ctx context.Context) loop.IterationResult
	Run(ctx context.Context) error
	PrintSummary()
}

// Locker manages file locking
type Locker interface {
	Acquire() error
	Release() error
}

// AppOptions contains app configuration and dependencies.
// Any nil optional dependency is replaced with the production default.
type AppOptions struct {
	// Config holds the application configuration settings (required).
	Config *config.Config

	// Logger provides logging functionality (optional).
	Logger logger.Logger

	// Locker guards the repository against concurrent instances (optional).
	Locker Locker

	// Loop runs the iterations (optional).
	Loop Looper

	// Stdout is the writer for standard output (optional, defaults to os.Stdout).
	Stdout io.Writer

	// Stderr is the writer for error output (optional, defaults to os.Stderr).
	Stderr io.Writer

	// Exit terminates the process (optional, defaults to os.Exit).
	Exit func(code int)

	// ExecLookPath locates the git executable (optional, defaults to exec.LookPath).
	ExecLookPath func(file string) (string, error)

	// IsRepository validates the repository path (optional, defaults to git.IsRepository).
	IsRepository func(ctx context.Context, path string) (bool, error)
}

// App is the main gitloop application.
// It wires the components together and owns their lifecycle.
type App struct {
	Config *config.Config
	Logger logger.Logger
	Locker Locker
	Loop   Looper

	Stdout io.Writer
	Stderr io.Writer

	exit         func(code int)
	execLookPath func(file string) (string, error)
	isRepository func(ctx context.Context, path string) (bool, error)

	initialized bool
	looping     bool

	shutdownOnce sync.Once
	shutdownErr  error
}

// NewDefaultApp creates an App with standard dependencies.
func NewDefaultApp(versionInfo config.VersionInfo) *App {
	cfg := config.New()
	cfg.VersionInfo = versionInfo

	return NewApp(AppOptions{
		Config:       cfg,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		Exit:         os.Exit,
		ExecLookPath: exec.LookPath,
		IsRepository: git.IsRepository,
	})
}

// NewApp creates an App with custom dependencies specified in opts.
// It panics if opts.Config is nil.
func NewApp(opts AppOptions) *App {
	if opts.Config == nil {
		panic("Config is required in AppOptions")
	}

	app := &App{
		Config:       opts.Config,
		Logger:       opts.Logger,
		Locker:       opts.Locker,
		Loop:         opts.Loop,
		Stdout:       opts.Stdout,
		Stderr:       opts.Stderr,
		exit:         opts.Exit,
		execLookPath: opts.ExecLookPath,
		isRepository: opts.IsRepository,
	}

	if app.Stdout == nil {
		app.Stdout = os.Stdout
	}
	if app.Stderr == nil {
		app.Stderr = os.Stderr
	}
	if app.exit == nil {
		app.exit = os.Exit
	}
	if app.execLookPath == nil {
		app.execLookPath = exec.LookPath
	}
	if app.isRepository == nil {
		app.isRepository = git.IsRepository
	}

	return app
}

// Initialize finalizes the configuration and builds any component that was
// not injected. It is safe to call more than once.
func (a *App) Initialize() error {
	if a.initialized {
		return nil
	}

	if err := a.Config.Finalize(); err != nil {
		if loopErrors.Is(err, loopErrors.ErrInvalidConfiguration) {
			return err
		}
		return loopErrors.Wrap(loopErrors.ErrInvalidConfiguration, err.Error())
	}

	if a.Logger == nil {
		a.Logger = logger.New(a.Config.Debug, a.Config.LogFile, a.Config.Verbose)
	}

	if a.Locker == nil {
		locker, err := lock.New(a.Config.RepoPath)
		if err != nil {
			return loopErrors.Wrap(err, "failed to initialize lock")
		}
		a.Locker = locker
	}

	if a.Loop == nil {
		repo := git.NewRepo(a.Config.RepoPath, git.NewExecExecutor(a.Config.GitTimeout()), a.Logger)
		a.Loop = loop.New(
			git.NewSynchronizer(repo, a.Config.Branch, a.Config.RemoteURL),
			runner.New(a.Config.RepoPath, a.Config.CommandPath, a.Config.CommandTimeout(), a.Logger),
			git.NewCommitter(repo, a.Config.Branch),
			a.Logger,
			loop.Options{
				Interval:    a.Config.Interval(),
				MaxRetries:  a.Config.MaxRetries,
				CommandName: a.Config.CommandPath,
			},
		)
	}

	a.initialized = true
	return nil
}

// Run executes the application with the given context.
func (a *App) Run(ctx context.Context) error {
	if a.Config.Version {
		a.ShowVersion()
		return nil
	}

	if err := a.Initialize(); err != nil {
		return err
	}

	if err := a.checkRequiredCommands(); err != nil {
		_, _ = fmt.Fprintf(a.Stderr, "❌ Error: %v. Please install it and try again.\n", err)
		return err
	}

	isRepo, err := a.isRepository(ctx, a.Config.RepoPath)
	if err != nil {
		a.Logger.Warning("Failed to check if path is a git repository: %v", err)
		return loopErrors.Wrap(loopErrors.ErrGitOperationFailed, err.Error())
	}
	if !isRepo {
		return loopErrors.NewConfigError("repoPath", a.Config.RepoPath, loopErrors.ErrNotGitRepository)
	}
	a.Logger.Info("Git repository verified")

	if err := a.acquireLock(); err != nil {
		return err
	}

	a.showStartupInfo()
	a.looping = true

	if a.Config.Once {
		return a.runOnce(ctx)
	}
	return a.Loop.Run(ctx)
}

// acquireLock takes the repository lock. In warn mode a held lock is only
// reported and the run continues without it.
func (a *App) acquireLock() error {
	err := a.Locker.Acquire()
	if err == nil {
		return nil
	}

	if a.Config.LockMode == lock.ModeEnforce {
		if loopErrors.Is(err, loopErrors.ErrAlreadyRunning) {
			return err
		}
		return loopErrors.Wrap(loopErrors.ErrLockAcquisitionFailure, err.Error())
	}

	a.Logger.WarningToUser("%v; continuing without the lock", err)
	return nil
}

// runOnce performs a single iteration. Only a fatal outcome is an error.
func (a *App) runOnce(ctx context.Context) error {
	res := a.Loop.RunOnce(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if res.Outcome == loop.Fatal {
		return res.Err
	}
	return nil
}

func (a *App) showStartupInfo() {
	mode := "continuous"
	if a.Config.Once {
		mode = "single-shot"
	}
	a.Logger.InfoToUser("gitloop %s - %s", a.Config.VersionInfo.Version, constants.Tagline)
	a.Logger.InfoToUser("Repository: %s (branch %s)", a.Config.RepoPath, a.Config.Branch)
	if a.Config.Once {
		a.Logger.InfoToUser("Mode: %s", mode)
	} else {
		a.Logger.InfoToUser("Mode: %s, every %s", mode, a.Config.Interval())
	}
	a.Logger.Info("config: command=%s lock=%s gitTimeout=%s commandTimeout=%s maxRetries=%d",
		a.Config.CommandPath, a.Config.LockMode, a.Config.GitTimeout(), a.Config.CommandTimeout(), a.Config.MaxRetries)
}

// ShowVersion displays version information
func (a *App) ShowVersion() {
	_, _ = fmt.Fprintf(a.Stdout, "gitloop %s (%s) built on %s\n",
		a.Config.VersionInfo.Version,
		a.Config.VersionInfo.Commit,
		a.Config.VersionInfo.Date)
}

// checkRequiredCommands verifies git is available in PATH
func (a *App) checkRequiredCommands() error {
	if _, err := a.execLookPath("git"); err != nil {
		return fmt.Errorf("git is not found in PATH")
	}
	return nil
}

// PrintSummary prints the session summary if the loop ever started.
func (a *App) PrintSummary() {
	if a.looping && a.Loop != nil {
		a.Loop.PrintSummary()
	}
}

// Close releases resources held by the App. Lock release is best effort:
// failures are logged but not returned.
func (a *App) Close() error {
	if a.Locker != nil {
		if err := a.Locker.Release(); err != nil {
			if a.Logger != nil {
				a.Logger.Warning("Failed to release lock during cleanup: %v", err)
			} else {
				_, _ = fmt.Fprintf(a.Stderr, "⚠️  Failed to release lock during cleanup: %v\n", err)
			}
		}
	}

	if a.Logger != nil {
		if err := a.Logger.Close(); err != nil {
			_, _ = fmt.Fprintf(a.Stderr, "❌ Failed to close logger: %v\n", err)
			return err
		}
	}
	return nil
}

// Shutdown prints the summary and closes the App. Only the first call does
// any work; later calls wait for it and return its result.
func (a *App) Shutdown() error {
	a.shutdownOnce.Do(func() {
		a.PrintSummary()
		a.shutdownErr = a.Close()
	})
	return a.shutdownErr
}

// CleanupOnSignal shuts the App down when the process is being torn down by
// a signal.
func (a *App) CleanupOnSignal() {
	if err := a.Shutdown(); err != nil {
		_, _ = fmt.Fprintf(a.Stderr, "❌ Error during cleanup: %v\n", err)
	}
}

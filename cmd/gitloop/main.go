package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bashhack/gitloop/internal/config"
	loopErrors "github.com/bashhack/gitloop/internal/errors"
)

// Version information - injected at build time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// shutdownGrace is how long a signalled run may take to wind down before
// cleanup is forced.
const shutdownGrace = 5 * time.Second

func main() {
	app := NewDefaultApp(config.VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
	app.exit(execute(app, newRootCmd(app)))
}

// execute runs the root command and returns the process exit code.
func execute(app *App, root interface {
	ExecuteContext(ctx context.Context) error
}) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(c)

	go func() {
		select {
		case sig := <-c:
			_, _ = fmt.Fprintf(app.Stdout, "\nReceived signal %v, stopping gitloop...\n", sig)
			cancel()
		case <-done:
			return
		}

		select {
		case <-done:
		case <-time.After(shutdownGrace):
			app.CleanupOnSignal()
			app.exit(1)
		}
	}()

	err := root.ExecuteContext(ctx)
	close(done)

	code := exitCode(err)
	if code != 0 {
		_, _ = fmt.Fprintf(app.Stderr, "❌ Error: %v\n", err)
	}

	if closeErr := app.Shutdown(); closeErr != nil && code == 0 {
		code = 1
	}
	return code
}

// exitCode maps a run error to a process exit code. A signal-driven
// shutdown is a clean exit.
func exitCode(err error) int {
	if err == nil || loopErrors.Is(err, context.Canceled) {
		return 0
	}
	return 1
}

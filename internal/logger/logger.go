package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines the common logging interface used throughout the application.
// It separates diagnostic logs (Info, Warning, Error), which go to the
// structured log file, from user-facing messages, which go to the console.
type Logger interface {
	// Info logs a diagnostic message. Written to the log file only.
	Info(format string, args ...interface{})

	// Warning logs a diagnostic warning. Written to the log file, and to the
	// console when verbose output is on.
	Warning(format string, args ...interface{})

	// Error logs an error. Written to the log file and always to stderr.
	Error(format string, args ...interface{})

	// InfoToUser logs an informational message to the log file, and to stdout
	// unless output is quiet.
	InfoToUser(format string, args ...interface{})

	// WarningToUser logs a warning to the log file and stdout.
	WarningToUser(format string, args ...interface{})

	// Success logs a success message to the log file and stdout.
	Success(format string, args ...interface{})

	// StatusMessage prints a status line to stdout only.
	StatusMessage(format string, args ...interface{})

	// Close flushes the structured log and closes the log file.
	Close() error
}

// DefaultLogger writes user-facing messages to the console and diagnostic
// messages to a JSON log file through zap.
type DefaultLogger struct {
	mu      sync.Mutex
	sugar   *zap.SugaredLogger
	enabled bool
	logFile string
	verbose bool
	stdout  io.Writer
	stderr  io.Writer
	file    *os.File
}

// New creates a new Logger instance
func New(enabled bool, logFile string, verbose bool) *DefaultLogger {
	return NewWithOutput(enabled, logFile, verbose, os.Stdout, os.Stderr)
}

// NewWithOutput creates a DefaultLogger with custom output writers.
// When enabled is false, or the log file cannot be opened, the structured
// log is discarded.
func NewWithOutput(enabled bool, logFile string, verbose bool, stdout, stderr io.Writer) *DefaultLogger {
	sugar := zap.NewNop().Sugar()
	var file *os.File

	if enabled && logFile != "" {
		logDir := filepath.Dir(logFile)
		if logDir != "." {
			if err := os.MkdirAll(logDir, 0o755); err != nil {
				_, _ = fmt.Fprintf(stderr, "⚠️  Failed to create log directory: %v\n", err)
			}
		}

		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err == nil {
			file = f
			sugar = newFileLogger(f).Sugar()
			_, _ = fmt.Fprintf(stdout, "🔍 Debug logging enabled. Logs will be written to: %s\n", logFile)
			sugar.Info("gitloop debug logging started")
		} else {
			_, _ = fmt.Fprintf(stderr, "⚠️  Failed to open log file: %v, structured logging disabled\n", err)
			enabled = false
		}
	} else {
		enabled = false
	}

	return &DefaultLogger{
		sugar:   sugar,
		enabled: enabled,
		logFile: logFile,
		verbose: verbose,
		stdout:  stdout,
		stderr:  stderr,
		file:    file,
	}
}

func newFileLogger(w io.Writer) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), zapcore.DebugLevel)
	return zap.New(core, zap.Fields(zap.Int("pid", os.Getpid())))
}

// Info logs an informational message (file only)
func (l *DefaultLogger) Info(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled {
		return
	}
	l.sugar.Infof(format, args...)
}

// InfoToUser logs an informational message to the file and, when verbose, stdout
func (l *DefaultLogger) InfoToUser(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.sugar.Info(msg)
	}

	if l.verbose {
		_, _ = fmt.Fprintf(l.stdout, "ℹ️  %s\n", msg)
	}
}

// Success logs a success message to both file and stdout
func (l *DefaultLogger) Success(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.sugar.Info(msg)
	}

	_, _ = fmt.Fprintf(l.stdout, "✅ %s\n", msg)
}

// Warning logs a warning message
func (l *DefaultLogger) Warning(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.sugar.Warn(msg)
	}

	if l.verbose {
		_, _ = fmt.Fprintf(l.stdout, "⚠️  %s\n", msg)
	}
}

// WarningToUser logs a warning message to both file and stdout
func (l *DefaultLogger) WarningToUser(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.sugar.Warn(msg)
	}

	_, _ = fmt.Fprintf(l.stdout, "⚠️  %s\n", msg)
}

// Error logs an error message
func (l *DefaultLogger) Error(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.sugar.Error(msg)
	}

	_, _ = fmt.Fprintf(l.stderr, "❌ %s\n", msg)
}

// StatusMessage prints a status message to stdout only (no logging)
func (l *DefaultLogger) StatusMessage(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, _ = fmt.Fprintln(l.stdout, fmt.Sprintf(format, args...))
}

// Close flushes zap and closes the log file
func (l *DefaultLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}

	// Sync on a plain file only fails when the file itself is broken,
	// which Close will report as well.
	_ = l.sugar.Sync()
	err := l.file.Close()
	l.file = nil
	l.enabled = false
	l.sugar = zap.NewNop().Sugar()
	return err
}

// SetStdout sets a custom writer for user-facing stdout messages only.
// This method is thread-safe and is primarily intended for testing.
func (l *DefaultLogger) SetStdout(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stdout = w
}

// SetStderr sets a custom writer for user-facing stderr messages only.
// This method is thread-safe and is primarily intended for testing.
func (l *DefaultLogger) SetStderr(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stderr = w
}

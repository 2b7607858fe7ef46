// Package logger provides logging facilities for the gitloop application.
//
// The package defines the Logger interface used by every component and the
// DefaultLogger implementation, which prints user-facing messages to the
// console and writes diagnostic messages as JSON lines through zap.
//
// # Message Types
//
//   - Info: diagnostic only (log file)
//   - Warning: diagnostic, echoed to the console when verbose
//   - Error: log file and stderr
//   - InfoToUser: log file, and stdout unless quiet
//   - WarningToUser, Success: log file and stdout
//   - StatusMessage: stdout only
//
// # Usage
//
//	log := logger.New(cfg.Debug, cfg.LogFile, cfg.Verbose)
//	defer log.Close()
//
//	log.Info("running %s", path)
//	log.WarningToUser("push failed: %v", err)
//
// # File Logging
//
// The structured log is only written when debug logging is enabled. Each line
// is a zap JSON record with an ISO-8601 timestamp, level, message and the
// process ID, which makes it easy to tell overlapping gitloop processes apart.
//
// # Thread Safety
//
// DefaultLogger is safe for concurrent use by multiple goroutines.
package logger

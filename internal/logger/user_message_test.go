package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestUserMessages(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "test.log")

	stdoutBuf := &bytes.Buffer{}
	stderrBuf := &bytes.Buffer{}

	logger := NewWithOutput(true, logFile, true, stdoutBuf, stderrBuf)
	defer func() {
		if err := logger.Close(); err != nil {
			t.Logf("Failed to close logger: %v", err)
		}
	}()

	tests := map[string]struct {
		log       func()
		prefix    string
		text      string
		inLogFile bool
	}{
		"InfoToUser": {
			log:       func() { logger.InfoToUser("cmd.sh exited with code %d", 1) },
			prefix:    "ℹ️",
			text:      "cmd.sh exited with code 1",
			inLogFile: true,
		},
		"Success": {
			log:       func() { logger.Success("Pushed %s", "main") },
			prefix:    "✅",
			text:      "Pushed main",
			inLogFile: true,
		},
		"WarningToUser": {
			log:       func() { logger.WarningToUser("Push failed: %s", "rejected") },
			prefix:    "⚠️",
			text:      "Push failed: rejected",
			inLogFile: true,
		},
		"StatusMessage": {
			log:       func() { logger.StatusMessage("📂 Repository: %s", "/repo") },
			prefix:    "📂",
			text:      "Repository: /repo",
			inLogFile: false,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			stdoutBuf.Reset()
			test.log()
			output := stdoutBuf.String()

			if !strings.Contains(output, test.prefix) || !strings.Contains(output, test.text) {
				t.Errorf("Expected stdout to contain %q and %q, got: %s", test.prefix, test.text, output)
			}

			content, err := os.ReadFile(logFile)
			if err != nil {
				t.Fatalf("Failed to read log file: %v", err)
			}
			if got := strings.Contains(string(content), test.text); got != test.inLogFile {
				t.Errorf("Expected message in log file = %v, got %v", test.inLogFile, got)
			}
		})
	}
}

func TestQuietHidesInformationalMessages(t *testing.T) {
	tests := map[string]struct {
		verbose  bool
		expected bool
	}{
		"Verbose": {verbose: true, expected: true},
		"Quiet":   {verbose: false, expected: false},
	}

	for name, test := range tests {
		test := test
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			stdout := &bytes.Buffer{}
			logger := NewWithOutput(false, "", test.verbose, stdout, &bytes.Buffer{})

			logger.Warning("fetch failed")
			logger.InfoToUser("cmd.sh exited with code 0")
			logger.WarningToUser("push rejected")

			if got := strings.Contains(stdout.String(), "fetch failed"); got != test.expected {
				t.Errorf("Expected warning on stdout = %v, got %v (%q)", test.expected, got, stdout.String())
			}
			if got := strings.Contains(stdout.String(), "exited with code 0"); got != test.expected {
				t.Errorf("Expected info on stdout = %v, got %v (%q)", test.expected, got, stdout.String())
			}
			if !strings.Contains(stdout.String(), "push rejected") {
				t.Errorf("WarningToUser must print even when quiet, got %q", stdout.String())
			}
		})
	}
}

func TestSetOutputs(t *testing.T) {
	logger := NewWithOutput(false, "", true, &bytes.Buffer{}, &bytes.Buffer{})

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	logger.SetStdout(stdout)
	logger.SetStderr(stderr)

	logger.StatusMessage("status")
	logger.Error("failure")

	if !strings.Contains(stdout.String(), "status") {
		t.Errorf("Expected status on replaced stdout, got %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "failure") {
		t.Errorf("Expected error on replaced stderr, got %q", stderr.String())
	}
}

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/bashhack/gitloop/internal/config"
	"github.com/bashhack/gitloop/internal/loop"
)

// MockLogger records user-facing messages and Close calls.
type MockLogger struct {
	mu          sync.Mutex
	Messages    []string
	Warnings    []string
	CloseCalled bool
	CloseCount  int
	CloseErr    error
}

func (m *MockLogger) record(list *[]string, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*list = append(*list, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Info(format string, args ...interface{}) {}
func (m *MockLogger) Warning(format string, args ...interface{}) {
	m.record(&m.Warnings, format, args...)
}
func (m *MockLogger) Error(format string, args ...interface{}) {}
func (m *MockLogger) InfoToUser(format string, args ...interface{}) {
	m.record(&m.Messages, format, args...)
}
func (m *MockLogger) WarningToUser(format string, args ...interface{}) {
	m.record(&m.Warnings, format, args...)
}
func (m *MockLogger) Success(format string, args ...interface{}) {
	m.record(&m.Messages, format, args...)
}
func (m *MockLogger) StatusMessage(format string, args ...interface{}) {
	m.record(&m.Messages, format, args...)
}

func (m *MockLogger) Close() error {
	m.CloseCalled = true
	m.CloseCount++
	return m.CloseErr
}

// MockLocker is a Locker whose results are fixed up front.
type MockLocker struct {
	AcquireErr    error
	ReleaseErr    error
	AcquireCalled bool
	ReleaseCalled bool
}

func (m *MockLocker) Acquire() error {
	m.AcquireCalled = true
	return m.AcquireErr
}

func (m *MockLocker) Release() error {
	m.ReleaseCalled = true
	return m.ReleaseErr
}

// mockLoop stands in for the loop driver.
type mockLoop struct {
	result         loop.IterationResult
	runErr         error
	runOnceCalls   int
	runCalls       int
	summaryPrinted bool
	summaryCalls   int
	blockUntilDone bool
}

func (m *mockLoop) RunOnce(ctx context.Context) loop.IterationResult {
	m.runOnceCalls++
	return m.result
}

func (m *mockLoop) Run(ctx context.Context) error {
	m.runCalls++
	if m.blockUntilDone {
		<-ctx.Done()
		return ctx.Err()
	}
	return m.runErr
}

func (m *mockLoop) PrintSummary() {
	m.summaryPrinted = true
	m.summaryCalls++
}

// testApp bundles an App with the doubles it was built from.
type testApp struct {
	*App
	logger *MockLogger
	locker *MockLocker
	loop   *mockLoop
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	exits  []int
}

// newTestApp builds an App whose collaborators are all doubles. The repo
// path is a fresh temp dir that passes the repository check.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	cfg := config.New()
	cfg.RepoPath = t.TempDir()
	cfg.VersionInfo = config.VersionInfo{Version: "v1.2.3", Commit: "abc123", Date: "2024-03-09"}

	ta := &testApp{
		logger: &MockLogger{},
		locker: &MockLocker{},
		loop:   &mockLoop{result: loop.IterationResult{Outcome: loop.Success}},
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	ta.App = NewApp(AppOptions{
		Config: cfg,
		Logger: ta.logger,
		Locker: ta.locker,
		Loop:   ta.loop,
		Stdout: ta.stdout,
		Stderr: ta.stderr,
		Exit:   func(code int) { ta.exits = append(ta.exits, code) },
		ExecLookPath: func(file string) (string, error) {
			return "/usr/bin/" + file, nil
		},
		IsRepository: func(ctx context.Context, path string) (bool, error) {
			return true, nil
		},
	})
	return ta
}

// clearEnv removes every LOOP_* variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvIntervalSeconds, config.EnvRepoPath, config.EnvBranch, config.EnvRemoteURL,
		config.EnvCommand, config.EnvLockMode, config.EnvGitTimeoutSeconds,
		config.EnvCommandTimeoutSeconds, config.EnvMaxRetries, config.EnvDebug,
		config.EnvLogFile, config.EnvVerbose, config.EnvConfig,
	} {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

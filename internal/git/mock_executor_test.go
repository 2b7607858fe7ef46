package git

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bashhack/gitloop/internal/errors"
)

// mockResponse is what the mock returns for a matching invocation.
type mockResponse struct {
	output string
	err    error
}

// mockExecutor records invocations and replies from a table keyed by the git
// arguments following "-C <path>", joined with spaces.
type mockExecutor struct {
	mu        sync.Mutex
	responses map[string]mockResponse
	calls     []string
}

func newMockExecutor(responses map[string]mockResponse) *mockExecutor {
	if responses == nil {
		responses = map[string]mockResponse{}
	}
	return &mockExecutor{responses: responses}
}

func (m *mockExecutor) Execute(ctx context.Context, name string, args ...string) error {
	_, err := m.ExecuteWithOutput(ctx, name, args...)
	return err
}

func (m *mockExecutor) ExecuteWithOutput(ctx context.Context, name string, args ...string) (string, error) {
	if len(args) >= 2 && args[0] == "-C" {
		args = args[2:]
	}
	key := strings.Join(args, " ")

	m.mu.Lock()
	m.calls = append(m.calls, key)
	resp := m.responses[key]
	m.mu.Unlock()

	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	return resp.output, resp.err
}

func (m *mockExecutor) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockExecutor) called(key string) bool {
	for _, c := range m.Calls() {
		if c == key {
			return true
		}
	}
	return false
}

// gitFailure builds the error ExecExecutor would return for a failed command.
func gitFailure(op, output string) error {
	return errors.NewGitError(op, nil,
		fmt.Errorf("%w: exit status 1", errors.ErrGitOperationFailed), output)
}

// nopLogger satisfies logger.Logger and drops everything.
type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})          {}
func (nopLogger) Warning(string, ...interface{})       {}
func (nopLogger) Error(string, ...interface{})         {}
func (nopLogger) InfoToUser(string, ...interface{})    {}
func (nopLogger) WarningToUser(string, ...interface{}) {}
func (nopLogger) Success(string, ...interface{})       {}
func (nopLogger) StatusMessage(string, ...interface{}) {}
func (nopLogger) Close() error                         { return nil }

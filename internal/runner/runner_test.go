package runner

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bashhack/gitloop/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type discardLogger struct{}

func (discardLogger) Info(string, ...interface{})          {}
func (discardLogger) Warning(string, ...interface{})       {}
func (discardLogger) Error(string, ...interface{})         {}
func (discardLogger) InfoToUser(string, ...interface{})    {}
func (discardLogger) WarningToUser(string, ...interface{}) {}
func (discardLogger) Success(string, ...interface{})       {}
func (discardLogger) StatusMessage(string, ...interface{}) {}
func (discardLogger) Close() error                         { return nil }

func writeScript(t *testing.T, dir, name, body string, mode os.FileMode) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), mode))
	require.NoError(t, os.Chmod(path, mode))
}

func TestRun_CapturesOutput(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		body       string
		mode       os.FileMode
		wantStdout string
		wantStderr string
		wantCode   int
	}{
		"Executable": {
			body:       "#!/bin/sh\necho hello\necho oops >&2\n",
			mode:       0o755,
			wantStdout: "hello\n",
			wantStderr: "oops\n",
		},
		"NotExecutable": {
			body:       "echo via sh\n",
			mode:       0o644,
			wantStdout: "via sh\n",
		},
		"ExecutableWithoutShebang": {
			body:       "echo no shebang\n",
			mode:       0o755,
			wantStdout: "no shebang\n",
		},
		"NonZeroExit": {
			body:       "#!/bin/sh\necho partial\necho failing >&2\nexit 3\n",
			mode:       0o755,
			wantStdout: "partial\n",
			wantStderr: "failing\n",
			wantCode:   3,
		},
		"EmptyOutput": {
			body: "#!/bin/sh\nexit 0\n",
			mode: 0o755,
		},
	}

	for name, test := range tests {
		test := test
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeScript(t, dir, "cmd.sh", test.body, test.mode)

			result, err := New(dir, "", time.Minute, discardLogger{}).Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, test.wantStdout, result.Stdout)
			assert.Equal(t, test.wantStderr, result.Stderr)
			assert.Equal(t, test.wantCode, result.ExitCode)
		})
	}
}

func TestRun_WorkingDirectoryIsRepoRoot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeScript(t, dir, "cmd.sh", "#!/bin/sh\npwd\n", 0o755)

	result, err := New(dir, "cmd.sh", 0, discardLogger{}).Run(context.Background())
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(strings.TrimSpace(result.Stdout))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRun_CustomCommandPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "scripts"), 0o755))
	writeScript(t, dir, "scripts/report.sh", "#!/bin/sh\necho custom\n", 0o755)

	r := New(dir, "scripts/report.sh", 0, discardLogger{})
	assert.Equal(t, filepath.Join(dir, "scripts", "report.sh"), r.Path())

	result, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "custom\n", result.Stdout)
}

func TestRun_MissingCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := New(dir, "", 0, discardLogger{}).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCommandNotFound))

	var cmdErr *errors.CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, filepath.Join(dir, "cmd.sh"), cmdErr.Path)
}

func TestRun_DirectoryIsNotACommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "cmd.sh"), 0o755))

	_, err := New(dir, "", 0, discardLogger{}).Run(context.Background())
	assert.True(t, errors.Is(err, errors.ErrCommandNotFound))
}

func TestRun_TimeoutKillsProcessGroup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// The background child keeps stdout open; only a group kill ends it.
	writeScript(t, dir, "cmd.sh", "#!/bin/sh\necho started\nsleep 30 &\nwait\n", 0o755)

	start := time.Now()
	result, err := New(dir, "", 300*time.Millisecond, discardLogger{}).Run(context.Background())
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCommandTimeout), "got %v", err)
	assert.Less(t, elapsed, 10*time.Second)
	assert.Equal(t, "started\n", result.Stdout)
}

func TestRun_ContextCancellation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeScript(t, dir, "cmd.sh", "#!/bin/sh\nsleep 30\n", 0o755)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(200*time.Millisecond, cancel)

	_, err := New(dir, "", time.Minute, discardLogger{}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_ChoosesInvocation(t *testing.T) {
	tests := map[string]struct {
		mode     os.FileMode
		wantName string
		wantArgs int
	}{
		"Direct": {mode: 0o700, wantName: "cmd.sh", wantArgs: 0},
		"ViaSh":  {mode: 0o600, wantName: "sh", wantArgs: 1},
		"GroupX": {mode: 0o610, wantName: "cmd.sh", wantArgs: 0},
		"OtherX": {mode: 0o601, wantName: "cmd.sh", wantArgs: 0},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeScript(t, dir, "cmd.sh", "#!/bin/sh\necho hi\n", test.mode)

			var gotName string
			var gotArgs []string
			original := commandContext
			commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
				gotName = name
				gotArgs = args
				return exec.CommandContext(ctx, "true")
			}
			t.Cleanup(func() { commandContext = original })

			_, err := New(dir, "", 0, discardLogger{}).Run(context.Background())
			require.NoError(t, err)
			assert.Equal(t, test.wantName, filepath.Base(gotName))
			assert.Len(t, gotArgs, test.wantArgs)
		})
	}
}

//go:build integration

package integration

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

var (
	buildOnce sync.Once
	binPath   string
	buildErr  error
)

// requireIntegration skips unless GITLOOP_INTEGRATION_TESTS=1.
func requireIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("GITLOOP_INTEGRATION_TESTS") != "1" {
		t.Skip("Skipping integration test. Set GITLOOP_INTEGRATION_TESTS=1 to run")
	}
}

// buildGitloop compiles the gitloop binary once per test run.
func buildGitloop(t *testing.T) string {
	t.Helper()
	buildOnce.Do(func() {
		dir, err := os.MkdirTemp("", "gitloop-bin-")
		if err != nil {
			buildErr = err
			return
		}
		binPath = filepath.Join(dir, "gitloop")
		out, err := exec.Command("go", "build", "-o", binPath, "../../cmd/gitloop").CombinedOutput()
		if err != nil {
			buildErr = &buildFailure{err: err, output: string(out)}
		}
	})
	if buildErr != nil {
		t.Fatalf("Failed to build gitloop binary: %v", buildErr)
	}
	return binPath
}

type buildFailure struct {
	err    error
	output string
}

func (b *buildFailure) Error() string {
	return b.err.Error() + ": " + b.output
}

// process is a running gitloop binary with captured output.
type process struct {
	cmd    *exec.Cmd
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	exited chan struct{}
	err    error
}

// wait blocks until the process exits or timeout passes, and returns its
// exit code.
func (p *process) wait(t *testing.T, timeout time.Duration) int {
	t.Helper()
	select {
	case <-p.exited:
		return exitCode(t, p.err)
	case <-time.After(timeout):
		_ = p.cmd.Process.Kill()
		<-p.exited
		t.Fatalf("gitloop did not exit; stdout: %s stderr: %s", p.stdout, p.stderr)
		return -1
	}
}

// runGitloop runs the binary to completion and returns its exit code.
func runGitloop(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	p := startGitloop(t, args...)
	code := p.wait(t, time.Minute)
	return code, p.stdout.String(), p.stderr.String()
}

// startGitloop starts the binary in the background. The process is killed
// when the test ends if it is still running.
func startGitloop(t *testing.T, args ...string) *process {
	t.Helper()
	p := &process{
		cmd:    exec.Command(buildGitloop(t), args...),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		exited: make(chan struct{}),
	}
	p.cmd.Stdout = p.stdout
	p.cmd.Stderr = p.stderr
	p.cmd.Env = append(os.Environ(), "LOOP_DEBUG=false")

	if err := p.cmd.Start(); err != nil {
		t.Fatalf("Failed to start gitloop: %v", err)
	}
	go func() {
		p.err = p.cmd.Wait()
		close(p.exited)
	}()

	t.Cleanup(func() {
		select {
		case <-p.exited:
		default:
			_ = p.cmd.Process.Kill()
			<-p.exited
		}
	})
	return p
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	t.Fatalf("unexpected wait error: %v", err)
	return -1
}

// waitFor polls cond until it holds or the timeout passes.
func waitFor(t *testing.T, timeout time.Duration, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

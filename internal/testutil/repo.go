// Package testutil builds throwaway git repositories for tests and inspects
// them with go-git.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	goGit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// CreateBareRemote creates a bare repository whose main branch holds a
// single initial commit. Returns the path to the bare repo.
func CreateBareRemote(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	bare := filepath.Join(dir, "remote.git")

	seed := filepath.Join(dir, "seed")
	initRepo(t, dir, seed)
	commitFile(t, seed, "README.md", "# results\n", "initial commit")

	Run(t, dir, "git", "clone", "--bare", seed, bare)
	return bare
}

// CreateEmptyBareRemote creates a bare repository with no commits.
func CreateEmptyBareRemote(t *testing.T) string {
	t.Helper()
	bare := filepath.Join(t.TempDir(), "empty.git")
	Run(t, filepath.Dir(bare), "git", "init", "--bare", "-b", "main", bare)
	return bare
}

// CloneWorkRepo clones remote into a fresh directory with a commit identity
// configured. The clone tracks origin/main.
func CloneWorkRepo(t *testing.T, remote string) string {
	t.Helper()
	dir := t.TempDir()
	work := filepath.Join(dir, "work")
	Run(t, dir, "git", "clone", remote, work)
	configureIdentity(t, work)
	return work
}

// CreateWorkRepo creates a local repository on main with one commit and no
// remotes.
func CreateWorkRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	work := filepath.Join(dir, "work")
	initRepo(t, dir, work)
	commitFile(t, work, "README.md", "# local\n", "initial commit")
	return work
}

// CreateBranch creates branch at HEAD and checks it out.
func CreateBranch(t *testing.T, repo, branch string) {
	t.Helper()
	Run(t, repo, "git", "checkout", "-b", branch)
}

// WriteCommand writes a shell script named name into repo. When executable
// is false the file is written without execute bits.
func WriteCommand(t *testing.T, repo, name, body string, executable bool) string {
	t.Helper()
	mode := os.FileMode(0o644)
	if executable {
		mode = 0o755
	}
	path := filepath.Join(repo, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), mode); err != nil {
		t.Fatal(err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, mode); err != nil {
		t.Fatal(err)
	}
	return path
}

// HeadMessage returns the first line of the commit message at HEAD.
func HeadMessage(t *testing.T, repoPath string) string {
	t.Helper()
	repo := open(t, repoPath)
	head, err := repo.Head()
	if err != nil {
		t.Fatalf("failed to resolve HEAD in %s: %v", repoPath, err)
	}
	return commitSubject(t, repo, head.Hash())
}

// BranchMessage returns the first line of the commit message at the tip of
// branch. Works on bare repositories.
func BranchMessage(t *testing.T, repoPath, branch string) string {
	t.Helper()
	repo := open(t, repoPath)
	ref, err := repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		t.Fatalf("failed to resolve %s in %s: %v", branch, repoPath, err)
	}
	return commitSubject(t, repo, ref.Hash())
}

// CommitCount returns the number of commits reachable from HEAD.
func CommitCount(t *testing.T, repoPath string) int {
	t.Helper()
	repo := open(t, repoPath)
	head, err := repo.Head()
	if err != nil {
		t.Fatalf("failed to resolve HEAD in %s: %v", repoPath, err)
	}

	iter, err := repo.Log(&goGit.LogOptions{From: head.Hash()})
	if err != nil {
		t.Fatalf("failed to read log in %s: %v", repoPath, err)
	}
	count := 0
	if err := iter.ForEach(func(*object.Commit) error {
		count++
		return nil
	}); err != nil {
		t.Fatalf("failed to walk log in %s: %v", repoPath, err)
	}
	return count
}

// HeadBranch returns the short name of the branch HEAD points to.
func HeadBranch(t *testing.T, repoPath string) string {
	t.Helper()
	head, err := open(t, repoPath).Head()
	if err != nil {
		t.Fatalf("failed to resolve HEAD in %s: %v", repoPath, err)
	}
	return head.Name().Short()
}

// RemoteURL returns the first URL of the named remote, or "" if the remote
// does not exist.
func RemoteURL(t *testing.T, repoPath, name string) string {
	t.Helper()
	remote, err := open(t, repoPath).Remote(name)
	if err != nil {
		return ""
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return ""
	}
	return urls[0]
}

// Upstream returns the remote and merge ref configured for branch, empty
// when the branch has no upstream.
func Upstream(t *testing.T, repoPath, branch string) (string, string) {
	t.Helper()
	cfg, err := open(t, repoPath).Config()
	if err != nil {
		t.Fatalf("failed to read config in %s: %v", repoPath, err)
	}
	b, ok := cfg.Branches[branch]
	if !ok {
		return "", ""
	}
	return b.Remote, b.Merge.String()
}

// Git runs git in dir and returns its trimmed stdout.
func Git(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("git %v failed: %v", args, err)
	}
	return strings.TrimSpace(string(out))
}

// Run executes a command in dir and fails the test on error.
func Run(t *testing.T, dir string, name string, args ...string) {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("command %s %v failed: %v\n%s", name, args, err, out)
	}
}

func initRepo(t *testing.T, dir, path string) {
	t.Helper()
	Run(t, dir, "git", "init", "-b", "main", path)
	configureIdentity(t, path)
}

func configureIdentity(t *testing.T, repo string) {
	t.Helper()
	Run(t, repo, "git", "config", "user.email", "test@example.com")
	Run(t, repo, "git", "config", "user.name", "Test")
	Run(t, repo, "git", "config", "commit.gpgsign", "false")
}

func commitFile(t *testing.T, repo, name, content, message string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(repo, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	Run(t, repo, "git", "add", name)
	Run(t, repo, "git", "commit", "-m", message)
}

func open(t *testing.T, path string) *goGit.Repository {
	t.Helper()
	repo, err := goGit.PlainOpen(path)
	if err != nil {
		t.Fatalf("failed to open repository %s: %v", path, err)
	}
	return repo
}

func commitSubject(t *testing.T, repo *goGit.Repository, hash plumbing.Hash) string {
	t.Helper()
	commit, err := repo.CommitObject(hash)
	if err != nil {
		t.Fatalf("failed to load commit %s: %v", hash, err)
	}
	subject, _, _ := strings.Cut(commit.Message, "\n")
	return subject
}

package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"

	"github.com/bashhack/gitloop/internal/constants"
	loopErrors "github.com/bashhack/gitloop/internal/errors"
)

// Mode selects what the caller does when the lock is already held.
type Mode string

const (
	// ModeWarn logs the conflict and carries on without the lock.
	ModeWarn Mode = "warn"

	// ModeEnforce refuses to start while another live process holds the lock.
	ModeEnforce Mode = "enforce"
)

// ParseMode converts a user-supplied string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeWarn:
		return ModeWarn, nil
	case ModeEnforce:
		return ModeEnforce, nil
	default:
		return "", fmt.Errorf("unknown lock mode %q (want %q or %q)", s, ModeWarn, ModeEnforce)
	}
}

// Locker guards a repository with a PID file at its root
type Locker struct {
	lockFile string
	lockFd   *os.File
	pid      int
	acquired bool
}

// New creates a Locker for the repository at repoPath. Nothing is touched on
// disk until Acquire.
func New(repoPath string) (*Locker, error) {
	if runtime.GOOS == "windows" {
		return nil, loopErrors.NewLockError("", 0,
			loopErrors.Wrap(loopErrors.ErrLockAcquisitionFailure,
				"gitloop only supports Unix-like operating systems"))
	}

	absRepo, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, loopErrors.NewLockError(repoPath, 0,
			loopErrors.Wrap(err, "failed to resolve repository path"))
	}

	return &Locker{
		lockFile: filepath.Join(absRepo, constants.LockFileName),
		pid:      os.Getpid(),
	}, nil
}

// Path returns the lock file location.
func (l *Locker) Path() string {
	return l.lockFile
}

// Acquired reports whether this Locker currently holds the lock.
func (l *Locker) Acquired() bool {
	return l.acquired
}

// Acquire takes the lock. It returns an error wrapping ErrAlreadyRunning when
// a live process holds it; stale locks left by dead processes are replaced.
func (l *Locker) Acquire() error {
	err := l.createLockFile("failed to create lock file")
	if err == nil {
		return nil
	}
	if os.IsExist(err) {
		return l.acquireExisting()
	}
	return err
}

// createLockFile atomically creates the lock file, flocks it and writes our
// PID. os.IsExist(err) is preserved so callers can fall back to the existing file.
func (l *Locker) createLockFile(failure string) error {
	var err error

	l.lockFd, err = os.OpenFile(l.lockFile, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o644)
	if err != nil {
		l.lockFd = nil
		if os.IsExist(err) {
			return err
		}
		return loopErrors.NewLockError(l.lockFile, 0, loopErrors.Wrap(err, failure))
	}

	if err = l.flock(); err != nil {
		l.closeFd()
		return loopErrors.NewLockError(l.lockFile, 0,
			loopErrors.Wrap(err, "failed to flock newly created lock file"))
	}

	return l.finishAcquire(false)
}

// acquireExisting opens a lock file left by someone else and takes it over
// if nobody holds the flock.
func (l *Locker) acquireExisting() error {
	var err error
	l.lockFd, err = os.OpenFile(l.lockFile, os.O_RDWR, 0o644)
	if err != nil {
		l.lockFd = nil
		return loopErrors.NewLockError(l.lockFile, 0,
			loopErrors.Wrap(err, "failed to open existing lock file"))
	}

	if err = l.flock(); err != nil {
		l.closeFd()

		// EWOULDBLOCK and EAGAIN are distinct on some older Unix systems.
		if loopErrors.Is(err, syscall.EWOULDBLOCK) || loopErrors.Is(err, syscall.EAGAIN) {
			return l.handleHeldLock()
		}
		return loopErrors.NewLockError(l.lockFile, 0, loopErrors.Wrap(err, "failed to flock lock file"))
	}

	// The previous holder may have unlinked the file between our open and
	// our flock, leaving us locking an orphaned inode.
	if !l.lockedFileIsCurrent() {
		l.closeFd()
		return loopErrors.NewLockError(l.lockFile, 0,
			loopErrors.Wrap(loopErrors.ErrAlreadyRunning, "lock file was replaced while acquiring"))
	}

	return l.finishAcquire(true)
}

// handleHeldLock decides between "another instance is running" and a stale
// file whose owner died without unlinking it.
func (l *Locker) handleHeldLock() error {
	otherPid, err := l.readPid()
	if err != nil {
		return loopErrors.NewLockError(l.lockFile, 0,
			loopErrors.Wrap(loopErrors.ErrAlreadyRunning, fmt.Sprintf("lock is held but its PID is unreadable: %v", err)))
	}

	if isProcessRunning(otherPid) {
		return loopErrors.NewLockError(l.lockFile, otherPid, loopErrors.ErrAlreadyRunning)
	}

	if err := os.Remove(l.lockFile); err != nil {
		return loopErrors.NewLockError(l.lockFile, otherPid,
			loopErrors.Wrap(err, fmt.Sprintf("found stale lock file from PID %d, but failed to remove it", otherPid)))
	}

	err = l.createLockFile("failed to recreate lock file after removing stale lock")
	if os.IsExist(err) {
		return loopErrors.NewLockError(l.lockFile, 0,
			loopErrors.Wrap(loopErrors.ErrAlreadyRunning, "another instance took the lock after the stale lock was removed"))
	}
	return err
}

// finishAcquire writes our PID, truncating first when reusing an old file.
func (l *Locker) finishAcquire(truncate bool) error {
	if truncate {
		if err := l.lockFd.Truncate(0); err != nil {
			return l.abandon(loopErrors.NewLockError(l.lockFile, l.pid,
				loopErrors.Wrap(err, "failed to truncate lock file")))
		}
	}

	if _, err := l.lockFd.WriteAt([]byte(strconv.Itoa(l.pid)), 0); err != nil {
		return l.abandon(loopErrors.NewLockError(l.lockFile, l.pid,
			loopErrors.Wrap(err, "failed to write PID to lock file")))
	}

	l.acquired = true
	return nil
}

// abandon releases a half-acquired lock and returns the original error.
func (l *Locker) abandon(err error) error {
	if releaseErr := l.Release(); releaseErr != nil {
		return loopErrors.Wrap(err, fmt.Sprintf("release after failure also failed: %v", releaseErr))
	}
	return err
}

func (l *Locker) flock() error {
	return syscall.Flock(int(l.lockFd.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
}

func (l *Locker) lockedFileIsCurrent() bool {
	held, err := l.lockFd.Stat()
	if err != nil {
		return false
	}
	onDisk, err := os.Stat(l.lockFile)
	if err != nil {
		return false
	}
	return os.SameFile(held, onDisk)
}

func (l *Locker) closeFd() {
	if l.lockFd != nil {
		_ = l.lockFd.Close()
		l.lockFd = nil
	}
}

// isProcessRunning checks if a process exists using signal 0
func isProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = process.Signal(syscall.Signal(0))
	return err == nil || loopErrors.Is(err, syscall.EPERM)
}

func (l *Locker) readPid() (int, error) {
	data, err := os.ReadFile(l.lockFile)
	if err != nil {
		return 0, loopErrors.Wrap(err, "failed to read lock file")
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, loopErrors.Wrap(err, "invalid PID in lock file")
	}
	return pid, nil
}

// Release unlocks and removes the lock file. It is a no-op when the lock was
// never acquired, so a process running in warn mode never deletes a lock
// that belongs to someone else.
func (l *Locker) Release() error {
	if l.lockFd == nil {
		return nil
	}

	var errs []error

	// Unlink while still holding the flock so a waiter can never lock a
	// file that is about to disappear.
	if l.lockedFileIsCurrent() {
		if err := os.Remove(l.lockFile); err != nil && !os.IsNotExist(err) {
			errs = append(errs, loopErrors.NewLockError(l.lockFile, l.pid,
				loopErrors.Wrap(err, "failed to remove lock file")))
		}
	}

	if err := syscall.Flock(int(l.lockFd.Fd()), syscall.LOCK_UN); err != nil {
		errs = append(errs, loopErrors.NewLockError(l.lockFile, l.pid,
			loopErrors.Wrap(err, "failed to release lock")))
	}

	if err := l.lockFd.Close(); err != nil {
		errs = append(errs, loopErrors.NewLockError(l.lockFile, l.pid,
			loopErrors.Wrap(err, "failed to close lock file")))
	}

	l.lockFd = nil
	l.acquired = false

	return loopErrors.Join(errs...)
}

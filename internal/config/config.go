package config

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bashhack/gitloop/internal/constants"
	loopErrors "github.com/bashhack/gitloop/internal/errors"
	"github.com/bashhack/gitloop/internal/lock"
)

const (
	// DefaultMaxRetries is the default number of consecutive identical errors
	// allowed before the loop exits. 0 keeps the loop running forever.
	DefaultMaxRetries = 0

	// DefaultEnvFile is the dotenv file read before the environment.
	DefaultEnvFile = ".env"
)

// Config holds all gitloop settings, merged from defaults, an optional YAML
// file, a dotenv file, the environment and command-line flags.
type Config struct {
	// Repository

	// RepoPath is the working tree gitloop drives. Empty means the current
	// directory.
	RepoPath string

	// Branch is the branch outputs are committed to.
	Branch string

	// RemoteURL is used only when the repository has no origin remote.
	RemoteURL string

	// Command

	// CommandPath is the script to run, relative to RepoPath unless absolute.
	CommandPath string

	// IntervalSeconds is the pause between iterations in continuous mode.
	IntervalSeconds int

	// Once runs a single iteration and exits.
	Once bool

	// Timeouts, in seconds. 0 disables the limit.
	GitTimeoutSeconds     int
	CommandTimeoutSeconds int

	// LockMode decides what happens when another instance holds the lock.
	LockMode lock.Mode

	// MaxRetries stops the loop after this many consecutive identical
	// errors. 0 means never.
	MaxRetries int

	// Output

	// Verbose shows informational messages and diagnostic warnings.
	Verbose bool

	// Debug enables the structured log file.
	Debug bool

	// LogFile is the structured log location. Empty means a per-repository
	// file under $XDG_DATA_HOME/gitloop/logs.
	LogFile string

	// Sources

	// ConfigFile is an optional YAML file.
	ConfigFile string

	// EnvFile is the dotenv file loaded before reading the environment.
	EnvFile string

	// Version prints version information and exits.
	Version bool

	// VersionInfo contains version, commit, and build date information,
	// injected at build time.
	VersionInfo VersionInfo

	// quiet backs the --quiet flag, which inverts Verbose.
	quiet bool
}

// VersionInfo contains build-time version metadata.
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// New creates a new Config with default values
func New() *Config {
	return &Config{
		Branch:                constants.DefaultBranch,
		RemoteURL:             constants.DefaultRemoteURL,
		CommandPath:           constants.DefaultCommandPath,
		IntervalSeconds:       constants.DefaultIntervalSeconds,
		GitTimeoutSeconds:     int(constants.DefaultGitTimeout / time.Second),
		CommandTimeoutSeconds: int(constants.DefaultCommandTimeout / time.Second),
		LockMode:              lock.ModeWarn,
		MaxRetries:            DefaultMaxRetries,
		Verbose:               true,
		EnvFile:               DefaultEnvFile,
		VersionInfo: VersionInfo{
			Version: "dev",
			Commit:  "unknown",
			Date:    "unknown",
		},
	}
}

// Interval returns the pause between iterations.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// GitTimeout returns the limit for a single git invocation.
func (c *Config) GitTimeout() time.Duration {
	return time.Duration(c.GitTimeoutSeconds) * time.Second
}

// CommandTimeout returns the limit for a single command run.
func (c *Config) CommandTimeout() time.Duration {
	return time.Duration(c.CommandTimeoutSeconds) * time.Second
}

// Finalize validates the merged configuration and fills in derived values.
func (c *Config) Finalize() error {
	if c.IntervalSeconds < constants.MinIntervalSeconds {
		c.IntervalSeconds = constants.MinIntervalSeconds
	}

	mode, err := lock.ParseMode(string(c.LockMode))
	if err != nil {
		return loopErrors.NewConfigError("lockMode", string(c.LockMode),
			loopErrors.Wrap(loopErrors.ErrInvalidConfiguration, err.Error()))
	}
	c.LockMode = mode

	if c.GitTimeoutSeconds < 0 {
		return loopErrors.NewConfigError("gitTimeout", c.GitTimeoutSeconds,
			loopErrors.Wrap(loopErrors.ErrInvalidConfiguration, "must not be negative"))
	}
	if c.CommandTimeoutSeconds < 0 {
		return loopErrors.NewConfigError("commandTimeout", c.CommandTimeoutSeconds,
			loopErrors.Wrap(loopErrors.ErrInvalidConfiguration, "must not be negative"))
	}
	if c.MaxRetries < 0 {
		return loopErrors.NewConfigError("maxRetries", c.MaxRetries,
			loopErrors.Wrap(loopErrors.ErrInvalidConfiguration, "must not be negative"))
	}

	if c.Branch == "" {
		c.Branch = constants.DefaultBranch
	}
	if c.RemoteURL == "" {
		c.RemoteURL = constants.DefaultRemoteURL
	}
	if c.CommandPath == "" {
		c.CommandPath = constants.DefaultCommandPath
	}

	if c.RepoPath == "" {
		c.RepoPath, err = os.Getwd()
		if err != nil {
			return loopErrors.NewConfigError("repoPath", "", loopErrors.Wrap(err, "failed to get current directory"))
		}
	}

	absRepoPath, err := filepath.Abs(c.RepoPath)
	if err != nil {
		return loopErrors.NewConfigError("repoPath", c.RepoPath, loopErrors.Wrap(err, "failed to resolve absolute path"))
	}
	c.RepoPath = absRepoPath

	if c.Debug && c.LogFile == "" {
		c.LogFile = defaultLogFile(c.RepoPath)
		if err := os.MkdirAll(filepath.Dir(c.LogFile), 0o700); err != nil {
			return loopErrors.NewConfigError("logFile", c.LogFile, loopErrors.Wrap(err, "cannot create log directory"))
		}
	}

	return nil
}

// defaultLogFile follows the XDG Base Directory layout, one file per
// repository.
func defaultLogFile(repoPath string) string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			dataDir = filepath.Join(homeDir, ".local", "share")
		} else {
			dataDir = os.TempDir()
		}
	}

	sum := sha256.Sum256([]byte(repoPath))
	return filepath.Join(dataDir, "gitloop", "logs", fmt.Sprintf("gitloop-%x.log", sum[:8]))
}

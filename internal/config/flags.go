package config

import (
	"github.com/spf13/pflag"

	"github.com/bashhack/gitloop/internal/lock"
)

// lockModeValue adapts lock.Mode to pflag.Value so bad values fail at parse
// time.
type lockModeValue struct {
	target *lock.Mode
}

func (v lockModeValue) String() string {
	if v.target == nil {
		return ""
	}
	return string(*v.target)
}

func (v lockModeValue) Set(s string) error {
	mode, err := lock.ParseMode(s)
	if err != nil {
		return err
	}
	*v.target = mode
	return nil
}

func (v lockModeValue) Type() string {
	return "mode"
}

// SetupFlags registers command-line flags bound to c. The defaults shown in
// help are c's current values.
func (c *Config) SetupFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.Once, "once", c.Once, "Run one iteration and exit")
	fs.IntVar(&c.IntervalSeconds, "interval", c.IntervalSeconds, "Seconds between iterations (minimum 1)")
	fs.StringVar(&c.RepoPath, "repo", c.RepoPath, "Path to repository (default: current directory)")
	fs.StringVar(&c.Branch, "branch", c.Branch, "Branch to commit outputs to")
	fs.StringVar(&c.RemoteURL, "remote-url", c.RemoteURL, "URL added as origin when the repository has no origin")
	fs.StringVar(&c.CommandPath, "command", c.CommandPath, "Command to run, relative to the repository")
	fs.Var(lockModeValue{target: &c.LockMode}, "lock-mode", "What to do when another instance holds the lock: warn or enforce")
	fs.IntVar(&c.GitTimeoutSeconds, "git-timeout", c.GitTimeoutSeconds, "Seconds allowed per git invocation (0 = no limit)")
	fs.IntVar(&c.CommandTimeoutSeconds, "command-timeout", c.CommandTimeoutSeconds, "Seconds allowed per command run (0 = no limit)")
	fs.IntVar(&c.MaxRetries, "max-retries", c.MaxRetries, "Consecutive identical errors before exiting (0 = never)")
	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "YAML config file")
	fs.StringVar(&c.EnvFile, "env-file", c.EnvFile, "dotenv file loaded before reading the environment")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "Write a structured log file")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "Path to log file (default: ~/.local/share/gitloop/logs/gitloop-{repo-hash}.log)")
	fs.BoolVar(&c.quiet, "quiet", !c.Verbose, "Hide informational messages")
	fs.BoolVar(&c.Version, "version", c.Version, "Print version information and exit")
}

// Resolve merges every configuration source into c, lowest precedence first:
// defaults, the YAML file, the dotenv file and environment, then the flags
// that were set explicitly on fs. c must be the Config fs was set up with.
func (c *Config) Resolve(fs *pflag.FlagSet) error {
	if err := LoadDotEnv(c.EnvFile, fs.Changed("env-file")); err != nil {
		return err
	}

	merged := New()
	merged.VersionInfo = c.VersionInfo
	merged.EnvFile = c.EnvFile
	merged.Once = c.Once
	merged.Version = c.Version

	merged.ConfigFile = c.ConfigFile
	if !fs.Changed("config") {
		merged.ConfigFile = getEnvString(EnvConfig, "")
	}
	if merged.ConfigFile != "" {
		if err := merged.LoadFile(merged.ConfigFile); err != nil {
			return err
		}
	}

	merged.LoadFromEnvironment()

	fs.Visit(func(f *pflag.Flag) {
		merged.applyFlag(c, f.Name)
	})

	*c = *merged
	return nil
}

// applyFlag copies the value parsed for flag name from parsed into c.
func (c *Config) applyFlag(parsed *Config, name string) {
	switch name {
	case "interval":
		c.IntervalSeconds = parsed.IntervalSeconds
	case "repo":
		c.RepoPath = parsed.RepoPath
	case "branch":
		c.Branch = parsed.Branch
	case "remote-url":
		c.RemoteURL = parsed.RemoteURL
	case "command":
		c.CommandPath = parsed.CommandPath
	case "lock-mode":
		c.LockMode = parsed.LockMode
	case "git-timeout":
		c.GitTimeoutSeconds = parsed.GitTimeoutSeconds
	case "command-timeout":
		c.CommandTimeoutSeconds = parsed.CommandTimeoutSeconds
	case "max-retries":
		c.MaxRetries = parsed.MaxRetries
	case "debug":
		c.Debug = parsed.Debug
	case "log-file":
		c.LogFile = parsed.LogFile
	case "quiet":
		c.Verbose = !parsed.quiet
	}
}

package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	loopErrors "github.com/bashhack/gitloop/internal/errors"
	"github.com/bashhack/gitloop/internal/lock"
)

// Environment variable names.
const (
	EnvIntervalSeconds       = "LOOP_INTERVAL_SECONDS"
	EnvRepoPath              = "LOOP_REPO_PATH"
	EnvBranch                = "LOOP_BRANCH"
	EnvRemoteURL             = "LOOP_REMOTE_URL"
	EnvCommand               = "LOOP_COMMAND"
	EnvLockMode              = "LOOP_LOCK_MODE"
	EnvGitTimeoutSeconds     = "LOOP_GIT_TIMEOUT_SECONDS"
	EnvCommandTimeoutSeconds = "LOOP_COMMAND_TIMEOUT_SECONDS"
	EnvMaxRetries            = "LOOP_MAX_RETRIES"
	EnvDebug                 = "LOOP_DEBUG"
	EnvLogFile               = "LOOP_LOG_FILE"
	EnvVerbose               = "LOOP_VERBOSE"
	EnvConfig                = "LOOP_CONFIG"
)

// LoadFromEnvironment updates config from environment variables. Unset or
// unparseable numeric values leave the current value in place.
func (c *Config) LoadFromEnvironment() {
	c.IntervalSeconds = getEnvInt(EnvIntervalSeconds, c.IntervalSeconds)
	c.RepoPath = getEnvString(EnvRepoPath, c.RepoPath)
	c.Branch = getEnvString(EnvBranch, c.Branch)
	c.RemoteURL = getEnvString(EnvRemoteURL, c.RemoteURL)
	c.CommandPath = getEnvString(EnvCommand, c.CommandPath)
	c.LockMode = lock.Mode(getEnvString(EnvLockMode, string(c.LockMode)))
	c.GitTimeoutSeconds = getEnvInt(EnvGitTimeoutSeconds, c.GitTimeoutSeconds)
	c.CommandTimeoutSeconds = getEnvInt(EnvCommandTimeoutSeconds, c.CommandTimeoutSeconds)
	c.MaxRetries = getEnvInt(EnvMaxRetries, c.MaxRetries)
	c.Debug = getEnvBool(EnvDebug, c.Debug)
	c.LogFile = getEnvString(EnvLogFile, c.LogFile)
	c.Verbose = getEnvBool(EnvVerbose, c.Verbose)
}

// LoadDotEnv reads KEY=VALUE pairs from path into the process environment.
// Variables that are already set win. A missing file is only an error when
// required is true.
func LoadDotEnv(path string, required bool) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) && !required {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return loopErrors.NewConfigError("envFile", path, loopErrors.Wrap(err, "failed to load dotenv file"))
	}
	return nil
}

// getEnvString returns an environment variable string or a default value
func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns an environment variable as int or a default value
func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.Atoi(strings.TrimSpace(valueStr)); err == nil {
			return value
		}
	}
	return defaultValue
}

// getEnvBool returns an environment variable as bool or a default value
func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		switch strings.ToLower(strings.TrimSpace(valueStr)) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultValue
}

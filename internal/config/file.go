package config

import (
	"bytes"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	loopErrors "github.com/bashhack/gitloop/internal/errors"
	"github.com/bashhack/gitloop/internal/lock"
)

// fileConfig mirrors the YAML file. Pointer fields distinguish "absent" from
// a zero value so only keys present in the file override earlier layers.
type fileConfig struct {
	Repo                  *string `yaml:"repo"`
	Branch                *string `yaml:"branch"`
	RemoteURL             *string `yaml:"remote_url"`
	Command               *string `yaml:"command"`
	IntervalSeconds       *int    `yaml:"interval_seconds"`
	LockMode              *string `yaml:"lock_mode"`
	GitTimeoutSeconds     *int    `yaml:"git_timeout_seconds"`
	CommandTimeoutSeconds *int    `yaml:"command_timeout_seconds"`
	MaxRetries            *int    `yaml:"max_retries"`
	Debug                 *bool   `yaml:"debug"`
	LogFile               *string `yaml:"log_file"`
	Verbose               *bool   `yaml:"verbose"`
}

// LoadFile overlays the settings found in a YAML file. Unknown keys are
// rejected so typos surface instead of being ignored.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return loopErrors.NewConfigError("config", path, loopErrors.Wrap(err, "failed to read config file"))
	}

	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && err != io.EOF {
		return loopErrors.NewConfigError("config", path,
			loopErrors.Wrap(loopErrors.ErrInvalidConfiguration, err.Error()))
	}

	setString(&c.RepoPath, fc.Repo)
	setString(&c.Branch, fc.Branch)
	setString(&c.RemoteURL, fc.RemoteURL)
	setString(&c.CommandPath, fc.Command)
	setString(&c.LogFile, fc.LogFile)
	setInt(&c.IntervalSeconds, fc.IntervalSeconds)
	setInt(&c.GitTimeoutSeconds, fc.GitTimeoutSeconds)
	setInt(&c.CommandTimeoutSeconds, fc.CommandTimeoutSeconds)
	setInt(&c.MaxRetries, fc.MaxRetries)
	setBool(&c.Debug, fc.Debug)
	setBool(&c.Verbose, fc.Verbose)
	if fc.LockMode != nil {
		c.LockMode = lock.Mode(*fc.LockMode)
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

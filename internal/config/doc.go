// Package config resolves gitloop's settings.
//
// Values are layered, lowest precedence first:
//
//  1. Built-in defaults (New)
//  2. A YAML file named by --config or LOOP_CONFIG (LoadFile)
//  3. A dotenv file (default .env) and the process environment
//     (LoadDotEnv, LoadFromEnvironment); the dotenv file never overrides a
//     variable that is already set
//  4. Command-line flags that were set explicitly (SetupFlags, Resolve)
//
// Finalize then validates the result, clamps the interval to at least one
// second, resolves the repository to an absolute path and, when debug
// logging is on, picks a per-repository log file under
// $XDG_DATA_HOME/gitloop/logs.
//
// # YAML File
//
//	repo: /srv/results
//	branch: main
//	remote_url: git@github.com:example/results.git
//	command: cmd.sh
//	interval_seconds: 300
//	lock_mode: enforce
//	git_timeout_seconds: 120
//	command_timeout_seconds: 600
//	max_retries: 0
//	debug: false
//	log_file: /var/log/gitloop.log
//	verbose: true
//
// Unknown keys are rejected.
//
// # Environment
//
// Every setting has a LOOP_* variable; see the Env* constants. Numeric
// variables that fail to parse are ignored, so LOOP_INTERVAL_SECONDS=abc
// leaves the interval at its default of 60 seconds.
package config

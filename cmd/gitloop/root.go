package main

import (
	"github.com/spf13/cobra"

	"github.com/bashhack/gitloop/internal/constants"
)

const longHelp = `gitloop runs a command inside a git repository, writes its standard output
to "stdout" and its standard error to "stdin" at the repository root, and
commits and pushes the two files whenever they change.

Each iteration:
  1. adds the origin remote if it is missing
  2. checks out the target branch and pulls it with rebase
  3. runs the command and writes its output files
  4. commits and pushes when the output changed

Settings are read from, lowest precedence first: built-in defaults, a YAML
file (--config or LOOP_CONFIG), a dotenv file (--env-file, default .env),
the environment, and finally command-line flags.

Environment variables:
  LOOP_REPO_PATH, LOOP_BRANCH, LOOP_REMOTE_URL, LOOP_COMMAND,
  LOOP_INTERVAL_SECONDS, LOOP_LOCK_MODE, LOOP_GIT_TIMEOUT_SECONDS,
  LOOP_COMMAND_TIMEOUT_SECONDS, LOOP_MAX_RETRIES, LOOP_DEBUG, LOOP_LOG_FILE,
  LOOP_VERBOSE, LOOP_CONFIG

A numeric variable that is not a valid integer is ignored: the value from the
layer below it (the YAML file, or the built-in default) stays in effect. For
example, LOOP_INTERVAL_SECONDS=soon with interval_seconds: 30 in the YAML file
runs every 30 seconds. Intervals below 1 second are raised to 1.`

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gitloop",
		Short:         constants.Tagline,
		Long:          longHelp,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.Config.Resolve(cmd.Flags()); err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}

	cmd.SetOut(app.Stdout)
	cmd.SetErr(app.Stderr)
	app.Config.SetupFlags(cmd.Flags())

	return cmd
}

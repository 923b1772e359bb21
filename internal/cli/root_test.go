package cli

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand(func() time.Time { return fixedNow })
	return executeCommand(cmd, args...)
}

func executeCommand(cmd *cobra.Command, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "activitysync", cmd.Use)
	assert.Contains(t, cmd.Long, "push channel")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"run", "reminders", "trend"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)
	assert.Contains(t, configFlag.DefValue, "config.yaml")

	require.NotNil(t, cmd.PersistentFlags().Lookup("log-level"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("log-format"))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
	assert.Equal(t, 2, ExitCode(&UsageError{Usage: "x"}))
}

func TestUnknownFlagIsUsageError(t *testing.T) {
	_, _, err := execute(t, "trend", "--bogus")
	require.Error(t, err)
	assert.Equal(t, 2, ExitCode(err))

	var stderr bytes.Buffer
	Report(&stderr, err)
	assert.Contains(t, stderr.String(), "unknown flag: --bogus")
}

func TestRun_MissingIdentity(t *testing.T) {
	_, _, err := execute(t, "run", "--config", t.TempDir()+"/absent.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "viewer.identity must be set")
	assert.Equal(t, 1, ExitCode(err))
}

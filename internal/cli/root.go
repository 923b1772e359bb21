// Package cli implements the activitysync command tree.
package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/activity-sync/internal/model"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string

	// now is the clock used by time-relative commands.
	now func() time.Time
}

// UsageError marks a command-line mistake. It maps to exit code 2.
type UsageError struct {
	Usage string
	Err   error

	// reported is set once the usage line has been written to stderr.
	reported bool
}

func (e *UsageError) Error() string {
	if e.Err == nil {
		return "usage: " + e.Usage
	}
	return fmt.Sprintf("%v\nusage: %s", e.Err, e.Usage)
}

func (e *UsageError) Unwrap() error { return e.Err }

// Report writes err to w unless the command already did.
func Report(w io.Writer, err error) {
	if err == nil {
		return
	}
	var usageErr *UsageError
	if errors.As(err, &usageErr) && usageErr.reported {
		return
	}
	fmt.Fprintln(w, "Error:", err)
}

// ExitCode maps an Execute error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return 2
	}
	return 1
}

// NewRootCommand creates the root command for the activitysync CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(time.Now)
}

func newRootCommand(now func() time.Time) *cobra.Command {
	opts := &RootOptions{now: now}

	cmd := &cobra.Command{
		Use:   "activitysync",
		Short: "Keep project-management views in sync with server pushes",
		Long: "activitysync listens to the server push channel, re-fetches project data " +
			"when an event concerns the viewer, and tracks which notification is still new.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &UsageError{Usage: c.UseLine(), Err: err}
	})

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", model.DefaultConfigPath(), "path to the YAML config file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "override log.level")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "override log.format (text|json)")

	// Add subcommands
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewRemindersCommand(opts))
	cmd.AddCommand(NewTrendCommand(opts))

	return cmd
}

package cli

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/nhle/activity-sync/internal/reminder"
	"github.com/nhle/activity-sync/internal/theme"
)

const (
	defaultStartInMinutes  = 2
	defaultDurationMinutes = 60
	remindersUsage         = "activitysync reminders [startInMinutes] [durationMinutes]"
	labelWidth             = 20
)

// NewRemindersCommand creates the reminders command. Flag parsing is off so
// negative minute counts such as -5 reach parseReminderArgs as numbers.
func NewRemindersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reminders [startInMinutes] [durationMinutes]",
		Short: "Print the reminder checkpoints of an activity starting soon",
		Long: "Computes an activity starting startInMinutes from now (default 2) and lasting " +
			"durationMinutes (default 60), then prints its start, end and the five reminder " +
			"checkpoints in display and input formats. Negative values are allowed.",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if wantsHelp(args) {
				return cmd.Help()
			}
			if len(args) > 0 && args[0] == "--" {
				args = args[1:]
			}

			startIn, duration, err := parseReminderArgs(args)
			if err != nil {
				styles := theme.New(lipgloss.NewRenderer(cmd.ErrOrStderr()))
				fmt.Fprintln(cmd.ErrOrStderr(), styles.Error.Render("usage: "+remindersUsage))
				return &UsageError{Usage: remindersUsage, Err: err, reported: true}
			}

			now := rootOpts.now()
			start := now.Add(minutes(startIn))
			end := start.Add(minutes(duration))
			writeSchedule(cmd.OutOrStdout(), now, start, end, reminder.Compute(start, end))
			return nil
		},
	}
}

func wantsHelp(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-h", "--help":
			return true
		case "--":
			return false
		}
	}
	return false
}

// parseReminderArgs reads the optional positional numbers. Each must be a
// finite decimal number of minutes small enough to fit a time.Duration.
func parseReminderArgs(args []string) (float64, float64, error) {
	if len(args) > 2 {
		return 0, 0, fmt.Errorf("expected at most 2 arguments, got %d", len(args))
	}

	values := []float64{defaultStartInMinutes, defaultDurationMinutes}
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("parsing %q: %w", arg, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, 0, fmt.Errorf("%q is not a finite number", arg)
		}
		if math.Abs(v*float64(time.Minute)) >= math.MaxInt64 {
			return 0, 0, fmt.Errorf("%q minutes is out of range", arg)
		}
		values[i] = v
	}
	return values[0], values[1], nil
}

func minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}

// writeSchedule prints the activity and its checkpoints. Checkpoints
// already passed at now are muted.
func writeSchedule(w io.Writer, now, start, end time.Time, s reminder.Schedule) {
	styles := theme.New(lipgloss.NewRenderer(w))

	line := func(label string, cp reminder.Checkpoint, value lipgloss.Style) {
		pad := strings.Repeat(" ", max(0, labelWidth-len(label)))
		fmt.Fprintf(w, "  %s%s  %s  %s\n",
			styles.Label.Render(label), pad,
			value.Render(cp.Display()),
			styles.Muted.Render(cp.InputValue()),
		)
	}

	upcoming := make(map[reminder.CheckpointName]bool)
	for _, cp := range s.Upcoming(now) {
		upcoming[cp.Name] = true
	}

	fmt.Fprintln(w, styles.Header.Render("Activity"))
	line("start", reminder.Checkpoint{At: start}, styles.Value)
	line("end", reminder.Checkpoint{At: end}, styles.Value)
	fmt.Fprintln(w)
	fmt.Fprintln(w, styles.Header.Render("Reminders"))
	for _, cp := range s.Checkpoints() {
		value := styles.Muted
		if upcoming[cp.Name] {
			value = styles.Value
		}
		line(cp.Name.Label(), cp, value)
	}
}

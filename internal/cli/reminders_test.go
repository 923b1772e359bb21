package cli

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestReminders_Golden(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "reminders_default", args: nil},
		{name: "reminders_short_activity", args: []string{"0", "5"}},
		{name: "reminders_fractional", args: []string{"1.5", "45"}},
		{name: "reminders_started_earlier", args: []string{"-5"}},
		{name: "reminders_negative_duration", args: []string{"2", "-10"}},
		{name: "reminders_separator", args: []string{"--", "-0.5", "30"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := execute(t, append([]string{"reminders"}, tt.args...)...)
			require.NoError(t, err)
			assert.Empty(t, stderr)
			newGoldie(t).Assert(t, tt.name, []byte(stdout))
		})
	}
}

func TestReminders_InvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "non-numeric start", args: []string{"abc"}},
		{name: "non-numeric duration", args: []string{"2", "soon"}},
		{name: "NaN", args: []string{"NaN"}},
		{name: "infinite", args: []string{"2", "Inf"}},
		{name: "overflow", args: []string{"1e400"}},
		{name: "duration out of range", args: []string{"1e300"}},
		{name: "negative out of range", args: []string{"2", "-1e300"}},
		{name: "unknown flag", args: []string{"--soon"}},
		{name: "too many", args: []string{"1", "2", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := execute(t, append([]string{"reminders"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, 2, ExitCode(err))
			assert.Empty(t, stdout)
			assert.Equal(t, "usage: activitysync reminders [startInMinutes] [durationMinutes]\n", stderr)

			// Already reported; the caller prints nothing more.
			var extra bytes.Buffer
			Report(&extra, err)
			assert.Empty(t, extra.String())
		})
	}
}

func TestParseReminderArgs(t *testing.T) {
	start, duration, err := parseReminderArgs(nil)
	require.NoError(t, err)
	assert.Equal(t, 2.0, start)
	assert.Equal(t, 60.0, duration)

	start, duration, err = parseReminderArgs([]string{"10"})
	require.NoError(t, err)
	assert.Equal(t, 10.0, start)
	assert.Equal(t, 60.0, duration)
}

func TestParseReminderArgs_Negative(t *testing.T) {
	start, duration, err := parseReminderArgs([]string{"-0.5", "-10"})
	require.NoError(t, err)
	assert.Equal(t, -0.5, start)
	assert.Equal(t, -10.0, duration)
}

func TestReminders_Help(t *testing.T) {
	for _, arg := range []string{"-h", "--help"} {
		t.Run(arg, func(t *testing.T) {
			stdout, _, err := execute(t, "reminders", arg)
			require.NoError(t, err)
			assert.Contains(t, stdout, "reminders [startInMinutes] [durationMinutes]")
			assert.NotContains(t, stdout, "Reminders\n")
		})
	}
}

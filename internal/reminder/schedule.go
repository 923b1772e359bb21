// Package reminder derives the absolute checkpoint instants at which
// reminder actions for a scheduled activity become due.
//
// The package only computes instants. Dispatch, timers and firing state
// belong to whatever delivers the reminders.
package reminder

import (
	"time"

	"github.com/nhle/activity-sync/internal/model"
)

// Layouts used to present checkpoints.
const (
	// DisplayLayout is the human-readable timestamp form.
	DisplayLayout = "2006-01-02 15:04:05"

	// InputLayout fills a date/time input control: minute precision,
	// no seconds.
	InputLayout = "2006-01-02T15:04"
)

// CheckpointName identifies one of the fixed reminder checkpoints.
type CheckpointName string

const (
	ThirtyBeforeStart CheckpointName = "thirty-before-start"
	TenBeforeStart    CheckpointName = "ten-before-start"
	AtStart           CheckpointName = "at-start"
	TenBeforeEnd      CheckpointName = "ten-before-end"
	AtEnd             CheckpointName = "at-end"
)

// Order lists the checkpoint names in schedule order.
var Order = []CheckpointName{
	ThirtyBeforeStart,
	TenBeforeStart,
	AtStart,
	TenBeforeEnd,
	AtEnd,
}

// Label returns a short human-readable description of the checkpoint.
func (n CheckpointName) Label() string {
	switch n {
	case ThirtyBeforeStart:
		return "30 min before start"
	case TenBeforeStart:
		return "10 min before start"
	case AtStart:
		return "at start"
	case TenBeforeEnd:
		return "10 min before end"
	case AtEnd:
		return "at end"
	default:
		return string(n)
	}
}

// Checkpoint is a named absolute instant.
type Checkpoint struct {
	Name CheckpointName
	At   time.Time
}

// Display formats the instant with DisplayLayout in its own location.
func (c Checkpoint) Display() string {
	return c.At.Format(DisplayLayout)
}

// InputValue formats the instant with InputLayout in its own location.
func (c Checkpoint) InputValue() string {
	return c.At.Format(InputLayout)
}

// Schedule holds the five checkpoints of one activity.
type Schedule struct {
	ThirtyBeforeStart time.Time
	TenBeforeStart    time.Time
	AtStart           time.Time
	TenBeforeEnd      time.Time
	AtEnd             time.Time
}

const (
	leadLong  = 30 * time.Minute
	leadShort = 10 * time.Minute
)

// Compute derives the schedule for an activity running from startAt to
// endAt. The interval is not validated: when the activity is shorter than
// ten minutes, or endAt precedes startAt, the checkpoints come out of order
// and are returned as computed.
func Compute(startAt, endAt time.Time) Schedule {
	return Schedule{
		ThirtyBeforeStart: startAt.Add(-leadLong),
		TenBeforeStart:    startAt.Add(-leadShort),
		AtStart:           startAt,
		TenBeforeEnd:      endAt.Add(-leadShort),
		AtEnd:             endAt,
	}
}

// ForActivity is Compute applied to an activity's interval.
func ForActivity(a model.Activity) Schedule {
	return Compute(a.StartAt, a.EndAt)
}

// Checkpoints returns the checkpoints in Order.
func (s Schedule) Checkpoints() []Checkpoint {
	return []Checkpoint{
		{Name: ThirtyBeforeStart, At: s.ThirtyBeforeStart},
		{Name: TenBeforeStart, At: s.TenBeforeStart},
		{Name: AtStart, At: s.AtStart},
		{Name: TenBeforeEnd, At: s.TenBeforeEnd},
		{Name: AtEnd, At: s.AtEnd},
	}
}

// Upcoming returns, in Order, the checkpoints that are not before now.
// Callers use it to skip checkpoints that have already passed.
func (s Schedule) Upcoming(now time.Time) []Checkpoint {
	var out []Checkpoint
	for _, c := range s.Checkpoints() {
		if !c.At.Before(now) {
			out = append(out, c)
		}
	}
	return out
}

// In returns the schedule with every checkpoint converted to loc.
func (s Schedule) In(loc *time.Location) Schedule {
	return Schedule{
		ThirtyBeforeStart: s.ThirtyBeforeStart.In(loc),
		TenBeforeStart:    s.TenBeforeStart.In(loc),
		AtStart:           s.AtStart.In(loc),
		TenBeforeEnd:      s.TenBeforeEnd.In(loc),
		AtEnd:             s.AtEnd.In(loc),
	}
}

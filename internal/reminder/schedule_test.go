package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/activity-sync/internal/model"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, 1, 1, hour, minute, 0, 0, time.UTC)
}

func TestCompute_OneHourActivity(t *testing.T) {
	s := Compute(at(10, 0), at(11, 0))

	var got []string
	for _, c := range s.Checkpoints() {
		got = append(got, c.At.Format("15:04:05"))
	}
	assert.Equal(t, []string{"09:30:00", "09:50:00", "10:00:00", "10:50:00", "11:00:00"}, got)
}

func TestCompute_NamesInOrder(t *testing.T) {
	s := Compute(at(10, 0), at(11, 0))
	cps := s.Checkpoints()
	require.Len(t, cps, len(Order))
	for i, name := range Order {
		assert.Equal(t, name, cps[i].Name)
	}
}

func TestCompute_MonotonicWhenAtLeastTenMinutes(t *testing.T) {
	for _, minutes := range []int{10, 11, 45, 600} {
		start := at(8, 0)
		s := Compute(start, start.Add(time.Duration(minutes)*time.Minute))
		cps := s.Checkpoints()
		for i := 1; i < len(cps); i++ {
			assert.False(t, cps[i].At.Before(cps[i-1].At), "duration %d index %d", minutes, i)
		}
	}
}

func TestCompute_ShortActivityIsNotCorrected(t *testing.T) {
	s := Compute(at(10, 0), at(10, 5))
	assert.Equal(t, at(9, 55), s.TenBeforeEnd)
	assert.True(t, s.TenBeforeEnd.Before(s.AtStart))
}

func TestCompute_InvertedIntervalIsNotValidated(t *testing.T) {
	s := Compute(at(11, 0), at(10, 0))
	assert.Equal(t, at(10, 30), s.ThirtyBeforeStart)
	assert.Equal(t, at(9, 50), s.TenBeforeEnd)
	assert.Equal(t, at(10, 0), s.AtEnd)
}

func TestForActivity(t *testing.T) {
	a := model.Activity{ID: "a-1", StartAt: at(10, 0), EndAt: at(11, 0)}
	assert.Equal(t, Compute(a.StartAt, a.EndAt), ForActivity(a))
}

func TestCheckpoint_Formats(t *testing.T) {
	c := Checkpoint{Name: AtStart, At: time.Date(2024, 3, 9, 7, 5, 42, 0, time.UTC)}
	assert.Equal(t, "2024-03-09 07:05:42", c.Display())
	assert.Equal(t, "2024-03-09T07:05", c.InputValue())
}

func TestUpcoming(t *testing.T) {
	s := Compute(at(10, 0), at(11, 0))

	all := s.Upcoming(at(9, 0))
	assert.Len(t, all, 5)

	rest := s.Upcoming(at(10, 0))
	require.Len(t, rest, 3)
	assert.Equal(t, AtStart, rest[0].Name, "a checkpoint equal to now is still due")
	assert.Equal(t, TenBeforeEnd, rest[1].Name)

	assert.Empty(t, s.Upcoming(at(11, 1)))
}

func TestUpcoming_ShortActivityKeepsOrder(t *testing.T) {
	s := Compute(at(10, 0), at(10, 5))
	got := s.Upcoming(at(9, 56))

	var names []CheckpointName
	for _, c := range got {
		names = append(names, c.Name)
	}
	assert.Equal(t, []CheckpointName{AtStart, AtEnd}, names)
}

func TestSchedule_In(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	s := Compute(at(10, 0), at(11, 0)).In(loc)
	assert.Equal(t, "2024-01-01 12:00:00", s.Checkpoints()[2].Display())
}

func TestCheckpointName_Label(t *testing.T) {
	assert.Equal(t, "30 min before start", ThirtyBeforeStart.Label())
	assert.Equal(t, "at end", AtEnd.Label())
	assert.Equal(t, "custom", CheckpointName("custom").Label())
}

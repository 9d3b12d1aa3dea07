package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openAttendance() *Attendance {
	return &Attendance{
		ID:              "att-1",
		WorkingAtID:     "wa-1",
		RegisterID:      "reg-1",
		EmployeeID:      "emp-1",
		ShiftID:         "shift-1",
		WorkDate:        20260302,
		CheckInTime:     time.Date(2026, 3, 2, 8, 5, 0, 0, time.UTC),
		CheckInLocation: GeoPoint{Latitude: 1, Longitude: 1},
	}
}

func breakAt(id string, at time.Time) BreakEntry {
	return BreakEntry{
		ID:              id,
		Name:            "Coffee",
		DurationMinutes: 15,
		CheckInTime:     at,
		CheckInLocation: GeoPoint{Latitude: 1, Longitude: 1},
	}
}

func pauseAt(id string, at time.Time) PauseEntry {
	return PauseEntry{
		ID:              id,
		Name:            "Phone call",
		CheckInTime:     at,
		CheckInLocation: GeoPoint{Latitude: 1, Longitude: 1},
	}
}

func TestStartBreak_MutualExclusion(t *testing.T) {
	att := openAttendance()
	now := time.Date(2026, 3, 2, 10, 2, 0, 0, time.UTC)

	require.NoError(t, att.ApplyStartBreak(breakAt("b-1", now)))

	// Second break while the first is open.
	err := att.ApplyStartBreak(breakAt("b-2", now.Add(time.Minute)))
	assert.ErrorIs(t, err, ErrSomeBreakIsPending)

	// Pause while a break is open.
	err = att.ApplyStartPause(pauseAt("p-1", now.Add(2*time.Minute)))
	assert.ErrorIs(t, err, ErrSomeBreakIsPending)
	assert.Len(t, att.Pauses, 0)
}

func TestStartPause_MutualExclusion(t *testing.T) {
	att := openAttendance()
	now := time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)

	require.NoError(t, att.ApplyStartPause(pauseAt("p-1", now)))

	err := att.ApplyStartPause(pauseAt("p-2", now.Add(time.Minute)))
	assert.ErrorIs(t, err, ErrSomePauseIsPending)

	err = att.ApplyStartBreak(breakAt("b-1", now.Add(time.Minute)))
	assert.ErrorIs(t, err, ErrSomePauseIsPending)
	assert.Len(t, att.Breaks, 0)
}

func TestStopBreak_IdempotentFinishRejection(t *testing.T) {
	att := openAttendance()
	start := time.Date(2026, 3, 2, 10, 2, 0, 0, time.UTC)
	stop := start.Add(12 * time.Minute)
	loc := GeoPoint{Latitude: 1, Longitude: 1}

	require.NoError(t, att.ApplyStartBreak(breakAt("b-1", start)))
	require.NoError(t, att.ApplyStopBreak("b-1", stop, loc, 10))

	// Stopping the same entry again.
	err := att.ApplyStopBreak("b-1", stop.Add(time.Minute), loc, 10)
	assert.ErrorIs(t, err, ErrBreakAlreadyFinished)

	// Unknown entry id.
	err = att.ApplyStopBreak("b-404", stop, loc, 10)
	assert.ErrorIs(t, err, ErrBreakNotFound)
}

func TestStartBreak_ResubmittedEntryID(t *testing.T) {
	att := openAttendance()
	start := time.Date(2026, 3, 2, 10, 2, 0, 0, time.UTC)
	loc := GeoPoint{Latitude: 1, Longitude: 1}

	require.NoError(t, att.ApplyStartBreak(breakAt("b-1", start)))

	// Same id while still open: conflict, not a duplicate entry.
	err := att.ApplyStartBreak(breakAt("b-1", start.Add(time.Minute)))
	assert.ErrorIs(t, err, ErrSomeBreakIsPending)
	assert.Len(t, att.Breaks, 1)

	require.NoError(t, att.ApplyStopBreak("b-1", start.Add(10*time.Minute), loc, 10))

	// Same id after the entry closed.
	err = att.ApplyStartBreak(breakAt("b-1", start.Add(20*time.Minute)))
	assert.ErrorIs(t, err, ErrBreakAlreadyFinished)
	assert.Len(t, att.Breaks, 1)
}

func TestCheckOut_RejectsOpenSubActivities(t *testing.T) {
	loc := GeoPoint{Latitude: 1, Longitude: 1}
	now := time.Date(2026, 3, 2, 15, 50, 0, 0, time.UTC)

	att := openAttendance()
	require.NoError(t, att.ApplyStartBreak(breakAt("b-1", now.Add(-time.Hour))))
	err := att.ApplyCheckOut(now, loc, 42)
	assert.ErrorIs(t, err, ErrSomeBreakIsPending)
	assert.False(t, att.IsClosed())

	att = openAttendance()
	require.NoError(t, att.ApplyStartPause(pauseAt("p-1", now.Add(-time.Hour))))
	err = att.ApplyCheckOut(now, loc, 42)
	assert.ErrorIs(t, err, ErrSomePauseIsPending)
	assert.False(t, att.IsClosed())
}

func TestCheckOut_TerminalState(t *testing.T) {
	att := openAttendance()
	loc := GeoPoint{Latitude: 1, Longitude: 1}
	now := time.Date(2026, 3, 2, 15, 50, 0, 0, time.UTC)

	require.NoError(t, att.ApplyCheckOut(now, loc, 42))
	require.True(t, att.IsClosed())

	assert.ErrorIs(t, att.ApplyCheckOut(now.Add(time.Minute), loc, 42), ErrAlreadyCheckedOut)
	assert.ErrorIs(t, att.ApplyStartBreak(breakAt("b-1", now.Add(time.Minute))), ErrAlreadyCheckedOut)
	assert.ErrorIs(t, att.ApplyStartPause(pauseAt("p-1", now.Add(time.Minute))), ErrAlreadyCheckedOut)
	assert.ErrorIs(t, att.ApplyStopBreak("b-1", now, loc, 42), ErrAlreadyCheckedOut)
}

func TestBreakThenPauseSequence(t *testing.T) {
	att := openAttendance()
	loc := GeoPoint{Latitude: 1, Longitude: 1}
	start := time.Date(2026, 3, 2, 10, 2, 0, 0, time.UTC)

	require.NoError(t, att.ApplyStartBreak(breakAt("b-1", start)))
	require.NoError(t, att.ApplyStopBreak("b-1", start.Add(12*time.Minute), loc, 10))

	// Once the break closed a pause may open.
	require.NoError(t, att.ApplyStartPause(pauseAt("p-1", start.Add(30*time.Minute))))
	require.NoError(t, att.ApplyStopPause("p-1", start.Add(35*time.Minute), loc, 10))

	require.NoError(t, att.ApplyCheckOut(start.Add(5*time.Hour), loc, 42))
	assert.Len(t, att.Breaks, 1)
	assert.Len(t, att.Pauses, 1)
	assert.Nil(t, att.OpenBreak())
	assert.Nil(t, att.OpenPause())
}

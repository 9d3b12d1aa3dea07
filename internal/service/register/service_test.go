package register

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/attendance-backend-go/internal/domain/register"
)

func TestNormalizeScheduleDerivesOvernightFlags(t *testing.T) {
	reg := register.Register{}
	reg.WorkingHours[1] = register.WorkingHour{Start: "09:00", End: "17:00", IsOverNight: true, IsAvailable: true}
	reg.WorkingHours[2] = register.WorkingHour{Start: "22:00", End: "06:00", IsAvailable: true}

	require.NoError(t, normalizeSchedule(&reg))

	assert.False(t, reg.WorkingHours[1].IsOverNight, "client flag must be recomputed")
	assert.True(t, reg.WorkingHours[2].IsOverNight)
}

func TestNormalizeScheduleAssignsBreakIDs(t *testing.T) {
	reg := register.Register{}
	reg.WorkingHours[1] = register.WorkingHour{Start: "09:00", End: "17:00", IsAvailable: true}
	reg.Breaks[1] = []register.BreakTemplate{
		{Name: "coffee", Start: "10:00", End: "10:30"},
		{ID: "existing", Name: "lunch", Start: "12:00", End: "13:00"},
	}

	require.NoError(t, normalizeSchedule(&reg))

	assert.NotEmpty(t, reg.Breaks[1][0].ID)
	assert.Equal(t, "existing", reg.Breaks[1][1].ID)
}

func TestNormalizeScheduleRejectsBreakOutsideWorkingHours(t *testing.T) {
	reg := register.Register{}
	reg.WorkingHours[1] = register.WorkingHour{Start: "09:00", End: "17:00", IsAvailable: true}
	reg.Breaks[1] = []register.BreakTemplate{{Name: "late", Start: "16:30", End: "17:30"}}

	err := normalizeSchedule(&reg)
	assert.ErrorIs(t, err, register.ErrOutsideWorkingHours)
}

func TestNormalizeScheduleSkipsUnavailableDays(t *testing.T) {
	reg := register.Register{}
	reg.WorkingHours[0] = register.WorkingHour{Start: "", End: "", IsAvailable: false}

	assert.NoError(t, normalizeSchedule(&reg))
}

func TestBreakWithinOvernightWorkingHour(t *testing.T) {
	wh := register.WorkingHour{Start: "22:00", End: "06:00", IsOverNight: true, IsAvailable: true}

	// Before midnight.
	assert.True(t, breakWithinWorkingHour(wh, "23:00", "23:30"))
	// After midnight.
	assert.True(t, breakWithinWorkingHour(wh, "01:00", "02:00"))
	// Spanning midnight.
	assert.True(t, breakWithinWorkingHour(wh, "23:30", "00:30"))
	// Ends past the closing time.
	assert.False(t, breakWithinWorkingHour(wh, "05:30", "06:30"))
	// Entirely outside.
	assert.False(t, breakWithinWorkingHour(wh, "12:00", "13:00"))
}

func TestNormalizeScheduleSpecificBreaks(t *testing.T) {
	reg := register.Register{}
	reg.WorkingHours[3] = register.WorkingHour{Start: "08:00", End: "20:00", IsAvailable: true}
	reg.SpecificBreaks[3] = map[string]register.SpecificBreak{
		"lunch":  {Start: "12:00", End: "13:00", DurationMinutes: 60, IsAvailable: true},
		"dinner": {Start: "18:00", End: "19:00", DurationMinutes: 60, IsAvailable: false},
	}

	require.NoError(t, normalizeSchedule(&reg))

	assert.False(t, reg.SpecificBreaks[3]["lunch"].IsOverNight)
	// Unavailable slots keep whatever the client sent.
	assert.Equal(t, "18:00", reg.SpecificBreaks[3]["dinner"].Start)
}

package dailyattendance

import (
	"time"

	"github.com/attendly/attendance-backend-go/internal/domain/register"
)

// ExpectedShift is one shift occurrence a register expects on a given date,
// derived from the working-at schedules active that day. Overnight shifts
// anchored on the previous day are included with their own anchor date.
type ExpectedShift struct {
	WorkingAtID string `json:"working_at_id"`
	EmployeeID  string `json:"employee_id"`
	ShiftID     string `json:"shift_id"`
	Start       string `json:"start"`
	End         string `json:"end"`
	IsOverNight bool   `json:"is_overnight"`
	AnchorDate  int    `json:"anchor_date"`
}

// Counts are the running attendance counters of one register day.
type Counts struct {
	CheckedInOnTime  int `json:"checked_in_on_time"`
	CheckedInLate    int `json:"checked_in_late"`
	CheckedOutOnTime int `json:"checked_out_on_time"`
	CheckedOutEarly  int `json:"checked_out_early"`
	MissingCheckIn   int `json:"missing_check_in"`
	MissingCheckOut  int `json:"missing_check_out"`
}

// DailyAttendance is the rollup of all attendance of one register on one
// calendar date. Unique per (register, date); date is a YYYYMMDD integer.
type DailyAttendance struct {
	ID             string
	RegisterID     string
	Date           int
	WorkingHour    register.WorkingHour
	ExpectedShifts []ExpectedShift
	AttendanceIDs  []string
	Counts         Counts
	LateMinutes    map[string]int // employee id -> minutes late at check-in
	EarlyMinutes   map[string]int // employee id -> minutes early at check-out
	Confirmed      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasAttendance reports whether the rollup already references attendanceID.
func (d *DailyAttendance) HasAttendance(attendanceID string) bool {
	for _, id := range d.AttendanceIDs {
		if id == attendanceID {
			return true
		}
	}
	return false
}

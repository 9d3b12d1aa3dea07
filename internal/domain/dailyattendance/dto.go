package dailyattendance

import "github.com/attendly/attendance-backend-go/internal/domain/register"

type DailyAttendanceResponse struct {
	ID             string               `json:"id"`
	RegisterID     string               `json:"register_id"`
	Date           int                  `json:"date"`
	WorkingHour    register.WorkingHour `json:"working_hour"`
	ExpectedShifts []ExpectedShift      `json:"expected_shifts"`
	AttendanceIDs  []string             `json:"attendance_ids"`
	Counts         Counts               `json:"counts"`
	LateMinutes    map[string]int       `json:"late_minutes"`
	EarlyMinutes   map[string]int       `json:"early_minutes"`
	Confirmed      bool                 `json:"confirmed"`
}

// ToResponse converts a DailyAttendance entity to DailyAttendanceResponse.
func (d *DailyAttendance) ToResponse() DailyAttendanceResponse {
	return DailyAttendanceResponse{
		ID:             d.ID,
		RegisterID:     d.RegisterID,
		Date:           d.Date,
		WorkingHour:    d.WorkingHour,
		ExpectedShifts: d.ExpectedShifts,
		AttendanceIDs:  d.AttendanceIDs,
		Counts:         d.Counts,
		LateMinutes:    d.LateMinutes,
		EarlyMinutes:   d.EarlyMinutes,
		Confirmed:      d.Confirmed,
	}
}

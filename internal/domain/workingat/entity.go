package workingat

import "time"

// Shift is one scheduled work interval on one day-of-week.
type Shift struct {
	ID                     string `json:"id"`
	Start                  string `json:"start"`
	End                    string `json:"end"`
	AllowedOvertimeMinutes int    `json:"allowed_overtime_minutes"`
	IsOverNight            bool   `json:"is_overnight"`
	IsAvailable            bool   `json:"is_available"`
}

// WorkingAt is the employment relationship of one employee to one register,
// carrying the weekly shift schedule. Unique per (employee, register).
type WorkingAt struct {
	ID         string
	EmployeeID string
	RegisterID string
	RetailID   string
	Shifts     [7][]Shift
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ShiftsFor returns the shift list for a day-of-week.
func (w *WorkingAt) ShiftsFor(day time.Weekday) []Shift {
	return w.Shifts[int(day)]
}

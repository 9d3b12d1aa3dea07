package attendance

import (
	"time"
)

// GeoPoint is a reported coordinate pair.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// BreakEntry is one regulated break taken during an attendance. Template
// fields are snapshotted at start time so later template edits do not rewrite
// history.
type BreakEntry struct {
	ID               string     `json:"id"`
	TemplateID       *string    `json:"template_id,omitempty"`
	SpecificKey      *string    `json:"specific_key,omitempty"`
	Name             string     `json:"name"`
	DurationMinutes  int        `json:"duration_minutes"`
	IsOverNight      bool       `json:"is_overnight"`
	CheckInTime      time.Time  `json:"check_in_time"`
	CheckInLocation  GeoPoint   `json:"check_in_location"`
	CheckInDistance  float64    `json:"check_in_distance"`
	CheckOutTime     *time.Time `json:"check_out_time,omitempty"`
	CheckOutLocation *GeoPoint  `json:"check_out_location,omitempty"`
	CheckOutDistance *float64   `json:"check_out_distance,omitempty"`
}

// IsOpen reports whether the break has started but not finished.
func (b *BreakEntry) IsOpen() bool {
	return b.CheckOutTime == nil
}

// PauseEntry is an informal, untimed stoppage with no template reference.
type PauseEntry struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	CheckInTime      time.Time  `json:"check_in_time"`
	CheckInLocation  GeoPoint   `json:"check_in_location"`
	CheckInDistance  float64    `json:"check_in_distance"`
	CheckOutTime     *time.Time `json:"check_out_time,omitempty"`
	CheckOutLocation *GeoPoint  `json:"check_out_location,omitempty"`
	CheckOutDistance *float64   `json:"check_out_distance,omitempty"`
}

// IsOpen reports whether the pause has started but not finished.
func (p *PauseEntry) IsOpen() bool {
	return p.CheckOutTime == nil
}

// Attendance is one occurrence of an employee performing one shift on one
// calendar day. Break and pause entries are part of the aggregate; the
// Version column guards the whole aggregate with compare-and-swap updates.
type Attendance struct {
	ID               string
	WorkingAtID      string
	RegisterID       string
	EmployeeID       string
	ShiftID          string
	WorkDate         int // YYYYMMDD of the shift's anchor day
	CheckInTime      time.Time
	CheckInLocation  GeoPoint
	CheckInDistance  float64
	CheckOutTime     *time.Time
	CheckOutLocation *GeoPoint
	CheckOutDistance *float64
	Breaks           []BreakEntry
	Pauses           []PauseEntry
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsClosed reports whether the attendance reached its terminal state.
func (a *Attendance) IsClosed() bool {
	return a.CheckOutTime != nil
}

// OpenBreak returns the currently open break entry, if any.
func (a *Attendance) OpenBreak() *BreakEntry {
	for i := range a.Breaks {
		if a.Breaks[i].IsOpen() {
			return &a.Breaks[i]
		}
	}
	return nil
}

// OpenPause returns the currently open pause entry, if any.
func (a *Attendance) OpenPause() *PauseEntry {
	for i := range a.Pauses {
		if a.Pauses[i].IsOpen() {
			return &a.Pauses[i]
		}
	}
	return nil
}

// ApplyCheckOut closes the attendance. Open breaks and pauses must be closed
// first; a closed attendance accepts no further transitions.
func (a *Attendance) ApplyCheckOut(at time.Time, loc GeoPoint, distance float64) error {
	if a.IsClosed() {
		return ErrAlreadyCheckedOut
	}
	if a.OpenBreak() != nil {
		return ErrSomeBreakIsPending
	}
	if a.OpenPause() != nil {
		return ErrSomePauseIsPending
	}
	a.CheckOutTime = &at
	a.CheckOutLocation = &loc
	a.CheckOutDistance = &distance
	return nil
}

// ApplyStartBreak appends a new open break entry, enforcing mutual exclusion
// against every other open break and pause. Resubmitting an id that already
// exists reports its current state instead of duplicating the entry.
func (a *Attendance) ApplyStartBreak(entry BreakEntry) error {
	if a.IsClosed() {
		return ErrAlreadyCheckedOut
	}
	for i := range a.Breaks {
		if a.Breaks[i].ID == entry.ID {
			if a.Breaks[i].IsOpen() {
				return ErrSomeBreakIsPending
			}
			return ErrBreakAlreadyFinished
		}
	}
	if a.OpenBreak() != nil {
		return ErrSomeBreakIsPending
	}
	if a.OpenPause() != nil {
		return ErrSomePauseIsPending
	}
	a.Breaks = append(a.Breaks, entry)
	return nil
}

// ApplyStopBreak closes the break entry matching breakID.
func (a *Attendance) ApplyStopBreak(breakID string, at time.Time, loc GeoPoint, distance float64) error {
	if a.IsClosed() {
		return ErrAlreadyCheckedOut
	}
	for i := range a.Breaks {
		if a.Breaks[i].ID != breakID {
			continue
		}
		if !a.Breaks[i].IsOpen() {
			return ErrBreakAlreadyFinished
		}
		a.Breaks[i].CheckOutTime = &at
		a.Breaks[i].CheckOutLocation = &loc
		a.Breaks[i].CheckOutDistance = &distance
		return nil
	}
	return ErrBreakNotFound
}

// ApplyStartPause appends a new open pause entry under the same mutual
// exclusion rules as breaks.
func (a *Attendance) ApplyStartPause(entry PauseEntry) error {
	if a.IsClosed() {
		return ErrAlreadyCheckedOut
	}
	for i := range a.Pauses {
		if a.Pauses[i].ID == entry.ID {
			if a.Pauses[i].IsOpen() {
				return ErrSomePauseIsPending
			}
			return ErrPauseAlreadyFinished
		}
	}
	if a.OpenBreak() != nil {
		return ErrSomeBreakIsPending
	}
	if a.OpenPause() != nil {
		return ErrSomePauseIsPending
	}
	a.Pauses = append(a.Pauses, entry)
	return nil
}

// ApplyStopPause closes the pause entry matching pauseID.
func (a *Attendance) ApplyStopPause(pauseID string, at time.Time, loc GeoPoint, distance float64) error {
	if a.IsClosed() {
		return ErrAlreadyCheckedOut
	}
	for i := range a.Pauses {
		if a.Pauses[i].ID != pauseID {
			continue
		}
		if !a.Pauses[i].IsOpen() {
			return ErrPauseAlreadyFinished
		}
		a.Pauses[i].CheckOutTime = &at
		a.Pauses[i].CheckOutLocation = &loc
		a.Pauses[i].CheckOutDistance = &distance
		return nil
	}
	return ErrPauseNotFound
}

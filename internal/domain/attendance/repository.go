package attendance

import "context"

// AttendanceRepository defines data access for attendance aggregates. Break
// and pause entries are stored with the row, so Update persists the whole
// aggregate in one statement.
type AttendanceRepository interface {
	// Create inserts a new attendance; fails with ErrAlreadyCheckedIn when the
	// (workingAt, shift, workDate) occurrence already has one.
	Create(ctx context.Context, att Attendance) (Attendance, error)

	// GetByID loads an attendance aggregate.
	GetByID(ctx context.Context, id string) (Attendance, error)

	// FindByOccurrence returns the attendance for one shift occurrence, or
	// nil when the employee has not checked in yet.
	FindByOccurrence(ctx context.Context, workingAtID, shiftID string, workDate int) (*Attendance, error)

	// ListByRegisterAndDate returns every attendance of a register on one
	// work date, used by the daily aggregation.
	ListByRegisterAndDate(ctx context.Context, registerID string, workDate int) ([]Attendance, error)

	// Update persists the aggregate with compare-and-swap on Version; returns
	// ErrVersionConflict when the row changed since it was loaded.
	Update(ctx context.Context, att Attendance) error
}

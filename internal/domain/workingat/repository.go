package workingat

import "context"

// WorkingAtRepository defines data access for employment relations and their
// weekly shift schedules.
type WorkingAtRepository interface {
	// Create persists a new relation; fails with ErrWorkingAtExists when the
	// (employee, register) pair already has one.
	Create(ctx context.Context, wa WorkingAt) (WorkingAt, error)

	// GetByID loads a relation with its full shift schedule.
	GetByID(ctx context.Context, id string) (WorkingAt, error)

	// GetByEmployeeAndRegister resolves the relation for an action request.
	GetByEmployeeAndRegister(ctx context.Context, employeeID, registerID string) (WorkingAt, error)

	// ListByRegister returns every relation attached to one register,
	// used when deriving a day's expected shift occurrences.
	ListByRegister(ctx context.Context, registerID string) ([]WorkingAt, error)

	// UpdateShifts replaces the weekly shift schedule of a relation.
	UpdateShifts(ctx context.Context, id string, shifts [7][]Shift) error
}

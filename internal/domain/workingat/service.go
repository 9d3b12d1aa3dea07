package workingat

import "context"

// WorkingAtService defines business logic for employment relations and their
// weekly shift schedules.
type WorkingAtService interface {
	// AssignEmployee attaches an employee to a register with an initial weekly
	// schedule. Fails with ErrWorkingAtExists when a relation already exists.
	AssignEmployee(ctx context.Context, registerID string, req AssignEmployeeRequest) (WorkingAtResponse, error)

	// UpdateShifts replaces the weekly schedule of a relation.
	UpdateShifts(ctx context.Context, workingAtID string, req UpdateShiftsRequest) (WorkingAtResponse, error)

	// GetWorkingAt retrieves one relation.
	GetWorkingAt(ctx context.Context, workingAtID string) (WorkingAtResponse, error)

	// ListByRegister lists the relations of one register.
	ListByRegister(ctx context.Context, registerID string) ([]WorkingAtResponse, error)
}

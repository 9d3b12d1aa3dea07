package register

import "context"

// RegisterRepository defines data access for registers and their weekly
// schedule templates. All methods scope by retailID to prevent cross-tenant
// access.
type RegisterRepository interface {
	// Create persists a register with its full weekly schedule.
	Create(ctx context.Context, reg Register) (Register, error)

	// GetByID loads a register including working hours and break templates.
	GetByID(ctx context.Context, id string) (Register, error)

	// Update replaces the register row and its weekly schedule.
	Update(ctx context.Context, reg Register) error

	// ListByRetail lists registers for one tenant.
	ListByRetail(ctx context.Context, retailID string) ([]Register, error)
}

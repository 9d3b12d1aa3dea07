package register

import "context"

// RegisterService defines business logic for register management.
type RegisterService interface {
	// CreateRegister validates the weekly schedule, derives overnight flags
	// and persists a new register for the caller's retail.
	CreateRegister(ctx context.Context, req UpsertRegisterRequest) (RegisterResponse, error)

	// UpdateRegister replaces an existing register's schedule.
	UpdateRegister(ctx context.Context, id string, req UpsertRegisterRequest) (RegisterResponse, error)

	// GetRegister retrieves one register by id.
	GetRegister(ctx context.Context, id string) (RegisterResponse, error)

	// ListRegisters lists the caller's retail registers.
	ListRegisters(ctx context.Context) ([]RegisterResponse, error)
}

package device

import "context"

// LocalDeviceRepository defines data access for paired local devices.
type LocalDeviceRepository interface {
	// Create pairs a device to a register; fails with ErrDeviceAlreadyPaired
	// when the device id is already registered.
	Create(ctx context.Context, d LocalDevice) (LocalDevice, error)

	// GetByID loads one paired device.
	GetByID(ctx context.Context, id string) (LocalDevice, error)

	// ListByRegister returns every device paired to one register.
	ListByRegister(ctx context.Context, registerID string) ([]LocalDevice, error)

	// CountByRegister returns the number of devices paired to one register.
	CountByRegister(ctx context.Context, registerID string) (int, error)

	// Delete unpairs a device.
	Delete(ctx context.Context, id string) error
}

package device

import "context"

// LocalDeviceService defines business logic for pairing trusted on-site
// devices to a register.
type LocalDeviceService interface {
	// PairDevice registers a local device against a register, hashing the
	// pairing code and enforcing the register's device limit.
	PairDevice(ctx context.Context, registerID string, req PairDeviceRequest) (LocalDeviceResponse, error)

	// ListDevices returns the devices paired to a register.
	ListDevices(ctx context.Context, registerID string) ([]LocalDeviceResponse, error)

	// UnpairDevice removes a paired device.
	UnpairDevice(ctx context.Context, registerID, deviceID string) error
}

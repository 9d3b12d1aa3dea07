package device

import "errors"

// Local device domain errors
var (
	ErrDeviceNotFound      = errors.New("local device not found")
	ErrDeviceAlreadyPaired = errors.New("local device is already paired")
	ErrDeviceLimitReached  = errors.New("register reached its local device limit")
	ErrInvalidPairingCode  = errors.New("invalid pairing code")
)

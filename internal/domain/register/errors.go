package register

import "errors"

// Register domain errors
var (
	ErrRegisterNotFound    = errors.New("register not found")
	ErrRegisterUnavailable = errors.New("register is not available")
	ErrBreakNotFound       = errors.New("break template not found")
	ErrOutsideWorkingHours = errors.New("break interval falls outside the day's working hours")
)

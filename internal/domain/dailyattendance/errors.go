package dailyattendance

import "errors"

// Daily attendance domain errors
var (
	ErrDailyNotFound    = errors.New("daily attendance not found")
	ErrAlreadyConfirmed = errors.New("daily attendance is already confirmed")
)

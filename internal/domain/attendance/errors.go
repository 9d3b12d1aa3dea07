package attendance

import "errors"

// Attendance domain errors
var (
	// Check-in/out errors
	ErrAlreadyCheckedIn     = errors.New("already checked in for this shift")
	ErrAlreadyCheckedOut    = errors.New("attendance is already checked out")
	ErrOutsideAllowedRadius = errors.New("outside the allowed radius")

	// Break/pause errors
	ErrSomeBreakIsPending   = errors.New("another break is still open")
	ErrSomePauseIsPending   = errors.New("another pause is still open")
	ErrBreakNotFound        = errors.New("break entry not found")
	ErrBreakAlreadyFinished = errors.New("break entry is already finished")
	ErrPauseNotFound        = errors.New("pause entry not found")
	ErrPauseAlreadyFinished = errors.New("pause entry is already finished")
	ErrOutsideBreakWindow   = errors.New("current time is outside the break window")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrVersionConflict    = errors.New("attendance was modified concurrently")
)

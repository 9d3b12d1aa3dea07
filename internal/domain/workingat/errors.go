package workingat

import "errors"

// WorkingAt domain errors
var (
	ErrWorkingAtNotFound = errors.New("working-at relation not found")
	ErrWorkingAtExists   = errors.New("employee is already assigned to this register")
	ErrShiftNotFound     = errors.New("no shift scheduled for this time")
	ErrShiftAlreadyEnded = errors.New("the overnight shift has already ended")
)

package response

import (
	"errors"
	"net/http"

	"github.com/attendly/attendance-backend-go/internal/domain/attendance"
	"github.com/attendly/attendance-backend-go/internal/domain/dailyattendance"
	"github.com/attendly/attendance-backend-go/internal/domain/device"
	"github.com/attendly/attendance-backend-go/internal/domain/employee"
	"github.com/attendly/attendance-backend-go/internal/domain/register"
	"github.com/attendly/attendance-backend-go/internal/domain/workingat"
	"github.com/attendly/attendance-backend-go/internal/pkg/devicetoken"
	"github.com/attendly/attendance-backend-go/internal/pkg/timeutil"
	"github.com/attendly/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Not found
	case errors.Is(err, register.ErrRegisterNotFound):
		NotFound(w, "Register not found")
	case errors.Is(err, register.ErrBreakNotFound):
		NotFound(w, "Break not found")
	case errors.Is(err, workingat.ErrWorkingAtNotFound):
		NotFound(w, "No employment relation for this register")
	case errors.Is(err, workingat.ErrShiftNotFound):
		NotFound(w, "No matching shift for this time")
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance not found")
	case errors.Is(err, attendance.ErrBreakNotFound):
		NotFound(w, "Break entry not found")
	case errors.Is(err, attendance.ErrPauseNotFound):
		NotFound(w, "Pause entry not found")
	case errors.Is(err, device.ErrDeviceNotFound):
		NotFound(w, "Local device not found")
	case errors.Is(err, dailyattendance.ErrDailyNotFound):
		NotFound(w, "Daily attendance not found")
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// State machine conflicts
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, "Already checked in for this shift")
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		Conflict(w, "Attendance already checked out")
	case errors.Is(err, attendance.ErrSomeBreakIsPending):
		Conflict(w, "A break is still open")
	case errors.Is(err, attendance.ErrSomePauseIsPending):
		Conflict(w, "A pause is still open")
	case errors.Is(err, attendance.ErrBreakAlreadyFinished):
		Conflict(w, "Break entry already finished")
	case errors.Is(err, attendance.ErrPauseAlreadyFinished):
		Conflict(w, "Pause entry already finished")
	case errors.Is(err, attendance.ErrVersionConflict):
		Conflict(w, "Attendance was modified concurrently, retry")
	case errors.Is(err, workingat.ErrWorkingAtExists):
		Conflict(w, "Employee already assigned to this register")
	case errors.Is(err, device.ErrDeviceAlreadyPaired):
		Conflict(w, "Device already paired")
	case errors.Is(err, device.ErrDeviceLimitReached):
		Conflict(w, "Register device limit reached")
	case errors.Is(err, dailyattendance.ErrAlreadyConfirmed):
		Conflict(w, "Daily attendance already confirmed")

	// Rejected by schedule or geofence rules
	case errors.Is(err, attendance.ErrOutsideAllowedRadius):
		Forbidden(w, "Outside the allowed radius")
	case errors.Is(err, register.ErrRegisterUnavailable):
		Forbidden(w, "Register is not available")
	case errors.Is(err, employee.ErrNoPublicKey):
		Forbidden(w, "No device key registered for this employee")
	case errors.Is(err, workingat.ErrShiftAlreadyEnded):
		BadRequest(w, "Shift window has already ended", nil)
	case errors.Is(err, attendance.ErrOutsideBreakWindow):
		BadRequest(w, "Outside the break window", nil)
	case errors.Is(err, register.ErrOutsideWorkingHours):
		BadRequest(w, "Break falls outside working hours", nil)
	case errors.Is(err, timeutil.ErrInvalidTime):
		BadRequest(w, err.Error(), nil)

	// Device token failures
	case errors.Is(err, devicetoken.ErrInvalidSignature):
		Unauthorized(w, "Invalid payload signature")
	case errors.Is(err, devicetoken.ErrPayloadMismatch):
		Unauthorized(w, "Payload does not match request")
	case errors.Is(err, devicetoken.ErrPayloadExpired):
		Unauthorized(w, "Payload expired")
	case errors.Is(err, devicetoken.ErrMalformedPayload):
		Unauthorized(w, "Malformed payload")
	case errors.Is(err, device.ErrInvalidPairingCode):
		Unauthorized(w, "Invalid pairing code")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}

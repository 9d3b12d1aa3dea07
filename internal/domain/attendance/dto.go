package attendance

import (
	"github.com/attendly/attendance-backend-go/internal/pkg/devicetoken"
	"github.com/attendly/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE ACTION DTOs
// ========================================

// ActionRequest carries the fields shared by every device-originated
// attendance action.
type ActionRequest struct {
	RegisterID    string                    `json:"register_id"`
	Latitude      float64                   `json:"latitude"`
	Longitude     float64                   `json:"longitude"`
	LocalDeviceID *string                   `json:"local_device_id,omitempty"`
	TokenPayload  devicetoken.SignedPayload `json:"token_payload"`
}

func (r *ActionRequest) validate() validator.ValidationErrors {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RegisterID) {
		errs = append(errs, validator.ValidationError{
			Field:   "register_id",
			Message: "register_id is required",
		})
	}
	if !validator.IsValidLatitude(r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}
	if !validator.IsValidLongitude(r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}
	if validator.IsEmpty(r.TokenPayload.Signature) {
		errs = append(errs, validator.ValidationError{
			Field:   "token_payload",
			Message: "token_payload signature is required",
		})
	}

	return errs
}

type CheckInRequest struct {
	ActionRequest
	ShiftID string `json:"shift_id"`
}

func (r *CheckInRequest) Validate() error {
	errs := r.validate()

	if validator.IsEmpty(r.ShiftID) {
		errs = append(errs, validator.ValidationError{
			Field:   "shift_id",
			Message: "shift_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CheckOutRequest struct {
	ActionRequest
	AttendanceID string `json:"attendance_id"`
}

func (r *CheckOutRequest) Validate() error {
	errs := r.validate()

	if validator.IsEmpty(r.AttendanceID) {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_id",
			Message: "attendance_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// StartBreakRequest starts either a templated break (break_id), a named
// specific break (break_key) or an ad-hoc one (name only).
type StartBreakRequest struct {
	ActionRequest
	AttendanceID string  `json:"attendance_id"`
	EntryID      string  `json:"entry_id"`
	BreakID      *string `json:"break_id,omitempty"`
	BreakKey     *string `json:"break_key,omitempty"`
	Name         string  `json:"name"`
}

func (r *StartBreakRequest) Validate() error {
	errs := r.validate()

	if validator.IsEmpty(r.AttendanceID) {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_id",
			Message: "attendance_id is required",
		})
	}
	if validator.IsEmpty(r.EntryID) || !validator.IsValidUUID(r.EntryID) {
		errs = append(errs, validator.ValidationError{
			Field:   "entry_id",
			Message: "entry_id must be a valid UUID",
		})
	}
	if r.BreakID == nil && r.BreakKey == nil && validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required for ad-hoc breaks",
		})
	}
	if r.BreakID != nil && r.BreakKey != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "break_id",
			Message: "break_id and break_key are mutually exclusive",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type StopBreakRequest struct {
	ActionRequest
	AttendanceID string `json:"attendance_id"`
	EntryID      string `json:"entry_id"`
}

func (r *StopBreakRequest) Validate() error {
	errs := r.validate()

	if validator.IsEmpty(r.AttendanceID) {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_id",
			Message: "attendance_id is required",
		})
	}
	if validator.IsEmpty(r.EntryID) {
		errs = append(errs, validator.ValidationError{
			Field:   "entry_id",
			Message: "entry_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type StartPauseRequest struct {
	ActionRequest
	AttendanceID string `json:"attendance_id"`
	EntryID      string `json:"entry_id"`
	Name         string `json:"name"`
}

func (r *StartPauseRequest) Validate() error {
	errs := r.validate()

	if validator.IsEmpty(r.AttendanceID) {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_id",
			Message: "attendance_id is required",
		})
	}
	if validator.IsEmpty(r.EntryID) || !validator.IsValidUUID(r.EntryID) {
		errs = append(errs, validator.ValidationError{
			Field:   "entry_id",
			Message: "entry_id must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type StopPauseRequest struct {
	ActionRequest
	AttendanceID string `json:"attendance_id"`
	EntryID      string `json:"entry_id"`
}

func (r *StopPauseRequest) Validate() error {
	errs := r.validate()

	if validator.IsEmpty(r.AttendanceID) {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_id",
			Message: "attendance_id is required",
		})
	}
	if validator.IsEmpty(r.EntryID) {
		errs = append(errs, validator.ValidationError{
			Field:   "entry_id",
			Message: "entry_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========================================
// RESPONSES
// ========================================

type AttendanceResponse struct {
	ID               string       `json:"id"`
	WorkingAtID      string       `json:"working_at_id"`
	RegisterID       string       `json:"register_id"`
	EmployeeID       string       `json:"employee_id"`
	ShiftID          string       `json:"shift_id"`
	WorkDate         int          `json:"work_date"`
	CheckInTime      string       `json:"check_in_time"`
	CheckInDistance  float64      `json:"check_in_distance"`
	CheckOutTime     *string      `json:"check_out_time,omitempty"`
	CheckOutDistance *float64     `json:"check_out_distance,omitempty"`
	Breaks           []BreakEntry `json:"breaks"`
	Pauses           []PauseEntry `json:"pauses"`
}

// ActionResult is the outcome of an attendance action. When the register has
// paired local devices and the caller supplied none, LocalDevices carries the
// ids to choose from and Attendance stays nil; this is a signal, not an error.
type ActionResult struct {
	LocalDevicesRequired bool     `json:"local_devices_required,omitempty"`
	LocalDevices         []string `json:"local_devices,omitempty"`

	Attendance *AttendanceResponse `json:"attendance,omitempty"`
}

package workingat

import (
	"github.com/attendly/attendance-backend-go/internal/pkg/validator"
)

type AssignEmployeeRequest struct {
	EmployeeID string     `json:"employee_id"`
	Shifts     [7][]Shift `json:"shifts"`
}

func (r *AssignEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid uuid",
		})
	}

	errs = append(errs, validateShifts(r.Shifts)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateShiftsRequest struct {
	Shifts [7][]Shift `json:"shifts"`
}

func (r *UpdateShiftsRequest) Validate() error {
	if errs := validateShifts(r.Shifts); len(errs) > 0 {
		return errs
	}
	return nil
}

func validateShifts(shifts [7][]Shift) validator.ValidationErrors {
	var errs validator.ValidationErrors
	for day := 0; day < 7; day++ {
		for _, sh := range shifts[day] {
			if !sh.IsAvailable {
				continue
			}
			if !validator.IsValidClock(sh.Start) || !validator.IsValidClock(sh.End) {
				errs = append(errs, validator.ValidationError{
					Field:   "shifts",
					Message: "shift start and end must be HH:mm clock times",
				})
			}
			if sh.AllowedOvertimeMinutes < 0 {
				errs = append(errs, validator.ValidationError{
					Field:   "shifts",
					Message: "allowed_overtime_minutes must not be negative",
				})
			}
		}
	}
	return errs
}

type WorkingAtResponse struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employee_id"`
	RegisterID string     `json:"register_id"`
	RetailID   string     `json:"retail_id"`
	Shifts     [7][]Shift `json:"shifts"`
	CreatedAt  string     `json:"created_at"`
	UpdatedAt  string     `json:"updated_at"`
}

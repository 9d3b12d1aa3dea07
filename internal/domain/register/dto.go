package register

import (
	"github.com/attendly/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// REGISTER DTOs
// ========================================

type UpsertRegisterRequest struct {
	Name            string                      `json:"name"`
	Latitude        float64                     `json:"latitude"`
	Longitude       float64                     `json:"longitude"`
	RadiusMeters    float64                     `json:"radius_meters"`
	WorkingHours    [7]WorkingHour              `json:"working_hours"`
	Breaks          [7][]BreakTemplate          `json:"breaks"`
	SpecificBreaks  [7]map[string]SpecificBreak `json:"specific_breaks"`
	MaxLocalDevices int                         `json:"max_local_devices"`
	IsAvailable     bool                        `json:"is_available"`
}

func (r *UpsertRegisterRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
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

	if !validator.IsValidRadius(r.RadiusMeters) {
		errs = append(errs, validator.ValidationError{
			Field:   "radius_meters",
			Message: "radius_meters must be greater than zero",
		})
	}

	if r.MaxLocalDevices < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "max_local_devices",
			Message: "max_local_devices must not be negative",
		})
	}

	for day := 0; day < 7; day++ {
		wh := r.WorkingHours[day]
		if !wh.IsAvailable {
			continue
		}
		if !validator.IsValidClock(wh.Start) || !validator.IsValidClock(wh.End) {
			errs = append(errs, validator.ValidationError{
				Field:   "working_hours",
				Message: "start and end must be HH:mm clock times",
			})
			continue
		}
		for _, b := range r.Breaks[day] {
			if !validator.IsValidClock(b.Start) || !validator.IsValidClock(b.End) {
				errs = append(errs, validator.ValidationError{
					Field:   "breaks",
					Message: "break start and end must be HH:mm clock times",
				})
			}
			if b.DurationMinutes < 0 {
				errs = append(errs, validator.ValidationError{
					Field:   "breaks",
					Message: "break duration must not be negative",
				})
			}
		}
		for key, sb := range r.SpecificBreaks[day] {
			if !validator.IsInSlice(key, SpecificBreakKeys) {
				errs = append(errs, validator.ValidationError{
					Field:   "specific_breaks",
					Message: "unknown specific break key: " + key,
				})
				continue
			}
			if sb.IsAvailable && (!validator.IsValidClock(sb.Start) || !validator.IsValidClock(sb.End)) {
				errs = append(errs, validator.ValidationError{
					Field:   "specific_breaks",
					Message: "specific break start and end must be HH:mm clock times",
				})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RegisterResponse struct {
	ID              string                      `json:"id"`
	RetailID        string                      `json:"retail_id"`
	Name            string                      `json:"name"`
	Latitude        float64                     `json:"latitude"`
	Longitude       float64                     `json:"longitude"`
	RadiusMeters    float64                     `json:"radius_meters"`
	WorkingHours    [7]WorkingHour              `json:"working_hours"`
	Breaks          [7][]BreakTemplate          `json:"breaks"`
	SpecificBreaks  [7]map[string]SpecificBreak `json:"specific_breaks"`
	MaxLocalDevices int                         `json:"max_local_devices"`
	IsAvailable     bool                        `json:"is_available"`
	CreatedAt       string                      `json:"created_at"`
	UpdatedAt       string                      `json:"updated_at"`
}

package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/attendly/attendance-backend-go/internal/domain/attendance"
	"github.com/attendly/attendance-backend-go/internal/domain/dailyattendance"
	"github.com/attendly/attendance-backend-go/internal/domain/employee"
	"github.com/attendly/attendance-backend-go/internal/domain/register"
	"github.com/attendly/attendance-backend-go/internal/domain/workingat"
	"github.com/attendly/attendance-backend-go/internal/pkg/devicetoken"
	"github.com/attendly/attendance-backend-go/internal/pkg/timeutil"
	"github.com/attendly/attendance-backend-go/internal/service/geofence"
	"github.com/attendly/attendance-backend-go/internal/service/schedule"
	"github.com/go-chi/jwtauth/v5"
)

// casRetries bounds the optimistic-lock retry loop; two requests racing on
// one aggregate resolve within a couple of attempts.
const casRetries = 3

// payloadMaxAge is how long a signed token payload stays acceptable.
const payloadMaxAge = 5 * time.Minute

type AttendanceServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	registerRepo   register.RegisterRepository
	workingAtRepo  workingat.WorkingAtRepository
	employeeRepo   employee.EmployeeRepository
	dailyService   dailyattendance.DailyAttendanceService
	geoValidator   *geofence.Validator
	resolver       *schedule.Resolver
	loc            *time.Location
	now            func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	registerRepo register.RegisterRepository,
	workingAtRepo workingat.WorkingAtRepository,
	employeeRepo employee.EmployeeRepository,
	dailyService dailyattendance.DailyAttendanceService,
	geoValidator *geofence.Validator,
	resolver *schedule.Resolver,
	loc *time.Location,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		attendanceRepo: attendanceRepo,
		registerRepo:   registerRepo,
		workingAtRepo:  workingAtRepo,
		employeeRepo:   employeeRepo,
		dailyService:   dailyService,
		geoValidator:   geoValidator,
		resolver:       resolver,
		loc:            loc,
		now:            time.Now,
	}
}

func claimsFromContext(ctx context.Context) (employeeID, retailID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	employeeID, ok := claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return "", "", fmt.Errorf("employee_id claim is missing or invalid")
	}

	retailID, ok = claims["retail_id"].(string)
	if !ok || retailID == "" {
		return "", "", fmt.Errorf("retail_id claim is missing or invalid")
	}

	return employeeID, retailID, nil
}

// verifyPayload checks the device-bound signature, the anti-tamper body match
// and the payload age.
func (s *AttendanceServiceImpl) verifyPayload(ctx context.Context, employeeID, action string, req attendance.ActionRequest) error {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return err
	}
	if len(emp.PublicKey) == 0 {
		return employee.ErrNoPublicKey
	}
	if err := devicetoken.Verify(emp.PublicKey, req.TokenPayload); err != nil {
		return err
	}
	if err := req.TokenPayload.MatchesBody(action, req.RegisterID, employeeID, req.Latitude, req.Longitude); err != nil {
		return err
	}
	return req.TokenPayload.CheckFreshness(s.now(), payloadMaxAge)
}

// loadRegister loads the register and checks tenant ownership and
// availability.
func (s *AttendanceServiceImpl) loadRegister(ctx context.Context, registerID, retailID string) (register.Register, error) {
	reg, err := s.registerRepo.GetByID(ctx, registerID)
	if err != nil {
		return register.Register{}, err
	}
	if reg.RetailID != retailID {
		return register.Register{}, register.ErrRegisterNotFound
	}
	if !reg.IsAvailable {
		return register.Register{}, register.ErrRegisterUnavailable
	}
	return reg, nil
}

// checkGeofence runs the geofence decision, translating a rejection into the
// domain error and passing the device-choice signal through.
func (s *AttendanceServiceImpl) checkGeofence(ctx context.Context, reg *register.Register, req attendance.ActionRequest) (geofence.Decision, *attendance.ActionResult, error) {
	dec, err := s.geoValidator.Validate(ctx, reg, req.Latitude, req.Longitude, req.LocalDeviceID)
	if err != nil {
		return geofence.Decision{}, nil, err
	}
	if dec.NeedDeviceChoice {
		return dec, &attendance.ActionResult{
			LocalDevicesRequired: true,
			LocalDevices:         dec.DeviceIDs,
		}, nil
	}
	if !dec.Allowed {
		return dec, nil, attendance.ErrOutsideAllowedRadius
	}
	return dec, nil, nil
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.ActionResult, error) {
	if err := req.Validate(); err != nil {
		return attendance.ActionResult{}, err
	}

	employeeID, retailID, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.ActionResult{}, err
	}

	if err := s.verifyPayload(ctx, employeeID, "check_in", req.ActionRequest); err != nil {
		return attendance.ActionResult{}, err
	}

	reg, err := s.loadRegister(ctx, req.RegisterID, retailID)
	if err != nil {
		return attendance.ActionResult{}, err
	}

	wa, err := s.workingAtRepo.GetByEmployeeAndRegister(ctx, employeeID, reg.ID)
	if err != nil {
		return attendance.ActionResult{}, err
	}

	now := s.now()
	occ, err := s.resolver.ResolveShift(&wa, req.ShiftID, now)
	if err != nil {
		return attendance.ActionResult{}, err
	}

	dec, signal, err := s.checkGeofence(ctx, &reg, req.ActionRequest)
	if err != nil {
		return attendance.ActionResult{}, err
	}
	if signal != nil {
		return *signal, nil
	}

	workDate := timeutil.DateInt(occ.AnchorDay)

	existing, err := s.attendanceRepo.FindByOccurrence(ctx, wa.ID, occ.Shift.ID, workDate)
	if err != nil {
		return attendance.ActionResult{}, fmt.Errorf("failed to look up attendance occurrence: %w", err)
	}
	if existing != nil {
		if existing.IsClosed() {
			return attendance.ActionResult{}, attendance.ErrAlreadyCheckedOut
		}
		return attendance.ActionResult{}, attendance.ErrAlreadyCheckedIn
	}

	att := attendance.Attendance{
		WorkingAtID:     wa.ID,
		RegisterID:      reg.ID,
		EmployeeID:      employeeID,
		ShiftID:         occ.Shift.ID,
		WorkDate:        workDate,
		CheckInTime:     now,
		CheckInLocation: attendance.GeoPoint{Latitude: req.Latitude, Longitude: req.Longitude},
		CheckInDistance: dec.Distance,
	}

	created, err := s.attendanceRepo.Create(ctx, att)
	if err != nil {
		return attendance.ActionResult{}, err
	}

	// Rollup update is a separate, best-effort step; the finalization pass
	// reconciles authoritatively.
	if err := s.dailyService.RecordCheckIn(ctx, reg.ID, workDate, created.ID, employeeID, occ.StartAt, now); err != nil {
		slog.Error("Failed to record check-in in daily rollup",
			"attendance_id", created.ID, "register_id", reg.ID, "error", err)
	}

	resp := mapAttendanceToResponse(created)
	return attendance.ActionResult{Attendance: &resp}, nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.ActionResult, error) {
	if err := req.Validate(); err != nil {
		return attendance.ActionResult{}, err
	}

	employeeID, retailID, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.ActionResult{}, err
	}

	if err := s.verifyPayload(ctx, employeeID, "check_out", req.ActionRequest); err != nil {
		return attendance.ActionResult{}, err
	}

	reg, err := s.loadRegister(ctx, req.RegisterID, retailID)
	if err != nil {
		return attendance.ActionResult{}, err
	}

	dec, signal, err := s.checkGeofence(ctx, &reg, req.ActionRequest)
	if err != nil {
		return attendance.ActionResult{}, err
	}
	if signal != nil {
		return *signal, nil
	}

	now := s.now()
	loc := attendance.GeoPoint{Latitude: req.Latitude, Longitude: req.Longitude}

	att, err := s.mutate(ctx, req.AttendanceID, employeeID, func(att *attendance.Attendance) error {
		return att.ApplyCheckOut(now, loc, dec.Distance)
	})
	if err != nil {
		return attendance.ActionResult{}, err
	}

	wa, err := s.workingAtRepo.GetByID(ctx, att.WorkingAtID)
	if err == nil {
		anchorDay := timeutil.DateIntToTime(att.WorkDate, s.loc)
		if occ, rErr := s.resolver.ResolveShiftForDay(&wa, att.ShiftID, anchorDay); rErr == nil {
			if dErr := s.dailyService.RecordCheckOut(ctx, att.RegisterID, att.WorkDate, att.ID, employeeID, occ.EndAt, now); dErr != nil {
				slog.Error("Failed to record check-out in daily rollup",
					"attendance_id", att.ID, "register_id", att.RegisterID, "error", dErr)
			}
		}
	}

	resp := mapAttendanceToResponse(att)
	return attendance.ActionResult{Attendance: &resp}, nil
}

// StartBreak implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) StartBreak(ctx context.Context, req attendance.StartBreakRequest) (attendance.ActionResult, error) {
	if err := req.Validate(); err != nil {
		return attendance.ActionResult{}, err
	}

	employeeID, retailID, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.ActionResult{}, err
	}

	if err := s.verifyPayload(ctx, employeeID, "start_break", req.ActionRequest); err != nil {
		return attendance.ActionResult{}, err
	}

	reg, err := s.loadRegister(ctx, req.RegisterID, retailID)
	if err != nil {
		return attendance.ActionResult{}, err
	}

	dec, signal, err := s.checkGeofence(ctx, &reg, req.ActionRequest)
	if err != nil {
		return attendance.ActionResult{}, err
	}
	if signal != nil {
		return *signal, nil
	}

	now := s.now()
	entry := attendance.BreakEntry{
		ID:              req.EntryID,
		Name:            req.Name,
		CheckInTime:     now,
		CheckInLocation: attendance.GeoPoint{Latitude: req.Latitude, Longitude: req.Longitude},
		CheckInDistance: dec.Distance,
	}

	// Regulated breaks must resolve a template and land inside its window.
	switch {
	case req.BreakID != nil:
		occ, err := s.resolver.ResolveBreak(&reg, *req.BreakID, now)
		if err != nil {
			return attendance.ActionResult{}, err
		}
		if !timeutil.IsBetweenInclusive(now, occ.StartAt, occ.EndAt) {
			return attendance.ActionResult{}, attendance.ErrOutsideBreakWindow
		}
		entry.TemplateID = req.BreakID
		entry.Name = occ.Template.Name
		entry.DurationMinutes = occ.Template.DurationMinutes
		entry.IsOverNight = occ.Template.IsOverNight
	case req.BreakKey != nil:
		occ, err := s.resolver.ResolveSpecificBreak(&reg, *req.BreakKey, now)
		if err != nil {
			return attendance.ActionResult{}, err
		}
		if !timeutil.IsBetweenInclusive(now, occ.StartAt, occ.EndAt) {
			return attendance.ActionResult{}, attendance.ErrOutsideBreakWindow
		}
		entry.SpecificKey = req.BreakKey
		entry.Name = occ.Template.Name
		entry.DurationMinutes = occ.Template.DurationMinutes
		entry.IsOverNight = occ.Template.IsOverNight
	}

	att, err := s.mutate(ctx, req.AttendanceID, employeeID, func(att *attendance.Attendance) error {
		return att.ApplyStartBreak(entry)
	})
	if err != nil {
		return attendance.ActionResult{}, err
	}

	resp := mapAttendanceToResponse(att)
	return attendance.ActionResult{Attendance: &resp}, nil
}

// StopBreak implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) StopBreak(ctx context.Context, req attendance.StopBreakRequest) (attendance.ActionResult, error) {
	if err := req.Validate(); err != nil {
		return attendance.ActionResult{}, err
	}
	return s.stopEntry(ctx, "stop_break", req.ActionRequest, req.AttendanceID, func(att *attendance.Attendance, at time.Time, loc attendance.GeoPoint, distance float64) error {
		return att.ApplyStopBreak(req.EntryID, at, loc, distance)
	})
}

// StartPause implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) StartPause(ctx context.Context, req attendance.StartPauseRequest) (attendance.ActionResult, error) {
	if err := req.Validate(); err != nil {
		return attendance.ActionResult{}, err
	}

	employeeID, retailID, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.ActionResult{}, err
	}

	if err := s.verifyPayload(ctx, employeeID, "start_pause", req.ActionRequest); err != nil {
		return attendance.ActionResult{}, err
	}

	reg, err := s.loadRegister(ctx, req.RegisterID, retailID)
	if err != nil {
		return attendance.ActionResult{}, err
	}

	dec, signal, err := s.checkGeofence(ctx, &reg, req.ActionRequest)
	if err != nil {
		return attendance.ActionResult{}, err
	}
	if signal != nil {
		return *signal, nil
	}

	now := s.now()
	entry := attendance.PauseEntry{
		ID:              req.EntryID,
		Name:            req.Name,
		CheckInTime:     now,
		CheckInLocation: attendance.GeoPoint{Latitude: req.Latitude, Longitude: req.Longitude},
		CheckInDistance: dec.Distance,
	}

	att, err := s.mutate(ctx, req.AttendanceID, employeeID, func(att *attendance.Attendance) error {
		return att.ApplyStartPause(entry)
	})
	if err != nil {
		return attendance.ActionResult{}, err
	}

	resp := mapAttendanceToResponse(att)
	return attendance.ActionResult{Attendance: &resp}, nil
}

// StopPause implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) StopPause(ctx context.Context, req attendance.StopPauseRequest) (attendance.ActionResult, error) {
	if err := req.Validate(); err != nil {
		return attendance.ActionResult{}, err
	}
	return s.stopEntry(ctx, "stop_pause", req.ActionRequest, req.AttendanceID, func(att *attendance.Attendance, at time.Time, loc attendance.GeoPoint, distance float64) error {
		return att.ApplyStopPause(req.EntryID, at, loc, distance)
	})
}

// stopEntry shares the close path of breaks and pauses: verify, geofence,
// then apply the closing transition under CAS.
func (s *AttendanceServiceImpl) stopEntry(ctx context.Context, action string, req attendance.ActionRequest, attendanceID string, apply func(*attendance.Attendance, time.Time, attendance.GeoPoint, float64) error) (attendance.ActionResult, error) {
	employeeID, retailID, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.ActionResult{}, err
	}

	if err := s.verifyPayload(ctx, employeeID, action, req); err != nil {
		return attendance.ActionResult{}, err
	}

	reg, err := s.loadRegister(ctx, req.RegisterID, retailID)
	if err != nil {
		return attendance.ActionResult{}, err
	}

	dec, signal, err := s.checkGeofence(ctx, &reg, req)
	if err != nil {
		return attendance.ActionResult{}, err
	}
	if signal != nil {
		return *signal, nil
	}

	now := s.now()
	loc := attendance.GeoPoint{Latitude: req.Latitude, Longitude: req.Longitude}

	att, err := s.mutate(ctx, attendanceID, employeeID, func(att *attendance.Attendance) error {
		return apply(att, now, loc, dec.Distance)
	})
	if err != nil {
		return attendance.ActionResult{}, err
	}

	resp := mapAttendanceToResponse(att)
	return attendance.ActionResult{Attendance: &resp}, nil
}

// mutate loads the aggregate, applies the transition and saves with
// compare-and-swap, retrying when another request moved the row first. This
// closes the read-then-write race on the mutual-exclusion invariants.
func (s *AttendanceServiceImpl) mutate(ctx context.Context, attendanceID, employeeID string, apply func(*attendance.Attendance) error) (attendance.Attendance, error) {
	var lastErr error
	for attempt := 0; attempt < casRetries; attempt++ {
		att, err := s.attendanceRepo.GetByID(ctx, attendanceID)
		if err != nil {
			return attendance.Attendance{}, err
		}
		if att.EmployeeID != employeeID {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}

		if err := apply(&att); err != nil {
			return attendance.Attendance{}, err
		}

		if err := s.attendanceRepo.Update(ctx, att); err != nil {
			if errors.Is(err, attendance.ErrVersionConflict) {
				lastErr = err
				continue
			}
			return attendance.Attendance{}, err
		}
		att.Version++
		return att, nil
	}
	return attendance.Attendance{}, lastErr
}

// GetAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	employeeID, _, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	att, err := s.attendanceRepo.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if att.EmployeeID != employeeID {
		return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
	}

	return mapAttendanceToResponse(att), nil
}

// timePtrToString safely converts a *time.Time to a string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format("2006-01-02 15:04:05")
	return &format
}

// mapAttendanceToResponse converts an Attendance aggregate to its response.
func mapAttendanceToResponse(att attendance.Attendance) attendance.AttendanceResponse {
	return attendance.AttendanceResponse{
		ID:               att.ID,
		WorkingAtID:      att.WorkingAtID,
		RegisterID:       att.RegisterID,
		EmployeeID:       att.EmployeeID,
		ShiftID:          att.ShiftID,
		WorkDate:         att.WorkDate,
		CheckInTime:      att.CheckInTime.Format("2006-01-02 15:04:05"),
		CheckInDistance:  att.CheckInDistance,
		CheckOutTime:     timePtrToString(att.CheckOutTime),
		CheckOutDistance: att.CheckOutDistance,
		Breaks:           att.Breaks,
		Pauses:           att.Pauses,
	}
}

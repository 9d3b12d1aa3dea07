package attendance

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/attendance-backend-go/internal/domain/attendance"
	"github.com/attendly/attendance-backend-go/internal/domain/dailyattendance"
	"github.com/attendly/attendance-backend-go/internal/domain/device"
	"github.com/attendly/attendance-backend-go/internal/domain/employee"
	"github.com/attendly/attendance-backend-go/internal/domain/register"
	"github.com/attendly/attendance-backend-go/internal/domain/workingat"
	"github.com/attendly/attendance-backend-go/internal/pkg/devicetoken"
	"github.com/attendly/attendance-backend-go/internal/service/geofence"
	"github.com/attendly/attendance-backend-go/internal/service/schedule"
)

const (
	testRetailID    = "retail-1"
	testEmployeeID  = "emp-1"
	testRegisterID  = "reg-1"
	testWorkingAtID = "wa-1"
	testShiftID     = "shift-1"
	testBreakID     = "brk-1"
)

// Tuesday 2025-03-11, inside the 09:00-17:00 shift.
var testNow = time.Date(2025, 3, 11, 9, 5, 0, 0, time.UTC)

type fakeAttendanceRepo struct {
	rows      map[string]attendance.Attendance
	nextID    int
	conflicts int // Update fails with ErrVersionConflict this many times
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{rows: map[string]attendance.Attendance{}}
}

func (r *fakeAttendanceRepo) Create(_ context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	for _, row := range r.rows {
		if row.WorkingAtID == att.WorkingAtID && row.ShiftID == att.ShiftID && row.WorkDate == att.WorkDate {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
	}
	r.nextID++
	att.ID = fmt.Sprintf("att-%d", r.nextID)
	r.rows[att.ID] = att
	return att, nil
}

func (r *fakeAttendanceRepo) GetByID(_ context.Context, id string) (attendance.Attendance, error) {
	att, ok := r.rows[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return att, nil
}

func (r *fakeAttendanceRepo) FindByOccurrence(_ context.Context, workingAtID, shiftID string, workDate int) (*attendance.Attendance, error) {
	for _, row := range r.rows {
		if row.WorkingAtID == workingAtID && row.ShiftID == shiftID && row.WorkDate == workDate {
			found := row
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeAttendanceRepo) ListByRegisterAndDate(_ context.Context, registerID string, workDate int) ([]attendance.Attendance, error) {
	var out []attendance.Attendance
	for _, row := range r.rows {
		if row.RegisterID == registerID && row.WorkDate == workDate {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeAttendanceRepo) Update(_ context.Context, att attendance.Attendance) error {
	if r.conflicts > 0 {
		r.conflicts--
		return attendance.ErrVersionConflict
	}
	stored, ok := r.rows[att.ID]
	if !ok || stored.Version != att.Version {
		return attendance.ErrVersionConflict
	}
	att.Version++
	r.rows[att.ID] = att
	return nil
}

type fakeRegisterRepo struct {
	registers map[string]register.Register
}

func (r *fakeRegisterRepo) Create(_ context.Context, reg register.Register) (register.Register, error) {
	r.registers[reg.ID] = reg
	return reg, nil
}

func (r *fakeRegisterRepo) GetByID(_ context.Context, id string) (register.Register, error) {
	reg, ok := r.registers[id]
	if !ok {
		return register.Register{}, register.ErrRegisterNotFound
	}
	return reg, nil
}

func (r *fakeRegisterRepo) Update(_ context.Context, reg register.Register) error {
	r.registers[reg.ID] = reg
	return nil
}

func (r *fakeRegisterRepo) ListByRetail(_ context.Context, retailID string) ([]register.Register, error) {
	var out []register.Register
	for _, reg := range r.registers {
		if reg.RetailID == retailID {
			out = append(out, reg)
		}
	}
	return out, nil
}

type fakeWorkingAtRepo struct {
	relations map[string]workingat.WorkingAt
}

func (r *fakeWorkingAtRepo) Create(_ context.Context, wa workingat.WorkingAt) (workingat.WorkingAt, error) {
	r.relations[wa.ID] = wa
	return wa, nil
}

func (r *fakeWorkingAtRepo) GetByID(_ context.Context, id string) (workingat.WorkingAt, error) {
	wa, ok := r.relations[id]
	if !ok {
		return workingat.WorkingAt{}, workingat.ErrWorkingAtNotFound
	}
	return wa, nil
}

func (r *fakeWorkingAtRepo) GetByEmployeeAndRegister(_ context.Context, employeeID, registerID string) (workingat.WorkingAt, error) {
	for _, wa := range r.relations {
		if wa.EmployeeID == employeeID && wa.RegisterID == registerID {
			return wa, nil
		}
	}
	return workingat.WorkingAt{}, workingat.ErrWorkingAtNotFound
}

func (r *fakeWorkingAtRepo) ListByRegister(_ context.Context, registerID string) ([]workingat.WorkingAt, error) {
	var out []workingat.WorkingAt
	for _, wa := range r.relations {
		if wa.RegisterID == registerID {
			out = append(out, wa)
		}
	}
	return out, nil
}

func (r *fakeWorkingAtRepo) UpdateShifts(_ context.Context, id string, shifts [7][]workingat.Shift) error {
	wa := r.relations[id]
	wa.Shifts = shifts
	r.relations[id] = wa
	return nil
}

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
}

func (r *fakeEmployeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	emp, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

type fakeDeviceRepo struct {
	devices []device.LocalDevice
}

func (r *fakeDeviceRepo) Create(_ context.Context, d device.LocalDevice) (device.LocalDevice, error) {
	r.devices = append(r.devices, d)
	return d, nil
}

func (r *fakeDeviceRepo) GetByID(_ context.Context, id string) (device.LocalDevice, error) {
	for _, d := range r.devices {
		if d.ID == id {
			return d, nil
		}
	}
	return device.LocalDevice{}, device.ErrDeviceNotFound
}

func (r *fakeDeviceRepo) ListByRegister(_ context.Context, registerID string) ([]device.LocalDevice, error) {
	var out []device.LocalDevice
	for _, d := range r.devices {
		if d.RegisterID == registerID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDeviceRepo) CountByRegister(_ context.Context, registerID string) (int, error) {
	n := 0
	for _, d := range r.devices {
		if d.RegisterID == registerID {
			n++
		}
	}
	return n, nil
}

func (r *fakeDeviceRepo) Delete(_ context.Context, id string) error {
	for i, d := range r.devices {
		if d.ID == id {
			r.devices = append(r.devices[:i], r.devices[i+1:]...)
			return nil
		}
	}
	return device.ErrDeviceNotFound
}

type fakeDailyService struct {
	checkIns  int
	checkOuts int
}

func (s *fakeDailyService) EnsureDaily(_ context.Context, registerID string, date int) (dailyattendance.DailyAttendance, error) {
	return dailyattendance.DailyAttendance{RegisterID: registerID, Date: date}, nil
}

func (s *fakeDailyService) RecordCheckIn(_ context.Context, _ string, _ int, _, _ string, _, _ time.Time) error {
	s.checkIns++
	return nil
}

func (s *fakeDailyService) RecordCheckOut(_ context.Context, _ string, _ int, _, _ string, _, _ time.Time) error {
	s.checkOuts++
	return nil
}

func (s *fakeDailyService) GetDaily(_ context.Context, registerID string, date int) (dailyattendance.DailyAttendance, error) {
	return dailyattendance.DailyAttendance{RegisterID: registerID, Date: date}, nil
}

func (s *fakeDailyService) FinalizeOutstanding(_ context.Context, _ int) error {
	return nil
}

type testEnv struct {
	svc        *AttendanceServiceImpl
	attRepo    *fakeAttendanceRepo
	deviceRepo *fakeDeviceRepo
	daily      *fakeDailyService
	priv       ed25519.PrivateKey
	ctx        context.Context
}

// newTestEnv wires the service against in-memory fakes. The register sits at
// the origin with a 120m radius, and the employee works a 09:00-17:00 shift
// on Tuesdays.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	reg := register.Register{
		ID:           testRegisterID,
		RetailID:     testRetailID,
		Name:         "Main Register",
		Latitude:     0,
		Longitude:    0,
		RadiusMeters: 120,
		IsAvailable:  true,
	}
	reg.Breaks[int(time.Tuesday)] = []register.BreakTemplate{
		{ID: testBreakID, Name: "Lunch", Start: "12:00", End: "14:00", DurationMinutes: 60},
	}

	wa := workingat.WorkingAt{
		ID:         testWorkingAtID,
		EmployeeID: testEmployeeID,
		RegisterID: testRegisterID,
		RetailID:   testRetailID,
	}
	wa.Shifts[int(time.Tuesday)] = []workingat.Shift{
		{ID: testShiftID, Start: "09:00", End: "17:00", AllowedOvertimeMinutes: 30, IsAvailable: true},
	}

	attRepo := newFakeAttendanceRepo()
	deviceRepo := &fakeDeviceRepo{}
	daily := &fakeDailyService{}

	svc := &AttendanceServiceImpl{
		attendanceRepo: attRepo,
		registerRepo:   &fakeRegisterRepo{registers: map[string]register.Register{reg.ID: reg}},
		workingAtRepo:  &fakeWorkingAtRepo{relations: map[string]workingat.WorkingAt{wa.ID: wa}},
		employeeRepo:   &fakeEmployeeRepo{employees: map[string]employee.Employee{testEmployeeID: {ID: testEmployeeID, RetailID: testRetailID, PublicKey: pub}}},
		dailyService:   daily,
		geoValidator:   geofence.NewValidator(deviceRepo),
		resolver:       schedule.NewResolver(time.UTC),
		loc:            time.UTC,
		now:            func() time.Time { return testNow },
	}

	return &testEnv{
		svc:        svc,
		attRepo:    attRepo,
		deviceRepo: deviceRepo,
		daily:      daily,
		priv:       priv,
		ctx:        claimsContext(t, testEmployeeID, testRetailID),
	}
}

func claimsContext(t *testing.T, employeeID, retailID string) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"employee_id": employeeID,
		"retail_id":   retailID,
		"type":        "access",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

// signedAction builds a request body with a matching signed payload. Latitude
// 0.0005 is about 55m from the register, inside the radius.
func (e *testEnv) signedAction(t *testing.T, action string, lat, lon float64) attendance.ActionRequest {
	t.Helper()
	payload, err := devicetoken.Sign(e.priv, devicetoken.Claims{
		RegisterID: testRegisterID,
		EmployeeID: testEmployeeID,
		Action:     action,
		Latitude:   lat,
		Longitude:  lon,
		IssuedAt:   e.svc.now().Unix(),
	})
	require.NoError(t, err)
	return attendance.ActionRequest{
		RegisterID:   testRegisterID,
		Latitude:     lat,
		Longitude:    lon,
		TokenPayload: payload,
	}
}

func (e *testEnv) checkIn(t *testing.T) attendance.ActionResult {
	t.Helper()
	result, err := e.svc.CheckIn(e.ctx, attendance.CheckInRequest{
		ActionRequest: e.signedAction(t, "check_in", 0.0005, 0),
		ShiftID:       testShiftID,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Attendance)
	return result
}

func TestCheckInCreatesAttendance(t *testing.T) {
	env := newTestEnv(t)

	result := env.checkIn(t)

	assert.Equal(t, testWorkingAtID, result.Attendance.WorkingAtID)
	assert.Equal(t, testShiftID, result.Attendance.ShiftID)
	assert.Equal(t, 20250311, result.Attendance.WorkDate)
	assert.InDelta(t, 55.6, result.Attendance.CheckInDistance, 1.0)
	assert.Equal(t, 1, env.daily.checkIns)
}

func TestCheckInRejectsDuplicate(t *testing.T) {
	env := newTestEnv(t)
	env.checkIn(t)

	_, err := env.svc.CheckIn(env.ctx, attendance.CheckInRequest{
		ActionRequest: env.signedAction(t, "check_in", 0.0005, 0),
		ShiftID:       testShiftID,
	})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
}

func TestCheckInRejectsOutsideRadius(t *testing.T) {
	env := newTestEnv(t)

	// ~2.2km north of the register.
	_, err := env.svc.CheckIn(env.ctx, attendance.CheckInRequest{
		ActionRequest: env.signedAction(t, "check_in", 0.02, 0),
		ShiftID:       testShiftID,
	})
	assert.ErrorIs(t, err, attendance.ErrOutsideAllowedRadius)
	assert.Empty(t, env.attRepo.rows)
}

func TestCheckInRejectsTamperedBody(t *testing.T) {
	env := newTestEnv(t)

	req := attendance.CheckInRequest{
		ActionRequest: env.signedAction(t, "check_in", 0.0005, 0),
		ShiftID:       testShiftID,
	}
	// Reported position moved after signing.
	req.Latitude = 0.0001

	_, err := env.svc.CheckIn(env.ctx, req)
	assert.ErrorIs(t, err, devicetoken.ErrPayloadMismatch)
}

func TestCheckInRejectsStalePayload(t *testing.T) {
	env := newTestEnv(t)

	req := attendance.CheckInRequest{
		ActionRequest: env.signedAction(t, "check_in", 0.0005, 0),
		ShiftID:       testShiftID,
	}
	payload, err := devicetoken.Sign(env.priv, devicetoken.Claims{
		RegisterID: testRegisterID,
		EmployeeID: testEmployeeID,
		Action:     "check_in",
		Latitude:   0.0005,
		Longitude:  0,
		IssuedAt:   testNow.Add(-10 * time.Minute).Unix(),
	})
	require.NoError(t, err)
	req.TokenPayload = payload

	_, err = env.svc.CheckIn(env.ctx, req)
	assert.ErrorIs(t, err, devicetoken.ErrPayloadExpired)
}

func TestCheckInHidesForeignRegister(t *testing.T) {
	env := newTestEnv(t)
	env.ctx = claimsContext(t, testEmployeeID, "retail-other")

	_, err := env.svc.CheckIn(env.ctx, attendance.CheckInRequest{
		ActionRequest: env.signedAction(t, "check_in", 0.0005, 0),
		ShiftID:       testShiftID,
	})
	assert.ErrorIs(t, err, register.ErrRegisterNotFound)
}

func TestCheckInAsksForLocalDeviceChoice(t *testing.T) {
	env := newTestEnv(t)
	env.deviceRepo.devices = []device.LocalDevice{
		{ID: "dev-1", RegisterID: testRegisterID, Latitude: 0, Longitude: 0, RadiusMeters: 50},
	}

	result, err := env.svc.CheckIn(env.ctx, attendance.CheckInRequest{
		ActionRequest: env.signedAction(t, "check_in", 0.0005, 0),
		ShiftID:       testShiftID,
	})
	require.NoError(t, err)
	assert.True(t, result.LocalDevicesRequired)
	assert.Equal(t, []string{"dev-1"}, result.LocalDevices)
	assert.Nil(t, result.Attendance)
	assert.Empty(t, env.attRepo.rows)
}

func TestCheckInAgainstNamedLocalDevice(t *testing.T) {
	env := newTestEnv(t)
	// The device sits ~1.1km from the register; its own radius governs.
	env.deviceRepo.devices = []device.LocalDevice{
		{ID: "dev-1", RegisterID: testRegisterID, Latitude: 0.01, Longitude: 0, RadiusMeters: 150},
	}

	req := attendance.CheckInRequest{
		ActionRequest: env.signedAction(t, "check_in", 0.011, 0),
		ShiftID:       testShiftID,
	}
	deviceID := "dev-1"
	req.LocalDeviceID = &deviceID

	result, err := env.svc.CheckIn(env.ctx, req)
	require.NoError(t, err)
	require.NotNil(t, result.Attendance)
	assert.InDelta(t, 111.2, result.Attendance.CheckInDistance, 1.0)
}

func TestCheckOutClosesAttendance(t *testing.T) {
	env := newTestEnv(t)
	created := env.checkIn(t)

	result, err := env.svc.CheckOut(env.ctx, attendance.CheckOutRequest{
		ActionRequest: env.signedAction(t, "check_out", 0.0005, 0),
		AttendanceID:  created.Attendance.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Attendance.CheckOutTime)
	assert.Equal(t, 1, env.daily.checkOuts)

	_, err = env.svc.CheckOut(env.ctx, attendance.CheckOutRequest{
		ActionRequest: env.signedAction(t, "check_out", 0.0005, 0),
		AttendanceID:  created.Attendance.ID,
	})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)
}

func TestCheckOutRejectsOpenBreak(t *testing.T) {
	env := newTestEnv(t)
	created := env.checkIn(t)

	_, err := env.svc.StartBreak(env.ctx, attendance.StartBreakRequest{
		ActionRequest: env.signedAction(t, "start_break", 0.0005, 0),
		AttendanceID:  created.Attendance.ID,
		EntryID:       "0195f2a0-0000-7000-8000-000000000001",
		Name:          "Coffee",
	})
	require.NoError(t, err)

	_, err = env.svc.CheckOut(env.ctx, attendance.CheckOutRequest{
		ActionRequest: env.signedAction(t, "check_out", 0.0005, 0),
		AttendanceID:  created.Attendance.ID,
	})
	assert.ErrorIs(t, err, attendance.ErrSomeBreakIsPending)
}

func TestStartBreakEnforcesTemplateWindow(t *testing.T) {
	env := newTestEnv(t)
	created := env.checkIn(t)

	// testNow is 09:05, the lunch template opens at 12:00.
	breakID := testBreakID
	_, err := env.svc.StartBreak(env.ctx, attendance.StartBreakRequest{
		ActionRequest: env.signedAction(t, "start_break", 0.0005, 0),
		AttendanceID:  created.Attendance.ID,
		EntryID:       "0195f2a0-0000-7000-8000-000000000002",
		BreakID:       &breakID,
	})
	assert.ErrorIs(t, err, attendance.ErrOutsideBreakWindow)
}

func TestStartBreakSnapshotsTemplate(t *testing.T) {
	env := newTestEnv(t)
	created := env.checkIn(t)
	env.svc.now = func() time.Time {
		return time.Date(2025, 3, 11, 12, 30, 0, 0, time.UTC)
	}

	breakID := testBreakID
	result, err := env.svc.StartBreak(env.ctx, attendance.StartBreakRequest{
		ActionRequest: env.signedAction(t, "start_break", 0.0005, 0),
		AttendanceID:  created.Attendance.ID,
		EntryID:       "0195f2a0-0000-7000-8000-000000000003",
		BreakID:       &breakID,
	})
	require.NoError(t, err)
	require.Len(t, result.Attendance.Breaks, 1)
	assert.Equal(t, "Lunch", result.Attendance.Breaks[0].Name)
	assert.Equal(t, 60, result.Attendance.Breaks[0].DurationMinutes)
	require.NotNil(t, result.Attendance.Breaks[0].TemplateID)
	assert.Equal(t, testBreakID, *result.Attendance.Breaks[0].TemplateID)
}

func TestPauseBlockedWhileBreakOpen(t *testing.T) {
	env := newTestEnv(t)
	created := env.checkIn(t)

	_, err := env.svc.StartBreak(env.ctx, attendance.StartBreakRequest{
		ActionRequest: env.signedAction(t, "start_break", 0.0005, 0),
		AttendanceID:  created.Attendance.ID,
		EntryID:       "0195f2a0-0000-7000-8000-000000000004",
		Name:          "Coffee",
	})
	require.NoError(t, err)

	_, err = env.svc.StartPause(env.ctx, attendance.StartPauseRequest{
		ActionRequest: env.signedAction(t, "start_pause", 0.0005, 0),
		AttendanceID:  created.Attendance.ID,
		EntryID:       "0195f2a0-0000-7000-8000-000000000005",
		Name:          "Delivery",
	})
	assert.ErrorIs(t, err, attendance.ErrSomeBreakIsPending)
}

func TestStopBreakThenPauseSucceeds(t *testing.T) {
	env := newTestEnv(t)
	created := env.checkIn(t)

	entryID := "0195f2a0-0000-7000-8000-000000000006"
	_, err := env.svc.StartBreak(env.ctx, attendance.StartBreakRequest{
		ActionRequest: env.signedAction(t, "start_break", 0.0005, 0),
		AttendanceID:  created.Attendance.ID,
		EntryID:       entryID,
		Name:          "Coffee",
	})
	require.NoError(t, err)

	_, err = env.svc.StopBreak(env.ctx, attendance.StopBreakRequest{
		ActionRequest: env.signedAction(t, "stop_break", 0.0005, 0),
		AttendanceID:  created.Attendance.ID,
		EntryID:       entryID,
	})
	require.NoError(t, err)

	// Stopping twice reports the terminal state.
	_, err = env.svc.StopBreak(env.ctx, attendance.StopBreakRequest{
		ActionRequest: env.signedAction(t, "stop_break", 0.0005, 0),
		AttendanceID:  created.Attendance.ID,
		EntryID:       entryID,
	})
	assert.ErrorIs(t, err, attendance.ErrBreakAlreadyFinished)

	result, err := env.svc.StartPause(env.ctx, attendance.StartPauseRequest{
		ActionRequest: env.signedAction(t, "start_pause", 0.0005, 0),
		AttendanceID:  created.Attendance.ID,
		EntryID:       "0195f2a0-0000-7000-8000-000000000007",
		Name:          "Delivery",
	})
	require.NoError(t, err)
	assert.Len(t, result.Attendance.Pauses, 1)
}

func TestMutateRetriesOnVersionConflict(t *testing.T) {
	env := newTestEnv(t)
	created := env.checkIn(t)
	env.attRepo.conflicts = 2

	result, err := env.svc.CheckOut(env.ctx, attendance.CheckOutRequest{
		ActionRequest: env.signedAction(t, "check_out", 0.0005, 0),
		AttendanceID:  created.Attendance.ID,
	})
	require.NoError(t, err)
	assert.NotNil(t, result.Attendance.CheckOutTime)
}

func TestMutateGivesUpAfterRetries(t *testing.T) {
	env := newTestEnv(t)
	created := env.checkIn(t)
	env.attRepo.conflicts = casRetries + 1

	_, err := env.svc.CheckOut(env.ctx, attendance.CheckOutRequest{
		ActionRequest: env.signedAction(t, "check_out", 0.0005, 0),
		AttendanceID:  created.Attendance.ID,
	})
	assert.ErrorIs(t, err, attendance.ErrVersionConflict)
}

func TestGetAttendanceScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	created := env.checkIn(t)

	got, err := env.svc.GetAttendance(env.ctx, created.Attendance.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Attendance.ID, got.ID)

	otherCtx := claimsContext(t, "emp-other", testRetailID)
	_, err = env.svc.GetAttendance(otherCtx, created.Attendance.ID)
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

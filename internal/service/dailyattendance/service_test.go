package dailyattendance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/attendance-backend-go/internal/domain/attendance"
	"github.com/attendly/attendance-backend-go/internal/domain/dailyattendance"
	"github.com/attendly/attendance-backend-go/internal/domain/register"
	"github.com/attendly/attendance-backend-go/internal/domain/workingat"
)

type fakeDailyRepo struct {
	rows    map[string]dailyattendance.DailyAttendance
	inserts int
}

func newFakeDailyRepo() *fakeDailyRepo {
	return &fakeDailyRepo{rows: map[string]dailyattendance.DailyAttendance{}}
}

func dailyKey(registerID string, date int) string {
	return fmt.Sprintf("%s/%d", registerID, date)
}

func (r *fakeDailyRepo) Get(_ context.Context, registerID string, date int) (dailyattendance.DailyAttendance, error) {
	row, ok := r.rows[dailyKey(registerID, date)]
	if !ok {
		return dailyattendance.DailyAttendance{}, dailyattendance.ErrDailyNotFound
	}
	return row, nil
}

func (r *fakeDailyRepo) Insert(_ context.Context, daily dailyattendance.DailyAttendance) (bool, error) {
	key := dailyKey(daily.RegisterID, daily.Date)
	if _, ok := r.rows[key]; ok {
		return false, nil
	}
	daily.ID = key
	r.rows[key] = daily
	r.inserts++
	return true, nil
}

func (r *fakeDailyRepo) Update(_ context.Context, daily dailyattendance.DailyAttendance) error {
	r.rows[dailyKey(daily.RegisterID, daily.Date)] = daily
	return nil
}

func (r *fakeDailyRepo) ListUnconfirmedBefore(_ context.Context, cutoff int) ([]dailyattendance.DailyAttendance, error) {
	var out []dailyattendance.DailyAttendance
	for _, row := range r.rows {
		if !row.Confirmed && row.Date <= cutoff {
			out = append(out, row)
		}
	}
	return out, nil
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

func (r *fakeRegisterRepo) ListByRetail(_ context.Context, _ string) ([]register.Register, error) {
	return nil, nil
}

type fakeWorkingAtRepo struct {
	relations []workingat.WorkingAt
}

func (r *fakeWorkingAtRepo) Create(_ context.Context, wa workingat.WorkingAt) (workingat.WorkingAt, error) {
	r.relations = append(r.relations, wa)
	return wa, nil
}

func (r *fakeWorkingAtRepo) GetByID(_ context.Context, id string) (workingat.WorkingAt, error) {
	for _, wa := range r.relations {
		if wa.ID == id {
			return wa, nil
		}
	}
	return workingat.WorkingAt{}, workingat.ErrWorkingAtNotFound
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

func (r *fakeWorkingAtRepo) UpdateShifts(_ context.Context, _ string, _ [7][]workingat.Shift) error {
	return nil
}

type fakeAttendanceRepo struct {
	attendances []attendance.Attendance
}

func (r *fakeAttendanceRepo) Create(_ context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	r.attendances = append(r.attendances, att)
	return att, nil
}

func (r *fakeAttendanceRepo) GetByID(_ context.Context, id string) (attendance.Attendance, error) {
	for _, att := range r.attendances {
		if att.ID == id {
			return att, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (r *fakeAttendanceRepo) FindByOccurrence(_ context.Context, workingAtID, shiftID string, workDate int) (*attendance.Attendance, error) {
	for i := range r.attendances {
		att := r.attendances[i]
		if att.WorkingAtID == workingAtID && att.ShiftID == shiftID && att.WorkDate == workDate {
			return &att, nil
		}
	}
	return nil, nil
}

func (r *fakeAttendanceRepo) ListByRegisterAndDate(_ context.Context, registerID string, workDate int) ([]attendance.Attendance, error) {
	var out []attendance.Attendance
	for _, att := range r.attendances {
		if att.RegisterID == registerID && att.WorkDate == workDate {
			out = append(out, att)
		}
	}
	return out, nil
}

func (r *fakeAttendanceRepo) Update(_ context.Context, att attendance.Attendance) error {
	for i := range r.attendances {
		if r.attendances[i].ID == att.ID {
			r.attendances[i] = att
			return nil
		}
	}
	return attendance.ErrAttendanceNotFound
}

const (
	testRegisterID = "11111111-1111-1111-1111-111111111111"
	mondayDate     = 20250310 // 2025-03-10 is a Monday
	sundayDate     = 20250309
)

func testRegister() register.Register {
	reg := register.Register{
		ID:       testRegisterID,
		RetailID: "retail-1",
		Name:     "Downtown",
	}
	for i := range reg.WorkingHours {
		reg.WorkingHours[i] = register.WorkingHour{Start: "09:00", End: "17:00", IsAvailable: true}
	}
	return reg
}

func newTestService(registers *fakeRegisterRepo, relations *fakeWorkingAtRepo, atts *fakeAttendanceRepo, daily *fakeDailyRepo) *DailyAttendanceServiceImpl {
	return &DailyAttendanceServiceImpl{
		dailyRepo:      daily,
		attendanceRepo: atts,
		registerRepo:   registers,
		workingAtRepo:  relations,
		loc:            time.UTC,
	}
}

func TestEnsureDailySnapshotsExpectedShifts(t *testing.T) {
	dailyRepo := newFakeDailyRepo()
	registers := &fakeRegisterRepo{registers: map[string]register.Register{testRegisterID: testRegister()}}

	var dayShifts [7][]workingat.Shift
	dayShifts[time.Monday] = []workingat.Shift{{ID: "shift-day", Start: "09:00", End: "17:00", IsAvailable: true}}
	var nightShifts [7][]workingat.Shift
	nightShifts[time.Sunday] = []workingat.Shift{{ID: "shift-night", Start: "22:00", End: "06:00", IsOverNight: true, IsAvailable: true}}

	relations := &fakeWorkingAtRepo{relations: []workingat.WorkingAt{
		{ID: "wa-1", EmployeeID: "emp-1", RegisterID: testRegisterID, Shifts: dayShifts},
		{ID: "wa-2", EmployeeID: "emp-2", RegisterID: testRegisterID, Shifts: nightShifts},
	}}

	svc := newTestService(registers, relations, &fakeAttendanceRepo{}, dailyRepo)

	daily, err := svc.EnsureDaily(context.Background(), testRegisterID, mondayDate)
	require.NoError(t, err)

	assert.Equal(t, "09:00", daily.WorkingHour.Start)
	require.Len(t, daily.ExpectedShifts, 2)

	byShift := map[string]dailyattendance.ExpectedShift{}
	for _, exp := range daily.ExpectedShifts {
		byShift[exp.ShiftID] = exp
	}
	assert.Equal(t, mondayDate, byShift["shift-day"].AnchorDate)
	assert.Equal(t, sundayDate, byShift["shift-night"].AnchorDate)
	assert.True(t, byShift["shift-night"].IsOverNight)

	// A second call loads the existing row instead of re-snapshotting.
	_, err = svc.EnsureDaily(context.Background(), testRegisterID, mondayDate)
	require.NoError(t, err)
	assert.Equal(t, 1, dailyRepo.inserts)
}

func TestRecordCheckInClassifiesOnTimeAndLate(t *testing.T) {
	dailyRepo := newFakeDailyRepo()
	registers := &fakeRegisterRepo{registers: map[string]register.Register{testRegisterID: testRegister()}}
	svc := newTestService(registers, &fakeWorkingAtRepo{}, &fakeAttendanceRepo{}, dailyRepo)

	shiftStart := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	err := svc.RecordCheckIn(context.Background(), testRegisterID, mondayDate, "att-1", "emp-1", shiftStart, shiftStart.Add(-3*time.Minute))
	require.NoError(t, err)
	err = svc.RecordCheckIn(context.Background(), testRegisterID, mondayDate, "att-2", "emp-2", shiftStart, shiftStart.Add(10*time.Minute))
	require.NoError(t, err)

	daily, err := dailyRepo.Get(context.Background(), testRegisterID, mondayDate)
	require.NoError(t, err)
	assert.Equal(t, 1, daily.Counts.CheckedInOnTime)
	assert.Equal(t, 1, daily.Counts.CheckedInLate)
	assert.Equal(t, 10, daily.LateMinutes["emp-2"])
	assert.ElementsMatch(t, []string{"att-1", "att-2"}, daily.AttendanceIDs)
}

func TestRecordCheckOutClassifiesEarly(t *testing.T) {
	dailyRepo := newFakeDailyRepo()
	registers := &fakeRegisterRepo{registers: map[string]register.Register{testRegisterID: testRegister()}}
	svc := newTestService(registers, &fakeWorkingAtRepo{}, &fakeAttendanceRepo{}, dailyRepo)

	shiftEnd := time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC)

	err := svc.RecordCheckOut(context.Background(), testRegisterID, mondayDate, "att-1", "emp-1", shiftEnd, shiftEnd.Add(-15*time.Minute))
	require.NoError(t, err)
	err = svc.RecordCheckOut(context.Background(), testRegisterID, mondayDate, "att-2", "emp-2", shiftEnd, shiftEnd.Add(20*time.Minute))
	require.NoError(t, err)

	daily, err := dailyRepo.Get(context.Background(), testRegisterID, mondayDate)
	require.NoError(t, err)
	assert.Equal(t, 1, daily.Counts.CheckedOutEarly)
	assert.Equal(t, 1, daily.Counts.CheckedOutOnTime)
	assert.Equal(t, 15, daily.EarlyMinutes["emp-1"])
}

func TestRecordSkipsConfirmedDay(t *testing.T) {
	dailyRepo := newFakeDailyRepo()
	_, err := dailyRepo.Insert(context.Background(), dailyattendance.DailyAttendance{
		RegisterID: testRegisterID,
		Date:       mondayDate,
		Confirmed:  true,
	})
	require.NoError(t, err)

	registers := &fakeRegisterRepo{registers: map[string]register.Register{testRegisterID: testRegister()}}
	svc := newTestService(registers, &fakeWorkingAtRepo{}, &fakeAttendanceRepo{}, dailyRepo)

	shiftStart := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	err = svc.RecordCheckIn(context.Background(), testRegisterID, mondayDate, "att-1", "emp-1", shiftStart, shiftStart)
	require.NoError(t, err)

	daily, err := dailyRepo.Get(context.Background(), testRegisterID, mondayDate)
	require.NoError(t, err)
	assert.Zero(t, daily.Counts.CheckedInOnTime)
	assert.Empty(t, daily.AttendanceIDs)
}

func expectedShiftsForRecompute() []dailyattendance.ExpectedShift {
	return []dailyattendance.ExpectedShift{
		{WorkingAtID: "wa-1", EmployeeID: "emp-1", ShiftID: "s-1", Start: "09:00", End: "17:00", AnchorDate: mondayDate},
		{WorkingAtID: "wa-2", EmployeeID: "emp-2", ShiftID: "s-2", Start: "09:00", End: "17:00", AnchorDate: mondayDate},
		{WorkingAtID: "wa-3", EmployeeID: "emp-3", ShiftID: "s-3", Start: "09:00", End: "17:00", AnchorDate: mondayDate},
	}
}

func recomputeAttendances() []attendance.Attendance {
	checkOut1 := time.Date(2025, 3, 10, 17, 5, 0, 0, time.UTC)
	return []attendance.Attendance{
		{
			ID:           "att-1",
			RegisterID:   testRegisterID,
			WorkingAtID:  "wa-1",
			ShiftID:      "s-1",
			WorkDate:     mondayDate,
			CheckInTime:  time.Date(2025, 3, 10, 8, 55, 0, 0, time.UTC),
			CheckOutTime: &checkOut1,
		},
		{
			ID:          "att-2",
			RegisterID:  testRegisterID,
			WorkingAtID: "wa-2",
			ShiftID:     "s-2",
			WorkDate:    mondayDate,
			CheckInTime: time.Date(2025, 3, 10, 9, 10, 0, 0, time.UTC),
		},
	}
}

func TestRecomputeCounts(t *testing.T) {
	daily := dailyattendance.DailyAttendance{
		RegisterID:     testRegisterID,
		Date:           mondayDate,
		ExpectedShifts: expectedShiftsForRecompute(),
	}

	counts, late, early, ids := RecomputeCounts(daily, recomputeAttendances(), time.UTC)

	assert.Equal(t, 1, counts.CheckedInOnTime)
	assert.Equal(t, 1, counts.CheckedInLate)
	assert.Equal(t, 1, counts.MissingCheckIn)
	assert.Equal(t, 1, counts.CheckedOutOnTime)
	assert.Equal(t, 1, counts.MissingCheckOut)
	assert.Zero(t, counts.CheckedOutEarly)
	assert.Equal(t, 10, late["emp-2"])
	assert.Empty(t, early)
	assert.ElementsMatch(t, []string{"att-1", "att-2"}, ids)
}

func TestRecomputeCountsSkipsForeignAnchors(t *testing.T) {
	// An overnight occurrence anchored on the previous day is listed for
	// visibility but counted in its own anchor day's rollup.
	daily := dailyattendance.DailyAttendance{
		RegisterID: testRegisterID,
		Date:       mondayDate,
		ExpectedShifts: []dailyattendance.ExpectedShift{
			{WorkingAtID: "wa-9", EmployeeID: "emp-9", ShiftID: "s-9", Start: "22:00", End: "06:00", IsOverNight: true, AnchorDate: sundayDate},
		},
	}

	counts, _, _, _ := RecomputeCounts(daily, nil, time.UTC)
	assert.Zero(t, counts.MissingCheckIn)
}

func TestFinalizeOutstandingIsIdempotent(t *testing.T) {
	dailyRepo := newFakeDailyRepo()
	_, err := dailyRepo.Insert(context.Background(), dailyattendance.DailyAttendance{
		RegisterID:     testRegisterID,
		Date:           mondayDate,
		ExpectedShifts: expectedShiftsForRecompute(),
		// Stale incremental counters get discarded by the recomputation.
		Counts:      dailyattendance.Counts{CheckedInOnTime: 7},
		LateMinutes: map[string]int{"emp-1": 99},
	})
	require.NoError(t, err)

	atts := &fakeAttendanceRepo{attendances: recomputeAttendances()}
	registers := &fakeRegisterRepo{registers: map[string]register.Register{testRegisterID: testRegister()}}
	svc := newTestService(registers, &fakeWorkingAtRepo{}, atts, dailyRepo)

	require.NoError(t, svc.FinalizeOutstanding(context.Background(), mondayDate))

	daily, err := dailyRepo.Get(context.Background(), testRegisterID, mondayDate)
	require.NoError(t, err)
	assert.True(t, daily.Confirmed)
	assert.Equal(t, 1, daily.Counts.CheckedInOnTime)
	assert.Equal(t, 1, daily.Counts.CheckedInLate)
	assert.Equal(t, 1, daily.Counts.MissingCheckIn)
	assert.Equal(t, 10, daily.LateMinutes["emp-2"])
	first := daily

	// A second pass finds nothing unconfirmed and changes nothing.
	require.NoError(t, svc.FinalizeOutstanding(context.Background(), mondayDate))
	daily, err = dailyRepo.Get(context.Background(), testRegisterID, mondayDate)
	require.NoError(t, err)
	assert.Equal(t, first, daily)
}

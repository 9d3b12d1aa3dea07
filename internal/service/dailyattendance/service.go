package dailyattendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/attendly/attendance-backend-go/internal/domain/attendance"
	"github.com/attendly/attendance-backend-go/internal/domain/dailyattendance"
	"github.com/attendly/attendance-backend-go/internal/domain/register"
	"github.com/attendly/attendance-backend-go/internal/domain/workingat"
	"github.com/attendly/attendance-backend-go/internal/pkg/timeutil"
)

type DailyAttendanceServiceImpl struct {
	dailyRepo      dailyattendance.DailyAttendanceRepository
	attendanceRepo attendance.AttendanceRepository
	registerRepo   register.RegisterRepository
	workingAtRepo  workingat.WorkingAtRepository
	loc            *time.Location
}

func NewDailyAttendanceService(
	dailyRepo dailyattendance.DailyAttendanceRepository,
	attendanceRepo attendance.AttendanceRepository,
	registerRepo register.RegisterRepository,
	workingAtRepo workingat.WorkingAtRepository,
	loc *time.Location,
) dailyattendance.DailyAttendanceService {
	return &DailyAttendanceServiceImpl{
		dailyRepo:      dailyRepo,
		attendanceRepo: attendanceRepo,
		registerRepo:   registerRepo,
		workingAtRepo:  workingAtRepo,
		loc:            loc,
	}
}

// EnsureDaily implements dailyattendance.DailyAttendanceService.
func (s *DailyAttendanceServiceImpl) EnsureDaily(ctx context.Context, registerID string, date int) (dailyattendance.DailyAttendance, error) {
	daily, err := s.dailyRepo.Get(ctx, registerID, date)
	if err == nil {
		return daily, nil
	}
	if !errors.Is(err, dailyattendance.ErrDailyNotFound) {
		return dailyattendance.DailyAttendance{}, fmt.Errorf("failed to get daily attendance: %w", err)
	}

	reg, err := s.registerRepo.GetByID(ctx, registerID)
	if err != nil {
		return dailyattendance.DailyAttendance{}, err
	}

	day := timeutil.DateIntToTime(date, s.loc)
	expected, err := s.deriveExpectedShifts(ctx, registerID, day)
	if err != nil {
		return dailyattendance.DailyAttendance{}, err
	}

	daily = dailyattendance.DailyAttendance{
		RegisterID:     registerID,
		Date:           date,
		WorkingHour:    reg.WorkingHours[int(day.Weekday())],
		ExpectedShifts: expected,
		LateMinutes:    map[string]int{},
		EarlyMinutes:   map[string]int{},
	}

	// Lazy creation may race with another request; whoever loses re-reads the
	// winner's row.
	if _, err := s.dailyRepo.Insert(ctx, daily); err != nil {
		return dailyattendance.DailyAttendance{}, fmt.Errorf("failed to insert daily attendance: %w", err)
	}
	return s.dailyRepo.Get(ctx, registerID, date)
}

// deriveExpectedShifts scans all working-at relations of the register and
// collects the shift occurrences of the day: the day's own entries plus
// overnight entries anchored on the previous day that are still running past
// midnight.
func (s *DailyAttendanceServiceImpl) deriveExpectedShifts(ctx context.Context, registerID string, day time.Time) ([]dailyattendance.ExpectedShift, error) {
	relations, err := s.workingAtRepo.ListByRegister(ctx, registerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list working-at relations: %w", err)
	}

	date := timeutil.DateInt(day)
	prevDay := day.AddDate(0, 0, -1)
	prevDate := timeutil.DateInt(prevDay)

	var expected []dailyattendance.ExpectedShift
	for _, wa := range relations {
		for _, shift := range wa.ShiftsFor(day.Weekday()) {
			if !shift.IsAvailable {
				continue
			}
			expected = append(expected, dailyattendance.ExpectedShift{
				WorkingAtID: wa.ID,
				EmployeeID:  wa.EmployeeID,
				ShiftID:     shift.ID,
				Start:       shift.Start,
				End:         shift.End,
				IsOverNight: shift.IsOverNight,
				AnchorDate:  date,
			})
		}
		for _, shift := range wa.ShiftsFor(prevDay.Weekday()) {
			if !shift.IsAvailable || !shift.IsOverNight {
				continue
			}
			expected = append(expected, dailyattendance.ExpectedShift{
				WorkingAtID: wa.ID,
				EmployeeID:  wa.EmployeeID,
				ShiftID:     shift.ID,
				Start:       shift.Start,
				End:         shift.End,
				IsOverNight: true,
				AnchorDate:  prevDate,
			})
		}
	}
	return expected, nil
}

// RecordCheckIn implements dailyattendance.DailyAttendanceService.
func (s *DailyAttendanceServiceImpl) RecordCheckIn(ctx context.Context, registerID string, date int, attendanceID, employeeID string, shiftStart, checkedInAt time.Time) error {
	daily, err := s.EnsureDaily(ctx, registerID, date)
	if err != nil {
		return err
	}
	if daily.Confirmed {
		return nil
	}

	if !daily.HasAttendance(attendanceID) {
		daily.AttendanceIDs = append(daily.AttendanceIDs, attendanceID)
	}

	if checkedInAt.After(shiftStart) {
		daily.Counts.CheckedInLate++
		daily.LateMinutes[employeeID] = int(checkedInAt.Sub(shiftStart).Minutes())
	} else {
		daily.Counts.CheckedInOnTime++
	}

	return s.dailyRepo.Update(ctx, daily)
}

// RecordCheckOut implements dailyattendance.DailyAttendanceService.
func (s *DailyAttendanceServiceImpl) RecordCheckOut(ctx context.Context, registerID string, date int, attendanceID, employeeID string, shiftEnd, checkedOutAt time.Time) error {
	daily, err := s.EnsureDaily(ctx, registerID, date)
	if err != nil {
		return err
	}
	if daily.Confirmed {
		return nil
	}

	if !daily.HasAttendance(attendanceID) {
		daily.AttendanceIDs = append(daily.AttendanceIDs, attendanceID)
	}

	if checkedOutAt.Before(shiftEnd) {
		daily.Counts.CheckedOutEarly++
		daily.EarlyMinutes[employeeID] = int(shiftEnd.Sub(checkedOutAt).Minutes())
	} else {
		daily.Counts.CheckedOutOnTime++
	}

	return s.dailyRepo.Update(ctx, daily)
}

// GetDaily implements dailyattendance.DailyAttendanceService.
func (s *DailyAttendanceServiceImpl) GetDaily(ctx context.Context, registerID string, date int) (dailyattendance.DailyAttendance, error) {
	return s.EnsureDaily(ctx, registerID, date)
}

// FinalizeOutstanding implements dailyattendance.DailyAttendanceService.
// Each rollup is recomputed from the day's full attendance set and confirmed;
// one failure is logged and does not abort the rest.
func (s *DailyAttendanceServiceImpl) FinalizeOutstanding(ctx context.Context, cutoff int) error {
	outstanding, err := s.dailyRepo.ListUnconfirmedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to list unconfirmed daily attendances: %w", err)
	}

	var failed int
	for _, daily := range outstanding {
		if err := s.finalizeOne(ctx, daily); err != nil {
			failed++
			slog.Error("Failed to finalize daily attendance",
				"register_id", daily.RegisterID, "date", daily.Date, "error", err)
		}
	}

	slog.Info("Daily attendance finalization pass completed",
		"processed", len(outstanding), "failed", failed)
	return nil
}

func (s *DailyAttendanceServiceImpl) finalizeOne(ctx context.Context, daily dailyattendance.DailyAttendance) error {
	atts, err := s.attendanceRepo.ListByRegisterAndDate(ctx, daily.RegisterID, daily.Date)
	if err != nil {
		return fmt.Errorf("failed to list attendances: %w", err)
	}

	counts, late, early, ids := RecomputeCounts(daily, atts, s.loc)
	daily.Counts = counts
	daily.LateMinutes = late
	daily.EarlyMinutes = early
	daily.AttendanceIDs = ids
	daily.Confirmed = true

	return s.dailyRepo.Update(ctx, daily)
}

// RecomputeCounts derives the day's counters from scratch out of the expected
// occurrences and the actual attendance set. It is a pure recomputation:
// running it twice, or concurrently from two finalization passes, converges
// to the same result. Only occurrences anchored to the rollup's own date are
// counted, so an overnight shift is counted exactly once, in its anchor day's
// rollup.
func RecomputeCounts(daily dailyattendance.DailyAttendance, atts []attendance.Attendance, loc *time.Location) (dailyattendance.Counts, map[string]int, map[string]int, []string) {
	var counts dailyattendance.Counts
	late := map[string]int{}
	early := map[string]int{}

	byOccurrence := make(map[string]*attendance.Attendance, len(atts))
	ids := make([]string, 0, len(atts))
	for i := range atts {
		byOccurrence[atts[i].WorkingAtID+"/"+atts[i].ShiftID] = &atts[i]
		ids = append(ids, atts[i].ID)
	}

	day := timeutil.DateIntToTime(daily.Date, loc)

	for _, exp := range daily.ExpectedShifts {
		if exp.AnchorDate != daily.Date {
			continue
		}

		att, ok := byOccurrence[exp.WorkingAtID+"/"+exp.ShiftID]
		if !ok {
			counts.MissingCheckIn++
			continue
		}

		startAt, endAt, err := timeutil.ResolveIntervalStrings(exp.Start, exp.End, day, loc)
		if err != nil {
			counts.MissingCheckIn++
			continue
		}

		if att.CheckInTime.After(startAt) {
			counts.CheckedInLate++
			late[exp.EmployeeID] = int(att.CheckInTime.Sub(startAt).Minutes())
		} else {
			counts.CheckedInOnTime++
		}

		if att.CheckOutTime == nil {
			counts.MissingCheckOut++
			continue
		}
		if att.CheckOutTime.Before(endAt) {
			counts.CheckedOutEarly++
			early[exp.EmployeeID] = int(endAt.Sub(*att.CheckOutTime).Minutes())
		} else {
			counts.CheckedOutOnTime++
		}
	}

	return counts, late, early, ids
}

package schedule

import (
	"time"

	"github.com/attendly/attendance-backend-go/internal/domain/register"
	"github.com/attendly/attendance-backend-go/internal/domain/workingat"
	"github.com/attendly/attendance-backend-go/internal/pkg/timeutil"
)

// ShiftOccurrence is a shift template anchored to a concrete calendar day.
// IsToday is false for an overnight occurrence that started yesterday and is
// still running past midnight.
type ShiftOccurrence struct {
	Shift     workingat.Shift
	IsToday   bool
	AnchorDay time.Time
	StartAt   time.Time
	EndAt     time.Time
}

// BreakOccurrence is a break template anchored the same way.
type BreakOccurrence struct {
	Template  register.BreakTemplate
	IsToday   bool
	AnchorDay time.Time
	StartAt   time.Time
	EndAt     time.Time
}

// Resolver locates the schedule entry an action belongs to. Schedules are
// keyed by day-of-week, but an overnight entry begun yesterday is still a
// legitimate target after midnight, so every lookup checks today first and
// falls back to yesterday.
type Resolver struct {
	loc *time.Location
}

func NewResolver(loc *time.Location) *Resolver {
	return &Resolver{loc: loc}
}

func (r *Resolver) startOfDay(t time.Time) time.Time {
	local := t.In(r.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, r.loc)
}

// ResolveShift finds shiftID in the employee's schedule for now's day-of-week,
// falling back to yesterday's entries for overnight shifts still open.
func (r *Resolver) ResolveShift(wa *workingat.WorkingAt, shiftID string, now time.Time) (ShiftOccurrence, error) {
	today := r.startOfDay(now)

	if shift, ok := findShift(wa.ShiftsFor(today.Weekday()), shiftID); ok {
		if !shift.IsAvailable {
			return ShiftOccurrence{}, workingat.ErrShiftNotFound
		}
		occ, err := r.anchorShift(shift, today, true)
		if err != nil {
			return ShiftOccurrence{}, err
		}
		return occ, nil
	}

	yesterday := today.AddDate(0, 0, -1)
	if shift, ok := findShift(wa.ShiftsFor(yesterday.Weekday()), shiftID); ok {
		if !shift.IsAvailable {
			return ShiftOccurrence{}, workingat.ErrShiftNotFound
		}
		occ, err := r.anchorShift(shift, yesterday, false)
		if err != nil {
			return ShiftOccurrence{}, err
		}
		// Yesterday's occurrence is only a valid target while it is still
		// running; overtime extends the tail.
		deadline := occ.EndAt.Add(time.Duration(shift.AllowedOvertimeMinutes) * time.Minute)
		if now.After(deadline) {
			return ShiftOccurrence{}, workingat.ErrShiftAlreadyEnded
		}
		return occ, nil
	}

	return ShiftOccurrence{}, workingat.ErrShiftNotFound
}

func (r *Resolver) anchorShift(shift workingat.Shift, day time.Time, isToday bool) (ShiftOccurrence, error) {
	startAt, endAt, err := timeutil.ResolveIntervalStrings(shift.Start, shift.End, day, r.loc)
	if err != nil {
		return ShiftOccurrence{}, err
	}
	return ShiftOccurrence{
		Shift:     shift,
		IsToday:   isToday,
		AnchorDay: day,
		StartAt:   startAt,
		EndAt:     endAt,
	}, nil
}

// ResolveShiftForDay anchors shiftID to a known calendar day, without the
// two-day fallback. Used when the occurrence's anchor date is already
// recorded, e.g. when classifying a check-out.
func (r *Resolver) ResolveShiftForDay(wa *workingat.WorkingAt, shiftID string, day time.Time) (ShiftOccurrence, error) {
	anchor := r.startOfDay(day)
	shift, ok := findShift(wa.ShiftsFor(anchor.Weekday()), shiftID)
	if !ok {
		return ShiftOccurrence{}, workingat.ErrShiftNotFound
	}
	return r.anchorShift(shift, anchor, true)
}

// ResolveBreak finds a generic break template by id with the same two-day
// lookup, so break-window containment checks use the correct anchor day.
func (r *Resolver) ResolveBreak(reg *register.Register, breakID string, now time.Time) (BreakOccurrence, error) {
	today := r.startOfDay(now)

	if tpl, ok := findBreak(reg.Breaks[int(today.Weekday())], breakID); ok {
		return r.anchorBreak(tpl, today, true)
	}

	yesterday := today.AddDate(0, 0, -1)
	if tpl, ok := findBreak(reg.Breaks[int(yesterday.Weekday())], breakID); ok {
		return r.anchorBreak(tpl, yesterday, false)
	}

	return BreakOccurrence{}, register.ErrBreakNotFound
}

// ResolveSpecificBreak finds a named break slot (breakfast/lunch/dinner).
func (r *Resolver) ResolveSpecificBreak(reg *register.Register, key string, now time.Time) (BreakOccurrence, error) {
	today := r.startOfDay(now)

	if sb, ok := reg.SpecificBreaks[int(today.Weekday())][key]; ok && sb.IsAvailable {
		return r.anchorBreak(specificToTemplate(key, sb), today, true)
	}

	yesterday := today.AddDate(0, 0, -1)
	if sb, ok := reg.SpecificBreaks[int(yesterday.Weekday())][key]; ok && sb.IsAvailable {
		return r.anchorBreak(specificToTemplate(key, sb), yesterday, false)
	}

	return BreakOccurrence{}, register.ErrBreakNotFound
}

func (r *Resolver) anchorBreak(tpl register.BreakTemplate, day time.Time, isToday bool) (BreakOccurrence, error) {
	startAt, endAt, err := timeutil.ResolveIntervalStrings(tpl.Start, tpl.End, day, r.loc)
	if err != nil {
		return BreakOccurrence{}, err
	}
	return BreakOccurrence{
		Template:  tpl,
		IsToday:   isToday,
		AnchorDay: day,
		StartAt:   startAt,
		EndAt:     endAt,
	}, nil
}

func findShift(shifts []workingat.Shift, id string) (workingat.Shift, bool) {
	for _, s := range shifts {
		if s.ID == id {
			return s, true
		}
	}
	return workingat.Shift{}, false
}

func findBreak(breaks []register.BreakTemplate, id string) (register.BreakTemplate, bool) {
	for _, b := range breaks {
		if b.ID == id {
			return b, true
		}
	}
	return register.BreakTemplate{}, false
}

func specificToTemplate(key string, sb register.SpecificBreak) register.BreakTemplate {
	return register.BreakTemplate{
		ID:              key,
		Name:            key,
		Start:           sb.Start,
		End:             sb.End,
		DurationMinutes: sb.DurationMinutes,
		IsOverNight:     sb.IsOverNight,
	}
}

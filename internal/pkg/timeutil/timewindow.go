package timeutil

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalidTime is returned when a clock string is not a valid HH:mm value.
var ErrInvalidTime = errors.New("invalid time: expected HH:mm between 00:00 and 23:59")

var clockRegex = regexp.MustCompile(`^([0-9]{2}):([0-9]{2})$`)

// Clock is a wall-clock time of day without a date or timezone.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses a strict HH:mm string into a Clock.
func ParseClock(s string) (Clock, error) {
	m := clockRegex.FindStringSubmatch(s)
	if m == nil {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

// Minutes returns the clock value as minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

func (c Clock) Before(other Clock) bool {
	return c.Minutes() < other.Minutes()
}

func (c Clock) After(other Clock) bool {
	return c.Minutes() > other.Minutes()
}

func (c Clock) Equal(other Clock) bool {
	return c.Minutes() == other.Minutes()
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// IsOvernight reports whether an interval from start to end wraps past
// midnight. Equal start and end is a zero-length interval, not overnight.
func IsOvernight(start, end Clock) bool {
	return end.Before(start)
}

// IsOvernightStrings is IsOvernight over raw HH:mm strings.
func IsOvernightStrings(start, end string) (bool, error) {
	s, err := ParseClock(start)
	if err != nil {
		return false, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return false, err
	}
	return IsOvernight(s, e), nil
}

// ResolveInterval anchors start to the calendar day of referenceDay in loc
// and returns the absolute start and end instants. Overnight intervals anchor
// the end to the following day.
func ResolveInterval(start, end Clock, referenceDay time.Time, loc *time.Location) (time.Time, time.Time) {
	day := referenceDay.In(loc)
	startAt := time.Date(day.Year(), day.Month(), day.Day(), start.Hour, start.Minute, 0, 0, loc)
	endAt := time.Date(day.Year(), day.Month(), day.Day(), end.Hour, end.Minute, 0, 0, loc)
	if IsOvernight(start, end) {
		endAt = endAt.AddDate(0, 0, 1)
	}
	return startAt, endAt
}

// ResolveIntervalStrings parses both clock strings and resolves the interval.
func ResolveIntervalStrings(start, end string, referenceDay time.Time, loc *time.Location) (time.Time, time.Time, error) {
	s, err := ParseClock(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	startAt, endAt := ResolveInterval(s, e, referenceDay, loc)
	return startAt, endAt, nil
}

// IsBetweenInclusive reports whether t is within [startAt, endAt].
func IsBetweenInclusive(t, startAt, endAt time.Time) bool {
	return !t.Before(startAt) && !t.After(endAt)
}

// DateInt returns t's calendar date as a YYYYMMDD integer.
func DateInt(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// DateIntToTime converts a YYYYMMDD integer back to midnight of that day in loc.
func DateIntToTime(date int, loc *time.Location) time.Time {
	year := date / 10000
	month := time.Month(date / 100 % 100)
	day := date % 100
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// PreviousWeekday returns the day-of-week of the calendar day before d.
func PreviousWeekday(d time.Weekday) time.Weekday {
	return (d + 6) % 7
}

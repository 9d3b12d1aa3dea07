package dailyattendance

import (
	"context"
	"time"
)

// DailyAttendanceService maintains rollups incrementally as attendance events
// occur and finalizes past days authoritatively.
type DailyAttendanceService interface {
	// EnsureDaily lazily creates (or loads) the rollup for one (register, date),
	// snapshotting the working hour and the expected shift occurrences.
	EnsureDaily(ctx context.Context, registerID string, date int) (DailyAttendance, error)

	// RecordCheckIn classifies a check-in as on-time or late against the
	// resolved shift start and updates the counters.
	RecordCheckIn(ctx context.Context, registerID string, date int, attendanceID, employeeID string, shiftStart, checkedInAt time.Time) error

	// RecordCheckOut classifies a check-out as on-time or early against the
	// resolved shift end and updates the counters.
	RecordCheckOut(ctx context.Context, registerID string, date int, attendanceID, employeeID string, shiftEnd, checkedOutAt time.Time) error

	// GetDaily returns the rollup for one (register, date).
	GetDaily(ctx context.Context, registerID string, date int) (DailyAttendance, error)

	// FinalizeOutstanding recomputes and confirms every unconfirmed rollup
	// dated at or before the cutoff. One failure must not abort the rest.
	FinalizeOutstanding(ctx context.Context, cutoff int) error
}

package dailyattendance

import "context"

// DailyAttendanceRepository defines data access for per-register daily
// rollups. Updates are last-write-wins; finalization recomputes from scratch
// so concurrent runs converge.
type DailyAttendanceRepository interface {
	// Get loads the rollup for one (register, date).
	Get(ctx context.Context, registerID string, date int) (DailyAttendance, error)

	// Insert creates the rollup if absent (insert-if-not-exists) and reports
	// whether a row was created. Lazy creation races resolve to one row.
	Insert(ctx context.Context, daily DailyAttendance) (bool, error)

	// Update overwrites the rollup.
	Update(ctx context.Context, daily DailyAttendance) error

	// ListUnconfirmedBefore returns every unconfirmed rollup with a date at or
	// before the given YYYYMMDD cutoff.
	ListUnconfirmedBefore(ctx context.Context, cutoff int) ([]DailyAttendance, error)
}

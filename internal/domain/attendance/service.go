package attendance

import "context"

// AttendanceService defines the attendance state machine operations. Every
// operation resolves the schedule, validates the geofence and applies the
// transition under the aggregate's invariants.
type AttendanceService interface {
	// CheckIn opens (or creates) the attendance for the resolved shift
	// occurrence.
	CheckIn(ctx context.Context, req CheckInRequest) (ActionResult, error)

	// CheckOut closes the attendance; open breaks/pauses must be closed first.
	CheckOut(ctx context.Context, req CheckOutRequest) (ActionResult, error)

	// StartBreak opens a templated, specific or ad-hoc break entry.
	StartBreak(ctx context.Context, req StartBreakRequest) (ActionResult, error)

	// StopBreak closes a break entry.
	StopBreak(ctx context.Context, req StopBreakRequest) (ActionResult, error)

	// StartPause opens an ad-hoc pause entry.
	StartPause(ctx context.Context, req StartPauseRequest) (ActionResult, error)

	// StopPause closes a pause entry.
	StopPause(ctx context.Context, req StopPauseRequest) (ActionResult, error)

	// GetAttendance retrieves one attendance aggregate by id.
	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)
}

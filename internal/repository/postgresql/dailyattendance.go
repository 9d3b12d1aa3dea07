package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/attendly/attendance-backend-go/internal/domain/dailyattendance"
	"github.com/attendly/attendance-backend-go/internal/pkg/database"
)

type dailyAttendanceRepository struct {
	db *database.DB
}

func NewDailyAttendanceRepository(db *database.DB) dailyattendance.DailyAttendanceRepository {
	return &dailyAttendanceRepository{db: db}
}

const dailyColumns = `
	id, register_id, date, working_hour, expected_shifts, attendance_ids,
	counts, late_minutes, early_minutes, confirmed, created_at, updated_at
`

// Get implements dailyattendance.DailyAttendanceRepository.
func (d *dailyAttendanceRepository) Get(ctx context.Context, registerID string, date int) (dailyattendance.DailyAttendance, error) {
	q := GetQuerier(ctx, d.db)

	query := "SELECT " + dailyColumns + " FROM daily_attendances WHERE register_id = $1 AND date = $2"

	daily, err := scanDailyAttendance(q.QueryRow(ctx, query, registerID, date))
	if err != nil {
		if err == pgx.ErrNoRows {
			return dailyattendance.DailyAttendance{}, dailyattendance.ErrDailyNotFound
		}
		return dailyattendance.DailyAttendance{}, fmt.Errorf("failed to get daily attendance: %w", err)
	}
	return daily, nil
}

// Insert implements dailyattendance.DailyAttendanceRepository. ON CONFLICT DO
// NOTHING resolves concurrent lazy creation to a single row.
func (d *dailyAttendanceRepository) Insert(ctx context.Context, daily dailyattendance.DailyAttendance) (bool, error) {
	q := GetQuerier(ctx, d.db)

	cols, err := marshalDailyColumns(daily)
	if err != nil {
		return false, err
	}

	query := `
		INSERT INTO daily_attendances (
			id, register_id, date, working_hour, expected_shifts, attendance_ids,
			counts, late_minutes, early_minutes, confirmed, created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()
		) ON CONFLICT (register_id, date) DO NOTHING
	`

	tag, err := q.Exec(ctx, query,
		daily.RegisterID, daily.Date, cols.workingHour, cols.expectedShifts, cols.attendanceIDs,
		cols.counts, cols.lateMinutes, cols.earlyMinutes, daily.Confirmed,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert daily attendance: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Update implements dailyattendance.DailyAttendanceRepository. Last write
// wins; finalization recomputes authoritatively so a lost increment is
// corrected at confirm time.
func (d *dailyAttendanceRepository) Update(ctx context.Context, daily dailyattendance.DailyAttendance) error {
	q := GetQuerier(ctx, d.db)

	cols, err := marshalDailyColumns(daily)
	if err != nil {
		return err
	}

	query := `
		UPDATE daily_attendances
		SET working_hour = $3, expected_shifts = $4, attendance_ids = $5,
		    counts = $6, late_minutes = $7, early_minutes = $8,
		    confirmed = $9, updated_at = NOW()
		WHERE register_id = $1 AND date = $2
	`

	tag, err := q.Exec(ctx, query,
		daily.RegisterID, daily.Date, cols.workingHour, cols.expectedShifts, cols.attendanceIDs,
		cols.counts, cols.lateMinutes, cols.earlyMinutes, daily.Confirmed,
	)
	if err != nil {
		return fmt.Errorf("failed to update daily attendance: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return dailyattendance.ErrDailyNotFound
	}
	return nil
}

// ListUnconfirmedBefore implements dailyattendance.DailyAttendanceRepository.
func (d *dailyAttendanceRepository) ListUnconfirmedBefore(ctx context.Context, cutoff int) ([]dailyattendance.DailyAttendance, error) {
	q := GetQuerier(ctx, d.db)

	query := "SELECT " + dailyColumns + `
		FROM daily_attendances
		WHERE confirmed = FALSE AND date <= $1
		ORDER BY date ASC
	`

	rows, err := q.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list unconfirmed daily attendances: %w", err)
	}
	defer rows.Close()

	var dailies []dailyattendance.DailyAttendance
	for rows.Next() {
		daily, err := scanDailyAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily attendance: %w", err)
		}
		dailies = append(dailies, daily)
	}
	return dailies, rows.Err()
}

type dailyJSONColumns struct {
	workingHour    []byte
	expectedShifts []byte
	attendanceIDs  []byte
	counts         []byte
	lateMinutes    []byte
	earlyMinutes   []byte
}

func marshalDailyColumns(daily dailyattendance.DailyAttendance) (dailyJSONColumns, error) {
	expected := daily.ExpectedShifts
	if expected == nil {
		expected = []dailyattendance.ExpectedShift{}
	}
	ids := daily.AttendanceIDs
	if ids == nil {
		ids = []string{}
	}
	late := daily.LateMinutes
	if late == nil {
		late = map[string]int{}
	}
	early := daily.EarlyMinutes
	if early == nil {
		early = map[string]int{}
	}

	var cols dailyJSONColumns
	var err error
	if cols.workingHour, err = json.Marshal(daily.WorkingHour); err != nil {
		return dailyJSONColumns{}, fmt.Errorf("failed to marshal working hour: %w", err)
	}
	if cols.expectedShifts, err = json.Marshal(expected); err != nil {
		return dailyJSONColumns{}, fmt.Errorf("failed to marshal expected shifts: %w", err)
	}
	if cols.attendanceIDs, err = json.Marshal(ids); err != nil {
		return dailyJSONColumns{}, fmt.Errorf("failed to marshal attendance ids: %w", err)
	}
	if cols.counts, err = json.Marshal(daily.Counts); err != nil {
		return dailyJSONColumns{}, fmt.Errorf("failed to marshal counts: %w", err)
	}
	if cols.lateMinutes, err = json.Marshal(late); err != nil {
		return dailyJSONColumns{}, fmt.Errorf("failed to marshal late minutes: %w", err)
	}
	if cols.earlyMinutes, err = json.Marshal(early); err != nil {
		return dailyJSONColumns{}, fmt.Errorf("failed to marshal early minutes: %w", err)
	}
	return cols, nil
}

func scanDailyAttendance(row pgx.Row) (dailyattendance.DailyAttendance, error) {
	var daily dailyattendance.DailyAttendance
	var workingHour, expectedShifts, attendanceIDs, counts, lateMinutes, earlyMinutes []byte

	err := row.Scan(
		&daily.ID, &daily.RegisterID, &daily.Date,
		&workingHour, &expectedShifts, &attendanceIDs,
		&counts, &lateMinutes, &earlyMinutes,
		&daily.Confirmed, &daily.CreatedAt, &daily.UpdatedAt,
	)
	if err != nil {
		return dailyattendance.DailyAttendance{}, err
	}

	for _, col := range []struct {
		raw []byte
		dst interface{}
	}{
		{workingHour, &daily.WorkingHour},
		{expectedShifts, &daily.ExpectedShifts},
		{attendanceIDs, &daily.AttendanceIDs},
		{counts, &daily.Counts},
		{lateMinutes, &daily.LateMinutes},
		{earlyMinutes, &daily.EarlyMinutes},
	} {
		if err := json.Unmarshal(col.raw, col.dst); err != nil {
			return dailyattendance.DailyAttendance{}, fmt.Errorf("failed to unmarshal daily attendance column: %w", err)
		}
	}
	return daily, nil
}

package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/attendly/attendance-backend-go/internal/domain/attendance"
	"github.com/attendly/attendance-backend-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	id, working_at_id, register_id, employee_id, shift_id, work_date,
	check_in_time, check_in_latitude, check_in_longitude, check_in_distance,
	check_out_time, check_out_latitude, check_out_longitude, check_out_distance,
	breaks, pauses, version, created_at, updated_at
`

// Create implements attendance.AttendanceRepository. The unique constraint on
// (working_at_id, shift_id, work_date) makes a duplicate check-in for the
// same occurrence fail with ErrAlreadyCheckedIn.
func (a *attendanceRepository) Create(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	breaks, pauses, err := marshalEntries(att)
	if err != nil {
		return attendance.Attendance{}, err
	}

	query := `
		INSERT INTO attendances (
			id, working_at_id, register_id, employee_id, shift_id, work_date,
			check_in_time, check_in_latitude, check_in_longitude, check_in_distance,
			breaks, pauses, version, created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW()
		) RETURNING id, created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		att.WorkingAtID, att.RegisterID, att.EmployeeID, att.ShiftID, att.WorkDate,
		att.CheckInTime, att.CheckInLocation.Latitude, att.CheckInLocation.Longitude, att.CheckInDistance,
		breaks, pauses, att.Version,
	).Scan(&att.ID, &att.CreatedAt, &att.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return att, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := "SELECT " + attendanceColumns + " FROM attendances WHERE id = $1"

	att, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return att, nil
}

// FindByOccurrence implements attendance.AttendanceRepository.
func (a *attendanceRepository) FindByOccurrence(ctx context.Context, workingAtID, shiftID string, workDate int) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := "SELECT " + attendanceColumns + `
		FROM attendances
		WHERE working_at_id = $1 AND shift_id = $2 AND work_date = $3
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, workingAtID, shiftID, workDate))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find attendance occurrence: %w", err)
	}
	return &att, nil
}

// ListByRegisterAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByRegisterAndDate(ctx context.Context, registerID string, workDate int) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := "SELECT " + attendanceColumns + `
		FROM attendances
		WHERE register_id = $1 AND work_date = $2
		ORDER BY check_in_time ASC
	`

	rows, err := q.Query(ctx, query, registerID, workDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	var attendances []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}
	return attendances, rows.Err()
}

// Update implements attendance.AttendanceRepository. The whole aggregate is
// written in one compare-and-swap statement on the version column; a stale
// version updates zero rows and surfaces ErrVersionConflict.
func (a *attendanceRepository) Update(ctx context.Context, att attendance.Attendance) error {
	q := GetQuerier(ctx, a.db)

	breaks, pauses, err := marshalEntries(att)
	if err != nil {
		return err
	}

	var outLat, outLon *float64
	if att.CheckOutLocation != nil {
		outLat = &att.CheckOutLocation.Latitude
		outLon = &att.CheckOutLocation.Longitude
	}

	query := `
		UPDATE attendances
		SET check_out_time = $3, check_out_latitude = $4, check_out_longitude = $5,
		    check_out_distance = $6, breaks = $7, pauses = $8,
		    version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
	`

	tag, err := q.Exec(ctx, query,
		att.ID, att.Version,
		att.CheckOutTime, outLat, outLon, att.CheckOutDistance,
		breaks, pauses,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return attendance.ErrVersionConflict
	}
	return nil
}

func marshalEntries(att attendance.Attendance) ([]byte, []byte, error) {
	breaks := att.Breaks
	if breaks == nil {
		breaks = []attendance.BreakEntry{}
	}
	pauses := att.Pauses
	if pauses == nil {
		pauses = []attendance.PauseEntry{}
	}

	breaksJSON, err := json.Marshal(breaks)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal breaks: %w", err)
	}
	pausesJSON, err := json.Marshal(pauses)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal pauses: %w", err)
	}
	return breaksJSON, pausesJSON, nil
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	var outLat, outLon *float64
	var breaksJSON, pausesJSON []byte

	err := row.Scan(
		&att.ID, &att.WorkingAtID, &att.RegisterID, &att.EmployeeID, &att.ShiftID, &att.WorkDate,
		&att.CheckInTime, &att.CheckInLocation.Latitude, &att.CheckInLocation.Longitude, &att.CheckInDistance,
		&att.CheckOutTime, &outLat, &outLon, &att.CheckOutDistance,
		&breaksJSON, &pausesJSON, &att.Version, &att.CreatedAt, &att.UpdatedAt,
	)
	if err != nil {
		return attendance.Attendance{}, err
	}

	if outLat != nil && outLon != nil {
		att.CheckOutLocation = &attendance.GeoPoint{Latitude: *outLat, Longitude: *outLon}
	}
	if err := json.Unmarshal(breaksJSON, &att.Breaks); err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to unmarshal breaks: %w", err)
	}
	if err := json.Unmarshal(pausesJSON, &att.Pauses); err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to unmarshal pauses: %w", err)
	}
	return att, nil
}

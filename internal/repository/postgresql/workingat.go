package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/attendly/attendance-backend-go/internal/domain/workingat"
	"github.com/attendly/attendance-backend-go/internal/pkg/database"
)

type workingAtRepository struct {
	db *database.DB
}

func NewWorkingAtRepository(db *database.DB) workingat.WorkingAtRepository {
	return &workingAtRepository{db: db}
}

// Create implements workingat.WorkingAtRepository.
func (w *workingAtRepository) Create(ctx context.Context, wa workingat.WorkingAt) (workingat.WorkingAt, error) {
	err := WithTransaction(ctx, w.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO working_ats (
				id, employee_id, register_id, retail_id, created_at, updated_at
			) VALUES ($1, $2, $3, $4, NOW(), NOW())
			RETURNING created_at, updated_at
		`
		err := tx.QueryRow(ctx, query,
			wa.ID, wa.EmployeeID, wa.RegisterID, wa.RetailID,
		).Scan(&wa.CreatedAt, &wa.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return workingat.ErrWorkingAtExists
			}
			return fmt.Errorf("failed to create working-at: %w", err)
		}
		return insertShifts(ctx, tx, wa.ID, wa.Shifts)
	})
	if err != nil {
		return workingat.WorkingAt{}, err
	}
	return wa, nil
}

// UpdateShifts implements workingat.WorkingAtRepository.
func (w *workingAtRepository) UpdateShifts(ctx context.Context, id string, shifts [7][]workingat.Shift) error {
	return WithTransaction(ctx, w.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, "UPDATE working_ats SET updated_at = NOW() WHERE id = $1", id)
		if err != nil {
			return fmt.Errorf("failed to touch working-at: %w", err)
		}
		if tag.RowsAffected() != 1 {
			return workingat.ErrWorkingAtNotFound
		}
		if _, err := tx.Exec(ctx, "DELETE FROM working_at_shifts WHERE working_at_id = $1", id); err != nil {
			return fmt.Errorf("failed to clear shifts: %w", err)
		}
		return insertShifts(ctx, tx, id, shifts)
	})
}

func insertShifts(ctx context.Context, tx pgx.Tx, workingAtID string, shifts [7][]workingat.Shift) error {
	query := `
		INSERT INTO working_at_shifts (
			id, working_at_id, day_of_week, start_time, end_time,
			allowed_overtime_minutes, is_overnight, is_available
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for day := 0; day < 7; day++ {
		for _, sh := range shifts[day] {
			if _, err := tx.Exec(ctx, query,
				sh.ID, workingAtID, day, sh.Start, sh.End,
				sh.AllowedOvertimeMinutes, sh.IsOverNight, sh.IsAvailable,
			); err != nil {
				return fmt.Errorf("failed to insert shift: %w", err)
			}
		}
	}
	return nil
}

// GetByID implements workingat.WorkingAtRepository.
func (w *workingAtRepository) GetByID(ctx context.Context, id string) (workingat.WorkingAt, error) {
	return w.getOne(ctx, "id = $1", id)
}

// GetByEmployeeAndRegister implements workingat.WorkingAtRepository.
func (w *workingAtRepository) GetByEmployeeAndRegister(ctx context.Context, employeeID, registerID string) (workingat.WorkingAt, error) {
	return w.getOne(ctx, "employee_id = $1 AND register_id = $2", employeeID, registerID)
}

func (w *workingAtRepository) getOne(ctx context.Context, where string, args ...interface{}) (workingat.WorkingAt, error) {
	q := GetQuerier(ctx, w.db)

	query := `
		SELECT id, employee_id, register_id, retail_id, created_at, updated_at
		FROM working_ats
		WHERE ` + where

	var wa workingat.WorkingAt
	err := q.QueryRow(ctx, query, args...).Scan(
		&wa.ID, &wa.EmployeeID, &wa.RegisterID, &wa.RetailID, &wa.CreatedAt, &wa.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return workingat.WorkingAt{}, workingat.ErrWorkingAtNotFound
		}
		return workingat.WorkingAt{}, fmt.Errorf("failed to get working-at: %w", err)
	}

	if err := w.loadShifts(ctx, q, &wa); err != nil {
		return workingat.WorkingAt{}, err
	}
	return wa, nil
}

// ListByRegister implements workingat.WorkingAtRepository.
func (w *workingAtRepository) ListByRegister(ctx context.Context, registerID string) ([]workingat.WorkingAt, error) {
	q := GetQuerier(ctx, w.db)

	query := `
		SELECT id, employee_id, register_id, retail_id, created_at, updated_at
		FROM working_ats
		WHERE register_id = $1
		ORDER BY created_at ASC
	`

	rows, err := q.Query(ctx, query, registerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list working-ats: %w", err)
	}
	defer rows.Close()

	var relations []workingat.WorkingAt
	for rows.Next() {
		var wa workingat.WorkingAt
		if err := rows.Scan(&wa.ID, &wa.EmployeeID, &wa.RegisterID, &wa.RetailID, &wa.CreatedAt, &wa.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan working-at: %w", err)
		}
		relations = append(relations, wa)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate working-ats: %w", err)
	}

	for i := range relations {
		if err := w.loadShifts(ctx, q, &relations[i]); err != nil {
			return nil, err
		}
	}
	return relations, nil
}

func (w *workingAtRepository) loadShifts(ctx context.Context, q database.Querier, wa *workingat.WorkingAt) error {
	query := `
		SELECT id, day_of_week, start_time, end_time, allowed_overtime_minutes, is_overnight, is_available
		FROM working_at_shifts
		WHERE working_at_id = $1
		ORDER BY day_of_week ASC, start_time ASC
	`

	rows, err := q.Query(ctx, query, wa.ID)
	if err != nil {
		return fmt.Errorf("failed to load shifts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var day int
		var sh workingat.Shift
		if err := rows.Scan(&sh.ID, &day, &sh.Start, &sh.End, &sh.AllowedOvertimeMinutes, &sh.IsOverNight, &sh.IsAvailable); err != nil {
			return fmt.Errorf("failed to scan shift: %w", err)
		}
		wa.Shifts[day] = append(wa.Shifts[day], sh)
	}
	return rows.Err()
}

package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/attendly/attendance-backend-go/internal/domain/register"
	"github.com/attendly/attendance-backend-go/internal/pkg/database"
)

type registerRepository struct {
	db *database.DB
}

func NewRegisterRepository(db *database.DB) register.RegisterRepository {
	return &registerRepository{db: db}
}

// Create implements register.RegisterRepository.
func (r *registerRepository) Create(ctx context.Context, reg register.Register) (register.Register, error) {
	err := WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO registers (
				id, retail_id, name, latitude, longitude, radius_meters,
				max_local_devices, is_available, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW()
			) RETURNING created_at, updated_at
		`
		err := tx.QueryRow(ctx, query,
			reg.ID, reg.RetailID, reg.Name, reg.Latitude, reg.Longitude,
			reg.RadiusMeters, reg.MaxLocalDevices, reg.IsAvailable,
		).Scan(&reg.CreatedAt, &reg.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create register: %w", err)
		}
		return r.insertSchedule(ctx, tx, reg)
	})
	if err != nil {
		return register.Register{}, err
	}
	return reg, nil
}

// Update implements register.RegisterRepository. The weekly schedule is
// replaced wholesale.
func (r *registerRepository) Update(ctx context.Context, reg register.Register) error {
	return WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			UPDATE registers
			SET name = $2, latitude = $3, longitude = $4, radius_meters = $5,
			    max_local_devices = $6, is_available = $7, updated_at = NOW()
			WHERE id = $1
		`
		tag, err := tx.Exec(ctx, query,
			reg.ID, reg.Name, reg.Latitude, reg.Longitude, reg.RadiusMeters,
			reg.MaxLocalDevices, reg.IsAvailable,
		)
		if err != nil {
			return fmt.Errorf("failed to update register: %w", err)
		}
		if tag.RowsAffected() != 1 {
			return register.ErrRegisterNotFound
		}

		for _, table := range []string{"register_working_hours", "register_breaks", "register_specific_breaks"} {
			if _, err := tx.Exec(ctx, "DELETE FROM "+table+" WHERE register_id = $1", reg.ID); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		return r.insertSchedule(ctx, tx, reg)
	})
}

func (r *registerRepository) insertSchedule(ctx context.Context, tx pgx.Tx, reg register.Register) error {
	whQuery := `
		INSERT INTO register_working_hours (
			register_id, day_of_week, start_time, end_time, is_overnight, is_available
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	breakQuery := `
		INSERT INTO register_breaks (
			id, register_id, day_of_week, name, start_time, end_time,
			duration_minutes, is_overnight
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	specificQuery := `
		INSERT INTO register_specific_breaks (
			register_id, day_of_week, break_key, start_time, end_time,
			duration_minutes, is_overnight, is_available
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for day := 0; day < 7; day++ {
		wh := reg.WorkingHours[day]
		if _, err := tx.Exec(ctx, whQuery,
			reg.ID, day, wh.Start, wh.End, wh.IsOverNight, wh.IsAvailable,
		); err != nil {
			return fmt.Errorf("failed to insert working hour: %w", err)
		}

		for _, b := range reg.Breaks[day] {
			if _, err := tx.Exec(ctx, breakQuery,
				b.ID, reg.ID, day, b.Name, b.Start, b.End, b.DurationMinutes, b.IsOverNight,
			); err != nil {
				return fmt.Errorf("failed to insert break: %w", err)
			}
		}

		for key, sb := range reg.SpecificBreaks[day] {
			if _, err := tx.Exec(ctx, specificQuery,
				reg.ID, day, key, sb.Start, sb.End, sb.DurationMinutes, sb.IsOverNight, sb.IsAvailable,
			); err != nil {
				return fmt.Errorf("failed to insert specific break: %w", err)
			}
		}
	}
	return nil
}

// GetByID implements register.RegisterRepository.
func (r *registerRepository) GetByID(ctx context.Context, id string) (register.Register, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, retail_id, name, latitude, longitude, radius_meters,
		       max_local_devices, is_available, created_at, updated_at
		FROM registers
		WHERE id = $1
	`

	var reg register.Register
	err := q.QueryRow(ctx, query, id).Scan(
		&reg.ID, &reg.RetailID, &reg.Name, &reg.Latitude, &reg.Longitude,
		&reg.RadiusMeters, &reg.MaxLocalDevices, &reg.IsAvailable,
		&reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return register.Register{}, register.ErrRegisterNotFound
		}
		return register.Register{}, fmt.Errorf("failed to get register: %w", err)
	}

	if err := r.loadSchedule(ctx, q, &reg); err != nil {
		return register.Register{}, err
	}
	return reg, nil
}

// ListByRetail implements register.RegisterRepository.
func (r *registerRepository) ListByRetail(ctx context.Context, retailID string) ([]register.Register, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, retail_id, name, latitude, longitude, radius_meters,
		       max_local_devices, is_available, created_at, updated_at
		FROM registers
		WHERE retail_id = $1
		ORDER BY name ASC
	`

	rows, err := q.Query(ctx, query, retailID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registers: %w", err)
	}
	defer rows.Close()

	var registers []register.Register
	for rows.Next() {
		var reg register.Register
		if err := rows.Scan(
			&reg.ID, &reg.RetailID, &reg.Name, &reg.Latitude, &reg.Longitude,
			&reg.RadiusMeters, &reg.MaxLocalDevices, &reg.IsAvailable,
			&reg.CreatedAt, &reg.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan register: %w", err)
		}
		registers = append(registers, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate registers: %w", err)
	}

	for i := range registers {
		if err := r.loadSchedule(ctx, q, &registers[i]); err != nil {
			return nil, err
		}
	}
	return registers, nil
}

func (r *registerRepository) loadSchedule(ctx context.Context, q database.Querier, reg *register.Register) error {
	whQuery := `
		SELECT day_of_week, start_time, end_time, is_overnight, is_available
		FROM register_working_hours
		WHERE register_id = $1
	`
	rows, err := q.Query(ctx, whQuery, reg.ID)
	if err != nil {
		return fmt.Errorf("failed to load working hours: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var day int
		var wh register.WorkingHour
		if err := rows.Scan(&day, &wh.Start, &wh.End, &wh.IsOverNight, &wh.IsAvailable); err != nil {
			return fmt.Errorf("failed to scan working hour: %w", err)
		}
		reg.WorkingHours[day] = wh
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate working hours: %w", err)
	}
	rows.Close()

	breakQuery := `
		SELECT id, day_of_week, name, start_time, end_time, duration_minutes, is_overnight
		FROM register_breaks
		WHERE register_id = $1
		ORDER BY start_time ASC
	`
	rows, err = q.Query(ctx, breakQuery, reg.ID)
	if err != nil {
		return fmt.Errorf("failed to load breaks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var day int
		var b register.BreakTemplate
		if err := rows.Scan(&b.ID, &day, &b.Name, &b.Start, &b.End, &b.DurationMinutes, &b.IsOverNight); err != nil {
			return fmt.Errorf("failed to scan break: %w", err)
		}
		reg.Breaks[day] = append(reg.Breaks[day], b)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate breaks: %w", err)
	}
	rows.Close()

	specificQuery := `
		SELECT day_of_week, break_key, start_time, end_time, duration_minutes, is_overnight, is_available
		FROM register_specific_breaks
		WHERE register_id = $1
	`
	rows, err = q.Query(ctx, specificQuery, reg.ID)
	if err != nil {
		return fmt.Errorf("failed to load specific breaks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var day int
		var key string
		var sb register.SpecificBreak
		if err := rows.Scan(&day, &key, &sb.Start, &sb.End, &sb.DurationMinutes, &sb.IsOverNight, &sb.IsAvailable); err != nil {
			return fmt.Errorf("failed to scan specific break: %w", err)
		}
		if reg.SpecificBreaks[day] == nil {
			reg.SpecificBreaks[day] = make(map[string]register.SpecificBreak)
		}
		reg.SpecificBreaks[day][key] = sb
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate specific breaks: %w", err)
	}

	return nil
}

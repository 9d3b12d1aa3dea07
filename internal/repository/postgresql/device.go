package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/attendly/attendance-backend-go/internal/domain/device"
	"github.com/attendly/attendance-backend-go/internal/pkg/database"
)

type localDeviceRepository struct {
	db *database.DB
}

func NewLocalDeviceRepository(db *database.DB) device.LocalDeviceRepository {
	return &localDeviceRepository{db: db}
}

// Create implements device.LocalDeviceRepository.
func (l *localDeviceRepository) Create(ctx context.Context, d device.LocalDevice) (device.LocalDevice, error) {
	q := GetQuerier(ctx, l.db)

	query := `
		INSERT INTO local_devices (
			id, register_id, name, latitude, longitude, radius_meters,
			pairing_code_hash, paired_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := q.Exec(ctx, query,
		d.ID, d.RegisterID, d.Name, d.Latitude, d.Longitude, d.RadiusMeters,
		d.PairingCodeHash, d.PairedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return device.LocalDevice{}, device.ErrDeviceAlreadyPaired
		}
		return device.LocalDevice{}, fmt.Errorf("failed to pair device: %w", err)
	}
	return d, nil
}

// GetByID implements device.LocalDeviceRepository.
func (l *localDeviceRepository) GetByID(ctx context.Context, id string) (device.LocalDevice, error) {
	q := GetQuerier(ctx, l.db)

	query := `
		SELECT id, register_id, name, latitude, longitude, radius_meters,
		       pairing_code_hash, paired_at
		FROM local_devices
		WHERE id = $1
	`

	var d device.LocalDevice
	err := q.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.RegisterID, &d.Name, &d.Latitude, &d.Longitude, &d.RadiusMeters,
		&d.PairingCodeHash, &d.PairedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return device.LocalDevice{}, device.ErrDeviceNotFound
		}
		return device.LocalDevice{}, fmt.Errorf("failed to get device: %w", err)
	}
	return d, nil
}

// ListByRegister implements device.LocalDeviceRepository.
func (l *localDeviceRepository) ListByRegister(ctx context.Context, registerID string) ([]device.LocalDevice, error) {
	q := GetQuerier(ctx, l.db)

	query := `
		SELECT id, register_id, name, latitude, longitude, radius_meters,
		       pairing_code_hash, paired_at
		FROM local_devices
		WHERE register_id = $1
		ORDER BY paired_at ASC
	`

	rows, err := q.Query(ctx, query, registerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	var devices []device.LocalDevice
	for rows.Next() {
		var d device.LocalDevice
		if err := rows.Scan(
			&d.ID, &d.RegisterID, &d.Name, &d.Latitude, &d.Longitude, &d.RadiusMeters,
			&d.PairingCodeHash, &d.PairedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

// CountByRegister implements device.LocalDeviceRepository.
func (l *localDeviceRepository) CountByRegister(ctx context.Context, registerID string) (int, error) {
	q := GetQuerier(ctx, l.db)

	var count int
	err := q.QueryRow(ctx, "SELECT COUNT(*) FROM local_devices WHERE register_id = $1", registerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count devices: %w", err)
	}
	return count, nil
}

// Delete implements device.LocalDeviceRepository.
func (l *localDeviceRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, l.db)

	tag, err := q.Exec(ctx, "DELETE FROM local_devices WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return device.ErrDeviceNotFound
	}
	return nil
}

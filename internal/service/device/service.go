package device

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/attendly/attendance-backend-go/internal/domain/device"
	"github.com/attendly/attendance-backend-go/internal/domain/register"
)

type LocalDeviceServiceImpl struct {
	deviceRepo   device.LocalDeviceRepository
	registerRepo register.RegisterRepository
	now          func() time.Time
}

func NewLocalDeviceService(deviceRepo device.LocalDeviceRepository, registerRepo register.RegisterRepository) device.LocalDeviceService {
	return &LocalDeviceServiceImpl{
		deviceRepo:   deviceRepo,
		registerRepo: registerRepo,
		now:          time.Now,
	}
}

func retailFromContext(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}
	retailID, ok := claims["retail_id"].(string)
	if !ok || retailID == "" {
		return "", fmt.Errorf("retail_id claim is missing or invalid")
	}
	return retailID, nil
}

func (s *LocalDeviceServiceImpl) loadRegister(ctx context.Context, registerID, retailID string) (register.Register, error) {
	reg, err := s.registerRepo.GetByID(ctx, registerID)
	if err != nil {
		return register.Register{}, err
	}
	if reg.RetailID != retailID {
		return register.Register{}, register.ErrRegisterNotFound
	}
	return reg, nil
}

// PairDevice implements device.LocalDeviceService.
func (s *LocalDeviceServiceImpl) PairDevice(ctx context.Context, registerID string, req device.PairDeviceRequest) (device.LocalDeviceResponse, error) {
	retailID, err := retailFromContext(ctx)
	if err != nil {
		return device.LocalDeviceResponse{}, err
	}

	if err := req.Validate(); err != nil {
		return device.LocalDeviceResponse{}, err
	}

	reg, err := s.loadRegister(ctx, registerID, retailID)
	if err != nil {
		return device.LocalDeviceResponse{}, err
	}

	count, err := s.deviceRepo.CountByRegister(ctx, registerID)
	if err != nil {
		return device.LocalDeviceResponse{}, err
	}
	if count >= reg.MaxLocalDevices {
		return device.LocalDeviceResponse{}, device.ErrDeviceLimitReached
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PairingCode), bcrypt.DefaultCost)
	if err != nil {
		return device.LocalDeviceResponse{}, fmt.Errorf("failed to hash pairing code: %w", err)
	}

	created, err := s.deviceRepo.Create(ctx, device.LocalDevice{
		ID:              req.DeviceID,
		RegisterID:      registerID,
		Name:            req.Name,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		RadiusMeters:    req.RadiusMeters,
		PairingCodeHash: string(hash),
		PairedAt:        s.now(),
	})
	if err != nil {
		return device.LocalDeviceResponse{}, err
	}
	return mapDeviceToResponse(created), nil
}

// ListDevices implements device.LocalDeviceService.
func (s *LocalDeviceServiceImpl) ListDevices(ctx context.Context, registerID string) ([]device.LocalDeviceResponse, error) {
	retailID, err := retailFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadRegister(ctx, registerID, retailID); err != nil {
		return nil, err
	}

	devices, err := s.deviceRepo.ListByRegister(ctx, registerID)
	if err != nil {
		return nil, err
	}

	out := make([]device.LocalDeviceResponse, 0, len(devices))
	for _, d := range devices {
		out = append(out, mapDeviceToResponse(d))
	}
	return out, nil
}

// UnpairDevice implements device.LocalDeviceService.
func (s *LocalDeviceServiceImpl) UnpairDevice(ctx context.Context, registerID, deviceID string) error {
	retailID, err := retailFromContext(ctx)
	if err != nil {
		return err
	}
	if _, err := s.loadRegister(ctx, registerID, retailID); err != nil {
		return err
	}

	d, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return err
	}
	if d.RegisterID != registerID {
		return device.ErrDeviceNotFound
	}
	return s.deviceRepo.Delete(ctx, deviceID)
}

func mapDeviceToResponse(d device.LocalDevice) device.LocalDeviceResponse {
	return device.LocalDeviceResponse{
		ID:           d.ID,
		RegisterID:   d.RegisterID,
		Name:         d.Name,
		Latitude:     d.Latitude,
		Longitude:    d.Longitude,
		RadiusMeters: d.RadiusMeters,
		PairedAt:     d.PairedAt.Format(time.RFC3339),
	}
}

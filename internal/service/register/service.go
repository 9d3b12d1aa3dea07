package register

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"

	"github.com/attendly/attendance-backend-go/internal/domain/register"
	"github.com/attendly/attendance-backend-go/internal/pkg/timeutil"
)

type RegisterServiceImpl struct {
	registerRepo register.RegisterRepository
}

func NewRegisterService(registerRepo register.RegisterRepository) register.RegisterService {
	return &RegisterServiceImpl{registerRepo: registerRepo}
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

// CreateRegister implements register.RegisterService.
func (s *RegisterServiceImpl) CreateRegister(ctx context.Context, req register.UpsertRegisterRequest) (register.RegisterResponse, error) {
	retailID, err := retailFromContext(ctx)
	if err != nil {
		return register.RegisterResponse{}, err
	}

	if err := req.Validate(); err != nil {
		return register.RegisterResponse{}, err
	}

	reg := register.Register{
		ID:       uuid.New().String(),
		RetailID: retailID,
	}
	applyUpsert(&reg, req)
	if err := normalizeSchedule(&reg); err != nil {
		return register.RegisterResponse{}, err
	}

	created, err := s.registerRepo.Create(ctx, reg)
	if err != nil {
		return register.RegisterResponse{}, err
	}
	return mapRegisterToResponse(created), nil
}

// UpdateRegister implements register.RegisterService.
func (s *RegisterServiceImpl) UpdateRegister(ctx context.Context, id string, req register.UpsertRegisterRequest) (register.RegisterResponse, error) {
	retailID, err := retailFromContext(ctx)
	if err != nil {
		return register.RegisterResponse{}, err
	}

	if err := req.Validate(); err != nil {
		return register.RegisterResponse{}, err
	}

	reg, err := s.registerRepo.GetByID(ctx, id)
	if err != nil {
		return register.RegisterResponse{}, err
	}
	if reg.RetailID != retailID {
		return register.RegisterResponse{}, register.ErrRegisterNotFound
	}

	applyUpsert(&reg, req)
	if err := normalizeSchedule(&reg); err != nil {
		return register.RegisterResponse{}, err
	}

	if err := s.registerRepo.Update(ctx, reg); err != nil {
		return register.RegisterResponse{}, err
	}
	return mapRegisterToResponse(reg), nil
}

// GetRegister implements register.RegisterService.
func (s *RegisterServiceImpl) GetRegister(ctx context.Context, id string) (register.RegisterResponse, error) {
	retailID, err := retailFromContext(ctx)
	if err != nil {
		return register.RegisterResponse{}, err
	}

	reg, err := s.registerRepo.GetByID(ctx, id)
	if err != nil {
		return register.RegisterResponse{}, err
	}
	if reg.RetailID != retailID {
		return register.RegisterResponse{}, register.ErrRegisterNotFound
	}
	return mapRegisterToResponse(reg), nil
}

// ListRegisters implements register.RegisterService.
func (s *RegisterServiceImpl) ListRegisters(ctx context.Context) ([]register.RegisterResponse, error) {
	retailID, err := retailFromContext(ctx)
	if err != nil {
		return nil, err
	}

	regs, err := s.registerRepo.ListByRetail(ctx, retailID)
	if err != nil {
		return nil, err
	}

	out := make([]register.RegisterResponse, 0, len(regs))
	for _, reg := range regs {
		out = append(out, mapRegisterToResponse(reg))
	}
	return out, nil
}

func applyUpsert(reg *register.Register, req register.UpsertRegisterRequest) {
	reg.Name = req.Name
	reg.Latitude = req.Latitude
	reg.Longitude = req.Longitude
	reg.RadiusMeters = req.RadiusMeters
	reg.WorkingHours = req.WorkingHours
	reg.Breaks = req.Breaks
	reg.SpecificBreaks = req.SpecificBreaks
	reg.MaxLocalDevices = req.MaxLocalDevices
	reg.IsAvailable = req.IsAvailable
}

// normalizeSchedule derives every overnight flag from the stored clock pair,
// assigns ids to new break templates and checks that each break window lies
// inside the day's working hours. Client-supplied overnight flags are never
// trusted.
func normalizeSchedule(reg *register.Register) error {
	for day := 0; day < 7; day++ {
		wh := &reg.WorkingHours[day]
		if !wh.IsAvailable {
			continue
		}

		overnight, err := timeutil.IsOvernightStrings(wh.Start, wh.End)
		if err != nil {
			return err
		}
		wh.IsOverNight = overnight

		for i := range reg.Breaks[day] {
			b := &reg.Breaks[day][i]
			if b.ID == "" {
				b.ID = uuid.New().String()
			}
			b.IsOverNight, err = timeutil.IsOvernightStrings(b.Start, b.End)
			if err != nil {
				return err
			}
			if !breakWithinWorkingHour(*wh, b.Start, b.End) {
				return register.ErrOutsideWorkingHours
			}
		}

		for key, sb := range reg.SpecificBreaks[day] {
			if !sb.IsAvailable {
				continue
			}
			sb.IsOverNight, err = timeutil.IsOvernightStrings(sb.Start, sb.End)
			if err != nil {
				return err
			}
			if !breakWithinWorkingHour(*wh, sb.Start, sb.End) {
				return register.ErrOutsideWorkingHours
			}
			reg.SpecificBreaks[day][key] = sb
		}
	}
	return nil
}

// breakWithinWorkingHour reports whether a break interval fits inside the
// working hour, anchoring both on the same reference day. A break that starts
// after midnight of an overnight working hour anchors to the following day.
func breakWithinWorkingHour(wh register.WorkingHour, start, end string) bool {
	ref := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

	whStart, whEnd, err := timeutil.ResolveIntervalStrings(wh.Start, wh.End, ref, time.UTC)
	if err != nil {
		return false
	}
	bStart, bEnd, err := timeutil.ResolveIntervalStrings(start, end, ref, time.UTC)
	if err != nil {
		return false
	}
	if bStart.Before(whStart) {
		bStart = bStart.AddDate(0, 0, 1)
		bEnd = bEnd.AddDate(0, 0, 1)
	}
	return !bStart.Before(whStart) && !bEnd.After(whEnd)
}

func mapRegisterToResponse(reg register.Register) register.RegisterResponse {
	return register.RegisterResponse{
		ID:              reg.ID,
		RetailID:        reg.RetailID,
		Name:            reg.Name,
		Latitude:        reg.Latitude,
		Longitude:       reg.Longitude,
		RadiusMeters:    reg.RadiusMeters,
		WorkingHours:    reg.WorkingHours,
		Breaks:          reg.Breaks,
		SpecificBreaks:  reg.SpecificBreaks,
		MaxLocalDevices: reg.MaxLocalDevices,
		IsAvailable:     reg.IsAvailable,
		CreatedAt:       reg.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       reg.UpdatedAt.Format(time.RFC3339),
	}
}

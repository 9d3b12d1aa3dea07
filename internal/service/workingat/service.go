package workingat

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"

	"github.com/attendly/attendance-backend-go/internal/domain/register"
	"github.com/attendly/attendance-backend-go/internal/domain/workingat"
	"github.com/attendly/attendance-backend-go/internal/pkg/timeutil"
)

type WorkingAtServiceImpl struct {
	workingAtRepo workingat.WorkingAtRepository
	registerRepo  register.RegisterRepository
}

func NewWorkingAtService(workingAtRepo workingat.WorkingAtRepository, registerRepo register.RegisterRepository) workingat.WorkingAtService {
	return &WorkingAtServiceImpl{
		workingAtRepo: workingAtRepo,
		registerRepo:  registerRepo,
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

// AssignEmployee implements workingat.WorkingAtService.
func (s *WorkingAtServiceImpl) AssignEmployee(ctx context.Context, registerID string, req workingat.AssignEmployeeRequest) (workingat.WorkingAtResponse, error) {
	retailID, err := retailFromContext(ctx)
	if err != nil {
		return workingat.WorkingAtResponse{}, err
	}

	if err := req.Validate(); err != nil {
		return workingat.WorkingAtResponse{}, err
	}

	reg, err := s.registerRepo.GetByID(ctx, registerID)
	if err != nil {
		return workingat.WorkingAtResponse{}, err
	}
	if reg.RetailID != retailID {
		return workingat.WorkingAtResponse{}, register.ErrRegisterNotFound
	}

	shifts := req.Shifts
	if err := normalizeShifts(&shifts); err != nil {
		return workingat.WorkingAtResponse{}, err
	}

	created, err := s.workingAtRepo.Create(ctx, workingat.WorkingAt{
		ID:         uuid.New().String(),
		EmployeeID: req.EmployeeID,
		RegisterID: registerID,
		RetailID:   retailID,
		Shifts:     shifts,
	})
	if err != nil {
		return workingat.WorkingAtResponse{}, err
	}
	return mapWorkingAtToResponse(created), nil
}

// UpdateShifts implements workingat.WorkingAtService.
func (s *WorkingAtServiceImpl) UpdateShifts(ctx context.Context, workingAtID string, req workingat.UpdateShiftsRequest) (workingat.WorkingAtResponse, error) {
	retailID, err := retailFromContext(ctx)
	if err != nil {
		return workingat.WorkingAtResponse{}, err
	}

	if err := req.Validate(); err != nil {
		return workingat.WorkingAtResponse{}, err
	}

	wa, err := s.workingAtRepo.GetByID(ctx, workingAtID)
	if err != nil {
		return workingat.WorkingAtResponse{}, err
	}
	if wa.RetailID != retailID {
		return workingat.WorkingAtResponse{}, workingat.ErrWorkingAtNotFound
	}

	shifts := req.Shifts
	if err := normalizeShifts(&shifts); err != nil {
		return workingat.WorkingAtResponse{}, err
	}

	if err := s.workingAtRepo.UpdateShifts(ctx, workingAtID, shifts); err != nil {
		return workingat.WorkingAtResponse{}, err
	}
	wa.Shifts = shifts
	return mapWorkingAtToResponse(wa), nil
}

// GetWorkingAt implements workingat.WorkingAtService.
func (s *WorkingAtServiceImpl) GetWorkingAt(ctx context.Context, workingAtID string) (workingat.WorkingAtResponse, error) {
	retailID, err := retailFromContext(ctx)
	if err != nil {
		return workingat.WorkingAtResponse{}, err
	}

	wa, err := s.workingAtRepo.GetByID(ctx, workingAtID)
	if err != nil {
		return workingat.WorkingAtResponse{}, err
	}
	if wa.RetailID != retailID {
		return workingat.WorkingAtResponse{}, workingat.ErrWorkingAtNotFound
	}
	return mapWorkingAtToResponse(wa), nil
}

// ListByRegister implements workingat.WorkingAtService.
func (s *WorkingAtServiceImpl) ListByRegister(ctx context.Context, registerID string) ([]workingat.WorkingAtResponse, error) {
	retailID, err := retailFromContext(ctx)
	if err != nil {
		return nil, err
	}

	reg, err := s.registerRepo.GetByID(ctx, registerID)
	if err != nil {
		return nil, err
	}
	if reg.RetailID != retailID {
		return nil, register.ErrRegisterNotFound
	}

	relations, err := s.workingAtRepo.ListByRegister(ctx, registerID)
	if err != nil {
		return nil, err
	}

	out := make([]workingat.WorkingAtResponse, 0, len(relations))
	for _, wa := range relations {
		out = append(out, mapWorkingAtToResponse(wa))
	}
	return out, nil
}

// normalizeShifts assigns ids to new shifts and derives each overnight flag
// from the clock pair. Client-supplied flags are never trusted.
func normalizeShifts(shifts *[7][]workingat.Shift) error {
	for day := 0; day < 7; day++ {
		for i := range shifts[day] {
			sh := &shifts[day][i]
			if !sh.IsAvailable {
				continue
			}
			if sh.ID == "" {
				sh.ID = uuid.New().String()
			}
			overnight, err := timeutil.IsOvernightStrings(sh.Start, sh.End)
			if err != nil {
				return err
			}
			sh.IsOverNight = overnight
		}
	}
	return nil
}

func mapWorkingAtToResponse(wa workingat.WorkingAt) workingat.WorkingAtResponse {
	return workingat.WorkingAtResponse{
		ID:         wa.ID,
		EmployeeID: wa.EmployeeID,
		RegisterID: wa.RegisterID,
		RetailID:   wa.RetailID,
		Shifts:     wa.Shifts,
		CreatedAt:  wa.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  wa.UpdatedAt.Format(time.RFC3339),
	}
}

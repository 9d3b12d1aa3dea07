package geofence

import (
	"context"
	"fmt"

	"github.com/attendly/attendance-backend-go/internal/domain/device"
	"github.com/attendly/attendance-backend-go/internal/domain/register"
	"github.com/attendly/attendance-backend-go/internal/pkg/utils"
)

// Decision is the outcome of a geofence check. NeedDeviceChoice is a signal,
// not a rejection: the register has paired local devices and the caller must
// resubmit naming one.
type Decision struct {
	Distance         float64
	Allowed          bool
	NeedDeviceChoice bool
	DeviceIDs        []string
}

// Validator authorizes a reported position against a register's geofence or,
// when a paired local device is named, against that device's own
// location+radius. Indoors GPS is imprecise; a trusted on-site beacon
// supersedes the register reference.
type Validator struct {
	deviceRepo device.LocalDeviceRepository
}

func NewValidator(deviceRepo device.LocalDeviceRepository) *Validator {
	return &Validator{deviceRepo: deviceRepo}
}

// Evaluate measures the distance to a reference point and applies the
// inclusive radius rule.
func Evaluate(refLat, refLon, radiusMeters, lat, lon float64) (float64, bool) {
	distance := utils.CalculateHaversineDistance(lat, lon, refLat, refLon)
	return distance, distance <= radiusMeters
}

// Validate runs the full geofence decision for one action.
func (v *Validator) Validate(ctx context.Context, reg *register.Register, lat, lon float64, localDeviceID *string) (Decision, error) {
	devices, err := v.deviceRepo.ListByRegister(ctx, reg.ID)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to list local devices: %w", err)
	}

	if len(devices) > 0 && localDeviceID == nil {
		ids := make([]string, 0, len(devices))
		for _, d := range devices {
			ids = append(ids, d.ID)
		}
		return Decision{NeedDeviceChoice: true, DeviceIDs: ids}, nil
	}

	refLat, refLon, radius := reg.Latitude, reg.Longitude, reg.RadiusMeters
	if localDeviceID != nil {
		var chosen *device.LocalDevice
		for i := range devices {
			if devices[i].ID == *localDeviceID {
				chosen = &devices[i]
				break
			}
		}
		if chosen == nil {
			return Decision{}, device.ErrDeviceNotFound
		}
		refLat, refLon, radius = chosen.Latitude, chosen.Longitude, chosen.RadiusMeters
	}

	distance, allowed := Evaluate(refLat, refLon, radius, lat, lon)
	return Decision{Distance: distance, Allowed: allowed}, nil
}

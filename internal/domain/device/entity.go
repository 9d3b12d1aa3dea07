package device

import "time"

// LocalDevice is a paired, trusted on-site beacon whose fixed location and
// radius can supersede the register's for geofencing.
type LocalDevice struct {
	ID              string
	RegisterID      string
	Name            string
	Latitude        float64
	Longitude       float64
	RadiusMeters    float64
	PairingCodeHash string
	PairedAt        time.Time
}

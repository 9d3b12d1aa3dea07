package register

import (
	"time"
)

// SpecificBreakKeys are the named break slots every register carries per day.
var SpecificBreakKeys = []string{"breakfast", "lunch", "dinner"}

// WorkingHour is one day-of-week's opening interval for a register.
type WorkingHour struct {
	Start       string `json:"start"`
	End         string `json:"end"`
	IsOverNight bool   `json:"is_overnight"`
	IsAvailable bool   `json:"is_available"`
}

// BreakTemplate is a generic, named break window offered by a register on one
// day-of-week.
type BreakTemplate struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Start           string `json:"start"`
	End             string `json:"end"`
	DurationMinutes int    `json:"duration_minutes"`
	IsOverNight     bool   `json:"is_overnight"`
}

// SpecificBreak is a named break slot (breakfast/lunch/dinner) with its own
// availability toggle.
type SpecificBreak struct {
	Start           string `json:"start"`
	End             string `json:"end"`
	DurationMinutes int    `json:"duration_minutes"`
	IsOverNight     bool   `json:"is_overnight"`
	IsAvailable     bool   `json:"is_available"`
}

// Register is a physical work location belonging to a retail (tenant).
// Weekly structures are fixed-size arrays indexed by time.Weekday so all seven
// days are always present.
type Register struct {
	ID              string
	RetailID        string
	Name            string
	Latitude        float64
	Longitude       float64
	RadiusMeters    float64
	WorkingHours    [7]WorkingHour
	Breaks          [7][]BreakTemplate
	SpecificBreaks  [7]map[string]SpecificBreak
	MaxLocalDevices int
	IsAvailable     bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Package ghcn reads daily station files from the Global Historical Climatology
// Network feed.
package ghcn

import "time"

// Element names used by the feed.
const (
	ElementTMAX = "TMAX"
	ElementTMIN = "TMIN"
)

// Observation is one row of a by_station CSV file. Value is in the feed's native
// unit; temperatures are tenths of a degree Celsius.
type Observation struct {
	StationID string
	Date      time.Time
	Element   string
	Value     int
	MFlag     string
	QFlag     string
	SFlag     string
	ObsTime   string
}

// IsTemperature reports whether the observation is a daily max or min temperature.
func (o Observation) IsTemperature() bool {
	return o.Element == ElementTMAX || o.Element == ElementTMIN
}

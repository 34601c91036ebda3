// Package units provides shared constants and validation for distance
// display units
package units

import (
	"fmt"
	"time"
)

// Unit constants
const (
	KM = "km"
	MI = "mi"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{KM, MI}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "km, mi"
}

// ConvertDistance converts a distance from meters to the target units.
// All internal distances are in meters.
func ConvertDistance(meters float64, targetUnits string) float64 {
	switch targetUnits {
	case MI:
		return meters / 1609.344
	case KM:
		return meters / 1000.0
	default:
		return meters / 1000.0 // default to km if unknown unit
	}
}

// FormatDistance renders a distance in meters as a display string in
// the target units, e.g. "12.3 km".
func FormatDistance(meters float64, targetUnits string) string {
	if !IsValid(targetUnits) {
		targetUnits = KM
	}
	return fmt.Sprintf("%.1f %s", ConvertDistance(meters, targetUnits), targetUnits)
}

// FormatPace renders an average speed in meters per second as a pace
// string (minutes per km or per mile), e.g. "5:30 /km".
func FormatPace(metersPerSecond float64, targetUnits string) string {
	if metersPerSecond <= 0 {
		return "-"
	}
	if !IsValid(targetUnits) {
		targetUnits = KM
	}
	unitMeters := 1000.0
	if targetUnits == MI {
		unitMeters = 1609.344
	}
	secsPerUnit := unitMeters / metersPerSecond
	d := time.Duration(secsPerUnit * float64(time.Second)).Round(time.Second)
	return fmt.Sprintf("%d:%02d /%s", int(d.Minutes()), int(d.Seconds())%60, targetUnits)
}

// FormatDuration renders a duration as h:mm:ss.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

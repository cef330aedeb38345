package domain

import (
	"fmt"
	"math"
)

// ZoneWidth is the longitudinal width of a Gauss-Krüger zone in degrees.
type ZoneWidth int

// Supported zone widths.
const (
	Zone3 ZoneWidth = 3
	Zone6 ZoneWidth = 6
)

// Validate rejects widths other than 3 and 6 degrees.
func (w ZoneWidth) Validate() error {
	switch w {
	case Zone3, Zone6:
		return nil
	default:
		return &ParameterError{
			Field:      "zone_width",
			Value:      int(w),
			Constraint: "3 or 6",
			Err:        ErrInvalidZoneWidth,
		}
	}
}

// ZoneOf returns the zone number containing lon (degrees).
// 3° zones are numbered floor(lon/3); 6° zones floor(lon/6)+1.
func (w ZoneWidth) ZoneOf(lon float64) int {
	if w == Zone6 {
		return int(math.Floor(lon/6)) + 1
	}
	return int(math.Floor(lon / 3))
}

// CentralMeridian returns the central meridian of zone in degrees.
func (w ZoneWidth) CentralMeridian(zone int) float64 {
	if w == Zone6 {
		return float64(zone-1)*6 + 3
	}
	return float64(zone) * 3
}

// String returns the width as "3deg" or "6deg".
func (w ZoneWidth) String() string {
	return fmt.Sprintf("%ddeg", int(w))
}

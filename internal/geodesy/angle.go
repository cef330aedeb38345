// Package geodesy implements the coordinate conversion engine: geodetic and
// Cartesian conversion on a reference ellipsoid, the Bursa-Wolf datum shift
// and the Gauss-Krüger projection. Every function is pure and safe for
// concurrent use.
package geodesy

import "math"

// DegreesToRadians converts an angle from degrees to radians.
func DegreesToRadians(deg float64) float64 {
	return deg / 180.0 * math.Pi
}

// RadiansToDegrees converts an angle from radians to degrees.
func RadiansToDegrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// DMSToDecimalDegrees unpacks an angle written as DDD.MMSSsss (degrees in the
// integer part, two digits of minutes, then seconds) into decimal degrees.
// Minutes and seconds are not range checked.
func DMSToDecimalDegrees(packed float64) float64 {
	deg := math.Trunc(packed)
	mins := math.Trunc((packed - deg) * 100)
	secs := ((packed-deg)*100 - mins) * 100
	return deg + mins/60.0 + secs/3600.0
}

// secondsScale rounds packed seconds to the five decimals DDD.MMSSsssss
// carries at nine fractional digits.
const secondsScale = 1e5

// DecimalDegreesToDMS packs decimal degrees into the DDD.MMSSsss form read by
// DMSToDecimalDegrees. Seconds are rounded to 1e-5 and carried into minutes
// and degrees, so neither field reaches 60.
func DecimalDegreesToDMS(deg float64) float64 {
	sign := 1.0
	if deg < 0 {
		sign, deg = -1, -deg
	}

	d := math.Trunc(deg)
	rem := (deg - d) * 60
	m := math.Trunc(rem)
	s := math.Round((rem-m)*60*secondsScale) / secondsScale
	if s >= 60 {
		s -= 60
		m++
	}
	if m >= 60 {
		m -= 60
		d++
	}
	return sign * (d + m/100.0 + s/10000.0)
}

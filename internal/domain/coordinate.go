// Package domain contains the value types shared by the conversion engine:
// points, reference ellipsoids, datum-shift parameters and zone widths.
package domain

import (
	"fmt"
	"math"
)

// GeodeticPoint is a position given by latitude and longitude in decimal
// degrees and height in meters above the reference ellipsoid.
type GeodeticPoint struct {
	Latitude  float64
	Longitude float64
	Height    float64
}

// NewGeodeticPoint creates a geodetic point.
func NewGeodeticPoint(lat, lon, height float64) GeodeticPoint {
	return GeodeticPoint{Latitude: lat, Longitude: lon, Height: height}
}

// Validate checks that all components are finite numbers. Range checks are
// left to the caller.
func (p GeodeticPoint) Validate() error {
	if err := finite("latitude", p.Latitude); err != nil {
		return err
	}
	if err := finite("longitude", p.Longitude); err != nil {
		return err
	}
	return finite("height", p.Height)
}

// InRange reports whether latitude and longitude lie in [-90, 90] and
// [-180, 180].
func (p GeodeticPoint) InRange() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

// String returns a string representation of the point.
func (p GeodeticPoint) String() string {
	return fmt.Sprintf("B=%.9f L=%.9f H=%.4f", p.Latitude, p.Longitude, p.Height)
}

// CartesianPoint is an Earth-centered Earth-fixed position in meters.
// The ellipsoid it refers to is not carried on the value; callers must keep
// track of it.
type CartesianPoint struct {
	X float64
	Y float64
	Z float64
}

// Validate checks that all components are finite numbers.
func (p CartesianPoint) Validate() error {
	if err := finite("x", p.X); err != nil {
		return err
	}
	if err := finite("y", p.Y); err != nil {
		return err
	}
	return finite("z", p.Z)
}

// String returns a string representation of the point.
func (p CartesianPoint) String() string {
	return fmt.Sprintf("X=%.4f Y=%.4f Z=%.4f", p.X, p.Y, p.Z)
}

// Zone offsets folded into GaussPlanePoint.X.
const (
	ZoneFactor   = 1_000_000
	FalseEasting = 500_000
)

// GaussPlanePoint is a Gauss-Krüger plane coordinate. X is the east-west
// term with the zone number (times ZoneFactor) and FalseEasting folded in;
// Y is the north-south term. H is carried through unchanged.
type GaussPlanePoint struct {
	X float64
	Y float64
	H float64
}

// NewGaussPlanePoint creates a plane point.
func NewGaussPlanePoint(x, y, h float64) GaussPlanePoint {
	return GaussPlanePoint{X: x, Y: y, H: h}
}

// Zone returns the zone number embedded in X.
func (p GaussPlanePoint) Zone() int {
	return int(math.Floor(p.X / ZoneFactor))
}

// StripZone returns the point with the embedded zone number removed from X,
// together with that zone number.
func (p GaussPlanePoint) StripZone() (GaussPlanePoint, int) {
	zone := p.Zone()
	p.X -= float64(zone) * ZoneFactor
	return p, zone
}

// Validate checks that all components are finite numbers.
func (p GaussPlanePoint) Validate() error {
	if err := finite("x", p.X); err != nil {
		return err
	}
	if err := finite("y", p.Y); err != nil {
		return err
	}
	return finite("h", p.H)
}

// String returns a string representation of the point.
func (p GaussPlanePoint) String() string {
	return fmt.Sprintf("X=%.4f Y=%.4f H=%.4f", p.X, p.Y, p.H)
}

func finite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ParameterError{
			Field:      field,
			Value:      v,
			Constraint: "finite",
			Err:        ErrInvalidCoordinate,
		}
	}
	return nil
}

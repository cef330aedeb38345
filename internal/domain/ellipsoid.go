package domain

import (
	"fmt"
	"math"
	"strings"
)

// Preset ellipsoid names.
const (
	EllipsoidWGS84     = "WGS84"
	EllipsoidXian80    = "Xian80"
	EllipsoidBeijing54 = "Beijing54"
)

// EllipsoidParams holds the raw definition of a reference ellipsoid.
// Zero F, E2 or EE are derived from the axes.
type EllipsoidParams struct {
	Name string
	A    float64 // Semi-major axis (m)
	B    float64 // Semi-minor axis (m)
	F    float64 // Flattening
	E2   float64 // First eccentricity squared
	EE   float64 // Second eccentricity squared
}

// Ellipsoid is an immutable reference ellipsoid. All derived quantities are
// computed by NewEllipsoid, so a value may be shared between goroutines.
type Ellipsoid struct {
	name string
	a    float64
	b    float64
	f    float64
	e2   float64
	ee   float64
}

// NewEllipsoid validates p and materializes the derived parameters.
//
// Surveying standards publish e2 rounded to a fixed number of digits; pass it
// in E2 to reproduce their numbers. EE is derived from the (possibly supplied)
// e2 rather than from the axes.
func NewEllipsoid(p EllipsoidParams) (Ellipsoid, error) {
	if !isFinite(p.A) || p.A <= 0 {
		return Ellipsoid{}, &ParameterError{Field: "a", Value: p.A, Constraint: "a > 0", Err: ErrInvalidEllipsoid}
	}
	if !isFinite(p.B) || p.B <= 0 {
		return Ellipsoid{}, &ParameterError{Field: "b", Value: p.B, Constraint: "b > 0", Err: ErrInvalidEllipsoid}
	}
	if p.A <= p.B {
		return Ellipsoid{}, &ParameterError{
			Field:      "b",
			Value:      p.B,
			Constraint: fmt.Sprintf("b < a (%g)", p.A),
			Err:        ErrInvalidEllipsoid,
		}
	}

	e := Ellipsoid{name: p.Name, a: p.A, b: p.B, f: p.F, e2: p.E2, ee: p.EE}
	if e.f == 0 {
		e.f = (e.a - e.b) / e.a
	}
	if e.e2 == 0 {
		e.e2 = 1 - (e.b/e.a)*(e.b/e.a)
	}
	if e.ee == 0 {
		e.ee = e.e2 / (1 - e.e2)
	}
	if e.e2 <= 0 || e.e2 >= 1 {
		return Ellipsoid{}, &ParameterError{Field: "e2", Value: e.e2, Constraint: "0 < e2 < 1", Err: ErrInvalidEllipsoid}
	}
	return e, nil
}

func mustEllipsoid(p EllipsoidParams) Ellipsoid {
	e, err := NewEllipsoid(p)
	if err != nil {
		panic(err)
	}
	return e
}

// WGS84 returns the WGS 84 ellipsoid.
func WGS84() Ellipsoid {
	return mustEllipsoid(EllipsoidParams{
		Name: EllipsoidWGS84,
		A:    6378137,
		B:    6356752.314,
		F:    1 / 298.257223563,
		E2:   0.006694379989,
	})
}

// Xian80 returns the IAG-75 ellipsoid used by the Xi'an 1980 datum.
func Xian80() Ellipsoid {
	return mustEllipsoid(EllipsoidParams{
		Name: EllipsoidXian80,
		A:    6378140,
		B:    6356755.2882,
		F:    1 / 298.257,
		E2:   0.00669438499959,
	})
}

// Beijing54 returns the Krasovsky ellipsoid used by the Beijing 1954 datum.
func Beijing54() Ellipsoid {
	return mustEllipsoid(EllipsoidParams{
		Name: EllipsoidBeijing54,
		A:    6378245,
		B:    6356863.019,
		F:    1 / 298.3,
		E2:   0.006693421623,
	})
}

// EllipsoidByName returns the preset with the given name (case-insensitive).
func EllipsoidByName(name string) (Ellipsoid, error) {
	switch strings.ToLower(name) {
	case strings.ToLower(EllipsoidWGS84):
		return WGS84(), nil
	case strings.ToLower(EllipsoidXian80):
		return Xian80(), nil
	case strings.ToLower(EllipsoidBeijing54):
		return Beijing54(), nil
	default:
		return Ellipsoid{}, fmt.Errorf("%q: %w", name, ErrUnknownEllipsoid)
	}
}

// Name returns the ellipsoid name, empty for custom ellipsoids.
func (e Ellipsoid) Name() string { return e.name }

// A returns the semi-major axis in meters.
func (e Ellipsoid) A() float64 { return e.a }

// B returns the semi-minor axis in meters.
func (e Ellipsoid) B() float64 { return e.b }

// F returns the flattening.
func (e Ellipsoid) F() float64 { return e.f }

// E2 returns the first eccentricity squared.
func (e Ellipsoid) E2() float64 { return e.e2 }

// EE returns the second eccentricity squared.
func (e Ellipsoid) EE() float64 { return e.ee }

// IsZero returns true if the ellipsoid was never constructed.
func (e Ellipsoid) IsZero() bool {
	return e.a == 0
}

// PrimeVerticalRadius returns N, the radius of curvature in the prime
// vertical at latitude lat (radians).
func (e Ellipsoid) PrimeVerticalRadius(lat float64) float64 {
	s := math.Sin(lat)
	return e.a / math.Sqrt(1-e.e2*s*s)
}

// String returns a short description of the ellipsoid.
func (e Ellipsoid) String() string {
	name := e.name
	if name == "" {
		name = "custom"
	}
	return fmt.Sprintf("%s(a=%.4f, 1/f=%.9f)", name, e.a, 1/e.f)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

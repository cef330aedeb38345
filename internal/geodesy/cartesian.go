package geodesy

import (
	"math"

	"github.com/jobrunner/geodatum/internal/domain"
)

// Solver defaults.
const (
	// DefaultTolerance is 0.001 arcsecond expressed in radians.
	DefaultTolerance     = math.Pi / (180000 * 3600)
	DefaultMaxIterations = 100
)

// GeodeticToCartesian converts p to Earth-centered Cartesian coordinates on e.
//
//	W = sqrt(1 - e2 sin²B), N = a/W
//	X = (N+H) cosB cosL
//	Y = (N+H) cosB sinL
//	Z = (N(1-e2) + H) sinB
func GeodeticToCartesian(p domain.GeodeticPoint, e domain.Ellipsoid) domain.CartesianPoint {
	lat := DegreesToRadians(p.Latitude)
	lon := DegreesToRadians(p.Longitude)

	n := e.PrimeVerticalRadius(lat)
	cosLat := math.Cos(lat)

	return domain.CartesianPoint{
		X: (n + p.Height) * cosLat * math.Cos(lon),
		Y: (n + p.Height) * cosLat * math.Sin(lon),
		Z: (n*(1-e.E2()) + p.Height) * math.Sin(lat),
	}
}

// Solver inverts GeodeticToCartesian by fixed-point iteration on latitude.
type Solver struct {
	MaxIterations int     // Iteration cap, DefaultMaxIterations if zero
	Tolerance     float64 // Convergence threshold in radians, DefaultTolerance if zero
}

// Solution is the result of a converged inverse conversion.
type Solution struct {
	Point      domain.GeodeticPoint
	Iterations int
}

// DefaultSolver uses DefaultMaxIterations and DefaultTolerance.
var DefaultSolver = Solver{}

// CartesianToGeodetic converts p to geodetic coordinates on e using
// DefaultSolver.
func CartesianToGeodetic(p domain.CartesianPoint, e domain.Ellipsoid) (domain.GeodeticPoint, error) {
	sol, err := DefaultSolver.Solve(p, e)
	if err != nil {
		return domain.GeodeticPoint{}, err
	}
	return sol.Point, nil
}

// Solve converts p to geodetic coordinates on e.
//
// Latitude is seeded with atan(Z/r), r = sqrt(X²+Y²), and refined with
// B' = atan((Z + N e2 sinB)/r) until |B' - B| drops below the tolerance.
// Longitude and latitude use atan2, so every hemisphere is covered.
func (s Solver) Solve(p domain.CartesianPoint, e domain.Ellipsoid) (Solution, error) {
	if err := p.Validate(); err != nil {
		return Solution{}, err
	}
	maxIter, tol := s.limits()
	if maxIter < 1 {
		return Solution{}, &domain.ParameterError{Field: "max_iterations", Value: s.MaxIterations, Constraint: "> 0"}
	}

	r := math.Hypot(p.X, p.Y)
	if r == 0 {
		return Solution{}, &domain.SingularityError{
			Operation: "cartesian to geodetic",
			Reason:    "point on the polar axis, longitude undefined",
		}
	}

	lon := math.Atan2(p.Y, p.X)
	e2 := e.E2()

	lat := math.Atan2(p.Z, r)
	n := e.PrimeVerticalRadius(lat)

	iter := 0
	for {
		iter++
		next := math.Atan2(p.Z+n*e2*math.Sin(lat), r)
		n = e.PrimeVerticalRadius(next)
		delta := math.Abs(next - lat)
		lat = next
		if delta < tol {
			break
		}
		if iter >= maxIter {
			return Solution{}, &domain.ConvergenceError{
				Operation:  "cartesian to geodetic",
				Iterations: iter,
				Residual:   delta,
			}
		}
	}

	return Solution{
		Point: domain.GeodeticPoint{
			Latitude:  RadiansToDegrees(lat),
			Longitude: RadiansToDegrees(lon),
			Height:    ellipsoidalHeight(p.Z, r, lat, n, e2),
		},
		Iterations: iter,
	}, nil
}

func (s Solver) limits() (int, float64) {
	maxIter, tol := s.MaxIterations, s.Tolerance
	if maxIter == 0 {
		maxIter = DefaultMaxIterations
	}
	if tol <= 0 {
		tol = DefaultTolerance
	}
	return maxIter, tol
}

// ellipsoidalHeight uses H = Z/sinB - N(1-e2) away from the equator and the
// equivalent H = r/cosB - N near it, where sinB vanishes.
func ellipsoidalHeight(z, r, lat, n, e2 float64) float64 {
	sinLat, cosLat := math.Sincos(lat)
	if math.Abs(sinLat) >= math.Abs(cosLat) {
		return z/sinLat - n*(1-e2)
	}
	return r/cosLat - n
}

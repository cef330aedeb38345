package geodesy

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/jobrunner/geodatum/internal/domain"
)

var presets = []domain.Ellipsoid{domain.WGS84(), domain.Xian80(), domain.Beijing54()}

func TestGeodeticToCartesian(t *testing.T) {
	wgs := domain.WGS84()

	tests := []struct {
		name  string
		point domain.GeodeticPoint
		want  domain.CartesianPoint
	}{
		{
			name:  "equator prime meridian",
			point: domain.NewGeodeticPoint(0, 0, 0),
			want:  domain.CartesianPoint{X: wgs.A()},
		},
		{
			name:  "equator 90 east with height",
			point: domain.NewGeodeticPoint(0, 90, 100),
			want:  domain.CartesianPoint{Y: wgs.A() + 100},
		},
		{
			name:  "north pole",
			point: domain.NewGeodeticPoint(90, 0, 0),
			want:  domain.CartesianPoint{Z: wgs.A() / math.Sqrt(1-wgs.E2()) * (1 - wgs.E2())},
		},
		{
			name:  "reference point",
			point: domain.NewGeodeticPoint(29.68748961111111, 121.6468252777778, 16.174),
			want:  domain.CartesianPoint{X: -2909628.0351831894, Y: 4720883.59865593, Z: 3140334.049790249},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GeodeticToCartesian(tt.point, wgs)
			assertCartesian(t, got, tt.want, 1e-6)
		})
	}
}

func TestCartesianRoundTrip(t *testing.T) {
	lons := []float64{-179.3, -100, -45, -0.5, 0, 0.5, 33, 90, 121.6, 179.9}
	heights := []float64{-1000, 0, 16.174, 9000}

	for _, e := range presets {
		t.Run(e.Name(), func(t *testing.T) {
			for lat := -80.0; lat <= 80.0; lat += 2.5 {
				for _, lon := range lons {
					for _, h := range heights {
						p := domain.NewGeodeticPoint(lat, lon, h)
						got, err := CartesianToGeodetic(GeodeticToCartesian(p, e), e)
						if err != nil {
							t.Fatalf("CartesianToGeodetic(%v) error: %v", p, err)
						}
						if !scalar.EqualWithinAbs(got.Latitude, lat, 1e-8) ||
							!scalar.EqualWithinAbs(got.Longitude, lon, 1e-8) ||
							!scalar.EqualWithinAbs(got.Height, h, 1e-3) {
							t.Errorf("round trip of %v gave %v", p, got)
						}
					}
				}
			}
		})
	}
}

func TestCartesianToGeodeticEquator(t *testing.T) {
	e := domain.Xian80()
	p := domain.NewGeodeticPoint(0, 117, 42)

	got, err := CartesianToGeodetic(GeodeticToCartesian(p, e), e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !scalar.EqualWithinAbs(got.Latitude, 0, 1e-10) || !scalar.EqualWithinAbs(got.Height, 42, 1e-6) {
		t.Errorf("expected latitude 0 and height 42, got %v", got)
	}
}

func TestCartesianToGeodeticErrors(t *testing.T) {
	e := domain.WGS84()

	tests := []struct {
		name    string
		solver  Solver
		point   domain.CartesianPoint
		wantErr error
	}{
		{
			name:    "polar axis",
			point:   domain.CartesianPoint{Z: 6356752.314},
			wantErr: domain.ErrDomainSingularity,
		},
		{
			name:    "earth center",
			point:   domain.CartesianPoint{},
			wantErr: domain.ErrDomainSingularity,
		},
		{
			name:    "not finite",
			point:   domain.CartesianPoint{X: math.NaN(), Y: 1, Z: 1},
			wantErr: domain.ErrInvalidParameter,
		},
		{
			name:    "iteration cap reached",
			solver:  Solver{MaxIterations: 1},
			point:   GeodeticToCartesian(domain.NewGeodeticPoint(45, 10, 0), e),
			wantErr: domain.ErrNonConvergence,
		},
		{
			name:    "negative iteration cap",
			solver:  Solver{MaxIterations: -3},
			point:   GeodeticToCartesian(domain.NewGeodeticPoint(45, 10, 0), e),
			wantErr: domain.ErrInvalidParameter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.solver.Solve(tt.point, e)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Solve() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSolverReportsIterations(t *testing.T) {
	e := domain.Xian80()
	p := GeodeticToCartesian(domain.NewGeodeticPoint(29.7, 121.6, 10), e)

	sol, err := DefaultSolver.Solve(p, e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.Iterations < 1 || sol.Iterations > 10 {
		t.Errorf("expected a handful of iterations, got %d", sol.Iterations)
	}

	var convErr *domain.ConvergenceError
	_, err = Solver{MaxIterations: 2, Tolerance: 1e-30}.Solve(p, e)
	if !errors.As(err, &convErr) {
		t.Fatalf("expected ConvergenceError, got %v", err)
	}
	if convErr.Iterations != 2 {
		t.Errorf("expected 2 iterations, got %d", convErr.Iterations)
	}
}

func assertCartesian(t *testing.T, got, want domain.CartesianPoint, tol float64) {
	t.Helper()
	if !scalar.EqualWithinAbs(got.X, want.X, tol) ||
		!scalar.EqualWithinAbs(got.Y, want.Y, tol) ||
		!scalar.EqualWithinAbs(got.Z, want.Z, tol) {
		t.Errorf("got %v, want %v", got, want)
	}
}

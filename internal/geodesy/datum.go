package geodesy

import (
	"gonum.org/v1/gonum/mat"

	"github.com/jobrunner/geodatum/internal/domain"
)

// ApplyDatumShift applies the Bursa-Wolf transform described by params to p,
// using the small-angle approximation for the rotations:
//
//	X' = dX + s X + rz Y - ry Z
//	Y' = dY + s Y - rz X + rx Z
//	Z' = dZ + s Z + ry X - rx Y
//
// with s = 1 + params.ScaleCorrection() and rotations given in arcseconds.
// A zero parameter set returns p unchanged.
func ApplyDatumShift(p domain.CartesianPoint, params domain.DatumShiftParameters) domain.CartesianPoint {
	if params.IsZero() {
		return p
	}
	rx, ry, rz := rotations(params)
	s := 1 + params.ScaleCorrection()

	return domain.CartesianPoint{
		X: params.DeltaX + s*p.X + rz*p.Y - ry*p.Z,
		Y: params.DeltaY + s*p.Y - rz*p.X + rx*p.Z,
		Z: params.DeltaZ + s*p.Z + ry*p.X - rx*p.Y,
	}
}

// InvertDatumShift returns the point q with ApplyDatumShift(q, params) == p.
// The linear part of the transform is solved exactly instead of negating the
// parameters, which would only be a first-order inverse.
func InvertDatumShift(p domain.CartesianPoint, params domain.DatumShiftParameters) (domain.CartesianPoint, error) {
	if params.IsZero() {
		return p, nil
	}
	rx, ry, rz := rotations(params)
	s := 1 + params.ScaleCorrection()

	m := mat.NewDense(3, 3, []float64{
		s, rz, -ry,
		-rz, s, rx,
		ry, -rx, s,
	})
	b := mat.NewVecDense(3, []float64{
		p.X - params.DeltaX,
		p.Y - params.DeltaY,
		p.Z - params.DeltaZ,
	})

	var q mat.VecDense
	if err := q.SolveVec(m, b); err != nil {
		return domain.CartesianPoint{}, &domain.SingularityError{
			Operation: "invert datum shift",
			Reason:    err.Error(),
		}
	}
	return domain.CartesianPoint{X: q.AtVec(0), Y: q.AtVec(1), Z: q.AtVec(2)}, nil
}

func rotations(params domain.DatumShiftParameters) (rx, ry, rz float64) {
	rx = DegreesToRadians(params.RotateX / 3600.0)
	ry = DegreesToRadians(params.RotateY / 3600.0)
	rz = DegreesToRadians(params.RotateZ / 3600.0)
	return rx, ry, rz
}

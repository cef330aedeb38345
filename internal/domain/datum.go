package domain

import "fmt"

// DatumShiftParameters holds a 7-parameter Bursa-Wolf transform plus the
// planar offsets some published parameter sets carry.
type DatumShiftParameters struct {
	DeltaX  float64 `yaml:"delta_x" json:"delta_x"`   // Translation (m)
	DeltaY  float64 `yaml:"delta_y" json:"delta_y"`   // Translation (m)
	DeltaZ  float64 `yaml:"delta_z" json:"delta_z"`   // Translation (m)
	RotateX float64 `yaml:"rotate_x" json:"rotate_x"` // Rotation (arcsec)
	RotateY float64 `yaml:"rotate_y" json:"rotate_y"` // Rotation (arcsec)
	RotateZ float64 `yaml:"rotate_z" json:"rotate_z"` // Rotation (arcsec)
	K       float64 `yaml:"k" json:"k"`               // Raw scale parameter, see ScaleCorrection
	OffsetX float64 `yaml:"offset_x" json:"offset_x"` // Plane offset (m), not used by the Cartesian transform
	OffsetY float64 `yaml:"offset_y" json:"offset_y"` // Plane offset (m), not used by the Cartesian transform
}

// ScaleCorrection returns k' such that the transform scales by (1 + k').
//
// Published sets for this transform store K so that k' = 1/K/1e7. This is not
// the usual ppm convention (k' = K*1e-6) and is probably a unit slip in the
// source of those sets, but their calibrated outputs depend on it. K == 0
// means no scale correction.
func (p DatumShiftParameters) ScaleCorrection() float64 {
	if p.K == 0 {
		return 0
	}
	return 1.0 / p.K / 10000000.0
}

// IsZero returns true if every parameter is zero.
func (p DatumShiftParameters) IsZero() bool {
	return p.DeltaX == 0 &&
		p.DeltaY == 0 &&
		p.DeltaZ == 0 &&
		p.RotateX == 0 &&
		p.RotateY == 0 &&
		p.RotateZ == 0 &&
		p.K == 0 &&
		p.OffsetX == 0 &&
		p.OffsetY == 0
}

// Validate checks that all parameters are finite numbers.
func (p DatumShiftParameters) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"delta_x", p.DeltaX}, {"delta_y", p.DeltaY}, {"delta_z", p.DeltaZ},
		{"rotate_x", p.RotateX}, {"rotate_y", p.RotateY}, {"rotate_z", p.RotateZ},
		{"k", p.K}, {"offset_x", p.OffsetX}, {"offset_y", p.OffsetY},
	}
	for _, f := range fields {
		if !isFinite(f.v) {
			return &ParameterError{Field: f.name, Value: f.v, Constraint: "finite"}
		}
	}
	return nil
}

// String returns a string representation of the parameters.
func (p DatumShiftParameters) String() string {
	return fmt.Sprintf("dX=%g dY=%g dZ=%g rX=%g\" rY=%g\" rZ=%g\" k=%g offX=%g offY=%g",
		p.DeltaX, p.DeltaY, p.DeltaZ, p.RotateX, p.RotateY, p.RotateZ, p.K, p.OffsetX, p.OffsetY)
}

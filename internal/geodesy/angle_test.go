package geodesy

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestDegreesToRadians(t *testing.T) {
	tests := []struct {
		deg  float64
		want float64
	}{
		{0, 0},
		{90, math.Pi / 2},
		{180, math.Pi},
		{-45, -math.Pi / 4},
		{360, 2 * math.Pi},
	}

	for _, tt := range tests {
		if got := DegreesToRadians(tt.deg); !scalar.EqualWithinAbs(got, tt.want, 1e-15) {
			t.Errorf("DegreesToRadians(%v) = %v, want %v", tt.deg, got, tt.want)
		}
		if got := RadiansToDegrees(tt.want); !scalar.EqualWithinAbs(got, tt.deg, 1e-12) {
			t.Errorf("RadiansToDegrees(%v) = %v, want %v", tt.want, got, tt.deg)
		}
	}
}

func TestDMSToDecimalDegrees(t *testing.T) {
	tests := []struct {
		name   string
		packed float64
		want   float64
	}{
		{
			name:   "whole degrees",
			packed: 30,
			want:   30,
		},
		{
			name:   "degrees minutes seconds",
			packed: 29.4114,
			want:   29 + 41.0/60 + 14.0/3600,
		},
		{
			name:   "fractional seconds",
			packed: 121.3848571,
			want:   121 + 38.0/60 + 48.571/3600,
		},
		{
			name:   "negative angle",
			packed: -29.4114,
			want:   -(29 + 41.0/60 + 14.0/3600),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DMSToDecimalDegrees(tt.packed)
			if !scalar.EqualWithinAbs(got, tt.want, 1e-9) {
				t.Errorf("DMSToDecimalDegrees(%v) = %.12f, want %.12f", tt.packed, got, tt.want)
			}
		})
	}
}

func TestDMSToDecimalDegreesReference(t *testing.T) {
	got := DMSToDecimalDegrees(29.4114)
	if !scalar.EqualWithinAbs(got, 29.68722, 1e-5) {
		t.Errorf("expected about 29.68722, got %.8f", got)
	}
}

func TestDecimalDegreesToDMS(t *testing.T) {
	for _, packed := range []float64{29.4114, 121.3848571, 0.0030, 45.0, -12.3456} {
		deg := DMSToDecimalDegrees(packed)
		if got := DecimalDegreesToDMS(deg); !scalar.EqualWithinAbs(got, packed, 1e-9) {
			t.Errorf("DecimalDegreesToDMS(%v) = %.10f, want %.10f", deg, got, packed)
		}
	}
}

func TestDecimalDegreesToDMSCarry(t *testing.T) {
	tests := []struct {
		name string
		deg  float64
		want float64
	}{
		{name: "half degree", deg: 29.5, want: 29.30},
		{name: "negative half degree", deg: -29.5, want: -29.30},
		{name: "seconds into minutes", deg: 10 + 20.0/60 + 59.999999/3600, want: 10.21},
		{name: "minutes into degrees", deg: 29 + 59.0/60 + 59.9999999/3600, want: 30},
		{name: "just below a degree", deg: 121.99999999999, want: 122},
		{name: "negative carry", deg: -(45 + 59.0/60 + 59.999999/3600), want: -46},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecimalDegreesToDMS(tt.deg)
			if !scalar.EqualWithinAbs(got, tt.want, 1e-9) {
				t.Errorf("DecimalDegreesToDMS(%v) = %.10f, want %.10f", tt.deg, got, tt.want)
			}

			frac := math.Abs(got - math.Trunc(got))
			mins := math.Trunc(frac*100 + 1e-9)
			secs := (frac*100 - mins) * 100
			if mins >= 60 || secs >= 60 {
				t.Errorf("DecimalDegreesToDMS(%v) = %.10f has minutes %v seconds %v", tt.deg, got, mins, secs)
			}
		})
	}
}

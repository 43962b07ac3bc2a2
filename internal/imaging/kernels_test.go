package imaging

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
)

func TestGaussianVector(t *testing.T) {
	tests := []struct {
		radius  float64
		wantLen int
	}{
		{0.5, 3},
		{1, 3},
		{1.5, 5},
		{2, 5},
		{3.7, 9},
		{10, 21},
	}

	for _, tt := range tests {
		v := GaussianVector(tt.radius)
		assert.Len(t, v, tt.wantLen, "radius %v", tt.radius)
		assert.InDelta(t, 1.0, floats.Sum(v), 1e-12, "radius %v taps must sum to 1", tt.radius)

		for i := range v {
			assert.InDelta(t, v[i], v[len(v)-1-i], 1e-15, "radius %v must be symmetric", tt.radius)
		}
		center := len(v) / 2
		assert.Equal(t, center, floats.MaxIdx(v), "radius %v must peak at the center", tt.radius)
	}
}

func TestGaussianVector_ZeroesTapsOutsideRadius(t *testing.T) {
	// ceil(1.5) = 2, but 2² > 1.5², so the outer taps are dropped.
	v := GaussianVector(1.5)
	assert.Zero(t, v[0])
	assert.Zero(t, v[4])
	assert.Positive(t, v[1])

	// Integral radius keeps its outer taps.
	v = GaussianVector(2)
	assert.Positive(t, v[0])
}

func TestGaussianVector_NonPositiveRadius(t *testing.T) {
	for _, r := range []float64{0, -1, math.NaN()} {
		assert.Equal(t, []float64{1}, GaussianVector(r))
	}
}

func TestGaussianKernels(t *testing.T) {
	h, v := GaussianKernels(2)
	assert.Equal(t, 5, h.Width)
	assert.Equal(t, 1, h.Height)
	assert.Equal(t, 1, v.Width)
	assert.Equal(t, 5, v.Height)
	assert.Equal(t, h.Matrix, v.Matrix)
	assert.NoError(t, h.validate())
	assert.NoError(t, v.validate())
}

func TestSobelKernels(t *testing.T) {
	assert.Equal(t, []float64{-1, 0, 1, -2, 0, 2, -1, 0, 1}, SobelX().Matrix)
	assert.Equal(t, []float64{1, 2, 1, 0, 0, 0, -1, -2, -1}, SobelY().Matrix)
	assert.Zero(t, floats.Sum(SobelX().Matrix))
	assert.Zero(t, floats.Sum(SobelY().Matrix))
}

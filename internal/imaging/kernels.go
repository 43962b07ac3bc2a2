package imaging

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// GaussianVector returns the normalized 1-D Gaussian taps for the given radius.
//
// The vector has 2*ceil(radius)+1 taps with sigma = radius/3. Taps whose
// squared offset exceeds radius² are zero. The taps sum to 1. A radius <= 0
// yields the identity vector [1].
func GaussianVector(radius float64) []float64 {
	if !(radius > 0) {
		return []float64{1}
	}

	r := int(math.Ceil(radius))
	sigma := radius / 3
	twoSigmaSq := 2 * sigma * sigma
	norm := math.Sqrt(2 * math.Pi * sigma)
	radiusSq := radius * radius

	taps := make([]float64, 2*r+1)
	for row := -r; row <= r; row++ {
		d := float64(row * row)
		if d > radiusSq {
			continue
		}
		taps[row+r] = math.Exp(-d/twoSigmaSq) / norm
	}
	floats.Scale(1/floats.Sum(taps), taps)
	return taps
}

// GaussianKernels returns the horizontal (n x 1) and vertical (1 x n) passes
// of a separable Gaussian blur.
func GaussianKernels(radius float64) (horizontal, vertical *Kernel) {
	taps := GaussianVector(radius)
	horizontal = &Kernel{Width: len(taps), Height: 1, Matrix: taps}
	return horizontal, horizontal.Transpose()
}

// SobelX returns the horizontal-derivative Sobel kernel.
func SobelX() *Kernel {
	return &Kernel{Width: 3, Height: 3, Matrix: []float64{
		-1, 0, 1,
		-2, 0, 2,
		-1, 0, 1,
	}}
}

// SobelY returns the vertical-derivative Sobel kernel. It is positive on the
// top row, so intensity decreasing downwards yields a positive response.
func SobelY() *Kernel {
	return &Kernel{Width: 3, Height: 3, Matrix: []float64{
		1, 2, 1,
		0, 0, 0,
		-1, -2, -1,
	}}
}

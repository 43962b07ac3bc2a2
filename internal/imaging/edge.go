package imaging

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// edgeValue marks a strong edge pixel in a Canny edge map.
const edgeValue = 255

// CannyOptions tunes the Canny edge detector.
//
// The hysteresis thresholds are ratios of the strongest suppressed gradient
// magnitude in the image, so the same options work across exposures.
type CannyOptions struct {
	// GaussianRadius is the radius of the smoothing blur. 0 disables smoothing.
	GaussianRadius float64 `json:"gaussian_radius" yaml:"gaussian_radius"`

	// LowRatio: pixels below LowRatio*max are suppressed.
	LowRatio float64 `json:"low_ratio" yaml:"low_ratio"`

	// HighRatio: pixels above HighRatio*max are strong edges.
	HighRatio float64 `json:"high_ratio" yaml:"high_ratio"`
}

// DefaultCannyOptions returns the options used for general edge detection.
func DefaultCannyOptions() CannyOptions {
	return CannyOptions{GaussianRadius: 2, LowRatio: 0.075, HighRatio: 0.175}
}

// DefaultLineCannyOptions returns the more permissive options used ahead of
// line linking.
func DefaultLineCannyOptions() CannyOptions {
	return CannyOptions{GaussianRadius: 2, LowRatio: 0.05, HighRatio: 0.10}
}

// Validate checks that the ratios are ordered and within [0, 1].
func (o CannyOptions) Validate() error {
	if o.GaussianRadius < 0 || math.IsNaN(o.GaussianRadius) {
		return fmt.Errorf("%w: gaussian radius %v", ErrInvalidOptions, o.GaussianRadius)
	}
	if !(o.LowRatio >= 0 && o.LowRatio <= o.HighRatio && o.HighRatio <= 1) {
		return fmt.Errorf("%w: hysteresis ratios low=%v high=%v", ErrInvalidOptions, o.LowRatio, o.HighRatio)
	}
	return nil
}

// CannyEdges runs Canny edge detection and returns an RGBA Uint8Clamped buffer
// with edge pixels (255, 255, 255, 255) and everything else (0, 0, 0, 255).
func CannyEdges(src *Buffer, opts CannyOptions) (*Buffer, error) {
	edges, err := CannyEdgeMap(src, opts)
	if err != nil {
		return nil, err
	}
	return GrayToRGBA(edges)
}

// CannyEdgeMap runs Canny edge detection and returns a single-channel
// Uint8Clamped buffer whose samples are 255 on edges and 0 elsewhere.
//
// Parameters:
//   - src: Gray, RGB or RGBA buffer. Alpha is ignored.
//   - opts: Blur radius and hysteresis ratios.
//
// Returns:
//   - *Buffer: Binary edge map with the geometry of src.
//   - error: Non-nil if src is malformed or opts are out of range.
//
// # Algorithm
//
//  1. Grayscale conversion: 0.2989*R + 0.5870*G + 0.1140*B, clamped
//
//  2. Gaussian blur: separable, GaussianRadius, unclamped Float32
//
//  3. Gradient computation: SobelX and SobelY, unclamped Float32
//     magnitude = sqrt(Gx² + Gy²)
//     angle = atan2(Gy, Gx) mapped to [0, 360) degrees
//
//  4. Direction quantization to 0, 45, 90 or 135 degrees
//
//  5. Non-maximum suppression on interior pixels: a pixel keeps its
//     magnitude only if it is >= both neighbours along its direction.
//     Ties survive, so a symmetric step may yield a two pixel wide edge.
//
//  6. Hysteresis on interior pixels, with low = LowRatio*max and
//     high = HighRatio*max over the suppressed magnitudes:
//     - value < low: not an edge
//     - value > high: edge
//     - otherwise: edge if any of the 8 neighbours is > high
//
// Border pixels are never edges. A uniform image has no edges.
func CannyEdgeMap(src *Buffer, opts CannyOptions) (*Buffer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	gray, err := Grayscale(src)
	if err != nil {
		return nil, err
	}
	blurred, err := GaussianBlur(gray, opts.GaussianRadius, Float32)
	if err != nil {
		return nil, err
	}
	gx, gy, err := sobel(blurred)
	if err != nil {
		return nil, err
	}

	width, height := gray.Width, gray.Height
	magnitude := make([]float64, width*height)
	direction := make([]int, width*height)
	for i := range magnitude {
		x, y := float64(gx.Pix[i]), float64(gy.Pix[i])
		angle := math.Mod(math.Atan2(y, x)+2*math.Pi, 2*math.Pi) * 180 / math.Pi
		direction[i] = quantizeAngle(angle)
		magnitude[i] = math.Hypot(x, y)
	}

	suppressed := suppressNonMaxima(magnitude, direction, width, height)
	return hysteresis(suppressed, width, height, opts.LowRatio, opts.HighRatio), nil
}

// quantizeAngle maps an angle in degrees [0, 360] to one of 0, 45, 90, 135.
func quantizeAngle(angle float64) int {
	switch {
	case angle < 22.5,
		angle >= 157.5 && angle < 202.5,
		angle >= 337.5:
		return 0
	case angle < 67.5,
		angle >= 202.5 && angle < 247.5:
		return 45
	case angle < 112.5,
		angle >= 247.5 && angle < 292.5:
		return 90
	}
	return 135
}

// suppressNonMaxima thins ridges to local maxima along the gradient direction.
// Border pixels are left at zero.
func suppressNonMaxima(magnitude []float64, direction []int, width, height int) []float64 {
	suppressed := make([]float64, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x

			// Neighbors to compare based on gradient direction
			var n1, n2 float64
			switch direction[i] {
			case 0:
				n1 = magnitude[i-1]
				n2 = magnitude[i+1]
			case 45:
				n1 = magnitude[i+width-1]
				n2 = magnitude[i-width+1]
			case 90:
				n1 = magnitude[i-width]
				n2 = magnitude[i+width]
			default:
				n1 = magnitude[i+width+1]
				n2 = magnitude[i-width-1]
			}

			if mag := magnitude[i]; mag >= n1 && mag >= n2 {
				suppressed[i] = mag
			}
		}
	}
	return suppressed
}

// hysteresis applies the double threshold and 8-neighbour edge tracking.
func hysteresis(suppressed []float64, width, height int, lowRatio, highRatio float64) *Buffer {
	result := NewBuffer(width, height, Gray, Uint8Clamped)
	if len(suppressed) == 0 {
		return result
	}

	peak := floats.Max(suppressed)
	low := lowRatio * peak
	high := highRatio * peak

	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x
			val := suppressed[i]
			switch {
			case val < low:
				continue
			case val > high:
				result.Pix[i] = edgeValue
			case hasStrongNeighbor(suppressed, i, width, high):
				result.Pix[i] = edgeValue
			}
		}
	}
	return result
}

// hasStrongNeighbor reports whether any 8-neighbour of interior pixel i is above high.
func hasStrongNeighbor(suppressed []float64, i, width int, high float64) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if suppressed[i+dy*width+dx] > high {
				return true
			}
		}
	}
	return false
}

package imaging

import (
	"fmt"
	"math"
)

// GaussianBlur blurs every channel of src with a separable Gaussian of the
// given radius: a horizontal pass followed by a vertical pass, both finished
// as kind.
func GaussianBlur(src *Buffer, radius float64, kind Kind) (*Buffer, error) {
	horizontal, vertical := GaussianKernels(radius)
	tmp, err := Convolve(horizontal, src, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to apply horizontal blur: %w", err)
	}
	out, err := Convolve(vertical, tmp, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to apply vertical blur: %w", err)
	}
	return out, nil
}

// SobelGradient returns the Sobel gradient magnitude of src as an RGBA
// Uint8Clamped buffer.
//
// The image is blurred (Uint8Clamped) with the given radius, converted to
// luma, and convolved with SobelX and SobelY into unclamped Float32 buffers so
// signed responses survive. The magnitude sqrt(gx² + gy²) is clamped to
// [0, 255] and replicated into R, G and B with opaque alpha.
func SobelGradient(src *Buffer, gaussianRadius float64) (*Buffer, error) {
	blurred, err := GaussianBlur(src, gaussianRadius, Uint8Clamped)
	if err != nil {
		return nil, err
	}
	gray, err := Grayscale(blurred)
	if err != nil {
		return nil, err
	}
	gx, gy, err := sobel(gray)
	if err != nil {
		return nil, err
	}

	magnitude := NewBuffer(gray.Width, gray.Height, Gray, Uint8Clamped)
	for i := range magnitude.Pix {
		magnitude.Pix[i] = Uint8Clamped.finish(math.Hypot(float64(gx.Pix[i]), float64(gy.Pix[i])))
	}
	return GrayToRGBA(magnitude)
}

// sobel convolves a gray buffer with both Sobel kernels.
func sobel(gray *Buffer) (gx, gy *Buffer, err error) {
	gx, err = Convolve(SobelX(), gray, Float32)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute x gradient: %w", err)
	}
	gy, err = Convolve(SobelY(), gray, Float32)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute y gradient: %w", err)
	}
	return gx, gy, nil
}

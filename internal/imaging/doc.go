// Package imaging provides the pixel-level operations of the vision toolkit:
// a generic convolution engine, kernel builders, Gaussian blur, Sobel
// gradients, Canny edge detection and color conversions.
//
// All operations work on Buffer, a flat row-major pixel array with
// interleaved channels. (0,0) is the top-left pixel, X increases rightward
// and Y increases downward. Sample index of channel c at (x, y) is
// (y*Width + x)*channels + c.
//
// # Sample Kinds
//
// Every operation that writes a buffer is told how to finish its values
// through a Kind:
//   - Uint8Clamped, Int32Clamped: rounded to nearest (half up), clamped to [0, 255]
//   - Int32: truncated toward zero, unbounded
//   - Float32: stored as computed
//   - Float32Clamped: clamped to [0, 255], not rounded
//
// Intermediate results that must keep sign or fractions, such as Sobel
// responses, use Float32.
//
// # Borders
//
// Convolution replicates the nearest border row and column for reads outside
// the image. Canny never marks border pixels as edges.
//
// # Thread Safety
//
// Operations never modify their inputs and keep no state between calls, so
// they may be called concurrently. Per-row work is spread over GOMAXPROCS
// goroutines; results do not depend on scheduling. ImageCache is safe for
// concurrent use.
//
// # Error Handling
//
// Malformed input is reported through the sentinel errors ErrShapeMismatch,
// ErrKernelShape, ErrFormat and ErrInvalidOptions, wrapped with context.
// Out-of-range reads during convolution are clamped, never errors.
package imaging

package imaging

import "errors"

// Sentinel errors returned by the pixel operations. Callers should match them
// with errors.Is; the returned errors carry the offending geometry as context.
var (
	// ErrShapeMismatch indicates a buffer whose sample count does not equal
	// width*height*channels.
	ErrShapeMismatch = errors.New("imaging: buffer shape mismatch")

	// ErrKernelShape indicates a kernel with even or non-positive dimensions,
	// or whose matrix length differs from width*height.
	ErrKernelShape = errors.New("imaging: invalid kernel shape")

	// ErrFormat indicates a buffer format the operation does not accept.
	ErrFormat = errors.New("imaging: unsupported buffer format")

	// ErrInvalidOptions indicates out-of-range tuning parameters.
	ErrInvalidOptions = errors.New("imaging: invalid options")
)

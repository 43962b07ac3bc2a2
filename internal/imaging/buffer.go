package imaging

import (
	"fmt"
	"math"
)

// Format fixes the number of interleaved channels of a Buffer.
type Format uint8

const (
	// Gray is a single-channel buffer.
	Gray Format = iota
	// RGB is a 3-channel buffer.
	RGB
	// RGBA is a 4-channel buffer.
	RGBA
)

// Channels returns the channel count for the format, or 0 if the format is unknown.
func (f Format) Channels() int {
	switch f {
	case Gray:
		return 1
	case RGB:
		return 3
	case RGBA:
		return 4
	}
	return 0
}

func (f Format) String() string {
	switch f {
	case Gray:
		return "gray"
	case RGB:
		return "rgb"
	case RGBA:
		return "rgba"
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// Kind fixes how values are finished when an operation writes them into a Buffer.
//
//   - Uint8Clamped, Int32Clamped: round to nearest (half up), clamp to [0, 255]
//   - Int32: truncate toward zero, no clamping
//   - Float32: stored unchanged
//   - Float32Clamped: clamp to [0, 255] without rounding
//
// The unclamped kinds allow intermediate results such as signed gradients.
type Kind uint8

const (
	Uint8Clamped Kind = iota
	Int32
	Int32Clamped
	Float32
	Float32Clamped
)

func (k Kind) String() string {
	switch k {
	case Uint8Clamped:
		return "uint8_clamped"
	case Int32:
		return "int32"
	case Int32Clamped:
		return "int32_clamped"
	case Float32:
		return "float32"
	case Float32Clamped:
		return "float32_clamped"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind maps the names returned by Kind.String back to a Kind.
func ParseKind(s string) (Kind, error) {
	for k := Uint8Clamped; k <= Float32Clamped; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown sample kind %q", ErrInvalidOptions, s)
}

// finish converts an accumulated value into the stored representation of k.
func (k Kind) finish(v float64) float32 {
	switch k {
	case Uint8Clamped, Int32Clamped:
		return float32(clampSample(math.Floor(v + 0.5)))
	case Int32:
		return float32(math.Trunc(v))
	case Float32Clamped:
		return float32(clampSample(v))
	}
	return float32(v)
}

// Buffer is a flat, row-major pixel buffer with interleaved channels.
//
// Samples are held as float32 whatever the Kind; the Kind only records how the
// producing operation finished them, so a Uint8Clamped buffer holds integral
// values in [0, 255]. A valid buffer satisfies
// len(Pix) == Width*Height*Format.Channels().
//
// Operations never modify their source buffers; every result is a new Buffer.
type Buffer struct {
	Width  int
	Height int
	Format Format
	Kind   Kind
	Pix    []float32
}

// NewBuffer allocates a zeroed buffer of the given geometry.
func NewBuffer(width, height int, format Format, kind Kind) *Buffer {
	return &Buffer{
		Width:  width,
		Height: height,
		Format: format,
		Kind:   kind,
		Pix:    make([]float32, width*height*format.Channels()),
	}
}

// FromBytes wraps 8-bit samples (as found in canvas ImageData or image.NRGBA.Pix)
// in a Uint8Clamped buffer. The samples are copied.
//
// Returns ErrShapeMismatch if len(pix) != width*height*format.Channels().
func FromBytes(pix []uint8, width, height int, format Format) (*Buffer, error) {
	b := &Buffer{Width: width, Height: height, Format: format, Kind: Uint8Clamped}
	if err := checkShape(len(pix), width, height, format); err != nil {
		return nil, err
	}
	b.Pix = make([]float32, len(pix))
	for i, v := range pix {
		b.Pix[i] = float32(v)
	}
	return b, nil
}

// Validate reports whether the buffer satisfies its shape invariant.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrShapeMismatch)
	}
	return checkShape(len(b.Pix), b.Width, b.Height, b.Format)
}

func checkShape(n, width, height int, format Format) error {
	channels := format.Channels()
	if channels == 0 {
		return fmt.Errorf("%w: %s", ErrFormat, format)
	}
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: negative dimensions %dx%d", ErrShapeMismatch, width, height)
	}
	if want := width * height * channels; n != want {
		return fmt.Errorf("%w: %d samples, want %d (%dx%dx%d)",
			ErrShapeMismatch, n, want, width, height, channels)
	}
	return nil
}

// requireFormat validates b and checks that its format is one of allowed.
func requireFormat(b *Buffer, allowed ...Format) error {
	if err := b.Validate(); err != nil {
		return err
	}
	for _, f := range allowed {
		if b.Format == f {
			return nil
		}
	}
	return fmt.Errorf("%w: got %s, want one of %v", ErrFormat, b.Format, allowed)
}

// Bytes returns the samples rounded and clamped to 8 bits.
func (b *Buffer) Bytes() []uint8 {
	out := make([]uint8, len(b.Pix))
	for i, v := range b.Pix {
		out[i] = uint8(clampSample(math.Floor(float64(v) + 0.5)))
	}
	return out
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	c := *b
	c.Pix = append([]float32(nil), b.Pix...)
	return &c
}

// clampSample constrains a sample value to [0, 255].
func clampSample(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

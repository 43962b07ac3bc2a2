package imaging

import "fmt"

// Kernel is a rectangular weight matrix stored row-major.
// Width and Height are odd so the kernel has a center tap.
type Kernel struct {
	Width  int
	Height int
	Matrix []float64
}

// NewKernel builds a kernel from a copy of matrix.
//
// Returns ErrKernelShape if a dimension is even or non-positive, or if
// len(matrix) != width*height.
func NewKernel(width, height int, matrix []float64) (*Kernel, error) {
	k := &Kernel{
		Width:  width,
		Height: height,
		Matrix: append([]float64(nil), matrix...),
	}
	if err := k.validate(); err != nil {
		return nil, err
	}
	return k, nil
}

// Identity returns the 1x1 kernel [1].
func Identity() *Kernel {
	return &Kernel{Width: 1, Height: 1, Matrix: []float64{1}}
}

// Transpose returns the kernel mirrored across its main diagonal.
func (k *Kernel) Transpose() *Kernel {
	t := &Kernel{Width: k.Height, Height: k.Width, Matrix: make([]float64, len(k.Matrix))}
	for y := 0; y < k.Height; y++ {
		for x := 0; x < k.Width; x++ {
			t.Matrix[x*t.Width+y] = k.Matrix[y*k.Width+x]
		}
	}
	return t
}

func (k *Kernel) validate() error {
	if k == nil {
		return fmt.Errorf("%w: nil kernel", ErrKernelShape)
	}
	if k.Width <= 0 || k.Height <= 0 || k.Width%2 == 0 || k.Height%2 == 0 {
		return fmt.Errorf("%w: %dx%d, dimensions must be odd and positive",
			ErrKernelShape, k.Width, k.Height)
	}
	if len(k.Matrix) != k.Width*k.Height {
		return fmt.Errorf("%w: %d weights for a %dx%d kernel",
			ErrKernelShape, len(k.Matrix), k.Width, k.Height)
	}
	return nil
}

// Convolve applies k to every channel of src and returns a new buffer with the
// geometry and format of src, finished according to kind.
//
// For each output sample the weighted sum is taken over the kernel footprint
// centered on the pixel. Reads that fall outside the image are replaced by the
// nearest border row and column (replicate-edge), so a constant image stays
// constant under any normalized kernel.
//
// Rows are computed in parallel bands; the result is identical to a
// sequential pass.
func Convolve(k *Kernel, src *Buffer, kind Kind) (*Buffer, error) {
	if err := k.validate(); err != nil {
		return nil, err
	}
	if err := src.Validate(); err != nil {
		return nil, err
	}

	dst := NewBuffer(src.Width, src.Height, src.Format, kind)
	w, h := src.Width, src.Height
	channels := src.Format.Channels()
	halfW, halfH := k.Width/2, k.Height/2

	forEachRowBand(h, func(y0, y1 int) {
		acc := make([]float64, channels)
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				clear(acc)
				for row := -halfH; row <= halfH; row++ {
					sy := clamp(y+row, 0, h-1)
					weights := k.Matrix[(row+halfH)*k.Width : (row+halfH+1)*k.Width]
					for col := -halfW; col <= halfW; col++ {
						f := weights[col+halfW]
						if f == 0 {
							continue
						}
						sx := clamp(x+col, 0, w-1)
						offset := (sy*w + sx) * channels
						for c := 0; c < channels; c++ {
							acc[c] += f * float64(src.Pix[offset+c])
						}
					}
				}
				out := (y*w + x) * channels
				for c := 0; c < channels; c++ {
					dst.Pix[out+c] = kind.finish(acc[c])
				}
			}
		}
	})

	return dst, nil
}

// clamp constrains an index to [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

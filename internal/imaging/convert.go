package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// FromImage converts any image.Image into an RGBA Uint8Clamped buffer with
// non-premultiplied samples, the layout of canvas ImageData.
func FromImage(img image.Image) *Buffer {
	nrgba := imaging.Clone(img)
	w, h := nrgba.Bounds().Dx(), nrgba.Bounds().Dy()
	buf := NewBuffer(w, h, RGBA, Uint8Clamped)
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		out := buf.Pix[y*w*4 : (y+1)*w*4]
		for i, v := range row {
			out[i] = float32(v)
		}
	}
	return buf
}

// Resize rescales img to width x height with bilinear filtering and returns
// the result as an RGBA Uint8Clamped buffer.
func Resize(img image.Image, width, height int) *Buffer {
	return FromImage(imaging.Resize(img, width, height, imaging.Linear))
}

// Image converts the buffer to an 8-bit image. Gray buffers become
// *image.Gray; RGB and RGBA buffers become *image.NRGBA, with RGB given
// opaque alpha. Samples are rounded and clamped.
func (b *Buffer) Image() (image.Image, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	rect := image.Rect(0, 0, b.Width, b.Height)
	samples := b.Bytes()

	switch b.Format {
	case Gray:
		img := image.NewGray(rect)
		copy(img.Pix, samples)
		return img, nil
	case RGB:
		img := image.NewNRGBA(rect)
		for i := 0; i < b.Width*b.Height; i++ {
			copy(img.Pix[i*4:i*4+3], samples[i*3:i*3+3])
			img.Pix[i*4+3] = 255
		}
		return img, nil
	default:
		img := image.NewNRGBA(rect)
		copy(img.Pix, samples)
		return img, nil
	}
}

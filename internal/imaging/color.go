package imaging

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Luma weights used by Grayscale.
const (
	lumaR = 0.2989
	lumaG = 0.5870
	lumaB = 0.1140
)

// Grayscale converts src to a single-channel Uint8Clamped buffer.
//
// RGB and RGBA pixels are reduced to 0.2989*R + 0.5870*G + 0.1140*B, rounded
// and clamped to [0, 255]; alpha is ignored. Gray input is copied.
func Grayscale(src *Buffer) (*Buffer, error) {
	if err := requireFormat(src, Gray, RGB, RGBA); err != nil {
		return nil, err
	}

	dst := NewBuffer(src.Width, src.Height, Gray, Uint8Clamped)
	channels := src.Format.Channels()
	forEachRowBand(src.Height, func(y0, y1 int) {
		for i := y0 * src.Width; i < y1*src.Width; i++ {
			p := src.Pix[i*channels : i*channels+channels]
			if channels == 1 {
				dst.Pix[i] = Uint8Clamped.finish(float64(p[0]))
				continue
			}
			luma := lumaR*float64(p[0]) + lumaG*float64(p[1]) + lumaB*float64(p[2])
			dst.Pix[i] = Uint8Clamped.finish(luma)
		}
	})
	return dst, nil
}

// GrayToRGBA expands a Gray buffer into RGBA of the same kind, replicating the
// sample into R, G and B and setting alpha to 255.
func GrayToRGBA(src *Buffer) (*Buffer, error) {
	if err := requireFormat(src, Gray); err != nil {
		return nil, err
	}
	dst := NewBuffer(src.Width, src.Height, RGBA, src.Kind)
	for i, v := range src.Pix {
		o := i * 4
		dst.Pix[o] = v
		dst.Pix[o+1] = v
		dst.Pix[o+2] = v
		dst.Pix[o+3] = 255
	}
	return dst, nil
}

// ColorRange is an inclusive per-channel RGB range.
type ColorRange struct {
	MinR uint8 `json:"min_r" yaml:"min_r"`
	MaxR uint8 `json:"max_r" yaml:"max_r"`
	MinG uint8 `json:"min_g" yaml:"min_g"`
	MaxG uint8 `json:"max_g" yaml:"max_g"`
	MinB uint8 `json:"min_b" yaml:"min_b"`
	MaxB uint8 `json:"max_b" yaml:"max_b"`
}

// Contains reports whether the color lies within the range on every channel.
func (r ColorRange) Contains(red, green, blue float32) bool {
	return red >= float32(r.MinR) && red <= float32(r.MaxR) &&
		green >= float32(r.MinG) && green <= float32(r.MaxG) &&
		blue >= float32(r.MinB) && blue <= float32(r.MaxB)
}

// Validate checks that every minimum is not above its maximum.
func (r ColorRange) Validate() error {
	if r.MinR > r.MaxR || r.MinG > r.MaxG || r.MinB > r.MaxB {
		return fmt.Errorf("%w: empty color range %+v", ErrInvalidOptions, r)
	}
	return nil
}

// ThresholdColor returns a Gray Uint8Clamped mask that is 255 where the RGB
// (or RGBA, alpha ignored) pixel of src falls inside rng and 0 elsewhere.
func ThresholdColor(src *Buffer, rng ColorRange) (*Buffer, error) {
	if err := requireFormat(src, RGB, RGBA); err != nil {
		return nil, err
	}

	dst := NewBuffer(src.Width, src.Height, Gray, Uint8Clamped)
	channels := src.Format.Channels()
	forEachRowBand(src.Height, func(y0, y1 int) {
		for i := y0 * src.Width; i < y1*src.Width; i++ {
			o := i * channels
			if rng.Contains(src.Pix[o], src.Pix[o+1], src.Pix[o+2]) {
				dst.Pix[i] = 255
			}
		}
	})
	return dst, nil
}

// RGBToHSV converts 8-bit RGB to hue, saturation and value, each in [0, 1].
func RGBToHSV(r, g, b uint8) (h, s, v float64) {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	h, s, v = c.Hsv()
	return h / 360, s, v
}

// HSVToRGB converts hue, saturation and value in [0, 1] to unrounded RGB
// components in [0, 255].
func HSVToRGB(h, s, v float64) (r, g, b float64) {
	c := colorful.Hsv(h*360, s, v)
	return c.R * 255, c.G * 255, c.B * 255
}

// RGBAToHSVA converts an RGBA buffer to a Float32 RGBA-shaped buffer holding
// (h, s, v, a) per pixel, with h, s and v in [0, 1] and alpha copied.
func RGBAToHSVA(src *Buffer) (*Buffer, error) {
	if err := requireFormat(src, RGBA); err != nil {
		return nil, err
	}
	dst := NewBuffer(src.Width, src.Height, RGBA, Float32)
	for o := 0; o < len(src.Pix); o += 4 {
		h, s, v := RGBToHSV(byteSample(src.Pix[o]), byteSample(src.Pix[o+1]), byteSample(src.Pix[o+2]))
		dst.Pix[o] = float32(h)
		dst.Pix[o+1] = float32(s)
		dst.Pix[o+2] = float32(v)
		dst.Pix[o+3] = src.Pix[o+3]
	}
	return dst, nil
}

// HSVAToRGBA is the inverse of RGBAToHSVA and yields a Uint8Clamped buffer.
func HSVAToRGBA(src *Buffer) (*Buffer, error) {
	if err := requireFormat(src, RGBA); err != nil {
		return nil, err
	}
	dst := NewBuffer(src.Width, src.Height, RGBA, Uint8Clamped)
	for o := 0; o < len(src.Pix); o += 4 {
		r, g, b := HSVToRGB(float64(src.Pix[o]), float64(src.Pix[o+1]), float64(src.Pix[o+2]))
		dst.Pix[o] = Uint8Clamped.finish(r)
		dst.Pix[o+1] = Uint8Clamped.finish(g)
		dst.Pix[o+2] = Uint8Clamped.finish(b)
		dst.Pix[o+3] = Uint8Clamped.finish(float64(src.Pix[o+3]))
	}
	return dst, nil
}

func byteSample(v float32) uint8 {
	return uint8(Uint8Clamped.finish(float64(v)))
}

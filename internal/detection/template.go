package detection

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"golang.org/x/image/vector"

	"github.com/ironsheep/vision-tools-mcp/internal/imaging"
)

// octagonSize is the edge length of the rendered reference octagon.
const octagonSize = 600

// octagonRed sits well inside DefaultStopColor.
var octagonRed = color.RGBA{R: 255, A: 255}

// Template is a reference silhouette that detected clusters are compared
// against.
//
// The source image is produced on first use and kept for the life of the
// Template; masks are rescaled from it per call and not retained. A Template
// is safe for concurrent use.
type Template struct {
	load func() (image.Image, error)

	once sync.Once
	img  image.Image
	err  error
}

// NewTemplate wraps a loader that produces the silhouette image. The loader
// runs at most once, on the first call to Mask.
func NewTemplate(load func() (image.Image, error)) *Template {
	return &Template{load: load}
}

// NewImageTemplate wraps an already decoded silhouette image.
func NewImageTemplate(img image.Image) *Template {
	return NewTemplate(func() (image.Image, error) { return img, nil })
}

// NewOctagonTemplate returns the default stop-sign silhouette: a regular red
// octagon on white, 600x600.
func NewOctagonTemplate() *Template {
	return NewTemplate(func() (image.Image, error) {
		return renderOctagon(octagonSize, octagonRed), nil
	})
}

// Image returns the silhouette, loading it on first use.
func (t *Template) Image() (image.Image, error) {
	t.once.Do(func() {
		t.img, t.err = t.load()
		if t.err == nil && t.img == nil {
			t.err = fmt.Errorf("template loader returned no image")
		}
	})
	return t.img, t.err
}

// Mask rescales the silhouette to width x height and thresholds it with rng,
// yielding a Gray mask comparable to a thresholded scene.
func (t *Template) Mask(width, height int, rng imaging.ColorRange) (*imaging.Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid template size %dx%d", width, height)
	}
	img, err := t.Image()
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	return imaging.ThresholdColor(imaging.Resize(img, width, height), rng)
}

// renderOctagon draws a regular octagon inscribed in a size x size square,
// with its flat sides on the square's edges.
func renderOctagon(size int, fill color.Color) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)

	s := float32(size)
	c := s / (2 + math.Sqrt2)

	z := vector.NewRasterizer(size, size)
	z.MoveTo(c, 0)
	z.LineTo(s-c, 0)
	z.LineTo(s, c)
	z.LineTo(s, s-c)
	z.LineTo(s-c, s)
	z.LineTo(c, s)
	z.LineTo(0, s-c)
	z.LineTo(0, c)
	z.ClosePath()
	z.Draw(dst, dst.Bounds(), image.NewUniform(fill), image.Point{})
	return dst
}

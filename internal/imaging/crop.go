package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
)

// EncodedImage is an image serialized for transport as base64 PNG.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Encode serializes img as a base64 PNG.
func Encode(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := imgio.PNGEncoder()(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// EncodeBuffer converts b to an 8-bit image and serializes it as base64 PNG.
func EncodeBuffer(b *Buffer) (*EncodedImage, error) {
	img, err := b.Image()
	if err != nil {
		return nil, err
	}
	return Encode(img)
}

// Crop extracts rect from img. The rectangle is clipped to the image bounds,
// so padded detection regions reaching past an edge are cut at the edge.
//
// Returns an error if rect does not overlap the image.
func Crop(img image.Image, rect image.Rectangle) (*EncodedImage, error) {
	clipped := rect.Add(img.Bounds().Min).Intersect(img.Bounds())
	if clipped.Empty() {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", rect, img.Bounds())
	}
	return Encode(imaging.Crop(img, clipped))
}

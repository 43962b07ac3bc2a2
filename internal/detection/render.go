package detection

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/vision-tools-mcp/internal/imaging"
)

// goldenAngle spreads consecutive label hues around the color wheel.
const goldenAngle = 137.50776405003785

// LabelColor returns a stable display color for a component label. Label 0
// (unlabeled) is black.
func LabelColor(label uint32) colorful.Color {
	if label == 0 {
		return colorful.Color{}
	}
	hue := math.Mod(float64(label)*goldenAngle, 360)
	return colorful.Hsv(hue, 0.85, 0.95)
}

// RenderLineLabels paints the row and column labels of a LineSet into an RGBA
// Uint8Clamped buffer. Each pixel gets the average of its row label color and
// its column label color, so pixels on only one kind of run appear at half
// intensity and unlabeled pixels are black.
func RenderLineLabels(set *LineSet) *imaging.Buffer {
	out := imaging.NewBuffer(set.Width, set.Height, imaging.RGBA, imaging.Uint8Clamped)
	for i := 0; i < set.Width*set.Height; i++ {
		row := LabelColor(set.Rows.Labels[i])
		col := LabelColor(set.Columns.Labels[i])
		o := i * 4
		out.Pix[o] = float32(math.Round((row.R + col.R) / 2 * 255))
		out.Pix[o+1] = float32(math.Round((row.G + col.G) / 2 * 255))
		out.Pix[o+2] = float32(math.Round((row.B + col.B) / 2 * 255))
		out.Pix[o+3] = 255
	}
	return out
}

package main

import (
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"testing"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScene(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 120, 120))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(10, 10, 80, 80), image.NewUniform(color.RGBA{220, 20, 30, 255}), image.Point{}, draw.Src)

	path := filepath.Join(t.TempDir(), "in.png")
	require.NoError(t, imgio.Save(path, img, imgio.PNGEncoder()))
	return path
}

func TestRunRender(t *testing.T) {
	t.Setenv("VISION_MCP_CONFIG", "")
	in := writeScene(t)

	for _, op := range []string{"blur", "sobel", "canny", "lines", "stop"} {
		t.Run(op, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), op+".png")
			require.NoError(t, runRender([]string{"-op", op, "-in", in, "-out", out}))

			img, err := imgio.Open(out)
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 120, 120), img.Bounds())
		})
	}
}

func TestRunRender_Resize(t *testing.T) {
	t.Setenv("VISION_MCP_CONFIG", "")
	out := filepath.Join(t.TempDir(), "small.png")
	require.NoError(t, runRender([]string{"-op", "blur", "-in", writeScene(t), "-out", out, "-width", "60"}))

	img, err := imgio.Open(out)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 60, 60), img.Bounds())
}

func TestRunRender_Errors(t *testing.T) {
	t.Setenv("VISION_MCP_CONFIG", "")
	in := writeScene(t)

	assert.Error(t, runRender([]string{"-op", "canny"}), "missing -in")
	assert.Error(t, runRender([]string{"-op", "warp", "-in", in}))
	assert.Error(t, runRender([]string{"-in", filepath.Join(t.TempDir(), "missing.png")}))
	assert.Error(t, runRender([]string{"-in", in, "-config", filepath.Join(t.TempDir(), "missing.yaml")}))
}

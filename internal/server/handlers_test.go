package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/vision-tools-mcp/internal/config"
	"github.com/ironsheep/vision-tools-mcp/internal/detection"
	"github.com/ironsheep/vision-tools-mcp/internal/imaging"
)

// createTestImageFile creates a uniform test image file and returns its path
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	return createSceneFile(t, width, height, c, image.Rectangle{}, nil)
}

// createSceneFile writes a PNG filled with bg and, if fg is non-nil, a filled
// rectangle of fg.
func createSceneFile(t *testing.T, width, height int, bg color.Color, rect image.Rectangle, fg color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	if fg != nil {
		draw.Draw(img, rect, image.NewUniform(fg), image.Point{}, draw.Src)
	}

	path := filepath.Join(t.TempDir(), "scene.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

// callTool runs a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *MCPResponse {
	t.Helper()

	paramsJSON, err := json.Marshal(map[string]interface{}{
		"name":      name,
		"arguments": args,
	})
	require.NoError(t, err)

	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	require.NotNil(t, resp)
	return resp
}

// callToolResult runs a tool that must succeed and decodes its text content into v.
func callToolResult(t *testing.T, s *Server, name string, args map[string]interface{}, v interface{}) {
	t.Helper()

	resp := callTool(t, s, name, args)
	require.Nil(t, resp.Error, "unexpected error: %+v", resp.Error)

	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	content, ok := result["content"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, content, 1)
	assert.Equal(t, "text", content[0]["type"])

	text, ok := content[0]["text"].(string)
	require.True(t, ok)
	require.NoError(t, json.Unmarshal([]byte(text), v))
}

// decodeEncoded turns a tool's base64 PNG back into an image.
func decodeEncoded(t *testing.T, enc *imaging.EncodedImage) image.Image {
	t.Helper()

	require.NotNil(t, enc)
	assert.Equal(t, "image/png", enc.MimeType)
	data, err := base64.StdEncoding.DecodeString(enc.ImageBase64)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, enc.Width, img.Bounds().Dx())
	assert.Equal(t, enc.Height, img.Bounds().Dy())
	return img
}

func gray8(img image.Image, x, y int) uint8 {
	return color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
}

var stopRed = color.RGBA{220, 20, 30, 255}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 100, 80, color.RGBA{255, 0, 0, 255})

	var info imaging.ImageInfo
	callToolResult(t, s, "image_load", map[string]interface{}{"path": imgPath}, &info)
	assert.Equal(t, 100, info.Width)
	assert.Equal(t, 80, info.Height)
	assert.Equal(t, "png", info.Format)
	assert.Equal(t, 100*80*4, info.Samples)
	assert.Positive(t, info.FileSizeBytes)
}

func TestHandleToolsCall_ImageDimensions(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 200, 150, color.RGBA{0, 255, 0, 255})

	var dims imaging.DimensionsResult
	callToolResult(t, s, "image_dimensions", map[string]interface{}{"path": imgPath}, &dims)
	assert.Equal(t, imaging.DimensionsResult{Width: 200, Height: 150}, dims)
}

func TestHandleToolsCall_Errors(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 20, 20, color.White)

	tests := []struct {
		name     string
		tool     string
		args     map[string]interface{}
		wantCode int
	}{
		{"unknown tool", "nonexistent_tool", map[string]interface{}{}, -32000},
		{"missing file", "image_load", map[string]interface{}{"path": "/nonexistent/image.png"}, -32000},
		{"missing path", "image_dimensions", map[string]interface{}{}, -32000},
		{"even kernel", "image_convolve", map[string]interface{}{
			"path": imgPath, "kernel": []float64{1, 0, 0, 1}, "kernel_width": 2, "kernel_height": 2,
		}, -32000},
		{"kernel length", "image_convolve", map[string]interface{}{
			"path": imgPath, "kernel": []float64{1, 2}, "kernel_width": 3, "kernel_height": 3,
		}, -32000},
		{"unknown kind", "image_gaussian_blur", map[string]interface{}{"path": imgPath, "kind": "uint16"}, -32000},
		{"inverted ratios", "image_canny", map[string]interface{}{
			"path": imgPath, "low_ratio": 0.5, "high_ratio": 0.1,
		}, -32000},
		{"bad argument type", "image_load", map[string]interface{}{"path": 12}, -32000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, tt.tool, tt.args)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, "Tool execution failed", resp.Error.Message)
			assert.NotEmpty(t, resp.Error.Data)
		})
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New()
	resp := s.handleToolsCall(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Params:  json.RawMessage(`["not", "an", "object"]`),
	})
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32602, resp.Error.Code)
}

func TestHandleToolsCall_Convolve(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 16, 12, color.RGBA{100, 150, 200, 255})

	t.Run("identity", func(t *testing.T) {
		var out imaging.EncodedImage
		callToolResult(t, s, "image_convolve", map[string]interface{}{
			"path":          imgPath,
			"kernel":        []float64{0, 0, 0, 0, 1, 0, 0, 0, 0},
			"kernel_width":  3,
			"kernel_height": 3,
		}, &out)

		img := decodeEncoded(t, &out)
		r, g, b, a := img.At(5, 5).RGBA()
		assert.Equal(t, []uint32{100, 150, 200, 255}, []uint32{r >> 8, g >> 8, b >> 8, a >> 8})
	})

	t.Run("grayscale box", func(t *testing.T) {
		box := make([]float64, 9)
		for i := range box {
			box[i] = 1.0 / 9
		}
		var out imaging.EncodedImage
		callToolResult(t, s, "image_convolve", map[string]interface{}{
			"path":          imgPath,
			"kernel":        box,
			"kernel_width":  3,
			"kernel_height": 3,
			"grayscale":     true,
		}, &out)

		img := decodeEncoded(t, &out)
		// 0.2989*100 + 0.5870*150 + 0.1140*200 = 140.84
		assert.InDelta(t, 141, int(gray8(img, 8, 6)), 1)
	})
}

func TestHandleToolsCall_GaussianBlur(t *testing.T) {
	s := New()
	imgPath := createSceneFile(t, 40, 40, color.Black, image.Rect(20, 0, 40, 40), color.White)

	var out imaging.EncodedImage
	callToolResult(t, s, "image_gaussian_blur", map[string]interface{}{
		"path":   imgPath,
		"radius": 3,
	}, &out)

	img := decodeEncoded(t, &out)
	assert.Equal(t, uint8(0), gray8(img, 2, 20), "far from the step stays black")
	assert.Equal(t, uint8(255), gray8(img, 37, 20), "far from the step stays white")
	mid := gray8(img, 20, 20)
	assert.True(t, mid > 0 && mid < 255, "step is smoothed, got %d", mid)
}

func TestHandleToolsCall_Sobel(t *testing.T) {
	s := New()
	imgPath := createSceneFile(t, 40, 40, color.Black, image.Rect(20, 0, 40, 40), color.White)

	var out imaging.EncodedImage
	callToolResult(t, s, "image_sobel", map[string]interface{}{
		"path":            imgPath,
		"gaussian_radius": 0,
	}, &out)

	img := decodeEncoded(t, &out)
	assert.Equal(t, uint8(0), gray8(img, 5, 20))
	assert.Equal(t, uint8(255), gray8(img, 20, 20), "gradient at the step saturates")
}

func TestHandleToolsCall_Canny(t *testing.T) {
	s := New()
	imgPath := createSceneFile(t, 60, 60, color.Black, image.Rect(30, 0, 60, 60), color.White)

	var out imaging.EncodedImage
	callToolResult(t, s, "image_canny", map[string]interface{}{"path": imgPath}, &out)
	img := decodeEncoded(t, &out)

	for y := 1; y < 59; y++ {
		edge := gray8(img, 29, y) == 255 || gray8(img, 30, y) == 255
		assert.True(t, edge, "row %d has no edge at the step", y)
		assert.Equal(t, uint8(0), gray8(img, 10, y))
	}
	for x := 0; x < 60; x++ {
		assert.Equal(t, uint8(0), gray8(img, x, 0), "border rows are never edges")
	}
}

func TestHandleToolsCall_DetectLines(t *testing.T) {
	s := New()
	imgPath := createSceneFile(t, 100, 100, color.Black, image.Rect(30, 30, 70, 60), color.White)

	var result LinesResult
	callToolResult(t, s, "image_detect_lines", map[string]interface{}{
		"path":          imgPath,
		"render_labels": true,
	}, &result)

	assert.Equal(t, len(result.Lines), result.Count)
	assert.Positive(t, result.Horizontal)
	assert.Positive(t, result.Vertical)
	assert.Equal(t, result.Count, result.Horizontal+result.Vertical)
	for _, l := range result.Lines {
		assert.GreaterOrEqual(t, l.Size, detection.DefaultMinLineSize)
	}

	labels := decodeEncoded(t, result.Labels)
	assert.Equal(t, 100, labels.Bounds().Dx())

	t.Run("min size filters everything", func(t *testing.T) {
		var filtered LinesResult
		callToolResult(t, s, "image_detect_lines", map[string]interface{}{
			"path":     imgPath,
			"min_size": 1000,
		}, &filtered)
		assert.Zero(t, filtered.Count)
		assert.NotNil(t, filtered.Lines, "lines is an empty array, not null")
		assert.Nil(t, filtered.Labels)
	})
}

func TestHandleToolsCall_DetectStopSigns(t *testing.T) {
	s := New()
	imgPath := createSceneFile(t, 300, 300, color.White, image.Rect(50, 60, 150, 160), stopRed)

	var result StopSignsResult
	callToolResult(t, s, "image_detect_stop_signs", map[string]interface{}{
		"path":               imgPath,
		"include_candidates": true,
		"include_crops":      true,
	}, &result)

	require.Equal(t, 1, result.Count)
	assert.Equal(t, []detection.Region{{X: 47, Y: 57, Width: 106, Height: 106}}, result.Regions)

	require.Len(t, result.Candidates, 1)
	assert.True(t, result.Candidates[0].Accepted)
	assert.InDelta(t, 0.177, result.Candidates[0].Score, 0.01)

	require.Len(t, result.Crops, 1)
	crop := decodeEncoded(t, result.Crops[0])
	assert.Equal(t, 106, crop.Bounds().Dx())
	assert.Equal(t, 106, crop.Bounds().Dy())

	t.Run("stricter threshold rejects", func(t *testing.T) {
		var strict StopSignsResult
		callToolResult(t, s, "image_detect_stop_signs", map[string]interface{}{
			"path":              imgPath,
			"max_dissimilarity": 0.1,
		}, &strict)
		assert.Zero(t, strict.Count)
		assert.Empty(t, strict.Regions)
		assert.Nil(t, strict.Candidates)
		assert.Nil(t, strict.Crops)
	})
}

func TestHandleToolsCall_ConfigDefaults(t *testing.T) {
	imgPath := createSceneFile(t, 300, 300, color.White, image.Rect(50, 60, 150, 160), stopRed)

	cfg := config.Default()
	cfg.StopSign.MinClusterWidth = 150
	s := NewWithConfig(cfg)

	var result StopSignsResult
	callToolResult(t, s, "image_detect_stop_signs", map[string]interface{}{"path": imgPath}, &result)
	assert.Zero(t, result.Count, "configured minimum width excludes the square")
}

func TestValueOr(t *testing.T) {
	v := 3.5
	assert.Equal(t, 3.5, valueOr(&v, 1.0))
	assert.Equal(t, 1.0, valueOr(nil, 1.0))

	b := false
	assert.False(t, valueOr(&b, true))
}

func TestParseKind_Default(t *testing.T) {
	kind, err := parseKind("")
	require.NoError(t, err)
	assert.Equal(t, imaging.Uint8Clamped, kind)

	kind, err = parseKind("float32")
	require.NoError(t, err)
	assert.Equal(t, imaging.Float32, kind)
}

package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()
	require.NotEmpty(t, tools)

	expectedTools := []string{
		"image_load",
		"image_dimensions",
		"image_convolve",
		"image_gaussian_blur",
		"image_sobel",
		"image_canny",
		"image_detect_lines",
		"image_detect_stop_signs",
	}

	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, expectedTools, names)
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			assert.NotEmpty(t, tool.Name)
			assert.NotEmpty(t, tool.Description)
			require.NotNil(t, tool.InputSchema)
			assert.Equal(t, "object", tool.InputSchema["type"])

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			require.True(t, ok, "InputSchema properties should be a map")

			required, ok := tool.InputSchema["required"].([]string)
			require.True(t, ok, "'required' should be a string slice")
			assert.Contains(t, required, "path")
			for _, name := range required {
				assert.Contains(t, props, name, "required %q is not a property", name)
			}
		})
	}
}

// Every optional argument a handler reads must be advertised.
func TestToolDefinitions_Properties(t *testing.T) {
	tests := map[string][]string{
		"image_convolve":          {"kernel", "kernel_width", "kernel_height", "kind", "grayscale"},
		"image_gaussian_blur":     {"radius", "kind"},
		"image_sobel":             {"gaussian_radius"},
		"image_canny":             {"gaussian_radius", "low_ratio", "high_ratio"},
		"image_detect_lines":      {"gaussian_radius", "low_ratio", "high_ratio", "min_size", "include_cross", "render_labels"},
		"image_detect_stop_signs": {"max_dissimilarity", "include_candidates", "include_crops"},
	}

	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}

	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			tool, ok := toolMap[name]
			require.True(t, ok)
			props := tool.InputSchema["properties"].(map[string]interface{})
			for _, p := range want {
				assert.Contains(t, props, p)
			}
		})
	}
}

func TestToolDefinitions_KindEnum(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		props := tool.InputSchema["properties"].(map[string]interface{})
		kind, ok := props["kind"].(map[string]interface{})
		if !ok {
			continue
		}
		for _, name := range kind["enum"].([]string) {
			_, err := parseKind(name)
			assert.NoError(t, err, "%s advertises kind %q", tool.Name, name)
		}
	}
}

func TestToolDefinitions_JSON(t *testing.T) {
	data, err := json.Marshal(GetToolDefinitions())
	require.NoError(t, err)

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, tool := range decoded {
		assert.Contains(t, tool, "inputSchema")
	}
}

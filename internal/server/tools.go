package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is the schema shared by every tool's image path argument.
var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the image file",
}

// cannyProperties adds the optional Canny overrides to props.
func cannyProperties(props map[string]interface{}) map[string]interface{} {
	props["gaussian_radius"] = map[string]interface{}{
		"type":        "number",
		"description": "Gaussian blur radius applied before gradients. Defaults to the configured value",
	}
	props["low_ratio"] = map[string]interface{}{
		"type":        "number",
		"description": "Low hysteresis threshold as a fraction of the strongest edge (0-1)",
	}
	props["high_ratio"] = map[string]interface{}{
		"type":        "number",
		"description": "High hysteresis threshold as a fraction of the strongest edge (0-1)",
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and file size. The decoded image is cached for subsequent operations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},

		// Filters
		{
			Name:        "image_convolve",
			Description: "Convolve an image with a custom kernel and return the result as base64-encoded PNG. Borders replicate the nearest edge pixel.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"kernel": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "number"},
						"description": "Kernel weights in row-major order (kernel_width * kernel_height values)",
					},
					"kernel_width": map[string]interface{}{
						"type":        "integer",
						"description": "Kernel width (odd)",
					},
					"kernel_height": map[string]interface{}{
						"type":        "integer",
						"description": "Kernel height (odd)",
					},
					"kind": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"uint8_clamped", "int32", "int32_clamped", "float32", "float32_clamped"},
						"description": "How output samples are finished. Default uint8_clamped",
						"default":     "uint8_clamped",
					},
					"grayscale": map[string]interface{}{
						"type":        "boolean",
						"description": "Convert to luminance before convolving. Default false",
						"default":     false,
					},
				},
				"required": []string{"path", "kernel", "kernel_width", "kernel_height"},
			},
		},
		{
			Name:        "image_gaussian_blur",
			Description: "Blur an image with a separable Gaussian kernel (sigma = radius / 3) and return it as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"radius": map[string]interface{}{
						"type":        "number",
						"description": "Blur radius in pixels. Defaults to the configured Canny radius",
					},
					"kind": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"uint8_clamped", "int32", "int32_clamped", "float32", "float32_clamped"},
						"description": "How output samples are finished. Default uint8_clamped",
						"default":     "uint8_clamped",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_sobel",
			Description: "Compute the Sobel gradient magnitude of an image as a grayscale PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"gaussian_radius": map[string]interface{}{
						"type":        "number",
						"description": "Gaussian blur radius applied first. Defaults to the configured value",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_canny",
			Description: "Run Canny edge detection and return the binary edge map as PNG (edges white on black).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": cannyProperties(map[string]interface{}{
					"path": pathProperty,
				}),
				"required": []string{"path"},
			},
		},

		// Detection
		{
			Name:        "image_detect_lines",
			Description: "Find horizontal and vertical line segments. Returns each line's endpoints, orientation, pixel count and angle, optionally with a color-coded label image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": cannyProperties(map[string]interface{}{
					"path": pathProperty,
					"min_size": map[string]interface{}{
						"type":        "integer",
						"description": "Minimum number of edge pixels in a line. Default 10",
					},
					"include_cross": map[string]interface{}{
						"type":        "boolean",
						"description": "Keep pixels where a row and column edge meet in both lines instead of splitting them",
					},
					"render_labels": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return a PNG with each line drawn in its own color. Default false",
						"default":     false,
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_detect_stop_signs",
			Description: "Find red octagonal regions that match a stop-sign silhouette. Returns padded bounding boxes; candidates and crops are optional.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"max_dissimilarity": map[string]interface{}{
						"type":        "number",
						"description": "Accept clusters whose template dissimilarity is below this (0-1). Default 0.2",
					},
					"include_candidates": map[string]interface{}{
						"type":        "boolean",
						"description": "Include every size-qualified cluster with its score. Default false",
						"default":     false,
					},
					"include_crops": map[string]interface{}{
						"type":        "boolean",
						"description": "Include each accepted region as base64-encoded PNG. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}

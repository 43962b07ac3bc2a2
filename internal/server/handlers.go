package server

import (
	"encoding/json"
	"fmt"

	"github.com/ironsheep/vision-tools-mcp/internal/detection"
	"github.com/ironsheep/vision-tools-mcp/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_canny").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.debugf("tool %s failed: %v", params.Name, err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies configured defaults for optional parameters
//  3. Loads the image buffer from the cache
//  4. Calls the appropriate imaging/detection function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Filters
	case "image_convolve":
		return s.handleImageConvolve(args)
	case "image_gaussian_blur":
		return s.handleImageGaussianBlur(args)
	case "image_sobel":
		return s.handleImageSobel(args)
	case "image_canny":
		return s.handleImageCanny(args)

	// Detection
	case "image_detect_lines":
		return s.handleImageDetectLines(args)
	case "image_detect_stop_signs":
		return s.handleImageDetectStopSigns(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments, treating missing arguments as empty.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	return json.Unmarshal(args, v)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Filter Handlers ===

type imageConvolveArgs struct {
	Path         string    `json:"path"`
	Kernel       []float64 `json:"kernel"`
	KernelWidth  int       `json:"kernel_width"`
	KernelHeight int       `json:"kernel_height"`
	Kind         string    `json:"kind"`
	Grayscale    bool      `json:"grayscale"`
}

func (s *Server) handleImageConvolve(args json.RawMessage) (interface{}, error) {
	var a imageConvolveArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	kind, err := parseKind(a.Kind)
	if err != nil {
		return nil, err
	}
	kernel, err := imaging.NewKernel(a.KernelWidth, a.KernelHeight, a.Kernel)
	if err != nil {
		return nil, err
	}

	src, err := s.cache.Buffer(a.Path)
	if err != nil {
		return nil, err
	}
	if a.Grayscale {
		if src, err = imaging.Grayscale(src); err != nil {
			return nil, err
		}
	}

	out, err := imaging.Convolve(kernel, src, kind)
	if err != nil {
		return nil, err
	}
	return imaging.EncodeBuffer(out)
}

type imageGaussianBlurArgs struct {
	Path   string   `json:"path"`
	Radius *float64 `json:"radius"`
	Kind   string   `json:"kind"`
}

func (s *Server) handleImageGaussianBlur(args json.RawMessage) (interface{}, error) {
	var a imageGaussianBlurArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	radius := valueOr(a.Radius, s.cfg.Canny.GaussianRadius)
	kind, err := parseKind(a.Kind)
	if err != nil {
		return nil, err
	}

	src, err := s.cache.Buffer(a.Path)
	if err != nil {
		return nil, err
	}
	out, err := imaging.GaussianBlur(src, radius, kind)
	if err != nil {
		return nil, err
	}
	return imaging.EncodeBuffer(out)
}

type imageSobelArgs struct {
	Path           string   `json:"path"`
	GaussianRadius *float64 `json:"gaussian_radius"`
}

func (s *Server) handleImageSobel(args json.RawMessage) (interface{}, error) {
	var a imageSobelArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	src, err := s.cache.Buffer(a.Path)
	if err != nil {
		return nil, err
	}
	out, err := imaging.SobelGradient(src, valueOr(a.GaussianRadius, s.cfg.Canny.GaussianRadius))
	if err != nil {
		return nil, err
	}
	return imaging.EncodeBuffer(out)
}

type cannyArgs struct {
	GaussianRadius *float64 `json:"gaussian_radius"`
	LowRatio       *float64 `json:"low_ratio"`
	HighRatio      *float64 `json:"high_ratio"`
}

// options overlays the supplied values on base.
func (a cannyArgs) options(base imaging.CannyOptions) imaging.CannyOptions {
	return imaging.CannyOptions{
		GaussianRadius: valueOr(a.GaussianRadius, base.GaussianRadius),
		LowRatio:       valueOr(a.LowRatio, base.LowRatio),
		HighRatio:      valueOr(a.HighRatio, base.HighRatio),
	}
}

type imageCannyArgs struct {
	Path string `json:"path"`
	cannyArgs
}

func (s *Server) handleImageCanny(args json.RawMessage) (interface{}, error) {
	var a imageCannyArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	src, err := s.cache.Buffer(a.Path)
	if err != nil {
		return nil, err
	}
	out, err := imaging.CannyEdges(src, a.options(s.cfg.Canny))
	if err != nil {
		return nil, err
	}
	return imaging.EncodeBuffer(out)
}

// === Detection Handlers ===

type imageDetectLinesArgs struct {
	Path         string `json:"path"`
	MinSize      *int   `json:"min_size"`
	IncludeCross *bool  `json:"include_cross"`
	RenderLabels bool   `json:"render_labels"`
	cannyArgs
}

// LinesResult contains the detected lines and, on request, the label rendering.
type LinesResult struct {
	Lines      []detection.Line      `json:"lines"`
	Count      int                   `json:"count"`
	Horizontal int                   `json:"horizontal"`
	Vertical   int                   `json:"vertical"`
	Labels     *imaging.EncodedImage `json:"labels,omitempty"`
}

func (s *Server) handleImageDetectLines(args json.RawMessage) (interface{}, error) {
	var a imageDetectLinesArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	opts := detection.LineOptions{
		Canny:        a.options(s.cfg.Lines.Canny),
		MinSize:      valueOr(a.MinSize, s.cfg.Lines.MinSize),
		IncludeCross: valueOr(a.IncludeCross, s.cfg.Lines.IncludeCross),
	}

	src, err := s.cache.Buffer(a.Path)
	if err != nil {
		return nil, err
	}
	set, err := detection.DetectLineSet(src, opts)
	if err != nil {
		return nil, err
	}

	result := &LinesResult{Lines: set.Lines, Count: len(set.Lines)}
	if result.Lines == nil {
		result.Lines = []detection.Line{}
	}
	for _, l := range set.Lines {
		switch l.Orientation {
		case detection.Horizontal:
			result.Horizontal++
		case detection.Vertical:
			result.Vertical++
		}
	}
	if a.RenderLabels {
		if result.Labels, err = imaging.EncodeBuffer(detection.RenderLineLabels(set)); err != nil {
			return nil, err
		}
	}
	s.debugf("detected %d lines in %s", result.Count, a.Path)
	return result, nil
}

type imageDetectStopSignsArgs struct {
	Path              string   `json:"path"`
	MaxDissimilarity  *float64 `json:"max_dissimilarity"`
	IncludeCandidates bool     `json:"include_candidates"`
	IncludeCrops      bool     `json:"include_crops"`
}

// StopSignsResult contains the accepted regions and optional diagnostics.
type StopSignsResult struct {
	Regions    []detection.Region      `json:"regions"`
	Count      int                     `json:"count"`
	Candidates []detection.Candidate   `json:"candidates,omitempty"`
	Crops      []*imaging.EncodedImage `json:"crops,omitempty"`
}

func (s *Server) handleImageDetectStopSigns(args json.RawMessage) (interface{}, error) {
	var a imageDetectStopSignsArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	opts := s.cfg.StopSign.StopSignOptions
	opts.MaxDissimilarity = valueOr(a.MaxDissimilarity, opts.MaxDissimilarity)

	src, err := s.cache.Buffer(a.Path)
	if err != nil {
		return nil, err
	}
	candidates, err := detection.NewStopSignDetector(opts, s.template).Candidates(src)
	if err != nil {
		return nil, err
	}

	result := &StopSignsResult{Regions: []detection.Region{}}
	for _, c := range candidates {
		if c.Accepted {
			result.Regions = append(result.Regions, c.Region)
		}
	}
	result.Count = len(result.Regions)
	if a.IncludeCandidates {
		result.Candidates = candidates
	}

	if a.IncludeCrops && result.Count > 0 {
		img, err := s.cache.Load(a.Path)
		if err != nil {
			return nil, err
		}
		for _, r := range result.Regions {
			crop, err := imaging.Crop(img, r.Rect())
			if err != nil {
				return nil, err
			}
			result.Crops = append(result.Crops, crop)
		}
	}
	s.debugf("stop signs in %s: %d of %d candidates", a.Path, result.Count, len(candidates))
	return result, nil
}

func parseKind(name string) (imaging.Kind, error) {
	if name == "" {
		return imaging.Uint8Clamped, nil
	}
	return imaging.ParseKind(name)
}

func valueOr[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}

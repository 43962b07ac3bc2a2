// Package server implements the MCP (Model Context Protocol) server for the
// vision tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the imaging and
// detection packages through the MCP protocol, so that MCP-compatible clients
// can filter images and locate lines and stop signs in them.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Filters (results are base64-encoded PNG):
//   - image_convolve: Custom kernel convolution
//   - image_gaussian_blur: Separable Gaussian blur
//   - image_sobel: Sobel gradient magnitude
//   - image_canny: Canny edge map
//
// Detection:
//   - image_detect_lines: Horizontal and vertical line segments
//   - image_detect_stop_signs: Stop-sign regions
//
// Optional arguments fall back to the values in the server's config.Config.
//
// # Image Caching
//
// Decoded images and their pixel buffers are cached by path and reused
// across tool calls for the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	cfg, err := config.FromEnv("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := server.NewWithConfig(cfg).Run(); err != nil {
//	    log.Fatal(err)
//	}
package server

// Package server implements the MCP (Model Context Protocol) server for chart digitizing.
//
// This package provides a JSON-RPC 2.0 server that turns a raster image of a
// single-curve chart into a calibrated, smoothed series with peaks. Each tool
// call runs the pipeline from scratch on explicit inputs; the only state kept
// between calls is the image cache and the per-image calibration anchors.
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
// Chart Setup:
//   - chart_load: Load image, report metadata and a suggested crop
//   - chart_auto_crop: Trim background and report ink colors
//   - chart_crop_preview: PNG of the selected plot area
//
// Calibration:
//   - chart_set_anchor: Set anchor A or B pixel and value
//   - chart_get_calibration: Show stored anchors
//   - chart_clear_calibration: Forget stored anchors
//   - chart_read_labels: OCR numeric axis labels
//
// Digitizing:
//   - chart_extract_trace: Pixel trace of the plot area
//   - chart_digitize: Trace, calibrate, smooth and find peaks
//   - series_analyze: Smooth and find peaks on an existing series
//
// Output:
//   - chart_export: curve_csv, peaks_csv, html or png
//   - chart_overlay: Trace, peaks and anchors drawn over the source
//
// # Calibration
//
// Anchors set with chart_set_anchor are stored per image path. Tools that
// digitize accept an explicit "anchors" argument that overrides the stored
// pair for that call only. Without a complete pair the curve is reported in
// normalized units (0-1 across the crop, Y up).
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure), -32602 (bad arguments) or
//     another standard JSON-RPC code
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(config.Load())
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server

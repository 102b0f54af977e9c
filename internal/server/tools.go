package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// Shared schema fragments.
var (
	pathProperty = map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the chart image",
	}

	pointSchema = map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x": map[string]interface{}{"type": "number"},
			"y": map[string]interface{}{"type": "number"},
		},
		"required": []string{"x", "y"},
	}

	rectSchema = map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x": map[string]interface{}{"type": "integer", "description": "Left edge (0-based)"},
			"y": map[string]interface{}{"type": "integer", "description": "Top edge (0-based)"},
			"w": map[string]interface{}{"type": "integer", "description": "Width in pixels"},
			"h": map[string]interface{}{"type": "integer", "description": "Height in pixels"},
		},
		"required": []string{"x", "y", "w", "h"},
	}

	anchorSchema = map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"pixel": pointSchema,
			"value": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{"type": []string{"number", "null"}},
					"y": map[string]interface{}{"type": []string{"number", "null"}},
				},
			},
		},
		"required": []string{"pixel"},
	}

	seriesProperties = map[string]interface{}{
		"points": map[string]interface{}{
			"type":        "array",
			"items":       pointSchema,
			"description": "Physical {x, y} points with strictly ascending x. Takes precedence over csv",
		},
		"csv": map[string]interface{}{
			"type":        "string",
			"description": "CSV text with x,y columns and strictly ascending x. A non-numeric first row is treated as a header",
		},
	}
)

// cropProperties are accepted by every tool that reads the plot area.
func cropProperties() map[string]interface{} {
	return map[string]interface{}{
		"crop": withDescription(rectSchema, "Plot area in image pixels. Overrides inside_axes and auto_crop"),
		"inside_axes": map[string]interface{}{
			"type":        "boolean",
			"description": "Use the area inside the detected axis lines. Fails when either axis is missing. Overrides auto_crop",
			"default":     false,
		},
		"auto_crop": map[string]interface{}{
			"type":        "boolean",
			"description": "Find the plot area by trimming the background. Default false (full image)",
			"default":     false,
		},
		"background_luma": map[string]interface{}{
			"type":        "number",
			"description": "Luma (0-255) at or above which a pixel is background for auto_crop. Default 245",
		},
		"padding": map[string]interface{}{
			"type":        "integer",
			"description": "Pixels added around the auto_crop content box. Default 6",
		},
	}
}

// digitizeProperties are the chart_digitize arguments, shared by export and overlay.
func digitizeProperties() map[string]interface{} {
	props := cropProperties()
	props["path"] = pathProperty
	props["anchors"] = map[string]interface{}{
		"type":        "object",
		"description": "Calibration anchors {a, b}. Defaults to the anchors stored with chart_set_anchor",
		"properties": map[string]interface{}{
			"a": anchorSchema,
			"b": anchorSchema,
		},
	}
	props["max_luma"] = map[string]interface{}{
		"type":        "number",
		"description": "Columns whose darkest pixel is not below this luma are treated as missing and filled from neighbours",
	}
	props["strict_calibration"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Fail instead of warning when both anchors share a pixel coordinate",
		"default":     false,
	}
	for k, v := range peakProperties() {
		props[k] = v
	}
	return props
}

func peakProperties() map[string]interface{} {
	return map[string]interface{}{
		"window": map[string]interface{}{
			"type":        "integer",
			"description": "Moving-average window. Even values are rounded up, values below 1 use the default of 11",
		},
		"min_height": map[string]interface{}{
			"type":        "number",
			"description": "Drop peaks whose smoothed value is below this",
		},
		"min_distance": map[string]interface{}{
			"type":        "number",
			"description": "Minimum physical X separation between peaks. Taller peaks win",
			"default":     0,
		},
	}
}

func withDescription(schema map[string]interface{}, desc string) map[string]interface{} {
	out := make(map[string]interface{}, len(schema)+1)
	for k, v := range schema {
		out[k] = v
	}
	out["description"] = desc
	return out
}

func merge(maps ...map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{}
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Chart Setup
		{
			Name:        "chart_load",
			Description: "Load a chart image and return its dimensions, format, a suggested plot-area crop and any stored calibration.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"reload": map[string]interface{}{
						"type":        "boolean",
						"description": "Drop the cached copy and read the file again",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "chart_auto_crop",
			Description: "Find the plot area by trimming near-white background, report the most common ink colors inside it, and detect the axis lines.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":            pathProperty,
					"background_luma": cropProperties()["background_luma"],
					"padding":         cropProperties()["padding"],
					"ink_colors": map[string]interface{}{
						"type":        "integer",
						"description": "Number of ink colors to report. Default 5",
						"default":     5,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "chart_crop_preview",
			Description: "Return the selected plot area as a base64-encoded PNG so the crop can be checked visually.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(cropProperties(), map[string]interface{}{
					"path": pathProperty,
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				}),
				"required": []string{"path"},
			},
		},

		// Calibration
		{
			Name:        "chart_set_anchor",
			Description: "Set calibration anchor A or B for a chart: its pixel location, its physical x/y value, or both. Values not given are kept.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"anchor": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"A", "B"},
						"description": "Which anchor to set",
					},
					"pixel": withDescription(pointSchema, "Anchor location in image pixels"),
					"value_x": map[string]interface{}{
						"type":        "number",
						"description": "Physical X value at the anchor",
					},
					"value_y": map[string]interface{}{
						"type":        "number",
						"description": "Physical Y value at the anchor",
					},
				},
				"required": []string{"path", "anchor"},
			},
		},
		{
			Name:        "chart_get_calibration",
			Description: "Return the stored calibration anchors for a chart and whether they are complete.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "chart_clear_calibration",
			Description: "Forget both calibration anchors for a chart.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "chart_read_labels",
			Description: "OCR the axis tick labels in a region and return their text, parsed numeric value and pixel center. Useful for placing calibration anchors.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty,
					"region": withDescription(rectSchema, "Area holding the labels, in image pixels"),
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language code. Default eng",
					},
					"numeric_only": map[string]interface{}{
						"type":        "boolean",
						"description": "Only return labels that parse as numbers. Default true",
						"default":     true,
					},
				},
				"required": []string{"path", "region"},
			},
		},

		// Digitizing
		{
			Name:        "chart_extract_trace",
			Description: "Trace the darkest pixel in every column of the plot area. Returns region-relative pixel samples without calibration.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(cropProperties(), map[string]interface{}{
					"path": pathProperty,
					"max_luma": map[string]interface{}{
						"type":        "number",
						"description": "Columns whose darkest pixel is not below this luma are treated as missing and filled from neighbours",
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "chart_digitize",
			Description: "Digitize a single-curve chart: trace the curve, map pixels to physical units with the calibration anchors, smooth it and find peaks.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(digitizeProperties(), map[string]interface{}{
					"include_trace": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the pixel trace in the result",
						"default":     false,
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "series_analyze",
			Description: "Smooth an existing physical series and find its peaks, without an image.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": merge(seriesProperties, peakProperties()),
			},
		},

		// Output
		{
			Name:        "chart_export",
			Description: "Export a digitized curve as curve_csv, peaks_csv, an interactive html chart or a png plot. Uses points/csv when given, otherwise digitizes the chart.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(digitizeProperties(), seriesProperties, map[string]interface{}{
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{formatCurveCSV, formatPeaksCSV, formatHTML, formatPNG},
						"description": "Output format",
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Write the output to this file instead of returning it inline",
					},
					"title":   map[string]interface{}{"type": "string", "description": "Chart title (html, png)"},
					"x_label": map[string]interface{}{"type": "string", "description": "X axis label (html, png)"},
					"y_label": map[string]interface{}{"type": "string", "description": "Y axis label (html, png)"},
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "PNG width in pixels. Default 800",
						"default":     defaultPlotWidth,
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "PNG height in pixels. Default 500",
						"default":     defaultPlotHeight,
					},
				}),
				"required": []string{"format"},
			},
		},
		{
			Name:        "chart_overlay",
			Description: "Digitize the chart and draw the crop box, traced curve, peaks and anchors over the source image. Returns a base64-encoded PNG for visual verification.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": digitizeProperties(),
				"required":   []string{"path"},
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

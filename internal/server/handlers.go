package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/curve-digitizer-mcp/internal/calibration"
	"github.com/ironsheep/curve-digitizer-mcp/internal/detection"
	"github.com/ironsheep/curve-digitizer-mcp/internal/imaging"
	"github.com/ironsheep/curve-digitizer-mcp/internal/ocr"
	"github.com/ironsheep/curve-digitizer-mcp/internal/option"
	"github.com/ironsheep/curve-digitizer-mcp/internal/pipeline"
	"github.com/ironsheep/curve-digitizer-mcp/internal/signal"
	"github.com/ironsheep/curve-digitizer-mcp/internal/trace"
)

// errBadArgs marks argument decoding failures; they map to -32602.
var errBadArgs = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "chart_load", "chart_digitize").
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
// Tool execution errors return a JSON-RPC error response with code -32000;
// arguments that do not decode return -32602.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.debugf("tool %s failed: %v", params.Name, err)
		if errors.Is(err, errBadArgs) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
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
//  2. Applies config defaults for optional parameters
//  3. Loads the chart from cache and resolves crop and calibration
//  4. Calls the pipeline, imaging, render or ocr function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Chart setup
	case "chart_load":
		return s.handleChartLoad(args)
	case "chart_auto_crop":
		return s.handleChartAutoCrop(args)
	case "chart_crop_preview":
		return s.handleChartCropPreview(args)

	// Calibration
	case "chart_set_anchor":
		return s.handleChartSetAnchor(args)
	case "chart_get_calibration":
		return s.handleChartGetCalibration(args)
	case "chart_clear_calibration":
		return s.handleChartClearCalibration(args)
	case "chart_read_labels":
		return s.handleChartReadLabels(args)

	// Digitizing
	case "chart_extract_trace":
		return s.handleChartExtractTrace(args)
	case "chart_digitize":
		return s.handleChartDigitize(args)
	case "series_analyze":
		return s.handleSeriesAnalyze(args)

	// Output
	case "chart_export":
		return s.handleChartExport(args)
	case "chart_overlay":
		return s.handleChartOverlay(args)

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
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments, treating an empty payload as {}.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errBadArgs, err)
	}
	return nil
}

// === Shared argument blocks ===

type pathArgs struct {
	Path string `json:"path"`
}

func (a pathArgs) validate() error {
	if a.Path == "" {
		return fmt.Errorf("%w: path is required", errBadArgs)
	}
	return nil
}

// cropArgs selects the plot area: an explicit rectangle wins, then
// inside_axes, then auto_crop, then the full image.
type cropArgs struct {
	Crop           *trace.Rect  `json:"crop"`
	InsideAxes     bool         `json:"inside_axes"`
	AutoCrop       bool         `json:"auto_crop"`
	BackgroundLuma option.Float `json:"background_luma"`
	Padding        *int         `json:"padding"`
}

func (s *Server) autoCropOptions(a cropArgs) trace.AutoCropOptions {
	opts := trace.AutoCropOptions{
		Threshold: a.BackgroundLuma.Or(s.cfg.BackgroundLuma),
		Padding:   s.cfg.AutoCropPadding,
	}
	if a.Padding != nil && *a.Padding >= 0 {
		opts.Padding = *a.Padding
	}
	return opts
}

func (s *Server) resolveCrop(img image.Image, a cropArgs) (trace.Rect, error) {
	switch {
	case a.Crop != nil:
		return *a.Crop, nil
	case a.InsideAxes:
		axes, err := detection.FindAxes(img, detection.DefaultAxisOptions())
		if err != nil {
			return trace.Rect{}, err
		}
		return axes.Area()
	case a.AutoCrop:
		return trace.AutoCrop(img, s.autoCropOptions(a)), nil
	default:
		b := img.Bounds()
		return trace.Rect{W: b.Dx(), H: b.Dy()}, nil
	}
}

// peakArgs are the smoothing and peak search parameters.
type peakArgs struct {
	Window      *int         `json:"window"`
	MinHeight   option.Float `json:"min_height"`
	MinDistance float64      `json:"min_distance"`
}

func (s *Server) window(a peakArgs) int {
	if a.Window == nil {
		return s.cfg.SmoothWindow
	}
	return *a.Window
}

func (a peakArgs) params() signal.PeakParams {
	return signal.PeakParams{MinHeight: a.MinHeight, MinDistance: a.MinDistance}
}

// digitizeArgs is shared by chart_digitize, chart_export and chart_overlay.
type digitizeArgs struct {
	pathArgs
	cropArgs
	peakArgs
	Anchors           *calibration.Pair `json:"anchors"`
	MaxLuma           option.Float      `json:"max_luma"`
	StrictCalibration bool              `json:"strict_calibration"`
}

// calibrationFor returns explicit anchors when given, otherwise the stored
// calibration for path.
func (s *Server) calibrationFor(path string, anchors *calibration.Pair) calibration.Pair {
	if anchors != nil {
		return *anchors
	}
	return s.calib.Get(path).Pair()
}

// digitize runs the full raster pipeline for a.
func (s *Server) digitize(a digitizeArgs) (*pipeline.Result, image.Image, error) {
	if err := a.validate(); err != nil {
		return nil, nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, nil, err
	}

	crop, err := s.resolveCrop(img, a.cropArgs)
	if err != nil {
		return nil, nil, err
	}
	region, err := trace.FromImage(img, crop)
	if err != nil {
		return nil, nil, err
	}

	res, err := pipeline.Run(pipeline.Input{
		Region:      region,
		Crop:        crop,
		Calibration: s.calibrationFor(a.Path, a.Anchors),
		Extract:     trace.Options{MaxLuma: a.MaxLuma},
		Window:      s.window(a.peakArgs),
		Peaks:       a.params(),
		Strict:      a.StrictCalibration,
	})
	if err != nil {
		return nil, nil, err
	}

	s.debugf("digitized %s crop=[%s] samples=%d peaks=%d window=%d calibrated=%v warnings=%d",
		a.Path, crop, len(res.Raw), len(res.Peaks), res.Window, res.Calibrated, len(res.Warnings))
	for _, w := range res.Warnings {
		s.debugf("calibration warning axis=%s: %s", w.Axis, w.Message)
	}
	return res, img, nil
}

// === Chart setup handlers ===

type chartLoadArgs struct {
	pathArgs
	Reload bool `json:"reload"`
}

type chartLoadResult struct {
	*imaging.ChartInfo
	SuggestedCrop trace.Rect        `json:"suggested_crop"`
	Calibration   calibration.State `json:"calibration"`
}

func (s *Server) handleChartLoad(args json.RawMessage) (interface{}, error) {
	var a chartLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	if a.Reload {
		s.cache.Evict(a.Path)
	}

	info, err := imaging.Describe(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	s.debugf("loaded %s %dx%d cached=%d", a.Path, info.Width, info.Height, s.cache.Len())
	return &chartLoadResult{
		ChartInfo:     info,
		SuggestedCrop: trace.AutoCrop(img, s.autoCropOptions(cropArgs{})),
		Calibration:   s.calib.Get(a.Path),
	}, nil
}

type chartAutoCropArgs struct {
	pathArgs
	cropArgs
	InkColors *int `json:"ink_colors"`
}

type chartAutoCropResult struct {
	Crop      trace.Rect         `json:"crop"`
	Threshold float64            `json:"threshold"`
	Padding   int                `json:"padding"`
	InkColors []imaging.InkColor `json:"ink_colors"`

	// Axes is reported alongside the background crop; its plot_area is
	// what inside_axes would use.
	Axes *detection.Axes `json:"axes"`
}

func (s *Server) handleChartAutoCrop(args json.RawMessage) (interface{}, error) {
	var a chartAutoCropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	opts := s.autoCropOptions(a.cropArgs)
	crop := trace.AutoCrop(img, opts)

	count := 5
	if a.InkColors != nil {
		count = *a.InkColors
	}
	inks, err := imaging.InkColors(img, crop, count, opts.Threshold)
	if err != nil {
		return nil, err
	}

	axes, err := detection.FindAxes(img, detection.DefaultAxisOptions())
	if err != nil {
		return nil, err
	}
	s.debugf("auto crop %s crop=[%s] axes x=%v y=%v", a.Path, crop, axes.X != nil, axes.Y != nil)

	return &chartAutoCropResult{Crop: crop, Threshold: opts.Threshold, Padding: opts.Padding, InkColors: inks, Axes: axes}, nil
}

type chartCropPreviewArgs struct {
	pathArgs
	cropArgs
	Scale float64 `json:"scale"`
}

func (s *Server) handleChartCropPreview(args json.RawMessage) (interface{}, error) {
	var a chartCropPreviewArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	crop, err := s.resolveCrop(img, a.cropArgs)
	if err != nil {
		return nil, err
	}
	return imaging.CropPreview(img, crop, a.Scale)
}

// === Calibration handlers ===

type chartSetAnchorArgs struct {
	pathArgs
	Anchor string             `json:"anchor"`
	Pixel  *calibration.Point `json:"pixel"`
	ValueX option.Float       `json:"value_x"`
	ValueY option.Float       `json:"value_y"`
}

type calibrationResult struct {
	Path        string               `json:"path"`
	Calibration calibration.State    `json:"calibration"`
	Complete    bool                 `json:"complete"`
	PixelColor  *imaging.ColorSample `json:"pixel_color,omitempty"`
}

// handleChartSetAnchor updates one anchor. A pixel moves the anchor and keeps
// its value; value_x and value_y each replace only the component given.
func (s *Server) handleChartSetAnchor(args json.RawMessage) (interface{}, error) {
	var a chartSetAnchorArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	which, err := calibration.ParseAnchorID(a.Anchor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadArgs, err)
	}
	if a.Pixel == nil && !a.ValueX.IsSet() && !a.ValueY.IsSet() {
		return nil, fmt.Errorf("%w: pixel, value_x or value_y is required", errBadArgs)
	}

	state := s.calib.Update(a.Path, func(st calibration.State) calibration.State {
		if a.Pixel != nil {
			st = st.SetPixel(which, *a.Pixel)
		}
		if a.ValueX.IsSet() || a.ValueY.IsSet() {
			var current calibration.Value
			if anchor := anchorOf(st, which); anchor != nil {
				current = anchor.Value
			}
			if a.ValueX.IsSet() {
				current.X = a.ValueX
			}
			if a.ValueY.IsSet() {
				current.Y = a.ValueY
			}
			st = st.SetValue(which, current)
		}
		return st
	})

	res := &calibrationResult{Path: a.Path, Calibration: state, Complete: state.Complete()}
	if a.Pixel != nil {
		// The color under the anchor is informational; a missing or
		// unreadable image does not block calibration.
		if img, err := s.cache.Load(a.Path); err == nil {
			res.PixelColor, _ = imaging.SampleColor(img, int(a.Pixel.X), int(a.Pixel.Y))
		}
	}

	s.debugf("anchor %s set on %s complete=%v", which, a.Path, res.Complete)
	return res, nil
}

func anchorOf(st calibration.State, which calibration.AnchorID) *calibration.Anchor {
	if which == calibration.AnchorB {
		return st.B
	}
	return st.A
}

func (s *Server) handleChartGetCalibration(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	state := s.calib.Get(a.Path)
	return &calibrationResult{Path: a.Path, Calibration: state, Complete: state.Complete()}, nil
}

func (s *Server) handleChartClearCalibration(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	state := s.calib.Update(a.Path, calibration.State.Reset)
	s.debugf("calibration cleared on %s", a.Path)
	return &calibrationResult{Path: a.Path, Calibration: state, Complete: state.Complete()}, nil
}

type chartReadLabelsArgs struct {
	pathArgs
	Region      *trace.Rect `json:"region"`
	Language    string      `json:"language"`
	NumericOnly *bool       `json:"numeric_only"`
}

type chartReadLabelsResult struct {
	Region trace.Rect  `json:"region"`
	Labels []ocr.Label `json:"labels"`
	Count  int         `json:"count"`
}

func (s *Server) handleChartReadLabels(args json.RawMessage) (interface{}, error) {
	var a chartReadLabelsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	if a.Region == nil {
		return nil, fmt.Errorf("%w: region is required", errBadArgs)
	}
	if a.Language == "" {
		a.Language = s.cfg.OCRLanguage
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	labels, err := ocr.ReadAxisLabels(img, *a.Region, a.Language)
	if err != nil {
		return nil, err
	}
	if a.NumericOnly == nil || *a.NumericOnly {
		labels = ocr.Numeric(labels)
	}
	return &chartReadLabelsResult{Region: *a.Region, Labels: labels, Count: len(labels)}, nil
}

// === Digitizing handlers ===

type chartExtractTraceArgs struct {
	pathArgs
	cropArgs
	MaxLuma option.Float `json:"max_luma"`
}

type chartExtractTraceResult struct {
	Crop    trace.Rect     `json:"crop"`
	Samples []trace.Sample `json:"samples"`
	Filled  int            `json:"filled"`
}

func (s *Server) handleChartExtractTrace(args json.RawMessage) (interface{}, error) {
	var a chartExtractTraceArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	crop, err := s.resolveCrop(img, a.cropArgs)
	if err != nil {
		return nil, err
	}
	region, err := trace.FromImage(img, crop)
	if err != nil {
		return nil, err
	}
	samples := trace.Extract(region, trace.Options{MaxLuma: a.MaxLuma})

	filled := 0
	for _, smp := range samples {
		if smp.Filled {
			filled++
		}
	}
	s.debugf("extracted %s crop=[%s] samples=%d filled=%d", a.Path, crop, len(samples), filled)
	return &chartExtractTraceResult{Crop: crop, Samples: samples, Filled: filled}, nil
}

type chartDigitizeArgs struct {
	digitizeArgs
	IncludeTrace bool `json:"include_trace"`
}

func (s *Server) handleChartDigitize(args json.RawMessage) (interface{}, error) {
	var a chartDigitizeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	res, _, err := s.digitize(a.digitizeArgs)
	if err != nil {
		return nil, err
	}
	if len(res.Raw) == 0 {
		return nil, fmt.Errorf("crop [%s]: %w", res.Crop, pipeline.ErrNoData)
	}
	if !a.IncludeTrace {
		res.Trace = nil
	}
	return res, nil
}

type seriesArgs struct {
	Points []calibration.PhysicalPoint `json:"points"`
	CSV    string                      `json:"csv"`
}

type seriesAnalyzeArgs struct {
	seriesArgs
	peakArgs
}

func (s *Server) handleSeriesAnalyze(args json.RawMessage) (interface{}, error) {
	var a seriesAnalyzeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.analyzeSeries(a.seriesArgs, a.peakArgs)
}

// === Overlay handler ===

func (s *Server) handleChartOverlay(args json.RawMessage) (interface{}, error) {
	var a digitizeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	res, img, err := s.digitize(a)
	if err != nil {
		return nil, err
	}

	peaks := make([]int, len(res.Peaks))
	for i, p := range res.Peaks {
		peaks[i] = p.Index
	}
	crop := res.Crop

	return imaging.Overlay(img, imaging.OverlaySpec{
		Crop:        &crop,
		Trace:       res.Trace,
		TraceOrigin: image.Pt(crop.X, crop.Y),
		Anchors:     imaging.AnchorMarks(s.calibrationFor(a.Path, a.Anchors)),
		Peaks:       peaks,
	})
}

package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/curve-digitizer-mcp/internal/calibration"
	"github.com/ironsheep/curve-digitizer-mcp/internal/export"
	"github.com/ironsheep/curve-digitizer-mcp/internal/pipeline"
	"github.com/ironsheep/curve-digitizer-mcp/internal/render"
	"github.com/ironsheep/curve-digitizer-mcp/internal/signal"
)

// Export formats accepted by chart_export.
const (
	formatCurveCSV = "curve_csv"
	formatPeaksCSV = "peaks_csv"
	formatHTML     = "html"
	formatPNG      = "png"
)

const (
	defaultPlotWidth  = 800
	defaultPlotHeight = 500
)

// seriesPoints returns the caller's series. Inline points win over CSV text.
// ok is false when neither was given.
func seriesPoints(a seriesArgs) (points []calibration.PhysicalPoint, ok bool, err error) {
	switch {
	case len(a.Points) > 0:
		return a.Points, true, nil
	case strings.TrimSpace(a.CSV) != "":
		points, err = export.ParseCurveCSV(strings.NewReader(a.CSV))
		if err != nil {
			return nil, true, fmt.Errorf("%w: csv: %v", errBadArgs, err)
		}
		return points, true, nil
	default:
		return nil, false, nil
	}
}

// analyzeSeries smooths and searches an already-physical curve.
func (s *Server) analyzeSeries(series seriesArgs, peaks peakArgs) (*pipeline.SeriesResult, error) {
	points, ok, err := seriesPoints(series)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: points or csv is required", errBadArgs)
	}

	res, err := pipeline.RunSeries(points, s.window(peaks), peaks.params())
	if errors.Is(err, pipeline.ErrNotAscending) {
		return nil, fmt.Errorf("%w: %v", errBadArgs, err)
	}
	if err != nil {
		return nil, err
	}
	s.debugf("analyzed series points=%d peaks=%d window=%d", len(res.Raw), len(res.Peaks), res.Window)
	return res, nil
}

type chartExportArgs struct {
	digitizeArgs
	seriesArgs
	Format     string `json:"format"`
	OutputPath string `json:"output_path"`
	Title      string `json:"title"`
	XLabel     string `json:"x_label"`
	YLabel     string `json:"y_label"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

type chartExportResult struct {
	Format     string `json:"format"`
	MimeType   string `json:"mime_type"`
	OutputPath string `json:"output_path,omitempty"`
	Bytes      int    `json:"bytes"`

	// Content is the text output, or base64 for png. It is omitted when
	// the output was written to OutputPath.
	Content string `json:"content,omitempty"`

	Points int `json:"points"`
	Peaks  int `json:"peaks"`
}

// exportSeries is the data an export renders, from either source.
type exportSeries struct {
	raw      []calibration.PhysicalPoint
	smoothed []float64
	peaks    []signal.Peak
}

func (s *Server) handleChartExport(args json.RawMessage) (interface{}, error) {
	var a chartExportArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	mime, err := mimeTypeFor(a.Format)
	if err != nil {
		return nil, err
	}

	data, err := s.exportData(a)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch a.Format {
	case formatCurveCSV:
		err = export.WriteCurveCSV(&buf, data.raw)
	case formatPeaksCSV:
		err = export.WritePeaksCSV(&buf, data.peaks)
	case formatHTML, formatPNG:
		chart := render.Chart{
			Title:    a.Title,
			XLabel:   a.XLabel,
			YLabel:   a.YLabel,
			Raw:      data.raw,
			Smoothed: data.smoothed,
			Peaks:    data.peaks,
		}
		if a.Format == formatHTML {
			err = render.HTML(&buf, chart)
		} else {
			err = render.PNG(&buf, chart, positiveOr(a.Width, defaultPlotWidth), positiveOr(a.Height, defaultPlotHeight))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%s export failed: %w", a.Format, err)
	}

	res := &chartExportResult{
		Format:   a.Format,
		MimeType: mime,
		Bytes:    buf.Len(),
		Points:   len(data.raw),
		Peaks:    len(data.peaks),
	}

	if a.OutputPath != "" {
		out := filepath.Clean(a.OutputPath)
		if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", out, err)
		}
		res.OutputPath = out
		s.debugf("exported %s to %s (%d bytes)", a.Format, out, res.Bytes)
		return res, nil
	}

	if a.Format == formatPNG {
		res.Content = base64.StdEncoding.EncodeToString(buf.Bytes())
	} else {
		res.Content = buf.String()
	}
	return res, nil
}

// exportData digitizes the chart unless the caller supplied a series.
func (s *Server) exportData(a chartExportArgs) (*exportSeries, error) {
	if _, ok, err := seriesPoints(a.seriesArgs); err != nil {
		return nil, err
	} else if ok {
		res, err := s.analyzeSeries(a.seriesArgs, a.peakArgs)
		if err != nil {
			return nil, err
		}
		return &exportSeries{raw: res.Raw, smoothed: res.Smoothed, peaks: res.Peaks}, nil
	}

	res, _, err := s.digitize(a.digitizeArgs)
	if err != nil {
		return nil, err
	}
	return &exportSeries{raw: res.Raw, smoothed: res.Smoothed, peaks: res.Peaks}, nil
}

func mimeTypeFor(format string) (string, error) {
	switch format {
	case formatCurveCSV, formatPeaksCSV:
		return "text/csv", nil
	case formatHTML:
		return "text/html", nil
	case formatPNG:
		return "image/png", nil
	case "":
		return "", fmt.Errorf("%w: format is required", errBadArgs)
	default:
		return "", fmt.Errorf("%w: unknown format %q (want curve_csv, peaks_csv, html or png)", errBadArgs, format)
	}
}

func positiveOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// Package export reads and writes the CSV contract for curves and peaks.
//
// Curves use the header "x,y" and peaks use "index,x,y". Finite numbers are
// written in shortest decimal form; NaN and infinities are written as quoted
// literals so that a reader never mistakes them for data.
package export

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/ironsheep/curve-digitizer-mcp/internal/calibration"
	"github.com/ironsheep/curve-digitizer-mcp/internal/signal"
)

// ErrFormatMismatch is returned when CSV input holds no row with two numeric columns.
var ErrFormatMismatch = errors.New("csv format mismatch: need two numeric columns")

// formatValue renders a finite float in decimal form and anything else as a quoted literal.
func formatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.Quote(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteCurveCSV writes points under an "x,y" header.
func WriteCurveCSV(w io.Writer, points []calibration.PhysicalPoint) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("x,y\n"); err != nil {
		return err
	}
	for _, p := range points {
		if _, err := fmt.Fprintf(bw, "%s,%s\n", formatValue(p.X), formatValue(p.Y)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WritePeaksCSV writes peaks under an "index,x,y" header. The index column
// is the peak's position in the smoothed series.
func WritePeaksCSV(w io.Writer, peaks []signal.Peak) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("index,x,y\n"); err != nil {
		return err
	}
	for _, p := range peaks {
		if _, err := fmt.Fprintf(bw, "%d,%s,%s\n", p.Index, formatValue(p.X), formatValue(p.Y)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ParseCurveCSV reads two-column numeric data.
//
// A first row containing any non-numeric cell is treated as a header and
// skipped. Later rows are kept only when their first two cells are numeric;
// extra columns are ignored.
//
// # Errors
//
//   - ErrFormatMismatch if no row qualifies
//   - the csv reader's error for malformed quoting
func ParseCurveCSV(r io.Reader) ([]calibration.PhysicalPoint, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var points []calibration.PhysicalPoint
	first := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		if isBlank(rec) {
			continue
		}

		if first {
			first = false
			if hasNonNumeric(rec) {
				continue
			}
		}

		if len(rec) < 2 {
			continue
		}
		x, okX := parseCell(rec[0])
		y, okY := parseCell(rec[1])
		if okX && okY {
			points = append(points, calibration.PhysicalPoint{X: x, Y: y})
		}
	}

	if len(points) == 0 {
		return nil, ErrFormatMismatch
	}
	return points, nil
}

func parseCell(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func hasNonNumeric(rec []string) bool {
	for _, c := range rec {
		if _, ok := parseCell(c); !ok {
			return true
		}
	}
	return false
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

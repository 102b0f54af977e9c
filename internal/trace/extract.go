package trace

import (
	"math"

	"github.com/anthonynsimon/bild/parallel"

	"github.com/ironsheep/curve-digitizer-mcp/internal/option"
)

// filledIntensity is reported for columns whose row was filled in rather than observed.
const filledIntensity = 255.0

// Sample is one trace point in region-relative pixel coordinates.
type Sample struct {
	// Column is the region column, 0 to width-1.
	Column int `json:"column"`

	// Row is the darkest row in the column, or a filled-in row when the
	// column had no usable sample.
	Row int `json:"row"`

	// Intensity is the luma of the selected pixel (0-255). Filled columns
	// report 255.
	Intensity float64 `json:"intensity"`

	// Filled marks rows produced by FillMissing.
	Filled bool `json:"filled,omitempty"`
}

// Options tunes extraction.
type Options struct {
	// MaxLuma, when set, marks a column as missing if its darkest luma is not
	// below this value. Unset means the darkest row is always selected.
	MaxLuma option.Float `json:"max_luma"`
}

// Luma returns the BT.601 luma of an 8-bit RGB triple.
func Luma(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

// Extract produces exactly one Sample per column of region, in column order.
//
// Parameters:
//   - region: The pixel region to scan. Must support concurrent reads.
//   - opts: Extraction options; the zero value selects the darkest row of
//     every column.
//
// Returns an empty (non-nil) slice when the region has zero width. A region
// with width W >= 1 always yields W samples, even at zero height.
//
// # Algorithm
//
//  1. For each column, compute luma for every row and keep the minimum
//     (first row wins on ties).
//  2. Columns without a usable minimum are filled by FillMissing.
//
// The column scan is O(width*height) and runs in parallel across columns.
func Extract(region Region, opts Options) []Sample {
	width := region.Width()
	height := region.Height()
	if width <= 0 {
		return []Sample{}
	}

	cutoff, hasCutoff := opts.MaxLuma.Get()
	rows := make([]int, width)
	lumas := make([]float64, width)

	parallel.Line(width, func(start, end int) {
		for col := start; col < end; col++ {
			minRow := -1
			minVal := math.Inf(1)
			for row := 0; row < height; row++ {
				l := Luma(region.RGBAt(col, row))
				if l < minVal {
					minVal = l
					minRow = row
				}
			}
			if hasCutoff && minVal >= cutoff {
				minRow = -1
			}
			rows[col] = minRow
			lumas[col] = minVal
		}
	})

	filled := FillMissing(rows, height)

	samples := make([]Sample, width)
	for col := range samples {
		samples[col] = Sample{Column: col, Row: filled[col], Intensity: lumas[col]}
		if rows[col] < 0 {
			samples[col].Intensity = filledIntensity
			samples[col].Filled = true
		}
	}
	return samples
}

// FillMissing returns a copy of rows with every negative entry replaced.
//
// A negative row marks a column without a usable sample. Each one is filled
// from the nearest valid columns on either side:
//   - both sides: round(left + (right-left) * (i-l)/(r-l))
//   - one side: that side's row
//   - neither: height/2
//
// The input slice is not modified.
func FillMissing(rows []int, height int) []int {
	out := make([]int, len(rows))
	copy(out, rows)

	for i := range out {
		if rows[i] >= 0 {
			continue
		}

		l := i - 1
		for l >= 0 && rows[l] < 0 {
			l--
		}
		r := i + 1
		for r < len(rows) && rows[r] < 0 {
			r++
		}

		switch {
		case l >= 0 && r < len(rows):
			step := float64(rows[r]-rows[l]) * float64(i-l) / float64(r-l)
			out[i] = int(math.Round(float64(rows[l]) + step))
		case l >= 0:
			out[i] = rows[l]
		case r < len(rows):
			out[i] = rows[r]
		default:
			out[i] = height / 2
		}
	}
	return out
}

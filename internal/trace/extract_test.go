package trace

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ironsheep/curve-digitizer-mcp/internal/option"
)

// createCurveBuffer returns a white buffer with one black pixel per column at rows[col].
// A negative row leaves the column white.
func createCurveBuffer(width, height int, rows []int) *Buffer {
	buf := NewBuffer(width, height)
	for col, row := range rows {
		if row >= 0 {
			buf.Set(col, row, 0, 0, 0)
		}
	}
	return buf
}

// extractSequential is a single-goroutine reference for the column scan.
func extractSequential(region Region, opts Options) []Sample {
	rows := make([]int, region.Width())
	lumas := make([]float64, region.Width())
	cutoff, hasCutoff := opts.MaxLuma.Get()
	for col := range rows {
		rows[col] = -1
		lumas[col] = math.Inf(1)
		for row := 0; row < region.Height(); row++ {
			if l := Luma(region.RGBAt(col, row)); l < lumas[col] {
				lumas[col] = l
				rows[col] = row
			}
		}
		if hasCutoff && lumas[col] >= cutoff {
			rows[col] = -1
		}
	}
	filled := FillMissing(rows, region.Height())
	out := make([]Sample, len(rows))
	for col := range out {
		out[col] = Sample{Column: col, Row: filled[col], Intensity: lumas[col]}
		if rows[col] < 0 {
			out[col].Intensity = 255
			out[col].Filled = true
		}
	}
	return out
}

func TestLuma(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    float64
	}{
		{"black", 0, 0, 0, 0},
		{"red", 255, 0, 0, 76.245},
		{"green", 0, 255, 0, 149.685},
		{"blue", 0, 0, 255, 29.07},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Luma(tt.r, tt.g, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Luma(%d,%d,%d) = %v, want %v", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestExtract_DarkestRow(t *testing.T) {
	rows := []int{5, 4, 3, 2, 3, 4}
	buf := createCurveBuffer(6, 10, rows)

	samples := Extract(buf, Options{})
	if len(samples) != 6 {
		t.Fatalf("len = %d, want 6", len(samples))
	}
	for col, s := range samples {
		if s.Column != col {
			t.Errorf("sample %d: column = %d", col, s.Column)
		}
		if s.Row != rows[col] {
			t.Errorf("sample %d: row = %d, want %d", col, s.Row, rows[col])
		}
		if s.Intensity != 0 {
			t.Errorf("sample %d: intensity = %v, want 0", col, s.Intensity)
		}
		if s.Filled {
			t.Errorf("sample %d should not be filled", col)
		}
	}
}

func TestExtract_PrefersLowerLuma(t *testing.T) {
	buf := NewBuffer(1, 5)
	buf.Set(0, 1, 128, 128, 128)
	buf.Set(0, 3, 40, 40, 40)

	samples := Extract(buf, Options{})
	if samples[0].Row != 3 {
		t.Errorf("row = %d, want 3", samples[0].Row)
	}
}

func TestExtract_TieTakesTopmostRow(t *testing.T) {
	buf := NewBuffer(1, 6)
	buf.Set(0, 2, 10, 10, 10)
	buf.Set(0, 4, 10, 10, 10)

	samples := Extract(buf, Options{})
	if samples[0].Row != 2 {
		t.Errorf("row = %d, want 2", samples[0].Row)
	}
}

func TestExtract_WhiteColumnStillSelected(t *testing.T) {
	buf := NewBuffer(3, 4)

	samples := Extract(buf, Options{})
	for _, s := range samples {
		if s.Row != 0 || s.Filled {
			t.Errorf("column %d: row=%d filled=%v, want row 0 unfilled", s.Column, s.Row, s.Filled)
		}
	}
}

func TestExtract_LengthInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for width := 1; width <= 40; width += 3 {
		height := 1 + rng.Intn(20)
		buf := NewBuffer(width, height)
		for col := 0; col < width; col++ {
			for row := 0; row < height; row++ {
				v := uint8(rng.Intn(256))
				buf.Set(col, row, v, uint8(rng.Intn(256)), v)
			}
		}

		samples := Extract(buf, Options{})
		if len(samples) != width {
			t.Fatalf("width %d: got %d samples", width, len(samples))
		}
		for col, s := range samples {
			if s.Column != col {
				t.Fatalf("width %d: sample %d has column %d", width, col, s.Column)
			}
		}
	}
}

func TestExtract_ZeroWidth(t *testing.T) {
	samples := Extract(NewBuffer(0, 10), Options{})
	if samples == nil || len(samples) != 0 {
		t.Errorf("got %v, want empty non-nil slice", samples)
	}
}

func TestExtract_ZeroHeight(t *testing.T) {
	samples := Extract(NewBuffer(4, 0), Options{})
	if len(samples) != 4 {
		t.Fatalf("len = %d, want 4", len(samples))
	}
	for _, s := range samples {
		if s.Row != 0 || !s.Filled || s.Intensity != 255 {
			t.Errorf("column %d: %+v, want row 0 filled intensity 255", s.Column, s)
		}
	}
}

func TestExtract_InterpolationLaw(t *testing.T) {
	tests := []struct {
		name   string
		n      int
		r0, rN int
	}{
		{"descending", 9, 2, 18},
		{"ascending", 7, 15, 1},
		{"flat", 5, 6, 6},
		{"two columns", 2, 3, 9},
		{"odd step", 4, 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([]int, tt.n)
			for i := range rows {
				rows[i] = -1
			}
			rows[0] = tt.r0
			rows[tt.n-1] = tt.rN
			buf := createCurveBuffer(tt.n, 20, rows)

			samples := Extract(buf, Options{MaxLuma: option.Some(250)})
			for i, s := range samples {
				want := int(math.Round(float64(tt.r0) + float64(tt.rN-tt.r0)*float64(i)/float64(tt.n-1)))
				if s.Row != want {
					t.Errorf("column %d: row = %d, want %d", i, s.Row, want)
				}
				interior := i > 0 && i < tt.n-1
				if s.Filled != interior {
					t.Errorf("column %d: filled = %v, want %v", i, s.Filled, interior)
				}
			}
		})
	}
}

func TestExtract_CutoffAllMissing(t *testing.T) {
	buf := NewBuffer(5, 9)

	samples := Extract(buf, Options{MaxLuma: option.Some(250)})
	for _, s := range samples {
		if s.Row != 4 {
			t.Errorf("column %d: row = %d, want 4 (height/2)", s.Column, s.Row)
		}
	}
}

func TestExtract_MatchesSequentialScan(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	width, height := 257, 31
	buf := NewBuffer(width, height)
	for col := 0; col < width; col++ {
		if rng.Intn(4) == 0 {
			continue
		}
		buf.Set(col, rng.Intn(height), uint8(rng.Intn(200)), uint8(rng.Intn(200)), uint8(rng.Intn(200)))
	}

	for _, opts := range []Options{{}, {MaxLuma: option.Some(250)}} {
		got := Extract(buf, opts)
		want := extractSequential(buf, opts)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("parallel scan differs from sequential (-want +got):\n%s", diff)
		}
	}
}

func TestFillMissing(t *testing.T) {
	tests := []struct {
		name   string
		rows   []int
		height int
		want   []int
	}{
		{"no gaps", []int{1, 2, 3}, 10, []int{1, 2, 3}},
		{"interior gap", []int{0, -1, -1, -1, 8}, 10, []int{0, 2, 4, 6, 8}},
		{"rounds to nearest", []int{0, -1, 3}, 10, []int{0, 2, 3}},
		{"leading gap", []int{-1, -1, 5, 6}, 10, []int{5, 5, 5, 6}},
		{"trailing gap", []int{4, 7, -1, -1}, 10, []int{4, 7, 7, 7}},
		{"all missing", []int{-1, -1, -1}, 9, []int{4, 4, 4}},
		{"all missing zero height", []int{-1, -1}, 0, []int{0, 0}},
		{"empty", []int{}, 5, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := make([]int, len(tt.rows))
			copy(input, tt.rows)
			got := FillMissing(tt.rows, tt.height)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FillMissing mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(input, tt.rows); diff != "" {
				t.Errorf("input was modified (-before +after):\n%s", diff)
			}
		})
	}
}

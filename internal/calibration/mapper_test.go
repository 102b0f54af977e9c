package calibration

import (
	"errors"
	"math"
	"testing"

	"github.com/ironsheep/curve-digitizer-mcp/internal/option"
	"github.com/ironsheep/curve-digitizer-mcp/internal/trace"
)

func anchor(px, py float64, vx, vy option.Float) *Anchor {
	return &Anchor{Pixel: Point{X: px, Y: py}, Value: Value{X: vx, Y: vy}}
}

func roundTripPair() Pair {
	return Pair{
		A: anchor(0, 100, option.Some(0), option.Some(0)),
		B: anchor(100, 0, option.Some(10), option.Some(10)),
	}
}

func TestPairComplete(t *testing.T) {
	tests := []struct {
		name string
		pair Pair
		want bool
	}{
		{"both nil", Pair{}, false},
		{"only A", Pair{A: anchor(0, 0, option.Some(1), option.Some(1))}, false},
		{"missing value", Pair{
			A: anchor(0, 0, option.Some(1), option.None()),
			B: anchor(5, 5, option.Some(2), option.Some(2)),
		}, false},
		{"pure pixel markers", Pair{
			A: anchor(0, 0, option.None(), option.None()),
			B: anchor(5, 5, option.None(), option.None()),
		}, false},
		{"coincident pixels", Pair{
			A: anchor(3, 3, option.Some(1), option.Some(1)),
			B: anchor(3, 3, option.Some(2), option.Some(2)),
		}, false},
		{"zero values are present", Pair{
			A: anchor(0, 10, option.Some(0), option.Some(0)),
			B: anchor(10, 0, option.Some(1), option.Some(1)),
		}, true},
		{"shared x only", Pair{
			A: anchor(3, 0, option.Some(1), option.Some(1)),
			B: anchor(3, 9, option.Some(2), option.Some(2)),
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pair.Complete(); got != tt.want {
				t.Errorf("Complete() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMapper_RoundTrip(t *testing.T) {
	m, err := NewMapper(roundTripPair(), trace.Rect{X: 0, Y: 0, W: 101, H: 101}, Options{})
	if err != nil {
		t.Fatalf("NewMapper failed: %v", err)
	}
	if !m.Calibrated() {
		t.Fatal("expected calibrated mapper")
	}
	if got := m.MapX(50); got != 5 {
		t.Errorf("MapX(50) = %v, want 5", got)
	}
	if got := m.MapY(50); got != 5 {
		t.Errorf("MapY(50) = %v, want 5", got)
	}
	if got := m.MapY(100); got != 0 {
		t.Errorf("MapY(100) = %v, want 0", got)
	}
	if len(m.Warnings()) != 0 {
		t.Errorf("unexpected warnings: %v", m.Warnings())
	}
}

func TestMapper_Affine(t *testing.T) {
	pair := Pair{
		A: anchor(10, 200, option.Some(-5), option.Some(100)),
		B: anchor(110, 50, option.Some(15), option.Some(400)),
	}
	m, err := NewMapper(pair, trace.Rect{W: 200, H: 300}, Options{})
	if err != nil {
		t.Fatalf("NewMapper failed: %v", err)
	}

	tests := []struct {
		px, py float64
		wx, wy float64
	}{
		{10, 200, -5, 100},
		{110, 50, 15, 400},
		{60, 125, 5, 250},
		{210, 0, 35, 500},
	}
	for _, tt := range tests {
		if got := m.MapX(tt.px); math.Abs(got-tt.wx) > 1e-9 {
			t.Errorf("MapX(%v) = %v, want %v", tt.px, got, tt.wx)
		}
		if got := m.MapY(tt.py); math.Abs(got-tt.wy) > 1e-9 {
			t.Errorf("MapY(%v) = %v, want %v", tt.py, got, tt.wy)
		}
	}
}

func TestMapper_NormalizedFallback(t *testing.T) {
	crop := trace.Rect{X: 20, Y: 30, W: 11, H: 21}
	m, err := NewMapper(Pair{}, crop, Options{})
	if err != nil {
		t.Fatalf("NewMapper failed: %v", err)
	}
	if m.Calibrated() {
		t.Error("fallback mapper should not report calibrated")
	}

	tests := []struct {
		px, py float64
		wx, wy float64
	}{
		{20, 50, 0, 0},
		{30, 30, 1, 1},
		{25, 40, 0.5, 0.5},
	}
	for _, tt := range tests {
		if got := m.MapX(tt.px); math.Abs(got-tt.wx) > 1e-12 {
			t.Errorf("MapX(%v) = %v, want %v", tt.px, got, tt.wx)
		}
		if got := m.MapY(tt.py); math.Abs(got-tt.wy) > 1e-12 {
			t.Errorf("MapY(%v) = %v, want %v", tt.py, got, tt.wy)
		}
	}
}

func TestMapper_NormalizedSinglePixelSpan(t *testing.T) {
	m, err := NewMapper(Pair{}, trace.Rect{X: 4, Y: 4, W: 1, H: 1}, Options{})
	if err != nil {
		t.Fatalf("NewMapper failed: %v", err)
	}
	if got := m.MapX(4); got != 0 {
		t.Errorf("MapX(4) = %v, want 0", got)
	}
	if got := m.MapY(4); got != 0 {
		t.Errorf("MapY(4) = %v, want 0", got)
	}
}

func TestMapper_NormalizedZeroHeightStaysInRange(t *testing.T) {
	res, err := Map(trace.Extract(trace.NewBuffer(3, 0), trace.Options{}), Pair{}, trace.Rect{X: 10, Y: 20, W: 3, H: 0}, Options{})
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}
	if len(res.Points) != 3 {
		t.Fatalf("len = %d, want 3", len(res.Points))
	}
	for _, p := range res.Points {
		if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
			t.Errorf("normalized point %+v outside [0,1]", p)
		}
	}
}

func TestMapper_NormalizedClampsOutsideCrop(t *testing.T) {
	m, err := NewMapper(Pair{}, trace.Rect{X: 20, Y: 30, W: 11, H: 21}, Options{})
	if err != nil {
		t.Fatalf("NewMapper failed: %v", err)
	}
	if got := m.MapX(0); got != 0 {
		t.Errorf("MapX(0) = %v, want 0", got)
	}
	if got := m.MapX(100); got != 1 {
		t.Errorf("MapX(100) = %v, want 1", got)
	}
	if got := m.MapY(0); got != 1 {
		t.Errorf("MapY(0) = %v, want 1", got)
	}
	if got := m.MapY(100); got != 0 {
		t.Errorf("MapY(100) = %v, want 0", got)
	}
}

func TestMapper_IncompletePairFallsBack(t *testing.T) {
	pair := Pair{
		A: anchor(0, 100, option.Some(0), option.Some(0)),
		B: anchor(100, 0, option.Some(10), option.None()),
	}
	m, err := NewMapper(pair, trace.Rect{W: 101, H: 101}, Options{})
	if err != nil {
		t.Fatalf("NewMapper failed: %v", err)
	}
	if m.Calibrated() {
		t.Error("incomplete pair should use fallback")
	}
	if got := m.MapX(100); got != 1 {
		t.Errorf("MapX(100) = %v, want 1", got)
	}
}

func TestMapper_DegenerateAxisWarns(t *testing.T) {
	pair := Pair{
		A: anchor(40, 0, option.Some(1), option.Some(0)),
		B: anchor(40, 10, option.Some(3), option.Some(5)),
	}
	m, err := NewMapper(pair, trace.Rect{W: 100, H: 100}, Options{})
	if err != nil {
		t.Fatalf("NewMapper failed: %v", err)
	}

	warnings := m.Warnings()
	if len(warnings) != 1 || warnings[0].Axis != "x" {
		t.Fatalf("warnings = %+v, want one x warning", warnings)
	}
	// Denominator 1: mapX(41) = 1 + 1*(3-1)/1.
	if got := m.MapX(41); got != 3 {
		t.Errorf("MapX(41) = %v, want 3", got)
	}
	if got := m.MapY(5); got != 2.5 {
		t.Errorf("MapY(5) = %v, want 2.5", got)
	}
}

func TestMapper_DegenerateAxisStrict(t *testing.T) {
	pair := Pair{
		A: anchor(0, 7, option.Some(1), option.Some(0)),
		B: anchor(10, 7, option.Some(3), option.Some(5)),
	}
	_, err := NewMapper(pair, trace.Rect{W: 100, H: 100}, Options{Strict: true})
	if !errors.Is(err, ErrDegenerateAxis) {
		t.Errorf("err = %v, want ErrDegenerateAxis", err)
	}
}

func TestMap_AppliesCropOffset(t *testing.T) {
	samples := []trace.Sample{
		{Column: 0, Row: 50},
		{Column: 25, Row: 0},
		{Column: 50, Row: 100},
	}
	crop := trace.Rect{X: 25, Y: 0, W: 51, H: 101}

	res, err := Map(samples, roundTripPair(), crop, Options{})
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}
	if len(res.Points) != len(samples) {
		t.Fatalf("len = %d, want %d", len(res.Points), len(samples))
	}

	want := []PhysicalPoint{{X: 2.5, Y: 5}, {X: 5, Y: 10}, {X: 7.5, Y: 0}}
	for i, p := range res.Points {
		if math.Abs(p.X-want[i].X) > 1e-12 || math.Abs(p.Y-want[i].Y) > 1e-12 {
			t.Errorf("point %d = %+v, want %+v", i, p, want[i])
		}
	}
	if !res.Calibrated {
		t.Error("expected calibrated result")
	}
}

func TestMap_Empty(t *testing.T) {
	res, err := Map(nil, Pair{}, trace.Rect{}, Options{})
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}
	if res.Points == nil || len(res.Points) != 0 {
		t.Errorf("points = %v, want empty non-nil", res.Points)
	}
}

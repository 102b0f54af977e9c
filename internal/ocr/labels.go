package ocr

import (
	"math"
	"regexp"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/curve-digitizer-mcp/internal/calibration"
	"github.com/ironsheep/curve-digitizer-mcp/internal/option"
	"github.com/ironsheep/curve-digitizer-mcp/internal/trace"
)

// Label is one word read from an axis region.
type Label struct {
	Text string `json:"text"`

	// Value is absent when Text is not a number.
	Value option.Float `json:"value"`

	// Confidence is Tesseract's word confidence scaled to 0-1.
	Confidence float64 `json:"confidence"`

	// Bounds and Center are in source image pixels.
	Bounds trace.Rect        `json:"bounds"`
	Center calibration.Point `json:"center"`
}

var (
	labelCleaner = strings.NewReplacer(
		"\u2212", "-", // minus sign
		"\u2013", "-", // en dash
		"\u2014", "-", // em dash
		"\u2009", "",  // thin space
		"\u00a0", "",
		" ", "",
	)
	thousandsPattern = regexp.MustCompile(`^[-+]?\d{1,3}(,\d{3})+(\.\d+)?$`)
	decimalComma     = regexp.MustCompile(`^[-+]?\d*,\d+$`)
)

// ParseNumericLabel reads a tick label such as "−2.5", "1,000" or "40%".
//
// Unicode minus signs and dashes become '-'. Comma groups of three digits
// are thousands separators; a single comma in a number without a point is
// a decimal comma. Surrounding brackets and trailing punctuation or percent
// signs are dropped. Anything still not a number is absent.
func ParseNumericLabel(s string) option.Float {
	s = labelCleaner.Replace(strings.TrimSpace(s))
	s = strings.TrimLeft(s, "([")
	s = strings.TrimRight(s, ".,;:%)]")

	switch {
	case thousandsPattern.MatchString(s):
		s = strings.ReplaceAll(s, ",", "")
	case decimalComma.MatchString(s):
		s = strings.Replace(s, ",", ".", 1)
	}
	return option.Parse(s)
}

// labelsFromBoxes converts word boxes found in a region that was scaled by
// scale back to source image coordinates.
func labelsFromBoxes(boxes []gosseract.BoundingBox, region trace.Rect, scale float64) []Label {
	if scale <= 0 {
		scale = 1
	}

	labels := make([]Label, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}

		x0 := region.X + int(math.Floor(float64(b.Box.Min.X)/scale))
		y0 := region.Y + int(math.Floor(float64(b.Box.Min.Y)/scale))
		x1 := region.X + int(math.Ceil(float64(b.Box.Max.X)/scale))
		y1 := region.Y + int(math.Ceil(float64(b.Box.Max.Y)/scale))

		labels = append(labels, Label{
			Text:       text,
			Value:      ParseNumericLabel(text),
			Confidence: b.Confidence / 100,
			Bounds:     trace.Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0},
			Center:     calibration.Point{X: float64(x0+x1) / 2, Y: float64(y0+y1) / 2},
		})
	}
	return labels
}

// Numeric returns the labels that parsed as numbers.
func Numeric(labels []Label) []Label {
	out := make([]Label, 0, len(labels))
	for _, l := range labels {
		if l.Value.IsSet() {
			out = append(out, l)
		}
	}
	return out
}

// Package calibration maps pixel-space trace samples to physical units.
//
// Two anchors, each pairing a pixel location with known physical X and Y
// values, define two independent affine maps:
//
//	mapX(px) = A.value.x + (px - A.pixel.x) * (B.value.x - A.value.x) / (B.pixel.x - A.pixel.x)
//	mapY(py) = A.value.y + (py - A.pixel.y) * (B.value.y - A.value.y) / (B.pixel.y - A.pixel.y)
//
// # Completeness
//
// A Pair is complete when both anchors exist, all four values are present and
// the two pixel locations differ. Incomplete pairs are not an error: the
// mapper falls back to a normalized [0,1] mapping across the crop rectangle,
// with Y inverted so that higher rows on the image give larger values.
//
// # Degenerate Axes
//
// When a complete pair shares a pixel coordinate on one axis, that axis's
// denominator is replaced with 1 and a Warning is recorded. The resulting scale
// is unreliable. With Options.Strict the mapper returns ErrDegenerateAxis
// instead.
//
// # Session State
//
// State is an immutable value updated through SetAnchor, SetPixel, SetValue
// and Reset; each returns a new State. Store keeps one State per image for
// interactive sessions and is safe for concurrent use.
package calibration

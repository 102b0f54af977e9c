// Package detection finds chart structure in raster images.
//
// The package locates the horizontal and vertical axis lines of a chart so
// the curve trace can be confined to the plot area. Axis lines are dark and
// long, and the per-column darkest-pixel trace would otherwise lock onto
// them.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Segment endpoints are inclusive
//
// # Limitations
//
// Only axis-aligned lines are considered, so rotated scans should be
// straightened first. Charts drawn inside a full frame report the bottom and
// left edges of the frame as the axes, which is what the trace needs.
package detection

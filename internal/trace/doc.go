// Package trace converts a rectangular pixel region of a scanned chart into a
// pixel-space trace: one sample per column, taken at the darkest row.
//
// # Coordinate System
//
// Samples use region-relative coordinates:
//   - Column: 0 = leftmost column of the region
//   - Row: 0 = topmost row of the region, increasing downward
//
// A Rect locates the region inside the source image. Callers add Rect.X and
// Rect.Y to a sample to recover image coordinates.
//
// # Luma
//
// Darkness is measured with ITU-R BT.601 luma on 8-bit channels:
//
//	L = 0.299*R + 0.587*G + 0.114*B
//
// The trace is assumed darker than the chart background, so the row with the
// minimum L wins. Ties resolve to the topmost row.
//
// # Missing Columns
//
// A column has no usable sample when the region has zero height, or when an
// optional luma cutoff is configured and the column's darkest pixel is not
// below it. Missing rows are filled by FillMissing:
//   - between two valid columns: linear interpolation, rounded to nearest
//   - on one side only: the nearest valid row is repeated
//   - no valid column anywhere: height/2
//
// # Thread Safety
//
// Extract scans columns in parallel. Results are identical to a sequential
// scan because each column is computed independently. Region implementations
// must therefore support concurrent reads; Buffer does.
package trace

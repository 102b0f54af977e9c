// Package imaging holds the image-side helpers around the digitizing
// pipeline: a decoded-image cache, crop previews, pixel and ink color
// sampling, and the annotated overlay returned to MCP clients.
//
// # Coordinate System
//
// All coordinates are 0-based pixels relative to the image origin, with X
// increasing rightward and Y increasing downward. Rectangles use trace.Rect
// (top-left corner plus width and height), the same convention the pipeline
// uses for crops.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The drawing functions never modify
// their source image; they draw on a copy.
package imaging

package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/curve-digitizer-mcp/internal/trace"
)

// PNGResult is an encoded image returned to the client.
type PNGResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// CropPreviewResult is the plot area a digitize call would scan.
type CropPreviewResult struct {
	PNGResult
	Crop trace.Rect `json:"crop"`
}

// CropPreview cuts rect out of img so the user can confirm the plot area.
// A scale other than 1 resizes the preview with Lanczos resampling.
//
// # Errors
//
//   - trace.ErrRegionOutOfBounds if rect does not fit the image
//   - rect has zero area
func CropPreview(img image.Image, rect trace.Rect, scale float64) (*CropPreviewResult, error) {
	bounds := img.Bounds()
	if err := rect.Validate(bounds.Dx(), bounds.Dy()); err != nil {
		return nil, err
	}
	if rect.Empty() {
		return nil, fmt.Errorf("invalid crop region: %s has zero area", rect)
	}

	x0 := bounds.Min.X + rect.X
	y0 := bounds.Min.Y + rect.Y
	cropped := imaging.Crop(img, image.Rect(x0, y0, x0+rect.W, y0+rect.H))

	if scale != 1.0 && scale > 0 {
		newWidth := max(1, int(float64(rect.W)*scale))
		newHeight := max(1, int(float64(rect.H)*scale))
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	res, err := encodePNG(cropped)
	if err != nil {
		return nil, err
	}
	return &CropPreviewResult{PNGResult: *res, Crop: rect}, nil
}

func encodePNG(img image.Image) (*PNGResult, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	b := img.Bounds()
	return &PNGResult{
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

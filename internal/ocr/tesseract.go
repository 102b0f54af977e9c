package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/curve-digitizer-mcp/internal/trace"
)

// numericWhitelist limits recognition to characters found in tick labels.
const numericWhitelist = "0123456789.,-+%"

// upscaleTarget is the minimum height, in pixels, a region is resized to
// before recognition. Tesseract misses glyphs shorter than about 20 pixels.
const upscaleTarget = 96

// ReadAxisLabels runs Tesseract over region of img and returns every word
// found, in Tesseract's reading order. Use Numeric to keep only numbers.
//
// Regions shorter than upscaleTarget are enlarged (up to 4x) and converted
// to grayscale first; returned bounds are mapped back to img coordinates.
//
// # Errors
//
//   - trace.ErrRegionOutOfBounds if region does not fit img
//   - Tesseract initialization or recognition failures, including a
//     missing traineddata file for language
func ReadAxisLabels(img image.Image, region trace.Rect, language string) ([]Label, error) {
	bounds := img.Bounds()
	if err := region.Validate(bounds.Dx(), bounds.Dy()); err != nil {
		return nil, err
	}
	if region.Empty() {
		return []Label{}, nil
	}
	if language == "" {
		language = "eng"
	}

	x0 := bounds.Min.X + region.X
	y0 := bounds.Min.Y + region.Y
	cropped := imaging.Crop(img, image.Rect(x0, y0, x0+region.W, y0+region.H))

	scale := 1.0
	if region.H < upscaleTarget {
		scale = min(4.0, float64(upscaleTarget)/float64(region.H))
	}
	prepared := imaging.Grayscale(cropped)
	if scale != 1.0 {
		prepared = imaging.Resize(prepared, int(float64(region.W)*scale), int(float64(region.H)*scale), imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, prepared); err != nil {
		return nil, fmt.Errorf("failed to encode region: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetWhitelist(numericWhitelist); err != nil {
		return nil, fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		return nil, fmt.Errorf("failed to set page segmentation: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("tesseract OCR failed: %w", err)
	}

	return labelsFromBoxes(boxes, region, scale), nil
}

// Info describes the OCR backend.
type Info struct {
	Available bool     `json:"available"`
	Version   string   `json:"version,omitempty"`
	Languages []string `json:"languages,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// GetInfo reports the linked Tesseract version and the installed languages.
func GetInfo() Info {
	langs, err := gosseract.GetAvailableLanguages()
	if err != nil {
		return Info{Available: false, Error: err.Error()}
	}
	return Info{Available: len(langs) > 0, Version: gosseract.Version(), Languages: langs}
}

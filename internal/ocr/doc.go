// Package ocr reads numeric axis tick labels with Tesseract (via
// gosseract/v2) so a client can fill in calibration anchor values from the
// chart itself.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// TESSDATA_PREFIX overrides the language data location.
//
// # Accuracy
//
// Recognition is restricted to digits and number punctuation. Tick labels
// are usually small, so short regions are enlarged before recognition.
// Label values are parsed with ParseNumericLabel; a word that cannot be
// parsed keeps its text and has an absent value.
package ocr

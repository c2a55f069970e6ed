// Package ocr recognises the text annotations that the 1970s ground
// pipeline burnt into Viking Lander band data, and classifies each band's
// required rotation and overlay type from them.
//
// Recognition itself happens behind the Recognizer interface so that the
// decoder and the tests are independent of the engine. The production
// implementation wraps a Tesseract client scoped to one band load.
package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"

	"github.com/planum-obs/viking/raster"
)

var ErrInitFailed = errors.New("OCR engine failed to initialize")

// Tuning constants for the annotation text. The overlay glyphs recognise
// best with the original image scaled by three and binarised at 70; the
// Viking data set is fixed, so these need never vary.
const (
	scaleFactor = 3
	threshold   = 70
)

// Recognizer extracts whatever text it can from raw band data.
type Recognizer interface {
	Recognize(m raster.Matrix) (string, error)
}

// TesseractRecognizer is a Recognizer over a Tesseract client. It is a
// scoped handle: acquire with NewTesseractRecognizer, release with Close.
// The engine is single-threaded; do not share across goroutines.
type TesseractRecognizer struct {
	client *gosseract.Client
}

// NewTesseractRecognizer opens a Tesseract client tuned for the overlay
// vocabulary (uppercase letters, digits and the few separators the ground
// pipeline used).
func NewTesseractRecognizer() (*TesseractRecognizer, error) {
	client := gosseract.NewClient()
	if client == nil {
		return nil, ErrInitFailed
	}
	if err := client.SetWhitelist("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789/.-+ "); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %w", ErrInitFailed, err)
	}
	return &TesseractRecognizer{client: client}, nil
}

// Close releases the engine handle.
func (t *TesseractRecognizer) Close() error {
	return t.client.Close()
}

// Recognize runs one OCR pass over the given band data.
func (t *TesseractRecognizer) Recognize(m raster.Matrix) (string, error) {
	encoded, err := encodeForRecognition(m)
	if err != nil {
		return "", err
	}
	if err := t.client.SetImageFromBytes(encoded); err != nil {
		return "", fmt.Errorf("could not set OCR image: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR pass failed: %w", err)
	}
	return text, nil
}

// encodeForRecognition binarises the band data at the fixed threshold,
// inverts it (the overlays are bright on dark, OCR wants the opposite),
// scales by the fixed factor and encodes as PNG for the engine.
func encodeForRecognition(m raster.Matrix) ([]byte, error) {
	height := m.Height()
	width := m.Width()
	if height == 0 || width == 0 {
		return nil, errors.New("empty band data")
	}

	img := image.NewGray(image.Rect(0, 0, width*scaleFactor, height*scaleFactor))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var value byte = 0xff
			if m[y][x] > threshold {
				value = 0x00
			}
			for dy := 0; dy < scaleFactor; dy++ {
				row := (y*scaleFactor + dy) * img.Stride
				for dx := 0; dx < scaleFactor; dx++ {
					img.Pix[row+x*scaleFactor+dx] = value
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding OCR input: %w", err)
	}
	return buf.Bytes(), nil
}

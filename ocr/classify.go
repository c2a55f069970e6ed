package ocr

import (
	"strings"

	"github.com/planum-obs/viking/log"
	"github.com/planum-obs/viking/raster"
)

// histogramVocabulary is text found in the full histogram block, which
// always appears rotated 90 degrees counter-clockwise away from the
// correct image orientation.
var histogramVocabulary = []string{
	"VIKING", "LANDER", "LABEL", "DIODE", "CHANNEL", "AZIMUTH",
	"ELEVATION", "OFFSET", "RESCAN", "SEGMENT", "MEAN",
}

// axisVocabulary is text found along the azimuth/elevation axes of a
// properly oriented image.
var axisVocabulary = []string{
	"AZ", "CAMERA", "SCAN", "LINE", "IPL", "SAMPLE",
}

// Result is the outcome of visually examining one band.
type Result struct {
	Rotation             raster.Rotation
	AxisPresent          bool
	FullHistogramPresent bool
	Text                 string
}

// Classifier decides a band's rotation and overlay flags by running the
// recognizer over the four candidate rotations. Recognition results are
// cached per rotation; the cache is scoped to a single band load, so a
// classifier must not be reused across bands.
type Classifier struct {
	rec   Recognizer
	cache map[raster.Rotation]string
}

// NewClassifier wraps a recognizer for one band load.
func NewClassifier(rec Recognizer) *Classifier {
	return &Classifier{
		rec:   rec,
		cache: make(map[raster.Rotation]string),
	}
}

// recognize runs the recognizer over the band data rotated as requested,
// consulting the per-rotation cache first.
func (c *Classifier) recognize(m raster.Matrix, rotation raster.Rotation) (string, error) {
	if text, ok := c.cache[rotation]; ok {
		log.Debug("annotation cache hit", log.F("rotation", rotation.String()))
		return text, nil
	}
	text, err := c.rec.Recognize(raster.Rotate(rotation, m.Clone()))
	if err != nil {
		return "", err
	}
	c.cache[rotation] = text
	return text, nil
}

func containsAny(text string, vocabulary []string) bool {
	for _, word := range vocabulary {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}

var probeOrder = []raster.Rotation{
	raster.RotateNone, raster.Rotate90, raster.Rotate180, raster.Rotate270,
}

// Classify examines the band data visually. It first hunts for the full
// histogram block under each rotation; a hit means the image itself needs
// a further quarter turn counter-clockwise. Failing that it hunts for
// properly oriented axis text. If neither vocabulary matches, the band is
// taken to be a vanilla image needing no rotation.
func (c *Classifier) Classify(m raster.Matrix) (Result, error) {
	for _, rotation := range probeOrder {
		text, err := c.recognize(m, rotation)
		if err != nil {
			return Result{}, err
		}
		if containsAny(text, histogramVocabulary) {
			return Result{
				Rotation:             rotation.Next(),
				AxisPresent:          true,
				FullHistogramPresent: true,
				Text:                 text,
			}, nil
		}
	}

	for _, rotation := range probeOrder {
		text, err := c.recognize(m, rotation)
		if err != nil {
			return Result{}, err
		}
		if containsAny(text, axisVocabulary) {
			return Result{
				Rotation:    rotation,
				AxisPresent: true,
				Text:        text,
			}, nil
		}
	}

	log.Debug("could not guess image rotation, assuming vanilla image")
	return Result{Rotation: raster.RotateNone}, nil
}

// Package assemble groups decoded bands by camera event, picks the best
// consistent band set per event, and drives reconstruction into the
// output tree.
package assemble

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/planum-obs/viking/band"
	"github.com/planum-obs/viking/ocr"
	"github.com/planum-obs/viking/output"
)

// Options is the one configuration value for a whole run, built once by
// the caller and passed by reference.
type Options struct {
	// Output tree shaping.
	DirectorizeBandClass bool
	DirectorizeLocation  bool
	DirectorizeMonth     bool
	DirectorizeSol       bool

	// Band filters.
	FilterCameraEvent string
	FilterDiodeClass  string // any, broadband, colour, infrared, sun, survey
	FilterLander      int    // 0 accepts both landers
	FilterSolarDay    int    // negative accepts every sol

	// Behaviour.
	AutoRotate       bool
	DryRun           bool
	GenerateMetadata bool
	IgnoreBadFiles   bool
	Interlace        bool
	Jobs             int // accepted for compatibility; processing is sequential
	NoReconstruct    bool
	Overwrite        bool
	Recursive        bool
	SummarizeOnly    bool

	// NewRecognizer overrides the OCR engine factory, mainly for tests.
	NewRecognizer func() (ocr.Recognizer, error)
}

// DefaultOptions returns the options a bare command line implies.
func DefaultOptions() *Options {
	return &Options{
		AutoRotate:     true,
		FilterSolarDay: -1,
	}
}

// diodeClasses maps the --filter-diode vocabulary to diode sets. An
// empty set accepts every diode.
var diodeClasses = map[string][]band.Diode{
	"":          nil,
	"any":       nil,
	"broadband": {band.Broadband1, band.Broadband2, band.Broadband3, band.Broadband4},
	"colour":    {band.Red, band.Green, band.Blue},
	"color":     {band.Red, band.Green, band.Blue},
	"infrared":  {band.Infrared1, band.Infrared2, band.Infrared3},
	"sun":       {band.Sun},
	"survey":    {band.Survey},
}

// DiodeFilterSet resolves the configured diode class filter.
func (o *Options) DiodeFilterSet() (map[band.Diode]bool, error) {
	diodes, ok := diodeClasses[o.FilterDiodeClass]
	if !ok {
		return nil, fmt.Errorf("unknown diode class filter %q", o.FilterDiodeClass)
	}
	if diodes == nil {
		return nil, nil
	}
	return lo.SliceToMap(diodes, func(d band.Diode) (band.Diode, bool) {
		return d, true
	}), nil
}

// decodeOptions derives the per-band decode options.
func (o *Options) decodeOptions() *band.DecodeOptions {
	return &band.DecodeOptions{
		AutoRotate:        o.AutoRotate,
		FilterLander:      o.FilterLander,
		FilterSolarDay:    o.FilterSolarDay,
		FilterCameraEvent: o.FilterCameraEvent,
		NewRecognizer:     o.NewRecognizer,
	}
}

// writeOptions derives the image writer options.
func (o *Options) writeOptions() output.Options {
	return output.Options{
		Interlace: o.Interlace,
		Overwrite: o.Overwrite,
		DryRun:    o.DryRun,
	}
}

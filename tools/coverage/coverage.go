// Package coverage renders a chart of camera events per mission sol from
// a decoded catalogue: one column per sol, one stacked cell per event,
// coloured by band-type class and split by landing site. It gives a
// quick visual of which stretches of the mission a tape collection
// actually covers.
package coverage

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"sort"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/planum-obs/viking/assemble"
)

// Sample is one camera event's worth of chart input.
type Sample struct {
	Sol    int
	Lander int
	Class  string // Colour, Infrared, Sun, Survey
	Bands  int    // how many band files contributed
}

// Options sizes the rendered chart.
type Options struct {
	Width   int
	Height  int
	Padding int
}

// DefaultOptions returns the standard chart size.
func DefaultOptions() *Options {
	return &Options{Width: 800, Height: 300, Padding: 20}
}

// classColours matches the band-type classes to chart colours.
var classColours = map[string]color.RGBA{
	"Colour":   {R: 0xd4, G: 0x5d, B: 0x3a, A: 0xff},
	"Infrared": {R: 0x8a, G: 0x3f, B: 0x8f, A: 0xff},
	"Sun":      {R: 0xe0, G: 0xb8, B: 0x30, A: 0xff},
	"Survey":   {R: 0x4f, G: 0x84, B: 0xc4, A: 0xff},
}

var unknownClassColour = color.RGBA{R: 0x90, G: 0x90, B: 0x90, A: 0xff}

// FromCatalogue flattens an assembled catalogue into chart samples.
func FromCatalogue(catalogue map[string]*assemble.ReconstructableImage) []Sample {
	samples := make([]Sample, 0, len(catalogue))
	for _, ri := range catalogue {
		samples = append(samples, Sample{
			Sol:    ri.SolarDay,
			Lander: ri.LanderNumber,
			Class:  ri.BandTypeClass,
			Bands:  ri.BandCount(),
		})
	}
	sort.Slice(samples, func(i, j int) bool {
		if samples[i].Sol != samples[j].Sol {
			return samples[i].Sol < samples[j].Sol
		}
		return samples[i].Lander < samples[j].Lander
	})
	return samples
}

// RenderSVG builds the chart as an SVG document.
func RenderSVG(samples []Sample, opts *Options) string {
	if opts == nil {
		opts = DefaultOptions()
	}

	svg := NewSVGBuilder(opts.Width, opts.Height)
	svg.Rect(0, 0, float64(opts.Width), float64(opts.Height), "rgb(16,16,20)")

	if len(samples) == 0 {
		return svg.String()
	}

	minSol, maxSol := samples[0].Sol, samples[0].Sol
	for _, s := range samples {
		if s.Sol < minSol {
			minSol = s.Sol
		}
		if s.Sol > maxSol {
			maxSol = s.Sol
		}
	}
	solRange := maxSol - minSol
	if solRange == 0 {
		solRange = 1
	}

	padding := float64(opts.Padding)
	availWidth := float64(opts.Width) - 2*padding
	// The chart splits into one horizontal belt per landing site.
	beltHeight := (float64(opts.Height) - 3*padding) / 2
	cell := availWidth / float64(solRange+1)
	if cell > 8 {
		cell = 8
	}

	solX := func(sol int) float64 {
		return padding + float64(sol-minSol)/float64(solRange)*(availWidth-cell)
	}
	beltY := func(lander int) float64 {
		if lander == 2 {
			return 2*padding + beltHeight
		}
		return padding
	}

	// Belt baselines.
	axis := color.RGBA{R: 0x50, G: 0x50, B: 0x58, A: 0xff}
	svg.Line(padding, padding+beltHeight, padding+availWidth, padding+beltHeight, axis, 1)
	svg.Line(padding, 2*padding+2*beltHeight, padding+availWidth, 2*padding+2*beltHeight, axis, 1)

	// Events stack upward from their belt's baseline, one cell per
	// event, taller when more band files contributed.
	stacked := make(map[[2]int]float64)
	for _, s := range samples {
		key := [2]int{s.Sol, s.Lander}
		col, ok := classColours[s.Class]
		if !ok {
			col = unknownClassColour
		}
		h := float64(2 + 2*s.Bands)
		if h > beltHeight/2 {
			h = beltHeight / 2
		}
		base := beltY(s.Lander) + beltHeight - stacked[key]
		svg.RectRGBA(solX(s.Sol), base-h, cell, h, col)
		stacked[key] += h + 1
	}

	// Legend swatches along the bottom edge.
	legendX := padding
	for _, class := range []string{"Colour", "Infrared", "Sun", "Survey"} {
		svg.RectRGBA(legendX, float64(opts.Height)-padding+4, 10, 10, classColours[class])
		legendX += 70
	}

	return svg.String()
}

// RenderImage rasterises the chart.
func RenderImage(samples []Sample, opts *Options) (image.Image, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	icon, err := oksvg.ReadIconStream(strings.NewReader(RenderSVG(samples, opts)))
	if err != nil {
		return nil, fmt.Errorf("parsing chart svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(opts.Width), float64(opts.Height))

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	scanner := rasterx.NewScannerGV(opts.Width, opts.Height, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(opts.Width, opts.Height, scanner), 1.0)
	return img, nil
}

// WritePNG rasterises the chart and encodes it as PNG.
func WritePNG(w io.Writer, samples []Sample, opts *Options) error {
	img, err := RenderImage(samples, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

package assemble

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/planum-obs/viking/band"
	"github.com/planum-obs/viking/log"
	"github.com/planum-obs/viking/output"
	"github.com/planum-obs/viking/raster"
)

var (
	ErrUnknownDiode           = errors.New("cannot reconstruct image from unsupported diode band type")
	ErrSizeMismatch           = errors.New("image bands not all the same size, may be missing scanlines")
	ErrNoMatchingHistogramSet = errors.New("images for each band present, but no matching set of full histogram variants available")
	ErrNoMatchingVanillaSet   = errors.New("images for each band present, but no matching set of non-overlayed variants available")
	ErrAllBandsDumped         = errors.New("cannot reconstruct, dumped all bands")
	ErrBadCameraEventLabel    = errors.New("malformed camera event label")
)

// ReconstructableImage collects every band of one camera event and
// reassembles the best consistent set into an output image.
type ReconstructableImage struct {
	outputRoot string

	CameraEventLabel string
	CameraEventNoSol string
	SolarDay         int
	LanderNumber     int
	Month            string
	BandTypeClass    string

	red   []*band.Band
	green []*band.Band
	blue  []*band.Band
	ir1   []*band.Band
	ir2   []*band.Band
	ir3   []*band.Band
	gray  []*band.Band // sun and survey

	// DumpedCount is how many bands were written unreconstructed the
	// last time Reconstruct fell back to dump mode.
	DumpedCount int

	err error
}

// NewReconstructableImage keys a fresh image on the full camera event
// label, deriving the event identifier and solar day from it.
func NewReconstructableImage(outputRoot, cameraEventLabel string) (*ReconstructableImage, error) {
	idx := strings.LastIndexAny(cameraEventLabel, `/\`)
	if idx < 0 || idx+1 >= len(cameraEventLabel) {
		return nil, fmt.Errorf("%w: %q", ErrBadCameraEventLabel, cameraEventLabel)
	}
	solText := cameraEventLabel[idx+1:]
	if len(solText) > 4 {
		solText = solText[:4]
	}
	sol, err := strconv.Atoi(solText)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadCameraEventLabel, cameraEventLabel)
	}
	return &ReconstructableImage{
		outputRoot:       outputRoot,
		CameraEventLabel: cameraEventLabel,
		CameraEventNoSol: cameraEventLabel[:idx],
		SolarDay:         sol,
	}, nil
}

// Err returns the error recorded on the image, if any.
func (ri *ReconstructableImage) Err() error {
	return ri.err
}

// BandCount returns the total number of bands collected so far.
func (ri *ReconstructableImage) BandCount() int {
	total := 0
	for _, list := range ri.lists() {
		total += len(list)
	}
	return total
}

func (ri *ReconstructableImage) lists() [][]*band.Band {
	return [][]*band.Band{ri.red, ri.green, ri.blue, ri.ir1, ri.ir2, ri.ir3, ri.gray}
}

// AddBand files the band under its diode. The image's class and month
// follow the most recent contributing band; the lander follows the most
// recent band that reports a non-zero lander number.
func (ri *ReconstructableImage) AddBand(b *band.Band) {
	if b.CameraEventLabel != ri.CameraEventLabel {
		ri.err = fmt.Errorf("band %s carries label %q, image keyed on %q",
			b.FileName, b.CameraEventLabel, ri.CameraEventLabel)
		return
	}

	if b.LanderNumber != 0 {
		ri.LanderNumber = b.LanderNumber
	}
	ri.Month = b.Month()

	switch b.Diode {
	case band.Red:
		ri.red = append(ri.red, b)
		ri.BandTypeClass = "Colour"
	case band.Green:
		ri.green = append(ri.green, b)
		ri.BandTypeClass = "Colour"
	case band.Blue:
		ri.blue = append(ri.blue, b)
		ri.BandTypeClass = "Colour"
	case band.Infrared1:
		ri.ir1 = append(ri.ir1, b)
		ri.BandTypeClass = "Infrared"
	case band.Infrared2:
		ri.ir2 = append(ri.ir2, b)
		ri.BandTypeClass = "Infrared"
	case band.Infrared3:
		ri.ir3 = append(ri.ir3, b)
		ri.BandTypeClass = "Infrared"
	case band.Sun:
		ri.gray = append(ri.gray, b)
		ri.BandTypeClass = "Sun"
	case band.Survey:
		ri.gray = append(ri.gray, b)
		ri.BandTypeClass = "Survey"
	default:
		ri.err = fmt.Errorf("%w (%s)", ErrUnknownDiode, b.Diode)
	}
}

// outputPath composes the full path for an output file from the
// configured directorisation options.
func (ri *ReconstructableImage) outputPath(opts *Options, unreconstructable bool, name, ext string) string {
	parts := []string{ri.outputRoot}

	if unreconstructable {
		parts = append(parts, "Unreconstructable")
	}
	if opts.DirectorizeLocation {
		switch ri.LanderNumber {
		case 1:
			parts = append(parts, "Chryse Planitia")
		case 2:
			parts = append(parts, "Utopia Planitia")
		default:
			parts = append(parts, "Location Unknown")
		}
	}
	if opts.DirectorizeMonth && ri.Month != "" {
		parts = append(parts, ri.Month)
	}
	if opts.DirectorizeBandClass && ri.BandTypeClass != "" {
		parts = append(parts, ri.BandTypeClass)
	}
	if opts.DirectorizeSol {
		parts = append(parts, strconv.Itoa(ri.SolarDay))
	}
	if unreconstructable {
		parts = append(parts, ri.CameraEventNoSol)
	} else {
		name = ri.CameraEventNoSol
	}

	parts = append(parts, name+"."+ext)
	return filepath.Join(parts...)
}

// Reconstruct sorts the band lists by quality and either composes a
// colour image, writes the best grayscale, or dumps every band
// unreconstructed. It reports whether a reconstruction was written.
func (ri *ReconstructableImage) Reconstruct(opts *Options) (bool, error) {
	for _, list := range ri.lists() {
		sort.SliceStable(list, func(i, j int) bool { return band.Less(list[i], list[j]) })
	}

	reds, greens, blues := len(ri.red), len(ri.green), len(ri.blue)
	infrareds := len(ri.ir1) + len(ri.ir2) + len(ri.ir3)
	grays := len(ri.gray)

	ri.DumpedCount = 0

	switch {
	case !opts.NoReconstruct &&
		min3(reds, greens, blues) >= 1 &&
		infrareds+grays == 0:
		return ri.reconstructColour(opts)

	case !opts.NoReconstruct &&
		reds+greens+blues+infrareds == 0 &&
		grays >= 1:
		path := ri.outputPath(opts, false, "", "png")
		best := ri.gray[len(ri.gray)-1]
		if err := ri.writeGrayscale(path, best, opts); err != nil {
			return false, err
		}
		if opts.GenerateMetadata {
			if err := output.WriteMetadata(ri.outputPath(opts, false, "", "txt"),
				[]*band.Band{best}, opts.writeOptions()); err != nil {
				return false, err
			}
		}
		return true, nil

	default:
		if err := ri.dumpAll(opts); err != nil {
			return false, err
		}
		if !opts.NoReconstruct {
			return false, ErrAllBandsDumped
		}
		return false, nil
	}
}

// reconstructColour picks a consistent red/green/blue set and composes
// the RGB image.
func (ri *ReconstructableImage) reconstructColour(opts *Options) (bool, error) {
	path := ri.outputPath(opts, false, "", "png")

	bestRed := len(ri.red) - 1
	bestGreen := len(ri.green) - 1
	bestBlue := len(ri.blue) - 1

	// If only some of the best carry an axis-only overlay, fall back to
	// the full histogram variants, the next best consistent option.
	axesOnly := boolCount(
		ri.red[bestRed].AxisOnlyPresent(),
		ri.green[bestGreen].AxisOnlyPresent(),
		ri.blue[bestBlue].AxisOnlyPresent(),
	)
	hasHistogram := func(b *band.Band) bool { return b.FullHistogramPresent }
	noOverlay := func(b *band.Band) bool { return !b.AxisPresent }

	if axesOnly >= 1 && axesOnly < 3 {
		bestRed = findBackwards(ri.red, bestRed, hasHistogram)
		bestGreen = findBackwards(ri.green, bestGreen, hasHistogram)
		bestBlue = findBackwards(ri.blue, bestBlue, hasHistogram)
		if bestRed < 0 || bestGreen < 0 || bestBlue < 0 {
			return false, ErrNoMatchingHistogramSet
		}
	}

	// If only some of the chosen set carry the full histogram, fall all
	// the way back to vanilla frames with no overlay at all.
	histograms := boolCount(
		ri.red[bestRed].FullHistogramPresent,
		ri.green[bestGreen].FullHistogramPresent,
		ri.blue[bestBlue].FullHistogramPresent,
	)
	if histograms >= 1 && histograms < 3 {
		bestRed = findBackwards(ri.red, bestRed, noOverlay)
		bestGreen = findBackwards(ri.green, bestGreen, noOverlay)
		bestBlue = findBackwards(ri.blue, bestBlue, noOverlay)
		if bestRed < 0 || bestGreen < 0 || bestBlue < 0 {
			return false, ErrNoMatchingVanillaSet
		}
	}

	chosen := []*band.Band{ri.red[bestRed], ri.green[bestGreen], ri.blue[bestBlue]}

	var channels [3]raster.Matrix
	for i, b := range chosen {
		m, err := b.RawData()
		if err != nil {
			return false, err
		}
		channels[i] = m
	}

	widths := [3]int{chosen[0].TransformedWidth(), chosen[1].TransformedWidth(), chosen[2].TransformedWidth()}
	heights := [3]int{chosen[0].TransformedHeight(), chosen[1].TransformedHeight(), chosen[2].TransformedHeight()}
	if widths[0] != widths[1] || widths[0] != widths[2] ||
		heights[0] != heights[1] || heights[0] != heights[2] {
		return false, ErrSizeMismatch
	}

	if err := output.WriteColourImage(path, channels[0], channels[1], channels[2], opts.writeOptions()); err != nil {
		return false, err
	}
	log.Info("reconstructed colour image", log.F("path", path))

	if opts.GenerateMetadata {
		if err := output.WriteMetadata(ri.outputPath(opts, false, "", "txt"), chosen, opts.writeOptions()); err != nil {
			return false, err
		}
	}
	return true, nil
}

// writeGrayscale writes one band as a standalone grayscale image.
func (ri *ReconstructableImage) writeGrayscale(path string, b *band.Band, opts *Options) error {
	m, err := b.RawData()
	if err != nil {
		return err
	}
	if err := output.WriteGrayImage(path, m, opts.writeOptions()); err != nil {
		return err
	}
	log.Info("wrote grayscale image", log.F("path", path))
	return nil
}

// dumpAll writes every collected band unreconstructed under the
// Unreconstructable tree, counting what it dumped.
func (ri *ReconstructableImage) dumpAll(opts *Options) error {
	for _, list := range ri.lists() {
		for ordinal, b := range list {
			name := fmt.Sprintf("%s_%d", b.Diode, ordinal)
			path := ri.outputPath(opts, true, name, "png")
			if err := ri.writeGrayscale(path, b, opts); err != nil {
				if errors.Is(err, output.ErrOverwriteRefused) {
					log.Warn("skipping existing dump", log.F("path", path))
					continue
				}
				return err
			}
			ri.DumpedCount++
			if opts.GenerateMetadata {
				if err := output.WriteMetadata(ri.outputPath(opts, true, name, "txt"),
					[]*band.Band{b}, opts.writeOptions()); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// findBackwards scans from the given index towards the worst candidate
// for the first band satisfying the predicate, or -1.
func findBackwards(list []*band.Band, from int, pred func(*band.Band) bool) int {
	for i := from; i >= 0; i-- {
		if pred(list[i]) {
			return i
		}
	}
	return -1
}

func boolCount(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

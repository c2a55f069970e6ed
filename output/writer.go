package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/planum-obs/viking/band"
	"github.com/planum-obs/viking/log"
	"github.com/planum-obs/viking/raster"
)

var ErrOverwriteRefused = errors.New("output already exists, not overwriting (use --overwrite to override)")

// Options controls how output files are written.
type Options struct {
	// Interlace writes Adam7-interlaced PNGs.
	Interlace bool

	// Overwrite replaces existing output files instead of refusing.
	Overwrite bool

	// DryRun suppresses all writes while everything else proceeds.
	DryRun bool
}

// checkTarget enforces the overwrite policy and creates the containing
// directory.
func checkTarget(path string, o Options) error {
	if !o.Overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrOverwriteRefused, path)
		}
	}
	if o.DryRun {
		return nil
	}
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// WriteGrayImage writes a single band as a grayscale PNG.
func WriteGrayImage(path string, m raster.Matrix, o Options) error {
	if err := checkTarget(path, o); err != nil {
		return err
	}
	if o.DryRun {
		log.Debug("dry run, skipping write", log.F("path", path))
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := WriteGrayPNG(f, m, o.Interlace); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

// WriteColourImage composes three bands into an RGB PNG.
func WriteColourImage(path string, red, green, blue raster.Matrix, o Options) error {
	if err := checkTarget(path, o); err != nil {
		return err
	}
	if o.DryRun {
		log.Debug("dry run, skipping write", log.F("path", path))
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := WriteRGBPNG(f, red, green, blue, o.Interlace); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

// WriteMetadata emits the plain-text sidecar describing each band that
// contributed to a reconstruction. An existing sidecar is left alone
// with a warning rather than an error.
func WriteMetadata(path string, bands []*band.Band, o Options) error {
	if o.DryRun {
		return nil
	}
	if !o.Overwrite {
		if _, err := os.Stat(path); err == nil {
			log.Warn("output metadata already exists, not overwriting", log.F("path", path))
			return nil
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	fmt.Fprintf(f, "The following is a machine generated collection of metadata of each of\n")
	fmt.Fprintf(f, "the image bands used to reconstruct an image.\n\n")

	for _, b := range bands {
		fmt.Fprintf(f, "basic heuristic method: %d\n", b.Heuristic)
		fmt.Fprintf(f, "camera azimuth / elevation: %s\n", b.AzimuthElevation)
		fmt.Fprintf(f, "camera event: %s\n", b.CameraEventNoSol)
		fmt.Fprintf(f, "camera event solar day: %d\n", b.SolarDay)
		fmt.Fprintf(f, "diode band type: %s\n", b.Diode)
		fmt.Fprintf(f, "file size: %d\n", b.FileSize)
		fmt.Fprintf(f, "input file: %s\n", b.FileName)
		fmt.Fprintf(f, "magnetic tape: %d\n", b.TapeNumber)
		fmt.Fprintf(f, "magnetic tape file ordinal: %d\n", b.FileOrdinal)
		fmt.Fprintf(f, "mean pixel value: %g\n", b.MeanPixelValue)
		fmt.Fprintf(f, "month: %s\n", b.Month())
		fmt.Fprintf(f, "overlay axis present: %t\n", b.AxisPresent)
		fmt.Fprintf(f, "overlay full histogram present: %t\n", b.FullHistogramPresent)
		fmt.Fprintf(f, "physical record size: %d\n", b.PhysicalRecordSize)
		fmt.Fprintf(f, "physical record padding: %d\n", b.PhysicalRecordPadding)
		fmt.Fprintf(f, "phase offset required: %d\n", b.PhaseOffset)
		fmt.Fprintf(f, "raw image offset: %d\n", b.RawOffset)
		fmt.Fprintf(f, "\n\n")
	}
	return f.Close()
}

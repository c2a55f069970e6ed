// Package band decodes a single VICAR band file from the Viking Lander
// EDR tapes: the out-of-phase prefix, the EBCDIC logical record grid, six
// header dialects told apart heuristically, the extended metadata carried
// in the label block, and finally the raw pixel offset. It also defines
// the quality order used to pick between duplicate captures of the same
// band.
package band

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/planum-obs/viking/areo"
	"github.com/planum-obs/viking/ocr"
	"github.com/planum-obs/viking/raster"
	"github.com/planum-obs/viking/stream"
)

// DecodeOptions steers a band load. Use DefaultDecodeOptions as the
// starting point; note that FilterSolarDay uses a negative sentinel.
type DecodeOptions struct {
	// AutoRotate applies the rotation suggested by the visual
	// classifier when reading raw band data.
	AutoRotate bool

	// FilterLander drops bands not taken by this lander. Zero accepts
	// both landers.
	FilterLander int

	// FilterSolarDay drops bands whose camera event is not from this
	// sol. Negative accepts every sol.
	FilterSolarDay int

	// FilterCameraEvent drops bands whose camera event identifier
	// (without the sol) differs. Empty accepts every event.
	FilterCameraEvent string

	// NewRecognizer opens the OCR engine used for visual examination,
	// scoped to one band load. Nil uses a Tesseract engine.
	NewRecognizer func() (ocr.Recognizer, error)
}

// DefaultDecodeOptions returns options that decode everything with
// auto-rotation off and no filters.
func DefaultDecodeOptions() *DecodeOptions {
	return &DecodeOptions{FilterSolarDay: -1}
}

// Band is the full decoded state of one input file.
type Band struct {
	// Identity.
	Path        string // path or archive.zip:/member reference as given
	FileName    string // base file name only
	TapeNumber  int    // from vl_NNNN.NNN
	FileOrdinal int    // from vl_NNNN.NNN

	// Provenance.
	LanderNumber     int
	CameraEventLabel string
	CameraEventNoSol string
	SolarDay         int
	AzimuthElevation string
	SavedLabels      string

	// Geometry.
	Width                 int
	Height                int
	BandCount             int
	PixelFormat           byte
	BytesPerPixel         int
	PhysicalRecordSize    int
	PhysicalRecordPadding int
	PhaseOffset           int
	RawOffset             int64
	FileSize              int64

	// Diode and visual classification.
	Diode                Diode
	Rotation             raster.Rotation
	AxisPresent          bool
	FullHistogramPresent bool
	OCRText              string

	// Quality.
	MeanPixelValue float64

	// Status.
	Heuristic  int // basic metadata parser heuristic chosen, 1..6
	autoRotate bool
	ok         bool
	err        error
}

var tapeFileName = regexp.MustCompile(`vl_([0-9]+)\.([0-9]+)$`)

// New constructs an unloaded band from a path. The magnetic tape number
// and file ordinal are parsed from file names shaped vl_NNNN.NNN.
func New(path string) *Band {
	b := &Band{Path: path}
	b.FileName = baseName(path)
	if m := tapeFileName.FindStringSubmatch(b.FileName); m != nil {
		b.TapeNumber, _ = strconv.Atoi(m[1])
		b.FileOrdinal, _ = strconv.Atoi(m[2])
	}
	return b
}

// baseName strips both the directory part and any archive prefix.
func baseName(path string) string {
	if _, member, ok := stream.SplitArchivePath(path); ok {
		path = member
	}
	name := filepath.Base(path)
	if idx := strings.LastIndexAny(name, `\`); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

// Ok reports whether the band loaded completely.
func (b *Band) Ok() bool {
	return b.ok
}

// Err returns the load error, if any.
func (b *Band) Err() error {
	return b.err
}

func (b *Band) fail(err error) {
	b.ok = false
	b.err = err
}

// AxisOnlyPresent reports an axis overlay with no full histogram block.
func (b *Band) AxisOnlyPresent() bool {
	return b.AxisPresent && !b.FullHistogramPresent
}

// HasCameraEvent reports whether a camera event label was found in the
// label block.
func (b *Band) HasCameraEvent() bool {
	return b.CameraEventLabel != ""
}

// PixelArea returns the unrotated pixel count of the band.
func (b *Band) PixelArea() int {
	return b.Width * b.Height
}

// TransformedWidth returns the output width after any applied rotation.
func (b *Band) TransformedWidth() int {
	if b.autoRotate && b.Rotation.SwapsDimensions() {
		return b.Height
	}
	return b.Width
}

// TransformedHeight returns the output height after any applied rotation.
func (b *Band) TransformedHeight() int {
	if b.autoRotate && b.Rotation.SwapsDimensions() {
		return b.Width
	}
	return b.Height
}

// LanderLocation returns the human readable landing site.
func (b *Band) LanderLocation() string {
	switch b.LanderNumber {
	case 1:
		return "Chryse Planitia"
	case 2:
		return "Utopia Planitia"
	default:
		return "Location Unknown"
	}
}

// Month returns the Martian month of the band's camera event.
func (b *Band) Month() string {
	return areo.MonthForSol(b.LanderNumber, b.SolarDay)
}

// setCameraEventLabel stores the label and derives the identifier without
// the sol and the solar day count from it, then applies the sol and
// camera event filters.
func (b *Band) setCameraEventLabel(label string, opts *DecodeOptions) error {
	b.CameraEventLabel = label

	idx := strings.LastIndexAny(label, `/\`)
	if idx < 0 || idx+1 >= len(label) {
		return fmt.Errorf("%w: no solar day in camera event label %q", ErrNoCameraEvent, label)
	}
	b.CameraEventNoSol = label[:idx]

	solText := label[idx+1:]
	if len(solText) > 4 {
		solText = solText[:4]
	}
	sol, err := strconv.Atoi(solText)
	if err != nil {
		return fmt.Errorf("%w: bad solar day in camera event label %q", ErrNoCameraEvent, label)
	}
	b.SolarDay = sol

	if opts != nil {
		if opts.FilterSolarDay >= 0 && opts.FilterSolarDay != b.SolarDay {
			return fmt.Errorf("%w: non-matching solar day", ErrFiltered)
		}
		if opts.FilterCameraEvent != "" && opts.FilterCameraEvent != b.CameraEventNoSol {
			return fmt.Errorf("%w: non-matching camera event", ErrFiltered)
		}
	}
	return nil
}

// RawData reads the full raw band from the file, sampling the mean pixel
// value from the inner third rectangle along the way, and applies the
// band's stored rotation when auto-rotation was enabled at load time.
func (b *Band) RawData() (raster.Matrix, error) {
	if !b.ok {
		if b.err != nil {
			return nil, fmt.Errorf("input was not loaded: %w", b.err)
		}
		return nil, fmt.Errorf("input was not loaded")
	}
	return b.readRaw()
}

// readRaw is the unguarded raw read used during loading, before ok is set.
func (b *Band) readRaw() (raster.Matrix, error) {
	r, err := stream.Open(b.Path)
	if err != nil {
		return nil, fmt.Errorf("could not open input for reading: %w", err)
	}
	defer r.Close()

	if _, err := r.Seek(b.RawOffset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("file ended prematurely before raw image: %w", err)
	}

	// Sample the mean from the inner 1/3 x 1/3 rectangle only, keeping
	// the overlay and histogram margins out of the statistic.
	left, right := b.Width/3, (b.Width/3)*2
	top, bottom := b.Height/3, (b.Height/3)*2

	var sum float64
	var samples int

	m := make(raster.Matrix, b.Height)
	for y := 0; y < b.Height; y++ {
		row := make([]byte, b.Width)
		if _, err := io.ReadFull(r, row); err != nil {
			return nil, fmt.Errorf("band data extraction i/o error: %w", err)
		}
		if y >= top && y <= bottom {
			for x := left; x <= right && x < b.Width; x++ {
				sum += float64(row[x])
				samples++
			}
		}
		m[y] = row
	}

	if samples > 0 {
		b.MeanPixelValue = sum / float64(samples)
	}

	if b.autoRotate && b.Rotation != raster.RotateNone {
		m = raster.Rotate(b.Rotation, m)
	}
	return m, nil
}

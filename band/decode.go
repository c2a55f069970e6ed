package band

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/planum-obs/viking/log"
	"github.com/planum-obs/viking/ocr"
	"github.com/planum-obs/viking/raster"
	"github.com/planum-obs/viking/record"
	"github.com/planum-obs/viking/stream"
)

// minFileSize is the smallest file worth decoding; anything under four
// kilobytes is a truncated or blank tape transfer.
const minFileSize = 4 * 1024

// vikingLanderSignature is "VIKING LANDER " in EBCDIC, present in the
// first 256 bytes of every genuine EDR band file.
var vikingLanderSignature = record.EncodeASCII("VIKING LANDER ")

// logicalRecordsPerPhysical is how many logical records form one
// physical record on tape.
const logicalRecordsPerPhysical = 5

// Load decodes as much of the file as possible. On failure the error is
// recorded on the band and Ok reports false; the caller decides whether
// that aborts the run.
func (b *Band) Load(opts *DecodeOptions) {
	if opts == nil {
		opts = DefaultDecodeOptions()
	}
	b.autoRotate = opts.AutoRotate

	log.Debug("loading", log.F("file", b.FileName))

	r, err := stream.Open(b.Path)
	if err != nil {
		b.fail(fmt.Errorf("could not open input for reading: %w", err))
		return
	}
	defer r.Close()

	b.FileSize = r.Size()
	switch {
	case b.FileSize == 0:
		b.fail(ErrEmpty)
		return
	case b.FileSize < minFileSize:
		b.fail(ErrTooSmall)
		return
	}

	phase, ok := probePhaseOffset(r)
	if !ok {
		b.fail(ErrHeaderCorrupt)
		return
	}
	b.PhaseOffset = phase
	if phase > 0 {
		log.Debug("header intact, but out of phase",
			log.F("file", b.FileName), log.F("phase", phase))
	}

	if !isVikingLanderOrigin(r) {
		b.fail(ErrNotVikingLander)
		return
	}

	if err := b.probeDiode(r); err != nil {
		b.fail(err)
		return
	}

	// Header dialect dispatch, from the first logical record past the
	// phase offset.
	if _, err := r.Seek(int64(b.PhaseOffset), io.SeekStart); err != nil {
		b.fail(fmt.Errorf("%w: %w", ErrHeaderCorrupt, err))
		return
	}
	headerRecord, err := record.Decode(r)
	if err != nil {
		b.fail(fmt.Errorf("%w: %w", ErrHeaderCorrupt, err))
		return
	}
	if err := b.parseHeader(headerRecord); err != nil {
		b.fail(err)
		return
	}
	log.Debug("basic metadata",
		log.F("file", b.FileName),
		log.F("heuristic", b.Heuristic),
		log.F("height", b.Height),
		log.F("width", b.Width),
		log.F("diode", b.Diode.String()))

	if err := b.walkRecords(r, opts); err != nil {
		b.fail(err)
		return
	}

	required := b.RawOffset + int64(b.BandCount*b.Height*b.Width*b.BytesPerPixel)
	if b.FileSize < required {
		b.fail(fmt.Errorf("%w (%d < %d)", ErrFileTooSmall, b.FileSize, required))
		return
	}

	// The broadband and solar PSAs never carried overlay annotations;
	// only colour and infrared bands are worth an OCR examination.
	if b.Diode.ColourOrInfrared() {
		if err := b.examineVisually(opts); err != nil {
			b.fail(err)
			return
		}
	}

	b.ok = true
}

// probePhaseOffset hunts for the VAX/VMS prefix that displaces the
// logical record grid by up to three bytes.
func probePhaseOffset(r *stream.Reader) (int, bool) {
	for phase := 0; phase < 4; phase++ {
		if _, err := r.Seek(int64(phase), io.SeekStart); err != nil {
			return 0, false
		}
		rec, err := record.Decode(r)
		if err != nil {
			return 0, false
		}
		if rec.IsValidLabel() {
			return phase, true
		}
	}
	return 0, false
}

// isVikingLanderOrigin scans the first 256 bytes for the EBCDIC mission
// signature.
func isVikingLanderOrigin(r *stream.Reader) bool {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return false
	}
	buf := make([]byte, 256)
	n, _ := io.ReadFull(r, buf)
	return bytes.Contains(buf[:n], vikingLanderSignature)
}

// probeDiode walks up to one physical record's worth of labels hunting
// for the DIODE marker; the band type token sits on one side of it.
func (b *Band) probeDiode(r *stream.Reader) error {
	if _, err := r.Seek(int64(b.PhaseOffset), io.SeekStart); err != nil {
		return fmt.Errorf("%w: %w", ErrHeaderCorrupt, err)
	}

	hint := "none detected"
	for recordIndex := 0; recordIndex < logicalRecordsPerPhysical; recordIndex++ {
		rec, err := record.Decode(r)
		if err != nil {
			break
		}

		// The first record leads with two binary marker bytes.
		start := 0
		if recordIndex == 0 {
			start = 2
		}
		tokens := strings.Fields(rec.Text(false, start, 0))

		for i, token := range tokens {
			switch token {
			case "MONOCOLOR":
				return fmt.Errorf("%w (monocolour)", ErrUnsupportedDiode)
			case "BROADBAND":
				return fmt.Errorf("%w (unidentifiable broadband)", ErrUnsupportedDiode)
			case "DIODE":
				prev := ""
				if i > 0 {
					prev = tokens[i-1]
				}

				if i == len(tokens)-1 {
					// Marker ends the record; only the preceding
					// token can name the diode.
					if d, ok := DiodeFromToken(prev); ok {
						b.Diode = d
						return nil
					}
					if strings.Contains(prev, "CAL") {
						return fmt.Errorf("%w (%s)", ErrCalibrationShot, prev)
					}
					continue
				}

				next := tokens[i+1]
				if d, ok := DiodeFromToken(next); ok {
					b.Diode = d
					return nil
				}
				if d, ok := DiodeFromToken(prev); ok {
					b.Diode = d
					return nil
				}
				if strings.Contains(prev, "CAL") {
					return fmt.Errorf("%w (%s)", ErrCalibrationShot, prev)
				}
				return diodeProbeError(next)
			}
		}
	}
	return diodeProbeError(hint)
}

// diodeProbeError distinguishes calibration shots, which name CAL next
// to the marker, from genuinely unsupported band types.
func diodeProbeError(hint string) error {
	if strings.Contains(hint, "CAL") {
		return fmt.Errorf("%w (%s)", ErrCalibrationShot, hint)
	}
	return fmt.Errorf("%w (%s)", ErrUnsupportedDiode, hint)
}

// walkRecords iterates the physical records, extracting extended
// metadata from every label and accumulating the saved labels buffer,
// until the last-label sentinel locates the raw pixel data.
func (b *Band) walkRecords(r *stream.Reader, opts *DecodeOptions) error {
	if _, err := r.Seek(int64(b.PhaseOffset), io.SeekStart); err != nil {
		return fmt.Errorf("%w: %w", ErrHeaderCorrupt, err)
	}

	var saved strings.Builder
	recordIndex := 0
	found := false

	for r.Good() && !found {
		localOffset := 0

		for local := 0; local < logicalRecordsPerPhysical; local++ {
			rec, err := record.Decode(r)
			if err != nil {
				return fmt.Errorf("unable to locate last logical record label: %w", err)
			}
			if !rec.IsValidLabel() {
				if local == 0 {
					return ErrOutOfPhaseBoundary
				}
				return ErrInvalidLabel
			}

			if err := b.parseExtendedMetadata(rec, recordIndex, opts); err != nil {
				return err
			}
			saved.WriteString(rec.String())
			saved.WriteByte('\n')

			recordIndex++
			localOffset += record.Size

			last, err := rec.IsLastLabel()
			if err != nil {
				return err
			}
			if last {
				// Skip the rest of this physical record plus its
				// padding; the raw pixel data follows.
				skip := int64(logicalRecordsPerPhysical*record.Size-localOffset) +
					int64(b.PhysicalRecordPadding)
				if _, err := r.Seek(skip, io.SeekCurrent); err != nil {
					return fmt.Errorf("unable to locate raw image data: %w", err)
				}
				found = true
				break
			}
		}
		if found {
			break
		}

		// Peek whether the next physical record boundary was
		// tangential; if a valid label follows immediately there is no
		// padding to skip.
		pos, err := r.Tell()
		if err != nil {
			return fmt.Errorf("unable to locate last logical record label: %w", err)
		}
		peek, err := record.Decode(r)
		if err != nil {
			return fmt.Errorf("unable to locate last logical record label: %w", err)
		}
		if peek.IsValidLabel() {
			log.Debug("tangential physical record boundary, ignoring padding",
				log.F("file", b.FileName))
			if _, err := r.Seek(pos, io.SeekStart); err != nil {
				return fmt.Errorf("unable to locate last logical record label: %w", err)
			}
		} else {
			if _, err := r.Seek(pos+int64(b.PhysicalRecordPadding), io.SeekStart); err != nil {
				return fmt.Errorf("unable to locate last logical record label: %w", err)
			}
		}
	}

	if !found {
		return fmt.Errorf("unable to locate last logical record label: %w", ErrInvalidLabel)
	}

	b.SavedLabels = saved.String()

	offset, err := r.Tell()
	if err != nil {
		return fmt.Errorf("unable to locate raw image data: %w", err)
	}
	b.RawOffset = offset
	log.Debug("raw image offset", log.F("file", b.FileName), log.F("offset", offset))
	return nil
}

// parseExtendedMetadata recognises the azimuth/elevation record, the
// camera event label, and, in the second record of the file, the lander
// number.
func (b *Band) parseExtendedMetadata(rec *record.LogicalRecord, recordIndex int, opts *DecodeOptions) error {
	tokens := strings.Fields(rec.Text(true, 0, 0))

	for i, token := range tokens {
		switch {
		case token == "AZIMUTH" && i == 0:
			b.AzimuthElevation = rec.Text(true, 0, 0)
			log.Debug("psa directional vector",
				log.F("file", b.FileName), log.F("vector", b.AzimuthElevation))

		case token == "CE" && i+2 < len(tokens) && tokens[i+1] == "LABEL":
			if err := b.setCameraEventLabel(tokens[i+2], opts); err != nil {
				return err
			}
			log.Debug("camera event label",
				log.F("file", b.FileName), log.F("label", b.CameraEventLabel))

		case token == "VIKING" && recordIndex == 1 && i+2 < len(tokens) && tokens[i+1] == "LANDER":
			lander, err := strconv.Atoi(tokens[i+2])
			if err != nil {
				continue
			}
			b.LanderNumber = lander
			if lander > 2 {
				log.Warn("bad lander number",
					log.F("file", b.FileName), log.F("lander", lander))
			}
			if opts.FilterLander != 0 && opts.FilterLander != lander {
				return fmt.Errorf("%w: non-matching lander", ErrFiltered)
			}
		}
	}
	return nil
}

// examineVisually reads the raw band and asks the classifier for the
// rotation and overlay flags. The OCR engine handle is scoped to this
// one examination.
func (b *Band) examineVisually(opts *DecodeOptions) error {
	m, err := b.readRaw()
	if err != nil {
		return err
	}

	rec, err := b.openRecognizer(opts)
	if err != nil {
		return err
	}
	if closer, ok := rec.(io.Closer); ok {
		defer closer.Close()
	}

	result, err := ocr.NewClassifier(rec).Classify(m)
	if err != nil {
		return err
	}

	b.Rotation = result.Rotation
	b.AxisPresent = result.AxisPresent
	b.FullHistogramPresent = result.FullHistogramPresent
	b.OCRText = result.Text

	// With auto-rotation off the suggested rotation is discarded; the
	// overlay flags stand either way.
	if !opts.AutoRotate {
		b.Rotation = raster.RotateNone
	}
	return nil
}

func (b *Band) openRecognizer(opts *DecodeOptions) (ocr.Recognizer, error) {
	if opts.NewRecognizer != nil {
		return opts.NewRecognizer()
	}
	return ocr.NewTesseractRecognizer()
}

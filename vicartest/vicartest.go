// Package vicartest synthesises Viking Lander VICAR band files for
// tests. Real EDR tape files cannot ship with the repository, so the
// tests build byte-exact stand-ins: EBCDIC logical records in groups of
// five, optional VAX/VMS phase prefix, physical record padding, and raw
// row-major pixel data.
package vicartest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/planum-obs/viking/record"
)

// Spec describes one synthetic band file.
type Spec struct {
	// PhasePrefix is prepended verbatim, displacing the record grid.
	PhasePrefix []byte

	// Header is the text of the first logical record, without the two
	// leading binary marker bytes, e.g. "1   11151 586 I 1".
	Header string

	// Labels are the texts of the label records following the header.
	// The final one is written with the last-label sentinel 'L', all
	// others with the continuation sentinel 'C'.
	Labels []string

	// Width and Height size the raw pixel payload and the physical
	// record padding.
	Width  int
	Height int

	// Pixel supplies pixel values; nil uses a diagonal gradient.
	Pixel func(x, y int) byte

	// TruncatePixels drops that many bytes from the end of the pixel
	// payload to provoke size-check failures.
	TruncatePixels int

	// NoSizePadding suppresses the trailing zero fill that otherwise
	// brings the file up to the decoder's four-kilobyte minimum.
	NoSizePadding bool
}

const recordsPerPhysical = 5

// StandardLabels returns the label block of a typical band file: the
// lander identification, the camera event and diode line, and the
// azimuth/elevation vector.
func StandardLabels(lander int, event, diodeToken string) []string {
	return []string{
		"VIKING LANDER  " + string(rune('0'+lander)) + "  CAMERA 2",
		"CE LABEL " + event + "  DIODE " + diodeToken + "  CHANNEL 1",
		"AZIMUTH  112.50  ELEVATION  -03.20",
	}
}

// encodeRecord lays the text into a 72-byte EBCDIC record. The first two
// bytes can be overridden with binary markers afterwards.
func encodeRecord(text string, sentinel byte) []byte {
	ascii := make([]byte, record.Size)
	for i := range ascii {
		ascii[i] = ' '
	}
	copy(ascii, text)
	ascii[record.Size-1] = sentinel
	return record.EncodeASCII(string(ascii))
}

// Build assembles the file bytes.
func Build(spec Spec) []byte {
	padding := spec.Width - recordsPerPhysical*record.Size
	if padding < 0 {
		padding = 0
	}

	var out []byte
	out = append(out, spec.PhasePrefix...)

	// The header record leads with two binary tape marker bytes.
	header := encodeRecord("  "+spec.Header, sentinelFor(len(spec.Labels) == 0))
	header[0] = 0x00
	header[1] = 0x03
	out = append(out, header...)

	written := 1
	if len(spec.Labels) == 0 {
		out = append(out, make([]byte, (recordsPerPhysical-1)*record.Size)...)
		out = append(out, make([]byte, padding)...)
	}
	for i, label := range spec.Labels {
		last := i == len(spec.Labels)-1
		out = append(out, encodeRecord(label, sentinelFor(last))...)
		written++

		if last {
			// Fill the remainder of this physical record, then its
			// padding; the raw pixels follow immediately after.
			slack := (recordsPerPhysical - written%recordsPerPhysical) % recordsPerPhysical
			out = append(out, make([]byte, slack*record.Size)...)
			out = append(out, make([]byte, padding)...)
			break
		}

		if written%recordsPerPhysical == 0 {
			// Physical record boundary mid-label-block.
			out = append(out, make([]byte, padding)...)
		}
	}

	pixel := spec.Pixel
	if pixel == nil {
		pixel = func(x, y int) byte { return byte((x + y) % 256) }
	}
	pixels := make([]byte, 0, spec.Width*spec.Height)
	for y := 0; y < spec.Height; y++ {
		for x := 0; x < spec.Width; x++ {
			pixels = append(pixels, pixel(x, y))
		}
	}
	if spec.TruncatePixels > 0 && spec.TruncatePixels <= len(pixels) {
		pixels = pixels[:len(pixels)-spec.TruncatePixels]
	}
	out = append(out, pixels...)

	if !spec.NoSizePadding {
		const minSize = 4 * 1024
		if len(out) < minSize {
			out = append(out, make([]byte, minSize-len(out))...)
		}
	}
	return out
}

func sentinelFor(last bool) byte {
	if last {
		return record.SentinelLastLabel
	}
	return record.SentinelContinuation
}

// WriteFile builds the spec and writes it under dir with the given name,
// returning the full path.
func WriteFile(t testing.TB, dir, name string, spec Spec) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Build(spec), 0o644); err != nil {
		t.Fatalf("writing synthetic band file: %v", err)
	}
	return path
}

package band

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/planum-obs/viking/record"
)

// The first logical record states bands, dimensions, pixel format and
// bytes per pixel, but the ground pipeline wrote it in several layouts
// over the mission. They are told apart by the number of whitespace
// separated tokens and their lengths. Examples, with the two leading
// binary marker bytes already stripped:
//
//	1: "1   11151 586 I 1"          bands, _, height, width, fmt, bpp
//	2: "1   1 5122001 I 1"          height and width coalesced
//	3: "1151     5861151 586 L 1"   height, coalesced pair, width
//	4: "512     253 512 253 I 1"    height, width, repeated pair
//	5: "715    1955 7151955 I 1"    height, width, coalesced pair
//	6: "2000    410020004100 L 1"   height, width-height-width run
const maxHeaderTokens = 32

// tokenScanner walks the header text the way a formatted input stream
// would: an integer or string read consumes the rest of the current
// token, a character read consumes exactly one byte of it. Several
// dialects rely on that to split coalesced fields.
type tokenScanner struct {
	fields []string
	index  int
	rest   string
}

func newTokenScanner(text string) *tokenScanner {
	return &tokenScanner{fields: strings.Fields(text)}
}

// next returns the remainder of the current token, or the next field.
func (s *tokenScanner) next() string {
	if s.rest != "" {
		tok := s.rest
		s.rest = ""
		return tok
	}
	if s.index >= len(s.fields) {
		return ""
	}
	tok := s.fields[s.index]
	s.index++
	return tok
}

// nextByte consumes a single character, leaving the rest of its token
// for the following read.
func (s *tokenScanner) nextByte() byte {
	tok := s.next()
	if tok == "" {
		return 0
	}
	s.rest = tok[1:]
	return tok[0]
}

func (s *tokenScanner) nextInt() int {
	n, _ := strconv.Atoi(s.next())
	return n
}

// parseHeader records the header fields on the band and notes which
// heuristic matched. ErrUnknownHeaderFormat when none does.
func (b *Band) parseHeader(rec *record.LogicalRecord) error {
	text := rec.Text(true, 2, 0)

	var lengths [maxHeaderTokens]int
	fields := strings.Fields(text)
	n := len(fields)
	if n > maxHeaderTokens {
		n = maxHeaderTokens
	}
	for i := 0; i < n; i++ {
		lengths[i] = len(fields[i])
	}
	l := lengths

	switch {
	case n == 5 && l[0] == 1 && l[1] <= 5 && l[2] <= 4 && l[3] == 1 && l[4] == 1:
		b.parseHeaderFormat1(text)
		b.Heuristic = 1

	case n == 5 && l[0] == 1 && l[1] == 1 && l[2] <= 8 && l[3] == 1 && l[4] == 1:
		b.parseHeaderFormat2(text)
		b.Heuristic = 2

	case n == 5 && l[0] > 1 && l[0] <= 4 && l[1] > 1 && l[1] <= 4 && l[2] >= 4 && l[3] == 1 && l[4] == 1:
		b.parseHeaderFormat5(text)
		b.Heuristic = 5

	case n == 5 && l[0] <= 4 && l[1] <= 8 && l[2] <= 4 && l[3] == 1 && l[4] == 1:
		b.parseHeaderFormat3(text)
		b.Heuristic = 3

	case n == 4 && l[0] == 1 && l[1] <= 9 && l[2] == 1 && l[3] == 1:
		b.parseHeaderFormat2(text)
		b.Heuristic = 2

	case n == 4 && l[0] >= 2 && l[0] <= 4 && l[1] >= 6 && l[2] == 1 && l[3] == 1:
		b.parseHeaderFormat6(text)
		b.Heuristic = 6

	case n == 6 && l[0] == 1 && l[1] == 1 && l[2] <= 4 && l[3] <= 4 && l[4] == 1 && l[5] == 1:
		b.parseHeaderFormat1(text)
		b.Heuristic = 1

	case n == 6 &&
		l[0] >= 2 && l[0] <= 4 && l[1] >= 2 && l[1] <= 4 &&
		l[2] >= 2 && l[2] <= 4 && l[3] >= 2 && l[3] <= 4 &&
		l[4] == 1 && l[5] == 1:
		b.parseHeaderFormat4(text)
		b.Heuristic = 4

	default:
		return fmt.Errorf("%w (%q)", ErrUnknownHeaderFormat, text)
	}

	// The solar PSA reports 512 but its bands carry two extra columns.
	if b.Diode == Sun && b.Width == 512 {
		b.Width += 2
	}

	if err := b.validateHeader(); err != nil {
		return err
	}

	b.computePhysicalRecord()
	return nil
}

func (b *Band) validateHeader() error {
	switch {
	case b.BandCount != 1:
		return fmt.Errorf("unsupported number of image bands (%d)", b.BandCount)
	case b.Height <= 0 || b.Height >= 99999:
		return fmt.Errorf("corrupt image height (%d)", b.Height)
	case b.Width <= 0 || b.Width >= 99999:
		return fmt.Errorf("corrupt image width (%d)", b.Width)
	case b.PixelFormat != 'I' && b.PixelFormat != 'L':
		return fmt.Errorf("unsupported pixel format (%c)", b.PixelFormat)
	case b.BytesPerPixel != 1:
		return fmt.Errorf("unsupported colour bit depth (%d)", b.BytesPerPixel)
	}
	return nil
}

// computePhysicalRecord sizes the physical record: five logical records,
// or the image width when that is larger, with the excess past the five
// records counted as padding.
func (b *Band) computePhysicalRecord() {
	if b.Width > 5*record.Size {
		b.PhysicalRecordSize = b.Width
		b.PhysicalRecordPadding = b.Width - 5*record.Size
	} else {
		b.PhysicalRecordSize = 5 * record.Size
		b.PhysicalRecordPadding = 0
	}
}

// "1   11151 586 I 1" / "1   1 512  42 I 1": bands, an unknown single
// character, height, width, format, bytes per pixel.
func (b *Band) parseHeaderFormat1(text string) {
	s := newTokenScanner(text)
	b.BandCount = s.nextInt()
	s.nextByte()
	b.Height = s.nextInt()
	b.Width = s.nextInt()
	b.PixelFormat = s.nextByte()
	b.BytesPerPixel = s.nextInt()
}

// "1   1 5122001 I 1" / "1   116402250 L 1": height and width coalesced
// in one run, split at half length. A PSA frame never exceeded 9999
// pixels a side, so an over-long run must be two numbers.
func (b *Band) parseHeaderFormat2(text string) {
	s := newTokenScanner(text)
	b.BandCount = s.nextInt()
	s.nextByte()
	run := s.next()
	half := len(run) / 2
	b.Height, _ = strconv.Atoi(run[:half])
	b.Width, _ = strconv.Atoi(run[half:])
	b.PixelFormat = s.nextByte()
	b.BytesPerPixel = s.nextInt()
}

// "1151     5861151 586 L 1": height, a coalesced width-height run to
// skip, then the width. Bands implicitly one.
func (b *Band) parseHeaderFormat3(text string) {
	s := newTokenScanner(text)
	b.BandCount = 1
	b.Height = s.nextInt()
	s.next()
	b.Width = s.nextInt()
	b.PixelFormat = s.nextByte()
	b.BytesPerPixel = s.nextInt()
}

// "512     253 512 253 I 1": height and width, then both repeated.
func (b *Band) parseHeaderFormat4(text string) {
	s := newTokenScanner(text)
	b.BandCount = 1
	b.Height = s.nextInt()
	b.Width = s.nextInt()
	s.next()
	s.next()
	b.PixelFormat = s.nextByte()
	b.BytesPerPixel = s.nextInt()
}

// "715    1955 7151955 I 1": height, width, then both coalesced.
func (b *Band) parseHeaderFormat5(text string) {
	s := newTokenScanner(text)
	b.BandCount = 1
	b.Height = s.nextInt()
	b.Width = s.nextInt()
	s.next()
	b.PixelFormat = s.nextByte()
	b.BytesPerPixel = s.nextInt()
}

// "2000    410020004100 L 1": height, then a width-height-width run; the
// width is the leading slice left over once the known height length is
// subtracted and the remainder halved.
func (b *Band) parseHeaderFormat6(text string) {
	s := newTokenScanner(text)
	b.BandCount = 1
	heightToken := s.next()
	b.Height, _ = strconv.Atoi(heightToken)
	run := s.next()
	widthLen := (len(run) - len(heightToken)) / 2
	if widthLen > 0 && widthLen <= len(run) {
		b.Width, _ = strconv.Atoi(run[:widthLen])
	}
	b.PixelFormat = s.nextByte()
	b.BytesPerPixel = s.nextInt()
}

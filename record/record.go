// Package record implements the 72-byte EBCDIC logical record that VICAR
// label blocks on the Viking Lander EDR tapes are built from.
//
// A logical record is read from a stream, translated byte-for-byte from
// EBCDIC to ASCII and held in a fixed buffer. The final byte is a sentinel:
// 'C' when further label records follow, 'L' on the last label record of
// the header block, anything else meaning the buffer is not a label at all.
package record

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Size is the fixed length in bytes of a logical record.
const Size = 72

// Sentinel values stored in the final byte of a valid label record.
const (
	SentinelContinuation = 'C'
	SentinelLastLabel    = 'L'
)

var ErrInvalidLabel = errors.New("invalid logical record label")

// LogicalRecord is a single decoded logical record. The buffer holds
// ASCII; translation from EBCDIC happens at decode time.
type LogicalRecord struct {
	buf [Size]byte
}

// Decode reads exactly Size bytes from r and translates them from EBCDIC.
// Reading fewer than Size bytes surfaces as an I/O error.
func Decode(r io.Reader) (*LogicalRecord, error) {
	var rec LogicalRecord
	if _, err := io.ReadFull(r, rec.buf[:]); err != nil {
		return nil, fmt.Errorf("reading logical record: %w", err)
	}
	for i := range rec.buf {
		rec.buf[i] = EbcdicToASCII(rec.buf[i])
	}
	return &rec, nil
}

// Sentinel returns the final byte of the record.
func (rec *LogicalRecord) Sentinel() byte {
	return rec.buf[Size-1]
}

// Bytes returns a copy of the decoded ASCII buffer.
func (rec *LogicalRecord) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, rec.buf[:])
	return out
}

// Text returns the printable characters of the byte range
// [start, start+size). A size of zero means through the end of the
// record. When trim is set, the trailing two sentinel bytes are skipped
// and leading/trailing whitespace is stripped from the result.
func (rec *LogicalRecord) Text(trim bool, start, size int) string {
	end := Size
	if size > 0 && start+size < Size {
		end = start + size
	}

	var sb strings.Builder
	for i := start; i < end; i++ {
		if trim && i >= Size-2 {
			continue
		}
		if isPrintable(rec.buf[i]) {
			sb.WriteByte(rec.buf[i])
		}
	}

	s := sb.String()
	if trim {
		s = strings.Trim(s, " \t")
	}
	return s
}

// String returns the whole record trimmed, the form appended to a band's
// saved-labels buffer.
func (rec *LogicalRecord) String() string {
	return rec.Text(true, 0, 0)
}

// IsValidLabel reports whether bytes 2..71 are printable ASCII and the
// sentinel is one of 'C' or 'L'.
func (rec *LogicalRecord) IsValidLabel() bool {
	for i := 2; i < Size; i++ {
		if !isPrintable(rec.buf[i]) {
			return false
		}
	}
	switch rec.Sentinel() {
	case SentinelContinuation, SentinelLastLabel:
		return true
	default:
		return false
	}
}

// IsLastLabel reports whether this is the final label record of the
// header block. A record that is not a valid label yields ErrInvalidLabel.
func (rec *LogicalRecord) IsLastLabel() (bool, error) {
	if !rec.IsValidLabel() {
		return false, ErrInvalidLabel
	}
	return rec.Sentinel() == SentinelLastLabel, nil
}

func isPrintable(b byte) bool {
	return b >= 0x20 && b < 0x7f
}

// Package output writes the reconstructed images: 8-bit grayscale or RGB
// PNG, with no interlacing or Adam7 per configuration, plus the optional
// plain-text metadata sidecar.
//
// The PNG encoding is done at the chunk level here because the standard
// library encoder cannot produce Adam7-interlaced files. The stream is
// the minimal valid one: signature, IHDR, one zlib-compressed IDAT, IEND,
// with the null filter on every scanline.
package output

import (
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/planum-obs/viking/raster"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

const (
	colorTypeGray = 0
	colorTypeRGB  = 2
)

// adam7 describes the seven interlace passes: x origin, y origin, x
// step, y step.
var adam7 = [7][4]int{
	{0, 0, 8, 8},
	{4, 0, 8, 8},
	{0, 4, 4, 8},
	{2, 0, 4, 4},
	{0, 2, 2, 4},
	{1, 0, 2, 2},
	{0, 1, 1, 2},
}

// pixelSource yields one pixel's channel bytes.
type pixelSource func(x, y int) []byte

// WriteGrayPNG encodes a single band as an 8-bit grayscale PNG.
func WriteGrayPNG(w io.Writer, m raster.Matrix, interlace bool) error {
	buf := make([]byte, 1)
	src := func(x, y int) []byte {
		buf[0] = m[y][x]
		return buf
	}
	return writePNG(w, m.Width(), m.Height(), colorTypeGray, 1, src, interlace)
}

// WriteRGBPNG composes three equally sized bands into an 8-bit RGB PNG,
// red, green and blue in that order.
func WriteRGBPNG(w io.Writer, red, green, blue raster.Matrix, interlace bool) error {
	if red.Width() != green.Width() || red.Width() != blue.Width() ||
		red.Height() != green.Height() || red.Height() != blue.Height() {
		return fmt.Errorf("colour channel dimensions differ: %dx%d / %dx%d / %dx%d",
			red.Width(), red.Height(), green.Width(), green.Height(), blue.Width(), blue.Height())
	}
	buf := make([]byte, 3)
	src := func(x, y int) []byte {
		buf[0] = red[y][x]
		buf[1] = green[y][x]
		buf[2] = blue[y][x]
		return buf
	}
	return writePNG(w, red.Width(), red.Height(), colorTypeRGB, 3, src, interlace)
}

func writePNG(w io.Writer, width, height int, colorType byte, bpp int, src pixelSource, interlace bool) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("empty image %dx%d", width, height)
	}

	if _, err := w.Write(pngSignature); err != nil {
		return err
	}

	var ihdr [13]byte
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(width))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(height))
	ihdr[8] = 8 // bit depth
	ihdr[9] = colorType
	if interlace {
		ihdr[12] = 1
	}
	if err := writeChunk(w, "IHDR", ihdr[:]); err != nil {
		return err
	}

	idat, err := deflateImage(width, height, bpp, src, interlace)
	if err != nil {
		return err
	}
	if err := writeChunk(w, "IDAT", idat); err != nil {
		return err
	}
	return writeChunk(w, "IEND", nil)
}

// deflateImage produces the zlib stream of filter-prefixed scanlines,
// either straight top-to-bottom or in the seven Adam7 passes.
func deflateImage(width, height, bpp int, src pixelSource, interlace bool) ([]byte, error) {
	var raw []byte
	zw := newDeflateBuffer(&raw)

	writeRow := func(xs []int, y int) error {
		if _, err := zw.Write([]byte{0}); err != nil { // null filter
			return err
		}
		for _, x := range xs {
			if _, err := zw.Write(src(x, y)); err != nil {
				return err
			}
		}
		return nil
	}

	if !interlace {
		xs := make([]int, width)
		for x := range xs {
			xs[x] = x
		}
		for y := 0; y < height; y++ {
			if err := writeRow(xs, y); err != nil {
				return nil, err
			}
		}
	} else {
		for _, pass := range adam7 {
			x0, y0, dx, dy := pass[0], pass[1], pass[2], pass[3]
			var xs []int
			for x := x0; x < width; x += dx {
				xs = append(xs, x)
			}
			if len(xs) == 0 {
				continue
			}
			for y := y0; y < height; y += dy {
				if err := writeRow(xs, y); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return raw, nil
}

// newDeflateBuffer returns a zlib writer appending to *out.
func newDeflateBuffer(out *[]byte) *zlib.Writer {
	return zlib.NewWriter(sliceWriter{out})
}

type sliceWriter struct {
	out *[]byte
}

func (s sliceWriter) Write(p []byte) (int, error) {
	*s.out = append(*s.out, p...)
	return len(p), nil
}

func writeChunk(w io.Writer, chunkType string, payload []byte) error {
	var head [8]byte
	binary.BigEndian.PutUint32(head[0:4], uint32(len(payload)))
	copy(head[4:8], chunkType)
	if _, err := w.Write(head[:]); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	crc := crc32.NewIEEE()
	crc.Write(head[4:8])
	crc.Write(payload)
	var tail [4]byte
	binary.BigEndian.PutUint32(tail[:], crc.Sum32())
	_, err := w.Write(tail[:])
	return err
}

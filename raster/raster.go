// Package raster implements the mirror and rotation transforms applied to
// raw band data, modelled as a row-major matrix of single-byte pixels.
//
// Transforms take ownership of the matrix they are given and return the
// transformed matrix; callers must not retain the argument.
package raster

// Rotation is a counter-clockwise rotation applied to a band before
// output. The histogram and axis overlays burnt into the pixel data give
// away which one a band needs.
type Rotation int

const (
	RotateNone Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

func (r Rotation) String() string {
	switch r {
	case RotateNone:
		return "none"
	case Rotate90:
		return "90 ccw"
	case Rotate180:
		return "180 ccw"
	case Rotate270:
		return "270 ccw"
	}
	return "invalid"
}

// Next returns the rotation advanced by a further 90 degrees
// counter-clockwise.
func (r Rotation) Next() Rotation {
	return (r + 1) % 4
}

// SwapsDimensions reports whether the rotation exchanges width and height.
func (r Rotation) SwapsDimensions() bool {
	return r == Rotate90 || r == Rotate270
}

// Matrix is raw band data, one row per scanline.
type Matrix [][]byte

// NewMatrix allocates a zeroed height x width matrix.
func NewMatrix(width, height int) Matrix {
	m := make(Matrix, height)
	for y := range m {
		m[y] = make([]byte, width)
	}
	return m
}

// Height returns the number of rows.
func (m Matrix) Height() int {
	return len(m)
}

// Width returns the number of columns, taken from the first row.
func (m Matrix) Width() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Clone returns a deep copy of the matrix.
func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for y, row := range m {
		out[y] = make([]byte, len(row))
		copy(out[y], row)
	}
	return out
}

// MirrorLeftRight reverses every scanline.
func MirrorLeftRight(m Matrix) Matrix {
	for _, row := range m {
		for i, j := 0, len(row)-1; i < j; i, j = i+1, j-1 {
			row[i], row[j] = row[j], row[i]
		}
	}
	return m
}

// MirrorTopBottom reverses the order of the scanlines.
func MirrorTopBottom(m Matrix) Matrix {
	for i, j := 0, len(m)-1; i < j; i, j = i+1, j-1 {
		m[i], m[j] = m[j], m[i]
	}
	return m
}

// MirrorDiagonal transposes the matrix. The matrix is first grown to a
// square over its larger dimension, swapped across the diagonal, then
// trimmed so that width and height exchange.
func MirrorDiagonal(m Matrix) Matrix {
	oldHeight := m.Height()
	oldWidth := m.Width()

	larger := oldHeight
	if oldWidth > larger {
		larger = oldWidth
	}

	// Grow to a larger x larger square.
	if oldHeight < larger {
		for y := oldHeight; y < larger; y++ {
			m = append(m, make([]byte, larger))
		}
	}
	for y := 0; y < larger; y++ {
		if len(m[y]) < larger {
			row := make([]byte, larger)
			copy(row, m[y])
			m[y] = row
		}
	}

	// Swap across the diagonal.
	for y := 0; y < larger; y++ {
		for x := 0; x < y; x++ {
			m[y][x], m[x][y] = m[x][y], m[y][x]
		}
	}

	// Trim back down with the dimensions exchanged.
	newHeight := oldWidth
	newWidth := oldHeight
	m = m[:newHeight]
	for y := range m {
		m[y] = m[y][:newWidth]
	}
	return m
}

// Rotate applies the requested counter-clockwise rotation.
func Rotate(rotation Rotation, m Matrix) Matrix {
	switch rotation {
	case Rotate90:
		return MirrorTopBottom(MirrorDiagonal(m))
	case Rotate180:
		return MirrorTopBottom(MirrorLeftRight(m))
	case Rotate270:
		return MirrorLeftRight(MirrorDiagonal(m))
	default:
		return m
	}
}

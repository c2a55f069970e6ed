package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Matrix {
	return Matrix{
		{1, 2, 3},
		{4, 5, 6},
	}
}

func TestMirrorLeftRight(t *testing.T) {
	got := MirrorLeftRight(sample())
	assert.Equal(t, Matrix{{3, 2, 1}, {6, 5, 4}}, got)
}

func TestMirrorLeftRightInvolution(t *testing.T) {
	got := MirrorLeftRight(MirrorLeftRight(sample()))
	assert.Equal(t, sample(), got)
}

func TestMirrorTopBottom(t *testing.T) {
	got := MirrorTopBottom(sample())
	assert.Equal(t, Matrix{{4, 5, 6}, {1, 2, 3}}, got)
}

func TestMirrorTopBottomInvolution(t *testing.T) {
	got := MirrorTopBottom(MirrorTopBottom(sample()))
	assert.Equal(t, sample(), got)
}

func TestMirrorDiagonal(t *testing.T) {
	got := MirrorDiagonal(sample())
	assert.Equal(t, Matrix{{1, 4}, {2, 5}, {3, 6}}, got)
}

func TestMirrorDiagonalTallInput(t *testing.T) {
	tall := Matrix{{1, 2}, {3, 4}, {5, 6}}
	got := MirrorDiagonal(tall)
	assert.Equal(t, Matrix{{1, 3, 5}, {2, 4, 6}}, got)
}

func TestRotateNoneIsIdentity(t *testing.T) {
	got := Rotate(RotateNone, sample())
	assert.Equal(t, sample(), got)
}

func TestRotate90(t *testing.T) {
	got := Rotate(Rotate90, sample())
	assert.Equal(t, Matrix{{3, 6}, {2, 5}, {1, 4}}, got)
}

func TestRotate180(t *testing.T) {
	got := Rotate(Rotate180, sample())
	assert.Equal(t, Matrix{{6, 5, 4}, {3, 2, 1}}, got)
}

func TestRotate270(t *testing.T) {
	got := Rotate(Rotate270, sample())
	assert.Equal(t, Matrix{{4, 1}, {5, 2}, {6, 3}}, got)
}

func TestFourQuarterTurnsAreIdentity(t *testing.T) {
	m := sample()
	for i := 0; i < 4; i++ {
		m = Rotate(Rotate90, m)
	}
	assert.Equal(t, sample(), m)
}

func TestQuarterTurnSwapsDimensions(t *testing.T) {
	for _, rot := range []Rotation{Rotate90, Rotate270} {
		got := Rotate(rot, sample())
		assert.Equal(t, 3, got.Height(), rot.String())
		assert.Equal(t, 2, got.Width(), rot.String())
	}
	for _, rot := range []Rotation{RotateNone, Rotate180} {
		got := Rotate(rot, sample())
		assert.Equal(t, 2, got.Height(), rot.String())
		assert.Equal(t, 3, got.Width(), rot.String())
	}
}

func TestRotationNext(t *testing.T) {
	assert.Equal(t, Rotate90, RotateNone.Next())
	assert.Equal(t, Rotate180, Rotate90.Next())
	assert.Equal(t, Rotate270, Rotate180.Next())
	assert.Equal(t, RotateNone, Rotate270.Next())
}

func TestNewMatrix(t *testing.T) {
	m := NewMatrix(4, 2)
	require.Equal(t, 2, m.Height())
	require.Equal(t, 4, m.Width())
	for _, row := range m {
		for _, px := range row {
			assert.Zero(t, px)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := sample()
	c := m.Clone()
	c[0][0] = 99
	assert.Equal(t, byte(1), m[0][0])
}

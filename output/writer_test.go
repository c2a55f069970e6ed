package output

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planum-obs/viking/band"
	"github.com/planum-obs/viking/raster"
)

func gradient(width, height int, seed byte) raster.Matrix {
	m := raster.NewMatrix(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			m[y][x] = byte(x*3+y*7) + seed
		}
	}
	return m
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestWriteGrayPNGRoundTrip(t *testing.T) {
	for _, interlace := range []bool{false, true} {
		name := "plain"
		if interlace {
			name = "adam7"
		}
		t.Run(name, func(t *testing.T) {
			m := gradient(37, 23, 0)
			var buf bytes.Buffer
			require.NoError(t, WriteGrayPNG(&buf, m, interlace))

			img := decodePNG(t, buf.Bytes())
			require.Equal(t, image.Rect(0, 0, 37, 23), img.Bounds())
			gray, ok := img.(*image.Gray)
			require.True(t, ok, "expected grayscale colour model")
			for y := 0; y < 23; y++ {
				for x := 0; x < 37; x++ {
					require.Equal(t, m[y][x], gray.GrayAt(x, y).Y, "pixel %d,%d", x, y)
				}
			}
		})
	}
}

func TestWriteRGBPNGRoundTrip(t *testing.T) {
	for _, interlace := range []bool{false, true} {
		name := "plain"
		if interlace {
			name = "adam7"
		}
		t.Run(name, func(t *testing.T) {
			r := gradient(41, 19, 0)
			g := gradient(41, 19, 85)
			b := gradient(41, 19, 170)
			var buf bytes.Buffer
			require.NoError(t, WriteRGBPNG(&buf, r, g, b, interlace))

			img := decodePNG(t, buf.Bytes())
			require.Equal(t, image.Rect(0, 0, 41, 19), img.Bounds())
			for y := 0; y < 19; y++ {
				for x := 0; x < 41; x++ {
					cr, cg, cb, _ := img.At(x, y).RGBA()
					require.Equal(t, uint32(r[y][x]), cr>>8, "red %d,%d", x, y)
					require.Equal(t, uint32(g[y][x]), cg>>8, "green %d,%d", x, y)
					require.Equal(t, uint32(b[y][x]), cb>>8, "blue %d,%d", x, y)
				}
			}
		})
	}
}

func TestWriteRGBPNGPixelAddressing(t *testing.T) {
	// Pixel (x, y) of the output must be (R[y][x], G[y][x], B[y][x]).
	r := raster.NewMatrix(64, 128)
	g := raster.NewMatrix(64, 128)
	b := raster.NewMatrix(64, 128)
	r[90][37] = 11
	g[90][37] = 22
	b[90][37] = 33

	var buf bytes.Buffer
	require.NoError(t, WriteRGBPNG(&buf, r, g, b, false))
	img := decodePNG(t, buf.Bytes())

	cr, cg, cb, _ := img.At(37, 90).RGBA()
	assert.Equal(t, uint32(11), cr>>8)
	assert.Equal(t, uint32(22), cg>>8)
	assert.Equal(t, uint32(33), cb>>8)
}

func TestWriteRGBPNGSizeMismatch(t *testing.T) {
	var buf bytes.Buffer
	err := WriteRGBPNG(&buf, raster.NewMatrix(4, 4), raster.NewMatrix(4, 4), raster.NewMatrix(5, 4), false)
	assert.Error(t, err)
}

func TestInterlacedFlagInHeader(t *testing.T) {
	m := gradient(16, 16, 0)

	var plain, adam bytes.Buffer
	require.NoError(t, WriteGrayPNG(&plain, m, false))
	require.NoError(t, WriteGrayPNG(&adam, m, true))

	// Interlace method lives in the last IHDR payload byte.
	assert.Equal(t, byte(0), plain.Bytes()[8+8+12])
	assert.Equal(t, byte(1), adam.Bytes()[8+8+12])
}

func TestWriteGrayImageRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "22A158.png")
	m := gradient(8, 8, 0)

	require.NoError(t, WriteGrayImage(path, m, Options{}))
	err := WriteGrayImage(path, m, Options{})
	assert.ErrorIs(t, err, ErrOverwriteRefused)

	require.NoError(t, WriteGrayImage(path, m, Options{Overwrite: true}))
}

func TestWriteGrayImageCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Chryse Planitia", "Virgo", "Colour", "97", "22A158.png")
	require.NoError(t, WriteGrayImage(path, gradient(8, 8, 0), Options{}))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestDryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "22A158.png")

	require.NoError(t, WriteGrayImage(path, gradient(8, 8, 0), Options{DryRun: true}))
	require.NoError(t, WriteColourImage(path, gradient(8, 8, 0), gradient(8, 8, 1), gradient(8, 8, 2), Options{DryRun: true}))
	require.NoError(t, WriteMetadata(path+".txt", nil, Options{DryRun: true}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "dry run must not touch the filesystem")
}

func TestDryRunStillRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "22A158.png")
	require.NoError(t, os.WriteFile(path, []byte("existing"), 0o644))

	err := WriteGrayImage(path, gradient(8, 8, 0), Options{DryRun: true})
	assert.ErrorIs(t, err, ErrOverwriteRefused)
}

func TestWriteMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "22A158.txt")
	b := &band.Band{
		Heuristic:             1,
		AzimuthElevation:      "AZIMUTH  112.50  ELEVATION  -03.20",
		CameraEventNoSol:      "22A158",
		SolarDay:              97,
		Diode:                 band.Red,
		FileSize:              8192,
		FileName:              "vl_1529.008",
		TapeNumber:            1529,
		FileOrdinal:           8,
		MeanPixelValue:        101.5,
		LanderNumber:          1,
		AxisPresent:           true,
		FullHistogramPresent:  false,
		PhysicalRecordSize:    586,
		PhysicalRecordPadding: 226,
		PhaseOffset:           2,
		RawOffset:             1024,
	}

	require.NoError(t, WriteMetadata(path, []*band.Band{b}, Options{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	for _, want := range []string{
		"basic heuristic method: 1",
		"camera azimuth / elevation: AZIMUTH  112.50  ELEVATION  -03.20",
		"camera event: 22A158",
		"camera event solar day: 97",
		"diode band type: Red",
		"file size: 8192",
		"input file: vl_1529.008",
		"magnetic tape: 1529",
		"magnetic tape file ordinal: 8",
		"mean pixel value: 101.5",
		"overlay axis present: true",
		"overlay full histogram present: false",
		"physical record size: 586",
		"physical record padding: 226",
		"phase offset required: 2",
		"raw image offset: 1024",
	} {
		assert.Contains(t, text, want)
	}
	assert.Contains(t, text, "month: ")
}

func TestWriteMetadataKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "22A158.txt")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o644))

	require.NoError(t, WriteMetadata(path, nil, Options{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
}

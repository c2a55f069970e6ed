package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planum-obs/viking/raster"
)

// fakeRecognizer returns canned text keyed on the dimensions of the
// matrix it is handed, which is enough to tell the four rotations of a
// non-square band apart (two shapes alternate over the four candidates).
type fakeRecognizer struct {
	calls    int
	wideText string // returned when width > height
	tallText string // returned when height > width
}

func (f *fakeRecognizer) Recognize(m raster.Matrix) (string, error) {
	f.calls++
	if m.Width() > m.Height() {
		return f.wideText, nil
	}
	return f.tallText, nil
}

// band returns a wide test matrix; RotateNone and Rotate180 keep it wide,
// Rotate90 and Rotate270 make it tall.
func band() raster.Matrix {
	return raster.NewMatrix(4, 2)
}

func TestClassifyHistogramRotatesAQuarterFurther(t *testing.T) {
	// Histogram vocabulary visible without rotating: the image needs a
	// further 90 degrees counter-clockwise.
	rec := &fakeRecognizer{wideText: "VIKING LANDER CAMERA EVENT", tallText: "no match"}
	c := NewClassifier(rec)

	got, err := c.Classify(band())
	require.NoError(t, err)
	assert.Equal(t, raster.Rotate90, got.Rotation)
	assert.True(t, got.AxisPresent)
	assert.True(t, got.FullHistogramPresent)
	assert.Contains(t, got.Text, "VIKING")
}

func TestClassifyHistogramUnderQuarterTurn(t *testing.T) {
	// Histogram only legible once the probe has rotated the band 90
	// degrees; the image then needs 180.
	rec := &fakeRecognizer{wideText: "nothing here", tallText: "MEAN SEGMENT OFFSET"}
	c := NewClassifier(rec)

	got, err := c.Classify(band())
	require.NoError(t, err)
	assert.Equal(t, raster.Rotate180, got.Rotation)
	assert.True(t, got.FullHistogramPresent)
}

func TestClassifyAxisKeepsProbedRotation(t *testing.T) {
	// No histogram anywhere; axis text legible in the unrotated image.
	rec := &fakeRecognizer{wideText: "IPL SCAN LINE", tallText: "zzz"}
	c := NewClassifier(rec)

	got, err := c.Classify(band())
	require.NoError(t, err)
	assert.Equal(t, raster.RotateNone, got.Rotation)
	assert.True(t, got.AxisPresent)
	assert.False(t, got.FullHistogramPresent)
}

func TestClassifyAxisUnderRotation(t *testing.T) {
	rec := &fakeRecognizer{wideText: "zzz", tallText: "CAMERA AZ"}
	c := NewClassifier(rec)

	got, err := c.Classify(band())
	require.NoError(t, err)
	assert.Equal(t, raster.Rotate90, got.Rotation)
	assert.True(t, got.AxisPresent)
	assert.False(t, got.FullHistogramPresent)
}

func TestClassifyVanillaImage(t *testing.T) {
	rec := &fakeRecognizer{wideText: "gibberish", tallText: "static"}
	c := NewClassifier(rec)

	got, err := c.Classify(band())
	require.NoError(t, err)
	assert.Equal(t, raster.RotateNone, got.Rotation)
	assert.False(t, got.AxisPresent)
	assert.False(t, got.FullHistogramPresent)
	assert.Empty(t, got.Text)
}

func TestClassifyCachesPerRotation(t *testing.T) {
	// Neither vocabulary matches, so the classifier probes all four
	// rotations twice over; the cache must hold it to four engine calls.
	rec := &fakeRecognizer{wideText: "a", tallText: "b"}
	c := NewClassifier(rec)

	_, err := c.Classify(band())
	require.NoError(t, err)
	assert.Equal(t, 4, rec.calls)
}

func TestClassifyDoesNotMutateInput(t *testing.T) {
	rec := &fakeRecognizer{wideText: "x", tallText: "y"}
	c := NewClassifier(rec)

	m := band()
	m[0][0] = 42
	_, err := c.Classify(m)
	require.NoError(t, err)
	assert.Equal(t, byte(42), m[0][0])
	assert.Equal(t, 2, m.Height())
	assert.Equal(t, 4, m.Width())
}

func TestEncodeForRecognition(t *testing.T) {
	m := raster.Matrix{
		{0, 200},
		{71, 70},
	}
	data, err := encodeForRecognition(m)
	require.NoError(t, err)
	assert.Greater(t, len(data), 8)
	// PNG signature
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data[:4])
}

func TestEncodeForRecognitionEmpty(t *testing.T) {
	_, err := encodeForRecognition(raster.Matrix{})
	assert.Error(t, err)
}

package coverage

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planum-obs/viking/assemble"
)

func samples() []Sample {
	return []Sample{
		{Sol: 1, Lander: 1, Class: "Colour", Bands: 3},
		{Sol: 1, Lander: 1, Class: "Survey", Bands: 1},
		{Sol: 45, Lander: 2, Class: "Sun", Bands: 2},
		{Sol: 97, Lander: 1, Class: "Infrared", Bands: 3},
	}
}

func TestFromCatalogue(t *testing.T) {
	ri1, err := assemble.NewReconstructableImage("out", "22A158/0097")
	require.NoError(t, err)
	ri2, err := assemble.NewReconstructableImage("out", "12B066/0045")
	require.NoError(t, err)

	got := FromCatalogue(map[string]*assemble.ReconstructableImage{
		"22A158/0097": ri1,
		"12B066/0045": ri2,
	})

	require.Len(t, got, 2)
	assert.Equal(t, 45, got[0].Sol, "samples sorted by sol")
	assert.Equal(t, 97, got[1].Sol)
}

func TestRenderSVG(t *testing.T) {
	svg := RenderSVG(samples(), nil)

	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.Contains(t, svg, "</svg>")
	// One background, four event cells and four legend swatches are
	// rects; the two baselines are lines.
	assert.GreaterOrEqual(t, strings.Count(svg, "<rect"), 9)
	assert.Contains(t, svg, `width="800"`)
}

func TestRenderSVGEmpty(t *testing.T) {
	svg := RenderSVG(nil, nil)
	assert.Contains(t, svg, "<svg")
	assert.Contains(t, svg, "</svg>")
}

func TestRenderSVGSingleSol(t *testing.T) {
	// A single sol must not divide by a zero range.
	svg := RenderSVG([]Sample{{Sol: 12, Lander: 1, Class: "Survey", Bands: 1}}, nil)
	assert.Contains(t, svg, "<rect")
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, samples(), nil))

	img, err := png.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}

func TestRenderImageCustomSize(t *testing.T) {
	img, err := RenderImage(samples(), &Options{Width: 200, Height: 100, Padding: 10})
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())
}

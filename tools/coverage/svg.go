package coverage

import (
	"fmt"
	"image/color"
	"strings"
)

// SVGBuilder accumulates SVG elements for the coverage chart. It emits
// markup restricted to what the oksvg rasteriser supports: absolute
// rects, circles and lines, no patterns or markers.
type SVGBuilder struct {
	width, height int
	elements      []string
}

// NewSVGBuilder creates a builder with the given canvas size.
func NewSVGBuilder(width, height int) *SVGBuilder {
	return &SVGBuilder{
		width:    width,
		height:   height,
		elements: make([]string, 0, 256),
	}
}

func rgb(col color.RGBA) string {
	return fmt.Sprintf("rgb(%d,%d,%d)", col.R, col.G, col.B)
}

// Rect adds a filled rectangle.
func (b *SVGBuilder) Rect(x, y, w, h float64, fill string) *SVGBuilder {
	b.elements = append(b.elements, fmt.Sprintf(
		`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`,
		x, y, w, h, fill))
	return b
}

// RectRGBA adds a filled rectangle with an RGBA colour.
func (b *SVGBuilder) RectRGBA(x, y, w, h float64, col color.RGBA) *SVGBuilder {
	return b.Rect(x, y, w, h, rgb(col))
}

// Circle adds a filled circle.
func (b *SVGBuilder) Circle(cx, cy, r float64, col color.RGBA) *SVGBuilder {
	b.elements = append(b.elements, fmt.Sprintf(
		`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`,
		cx, cy, r, rgb(col)))
	return b
}

// Line adds a stroked line.
func (b *SVGBuilder) Line(x1, y1, x2, y2 float64, col color.RGBA, width float64) *SVGBuilder {
	b.elements = append(b.elements, fmt.Sprintf(
		`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.1f"/>`,
		x1, y1, x2, y2, rgb(col), width))
	return b
}

// String assembles the complete SVG document.
func (b *SVGBuilder) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		b.width, b.height, b.width, b.height))
	sb.WriteByte('\n')
	for _, el := range b.elements {
		sb.WriteString(el)
		sb.WriteByte('\n')
	}
	sb.WriteString("</svg>\n")
	return sb.String()
}

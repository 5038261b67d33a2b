package render

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"strconv"

	"github.com/jusunglee/railmap-go/internal/models"
)

// SVGOptions configures the SVG surface
type SVGOptions struct {
	Width      int
	Height     int
	ViewBox    int
	Background string
	// ApplyTransform writes the viewport transform onto the root element.
	// Disable it to get the untransformed network, e.g. for exports.
	ApplyTransform bool
}

// DefaultSVGOptions returns the surface used by the map view
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Width:          3000,
		Height:         3000,
		ViewBox:        2400,
		Background:     "#61797f",
		ApplyTransform: true,
	}
}

// Station marker styling
const (
	stationRadius            = 5
	stationRadiusHighlighted = 8
	labelOffset              = 10
	labelFontSize            = 11
)

// WriteSVG draws a scene as a standalone SVG document
func WriteSVG(w io.Writer, scene Scene, opts SVGOptions) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d"`,
		opts.Width, opts.Height, opts.ViewBox, opts.ViewBox)
	if opts.ApplyTransform {
		t := scene.Transform
		fmt.Fprintf(bw, ` style="transform: translate(%spx, %spx) scale(%s); transform-origin: 0 0"`,
			num(t.Pan.X), num(t.Pan.Y), num(t.Zoom))
	}
	bw.WriteString(">\n")

	if scene.Network != "" {
		fmt.Fprintf(bw, "<title>%s</title>\n", html.EscapeString(scene.Network))
	}
	if opts.Background != "" {
		fmt.Fprintf(bw, `<rect x="0" y="0" width="100%%" height="100%%" fill="%s"/>`+"\n", attr(opts.Background))
	}

	bw.WriteString(`<g class="edges" stroke-linecap="round">` + "\n")
	for _, e := range scene.Edges {
		writeEdge(bw, e)
	}
	bw.WriteString("</g>\n")

	bw.WriteString(`<g class="stations">` + "\n")
	for _, s := range scene.Stations {
		writeStation(bw, s, scene.Active)
	}
	bw.WriteString("</g>\n</svg>\n")

	return bw.Flush()
}

func writeEdge(w *bufio.Writer, e models.EdgeDirective) {
	class := "edge"
	if e.Highlighted {
		class = "edge highlighted"
	}
	fmt.Fprintf(w, `<line class="%s" data-line="%s" x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s" opacity="%s"/>`+"\n",
		class, attr(e.Line),
		num(e.FromPos.X), num(e.FromPos.Y), num(e.ToPos.X), num(e.ToPos.Y),
		attr(e.Color), num(e.StrokeWidth), num(e.Opacity))
}

func writeStation(w *bufio.Writer, s models.StationDirective, active bool) {
	radius, fill, stroke, strokeWidth, opacity := stationRadius, "white", "#64748b", 2, 0.9
	if s.Highlighted {
		radius, fill, stroke, strokeWidth, opacity = stationRadiusHighlighted, RouteColor, "#d97706", 3, 1
	} else if active {
		opacity = 0.4
	}

	fmt.Fprintf(w, `<g class="station" data-name="%s">`, attr(s.Name))
	fmt.Fprintf(w, `<circle cx="%s" cy="%s" r="%d" fill="%s" stroke="%s" stroke-width="%d" opacity="%s"/>`,
		num(s.Position.X), num(s.Position.Y), radius, fill, stroke, strokeWidth, num(opacity))

	if s.LabelVisible {
		x := s.Position.X + labelOffset
		anchor := models.AnchorStart
		if s.LabelAnchor == models.AnchorEnd {
			x = s.Position.X - labelOffset
			anchor = models.AnchorEnd
		}
		weight, color := 500, "#1e293b"
		if s.Highlighted {
			weight, color = 700, "#92400e"
		}
		fmt.Fprintf(w, `<text x="%s" y="%s" text-anchor="%s" font-size="%d" font-weight="%d" fill="%s">%s</text>`,
			num(x), num(s.Position.Y+4), anchor, labelFontSize, weight, color, html.EscapeString(s.Name))
	}
	w.WriteString("</g>\n")
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func attr(s string) string {
	return html.EscapeString(s)
}

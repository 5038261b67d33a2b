// Package render converts network, highlight and viewport state into draw
// directives. Pixel drawing belongs to the consumer; this package only
// decides what is drawn and how it is styled.
package render

import (
	"github.com/jusunglee/railmap-go/internal/highlight"
	"github.com/jusunglee/railmap-go/internal/models"
	"github.com/jusunglee/railmap-go/internal/viewport"
)

// Edge styling
const (
	RouteColor = "#f59e0b"

	HighlightedWidth = 5.0
	BaseWidth        = 3.0

	HighlightedOpacity = 1.0
	DimmedOpacity      = 0.3
	BaseOpacity        = 0.8
)

// RouteLegendName labels the highlighted route in the legend
const RouteLegendName = "Your Route"

// Graph is the part of the network the renderer reads
type Graph interface {
	Name() string
	Stations() []models.Station
	Lines() []models.Line
	PositionOf(name string) (models.Point, bool)
}

// Scene is everything a renderer needs for one frame
type Scene struct {
	Network   string                    `json:"network"`
	Active    bool                      `json:"active"`
	Path      []string                  `json:"path"`
	Segments  []models.Segment          `json:"segments"`
	Stations  []models.StationDirective `json:"stations"`
	Edges     []models.EdgeDirective    `json:"edges"`
	Legend    []models.LegendEntry      `json:"legend"`
	Transform viewport.State            `json:"transform"`
	Route     *models.RouteResult       `json:"route,omitempty"`
}

// Build produces the directives for the current state. Stations and edges
// whose positions are unknown are left out.
func Build(g Graph, path highlight.Path, t viewport.State) Scene {
	active := path.Active()

	scene := Scene{
		Network:   g.Name(),
		Active:    active,
		Path:      path.Stations(),
		Segments:  path.Segments(),
		Transform: t,
	}

	lines := g.Lines()
	for _, line := range lines {
		scene.Legend = append(scene.Legend, models.LegendEntry{Name: line.Name, Color: line.Color})

		for _, edge := range line.Edges() {
			from, ok := g.PositionOf(edge.From)
			if !ok {
				continue
			}
			to, ok := g.PositionOf(edge.To)
			if !ok {
				continue
			}
			scene.Edges = append(scene.Edges, edgeDirective(edge, from, to, path, active))
		}
	}
	if active {
		scene.Legend = append(scene.Legend, models.LegendEntry{Name: RouteLegendName, Color: RouteColor})
	}

	for _, s := range g.Stations() {
		highlighted := path.IsStationHighlighted(s.Name)
		scene.Stations = append(scene.Stations, models.StationDirective{
			Name:         s.Name,
			Position:     s.Position,
			Highlighted:  highlighted,
			LabelVisible: highlighted || !active,
			LabelAnchor:  s.LabelAnchor,
		})
	}

	return scene
}

func edgeDirective(e models.Edge, from, to models.Point, path highlight.Path, active bool) models.EdgeDirective {
	d := models.EdgeDirective{
		Line:    e.Line,
		From:    e.From,
		To:      e.To,
		FromPos: from,
		ToPos:   to,
	}

	switch {
	case path.IsEdgeHighlighted(e.From, e.To):
		d.Highlighted = true
		d.Color = RouteColor
		d.StrokeWidth = HighlightedWidth
		d.Opacity = HighlightedOpacity
	case active:
		d.Color = e.Color
		d.StrokeWidth = BaseWidth
		d.Opacity = DimmedOpacity
	default:
		d.Color = e.Color
		d.StrokeWidth = BaseWidth
		d.Opacity = BaseOpacity
	}

	return d
}

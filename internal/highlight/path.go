// Package highlight merges itinerary segments into the highlighted path and
// classifies stations and edges against it.
package highlight

import "github.com/jusunglee/railmap-go/internal/models"

// Path is the deduplicated, insertion-ordered union of segment stations.
// The zero value is an empty path with nothing highlighted.
type Path struct {
	stations []string
	index    map[string]int
	segments []models.Segment
}

// Resolve builds the path for segments. First occurrence of a station wins,
// so path order follows segment discovery order.
func Resolve(segments []models.Segment) Path {
	p := Path{
		index:    make(map[string]int),
		segments: make([]models.Segment, len(segments)),
	}

	for i, seg := range segments {
		seg.Stations = append([]string(nil), seg.Stations...)
		p.segments[i] = seg

		for _, name := range seg.Stations {
			if _, seen := p.index[name]; seen {
				continue
			}
			p.index[name] = len(p.stations)
			p.stations = append(p.stations, name)
		}
	}

	return p
}

// Stations returns the path's stations in order
func (p Path) Stations() []string {
	return append([]string{}, p.stations...)
}

// Segments returns the segments the path was built from
func (p Path) Segments() []models.Segment {
	result := make([]models.Segment, len(p.segments))
	for i, seg := range p.segments {
		seg.Stations = append([]string(nil), seg.Stations...)
		result[i] = seg
	}
	return result
}

// Len returns the number of stations on the path
func (p Path) Len() int {
	return len(p.stations)
}

// Active reports whether anything is highlighted
func (p Path) Active() bool {
	return len(p.stations) > 0
}

// IsStationHighlighted reports whether name is on the path
func (p Path) IsStationHighlighted(name string) bool {
	_, ok := p.index[name]
	return ok
}

// IsEdgeHighlighted reports whether a and b are both on the path and
// adjacent in it. This approximates "the edge was traversed": interleaving
// segments can under- or over-highlight.
func (p Path) IsEdgeHighlighted(a, b string) bool {
	i, ok := p.index[a]
	if !ok {
		return false
	}
	j, ok := p.index[b]
	if !ok {
		return false
	}
	return i-j == 1 || j-i == 1
}

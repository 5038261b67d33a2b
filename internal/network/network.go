// Package network holds the static rail network: stations with map
// coordinates and lines as ordered station sequences.
//
// A Network is built once and never mutated. Every accessor returns copies,
// so callers cannot change the graph after load.
package network

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/jusunglee/railmap-go/internal/models"
)

// Network is an immutable multi-line rail graph
type Network struct {
	name     string
	stations map[string]models.Station
	lines    []models.Line
	byName   map[string]int
	// station name -> index within each line, keyed by line position
	indices []map[string]int
	edges   int
}

func newNetwork(name string, stations []models.Station, lines []models.Line) *Network {
	n := &Network{
		name:     name,
		stations: make(map[string]models.Station, len(stations)),
		lines:    make([]models.Line, len(lines)),
		byName:   make(map[string]int, len(lines)),
		indices:  make([]map[string]int, len(lines)),
	}

	for _, s := range stations {
		if s.LabelAnchor == "" {
			s.LabelAnchor = models.AnchorStart
		}
		n.stations[s.Name] = s
	}

	for i, l := range lines {
		l.Stations = append([]string(nil), l.Stations...)
		n.lines[i] = l
		n.byName[l.Name] = i

		// First occurrence wins if a line lists a station twice
		idx := make(map[string]int, len(l.Stations))
		for j, name := range l.Stations {
			if _, ok := idx[name]; !ok {
				idx[name] = j
			}
		}
		n.indices[i] = idx
		if len(l.Stations) > 1 {
			n.edges += len(l.Stations) - 1
		}
	}

	return n
}

// Name returns the network's display name
func (n *Network) Name() string {
	return n.name
}

// PositionOf returns the map position of a station
func (n *Network) PositionOf(name string) (models.Point, bool) {
	s, ok := n.stations[name]
	if !ok {
		return models.Point{}, false
	}
	return s.Position, true
}

// Station returns the station with the given name
func (n *Network) Station(name string) (models.Station, bool) {
	s, ok := n.stations[name]
	return s, ok
}

// LinesContaining returns every line whose sequence includes name, in declaration order
func (n *Network) LinesContaining(name string) []models.Line {
	var result []models.Line
	for i, idx := range n.indices {
		if _, ok := idx[name]; ok {
			result = append(result, copyLine(n.lines[i]))
		}
	}
	return result
}

// IndexOf returns the position of a station within a line
func (n *Network) IndexOf(line, name string) (int, bool) {
	i, ok := n.byName[line]
	if !ok {
		return 0, false
	}
	idx, ok := n.indices[i][name]
	return idx, ok
}

// Line returns a line by name
func (n *Network) Line(name string) (models.Line, bool) {
	i, ok := n.byName[name]
	if !ok {
		return models.Line{}, false
	}
	return copyLine(n.lines[i]), true
}

// Lines returns all lines in declaration order
func (n *Network) Lines() []models.Line {
	result := make([]models.Line, len(n.lines))
	for i, l := range n.lines {
		result[i] = copyLine(l)
	}
	return result
}

// Stations returns all stations sorted by name
func (n *Network) Stations() []models.Station {
	result := make([]models.Station, 0, len(n.stations))
	for _, s := range n.stations {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// StationNames returns all station names sorted
func (n *Network) StationNames() []string {
	names := make([]string, 0, len(n.stations))
	for name := range n.stations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Edges returns every consecutive pair of every line, lines in declaration order
func (n *Network) Edges() []models.Edge {
	edges := make([]models.Edge, 0, n.edges)
	for i := range n.lines {
		edges = append(edges, n.lines[i].Edges()...)
	}
	return edges
}

// EdgeCount returns the number of line edges
func (n *Network) EdgeCount() int {
	return n.edges
}

// StationsNear returns up to limit stations closest to p
func (n *Network) StationsNear(p models.Point, limit int) []models.Station {
	type stationDist struct {
		station  models.Station
		distance float64
	}

	stations := make([]stationDist, 0, len(n.stations))
	for _, s := range n.stations {
		stations = append(stations, stationDist{s, distance(p, s.Position)})
	}

	// Ties break on name so results are stable across map iteration order
	sort.Slice(stations, func(i, j int) bool {
		if stations[i].distance == stations[j].distance {
			return stations[i].station.Name < stations[j].station.Name
		}
		return stations[i].distance < stations[j].distance
	})

	result := make([]models.Station, 0, limit)
	for i := 0; i < limit && i < len(stations); i++ {
		result = append(result, stations[i].station)
	}

	return result
}

// Suggest returns up to limit station names containing query, ignoring case
func (n *Network) Suggest(query string, limit int) []string {
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(query))
	if q == "" || limit <= 0 {
		return []string{}
	}

	result := []string{}
	for _, name := range n.StationNames() {
		if strings.Contains(fold.String(name), q) {
			result = append(result, name)
			if len(result) == limit {
				break
			}
		}
	}
	return result
}

// Normalize resolves user input to a station name: an exact match ignoring
// case first, then the first name containing the input. Unknown input is
// returned trimmed but otherwise unchanged.
func (n *Network) Normalize(input string) string {
	fold := cases.Fold()
	trimmed := strings.TrimSpace(input)
	q := fold.String(trimmed)
	if q == "" {
		return trimmed
	}

	names := n.StationNames()
	for _, name := range names {
		if fold.String(name) == q {
			return name
		}
	}
	for _, name := range names {
		if strings.Contains(fold.String(name), q) {
			return name
		}
	}
	return trimmed
}

func copyLine(l models.Line) models.Line {
	l.Stations = append([]string(nil), l.Stations...)
	return l
}

// distance is the Euclidean distance between two map points
func distance(a, b models.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

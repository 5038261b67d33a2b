package models

// Point is a 2-D coordinate in map units
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Add returns p + q
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Label anchors for station names
const (
	AnchorStart = "start"
	AnchorEnd   = "end"
)

// Station is a named point on the map
type Station struct {
	Name        string `json:"name"`
	Position    Point  `json:"position"`
	LabelAnchor string `json:"label_anchor"`
}

// Line is a named, ordered sequence of station names.
// Consecutive entries are connected.
type Line struct {
	Name     string   `json:"name"`
	Color    string   `json:"color"`
	Mode     string   `json:"mode,omitempty"`
	Stations []string `json:"stations"`
}

// Edge is a pair of consecutive stations on a line
type Edge struct {
	Line  string `json:"line"`
	Color string `json:"color"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// Edges returns the implicit edges of the line in station order
func (l *Line) Edges() []Edge {
	if len(l.Stations) < 2 {
		return nil
	}
	edges := make([]Edge, 0, len(l.Stations)-1)
	for i := 0; i < len(l.Stations)-1; i++ {
		edges = append(edges, Edge{
			Line:  l.Name,
			Color: l.Color,
			From:  l.Stations[i],
			To:    l.Stations[i+1],
		})
	}
	return edges
}

// Segment is the part of one line covered by one itinerary leg.
// Stations are always in the line's forward order.
type Segment struct {
	LineName string   `json:"line"`
	Color    string   `json:"color"`
	Stations []string `json:"stations"`
}

// TravelLeg is one "Take ... From: X → To: Y" entry of an itinerary
type TravelLeg struct {
	Mode      string `json:"mode"`
	LineLabel string `json:"line_label"`
	From      string `json:"from"`
	To        string `json:"to"`
}

// RouteResult is the journey returned by the route service
type RouteResult struct {
	Time            string   `json:"time"`
	Cost            string   `json:"cost"`
	Distance        string   `json:"distance"`
	Transfers       int      `json:"transfers"`
	Comfort         float64  `json:"comfort,omitempty"`
	MetroPercentage float64  `json:"metro_percentage,omitempty"`
	Route           []string `json:"route"`
}

// AlternativeRoute is one entry of the route service's comparison response
type AlternativeRoute struct {
	Instructions    []string `json:"instructions"`
	Time            float64  `json:"time"`
	Cost            float64  `json:"cost"`
	Distance        float64  `json:"distance"`
	Transfers       int      `json:"transfers"`
	Comfort         float64  `json:"comfort"`
	MetroPercentage float64  `json:"metro_percentage"`
}

// Journey bundles a selected route with the alternatives fetched alongside it
type Journey struct {
	Request      JourneyRequest              `json:"request"`
	Result       RouteResult                 `json:"result"`
	Alternatives map[string]AlternativeRoute `json:"alternatives,omitempty"`
}

// Route types understood by the route service
const (
	RouteFastest     = "fastest"
	RouteCheapest    = "cheapest"
	RouteComfortable = "comfortable"
)

// JourneyRequest asks the route service for a journey between two stations
type JourneyRequest struct {
	From      string `json:"from"`
	To        string `json:"to"`
	RouteType string `json:"routeType,omitempty"`
}

// StationDirective tells the renderer how to draw one station
type StationDirective struct {
	Name         string `json:"name"`
	Position     Point  `json:"position"`
	Highlighted  bool   `json:"highlighted"`
	LabelVisible bool   `json:"label_visible"`
	LabelAnchor  string `json:"label_anchor"`
}

// EdgeDirective tells the renderer how to draw one edge
type EdgeDirective struct {
	Line        string  `json:"line"`
	From        string  `json:"from"`
	To          string  `json:"to"`
	FromPos     Point   `json:"from_pos"`
	ToPos       Point   `json:"to_pos"`
	Color       string  `json:"color"`
	StrokeWidth float64 `json:"stroke_width"`
	Opacity     float64 `json:"opacity"`
	Highlighted bool    `json:"highlighted"`
}

// LegendEntry is one row of the map legend
type LegendEntry struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

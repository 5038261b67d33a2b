// Package itinerary turns the route service's human-readable instructions
// into segments over the rail network.
//
// The text format is owned by the route service. ParseLeg is the only code
// that knows about it; everything after works on models.TravelLeg.
package itinerary

import (
	"regexp"
	"strings"

	"github.com/jusunglee/railmap-go/internal/models"
)

// Mode markers emitted by the route service
const (
	MarkerLocal = "🚆"
	MarkerMetro = "🚇"
)

// legPattern matches "🚆 Take <mode> - <line>\n   From: <a> → To: <b>".
// The mode is greedy and the line label lazy, so the label is whatever
// follows the last " - " before the From clause.
var legPattern = regexp.MustCompile(`(?:` + MarkerLocal + `|` + MarkerMetro + `) Take (.+) - (.+?)\s+From: (.+?) → To: (.+)`)

// Graph is the part of the network the parser needs
type Graph interface {
	Lines() []models.Line
	IndexOf(line, name string) (int, bool)
}

// ParseLeg extracts a travel leg from one itinerary entry.
// Entries that are not travel legs (headers, totals, blanks) return false.
func ParseLeg(text string) (models.TravelLeg, bool) {
	m := legPattern.FindStringSubmatch(text)
	if m == nil {
		return models.TravelLeg{}, false
	}

	leg := models.TravelLeg{
		Mode:      strings.TrimSpace(m[1]),
		LineLabel: strings.TrimSpace(m[2]),
		From:      strings.TrimSpace(m[3]),
		To:        strings.TrimSpace(m[4]),
	}
	if leg.From == "" || leg.To == "" {
		return models.TravelLeg{}, false
	}
	return leg, true
}

// ParseLegs extracts every travel leg from an itinerary, in order
func ParseLegs(route []string) []models.TravelLeg {
	var legs []models.TravelLeg
	for _, text := range route {
		if leg, ok := ParseLeg(text); ok {
			legs = append(legs, leg)
		}
	}
	return legs
}

// Resolve maps legs onto the network. For each leg the first line in
// declaration order that contains both endpoints wins; the leg's own line
// label is not consulted. Legs no line can serve are dropped.
func Resolve(legs []models.TravelLeg, g Graph) []models.Segment {
	lines := g.Lines()
	segments := make([]models.Segment, 0, len(legs))

	for _, leg := range legs {
		if seg, ok := resolveLeg(leg, lines, g); ok {
			segments = append(segments, seg)
		}
	}

	return segments
}

func resolveLeg(leg models.TravelLeg, lines []models.Line, g Graph) (models.Segment, bool) {
	for _, line := range lines {
		from, ok := g.IndexOf(line.Name, leg.From)
		if !ok {
			continue
		}
		to, ok := g.IndexOf(line.Name, leg.To)
		if !ok {
			continue
		}

		lo, hi := min(from, to), max(from, to)
		stations := make([]string, hi-lo+1)
		copy(stations, line.Stations[lo:hi+1])

		return models.Segment{
			LineName: line.Name,
			Color:    line.Color,
			Stations: stations,
		}, true
	}
	return models.Segment{}, false
}

// Parse runs ParseLegs and Resolve. It never fails: unmatched entries and
// unresolvable legs simply contribute nothing.
func Parse(route []string, g Graph) []models.Segment {
	return Resolve(ParseLegs(route), g)
}

package network

import "github.com/jusunglee/railmap-go/internal/models"

// CreateTestNetwork creates a small network for tests.
//
//	Red:   A - B - C - D
//	Blue:  X - B - C - Y   (shares B and C with Red)
//	Green: D - E
//
// Station Y has no position, so its edges never reach draw output.
func CreateTestNetwork() *Network {
	stations := []models.Station{
		{Name: "A", Position: models.Point{X: 0, Y: 0}, LabelAnchor: models.AnchorEnd},
		{Name: "B", Position: models.Point{X: 10, Y: 0}},
		{Name: "C", Position: models.Point{X: 20, Y: 0}},
		{Name: "D", Position: models.Point{X: 30, Y: 0}},
		{Name: "E", Position: models.Point{X: 30, Y: 10}},
		{Name: "X", Position: models.Point{X: 10, Y: -10}},
	}
	lines := []models.Line{
		{Name: "Red", Color: "#ff0000", Mode: "Local Train", Stations: []string{"A", "B", "C", "D"}},
		{Name: "Blue", Color: "#0000ff", Mode: "Metro", Stations: []string{"X", "B", "C", "Y"}},
		{Name: "Green", Color: "#00ff00", Mode: "Local Train", Stations: []string{"D", "E"}},
	}
	return newNetwork("Test Network", stations, lines)
}

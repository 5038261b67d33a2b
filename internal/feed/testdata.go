package feed

import "github.com/jusunglee/railmap-go/internal/models"

// CreateMockRouteResult creates a route service answer for testing.
// Churchgate → Ghatkopar via Dadar on the default network, formatted the way
// the route service formats instructions.
func CreateMockRouteResult() models.RouteResult {
	return models.RouteResult{
		Time:      "31 min",
		Cost:      "₹10",
		Distance:  "28.0 km",
		Transfers: 1,
		Comfort:   5,
		Route: []string{
			"🚆 Take Local Train - Western Line\n   From: Churchgate → To: Dadar\n   (8 stops, ~24 min)",
			"🚆 Take Local Train - Central Line\n   From: Dadar → To: Ghatkopar\n   (5 stops, ~15 min)",
			"",
			"🔄 Transfers:",
			"   → At Dadar: Change from Western Line to Central Line",
			"",
			"📊 Journey Summary:",
			"   ⏱️  Total Time: 31 minutes",
			"   💰 Total Cost: ₹10",
			"   📍 Distance: 28.0 km",
			"   🔄 Transfers: 1",
			"   🪑 Comfort: 5.0/10",
		},
	}
}

// CreateMockAlternatives creates a comparison answer for testing
func CreateMockAlternatives() map[string]models.AlternativeRoute {
	fastest := CreateMockRouteResult()
	return map[string]models.AlternativeRoute{
		models.RouteFastest: {
			Instructions: fastest.Route,
			Time:         31,
			Cost:         10,
			Distance:     28,
			Transfers:    1,
			Comfort:      5,
		},
		models.RouteComfortable: {
			Instructions: []string{
				"🚇 Take Metro - Metro Line 1\n   From: Andheri → To: Ghatkopar\n   (8 stops, ~16 min)",
			},
			Time:            52,
			Cost:            170,
			Distance:        34,
			Transfers:       2,
			Comfort:         7.5,
			MetroPercentage: 40,
		},
	}
}

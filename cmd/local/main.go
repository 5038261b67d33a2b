package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jusunglee/railmap-go/internal/models"
	"github.com/jusunglee/railmap-go/internal/render"
	"github.com/jusunglee/railmap-go/pkg/railmap"
)

func main() {
	var (
		networkFile  = flag.String("network", "", "Network YAML file (default: built-in map)")
		itinerary    = flag.String("itinerary", "", "Itinerary file: route service JSON or plain instructions, - for stdin")
		from         = flag.String("from", "", "Plan a journey from this station via the route service")
		to           = flag.String("to", "", "Destination station for -from")
		routeType    = flag.String("type", models.RouteFastest, "Route type: fastest, cheapest, comfortable")
		routeService = flag.String("route-service", "", "Route service base URL")
		suggest      = flag.String("suggest", "", "List stations matching a prefix or fragment")
		out          = flag.String("out", "", "Write the rendered map as SVG to this file")
	)
	flag.Parse()

	config := railmap.DefaultConfig()
	config.NetworkFile = *networkFile
	config.SessionTTL = 0
	if *routeService != "" {
		config.RouteServiceURL = *routeService
	}

	client, err := railmap.NewLocal(config)
	if err != nil {
		slog.Error("Failed to create railmap client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	// Station lookup mode
	if *suggest != "" {
		fmt.Printf("Stations matching %q:\n", *suggest)
		for _, name := range client.GetStations(*suggest, railmap.MaxSuggestions) {
			fmt.Printf("- %s\n", name)
		}
		return
	}

	sess := client.CreateSession()

	switch {
	case *from != "" || *to != "":
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		journey, err := client.PlanJourney(ctx, sess.ID, models.JourneyRequest{From: *from, To: *to, RouteType: *routeType})
		if err != nil {
			slog.Error("Failed to plan journey", "from", *from, "to", *to, "error", err)
			os.Exit(1)
		}
		fmt.Printf("\n%s → %s (%s): %s, %s, %s\n", journey.Request.From, journey.Request.To,
			journey.Request.RouteType, journey.Result.Time, journey.Result.Cost, journey.Result.Distance)

	case *itinerary != "":
		result, err := readItinerary(*itinerary)
		if err != nil {
			slog.Error("Failed to read itinerary", "file", *itinerary, "error", err)
			os.Exit(1)
		}
		if _, err := client.ApplyItinerary(sess.ID, result); err != nil {
			slog.Error("Failed to apply itinerary", "error", err)
			os.Exit(1)
		}

	default:
		info := client.GetNetworkInfo()
		fmt.Printf("\n%s: %d stations, %d lines, %d edges\n", info.Name, info.Stations, info.Lines, info.Edges)
		for _, line := range client.GetLines() {
			fmt.Printf("- %s (%s, %d stations)\n", line.Name, line.Mode, len(line.Stations))
		}
	}

	scene, err := client.GetScene(sess.ID)
	if err != nil {
		slog.Error("Failed to build scene", "error", err)
		os.Exit(1)
	}
	printPath(scene)

	if *out != "" {
		if err := writeSVG(*out, scene); err != nil {
			slog.Error("Failed to write SVG", "file", *out, "error", err)
			os.Exit(1)
		}
		fmt.Printf("\nMap written to %s\n", *out)
	}
}

func printPath(scene render.Scene) {
	if !scene.Active {
		return
	}
	fmt.Printf("\nHighlighted path (%d stations):\n", len(scene.Path))
	for _, seg := range scene.Segments {
		fmt.Printf("  %s: %s\n", seg.LineName, strings.Join(seg.Stations, " - "))
	}
}

// readItinerary accepts either a route service JSON answer or the
// instruction text itself, one instruction block per blank-line group
func readItinerary(path string) (models.RouteResult, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return models.RouteResult{}, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var result models.RouteResult
		if err := json.Unmarshal(trimmed, &result); err != nil {
			return models.RouteResult{}, fmt.Errorf("decode itinerary: %w", err)
		}
		return result, nil
	}

	var (
		result models.RouteResult
		block  []string
	)
	flush := func() {
		if len(block) > 0 {
			result.Route = append(result.Route, strings.Join(block, "\n"))
			block = nil
		}
	}

	scanner := bufio.NewScanner(bytes.NewReader(trimmed))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		block = append(block, line)
	}
	flush()

	return result, scanner.Err()
}

func writeSVG(path string, scene render.Scene) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.WriteSVG(f, scene, render.DefaultSVGOptions()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Command routecheck loads the campus walking graph and prints the route
// between two coordinate pairs.
//
//	go run ./cmd/routecheck -from 8.5569,39.2911 -to 8.5601,39.2950 -urgency exam
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"astu-route-be/internal/config"
	"astu-route-be/internal/pkg/logger"
	"astu-route-be/pkg/geo"
	"astu-route-be/pkg/osm"
	"astu-route-be/pkg/routing"

	"github.com/fatih/color"
)

func parsePoint(s string) (geo.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return geo.Point{}, fmt.Errorf("expected lat,lng but got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("bad latitude in %q: %w", s, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("bad longitude in %q: %w", s, err)
	}
	return geo.NewPoint(lat, lng), nil
}

func fail(format string, args ...interface{}) {
	color.Red(format, args...)
	os.Exit(1)
}

func main() {
	cfg := config.Load()

	from := flag.String("from", fmt.Sprintf("%f,%f", cfg.Geo.DefaultLat, cfg.Geo.DefaultLng), "start as lat,lng")
	to := flag.String("to", "", "destination as lat,lng")
	urgency := flag.String("urgency", "normal", "normal, exam or accessibility")
	verbose := flag.Bool("v", false, "log graph loading")
	flag.Parse()

	if *to == "" {
		fail("-to is required")
	}
	start, err := parsePoint(*from)
	if err != nil {
		fail("Invalid -from: %v", err)
	}
	end, err := parsePoint(*to)
	if err != nil {
		fail("Invalid -to: %v", err)
	}

	var log logger.ILogger = logger.NewNopLogger()
	if *verbose {
		log = logger.NewZapLogger(cfg.App.LogFilePath, false)
	}

	region := routing.Region{
		Center:        geo.NewPoint(cfg.Geo.CenterLat, cfg.Geo.CenterLng),
		RadiusMeters:  cfg.Geo.RadiusMeters,
		MarginMeters:  cfg.Geo.MarginMeters,
		BoundaryRatio: cfg.Geo.BoundaryRatio,
	}
	graph := osm.NewProvider(
		osm.NewOverpassLoader(cfg.Geo.OverpassURL, cfg.Geo.SnapshotPath, region.Center, region.RadiusMeters, log),
		region.Center,
		region.RadiusMeters,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	color.Cyan("Loading campus walking graph...")
	stats := graph.Stats(ctx)
	if stats.Loaded {
		color.Green("Graph ready: %d nodes, %d edges", stats.Nodes, stats.Edges)
	} else {
		color.Yellow("Graph unavailable (%s), routes fall back to straight lines", stats.Error)
	}

	engine := routing.NewEngine(graph, region, cfg.Geo.WalkingSpeed, log)
	route, err := engine.Route(ctx, routing.Request{
		Start:   start,
		End:     end,
		Urgency: geo.ParseUrgency(*urgency),
	})
	if err != nil {
		fail("Routing failed: %v", err)
	}

	color.Yellow("\nRoute %s -> %s", start, end)
	fmt.Printf("  strategy: %s\n", route.Strategy)
	fmt.Printf("  distance: %.0f m\n", route.DistanceMeters)
	fmt.Printf("  duration: %d min (%s)\n", route.DurationMinutes, route.Urgency)
	if route.Hybrid {
		fmt.Printf("  on campus: %.0f m, outside: %.0f m\n", route.InGraphMeters, route.ExternalMeters)
	}

	color.Yellow("\nInstructions")
	for i, step := range route.Instructions {
		fmt.Printf("  %d. %s\n", i+1, step)
	}

	color.Yellow("\nWhy this route")
	for _, reason := range routing.Reasons(route) {
		color.Green("  - %s", reason)
	}
}

package osm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"astu-route-be/internal/pkg/logger"
	"astu-route-be/pkg/geo"
)

const walkHighways = "footway|path|pedestrian|steps|corridor|living_street|residential|service|track|unclassified|tertiary|secondary|primary"

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type  string            `json:"type"`
	ID    int64             `json:"id"`
	Lat   float64           `json:"lat,omitempty"`
	Lon   float64           `json:"lon,omitempty"`
	Nodes []int64           `json:"nodes,omitempty"`
	Tags  map[string]string `json:"tags,omitempty"`
}

// OverpassLoader builds the campus walking network from an Overpass API
// response, preferring a local snapshot of a previous response.
type OverpassLoader struct {
	client       *http.Client
	endpoint     string
	snapshotPath string
	center       geo.Point
	radiusMeters float64
	logger       logger.ILogger
}

func NewOverpassLoader(endpoint, snapshotPath string, center geo.Point, radiusMeters float64, log logger.ILogger) *OverpassLoader {
	return &OverpassLoader{
		client:       &http.Client{Timeout: 90 * time.Second},
		endpoint:     endpoint,
		snapshotPath: snapshotPath,
		center:       center,
		radiusMeters: radiusMeters,
		logger:       log,
	}
}

func (l *OverpassLoader) query() string {
	return fmt.Sprintf(`[out:json][timeout:60];
way["highway"~"%s"](around:%.0f,%f,%f);
(._;>;);
out body;`, walkHighways, l.radiusMeters, l.center.Lat, l.center.Lng)
}

func (l *OverpassLoader) Load(ctx context.Context) (*Network, error) {
	if l.snapshotPath != "" {
		raw, err := os.ReadFile(l.snapshotPath)
		if err == nil {
			l.logger.Info("OSM", "Loading walking network from snapshot", map[string]interface{}{"path": l.snapshotPath})
			return ParseOverpass(raw)
		}
		if !errors.Is(err, os.ErrNotExist) {
			l.logger.Warn("OSM", "Snapshot unreadable, falling back to Overpass", map[string]interface{}{"error": err.Error()})
		}
	}

	raw, err := l.fetch(ctx)
	if err != nil {
		return nil, err
	}

	network, err := ParseOverpass(raw)
	if err != nil {
		return nil, err
	}

	if l.snapshotPath != "" {
		if err := l.writeSnapshot(raw); err != nil {
			l.logger.Warn("OSM", "Failed to write snapshot", map[string]interface{}{"error": err.Error()})
		}
	}
	return network, nil
}

func (l *OverpassLoader) fetch(ctx context.Context) ([]byte, error) {
	form := url.Values{}
	form.Set("data", l.query())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create overpass request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	l.logger.Info("OSM", "Downloading walking network from Overpass", map[string]interface{}{"endpoint": l.endpoint, "radius": l.radiusMeters})

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read overpass response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass returned status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

func (l *OverpassLoader) writeSnapshot(raw []byte) error {
	if err := os.MkdirAll(filepath.Dir(l.snapshotPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(l.snapshotPath, raw, 0o644)
}

// ParseOverpass turns an Overpass JSON body into a Network. Only nodes that
// belong to at least one way are kept.
func ParseOverpass(raw []byte) (*Network, error) {
	var resp overpassResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode overpass response: %w", err)
	}

	coords := make(map[int64]geo.Point)
	var ways [][]int64
	for _, el := range resp.Elements {
		switch el.Type {
		case "node":
			coords[el.ID] = geo.NewPoint(el.Lat, el.Lon)
		case "way":
			if len(el.Nodes) > 1 {
				ways = append(ways, el.Nodes)
			}
		}
	}

	network := NewNetwork()
	for _, way := range ways {
		for _, id := range way {
			if p, ok := coords[id]; ok {
				network.AddNode(id, p)
			}
		}
	}
	for _, way := range ways {
		for i := 1; i < len(way); i++ {
			network.Connect(way[i-1], way[i])
		}
	}
	network.Seal()

	if network.NodeCount() == 0 {
		return nil, errors.New("overpass response contains no walkable ways")
	}
	return network, nil
}

package osm

import (
	"context"
	"sync"
	"time"

	"astu-route-be/pkg/geo"
)

type Source interface {
	Load(ctx context.Context) (*Network, error)
}

type Stats struct {
	Loaded       bool      `json:"loaded"`
	Nodes        int       `json:"nodes"`
	Edges        int       `json:"edges"`
	Center       geo.Point `json:"center"`
	RadiusMeters float64   `json:"radius_meters"`
	Error        string    `json:"error,omitempty"`
}

// Provider loads the network at most once. The result, including a load
// error, is kept for the life of the process.
type Provider struct {
	source      Source
	center      geo.Point
	radius      float64
	loadTimeout time.Duration

	once    sync.Once
	network *Network
	err     error
}

func NewProvider(source Source, center geo.Point, radiusMeters float64) *Provider {
	return &Provider{
		source:      source,
		center:      center,
		radius:      radiusMeters,
		loadTimeout: 2 * time.Minute,
	}
}

// NewStaticProvider wraps an already built network.
func NewStaticProvider(network *Network, center geo.Point, radiusMeters float64) *Provider {
	p := &Provider{center: center, radius: radiusMeters, network: network}
	p.once.Do(func() {})
	return p
}

func (p *Provider) Network(ctx context.Context) (*Network, error) {
	p.once.Do(func() {
		// The first caller may go away; the load belongs to the process.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.loadTimeout)
		defer cancel()
		p.network, p.err = p.source.Load(loadCtx)
	})
	return p.network, p.err
}

func (p *Provider) Stats(ctx context.Context) Stats {
	stats := Stats{Center: p.center, RadiusMeters: p.radius}
	network, err := p.Network(ctx)
	if err != nil {
		stats.Error = err.Error()
		return stats
	}
	if network == nil {
		return stats
	}
	stats.Loaded = true
	stats.Nodes = network.NodeCount()
	stats.Edges = network.EdgeCount()
	return stats
}

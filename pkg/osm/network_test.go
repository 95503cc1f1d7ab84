package osm

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"astu-route-be/pkg/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOverpass = `{
  "elements": [
    {"type": "node", "id": 1, "lat": 8.5570, "lon": 39.2915},
    {"type": "node", "id": 2, "lat": 8.5575, "lon": 39.2915},
    {"type": "node", "id": 3, "lat": 8.5580, "lon": 39.2915},
    {"type": "node", "id": 4, "lat": 8.5575, "lon": 39.2930},
    {"type": "node", "id": 9, "lat": 8.6000, "lon": 39.3000},
    {"type": "way", "id": 100, "nodes": [1, 2, 3], "tags": {"highway": "footway"}},
    {"type": "way", "id": 101, "nodes": [2, 4], "tags": {"highway": "path"}}
  ]
}`

func TestParseOverpass(t *testing.T) {
	network, err := ParseOverpass([]byte(sampleOverpass))
	require.NoError(t, err)

	// Node 9 belongs to no way.
	assert.Equal(t, 4, network.NodeCount())
	assert.Equal(t, 3, network.EdgeCount())

	_, ok := network.Point(9)
	assert.False(t, ok)
}

func TestParseOverpassRejectsEmpty(t *testing.T) {
	_, err := ParseOverpass([]byte(`{"elements": []}`))
	assert.Error(t, err)

	_, err = ParseOverpass([]byte(`not json`))
	assert.Error(t, err)
}

func TestShortestPath(t *testing.T) {
	network, err := ParseOverpass([]byte(sampleOverpass))
	require.NoError(t, err)

	ids, meters, err := network.ShortestPath(1, 4)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 4}, ids)
	p1, _ := network.Point(1)
	p2, _ := network.Point(2)
	p4, _ := network.Point(4)
	assert.InDelta(t, geo.Haversine(p1, p2)+geo.Haversine(p2, p4), meters, 1e-6)

	ids, meters, err = network.ShortestPath(3, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids)
	assert.Zero(t, meters)
}

func TestShortestPathDisconnected(t *testing.T) {
	network := NewNetwork()
	network.AddNode(1, geo.NewPoint(8.5570, 39.2915))
	network.AddNode(2, geo.NewPoint(8.5580, 39.2915))
	network.Seal()

	_, _, err := network.ShortestPath(1, 2)
	assert.ErrorIs(t, err, ErrNoPath)

	_, _, err = network.ShortestPath(1, 42)
	assert.ErrorIs(t, err, ErrNoPath)
}

func TestNearestAndBeyond(t *testing.T) {
	network, err := ParseOverpass([]byte(sampleOverpass))
	require.NoError(t, err)

	id, ok := network.Nearest(geo.NewPoint(8.55799, 39.29151))
	require.True(t, ok)
	assert.Equal(t, int64(3), id)

	beyond := network.NodesBeyond(geo.NewPoint(8.5570, 39.2915), 100)
	assert.ElementsMatch(t, []int64{3, 4}, beyond)

	_, ok = NewNetwork().Nearest(geo.NewPoint(0, 0))
	assert.False(t, ok)
}

type countingSource struct {
	calls atomic.Int32
	err   error
}

func (s *countingSource) Load(ctx context.Context) (*Network, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return ParseOverpass([]byte(sampleOverpass))
}

func TestProviderLoadsOnce(t *testing.T) {
	source := &countingSource{}
	provider := NewProvider(source, geo.NewPoint(8.5570, 39.2915), 1000)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			network, err := provider.Network(context.Background())
			assert.NoError(t, err)
			assert.NotNil(t, network)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), source.calls.Load())

	stats := provider.Stats(context.Background())
	assert.True(t, stats.Loaded)
	assert.Equal(t, 4, stats.Nodes)
}

func TestProviderKeepsLoadError(t *testing.T) {
	source := &countingSource{err: errors.New("overpass down")}
	provider := NewProvider(source, geo.NewPoint(8.5570, 39.2915), 1000)

	_, err := provider.Network(context.Background())
	assert.Error(t, err)
	_, err = provider.Network(context.Background())
	assert.Error(t, err)

	assert.Equal(t, int32(1), source.calls.Load())
	assert.Equal(t, "overpass down", provider.Stats(context.Background()).Error)
}

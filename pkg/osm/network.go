package osm

import (
	"errors"
	"math"
	"sort"

	"astu-route-be/pkg/geo"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

var ErrNoPath = errors.New("osm: no path between nodes")

// Network is an undirected walking graph weighted by segment length in meters.
// It is built once and only read afterwards.
type Network struct {
	g      *simple.WeightedUndirectedGraph
	points map[int64]geo.Point
	ids    []int64
	edges  int
}

func NewNetwork() *Network {
	return &Network{
		g:      simple.NewWeightedUndirectedGraph(0, math.Inf(1)),
		points: make(map[int64]geo.Point),
	}
}

func (n *Network) AddNode(id int64, p geo.Point) {
	if _, ok := n.points[id]; ok {
		return
	}
	n.points[id] = p
	n.ids = append(n.ids, id)
	n.g.AddNode(simple.Node(id))
}

// Connect links two known nodes. Self loops and unknown ids are ignored.
func (n *Network) Connect(a, b int64) bool {
	if a == b {
		return false
	}
	pa, okA := n.points[a]
	pb, okB := n.points[b]
	if !okA || !okB {
		return false
	}
	if !n.g.HasEdgeBetween(a, b) {
		n.edges++
	}
	n.g.SetWeightedEdge(n.g.NewWeightedEdge(simple.Node(a), simple.Node(b), geo.Haversine(pa, pb)))
	return true
}

// Seal fixes node iteration order. Call after the last AddNode.
func (n *Network) Seal() {
	sort.Slice(n.ids, func(i, j int) bool { return n.ids[i] < n.ids[j] })
}

func (n *Network) NodeCount() int {
	return len(n.ids)
}

func (n *Network) EdgeCount() int {
	return n.edges
}

func (n *Network) Point(id int64) (geo.Point, bool) {
	p, ok := n.points[id]
	return p, ok
}

// Nearest returns the node closest to p.
func (n *Network) Nearest(p geo.Point) (int64, bool) {
	best := int64(0)
	bestDist := math.Inf(1)
	for _, id := range n.ids {
		d := geo.Haversine(p, n.points[id])
		if d < bestDist {
			best, bestDist = id, d
		}
	}
	return best, !math.IsInf(bestDist, 1)
}

// ShortestPath runs Dijkstra over segment lengths and returns the node ids
// along the path together with its length in meters.
func (n *Network) ShortestPath(from, to int64) ([]int64, float64, error) {
	if _, ok := n.points[from]; !ok {
		return nil, 0, ErrNoPath
	}
	if _, ok := n.points[to]; !ok {
		return nil, 0, ErrNoPath
	}
	if from == to {
		return []int64{from}, 0, nil
	}

	shortest := path.DijkstraFrom(simple.Node(from), n.g)
	nodes, weight := shortest.To(to)
	if len(nodes) == 0 || math.IsInf(weight, 1) {
		return nil, 0, ErrNoPath
	}

	ids := make([]int64, len(nodes))
	for i, node := range nodes {
		ids[i] = node.ID()
	}
	return ids, weight, nil
}

// NodesBeyond lists nodes farther than meters from center.
func (n *Network) NodesBeyond(center geo.Point, meters float64) []int64 {
	var out []int64
	for _, id := range n.ids {
		if geo.Haversine(center, n.points[id]) > meters {
			out = append(out, id)
		}
	}
	return out
}

// Points maps a node id path onto coordinates.
func (n *Network) Points(ids []int64) []geo.Point {
	out := make([]geo.Point, 0, len(ids))
	for _, id := range ids {
		if p, ok := n.points[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

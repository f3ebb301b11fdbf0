package accessroute

import (
	"fmt"
)

// Graph is the routable pedestrian graph: node arena plus adjacency lists.
// It is immutable once built and safe for concurrent reads
type Graph struct {
	precision float64
	nodes     []GeoPoint
	keys      map[NodeKey]NodeID
	adjacency [][]Edge
	pairs     int
	welds     int
}

func newGraph(precision float64) *Graph {
	return &Graph{
		precision: precision,
		nodes:     []GeoPoint{},
		keys:      make(map[NodeKey]NodeID),
		adjacency: [][]Edge{},
	}
}

// String returns pretty printed value for Graph
func (graph *Graph) String() string {
	return fmt.Sprintf("Graph | nodes: %d | edges: %d | pairs: %d | welds: %d", graph.NodesNum(), graph.EdgesNum(), graph.pairs, graph.welds)
}

// NodesNum returns number of nodes
func (graph *Graph) NodesNum() int {
	return len(graph.nodes)
}

// EdgesNum returns number of directed edges
func (graph *Graph) EdgesNum() int {
	total := 0
	for i := range graph.adjacency {
		total += len(graph.adjacency[i])
	}
	return total
}

// Node returns position of the node
func (graph *Graph) Node(id NodeID) GeoPoint {
	return graph.nodes[id]
}

// Edges returns outgoing edges of the node. Returned slice must not be modified
func (graph *Graph) Edges(id NodeID) []Edge {
	if int(id) < 0 || int(id) >= len(graph.adjacency) {
		return nil
	}
	return graph.adjacency[id]
}

// NodeByPoint looks up node by rounded coordinate
func (graph *Graph) NodeByPoint(pt GeoPoint) (NodeID, bool) {
	id, ok := graph.keys[keyFromPoint(pt, graph.precision)]
	return id, ok
}

// TotalWeight returns sum of weights of all directed edges
func (graph *Graph) TotalWeight() float64 {
	total := 0.0
	for i := range graph.adjacency {
		for j := range graph.adjacency[i] {
			total += graph.adjacency[i][j].Weight
		}
	}
	return total
}

// key returns rounded coordinate of the point using graph precision
func (graph *Graph) key(pt GeoPoint) NodeKey {
	return keyFromPoint(pt, graph.precision)
}

// nodeFor returns node for given point and creates it if needed
func (graph *Graph) nodeFor(pt GeoPoint) NodeID {
	key := graph.key(pt)
	if id, ok := graph.keys[key]; ok {
		return id
	}
	id := NodeID(len(graph.nodes))
	graph.nodes = append(graph.nodes, pt)
	graph.adjacency = append(graph.adjacency, nil)
	graph.keys[key] = id
	return id
}

// addEdgePair adds forward edge along the geometry and its reverse twin
func (graph *Graph) addEdgePair(from, to NodeID, geom []GeoPoint, length, weight float64, info *SegmentInfo, kind EdgeKind) {
	chunkID := graph.pairs
	graph.pairs++
	graph.adjacency[from] = append(graph.adjacency[from], Edge{
		ChunkID:      chunkID,
		From:         from,
		To:           to,
		Weight:       weight,
		LengthMeters: length,
		Segment:      info,
		Geom:         geom,
		Kind:         kind,
		Direction:    DIRECTION_FORWARD,
	})
	graph.adjacency[to] = append(graph.adjacency[to], Edge{
		ChunkID:      chunkID,
		From:         to,
		To:           from,
		Weight:       weight,
		LengthMeters: length,
		Segment:      info,
		Geom:         reverseLine(geom),
		Kind:         kind,
		Direction:    DIRECTION_BACKWARD,
	})
}

// adjacent checks if there is a direct edge between nodes
func (graph *Graph) adjacent(from, to NodeID) bool {
	for i := range graph.adjacency[from] {
		if graph.adjacency[from][i].To == to {
			return true
		}
	}
	return false
}

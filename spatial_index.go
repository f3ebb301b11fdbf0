package accessroute

import (
	"fmt"
	"math"
	"sort"
)

const (
	metersPerDegree = earthRadiusMeters * pi180
	// minCosLat keeps cell width positive near poles
	minCosLat = 0.01
)

type cellKey struct {
	Lat int64
	Lon int64
}

type indexedNode struct {
	id  NodeID
	pos GeoPoint
}

// edgeRef points to the edge in the adjacency list of its source node
type edgeRef struct {
	from  NodeID
	index int
}

// NodeCandidate is a node found by a spatial query
type NodeCandidate struct {
	ID       NodeID
	Pos      GeoPoint
	Distance float64
}

// SpatialIndex is a uniform grid of node and edge references keyed by floor(lat*gridSize), floor(lon*gridSize)
type SpatialIndex struct {
	gridSize  float64
	graph     *Graph
	nodeCells map[cellKey][]indexedNode
	edgeCells map[cellKey][]edgeRef
	nodesNum  int
	edgesNum  int
}

func newSpatialIndex(graph *Graph, gridSize float64) *SpatialIndex {
	return &SpatialIndex{
		gridSize:  gridSize,
		graph:     graph,
		nodeCells: make(map[cellKey][]indexedNode),
		edgeCells: make(map[cellKey][]edgeRef),
	}
}

// String returns pretty printed value for SpatialIndex
func (idx *SpatialIndex) String() string {
	return fmt.Sprintf("SpatialIndex | grid_size: %.0f | node cells: %d | edge cells: %d | nodes: %d | edges: %d",
		idx.gridSize, len(idx.nodeCells), len(idx.edgeCells), idx.nodesNum, idx.edgesNum)
}

func (idx *SpatialIndex) cellFor(pt GeoPoint) cellKey {
	return cellKey{
		Lat: int64(math.Floor(pt.Lat * idx.gridSize)),
		Lon: int64(math.Floor(pt.Lon * idx.gridSize)),
	}
}

// insertNodes puts every graph node into the grid
func (idx *SpatialIndex) insertNodes() {
	for i, pt := range idx.graph.nodes {
		cell := idx.cellFor(pt)
		idx.nodeCells[cell] = append(idx.nodeCells[cell], indexedNode{id: NodeID(i), pos: pt})
		idx.nodesNum++
	}
}

// insertEdges puts forward segment edges into every cell touched by bounding boxes of their straight pieces
func (idx *SpatialIndex) insertEdges() {
	for from := range idx.graph.adjacency {
		for i := range idx.graph.adjacency[from] {
			edge := &idx.graph.adjacency[from][i]
			if edge.Kind != EDGE_SEGMENT || edge.Direction != DIRECTION_FORWARD {
				continue
			}
			ref := edgeRef{from: NodeID(from), index: i}
			seen := make(map[cellKey]struct{})
			for j := 1; j < len(edge.Geom); j++ {
				a := idx.cellFor(edge.Geom[j-1])
				b := idx.cellFor(edge.Geom[j])
				minLat, maxLat := minMaxInt64(a.Lat, b.Lat)
				minLon, maxLon := minMaxInt64(a.Lon, b.Lon)
				for lat := minLat; lat <= maxLat; lat++ {
					for lon := minLon; lon <= maxLon; lon++ {
						cell := cellKey{Lat: lat, Lon: lon}
						if _, ok := seen[cell]; ok {
							continue
						}
						seen[cell] = struct{}{}
						idx.edgeCells[cell] = append(idx.edgeCells[cell], ref)
					}
				}
			}
			idx.edgesNum++
		}
	}
}

// edge resolves reference into the edge
func (idx *SpatialIndex) edge(ref edgeRef) *Edge {
	return &idx.graph.adjacency[ref.from][ref.index]
}

// cellMinMeters returns the shortest side of the cell at given latitude
func (idx *SpatialIndex) cellMinMeters(lat float64) float64 {
	cosLat := math.Max(minCosLat, math.Cos(degreesToRadians(lat)))
	return metersPerDegree * cosLat / idx.gridSize
}

// ringsFor returns number of Chebyshev rings needed to cover given radius
func (idx *SpatialIndex) ringsFor(radiusMeters, lat float64) int {
	return int(math.Ceil(radiusMeters/idx.cellMinMeters(lat))) + 1
}

// ringCells returns cells on Chebyshev ring of radius r around center
func ringCells(center cellKey, r int) []cellKey {
	if r == 0 {
		return []cellKey{center}
	}
	r64 := int64(r)
	cells := make([]cellKey, 0, 8*r)
	for dLon := -r64; dLon <= r64; dLon++ {
		cells = append(cells, cellKey{Lat: center.Lat - r64, Lon: center.Lon + dLon})
		cells = append(cells, cellKey{Lat: center.Lat + r64, Lon: center.Lon + dLon})
	}
	for dLat := -r64 + 1; dLat <= r64-1; dLat++ {
		cells = append(cells, cellKey{Lat: center.Lat + dLat, Lon: center.Lon - r64})
		cells = append(cells, cellKey{Lat: center.Lat + dLat, Lon: center.Lon + r64})
	}
	return cells
}

// KNearestNodes returns up to k nodes closest to the point within given radius (meters), nearest first.
// Rings are expanded until k candidates are found and no unvisited cell could hold a closer node
func (idx *SpatialIndex) KNearestNodes(pt GeoPoint, k int, radiusMeters float64) []NodeCandidate {
	if k <= 0 || idx.nodesNum == 0 {
		return nil
	}
	center := idx.cellFor(pt)
	cellMin := idx.cellMinMeters(pt.Lat)
	maxRing := idx.ringsFor(radiusMeters, pt.Lat)
	found := []NodeCandidate{}
	for r := 0; r <= maxRing; r++ {
		for _, cell := range ringCells(center, r) {
			for _, node := range idx.nodeCells[cell] {
				d := greatCircleDistance(pt, node.pos)
				if d > radiusMeters {
					continue
				}
				found = append(found, NodeCandidate{ID: node.id, Pos: node.pos, Distance: d})
			}
		}
		if len(found) >= k {
			sortNodeCandidates(found)
			if found[k-1].Distance <= float64(r)*cellMin {
				break
			}
		}
	}
	sortNodeCandidates(found)
	if len(found) > k {
		found = found[:k]
	}
	return found
}

// NodesWithin returns every node within given radius (meters), nearest first
func (idx *SpatialIndex) NodesWithin(pt GeoPoint, radiusMeters float64) []NodeCandidate {
	return idx.KNearestNodes(pt, math.MaxInt32, radiusMeters)
}

// edgesNear returns unique forward segment edges having a piece in cells covering given radius (meters)
func (idx *SpatialIndex) edgesNear(pt GeoPoint, radiusMeters float64) []edgeRef {
	center := idx.cellFor(pt)
	maxRing := idx.ringsFor(radiusMeters, pt.Lat)
	seen := make(map[edgeRef]struct{})
	refs := []edgeRef{}
	for r := 0; r <= maxRing; r++ {
		for _, cell := range ringCells(center, r) {
			for _, ref := range idx.edgeCells[cell] {
				if _, ok := seen[ref]; ok {
					continue
				}
				seen[ref] = struct{}{}
				refs = append(refs, ref)
			}
		}
	}
	return refs
}

func sortNodeCandidates(candidates []NodeCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Distance == candidates[j].Distance {
			return candidates[i].ID < candidates[j].ID
		}
		return candidates[i].Distance < candidates[j].Distance
	})
}

func minMaxInt64(a, b int64) (int64, int64) {
	if a < b {
		return a, b
	}
	return b, a
}

package accessroute

import (
	"fmt"
	"time"
)

// BuildStats is the summary of a graph build
type BuildStats struct {
	Segments        int
	SkippedSegments int
	Barriers        int
	Chunks          int
	SelfLoopsSplit  int
	Welds           int
}

// preparedSegment is a segment with cleaned geometry and its profile independent cost factor
type preparedSegment struct {
	info         *SegmentInfo
	geom         []GeoPoint
	keys         []NodeKey
	weightFactor float64
}

// BuildGraph converts segments into routable graph and its spatial index.
//
// Junctions are coordinates met more than once across all segments. Every segment is cut into chunks at
// junctions and each chunk becomes a pair of directed edges. Barriers stay in the graph and are filtered by the
// search, so snapping still sees them. Nodes closer than weld tolerance which are not
// adjacent get a synthetic low-penalty edge pair.
func BuildGraph(segments []AccessibilitySegment, cfg BuildConfig) (*Graph, *SpatialIndex, BuildStats) {
	cfg = cfg.normalized()
	stats := BuildStats{
		Segments: len(segments),
	}
	graph := newGraph(cfg.KeyPrecision)

	if cfg.Verbose {
		fmt.Printf("Preparing segments...")
	}
	st := time.Now()
	prepared := make([]preparedSegment, 0, len(segments))
	for i := range segments {
		seg := &segments[i]
		geom, keys, ok := cleanGeometry(seg.Geom, cfg.KeyPrecision)
		if !ok {
			if cfg.Verbose {
				fmt.Printf("\n\t[WARNING]: Segment '%s' has less than 2 distinct valid points. Skipping it\n", seg.ID)
			}
			stats.SkippedSegments++
			continue
		}
		if seg.isBarrier() {
			stats.Barriers++
		}
		penalty := cfg.Costs.segmentPenalty(seg)
		prepared = append(prepared, preparedSegment{
			info:         segmentInfoFrom(seg),
			geom:         geom,
			keys:         keys,
			weightFactor: 1 + penalty,
		})
	}
	if cfg.Verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}

	if cfg.Verbose {
		fmt.Printf("Splitting segments at junctions...")
	}
	st = time.Now()
	occurrences := make(map[NodeKey]int)
	for i := range prepared {
		for _, key := range prepared[i].keys {
			occurrences[key]++
		}
	}
	for i := range prepared {
		seg := &prepared[i]
		last := len(seg.geom) - 1
		chunkStart := 0
		for j := 1; j <= last; j++ {
			if occurrences[seg.keys[j]] > 1 || j == last {
				addChunk(graph, seg, copyLine(seg.geom[chunkStart:j+1]), &stats)
				chunkStart = j
			}
		}
	}
	if cfg.Verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
	}

	index := newSpatialIndex(graph, cfg.GridSize)
	index.insertNodes()

	if cfg.WeldTolerance > 0 {
		if cfg.Verbose {
			fmt.Printf("Welding near-coincident nodes...")
		}
		st = time.Now()
		stats.Welds = weldNodes(graph, index, cfg)
		if cfg.Verbose {
			fmt.Printf("Done in %v\n", time.Since(st))
		}
	}
	index.insertEdges()

	if cfg.Verbose {
		fmt.Printf("Graph is ready:\n\tSegments: %d\n\tSkipped segments: %d\n\tBarriers: %d\n\tNodes: %d\n\tEdges: %d\n\tChunks: %d\n\tSelf-loops split: %d\n\tWelds: %d\n",
			stats.Segments, stats.SkippedSegments, stats.Barriers, graph.NodesNum(), graph.EdgesNum(), stats.Chunks, stats.SelfLoopsSplit, stats.Welds)
	}
	return graph, index, stats
}

// cleanGeometry drops consecutive points sharing the same key. Returns false when any point is not a valid
// coordinate or less than two distinct points remain
func cleanGeometry(geom []GeoPoint, precision float64) ([]GeoPoint, []NodeKey, bool) {
	cleaned := make([]GeoPoint, 0, len(geom))
	keys := make([]NodeKey, 0, len(geom))
	for _, pt := range geom {
		if pt.Validate() != nil {
			return nil, nil, false
		}
		key := keyFromPoint(pt, precision)
		if len(keys) > 0 && keys[len(keys)-1] == key {
			continue
		}
		cleaned = append(cleaned, pt)
		keys = append(keys, key)
	}
	return cleaned, keys, len(cleaned) >= 2
}

// addChunk adds edge pair for the chunk. Closed chunks are split at the middle vertex
func addChunk(graph *Graph, seg *preparedSegment, chunk []GeoPoint, stats *BuildStats) {
	if graph.key(chunk[0]) == graph.key(chunk[len(chunk)-1]) {
		middle := findMiddleVertex(chunk)
		if middle == -1 {
			return
		}
		stats.SelfLoopsSplit++
		addChunk(graph, seg, copyLine(chunk[:middle+1]), stats)
		addChunk(graph, seg, copyLine(chunk[middle:]), stats)
		return
	}
	from := graph.nodeFor(chunk[0])
	to := graph.nodeFor(chunk[len(chunk)-1])
	length := getSphericalLength(chunk)
	graph.addEdgePair(from, to, chunk, length, length*seg.weightFactor, seg.info, EDGE_SEGMENT)
	stats.Chunks++
}

// weldNodes connects near-coincident nodes which have no direct edge between them
func weldNodes(graph *Graph, index *SpatialIndex, cfg BuildConfig) int {
	weldInfo := &SegmentInfo{
		Score:      DefaultScore,
		Accessible: true,
		Confidence: CONFIDENCE_MEDIUM,
		Issues:     []string{},
	}
	welds := 0
	for i := range graph.nodes {
		u := NodeID(i)
		for _, candidate := range index.NodesWithin(graph.nodes[i], cfg.WeldTolerance) {
			if candidate.ID <= u || graph.adjacent(u, candidate.ID) {
				continue
			}
			geom := []GeoPoint{graph.nodes[i], candidate.Pos}
			graph.addEdgePair(u, candidate.ID, geom, candidate.Distance, candidate.Distance*(1+cfg.Costs.WeldPenalty), weldInfo, EDGE_WELD)
			graph.welds++
			welds++
		}
	}
	return welds
}

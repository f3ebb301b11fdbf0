package accessroute

import (
	"fmt"
	"time"
)

// Network is the built routing infrastructure for a single segment snapshot: graph, its spatial index and
// connected components. It is never modified after build and serves every routing profile
type Network struct {
	cfg        BuildConfig
	graph      *Graph
	index      *SpatialIndex
	components *Components
	stats      BuildStats
	buildTime  time.Duration
}

// NetworkStats is the diagnostic summary of the network
type NetworkStats struct {
	BuildStats
	Nodes            int
	Edges            int
	Components       int
	LargestComponent int
	DeadEnds         int
	BuildTime        time.Duration
}

// String returns pretty printed value for NetworkStats
func (stats NetworkStats) String() string {
	return fmt.Sprintf(`
Network statistics:
	segments: %d
	skipped segments: %d
	barriers: %d
	nodes: %d
	edges: %d
	chunks: %d
	self-loops split: %d
	welds: %d
	components: %d
	largest component: %d
	dead ends: %d
	build time: %v
	`,
		stats.Segments,
		stats.SkippedSegments,
		stats.Barriers,
		stats.Nodes,
		stats.Edges,
		stats.Chunks,
		stats.SelfLoopsSplit,
		stats.Welds,
		stats.Components,
		stats.LargestComponent,
		stats.DeadEnds,
		stats.BuildTime,
	)
}

// BuildNetwork builds graph, spatial index and connected components for given segments.
// Malformed segments are skipped, so an empty network is a valid result
func BuildNetwork(segments []AccessibilitySegment, cfg BuildConfig) *Network {
	st := time.Now()
	cfg = cfg.normalized()
	if cfg.Verbose {
		fmt.Printf("Building network of %d segments\n", len(segments))
	}
	graph, index, stats := BuildGraph(segments, cfg)
	if cfg.Verbose {
		fmt.Printf("Finding connected components...")
	}
	stComponents := time.Now()
	components := findComponents(graph)
	if cfg.Verbose {
		fmt.Printf("Done in %v\n", time.Since(stComponents))
		fmt.Printf("Network has been built in %v\n", time.Since(st))
	}
	return &Network{
		cfg:        cfg,
		graph:      graph,
		index:      index,
		components: components,
		stats:      stats,
		buildTime:  time.Since(st),
	}
}

// Graph returns underlying graph
func (net *Network) Graph() *Graph {
	return net.graph
}

// Costs returns cost model the network has been built with
func (net *Network) Costs() CostModel {
	return net.cfg.Costs
}

// weightFunc returns edge costs under the profile
func (net *Network) weightFunc(profile RouteOptions) weightFunc {
	costs := net.cfg.Costs
	return func(edge *Edge) (float64, bool) {
		return costs.edgeWeight(edge, profile)
	}
}

// Components returns connected components of the graph
func (net *Network) Components() *Components {
	return net.components
}

// Stats returns diagnostic summary of the network
func (net *Network) Stats() NetworkStats {
	deadEnds := 0
	for i := 0; i < net.graph.NodesNum(); i++ {
		neighbours := make(map[NodeID]struct{})
		for _, edge := range net.graph.Edges(NodeID(i)) {
			neighbours[edge.To] = struct{}{}
		}
		if len(neighbours) == 1 {
			deadEnds++
		}
	}
	return NetworkStats{
		BuildStats:       net.stats,
		Nodes:            net.graph.NodesNum(),
		Edges:            net.graph.EdgesNum(),
		Components:       net.components.Count(),
		LargestComponent: len(net.components.LargestNodes()),
		DeadEnds:         deadEnds,
		BuildTime:        net.buildTime,
	}
}

package accessroute

import (
	"fmt"
)

// Components is the connected components labeling of the graph
type Components struct {
	labels  []int
	sizes   []int
	largest int
	members []NodeID
}

// String returns pretty printed value for Components
func (comps *Components) String() string {
	return fmt.Sprintf("Components | count: %d | largest size: %d", comps.Count(), len(comps.members))
}

// Count returns number of components
func (comps *Components) Count() int {
	return len(comps.sizes)
}

// Label returns component label of the node
func (comps *Components) Label(id NodeID) int {
	return comps.labels[id]
}

// LargestNodes returns nodes of the largest component. Returned slice must not be modified
func (comps *Components) LargestNodes() []NodeID {
	return comps.members
}

// findComponents labels nodes with breadth-first search. Edges are symmetric so it gives connected components.
// Ties on the largest size are resolved in favor of the component found first
func findComponents(graph *Graph) *Components {
	comps := &Components{
		labels:  make([]int, graph.NodesNum()),
		sizes:   []int{},
		largest: -1,
	}
	for i := range comps.labels {
		comps.labels[i] = -1
	}
	queue := make([]NodeID, 0)
	for start := range comps.labels {
		if comps.labels[start] != -1 {
			continue
		}
		label := len(comps.sizes)
		size := 0
		comps.labels[start] = label
		queue = append(queue[:0], NodeID(start))
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			size++
			for _, edge := range graph.Edges(current) {
				if comps.labels[edge.To] == -1 {
					comps.labels[edge.To] = label
					queue = append(queue, edge.To)
				}
			}
		}
		comps.sizes = append(comps.sizes, size)
		if comps.largest == -1 || size > comps.sizes[comps.largest] {
			comps.largest = label
		}
	}
	if comps.largest != -1 {
		comps.members = make([]NodeID, 0, comps.sizes[comps.largest])
		for i, label := range comps.labels {
			if label == comps.largest {
				comps.members = append(comps.members, NodeID(i))
			}
		}
	}
	return comps
}

// nearestInLargest scans the largest component for the node closest to the point
func (comps *Components) nearestInLargest(graph *Graph, pt GeoPoint) (NodeCandidate, bool) {
	best := NodeCandidate{ID: -1}
	for _, id := range comps.members {
		d := greatCircleDistance(pt, graph.Node(id))
		if best.ID == -1 || d < best.Distance {
			best = NodeCandidate{ID: id, Pos: graph.Node(id), Distance: d}
		}
	}
	return best, best.ID != -1
}

package accessroute

// graphView is a request-scoped view of the shared graph. Edge lists of touched nodes are cloned into the overlay
// before being extended, untouched lists are read from the base graph. The base graph is never modified
type graphView struct {
	base    *Graph
	overlay map[NodeID][]Edge
	virtual []GeoPoint
}

func newGraphView(base *Graph) *graphView {
	return &graphView{
		base:    base,
		overlay: make(map[NodeID][]Edge),
	}
}

// nodesNum returns number of nodes including virtual ones
func (view *graphView) nodesNum() int {
	return view.base.NodesNum() + len(view.virtual)
}

func (view *graphView) isVirtual(id NodeID) bool {
	return int(id) >= view.base.NodesNum()
}

// node returns position of either base or virtual node
func (view *graphView) node(id NodeID) GeoPoint {
	if view.isVirtual(id) {
		return view.virtual[int(id)-view.base.NodesNum()]
	}
	return view.base.Node(id)
}

// edges returns outgoing edges: overlay list first, base list otherwise
func (view *graphView) edges(id NodeID) []Edge {
	if edges, ok := view.overlay[id]; ok {
		return edges
	}
	if view.isVirtual(id) {
		return nil
	}
	return view.base.Edges(id)
}

// addVirtualNode registers request-scoped node
func (view *graphView) addVirtualNode(pt GeoPoint) NodeID {
	id := NodeID(view.base.NodesNum() + len(view.virtual))
	view.virtual = append(view.virtual, pt)
	return id
}

// addEdge appends edge to the list of its source node, cloning the base list on first touch
func (view *graphView) addEdge(edge Edge) {
	edges, ok := view.overlay[edge.From]
	if !ok {
		base := view.base.Edges(edge.From)
		if view.isVirtual(edge.From) {
			base = nil
		}
		edges = make([]Edge, len(base), len(base)+1)
		copy(edges, base)
	}
	view.overlay[edge.From] = append(edges, edge)
}

package accessroute

import (
	"sort"
)

// SnapCandidate is a projection of the query point onto a forward segment edge
type SnapCandidate struct {
	// Point is the projected point
	Point GeoPoint
	// OffsetMeters is the distance between the query point and its projection
	OffsetMeters float64
	// AlongMeters is the distance from the edge source to the projection along the edge geometry
	AlongMeters float64
	Edge        *Edge
	// piece is the index of the edge geometry vertex ending the straight piece holding the projection
	piece int
}

// snapPoint is the anchor of a query point in a request-scoped graph view
type snapPoint struct {
	requested  GeoPoint
	node       NodeID
	point      GeoPoint
	offset     float64
	fallback   bool
	virtual    bool
	candidates []SnapCandidate
}

// SnapCandidates returns projections of the point onto edges within acceptance radius, shortest offset first
func (net *Network) SnapCandidates(pt GeoPoint) []SnapCandidate {
	candidates := []SnapCandidate{}
	for _, ref := range net.index.edgesNear(pt, net.cfg.AcceptanceRadius) {
		edge := net.index.edge(ref)
		candidate, ok := projectOnEdge(pt, edge)
		if !ok || candidate.OffsetMeters > net.cfg.AcceptanceRadius {
			continue
		}
		candidates = append(candidates, candidate)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].OffsetMeters == candidates[j].OffsetMeters {
			return candidates[i].Edge.ChunkID < candidates[j].Edge.ChunkID
		}
		return candidates[i].OffsetMeters < candidates[j].OffsetMeters
	})
	if len(candidates) > net.cfg.MaxCandidates {
		candidates = candidates[:net.cfg.MaxCandidates]
	}
	return candidates
}

// projectOnEdge finds the closest projection of the point onto straight pieces of the edge
func projectOnEdge(pt GeoPoint, edge *Edge) (SnapCandidate, bool) {
	best := SnapCandidate{OffsetMeters: -1, Edge: edge}
	traversed := 0.0
	for j := 1; j < len(edge.Geom); j++ {
		projected, _ := projectPointOnSegment(pt, edge.Geom[j-1], edge.Geom[j])
		offset := greatCircleDistance(pt, projected)
		if best.OffsetMeters < 0 || offset < best.OffsetMeters {
			best.Point = projected
			best.OffsetMeters = offset
			best.AlongMeters = traversed + greatCircleDistance(edge.Geom[j-1], projected)
			best.piece = j
		}
		traversed += greatCircleDistance(edge.Geom[j-1], edge.Geom[j])
	}
	if best.OffsetMeters < 0 {
		return best, false
	}
	if best.AlongMeters > edge.LengthMeters {
		best.AlongMeters = edge.LengthMeters
	}
	return best, true
}

// snap anchors the point in the view. Start points get outgoing connectors, end points get incoming ones.
// Points far from every edge fall back to the nearest node of the largest component.
// Returns false when graph has no nodes at all
func (net *Network) snap(view *graphView, pt GeoPoint, outgoing bool) (*snapPoint, bool) {
	candidates := net.SnapCandidates(pt)
	if len(candidates) == 0 {
		nearest, ok := net.components.nearestInLargest(net.graph, pt)
		if !ok {
			return nil, false
		}
		return &snapPoint{
			requested: pt,
			node:      nearest.ID,
			point:     nearest.Pos,
			offset:    nearest.Distance,
			fallback:  true,
		}, true
	}
	best := candidates[0]
	if id, ok := net.graph.NodeByPoint(best.Point); ok {
		return &snapPoint{
			requested: pt,
			node:      id,
			point:     net.graph.Node(id),
			offset:    best.OffsetMeters,
		}, true
	}
	sp := &snapPoint{
		requested:  pt,
		node:       view.addVirtualNode(best.Point),
		point:      best.Point,
		offset:     best.OffsetMeters,
		virtual:    true,
		candidates: candidates,
	}
	for i := range candidates {
		attachConnectors(view, sp.node, sp.point, &candidates[i], outgoing)
	}
	return sp, true
}

// attachConnectors links virtual node with both endpoints of the candidate edge.
// Connectors reuse per-meter cost of the edge. Candidates projected away from the virtual node get
// the hop between projections prepended to connector geometry and length
func attachConnectors(view *graphView, virtual NodeID, anchor GeoPoint, candidate *SnapCandidate, outgoing bool) {
	edge := candidate.Edge
	rate := edge.costPerMeter()
	hop := greatCircleDistance(anchor, candidate.Point)
	before := appendDistinct(copyLine(edge.Geom[:candidate.piece]), candidate.Point)
	after := appendDistinct([]GeoPoint{candidate.Point}, edge.Geom[candidate.piece:]...)
	beforeLength := candidate.AlongMeters + hop
	afterLength := edge.LengthMeters - candidate.AlongMeters
	if afterLength < 0 {
		afterLength = 0
	}
	afterLength += hop
	connector := func(from, to NodeID, geom []GeoPoint, length float64, direction EdgeDirection) Edge {
		return Edge{
			ChunkID:      edge.ChunkID,
			From:         from,
			To:           to,
			Weight:       length * rate,
			LengthMeters: length,
			Segment:      edge.Segment,
			Geom:         geom,
			Kind:         EDGE_CONNECTOR,
			Direction:    direction,
		}
	}
	if outgoing {
		view.addEdge(connector(virtual, edge.From, appendDistinct([]GeoPoint{anchor}, reverseLine(before)...), beforeLength, DIRECTION_BACKWARD))
		view.addEdge(connector(virtual, edge.To, appendDistinct([]GeoPoint{anchor}, after...), afterLength, DIRECTION_FORWARD))
		return
	}
	view.addEdge(connector(edge.From, virtual, appendDistinct(before, anchor), beforeLength, DIRECTION_FORWARD))
	view.addEdge(connector(edge.To, virtual, appendDistinct(reverseLine(after), anchor), afterLength, DIRECTION_BACKWARD))
}

// attachDirect links start and end virtual nodes projected onto the same edge
func attachDirect(view *graphView, start, end *snapPoint) {
	if !start.virtual || !end.virtual {
		return
	}
	for i := range start.candidates {
		cs := &start.candidates[i]
		for j := range end.candidates {
			ce := &end.candidates[j]
			if cs.Edge.ChunkID != ce.Edge.ChunkID {
				continue
			}
			length := ce.AlongMeters - cs.AlongMeters
			direction := DIRECTION_FORWARD
			var geom []GeoPoint
			if length >= 0 {
				geom = subLine(cs.Edge.Geom, cs, ce)
			} else {
				length = -length
				direction = DIRECTION_BACKWARD
				geom = reverseLine(subLine(cs.Edge.Geom, ce, cs))
			}
			length += greatCircleDistance(start.point, cs.Point) + greatCircleDistance(ce.Point, end.point)
			geom = appendDistinct(appendDistinct([]GeoPoint{start.point}, geom...), end.point)
			view.addEdge(Edge{
				ChunkID:      cs.Edge.ChunkID,
				From:         start.node,
				To:           end.node,
				Weight:       length * cs.Edge.costPerMeter(),
				LengthMeters: length,
				Segment:      cs.Edge.Segment,
				Geom:         geom,
				Kind:         EDGE_CONNECTOR,
				Direction:    direction,
			})
		}
	}
}

// subLine returns piece of the line between two projections, the first one must not be further along the line
func subLine(line []GeoPoint, from, to *SnapCandidate) []GeoPoint {
	out := []GeoPoint{from.Point}
	if from.piece < to.piece {
		out = appendDistinct(out, line[from.piece:to.piece]...)
	}
	return appendDistinct(out, to.Point)
}

// appendDistinct appends points skipping ones equal to the current last point
func appendDistinct(line []GeoPoint, pts ...GeoPoint) []GeoPoint {
	for _, pt := range pts {
		if len(line) > 0 && line[len(line)-1] == pt {
			continue
		}
		line = append(line, pt)
	}
	return line
}

package accessroute

// EdgeKind is the origin of the edge
type EdgeKind uint16

const (
	EDGE_SEGMENT = EdgeKind(iota + 1)
	EDGE_WELD
	EDGE_CONNECTOR
)

func (iotaIdx EdgeKind) String() string {
	if iotaIdx < EDGE_SEGMENT || iotaIdx > EDGE_CONNECTOR {
		return "undefined"
	}
	return [...]string{"segment", "weld", "connector"}[iotaIdx-1]
}

// MarshalText encodes edge kind as its name
func (iotaIdx EdgeKind) MarshalText() ([]byte, error) {
	return []byte(iotaIdx.String()), nil
}

// EdgeDirection tells whether edge follows the source segment or goes against it
type EdgeDirection uint16

const (
	DIRECTION_FORWARD = EdgeDirection(iota + 1)
	DIRECTION_BACKWARD
)

func (iotaIdx EdgeDirection) String() string {
	if iotaIdx < DIRECTION_FORWARD || iotaIdx > DIRECTION_BACKWARD {
		return "undefined"
	}
	return [...]string{"forward", "reverse"}[iotaIdx-1]
}

// MarshalText encodes direction as its name
func (iotaIdx EdgeDirection) MarshalText() ([]byte, error) {
	return []byte(iotaIdx.String()), nil
}

// Edge is the directed edge of the graph.
// Both directions of the same physical chunk share ChunkID, Segment, length and weight.
// Weight is length * (1 + penalty); profile category multiplier is applied by the search
type Edge struct {
	ChunkID      int
	From         NodeID
	To           NodeID
	Weight       float64
	LengthMeters float64
	Segment      *SegmentInfo
	Geom         []GeoPoint
	Kind         EdgeKind
	Direction    EdgeDirection
}

// costPerMeter returns weight of one meter of the edge
func (edge *Edge) costPerMeter() float64 {
	if edge.LengthMeters <= 0 {
		return 1.0
	}
	return edge.Weight / edge.LengthMeters
}

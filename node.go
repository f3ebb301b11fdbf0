package accessroute

import (
	"fmt"
	"math"
)

// NodeID is the index of the node in the graph arena. Virtual nodes get identifiers past the last arena node
type NodeID int

// NodeKey is the rounded coordinate of the node. Points rounding to the same key are treated as one node
type NodeKey struct {
	Lat int64
	Lon int64
}

func (key NodeKey) String() string {
	return fmt.Sprintf("%d;%d", key.Lat, key.Lon)
}

// keyFromPoint rounds point with given precision (degrees)
func keyFromPoint(pt GeoPoint, precision float64) NodeKey {
	return NodeKey{
		Lat: int64(math.Round(pt.Lat / precision)),
		Lon: int64(math.Round(pt.Lon / precision)),
	}
}

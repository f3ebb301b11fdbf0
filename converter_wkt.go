package accessroute

import (
	"github.com/paulmach/orb/encoding/wkt"
)

// PrepareWKTLinestring returns WKT representation of LineString
func PrepareWKTLinestring(pts []GeoPoint) string {
	return wkt.MarshalString(lineToOrb(pts))
}

// PrepareWKTPoint returns WKT representation of Point
func PrepareWKTPoint(pt GeoPoint) string {
	return wkt.MarshalString(pointToOrb(pt))
}

// WKT returns route polyline as WKT. Empty string for failed routes
func (res *Result) WKT() string {
	if !res.Success {
		return ""
	}
	if len(res.Polyline) == 1 {
		return PrepareWKTPoint(res.Polyline[0])
	}
	return PrepareWKTLinestring(res.Polyline)
}

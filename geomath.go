package accessroute

import (
	"encoding/json"
	"fmt"
	"math"
)

const (
	earthRadiusMeters = 6371000.0
	pi180             = math.Pi / 180.0
	pi180Rev          = 180.0 / math.Pi
)

// GeoPoint representation of point on Earth
type GeoPoint struct {
	Lat float64
	Lon float64
}

// String returns pretty printed value for for GeoPoint
func (gp GeoPoint) String() string {
	return fmt.Sprintf("Lon: %f | Lat: %f", gp.Lon, gp.Lat)
}

// MarshalJSON encodes point as [lat, lon] pair
func (gp GeoPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{gp.Lat, gp.Lon})
}

// UnmarshalJSON decodes point from [lat, lon] pair
func (gp *GeoPoint) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) < 2 {
		return fmt.Errorf("Point should have 2 components, got %d", len(pair))
	}
	gp.Lat, gp.Lon = pair[0], pair[1]
	return nil
}

// Validate checks that point is a finite geographic coordinate
func (gp GeoPoint) Validate() error {
	if math.IsNaN(gp.Lat) || math.IsNaN(gp.Lon) || math.IsInf(gp.Lat, 0) || math.IsInf(gp.Lon, 0) {
		return ErrInvalidCoordinate
	}
	if gp.Lat < -90 || gp.Lat > 90 || gp.Lon < -180 || gp.Lon > 180 {
		return ErrInvalidCoordinate
	}
	return nil
}

// degreesToRadians deg = r * pi / 180
func degreesToRadians(d float64) float64 {
	return d * pi180
}

// radiansTodegrees r = deg  * 180 / pi
func radiansTodegrees(d float64) float64 {
	return d * pi180Rev
}

// greatCircleDistance returns distance between two geo-points (meters)
func greatCircleDistance(p, q GeoPoint) float64 {
	lat1 := degreesToRadians(p.Lat)
	lat2 := degreesToRadians(q.Lat)
	sinLat := math.Sin(degreesToRadians(q.Lat-p.Lat) / 2)
	sinLon := math.Sin(degreesToRadians(q.Lon-p.Lon) / 2)
	a := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return c * earthRadiusMeters
}

// getSphericalLength returns length for given line (meters)
func getSphericalLength(line []GeoPoint) float64 {
	totalLength := 0.0
	if len(line) < 2 {
		return totalLength
	}
	for i := 1; i < len(line); i++ {
		totalLength += greatCircleDistance(line[i-1], line[i])
	}
	return totalLength
}

// distanceSquared returns squared planar distance between two points (degrees, Lat == Y, Lon == X)
func distanceSquared(p, q GeoPoint) float64 {
	dy := p.Lat - q.Lat
	dx := p.Lon - q.Lon
	return dx*dx + dy*dy
}

// projectPointOnSegment projects p onto segment [v, w] and returns the projected point and
// the fraction along the segment (0 at v, 1 at w).
//
// Projection is done in Web Mercator so that right angles are preserved at any latitude
func projectPointOnSegment(p, v, w GeoPoint) (GeoPoint, float64) {
	pe := pointToEuclidean(p)
	ve := pointToEuclidean(v)
	we := pointToEuclidean(w)
	l2 := distanceSquared(ve, we)
	if l2 == 0 {
		return v, 0
	}
	t := ((pe.Lon-ve.Lon)*(we.Lon-ve.Lon) + (pe.Lat-ve.Lat)*(we.Lat-ve.Lat)) / l2
	t = math.Max(0, math.Min(1, t))
	return pointOnSegmentByFraction(v, w, t), t
}

// pointOnSegmentByFraction returns a point on given segment using fraction of its length
func pointOnSegmentByFraction(p, q GeoPoint, fraction float64) GeoPoint {
	return GeoPoint{
		Lon: (1-fraction)*p.Lon + (fraction * q.Lon),
		Lat: (1-fraction)*p.Lat + (fraction * q.Lat),
	}
}

// findMiddleVertex returns index of the inner vertex closest to the half of the line length.
// Returns -1 for lines without inner vertices
func findMiddleVertex(line []GeoPoint) int {
	if len(line) < 3 {
		return -1
	}
	halfDistance := getSphericalLength(line) / 2.0
	best := 1
	bestDiff := math.Inf(1)
	cl := 0.0
	for i := 1; i < len(line)-1; i++ {
		cl += greatCircleDistance(line[i-1], line[i])
		diff := math.Abs(cl - halfDistance)
		if diff < bestDiff {
			bestDiff = diff
			best = i
		}
	}
	return best
}

// reverseLine reverses order of points in given line. Returns new slice
func reverseLine(pts []GeoPoint) []GeoPoint {
	inputLen := len(pts)
	output := make([]GeoPoint, inputLen)
	for i, n := range pts {
		j := inputLen - i - 1
		output[j] = n
	}
	return output
}

// copyLine copies given line. Returns new slice
func copyLine(pts []GeoPoint) []GeoPoint {
	output := make([]GeoPoint, len(pts))
	copy(output, pts)
	return output
}

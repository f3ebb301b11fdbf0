package accessroute

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	earthR = 20037508.34
)

// epsg4326To3857 converts WGS84 to Web Mercator. Returns (x, y)
func epsg4326To3857(lon, lat float64) (float64, float64) {
	x := lon * earthR / 180
	y := math.Log(math.Tan((90+lat)*math.Pi/360)) / (math.Pi / 180)
	y = y * earthR / 180
	return x, y
}

// pointToEuclidean returns Web Mercator representation of the point (X stored in Lon, Y stored in Lat)
func pointToEuclidean(pt GeoPoint) GeoPoint {
	x, y := epsg4326To3857(pt.Lon, pt.Lat)
	return GeoPoint{Lat: y, Lon: x}
}

// pointToOrb converts point to orb.Point (Lon == X, Lat == Y)
func pointToOrb(pt GeoPoint) orb.Point {
	return orb.Point{pt.Lon, pt.Lat}
}

// lineToOrb converts line to orb.LineString
func lineToOrb(line []GeoPoint) orb.LineString {
	newLine := make(orb.LineString, len(line))
	for i, pt := range line {
		newLine[i] = pointToOrb(pt)
	}
	return newLine
}

// lineFromLonLat converts [[lon, lat], ...] pairs into the line. Pairs with less than 2 components are skipped
func lineFromLonLat(coords [][]float64) []GeoPoint {
	line := make([]GeoPoint, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		line = append(line, GeoPoint{Lat: c[1], Lon: c[0]})
	}
	return line
}

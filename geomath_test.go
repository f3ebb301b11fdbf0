package accessroute

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/pkg/errors"
)

func Round(x, unit float64) float64 {
	if x > 0 {
		return float64(int64(x/unit+0.5)) * unit
	}
	return float64(int64(x/unit-0.5)) * unit
}

// offsetPoint moves point by given meters to the north and to the east
func offsetPoint(origin GeoPoint, northMeters, eastMeters float64) GeoPoint {
	return GeoPoint{
		Lat: origin.Lat + northMeters/metersPerDegree,
		Lon: origin.Lon + eastMeters/(metersPerDegree*math.Cos(degreesToRadians(origin.Lat))),
	}
}

func TestGreatCircleDistance(t *testing.T) {
	p1 := GeoPoint{
		Lon: 37.6417350769043,
		Lat: 55.751849391735284,
	}
	p2 := GeoPoint{
		Lon: 37.668514251708984,
		Lat: 55.73261980350401,
	}
	gcd := greatCircleDistance(p1, p2)
	// orb uses another Earth radius
	correct := geo.DistanceHaversine(pointToOrb(p1), pointToOrb(p2)) * earthRadiusMeters / orb.EarthRadius
	if Round(gcd, 0.001) != Round(correct, 0.001) {
		t.Errorf("Great circle dist must be %f, but got %f", correct, gcd)
	}
	if Round(gcd, 1.0) != 2717.0 {
		t.Errorf("Great circle dist must be about %f, but got %f", 2717.0, gcd)
	}
	if greatCircleDistance(p1, p1) != 0 {
		t.Errorf("Distance to itself must be 0, but got %f", greatCircleDistance(p1, p1))
	}
}

func TestGetSphericalLength(t *testing.T) {
	line := []GeoPoint{
		{Lon: 37.396747, Lat: 55.8321},
		{Lon: 37.397111, Lat: 55.831987},
		{Lon: 37.397222, Lat: 55.831927},
		{Lon: 37.397322, Lat: 55.831851},
		{Lon: 37.397384, Lat: 55.83177},
	}
	length := getSphericalLength(line)
	correct := geo.LengthHaversign(lineToOrb(line)) * earthRadiusMeters / orb.EarthRadius
	if Round(length, 0.001) != Round(correct, 0.001) {
		t.Errorf("Length must be %f, but got %f", correct, length)
	}
	if getSphericalLength(line[:1]) != 0 {
		t.Errorf("Length of single point must be 0, but got %f", getSphericalLength(line[:1]))
	}
}

func TestProjectPointOnSegment(t *testing.T) {
	v := GeoPoint{Lat: 55.0, Lon: 37.0}
	w := GeoPoint{Lat: 55.0, Lon: 37.001}
	p := GeoPoint{Lat: 55.0001, Lon: 37.0005}
	projected, fraction := projectPointOnSegment(p, v, w)
	if Round(fraction, 1e-9) != Round(0.5, 1e-9) {
		t.Errorf("Fraction must be %f, but got %f", 0.5, fraction)
	}
	if Round(projected.Lat, 1e-9) != Round(55.0, 1e-9) || Round(projected.Lon, 1e-9) != Round(37.0005, 1e-9) {
		t.Errorf("Projected point must be %v, but got %v", GeoPoint{Lat: 55.0, Lon: 37.0005}, projected)
	}

	beyond := GeoPoint{Lat: 55.0, Lon: 37.002}
	projected, fraction = projectPointOnSegment(beyond, v, w)
	if fraction != 1 {
		t.Errorf("Fraction must be clamped to %f, but got %f", 1.0, fraction)
	}
	if projected != w {
		t.Errorf("Projected point must be %v, but got %v", w, projected)
	}

	projected, fraction = projectPointOnSegment(p, v, v)
	if fraction != 0 || projected != v {
		t.Errorf("Projection on degenerate segment must be %v, but got %v (fraction %f)", v, projected, fraction)
	}
}

func TestFindMiddleVertex(t *testing.T) {
	origin := GeoPoint{Lat: 55.75, Lon: 37.6}
	line := []GeoPoint{
		origin,
		offsetPoint(origin, 0, 10),
		offsetPoint(origin, 0, 45),
		offsetPoint(origin, 0, 60),
		offsetPoint(origin, 0, 100),
	}
	if idx := findMiddleVertex(line); idx != 2 {
		t.Errorf("Middle vertex must be %d, but got %d", 2, idx)
	}
	if idx := findMiddleVertex(line[:2]); idx != -1 {
		t.Errorf("Middle vertex of line without inner vertices must be %d, but got %d", -1, idx)
	}
}

func TestReverseLine(t *testing.T) {
	line := []GeoPoint{{Lat: 1, Lon: 2}, {Lat: 3, Lon: 4}, {Lat: 5, Lon: 6}}
	reversed := reverseLine(line)
	for i := range line {
		if reversed[i] != line[len(line)-1-i] {
			t.Errorf("Point #%d must be %v, but got %v", i, line[len(line)-1-i], reversed[i])
		}
	}
	if line[0] != (GeoPoint{Lat: 1, Lon: 2}) {
		t.Errorf("Source line must not be modified, but first point is %v", line[0])
	}
}

func TestGeoPointValidate(t *testing.T) {
	if err := (GeoPoint{Lat: 55.75, Lon: 37.6}).Validate(); err != nil {
		t.Errorf("Valid point must pass validation, but got %v", err)
	}
	bad := []GeoPoint{
		{Lat: math.NaN(), Lon: 37.6},
		{Lat: 55.75, Lon: math.Inf(1)},
		{Lat: 91, Lon: 37.6},
		{Lat: 55.75, Lon: -181},
	}
	for _, pt := range bad {
		if err := pt.Validate(); errors.Cause(err) != ErrInvalidCoordinate {
			t.Errorf("Validation of %v must fail with %v, but got %v", pt, ErrInvalidCoordinate, err)
		}
	}
}

func TestGeoPointJSON(t *testing.T) {
	b, err := json.Marshal(GeoPoint{Lat: 55.5, Lon: 37.25})
	if err != nil {
		t.Error(err)
		return
	}
	if string(b) != "[55.5,37.25]" {
		t.Errorf("Point must be encoded as %s, but got %s", "[55.5,37.25]", string(b))
	}
	pt := GeoPoint{}
	if err := json.Unmarshal([]byte("[1]"), &pt); err == nil {
		t.Errorf("Decoding of single component must fail")
	}
}

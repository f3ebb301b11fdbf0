package accessroute

import (
	"fmt"

	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"
)

func lonLatPairs(pts []GeoPoint) [][]float64 {
	pts2d := make([][]float64, len(pts))
	for i := range pts {
		pts2d[i] = []float64{pts[i].Lon, pts[i].Lat}
	}
	return pts2d
}

// PrepareGeoJSONLinestring returns GeoJSON representation of LineString
func PrepareGeoJSONLinestring(pts []GeoPoint) string {
	b, err := geojson.NewLineStringGeometry(lonLatPairs(pts)).MarshalJSON()
	if err != nil {
		fmt.Printf("[WARNING]: Can not convert geometry to geojson format: %s\n", err.Error())
		return ""
	}
	return string(b)
}

// PrepareGeoJSONPoint returns GeoJSON representation of Point
func PrepareGeoJSONPoint(pt GeoPoint) string {
	b, err := geojson.NewPointGeometry([]float64{pt.Lon, pt.Lat}).MarshalJSON()
	if err != nil {
		fmt.Printf("[WARNING]: Can not convert geometry to geojson format: %s\n", err.Error())
		return ""
	}
	return string(b)
}

// GeoJSON returns route as FeatureCollection: the whole route line with metrics, then every traversed edge
// with its accessibility metadata. Snapped start and end are added as points
func (res *Result) GeoJSON() ([]byte, error) {
	if !res.Success {
		return nil, fmt.Errorf("Can't convert failed route (reason: '%s') to GeoJSON", res.Reason)
	}
	fc := geojson.NewFeatureCollection()
	route := geojson.NewLineStringFeature(lonLatPairs(res.Polyline))
	route.SetProperty("kind", "route")
	route.SetProperty("total_distance_m", res.Metrics.TotalDistanceMeters)
	route.SetProperty("total_cost", res.Metrics.TotalCost)
	route.SetProperty("average_accessibility_score", res.Metrics.AverageAccessibility)
	route.SetProperty("accessible_segment_ratio", res.Metrics.AccessibleSegmentRatio)
	route.SetProperty("estimated_duration_min", res.Metrics.EstimatedDurationMinutes)
	if len(res.Warnings) > 0 {
		route.SetProperty("warnings", res.Warnings)
	}
	fc.AddFeature(route)
	for i := range res.Segments {
		seg := &res.Segments[i]
		if len(seg.Path) < 2 {
			continue
		}
		feature := geojson.NewLineStringFeature(lonLatPairs(seg.Path))
		feature.SetProperty("kind", seg.Kind.String())
		feature.SetProperty("segment_id", seg.ID)
		feature.SetProperty("score", seg.Score)
		feature.SetProperty("accessible", seg.Accessible)
		feature.SetProperty("confidence", seg.Confidence.String())
		feature.SetProperty("issues", seg.Issues)
		feature.SetProperty("length", seg.Length)
		fc.AddFeature(feature)
	}
	for _, snapped := range []struct {
		kind string
		info *SnapInfo
	}{{"start", res.Start}, {"end", res.End}} {
		if snapped.info == nil {
			continue
		}
		feature := geojson.NewPointFeature([]float64{snapped.info.SnappedNode.Lon, snapped.info.SnappedNode.Lat})
		feature.SetProperty("kind", snapped.kind)
		feature.SetProperty("offset_m", snapped.info.OffsetMeters)
		feature.SetProperty("fallback", snapped.info.Fallback)
		fc.AddFeature(feature)
	}
	b, err := fc.MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(err, "Can't marshal route to GeoJSON")
	}
	return b, nil
}

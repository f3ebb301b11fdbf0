package accessroute

import (
	"strings"
	"testing"

	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"
)

const testSegmentsJSON = `{
	"segments": [
		{
			"segment_id": 17,
			"geometry": {"type": "LineString", "coordinates": [[37.6, 55.75], [37.601, 55.75]]},
			"attributes": {
				"accessibility_score": 0.45,
				"is_wheelchair_passable": false,
				"confidence": "medium",
				"issues": ["kerb_high"],
				"tags": {"highway": "footway", "kerb": "raised", "layer": 1, "name": null}
			}
		},
		{
			"segment_id": "multi",
			"geometry": {"type": "MultiLineString", "coordinates": [[[37.601, 55.75], [37.602, 55.75]], [[37.602, 55.75], [37.602, 55.751]]]},
			"attributes": {}
		},
		{
			"segment_id": "point",
			"geometry": {"type": "Point", "coordinates": [37.6, 55.75]},
			"attributes": {}
		}
	]
}`

func TestReadSegments(t *testing.T) {
	segments, err := ReadSegments(strings.NewReader(testSegmentsJSON), false)
	if err != nil {
		t.Error(err)
		return
	}
	if len(segments) != 3 {
		t.Errorf("Number of segments must be %d, but got %d", 3, len(segments))
		return
	}
	first := segments[0]
	if first.ID != "17" {
		t.Errorf("Identifier must be '%s', but got '%s'", "17", first.ID)
	}
	if first.Score != 0.45 || first.Passable || first.Confidence != CONFIDENCE_MEDIUM {
		t.Errorf("Attributes must be kept, but got %s", &first)
	}
	if first.Geom[0] != (GeoPoint{Lat: 55.75, Lon: 37.6}) {
		t.Errorf("Coordinates must be read as [lon, lat], but got %v", first.Geom[0])
	}
	if first.Tags["layer"] != "1" {
		t.Errorf("Tag 'layer' must be '%s', but got '%s'", "1", first.Tags["layer"])
	}
	if _, ok := first.Tags["name"]; ok {
		t.Errorf("Null tags must be dropped")
	}

	if segments[1].ID != "multi#0" || segments[2].ID != "multi#1" {
		t.Errorf("Lines of multi-geometry must get suffixed identifiers, but got '%s' and '%s'", segments[1].ID, segments[2].ID)
	}
	if segments[1].Score != DefaultScore || !segments[1].Passable {
		t.Errorf("Segment without attributes must get default score %f and be passable, but got %s", DefaultScore, &segments[1])
	}
	if segments[1].Confidence != CONFIDENCE_LOW {
		t.Errorf("Missing confidence must be %s, but got %s", CONFIDENCE_LOW, segments[1].Confidence)
	}
}

func TestReadSegmentsErrors(t *testing.T) {
	_, err := ReadSegments(strings.NewReader(`{"features": []}`), false)
	if errors.Cause(err) != ErrNoSegments {
		t.Errorf("Error must be %v, but got %v", ErrNoSegments, err)
	}
	_, err = ReadSegments(strings.NewReader(`{"segments": [`), false)
	if err == nil {
		t.Errorf("Malformed JSON must give an error")
	}
	segments, err := ReadSegments(strings.NewReader(`{"segments": []}`), false)
	if err != nil || len(segments) != 0 {
		t.Errorf("Empty collection must give no segments and no error, but got %d and %v", len(segments), err)
	}
}

const testFeaturesJSON = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"id": "sw1",
			"geometry": {"type": "LineString", "coordinates": [[37.6, 55.75], [37.601, 55.75]]},
			"properties": {"highway": "footway", "surface": "asphalt", "width": 2}
		},
		{
			"type": "Feature",
			"geometry": {"type": "LineString", "coordinates": [[37.601, 55.75], [37.601, 55.751]]},
			"properties": {"id": "st1", "highway": "steps"}
		},
		{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [37.601, 55.75]},
			"properties": {"barrier": "kerb"}
		}
	]
}`

func TestReadOpenSidewalks(t *testing.T) {
	segments, err := ReadOpenSidewalks(strings.NewReader(testFeaturesJSON), false)
	if err != nil {
		t.Error(err)
		return
	}
	if len(segments) != 2 {
		t.Errorf("Number of segments must be %d, but got %d", 2, len(segments))
		return
	}
	sidewalk := segments[0]
	if sidewalk.ID != "sw1" {
		t.Errorf("Identifier must be '%s', but got '%s'", "sw1", sidewalk.ID)
	}
	if !sidewalk.Passable || sidewalk.Confidence != CONFIDENCE_HIGH {
		t.Errorf("Sidewalk must be passable with high confidence, but got %s", &sidewalk)
	}
	steps := segments[1]
	if steps.ID != "st1" {
		t.Errorf("Identifier must be '%s', but got '%s'", "st1", steps.ID)
	}
	if steps.Passable || !steps.isBarrier() {
		t.Errorf("Steps must be a barrier, but got %s", &steps)
	}
}

func TestSegmentsFromFeature(t *testing.T) {
	feature := geojson.NewMultiLineStringFeature(
		[][]float64{{37.6, 55.75}, {37.601, 55.75}},
		[][]float64{{37.601, 55.75}, {37.602, 55.75}},
	)
	feature.SetProperty("id", 42)
	feature.SetProperty("wheelchair", "limited")
	segments := SegmentsFromFeature(feature)
	if len(segments) != 2 {
		t.Errorf("Number of segments must be %d, but got %d", 2, len(segments))
		return
	}
	if segments[0].ID != "42#0" || segments[1].ID != "42#1" {
		t.Errorf("Identifiers must be '%s' and '%s', but got '%s' and '%s'", "42#0", "42#1", segments[0].ID, segments[1].ID)
	}
	if !hasString(segments[0].Issues, ISSUE_WHEELCHAIR_LIMITED) {
		t.Errorf("Issues must contain '%s', but got %v", ISSUE_WHEELCHAIR_LIMITED, segments[0].Issues)
	}
	if SegmentsFromFeature(nil) != nil {
		t.Errorf("Nil feature must give no segments")
	}
}

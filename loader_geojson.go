package accessroute

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"
)

// segmentRecord is a single entry of processed segments file
type segmentRecord struct {
	SegmentID  interface{}       `json:"segment_id"`
	Geometry   *geojson.Geometry `json:"geometry"`
	Attributes struct {
		AccessibilityScore   *float64               `json:"accessibility_score"`
		IsWheelchairPassable *bool                  `json:"is_wheelchair_passable"`
		Confidence           string                 `json:"confidence"`
		Issues               []string               `json:"issues"`
		Tags                 map[string]interface{} `json:"tags"`
	} `json:"attributes"`
}

type segmentsPayload struct {
	Segments []segmentRecord `json:"segments"`
}

// ReadSegmentsFile reads processed segments from the file
func ReadSegmentsFile(fname string, verbose bool) ([]AccessibilitySegment, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open segments file")
	}
	defer file.Close()
	return ReadSegments(file, verbose)
}

// ReadSegments reads processed segments: {"segments": [{"segment_id", "geometry", "attributes"}, ...]}.
// Geometry coordinates are [lon, lat] pairs. Missing score falls back to DefaultScore, missing passability
// is derived from the score. Records without line geometry are skipped
func ReadSegments(r io.Reader, verbose bool) ([]AccessibilitySegment, error) {
	payload := segmentsPayload{}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "Can't decode segments")
	}
	if payload.Segments == nil {
		return nil, errors.Wrap(ErrNoSegments, "Expected 'segments' array")
	}
	segments := make([]AccessibilitySegment, 0, len(payload.Segments))
	skipped := 0
	for i := range payload.Segments {
		record := &payload.Segments[i]
		id := identifierToString(record.SegmentID)
		lines := linesFromGeometry(record.Geometry)
		if len(lines) == 0 {
			if verbose {
				fmt.Printf("[WARNING]: Segment '%s' has no line geometry. Skipping it\n", id)
			}
			skipped++
			continue
		}
		score := DefaultScore
		if record.Attributes.AccessibilityScore != nil {
			score = *record.Attributes.AccessibilityScore
		}
		passable := score >= AccessibleThreshold
		if record.Attributes.IsWheelchairPassable != nil {
			passable = *record.Attributes.IsWheelchairPassable
		}
		tags := flattenProperties(record.Attributes.Tags)
		issues := record.Attributes.Issues
		if issues == nil {
			issues = []string{}
		}
		for j, line := range lines {
			segID := id
			if len(lines) > 1 {
				segID = fmt.Sprintf("%s#%d", id, j)
			}
			segments = append(segments, AccessibilitySegment{
				ID:         segID,
				Geom:       line,
				Score:      score,
				Passable:   passable,
				Confidence: parseConfidence(record.Attributes.Confidence),
				Issues:     issues,
				Tags:       tags,
			})
		}
	}
	if verbose {
		fmt.Printf("Segments read: %d (skipped records: %d)\n", len(segments), skipped)
	}
	return segments, nil
}

// ReadOpenSidewalks reads raw OpenSidewalks-like FeatureCollection and scores every feature by its properties
func ReadOpenSidewalks(r io.Reader, verbose bool) ([]AccessibilitySegment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read features")
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "Can't decode feature collection")
	}
	if fc.Features == nil {
		return nil, errors.Wrap(ErrNoSegments, "Expected 'features' array")
	}
	segments := make([]AccessibilitySegment, 0, len(fc.Features))
	skipped := 0
	for _, feature := range fc.Features {
		featureSegments := SegmentsFromFeature(feature)
		if len(featureSegments) == 0 {
			skipped++
			continue
		}
		segments = append(segments, featureSegments...)
	}
	if verbose {
		fmt.Printf("Features read: %d (segments: %d, skipped: %d)\n", len(fc.Features), len(segments), skipped)
	}
	return segments, nil
}

// SegmentsFromFeature scores feature properties and turns its line geometry into segments.
// MultiLineString produces one segment per line
func SegmentsFromFeature(feature *geojson.Feature) []AccessibilitySegment {
	if feature == nil {
		return nil
	}
	lines := linesFromGeometry(feature.Geometry)
	if len(lines) == 0 {
		return nil
	}
	id := identifierToString(feature.Properties["id"])
	if id == "" {
		id = identifierToString(feature.ID)
	}
	assessment := ScoreTags(TagsFromProperties(feature.Properties))
	segments := make([]AccessibilitySegment, 0, len(lines))
	for j, line := range lines {
		segID := id
		if len(lines) > 1 {
			segID = fmt.Sprintf("%s#%d", id, j)
		}
		segments = append(segments, AccessibilitySegment{
			ID:         segID,
			Geom:       line,
			Score:      assessment.Score,
			Passable:   assessment.IsAccessible,
			Confidence: assessment.Confidence,
			Issues:     assessment.Issues,
			Tags:       assessment.Tags,
		})
	}
	return segments
}

// linesFromGeometry extracts lines of LineString and MultiLineString geometries
func linesFromGeometry(geom *geojson.Geometry) [][]GeoPoint {
	if geom == nil {
		return nil
	}
	switch geom.Type {
	case geojson.GeometryLineString:
		return [][]GeoPoint{lineFromLonLat(geom.LineString)}
	case geojson.GeometryMultiLineString:
		lines := make([][]GeoPoint, 0, len(geom.MultiLineString))
		for _, coords := range geom.MultiLineString {
			lines = append(lines, lineFromLonLat(coords))
		}
		return lines
	default:
		return nil
	}
}

func identifierToString(id interface{}) string {
	switch value := id.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return fmt.Sprintf("%.0f", value)
	default:
		return fmt.Sprintf("%v", value)
	}
}

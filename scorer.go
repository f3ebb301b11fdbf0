package accessroute

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/paulmach/osm"
)

// SegmentTags is the closed set of tags the scorer understands. Empty string means "tag is absent".
// Extra keeps the rest of tags for display purposes only
type SegmentTags struct {
	Highway    string
	Foot       string
	Wheelchair string
	Kerb       string
	Surface    string
	Smoothness string
	Incline    string
	Width      string
	Extra      map[string]string
}

// Assessment is the result of scoring
type Assessment struct {
	Score        float64
	IsAccessible bool
	// Impassable is set for explicit barriers: steps or wheelchair=no
	Impassable bool
	Confidence Confidence
	Issues     []string
	Tags       map[string]string
}

var (
	goodSurfaces = map[string]struct{}{
		"asphalt":        {},
		"paved":          {},
		"concrete":       {},
		"concrete:lanes": {},
		"paving_stones":  {},
	}
	badSurfaces = map[string]struct{}{
		"gravel":      {},
		"dirt":        {},
		"ground":      {},
		"grass":       {},
		"cobblestone": {},
		"sand":        {},
		"woodchips":   {},
	}
	goodSmoothness = map[string]struct{}{
		"excellent":    {},
		"good":         {},
		"intermediate": {},
	}
	badSmoothness = map[string]struct{}{
		"bad":           {},
		"very_bad":      {},
		"horrible":      {},
		"very_horrible": {},
		"impassable":    {},
	}
)

var (
	inclinePercentRegExp = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)\s*%$`)
	numberRegExp         = regexp.MustCompile(`-?\d+\.?\d*`)
	widthCleanRegExp     = regexp.MustCompile(`[^\d.]`)
)

const (
	inclineDirectionOnly = 0.06
	inclineSteep         = 0.08
	widthNarrow          = 1.0
	widthGood            = 1.5
)

// scoreState accumulates signals while tags are evaluated
type scoreState struct {
	score    float64
	issues   []string
	positive int
	negative int
}

func (st *scoreState) apply(delta float64, reason string) {
	st.score += delta
	if delta < 0 {
		st.issues = append(st.issues, reason)
		st.negative++
	} else if delta > 0 {
		st.positive++
	}
}

// ScoreTags evaluates wheelchair accessibility of a segment by its tags.
// It is deterministic and free of side effects
func ScoreTags(tags SegmentTags) Assessment {
	st := scoreState{
		score:  DefaultScore,
		issues: []string{},
	}
	wheelchair := strings.ToLower(strings.TrimSpace(tags.Wheelchair))
	impassable := false
	switch wheelchair {
	case "yes", "designated":
		st.apply(0.1, "wheelchair_yes")
	case "limited":
		st.apply(-0.2, ISSUE_WHEELCHAIR_LIMITED)
	case "no":
		st.apply(-0.8, ISSUE_WHEELCHAIR_NO)
		impassable = true
	}

	if kerb := strings.ToLower(strings.TrimSpace(tags.Kerb)); kerb != "" {
		if isFlushKerb(kerb) {
			st.apply(0.05, "kerb_flush")
		} else if isHighKerb(kerb) {
			st.apply(-0.4, ISSUE_KERB_HIGH)
		}
	}

	if surface := strings.ToLower(strings.TrimSpace(tags.Surface)); surface != "" {
		if _, ok := goodSurfaces[surface]; ok {
			st.apply(0.05, "surface_good")
		} else if _, ok := badSurfaces[surface]; ok {
			st.apply(-0.3, "surface_"+surface)
		}
	}

	if smoothness := strings.ToLower(strings.TrimSpace(tags.Smoothness)); smoothness != "" {
		if _, ok := goodSmoothness[smoothness]; ok {
			st.apply(0.05, "smoothness_good")
		} else if _, ok := badSmoothness[smoothness]; ok {
			st.apply(-0.5, "smoothness_"+smoothness)
		}
	}

	if incline, ok := parseIncline(tags.Incline); ok {
		if incline > inclineSteep {
			st.apply(-0.4, ISSUE_STEEP_INCLINE)
		}
	}

	if width, ok := parseWidth(tags.Width); ok {
		if width < widthNarrow {
			st.apply(-0.3, ISSUE_NARROW_WIDTH)
		} else if width >= widthGood {
			st.apply(0.05, "width_good")
		}
	}

	if strings.ToLower(strings.TrimSpace(tags.Highway)) == "steps" {
		st.apply(-0.9, ISSUE_STEPS)
		impassable = true
	}

	score := math.Max(0, math.Min(1, st.score))
	confidence := CONFIDENCE_MEDIUM
	if st.positive >= 2 || wheelchair == "yes" || wheelchair == "designated" {
		confidence = CONFIDENCE_HIGH
	}
	if st.negative > 0 {
		confidence = CONFIDENCE_LOW
	}
	return Assessment{
		Score:        score,
		IsAccessible: score >= AccessibleThreshold,
		Impassable:   impassable,
		Confidence:   confidence,
		Issues:       st.issues,
		Tags:         tags.displayTags(),
	}
}

func isFlushKerb(kerb string) bool {
	return strings.Contains(kerb, "lowered") || strings.Contains(kerb, "flush") || kerb == "raised:0"
}

func isHighKerb(kerb string) bool {
	return !isFlushKerb(kerb) && (strings.Contains(kerb, "raised") || strings.Contains(kerb, "high"))
}

// parseIncline returns absolute incline as a fraction (0.06 == 6%)
func parseIncline(value string) (float64, bool) {
	str := strings.ToLower(strings.TrimSpace(value))
	if str == "" {
		return 0, false
	}
	if str == "up" || str == "down" {
		return inclineDirectionOnly, true
	}
	if match := inclinePercentRegExp.FindStringSubmatch(str); match != nil {
		percent, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			return 0, false
		}
		return math.Abs(percent / 100), true
	}
	numeric := numberRegExp.FindString(str)
	if numeric == "" || !strings.HasPrefix(str, numeric) {
		return 0, false
	}
	incline, err := strconv.ParseFloat(numeric, 64)
	if err != nil {
		return 0, false
	}
	return math.Abs(incline), true
}

// parseWidth returns width in meters. Units are dropped
func parseWidth(value string) (float64, bool) {
	str := widthCleanRegExp.ReplaceAllString(strings.TrimSpace(value), "")
	if str == "" {
		return 0, false
	}
	width, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, false
	}
	return width, true
}

// displayTags returns flat map of tags (recognized ones plus pass-through)
func (tags SegmentTags) displayTags() map[string]string {
	out := make(map[string]string, len(tags.Extra)+8)
	for k, v := range tags.Extra {
		out[k] = v
	}
	recognized := [...]struct{ key, value string }{
		{"highway", tags.Highway},
		{"foot", tags.Foot},
		{"wheelchair", tags.Wheelchair},
		{"kerb", tags.Kerb},
		{"surface", tags.Surface},
		{"smoothness", tags.Smoothness},
		{"incline", tags.Incline},
		{"width", tags.Width},
	}
	for _, tag := range recognized {
		if tag.value != "" {
			out[tag.key] = tag.value
		}
	}
	return out
}

// recognizedTags lists keys (with fallbacks) feeding SegmentTags fields
var recognizedTags = map[string][]string{
	"highway":    {"highway"},
	"foot":       {"foot"},
	"wheelchair": {"wheelchair", "sidewalk:wheelchair"},
	"kerb":       {"kerb", "kerb:height"},
	"surface":    {"surface", "sidewalk:surface"},
	"smoothness": {"smoothness", "sidewalk:smoothness"},
	"incline":    {"incline", "sidewalk:incline"},
	"width":      {"width", "sidewalk:width"},
}

// tagsFromLookup fills SegmentTags using given lookup function. Keys consumed are excluded from Extra
func tagsFromLookup(find func(key string) string, all map[string]string) SegmentTags {
	used := make(map[string]struct{})
	first := func(field string) string {
		for _, key := range recognizedTags[field] {
			if v := find(key); v != "" {
				used[key] = struct{}{}
				return v
			}
		}
		return ""
	}
	tags := SegmentTags{
		Highway:    first("highway"),
		Foot:       first("foot"),
		Wheelchair: first("wheelchair"),
		Kerb:       first("kerb"),
		Surface:    first("surface"),
		Smoothness: first("smoothness"),
		Incline:    first("incline"),
		Width:      first("width"),
	}
	for k, v := range all {
		if _, ok := used[k]; ok {
			continue
		}
		if tags.Extra == nil {
			tags.Extra = make(map[string]string)
		}
		tags.Extra[k] = v
	}
	return tags
}

// TagsFromOSM prepares SegmentTags from OSM tags
func TagsFromOSM(osmTags osm.Tags) SegmentTags {
	return tagsFromLookup(osmTags.Find, osmTags.Map())
}

// TagsFromProperties prepares SegmentTags from GeoJSON feature properties
func TagsFromProperties(properties map[string]interface{}) SegmentTags {
	flat := flattenProperties(properties)
	return tagsFromLookup(func(key string) string { return flat[key] }, flat)
}

// flattenProperties keeps scalar properties formatting non-string values with fmt. Nested objects are not tags
func flattenProperties(properties map[string]interface{}) map[string]string {
	flat := make(map[string]string, len(properties))
	for k, v := range properties {
		switch value := v.(type) {
		case nil:
			continue
		case string:
			flat[k] = value
		case map[string]interface{}, []interface{}:
			continue
		default:
			flat[k] = fmt.Sprintf("%v", value)
		}
	}
	return flat
}

package accessroute

import (
	"fmt"
	"strings"
)

const (
	// DefaultScore is applied to segments without accessibility score: unverified but presumed passable
	DefaultScore = 0.9
	// AccessibleThreshold is the minimal score of segment considered as wheelchair passable
	AccessibleThreshold = 0.6
)

// Issue codes produced by the scorer
const (
	ISSUE_WHEELCHAIR_NO      = "wheelchair_no"
	ISSUE_WHEELCHAIR_LIMITED = "wheelchair_limited"
	ISSUE_KERB_HIGH          = "kerb_high"
	ISSUE_STEEP_INCLINE      = "steep_incline"
	ISSUE_NARROW_WIDTH       = "narrow_width"
	ISSUE_STEPS              = "steps"
)

type Confidence uint16

const (
	CONFIDENCE_LOW = Confidence(iota + 1)
	CONFIDENCE_MEDIUM
	CONFIDENCE_HIGH
)

func (iotaIdx Confidence) String() string {
	if iotaIdx < CONFIDENCE_LOW || iotaIdx > CONFIDENCE_HIGH {
		return "unknown"
	}
	return [...]string{"low", "medium", "high"}[iotaIdx-1]
}

// MarshalText encodes confidence as its name
func (iotaIdx Confidence) MarshalText() ([]byte, error) {
	return []byte(iotaIdx.String()), nil
}

// UnmarshalText decodes confidence from its name. Unknown values are treated as low confidence
func (iotaIdx *Confidence) UnmarshalText(text []byte) error {
	*iotaIdx = parseConfidence(string(text))
	return nil
}

func parseConfidence(str string) Confidence {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "high":
		return CONFIDENCE_HIGH
	case "medium":
		return CONFIDENCE_MEDIUM
	default:
		return CONFIDENCE_LOW
	}
}

// AccessibilitySegment is a tagged polyline representing one piece of pedestrian infrastructure
type AccessibilitySegment struct {
	ID         string
	Geom       []GeoPoint
	Score      float64
	Passable   bool
	Confidence Confidence
	Issues     []string
	Tags       map[string]string
}

// String returns pretty printed value for AccessibilitySegment
func (seg *AccessibilitySegment) String() string {
	return fmt.Sprintf("Segment '%s' | points: %d | score: %.2f | passable: %t | confidence: %s | issues: [%s]",
		seg.ID, len(seg.Geom), seg.Score, seg.Passable, seg.Confidence, strings.Join(seg.Issues, ","))
}

// hasIssue checks if segment carries given issue code
func (seg *AccessibilitySegment) hasIssue(issue string) bool {
	for _, is := range seg.Issues {
		if is == issue {
			return true
		}
	}
	return false
}

// isBarrier returns true for segments that can't be passed on wheelchair at all
func (seg *AccessibilitySegment) isBarrier() bool {
	return seg.hasIssue(ISSUE_STEPS) || seg.hasIssue(ISSUE_WHEELCHAIR_NO)
}

// SegmentInfo is accessibility metadata shared by every edge cut from the same segment
type SegmentInfo struct {
	ID         string            `json:"id,omitempty"`
	Score      float64           `json:"score"`
	Accessible bool              `json:"accessible"`
	// Barrier marks steps and wheelchair=no segments. Strict profiles never traverse them
	Barrier    bool              `json:"barrier"`
	Confidence Confidence        `json:"confidence"`
	Issues     []string          `json:"issues"`
	Tags       map[string]string `json:"tags,omitempty"`
}

func segmentInfoFrom(seg *AccessibilitySegment) *SegmentInfo {
	issues := make([]string, len(seg.Issues))
	copy(issues, seg.Issues)
	return &SegmentInfo{
		ID:         seg.ID,
		Score:      seg.Score,
		Accessible: seg.Passable,
		Barrier:    seg.isBarrier(),
		Confidence: seg.Confidence,
		Issues:     issues,
		Tags:       seg.Tags,
	}
}

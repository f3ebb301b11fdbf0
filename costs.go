package accessroute

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// CostModel holds tunable constants for edge weighting
type CostModel struct {
	// LimitedMultiplier is applied to non-accessible segments with score above limited threshold
	LimitedMultiplier float64 `yaml:"limited_multiplier"`
	// SevereMultiplier is applied to non-accessible segments with score below limited threshold
	SevereMultiplier float64 `yaml:"severe_multiplier"`
	// LowConfidencePenalty and MediumConfidencePenalty are added to the penalty by segment confidence
	LowConfidencePenalty    float64 `yaml:"low_confidence_penalty"`
	MediumConfidencePenalty float64 `yaml:"medium_confidence_penalty"`
	// IssuePenalties are added to the penalty for every matching issue code
	IssuePenalties map[string]float64 `yaml:"issue_penalties"`
	// WeldPenalty is the penalty of synthetic edges connecting near-coincident nodes
	WeldPenalty float64 `yaml:"weld_penalty"`
}

// DefaultCostModel returns default cost constants
func DefaultCostModel() CostModel {
	return CostModel{
		LimitedMultiplier:       2.5,
		SevereMultiplier:        10.0,
		LowConfidencePenalty:    0.35,
		MediumConfidencePenalty: 0.15,
		IssuePenalties: map[string]float64{
			ISSUE_KERB_HIGH:       0.3,
			"surface_gravel":      0.25,
			"surface_cobblestone": 0.3,
			ISSUE_NARROW_WIDTH:    0.2,
			ISSUE_STEEP_INCLINE:   0.35,
			ISSUE_STEPS:           5.0,
			ISSUE_WHEELCHAIR_NO:   5.0,
		},
		WeldPenalty: 0.1,
	}
}

// String returns pretty printed value for CostModel
func (cm CostModel) String() string {
	keys := make([]string, 0, len(cm.IssuePenalties))
	for k := range cm.IssuePenalties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	issues := make([]string, len(keys))
	for i, k := range keys {
		issues[i] = fmt.Sprintf("%s=%.2f", k, cm.IssuePenalties[k])
	}
	return fmt.Sprintf("limited_multiplier: %.2f | severe_multiplier: %.2f | confidence penalties (low/medium): %.2f/%.2f | weld_penalty: %.2f | issues: %s",
		cm.LimitedMultiplier, cm.SevereMultiplier, cm.LowConfidencePenalty, cm.MediumConfidencePenalty, cm.WeldPenalty, strings.Join(issues, ","))
}

// LoadCostModel reads cost overrides from YAML file. Fields missing in file keep default values,
// issue penalties are merged into the default table
func LoadCostModel(fname string) (CostModel, error) {
	cm := DefaultCostModel()
	data, err := os.ReadFile(fname)
	if err != nil {
		return cm, errors.Wrap(err, "Can't read cost model file")
	}
	return parseCostModel(data)
}

// costOverrides mirrors CostModel with optional fields, so explicit zeros can be told apart from missing keys
type costOverrides struct {
	LimitedMultiplier       *float64           `yaml:"limited_multiplier"`
	SevereMultiplier        *float64           `yaml:"severe_multiplier"`
	LowConfidencePenalty    *float64           `yaml:"low_confidence_penalty"`
	MediumConfidencePenalty *float64           `yaml:"medium_confidence_penalty"`
	IssuePenalties          map[string]float64 `yaml:"issue_penalties"`
	WeldPenalty             *float64           `yaml:"weld_penalty"`
}

func parseCostModel(data []byte) (CostModel, error) {
	cm := DefaultCostModel()
	overrides := costOverrides{}
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return cm, errors.Wrap(err, "Can't parse cost model")
	}
	multipliers := []struct {
		name  string
		value *float64
		field *float64
	}{
		{"limited_multiplier", overrides.LimitedMultiplier, &cm.LimitedMultiplier},
		{"severe_multiplier", overrides.SevereMultiplier, &cm.SevereMultiplier},
	}
	for _, m := range multipliers {
		if m.value == nil {
			continue
		}
		if *m.value <= 0 {
			return cm, fmt.Errorf("Multiplier '%s' should be positive, got %f", m.name, *m.value)
		}
		*m.field = *m.value
	}
	penalties := []struct {
		name  string
		value *float64
		field *float64
	}{
		{"low_confidence_penalty", overrides.LowConfidencePenalty, &cm.LowConfidencePenalty},
		{"medium_confidence_penalty", overrides.MediumConfidencePenalty, &cm.MediumConfidencePenalty},
		{"weld_penalty", overrides.WeldPenalty, &cm.WeldPenalty},
	}
	for _, p := range penalties {
		if p.value == nil {
			continue
		}
		if *p.value < 0 {
			return cm, fmt.Errorf("Penalty '%s' should be non-negative, got %f", p.name, *p.value)
		}
		*p.field = *p.value
	}
	for issue, penalty := range overrides.IssuePenalties {
		if penalty < 0 {
			return cm, fmt.Errorf("Penalty for issue '%s' should be non-negative, got %f", issue, penalty)
		}
		cm.IssuePenalties[issue] = penalty
	}
	return cm, nil
}

// segmentPenalty returns additive penalty derived from score, confidence and issues
func (cm CostModel) segmentPenalty(seg *AccessibilitySegment) float64 {
	penalty := 1 - seg.Score
	if penalty < 0 {
		penalty = 0
	}
	switch seg.Confidence {
	case CONFIDENCE_LOW:
		penalty += cm.LowConfidencePenalty
	case CONFIDENCE_MEDIUM:
		penalty += cm.MediumConfidencePenalty
	}
	for _, issue := range seg.Issues {
		penalty += cm.IssuePenalties[issue]
	}
	return penalty
}

// categoryMultiplier returns multiplier by accessibility category of the segment
func (cm CostModel) categoryMultiplier(info *SegmentInfo, profile RouteOptions) float64 {
	if info.Accessible {
		return 1.0
	}
	if profile.AllowLimitedSegments && info.Score >= profile.LimitedThreshold {
		return cm.LimitedMultiplier
	}
	return cm.SevereMultiplier
}

// edgeWeight returns cost of traversing the edge under the profile.
// Returns false for barriers when the profile does not allow non-accessible segments
func (cm CostModel) edgeWeight(edge *Edge, profile RouteOptions) (float64, bool) {
	if edge.Segment.Barrier && !profile.AllowNonAccessible {
		return 0, false
	}
	return edge.Weight * cm.categoryMultiplier(edge.Segment, profile), true
}

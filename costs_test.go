package accessroute

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSegmentPenalty(t *testing.T) {
	costs := DefaultCostModel()
	seg := AccessibilitySegment{
		Score:      0.7,
		Confidence: CONFIDENCE_LOW,
		Issues:     []string{ISSUE_KERB_HIGH, ISSUE_NARROW_WIDTH, "unknown_issue"},
	}
	penalty := costs.segmentPenalty(&seg)
	correct := 0.3 + 0.35 + 0.3 + 0.2
	if Round(penalty, 1e-9) != Round(correct, 1e-9) {
		t.Errorf("Penalty must be %f, but got %f", correct, penalty)
	}

	perfect := AccessibilitySegment{Score: 1.0, Confidence: CONFIDENCE_HIGH}
	if penalty := costs.segmentPenalty(&perfect); penalty != 0 {
		t.Errorf("Penalty of perfect segment must be %f, but got %f", 0.0, penalty)
	}
}

func TestCategoryMultiplier(t *testing.T) {
	costs := DefaultCostModel()
	profile := DefaultRouteOptions()
	cases := []struct {
		info       SegmentInfo
		profile    RouteOptions
		multiplier float64
	}{
		{SegmentInfo{Score: 0.3, Accessible: true}, profile, 1.0},
		{SegmentInfo{Score: 0.55, Accessible: false}, profile, costs.LimitedMultiplier},
		{SegmentInfo{Score: 0.4, Accessible: false}, profile, costs.SevereMultiplier},
		{SegmentInfo{Score: 0.55, Accessible: false}, RouteOptions{AllowLimitedSegments: false, LimitedThreshold: 0.5}, costs.SevereMultiplier},
	}
	for i, c := range cases {
		multiplier := costs.categoryMultiplier(&c.info, c.profile)
		if multiplier != c.multiplier {
			t.Errorf("Multiplier for case #%d must be %f, but got %f", i, c.multiplier, multiplier)
		}
	}
}

func TestParseCostModel(t *testing.T) {
	data := []byte(`
limited_multiplier: 3
issue_penalties:
  steps: 9
  surface_sand: 0.4
`)
	costs, err := parseCostModel(data)
	if err != nil {
		t.Error(err)
		return
	}
	defaults := DefaultCostModel()
	if costs.LimitedMultiplier != 3 {
		t.Errorf("Limited multiplier must be %f, but got %f", 3.0, costs.LimitedMultiplier)
	}
	if costs.SevereMultiplier != defaults.SevereMultiplier {
		t.Errorf("Severe multiplier must keep default %f, but got %f", defaults.SevereMultiplier, costs.SevereMultiplier)
	}
	if costs.IssuePenalties[ISSUE_STEPS] != 9 {
		t.Errorf("Penalty for steps must be %f, but got %f", 9.0, costs.IssuePenalties[ISSUE_STEPS])
	}
	if costs.IssuePenalties["surface_sand"] != 0.4 {
		t.Errorf("Penalty for sand must be %f, but got %f", 0.4, costs.IssuePenalties["surface_sand"])
	}
	if costs.IssuePenalties[ISSUE_KERB_HIGH] != defaults.IssuePenalties[ISSUE_KERB_HIGH] {
		t.Errorf("Penalty for high kerb must keep default %f, but got %f", defaults.IssuePenalties[ISSUE_KERB_HIGH], costs.IssuePenalties[ISSUE_KERB_HIGH])
	}

	_, err = parseCostModel([]byte("issue_penalties:\n  steps: -1\n"))
	if err == nil {
		t.Errorf("Negative penalty must be rejected")
	}
	_, err = parseCostModel([]byte("limited_multiplier: [1, 2"))
	if err == nil {
		t.Errorf("Malformed YAML must be rejected")
	}
}

func TestParseCostModelExplicitValues(t *testing.T) {
	costs, err := parseCostModel([]byte("medium_confidence_penalty: 0\nweld_penalty: 0\nlow_confidence_penalty: 0.5\n"))
	if err != nil {
		t.Error(err)
		return
	}
	if costs.MediumConfidencePenalty != 0 {
		t.Errorf("Medium confidence penalty must be %f, but got %f", 0.0, costs.MediumConfidencePenalty)
	}
	if costs.WeldPenalty != 0 {
		t.Errorf("Weld penalty must be %f, but got %f", 0.0, costs.WeldPenalty)
	}
	if costs.LowConfidencePenalty != 0.5 {
		t.Errorf("Low confidence penalty must be %f, but got %f", 0.5, costs.LowConfidencePenalty)
	}

	for _, data := range []string{
		"limited_multiplier: -2\n",
		"severe_multiplier: 0\n",
		"low_confidence_penalty: -0.1\n",
		"medium_confidence_penalty: -1\n",
		"weld_penalty: -0.5\n",
	} {
		if _, err := parseCostModel([]byte(data)); err == nil {
			t.Errorf("Cost model '%s' must be rejected", strings.TrimSpace(data))
		}
	}
}

func TestLoadCostModel(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "costs.yaml")
	err := os.WriteFile(fname, []byte("severe_multiplier: 20\n"), 0644)
	if err != nil {
		t.Error(err)
		return
	}
	costs, err := LoadCostModel(fname)
	if err != nil {
		t.Error(err)
		return
	}
	if costs.SevereMultiplier != 20 {
		t.Errorf("Severe multiplier must be %f, but got %f", 20.0, costs.SevereMultiplier)
	}
	_, err = LoadCostModel(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Errorf("Missing file must give an error")
	}
}

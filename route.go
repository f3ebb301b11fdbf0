package accessroute

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// FailureReason is the reason of unsuccessful routing
type FailureReason string

const (
	REASON_NO_SNAPPING_NODES = FailureReason("no_snapping_nodes_found")
	REASON_NO_PATH           = FailureReason("no_path_found")
	REASON_SEARCH_EXCEEDED   = FailureReason("search_exceeded_bound")
)

const (
	// WalkingSpeed is conservative accessible pace (meters per second) used for duration estimation
	WalkingSpeed = 1.15
	// farFromNetworkMeters is the snapping offset making route warn about unverified approach
	farFromNetworkMeters = 50.0
)

// SnapInfo describes how the query point has been anchored to the network
type SnapInfo struct {
	Requested    GeoPoint `json:"requested"`
	SnappedNode  GeoPoint `json:"snappedNode"`
	OffsetMeters float64  `json:"offset_m"`
	// Fallback is set when the point has been snapped to the nearest node of the largest component
	Fallback bool `json:"fallback"`
}

// EdgeInfo is metadata of a traversed edge
type EdgeInfo struct {
	ID         string            `json:"id,omitempty"`
	Kind       EdgeKind          `json:"kind"`
	Direction  EdgeDirection     `json:"direction"`
	Score      float64           `json:"score"`
	Accessible bool              `json:"accessible"`
	Confidence Confidence        `json:"confidence"`
	Issues     []string          `json:"issues"`
	Tags       map[string]string `json:"tags,omitempty"`
	Length     float64           `json:"length"`
	Weight     float64           `json:"weight"`
	Path       []GeoPoint        `json:"path"`
}

// RouteMetrics is the summary of the found path
type RouteMetrics struct {
	TotalDistanceMeters      float64 `json:"total_distance_m"`
	TotalCost                float64 `json:"total_cost"`
	AverageAccessibility     float64 `json:"average_accessibility_score"`
	AccessibleSegmentRatio   float64 `json:"accessible_segment_ratio"`
	StartDistanceToNetwork   float64 `json:"start_distance_to_network_m"`
	EndDistanceToNetwork     float64 `json:"end_distance_to_network_m"`
	EstimatedDurationMinutes float64 `json:"estimated_duration_min"`
}

// Result is the outcome of routing. Failures are results too: only contract violations are returned as errors
type Result struct {
	Success     bool           `json:"success"`
	Reason      FailureReason  `json:"reason,omitempty"`
	Start       *SnapInfo      `json:"start,omitempty"`
	End         *SnapInfo      `json:"end,omitempty"`
	Polyline    []GeoPoint     `json:"polyline,omitempty"`
	Segments    []EdgeInfo     `json:"segments,omitempty"`
	Metrics     *RouteMetrics  `json:"metrics,omitempty"`
	IssueCounts map[string]int `json:"issue_counts,omitempty"`
	Warnings    []string       `json:"warnings,omitempty"`
}

// String returns pretty printed value for Result
func (res *Result) String() string {
	if !res.Success {
		return fmt.Sprintf("Route failed: %s", res.Reason)
	}
	issues := make([]string, 0, len(res.IssueCounts))
	for issue, count := range res.IssueCounts {
		issues = append(issues, fmt.Sprintf("%s=%d", issue, count))
	}
	sort.Strings(issues)
	return fmt.Sprintf("Route | distance: %.2f m | cost: %.2f | average score: %.2f | accessible ratio: %.2f | duration: %.1f min | start offset: %.2f m | end offset: %.2f m | issues: [%s]",
		res.Metrics.TotalDistanceMeters, res.Metrics.TotalCost, res.Metrics.AverageAccessibility, res.Metrics.AccessibleSegmentRatio,
		res.Metrics.EstimatedDurationMinutes, res.Metrics.StartDistanceToNetwork, res.Metrics.EndDistanceToNetwork, strings.Join(issues, ","))
}

func failure(reason FailureReason, start, end *snapPoint) *Result {
	res := &Result{
		Success: false,
		Reason:  reason,
	}
	if start != nil {
		res.Start = &SnapInfo{Requested: start.requested, SnappedNode: start.point, OffsetMeters: start.offset, Fallback: start.fallback}
	}
	if end != nil {
		res.End = &SnapInfo{Requested: end.requested, SnappedNode: end.point, OffsetMeters: end.offset, Fallback: end.fallback}
	}
	return res
}

// Route finds the lowest-cost path between two arbitrary points for the profile.
// Snapping state lives in a request-scoped view, so concurrent calls on the same network are safe
func (net *Network) Route(ctx context.Context, start, end GeoPoint, profile RouteOptions) (*Result, error) {
	if err := profile.Validate(); err != nil {
		return nil, errors.Wrap(err, "Bad routing profile")
	}
	if err := start.Validate(); err != nil {
		return nil, errors.Wrap(err, "Bad start point")
	}
	if err := end.Validate(); err != nil {
		return nil, errors.Wrap(err, "Bad end point")
	}
	view := newGraphView(net.graph)

	if net.graph.key(start) == net.graph.key(end) {
		sp, ok := net.snap(view, start, true)
		if !ok {
			return failure(REASON_NO_SNAPPING_NODES, nil, nil), nil
		}
		ep := *sp
		ep.requested = end
		return net.assemble(sp, &ep, searchResult{status: SEARCH_FOUND, edges: []Edge{}, weights: []float64{}}), nil
	}

	sp, ok := net.snap(view, start, true)
	if !ok {
		return failure(REASON_NO_SNAPPING_NODES, nil, nil), nil
	}
	ep, ok := net.snap(view, end, false)
	if !ok {
		return failure(REASON_NO_SNAPPING_NODES, sp, nil), nil
	}
	attachDirect(view, sp, ep)

	search := shortestPath(ctx, view, sp.node, ep.node, net.cfg.MaxIterations, net.weightFunc(profile))
	switch search.status {
	case SEARCH_EXCEEDED:
		return failure(REASON_SEARCH_EXCEEDED, sp, ep), nil
	case SEARCH_UNREACHABLE:
		return failure(REASON_NO_PATH, sp, ep), nil
	}
	return net.assemble(sp, ep, search), nil
}

// assemble converts found path into result with metrics
func (net *Network) assemble(sp, ep *snapPoint, search searchResult) *Result {
	startInfo := &SnapInfo{Requested: sp.requested, SnappedNode: sp.point, OffsetMeters: sp.offset, Fallback: sp.fallback}
	endInfo := &SnapInfo{Requested: ep.requested, SnappedNode: ep.point, OffsetMeters: ep.offset, Fallback: ep.fallback}
	edges := search.edges

	polyline := []GeoPoint{}
	segments := make([]EdgeInfo, 0, len(edges))
	issueCounts := make(map[string]int)
	totalDistance := 0.0
	scoredLength := 0.0
	scoreSum := 0.0
	plainScoreSum := 0.0
	scored := 0
	accessible := 0
	for i := range edges {
		edge := &edges[i]
		polyline = appendDistinct(polyline, edge.Geom...)
		totalDistance += edge.LengthMeters
		segments = append(segments, edgeInfoFrom(edge, search.weights[i]))
		if edge.Kind == EDGE_WELD {
			continue
		}
		scored++
		scoredLength += edge.LengthMeters
		scoreSum += edge.Segment.Score * edge.LengthMeters
		plainScoreSum += edge.Segment.Score
		if edge.Segment.Accessible {
			accessible++
		}
		for _, issue := range edge.Segment.Issues {
			issueCounts[issue]++
		}
	}
	if len(polyline) == 0 {
		polyline = append(polyline, startInfo.SnappedNode)
	}

	metrics := &RouteMetrics{
		TotalDistanceMeters:    totalDistance,
		TotalCost:              search.cost,
		StartDistanceToNetwork: startInfo.OffsetMeters,
		EndDistanceToNetwork:   endInfo.OffsetMeters,
	}
	if scoredLength > 0 {
		metrics.AverageAccessibility = scoreSum / scoredLength
	} else if scored > 0 {
		metrics.AverageAccessibility = plainScoreSum / float64(scored)
	}
	if scored > 0 {
		metrics.AccessibleSegmentRatio = float64(accessible) / float64(scored)
	}
	if totalDistance > 0 {
		metrics.EstimatedDurationMinutes = totalDistance / WalkingSpeed / 60.0
	}

	res := &Result{
		Success:  true,
		Start:    startInfo,
		End:      endInfo,
		Polyline: polyline,
		Segments: segments,
		Metrics:  metrics,
	}
	if len(issueCounts) > 0 {
		res.IssueCounts = issueCounts
	}
	res.Warnings = routeWarnings(res)
	return res
}

func edgeInfoFrom(edge *Edge, weight float64) EdgeInfo {
	return EdgeInfo{
		ID:         edge.Segment.ID,
		Kind:       edge.Kind,
		Direction:  edge.Direction,
		Score:      edge.Segment.Score,
		Accessible: edge.Segment.Accessible,
		Confidence: edge.Segment.Confidence,
		Issues:     edge.Segment.Issues,
		Tags:       edge.Segment.Tags,
		Length:     edge.LengthMeters,
		Weight:     weight,
		Path:       edge.Geom,
	}
}

// routeWarnings returns human readable notes about weak spots of the route
func routeWarnings(res *Result) []string {
	warnings := []string{}
	if res.Metrics.StartDistanceToNetwork > farFromNetworkMeters {
		warnings = append(warnings, "Start point is far from the accessible network; expect an unsnapped approach")
	}
	if res.Metrics.EndDistanceToNetwork > farFromNetworkMeters {
		warnings = append(warnings, "Destination is far from the accessible network; final meters may be unverified")
	}
	if len(res.Segments) == 0 {
		warnings = append(warnings, "No detailed segments returned for this route")
	}
	if len(warnings) == 0 {
		return nil
	}
	return warnings
}

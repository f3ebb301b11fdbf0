package accessroute

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func relaxedProfile() RouteOptions {
	return RouteOptions{
		AllowLimitedSegments: true,
		AllowNonAccessible:   true,
		LimitedThreshold:     0.5,
	}
}

func TestRouteStraightSegment(t *testing.T) {
	p0 := testOrigin
	p1 := offsetPoint(testOrigin, 0, 200)
	router := NewRouter([]AccessibilitySegment{testSegment("street", 1.0, true, nil, p0, p1)})

	start := offsetPoint(testOrigin, 5, 50)
	end := offsetPoint(testOrigin, -5, 150)
	res, err := router.Route(context.Background(), start, end, DefaultRouteOptions())
	if err != nil {
		t.Error(err)
		return
	}
	if !res.Success {
		t.Errorf("Route must be found, but got reason '%s'", res.Reason)
		return
	}
	straight := greatCircleDistance(start, end)
	if res.Metrics.TotalDistanceMeters > straight || res.Metrics.TotalDistanceMeters < straight-1.0 {
		t.Errorf("Route distance must be about %f, but got %f", straight, res.Metrics.TotalDistanceMeters)
	}
	if res.Metrics.AccessibleSegmentRatio != 1.0 {
		t.Errorf("Accessible segment ratio must be %f, but got %f", 1.0, res.Metrics.AccessibleSegmentRatio)
	}
	if Round(res.Metrics.AverageAccessibility, 1e-9) != Round(1.0, 1e-9) {
		t.Errorf("Average accessibility must be %f, but got %f", 1.0, res.Metrics.AverageAccessibility)
	}
	if Round(res.Start.OffsetMeters, 0.1) != Round(5.0, 0.1) || Round(res.End.OffsetMeters, 0.1) != Round(5.0, 0.1) {
		t.Errorf("Offsets must be %f, but got %f and %f", 5.0, res.Start.OffsetMeters, res.End.OffsetMeters)
	}
	if res.Start.Fallback || res.End.Fallback {
		t.Errorf("Points close to the segment must not use fallback")
	}
	if len(res.Polyline) < 2 {
		t.Errorf("Polyline must have at least %d points, but got %d", 2, len(res.Polyline))
	}
	if res.Polyline[0] != res.Start.SnappedNode || res.Polyline[len(res.Polyline)-1] != res.End.SnappedNode {
		t.Errorf("Polyline must go between snapped points")
	}
	duration := res.Metrics.TotalDistanceMeters / WalkingSpeed / 60.0
	if Round(res.Metrics.EstimatedDurationMinutes, 1e-9) != Round(duration, 1e-9) {
		t.Errorf("Duration must be %f, but got %f", duration, res.Metrics.EstimatedDurationMinutes)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Route must have no warnings, but got %v", res.Warnings)
	}
}

func TestRouteStrictProfileAvoidsSteps(t *testing.T) {
	p0 := testOrigin
	p1 := offsetPoint(testOrigin, 0, 10)
	p2 := offsetPoint(testOrigin, 0, 110)
	p3 := offsetPoint(testOrigin, 0, 120)
	segments := []AccessibilitySegment{
		testSegment("a", 0.9, true, nil, p0, p1),
		testSegment("steps", 0.0, false, []string{ISSUE_STEPS}, p1, p2),
		testSegment("c", 0.9, true, nil, p2, p3),
	}
	router := NewRouter(segments)
	start := offsetPoint(testOrigin, 2, 5)
	end := offsetPoint(testOrigin, 2, 115)

	strict, err := router.Route(context.Background(), start, end, DefaultRouteOptions())
	if err != nil {
		t.Error(err)
		return
	}
	if strict.Success || strict.Reason != REASON_NO_PATH {
		t.Errorf("Strict profile must give '%s', but got success=%t reason='%s'", REASON_NO_PATH, strict.Success, strict.Reason)
	}

	relaxed, err := router.Route(context.Background(), start, end, relaxedProfile())
	if err != nil {
		t.Error(err)
		return
	}
	if !relaxed.Success {
		t.Errorf("Relaxed profile must find route, but got reason '%s'", relaxed.Reason)
		return
	}
	if relaxed.IssueCounts[ISSUE_STEPS] != 1 {
		t.Errorf("Route must pass steps once, but got %d", relaxed.IssueCounts[ISSUE_STEPS])
	}
	if relaxed.Metrics.AverageAccessibility >= AccessibleThreshold {
		t.Errorf("Average accessibility must be below %f, but got %f", AccessibleThreshold, relaxed.Metrics.AverageAccessibility)
	}
	if Round(relaxed.Metrics.TotalDistanceMeters, 0.5) != Round(110.0, 0.5) {
		t.Errorf("Route distance must be about %f, but got %f", 110.0, relaxed.Metrics.TotalDistanceMeters)
	}
}

func TestRouteFallback(t *testing.T) {
	p0 := testOrigin
	p1 := offsetPoint(testOrigin, 0, 100)
	router := NewRouter([]AccessibilitySegment{testSegment("street", 1.0, true, nil, p0, p1)})
	start := offsetPoint(testOrigin, 200, 0)
	end := offsetPoint(testOrigin, 3, 90)
	res, err := router.Route(context.Background(), start, end, DefaultRouteOptions())
	if err != nil {
		t.Error(err)
		return
	}
	if !res.Success {
		t.Errorf("Route must be found, but got reason '%s'", res.Reason)
		return
	}
	if !res.Start.Fallback {
		t.Errorf("Start must be snapped by fallback")
	}
	if res.Metrics.StartDistanceToNetwork <= DEFAULT_ACCEPTANCE_RADIUS {
		t.Errorf("Start distance to network must exceed %f, but got %f", DEFAULT_ACCEPTANCE_RADIUS, res.Metrics.StartDistanceToNetwork)
	}
	if len(res.Warnings) == 0 {
		t.Errorf("Route from far point must have warning")
	}
	if res.Start.SnappedNode != p0 {
		t.Errorf("Start must be snapped to %v, but got %v", p0, res.Start.SnappedNode)
	}
}

func TestRouteSamePoint(t *testing.T) {
	router := NewRouter([]AccessibilitySegment{testSegment("street", 1.0, true, nil, testOrigin, offsetPoint(testOrigin, 0, 100))})
	pt := offsetPoint(testOrigin, 2, 40)
	res, err := router.Route(context.Background(), pt, pt, DefaultRouteOptions())
	if err != nil {
		t.Error(err)
		return
	}
	if !res.Success {
		t.Errorf("Route must be found, but got reason '%s'", res.Reason)
		return
	}
	if res.Metrics.TotalDistanceMeters != 0 || res.Metrics.TotalCost != 0 {
		t.Errorf("Route to itself must have zero distance and cost, but got %f and %f", res.Metrics.TotalDistanceMeters, res.Metrics.TotalCost)
	}
	if len(res.Polyline) != 1 {
		t.Errorf("Polyline must have %d point, but got %d", 1, len(res.Polyline))
	}
	if len(res.Segments) != 0 {
		t.Errorf("Route to itself must have no segments, but got %d", len(res.Segments))
	}
}

func TestRouteEmptyNetwork(t *testing.T) {
	router := NewRouter(nil)
	res, err := router.Route(context.Background(), testOrigin, offsetPoint(testOrigin, 0, 100), DefaultRouteOptions())
	if err != nil {
		t.Error(err)
		return
	}
	if res.Success || res.Reason != REASON_NO_SNAPPING_NODES {
		t.Errorf("Empty network must give '%s', but got success=%t reason='%s'", REASON_NO_SNAPPING_NODES, res.Success, res.Reason)
	}
}

func TestRouteSearchBound(t *testing.T) {
	net, ids := prepareSquareNetwork()
	start := offsetPoint(net.graph.Node(ids[0]), 0, 30)
	end := offsetPoint(net.graph.Node(ids[2]), 0, -30)
	router := NewRouter(nil, WithMaxIterations(1))
	router.Reload([]AccessibilitySegment{
		testSegment("ab", 1.0, true, nil, net.graph.Node(ids[0]), net.graph.Node(ids[1])),
		testSegment("bc", 1.0, true, nil, net.graph.Node(ids[1]), net.graph.Node(ids[2])),
		testSegment("cd", 1.0, true, nil, net.graph.Node(ids[2]), net.graph.Node(ids[3])),
		testSegment("da", 1.0, true, nil, net.graph.Node(ids[3]), net.graph.Node(ids[0])),
	})
	res, err := router.Route(context.Background(), start, end, DefaultRouteOptions())
	if err != nil {
		t.Error(err)
		return
	}
	if res.Success || res.Reason != REASON_SEARCH_EXCEEDED {
		t.Errorf("Search must give '%s', but got success=%t reason='%s'", REASON_SEARCH_EXCEEDED, res.Success, res.Reason)
	}
}

func TestRouteContractViolations(t *testing.T) {
	router := NewRouter([]AccessibilitySegment{testSegment("street", 1.0, true, nil, testOrigin, offsetPoint(testOrigin, 0, 100))})
	_, err := router.Route(context.Background(), GeoPoint{Lat: 95, Lon: 37.6}, testOrigin, DefaultRouteOptions())
	if errors.Cause(err) != ErrInvalidCoordinate {
		t.Errorf("Error must be %v, but got %v", ErrInvalidCoordinate, err)
	}
	profile := DefaultRouteOptions()
	profile.LimitedThreshold = 1.5
	_, err = router.Route(context.Background(), testOrigin, offsetPoint(testOrigin, 0, 50), profile)
	if errors.Cause(err) != ErrInvalidThreshold {
		t.Errorf("Error must be %v, but got %v", ErrInvalidThreshold, err)
	}
}

func prepareGridSegments(size int, step float64) []AccessibilitySegment {
	segments := []AccessibilitySegment{}
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			pt := offsetPoint(testOrigin, float64(i)*step, float64(j)*step)
			score := 0.5 + 0.5*float64((i*7+j*3)%5)/4
			passable := score >= AccessibleThreshold
			if j+1 < size {
				segments = append(segments, testSegment("h", score, passable, nil, pt, offsetPoint(testOrigin, float64(i)*step, float64(j+1)*step)))
			}
			if i+1 < size {
				segments = append(segments, testSegment("v", score, passable, nil, pt, offsetPoint(testOrigin, float64(i+1)*step, float64(j)*step)))
			}
		}
	}
	return segments
}

func TestRouteConcurrent(t *testing.T) {
	router := NewRouter(prepareGridSegments(8, 80))
	type query struct {
		start GeoPoint
		end   GeoPoint
	}
	queries := []query{}
	for i := 0; i < 6; i++ {
		queries = append(queries, query{
			start: offsetPoint(testOrigin, 3+float64(i)*70, 25+float64(i)*10),
			end:   offsetPoint(testOrigin, 560-float64(i)*60, 7+float64(i)*90),
		})
	}
	net, err := router.Network()
	if err != nil {
		t.Error(err)
		return
	}
	edgesBefore := net.graph.EdgesNum()
	weightBefore := net.graph.TotalWeight()

	expected := make([]*Result, len(queries))
	for i, q := range queries {
		expected[i], err = router.Route(context.Background(), q.start, q.end, DefaultRouteOptions())
		if err != nil {
			t.Error(err)
			return
		}
		if !expected[i].Success {
			t.Errorf("Route #%d must be found, but got reason '%s'", i, expected[i].Reason)
		}
	}

	results := make([]*Result, len(queries)*10)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q := queries[i%len(queries)]
			results[i], _ = router.Route(context.Background(), q.start, q.end, DefaultRouteOptions())
		}(i)
	}
	wg.Wait()

	for i, res := range results {
		correct := expected[i%len(queries)]
		if res == nil || res.Success != correct.Success {
			t.Errorf("Concurrent route #%d must match sequential one", i)
			continue
		}
		if !res.Success {
			continue
		}
		if res.Metrics.TotalCost != correct.Metrics.TotalCost || res.Metrics.TotalDistanceMeters != correct.Metrics.TotalDistanceMeters {
			t.Errorf("Concurrent route #%d must cost %f (%f m), but got %f (%f m)", i, correct.Metrics.TotalCost, correct.Metrics.TotalDistanceMeters, res.Metrics.TotalCost, res.Metrics.TotalDistanceMeters)
		}
	}
	if net.graph.EdgesNum() != edgesBefore || net.graph.TotalWeight() != weightBefore {
		t.Errorf("Shared graph must not be modified by requests")
	}
}

func TestRouterNetworkCache(t *testing.T) {
	router := NewRouter(prepareGridSegments(4, 50))
	networks := make([]*Network, 16)
	var wg sync.WaitGroup
	for i := range networks {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			networks[i], _ = router.Network()
		}(i)
	}
	wg.Wait()
	for i := range networks {
		if networks[i] == nil || networks[i] != networks[0] {
			t.Errorf("Network #%d must be shared", i)
		}
	}

	router.Reload(prepareGridSegments(3, 50))
	reloaded, err := router.Network()
	if err != nil {
		t.Error(err)
		return
	}
	if reloaded == networks[0] {
		t.Errorf("Reload must invalidate built network")
	}
	if reloaded.graph.NodesNum() != 9 {
		t.Errorf("Number of nodes must be %d, but got %d", 9, reloaded.graph.NodesNum())
	}
	if networks[0].graph.NodesNum() != 16 {
		t.Errorf("Previous network must keep %d nodes, but got %d", 16, networks[0].graph.NodesNum())
	}
}

func TestRouterProfilesShareNetwork(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewRouterCollector(reg)
	if err != nil {
		t.Error(err)
		return
	}
	router := NewRouter(prepareGridSegments(4, 50), WithCollector(collector))
	start := offsetPoint(testOrigin, 2, 10)
	end := offsetPoint(testOrigin, 148, 140)
	for i := 0; i < 200; i++ {
		profile := RouteOptions{
			AllowLimitedSegments: i%2 == 0,
			AllowNonAccessible:   i%3 == 0,
			LimitedThreshold:     float64(i) / 1000,
		}
		res, err := router.Route(context.Background(), start, end, profile)
		if err != nil {
			t.Error(err)
			return
		}
		if !res.Success {
			t.Errorf("Route #%d must be found, but got reason '%s'", i, res.Reason)
		}
	}
	if value := testutil.ToFloat64(collector.GraphBuilds); value != 1 {
		t.Errorf("Number of builds must be %f, but got %f", 1.0, value)
	}
}

func TestRouteStrictProfileNearSteps(t *testing.T) {
	p0 := testOrigin
	p1 := offsetPoint(testOrigin, 0, 10)
	p2 := offsetPoint(testOrigin, 0, 110)
	p3 := offsetPoint(testOrigin, 0, 120)
	p4 := offsetPoint(testOrigin, 0, 130)
	segments := []AccessibilitySegment{
		testSegment("a", 0.9, true, nil, p0, p1),
		testSegment("steps", 0.0, false, []string{ISSUE_STEPS}, p1, p2),
		testSegment("c1", 0.9, true, nil, p2, p3),
		testSegment("c2", 0.9, true, nil, p3, p4),
	}
	router := NewRouter(segments)
	// middle of the steps, far from both ends
	start := offsetPoint(testOrigin, 2, 60)
	end := offsetPoint(testOrigin, 1, 125)

	strict, err := router.Route(context.Background(), start, end, DefaultRouteOptions())
	if err != nil {
		t.Error(err)
		return
	}
	if strict.Success || strict.Reason != REASON_NO_PATH {
		t.Errorf("Strict profile must give '%s', but got success=%t reason='%s'", REASON_NO_PATH, strict.Success, strict.Reason)
	}
	if strict.Start == nil || strict.Start.Fallback {
		t.Errorf("Start near steps must be snapped onto steps, not by fallback")
	} else if Round(strict.Start.OffsetMeters, 0.1) != Round(2.0, 0.1) {
		t.Errorf("Start offset must be %f, but got %f", 2.0, strict.Start.OffsetMeters)
	}

	relaxed, err := router.Route(context.Background(), start, end, relaxedProfile())
	if err != nil {
		t.Error(err)
		return
	}
	if !relaxed.Success {
		t.Errorf("Relaxed profile must find route, but got reason '%s'", relaxed.Reason)
		return
	}
	if relaxed.IssueCounts[ISSUE_STEPS] == 0 {
		t.Errorf("Route must pass steps")
	}
}

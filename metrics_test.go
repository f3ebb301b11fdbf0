package accessroute

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func histogramSampleCount(t *testing.T, histogram prometheus.Histogram) uint64 {
	t.Helper()
	metric := &dto.Metric{}
	if err := histogram.Write(metric); err != nil {
		t.Fatalf("Can't write histogram: %v", err)
	}
	return metric.GetHistogram().GetSampleCount()
}

func TestRouterCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewRouterCollector(reg)
	if err != nil {
		t.Error(err)
		return
	}
	segments := []AccessibilitySegment{testSegment("street", 1.0, true, nil, testOrigin, offsetPoint(testOrigin, 0, 100))}
	router := NewRouter(segments, WithCollector(collector))

	_, err = router.Route(context.Background(), offsetPoint(testOrigin, 2, 10), offsetPoint(testOrigin, 2, 90), DefaultRouteOptions())
	if err != nil {
		t.Error(err)
		return
	}
	_, err = router.Route(context.Background(), offsetPoint(testOrigin, 300, 0), offsetPoint(testOrigin, 2, 90), DefaultRouteOptions())
	if err != nil {
		t.Error(err)
		return
	}
	_, err = router.Route(context.Background(), GeoPoint{Lat: 100, Lon: 0}, testOrigin, DefaultRouteOptions())
	if err == nil {
		t.Errorf("Invalid coordinate must give an error")
	}

	if value := testutil.ToFloat64(collector.RouteRequests.WithLabelValues("success")); value != 2 {
		t.Errorf("Number of successful routes must be %f, but got %f", 2.0, value)
	}
	if value := testutil.ToFloat64(collector.RouteRequests.WithLabelValues("error")); value != 1 {
		t.Errorf("Number of failed requests must be %f, but got %f", 1.0, value)
	}
	if value := testutil.ToFloat64(collector.SnapFallbacks); value != 1 {
		t.Errorf("Number of fallbacks must be %f, but got %f", 1.0, value)
	}
	if value := testutil.ToFloat64(collector.GraphBuilds); value != 1 {
		t.Errorf("Number of builds must be %f, but got %f", 1.0, value)
	}
	if value := testutil.ToFloat64(collector.GraphNodes); value != 2 {
		t.Errorf("Number of nodes must be %f, but got %f", 2.0, value)
	}
	if count := histogramSampleCount(t, collector.RouteDurations); count != 3 {
		t.Errorf("Number of observed durations must be %d, but got %d", 3, count)
	}
}

func TestRouterCollectorReuse(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewRouterCollector(reg)
	if err != nil {
		t.Error(err)
		return
	}
	second, err := NewRouterCollector(reg)
	if err != nil {
		t.Error(err)
		return
	}
	first.GraphBuilds.Inc()
	if value := testutil.ToFloat64(second.GraphBuilds); value != 1 {
		t.Errorf("Collectors on the same registry must share metrics, but got %f", value)
	}

	var nilCollector *RouterCollector
	nilCollector.observeRoute(nil, nil, 0)
	nilCollector.observeBuild(nil)
}

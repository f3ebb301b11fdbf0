package accessroute

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RouterCollector bundles Prometheus metrics of routing and network builds
type RouterCollector struct {
	RouteRequests  *prometheus.CounterVec
	RouteDurations prometheus.Histogram
	GraphBuilds    prometheus.Counter
	GraphNodes     prometheus.Gauge
	GraphEdges     prometheus.Gauge
	SnapFallbacks  prometheus.Counter
}

// NewRouterCollector registers metrics against the provided registerer, defaulting to the global
// Prometheus registry when nil. Metrics already registered by another collector are reused
func NewRouterCollector(reg prometheus.Registerer) (*RouterCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "accessroute_route_requests_total",
		Help: "Total number of routing requests, labeled by result (success or failure reason).",
	}, []string{"result"}), "accessroute_route_requests_total")
	if err != nil {
		return nil, err
	}
	durations, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "accessroute_route_duration_seconds",
		Help:    "Routing latency in seconds, including snapping and path search.",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
	}), "accessroute_route_duration_seconds")
	if err != nil {
		return nil, err
	}
	builds, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "accessroute_graph_builds_total",
		Help: "Total number of network builds.",
	}), "accessroute_graph_builds_total")
	if err != nil {
		return nil, err
	}
	nodes, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "accessroute_graph_nodes",
		Help: "Number of nodes in the most recently built network.",
	}), "accessroute_graph_nodes")
	if err != nil {
		return nil, err
	}
	edges, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "accessroute_graph_edges",
		Help: "Number of directed edges in the most recently built network.",
	}), "accessroute_graph_edges")
	if err != nil {
		return nil, err
	}
	fallbacks, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "accessroute_snap_fallbacks_total",
		Help: "Total number of query points snapped to the largest component instead of a nearby edge.",
	}), "accessroute_snap_fallbacks_total")
	if err != nil {
		return nil, err
	}
	return &RouterCollector{
		RouteRequests:  requests,
		RouteDurations: durations,
		GraphBuilds:    builds,
		GraphNodes:     nodes,
		GraphEdges:     edges,
		SnapFallbacks:  fallbacks,
	}, nil
}

// observeBuild records finished network build
func (c *RouterCollector) observeBuild(net *Network) {
	if c == nil {
		return
	}
	c.GraphBuilds.Inc()
	c.GraphNodes.Set(float64(net.graph.NodesNum()))
	c.GraphEdges.Set(float64(net.graph.EdgesNum()))
}

// observeRoute records routing outcome. Contract violations are labeled as "error"
func (c *RouterCollector) observeRoute(res *Result, err error, took time.Duration) {
	if c == nil {
		return
	}
	c.RouteDurations.Observe(took.Seconds())
	switch {
	case err != nil:
		c.RouteRequests.WithLabelValues("error").Inc()
	case res.Success:
		c.RouteRequests.WithLabelValues("success").Inc()
	default:
		c.RouteRequests.WithLabelValues(string(res.Reason)).Inc()
	}
	if res == nil {
		return
	}
	if res.Start != nil && res.Start.Fallback {
		c.SnapFallbacks.Inc()
	}
	if res.End != nil && res.End.Fallback {
		c.SnapFallbacks.Inc()
	}
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, histogram prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(histogram); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return histogram, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

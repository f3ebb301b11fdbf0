package accessroute

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// routerState is an immutable segment snapshot plus the network built from it
type routerState struct {
	version  uint64
	segments []AccessibilitySegment
	network  atomic.Pointer[Network]
}

// Router serves routing requests over the current segment snapshot.
// Network is built lazily, at most once per snapshot, and shared by concurrent requests of every profile
type Router struct {
	state atomic.Pointer[routerState]
	group singleflight.Group

	costs            CostModel
	gridSize         float64
	keyPrecision     float64
	weldTolerance    float64
	acceptanceRadius float64
	maxCandidates    int
	maxIterations    int
	verbose          bool
	collector        *RouterCollector
}

// String returns pretty printed value for Router
func (router *Router) String() string {
	st := router.state.Load()
	return fmt.Sprintf(`
Router parameters:
	segments: %d
	snapshot version: %d
	grid_size: %.0f
	key_precision: %g
	weld_tolerance: %.2f
	acceptance_radius: %.2f
	max_candidates: %d
	max_iterations: %d
	verbose: %t
	costs: %s
	`,
		len(st.segments),
		st.version,
		router.gridSize,
		router.keyPrecision,
		router.weldTolerance,
		router.acceptanceRadius,
		router.maxCandidates,
		router.maxIterations,
		router.verbose,
		router.costs,
	)
}

// NewRouter creates router for given segments
func NewRouter(segments []AccessibilitySegment, options ...func(*Router)) *Router {
	router := &Router{
		costs:            DefaultCostModel(),
		gridSize:         DEFAULT_GRID_SIZE,
		keyPrecision:     DEFAULT_KEY_PRECISION,
		weldTolerance:    DEFAULT_WELD_TOLERANCE,
		acceptanceRadius: DEFAULT_ACCEPTANCE_RADIUS,
		maxCandidates:    DEFAULT_MAX_CANDIDATES,
		maxIterations:    DEFAULT_MAX_ITERATIONS,
	}
	for _, option := range options {
		option(router)
	}
	router.state.Store(&routerState{
		version:  1,
		segments: segments,
	})
	return router
}

func WithCostModel(costs CostModel) func(*Router) {
	return func(router *Router) {
		router.costs = costs
	}
}

func WithGridSize(gridSize float64) func(*Router) {
	return func(router *Router) {
		router.gridSize = gridSize
	}
}

func WithKeyPrecision(keyPrecision float64) func(*Router) {
	return func(router *Router) {
		router.keyPrecision = keyPrecision
	}
}

func WithWeldTolerance(weldTolerance float64) func(*Router) {
	return func(router *Router) {
		router.weldTolerance = weldTolerance
	}
}

func WithAcceptanceRadius(acceptanceRadius float64) func(*Router) {
	return func(router *Router) {
		router.acceptanceRadius = acceptanceRadius
	}
}

func WithMaxCandidates(maxCandidates int) func(*Router) {
	return func(router *Router) {
		router.maxCandidates = maxCandidates
	}
}

func WithMaxIterations(maxIterations int) func(*Router) {
	return func(router *Router) {
		router.maxIterations = maxIterations
	}
}

func WithVerbose(verbose bool) func(*Router) {
	return func(router *Router) {
		router.verbose = verbose
	}
}

func WithCollector(collector *RouterCollector) func(*Router) {
	return func(router *Router) {
		router.collector = collector
	}
}

// Reload swaps segment snapshot. Requests already running finish on the previous snapshot
func (router *Router) Reload(segments []AccessibilitySegment) {
	for {
		current := router.state.Load()
		next := &routerState{
			version:  current.version + 1,
			segments: segments,
		}
		if router.state.CompareAndSwap(current, next) {
			return
		}
	}
}

func (router *Router) buildConfig() BuildConfig {
	return BuildConfig{
		Costs:            router.costs,
		GridSize:         router.gridSize,
		KeyPrecision:     router.keyPrecision,
		WeldTolerance:    router.weldTolerance,
		AcceptanceRadius: router.acceptanceRadius,
		MaxCandidates:    router.maxCandidates,
		MaxIterations:    router.maxIterations,
		Verbose:          router.verbose,
	}
}

// Network returns network of the current snapshot, building it on first use
func (router *Router) Network() (*Network, error) {
	st := router.state.Load()
	if net := st.network.Load(); net != nil {
		return net, nil
	}
	netI, err, _ := router.group.Do(strconv.FormatUint(st.version, 10), func() (interface{}, error) {
		if net := st.network.Load(); net != nil {
			return net, nil
		}
		net := BuildNetwork(st.segments, router.buildConfig())
		st.network.Store(net)
		router.collector.observeBuild(net)
		return net, nil
	})
	if err != nil {
		return nil, err
	}
	net, ok := netI.(*Network)
	if !ok {
		return nil, fmt.Errorf("Unexpected type of built network: %T", netI)
	}
	return net, nil
}

// Route finds the lowest-cost path between two points for the profile
func (router *Router) Route(ctx context.Context, start, end GeoPoint, profile RouteOptions) (*Result, error) {
	st := time.Now()
	net, err := router.Network()
	if err != nil {
		err = errors.Wrap(err, "Can't prepare network")
		router.collector.observeRoute(nil, err, time.Since(st))
		return nil, err
	}
	res, err := net.Route(ctx, start, end, profile)
	router.collector.observeRoute(res, err, time.Since(st))
	return res, err
}

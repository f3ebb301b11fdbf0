package accessroute

import (
	"fmt"
	"math"
)

// RouteOptions is the routing profile
type RouteOptions struct {
	// AllowLimitedSegments enables moderate (instead of severe) penalty for non-accessible segments
	// with score above LimitedThreshold
	AllowLimitedSegments bool `json:"allowLimitedSegments"`
	// AllowNonAccessible keeps barrier segments (steps, wheelchair=no) in the graph. Strict profiles drop them
	AllowNonAccessible bool `json:"allowNonAccessible"`
	// LimitedThreshold is the score splitting limited segments from severe ones. Should be in [0, 1]
	LimitedThreshold float64 `json:"limitedThreshold"`
}

// DefaultRouteOptions returns strict wheelchair profile
func DefaultRouteOptions() RouteOptions {
	return RouteOptions{
		AllowLimitedSegments: true,
		AllowNonAccessible:   false,
		LimitedThreshold:     0.5,
	}
}

// Validate checks profile contract
func (opts RouteOptions) Validate() error {
	if math.IsNaN(opts.LimitedThreshold) || opts.LimitedThreshold < 0 || opts.LimitedThreshold > 1 {
		return ErrInvalidThreshold
	}
	return nil
}

// String returns pretty printed value for RouteOptions
func (opts RouteOptions) String() string {
	return fmt.Sprintf("allow_limited_segments: %t | allow_non_accessible: %t | limited_threshold: %.2f", opts.AllowLimitedSegments, opts.AllowNonAccessible, opts.LimitedThreshold)
}

const (
	DEFAULT_GRID_SIZE         = 1000
	DEFAULT_KEY_PRECISION     = 1e-6
	DEFAULT_WELD_TOLERANCE    = 1.0
	DEFAULT_ACCEPTANCE_RADIUS = 30.0
	DEFAULT_MAX_CANDIDATES    = 5
	DEFAULT_MAX_ITERATIONS    = 5000000
)

// BuildConfig is the set of parameters of a single network build. Routing profiles are not part of it:
// one network serves every profile
type BuildConfig struct {
	Costs CostModel
	// GridSize is the number of spatial index cells per degree
	GridSize float64
	// KeyPrecision is the rounding step (degrees) of node coordinate keys
	KeyPrecision float64
	// WeldTolerance is the maximum distance (meters) between nodes to be welded. Zero disables welding
	WeldTolerance    float64
	AcceptanceRadius float64
	MaxCandidates    int
	MaxIterations    int
	Verbose          bool
}

// DefaultBuildConfig returns default build parameters
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		Costs:            DefaultCostModel(),
		GridSize:         DEFAULT_GRID_SIZE,
		KeyPrecision:     DEFAULT_KEY_PRECISION,
		WeldTolerance:    DEFAULT_WELD_TOLERANCE,
		AcceptanceRadius: DEFAULT_ACCEPTANCE_RADIUS,
		MaxCandidates:    DEFAULT_MAX_CANDIDATES,
		MaxIterations:    DEFAULT_MAX_ITERATIONS,
	}
}

// normalized replaces unset numeric parameters with defaults
func (cfg BuildConfig) normalized() BuildConfig {
	if cfg.GridSize <= 0 {
		cfg.GridSize = DEFAULT_GRID_SIZE
	}
	if cfg.KeyPrecision <= 0 {
		cfg.KeyPrecision = DEFAULT_KEY_PRECISION
	}
	if cfg.WeldTolerance < 0 {
		cfg.WeldTolerance = 0
	}
	if cfg.AcceptanceRadius <= 0 {
		cfg.AcceptanceRadius = DEFAULT_ACCEPTANCE_RADIUS
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = DEFAULT_MAX_CANDIDATES
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DEFAULT_MAX_ITERATIONS
	}
	if cfg.Costs.IssuePenalties == nil {
		cfg.Costs = DefaultCostModel()
	}
	return cfg
}

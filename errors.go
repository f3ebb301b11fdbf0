package accessroute

import "github.com/pkg/errors"

var (
	// ErrInvalidCoordinate is returned when query point is not a finite geographic coordinate
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrInvalidThreshold is returned when limited threshold is out of [0, 1] range
	ErrInvalidThreshold = errors.New("limited threshold should be in [0, 1] range")
	// ErrNoSegments is returned by loaders when input holds no segments collection
	ErrNoSegments = errors.New("no segments provided")
)

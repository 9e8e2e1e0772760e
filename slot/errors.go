package slot

import "errors"

var (
	// ErrInvalidRequest is returned before any ledger read when a request is
	// malformed: non-positive units, unknown doctor, or a bucket off the grid.
	ErrInvalidRequest = errors.New("invalid reservation request")

	// ErrCapacityViolation means a caller pushed a bucket above its capacity
	// without going through the allocator. It is a programming error.
	ErrCapacityViolation = errors.New("bucket capacity violated")

	// ErrInsufficientCapacity is only reachable when an overflow horizon is
	// configured and no room was found within it.
	ErrInsufficientCapacity = errors.New("insufficient capacity")
)

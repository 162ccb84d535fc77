package animator

import "log/slog"

// ControllerBuilderOption is a functional option for configuring a Controller during construction.
type ControllerBuilderOption func(*controller)

// WithLogger is an option builder that sets the logger used for cache diagnostics.
//
// Parameters:
//   - logger: the logger to use; nil keeps slog.Default()
//
// Returns:
//   - ControllerBuilderOption: a function that applies the logger option to a controller
func WithLogger(logger *slog.Logger) ControllerBuilderOption {
	return func(c *controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCacheCapacity is an option builder that pre-sizes the pose cache.
//
// Parameters:
//   - n: the expected number of distinct poses per frame
//
// Returns:
//   - ControllerBuilderOption: a function that applies the capacity option to a controller
func WithCacheCapacity(n int) ControllerBuilderOption {
	return func(c *controller) {
		if n > 0 {
			c.cache = make(map[uint64]*Pose, n)
		}
	}
}

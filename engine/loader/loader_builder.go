package loader

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithLogger is an option builder that sets the logger used for load events.
//
// Parameters:
//   - logger: the structured logger
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger *slog.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithConcurrency is an option builder that limits how many files LoadAll decodes at once.
//
// Parameters:
//   - n: the maximum number of parallel loads (values below 1 are ignored)
//
// Returns:
//   - LoaderBuilderOption: a function that applies the concurrency option to a loader
func WithConcurrency(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithModel is an option builder that pre-populates the model cache with a model.
//
// Parameters:
//   - key: the cache key for the model
//   - model: the model to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the model option to a loader
func WithModel(key string, model model.Model) LoaderBuilderOption {
	return func(l *loader) {
		l.modelCache[key] = model
	}
}

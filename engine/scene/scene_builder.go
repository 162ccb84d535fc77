package scene

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-anim/engine/game_object"
	"github.com/Carmen-Shannon/oxy-anim/engine/graph"
	"github.com/Carmen-Shannon/oxy-anim/engine/telemetry"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is active. Scenes are active by default.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithObjects adds initial objects to the scene.
// Objects without IDs will be assigned new IDs.
//
// Parameters:
//   - objects: the objects to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithObjects(objects ...game_object.GameObject) SceneBuilderOption {
	return func(s *scene) {
		for _, obj := range objects {
			s.add(obj)
		}
	}
}

// WithUpdateWorkers sets the number of pooled goroutines that evaluate objects during
// Update. Defaults to runtime.NumCPU()-1.
//
// Parameters:
//   - n: the number of update workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithUpdateWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		if n < 1 {
			n = 1
		}
		s.updateWorkers = n
	}
}

// WithObserver sets the transition observer handed to objects added without one.
// Apply it before WithObjects.
//
// Parameters:
//   - o: the observer
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithObserver(o graph.Observer) SceneBuilderOption {
	return func(s *scene) {
		s.observer = o
	}
}

// WithMetrics sets the collectors that record scene updates and transition events.
// Apply it before WithObjects.
//
// Parameters:
//   - m: the metrics set
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithMetrics(m *telemetry.Metrics) SceneBuilderOption {
	return func(s *scene) {
		s.metrics = m
	}
}

// WithLogger sets the scene logger.
//
// Parameters:
//   - logger: the logger; nil keeps slog.Default()
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) SceneBuilderOption {
	return func(s *scene) {
		if logger != nil {
			s.logger = logger
		}
	}
}

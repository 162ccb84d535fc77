package game_object

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/graph"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the ID of the GameObject.
//
// Parameters:
//   - id: unique identifier for the GameObject
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the ID
func WithID(id uint64) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.id = id
	}
}

// WithName sets the display name of the GameObject.
//
// Parameters:
//   - name: the name
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the name
func WithName(name string) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.name = name
	}
}

// WithEnabled sets whether the GameObject is updated by its scene.
//
// Parameters:
//   - enabled: true to update the object, false to skip it
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled.Store(enabled)
	}
}

// WithEphemeral marks the GameObject as ephemeral. Ephemeral objects are updated by
// the scene but not persisted in its registry.
//
// Parameters:
//   - ephemeral: true to mark as ephemeral
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Ephemeral flag
func WithEphemeral(ephemeral bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.ephemeral = ephemeral
	}
}

// WithModel sets the Model for this GameObject.
//
// Parameters:
//   - m: the Model to associate
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Model
func WithModel(m model.Model) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.mdl = m
	}
}

// WithGraph sets the animation graph evaluated by Update.
//
// Parameters:
//   - g: the graph
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the graph
func WithGraph(g graph.Graph) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.graph = g
	}
}

// WithParameters sets the parameter blackboard. Objects sharing a blackboard see the same values.
//
// Parameters:
//   - p: the blackboard
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the parameters
func WithParameters(p *graph.Parameters) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.params = p
	}
}

// WithController sets the pose controller. By default each object creates its own.
//
// Parameters:
//   - c: the controller
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the controller
func WithController(c animator.Controller) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.controller = c
	}
}

// WithObserver sets the receiver of state-machine transition events.
//
// Parameters:
//   - o: the observer
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the observer
func WithObserver(o graph.Observer) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.observer = o
	}
}

// WithLogger sets the logger passed to graph evaluation.
//
// Parameters:
//   - logger: the logger; nil keeps slog.Default()
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the logger
func WithLogger(logger *slog.Logger) GameObjectBuilderOption {
	return func(obj *gameObject) {
		if logger != nil {
			obj.logger = logger
		}
	}
}

// WithRootMotion sets whether root motion extracted by the graph moves the object.
// Enabled by default.
//
// Parameters:
//   - enabled: true to apply root motion
//
// Returns:
//   - GameObjectBuilderOption: functional option to set root-motion application
func WithRootMotion(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.rootMotion = enabled
	}
}

// WithPosition sets the initial world position.
//
// Parameters:
//   - x: the x position
//   - y: the y position
//   - z: the z position
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the initial position
func WithPosition(x, y, z float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.position = mgl32.Vec3{x, y, z}
	}
}

// WithScale sets the initial world scale.
//
// Parameters:
//   - sx: the x scale factor
//   - sy: the y scale factor
//   - sz: the z scale factor
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the initial scale
func WithScale(sx, sy, sz float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.scale = mgl32.Vec3{sx, sy, sz}
	}
}

// WithRotation sets the initial world orientation from Euler angles in radians,
// applied in X, Y, Z order.
//
// Parameters:
//   - rx: the x rotation angle
//   - ry: the y rotation angle
//   - rz: the z rotation angle
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the initial rotation
func WithRotation(rx, ry, rz float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.rotation = mgl32.AnglesToQuat(rx, ry, rz, mgl32.XYZ)
	}
}

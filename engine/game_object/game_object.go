package game_object

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/graph"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

type gameObject struct {
	id        uint64
	name      string
	enabled   atomic.Bool
	ephemeral bool

	mdl        model.Model
	graph      graph.Graph
	controller animator.Controller
	params     *graph.Parameters
	observer   graph.Observer
	logger     *slog.Logger

	// mu guards the world transform and the last evaluated pose.
	mu       sync.RWMutex
	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3
	pose     *animator.Pose
	palette  []mgl32.Mat4
	frame    uint64

	rootMotion bool
}

// GameObject defines the interface for an animated entity.
// A GameObject owns one animation graph, the Controller that caches its poses, and the
// parameter blackboard gameplay code writes to. Update evaluates the graph for one frame,
// moves the object by the pose's root motion, and stores the resulting skinning palette.
//
// Update must not run concurrently with itself; the transform and palette accessors are
// safe to call from other goroutines.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Name returns the object's display name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Enabled returns whether this object is updated by its scene.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Ephemeral returns whether this object is ephemeral.
	// Ephemeral objects are updated but not kept in the scene's registry.
	//
	// Returns:
	//   - bool: true if ephemeral
	Ephemeral() bool

	// Model returns the Model associated with this object, or nil if not set.
	//
	// Returns:
	//   - model.Model: the associated model or nil
	Model() model.Model

	// Graph returns the animation graph evaluated by Update, or nil if not set.
	//
	// Returns:
	//   - graph.Graph: the graph or nil
	Graph() graph.Graph

	// Controller returns the pose controller owned by this object.
	//
	// Returns:
	//   - animator.Controller: the controller
	Controller() animator.Controller

	// Parameters returns the parameter blackboard read by the graph.
	//
	// Returns:
	//   - *graph.Parameters: the blackboard
	Parameters() *graph.Parameters

	// Position returns the world position.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Rotation returns the world orientation.
	//
	// Returns:
	//   - mgl32.Quat: the orientation
	Rotation() mgl32.Quat

	// Scale returns the world scale.
	//
	// Returns:
	//   - mgl32.Vec3: the scale
	Scale() mgl32.Vec3

	// WorldMatrix composes position, rotation and scale into a model matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the T * R * S matrix
	WorldMatrix() mgl32.Mat4

	// Frame returns the number of completed Update calls.
	//
	// Returns:
	//   - uint64: the frame count
	Frame() uint64

	// Pose returns the pose produced by the last Update, or nil before the first one.
	// The pose belongs to the controller's cache and is overwritten by the next Update.
	//
	// Returns:
	//   - *animator.Pose: the last pose
	Pose() *animator.Pose

	// SkinningPalette returns a copy of the skinning matrices from the last Update,
	// one per bone in skeleton order.
	//
	// Returns:
	//   - []mgl32.Mat4: the palette
	SkinningPalette() []mgl32.Mat4

	// PaletteBytes returns the skinning palette as raw little-endian float32 bytes,
	// ready for upload to a GPU storage buffer.
	//
	// Returns:
	//   - []byte: the packed palette
	PaletteBytes() []byte

	// Update evaluates the graph for one frame of dt seconds.
	// A disabled object, or one without a graph or model, is left untouched.
	//
	// Parameters:
	//   - dt: the frame time in seconds
	//
	// Returns:
	//   - *animator.Pose: the evaluated pose, or nil if nothing was evaluated
	Update(dt float32) *animator.Pose

	// SetID sets the object's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uint64)

	// SetEnabled sets whether the object is updated.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetModel assigns a Model to this object and clears the controller's pose cache.
	//
	// Parameters:
	//   - m: the Model to associate
	SetModel(m model.Model)

	// SetGraph assigns the animation graph evaluated by Update.
	//
	// Parameters:
	//   - g: the graph
	SetGraph(g graph.Graph)

	// SetObserver sets the receiver of state-machine transition events.
	//
	// Parameters:
	//   - o: the observer, or nil to discard events
	SetObserver(o graph.Observer)

	// Observer returns the receiver of transition events, or nil.
	//
	// Returns:
	//   - graph.Observer: the observer
	Observer() graph.Observer

	// SetPosition sets the world position.
	//
	// Parameters:
	//   - p: the new position
	SetPosition(p mgl32.Vec3)

	// SetRotation sets the world orientation.
	//
	// Parameters:
	//   - q: the new orientation (normalized before use)
	SetRotation(q mgl32.Quat)

	// SetScale sets the world scale.
	//
	// Parameters:
	//   - s: the new scale
	SetScale(s mgl32.Vec3)
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject configured with the given options.
// Objects start enabled, at the origin, with identity rotation and unit scale.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		rotation:   mgl32.QuatIdent(),
		scale:      mgl32.Vec3{1, 1, 1},
		logger:     slog.Default(),
		rootMotion: true,
	}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}
	if obj.controller == nil {
		obj.controller = animator.NewController(animator.WithLogger(obj.logger))
	}
	if obj.params == nil {
		obj.params = graph.NewParameters()
	}
	return obj
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Name() string {
	return g.name
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Ephemeral() bool {
	return g.ephemeral
}

func (g *gameObject) Model() model.Model {
	return g.mdl
}

func (g *gameObject) Graph() graph.Graph {
	return g.graph
}

func (g *gameObject) Controller() animator.Controller {
	return g.controller
}

func (g *gameObject) Parameters() *graph.Parameters {
	return g.params
}

func (g *gameObject) Position() mgl32.Vec3 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.position
}

func (g *gameObject) Rotation() mgl32.Quat {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.rotation
}

func (g *gameObject) Scale() mgl32.Vec3 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.scale
}

func (g *gameObject) WorldMatrix() mgl32.Mat4 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return common.ComposeTRS(g.position, g.rotation, g.scale)
}

func (g *gameObject) Frame() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.frame
}

func (g *gameObject) Pose() *animator.Pose {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.pose
}

func (g *gameObject) SkinningPalette() []mgl32.Mat4 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]mgl32.Mat4, len(g.palette))
	copy(out, g.palette)
	return out
}

func (g *gameObject) PaletteBytes() []byte {
	palette := g.SkinningPalette()
	raw := common.SliceToBytes(palette)
	out := make([]byte, len(raw))
	copy(out, raw)
	return out
}

func (g *gameObject) Update(dt float32) *animator.Pose {
	if !g.Enabled() || g.graph == nil || g.mdl == nil {
		return nil
	}

	g.mu.RLock()
	frame := g.frame
	observer := g.observer
	g.mu.RUnlock()

	ctx := graph.NewContext(dt, g.controller, g.mdl, g.params)
	ctx.Frame = frame
	ctx.Logger = g.logger
	if observer != nil {
		ctx.Observer = observer
	}

	pose := g.graph.Evaluate(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()

	g.frame++
	g.pose = pose
	g.palette = g.palette[:0]
	if pose == nil {
		return nil
	}
	g.palette = append(g.palette, pose.Global[:pose.BoneCount]...)

	if g.rootMotion && pose.RootMotion != nil {
		rm := pose.RootMotion
		g.position = g.position.Add(g.rotation.Rotate(rm.DeltaTranslation))
		g.rotation = g.rotation.Mul(rm.DeltaRotation).Normalize()
	}
	return pose
}

func (g *gameObject) SetID(id uint64) {
	g.id = id
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetModel(m model.Model) {
	g.mdl = m
	g.controller.Clear()
}

func (g *gameObject) SetGraph(gr graph.Graph) {
	g.graph = gr
}

func (g *gameObject) SetObserver(o graph.Observer) {
	g.mu.Lock()
	g.observer = o
	g.mu.Unlock()
}

func (g *gameObject) Observer() graph.Observer {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.observer
}

func (g *gameObject) SetPosition(p mgl32.Vec3) {
	g.mu.Lock()
	g.position = p
	g.mu.Unlock()
}

func (g *gameObject) SetRotation(q mgl32.Quat) {
	g.mu.Lock()
	g.rotation = q.Normalize()
	g.mu.Unlock()
}

func (g *gameObject) SetScale(s mgl32.Vec3) {
	g.mu.Lock()
	g.scale = s
	g.mu.Unlock()
}

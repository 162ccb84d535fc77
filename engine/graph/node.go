package graph

import (
	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// NodeID is a stable handle to a node within one graph. Zero is never assigned.
type NodeID uint32

// InvalidNodeID is the zero handle.
const InvalidNodeID NodeID = 0

// Node is the capability interface every graph node implements.
// Concrete nodes embed Base, which supplies endpoint storage and default hooks.
type Node interface {
	// ID returns the node's handle in its owning graph.
	ID() NodeID

	// Kind returns the node's type tag.
	Kind() Kind

	// Name returns the node's display name.
	Name() string

	// SetName replaces the node's display name.
	SetName(name string)

	// UUID returns the node's identity across saves, assigning a random one on first use.
	UUID() uuid.UUID

	// SetUUID replaces the node's identity, used when loading a saved graph.
	SetUUID(id uuid.UUID)

	// Inputs returns the node's input endpoints.
	Inputs() []*Endpoint

	// Outputs returns the node's output endpoints.
	Outputs() []*Endpoint

	// Evaluate computes the node's outputs from its inputs. Upstream nodes have already been
	// evaluated this pass.
	//
	// Parameters:
	//   - ctx: the evaluation context of the current pass
	Evaluate(ctx *Context)

	// OnConnect is called after one of the node's endpoints is connected.
	//
	// Parameters:
	//   - dir: the endpoint direction
	//   - index: the endpoint index
	OnConnect(dir Direction, index int)

	// OnDisconnect is called after one of the node's endpoints is disconnected and must leave
	// the endpoint holding a safe value.
	//
	// Parameters:
	//   - dir: the endpoint direction
	//   - index: the endpoint index
	OnDisconnect(dir Direction, index int)

	base() *Base
}

// Configurable is implemented by nodes with per-node settings beyond their endpoint defaults.
// Property maps hold plain values (numbers, strings, bools, slices and maps of those).
type Configurable interface {
	// Properties returns the node's settings.
	Properties() map[string]any

	// SetProperties applies settings produced by Properties.
	SetProperties(props map[string]any) error
}

// SubgraphOwner is implemented by nodes that own an internal graph.
type SubgraphOwner interface {
	// Subgraph returns the node's internal graph.
	Subgraph() Graph
}

// Resettable is implemented by nodes that keep a playback position.
type Resettable interface {
	// ResetTime moves the node's playback position to offset seconds.
	ResetTime(offset float32)
}

// Durationer is implemented by nodes that can report the length of what they play.
type Durationer interface {
	// Duration returns the playback length in seconds, or 0 if unknown.
	Duration(ctx *Context) float32
}

// Base holds the state shared by every node: identity, name, and endpoint storage.
type Base struct {
	id      NodeID
	kind    Kind
	name    string
	inputs  []*Endpoint
	outputs []*Endpoint
	uuid    uuid.UUID
	scope   uint64
	pass    uint64
}

// NewBase creates the shared node state for a node of the given kind.
//
// Parameters:
//   - kind: the node's type tag
//   - name: the node's display name
//
// Returns:
//   - Base: the initialized state, to be embedded by value
func NewBase(kind Kind, name string) Base {
	return Base{kind: kind, name: name}
}

func (b *Base) base() *Base { return b }

func (b *Base) ID() NodeID { return b.id }

func (b *Base) Kind() Kind { return b.kind }

func (b *Base) Name() string { return b.name }

func (b *Base) SetName(name string) { b.name = name }

func (b *Base) UUID() uuid.UUID {
	if b.uuid == uuid.Nil {
		b.uuid = uuid.New()
	}
	return b.uuid
}

func (b *Base) SetUUID(id uuid.UUID) { b.uuid = id }

func (b *Base) Inputs() []*Endpoint { return b.inputs }

func (b *Base) Outputs() []*Endpoint { return b.outputs }

func (b *Base) OnConnect(Direction, int) {}

// OnDisconnect restores a disconnected input to its default value.
func (b *Base) OnDisconnect(dir Direction, index int) {
	if dir == Input && index >= 0 && index < len(b.inputs) {
		b.inputs[index].Restore()
	}
}

// RegisterInput declares an input endpoint whose type is taken from its default value.
//
// Parameters:
//   - name: the endpoint name
//   - def: the default value restored on disconnect
//
// Returns:
//   - int: the endpoint index
func (b *Base) RegisterInput(name string, def Value) int {
	b.inputs = append(b.inputs, newEndpoint(name, def))
	return len(b.inputs) - 1
}

// RegisterOutput declares an output endpoint whose type is taken from its default value.
//
// Parameters:
//   - name: the endpoint name
//   - def: the initial value
//
// Returns:
//   - int: the endpoint index
func (b *Base) RegisterOutput(name string, def Value) int {
	b.outputs = append(b.outputs, newEndpoint(name, def))
	return len(b.outputs) - 1
}

// RetypeOutput changes the type and default of an output endpoint in place.
// Only call it on a node that has not been added to a graph.
func (b *Base) RetypeOutput(i int, def Value) {
	if i < 0 || i >= len(b.outputs) {
		return
	}
	ep := b.outputs[i]
	ep.typ = def.Type
	ep.def = def
	ep.local = def
}

// Input returns the current value of an input, or the zero Value if the index is out of range.
func (b *Base) Input(i int) Value {
	if i < 0 || i >= len(b.inputs) {
		return Value{}
	}
	return b.inputs[i].Value()
}

// Output returns the current value of an output, or the zero Value if the index is out of range.
func (b *Base) Output(i int) Value {
	if i < 0 || i >= len(b.outputs) {
		return Value{}
	}
	return b.outputs[i].Value()
}

func (b *Base) InputInt(i int) int64 { return b.Input(i).Int }

func (b *Base) InputFloat(i int) float32 { return b.Input(i).Float }

func (b *Base) InputBool(i int) bool { return b.Input(i).Bool }

func (b *Base) InputString(i int) string { return b.Input(i).String }

func (b *Base) InputVector2(i int) mgl32.Vec2 { return b.Input(i).Vector2 }

func (b *Base) InputPose(i int) *animator.Pose { return b.Input(i).Pose }

func (b *Base) InputBoneMask(i int) *animator.BoneMask { return b.Input(i).Mask }

// SetOutput writes an output value. Out of range indices are ignored.
func (b *Base) SetOutput(i int, v Value) {
	if i < 0 || i >= len(b.outputs) {
		return
	}
	b.outputs[i].Set(v)
}

func (b *Base) SetOutputInt(i int, v int64) { b.SetOutput(i, IntValue(v)) }

func (b *Base) SetOutputFloat(i int, v float32) { b.SetOutput(i, FloatValue(v)) }

func (b *Base) SetOutputBool(i int, v bool) { b.SetOutput(i, BoolValue(v)) }

func (b *Base) SetOutputVector2(i int, v mgl32.Vec2) { b.SetOutput(i, Vector2Value(v)) }

func (b *Base) SetOutputPose(i int, p *animator.Pose) { b.SetOutput(i, PoseValue(p)) }

// Salt returns a pose-cache salt unique to this node across every graph of the process.
func (b *Base) Salt() uint64 {
	return animator.HashCombine(b.scope, uint64(b.id))
}

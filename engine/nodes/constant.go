package nodes

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/engine/graph"
	"github.com/go-gl/mathgl/mgl32"
)

// ConstantNode outputs a fixed scalar, boolean or vector value.
type ConstantNode struct {
	graph.Base
	value graph.Value
}

var (
	_ graph.Node         = &ConstantNode{}
	_ graph.Configurable = &ConstantNode{}
)

func newConstant(kind graph.Kind, v graph.Value) *ConstantNode {
	n := &ConstantNode{Base: graph.NewBase(kind, kind.String()), value: v}
	n.RegisterOutput("Value", v)
	return n
}

// NewConstInt creates a node that outputs a fixed integer.
func NewConstInt(v int64) *ConstantNode { return newConstant(graph.KindConstInt, graph.IntValue(v)) }

// NewConstFloat creates a node that outputs a fixed float.
func NewConstFloat(v float32) *ConstantNode {
	return newConstant(graph.KindConstFloat, graph.FloatValue(v))
}

// NewConstBool creates a node that outputs a fixed boolean.
func NewConstBool(v bool) *ConstantNode { return newConstant(graph.KindConstBool, graph.BoolValue(v)) }

// NewConstVector2 creates a node that outputs a fixed 2D vector.
func NewConstVector2(v mgl32.Vec2) *ConstantNode {
	return newConstant(graph.KindConstVector2, graph.Vector2Value(v))
}

// Value returns the constant.
func (n *ConstantNode) Value() graph.Value { return n.value }

// SetValue replaces the constant. The value must keep the node's type.
func (n *ConstantNode) SetValue(v graph.Value) error {
	if v.Type != n.value.Type {
		return fmt.Errorf("%w: constant is %s, got %s", graph.ErrTypeMismatch, n.value.Type, v.Type)
	}
	n.value = v
	n.SetOutput(0, v)
	return nil
}

func (n *ConstantNode) Evaluate(*graph.Context) {
	n.SetOutput(0, n.value)
}

func (n *ConstantNode) Properties() map[string]any {
	return map[string]any{"value": n.value.Interface()}
}

func (n *ConstantNode) SetProperties(props map[string]any) error {
	raw, ok := props["value"]
	if !ok {
		return nil
	}
	v, err := graph.FromInterface(n.value.Type, raw)
	if err != nil {
		return fmt.Errorf("%w: value: %w", graph.ErrInvalidProperty, err)
	}
	return n.SetValue(v)
}

package nodes

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/engine/graph"
)

// ParameterNode outputs a named value from the graph's parameter blackboard.
// When the parameter is missing or holds another type, the node outputs its default.
type ParameterNode struct {
	graph.Base
	parameter string
	def       graph.Value
}

var (
	_ graph.Node         = &ParameterNode{}
	_ graph.Configurable = &ParameterNode{}
)

// NewParameterNode creates a node reading the named parameter.
//
// Parameters:
//   - parameter: the blackboard key
//   - def: the value used when the key is absent; its type is the output type
//
// Returns:
//   - *ParameterNode: the new node
func NewParameterNode(parameter string, def graph.Value) *ParameterNode {
	n := &ParameterNode{Base: graph.NewBase(graph.KindParameter, parameter), parameter: parameter, def: def}
	n.RegisterOutput("Value", def)
	return n
}

// Parameter returns the blackboard key the node reads.
func (n *ParameterNode) Parameter() string { return n.parameter }

func (n *ParameterNode) Evaluate(ctx *graph.Context) {
	v := n.def
	if ctx != nil && ctx.Parameters != nil {
		if p, ok := ctx.Parameters.Get(n.parameter); ok && p.Type == n.def.Type {
			v = p
		}
	}
	n.SetOutput(0, v)
}

func (n *ParameterNode) Properties() map[string]any {
	return map[string]any{
		"parameter": n.parameter,
		"type":      n.def.Type.String(),
		"default":   n.def.Interface(),
	}
}

func (n *ParameterNode) SetProperties(props map[string]any) error {
	if err := propString(props, "parameter", &n.parameter); err != nil {
		return err
	}
	typ := n.def.Type
	if raw, ok := props["type"].(string); ok {
		t, err := graph.ParseValueType(raw)
		if err != nil {
			return fmt.Errorf("%w: type: %w", graph.ErrInvalidProperty, err)
		}
		typ = t
	}
	def := graph.Zero(typ)
	if raw, ok := props["default"]; ok {
		v, err := graph.FromInterface(typ, raw)
		if err != nil {
			return fmt.Errorf("%w: default: %w", graph.ErrInvalidProperty, err)
		}
		def = v
	} else if typ == n.def.Type {
		def = n.def
	}
	if typ != n.Outputs()[0].Type() {
		if n.ID() != graph.InvalidNodeID {
			return fmt.Errorf("%w: type cannot change once the node is in a graph", graph.ErrInvalidProperty)
		}
		n.RetypeOutput(0, def)
	}
	n.def = def
	n.SetOutput(0, def)
	return nil
}

package nodes

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/engine/graph"
)

// CompareOp is a numeric comparison operator.
type CompareOp string

const (
	OpLess         CompareOp = "<"
	OpLessEqual    CompareOp = "<="
	OpGreater      CompareOp = ">"
	OpGreaterEqual CompareOp = ">="
	OpEqual        CompareOp = "=="
	OpNotEqual     CompareOp = "!="
)

// CompareNode compares two float inputs and outputs a boolean.
type CompareNode struct {
	graph.Base
	op CompareOp
}

var (
	_ graph.Node         = &CompareNode{}
	_ graph.Configurable = &CompareNode{}
)

// NewCompareNode creates a comparison node with inputs A and B.
func NewCompareNode(op CompareOp) *CompareNode {
	n := &CompareNode{Base: graph.NewBase(graph.KindCompare, "compare"), op: op}
	n.RegisterInput("A", graph.FloatValue(0))
	n.RegisterInput("B", graph.FloatValue(0))
	n.RegisterOutput("Result", graph.BoolValue(false))
	return n
}

func (n *CompareNode) Evaluate(*graph.Context) {
	a, b := n.InputFloat(0), n.InputFloat(1)
	var r bool
	switch n.op {
	case OpLess:
		r = a < b
	case OpLessEqual:
		r = a <= b
	case OpGreater:
		r = a > b
	case OpGreaterEqual:
		r = a >= b
	case OpEqual:
		r = a == b
	case OpNotEqual:
		r = a != b
	}
	n.SetOutputBool(0, r)
}

func (n *CompareNode) Properties() map[string]any {
	return map[string]any{"op": string(n.op)}
}

func (n *CompareNode) SetProperties(props map[string]any) error {
	var op string
	if err := propString(props, "op", &op); err != nil {
		return err
	}
	if op == "" {
		return nil
	}
	switch CompareOp(op) {
	case OpLess, OpLessEqual, OpGreater, OpGreaterEqual, OpEqual, OpNotEqual:
		n.op = CompareOp(op)
		return nil
	}
	return fmt.Errorf("%w: unknown compare op %q", graph.ErrInvalidProperty, op)
}

// LogicNode combines boolean inputs with and, or, or not.
type LogicNode struct {
	graph.Base
}

var _ graph.Node = &LogicNode{}

// NewAndNode creates a node outputting A && B.
func NewAndNode() *LogicNode { return newLogic(graph.KindAnd, 2) }

// NewOrNode creates a node outputting A || B.
func NewOrNode() *LogicNode { return newLogic(graph.KindOr, 2) }

// NewNotNode creates a node outputting !A.
func NewNotNode() *LogicNode { return newLogic(graph.KindNot, 1) }

func newLogic(kind graph.Kind, inputs int) *LogicNode {
	n := &LogicNode{Base: graph.NewBase(kind, kind.String())}
	names := []string{"A", "B"}
	for i := 0; i < inputs; i++ {
		n.RegisterInput(names[i], graph.BoolValue(false))
	}
	n.RegisterOutput("Result", graph.BoolValue(false))
	return n
}

func (n *LogicNode) Evaluate(*graph.Context) {
	switch n.Kind() {
	case graph.KindAnd:
		n.SetOutputBool(0, n.InputBool(0) && n.InputBool(1))
	case graph.KindOr:
		n.SetOutputBool(0, n.InputBool(0) || n.InputBool(1))
	case graph.KindNot:
		n.SetOutputBool(0, !n.InputBool(0))
	}
}

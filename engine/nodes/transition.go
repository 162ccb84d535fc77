package nodes

import (
	"github.com/Carmen-Shannon/oxy-anim/engine/graph"
)

// TransitionNode connects two states of a state machine. Its subgraph computes the trigger and
// ends in an OutputTransitionNode holding the transition settings.
// Source and destination are handles into the owning state machine's subgraph.
type TransitionNode struct {
	graph.Base
	from graph.NodeID
	to   graph.NodeID
	sub  graph.Graph
}

var (
	_ graph.Node          = &TransitionNode{}
	_ graph.Configurable  = &TransitionNode{}
	_ graph.SubgraphOwner = &TransitionNode{}
)

// NewTransitionNode creates a transition whose subgraph holds a single OutputTransitionNode.
//
// Parameters:
//   - from: the source state handle
//   - to: the destination state handle
//
// Returns:
//   - *TransitionNode: the new node
func NewTransitionNode(from, to graph.NodeID) *TransitionNode {
	n := &TransitionNode{
		Base: graph.NewBase(graph.KindTransition, "transition"),
		from: from,
		to:   to,
		sub:  graph.NewGraph(graph.WithName("transition")),
	}
	n.RegisterOutput("Triggered", graph.BoolValue(false))
	_ = n.sub.SetOutputNode(n.sub.AddNode(NewOutputTransitionNode()))
	return n
}

// From returns the source state handle.
func (n *TransitionNode) From() graph.NodeID { return n.from }

// To returns the destination state handle.
func (n *TransitionNode) To() graph.NodeID { return n.to }

func (n *TransitionNode) Subgraph() graph.Graph { return n.sub }

// Output returns the subgraph's OutputTransitionNode, or nil if it has none.
// When the subgraph has no output node selected, the first OutputTransitionNode becomes the output.
func (n *TransitionNode) Output() *OutputTransitionNode {
	if id := n.sub.OutputNode(); id != graph.InvalidNodeID {
		if node, ok := n.sub.Node(id); ok {
			if out, ok := node.(*OutputTransitionNode); ok {
				return out
			}
		}
	}
	for _, node := range n.sub.Nodes() {
		if out, ok := node.(*OutputTransitionNode); ok {
			_ = n.sub.SetOutputNode(out.ID())
			return out
		}
	}
	return nil
}

// EvaluateTrigger runs the trigger subgraph once.
//
// Parameters:
//   - ctx: the evaluation context
//
// Returns:
//   - *OutputTransitionNode: the evaluated output, or nil if the subgraph has none
func (n *TransitionNode) EvaluateTrigger(ctx *graph.Context) *OutputTransitionNode {
	out := n.Output()
	if out == nil {
		n.SetOutputBool(0, false)
		return nil
	}
	n.sub.Evaluate(ctx)
	n.SetOutputBool(0, out.Triggered())
	return out
}

func (n *TransitionNode) Evaluate(ctx *graph.Context) {
	n.EvaluateTrigger(ctx)
}

func (n *TransitionNode) Properties() map[string]any {
	return map[string]any{
		"from": int64(n.from),
		"to":   int64(n.to),
	}
}

func (n *TransitionNode) SetProperties(props map[string]any) error {
	if err := propNodeID(props, "from", &n.from); err != nil {
		return err
	}
	return propNodeID(props, "to", &n.to)
}

package nodes

import (
	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/graph"
)

// StateNode is one state of a state machine. Its subgraph produces the state's pose.
type StateNode struct {
	graph.Base
	sub         graph.Graph
	transitions []graph.NodeID
}

var (
	_ graph.Node          = &StateNode{}
	_ graph.SubgraphOwner = &StateNode{}
	_ graph.Durationer    = &StateNode{}
)

// NewStateNode creates a state whose subgraph holds a single OutputPoseNode.
//
// Parameters:
//   - name: the state name
//
// Returns:
//   - *StateNode: the new node
func NewStateNode(name string) *StateNode {
	n := &StateNode{
		Base: graph.NewBase(graph.KindState, name),
		sub:  graph.NewGraph(graph.WithName(name)),
	}
	n.RegisterOutput("Pose", graph.PoseValue(nil))
	_ = n.sub.SetOutputNode(n.sub.AddNode(NewOutputPoseNode()))
	return n
}

func (n *StateNode) Subgraph() graph.Graph { return n.sub }

// OutputID returns the handle of the subgraph's output node, the usual target when wiring the state's pose.
func (n *StateNode) OutputID() graph.NodeID { return n.sub.OutputNode() }

// Transitions returns the handles of the state's outgoing transitions in evaluation order.
// The list is maintained by the owning state machine.
func (n *StateNode) Transitions() []graph.NodeID { return n.transitions }

// EvaluatePose runs the state's subgraph and returns its pose.
//
// Parameters:
//   - ctx: the evaluation context
//
// Returns:
//   - *animator.Pose: the state's pose, or nil
func (n *StateNode) EvaluatePose(ctx *graph.Context) *animator.Pose {
	n.Evaluate(ctx)
	return n.Pose()
}

// Pose returns the pose written by the last evaluation.
func (n *StateNode) Pose() *animator.Pose { return n.Output(0).Pose }

func (n *StateNode) Evaluate(ctx *graph.Context) {
	n.SetOutputPose(0, n.sub.Evaluate(ctx))
}

func (n *StateNode) Duration(ctx *graph.Context) float32 {
	return n.sub.Duration(ctx)
}

// ResetSubgraph rewinds every resettable node in g, recursing into nested subgraphs.
//
// Parameters:
//   - g: the graph to rewind
//   - offset: the playback position in seconds
func ResetSubgraph(g graph.Graph, offset float32) {
	if g == nil {
		return
	}
	for _, n := range g.Nodes() {
		if r, ok := n.(graph.Resettable); ok {
			r.ResetTime(offset)
		}
		if owner, ok := n.(graph.SubgraphOwner); ok {
			ResetSubgraph(owner.Subgraph(), offset)
		}
	}
}

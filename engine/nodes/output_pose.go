package nodes

import "github.com/Carmen-Shannon/oxy-anim/engine/graph"

// OutputPoseNode is the sink of a pose graph. Its single input is the graph's result.
type OutputPoseNode struct {
	graph.Base
}

var _ graph.Node = &OutputPoseNode{}

// NewOutputPoseNode creates an output node with one Pose input.
func NewOutputPoseNode() *OutputPoseNode {
	n := &OutputPoseNode{Base: graph.NewBase(graph.KindOutputPose, "output")}
	n.RegisterInput("Pose", graph.PoseValue(nil))
	return n
}

func (n *OutputPoseNode) Evaluate(*graph.Context) {}

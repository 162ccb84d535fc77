// Package nodes implements the node kinds of the animation graph: clip players, parameters,
// constants, logic, pose blends, blend trees and hierarchical state machines.
package nodes

import (
	"github.com/Carmen-Shannon/oxy-anim/engine/graph"
	"github.com/go-gl/mathgl/mgl32"
)

// NewRegistry returns a registry with a factory for every node kind in this package.
// Factories produce nodes with default settings; persisted properties are applied afterwards.
//
// Returns:
//   - *graph.Registry: the populated registry
func NewRegistry() *graph.Registry {
	r := graph.NewRegistry()
	r.Register(graph.KindOutputPose, func() graph.Node { return NewOutputPoseNode() })
	r.Register(graph.KindAnimation, func() graph.Node { return NewAnimationNode("") })
	r.Register(graph.KindParameter, func() graph.Node { return NewParameterNode("", graph.FloatValue(0)) })
	r.Register(graph.KindConstInt, func() graph.Node { return NewConstInt(0) })
	r.Register(graph.KindConstFloat, func() graph.Node { return NewConstFloat(0) })
	r.Register(graph.KindConstBool, func() graph.Node { return NewConstBool(false) })
	r.Register(graph.KindConstVector2, func() graph.Node { return NewConstVector2(mgl32.Vec2{}) })
	r.Register(graph.KindCompare, func() graph.Node { return NewCompareNode(OpGreater) })
	r.Register(graph.KindAnd, func() graph.Node { return NewAndNode() })
	r.Register(graph.KindOr, func() graph.Node { return NewOrNode() })
	r.Register(graph.KindNot, func() graph.Node { return NewNotNode() })
	r.Register(graph.KindBlend2D, func() graph.Node { return NewBlendNode2D() })
	r.Register(graph.KindBlendTree2D, func() graph.Node { return NewBlendTree2D() })
	r.Register(graph.KindStateMachine, func() graph.Node { return NewStateMachineNode("state_machine") })
	r.Register(graph.KindState, func() graph.Node { return NewStateNode("state") })
	r.Register(graph.KindTransition, func() graph.Node {
		return NewTransitionNode(graph.InvalidNodeID, graph.InvalidNodeID)
	})
	r.Register(graph.KindOutputTransition, func() graph.Node { return NewOutputTransitionNode() })
	return r
}

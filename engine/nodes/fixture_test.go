package nodes

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/graph"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

const eps = 1e-4

func testModel(t *testing.T) model.Model {
	t.Helper()
	sk, err := model.NewSkeleton("biped", []model.Bone{
		{Name: "root", ParentID: -1},
		{Name: "hips", ParentID: 0, LocalTransform: model.Transform{Translation: mgl32.Vec3{0, 1, 0}}},
	}, mgl32.Ident4())
	if err != nil {
		t.Fatalf("NewSkeleton: %v", err)
	}
	clip := func(name string, ticks, x float32) *model.Animation {
		a, err := model.NewAnimation(name, ticks, 10, []model.Channel{{
			BoneName: "root",
			PositionKeys: []model.VectorKey{
				{Time: 0, Value: mgl32.Vec3{}},
				{Time: ticks, Value: mgl32.Vec3{x, 0, 0}},
			},
		}})
		if err != nil {
			t.Fatalf("NewAnimation(%s): %v", name, err)
		}
		return a
	}
	return model.NewModel(
		model.WithName("biped"),
		model.WithSkeleton(sk),
		model.WithAnimations(clip("idle", 10, 0), clip("walk", 20, 2), clip("run", 10, 4)),
	)
}

type machineFixture struct {
	g      graph.Graph
	sm     *StateMachineNode
	idle   *StateNode
	walk   *StateNode
	idleA  *AnimationNode
	walkA  *AnimationNode
	params *graph.Parameters
	ctx    *graph.Context
}

// newMachineFixture builds a two-state machine (idle, walk) feeding the root graph's output.
func newMachineFixture(t *testing.T) *machineFixture {
	t.Helper()
	f := &machineFixture{sm: NewStateMachineNode("locomotion"), params: graph.NewParameters()}
	f.idle, f.idleA = addClipState(t, f.sm, "idle")
	f.walk, f.walkA = addClipState(t, f.sm, "walk")

	f.g = graph.NewGraph(graph.WithName("root"))
	smID := f.g.AddNode(f.sm)
	outID := f.g.AddNode(NewOutputPoseNode())
	if err := f.g.Connect(smID, 0, outID, 0); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := f.g.SetOutputNode(outID); err != nil {
		t.Fatalf("SetOutputNode: %v", err)
	}
	f.ctx = graph.NewContext(0, animator.NewController(), testModel(t), f.params)
	return f
}

func addClipState(t *testing.T, sm *StateMachineNode, clip string) (*StateNode, *AnimationNode) {
	t.Helper()
	s := sm.AddState(clip)
	a := NewAnimationNode(clip)
	id := s.Subgraph().AddNode(a)
	if err := s.Subgraph().Connect(id, AnimationOutputPose, s.OutputID(), 0); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	return s, a
}

// addTransition wires a boolean parameter into a new transition's trigger.
func addTransition(t *testing.T, sm *StateMachineNode, from, to *StateNode, param string, duration float32) (*TransitionNode, *OutputTransitionNode) {
	t.Helper()
	tr, err := sm.AddTransition(from.ID(), to.ID())
	if err != nil {
		t.Fatalf("AddTransition: %v", err)
	}
	sub := tr.Subgraph()
	pid := sub.AddNode(NewParameterNode(param, graph.BoolValue(false)))
	if err := sub.Connect(pid, 0, sub.OutputNode(), OutputTransitionInputTrigger); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	out := tr.Output()
	out.SetDuration(duration)
	return tr, out
}

func (f *machineFixture) step(dt float32) *animator.Pose {
	f.ctx.DeltaTime = dt
	f.ctx.Frame++
	return f.g.Evaluate(f.ctx)
}

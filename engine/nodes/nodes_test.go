package nodes

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/graph"
	"github.com/go-gl/mathgl/mgl32"
)

func TestAnimationNodePlayback(t *testing.T) {
	tests := []struct {
		name         string
		loop         bool
		steps        []float32
		wantTicks    float32
		wantFinished bool
	}{
		{"loop wraps", true, []float32{1.5, 1.5}, 10, false},
		{"clamp at end", false, []float32{1.5, 1.5}, 20, true},
		{"mid clip", false, []float32{0.5}, 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.NewGraph()
			n := NewAnimationNode("walk")
			n.SetLoop(tt.loop)
			id := g.AddNode(n)
			setOutput(t, g, id, AnimationOutputPose)
			ctx := graph.NewContext(0, animator.NewController(), testModel(t), nil)
			for _, dt := range tt.steps {
				ctx.DeltaTime = dt
				g.Evaluate(ctx)
			}
			if !approx(n.Time(), tt.wantTicks) {
				t.Errorf("Time = %v, want %v", n.Time(), tt.wantTicks)
			}
			if got := n.Output(AnimationOutputFinished).Bool; got != tt.wantFinished {
				t.Errorf("Finished = %v, want %v", got, tt.wantFinished)
			}
			if got := n.Output(AnimationOutputNormalizedTime).Float; !approx(got, tt.wantTicks/20) {
				t.Errorf("NormalizedTime = %v, want %v", got, tt.wantTicks/20)
			}
		})
	}
}

func TestAnimationNodeSpeedAndMultiplier(t *testing.T) {
	g := graph.NewGraph()
	n := NewAnimationNode("walk")
	id := g.AddNode(n)
	setOutput(t, g, id, AnimationOutputPose)
	if err := n.Inputs()[AnimationInputSpeed].SetDefault(graph.FloatValue(2)); err != nil {
		t.Fatal(err)
	}
	ctx := graph.NewContext(0.25, animator.NewController(), testModel(t), nil)
	g.Evaluate(ctx.WithTimeMultiplier(0.5))
	if !approx(n.Time(), 2.5) {
		t.Errorf("Time = %v, want 2.5", n.Time())
	}
}

func TestAnimationNodeUnknownClipGivesBindPose(t *testing.T) {
	g := graph.NewGraph()
	n := NewAnimationNode("missing")
	id := g.AddNode(n)
	setOutput(t, g, id, AnimationOutputPose)
	m := testModel(t)
	pose := g.Evaluate(graph.NewContext(0.1, animator.NewController(), m, nil))
	if pose == nil {
		t.Fatal("nil pose for an unknown clip")
	}
	bind := m.Skeleton().BindPose()
	for i := range bind {
		if !pose.Local[i].ApproxEqual(bind[i], eps) {
			t.Errorf("bone %d = %+v, want bind %+v", i, pose.Local[i], bind[i])
		}
	}
	if d := n.Duration(graph.NewContext(0, nil, m, nil)); d != 0 {
		t.Errorf("Duration = %v, want 0", d)
	}
}

func TestAnimationNodeRootMotion(t *testing.T) {
	g := graph.NewGraph()
	n := NewAnimationNode("run")
	n.SetRootMotionBone("root")
	id := g.AddNode(n)
	setOutput(t, g, id, AnimationOutputPose)
	ctx := graph.NewContext(0.25, animator.NewController(), testModel(t), nil)
	pose := g.Evaluate(ctx)
	if pose == nil || pose.RootMotion == nil {
		t.Fatal("missing root motion")
	}
	// run moves the root 4 units over 1s.
	if dx := pose.RootMotion.DeltaTranslation.X(); !approx(dx, 1) {
		t.Errorf("delta x = %v, want 1", dx)
	}
	if x := pose.Local[0].Translation.X(); !approx(x, 0) {
		t.Errorf("root x = %v, want motion removed from the pose", x)
	}
}

func TestAnimationNodeDurationAndProperties(t *testing.T) {
	n := NewAnimationNode("")
	err := n.SetProperties(map[string]any{"clip": "walk", "loop": false, "start_offset": 0.5, "root_motion_bone": "root"})
	if err != nil {
		t.Fatalf("SetProperties: %v", err)
	}
	ctx := graph.NewContext(0, animator.NewController(), testModel(t), nil)
	if d := n.Duration(ctx); d != 2 {
		t.Errorf("Duration = %v, want 2", d)
	}
	props := n.Properties()
	if props["clip"] != "walk" || props["loop"] != false || props["root_motion_bone"] != "root" {
		t.Errorf("Properties = %v", props)
	}
	if err := n.SetProperties(map[string]any{"loop": "yes"}); !errors.Is(err, graph.ErrInvalidProperty) {
		t.Errorf("err = %v, want ErrInvalidProperty", err)
	}
}

func TestParameterNode(t *testing.T) {
	params := graph.NewParameters()
	ctx := graph.NewContext(0, nil, nil, params)
	n := NewParameterNode("speed", graph.FloatValue(0.5))

	n.Evaluate(ctx)
	if got := n.Output(0).Float; got != 0.5 {
		t.Errorf("missing parameter = %v, want default 0.5", got)
	}
	params.SetBool("speed", true)
	n.Evaluate(ctx)
	if got := n.Output(0).Float; got != 0.5 {
		t.Errorf("mistyped parameter = %v, want default 0.5", got)
	}
	params.SetFloat("speed", 3)
	n.Evaluate(ctx)
	if got := n.Output(0).Float; got != 3 {
		t.Errorf("parameter = %v, want 3", got)
	}
}

func TestParameterNodeRetype(t *testing.T) {
	n := NewParameterNode("", graph.FloatValue(0))
	if err := n.SetProperties(map[string]any{"parameter": "grounded", "type": "bool", "default": true}); err != nil {
		t.Fatalf("SetProperties: %v", err)
	}
	if n.Outputs()[0].Type() != graph.TypeBool || !n.Output(0).Bool {
		t.Errorf("output = %+v", n.Output(0))
	}

	g := graph.NewGraph()
	g.AddNode(n)
	if err := n.SetProperties(map[string]any{"type": "float"}); !errors.Is(err, graph.ErrInvalidProperty) {
		t.Errorf("retype in graph: err = %v, want ErrInvalidProperty", err)
	}
}

func TestLogicNodes(t *testing.T) {
	tests := []struct {
		name string
		node func() graph.Node
		a, b bool
		want bool
	}{
		{"and", func() graph.Node { return NewAndNode() }, true, false, false},
		{"and both", func() graph.Node { return NewAndNode() }, true, true, true},
		{"or", func() graph.Node { return NewOrNode() }, false, true, true},
		{"not", func() graph.Node { return NewNotNode() }, true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.NewGraph()
			n := tt.node()
			id := g.AddNode(n)
			connect(t, g, g.AddNode(NewConstBool(tt.a)), 0, id, 0)
			if len(n.Inputs()) > 1 {
				connect(t, g, g.AddNode(NewConstBool(tt.b)), 0, id, 1)
			}
			if err := g.SetOutputNode(id); err != nil {
				t.Fatal(err)
			}
			g.Evaluate(graph.NewContext(0, nil, nil, nil))
			if got := n.Outputs()[0].Value().Bool; got != tt.want {
				t.Errorf("result = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompareNode(t *testing.T) {
	ops := map[CompareOp]bool{
		OpLess: false, OpLessEqual: false, OpGreater: true,
		OpGreaterEqual: true, OpEqual: false, OpNotEqual: true,
	}
	for op, want := range ops {
		n := NewCompareNode(op)
		_ = n.Inputs()[0].SetDefault(graph.FloatValue(2))
		_ = n.Inputs()[1].SetDefault(graph.FloatValue(1))
		n.Evaluate(nil)
		if got := n.Output(0).Bool; got != want {
			t.Errorf("2 %s 1 = %v, want %v", op, got, want)
		}
	}
	if err := NewCompareNode(OpLess).SetProperties(map[string]any{"op": "~"}); err == nil {
		t.Error("SetProperties accepted an unknown operator")
	}
}

func TestConstantNode(t *testing.T) {
	n := NewConstVector2(mgl32.Vec2{1, 2})
	if err := n.SetValue(graph.FloatValue(1)); !errors.Is(err, graph.ErrTypeMismatch) {
		t.Errorf("SetValue(float) err = %v, want ErrTypeMismatch", err)
	}
	if err := n.SetProperties(map[string]any{"value": []any{3.0, 4.0}}); err != nil {
		t.Fatalf("SetProperties: %v", err)
	}
	n.Evaluate(nil)
	if got := n.Output(0).Vector2; got != (mgl32.Vec2{3, 4}) {
		t.Errorf("value = %v, want [3 4]", got)
	}
}

func TestRegistryCoversEveryKind(t *testing.T) {
	r := NewRegistry()
	for _, k := range graph.Kinds() {
		n, err := r.New(k)
		if err != nil {
			t.Errorf("New(%s): %v", k, err)
			continue
		}
		if n.Kind() != k {
			t.Errorf("New(%s).Kind() = %s", k, n.Kind())
		}
	}
}

func TestResetSubgraphRecurses(t *testing.T) {
	sm := NewStateMachineNode("m")
	s := sm.AddState("a")
	a := NewAnimationNode("walk")
	s.Subgraph().AddNode(a)

	g := graph.NewGraph()
	g.AddNode(sm)
	ResetSubgraph(g, 0.3)

	ctx := graph.NewContext(0, animator.NewController(), testModel(t), nil)
	a.Evaluate(ctx)
	if !approx(a.Time(), 3) {
		t.Errorf("Time = %v ticks, want 3", a.Time())
	}
}

package graph

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
)

type sourceNode struct {
	Base
	value float32
	evals int
}

func newSource(v float32) *sourceNode {
	n := &sourceNode{Base: NewBase(KindConstFloat, "source"), value: v}
	n.RegisterOutput("Value", FloatValue(0))
	return n
}

func (n *sourceNode) Evaluate(*Context) {
	n.evals++
	n.SetOutputFloat(0, n.value)
}

type sumNode struct {
	Base
	disconnects int
}

func newSum() *sumNode {
	n := &sumNode{Base: NewBase(KindConstFloat, "sum")}
	n.RegisterInput("A", FloatValue(1))
	n.RegisterInput("B", FloatValue(2))
	n.RegisterInput("Flag", BoolValue(false))
	n.RegisterOutput("Sum", FloatValue(0))
	return n
}

func (n *sumNode) Evaluate(*Context) {
	n.SetOutputFloat(0, n.InputFloat(0)+n.InputFloat(1))
}

func (n *sumNode) OnDisconnect(dir Direction, index int) {
	n.disconnects++
	n.Base.OnDisconnect(dir, index)
}

type poseNode struct {
	Base
	pose *animator.Pose
}

func newPoseNode(p *animator.Pose) *poseNode {
	n := &poseNode{Base: NewBase(KindOutputPose, "pose"), pose: p}
	n.RegisterOutput("Pose", PoseValue(nil))
	return n
}

func (n *poseNode) Evaluate(*Context) { n.SetOutputPose(0, n.pose) }

func TestConnectAliasesStorage(t *testing.T) {
	g := NewGraph()
	src := newSource(5)
	sum := newSum()
	s := g.AddNode(src)
	d := g.AddNode(sum)

	if err := g.Connect(s, 0, d, 0); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if !sum.Inputs()[0].Connected() {
		t.Fatal("input should be connected")
	}
	if err := g.SetOutputNode(d); err != nil {
		t.Fatal(err)
	}
	g.Evaluate(NewContext(0, nil, nil, nil))
	if got := sum.Output(0).Float; got != 7 {
		t.Errorf("sum = %v, want 7", got)
	}

	src.value = 10
	g.Evaluate(NewContext(0, nil, nil, nil))
	if got := sum.Output(0).Float; got != 12 {
		t.Errorf("sum = %v, want 12", got)
	}
}

func TestConnectRejectsTypeMismatch(t *testing.T) {
	g := NewGraph()
	s := g.AddNode(newSource(1))
	sum := newSum()
	d := g.AddNode(sum)
	version := g.Version()

	err := g.Connect(s, 0, d, 2)
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("err = %v, want %v", err, ErrTypeMismatch)
	}
	if len(g.Connections()) != 0 || sum.Inputs()[2].Connected() || g.Version() != version {
		t.Error("a rejected connection must not change the graph")
	}
}

func TestConnectValidatesHandlesAndIndices(t *testing.T) {
	g := NewGraph()
	s := g.AddNode(newSource(1))
	d := g.AddNode(newSum())

	if err := g.Connect(99, 0, d, 0); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("err = %v, want %v", err, ErrNodeNotFound)
	}
	if err := g.Connect(s, 3, d, 0); !errors.Is(err, ErrEndpointOutOfRange) {
		t.Errorf("err = %v, want %v", err, ErrEndpointOutOfRange)
	}
	if err := g.Connect(s, 0, d, 9); !errors.Is(err, ErrEndpointOutOfRange) {
		t.Errorf("err = %v, want %v", err, ErrEndpointOutOfRange)
	}
}

func TestConnectRejectsCycles(t *testing.T) {
	g := NewGraph()
	a := g.AddNode(newSum())
	b := g.AddNode(newSum())
	c := g.AddNode(newSum())

	if err := g.Connect(a, 0, b, 0); err != nil {
		t.Fatal(err)
	}
	if err := g.Connect(b, 0, c, 0); err != nil {
		t.Fatal(err)
	}
	if err := g.Connect(c, 0, a, 0); !errors.Is(err, ErrCycle) {
		t.Errorf("err = %v, want %v", err, ErrCycle)
	}
	if err := g.Connect(a, 0, a, 1); !errors.Is(err, ErrCycle) {
		t.Errorf("self connection err = %v, want %v", err, ErrCycle)
	}
	if len(g.Connections()) != 2 {
		t.Errorf("connections = %d, want 2", len(g.Connections()))
	}
}

func TestDisconnectRestoresDefault(t *testing.T) {
	g := NewGraph()
	s := g.AddNode(newSource(5))
	sum := newSum()
	d := g.AddNode(sum)
	_ = g.SetOutputNode(d)

	if err := g.Connect(s, 0, d, 1); err != nil {
		t.Fatal(err)
	}
	g.Evaluate(NewContext(0, nil, nil, nil))
	if sum.InputFloat(1) != 5 {
		t.Fatalf("input = %v, want 5", sum.InputFloat(1))
	}

	if err := g.Disconnect(d, 1); err != nil {
		t.Fatal(err)
	}
	if sum.Inputs()[1].Connected() {
		t.Error("input should be detached")
	}
	if sum.InputFloat(1) != 2 {
		t.Errorf("input = %v, want default 2", sum.InputFloat(1))
	}
	if sum.disconnects != 1 {
		t.Errorf("OnDisconnect calls = %d, want 1", sum.disconnects)
	}
	if err := g.Disconnect(d, 1); !errors.Is(err, ErrNotConnected) {
		t.Errorf("err = %v, want %v", err, ErrNotConnected)
	}
}

func TestConnectReplacesExistingConnection(t *testing.T) {
	g := NewGraph()
	s1 := g.AddNode(newSource(3))
	s2 := g.AddNode(newSource(4))
	sum := newSum()
	d := g.AddNode(sum)
	_ = g.SetOutputNode(d)

	_ = g.Connect(s1, 0, d, 0)
	if err := g.Connect(s2, 0, d, 0); err != nil {
		t.Fatal(err)
	}
	c, ok := g.ConnectionTo(d, 0)
	if !ok || c.From != s2 {
		t.Errorf("connection = %+v, want from %d", c, s2)
	}
	if len(g.Connections()) != 1 {
		t.Errorf("connections = %d, want 1", len(g.Connections()))
	}
	g.Evaluate(NewContext(0, nil, nil, nil))
	if sum.Output(0).Float != 6 {
		t.Errorf("sum = %v, want 6", sum.Output(0).Float)
	}
}

func TestRemoveNodeKeepsOtherHandles(t *testing.T) {
	g := NewGraph()
	s := g.AddNode(newSource(5))
	sum := newSum()
	d := g.AddNode(sum)
	other := g.AddNode(newSource(1))
	_ = g.Connect(s, 0, d, 0)

	if err := g.RemoveNode(s); err != nil {
		t.Fatal(err)
	}
	if _, ok := g.Node(s); ok {
		t.Error("removed node still present")
	}
	if n, ok := g.Node(other); !ok || n.ID() != other {
		t.Error("other handles should stay valid")
	}
	if sum.Inputs()[0].Connected() || sum.InputFloat(0) != 1 {
		t.Error("removing a node should disconnect and restore its consumers")
	}
	if next := g.AddNode(newSource(0)); next == s {
		t.Error("handles must not be reused")
	}
	if err := g.RemoveNode(s); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("err = %v, want %v", err, ErrNodeNotFound)
	}
}

func TestProcessBranchEvaluatesOncePerPass(t *testing.T) {
	g := NewGraph()
	src := newSource(1)
	s := g.AddNode(src)
	a := g.AddNode(newSum())
	b := g.AddNode(newSum())
	out := g.AddNode(newSum())
	_ = g.Connect(s, 0, a, 0)
	_ = g.Connect(s, 0, b, 0)
	_ = g.Connect(a, 0, out, 0)
	_ = g.Connect(b, 0, out, 1)
	_ = g.SetOutputNode(out)

	g.Evaluate(NewContext(0, nil, nil, nil))
	g.Evaluate(NewContext(0, nil, nil, nil))
	if src.evals != 2 {
		t.Errorf("source evaluations = %d, want 2", src.evals)
	}
}

func TestEvaluateReturnsPose(t *testing.T) {
	g := NewGraph()
	p := animator.NewPose(42)
	id := g.AddNode(newPoseNode(p))
	if g.Evaluate(NewContext(0, nil, nil, nil)) != nil {
		t.Error("a graph without an output node should yield nil")
	}
	_ = g.SetOutputNode(id)
	if got := g.Evaluate(NewContext(0, nil, nil, nil)); got != p {
		t.Errorf("Evaluate = %p, want %p", got, p)
	}
}

func TestRenameAndLookup(t *testing.T) {
	g := NewGraph(WithName("locomotion"))
	id := g.AddNode(newSource(1))
	if err := g.Rename(id, "speed"); err != nil {
		t.Fatal(err)
	}
	if n, ok := g.NodeByName("speed"); !ok || n.ID() != id {
		t.Error("NodeByName did not find the renamed node")
	}
	if err := g.Rename(77, "x"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("err = %v, want %v", err, ErrNodeNotFound)
	}
	if err := g.AddNodeWithID(id, newSource(2)); !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("err = %v, want %v", err, ErrDuplicateNode)
	}
	if err := g.AddNodeWithID(10, newSource(2)); err != nil {
		t.Fatal(err)
	}
	if next := g.AddNode(newSource(3)); next != 11 {
		t.Errorf("next id = %d, want 11", next)
	}
}

func TestSaltsDifferAcrossGraphs(t *testing.T) {
	g1, g2 := NewGraph(), NewGraph()
	a, b := newSource(0), newSource(0)
	g1.AddNode(a)
	g2.AddNode(b)
	if a.ID() != b.ID() {
		t.Fatal("expected equal handles in separate graphs")
	}
	if a.Salt() == b.Salt() {
		t.Error("salts should differ across graphs")
	}
}

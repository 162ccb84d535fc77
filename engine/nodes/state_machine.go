package nodes

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/graph"
)

// StateMachineNode is a finite state machine of StateNodes connected by TransitionNodes.
// States and transitions live in the machine's subgraph; the subgraph's output node is the entry state.
//
// While idle the machine outputs the current state's pose and checks the current state's outgoing
// transitions in insertion order. The first transition whose trigger is true becomes active. While
// transitioning the machine blends the source and destination poses by the transition's curve
// until the accumulator reaches the duration, or returns to zero after a reversal.
type StateMachineNode struct {
	graph.Base
	sub graph.Graph

	version  uint64
	current  graph.NodeID
	active   graph.NodeID
	reversed bool

	// candidates are the transitions whose rising trigger reverses the active transition.
	candidates []graph.NodeID
}

var (
	_ graph.Node          = &StateMachineNode{}
	_ graph.SubgraphOwner = &StateMachineNode{}
	_ graph.Resettable    = &StateMachineNode{}
	_ graph.Durationer    = &StateMachineNode{}
)

// NewStateMachineNode creates an empty state machine.
//
// Parameters:
//   - name: the machine name
//
// Returns:
//   - *StateMachineNode: the new node
func NewStateMachineNode(name string) *StateMachineNode {
	n := &StateMachineNode{
		Base: graph.NewBase(graph.KindStateMachine, name),
		sub:  graph.NewGraph(graph.WithName(name)),
	}
	n.RegisterOutput("Pose", graph.PoseValue(nil))
	return n
}

func (n *StateMachineNode) Subgraph() graph.Graph { return n.sub }

// AddState adds a new state. The first state added becomes the entry state.
//
// Parameters:
//   - name: the state name
//
// Returns:
//   - *StateNode: the new state
func (n *StateMachineNode) AddState(name string) *StateNode {
	s := NewStateNode(name)
	id := n.sub.AddNode(s)
	if n.Entry() == graph.InvalidNodeID {
		_ = n.sub.SetOutputNode(id)
	}
	return s
}

// AddTransition adds a transition between two states of the machine.
//
// Parameters:
//   - from: the source state handle
//   - to: the destination state handle
//
// Returns:
//   - *TransitionNode: the new transition
//   - error: graph.ErrNodeNotFound if either handle is not a state of the machine
func (n *StateMachineNode) AddTransition(from, to graph.NodeID) (*TransitionNode, error) {
	if n.state(from) == nil {
		return nil, fmt.Errorf("transition source %d: %w", from, graph.ErrNodeNotFound)
	}
	if n.state(to) == nil {
		return nil, fmt.Errorf("transition destination %d: %w", to, graph.ErrNodeNotFound)
	}
	t := NewTransitionNode(from, to)
	t.SetName(fmt.Sprintf("%s -> %s", n.state(from).Name(), n.state(to).Name()))
	n.sub.AddNode(t)
	return t, nil
}

// SetEntry selects the state the machine starts in and returns to on Reset.
func (n *StateMachineNode) SetEntry(id graph.NodeID) error {
	if n.state(id) == nil {
		return fmt.Errorf("entry %d: %w", id, graph.ErrNodeNotFound)
	}
	return n.sub.SetOutputNode(id)
}

// Entry returns the entry state handle, falling back to the first state added.
func (n *StateMachineNode) Entry() graph.NodeID {
	if id := n.sub.OutputNode(); n.state(id) != nil {
		return id
	}
	for _, node := range n.sub.Nodes() {
		if s, ok := node.(*StateNode); ok {
			return s.ID()
		}
	}
	return graph.InvalidNodeID
}

// Current returns the current state handle. While transitioning this is the source state.
func (n *StateMachineNode) Current() graph.NodeID {
	n.relink()
	return n.current
}

// ActiveTransition returns the in-flight transition handle, or graph.InvalidNodeID when idle.
func (n *StateMachineNode) ActiveTransition() graph.NodeID {
	n.relink()
	return n.active
}

// Transitioning reports whether a transition is in flight.
func (n *StateMachineNode) Transitioning() bool { return n.ActiveTransition() != graph.InvalidNodeID }

// Reversed reports whether the in-flight transition is heading back to its source.
func (n *StateMachineNode) Reversed() bool { return n.reversed }

// Reset returns the machine to its entry state and cancels any transition.
func (n *StateMachineNode) Reset() {
	n.relink()
	if t := n.transition(n.active); t != nil {
		if out := t.Output(); out != nil {
			out.accumulator = 0
		}
	}
	n.current = n.Entry()
	n.clearActive()
}

func (n *StateMachineNode) ResetTime(float32) { n.Reset() }

func (n *StateMachineNode) Duration(ctx *graph.Context) float32 {
	n.relink()
	if s := n.state(n.current); s != nil {
		return s.Duration(ctx)
	}
	return 0
}

func (n *StateMachineNode) state(id graph.NodeID) *StateNode {
	if id == graph.InvalidNodeID {
		return nil
	}
	node, ok := n.sub.Node(id)
	if !ok {
		return nil
	}
	s, _ := node.(*StateNode)
	return s
}

func (n *StateMachineNode) transition(id graph.NodeID) *TransitionNode {
	if id == graph.InvalidNodeID {
		return nil
	}
	node, ok := n.sub.Node(id)
	if !ok {
		return nil
	}
	t, _ := node.(*TransitionNode)
	return t
}

// relink rebuilds the outgoing transition lists after the subgraph changes.
func (n *StateMachineNode) relink() {
	if n.version == n.sub.Version() && n.version != 0 {
		return
	}
	n.version = n.sub.Version()

	nodes := n.sub.Nodes()
	for _, node := range nodes {
		if s, ok := node.(*StateNode); ok {
			s.transitions = s.transitions[:0]
		}
	}
	for _, node := range nodes {
		t, ok := node.(*TransitionNode)
		if !ok {
			continue
		}
		if src := n.state(t.from); src != nil && n.state(t.to) != nil {
			src.transitions = append(src.transitions, t.ID())
		}
	}

	if n.state(n.current) == nil {
		n.current = n.Entry()
		n.clearActive()
	}
	if n.active != graph.InvalidNodeID {
		t := n.transition(n.active)
		if t == nil || n.state(t.from) == nil || n.state(t.to) == nil {
			n.clearActive()
		} else {
			n.candidates = n.interruptCandidates(t)
		}
	}
}

func (n *StateMachineNode) clearActive() {
	n.active = graph.InvalidNodeID
	n.reversed = false
	n.candidates = nil
}

func (n *StateMachineNode) Evaluate(ctx *graph.Context) {
	n.relink()
	cur := n.state(n.current)
	if cur == nil {
		n.SetOutputPose(0, nil)
		return
	}
	if n.active == graph.InvalidNodeID {
		n.SetOutputPose(0, n.evaluateIdle(ctx, cur))
		return
	}
	n.SetOutputPose(0, n.evaluateTransition(ctx))
}

func (n *StateMachineNode) evaluateIdle(ctx *graph.Context, cur *StateNode) *animator.Pose {
	pose := cur.EvaluatePose(ctx)
	for _, id := range cur.transitions {
		t := n.transition(id)
		if t == nil {
			continue
		}
		out := t.EvaluateTrigger(ctx)
		if out == nil || !out.Triggered() {
			continue
		}
		n.begin(ctx, t, out)
		if out.Duration() <= 0 {
			n.complete(ctx, t, out, false)
			return n.state(t.to).EvaluatePose(ctx)
		}
		// The first blended frame is the next one.
		return pose
	}
	return pose
}

func (n *StateMachineNode) evaluateTransition(ctx *graph.Context) *animator.Pose {
	t := n.transition(n.active)
	out := t.Output()
	src, dst := n.state(t.from), n.state(t.to)
	if out == nil {
		n.clearActive()
		return src.EvaluatePose(ctx)
	}

	if out.Interruptible() {
		n.checkInterrupts(ctx, t)
	}

	if n.reversed {
		out.accumulator -= ctx.ScaledDelta()
	} else {
		out.accumulator += ctx.ScaledDelta()
	}
	duration := out.Duration()
	switch {
	case duration <= 0:
		// A zero duration finishes immediately in whichever direction is playing.
		reversed := n.reversed
		n.complete(ctx, t, out, reversed)
		if reversed {
			return src.EvaluatePose(ctx)
		}
		return dst.EvaluatePose(ctx)
	case !n.reversed && out.accumulator >= duration:
		n.complete(ctx, t, out, false)
		return dst.EvaluatePose(ctx)
	case n.reversed && out.accumulator <= 0:
		n.complete(ctx, t, out, true)
		return src.EvaluatePose(ctx)
	}

	factor := out.Factor(out.accumulator / duration)
	mSrc, mDst := out.SyncStyle().Multipliers(src.Duration(ctx), dst.Duration(ctx), factor)
	a := src.EvaluatePose(ctx.WithTimeMultiplier(mSrc))
	b := dst.EvaluatePose(ctx.WithTimeMultiplier(mDst))
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case ctx.Controller == nil:
		return a
	}
	key := animator.HashCombine(n.Salt(), uint64(t.ID()))
	return ctx.Controller.BlendKeyed(key, ctx.Skeleton(), a, b, factor, nil)
}

func (n *StateMachineNode) begin(ctx *graph.Context, t *TransitionNode, out *OutputTransitionNode) {
	n.active = t.ID()
	n.reversed = false
	out.accumulator = 0
	if out.ResetOnEnter() {
		ResetSubgraph(n.state(t.to).Subgraph(), out.StartOffset())
	}
	n.candidates = n.interruptCandidates(t)
	if out.Interruptible() {
		// Record the current trigger levels so only later rising edges interrupt.
		for _, id := range n.candidates {
			n.transition(id).EvaluateTrigger(ctx)
		}
	}
	n.notify(ctx, graph.TransitionStarted, t, false)
}

func (n *StateMachineNode) complete(ctx *graph.Context, t *TransitionNode, out *OutputTransitionNode, reversed bool) {
	if reversed {
		n.current = t.from
	} else {
		n.current = t.to
	}
	out.accumulator = 0
	n.clearActive()
	n.notify(ctx, graph.TransitionCompleted, t, reversed)
}

// interruptCandidates returns the destination's transitions back to the source followed by the
// source's transitions to other states.
func (n *StateMachineNode) interruptCandidates(t *TransitionNode) []graph.NodeID {
	var out []graph.NodeID
	if dst := n.state(t.to); dst != nil {
		for _, id := range dst.transitions {
			if c := n.transition(id); c != nil && c.to == t.from {
				out = append(out, id)
			}
		}
	}
	if src := n.state(t.from); src != nil {
		for _, id := range src.transitions {
			if c := n.transition(id); c != nil && id != t.ID() && c.to != t.to {
				out = append(out, id)
			}
		}
	}
	return out
}

func (n *StateMachineNode) checkInterrupts(ctx *graph.Context, t *TransitionNode) {
	rose := false
	for _, id := range n.candidates {
		c := n.transition(id)
		if c == nil {
			continue
		}
		if out := c.EvaluateTrigger(ctx); out != nil && out.Rising() {
			rose = true
		}
	}
	if rose {
		n.reversed = !n.reversed
		n.notify(ctx, graph.TransitionReversed, t, n.reversed)
	}
}

func (n *StateMachineNode) notify(ctx *graph.Context, kind graph.TransitionEventKind, t *TransitionNode, reversed bool) {
	var from, to string
	if s := n.state(t.from); s != nil {
		from = s.Name()
	}
	if s := n.state(t.to); s != nil {
		to = s.Name()
	}
	ctx.Log().Debug("state machine transition", "machine", n.Name(), "event", kind.String(),
		"from", from, "to", to, "reversed", reversed)
	ctx.Notify(graph.TransitionEvent{Kind: kind, Machine: n.Name(), From: from, To: to, Reversed: reversed})
}

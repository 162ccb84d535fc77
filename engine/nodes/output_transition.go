package nodes

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/graph"
)

// DefaultTransitionDuration is the Duration input default, in seconds.
const DefaultTransitionDuration = 0.2

const (
	// OutputTransitionInputTrigger starts the transition while true.
	OutputTransitionInputTrigger = 0
	// OutputTransitionInputDuration is the blend length in seconds.
	OutputTransitionInputDuration = 1
)

// OutputTransitionNode is the sink of a transition's trigger graph. It holds the transition's
// settings and its blend accumulator.
type OutputTransitionNode struct {
	graph.Base

	startOffset   float32
	resetOnEnter  bool
	interruptible bool
	controlPoints []float32
	curve         string
	syncStyle     SyncStyle

	accumulator   float32
	triggered     bool
	prevTriggered bool
}

var (
	_ graph.Node         = &OutputTransitionNode{}
	_ graph.Configurable = &OutputTransitionNode{}
)

// NewOutputTransitionNode creates a transition sink with a quadratic ease and the default duration.
func NewOutputTransitionNode() *OutputTransitionNode {
	n := &OutputTransitionNode{
		Base:          graph.NewBase(graph.KindOutputTransition, "output"),
		controlPoints: []float32{0.5},
	}
	n.RegisterInput("Trigger", graph.BoolValue(false))
	n.RegisterInput("Duration", graph.FloatValue(DefaultTransitionDuration))
	return n
}

func (n *OutputTransitionNode) Evaluate(*graph.Context) {
	n.prevTriggered = n.triggered
	n.triggered = n.InputBool(OutputTransitionInputTrigger)
}

// Triggered returns the trigger value read by the last evaluation.
func (n *OutputTransitionNode) Triggered() bool { return n.triggered }

// Rising reports whether the trigger became true on the last evaluation.
func (n *OutputTransitionNode) Rising() bool { return n.triggered && !n.prevTriggered }

// Duration returns the blend length in seconds.
func (n *OutputTransitionNode) Duration() float32 { return n.InputFloat(OutputTransitionInputDuration) }

// SetDuration sets the default of the Duration input.
func (n *OutputTransitionNode) SetDuration(seconds float32) {
	_ = n.Inputs()[OutputTransitionInputDuration].SetDefault(graph.FloatValue(seconds))
}

// SetTrigger sets the default of the Trigger input.
func (n *OutputTransitionNode) SetTrigger(v bool) {
	_ = n.Inputs()[OutputTransitionInputTrigger].SetDefault(graph.BoolValue(v))
}

// Accumulator returns the time, in seconds, the transition has progressed.
func (n *OutputTransitionNode) Accumulator() float32 { return n.accumulator }

// StartOffset returns the playback position, in seconds, the destination rewinds to on enter.
func (n *OutputTransitionNode) StartOffset() float32 { return n.startOffset }

// SetStartOffset sets the rewind position used when ResetOnEnter is true.
func (n *OutputTransitionNode) SetStartOffset(seconds float32) { n.startOffset = seconds }

// ResetOnEnter reports whether the destination state is rewound when the transition starts.
func (n *OutputTransitionNode) ResetOnEnter() bool { return n.resetOnEnter }

// SetResetOnEnter toggles rewinding the destination state when the transition starts.
func (n *OutputTransitionNode) SetResetOnEnter(v bool) { n.resetOnEnter = v }

// Interruptible reports whether rising triggers on competing transitions reverse this one.
func (n *OutputTransitionNode) Interruptible() bool { return n.interruptible }

// SetInterruptible toggles reversal by competing transitions.
func (n *OutputTransitionNode) SetInterruptible(v bool) { n.interruptible = v }

// SyncStyle returns how source and destination playback speeds are matched during the blend.
func (n *OutputTransitionNode) SyncStyle() SyncStyle { return n.syncStyle }

// SetSyncStyle sets the playback speed matching used during the blend.
func (n *OutputTransitionNode) SetSyncStyle(s SyncStyle) { n.syncStyle = s }

// ControlPoints returns the inner Bezier control points of the blend curve.
func (n *OutputTransitionNode) ControlPoints() []float32 { return n.controlPoints }

// SetControlPoints replaces the inner Bezier control points. An empty list gives a linear ramp.
func (n *OutputTransitionNode) SetControlPoints(points ...float32) {
	n.controlPoints = append([]float32(nil), points...)
}

// SetCurve selects a named easing function in place of the Bezier control points.
// An empty name restores the Bezier curve.
func (n *OutputTransitionNode) SetCurve(name string) error {
	if name != "" {
		if _, ok := common.EaseByName(name); !ok {
			return fmt.Errorf("%w: unknown curve %q", graph.ErrInvalidProperty, name)
		}
	}
	n.curve = name
	return nil
}

// Factor maps normalized progress in [0, 1] to a blend factor through the transition's curve.
//
// Parameters:
//   - t: the normalized progress
//
// Returns:
//   - float32: the blend factor
func (n *OutputTransitionNode) Factor(t float32) float32 {
	if n.curve != "" {
		if fn, ok := common.EaseByName(n.curve); ok {
			return common.Ease(fn, t)
		}
	}
	return common.Bezier(t, n.controlPoints)
}

// Properties returns the transition settings keyed by their document names.
func (n *OutputTransitionNode) Properties() map[string]any {
	return map[string]any{
		"start_offset":   n.startOffset,
		"reset_on_enter": n.resetOnEnter,
		"interruptible":  n.interruptible,
		"control_points": append([]float32(nil), n.controlPoints...),
		"curve":          n.curve,
		"sync_style":     n.syncStyle.String(),
	}
}

// SetProperties applies settings decoded from a document. Unknown keys are ignored.
func (n *OutputTransitionNode) SetProperties(props map[string]any) error {
	if err := propFloat(props, "start_offset", &n.startOffset); err != nil {
		return err
	}
	if err := propBool(props, "reset_on_enter", &n.resetOnEnter); err != nil {
		return err
	}
	if err := propBool(props, "interruptible", &n.interruptible); err != nil {
		return err
	}
	if _, ok := props["control_points"]; ok {
		var cp []float32
		if err := propFloats(props, "control_points", &cp); err != nil {
			return err
		}
		n.controlPoints = cp
	}
	curve := n.curve
	if err := propString(props, "curve", &curve); err != nil {
		return err
	}
	if err := n.SetCurve(curve); err != nil {
		return err
	}
	if raw, ok := props["sync_style"]; ok {
		name, ok := raw.(string)
		if !ok {
			return fmt.Errorf("%w: sync_style must be a string, got %T", graph.ErrInvalidProperty, raw)
		}
		s, err := ParseSyncStyle(name)
		if err != nil {
			return err
		}
		n.syncStyle = s
	}
	return nil
}

package nodes

import (
	"math"

	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/graph"
)

// AnimationNode plays one clip of the context model and outputs the sampled pose.
// Playback advances by DeltaTime * TimeMultiplier * Speed every evaluation.
type AnimationNode struct {
	graph.Base
	clip        string
	loop        bool
	startOffset float32
	rootBone    string

	time    float32
	pending *float32
}

var (
	_ graph.Node         = &AnimationNode{}
	_ graph.Configurable = &AnimationNode{}
	_ graph.Resettable   = &AnimationNode{}
	_ graph.Durationer   = &AnimationNode{}
)

const (
	// AnimationInputSpeed is the playback rate multiplier input.
	AnimationInputSpeed = 0

	// AnimationOutputPose is the sampled pose output.
	AnimationOutputPose = 0
	// AnimationOutputNormalizedTime is the playback position in [0, 1].
	AnimationOutputNormalizedTime = 1
	// AnimationOutputFinished is true once a non-looping clip reaches its end.
	AnimationOutputFinished = 2
)

// NewAnimationNode creates a looping clip player.
//
// Parameters:
//   - clip: the animation name looked up on the context model
//
// Returns:
//   - *AnimationNode: the new node
func NewAnimationNode(clip string) *AnimationNode {
	n := &AnimationNode{Base: graph.NewBase(graph.KindAnimation, clip), clip: clip, loop: true}
	n.RegisterInput("Speed", graph.FloatValue(1))
	n.RegisterOutput("Pose", graph.PoseValue(nil))
	n.RegisterOutput("NormalizedTime", graph.FloatValue(0))
	n.RegisterOutput("Finished", graph.BoolValue(false))
	return n
}

// Clip returns the played animation name.
func (n *AnimationNode) Clip() string { return n.clip }

// SetClip changes the played animation and rewinds to the start offset.
func (n *AnimationNode) SetClip(clip string) {
	n.clip = clip
	n.ResetTime(n.startOffset)
}

// SetLoop sets whether playback wraps at the clip ends.
func (n *AnimationNode) SetLoop(loop bool) { n.loop = loop }

// SetStartOffset sets the playback position, in seconds, used initially and whenever the clip changes.
func (n *AnimationNode) SetStartOffset(seconds float32) {
	n.startOffset = seconds
	n.ResetTime(seconds)
}

// SetRootMotionBone names the bone whose motion is extracted into the pose's root-motion record.
// An empty name disables extraction.
func (n *AnimationNode) SetRootMotionBone(bone string) { n.rootBone = bone }

// Time returns the playback position in ticks.
func (n *AnimationNode) Time() float32 { return n.time }

func (n *AnimationNode) ResetTime(offset float32) {
	o := offset
	n.pending = &o
}

func (n *AnimationNode) Duration(ctx *graph.Context) float32 {
	if ctx == nil || ctx.Model == nil {
		return 0
	}
	anim := ctx.Model.Animation(n.clip)
	if anim == nil {
		return 0
	}
	return anim.DurationSeconds()
}

func (n *AnimationNode) Evaluate(ctx *graph.Context) {
	sk := ctx.Skeleton()
	if sk == nil || ctx.Controller == nil {
		n.SetOutputPose(AnimationOutputPose, nil)
		return
	}
	anim := ctx.Model.Animation(n.clip)
	if anim == nil {
		// Unknown clips degrade to the bind pose.
		n.SetOutputPose(AnimationOutputPose, ctx.Controller.Sample(n.Salt(), sk, nil, 0))
		n.SetOutputFloat(AnimationOutputNormalizedTime, 0)
		return
	}

	if n.pending != nil {
		n.time = n.wrap(*n.pending*anim.TicksPerSecond, anim.Duration)
		n.pending = nil
	}

	prev := n.time
	t := prev + ctx.ScaledDelta()*n.InputFloat(AnimationInputSpeed)*anim.TicksPerSecond
	wraps := 0
	finished := false
	if n.loop {
		switch {
		case t >= anim.Duration:
			wraps = 1
		case t < 0:
			wraps = -1
		}
		t = n.wrap(t, anim.Duration)
	} else {
		if t >= anim.Duration {
			t = anim.Duration
			finished = true
		}
		if t < 0 {
			t = 0
			finished = true
		}
	}
	n.time = t

	pose := ctx.Controller.Sample(animator.HashCombine(anim.ID(), n.Salt()), sk, anim, t)
	if n.rootBone != "" {
		if bone, ok := sk.BoneIndex(n.rootBone); ok {
			ctx.Controller.ExtractRootMotion(sk, anim, bone, prev, t, wraps, pose)
		}
	}

	n.SetOutputPose(AnimationOutputPose, pose)
	n.SetOutputFloat(AnimationOutputNormalizedTime, t/anim.Duration)
	n.SetOutputBool(AnimationOutputFinished, finished)
}

func (n *AnimationNode) wrap(t, duration float32) float32 {
	if duration <= 0 {
		return 0
	}
	if !n.loop {
		return max(0, min(t, duration))
	}
	t = float32(math.Mod(float64(t), float64(duration)))
	if t < 0 {
		t += duration
	}
	return t
}

func (n *AnimationNode) Properties() map[string]any {
	return map[string]any{
		"clip":             n.clip,
		"loop":             n.loop,
		"start_offset":     n.startOffset,
		"root_motion_bone": n.rootBone,
	}
}

func (n *AnimationNode) SetProperties(props map[string]any) error {
	if err := propString(props, "clip", &n.clip); err != nil {
		return err
	}
	if err := propBool(props, "loop", &n.loop); err != nil {
		return err
	}
	if err := propFloat(props, "start_offset", &n.startOffset); err != nil {
		return err
	}
	if err := propString(props, "root_motion_bone", &n.rootBone); err != nil {
		return err
	}
	n.ResetTime(n.startOffset)
	return nil
}

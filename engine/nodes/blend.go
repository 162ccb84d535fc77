package nodes

import (
	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/graph"
)

// BlendNode2D blends pose A toward pose B by a scalar weight, scoped by an internal bone mask.
type BlendNode2D struct {
	graph.Base
	mask *animator.BoneMask
}

var (
	_ graph.Node         = &BlendNode2D{}
	_ graph.Configurable = &BlendNode2D{}
)

const (
	BlendInputWeight = 0
	BlendInputA      = 1
	BlendInputB      = 2
)

// NewBlendNode2D creates a two-pose blend with a full-weight mask.
func NewBlendNode2D() *BlendNode2D {
	n := &BlendNode2D{Base: graph.NewBase(graph.KindBlend2D, "blend"), mask: &animator.BoneMask{}}
	n.RegisterInput("Weight", graph.FloatValue(0))
	n.RegisterInput("A", graph.PoseValue(nil))
	n.RegisterInput("B", graph.PoseValue(nil))
	n.RegisterOutput("Pose", graph.PoseValue(nil))
	return n
}

// Mask returns the node's bone mask for editing.
func (n *BlendNode2D) Mask() *animator.BoneMask { return n.mask }

func (n *BlendNode2D) Evaluate(ctx *graph.Context) {
	a, b := n.InputPose(BlendInputA), n.InputPose(BlendInputB)
	if ctx.Controller == nil {
		n.SetOutputPose(0, firstPose(a, b))
		return
	}
	sk := ctx.Skeleton()
	if sk != nil && n.mask.Len() < sk.BoneCount() {
		n.mask.Resize(sk.BoneCount())
	}
	w := n.InputFloat(BlendInputWeight)
	n.SetOutputPose(0, ctx.Controller.BlendKeyed(n.Salt(), sk, a, b, w, n.mask))
}

func (n *BlendNode2D) Properties() map[string]any {
	props := map[string]any{}
	if w := n.mask.Weights(); len(w) > 0 {
		props["mask"] = w
	}
	return props
}

func (n *BlendNode2D) SetProperties(props map[string]any) error {
	var w []float32
	if err := propFloats(props, "mask", &w); err != nil {
		return err
	}
	if w != nil {
		n.mask.SetWeights(w)
	}
	return nil
}

func firstPose(poses ...*animator.Pose) *animator.Pose {
	for _, p := range poses {
		if p != nil {
			return p
		}
	}
	return nil
}

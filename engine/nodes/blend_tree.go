package nodes

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/graph"
	"github.com/go-gl/mathgl/mgl32"
)

// AngularWeight scales the angular term of polar gradient-band interpolation relative to the radial term.
const AngularWeight = 2

// minContribution is the weight below which a sample is left out of the blend.
const minContribution = 1e-4

// BlendTree2D blends any number of poses placed at 2D sample positions, weighted by the distance
// of the blend parameter to each sample in polar space.
//
// Input 0 is the Vector2 blend parameter. Sample i uses input 1+2i for its pose and 2+2i for its position.
// Samples at identical positions are not supported.
type BlendTree2D struct {
	graph.Base
	weights []float32
}

var (
	_ graph.Node         = &BlendTree2D{}
	_ graph.Configurable = &BlendTree2D{}
)

// BlendTreeInputParameter is the blend parameter input.
const BlendTreeInputParameter = 0

// NewBlendTree2D creates a blend tree with the given sample positions.
//
// Parameters:
//   - positions: the initial sample positions
//
// Returns:
//   - *BlendTree2D: the new node
func NewBlendTree2D(positions ...mgl32.Vec2) *BlendTree2D {
	n := &BlendTree2D{Base: graph.NewBase(graph.KindBlendTree2D, "blend_tree")}
	n.RegisterInput("Blend", graph.Vector2Value(mgl32.Vec2{}))
	n.RegisterOutput("Pose", graph.PoseValue(nil))
	for _, p := range positions {
		n.AddSample(p)
	}
	return n
}

// AddSample appends a sample and returns its index.
// The sample's pose input is SamplePoseInput(i) and its position input is SamplePositionInput(i).
func (n *BlendTree2D) AddSample(pos mgl32.Vec2) int {
	i := n.SampleCount()
	n.RegisterInput(fmt.Sprintf("Pose %d", i), graph.PoseValue(nil))
	n.RegisterInput(fmt.Sprintf("Position %d", i), graph.Vector2Value(pos))
	return i
}

// SampleCount returns the number of samples.
func (n *BlendTree2D) SampleCount() int {
	return (len(n.Inputs()) - 1) / 2
}

// SamplePoseInput returns the input index of sample i's pose.
func SamplePoseInput(i int) int { return 1 + 2*i }

// SamplePositionInput returns the input index of sample i's position.
func SamplePositionInput(i int) int { return 2 + 2*i }

// Weights returns the per-sample weights computed during the last evaluation.
func (n *BlendTree2D) Weights() []float32 { return n.weights }

func (n *BlendTree2D) Evaluate(ctx *graph.Context) {
	count := n.SampleCount()
	poses := make([]*animator.Pose, 0, count)
	positions := make([]mgl32.Vec2, 0, count)
	for i := 0; i < count; i++ {
		p := n.InputPose(SamplePoseInput(i))
		if p == nil {
			continue
		}
		poses = append(poses, p)
		positions = append(positions, n.InputVector2(SamplePositionInput(i)))
	}

	switch len(poses) {
	case 0:
		n.weights = n.weights[:0]
		n.SetOutputPose(0, nil)
		return
	case 1:
		n.weights = append(n.weights[:0], 1)
		n.SetOutputPose(0, poses[0])
		return
	}

	n.weights = GradientBandPolar(n.InputVector2(BlendTreeInputParameter), positions)

	var contrib []*animator.Pose
	var ws []float32
	for i, w := range n.weights {
		if w > minContribution {
			contrib = append(contrib, poses[i])
			ws = append(ws, w)
		}
	}

	ctrl, sk := ctx.Controller, ctx.Skeleton()
	if ctrl == nil {
		n.SetOutputPose(0, firstPose(contrib...))
		return
	}

	var out *animator.Pose
	switch len(contrib) {
	case 0:
		out = nil
	case 1:
		out = contrib[0]
	case 2:
		out = ctrl.BlendKeyed(n.Salt(), sk, contrib[0], contrib[1], ws[1]/(ws[0]+ws[1]), nil)
	case 3:
		out = ctrl.BlendTriangularKeyed(n.Salt(), sk, contrib[0], contrib[1], contrib[2], [3]float32{ws[0], ws[1], ws[2]}, nil)
	default:
		out = ctrl.BlendWeighted(n.Salt(), sk, contrib, ws, nil)
	}
	n.SetOutputPose(0, out)
}

// GradientBandPolar computes normalized blend weights for a query point against sample positions
// using gradient-band interpolation in polar space. The angular term is scaled by AngularWeight.
// A query exactly at a sample position yields weight 1 for that sample and 0 for all others.
//
// Parameters:
//   - q: the query point
//   - samples: the sample positions, which must be distinct
//
// Returns:
//   - []float32: one weight per sample, summing to 1
func GradientBandPolar(q mgl32.Vec2, samples []mgl32.Vec2) []float32 {
	weights := make([]float32, len(samples))
	if len(samples) == 0 {
		return weights
	}
	if len(samples) == 1 {
		weights[0] = 1
		return weights
	}

	qLen := q.Len()
	var total float32
	for i, pi := range samples {
		iLen := pi.Len()
		w := float32(1)
		for j, pj := range samples {
			if i == j {
				continue
			}
			jLen := pj.Len()
			avg := (iLen + jLen) / 2
			if avg == 0 {
				continue
			}

			var angleIJ, angleIQ float32
			switch {
			case iLen == 0:
				// Sample i has no direction; borrow sample j's.
				angleIQ = signedAngle(pj, q)
			case jLen == 0:
				angleIQ = signedAngle(pi, q)
			default:
				angleIJ = signedAngle(pi, pj)
				angleIQ = signedAngle(pi, q)
			}

			vij := mgl32.Vec2{(jLen - iLen) / avg, angleIJ * AngularWeight}
			viq := mgl32.Vec2{(qLen - iLen) / avg, angleIQ * AngularWeight}
			denom := vij.Dot(vij)
			if denom == 0 {
				continue
			}
			h := 1 - viq.Dot(vij)/denom
			w = min(w, max(h, 0))
		}
		weights[i] = w
		total += w
	}

	if total <= 0 {
		// Unreachable with distinct samples; fall back to the nearest sample.
		best, bestD := 0, float32(math.MaxFloat32)
		for i, p := range samples {
			if d := p.Sub(q).Len(); d < bestD {
				best, bestD = i, d
			}
		}
		weights[best] = 1
		return weights
	}
	for i := range weights {
		weights[i] /= total
	}
	return weights
}

// signedAngle returns the signed angle from a to b, or 0 if either is zero-length.
func signedAngle(a, b mgl32.Vec2) float32 {
	if a.Len() == 0 || b.Len() == 0 {
		return 0
	}
	cross := a[0]*b[1] - a[1]*b[0]
	return float32(math.Atan2(float64(cross), float64(a.Dot(b))))
}

func (n *BlendTree2D) Properties() map[string]any {
	samples := make([]any, n.SampleCount())
	for i := range samples {
		p := n.Inputs()[SamplePositionInput(i)].Default().Vector2
		samples[i] = []float32{p[0], p[1]}
	}
	return map[string]any{"samples": samples}
}

func (n *BlendTree2D) SetProperties(props map[string]any) error {
	raw, ok := props["samples"]
	if !ok {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		return fmt.Errorf("%w: samples must be a list, got %T", graph.ErrInvalidProperty, raw)
	}
	for i, item := range list {
		v, err := graph.FromInterface(graph.TypeVector2, item)
		if err != nil {
			return fmt.Errorf("%w: samples[%d]: %w", graph.ErrInvalidProperty, i, err)
		}
		if i < n.SampleCount() {
			if err := n.Inputs()[SamplePositionInput(i)].SetDefault(v); err != nil {
				return err
			}
			continue
		}
		n.AddSample(v.Vector2)
	}
	return nil
}

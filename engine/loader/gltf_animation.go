package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// gltfTicksPerSecond is the sample rate of extracted clips; glTF key times are seconds.
const gltfTicksPerSecond = 1

// gltfExtractAnimations converts every animation that targets at least one joint.
// Channels are matched to bones by name through the node-to-bone map.
func gltfExtractAnimations(p *gltfParser, joints map[int]string) ([]*model.Animation, error) {
	var out []*model.Animation
	for i := range p.doc.Animations {
		anim, err := gltfExtractAnimation(p, i, joints)
		if err != nil {
			return nil, err
		}
		if anim != nil {
			out = append(out, anim)
		}
	}
	return out, nil
}

func gltfExtractAnimation(p *gltfParser, index int, joints map[int]string) (*model.Animation, error) {
	src := &p.doc.Animations[index]
	name := src.Name
	if name == "" {
		name = fmt.Sprintf("animation_%d", index)
	}

	byBone := make(map[string]*model.Channel)
	var order []string
	var end float32

	for ci := range src.Channels {
		ch := &src.Channels[ci]
		if ch.Target.Node == nil {
			continue
		}
		bone, ok := joints[*ch.Target.Node]
		if !ok {
			continue
		}
		if ch.Sampler < 0 || ch.Sampler >= len(src.Samplers) {
			return nil, fmt.Errorf("animation %q channel %d: invalid sampler index %d", name, ci, ch.Sampler)
		}
		sampler := &src.Samplers[ch.Sampler]

		var width int
		var elementType string
		switch ch.Target.Path {
		case gltfAnimPathTranslation, gltfAnimPathScale:
			width, elementType = 3, gltfAccessorTypeVec3
		case gltfAnimPathRotation:
			width, elementType = 4, gltfAccessorTypeVec4
		default:
			continue
		}

		times, err := p.ReadFloats(sampler.Input, gltfAccessorTypeScalar)
		if err != nil {
			return nil, fmt.Errorf("animation %q channel %d: failed to read times: %w", name, ci, err)
		}
		values, err := p.ReadFloats(sampler.Output, elementType)
		if err != nil {
			return nil, fmt.Errorf("animation %q channel %d: failed to read values: %w", name, ci, err)
		}
		if len(times) > 0 && times[len(times)-1] > end {
			end = times[len(times)-1]
		}

		// Cubic spline samplers store in-tangent, value, out-tangent per key; keep the value.
		step, lead := 1, 0
		if sampler.Interpolation == gltfInterpolationCubicSpline {
			step, lead = 3, 1
		}
		count := min(len(times), len(values)/(width*step))

		out, ok := byBone[bone]
		if !ok {
			out = &model.Channel{BoneName: bone}
			byBone[bone] = out
			order = append(order, bone)
		}

		for k := 0; k < count; k++ {
			v := values[(k*step+lead)*width:]
			switch ch.Target.Path {
			case gltfAnimPathTranslation:
				out.PositionKeys = append(out.PositionKeys, model.VectorKey{Time: times[k], Value: mgl32.Vec3{v[0], v[1], v[2]}})
			case gltfAnimPathScale:
				out.ScaleKeys = append(out.ScaleKeys, model.VectorKey{Time: times[k], Value: mgl32.Vec3{v[0], v[1], v[2]}})
			case gltfAnimPathRotation:
				out.RotationKeys = append(out.RotationKeys, model.QuatKey{Time: times[k], Value: common.QuatFromXYZW([4]float32{v[0], v[1], v[2], v[3]})})
			}
		}
	}

	if len(order) == 0 {
		return nil, nil
	}

	// A single-key clip still needs a positive length.
	if end <= 0 {
		end = 1.0 / model.DefaultTicksPerSecond
	}

	channels := make([]model.Channel, len(order))
	for i, bone := range order {
		channels[i] = *byBone[bone]
	}
	return model.NewAnimation(name, end, gltfTicksPerSecond, channels)
}

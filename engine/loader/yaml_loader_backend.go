package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/goccy/go-yaml"
)

// yamlAsset is the on-disk layout of a YAML asset description.
type yamlAsset struct {
	Name       string          `yaml:"name"`
	Skeleton   *yamlSkeleton   `yaml:"skeleton"`
	Animations []yamlAnimation `yaml:"animations"`
}

type yamlSkeleton struct {
	Name     string     `yaml:"name"`
	Armature []float32  `yaml:"armature"`
	Bones    []yamlBone `yaml:"bones"`
}

// yamlBone names its parent; the root bone leaves Parent empty.
type yamlBone struct {
	Name        string    `yaml:"name"`
	Parent      string    `yaml:"parent"`
	Translation []float32 `yaml:"translation"`
	Rotation    []float32 `yaml:"rotation"`
	Scale       []float32 `yaml:"scale"`
	InverseBind []float32 `yaml:"inverse_bind"`
}

type yamlAnimation struct {
	Name           string        `yaml:"name"`
	Duration       float32       `yaml:"duration"`
	TicksPerSecond float32       `yaml:"ticks_per_second"`
	Channels       []yamlChannel `yaml:"channels"`
}

type yamlChannel struct {
	Bone     string    `yaml:"bone"`
	Position []yamlKey `yaml:"position"`
	Rotation []yamlKey `yaml:"rotation"`
	Scale    []yamlKey `yaml:"scale"`
}

type yamlKey struct {
	Time  float32   `yaml:"time"`
	Value []float32 `yaml:"value"`
}

// yamlLoaderBackend decodes YAML asset descriptions with a skeleton and its clips.
type yamlLoaderBackend struct{}

var _ loaderBackend = &yamlLoaderBackend{}

func newYAMLLoaderBackend() *yamlLoaderBackend {
	return &yamlLoaderBackend{}
}

func (b *yamlLoaderBackend) Decode(data []byte, _ string, fallbackName string) (model.Model, error) {
	var doc yamlAsset
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("failed to parse asset YAML: %w", err)
	}

	name := doc.Name
	if name == "" {
		name = fallbackName
	}
	options := []model.ModelBuilderOption{model.WithName(name)}

	if doc.Skeleton != nil {
		skeleton, err := doc.Skeleton.build(name)
		if err != nil {
			return nil, err
		}
		options = append(options, model.WithSkeleton(skeleton))
	}

	seen := make(map[string]bool, len(doc.Animations))
	anims := make([]*model.Animation, 0, len(doc.Animations))
	for i := range doc.Animations {
		a, err := doc.Animations[i].build()
		if err != nil {
			return nil, err
		}
		if seen[a.Name] {
			return nil, fmt.Errorf("%w: %q", model.ErrDuplicateClip, a.Name)
		}
		seen[a.Name] = true
		anims = append(anims, a)
	}
	options = append(options, model.WithAnimations(anims...))

	return model.NewModel(options...), nil
}

func (s *yamlSkeleton) build(modelName string) (*model.Skeleton, error) {
	index := make(map[string]int, len(s.Bones))
	for i, b := range s.Bones {
		if _, dup := index[b.Name]; !dup {
			index[b.Name] = i
		}
	}

	bones := make([]model.Bone, len(s.Bones))
	for i, src := range s.Bones {
		parent := -1
		if src.Parent != "" {
			p, ok := index[src.Parent]
			if !ok {
				return nil, fmt.Errorf("bone %q parent %q: %w", src.Name, src.Parent, model.ErrInvalidParent)
			}
			parent = p
		}

		t := model.IdentityTransform()
		var err error
		if t.Translation, err = vec3(src.Translation, t.Translation); err != nil {
			return nil, fmt.Errorf("bone %q translation: %w", src.Name, err)
		}
		if t.Scale, err = vec3(src.Scale, t.Scale); err != nil {
			return nil, fmt.Errorf("bone %q scale: %w", src.Name, err)
		}
		if t.Rotation, err = quat(src.Rotation, t.Rotation); err != nil {
			return nil, fmt.Errorf("bone %q rotation: %w", src.Name, err)
		}
		ibm, err := mat4(src.InverseBind)
		if err != nil {
			return nil, fmt.Errorf("bone %q inverse_bind: %w", src.Name, err)
		}

		bones[i] = model.Bone{
			Name:              src.Name,
			ParentID:          parent,
			LocalTransform:    t,
			InverseBindMatrix: ibm,
		}
	}

	armature, err := mat4(s.Armature)
	if err != nil {
		return nil, fmt.Errorf("skeleton armature: %w", err)
	}

	name := common.Coalesce(s.Name, modelName)
	return model.NewSkeleton(name, bones, armature)
}

func (a *yamlAnimation) build() (*model.Animation, error) {
	channels := make([]model.Channel, len(a.Channels))
	for i, src := range a.Channels {
		ch := model.Channel{BoneName: src.Bone}
		for _, k := range src.Position {
			v, err := vec3(k.Value, mgl32.Vec3{})
			if err != nil {
				return nil, fmt.Errorf("animation %q bone %q position: %w", a.Name, src.Bone, err)
			}
			ch.PositionKeys = append(ch.PositionKeys, model.VectorKey{Time: k.Time, Value: v})
		}
		for _, k := range src.Rotation {
			q, err := quat(k.Value, mgl32.QuatIdent())
			if err != nil {
				return nil, fmt.Errorf("animation %q bone %q rotation: %w", a.Name, src.Bone, err)
			}
			ch.RotationKeys = append(ch.RotationKeys, model.QuatKey{Time: k.Time, Value: q})
		}
		for _, k := range src.Scale {
			v, err := vec3(k.Value, mgl32.Vec3{1, 1, 1})
			if err != nil {
				return nil, fmt.Errorf("animation %q bone %q scale: %w", a.Name, src.Bone, err)
			}
			ch.ScaleKeys = append(ch.ScaleKeys, model.VectorKey{Time: k.Time, Value: v})
		}
		channels[i] = ch
	}
	return model.NewAnimation(a.Name, a.Duration, a.TicksPerSecond, channels)
}

func vec3(v []float32, def mgl32.Vec3) (mgl32.Vec3, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 3:
		return mgl32.Vec3{v[0], v[1], v[2]}, nil
	default:
		return def, fmt.Errorf("want 3 components, got %d", len(v))
	}
}

// quat reads x, y, z, w.
func quat(v []float32, def mgl32.Quat) (mgl32.Quat, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 4:
		return common.QuatFromXYZW([4]float32{v[0], v[1], v[2], v[3]}), nil
	default:
		return def, fmt.Errorf("want 4 components, got %d", len(v))
	}
}

// mat4 reads a column-major matrix. An empty list yields the zero matrix, which
// model.NewSkeleton replaces with identity.
func mat4(v []float32) (mgl32.Mat4, error) {
	var m mgl32.Mat4
	switch len(v) {
	case 0:
		return m, nil
	case 16:
		copy(m[:], v)
		return m, nil
	default:
		return m, fmt.Errorf("want 16 components, got %d", len(v))
	}
}

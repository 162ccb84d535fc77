package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

// gltfLoaderBackend reads the skeleton of the first skin and every animation that drives it.
// Meshes, materials and textures are ignored.
type gltfLoaderBackend struct{}

var _ loaderBackend = &gltfLoaderBackend{}

func newGLTFLoaderBackend() *gltfLoaderBackend {
	return &gltfLoaderBackend{}
}

func (b *gltfLoaderBackend) Decode(data []byte, baseDir, fallbackName string) (model.Model, error) {
	p := newGLTFParser(baseDir)
	doc, err := p.Parse(data)
	if err != nil {
		return nil, err
	}

	name := fallbackName
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) && doc.Scenes[*doc.Scene].Name != "" {
		name = doc.Scenes[*doc.Scene].Name
	}

	options := []model.ModelBuilderOption{model.WithName(name)}
	if len(doc.Skins) > 0 {
		skeleton, joints, err := gltfExtractSkeleton(p, gltfPrimarySkin(doc))
		if err != nil {
			return nil, fmt.Errorf("skeleton extraction failed: %w", err)
		}
		anims, err := gltfExtractAnimations(p, joints)
		if err != nil {
			return nil, fmt.Errorf("animation extraction failed: %w", err)
		}
		options = append(options, model.WithSkeleton(skeleton), model.WithAnimations(anims...))
	}
	return model.NewModel(options...), nil
}

// gltfPrimarySkin returns the skin referenced by the first skinned node, or 0.
func gltfPrimarySkin(doc *gltfDocument) int {
	for i := range doc.Nodes {
		if s := doc.Nodes[i].Skin; s != nil && *s >= 0 && *s < len(doc.Skins) {
			return *s
		}
	}
	return 0
}

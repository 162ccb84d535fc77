package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// gltfExtractSkeleton builds a Skeleton from one skin. Joints are reordered breadth-first
// from the root so parents precede children. The world transform of the root joint's
// non-joint ancestors becomes the armature transform.
//
// Returns the skeleton and a map from glTF node index to bone name for channel matching.
func gltfExtractSkeleton(p *gltfParser, skinIndex int) (*model.Skeleton, map[int]string, error) {
	doc := p.doc
	if skinIndex < 0 || skinIndex >= len(doc.Skins) {
		return nil, nil, fmt.Errorf("skin index %d out of range", skinIndex)
	}
	skin := &doc.Skins[skinIndex]

	var inverseBind []float32
	if skin.InverseBindMatrices != nil {
		var err error
		inverseBind, err = p.ReadFloats(*skin.InverseBindMatrices, gltfAccessorTypeMat4)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read inverse bind matrices: %w", err)
		}
	}

	parents := gltfParentMap(doc)
	jointSlot := make(map[int]int, len(skin.Joints))
	for i, node := range skin.Joints {
		if node < 0 || node >= len(doc.Nodes) {
			return nil, nil, fmt.Errorf("joint %d: invalid node index %d", i, node)
		}
		jointSlot[node] = i
	}

	// Breadth-first from every joint whose parent is not a joint.
	var order, queue []int
	for _, node := range skin.Joints {
		if _, ok := jointSlot[parents[node]]; !ok {
			queue = append(queue, node)
		}
	}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)
		for _, c := range doc.Nodes[node].Children {
			if _, ok := jointSlot[c]; ok {
				queue = append(queue, c)
			}
		}
	}

	boneOf := make(map[int]int, len(order))
	names := make(map[int]string, len(order))
	bones := make([]model.Bone, len(order))
	for i, node := range order {
		boneOf[node] = i
		n := &doc.Nodes[node]

		name := n.Name
		if name == "" {
			name = fmt.Sprintf("bone_%d", i)
		}
		names[node] = name

		parent := -1
		if pb, ok := boneOf[parents[node]]; ok {
			parent = pb
		}

		ibm := mgl32.Ident4()
		if slot := jointSlot[node]; (slot+1)*16 <= len(inverseBind) {
			copy(ibm[:], inverseBind[slot*16:(slot+1)*16])
		}

		bones[i] = model.Bone{
			Name:              name,
			ParentID:          parent,
			LocalTransform:    gltfNodeTransform(n),
			InverseBindMatrix: ibm,
		}
	}

	armature := mgl32.Ident4()
	if len(order) > 0 {
		for a := parents[order[0]]; a >= 0; a = parents[a] {
			armature = gltfNodeTransform(&doc.Nodes[a]).Matrix().Mul4(armature)
		}
	}

	name := skin.Name
	if name == "" {
		name = fmt.Sprintf("skin_%d", skinIndex)
	}
	skeleton, err := model.NewSkeleton(name, bones, armature)
	if err != nil {
		return nil, nil, err
	}
	return skeleton, names, nil
}

// gltfParentMap maps every node index to its parent, or -1 for scene roots.
func gltfParentMap(doc *gltfDocument) map[int]int {
	parents := make(map[int]int, len(doc.Nodes))
	for i := range doc.Nodes {
		if _, ok := parents[i]; !ok {
			parents[i] = -1
		}
		for _, c := range doc.Nodes[i].Children {
			parents[c] = i
		}
	}
	return parents
}

func gltfNodeTransform(n *gltfNode) model.Transform {
	if n.Matrix != nil {
		t, r, s := common.DecomposeMat4(mgl32.Mat4(*n.Matrix))
		return model.Transform{Translation: t, Rotation: r, Scale: s}
	}

	out := model.IdentityTransform()
	if n.Translation != nil {
		out.Translation = mgl32.Vec3(*n.Translation)
	}
	if n.Rotation != nil {
		out.Rotation = common.QuatFromXYZW(*n.Rotation)
	}
	if n.Scale != nil {
		out.Scale = mgl32.Vec3(*n.Scale)
	}
	return out
}

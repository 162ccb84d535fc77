package model

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// NewSkeleton validates a bone hierarchy and builds a Skeleton from it.
// Bone IDs are reassigned to their slice index and Children lists are rebuilt from ParentID.
// A zero rotation becomes the identity rotation, a zero scale becomes unit scale, and a zero
// inverse-bind or armature matrix becomes the identity matrix.
//
// Parameters:
//   - name: the skeleton identifier
//   - bones: the bones in topological order (every parent before its children)
//   - armature: the global skeleton-space correction transform
//
// Returns:
//   - *Skeleton: the validated skeleton
//   - error: an error if the hierarchy is empty, too large, cyclic, unordered, or has duplicate names
func NewSkeleton(name string, bones []Bone, armature mgl32.Mat4) (*Skeleton, error) {
	n := len(bones)
	if n == 0 {
		return nil, ErrNoBones
	}
	if n > MaxBonesPerInstance {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyBones, n, MaxBonesPerInstance)
	}

	var zero mgl32.Mat4
	if armature == zero {
		armature = mgl32.Ident4()
	}

	s := &Skeleton{
		Name:              name,
		Bones:             make([]Bone, n),
		RootBone:          -1,
		ArmatureTransform: armature,
		boneIndex:         make(map[string]int, n),
	}

	for i := range bones {
		b := bones[i]
		if b.Name == "" {
			return nil, fmt.Errorf("bone %d: %w", i, ErrEmptyName)
		}
		if _, dup := s.boneIndex[b.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateBone, b.Name)
		}

		switch {
		case b.ParentID < 0:
			if s.RootBone >= 0 {
				return nil, fmt.Errorf("%w: %q and %q", ErrMultipleRoots, s.Bones[s.RootBone].Name, b.Name)
			}
			b.ParentID = -1
			s.RootBone = i
		case b.ParentID >= n || b.ParentID == i:
			return nil, fmt.Errorf("bone %q: %w", b.Name, ErrInvalidParent)
		case b.ParentID > i:
			return nil, fmt.Errorf("bone %q: %w", b.Name, ErrBoneOrder)
		}

		b.ID = i
		b.Children = nil
		if b.LocalTransform.Rotation == (mgl32.Quat{}) {
			b.LocalTransform.Rotation = mgl32.QuatIdent()
		} else {
			b.LocalTransform.Rotation = b.LocalTransform.Rotation.Normalize()
		}
		if b.LocalTransform.Scale == (mgl32.Vec3{}) {
			b.LocalTransform.Scale = mgl32.Vec3{1, 1, 1}
		}
		if b.InverseBindMatrix == zero {
			b.InverseBindMatrix = mgl32.Ident4()
		}

		s.Bones[i] = b
		s.boneIndex[b.Name] = i
		if b.ParentID >= 0 {
			p := &s.Bones[b.ParentID]
			p.Children = append(p.Children, i)
		}
	}

	// Parents always precede children, so bone 0 is the only possible root.
	return s, nil
}

// BoneCount returns the number of bones in the skeleton.
//
// Returns:
//   - int: the bone count
func (s *Skeleton) BoneCount() int {
	return len(s.Bones)
}

// BoneIndex looks up a bone ID by name.
//
// Parameters:
//   - name: the bone name
//
// Returns:
//   - int: the bone ID, or -1 if not found
//   - bool: true if the bone exists
func (s *Skeleton) BoneIndex(name string) (int, bool) {
	id, ok := s.boneIndex[name]
	if !ok {
		return -1, false
	}
	return id, true
}

// Descendants returns the IDs of a bone and every bone beneath it, depth-first.
//
// Parameters:
//   - id: the branch root bone ID
//
// Returns:
//   - []int: the branch bone IDs, or nil if id is out of range
func (s *Skeleton) Descendants(id int) []int {
	if id < 0 || id >= len(s.Bones) {
		return nil
	}
	out := []int{id}
	stack := []int{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range s.Bones[cur].Children {
			out = append(out, c)
			stack = append(stack, c)
		}
	}
	return out
}

// BindPose returns a copy of every bone's bind-pose local transform, indexed by bone ID.
//
// Returns:
//   - []Transform: the bind-pose local transforms
func (s *Skeleton) BindPose() []Transform {
	out := make([]Transform, len(s.Bones))
	for i := range s.Bones {
		out[i] = s.Bones[i].LocalTransform
	}
	return out
}

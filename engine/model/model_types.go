package model

import (
	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxBonesPerInstance is the maximum number of bones a single skeleton may hold.
// Every per-bone buffer in a pose is sized to this constant.
const MaxBonesPerInstance = 128

// DefaultTicksPerSecond is used when an animation does not declare its own sample rate.
const DefaultTicksPerSecond = 25

// --- Transform & Skeleton Types ---

// Transform represents a decomposed transform for animation interpolation.
type Transform struct {
	// Translation is the position offset.
	Translation mgl32.Vec3

	// Rotation is the orientation as a unit quaternion.
	Rotation mgl32.Quat

	// Scale is the scale factor along each axis.
	Scale mgl32.Vec3
}

// IdentityTransform returns a transform with no translation, no rotation and unit scale.
//
// Returns:
//   - Transform: the identity transform
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Matrix composes the transform into a T * R * S matrix.
//
// Returns:
//   - mgl32.Mat4: the composed matrix
func (t Transform) Matrix() mgl32.Mat4 {
	return common.ComposeTRS(t.Translation, t.Rotation, t.Scale)
}

// ApproxEqual reports whether two transforms are equal within the given tolerance.
// Rotations are compared as orientations so q and -q are considered equal.
//
// Parameters:
//   - o: the transform to compare against
//   - eps: the absolute per-component tolerance
//
// Returns:
//   - bool: true if the transforms match
func (t Transform) ApproxEqual(o Transform, eps float32) bool {
	return common.Vec3Near(t.Translation, o.Translation, eps) &&
		common.Vec3Near(t.Scale, o.Scale, eps) &&
		t.Rotation.OrientationEqualThreshold(o.Rotation, eps)
}

// Bone represents a single bone in a skeleton hierarchy.
type Bone struct {
	// ID is the bone's index into every per-bone array of the skeleton.
	ID int

	// Name is the bone's identifier, used to match animation channels.
	Name string

	// ParentID is the index of the parent bone (-1 for the root bone).
	ParentID int

	// Children lists the IDs of this bone's direct children in declaration order.
	Children []int

	// LocalTransform is the bind-pose transform relative to the parent.
	LocalTransform Transform

	// InverseBindMatrix transforms from model space to bone space at bind pose.
	InverseBindMatrix mgl32.Mat4
}

// Skeleton represents a read-only bone hierarchy shared by every entity that uses it.
type Skeleton struct {
	// Name is the skeleton identifier.
	Name string

	// Bones holds every bone, ordered so parents precede children.
	Bones []Bone

	// RootBone is the ID of the single root bone.
	RootBone int

	// ArmatureTransform is the global skeleton-space correction applied after skinning.
	ArmatureTransform mgl32.Mat4

	boneIndex map[string]int
}

// --- Animation Types ---

// VectorKey stores a 3D vector value at a specific time.
type VectorKey struct {
	// Time is the key timestamp in ticks.
	Time float32

	// Value is the 3D vector value at this key.
	Value mgl32.Vec3
}

// QuatKey stores a quaternion rotation at a specific time.
type QuatKey struct {
	// Time is the key timestamp in ticks.
	Time float32

	// Value is the rotation at this key.
	Value mgl32.Quat
}

// Channel contains keyframe data for a single bone, matched by name.
type Channel struct {
	// BoneName is the name of the bone this channel animates.
	BoneName string

	// PositionKeys are keyframes for translation.
	PositionKeys []VectorKey

	// RotationKeys are keyframes for rotation.
	RotationKeys []QuatKey

	// ScaleKeys are keyframes for scale.
	ScaleKeys []VectorKey
}

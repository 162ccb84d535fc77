package animator

import (
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxBonesPerInstance is the size of every per-bone buffer in a Pose.
const MaxBonesPerInstance = model.MaxBonesPerInstance

// RootMotion records the motion of a designated root bone across the time window of one pose update.
type RootMotion struct {
	// BoneID is the bone the motion was extracted from.
	BoneID int

	StartTranslation   mgl32.Vec3
	EndTranslation     mgl32.Vec3
	CurrentTranslation mgl32.Vec3
	DeltaTranslation   mgl32.Vec3

	StartRotation   mgl32.Quat
	EndRotation     mgl32.Quat
	CurrentRotation mgl32.Quat
	DeltaRotation   mgl32.Quat
}

// Pose is the set of per-bone local and skinning transforms of a skeleton at one instant.
// Poses are owned by a Controller's cache and reused across frames; callers must not retain
// a Pose past the next evaluation that produces the same key.
type Pose struct {
	// Hash is the cache key this pose was produced under.
	Hash uint64

	// BoneCount is the number of leading entries of Local and Global that are in use.
	BoneCount int

	// Local holds each bone's transform relative to its parent, indexed by bone ID.
	Local []model.Transform

	// Global holds each bone's skinning matrix (global * inverseBind * armature), indexed by bone ID.
	Global []mgl32.Mat4

	// RootMotion is the extracted root-bone motion, or nil when none was extracted.
	RootMotion *RootMotion

	rootMotion RootMotion
}

// NewPose allocates a pose with buffers sized to MaxBonesPerInstance.
//
// Parameters:
//   - hash: the cache key of the pose
//
// Returns:
//   - *Pose: the new pose, reset to identity
func NewPose(hash uint64) *Pose {
	p := &Pose{
		Hash:   hash,
		Local:  make([]model.Transform, MaxBonesPerInstance),
		Global: make([]mgl32.Mat4, MaxBonesPerInstance),
	}
	p.Reset(0)
	return p
}

// Reset clears the pose to identity transforms without reallocating its buffers.
//
// Parameters:
//   - boneCount: the number of bones the pose will describe
func (p *Pose) Reset(boneCount int) {
	if boneCount > MaxBonesPerInstance {
		boneCount = MaxBonesPerInstance
	}
	p.BoneCount = boneCount
	ident := model.IdentityTransform()
	for i := range p.Local {
		p.Local[i] = ident
		p.Global[i] = mgl32.Ident4()
	}
	p.RootMotion = nil
}

// SetRootMotion stores a root-motion record in the pose's own storage.
//
// Parameters:
//   - rm: the record to store
func (p *Pose) SetRootMotion(rm RootMotion) {
	p.rootMotion = rm
	p.RootMotion = &p.rootMotion
}

// CopyFrom copies the bone transforms and root motion of src into p, keeping p's Hash.
//
// Parameters:
//   - src: the pose to copy
func (p *Pose) CopyFrom(src *Pose) {
	p.BoneCount = src.BoneCount
	copy(p.Local, src.Local)
	copy(p.Global, src.Global)
	if src.RootMotion != nil {
		p.SetRootMotion(*src.RootMotion)
	} else {
		p.RootMotion = nil
	}
}

// ApproxEqual reports whether the local transforms of two poses match within eps.
//
// Parameters:
//   - o: the pose to compare against
//   - eps: the per-component tolerance
//
// Returns:
//   - bool: true if both poses describe the same bone count and local transforms
func (p *Pose) ApproxEqual(o *Pose, eps float32) bool {
	if p == nil || o == nil {
		return p == o
	}
	if p.BoneCount != o.BoneCount {
		return false
	}
	for i := 0; i < p.BoneCount; i++ {
		if !p.Local[i].ApproxEqual(o.Local[i], eps) {
			return false
		}
	}
	return true
}

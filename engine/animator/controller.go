package animator

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// controller is the implementation of the Controller interface.
type controller struct {
	logger *slog.Logger
	cache  map[uint64]*Pose
	hits   uint64
	misses uint64
}

// Controller samples animation clips into poses, blends poses, and owns the pose cache of one entity.
//
// Poses are cached by a key that combines the identities of their producers, so the same
// blend of the same inputs reuses one Pose object across frames. A Controller is not safe for
// concurrent use; each entity owns its own.
type Controller interface {
	// Pose returns the cached pose for key, creating it on first request, reset to identity.
	//
	// Parameters:
	//   - key: the cache key
	//   - boneCount: the number of bones the pose will describe
	//
	// Returns:
	//   - *Pose: the reset pose
	Pose(key uint64, boneCount int) *Pose

	// Cached returns the pose stored under key without modifying it.
	//
	// Parameters:
	//   - key: the cache key
	//
	// Returns:
	//   - *Pose: the cached pose, or nil
	//   - bool: true if the key is cached
	Cached(key uint64) (*Pose, bool)

	// CalculateBoneTransforms samples an animation into a pose at the given time.
	// Bones with a channel use the sampled transform; bones without one use their bind-pose transform.
	// Each bone's skinning matrix global * inverseBind * armature is written to pose.Global.
	//
	// Parameters:
	//   - skeleton: the target skeleton
	//   - anim: the animation to sample, or nil for the bind pose
	//   - time: the sample time in ticks
	//   - pose: the pose to write
	CalculateBoneTransforms(skeleton *model.Skeleton, anim *model.Animation, time float32, pose *Pose)

	// Sample samples an animation into the cached pose for key.
	//
	// Parameters:
	//   - key: the cache key
	//   - skeleton: the target skeleton
	//   - anim: the animation to sample, or nil for the bind pose
	//   - time: the sample time in ticks
	//
	// Returns:
	//   - *Pose: the sampled pose
	Sample(key uint64, skeleton *model.Skeleton, anim *model.Animation, time float32) *Pose

	// ComposeGlobals recomputes every skinning matrix of a pose from its local transforms.
	//
	// Parameters:
	//   - skeleton: the target skeleton
	//   - pose: the pose to update
	ComposeGlobals(skeleton *model.Skeleton, pose *Pose)

	// ExtractRootMotion records the motion of one bone between two sample times and pins that
	// bone to its start transform so the owning entity can carry the motion instead.
	//
	// Parameters:
	//   - skeleton: the target skeleton
	//   - anim: the sampled animation
	//   - bone: the root-motion bone ID
	//   - prevTime: the previous sample time in ticks
	//   - time: the current sample time in ticks
	//   - wraps: +1 if playback wrapped past the end, -1 if it wrapped before the start, otherwise 0
	//   - pose: the pose to update
	ExtractRootMotion(skeleton *model.Skeleton, anim *model.Animation, bone int, prevTime, time float32, wraps int, pose *Pose)

	// Blend blends two poses per bone with factor*mask.Weight(bone), keyed by the inputs' hashes.
	// A nil input returns the other input unchanged.
	//
	// Parameters:
	//   - skeleton: the target skeleton
	//   - a: the pose at factor 0
	//   - b: the pose at factor 1
	//   - factor: the blend factor in [0, 1]
	//   - mask: the per-bone weights, or nil for full weight
	//
	// Returns:
	//   - *Pose: the blended pose
	Blend(skeleton *model.Skeleton, a, b *Pose, factor float32, mask *BoneMask) *Pose

	// BlendKeyed is Blend with an explicit cache key.
	BlendKeyed(key uint64, skeleton *model.Skeleton, a, b *Pose, factor float32, mask *BoneMask) *Pose

	// BlendTriangular blends three poses by blending A with B, B with C, then the two results.
	// The intermediate factors are chosen so that translations equal wa*A + wb*B + wc*C
	// for the normalized weights.
	//
	// Parameters:
	//   - skeleton: the target skeleton
	//   - a, b, c: the three poses
	//   - weights: the weights of a, b and c
	//   - mask: the per-bone weights, or nil for full weight
	//
	// Returns:
	//   - *Pose: the blended pose
	BlendTriangular(skeleton *model.Skeleton, a, b, c *Pose, weights [3]float32, mask *BoneMask) *Pose

	// BlendTriangularKeyed is BlendTriangular with an explicit cache key.
	BlendTriangularKeyed(key uint64, skeleton *model.Skeleton, a, b, c *Pose, weights [3]float32, mask *BoneMask) *Pose

	// BlendWeighted blends any number of poses by normalized weight.
	// Nil poses and non-positive weights are skipped; a single contributor is returned unchanged.
	//
	// Parameters:
	//   - key: the cache key
	//   - skeleton: the target skeleton
	//   - poses: the poses to blend
	//   - weights: one weight per pose
	//   - mask: the per-bone weights relative to the first contributor, or nil for full weight
	//
	// Returns:
	//   - *Pose: the blended pose, or nil if nothing contributes
	BlendWeighted(key uint64, skeleton *model.Skeleton, poses []*Pose, weights []float32, mask *BoneMask) *Pose

	// CacheSize returns the number of cached poses.
	CacheSize() int

	// CacheStats returns the number of cache hits and misses since creation or the last Clear.
	CacheStats() (hits, misses uint64)

	// Clear drops every cached pose.
	Clear()
}

var _ Controller = &controller{}

// NewController creates a new Controller with the specified options applied.
//
// Parameters:
//   - options: a variadic list of ControllerBuilderOption functions to configure the Controller
//
// Returns:
//   - Controller: a new instance of Controller configured with the provided options
func NewController(options ...ControllerBuilderOption) Controller {
	c := &controller{
		logger: slog.Default(),
		cache:  make(map[uint64]*Pose),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *controller) acquire(key uint64, boneCount int) *Pose {
	p, ok := c.cache[key]
	if !ok {
		c.misses++
		p = NewPose(key)
		c.cache[key] = p
		c.logger.Debug("pose cache miss", "key", key, "size", len(c.cache))
	} else {
		c.hits++
	}
	if boneCount > MaxBonesPerInstance {
		boneCount = MaxBonesPerInstance
	}
	p.BoneCount = boneCount
	return p
}

func (c *controller) Pose(key uint64, boneCount int) *Pose {
	p := c.acquire(key, boneCount)
	p.Reset(boneCount)
	return p
}

func (c *controller) Cached(key uint64) (*Pose, bool) {
	p, ok := c.cache[key]
	return p, ok
}

func (c *controller) CalculateBoneTransforms(skeleton *model.Skeleton, anim *model.Animation, time float32, pose *Pose) {
	if skeleton == nil || pose == nil {
		return
	}
	n := min(skeleton.BoneCount(), MaxBonesPerInstance)
	pose.BoneCount = n
	for i := 0; i < n; i++ {
		bone := &skeleton.Bones[i]
		var ch *model.Channel
		if anim != nil {
			ch = anim.Channel(bone.Name)
		}
		pose.Local[i] = SampleLocal(ch, bone.LocalTransform, time)
	}
	c.ComposeGlobals(skeleton, pose)
}

func (c *controller) Sample(key uint64, skeleton *model.Skeleton, anim *model.Animation, time float32) *Pose {
	if skeleton == nil {
		return nil
	}
	p := c.Pose(key, skeleton.BoneCount())
	c.CalculateBoneTransforms(skeleton, anim, time, p)
	return p
}

func (c *controller) ComposeGlobals(skeleton *model.Skeleton, pose *Pose) {
	if skeleton == nil || pose == nil || skeleton.RootBone < 0 {
		return
	}
	composeBone(skeleton, pose, skeleton.RootBone, mgl32.Ident4())
}

func composeBone(skeleton *model.Skeleton, pose *Pose, id int, parent mgl32.Mat4) {
	if id >= pose.BoneCount {
		return
	}
	bone := &skeleton.Bones[id]
	global := parent.Mul4(pose.Local[id].Matrix())
	pose.Global[id] = global.Mul4(bone.InverseBindMatrix).Mul4(skeleton.ArmatureTransform)
	for _, child := range bone.Children {
		composeBone(skeleton, pose, child, global)
	}
}

func (c *controller) ExtractRootMotion(skeleton *model.Skeleton, anim *model.Animation, bone int, prevTime, time float32, wraps int, pose *Pose) {
	if skeleton == nil || anim == nil || pose == nil || bone < 0 || bone >= pose.BoneCount {
		return
	}
	b := &skeleton.Bones[bone]
	ch := anim.Channel(b.Name)
	start := SampleLocal(ch, b.LocalTransform, 0)
	end := SampleLocal(ch, b.LocalTransform, anim.Duration)
	prev := SampleLocal(ch, b.LocalTransform, prevTime)
	cur := SampleLocal(ch, b.LocalTransform, time)

	var dt mgl32.Vec3
	var dr mgl32.Quat
	switch {
	case wraps > 0:
		dt = end.Translation.Sub(prev.Translation).Add(cur.Translation.Sub(start.Translation))
		dr = prev.Rotation.Inverse().Mul(end.Rotation).Mul(start.Rotation.Inverse().Mul(cur.Rotation))
	case wraps < 0:
		dt = start.Translation.Sub(prev.Translation).Add(cur.Translation.Sub(end.Translation))
		dr = prev.Rotation.Inverse().Mul(start.Rotation).Mul(end.Rotation.Inverse().Mul(cur.Rotation))
	default:
		dt = cur.Translation.Sub(prev.Translation)
		dr = prev.Rotation.Inverse().Mul(cur.Rotation)
	}

	pose.SetRootMotion(RootMotion{
		BoneID:             bone,
		StartTranslation:   start.Translation,
		EndTranslation:     end.Translation,
		CurrentTranslation: cur.Translation,
		DeltaTranslation:   dt,
		StartRotation:      start.Rotation,
		EndRotation:        end.Rotation,
		CurrentRotation:    cur.Rotation,
		DeltaRotation:      dr.Normalize(),
	})

	pose.Local[bone].Translation = start.Translation
	pose.Local[bone].Rotation = start.Rotation
	c.ComposeGlobals(skeleton, pose)
}

func (c *controller) Blend(skeleton *model.Skeleton, a, b *Pose, factor float32, mask *BoneMask) *Pose {
	return c.BlendKeyed(HashCombine(poseHash(a), poseHash(b)), skeleton, a, b, factor, mask)
}

func (c *controller) BlendKeyed(key uint64, skeleton *model.Skeleton, a, b *Pose, factor float32, mask *BoneMask) *Pose {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}

	n := boneCount(skeleton, a, b)
	out := c.acquire(key, n)
	for i := 0; i < n; i++ {
		out.Local[i] = blendTransform(a.Local[i], b.Local[i], factor*mask.Weight(i))
	}
	blendRootMotion(out, a.RootMotion, b.RootMotion, factor)
	c.ComposeGlobals(skeleton, out)
	return out
}

func (c *controller) BlendTriangular(skeleton *model.Skeleton, a, b, cp *Pose, weights [3]float32, mask *BoneMask) *Pose {
	return c.BlendTriangularKeyed(HashCombine(poseHash(a), poseHash(b), poseHash(cp)), skeleton, a, b, cp, weights, mask)
}

func (c *controller) BlendTriangularKeyed(key uint64, skeleton *model.Skeleton, a, b, cp *Pose, weights [3]float32, mask *BoneMask) *Pose {
	if a == nil || b == nil || cp == nil {
		return c.BlendWeighted(key, skeleton, []*Pose{a, b, cp}, weights[:], mask)
	}
	wa, wb, wc := max(weights[0], 0), max(weights[1], 0), max(weights[2], 0)
	sum := wa + wb + wc
	if sum <= 0 {
		return a
	}
	wa, wb, wc = wa/sum, wb/sum, wc/sum

	// Split B's weight across both edge blends so the final blend reproduces the barycentric weights.
	var u, v float32
	if d := wa + wb/2; d > 0 {
		u = (wb / 2) / d
	}
	s := wb/2 + wc
	if s > 0 {
		v = wc / s
	}

	ab := c.BlendKeyed(HashCombine(key, 1), skeleton, a, b, u, mask)
	bc := c.BlendKeyed(HashCombine(key, 2), skeleton, b, cp, v, mask)
	return c.BlendKeyed(key, skeleton, ab, bc, s, mask)
}

func (c *controller) BlendWeighted(key uint64, skeleton *model.Skeleton, poses []*Pose, weights []float32, mask *BoneMask) *Pose {
	var contrib []*Pose
	var ws []float32
	for i, p := range poses {
		if p == nil || i >= len(weights) || weights[i] <= 0 {
			continue
		}
		contrib = append(contrib, p)
		ws = append(ws, weights[i])
	}
	switch len(contrib) {
	case 0:
		return nil
	case 1:
		return contrib[0]
	}

	n := boneCount(skeleton, contrib...)
	out := c.acquire(key, n)
	for i := 0; i < n; i++ {
		first := contrib[0].Local[i]
		acc, total := first, ws[0]
		for j := 1; j < len(contrib); j++ {
			total += ws[j]
			acc = blendTransform(acc, contrib[j].Local[i], ws[j]/total)
		}
		out.Local[i] = blendTransform(first, acc, mask.Weight(i))
	}

	rm := contrib[0].RootMotion
	var acc RootMotion
	if rm != nil {
		acc = *rm
	} else {
		acc = identityRootMotion()
	}
	total := ws[0]
	hasMotion := rm != nil
	for j := 1; j < len(contrib); j++ {
		total += ws[j]
		next := contrib[j].RootMotion
		if next == nil {
			ident := identityRootMotion()
			next = &ident
		} else {
			hasMotion = true
		}
		acc = lerpRootMotion(acc, *next, ws[j]/total)
	}
	if hasMotion {
		out.SetRootMotion(acc)
	} else {
		out.RootMotion = nil
	}

	c.ComposeGlobals(skeleton, out)
	return out
}

func (c *controller) CacheSize() int {
	return len(c.cache)
}

func (c *controller) CacheStats() (uint64, uint64) {
	return c.hits, c.misses
}

func (c *controller) Clear() {
	c.cache = make(map[uint64]*Pose)
	c.hits, c.misses = 0, 0
}

func poseHash(p *Pose) uint64 {
	if p == nil {
		return 0
	}
	return p.Hash
}

func boneCount(skeleton *model.Skeleton, poses ...*Pose) int {
	if skeleton != nil {
		return min(skeleton.BoneCount(), MaxBonesPerInstance)
	}
	n := MaxBonesPerInstance
	for _, p := range poses {
		n = min(n, p.BoneCount)
	}
	return n
}

func blendTransform(a, b model.Transform, w float32) model.Transform {
	if w <= 0 {
		return a
	}
	if w >= 1 {
		return b
	}
	return model.Transform{
		Translation: a.Translation.Add(b.Translation.Sub(a.Translation).Mul(w)),
		Rotation:    mgl32.QuatSlerp(a.Rotation, b.Rotation, w).Normalize(),
		Scale:       a.Scale.Add(b.Scale.Sub(a.Scale).Mul(w)),
	}
}

func identityRootMotion() RootMotion {
	return RootMotion{
		BoneID:          -1,
		StartRotation:   mgl32.QuatIdent(),
		EndRotation:     mgl32.QuatIdent(),
		CurrentRotation: mgl32.QuatIdent(),
		DeltaRotation:   mgl32.QuatIdent(),
	}
}

func blendRootMotion(out *Pose, a, b *RootMotion, f float32) {
	if a == nil && b == nil {
		out.RootMotion = nil
		return
	}
	ra, rb := identityRootMotion(), identityRootMotion()
	if a != nil {
		ra = *a
	}
	if b != nil {
		rb = *b
	}
	out.SetRootMotion(lerpRootMotion(ra, rb, f))
}

func lerpRootMotion(a, b RootMotion, f float32) RootMotion {
	f = max(0, min(1, f))
	id := a.BoneID
	if id < 0 {
		id = b.BoneID
	}
	slerp := func(x, y mgl32.Quat) mgl32.Quat {
		return mgl32.QuatSlerp(x, y, f).Normalize()
	}
	lerp := func(x, y mgl32.Vec3) mgl32.Vec3 {
		return x.Add(y.Sub(x).Mul(f))
	}
	return RootMotion{
		BoneID:             id,
		StartTranslation:   lerp(a.StartTranslation, b.StartTranslation),
		EndTranslation:     lerp(a.EndTranslation, b.EndTranslation),
		CurrentTranslation: lerp(a.CurrentTranslation, b.CurrentTranslation),
		DeltaTranslation:   lerp(a.DeltaTranslation, b.DeltaTranslation),
		StartRotation:      slerp(a.StartRotation, b.StartRotation),
		EndRotation:        slerp(a.EndRotation, b.EndRotation),
		CurrentRotation:    slerp(a.CurrentRotation, b.CurrentRotation),
		DeltaRotation:      slerp(a.DeltaRotation, b.DeltaRotation),
	}
}

package animator

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

const eps = 1e-5

func testSkeleton(t *testing.T) *model.Skeleton {
	t.Helper()
	s, err := model.NewSkeleton("test", []model.Bone{
		{Name: "root", ParentID: -1},
		{Name: "spine", ParentID: 0, LocalTransform: model.Transform{Translation: mgl32.Vec3{0, 1, 0}}},
		{Name: "head", ParentID: 1, LocalTransform: model.Transform{Translation: mgl32.Vec3{0, 0.5, 0}}},
		{Name: "arm", ParentID: 1, LocalTransform: model.Transform{Translation: mgl32.Vec3{0.3, 0, 0}}},
	}, mgl32.Ident4())
	if err != nil {
		t.Fatalf("NewSkeleton: %v", err)
	}
	return s
}

func testAnimation(t *testing.T, name string, x float32, angle float32) *model.Animation {
	t.Helper()
	a, err := model.NewAnimation(name, 10, 10, []model.Channel{
		{
			BoneName: "root",
			PositionKeys: []model.VectorKey{
				{Time: 0, Value: mgl32.Vec3{0, 0, 0}},
				{Time: 10, Value: mgl32.Vec3{x, 0, 0}},
			},
		},
		{
			BoneName: "spine",
			RotationKeys: []model.QuatKey{
				{Time: 0, Value: mgl32.QuatIdent()},
				{Time: 10, Value: mgl32.QuatRotate(angle, mgl32.Vec3{0, 1, 0})},
			},
		},
	})
	if err != nil {
		t.Fatalf("NewAnimation: %v", err)
	}
	return a
}

func TestInterpolateSingleKeyIsConstant(t *testing.T) {
	q := mgl32.QuatRotate(0.7, mgl32.Vec3{1, 0, 0})
	ch := &model.Channel{
		PositionKeys: []model.VectorKey{{Time: 3, Value: mgl32.Vec3{1, 2, 3}}},
		RotationKeys: []model.QuatKey{{Time: 3, Value: q}},
		ScaleKeys:    []model.VectorKey{{Time: 3, Value: mgl32.Vec3{2, 2, 2}}},
	}
	for _, tm := range []float32{-5, 0, 3, 4.5, 1000} {
		if v, _ := InterpolatePosition(ch, tm); v != (mgl32.Vec3{1, 2, 3}) {
			t.Errorf("position at %v = %v", tm, v)
		}
		if r, _ := InterpolateRotation(ch, tm); r != q {
			t.Errorf("rotation at %v = %v, want %v", tm, r, q)
		}
		if v, _ := InterpolateScale(ch, tm); v != (mgl32.Vec3{2, 2, 2}) {
			t.Errorf("scale at %v = %v", tm, v)
		}
	}
}

func TestInterpolateRoundTripsAtKeyTimes(t *testing.T) {
	ch := &model.Channel{
		PositionKeys: []model.VectorKey{
			{Time: 0, Value: mgl32.Vec3{0, 0, 0}},
			{Time: 2.5, Value: mgl32.Vec3{1, -1, 4}},
			{Time: 7, Value: mgl32.Vec3{3, 3, 3}},
			{Time: 9, Value: mgl32.Vec3{-2, 0, 1}},
		},
		RotationKeys: []model.QuatKey{
			{Time: 0, Value: mgl32.QuatIdent()},
			{Time: 4, Value: mgl32.QuatRotate(1.2, mgl32.Vec3{0, 0, 1})},
			{Time: 9, Value: mgl32.QuatRotate(-0.4, mgl32.Vec3{1, 0, 0})},
		},
	}
	for _, k := range ch.PositionKeys {
		if v, ok := InterpolatePosition(ch, k.Time); !ok || v != k.Value {
			t.Errorf("position at %v = %v, want %v", k.Time, v, k.Value)
		}
	}
	for _, k := range ch.RotationKeys {
		if q, ok := InterpolateRotation(ch, k.Time); !ok || q != k.Value {
			t.Errorf("rotation at %v = %v, want %v", k.Time, q, k.Value)
		}
	}
}

func TestInterpolateLinearAndClamped(t *testing.T) {
	ch := &model.Channel{
		PositionKeys: []model.VectorKey{
			{Time: 1, Value: mgl32.Vec3{0, 0, 0}},
			{Time: 3, Value: mgl32.Vec3{4, 0, 0}},
		},
	}
	tests := []struct {
		time float32
		want mgl32.Vec3
	}{
		{0, mgl32.Vec3{0, 0, 0}},
		{2, mgl32.Vec3{2, 0, 0}},
		{2.5, mgl32.Vec3{3, 0, 0}},
		{10, mgl32.Vec3{4, 0, 0}},
	}
	for _, tt := range tests {
		got, _ := InterpolatePosition(ch, tt.time)
		if !common.Vec3Near(got, tt.want, eps) {
			t.Errorf("position at %v = %v, want %v", tt.time, got, tt.want)
		}
	}
	if _, ok := InterpolateScale(ch, 2); ok {
		t.Error("expected no scale keys")
	}
}

func TestCalculateBoneTransformsFallsBackToBindPose(t *testing.T) {
	s := testSkeleton(t)
	anim := testAnimation(t, "walk", 4, 1)
	c := NewController()

	p := c.Sample(anim.ID(), s, anim, 5)
	if !common.Vec3Near(p.Local[0].Translation, mgl32.Vec3{2, 0, 0}, eps) {
		t.Errorf("root translation = %v, want (2, 0, 0)", p.Local[0].Translation)
	}
	if p.Local[2] != s.Bones[2].LocalTransform {
		t.Errorf("head local = %v, want bind pose %v", p.Local[2], s.Bones[2].LocalTransform)
	}

	// Children accumulate the parent's global transform.
	rootGlobal := p.Local[0].Matrix()
	spineGlobal := rootGlobal.Mul4(p.Local[1].Matrix())
	headGlobal := spineGlobal.Mul4(p.Local[2].Matrix())
	if !common.Mat4Near(p.Global[2], headGlobal, eps) {
		t.Errorf("head global = %v, want %v", p.Global[2], headGlobal)
	}
}

func TestCalculateBoneTransformsAppliesInverseBindAndArmature(t *testing.T) {
	armature := mgl32.Scale3D(2, 2, 2)
	invBind := mgl32.Translate3D(0, -1, 0)
	s, err := model.NewSkeleton("s", []model.Bone{
		{Name: "root", ParentID: -1, InverseBindMatrix: invBind},
	}, armature)
	if err != nil {
		t.Fatal(err)
	}
	c := NewController()
	p := c.Sample(1, s, nil, 0)
	want := s.Bones[0].LocalTransform.Matrix().Mul4(invBind).Mul4(armature)
	if !common.Mat4Near(p.Global[0], want, eps) {
		t.Errorf("global = %v, want %v", p.Global[0], want)
	}
}

func TestBlendIdempotent(t *testing.T) {
	s := testSkeleton(t)
	anim := testAnimation(t, "walk", 4, 1)
	c := NewController()
	a := c.Sample(anim.ID(), s, anim, 3)

	mask := NewBoneMask(s)
	mask.SetWeight(2, 0.3)
	for _, f := range []float32{0, 0.25, 0.5, 0.9, 1} {
		out := c.Blend(s, a, a, f, mask)
		if !out.ApproxEqual(a, eps) {
			t.Errorf("Blend(A, A, %v) differs from A", f)
		}
	}
}

func TestBlendBoundaries(t *testing.T) {
	s := testSkeleton(t)
	walk := testAnimation(t, "walk", 4, 1)
	run := testAnimation(t, "run", 8, -1.5)
	c := NewController()
	a := c.Sample(walk.ID(), s, walk, 6)
	b := c.Sample(run.ID(), s, run, 6)
	full := NewBoneMask(s)

	if out := c.Blend(s, a, b, 0, full); !out.ApproxEqual(a, eps) {
		t.Error("Blend(A, B, 0) should equal A")
	}
	if out := c.Blend(s, a, b, 1, full); !out.ApproxEqual(b, eps) {
		t.Error("Blend(A, B, 1) should equal B")
	}

	mid := c.Blend(s, a, b, 0.5, full)
	want := a.Local[0].Translation.Add(b.Local[0].Translation).Mul(0.5)
	if !common.Vec3Near(mid.Local[0].Translation, want, eps) {
		t.Errorf("mid translation = %v, want %v", mid.Local[0].Translation, want)
	}
}

func TestBlendMaskZeroKeepsSideA(t *testing.T) {
	s := testSkeleton(t)
	walk := testAnimation(t, "walk", 4, 1)
	run := testAnimation(t, "run", 8, -1.5)
	c := NewController()
	a := c.Sample(walk.ID(), s, walk, 6)
	b := c.Sample(run.ID(), s, run, 6)

	mask := NewBoneMask(s)
	mask.SetBranchWeight(s, 1, 0)
	for _, f := range []float32{0.1, 0.5, 1} {
		out := c.Blend(s, a, b, f, mask)
		for _, bone := range []int{1, 2, 3} {
			if out.Local[bone] != a.Local[bone] {
				t.Errorf("f=%v bone %d = %v, want side A %v", f, bone, out.Local[bone], a.Local[bone])
			}
		}
	}
}

func TestBlendNilSideReturnsOther(t *testing.T) {
	s := testSkeleton(t)
	c := NewController()
	a := c.Sample(1, s, nil, 0)
	if c.Blend(s, nil, a, 0.5, nil) != a {
		t.Error("nil A should return B")
	}
	if c.Blend(s, a, nil, 0.5, nil) != a {
		t.Error("nil B should return A")
	}
	if c.Blend(s, nil, nil, 0.5, nil) != nil {
		t.Error("both nil should return nil")
	}
}

func TestPoseCacheReusesPoses(t *testing.T) {
	s := testSkeleton(t)
	walk := testAnimation(t, "walk", 4, 1)
	run := testAnimation(t, "run", 8, 1)
	c := NewController()

	a := c.Sample(walk.ID(), s, walk, 1)
	b := c.Sample(run.ID(), s, run, 1)
	first := c.Blend(s, a, b, 0.3, nil)
	a = c.Sample(walk.ID(), s, walk, 2)
	b = c.Sample(run.ID(), s, run, 2)
	second := c.Blend(s, a, b, 0.6, nil)

	if first != second {
		t.Error("expected the same blend pose to be reused across frames")
	}
	if c.CacheSize() != 3 {
		t.Errorf("cache size = %d, want 3", c.CacheSize())
	}
	hits, misses := c.CacheStats()
	if hits != 3 || misses != 3 {
		t.Errorf("hits, misses = %d, %d, want 3, 3", hits, misses)
	}
}

func TestBlendTriangularHonoursWeights(t *testing.T) {
	s := testSkeleton(t)
	c := NewController()
	mk := func(key uint64, v mgl32.Vec3) *Pose {
		p := c.Pose(key, s.BoneCount())
		c.CalculateBoneTransforms(s, nil, 0, p)
		p.Local[0].Translation = v
		return p
	}
	a := mk(1, mgl32.Vec3{0, 0, 0})
	b := mk(2, mgl32.Vec3{1, 0, 0})
	cp := mk(3, mgl32.Vec3{0, 1, 0})

	out := c.BlendTriangular(s, a, b, cp, [3]float32{0.2, 0.3, 0.5}, nil)
	want := mgl32.Vec3{0.3, 0.5, 0}
	if !common.Vec3Near(out.Local[0].Translation, want, eps) {
		t.Errorf("translation = %v, want %v", out.Local[0].Translation, want)
	}

	out = c.BlendTriangular(s, a, b, cp, [3]float32{0, 0, 1}, nil)
	if !common.Vec3Near(out.Local[0].Translation, cp.Local[0].Translation, eps) {
		t.Errorf("translation = %v, want C", out.Local[0].Translation)
	}
}

func TestBlendWeighted(t *testing.T) {
	s := testSkeleton(t)
	c := NewController()
	mk := func(key uint64, v mgl32.Vec3) *Pose {
		p := c.Pose(key, s.BoneCount())
		c.CalculateBoneTransforms(s, nil, 0, p)
		p.Local[0].Translation = v
		return p
	}
	a := mk(1, mgl32.Vec3{4, 0, 0})
	b := mk(2, mgl32.Vec3{0, 4, 0})
	d := mk(3, mgl32.Vec3{0, 0, 4})

	out := c.BlendWeighted(10, s, []*Pose{a, b, d, nil}, []float32{1, 1, 2, 5}, nil)
	want := mgl32.Vec3{1, 1, 2}
	if !common.Vec3Near(out.Local[0].Translation, want, eps) {
		t.Errorf("translation = %v, want %v", out.Local[0].Translation, want)
	}
	if got := c.BlendWeighted(11, s, []*Pose{a, b}, []float32{0, 1}, nil); got != b {
		t.Error("a single contributor should be returned unchanged")
	}
	if got := c.BlendWeighted(12, s, nil, nil, nil); got != nil {
		t.Error("no contributors should return nil")
	}
}

func TestGetTimeMultiplier(t *testing.T) {
	tests := []struct {
		durA, durB, f float32
		wantA, wantB  float32
	}{
		{2, 4, 0, 1, 2},
		{2, 4, 1, 0.5, 1},
		{2, 4, 0.5, 0.75, 1.5},
		{3, 3, 0.3, 1, 1},
		{0, 4, 0.5, 1, 1},
		{2, 0, 0.5, 1, 1},
	}
	for _, tt := range tests {
		a, b := GetTimeMultiplier(tt.durA, tt.durB, tt.f)
		if !mgl32.FloatEqualThreshold(a, tt.wantA, eps) || !mgl32.FloatEqualThreshold(b, tt.wantB, eps) {
			t.Errorf("GetTimeMultiplier(%v, %v, %v) = (%v, %v), want (%v, %v)",
				tt.durA, tt.durB, tt.f, a, b, tt.wantA, tt.wantB)
		}
	}
}

func TestExtractRootMotion(t *testing.T) {
	s := testSkeleton(t)
	anim := testAnimation(t, "walk", 10, 0)
	c := NewController()

	p := c.Sample(anim.ID(), s, anim, 4)
	c.ExtractRootMotion(s, anim, 0, 2, 4, 0, p)
	if p.RootMotion == nil {
		t.Fatal("expected root motion")
	}
	if !common.Vec3Near(p.RootMotion.DeltaTranslation, mgl32.Vec3{2, 0, 0}, eps) {
		t.Errorf("delta = %v, want (2, 0, 0)", p.RootMotion.DeltaTranslation)
	}
	if p.Local[0].Translation != (mgl32.Vec3{}) {
		t.Errorf("root bone should be pinned to its start, got %v", p.Local[0].Translation)
	}

	p = c.Sample(anim.ID(), s, anim, 1)
	c.ExtractRootMotion(s, anim, 0, 9, 1, 1, p)
	if !common.Vec3Near(p.RootMotion.DeltaTranslation, mgl32.Vec3{2, 0, 0}, eps) {
		t.Errorf("wrapped delta = %v, want (2, 0, 0)", p.RootMotion.DeltaTranslation)
	}
}

func TestBlendCarriesRootMotion(t *testing.T) {
	s := testSkeleton(t)
	anim := testAnimation(t, "walk", 10, 0)
	c := NewController()

	a := c.Sample(1, s, anim, 4)
	c.ExtractRootMotion(s, anim, 0, 2, 4, 0, a)
	b := c.Sample(2, s, nil, 0)

	out := c.Blend(s, a, b, 0.5, nil)
	if out.RootMotion == nil {
		t.Fatal("expected blended root motion")
	}
	if !common.Vec3Near(out.RootMotion.DeltaTranslation, mgl32.Vec3{1, 0, 0}, eps) {
		t.Errorf("delta = %v, want (1, 0, 0)", out.RootMotion.DeltaTranslation)
	}
}

func TestBoneMask(t *testing.T) {
	s := testSkeleton(t)
	m := NewBoneMask(s)
	if m.Len() != 4 || m.Weight(3) != 1 {
		t.Fatalf("new mask = %v", m.Weights())
	}
	m.SetBranchWeight(s, 1, 0.25)
	want := []float32{1, 0.25, 0.25, 0.25}
	for i, w := range want {
		if m.Weight(i) != w {
			t.Errorf("weight[%d] = %v, want %v", i, m.Weight(i), w)
		}
	}
	m.SetWeight(0, 3)
	if m.Weight(0) != 1 {
		t.Errorf("weight should clamp to 1, got %v", m.Weight(0))
	}
	var nilMask *BoneMask
	if nilMask.Weight(5) != 1 {
		t.Error("nil mask should weigh every bone at 1")
	}
}

func TestPoseApproxEqualNearZero(t *testing.T) {
	a, b := NewPose(1), NewPose(2)
	a.Reset(2)
	b.Reset(2)
	b.Local[0].Translation[0] = 3e-7
	if !a.ApproxEqual(b, 1e-4) {
		t.Error("ApproxEqual = false for a 3e-7 drift on a zero component")
	}
	b.Local[1].Scale[2] = 1.01
	if a.ApproxEqual(b, 1e-4) {
		t.Error("ApproxEqual = true for a scale difference of 0.01")
	}
	b.Reset(3)
	if a.ApproxEqual(b, 1e-4) {
		t.Error("ApproxEqual = true for poses with different bone counts")
	}
}

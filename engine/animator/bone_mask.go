package animator

import (
	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

// BoneMask is a per-bone blend weight used to scope a blend to part of a skeleton.
// A nil or empty mask weights every bone at 1.
type BoneMask struct {
	weights []float32
}

// NewBoneMask creates a mask with weight 1 for every bone of the skeleton.
//
// Parameters:
//   - skeleton: the target skeleton, or nil for an empty full-weight mask
//
// Returns:
//   - *BoneMask: the new mask
func NewBoneMask(skeleton *model.Skeleton) *BoneMask {
	m := &BoneMask{}
	if skeleton != nil {
		m.Resize(skeleton.BoneCount())
	}
	return m
}

// Resize grows or shrinks the mask to n bones. New bones are weighted 1.
//
// Parameters:
//   - n: the bone count
func (m *BoneMask) Resize(n int) {
	if n <= len(m.weights) {
		m.weights = m.weights[:n]
		return
	}
	for len(m.weights) < n {
		m.weights = append(m.weights, 1)
	}
}

// Len returns the number of bones with an explicit weight.
func (m *BoneMask) Len() int {
	if m == nil {
		return 0
	}
	return len(m.weights)
}

// Weight returns the blend weight of a bone. Bones outside the mask weigh 1.
//
// Parameters:
//   - bone: the bone ID
//
// Returns:
//   - float32: the bone's weight
func (m *BoneMask) Weight(bone int) float32 {
	if m == nil || bone < 0 || bone >= len(m.weights) {
		return 1
	}
	return m.weights[bone]
}

// SetWeight sets the blend weight of a single bone, growing the mask if needed.
//
// Parameters:
//   - bone: the bone ID
//   - w: the weight, clamped to [0, 1]
func (m *BoneMask) SetWeight(bone int, w float32) {
	if bone < 0 {
		return
	}
	if bone >= len(m.weights) {
		m.Resize(bone + 1)
	}
	m.weights[bone] = common.Clamp01(w)
}

// SetBranchWeight sets the weight of a bone and every bone beneath it.
//
// Parameters:
//   - skeleton: the skeleton the mask targets
//   - bone: the branch root bone ID
//   - w: the weight, clamped to [0, 1]
func (m *BoneMask) SetBranchWeight(skeleton *model.Skeleton, bone int, w float32) {
	for _, id := range skeleton.Descendants(bone) {
		m.SetWeight(id, w)
	}
}

// Weights returns a copy of the explicit per-bone weights.
func (m *BoneMask) Weights() []float32 {
	if m == nil {
		return nil
	}
	out := make([]float32, len(m.weights))
	copy(out, m.weights)
	return out
}

// SetWeights replaces the per-bone weights.
func (m *BoneMask) SetWeights(w []float32) {
	m.weights = m.weights[:0]
	for _, v := range w {
		m.weights = append(m.weights, common.Clamp01(v))
	}
}

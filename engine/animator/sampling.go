package animator

import (
	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// InterpolatePosition samples a channel's translation at the given time in ticks.
// A single key is returned unmodified; times outside the key range clamp to the first or last key.
//
// Parameters:
//   - ch: the bone channel
//   - time: the sample time in ticks
//
// Returns:
//   - mgl32.Vec3: the interpolated translation
//   - bool: false if the channel has no position keys
func InterpolatePosition(ch *model.Channel, time float32) (mgl32.Vec3, bool) {
	if ch == nil {
		return mgl32.Vec3{}, false
	}
	return interpolateVector(ch.PositionKeys, time)
}

// InterpolateScale samples a channel's scale at the given time in ticks.
// A single key is returned unmodified; times outside the key range clamp to the first or last key.
//
// Parameters:
//   - ch: the bone channel
//   - time: the sample time in ticks
//
// Returns:
//   - mgl32.Vec3: the interpolated scale
//   - bool: false if the channel has no scale keys
func InterpolateScale(ch *model.Channel, time float32) (mgl32.Vec3, bool) {
	if ch == nil {
		return mgl32.Vec3{}, false
	}
	return interpolateVector(ch.ScaleKeys, time)
}

// InterpolateRotation samples a channel's rotation at the given time in ticks using normalized slerp.
// A single key is returned unmodified; times outside the key range clamp to the first or last key.
//
// Parameters:
//   - ch: the bone channel
//   - time: the sample time in ticks
//
// Returns:
//   - mgl32.Quat: the interpolated rotation
//   - bool: false if the channel has no rotation keys
func InterpolateRotation(ch *model.Channel, time float32) (mgl32.Quat, bool) {
	if ch == nil {
		return mgl32.QuatIdent(), false
	}
	keys := ch.RotationKeys
	i, f, ok := bracket(len(keys), func(k int) float32 { return keys[k].Time }, time)
	if !ok {
		return mgl32.QuatIdent(), false
	}
	if f == 0 {
		return keys[i].Value, true
	}
	return mgl32.QuatSlerp(keys[i].Value, keys[i+1].Value, f).Normalize(), true
}

func interpolateVector(keys []model.VectorKey, time float32) (mgl32.Vec3, bool) {
	i, f, ok := bracket(len(keys), func(k int) float32 { return keys[k].Time }, time)
	if !ok {
		return mgl32.Vec3{}, false
	}
	if f == 0 {
		return keys[i].Value, true
	}
	return common.LerpVec3(keys[i].Value, keys[i+1].Value, f), true
}

// bracket finds the key index i and factor f such that the sample lies between key i and i+1.
// f is 0 whenever the sample resolves to key i alone.
func bracket(n int, at func(int) float32, time float32) (int, float32, bool) {
	if n == 0 {
		return 0, 0, false
	}
	if n == 1 || time <= at(0) {
		return 0, 0, true
	}
	if time >= at(n-1) {
		return n - 1, 0, true
	}
	for i := 0; i < n-1; i++ {
		t0, t1 := at(i), at(i+1)
		if time < t1 {
			span := t1 - t0
			if span <= 0 {
				return i + 1, 0, true
			}
			return i, (time - t0) / span, true
		}
	}
	return n - 1, 0, true
}

// SampleLocal samples a bone's local transform from a channel, falling back to the bind-pose
// component for every key array that is empty.
//
// Parameters:
//   - ch: the bone channel, or nil for a bone without animation
//   - bind: the bone's bind-pose local transform
//   - time: the sample time in ticks
//
// Returns:
//   - model.Transform: the sampled local transform
func SampleLocal(ch *model.Channel, bind model.Transform, time float32) model.Transform {
	if ch == nil {
		return bind
	}
	out := bind
	if v, ok := InterpolatePosition(ch, time); ok {
		out.Translation = v
	}
	if q, ok := InterpolateRotation(ch, time); ok {
		out.Rotation = q
	}
	if v, ok := InterpolateScale(ch, time); ok {
		out.Scale = v
	}
	return out
}

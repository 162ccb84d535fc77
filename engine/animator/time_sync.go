package animator

import "github.com/Carmen-Shannon/oxy-anim/common"

// GetTimeMultiplier returns playback-speed multipliers that pull two clips toward each
// other's duration as the blend factor moves from 0 to 1.
// At factor 0 clip A plays at its natural speed and clip B is stretched to A's length;
// at factor 1 clip A is stretched to B's length and clip B plays naturally.
// Non-positive durations yield (1, 1).
//
// Parameters:
//   - durationA: the length of clip A
//   - durationB: the length of clip B
//   - factor: the blend factor in [0, 1]
//
// Returns:
//   - float32: the multiplier for clip A
//   - float32: the multiplier for clip B
func GetTimeMultiplier(durationA, durationB, factor float32) (float32, float32) {
	if durationA <= 0 || durationB <= 0 {
		return 1, 1
	}
	f := common.Clamp01(factor)
	a := common.Lerp(1, durationA/durationB, f)
	b := common.Lerp(durationB/durationA, 1, f)
	return a, b
}

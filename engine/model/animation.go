package model

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Animation is a read-only clip (walk, run, attack, etc.) shared by every entity that plays it.
type Animation struct {
	// Name is the animation identifier.
	Name string

	// Duration is the total length of the animation in ticks.
	Duration float32

	// TicksPerSecond is the sample rate of the animation.
	TicksPerSecond float32

	// Channels maps bone names to their keyframe data.
	Channels map[string]*Channel

	id uint64
}

// NewAnimation validates and builds an Animation from its channels.
// A non-positive ticksPerSecond falls back to DefaultTicksPerSecond.
//
// Parameters:
//   - name: the animation identifier
//   - duration: the clip length in ticks
//   - ticksPerSecond: the clip sample rate
//   - channels: the per-bone keyframe channels
//
// Returns:
//   - *Animation: the validated animation
//   - error: an error if the name is empty, the duration is not positive, or any key array is unsorted
func NewAnimation(name string, duration, ticksPerSecond float32, channels []Channel) (*Animation, error) {
	if name == "" {
		return nil, fmt.Errorf("animation: %w", ErrEmptyName)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("animation %q: %w", name, ErrInvalidDuration)
	}
	if ticksPerSecond <= 0 {
		ticksPerSecond = DefaultTicksPerSecond
	}

	a := &Animation{
		Name:           name,
		Duration:       duration,
		TicksPerSecond: ticksPerSecond,
		Channels:       make(map[string]*Channel, len(channels)),
		id:             xxhash.Sum64String(name),
	}
	for i := range channels {
		ch := channels[i]
		if ch.BoneName == "" {
			return nil, fmt.Errorf("animation %q channel %d: %w", name, i, ErrEmptyName)
		}
		if !sortedVectorKeys(ch.PositionKeys) || !sortedQuatKeys(ch.RotationKeys) || !sortedVectorKeys(ch.ScaleKeys) {
			return nil, fmt.Errorf("animation %q bone %q: %w", name, ch.BoneName, ErrUnsortedKeys)
		}
		for k := range ch.RotationKeys {
			ch.RotationKeys[k].Value = ch.RotationKeys[k].Value.Normalize()
		}
		a.Channels[ch.BoneName] = &ch
	}
	return a, nil
}

// ID returns the stable 64-bit identity of the animation, derived from its name.
//
// Returns:
//   - uint64: the animation identity
func (a *Animation) ID() uint64 {
	if a.id == 0 {
		return xxhash.Sum64String(a.Name)
	}
	return a.id
}

// DurationSeconds returns the clip length in seconds.
//
// Returns:
//   - float32: Duration / TicksPerSecond
func (a *Animation) DurationSeconds() float32 {
	if a.TicksPerSecond <= 0 {
		return a.Duration / DefaultTicksPerSecond
	}
	return a.Duration / a.TicksPerSecond
}

// Channel returns the channel animating the named bone.
//
// Parameters:
//   - bone: the bone name
//
// Returns:
//   - *Channel: the channel, or nil if the bone is not animated
func (a *Animation) Channel(bone string) *Channel {
	return a.Channels[bone]
}

func sortedVectorKeys(keys []VectorKey) bool {
	for i := 1; i < len(keys); i++ {
		if keys[i].Time < keys[i-1].Time {
			return false
		}
	}
	return true
}

func sortedQuatKeys(keys []QuatKey) bool {
	for i := 1; i < len(keys); i++ {
		if keys[i].Time < keys[i-1].Time {
			return false
		}
	}
	return true
}

package nodes

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/graph"
)

// SyncStyle selects how the playback speeds of both sides of a transition are adjusted while blending.
type SyncStyle uint8

const (
	// SyncAsync plays both sides at their own speed.
	SyncAsync SyncStyle = iota
	// SyncSourceFrozen plays both sides at their own speed.
	SyncSourceFrozen
	// SyncSourceToDestination scales the source toward the destination's length; the destination plays at its own speed.
	SyncSourceToDestination
	// SyncDestinationToSource scales the destination toward the source's length; the source plays at its own speed.
	SyncDestinationToSource
	// SyncDestinationAndSource scales both sides toward each other.
	SyncDestinationAndSource
	// SyncKeyFrame is reserved and behaves like SyncAsync.
	SyncKeyFrame
)

var syncStyleNames = [...]string{
	SyncAsync:                "async",
	SyncSourceFrozen:         "source_frozen",
	SyncSourceToDestination:  "source_to_destination_time_sync",
	SyncDestinationToSource:  "destination_to_source_time_sync",
	SyncDestinationAndSource: "destination_and_source_time_sync",
	SyncKeyFrame:             "key_frame_sync",
}

func (s SyncStyle) String() string {
	if int(s) < len(syncStyleNames) {
		return syncStyleNames[s]
	}
	return fmt.Sprintf("SyncStyle(%d)", s)
}

// ParseSyncStyle returns the sync style with the given name, case-insensitively.
//
// Parameters:
//   - s: the style name as produced by String
//
// Returns:
//   - SyncStyle: the matching style
//   - error: graph.ErrInvalidProperty if no style matches
func ParseSyncStyle(s string) (SyncStyle, error) {
	for i, name := range syncStyleNames {
		if strings.EqualFold(name, s) {
			return SyncStyle(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown sync style %q", graph.ErrInvalidProperty, s)
}

// Multipliers returns the playback-speed multipliers for the source and destination sides.
//
// Parameters:
//   - srcDuration: the source side's length in seconds
//   - dstDuration: the destination side's length in seconds
//   - factor: the current blend factor
//
// Returns:
//   - float32: the source multiplier
//   - float32: the destination multiplier
func (s SyncStyle) Multipliers(srcDuration, dstDuration, factor float32) (float32, float32) {
	switch s {
	case SyncSourceToDestination:
		a, _ := animator.GetTimeMultiplier(srcDuration, dstDuration, factor)
		return a, 1
	case SyncDestinationToSource:
		_, b := animator.GetTimeMultiplier(srcDuration, dstDuration, factor)
		return 1, b
	case SyncDestinationAndSource:
		return animator.GetTimeMultiplier(srcDuration, dstDuration, factor)
	default:
		return 1, 1
	}
}

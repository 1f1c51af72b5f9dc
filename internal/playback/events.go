package playback

import (
	"time"

	"github.com/mlegall/strum/internal/playlist"
)

// StateChange is emitted when the playing flag flips.
type StateChange struct {
	Playing bool
}

// TrackChange is emitted when the controller rebinds playback to a
// different track (select, next, previous, automatic advance).
//
// Restarting the current track (repeat-one, previous-within-grace) does not
// emit TrackChange; it emits PositionChange instead.
type TrackChange struct {
	PreviousIndex int
	Index         int
	Track         playlist.Track
}

// PositionChange carries the playback position. It is emitted periodically
// while playing (time-progress) and after every seek or restart.
type PositionChange struct {
	Position time.Duration
	Duration time.Duration
}

// QueueChange is emitted when tracks are appended to the playlist.
type QueueChange struct {
	Tracks []playlist.Track
	Index  int
}

// ModeChange is emitted when repeat or shuffle mode changes.
type ModeChange struct {
	Repeat  RepeatMode
	Shuffle bool
}

// LikeChange is emitted when a track's liked status is toggled.
type LikeChange struct {
	TrackID string
	Liked   bool
}

// VolumeChange is emitted when volume or mute state changes.
type VolumeChange struct {
	Volume float64
	Muted  bool
}

// FilterChange is emitted when the liked-only view filter is toggled.
type FilterChange struct {
	LikedOnly bool
}

// ErrorEvent is emitted when the audio engine rejects a command.
type ErrorEvent struct {
	Op   string // e.g. "play", "seek"
	Path string // track path if applicable
	Err  error
}

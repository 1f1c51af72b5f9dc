package player

import "time"

// Interface defines the player contract for dependency injection and testing.
//
// It mirrors the capabilities of a native media element: bind a resource and
// start playback, pause/resume, seek, volume and mute control, and a single
// end-of-media notification per bound resource.
type Interface interface {
	Play(path string) error
	Stop()
	Pause()
	Resume()
	Toggle()
	State() State
	Position() time.Duration
	Duration() time.Duration
	SeekTo(pos time.Duration)
	SetVolume(level float64)
	Volume() float64
	SetMuted(muted bool)
	Muted() bool
	OnFinished(fn func())
	Close() error
}

// Verify Player implements Interface at compile time.
var _ Interface = (*Player)(nil)

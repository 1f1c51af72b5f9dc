package playback

import (
	"time"

	"github.com/mlegall/strum/internal/playlist"
)

// Snapshot is a point-in-time copy of the full controller state, as served
// to clients that join after events they missed.
type Snapshot struct {
	Tracks    []playlist.Track
	Index     int
	Playing   bool
	Repeat    RepeatMode
	Shuffle   bool
	LikedOnly bool
	Liked     map[string]bool
	Volume    float64
	Muted     bool
	Position  time.Duration
	Duration  time.Duration
}

// Snapshot returns a consistent copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		Tracks:    c.list.Tracks(),
		Index:     c.current,
		Playing:   c.playing,
		Repeat:    c.repeat,
		Shuffle:   c.shuffle,
		LikedOnly: c.likedOnly,
		Liked:     c.likes.IDs(),
		Volume:    c.engine.Volume(),
		Muted:     c.engine.Muted(),
		Position:  c.engine.Position(),
		Duration:  c.engine.Duration(),
	}
}

// Tracks returns the full playlist in insertion order.
func (c *Controller) Tracks() []playlist.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.list.Tracks()
}

// Visible returns the playlist as currently filtered: all tracks, or only
// the liked ones when the liked-only filter is on.
func (c *Controller) Visible() []playlist.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()

	all := c.list.Tracks()
	if !c.likedOnly {
		return all
	}
	visible := make([]playlist.Track, 0, len(all))
	for _, t := range all {
		if c.likes.Contains(t.ID) {
			visible = append(visible, t)
		}
	}
	return visible
}

// CurrentIndex returns the current track index, -1 when the playlist is
// empty.
func (c *Controller) CurrentIndex() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// CurrentTrack returns a copy of the current track, or nil when the
// playlist is empty.
func (c *Controller) CurrentTrack() *playlist.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t := c.list.Track(c.current)
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

// TrackByID returns a copy of the track with the given ID, or nil.
func (c *Controller) TrackByID(id string) *playlist.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t := c.list.ByID(id)
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

// Playing reports whether the transport is playing.
func (c *Controller) Playing() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playing
}

// Repeat returns the current repeat mode.
func (c *Controller) Repeat() RepeatMode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.repeat
}

// Shuffle reports whether shuffle mode is on.
func (c *Controller) Shuffle() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.shuffle
}

// LikedOnly reports whether the liked-only view filter is on.
func (c *Controller) LikedOnly() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.likedOnly
}

// Liked reports whether the given track ID is in the liked set.
func (c *Controller) Liked(trackID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.likes.Contains(trackID)
}

// Volume returns the stored volume level.
func (c *Controller) Volume() float64 {
	return c.engine.Volume()
}

// Muted reports whether output is muted.
func (c *Controller) Muted() bool {
	return c.engine.Muted()
}

// Position returns the playback position of the bound track.
func (c *Controller) Position() time.Duration {
	return c.engine.Position()
}

// Duration returns the duration of the bound track.
func (c *Controller) Duration() time.Duration {
	return c.engine.Duration()
}

// Package playback implements the playlist and playback controller: the
// single authority over what plays next and what is currently selected.
//
// The controller owns the ordered track list, the current-track pointer,
// shuffle/repeat modes, the liked set and the view filter, and translates
// user intent into commands issued to the audio engine. All transitions are
// total: operations that need a non-empty playlist degrade to no-ops.
package playback

import (
	"math/rand"
	"sync"
	"time"

	"github.com/mlegall/strum/internal/player"
	"github.com/mlegall/strum/internal/playlist"
)

// previousRestartGrace is how far into a track the previous-track action
// restarts the current track instead of moving to the preceding one.
const previousRestartGrace = 3 * time.Second

// positionInterval is the cadence of time-progress events while playing.
const positionInterval = 500 * time.Millisecond

// Controller owns the playlist and all playback state.
type Controller struct {
	mu sync.RWMutex

	engine player.Interface
	list   *playlist.Playlist
	likes  *playlist.Likes

	current   int // -1 while the playlist is empty
	playing   bool
	repeat    RepeatMode
	shuffle   bool
	order     []int // shuffle order; kept stale when shuffle is off
	likedOnly bool

	rng *rand.Rand

	subs   []*Subscription
	subsMu sync.RWMutex

	done   chan struct{}
	closed bool
}

// New creates a controller bound to the given audio engine and starts the
// time-progress loop. The engine's end-of-media notification is routed to
// TrackEnded.
func New(engine player.Interface) *Controller {
	c := &Controller{
		engine:  engine,
		list:    playlist.New(),
		likes:   playlist.NewLikes(),
		current: -1,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		done:    make(chan struct{}),
	}
	engine.OnFinished(c.TrackEnded)
	go c.positionLoop()
	return c
}

// Add appends tracks to the playlist as one batch. The first append on an
// empty playlist selects index 0 without starting playback. The shuffle
// order is intentionally left stale: new tracks join it only when shuffle
// is toggled again.
func (c *Controller) Add(tracks ...playlist.Track) {
	if len(tracks) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.list.Add(tracks...)
	if c.current < 0 {
		c.current = 0
	}
	c.publish(func(s *Subscription) {
		s.sendQueue(QueueChange{Tracks: c.list.Tracks(), Index: c.current})
	})
}

// Select makes index the current track and unconditionally starts playback
// on it, even if the transport was paused. Out-of-range indices are ignored.
func (c *Controller) Select(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= c.list.Len() {
		return
	}

	prev := c.current
	c.current = index
	c.startCurrentLocked(prev)
}

// Toggle flips between playing and paused. No-op on an empty playlist.
func (c *Controller) Toggle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.list.Len() == 0 {
		return
	}

	if c.playing {
		c.engine.Pause()
		c.setPlayingLocked(false)
		return
	}

	if c.engine.State() == player.Stopped {
		// Nothing bound yet (or the last track ran out): bind and play.
		c.startCurrentLocked(c.current)
		return
	}
	c.engine.Resume()
	c.setPlayingLocked(true)
}

// Next advances playback. With repeat-one the current track restarts from
// the beginning; otherwise the controller moves to the next index, cyclic,
// honoring the shuffle order when enabled. No-op on an empty playlist.
func (c *Controller) Next() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.list.Len() == 0 {
		return
	}

	if c.repeat == RepeatOne {
		c.restartCurrentLocked()
		return
	}

	prev := c.current
	c.current = c.nextIndexLocked()
	c.startCurrentLocked(prev)
}

// Previous restarts the current track when more than three seconds have
// elapsed; otherwise it moves to the preceding index, cyclic, honoring the
// shuffle order when enabled. No-op on an empty playlist.
func (c *Controller) Previous() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.list.Len() == 0 {
		return
	}

	if c.engine.Position() > previousRestartGrace {
		// Restart takes precedence over going back; the playing flag and
		// the current index are left untouched.
		c.engine.SeekTo(0)
		c.publish(func(s *Subscription) {
			s.sendPosition(PositionChange{Position: 0, Duration: c.engine.Duration()})
		})
		return
	}

	prev := c.current
	c.current = c.prevIndexLocked()
	c.startCurrentLocked(prev)
}

// TrackEnded handles the engine's end-of-media notification.
// Repeat-one restarts the track; repeat-all, or repeat-off with more than
// one track, advances with Next semantics; a single track with repeat off
// simply stops.
func (c *Controller) TrackEnded() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.list.Len() == 0 {
		return
	}

	switch {
	case c.repeat == RepeatOne:
		c.restartCurrentLocked()
	case c.repeat == RepeatAll || c.list.Len() > 1:
		prev := c.current
		c.current = c.nextIndexLocked()
		c.startCurrentLocked(prev)
	default:
		c.setPlayingLocked(false)
	}
}

// ToggleShuffle flips shuffle mode. Enabling computes a fresh permutation
// anchored at the current track; disabling flips only the flag and leaves
// the order stale.
func (c *Controller) ToggleShuffle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.shuffle = !c.shuffle
	if c.shuffle {
		c.order = newShuffleOrder(c.list.Len(), c.current, c.rng)
	}
	c.publish(func(s *Subscription) {
		s.sendMode(ModeChange{Repeat: c.repeat, Shuffle: c.shuffle})
	})
	return c.shuffle
}

// SetRepeat sets the repeat mode directly. Desktop integrations address
// modes by name rather than cycling.
func (c *Controller) SetRepeat(mode RepeatMode) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if mode != RepeatOff && mode != RepeatAll && mode != RepeatOne {
		return
	}
	if c.repeat == mode {
		return
	}
	c.repeat = mode
	c.publish(func(s *Subscription) {
		s.sendMode(ModeChange{Repeat: c.repeat, Shuffle: c.shuffle})
	})
}

// SetShuffle sets shuffle mode to an explicit state, recomputing the order
// when turning it on.
func (c *Controller) SetShuffle(shuffle bool) {
	c.mu.Lock()
	on := c.shuffle
	c.mu.Unlock()
	if on != shuffle {
		c.ToggleShuffle()
	}
}

// CycleRepeat advances the repeat mode Off → All → One → Off.
func (c *Controller) CycleRepeat() RepeatMode {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.repeat = c.repeat.Cycle()
	c.publish(func(s *Subscription) {
		s.sendMode(ModeChange{Repeat: c.repeat, Shuffle: c.shuffle})
	})
	return c.repeat
}

// ToggleLike flips the liked status of the given track ID and returns the
// new status. Liking is independent of playback.
func (c *Controller) ToggleLike(trackID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	liked := c.likes.Toggle(trackID)
	c.publish(func(s *Subscription) {
		s.sendLike(LikeChange{TrackID: trackID, Liked: liked})
	})
	return liked
}

// SetVolume sets the volume level, clamped to [0,1]. The stored level
// survives muting.
func (c *Controller) SetVolume(level float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	c.engine.SetVolume(level)
	c.publish(func(s *Subscription) {
		s.sendVolume(VolumeChange{Volume: c.engine.Volume(), Muted: c.engine.Muted()})
	})
}

// ToggleMute flips the muted state without touching the stored volume.
func (c *Controller) ToggleMute() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	muted := !c.engine.Muted()
	c.engine.SetMuted(muted)
	c.publish(func(s *Subscription) {
		s.sendVolume(VolumeChange{Volume: c.engine.Volume(), Muted: muted})
	})
	return muted
}

// SeekTo moves the playback position, clamped to [0, duration].
func (c *Controller) SeekTo(pos time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pos < 0 {
		pos = 0
	}
	if d := c.engine.Duration(); d > 0 && pos > d {
		pos = d
	}
	c.engine.SeekTo(pos)
	c.publish(func(s *Subscription) {
		s.sendPosition(PositionChange{Position: pos, Duration: c.engine.Duration()})
	})
}

// SetLikedOnly toggles the liked-only view filter. The filter is a derived
// view and never mutates the playlist.
func (c *Controller) SetLikedOnly(likedOnly bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.likedOnly = likedOnly
	c.publish(func(s *Subscription) {
		s.sendFilter(FilterChange{LikedOnly: likedOnly})
	})
}

// startCurrentLocked binds the current track to the engine and starts
// playback, unconditionally. A play failure flips the playing flag off and
// surfaces on the event stream; the index change sticks either way.
func (c *Controller) startCurrentLocked(prevIndex int) {
	t := c.list.Track(c.current)
	if t == nil {
		return
	}

	if prevIndex != c.current {
		c.publish(func(s *Subscription) {
			s.sendTrack(TrackChange{PreviousIndex: prevIndex, Index: c.current, Track: *t})
		})
	}

	if err := c.engine.Play(t.Path); err != nil {
		c.setPlayingLocked(false)
		c.publish(func(s *Subscription) {
			s.sendError(ErrorEvent{Op: "play", Path: t.Path, Err: err})
		})
		return
	}
	c.setPlayingLocked(true)
}

// restartCurrentLocked rebinds the current track so playback resumes from
// time zero.
func (c *Controller) restartCurrentLocked() {
	c.startCurrentLocked(c.current)
	c.publish(func(s *Subscription) {
		s.sendPosition(PositionChange{Position: 0, Duration: c.engine.Duration()})
	})
}

func (c *Controller) setPlayingLocked(playing bool) {
	if c.playing == playing {
		return
	}
	c.playing = playing
	c.publish(func(s *Subscription) {
		s.sendState(StateChange{Playing: playing})
	})
}

// positionLoop emits time-progress events while playback is active.
func (c *Controller) positionLoop() {
	ticker := time.NewTicker(positionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.RLock()
			playing := c.playing
			pos := c.engine.Position()
			dur := c.engine.Duration()
			c.mu.RUnlock()

			if playing {
				c.publish(func(s *Subscription) {
					s.sendPosition(PositionChange{Position: pos, Duration: dur})
				})
			}
		}
	}
}

// Subscribe creates a new event subscription.
func (c *Controller) Subscribe() *Subscription {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	sub := newSubscription()
	c.subs = append(c.subs, sub)
	return sub
}

// Unsubscribe removes a subscription and closes its done channel.
func (c *Controller) Unsubscribe(sub *Subscription) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			sub.close()
			return
		}
	}
}

// publish delivers an event to all subscribers without blocking.
func (c *Controller) publish(send func(*Subscription)) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		send(sub)
	}
}

// Close shuts down the controller and all subscriptions.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	c.subsMu.Lock()
	for _, sub := range c.subs {
		sub.close()
	}
	c.subs = nil
	c.subsMu.Unlock()

	return nil
}

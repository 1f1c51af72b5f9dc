package player

import (
	"time"

	"github.com/gopxl/beep/v2/speaker"
)

// Stop stops playback and releases the bound resource.
func (p *Player) Stop() {
	if p.streamer == nil && p.State() == Stopped {
		return
	}

	speaker.Clear()

	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}
	if p.file != nil {
		p.file.Close()
		p.file = nil
	}

	p.ctrl = nil
	p.volume = nil
	p.setState(Stopped)
}

// Pause pauses playback.
func (p *Player) Pause() {
	if p.State() != Playing || p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
	p.setState(Paused)
}

// Resume resumes paused playback.
func (p *Player) Resume() {
	if p.State() != Paused || p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = false
	speaker.Unlock()
	p.setState(Playing)
}

// Toggle toggles between playing and paused states.
func (p *Player) Toggle() {
	switch p.State() {
	case Playing:
		p.Pause()
	case Paused:
		p.Resume()
	case Stopped:
		// Nothing to toggle when stopped
	}
}

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	if p.streamer == nil {
		return 0
	}
	// Read position without the speaker lock - may be slightly stale but
	// avoids blocking the audio goroutine for a progress read.
	return p.format.SampleRate.D(p.streamer.Position())
}

// SeekTo moves the playback position to pos, clamped to the bound
// resource's length. No-op when nothing is bound.
func (p *Player) SeekTo(pos time.Duration) {
	if p.streamer == nil || p.State() == Stopped {
		return
	}

	n := p.format.SampleRate.N(pos)
	if n < 0 {
		n = 0
	}
	if limit := p.streamer.Len() - 1; n > limit {
		n = limit
	}

	speaker.Lock()
	_ = p.streamer.Seek(n)
	speaker.Unlock()
}

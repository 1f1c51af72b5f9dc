package player

import (
	"sync"
	"testing"
)

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Stopped, "Stopped"},
		{Playing, "Playing"},
		{Paused, "Paused"},
		{State(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestState_IsActive(t *testing.T) {
	tests := []struct {
		state State
		want  bool
	}{
		{Stopped, false},
		{Playing, true},
		{Paused, true},
	}
	for _, tt := range tests {
		if got := tt.state.IsActive(); got != tt.want {
			t.Errorf("%v.IsActive() = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestIsMusicFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/music/song.mp3", true},
		{"/music/song.FLAC", true},
		{"/music/song.wav", true},
		{"/music/song.ogg", true},
		{"/music/song.m4a", false},
		{"/music/cover.jpg", false},
		{"/music/song", false},
	}
	for _, tt := range tests {
		if got := IsMusicFile(tt.path); got != tt.want {
			t.Errorf("IsMusicFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

// The end-of-media callback marks the player stopped from the speaker
// goroutine while other goroutines poll State. Run both sides under the
// race detector.
func TestState_ConcurrentEndOfMediaWrite(t *testing.T) {
	p := New()

	var wg sync.WaitGroup
	done := make(chan struct{})

	wg.Go(func() {
		for i := 0; i < 1000; i++ {
			p.setState(Playing)
			p.setState(Stopped)
		}
		close(done)
	})
	wg.Go(func() {
		for {
			select {
			case <-done:
				return
			default:
				_ = p.State()
			}
		}
	})
	wg.Wait()

	if got := p.State(); got != Stopped {
		t.Errorf("State() = %v, want Stopped", got)
	}
}

func TestMock_Toggle(t *testing.T) {
	m := NewMock()

	// Toggle on stopped player is a no-op
	m.Toggle()
	if m.State() != Stopped {
		t.Errorf("State() = %v, want Stopped", m.State())
	}

	if err := m.Play("/music/a.mp3"); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	m.Toggle()
	if m.State() != Paused {
		t.Errorf("State() = %v, want Paused", m.State())
	}
	m.Toggle()
	if m.State() != Playing {
		t.Errorf("State() = %v, want Playing", m.State())
	}
}

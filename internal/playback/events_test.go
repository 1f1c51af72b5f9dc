package playback

import (
	"testing"
	"time"

	"github.com/mlegall/strum/internal/player"
	"github.com/mlegall/strum/internal/playlist"
)

func TestRepeatModeCycle(t *testing.T) {
	tests := []struct {
		in   RepeatMode
		want RepeatMode
	}{
		{RepeatOff, RepeatAll},
		{RepeatAll, RepeatOne},
		{RepeatOne, RepeatOff},
		{RepeatMode(42), RepeatOff},
	}
	for _, tt := range tests {
		if got := tt.in.Cycle(); got != tt.want {
			t.Errorf("%v.Cycle() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRepeatModeString(t *testing.T) {
	if got := RepeatAll.String(); got != "All" {
		t.Errorf("RepeatAll.String() = %q, want All", got)
	}
	if got := RepeatMode(42).String(); got != "Unknown" {
		t.Errorf("unknown mode String() = %q, want Unknown", got)
	}
}

func TestSubscriberReceivesEvents(t *testing.T) {
	c, _ := newTestController(t, 2)
	sub := c.Subscribe()
	defer c.Unsubscribe(sub)

	c.Select(1)

	select {
	case e := <-sub.TrackChanged:
		if e.Index != 1 || e.PreviousIndex != 0 {
			t.Errorf("TrackChange = %+v, want previous 0 index 1", e)
		}
		if e.Track.Path != "/music/1.mp3" {
			t.Errorf("TrackChange.Track.Path = %q", e.Track.Path)
		}
	case <-time.After(time.Second):
		t.Fatal("no TrackChange received")
	}

	select {
	case e := <-sub.StateChanged:
		if !e.Playing {
			t.Error("StateChange.Playing = false, want true")
		}
	case <-time.After(time.Second):
		t.Fatal("no StateChange received")
	}
}

func TestRestartEmitsPositionNotTrackChange(t *testing.T) {
	c, mock := newTestController(t, 3)
	c.Select(1)
	mock.SetPosition(10 * time.Second)

	sub := c.Subscribe()
	defer c.Unsubscribe(sub)

	c.Previous()

	select {
	case e := <-sub.PositionChanged:
		if e.Position != 0 {
			t.Errorf("PositionChange.Position = %v, want 0", e.Position)
		}
	case <-time.After(time.Second):
		t.Fatal("no PositionChange received")
	}
	select {
	case e := <-sub.TrackChanged:
		t.Errorf("in-track restart emitted TrackChange %+v", e)
	default:
	}
}

func TestSlowSubscriberDropsEvents(t *testing.T) {
	c, _ := newTestController(t, 1)
	sub := c.Subscribe()
	defer c.Unsubscribe(sub)

	// Overflow the like buffer without ever reading.
	id := c.Tracks()[0].ID
	for i := 0; i < eventBufferSize*2; i++ {
		c.ToggleLike(id)
	}

	drained := 0
	for {
		select {
		case <-sub.LikeChanged:
			drained++
		default:
			if drained != eventBufferSize {
				t.Errorf("drained %d events, want buffer size %d", drained, eventBufferSize)
			}
			return
		}
	}
}

func TestUnsubscribeClosesDone(t *testing.T) {
	c, _ := newTestController(t, 1)
	sub := c.Subscribe()

	c.Unsubscribe(sub)

	select {
	case <-sub.Done:
	case <-time.After(time.Second):
		t.Fatal("Done not closed after Unsubscribe")
	}

	// Events after unsubscribe must not reach the old channels.
	c.SetLikedOnly(true)
	select {
	case <-sub.FilterChanged:
		t.Error("received an event after Unsubscribe")
	default:
	}
}

func TestCloseReleasesSubscribers(t *testing.T) {
	mock := player.NewMock()
	c := New(mock)
	c.Add(playlist.NewTrack("a", "/music/a.mp3", nil))
	sub := c.Subscribe()

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	select {
	case <-sub.Done:
	case <-time.After(time.Second):
		t.Fatal("Done not closed after controller Close")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}
}

func TestQueueChangeOnAdd(t *testing.T) {
	mock := player.NewMock()
	c := New(mock)
	defer c.Close()
	sub := c.Subscribe()
	defer c.Unsubscribe(sub)

	c.Add(
		playlist.NewTrack("a", "/music/a.mp3", nil),
		playlist.NewTrack("b", "/music/b.mp3", nil),
	)

	select {
	case e := <-sub.QueueChanged:
		if len(e.Tracks) != 2 || e.Index != 0 {
			t.Errorf("QueueChange = %+v, want 2 tracks index 0", e)
		}
	case <-time.After(time.Second):
		t.Fatal("no QueueChange received")
	}
}

package player

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

type State int

const (
	Stopped State = iota
	Playing
	Paused
)

// Player renders audio files on the default output device using beep.
//
// One resource is bound at a time; Play rebinds and starts from the
// beginning. All mutating calls are expected to come from a single logical
// controller. The state field alone carries its own lock: the speaker
// goroutine marks the player stopped at end of media, concurrently with
// controller reads.
type Player struct {
	stateMu     sync.Mutex
	state       State
	ctrl        *beep.Ctrl
	volume      *effects.Volume
	streamer    beep.StreamSeekCloser
	format      beep.Format
	file        *os.File
	volumeLevel float64
	muted       bool
	onFinished  func()
}

var speakerInitialized bool

// New creates a stopped player with full volume.
func New() *Player {
	return &Player{
		state:       Stopped,
		volumeLevel: 1.0,
	}
}

// SupportedExtensions lists the playable file extensions.
var SupportedExtensions = []string{".mp3", ".flac", ".wav", ".ogg"}

// IsMusicFile reports whether the path has a playable extension.
func IsMusicFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Play binds the file at path and starts playback from the beginning.
// Any previously bound resource is released first.
func (p *Player) Play(path string) error {
	p.Stop()

	ext := strings.ToLower(filepath.Ext(path))
	if !IsMusicFile(path) {
		return fmt.Errorf("unsupported format: %s", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format

	switch ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		// Some taggers prepend ID3v2 to flac files, which the decoder
		// rejects. Skip past it before handing over the reader.
		if err = skipID3v2(f); err == nil {
			streamer, format, err = flac.Decode(f)
		}
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	}
	if err != nil {
		f.Close()
		return err
	}

	if !speakerInitialized {
		err = speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10))
		if err != nil {
			streamer.Close()
			f.Close()
			return err
		}
		speakerInitialized = true
	}

	p.file = f
	p.streamer = streamer
	p.format = format
	p.ctrl = &beep.Ctrl{Streamer: streamer, Paused: false}
	p.volume = &effects.Volume{
		Streamer: p.ctrl,
		Base:     2,
		Volume:   levelToVolume(p.volumeLevel),
		Silent:   p.muted,
	}

	p.setState(Playing)

	speaker.Play(beep.Seq(p.volume, beep.Callback(func() {
		// The callback runs on the speaker goroutine; hand off so the
		// handler is free to rebind the player without deadlocking.
		p.setState(Stopped)
		if p.onFinished != nil {
			go p.onFinished()
		}
	})))

	return nil
}

// State returns the current player state.
func (p *Player) State() State {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	return p.state
}

func (p *Player) setState(s State) {
	p.stateMu.Lock()
	p.state = s
	p.stateMu.Unlock()
}

// Duration returns the total duration of the bound resource.
func (p *Player) Duration() time.Duration {
	if p.streamer == nil {
		return 0
	}
	return p.format.SampleRate.D(p.streamer.Len())
}

// OnFinished registers the end-of-media callback. It fires once per bound
// resource, when playback reaches the natural end. Stop does not fire it.
func (p *Player) OnFinished(fn func()) {
	p.onFinished = fn
}

// Close releases the bound resource.
func (p *Player) Close() error {
	p.Stop()
	return nil
}

func skipID3v2(r io.ReadSeeker) error {
	header := make([]byte, 10)
	n, err := r.Read(header)
	if err != nil {
		return err
	}
	if n < 10 || string(header[0:3]) != "ID3" {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}

	// ID3v2 size is a syncsafe integer in bytes 6-9, 7 bits per byte.
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])
	_, err = r.Seek(10+size, io.SeekStart)
	return err
}

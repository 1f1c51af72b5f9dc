package playlist

import "github.com/google/uuid"

// Artwork holds embedded or folder cover art for a track.
type Artwork struct {
	Data []byte
	MIME string
}

// Track represents a single track in a playlist.
// Tracks are immutable after creation.
type Track struct {
	ID      string   // random token, probabilistically unique
	Name    string   // display name, usually the uploaded file name
	Path    string   // file path for playback
	Artwork *Artwork // nil when no art could be extracted
}

// NewTrack creates a track with a fresh random ID.
func NewTrack(name, path string, art *Artwork) Track {
	return Track{
		ID:      uuid.NewString(),
		Name:    name,
		Path:    path,
		Artwork: art,
	}
}

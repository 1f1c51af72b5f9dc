package playlist

// Playlist holds an ordered, append-only collection of tracks.
// There is no removal path: indices handed out stay valid for the lifetime
// of the playlist.
type Playlist struct {
	tracks []Track
}

// New creates a new empty playlist.
func New() *Playlist {
	return &Playlist{
		tracks: make([]Track, 0),
	}
}

// Add appends tracks to the playlist.
func (p *Playlist) Add(tracks ...Track) {
	p.tracks = append(p.tracks, tracks...)
}

// Tracks returns a copy of all tracks.
func (p *Playlist) Tracks() []Track {
	result := make([]Track, len(p.tracks))
	copy(result, p.tracks)
	return result
}

// Track returns the track at the given index, or nil if out of bounds.
func (p *Playlist) Track(index int) *Track {
	if index < 0 || index >= len(p.tracks) {
		return nil
	}
	return &p.tracks[index]
}

// ByID returns the track with the given ID, or nil if absent.
func (p *Playlist) ByID(id string) *Track {
	for i := range p.tracks {
		if p.tracks[i].ID == id {
			return &p.tracks[i]
		}
	}
	return nil
}

// Len returns the number of tracks.
func (p *Playlist) Len() int {
	return len(p.tracks)
}

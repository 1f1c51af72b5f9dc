package server

import (
	"strings"
	"time"

	"github.com/mlegall/strum/internal/playback"
	"github.com/mlegall/strum/internal/playlist"
)

// trackDTO is the wire form of a track. Artwork travels over its own
// endpoint, so only its presence is reported here.
type trackDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Liked      bool   `json:"liked"`
	HasArtwork bool   `json:"hasArtwork"`
}

// stateDTO is the wire form of a full controller snapshot.
type stateDTO struct {
	Tracks    []trackDTO `json:"tracks"`
	Index     int        `json:"index"`
	Playing   bool       `json:"playing"`
	Repeat    string     `json:"repeat"` // "off", "all", "one"
	Shuffle   bool       `json:"shuffle"`
	LikedOnly bool       `json:"likedOnly"`
	Volume    float64    `json:"volume"`
	Muted     bool       `json:"muted"`
	Position  float64    `json:"position"` // seconds
	Duration  float64    `json:"duration"` // seconds
}

func toTrackDTO(t playlist.Track, liked bool) trackDTO {
	return trackDTO{
		ID:         t.ID,
		Name:       t.Name,
		Liked:      liked,
		HasArtwork: t.Artwork != nil,
	}
}

func toTrackDTOs(tracks []playlist.Track, liked map[string]bool) []trackDTO {
	out := make([]trackDTO, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, toTrackDTO(t, liked[t.ID]))
	}
	return out
}

func toStateDTO(s playback.Snapshot) stateDTO {
	return stateDTO{
		Tracks:    toTrackDTOs(s.Tracks, s.Liked),
		Index:     s.Index,
		Playing:   s.Playing,
		Repeat:    repeatName(s.Repeat),
		Shuffle:   s.Shuffle,
		LikedOnly: s.LikedOnly,
		Volume:    s.Volume,
		Muted:     s.Muted,
		Position:  seconds(s.Position),
		Duration:  seconds(s.Duration),
	}
}

func repeatName(m playback.RepeatMode) string {
	return strings.ToLower(m.String())
}

func seconds(d time.Duration) float64 {
	return d.Seconds()
}

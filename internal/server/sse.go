package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// eventsAction streams controller events as server-sent events. The first
// frame is always a full state snapshot so late joiners need no separate
// fetch.
func (s *Server) eventsAction(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := s.ctrl.Subscribe()
	defer s.ctrl.Unsubscribe(sub)

	writeEvent := func(name string, payload any) bool {
		data, err := json.Marshal(payload)
		if err != nil {
			s.log.WithError(err).Warn("failed to encode event")
			return true
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !writeEvent("state", toStateDTO(s.ctrl.Snapshot())) {
		return
	}

	for {
		var ok bool
		select {
		case <-r.Context().Done():
			return
		case <-sub.Done:
			return
		case e := <-sub.StateChanged:
			ok = writeEvent("playing", map[string]any{"playing": e.Playing})
		case e := <-sub.TrackChanged:
			ok = writeEvent("track", map[string]any{
				"previousIndex": e.PreviousIndex,
				"index":         e.Index,
				"track":         toTrackDTO(e.Track, s.ctrl.Liked(e.Track.ID)),
			})
		case e := <-sub.PositionChanged:
			ok = writeEvent("position", map[string]any{
				"position": seconds(e.Position),
				"duration": seconds(e.Duration),
			})
		case e := <-sub.QueueChanged:
			ok = writeEvent("queue", map[string]any{
				"tracks": toTrackDTOs(e.Tracks, s.ctrl.Snapshot().Liked),
				"index":  e.Index,
			})
		case e := <-sub.ModeChanged:
			ok = writeEvent("mode", map[string]any{
				"repeat":  repeatName(e.Repeat),
				"shuffle": e.Shuffle,
			})
		case e := <-sub.LikeChanged:
			ok = writeEvent("like", map[string]any{"id": e.TrackID, "liked": e.Liked})
		case e := <-sub.VolumeChanged:
			ok = writeEvent("volume", map[string]any{"volume": e.Volume, "muted": e.Muted})
		case e := <-sub.FilterChanged:
			ok = writeEvent("filter", map[string]any{"likedOnly": e.LikedOnly})
		case e := <-sub.Error:
			ok = writeEvent("error", map[string]any{"op": e.Op, "message": e.Err.Error()})
		}
		if !ok {
			return
		}
	}
}

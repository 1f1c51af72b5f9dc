package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/mlegall/strum/internal/errmsg"
	"github.com/mlegall/strum/internal/ingest"
)

// maxUploadMemory bounds the in-memory part of multipart parsing; larger
// files spill to temporary storage.
const maxUploadMemory = 32 << 20

func (s *Server) uploadTracksAction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(w, errmsg.Format(errmsg.OpUploadReceive, err), http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		respondError(w, "no files in upload", http.StatusBadRequest)
		return
	}

	uploads := make([]ingest.Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			respondError(w, errmsg.FormatWith(errmsg.OpUploadReceive, fh.Filename, err), http.StatusBadRequest)
			return
		}
		path, err := s.ingester.Spool(fh.Filename, f)
		f.Close()
		if err != nil {
			respondError(w, errmsg.FormatWith(errmsg.OpUploadSpool, fh.Filename, err), http.StatusBadRequest)
			return
		}
		uploads = append(uploads, ingest.Upload{Name: fh.Filename, Path: path})
	}

	tracks := s.ingester.BuildTracks(uploads)
	s.ctrl.Add(tracks...)

	respondJSON(w, http.StatusCreated, toTrackDTOs(tracks, nil))
}

func (s *Server) listTracksAction(w http.ResponseWriter, _ *http.Request) {
	snap := s.ctrl.Snapshot()
	respondJSON(w, http.StatusOK, toTrackDTOs(s.ctrl.Visible(), snap.Liked))
}

func (s *Server) stateAction(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, toStateDTO(s.ctrl.Snapshot()))
}

func (s *Server) artworkAction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	t := s.ctrl.TrackByID(id)
	if t == nil || t.Artwork == nil {
		respondError(w, "", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", t.Artwork.MIME)
	w.Header().Set("Cache-Control", "max-age=86400")
	_, _ = w.Write(t.Artwork.Data)
}

func (s *Server) selectAction(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		respondError(w, "", http.StatusBadRequest)
		return
	}
	if index < 0 || index >= len(s.ctrl.Tracks()) {
		respondError(w, "index out of range", http.StatusNotFound)
		return
	}
	s.ctrl.Select(index)
	respondJSON(w, http.StatusOK, toStateDTO(s.ctrl.Snapshot()))
}

func (s *Server) toggleAction(w http.ResponseWriter, _ *http.Request) {
	s.ctrl.Toggle()
	respondJSON(w, http.StatusOK, toStateDTO(s.ctrl.Snapshot()))
}

func (s *Server) nextAction(w http.ResponseWriter, _ *http.Request) {
	s.ctrl.Next()
	respondJSON(w, http.StatusOK, toStateDTO(s.ctrl.Snapshot()))
}

func (s *Server) previousAction(w http.ResponseWriter, _ *http.Request) {
	s.ctrl.Previous()
	respondJSON(w, http.StatusOK, toStateDTO(s.ctrl.Snapshot()))
}

func (s *Server) shuffleAction(w http.ResponseWriter, _ *http.Request) {
	s.ctrl.ToggleShuffle()
	respondJSON(w, http.StatusOK, toStateDTO(s.ctrl.Snapshot()))
}

func (s *Server) repeatAction(w http.ResponseWriter, _ *http.Request) {
	s.ctrl.CycleRepeat()
	respondJSON(w, http.StatusOK, toStateDTO(s.ctrl.Snapshot()))
}

func (s *Server) muteAction(w http.ResponseWriter, _ *http.Request) {
	s.ctrl.ToggleMute()
	respondJSON(w, http.StatusOK, toStateDTO(s.ctrl.Snapshot()))
}

func (s *Server) volumeAction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Volume float64 `json:"volume"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errmsg.Format(errmsg.OpPlaybackVolume, err), http.StatusBadRequest)
		return
	}
	s.ctrl.SetVolume(req.Volume)
	respondJSON(w, http.StatusOK, toStateDTO(s.ctrl.Snapshot()))
}

func (s *Server) seekAction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Position float64 `json:"position"` // seconds
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errmsg.Format(errmsg.OpPlaybackSeek, err), http.StatusBadRequest)
		return
	}
	if req.Position < 0 {
		req.Position = 0
	}
	s.ctrl.SeekTo(time.Duration(req.Position * float64(time.Second)))
	respondJSON(w, http.StatusOK, toStateDTO(s.ctrl.Snapshot()))
}

func (s *Server) filterAction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LikedOnly bool `json:"liked_only"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "", http.StatusBadRequest)
		return
	}
	s.ctrl.SetLikedOnly(req.LikedOnly)
	respondJSON(w, http.StatusOK, toStateDTO(s.ctrl.Snapshot()))
}

func (s *Server) toggleLikeAction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if s.ctrl.TrackByID(id) == nil {
		respondError(w, "unknown track", http.StatusNotFound)
		return
	}
	liked := s.ctrl.ToggleLike(id)
	respondJSON(w, http.StatusOK, map[string]any{"id": id, "liked": liked})
}

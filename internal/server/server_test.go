package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mlegall/strum/internal/ingest"
	"github.com/mlegall/strum/internal/playback"
	"github.com/mlegall/strum/internal/player"
)

type artForAll struct{ data []byte }

func (a artForAll) Extract(string) ([]byte, string, error) {
	return a.data, "image/jpeg", nil
}

func newTestServer(t *testing.T, extractor ingest.ArtExtractor) (*Server, *player.Mock) {
	t.Helper()
	mock := player.NewMock()
	ctrl := playback.New(mock)
	t.Cleanup(func() { ctrl.Close() })

	ingester, err := ingest.New(t.TempDir(), extractor)
	if err != nil {
		t.Fatal(err)
	}
	return New(":0", ctrl, ingester), mock
}

func multipartUpload(t *testing.T, names ...string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, name := range names {
		fw, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte("fake audio for " + name)); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &body, mw.FormDataContentType()
}

func doUpload(t *testing.T, s *Server, names ...string) []trackDTO {
	t.Helper()
	body, contentType := multipartUpload(t, names...)
	req := httptest.NewRequest("POST", "/api/tracks", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body %s", rec.Code, rec.Body)
	}
	var tracks []trackDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &tracks); err != nil {
		t.Fatal(err)
	}
	return tracks
}

func getState(t *testing.T, s *Server) stateDTO {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/state", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("state status = %d", rec.Code)
	}
	var state stateDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatal(err)
	}
	return state
}

func post(t *testing.T, s *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest("POST", path, nil)
	} else {
		req = httptest.NewRequest("POST", path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestUploadCreatesTracks(t *testing.T) {
	s, _ := newTestServer(t, nil)

	tracks := doUpload(t, s, "first song.mp3", "second song.flac")

	if len(tracks) != 2 {
		t.Fatalf("upload returned %d tracks, want 2", len(tracks))
	}
	if tracks[0].Name != "first song" || tracks[1].Name != "second song" {
		t.Errorf("track names = %q, %q", tracks[0].Name, tracks[1].Name)
	}

	state := getState(t, s)
	if len(state.Tracks) != 2 || state.Index != 0 || state.Playing {
		t.Errorf("state after upload = %+v", state)
	}
}

func TestUploadRejectsUnsupportedFile(t *testing.T) {
	s, _ := newTestServer(t, nil)

	body, contentType := multipartUpload(t, "readme.txt")
	req := httptest.NewRequest("POST", "/api/tracks", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUploadWithoutFiles(t *testing.T) {
	s, _ := newTestServer(t, nil)
	if rec := post(t, s, "/api/tracks", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSelectPlaysTrack(t *testing.T) {
	s, mock := newTestServer(t, nil)
	doUpload(t, s, "a.mp3", "b.mp3")

	rec := post(t, s, "/api/select/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	state := getState(t, s)
	if state.Index != 1 || !state.Playing {
		t.Errorf("state = %+v, want index 1 playing", state)
	}
	if len(mock.PlayCalls()) != 1 {
		t.Errorf("Play called %d times, want 1", len(mock.PlayCalls()))
	}
}

func TestSelectOutOfRange(t *testing.T) {
	s, _ := newTestServer(t, nil)
	doUpload(t, s, "a.mp3")

	if rec := post(t, s, "/api/select/5", ""); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if rec := post(t, s, "/api/select/abc", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestTransportEndpoints(t *testing.T) {
	s, _ := newTestServer(t, nil)
	doUpload(t, s, "a.mp3", "b.mp3", "c.mp3")
	post(t, s, "/api/select/0", "")

	post(t, s, "/api/next", "")
	if state := getState(t, s); state.Index != 1 {
		t.Errorf("index after next = %d, want 1", state.Index)
	}

	post(t, s, "/api/previous", "")
	if state := getState(t, s); state.Index != 0 {
		t.Errorf("index after previous = %d, want 0", state.Index)
	}

	post(t, s, "/api/toggle", "")
	if state := getState(t, s); state.Playing {
		t.Error("toggle should have paused")
	}

	post(t, s, "/api/repeat", "")
	if state := getState(t, s); state.Repeat != "all" {
		t.Errorf("repeat = %q, want all", state.Repeat)
	}

	post(t, s, "/api/shuffle", "")
	if state := getState(t, s); !state.Shuffle {
		t.Error("shuffle should be on")
	}
}

func TestVolumeAndMute(t *testing.T) {
	s, _ := newTestServer(t, nil)
	doUpload(t, s, "a.mp3")

	if rec := post(t, s, "/api/volume", `{"volume": 0.4}`); rec.Code != http.StatusOK {
		t.Fatalf("volume status = %d", rec.Code)
	}
	if state := getState(t, s); state.Volume != 0.4 {
		t.Errorf("volume = %v, want 0.4", state.Volume)
	}

	post(t, s, "/api/mute", "")
	state := getState(t, s)
	if !state.Muted || state.Volume != 0.4 {
		t.Errorf("state = %+v, want muted with volume preserved", state)
	}

	if rec := post(t, s, "/api/volume", "not json"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad volume body status = %d, want 400", rec.Code)
	}
}

func TestSeek(t *testing.T) {
	s, mock := newTestServer(t, nil)
	doUpload(t, s, "a.mp3")
	post(t, s, "/api/select/0", "")
	mock.SetDuration(200 * time.Second)

	if rec := post(t, s, "/api/seek", `{"position": 12.5}`); rec.Code != http.StatusOK {
		t.Fatalf("seek status = %d", rec.Code)
	}
	calls := mock.SeekCalls()
	if len(calls) != 1 || calls[0].Seconds() != 12.5 {
		t.Errorf("SeekCalls() = %v, want [12.5s]", calls)
	}
}

func TestLikesAndFilter(t *testing.T) {
	s, _ := newTestServer(t, nil)
	tracks := doUpload(t, s, "a.mp3", "b.mp3")

	rec := post(t, s, "/api/likes/"+tracks[0].ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("like status = %d", rec.Code)
	}
	var likeResp struct {
		Liked bool `json:"liked"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &likeResp); err != nil {
		t.Fatal(err)
	}
	if !likeResp.Liked {
		t.Error("first like toggle should report liked")
	}

	if rec := post(t, s, "/api/likes/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown like status = %d, want 404", rec.Code)
	}

	post(t, s, "/api/filter", `{"liked_only": true}`)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/tracks", nil))
	var visible []trackDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &visible); err != nil {
		t.Fatal(err)
	}
	if len(visible) != 1 || visible[0].ID != tracks[0].ID {
		t.Errorf("visible = %+v, want only the liked track", visible)
	}
}

func TestArtworkEndpoint(t *testing.T) {
	s, _ := newTestServer(t, artForAll{data: []byte("jpeg bytes")})
	tracks := doUpload(t, s, "a.mp3")

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/tracks/"+tracks[0].ID+"/artwork", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("artwork status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/jpeg" {
		t.Errorf("Content-Type = %q", got)
	}
	if rec.Body.String() != "jpeg bytes" {
		t.Errorf("artwork body = %q", rec.Body)
	}

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/tracks/unknown/artwork", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown artwork status = %d, want 404", rec.Code)
	}
}

func TestArtworkMissingForPlainTrack(t *testing.T) {
	s, _ := newTestServer(t, nil)
	tracks := doUpload(t, s, "a.mp3")

	if tracks[0].HasArtwork {
		t.Error("track without extractor should have no artwork")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/tracks/"+tracks[0].ID+"/artwork", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("artwork status = %d, want 404", rec.Code)
	}
}

// readFrame reads one server-sent event, returning its name and data line.
func readFrame(t *testing.T, r *bufio.Reader) (string, []byte) {
	t.Helper()
	var name string
	var data []byte
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read frame: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		if line == "" {
			return name, data
		}
		if after, ok := strings.CutPrefix(line, "event: "); ok {
			name = after
		}
		if after, ok := strings.CutPrefix(line, "data: "); ok {
			data = []byte(after)
		}
	}
}

func TestEventsStreamStartsWithSnapshot(t *testing.T) {
	s, _ := newTestServer(t, nil)
	doUpload(t, s, "a.mp3", "b.mp3")

	ts := httptest.NewServer(s.Handler())
	// Close blocks until in-flight handlers return, so a stream that does
	// not end on disconnect would hang the test here.
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", ts.URL+"/api/events", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", got)
	}

	r := bufio.NewReader(resp.Body)

	name, data := readFrame(t, r)
	if name != "state" {
		t.Fatalf("first frame = %q, want state", name)
	}
	var state stateDTO
	if err := json.Unmarshal(data, &state); err != nil {
		t.Fatalf("first frame data: %v", err)
	}
	if len(state.Tracks) != 2 || state.Index != 0 || state.Playing {
		t.Errorf("snapshot frame = %+v, want 2 tracks, index 0, stopped", state)
	}

	// A command issued while the stream is open must arrive as a frame.
	post(t, s, "/api/repeat", "")
	name, data = readFrame(t, r)
	if name != "mode" {
		t.Fatalf("frame = %q, want mode", name)
	}
	var mode struct {
		Repeat  string `json:"repeat"`
		Shuffle bool   `json:"shuffle"`
	}
	if err := json.Unmarshal(data, &mode); err != nil {
		t.Fatal(err)
	}
	if mode.Repeat != "all" || mode.Shuffle {
		t.Errorf("mode frame = %+v, want repeat all", mode)
	}

	cancel()
	if _, err := r.ReadString('\n'); err == nil {
		t.Error("stream should end once the client disconnects")
	}
}

func TestUnknownRouteAndMethod(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("DELETE", "/api/state", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

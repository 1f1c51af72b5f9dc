// Package ingest receives uploaded audio files, spools them to disk and
// turns them into playlist tracks with extracted cover art.
package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mlegall/strum/internal/errmsg"
	"github.com/mlegall/strum/internal/player"
	"github.com/mlegall/strum/internal/playlist"
)

const numWorkers = 8

// ArtExtractor extracts cover art for an audio file.
type ArtExtractor interface {
	Extract(path string) (data []byte, mimeType string, err error)
}

// Ingester spools uploads and builds tracks from them.
type Ingester struct {
	spoolDir  string
	extractor ArtExtractor
	log       *logrus.Entry
}

// New creates an ingester spooling into dir, which is created if missing.
func New(dir string, extractor ArtExtractor) (*Ingester, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create spool dir: %w", err)
	}
	return &Ingester{
		spoolDir:  dir,
		extractor: extractor,
		log:       logrus.WithField("component", "ingest"),
	}, nil
}

// SpoolDir returns the directory uploads are written to.
func (in *Ingester) SpoolDir() string {
	return in.spoolDir
}

// Spool writes one uploaded file to the spool directory under a unique
// name and returns its path. Files whose extension is not a supported
// audio format are rejected.
func (in *Ingester) Spool(name string, r io.Reader) (string, error) {
	if !player.IsMusicFile(name) {
		return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(name))
	}

	base := sanitizeName(filepath.Base(name))
	path := filepath.Join(in.spoolDir, uuid.NewString()+"-"+base)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create spool file: %w", err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write spool file: %w", err)
	}

	in.log.WithFields(logrus.Fields{
		"name": name,
		"size": humanize.Bytes(uint64(n)),
	}).Info("spooled upload")
	return path, nil
}

// Upload pairs a display name with the spooled file path.
type Upload struct {
	Name string
	Path string
}

// BuildTracks turns spooled uploads into tracks, extracting cover art in
// parallel. Results keep the input order. An art extraction failure is
// logged and yields a track without artwork, never a missing track.
func (in *Ingester) BuildTracks(uploads []Upload) []playlist.Track {
	if len(uploads) == 0 {
		return nil
	}

	type job struct {
		index  int
		upload Upload
	}
	type result struct {
		index int
		art   *playlist.Artwork
	}

	workCh := make(chan job, len(uploads))
	resultCh := make(chan result, len(uploads))

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Go(func() {
			for j := range workCh {
				resultCh <- result{index: j.index, art: in.extractArt(j.upload.Path)}
			}
		})
	}

	for i, u := range uploads {
		workCh <- job{index: i, upload: u}
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	art := make([]*playlist.Artwork, len(uploads))
	for r := range resultCh {
		art[r.index] = r.art
	}

	tracks := make([]playlist.Track, 0, len(uploads))
	for i, u := range uploads {
		tracks = append(tracks, playlist.NewTrack(displayName(u.Name), u.Path, art[i]))
	}
	return tracks
}

func (in *Ingester) extractArt(path string) *playlist.Artwork {
	if in.extractor == nil {
		return nil
	}
	data, mimeType, err := in.extractor.Extract(path)
	if err != nil {
		in.log.Warn(errmsg.FormatWith(errmsg.OpArtworkExtract, filepath.Base(path), err))
		return nil
	}
	if data == nil {
		return nil
	}
	return &playlist.Artwork{Data: data, MIME: mimeType}
}

// displayName strips the extension from an uploaded file name.
func displayName(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// sanitizeName keeps spool file names shell- and URL-friendly.
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}

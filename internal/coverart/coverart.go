// Package coverart extracts cover images for audio files.
//
// Extraction tries, in order: the format-specific embedded picture (ID3v2
// APIC frames for mp3, FLAC PICTURE blocks for flac), a generic tag probe
// for everything else, and finally a conventionally named image file next
// to the track. Oversized images are downscaled before they are returned.
package coverart

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder for folder art
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"
	"github.com/go-flac/flacpicture"
	goflac "github.com/go-flac/go-flac"
	"github.com/nfnt/resize"
	"github.com/sirupsen/logrus"
)

// DefaultMaxEdge is the largest width or height an extracted image keeps
// before being downscaled.
const DefaultMaxEdge = 600

// Common cover art filenames (case-insensitive)
var coverArtNames = []string{
	"cover",
	"folder",
	"front",
	"album",
	"albumart",
	"artwork",
}

// Supported image extensions
var imageExtensions = []string{".jpg", ".jpeg", ".png"}

// Extractor extracts and downscales cover art.
type Extractor struct {
	maxEdge uint
	log     *logrus.Entry
}

// New creates an extractor. maxEdge 0 selects DefaultMaxEdge.
func New(maxEdge uint) *Extractor {
	if maxEdge == 0 {
		maxEdge = DefaultMaxEdge
	}
	return &Extractor{
		maxEdge: maxEdge,
		log:     logrus.WithField("component", "coverart"),
	}
}

// Extract returns the cover image for the given audio file, or nil data
// when no art could be found. A missing image is not an error; errors are
// reserved for unreadable files.
func (e *Extractor) Extract(path string) (data []byte, mimeType string, err error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		data, mimeType = extractID3v2(path)
	case ".flac":
		data, mimeType = extractFLAC(path)
	}

	if data == nil {
		data, mimeType, err = extractGeneric(path)
		if err != nil {
			return nil, "", err
		}
	}

	if data == nil {
		data, mimeType = e.folderArt(filepath.Dir(path))
	}

	if data == nil {
		return nil, "", nil
	}
	return e.shrink(data, mimeType)
}

// extractID3v2 reads the first APIC frame of an mp3 without decoding audio.
func extractID3v2(path string) ([]byte, string) {
	t, err := id3v2.Open(path, id3v2.Options{Parse: true, ParseFrames: []string{"APIC"}})
	if err != nil {
		return nil, ""
	}
	defer t.Close()

	for _, frame := range t.GetFrames(t.CommonID("Attached picture")) {
		pic, ok := frame.(id3v2.PictureFrame)
		if !ok {
			continue
		}
		if len(pic.Picture) > 0 {
			return pic.Picture, pic.MimeType
		}
	}
	return nil, ""
}

// extractFLAC reads PICTURE metadata blocks, preferring the front cover.
func extractFLAC(path string) ([]byte, string) {
	f, err := goflac.ParseFile(path)
	if err != nil {
		return nil, ""
	}

	var fallback *flacpicture.MetadataBlockPicture
	for _, meta := range f.Meta {
		if meta.Type != goflac.Picture {
			continue
		}
		pic, err := flacpicture.ParseFromMetaDataBlock(*meta)
		if err != nil {
			continue
		}
		if pic.PictureType == flacpicture.PictureTypeFrontCover {
			return pic.ImageData, pic.MIME
		}
		if fallback == nil {
			fallback = pic
		}
	}
	if fallback != nil {
		return fallback.ImageData, fallback.MIME
	}
	return nil, ""
}

// extractGeneric probes any supported container through the tag reader.
func extractGeneric(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		// Untagged files are common; treat them as having no art.
		return nil, "", nil
	}

	pic := m.Picture()
	if pic == nil {
		return nil, "", nil
	}
	return pic.Data, pic.MIMEType, nil
}

// folderArt looks for a conventionally named image file in the directory.
func (e *Extractor) folderArt(dir string) ([]byte, string) {
	path := FindCoverFile(dir)
	if path == "" {
		return nil, ""
	}

	data, err := os.ReadFile(path)
	if err != nil {
		e.log.WithError(err).WithField("path", path).Warn("failed to read folder art")
		return nil, ""
	}

	mimeType := "image/jpeg"
	if strings.ToLower(filepath.Ext(path)) == ".png" {
		mimeType = "image/png"
	}
	return data, mimeType
}

// FindCoverFile looks for a cover art image file in the given directory.
// Returns the full path to the cover art file, or empty string if not found.
func FindCoverFile(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		baseName := strings.ToLower(strings.TrimSuffix(name, ext))

		if !slices.Contains(imageExtensions, ext) {
			continue
		}
		if slices.Contains(coverArtNames, baseName) {
			return filepath.Join(dir, name)
		}
	}

	return ""
}

// shrink downscales the image when either edge exceeds maxEdge, re-encoding
// as JPEG. Images that fit, or that fail to decode, pass through untouched.
func (e *Extractor) shrink(data []byte, mimeType string) ([]byte, string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		e.log.WithError(err).Debug("cover art not decodable, keeping original bytes")
		return data, mimeType, nil
	}

	bounds := img.Bounds()
	if uint(bounds.Dx()) <= e.maxEdge && uint(bounds.Dy()) <= e.maxEdge {
		return data, mimeType, nil
	}

	small := resize.Thumbnail(e.maxEdge, e.maxEdge, img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, small, &jpeg.Options{Quality: 85}); err != nil {
		return data, mimeType, nil
	}
	return buf.Bytes(), "image/jpeg", nil
}

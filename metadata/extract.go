// Package metadata reads what it can from uploaded evidence images. Every field is best
// effort and a missing one is never an error.
package metadata

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/models"
)

// Extract builds the metadata for an uploaded file. modified is the client reported last
// modification time and stands in for the creation time when the image carries none.
func Extract(fileName string, data []byte, modified time.Time) models.ImageMetadata {
	md := models.ImageMetadata{
		FileName: fileName,
		FileSize: int64(len(data)),
		Created:  modified.UTC(),
		Modified: modified.UTC(),
	}
	if len(data) == 0 {
		return md
	}

	mime := mimetype.Detect(data)
	md.MimeType = mime.String()
	if i := strings.Index(md.MimeType, ";"); i >= 0 {
		md.MimeType = md.MimeType[:i]
	}

	if cfg, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		md.Format = format
		md.Dimensions = &models.Dimensions{Width: cfg.Width, Height: cfg.Height}
	} else if ext := strings.TrimPrefix(mime.Extension(), "."); ext != "" {
		md.Format = ext
	}

	if mime.Is("image/jpeg") || mime.Is("image/tiff") {
		readExif(data, &md)
	}
	return md
}

func readExif(data []byte, md *models.ImageMetadata) {
	// partial decodes return a usable value alongside the error
	x, _ := exif.Decode(bytes.NewReader(data))
	if x == nil {
		return
	}

	if dt, err := x.DateTime(); err == nil {
		if tz, _ := x.TimeZone(); tz == nil {
			// zone-less EXIF times are wall clock; Ghana keeps GMT all year
			dt = time.Date(dt.Year(), dt.Month(), dt.Day(), dt.Hour(), dt.Minute(), dt.Second(), 0, time.UTC)
		}
		captured := dt.UTC()
		md.CapturedAt = &captured
		md.Created = captured
	}

	if lat, lng, err := x.LatLong(); err == nil && !(lat == 0 && lng == 0) {
		md.GPS = &models.GPS{Latitude: lat, Longitude: lng}
	}

	cam := models.Camera{Make: tagString(x, exif.Make), Model: tagString(x, exif.Model)}
	if cam.Make != "" || cam.Model != "" {
		md.Camera = &cam
	}
}

func tagString(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}

// EvidenceType classifies an upload by its MIME type
func EvidenceType(mime string) models.EvidenceType {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return models.EvidencePhoto
	case strings.HasPrefix(mime, "video/"):
		return models.EvidenceVideo
	case strings.HasPrefix(mime, "audio/"):
		return models.EvidenceAudio
	}
	return models.EvidenceDocument
}

package imagemeta

import (
	"bytes"
	"fmt"
	"time"

	"github.com/disintegration/imaging"
	"github.com/kolesa-team/go-webp/decoder"
	"github.com/kolesa-team/go-webp/webp"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
)

func init() {
	// Register Nikon and Canon maker notes
	exif.RegisterParsers(mknote.All...)
}

// Meta holds the metadata recorded alongside a generation's original image.
type Meta struct {
	Width   int
	Height  int
	TakenAt *time.Time
}

// Extract decodes the image to determine its pixel dimensions and, for JPEGs,
// reads the EXIF capture time when present. EXIF absence is not an error.
func Extract(data []byte, mimeType string) (Meta, error) {
	var meta Meta

	switch mimeType {
	case "image/webp":
		img, err := webp.Decode(bytes.NewReader(data), &decoder.Options{})
		if err != nil {
			return meta, fmt.Errorf("decode webp: %w", err)
		}
		b := img.Bounds()
		meta.Width, meta.Height = b.Dx(), b.Dy()
	default:
		img, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			return meta, fmt.Errorf("decode image: %w", err)
		}
		b := img.Bounds()
		meta.Width, meta.Height = b.Dx(), b.Dy()
	}

	// Some images don't have EXIF data, this is not an error
	if x, err := exif.Decode(bytes.NewReader(data)); err == nil {
		if dt, err := x.DateTime(); err == nil {
			meta.TakenAt = &dt
		}
	}

	return meta, nil
}

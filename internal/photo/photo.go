// Package photo loads and prepares the bike photograph being annotated.
package photo

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// MaxDimension caps the longest photo edge. Phone cameras produce images
// far larger than any screen; oversized photos are downscaled on load so
// the render pass blits a sensibly sized raster.
const MaxDimension = 4096

// Photo is a loaded, draw-ready photograph.
type Photo struct {
	Path   string
	Image  *image.NRGBA
	Width  int
	Height int

	// Downscaled reports whether the source exceeded MaxDimension and was
	// resized on load. Annotation coordinates are stored in the loaded
	// image's pixel space, so a reloaded photo must be downscaled the same
	// way to keep saved points valid.
	Downscaled bool
}

// Load reads a photograph from disk. JPEG EXIF orientation is applied, so
// portrait phone shots come out upright, and the result is converted to
// NRGBA for direct blitting.
func Load(path string) (*Photo, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load photo %s: %w", filepath.Base(path), err)
	}
	return prepare(path, img), nil
}

// FromImage wraps an already decoded image, applying the same size cap as
// Load. Used by tests and by callers that fetch photo bytes remotely.
func FromImage(path string, img image.Image) *Photo {
	return prepare(path, img)
}

func prepare(path string, img image.Image) *Photo {
	b := img.Bounds()
	downscaled := false
	if b.Dx() > MaxDimension || b.Dy() > MaxDimension {
		img = imaging.Fit(img, MaxDimension, MaxDimension, imaging.Lanczos)
		b = img.Bounds()
		downscaled = true
	}

	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		nrgba = imaging.Clone(img)
	}

	return &Photo{
		Path:       path,
		Image:      nrgba,
		Width:      b.Dx(),
		Height:     b.Dy(),
		Downscaled: downscaled,
	}
}

// Supported reports whether the file extension is a format Load can decode.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".tif", ".tiff", ".bmp":
		return true
	}
	return false
}

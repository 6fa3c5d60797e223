package photo

import (
	"image"
	"testing"
)

func TestFromImageKeepsSmallPhotos(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 800, 600))
	p := FromImage("bike.jpg", img)

	if p.Width != 800 || p.Height != 600 {
		t.Errorf("dimensions: %dx%d", p.Width, p.Height)
	}
	if p.Downscaled {
		t.Error("small photo reported as downscaled")
	}
	if p.Image == nil {
		t.Fatal("no NRGBA raster")
	}
}

func TestFromImageCapsOversizedPhotos(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, MaxDimension*2, MaxDimension))
	p := FromImage("bike.jpg", img)

	if !p.Downscaled {
		t.Fatal("oversized photo not downscaled")
	}
	if p.Width != MaxDimension {
		t.Errorf("width after fit: %d, want %d", p.Width, MaxDimension)
	}
	if p.Height != MaxDimension/2 {
		t.Errorf("height after fit: %d, want %d", p.Height, MaxDimension/2)
	}
}

func TestSupported(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"frame.jpg", true},
		{"frame.JPEG", true},
		{"frame.png", true},
		{"frame.tiff", true},
		{"frame.webp", false},
		{"frame", false},
	}
	for _, tt := range tests {
		if got := Supported(tt.path); got != tt.want {
			t.Errorf("Supported(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

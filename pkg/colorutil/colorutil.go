// Package colorutil provides shared color utilities for the linkage tracer.
package colorutil

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Common overlay colors used throughout the application.
var (
	Black   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Cyan    = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	Green   = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Yellow  = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	Orange  = color.RGBA{R: 255, G: 165, B: 0, A: 255}
	Red     = color.RGBA{R: 220, G: 40, B: 40, A: 255}
)

// Point rendering states.
var (
	PointPlain    = color.RGBA{R: 235, G: 235, B: 235, A: 255}
	PointSelected = Yellow
	PointInChain  = Cyan
)

// TrailRamp returns n colors blending from a cool start to a warm end in
// Lab space, used to color historical point-trail samples oldest to newest.
func TrailRamp(n int) []color.RGBA {
	if n <= 0 {
		return nil
	}
	start, _ := colorful.Hex("#3a7bd5")
	end, _ := colorful.Hex("#f05d5e")

	out := make([]color.RGBA, n)
	if n == 1 {
		out[0] = toRGBA(end)
		return out
	}
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		out[i] = toRGBA(start.BlendLab(end, t).Clamped())
	}
	return out
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

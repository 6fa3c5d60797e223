// Package view owns the affine image-to-screen transform: zoom, pan,
// clamping, and the re-center animation used when zoom-out hits the floor.
package view

import (
	"math"
	"time"

	"linkage-tracer/pkg/geometry"
)

// MaxScale is the hard zoom-in ceiling.
const MaxScale = 4.0

const centerAnimDuration = 220 * time.Millisecond

// View maps image-intrinsic pixel coordinates to screen coordinates via
// screen = image*Scale + (Tx,Ty). MinScale is the fit-to-width scale and a
// hard floor for zoom-out. All operations are no-ops until both the image
// and viewport dimensions are known.
type View struct {
	Scale    float64
	Tx, Ty   float64
	MinScale float64

	imgW, imgH float64
	vpW, vpH   float64

	anim panAnim
}

type panAnim struct {
	active             bool
	start              time.Time
	fromTx, fromTy     float64
	targetTx, targetTy float64
}

// New returns a view with no image or viewport attached.
func New() *View {
	return &View{Scale: 1}
}

// SetImageSize sets the intrinsic pixel dimensions of the annotated photo.
func (v *View) SetImageSize(w, h float64) {
	v.imgW, v.imgH = w, h
}

// SetViewport sets the on-screen viewport dimensions.
func (v *View) SetViewport(w, h float64) {
	v.vpW, v.vpH = w, h
}

// ImageSize returns the intrinsic image dimensions.
func (v *View) ImageSize() (w, h float64) {
	return v.imgW, v.imgH
}

// Viewport returns the viewport dimensions.
func (v *View) Viewport() (w, h float64) {
	return v.vpW, v.vpH
}

func (v *View) ready() bool {
	return v.imgW > 0 && v.imgH > 0 && v.vpW > 0 && v.vpH > 0
}

// ImageToScreen converts image coordinates to screen coordinates.
func (v *View) ImageToScreen(x, y float64) (sx, sy float64) {
	return x*v.Scale + v.Tx, y*v.Scale + v.Ty
}

// ScreenToImage converts screen coordinates to image coordinates.
func (v *View) ScreenToImage(sx, sy float64) (x, y float64) {
	if v.Scale == 0 {
		return 0, 0
	}
	return (sx - v.Tx) / v.Scale, (sy - v.Ty) / v.Scale
}

// ScreenPoint converts an image-space point to screen space.
func (v *View) ScreenPoint(p geometry.Point2D) geometry.Point2D {
	sx, sy := v.ImageToScreen(p.X, p.Y)
	return geometry.Point2D{X: sx, Y: sy}
}

// Reset computes the fit-to-width scale, centers the image vertically, and
// records that scale as the zoom-out floor.
func (v *View) Reset() {
	if !v.ready() {
		return
	}
	v.anim.active = false
	v.Scale = v.vpW / v.imgW
	v.MinScale = v.Scale
	v.Tx = 0
	v.Ty = (v.vpH - v.imgH*v.Scale) / 2
	v.ClampPan()
}

// ZoomAt applies the requested scale clamped to [MinScale, MaxScale],
// keeping the image point under the given screen position fixed. A request
// below the floor is refused and reported via floorHit so the caller can
// start the re-center animation instead.
func (v *View) ZoomAt(sx, sy, requested float64) (floorHit bool) {
	if !v.ready() {
		return false
	}
	floorHit = requested < v.MinScale
	scale := math.Min(math.Max(requested, v.MinScale), MaxScale)

	ix, iy := v.ScreenToImage(sx, sy)
	v.Scale = scale
	v.Tx = sx - ix*scale
	v.Ty = sy - iy*scale
	v.ClampPan()
	return floorHit
}

// PanBy shifts the pan offsets and clamps.
func (v *View) PanBy(dx, dy float64) {
	if !v.ready() {
		return
	}
	v.Tx += dx
	v.Ty += dy
	v.ClampPan()
}

// ClampPan enforces the pan limits: an axis whose scaled image extent fits
// inside the viewport is locked (horizontal to 0, vertical centered);
// otherwise panning may not expose an empty margin.
func (v *View) ClampPan() {
	if !v.ready() {
		return
	}
	scaledW := v.imgW * v.Scale
	scaledH := v.imgH * v.Scale

	if scaledW <= v.vpW {
		v.Tx = 0
	} else {
		v.Tx = math.Min(math.Max(v.Tx, v.vpW-scaledW), 0)
	}
	if scaledH <= v.vpH {
		v.Ty = (v.vpH - scaledH) / 2
	} else {
		v.Ty = math.Min(math.Max(v.Ty, v.vpH-scaledH), 0)
	}
}

// StartCenterAnimation begins the eased pan back to a centered position at
// the current scale.
func (v *View) StartCenterAnimation(now time.Time) {
	if !v.ready() {
		return
	}
	tx, ty := v.centeredPan()
	if tx == v.Tx && ty == v.Ty {
		return
	}
	v.anim = panAnim{
		active:   true,
		start:    now,
		fromTx:   v.Tx,
		fromTy:   v.Ty,
		targetTx: tx,
		targetTy: ty,
	}
}

// StepAnimation advances the re-center animation. It returns true while the
// animation is still running.
func (v *View) StepAnimation(now time.Time) bool {
	if !v.anim.active {
		return false
	}
	t := float64(now.Sub(v.anim.start)) / float64(centerAnimDuration)
	if t >= 1 {
		v.Tx = v.anim.targetTx
		v.Ty = v.anim.targetTy
		v.anim.active = false
		return false
	}
	if t < 0 {
		t = 0
	}
	e := easeOutCubic(t)
	v.Tx = v.anim.fromTx + (v.anim.targetTx-v.anim.fromTx)*e
	v.Ty = v.anim.fromTy + (v.anim.targetTy-v.anim.fromTy)*e
	return true
}

// Animating reports whether the re-center animation is running.
func (v *View) Animating() bool {
	return v.anim.active
}

// centeredPan returns the pan offsets that center the image at the current
// scale, after clamping.
func (v *View) centeredPan() (tx, ty float64) {
	saveTx, saveTy := v.Tx, v.Ty
	v.Tx = (v.vpW - v.imgW*v.Scale) / 2
	v.Ty = (v.vpH - v.imgH*v.Scale) / 2
	v.ClampPan()
	tx, ty = v.Tx, v.Ty
	v.Tx, v.Ty = saveTx, saveTy
	return tx, ty
}

func easeOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

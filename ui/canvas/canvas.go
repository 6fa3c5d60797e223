// Package canvas renders the annotated photo and feeds input to the
// interaction machine.
package canvas

import (
	"image"
	"time"

	"linkage-tracer/internal/interact"
	"linkage-tracer/internal/photo"
	"linkage-tracer/internal/session"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

const animFrameDelay = 16 * time.Millisecond

// Canvas displays the photo with all annotation overlays. All pointer
// events are translated into machine events; the widget itself holds no
// interaction state.
type Canvas struct {
	widget.BaseWidget

	sess    *session.Session
	machine *interact.Machine
	photo   *photo.Photo

	raster  *fynecanvas.Raster
	pressed bool
}

// New creates the canvas for a session. The machine's invalidate hook is
// expected to call Invalidate on the returned widget.
func New(sess *session.Session, machine *interact.Machine) *Canvas {
	c := &Canvas{
		sess:    sess,
		machine: machine,
	}
	c.raster = fynecanvas.NewRaster(c.draw)
	c.raster.ScaleMode = fynecanvas.ImageScalePixels
	c.ExtendBaseWidget(c)
	return c
}

// SetPhoto installs the photograph and resets the view to fit it.
func (c *Canvas) SetPhoto(p *photo.Photo) {
	c.photo = p
	if p != nil {
		c.sess.View.SetImageSize(float64(p.Width), float64(p.Height))
		c.sess.View.Reset()
	}
	c.Refresh()
}

// Invalidate schedules a repaint.
func (c *Canvas) Invalidate() {
	c.Refresh()
}

func (c *Canvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.raster)
}

// Resize keeps the view's viewport in sync with the widget. The first
// nonzero size resets the view so the photo starts fitted.
func (c *Canvas) Resize(size fyne.Size) {
	vw, vh := c.sess.View.Viewport()
	first := vw == 0 || vh == 0
	c.sess.View.SetViewport(float64(size.Width), float64(size.Height))
	if first {
		c.sess.View.Reset()
	} else {
		c.sess.View.ClampPan()
	}
	c.BaseWidget.Resize(size)
}

// MouseDown implements desktop.Mouseable.
func (c *Canvas) MouseDown(ev *desktop.MouseEvent) {
	c.pressed = true
	c.machine.PointerDown(0, interact.Mouse, float64(ev.Position.X), float64(ev.Position.Y))
}

// MouseUp implements desktop.Mouseable.
func (c *Canvas) MouseUp(ev *desktop.MouseEvent) {
	c.pressed = false
	c.machine.PointerUp(0, interact.Mouse, float64(ev.Position.X), float64(ev.Position.Y))
}

// MouseMoved implements desktop.Hoverable. Fyne reports hover motion both
// pressed and unpressed, which is exactly what the machine wants.
func (c *Canvas) MouseMoved(ev *desktop.MouseEvent) {
	c.machine.PointerMove(0, interact.Mouse, float64(ev.Position.X), float64(ev.Position.Y))
}

// MouseIn implements desktop.Hoverable.
func (c *Canvas) MouseIn(ev *desktop.MouseEvent) {}

// MouseOut implements desktop.Hoverable.
func (c *Canvas) MouseOut() {
	if c.pressed {
		c.pressed = false
		c.machine.PointerCancel(0)
	}
}

// Scrolled implements fyne.Scrollable: the wheel zooms at the cursor.
func (c *Canvas) Scrolled(ev *fyne.ScrollEvent) {
	c.machine.Wheel(float64(ev.Position.X), float64(ev.Position.Y), float64(-ev.Scrolled.DY))
}

// TypedKey forwards arrow and escape keys. The main window routes keys
// here only while no text entry has focus.
func (c *Canvas) TypedKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyUp:
		c.machine.Key("Up")
	case fyne.KeyDown:
		c.machine.Key("Down")
	case fyne.KeyLeft:
		c.machine.Key("Left")
	case fyne.KeyRight:
		c.machine.Key("Right")
	case fyne.KeyEscape:
		c.machine.Key("Escape")
	}
}

// draw is the raster drawing function.
func (c *Canvas) draw(w, h int) image.Image {
	v := c.sess.View
	if vw, vh := v.Viewport(); vw != float64(w) || vh != float64(h) {
		v.SetViewport(float64(w), float64(h))
		v.ClampPan()
	}

	if v.StepAnimation(time.Now()) {
		// Keep stepping until the re-center lands.
		go func() {
			time.Sleep(animFrameDelay)
			c.raster.Refresh()
		}()
	}

	output := image.NewRGBA(image.Rect(0, 0, w, h))
	c.render(output)
	return output
}

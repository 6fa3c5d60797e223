package canvas

import (
	"image"
	"image/color"

	"linkage-tracer/internal/hittest"
	"linkage-tracer/internal/measure"
	"linkage-tracer/internal/perspective"
	"linkage-tracer/pkg/colorutil"
	"linkage-tracer/pkg/geometry"

	xdraw "golang.org/x/image/draw"
)

const (
	pointRadiusPx  = 6
	barThickness   = 2
	trailThickness = 2
	dashLenPx      = 8
	labelScale     = 2
)

var (
	backgroundColor = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	donutFill       = color.RGBA{R: 255, G: 255, B: 255, A: 70}
	barColor        = colorutil.Green
	barSelected     = colorutil.Yellow
	previewColor    = colorutil.Cyan
	wheelColor      = colorutil.Magenta
	arrowColor      = colorutil.White
	crosshairColor  = colorutil.Cyan
)

// render draws one full frame: photo, bars, trails, shock overlay, points,
// wheel circles, measurement arrows, and the selection controls, back to
// front.
func (c *Canvas) render(output *image.RGBA) {
	fillBackground(output)

	c.renderPhoto(output)
	c.renderBars(output)
	c.renderTrails(output)
	c.renderShock(output)
	c.renderWheels(output)
	c.renderPoints(output)
	c.renderArrows(output)
	c.renderNudgeControls(output)
	c.renderBodySelection(output)
	c.renderCrosshair(output)
}

func fillBackground(output *image.RGBA) {
	b := output.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			output.SetRGBA(x, y, backgroundColor)
		}
	}
}

// renderPhoto blits the photograph through the view transform.
func (c *Canvas) renderPhoto(output *image.RGBA) {
	if c.photo == nil || c.photo.Image == nil {
		return
	}
	v := c.sess.View
	x0, y0 := v.ImageToScreen(0, 0)
	x1, y1 := v.ImageToScreen(float64(c.photo.Width), float64(c.photo.Height))
	dst := image.Rect(int(x0), int(y0), int(x1), int(y1))

	scaler := xdraw.Interpolator(xdraw.ApproxBiLinear)
	if v.Scale >= 1 {
		scaler = xdraw.NearestNeighbor
	}
	scaler.Scale(output, dst, c.photo.Image, c.photo.Image.Bounds(), xdraw.Src, nil)
}

func (c *Canvas) renderBars(output *image.RGBA) {
	sess := c.sess
	for _, bar := range sess.Graph.Bars {
		pa := sess.Graph.PointByID(bar.A)
		pb := sess.Graph.PointByID(bar.B)
		if pa == nil || pb == nil {
			continue
		}
		sa := sess.View.ScreenPoint(pa.Pos())
		sb := sess.View.ScreenPoint(pb.Pos())

		if bar.Preview {
			drawDashedLine(output, sa, sb, previewColor, barThickness, dashLenPx)
			continue
		}
		col := barColor
		if bar.BodyID == sess.SelectedBody {
			col = barSelected
		}
		drawLine(output, int(sa.X), int(sa.Y), int(sb.X), int(sb.Y), col, barThickness)
	}
}

// renderTrails draws historical point paths, oldest samples cool, newest
// warm.
func (c *Canvas) renderTrails(output *image.RGBA) {
	sess := c.sess
	for _, trail := range sess.Graph.Trails {
		if len(trail.Samples) < 2 {
			continue
		}
		ramp := colorutil.TrailRamp(len(trail.Samples) - 1)
		for i := 0; i < len(trail.Samples)-1; i++ {
			a := sess.View.ScreenPoint(trail.Samples[i])
			b := sess.View.ScreenPoint(trail.Samples[i+1])
			drawLine(output, int(a.X), int(a.Y), int(b.X), int(b.Y), ramp[i], trailThickness)
		}
	}
}

func (c *Canvas) renderShock(output *image.RGBA) {
	sess := c.sess
	overlay := measure.ShockLayout(sess.Graph, sess.Measures.ScaleMMPerPx)
	if !overlay.Visible {
		return
	}
	a := sess.View.ScreenPoint(overlay.Guide[0])
	b := sess.View.ScreenPoint(overlay.Guide[1])
	drawDashedLine(output, a, b, colorutil.Orange, 1, dashLenPx)

	m := sess.View.ScreenPoint(overlay.Marker)
	drawCircle(output, m.X, m.Y, 5, colorutil.Orange, true)
}

// renderWheels fits and draws a circle through each completed rim capture,
// plus markers on the captured points.
func (c *Canvas) renderWheels(output *image.RGBA) {
	sess := c.sess
	for _, typ := range []string{perspective.TypeRearRim, perspective.TypeFrontRim} {
		pts := sess.Capture.RimPoints(typ)
		for _, p := range pts {
			s := sess.View.ScreenPoint(p)
			drawCircle(output, s.X, s.Y, 4, wheelColor, true)
		}
		if center, radius, ok := perspective.FitCircle(pts); ok {
			sc := sess.View.ScreenPoint(center)
			drawCircle(output, sc.X, sc.Y, radius*sess.View.Scale, wheelColor, false)
		}
	}
}

func (c *Canvas) renderPoints(output *image.RGBA) {
	sess := c.sess
	for _, p := range sess.Graph.Points {
		s := sess.View.ScreenPoint(p.Pos())

		col := colorutil.PointPlain
		switch {
		case sess.Graph.InChain(p.ID):
			col = colorutil.PointInChain
		case p.ID == sess.SelectedPoint:
			col = colorutil.PointSelected
		}
		drawCircle(output, s.X, s.Y, pointRadiusPx, col, true)
		drawCircle(output, s.X, s.Y, pointRadiusPx, colorutil.Black, false)
	}
}

// renderArrows draws the measurement overlays with their current values.
func (c *Canvas) renderArrows(output *image.RGBA) {
	sess := c.sess
	for i := range sess.Measures.Defs {
		def := &sess.Measures.Defs[i]
		arrow := measure.ArrowLayout(def, sess.Graph, sess.View)
		if !arrow.Visible {
			continue
		}

		drawLine(output, int(arrow.A.X), int(arrow.A.Y), int(arrow.B.X), int(arrow.B.Y), arrowColor, 1)
		for _, head := range arrow.Heads {
			fillTriangle(output, head, arrowColor)
		}
		for _, tick := range arrow.Ticks {
			drawDashedLine(output, tick[0], tick[1], arrowColor, 1, 4)
		}

		label := def.Label
		if mm, ok := sess.Measures.Values[def.ID]; ok {
			label = measure.FormatValue(mm)
		}
		drawLabelBoxed(output, label, int(arrow.Label.X), int(arrow.Label.Y))
	}
}

// drawLabelBoxed draws text over a dark backing so it stays readable on
// the photo.
func drawLabelBoxed(output *image.RGBA, label string, cx, cy int) {
	w := LabelWidth(label, labelScale)
	h := 5 * labelScale
	pad := 3
	for y := cy - h/2 - pad; y <= cy+h/2+pad; y++ {
		for x := cx - w/2 - pad; x <= cx+w/2+pad; x++ {
			blendPixel(output, x, y, color.RGBA{R: 0, G: 0, B: 0, A: 190})
		}
	}
	DrawLabel(output, label, cx, cy, colorutil.White, labelScale)
}

// renderNudgeControls draws the donut and delete icon around the selected
// point.
func (c *Canvas) renderNudgeControls(output *image.RGBA) {
	sess := c.sess
	p := sess.Graph.PointByID(sess.SelectedPoint)
	if p == nil {
		return
	}
	s := sess.View.ScreenPoint(p.Pos())
	inner, outer := hittest.DonutRadii()

	drawRing(output, s.X, s.Y, inner, outer, donutFill)

	mid := (inner + outer) / 2
	arrows := [4]struct {
		dx, dy float64
		label  string
	}{
		{0, -1, "+"},
		{1, 0, "+"},
		{0, 1, "+"},
		{-1, 0, "+"},
	}
	for _, a := range arrows {
		DrawLabel(output, a.label, int(s.X+a.dx*mid), int(s.Y+a.dy*mid), colorutil.White, 2)
	}

	dx, dy := hittest.DeleteIconCenter(p, sess.View)
	drawCircle(output, dx, dy, hittest.DeleteIconRadius(), colorutil.Red, true)
	DrawLabel(output, "X", int(dx), int(dy), colorutil.White, 2)
}

// renderBodySelection outlines the selected body's bounds and draws its
// delete pill.
func (c *Canvas) renderBodySelection(output *image.RGBA) {
	sess := c.sess
	if sess.SelectedBody == "" {
		return
	}
	bounds, ok := sess.Graph.BodyBounds(sess.SelectedBody)
	if !ok {
		return
	}
	v := sess.View
	tl := v.ScreenPoint(geometry.Point2D{X: bounds.X, Y: bounds.Y})
	br := v.ScreenPoint(geometry.Point2D{X: bounds.X + bounds.Width, Y: bounds.Y + bounds.Height})

	corners := [4]geometry.Point2D{
		tl,
		{X: br.X, Y: tl.Y},
		br,
		{X: tl.X, Y: br.Y},
	}
	for i := 0; i < 4; i++ {
		drawDashedLine(output, corners[i], corners[(i+1)%4], barSelected, 1, dashLenPx)
	}

	if px, py, ok := hittest.BodyDeletePillCenter(sess.Graph, v, sess.SelectedBody); ok {
		drawCircle(output, px, py, hittest.BodyDeletePillRadius(), colorutil.Red, true)
		DrawLabel(output, "X", int(px), int(py), colorutil.White, 2)
	}
}

// renderCrosshair draws the placement preview lines for mouse input.
func (c *Canvas) renderCrosshair(output *image.RGBA) {
	x, y, show := c.machine.Crosshair()
	if !show {
		return
	}
	b := output.Bounds()
	drawLine(output, b.Min.X, int(y), b.Max.X-1, int(y), crosshairColor, 1)
	drawLine(output, int(x), b.Min.Y, int(x), b.Max.Y-1, crosshairColor, 1)
}

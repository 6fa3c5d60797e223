package measure

import (
	"math"

	"linkage-tracer/internal/graph"
	"linkage-tracer/internal/view"
	"linkage-tracer/pkg/geometry"
)

const (
	shaftOffsetPx = 46 // shaft distance from the outermost anchor
	headLenPx     = 12
	headWidthPx   = 7
	tickOverrunPx = 6
)

// Arrow is the screen-space layout of one measurement overlay: a shaft with
// two triangular heads, optional perpendicular ticks at the anchor ends,
// and an upright label anchor on the shaft. Recomputed every render pass.
type Arrow struct {
	Visible bool
	A, B    geometry.Point2D      // shaft endpoints
	Heads   [2][3]geometry.Point2D
	Ticks   [][2]geometry.Point2D
	Label   geometry.Point2D // shaft midpoint; text is drawn counter-rotated upright
}

// ArrowLayout computes the overlay for one measurement from the current
// anchors and view. A hidden Arrow is returned when an anchor is missing.
func ArrowLayout(def *Definition, g *graph.Graph, v *view.View) Arrow {
	pa := g.PointByType(def.AnchorA)
	pb := g.PointByType(def.AnchorB)
	if pa == nil || pb == nil {
		return Arrow{}
	}
	sa := v.ScreenPoint(pa.Pos())
	sb := v.ScreenPoint(pb.Pos())

	var a, b geometry.Point2D
	var ticks [][2]geometry.Point2D

	switch def.Orientation {
	case Horizontal:
		y := math.Max(sa.Y, sb.Y) + shaftOffsetPx
		a = geometry.Point2D{X: sa.X, Y: y}
		b = geometry.Point2D{X: sb.X, Y: y}
		if def.TickA {
			ticks = append(ticks, [2]geometry.Point2D{sa, {X: sa.X, Y: y + tickOverrunPx}})
		}
		if def.TickB {
			ticks = append(ticks, [2]geometry.Point2D{sb, {X: sb.X, Y: y + tickOverrunPx}})
		}
	case Vertical:
		x := math.Max(sa.X, sb.X) + shaftOffsetPx
		a = geometry.Point2D{X: x, Y: sa.Y}
		b = geometry.Point2D{X: x, Y: sb.Y}
		if def.TickA {
			ticks = append(ticks, [2]geometry.Point2D{sa, {X: x + tickOverrunPx, Y: sa.Y}})
		}
		if def.TickB {
			ticks = append(ticks, [2]geometry.Point2D{sb, {X: x + tickOverrunPx, Y: sb.Y}})
		}
	default:
		a, b = sa, sb
	}

	if a.Distance(b) == 0 {
		return Arrow{}
	}

	return Arrow{
		Visible: true,
		A:       a,
		B:       b,
		Heads:   [2][3]geometry.Point2D{arrowHead(b, a), arrowHead(a, b)},
		Ticks:   ticks,
		Label:   a.Lerp(b, 0.5),
	}
}

// arrowHead builds the triangle at tip pointing away from base.
func arrowHead(base, tip geometry.Point2D) [3]geometry.Point2D {
	d := tip.Sub(base)
	length := math.Hypot(d.X, d.Y)
	ux, uy := d.X/length, d.Y/length
	// Perpendicular unit vector.
	px, py := -uy, ux

	back := geometry.Point2D{X: tip.X - ux*headLenPx, Y: tip.Y - uy*headLenPx}
	return [3]geometry.Point2D{
		tip,
		{X: back.X + px*headWidthPx, Y: back.Y + py*headWidthPx},
		{X: back.X - px*headWidthPx, Y: back.Y - py*headWidthPx},
	}
}

// ShockOverlay is the derived stroke geometry for the shock body: a guide
// line along the shock axis and a marker at the bottom-out position.
type ShockOverlay struct {
	Visible    bool
	Guide      [2]geometry.Point2D // image space, eye to eye
	Marker     geometry.Point2D    // image space
	LabelImage geometry.Point2D    // midpoint, for the stroke input pill
}

// ShockLayout derives the stroke overlay from the shock body's end points.
// It requires a calibration scale and a stroke value; anything missing
// hides the overlay.
func ShockLayout(g *graph.Graph, scaleMMPerPx float64) ShockOverlay {
	body := g.ShockBody()
	if body == nil || scaleMMPerPx <= 0 || body.Stroke == nil {
		return ShockOverlay{}
	}
	if len(body.PointIDs) < 2 {
		return ShockOverlay{}
	}
	a := g.PointByID(body.PointIDs[0])
	b := g.PointByID(body.PointIDs[len(body.PointIDs)-1])
	if a == nil || b == nil {
		return ShockOverlay{}
	}

	eyeToEyePx := a.Pos().Distance(b.Pos())
	if eyeToEyePx == 0 {
		return ShockOverlay{}
	}
	eyeToEyeMM := eyeToEyePx * scaleMMPerPx
	stroke := *body.Stroke
	if stroke <= 0 || stroke >= eyeToEyeMM {
		return ShockOverlay{}
	}

	// Marker sits where the shock eye ends up at bottom-out.
	t := (eyeToEyeMM - stroke) / eyeToEyeMM
	return ShockOverlay{
		Visible:    true,
		Guide:      [2]geometry.Point2D{a.Pos(), b.Pos()},
		Marker:     a.Pos().Lerp(b.Pos(), t),
		LabelImage: a.Pos().Lerp(b.Pos(), 0.5),
	}
}

// Package hittest resolves screen positions to points, bodies, and the
// radial nudge control. Tests run in image space with screen-space
// tolerances divided by the current zoom, so targets keep a constant visual
// size at any zoom level.
package hittest

import (
	"math"

	"linkage-tracer/internal/graph"
	"linkage-tracer/internal/view"
	"linkage-tracer/pkg/geometry"
)

const (
	pointRadiusPx = 10
	bodyRadiusPx  = 18

	donutInnerPx  = 32
	donutOuterPx  = 70
	deleteDistPx  = 92
	deleteIconPx  = 14
	deleteAngle   = -math.Pi / 4 // upper right of the donut

	bodyPillOffsetPx = 16
	bodyPillRadiusPx = 14
)

// NudgeHit identifies a hit on the nudge/delete control of the selected point.
type NudgeHit int

const (
	NudgeNone NudgeHit = iota
	NudgeUp
	NudgeRight
	NudgeDown
	NudgeLeft
	NudgeDelete
)

// NearestPointID returns the id of a point within the hit radius of the
// screen position, or "". The scan keeps the last point within radius, not
// the nearest, matching the behavior annotations were produced with.
func NearestPointID(g *graph.Graph, v *view.View, sx, sy float64) string {
	if v.Scale <= 0 {
		return ""
	}
	ix, iy := v.ScreenToImage(sx, sy)
	radius := pointRadiusPx / v.Scale

	id := ""
	for _, p := range g.Points {
		if math.Hypot(p.X-ix, p.Y-iy) <= radius {
			id = p.ID
		}
	}
	return id
}

// BodyAt returns the id of the closest body whose segment chain passes
// within the hit tolerance of the screen position, or "". The closing
// segment of a closed body participates; zero-length segments degrade to
// point tests inside DistToSegment. Preview chain segments are not
// selectable.
func BodyAt(g *graph.Graph, v *view.View, sx, sy float64) string {
	if v.Scale <= 0 {
		return ""
	}
	ix, iy := v.ScreenToImage(sx, sy)
	cursor := geometry.Point2D{X: ix, Y: iy}
	tolerance := bodyRadiusPx / v.Scale

	bestID := ""
	best := math.Inf(1)
	for _, bar := range g.Bars {
		if bar.Preview {
			continue
		}
		a := g.PointByID(bar.A)
		b := g.PointByID(bar.B)
		if a == nil || b == nil {
			continue
		}
		d := geometry.DistToSegment(cursor, a.Pos(), b.Pos())
		if d <= tolerance && d < best {
			best = d
			bestID = bar.BodyID
		}
	}
	return bestID
}

// NudgeControlAt tests the screen position against the nudge donut and the
// delete icon of the given selected point. The donut is an annulus in
// screen space quartered into up/right/down/left sectors; the delete icon
// is a separate circle offset radially beyond the donut.
func NudgeControlAt(p *graph.Point, v *view.View, sx, sy float64) NudgeHit {
	if p == nil {
		return NudgeNone
	}
	cx, cy := v.ImageToScreen(p.X, p.Y)
	dx := sx - cx
	dy := sy - cy

	// Delete icon first: it sits outside the donut.
	ix, iy := DeleteIconCenter(p, v)
	if math.Hypot(sx-ix, sy-iy) <= deleteIconPx {
		return NudgeDelete
	}

	dist := math.Hypot(dx, dy)
	if dist < donutInnerPx || dist > donutOuterPx {
		return NudgeNone
	}

	angle := math.Atan2(dy, dx)
	switch {
	case angle >= -3*math.Pi/4 && angle < -math.Pi/4:
		return NudgeUp
	case angle >= -math.Pi/4 && angle < math.Pi/4:
		return NudgeRight
	case angle >= math.Pi/4 && angle < 3*math.Pi/4:
		return NudgeDown
	default:
		return NudgeLeft
	}
}

// BodyDeletePillCenter returns the screen position of the delete pill
// attached to the selected body's bounding box (above its top-right
// corner). ok is false when the body has no resolvable points.
func BodyDeletePillCenter(g *graph.Graph, v *view.View, bodyID string) (x, y float64, ok bool) {
	bounds, ok := g.BodyBounds(bodyID)
	if !ok {
		return 0, 0, false
	}
	sx, sy := v.ImageToScreen(bounds.X+bounds.Width, bounds.Y)
	return sx + bodyPillOffsetPx, sy - bodyPillOffsetPx, true
}

// BodyDeletePillAt tests the screen position against the selected body's
// delete pill. It participates in hit-testing only when no point was hit.
func BodyDeletePillAt(g *graph.Graph, v *view.View, bodyID string, sx, sy float64) bool {
	x, y, ok := BodyDeletePillCenter(g, v, bodyID)
	if !ok {
		return false
	}
	return math.Hypot(sx-x, sy-y) <= bodyPillRadiusPx
}

// BodyDeletePillRadius returns the pill's screen-space radius, for rendering.
func BodyDeletePillRadius() float64 {
	return bodyPillRadiusPx
}

// DeleteIconCenter returns the screen position of the delete icon attached
// to the selected point's nudge control.
func DeleteIconCenter(p *graph.Point, v *view.View) (x, y float64) {
	cx, cy := v.ImageToScreen(p.X, p.Y)
	return cx + deleteDistPx*math.Cos(deleteAngle), cy + deleteDistPx*math.Sin(deleteAngle)
}

// DonutRadii returns the inner and outer screen-space radii of the nudge
// donut, for rendering.
func DonutRadii() (inner, outer float64) {
	return donutInnerPx, donutOuterPx
}

// DeleteIconRadius returns the screen-space radius of the delete icon.
func DeleteIconRadius() float64 {
	return deleteIconPx
}

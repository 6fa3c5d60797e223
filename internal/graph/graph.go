// Package graph holds the annotation data model: landmark points, linkage
// bodies, and the derived bar segments used for rendering and hit-testing.
package graph

import (
	"fmt"
	"strconv"
	"strings"

	"linkage-tracer/pkg/geometry"
)

// Point is a labeled landmark in image-intrinsic pixel coordinates.
type Point struct {
	ID   string  `json:"id"`
	Type string  `json:"type"`
	Name string  `json:"name,omitempty"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Pos returns the point position as a Point2D.
func (p *Point) Pos() geometry.Point2D {
	return geometry.Point2D{X: p.X, Y: p.Y}
}

// Clone returns an independent copy of the point.
func (p *Point) Clone() *Point {
	cp := *p
	return &cp
}

// Body is an ordered chain of points forming a rigid or elastic linkage.
// A body of type "shock" drives the derived stroke overlay.
type Body struct {
	ID       string   `json:"id"`
	Name     string   `json:"name,omitempty"`
	PointIDs []string `json:"point_ids"`
	Closed   bool     `json:"closed"`
	Type     string   `json:"type,omitempty"`
	Length0  *float64 `json:"length0,omitempty"`
	Stroke   *float64 `json:"stroke,omitempty"`
}

// Clone returns an independent copy of the body, including its point list
// and the optional shock values.
func (b *Body) Clone() *Body {
	cb := *b
	cb.PointIDs = append([]string(nil), b.PointIDs...)
	if b.Length0 != nil {
		v := *b.Length0
		cb.Length0 = &v
	}
	if b.Stroke != nil {
		v := *b.Stroke
		cb.Stroke = &v
	}
	return &cb
}

// Bar is a derived segment between two consecutive body points. Bars are
// never persisted or edited directly; RebuildBars is their only producer.
type Bar struct {
	BodyID  string
	A, B    string
	Preview bool
}

// Trail is a server-supplied list of historical samples for one point.
// It is rendered as a path and never mutated client-side.
type Trail struct {
	PointID string             `json:"point_id"`
	Samples []geometry.Point2D `json:"samples"`
}

// ChainResult is the outcome of finalizing a connect chain.
type ChainResult int

const (
	ChainEmpty     ChainResult = iota // no chain was in progress
	ChainDiscarded                    // fewer than two points accumulated
	ChainCreated                      // a new body was created
)

// Graph owns the points, bodies, and derived bars for one bike.
type Graph struct {
	Points []*Point
	Bodies []*Body
	Bars   []Bar
	Trails []Trail

	chain       []string
	nextPointID int
	nextBodyID  int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{nextPointID: 1, nextBodyID: 1}
}

// SetPoints replaces all points (typically from a backend load), rebuilds
// the id counter and the derived bars.
func (g *Graph) SetPoints(points []*Point) {
	g.Points = points
	g.nextPointID = nextCounter("p", pointIDs(points))
	g.RebuildBars()
}

// SetBodies replaces all bodies, rebuilds the id counter and derived bars.
func (g *Graph) SetBodies(bodies []*Body) {
	g.Bodies = bodies
	ids := make([]string, len(bodies))
	for i, b := range bodies {
		ids[i] = b.ID
	}
	g.nextBodyID = nextCounter("b", ids)
	g.RebuildBars()
}

// PointByID returns the point with the given id, or nil.
func (g *Graph) PointByID(id string) *Point {
	for _, p := range g.Points {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PointByType returns the point with the given type tag, or nil. When the
// type is duplicated the last one wins, matching anchor resolution for
// measurements.
func (g *Graph) PointByType(typ string) *Point {
	var found *Point
	for _, p := range g.Points {
		if p.Type == typ {
			found = p
		}
	}
	return found
}

// BodyByID returns the body with the given id, or nil.
func (g *Graph) BodyByID(id string) *Body {
	for _, b := range g.Bodies {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// AddPoint creates a new point of the given type at image coordinates.
func (g *Graph) AddPoint(typ string, x, y float64) *Point {
	p := &Point{
		ID:   fmt.Sprintf("p%d", g.nextPointID),
		Type: typ,
		X:    x,
		Y:    y,
	}
	g.nextPointID++
	g.Points = append(g.Points, p)
	return p
}

// DeletePoint removes a point, scrubs it from every body, drops bodies left
// with fewer than two points, and rebuilds the bars. Returns true if the
// point existed.
func (g *Graph) DeletePoint(id string) bool {
	idx := -1
	for i, p := range g.Points {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	g.Points = append(g.Points[:idx], g.Points[idx+1:]...)

	kept := g.Bodies[:0]
	for _, b := range g.Bodies {
		ids := b.PointIDs[:0]
		for _, pid := range b.PointIDs {
			if pid != id {
				ids = append(ids, pid)
			}
		}
		b.PointIDs = ids
		if len(b.PointIDs) >= 2 {
			kept = append(kept, b)
		}
	}
	g.Bodies = kept

	g.chain = removeAll(g.chain, id)
	g.RebuildBars()
	return true
}

// DeleteBody removes a body and rebuilds the bars.
func (g *Graph) DeleteBody(id string) bool {
	for i, b := range g.Bodies {
		if b.ID == id {
			g.Bodies = append(g.Bodies[:i], g.Bodies[i+1:]...)
			g.RebuildBars()
			return true
		}
	}
	return false
}

// RebuildBars recomputes the derived bar list from the bodies and the
// in-progress connect chain. It is the single source of truth for bars and
// must run after any mutation of bodies or point membership. Segments whose
// endpoints no longer exist are dropped.
func (g *Graph) RebuildBars() {
	bars := make([]Bar, 0, len(g.Bars))
	for _, b := range g.Bodies {
		if len(b.PointIDs) < 2 {
			continue
		}
		for i := 0; i < len(b.PointIDs)-1; i++ {
			g.appendBar(&bars, b.ID, b.PointIDs[i], b.PointIDs[i+1], false)
		}
		if b.Closed {
			g.appendBar(&bars, b.ID, b.PointIDs[len(b.PointIDs)-1], b.PointIDs[0], false)
		}
	}
	for i := 0; i < len(g.chain)-1; i++ {
		g.appendBar(&bars, "", g.chain[i], g.chain[i+1], true)
	}
	g.Bars = bars
}

func (g *Graph) appendBar(bars *[]Bar, bodyID, a, b string, preview bool) {
	if g.PointByID(a) == nil || g.PointByID(b) == nil {
		return
	}
	*bars = append(*bars, Bar{BodyID: bodyID, A: a, B: b, Preview: preview})
}

// Chain returns the ordered point ids of the in-progress connect chain.
func (g *Graph) Chain() []string {
	return g.chain
}

// InChain reports whether a point is part of the in-progress chain.
func (g *Graph) InChain(id string) bool {
	for _, c := range g.chain {
		if c == id {
			return true
		}
	}
	return false
}

// AppendToChain adds a point to the connect chain, ignoring an immediate
// repeat of the last point, and refreshes the preview bars.
func (g *Graph) AppendToChain(id string) {
	if g.PointByID(id) == nil {
		return
	}
	if n := len(g.chain); n > 0 && g.chain[n-1] == id {
		return
	}
	g.chain = append(g.chain, id)
	g.RebuildBars()
}

// FinalizeChain ends the connect chain. With two or more accumulated points
// it creates a body of the given link type and returns it with ChainCreated;
// with fewer it discards silently.
func (g *Graph) FinalizeChain(linkType string) (*Body, ChainResult) {
	chain := g.chain
	g.chain = nil
	if len(chain) == 0 {
		g.RebuildBars()
		return nil, ChainEmpty
	}
	if len(chain) < 2 {
		g.RebuildBars()
		return nil, ChainDiscarded
	}

	b := &Body{
		ID:       fmt.Sprintf("b%d", g.nextBodyID),
		PointIDs: chain,
		Type:     linkType,
	}
	g.nextBodyID++
	g.Bodies = append(g.Bodies, b)
	g.RebuildBars()
	return b, ChainCreated
}

// ShockBody returns the first body of type "shock", or nil.
func (g *Graph) ShockBody() *Body {
	for _, b := range g.Bodies {
		if b.Type == "shock" {
			return b
		}
	}
	return nil
}

// BodyBounds returns the bounding rectangle of a body's points in image
// space. ok is false when no point resolves.
func (g *Graph) BodyBounds(id string) (geometry.Rect, bool) {
	b := g.BodyByID(id)
	if b == nil {
		return geometry.Rect{}, false
	}
	var pts []geometry.Point2D
	for _, pid := range b.PointIDs {
		if p := g.PointByID(pid); p != nil {
			pts = append(pts, p.Pos())
		}
	}
	if len(pts) == 0 {
		return geometry.Rect{}, false
	}
	return geometry.BoundsOf(pts), true
}

// nextCounter reconstructs a monotonic id counter from existing ids of the
// form "<prefix><number>". Unparseable ids are ignored.
func nextCounter(prefix string, ids []string) int {
	next := 1
	for _, id := range ids {
		num, ok := strings.CutPrefix(id, prefix)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(num); err == nil && n >= next {
			next = n + 1
		}
	}
	return next
}

func pointIDs(points []*Point) []string {
	ids := make([]string, len(points))
	for i, p := range points {
		ids[i] = p.ID
	}
	return ids
}

func removeAll(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

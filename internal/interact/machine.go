// Package interact is the pointer/wheel/keyboard state machine of the
// annotation engine. It is headless: the UI layer feeds it abstract events
// and it mutates the session, asking for repaints through a callback.
package interact

import (
	"math"
	"time"

	"linkage-tracer/internal/graph"
	"linkage-tracer/internal/hittest"
	"linkage-tracer/internal/measure"
	"linkage-tracer/internal/perspective"
	"linkage-tracer/internal/session"
)

// PointerKind distinguishes mouse from touch input.
type PointerKind int

const (
	Mouse PointerKind = iota
	Touch
)

// Saver receives the fire-and-forget autosave triggers.
type Saver interface {
	SavePoints()
	SaveBodies()
	SaveGeometry(doc measure.GeometryDoc)
	SavePerspective()
}

const (
	nudgeStep      = 0.5 // image units per arrow key / donut tap
	wheelZoomBase  = 1.0015
	pinchMinTravel = 1e-6
)

type pointer struct {
	x, y float64
	kind PointerKind
}

type pinchState struct {
	a, b       int // pointer ids
	startDist  float64
	startScale float64
}

// Machine routes input events to placement, selection, dragging, panning,
// pinch zoom, link chaining, perspective capture, and the micro-controls.
type Machine struct {
	Session    *session.Session
	Saver      Saver
	Invalidate func()
	Now        func() time.Time

	pointers map[int]pointer
	pinch    *pinchState

	dragPoint string
	panning   bool
	lastX     float64
	lastY     float64

	crosshair      bool
	crossX, crossY float64
}

// New creates a machine bound to a session.
func New(sess *session.Session, saver Saver, invalidate func()) *Machine {
	return &Machine{
		Session:    sess,
		Saver:      saver,
		Invalidate: invalidate,
		Now:        time.Now,
		pointers:   make(map[int]pointer),
	}
}

// Crosshair returns the placement crosshair position, if showing.
func (m *Machine) Crosshair() (x, y float64, show bool) {
	return m.crossX, m.crossY, m.crosshair
}

// DragTarget returns the id of the point currently being dragged, if any.
func (m *Machine) DragTarget() string {
	return m.dragPoint
}

// PointerDown handles a primary-button press or touch start.
func (m *Machine) PointerDown(id int, kind PointerKind, sx, sy float64) {
	m.pointers[id] = pointer{x: sx, y: sy, kind: kind}

	if kind == Touch && m.touchCount() == 2 {
		m.startPinch()
		m.invalidate()
		return
	}
	if m.pinch != nil {
		return
	}

	m.lastX, m.lastY = sx, sy
	sess := m.Session

	if sess.PerspectiveMode {
		m.capturePerspective(sx, sy)
		return
	}

	// Strict priority: nudge control, then points, then the body pill,
	// then placement, then selection/pan fallback.
	if m.hitNudgeControl(sx, sy) {
		return
	}

	if pid := hittest.NearestPointID(sess.Graph, sess.View, sx, sy); pid != "" {
		if sess.ConnectMode && sess.ActiveLinkType != "" {
			sess.Graph.AppendToChain(pid)
			m.invalidate()
			return
		}
		sess.SelectPoint(pid)
		m.dragPoint = pid
		m.invalidate()
		return
	}

	if sess.SelectedBody != "" &&
		hittest.BodyDeletePillAt(sess.Graph, sess.View, sess.SelectedBody, sx, sy) {
		sess.Graph.DeleteBody(sess.SelectedBody)
		sess.ClearSelection()
		m.Saver.SaveBodies()
		m.invalidate()
		return
	}

	if sess.ActiveType != "" {
		m.placePoint(sx, sy)
		return
	}

	if sess.ConnectMode {
		m.finishChain()
		return
	}

	if bid := hittest.BodyAt(sess.Graph, sess.View, sx, sy); bid != "" {
		sess.SelectBody(bid)
		m.invalidate()
		return
	}

	hadPoint := sess.SelectedPoint != ""
	sess.ClearSelection()
	if hadPoint {
		m.Saver.SavePoints()
	}
	m.panning = true
	m.invalidate()
}

// PointerMove handles pointer motion.
func (m *Machine) PointerMove(id int, kind PointerKind, sx, sy float64) {
	if p, ok := m.pointers[id]; ok {
		p.x, p.y = sx, sy
		m.pointers[id] = p
	}

	if m.pinch != nil {
		m.updatePinch()
		return
	}

	sess := m.Session
	switch {
	case m.dragPoint != "":
		if p := sess.Graph.PointByID(m.dragPoint); p != nil {
			p.X, p.Y = sess.View.ScreenToImage(sx, sy)
			sess.Measures.Recompute(sess.Graph)
			sess.Emit(session.EventMeasuresChanged, nil)
		}
		m.invalidate()
	case m.panning:
		sess.View.PanBy(sx-m.lastX, sy-m.lastY)
		m.invalidate()
	case kind == Mouse && sess.ActiveType != "":
		// Live crosshair previews the pending placement (mouse only).
		m.crosshair = true
		m.crossX, m.crossY = sx, sy
		m.invalidate()
	}
	m.lastX, m.lastY = sx, sy
}

// PointerUp handles release.
func (m *Machine) PointerUp(id int, kind PointerKind, sx, sy float64) {
	delete(m.pointers, id)

	if m.pinch != nil {
		if m.touchCount() < 2 {
			m.pinch = nil
		}
		return
	}

	if m.dragPoint != "" {
		m.dragPoint = ""
		m.Saver.SavePoints()
	}
	m.panning = false
}

// PointerCancel aborts any gesture the pointer was part of without saving.
func (m *Machine) PointerCancel(id int) {
	delete(m.pointers, id)
	if m.pinch != nil && m.touchCount() < 2 {
		m.pinch = nil
	}
	m.dragPoint = ""
	m.panning = false
	m.invalidate()
}

// Wheel handles scroll-wheel zoom, pivoted at the cursor.
func (m *Machine) Wheel(sx, sy, deltaY float64) {
	v := m.Session.View
	requested := v.Scale * math.Pow(wheelZoomBase, -deltaY)
	if v.ZoomAt(sx, sy, requested) {
		v.StartCenterAnimation(m.Now())
	}
	m.invalidate()
}

// Key handles keyboard input. Arrow keys nudge the selected point by half
// an image unit; Escape disarms an armed placement type, else clears the
// selection. The UI layer must not forward keys while a text input has
// focus.
func (m *Machine) Key(name string) {
	sess := m.Session
	switch name {
	case "Up":
		m.nudgeSelected(0, -nudgeStep)
	case "Down":
		m.nudgeSelected(0, nudgeStep)
	case "Left":
		m.nudgeSelected(-nudgeStep, 0)
	case "Right":
		m.nudgeSelected(nudgeStep, 0)
	case "Escape":
		if sess.ActiveType != "" {
			sess.ActiveType = ""
			m.crosshair = false
		} else {
			sess.ClearSelection()
		}
		m.invalidate()
	}
}

// SetType arms a point type for placement; an empty type disarms.
func (m *Machine) SetType(typ string) {
	m.Session.ActiveType = typ
	if typ == "" {
		m.crosshair = false
	}
	m.invalidate()
}

// SetLinkType selects the link type used when a connect chain finalizes.
func (m *Machine) SetLinkType(linkType string) {
	m.Session.ActiveLinkType = linkType
}

// SetConnectMode toggles link-chain mode. Leaving the mode finalizes any
// in-progress chain.
func (m *Machine) SetConnectMode(on bool) {
	if m.Session.ConnectMode && !on {
		m.finishChain()
		return
	}
	m.Session.ConnectMode = on
	m.invalidate()
}

// SetPerspectiveMode toggles the rim capture flow.
func (m *Machine) SetPerspectiveMode(on bool) {
	m.Session.PerspectiveMode = on
	m.invalidate()
}

// ResetPerspective discards the captured rim points and persists the empty
// capture.
func (m *Machine) ResetPerspective() {
	m.Session.Capture.Reset()
	m.Session.Emit(session.EventPerspectiveChanged, nil)
	m.Saver.SavePerspective()
	m.invalidate()
}

func (m *Machine) touchCount() int {
	n := 0
	for _, p := range m.pointers {
		if p.kind == Touch {
			n++
		}
	}
	return n
}

func (m *Machine) startPinch() {
	var ids []int
	for id, p := range m.pointers {
		if p.kind == Touch {
			ids = append(ids, id)
		}
	}
	if len(ids) < 2 {
		return
	}
	a, b := m.pointers[ids[0]], m.pointers[ids[1]]
	dist := math.Hypot(b.x-a.x, b.y-a.y)
	if dist < pinchMinTravel {
		return
	}
	m.dragPoint = ""
	m.panning = false
	m.pinch = &pinchState{
		a:          ids[0],
		b:          ids[1],
		startDist:  dist,
		startScale: m.Session.View.Scale,
	}
}

func (m *Machine) updatePinch() {
	pa, okA := m.pointers[m.pinch.a]
	pb, okB := m.pointers[m.pinch.b]
	if !okA || !okB {
		return
	}
	dist := math.Hypot(pb.x-pa.x, pb.y-pa.y)
	if dist < pinchMinTravel {
		return
	}
	midX := (pa.x + pb.x) / 2
	midY := (pa.y + pb.y) / 2
	requested := m.pinch.startScale * dist / m.pinch.startDist
	if m.Session.View.ZoomAt(midX, midY, requested) {
		m.Session.View.StartCenterAnimation(m.Now())
	}
	m.invalidate()
}

func (m *Machine) hitNudgeControl(sx, sy float64) bool {
	sess := m.Session
	if sess.SelectedPoint == "" {
		return false
	}
	p := sess.Graph.PointByID(sess.SelectedPoint)
	if p == nil {
		return false
	}
	switch hittest.NudgeControlAt(p, sess.View, sx, sy) {
	case hittest.NudgeUp:
		m.nudgeSelected(0, -nudgeStep)
	case hittest.NudgeRight:
		m.nudgeSelected(nudgeStep, 0)
	case hittest.NudgeDown:
		m.nudgeSelected(0, nudgeStep)
	case hittest.NudgeLeft:
		m.nudgeSelected(-nudgeStep, 0)
	case hittest.NudgeDelete:
		sess.Graph.DeletePoint(sess.SelectedPoint)
		sess.ClearSelection()
		sess.Measures.Recompute(sess.Graph)
		sess.Emit(session.EventGraphChanged, nil)
		m.Saver.SavePoints()
		m.invalidate()
	default:
		return false
	}
	return true
}

func (m *Machine) nudgeSelected(dx, dy float64) {
	sess := m.Session
	p := sess.Graph.PointByID(sess.SelectedPoint)
	if p == nil {
		return
	}
	p.X += dx
	p.Y += dy
	sess.Measures.Recompute(sess.Graph)
	sess.Emit(session.EventMeasuresChanged, nil)
	m.invalidate()
}

func (m *Machine) placePoint(sx, sy float64) {
	sess := m.Session
	ix, iy := sess.View.ScreenToImage(sx, sy)
	p := sess.Graph.AddPoint(sess.ActiveType, ix, iy)
	sess.ActiveType = ""
	m.crosshair = false
	sess.SelectPoint(p.ID)
	sess.Emit(session.EventGraphChanged, nil)
	m.Saver.SavePoints()
	m.invalidate()
}

// finishChain finalizes the chain and exits connect mode. The armed link
// type survives so re-entering the mode chains the next body with it. The
// emit lets the panel resync its connect checkbox.
func (m *Machine) finishChain() {
	sess := m.Session
	_, res := sess.Graph.FinalizeChain(sess.ActiveLinkType)
	sess.ConnectMode = false
	sess.Emit(session.EventGraphChanged, nil)
	if res == graph.ChainCreated {
		m.Saver.SaveBodies()
	}
	m.invalidate()
}

func (m *Machine) capturePerspective(sx, sy float64) {
	sess := m.Session
	ix, iy := sess.View.ScreenToImage(sx, sy)
	if _, ok := sess.Capture.Place(ix, iy); !ok {
		return
	}
	if sess.Capture.Stage() == perspective.StageDone {
		sess.PerspectiveMode = false
	}
	sess.Emit(session.EventPerspectiveChanged, nil)
	m.Saver.SavePerspective()
	m.invalidate()
}

func (m *Machine) invalidate() {
	if m.Invalidate != nil {
		m.Invalidate()
	}
}

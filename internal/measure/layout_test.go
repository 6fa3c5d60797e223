package measure

import (
	"math"
	"testing"

	"linkage-tracer/internal/graph"
	"linkage-tracer/internal/view"
)

func layoutFixture() (*graph.Graph, *view.View) {
	g := calibrationGraph()
	v := view.New()
	v.SetImageSize(2000, 1000)
	v.SetViewport(2000, 1000)
	v.Reset()
	return g, v
}

func TestArrowLayoutHorizontal(t *testing.T) {
	g, v := layoutFixture()
	s := NewSet()

	a := ArrowLayout(s.Def(RearCenter), g, v)
	if !a.Visible {
		t.Fatal("arrow hidden")
	}
	if a.A.Y != a.B.Y {
		t.Errorf("horizontal shaft not level: %v %v", a.A, a.B)
	}
	if math.Abs(a.B.X-a.A.X) != 220 {
		t.Errorf("shaft span: got %v, want 220", math.Abs(a.B.X-a.A.X))
	}
	if len(a.Ticks) != 2 {
		t.Errorf("ticks: got %d, want 2", len(a.Ticks))
	}
	wantLabelX := (a.A.X + a.B.X) / 2
	if a.Label.X != wantLabelX {
		t.Errorf("label x: got %v, want %v", a.Label.X, wantLabelX)
	}
}

func TestArrowLayoutHiddenWithoutAnchor(t *testing.T) {
	g, v := layoutFixture()
	g.DeletePoint("p2")
	s := NewSet()
	if a := ArrowLayout(s.Def(RearCenter), g, v); a.Visible {
		t.Error("arrow visible with missing anchor")
	}
}

func TestArrowLayoutTracksZoom(t *testing.T) {
	g, v := layoutFixture()
	s := NewSet()
	v.ZoomAt(0, 0, 2)
	a := ArrowLayout(s.Def(RearCenter), g, v)
	if math.Abs(a.B.X-a.A.X) != 440 {
		t.Errorf("shaft span at zoom 2: got %v, want 440", math.Abs(a.B.X-a.A.X))
	}
}

func shockGraph(stroke float64) *graph.Graph {
	g := graph.New()
	g.SetPoints([]*graph.Point{
		{ID: "p1", Type: "fixed", X: 0, Y: 0},
		{ID: "p2", Type: "free", X: 200, Y: 0},
	})
	g.SetBodies([]*graph.Body{{
		ID: "b1", Type: "shock", PointIDs: []string{"p1", "p2"}, Stroke: &stroke,
	}})
	return g
}

func TestShockLayout(t *testing.T) {
	g := shockGraph(50)

	// 200 px at 1 mm/px: eye-to-eye 200 mm, stroke 50 mm.
	ov := ShockLayout(g, 1.0)
	if !ov.Visible {
		t.Fatal("overlay hidden")
	}
	if ov.Marker.X != 150 || ov.Marker.Y != 0 {
		t.Errorf("marker: got %+v, want (150,0)", ov.Marker)
	}

	// No calibration scale hides the overlay.
	if ov := ShockLayout(g, 0); ov.Visible {
		t.Error("visible without scale")
	}

	// Stroke exceeding eye-to-eye is degenerate.
	if ov := ShockLayout(shockGraph(500), 1.0); ov.Visible {
		t.Error("visible with oversized stroke")
	}

	// No shock body.
	if ov := ShockLayout(graph.New(), 1.0); ov.Visible {
		t.Error("visible without shock body")
	}
}

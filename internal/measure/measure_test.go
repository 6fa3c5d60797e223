package measure

import (
	"math"
	"testing"

	"linkage-tracer/internal/graph"
)

func calibrationGraph() *graph.Graph {
	g := graph.New()
	g.SetPoints([]*graph.Point{
		{ID: "p1", Type: "bb", X: 0, Y: 0},
		{ID: "p2", Type: "rear_axle", X: 220, Y: 0},
		{ID: "p3", Type: "front_axle", X: 1220, Y: 0},
	})
	return g
}

func TestCommitDerivesScaleAndPropagates(t *testing.T) {
	g := calibrationGraph()
	s := NewSet()

	doc, err := s.Commit(RearCenter, 440, g)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if s.ScaleMMPerPx != 2.0 {
		t.Errorf("scale: got %v, want 2.0", s.ScaleMMPerPx)
	}
	if s.ScaleSource != RearCenter {
		t.Errorf("scale source: got %q", s.ScaleSource)
	}
	if got := s.Values[Wheelbase]; got != 2000 {
		t.Errorf("wheelbase propagated: got %v, want 2000", got)
	}
	if got := s.Values[FrontCenter]; got != 2440 {
		t.Errorf("front center propagated: got %v, want 2440", got)
	}
	if doc.ScaleMMPerPx != 2.0 || doc.WheelbaseMM != 2000 {
		t.Errorf("doc: %+v", doc)
	}
}

func TestCommitRoundTripIdempotent(t *testing.T) {
	g := calibrationGraph()
	s := NewSet()
	if _, err := s.Commit(Wheelbase, 1150, g); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	dpx, _ := PixelDistance(s.Def(Wheelbase), g)
	if got := dpx * s.ScaleMMPerPx; math.Abs(got-1150) > 1e-9 {
		t.Errorf("re-derived source value: got %v, want 1150", got)
	}
}

func TestCommitSwitchesSource(t *testing.T) {
	g := calibrationGraph()
	s := NewSet()
	s.Commit(RearCenter, 440, g)
	s.Commit(Wheelbase, 1200, g)

	if s.ScaleSource != Wheelbase {
		t.Errorf("source not switched: %q", s.ScaleSource)
	}
	if s.ScaleMMPerPx != 1.2 {
		t.Errorf("scale: got %v, want 1.2", s.ScaleMMPerPx)
	}
	// Rear center becomes derived again.
	if got := s.Values[RearCenter]; math.Abs(got-264) > 1e-9 {
		t.Errorf("rear center rederived: got %v, want 264", got)
	}
}

func TestCommitRejections(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		mm    float64
		setup func(g *graph.Graph)
	}{
		{"unknown measurement", "nope", 100, nil},
		{"zero value", RearCenter, 0, nil},
		{"negative value", RearCenter, -5, nil},
		{"nan", RearCenter, math.NaN(), nil},
		{"missing anchor", RearCenter, 440, func(g *graph.Graph) { g.DeletePoint("p2") }},
		{"zero pixel distance", RearCenter, 440, func(g *graph.Graph) {
			g.PointByID("p2").X = 0
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := calibrationGraph()
			if tt.setup != nil {
				tt.setup(g)
			}
			s := NewSet()
			if _, err := s.Commit(tt.id, tt.mm, g); err == nil {
				t.Fatal("expected error")
			}
			if s.ScaleMMPerPx != 0 || s.ScaleSource != "" {
				t.Errorf("state mutated on rejection: %+v", s)
			}
		})
	}
}

func TestRecomputeSkipsEditing(t *testing.T) {
	g := calibrationGraph()
	s := NewSet()
	s.Commit(RearCenter, 440, g)

	s.Editing = Wheelbase
	s.Values[Wheelbase] = 9999 // in-progress typing, must survive
	g.PointByType("front_axle").X = 1500
	s.Recompute(g)

	if got := s.Values[Wheelbase]; got != 9999 {
		t.Errorf("editing value clobbered: got %v", got)
	}
	if got := s.Values[FrontCenter]; got != 3000 {
		t.Errorf("front center: got %v, want 3000", got)
	}
}

func TestParseInput(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"440", 440, false},
		{"437.5", 437.5, false},
		{" 440 mm ", 440, false},
		{"abc", 0, true},
		{"", 0, true},
		{"-10", 0, true},
		{"1e3", 0, true},
		{"12.", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInput(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err: %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatValue(t *testing.T) {
	if got := FormatValue(440); got != "440 mm" {
		t.Errorf("got %q", got)
	}
	if got := FormatValue(437.54); got != "437.5 mm" {
		t.Errorf("got %q", got)
	}
}

func TestPixelDistanceOrientations(t *testing.T) {
	g := graph.New()
	g.SetPoints([]*graph.Point{
		{ID: "p1", Type: "a", X: 0, Y: 0},
		{ID: "p2", Type: "b", X: 30, Y: 40},
	})
	tests := []struct {
		name   string
		orient Orientation
		want   float64
	}{
		{"horizontal", Horizontal, 30},
		{"vertical", Vertical, 40},
		{"point to point", PointToPoint, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := &Definition{AnchorA: "a", AnchorB: "b", Orientation: tt.orient}
			got, ok := PixelDistance(def, g)
			if !ok || got != tt.want {
				t.Errorf("got %v ok=%v, want %v", got, ok, tt.want)
			}
		})
	}
}

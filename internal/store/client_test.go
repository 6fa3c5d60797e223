package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"linkage-tracer/internal/graph"
	"linkage-tracer/internal/measure"
	"linkage-tracer/internal/session"
)

func TestLoadBike(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/bikes/42" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sekrit" {
			t.Errorf("auth header: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"points": [
				{"id":"p1","type":"bb","x":300,"y":400},
				{"id":"p2","type":"rear_axle","coords":[100,200]}
			],
			"geometry": {"scale_mm_per_px":2.0,"scale_source":"rear_center","rear_center_mm":440},
			"hero_perspective_points": [{"id":"hp1","type":"rear_rim","x":1,"y":2}],
			"point_trails": [{"point_id":"p2","samples":[{"x":100,"y":200},{"x":104,"y":210}]}]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sekrit")
	doc, err := c.LoadBike(context.Background(), "42")
	if err != nil {
		t.Fatalf("LoadBike: %v", err)
	}
	if len(doc.Points) != 2 {
		t.Fatalf("points: %d", len(doc.Points))
	}
	// Legacy coords pair promoted to x/y.
	if doc.Points[1].X != 100 || doc.Points[1].Y != 200 {
		t.Errorf("coords fallback: %+v", doc.Points[1])
	}
	if doc.Geometry.ScaleMMPerPx != 2.0 || doc.Geometry.ScaleSource != "rear_center" {
		t.Errorf("geometry: %+v", doc.Geometry)
	}
	if len(doc.HeroPerspectivePoints) != 1 {
		t.Errorf("perspective points: %d", len(doc.HeroPerspectivePoints))
	}
	if len(doc.Trails) != 1 || doc.Trails[0].PointID != "p2" || len(doc.Trails[0].Samples) != 2 {
		t.Errorf("trails: %+v", doc.Trails)
	}
}

func TestSavePointsBodyShape(t *testing.T) {
	var got map[string][]map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/bikes/42/points" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	err := c.SavePoints(context.Background(), "42", []*graph.Point{
		{ID: "p1", Type: "bb", X: 1, Y: 2},
	})
	if err != nil {
		t.Fatalf("SavePoints: %v", err)
	}
	if len(got["points"]) != 1 || got["points"][0]["id"] != "p1" {
		t.Errorf("payload: %+v", got)
	}
}

func TestSaveGeometryPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	doc := measure.GeometryDoc{ScaleMMPerPx: 2, ScaleSource: "wheelbase"}
	if err := c.SaveGeometry(context.Background(), "bike-7", doc); err != nil {
		t.Fatalf("SaveGeometry: %v", err)
	}
	if gotPath != "/bikes/bike-7/geometry" {
		t.Errorf("path: %q", gotPath)
	}
}

func TestSavePerspectivePath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if err := c.SavePerspective(context.Background(), "42", nil); err != nil {
		t.Fatalf("SavePerspective: %v", err)
	}
	if gotPath != "/bikes/42/media/hero/perspective" {
		t.Errorf("path: %q", gotPath)
	}
}

func TestNonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if _, err := c.LoadBike(context.Background(), "42"); err == nil {
		t.Error("expected error for 500")
	}
	if err := c.SaveBodies(context.Background(), "42", nil); err == nil {
		t.Error("expected error for 500")
	}
}

func TestBridgeFailureSetsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	sess := session.New("42")
	b := &Bridge{Client: NewClient(srv.URL, ""), Session: sess}
	b.SavePoints()
	b.Wait()

	if sess.Status() != "save points failed" {
		t.Errorf("status: %q", sess.Status())
	}
}

func TestBridgeSaveSnapshotsState(t *testing.T) {
	var got map[string][]map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sess := session.New("42")
	p := sess.Graph.AddPoint("bb", 100, 200)
	b := &Bridge{Client: NewClient(srv.URL, ""), Session: sess}

	// Edits after the trigger must not leak into the in-flight payload.
	b.SavePoints()
	p.X, p.Y = 999, 999
	b.Wait()

	if len(got["points"]) != 1 {
		t.Fatalf("payload: %+v", got)
	}
	if x := got["points"][0]["x"]; x != 100.0 {
		t.Errorf("saved x: %v", x)
	}
	if y := got["points"][0]["y"]; y != 200.0 {
		t.Errorf("saved y: %v", y)
	}
}

func TestBridgeLoadInstallsState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/bikes/42":
			w.Write([]byte(`{"points":[{"id":"p3","type":"bb","x":5,"y":6}],
				"geometry":{"scale_mm_per_px":1.5,"scale_source":"wheelbase","wheelbase_mm":1150},
				"point_trails":[{"point_id":"p3","samples":[{"x":5,"y":6}]}]}`))
		case "/bikes/42/bodies":
			w.Write([]byte(`{"bodies":[{"id":"b2","point_ids":["p3","p3"],"closed":false}]}`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	defer srv.Close()

	sess := session.New("42")
	b := &Bridge{Client: NewClient(srv.URL, ""), Session: sess}
	if err := b.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if sess.Graph.PointByID("p3") == nil {
		t.Error("points not installed")
	}
	if sess.Graph.BodyByID("b2") == nil {
		t.Error("bodies not installed")
	}
	if sess.Measures.ScaleMMPerPx != 1.5 || sess.Measures.ScaleSource != "wheelbase" {
		t.Errorf("measures: %+v", sess.Measures)
	}
	if len(sess.Graph.Trails) != 1 || sess.Graph.Trails[0].PointID != "p3" {
		t.Errorf("trails not installed: %+v", sess.Graph.Trails)
	}
	// The id counters resume past loaded ids.
	if p := sess.Graph.AddPoint("free", 0, 0); p.ID != "p4" {
		t.Errorf("next point id: %s", p.ID)
	}
}

package stubserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"linkage-tracer/internal/graph"
	"linkage-tracer/internal/measure"
	"linkage-tracer/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := OpenStore(filepath.Join(t.TempDir(), "linkage.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	srv := httptest.NewServer(NewServer(st).Router())
	t.Cleanup(srv.Close)
	return srv
}

func TestFreshBikeLoadsEmpty(t *testing.T) {
	srv := newTestServer(t)
	client := store.NewClient(srv.URL, "")

	doc, err := client.LoadBike(context.Background(), "99")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Points) != 0 || len(doc.HeroPerspectivePoints) != 0 {
		t.Errorf("fresh bike not empty: %+v", doc)
	}
	if doc.Geometry.ScaleMMPerPx != 0 {
		t.Errorf("fresh geometry: %+v", doc.Geometry)
	}

	bodies, err := client.LoadBodies(context.Background(), "99")
	if err != nil {
		t.Fatal(err)
	}
	if len(bodies) != 0 {
		t.Errorf("fresh bodies: %+v", bodies)
	}
}

func TestRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	client := store.NewClient(srv.URL, "")
	ctx := context.Background()

	points := []*graph.Point{
		{ID: "p1", Type: "rear_axle", X: 120, Y: 340},
		{ID: "p2", Type: "bb", X: 400, Y: 500},
	}
	if err := client.SavePoints(ctx, "7", points); err != nil {
		t.Fatal(err)
	}
	bodies := []*graph.Body{
		{ID: "b1", Type: "bar", PointIDs: []string{"p1", "p2"}},
	}
	if err := client.SaveBodies(ctx, "7", bodies); err != nil {
		t.Fatal(err)
	}
	geo := measure.GeometryDoc{ScaleMMPerPx: 2.5, ScaleSource: measure.RearCenter}
	if err := client.SaveGeometry(ctx, "7", geo); err != nil {
		t.Fatal(err)
	}

	doc, err := client.LoadBike(ctx, "7")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Points) != 2 || doc.Points[0].ID != "p1" || doc.Points[1].X != 400 {
		t.Errorf("points round trip: %+v", doc.Points)
	}
	if doc.Geometry.ScaleMMPerPx != 2.5 || doc.Geometry.ScaleSource != measure.RearCenter {
		t.Errorf("geometry round trip: %+v", doc.Geometry)
	}

	got, err := client.LoadBodies(ctx, "7")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "b1" || len(got[0].PointIDs) != 2 {
		t.Errorf("bodies round trip: %+v", got)
	}
}

func TestSeededTrailsComeBack(t *testing.T) {
	srv := newTestServer(t)

	// An importer can seed history trails alongside the points; the
	// tracer's own saves carry only points.
	seeded := `{"points":[{"id":"p1","type":"rear_axle","x":1,"y":2}],
		"point_trails":[{"point_id":"p1","samples":[{"x":1,"y":2},{"x":3,"y":4}]}]}`
	req, err := http.NewRequest(http.MethodPut, srv.URL+"/bikes/7/points", strings.NewReader(seeded))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("seed status: %d", resp.StatusCode)
	}

	client := store.NewClient(srv.URL, "")
	doc, err := client.LoadBike(context.Background(), "7")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Trails) != 1 || doc.Trails[0].PointID != "p1" || len(doc.Trails[0].Samples) != 2 {
		t.Errorf("trails: %+v", doc.Trails)
	}

	// A plain point save has no trails and the document reflects that.
	if err := client.SavePoints(context.Background(), "7", []*graph.Point{{ID: "p1", Type: "rear_axle", X: 1, Y: 2}}); err != nil {
		t.Fatal(err)
	}
	doc, err = client.LoadBike(context.Background(), "7")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Trails) != 0 {
		t.Errorf("trails survived a plain save: %+v", doc.Trails)
	}
}

func TestLastWriteWins(t *testing.T) {
	srv := newTestServer(t)
	client := store.NewClient(srv.URL, "")
	ctx := context.Background()

	if err := client.SavePoints(ctx, "7", []*graph.Point{{ID: "p1", Type: "bb", X: 1, Y: 1}}); err != nil {
		t.Fatal(err)
	}
	if err := client.SavePoints(ctx, "7", []*graph.Point{{ID: "p2", Type: "bb", X: 2, Y: 2}}); err != nil {
		t.Fatal(err)
	}

	doc, err := client.LoadBike(ctx, "7")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Points) != 1 || doc.Points[0].ID != "p2" {
		t.Errorf("second write did not replace the first: %+v", doc.Points)
	}
}

func TestBikesAreIsolated(t *testing.T) {
	srv := newTestServer(t)
	client := store.NewClient(srv.URL, "")
	ctx := context.Background()

	if err := client.SavePoints(ctx, "a", []*graph.Point{{ID: "p1", Type: "bb", X: 1, Y: 1}}); err != nil {
		t.Fatal(err)
	}

	doc, err := client.LoadBike(ctx, "b")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Points) != 0 {
		t.Errorf("bike b sees bike a's points: %+v", doc.Points)
	}
}

func TestRejectsInvalidJSON(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/bikes/7/points",
		strings.NewReader("{not json"))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status: %d, want 400", resp.StatusCode)
	}

	// The broken write must not create a document.
	client := store.NewClient(srv.URL, "")
	doc, err := client.LoadBike(context.Background(), "7")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Points) != 0 {
		t.Errorf("invalid write stored points: %+v", doc.Points)
	}
}

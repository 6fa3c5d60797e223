// Package store talks to the persistence backend: four idempotent JSON
// resources keyed by bike id, treated as a last-write-wins document store.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"linkage-tracer/internal/graph"
	"linkage-tracer/internal/measure"
	"linkage-tracer/internal/perspective"
)

// Client issues requests against the backend.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for the given base URL. The bearer token may
// be empty.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// BikeDoc is the bike metadata resource. Trails are read-only history the
// backend computes; the client renders them and never writes them back.
type BikeDoc struct {
	Points                []*graph.Point      `json:"points"`
	Geometry              measure.GeometryDoc `json:"geometry"`
	HeroPerspectivePoints []perspective.Point `json:"hero_perspective_points,omitempty"`
	Trails                []graph.Trail       `json:"point_trails,omitempty"`
}

// loadedPoint accepts both the flat x/y form and the legacy coords pair.
type loadedPoint struct {
	ID     string    `json:"id"`
	Type   string    `json:"type"`
	Name   string    `json:"name,omitempty"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Coords []float64 `json:"coords,omitempty"`
}

func (lp loadedPoint) toPoint() *graph.Point {
	p := &graph.Point{ID: lp.ID, Type: lp.Type, Name: lp.Name, X: lp.X, Y: lp.Y}
	if p.X == 0 && p.Y == 0 && len(lp.Coords) == 2 {
		p.X, p.Y = lp.Coords[0], lp.Coords[1]
	}
	return p
}

// LoadBike fetches the bike resource: points, calibration geometry, and any
// captured perspective points.
func (c *Client) LoadBike(ctx context.Context, bikeID string) (*BikeDoc, error) {
	var raw struct {
		Points                []loadedPoint       `json:"points"`
		Geometry              measure.GeometryDoc `json:"geometry"`
		HeroPerspectivePoints []perspective.Point `json:"hero_perspective_points"`
		PointTrails           []graph.Trail       `json:"point_trails"`
	}
	if err := c.do(ctx, http.MethodGet, "/bikes/"+bikeID, nil, &raw); err != nil {
		return nil, err
	}
	doc := &BikeDoc{
		Geometry:              raw.Geometry,
		HeroPerspectivePoints: raw.HeroPerspectivePoints,
		Trails:                raw.PointTrails,
	}
	for _, lp := range raw.Points {
		doc.Points = append(doc.Points, lp.toPoint())
	}
	return doc, nil
}

// LoadBodies fetches the bodies resource.
func (c *Client) LoadBodies(ctx context.Context, bikeID string) ([]*graph.Body, error) {
	var raw struct {
		Bodies []*graph.Body `json:"bodies"`
	}
	if err := c.do(ctx, http.MethodGet, "/bikes/"+bikeID+"/bodies", nil, &raw); err != nil {
		return nil, err
	}
	return raw.Bodies, nil
}

// SavePoints replaces the stored point list.
func (c *Client) SavePoints(ctx context.Context, bikeID string, points []*graph.Point) error {
	if points == nil {
		points = []*graph.Point{}
	}
	body := map[string]interface{}{"points": points}
	return c.do(ctx, http.MethodPut, "/bikes/"+bikeID+"/points", body, nil)
}

// SaveBodies replaces the stored body list.
func (c *Client) SaveBodies(ctx context.Context, bikeID string, bodies []*graph.Body) error {
	if bodies == nil {
		bodies = []*graph.Body{}
	}
	body := map[string]interface{}{"bodies": bodies}
	return c.do(ctx, http.MethodPut, "/bikes/"+bikeID+"/bodies", body, nil)
}

// SaveGeometry replaces the calibration document in one call.
func (c *Client) SaveGeometry(ctx context.Context, bikeID string, doc measure.GeometryDoc) error {
	return c.do(ctx, http.MethodPut, "/bikes/"+bikeID+"/geometry", doc, nil)
}

// SavePerspective replaces the captured hero-perspective points.
func (c *Client) SavePerspective(ctx context.Context, bikeID string, points []perspective.Point) error {
	if points == nil {
		points = []perspective.Point{}
	}
	body := map[string]interface{}{"points": points}
	return c.do(ctx, http.MethodPut, "/bikes/"+bikeID+"/media/hero/perspective", body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s %s: encode: %w", method, path, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: backend returned %s", method, path, resp.Status)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s %s: decode: %w", method, path, err)
		}
	}
	return nil
}

package store

import (
	"context"
	"log"
	"sync"
	"time"

	"linkage-tracer/internal/graph"
	"linkage-tracer/internal/measure"
	"linkage-tracer/internal/perspective"
	"linkage-tracer/internal/session"
)

// Bridge wires autosave triggers from the interaction layer to the backend.
// Saves are fire-and-forget: each runs in its own goroutine with no retry,
// no coalescing, and no rollback; rapid successive edits may race and the
// last response wins. Failures are logged and surfaced as a transient
// status string.
type Bridge struct {
	Client  *Client
	Session *session.Session

	wg sync.WaitGroup
}

const saveTimeout = 10 * time.Second

// SavePoints snapshots the current point list and persists it. The
// snapshot deep-copies each point: the marshal runs on another goroutine
// and must never read a struct the event thread is still mutating.
func (b *Bridge) SavePoints() {
	bikeID := b.Session.BikeID
	points := make([]*graph.Point, len(b.Session.Graph.Points))
	for i, p := range b.Session.Graph.Points {
		points[i] = p.Clone()
	}
	b.fire("save points", func(ctx context.Context) error {
		return b.Client.SavePoints(ctx, bikeID, points)
	})
}

// SaveBodies snapshots the current body list and persists it, deep-copied
// for the same reason as SavePoints.
func (b *Bridge) SaveBodies() {
	bikeID := b.Session.BikeID
	bodies := make([]*graph.Body, len(b.Session.Graph.Bodies))
	for i, bd := range b.Session.Graph.Bodies {
		bodies[i] = bd.Clone()
	}
	b.fire("save bodies", func(ctx context.Context) error {
		return b.Client.SaveBodies(ctx, bikeID, bodies)
	})
}

// SaveGeometry persists the calibration document.
func (b *Bridge) SaveGeometry(doc measure.GeometryDoc) {
	bikeID := b.Session.BikeID
	b.fire("save geometry", func(ctx context.Context) error {
		return b.Client.SaveGeometry(ctx, bikeID, doc)
	})
}

// SavePerspective persists the captured rim points.
func (b *Bridge) SavePerspective() {
	bikeID := b.Session.BikeID
	points := append([]perspective.Point(nil), b.Session.Capture.Points...)
	b.fire("save perspective", func(ctx context.Context) error {
		return b.Client.SavePerspective(ctx, bikeID, points)
	})
}

// Load fetches all resources for the session's bike and installs them.
func (b *Bridge) Load(ctx context.Context) error {
	doc, err := b.Client.LoadBike(ctx, b.Session.BikeID)
	if err != nil {
		return err
	}
	bodies, err := b.Client.LoadBodies(ctx, b.Session.BikeID)
	if err != nil {
		return err
	}

	b.Session.Graph.SetPoints(doc.Points)
	b.Session.Graph.SetBodies(bodies)
	b.Session.Graph.Trails = doc.Trails
	b.Session.Measures.Restore(doc.Geometry)
	b.Session.Capture.Restore(doc.HeroPerspectivePoints)
	b.Session.Emit(session.EventGraphChanged, nil)
	b.Session.Emit(session.EventMeasuresChanged, nil)
	return nil
}

// Wait blocks until outstanding saves finish. Used on shutdown and in tests.
func (b *Bridge) Wait() {
	b.wg.Wait()
}

func (b *Bridge) fire(op string, fn func(ctx context.Context) error) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.Printf("%s: %v", op, err)
			b.Session.SetStatus("%s failed", op)
			return
		}
		b.Session.SetStatus("%s ok", op)
	}()
}

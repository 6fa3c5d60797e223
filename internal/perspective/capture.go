// Package perspective implements the guided rim-point capture flow and the
// numeric fits derived from it: a least-squares rim circle for the
// wheel-size overlay and a homography for perspective correction.
package perspective

import (
	"fmt"

	"linkage-tracer/pkg/geometry"
)

// Point is a captured rim point in image coordinates, persisted through the
// hero-perspective resource.
type Point struct {
	ID   string  `json:"id,omitempty"`
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Rim point types, four of each per capture.
const (
	TypeRearRim  = "rear_rim"
	TypeFrontRim = "front_rim"
)

const pointsPerRim = 4

// Stage is the current step of the capture sequence.
type Stage int

const (
	StageRear Stage = iota
	StageFront
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageRear:
		return "rear"
	case StageFront:
		return "front"
	default:
		return "done"
	}
}

// Capture accumulates rim points: four on the rear rim, then four on the
// front rim. The stage is derived from the accumulated counts so a capture
// restored from the backend resumes where it stopped.
type Capture struct {
	Points []Point
	nextID int
}

// NewCapture returns an empty capture.
func NewCapture() *Capture {
	return &Capture{nextID: 1}
}

// Restore replaces the captured points from a backend load.
func (c *Capture) Restore(points []Point) {
	c.Points = points
	c.nextID = len(points) + 1
}

// Reset discards all captured points.
func (c *Capture) Reset() {
	c.Points = nil
	c.nextID = 1
}

func (c *Capture) count(typ string) int {
	n := 0
	for _, p := range c.Points {
		if p.Type == typ {
			n++
		}
	}
	return n
}

// Stage returns the rim currently being captured.
func (c *Capture) Stage() Stage {
	if c.count(TypeRearRim) < pointsPerRim {
		return StageRear
	}
	if c.count(TypeFrontRim) < pointsPerRim {
		return StageFront
	}
	return StageDone
}

// Place records a tap at image coordinates as the next rim point of the
// current stage. ok is false once the capture is complete.
func (c *Capture) Place(x, y float64) (Point, bool) {
	stage := c.Stage()
	if stage == StageDone {
		return Point{}, false
	}
	typ := TypeRearRim
	if stage == StageFront {
		typ = TypeFrontRim
	}
	p := Point{
		ID:   fmt.Sprintf("hp%d", c.nextID),
		Type: typ,
		X:    x,
		Y:    y,
	}
	c.nextID++
	c.Points = append(c.Points, p)
	return p, true
}

// RimPoints returns the captured points of one rim type.
func (c *Capture) RimPoints(typ string) []geometry.Point2D {
	var out []geometry.Point2D
	for _, p := range c.Points {
		if p.Type == typ {
			out = append(out, geometry.Point2D{X: p.X, Y: p.Y})
		}
	}
	return out
}

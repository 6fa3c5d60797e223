// Package measure implements declarative frame measurements and the
// pixel-to-millimetre calibration derived from one user-entered length.
package measure

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"linkage-tracer/internal/graph"
)

// Orientation selects how the pixel distance between two anchors is taken.
type Orientation int

const (
	Horizontal   Orientation = iota // |Δx|
	Vertical                        // |Δy|
	PointToPoint                    // Euclidean
)

// Definition names two anchor point types and how to measure between them.
type Definition struct {
	ID             string
	Label          string
	AnchorA        string // point type of the first anchor
	AnchorB        string
	Orientation    Orientation
	ScaleCandidate bool // may the user calibrate from this measurement
	TickA, TickB   bool // perpendicular tick marks at the anchor ends
}

// Measurement ids persisted in the geometry document.
const (
	RearCenter  = "rear_center"
	FrontCenter = "front_center"
	Wheelbase   = "wheelbase"
)

// Defaults returns the built-in frame measurement set.
func Defaults() []Definition {
	return []Definition{
		{ID: RearCenter, Label: "Rear center", AnchorA: "bb", AnchorB: "rear_axle",
			Orientation: Horizontal, ScaleCandidate: true, TickA: true, TickB: true},
		{ID: FrontCenter, Label: "Front center", AnchorA: "bb", AnchorB: "front_axle",
			Orientation: Horizontal, ScaleCandidate: true, TickA: true, TickB: true},
		{ID: Wheelbase, Label: "Wheelbase", AnchorA: "rear_axle", AnchorB: "front_axle",
			Orientation: Horizontal, ScaleCandidate: true, TickB: true},
	}
}

// GeometryDoc is the persisted calibration document, written whole on every
// successful commit.
type GeometryDoc struct {
	ScaleMMPerPx  float64 `json:"scale_mm_per_px"`
	ScaleSource   string  `json:"scale_source"`
	RearCenterMM  float64 `json:"rear_center_mm,omitempty"`
	WheelbaseMM   float64 `json:"wheelbase_mm,omitempty"`
	FrontCenterMM float64 `json:"front_center_mm,omitempty"`
}

// Set holds the measurement definitions, their current millimetre values,
// and the calibration scale with its source.
type Set struct {
	Defs         []Definition
	Values       map[string]float64
	ScaleMMPerPx float64
	ScaleSource  string

	// Editing is the id of the measurement whose input field currently has
	// focus; its value is never clobbered by a recompute.
	Editing string
}

// NewSet returns a Set with the default definitions and no calibration.
func NewSet() *Set {
	return &Set{
		Defs:   Defaults(),
		Values: make(map[string]float64),
	}
}

// Def returns the definition with the given id, or nil.
func (s *Set) Def(id string) *Definition {
	for i := range s.Defs {
		if s.Defs[i].ID == id {
			return &s.Defs[i]
		}
	}
	return nil
}

// PixelDistance resolves the definition's anchors against the graph and
// returns the pixel distance per its orientation. ok is false when an
// anchor is missing.
func PixelDistance(def *Definition, g *graph.Graph) (dpx float64, ok bool) {
	a := g.PointByType(def.AnchorA)
	b := g.PointByType(def.AnchorB)
	if a == nil || b == nil {
		return 0, false
	}
	switch def.Orientation {
	case Horizontal:
		return math.Abs(b.X - a.X), true
	case Vertical:
		return math.Abs(b.Y - a.Y), true
	default:
		return math.Hypot(b.X-a.X, b.Y-a.Y), true
	}
}

// Commit records a user-entered real-world value for one measurement,
// derives the calibration scale from it, marks it as the scale source, and
// recomputes every other measurement. The state is left untouched when the
// value or the pixel distance is unusable.
func (s *Set) Commit(id string, mm float64, g *graph.Graph) (GeometryDoc, error) {
	def := s.Def(id)
	if def == nil || !def.ScaleCandidate {
		return GeometryDoc{}, fmt.Errorf("measurement %q cannot calibrate", id)
	}
	if math.IsNaN(mm) || math.IsInf(mm, 0) || mm <= 0 {
		return GeometryDoc{}, fmt.Errorf("measurement %q: value must be a positive number", id)
	}
	dpx, ok := PixelDistance(def, g)
	if !ok {
		return GeometryDoc{}, fmt.Errorf("measurement %q: anchor points missing", id)
	}
	if dpx <= 0 {
		return GeometryDoc{}, fmt.Errorf("measurement %q: zero pixel distance", id)
	}

	s.ScaleMMPerPx = mm / dpx
	s.ScaleSource = id
	s.Values[id] = mm
	s.Recompute(g)
	return s.Doc(), nil
}

// Recompute re-derives every non-source measurement value from the current
// scale, skipping the one being edited. Measurements with missing anchors
// keep no value.
func (s *Set) Recompute(g *graph.Graph) {
	if s.ScaleMMPerPx <= 0 {
		return
	}
	for i := range s.Defs {
		def := &s.Defs[i]
		if def.ID == s.ScaleSource || def.ID == s.Editing {
			continue
		}
		if dpx, ok := PixelDistance(def, g); ok {
			s.Values[def.ID] = dpx * s.ScaleMMPerPx
		} else {
			delete(s.Values, def.ID)
		}
	}
}

// Doc assembles the geometry document persisted to the backend.
func (s *Set) Doc() GeometryDoc {
	return GeometryDoc{
		ScaleMMPerPx:  s.ScaleMMPerPx,
		ScaleSource:   s.ScaleSource,
		RearCenterMM:  s.Values[RearCenter],
		WheelbaseMM:   s.Values[Wheelbase],
		FrontCenterMM: s.Values[FrontCenter],
	}
}

// Restore loads a previously persisted geometry document into the set.
func (s *Set) Restore(doc GeometryDoc) {
	s.ScaleMMPerPx = doc.ScaleMMPerPx
	s.ScaleSource = doc.ScaleSource
	if doc.RearCenterMM > 0 {
		s.Values[RearCenter] = doc.RearCenterMM
	}
	if doc.WheelbaseMM > 0 {
		s.Values[Wheelbase] = doc.WheelbaseMM
	}
	if doc.FrontCenterMM > 0 {
		s.Values[FrontCenter] = doc.FrontCenterMM
	}
}

var numericInput = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// ParseInput sanitizes typed measurement text: the optional " mm" suffix is
// stripped and only a plain integer or decimal is accepted.
func ParseInput(text string) (float64, error) {
	text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "mm"))
	if !numericInput.MatchString(text) {
		return 0, fmt.Errorf("not a number: %q", text)
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, err
	}
	return v, nil
}

// FormatValue renders a millimetre value with the unit suffix, applied only
// on successful commits.
func FormatValue(mm float64) string {
	return strconv.FormatFloat(math.Round(mm*10)/10, 'f', -1, 64) + " mm"
}

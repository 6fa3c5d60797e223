// Package session holds the mutable annotation state for one bike: the
// geometry graph, view transform, measurement set, perspective capture, and
// the transient interaction state. It is the only mutable container in the
// engine and is discarded wholesale when the bike changes.
package session

import (
	"fmt"
	"sync"

	"linkage-tracer/internal/graph"
	"linkage-tracer/internal/measure"
	"linkage-tracer/internal/perspective"
	"linkage-tracer/internal/view"
)

// EventType identifies engine events the UI can react to.
type EventType int

const (
	EventGraphChanged EventType = iota
	EventSelectionChanged
	EventMeasuresChanged
	EventPerspectiveChanged
	EventStatus
)

// Listener is called when an event occurs.
type Listener func(data interface{})

// Session is the annotation state for one bike.
type Session struct {
	BikeID string

	Graph    *graph.Graph
	View     *view.View
	Measures *measure.Set
	Capture  *perspective.Capture

	// Transient interaction state.
	ActiveType      string // armed point type; "" when disarmed
	ActiveLinkType  string // armed link type for connect mode
	ConnectMode     bool
	PerspectiveMode bool
	SelectedPoint   string
	SelectedBody    string

	mu        sync.RWMutex
	status    string
	listeners map[EventType][]Listener
}

// New creates an empty session for the given bike id.
func New(bikeID string) *Session {
	return &Session{
		BikeID:    bikeID,
		Graph:     graph.New(),
		View:      view.New(),
		Measures:  measure.NewSet(),
		Capture:   perspective.NewCapture(),
		listeners: make(map[EventType][]Listener),
	}
}

// ResetForBike discards the annotation state, keeping registered listeners.
// In-flight saves for the previous bike are not cancelled; stale responses
// are ignorable because the new state never reads them.
func (s *Session) ResetForBike(bikeID string) {
	s.BikeID = bikeID
	s.Graph = graph.New()
	s.View = view.New()
	s.Measures = measure.NewSet()
	s.Capture = perspective.NewCapture()
	s.ActiveType = ""
	s.ActiveLinkType = ""
	s.ConnectMode = false
	s.PerspectiveMode = false
	s.SelectedPoint = ""
	s.SelectedBody = ""
	s.Emit(EventGraphChanged, nil)
	s.Emit(EventSelectionChanged, nil)
}

// On registers an event listener.
func (s *Session) On(event EventType, l Listener) {
	s.mu.Lock()
	s.listeners[event] = append(s.listeners[event], l)
	s.mu.Unlock()
}

// Emit triggers all listeners registered for the event.
func (s *Session) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()
	for _, l := range listeners {
		l(data)
	}
}

// SelectPoint selects a point, clearing any body selection.
func (s *Session) SelectPoint(id string) {
	if s.SelectedPoint == id && s.SelectedBody == "" {
		return
	}
	s.SelectedPoint = id
	s.SelectedBody = ""
	s.Emit(EventSelectionChanged, id)
}

// SelectBody selects a body, clearing any point selection.
func (s *Session) SelectBody(id string) {
	if s.SelectedBody == id && s.SelectedPoint == "" {
		return
	}
	s.SelectedBody = id
	s.SelectedPoint = ""
	s.Emit(EventSelectionChanged, id)
}

// ClearSelection drops any point or body selection.
func (s *Session) ClearSelection() {
	if s.SelectedPoint == "" && s.SelectedBody == "" {
		return
	}
	s.SelectedPoint = ""
	s.SelectedBody = ""
	s.Emit(EventSelectionChanged, nil)
}

// SetStatus records a transient status message and notifies listeners.
// Safe to call from save goroutines.
func (s *Session) SetStatus(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	s.mu.Lock()
	s.status = msg
	s.mu.Unlock()
	s.Emit(EventStatus, msg)
}

// Status returns the last status message.
func (s *Session) Status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

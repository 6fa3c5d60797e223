// Package panels provides the annotation side panel.
package panels

import (
	"fmt"

	"linkage-tracer/internal/interact"
	"linkage-tracer/internal/measure"
	"linkage-tracer/internal/session"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// pointTypes maps the button labels to the stored point types, in display
// order.
var pointTypes = []struct {
	label string
	typ   string
}{
	{"Rear axle", "rear_axle"},
	{"Bottom bracket", "bb"},
	{"Front axle", "front_axle"},
	{"Fixed pivot", "fixed"},
	{"Free point", "free"},
}

var linkTypes = []struct {
	label string
	typ   string
}{
	{"Bar", "bar"},
	{"Shock", "shock"},
}

// MeasureEntry is an entry that also commits its value when focus leaves
// it, matching submit semantics for an abandoned edit.
type MeasureEntry struct {
	widget.Entry
	OnFocusLost func()
}

// NewMeasureEntry creates an empty measurement entry.
func NewMeasureEntry() *MeasureEntry {
	e := &MeasureEntry{}
	e.ExtendBaseWidget(e)
	return e
}

// FocusLost implements fyne.Focusable.
func (e *MeasureEntry) FocusLost() {
	e.Entry.FocusLost()
	if e.OnFocusLost != nil {
		e.OnFocusLost()
	}
}

// SidePanel holds the point placement, linkage, measurement, and
// perspective controls.
type SidePanel struct {
	sess    *session.Session
	machine *interact.Machine
	saver   interact.Saver

	container fyne.CanvasObject

	typeRadio    *widget.RadioGroup
	linkSelect   *widget.Select
	connectCheck *widget.Check

	measureEntries map[string]*MeasureEntry
	strokeEntry    *widget.Entry
	scaleLabel     *widget.Label

	// refreshing suppresses the entry change hooks while refresh pushes
	// recomputed values into them.
	refreshing bool

	perspectiveCheck *widget.Check
	stageLabel       *widget.Label

	statusLabel *widget.Label

	onResetView func()
}

// NewSidePanel builds the panel and subscribes it to session events.
func NewSidePanel(sess *session.Session, machine *interact.Machine, saver interact.Saver, onResetView func()) *SidePanel {
	sp := &SidePanel{
		sess:           sess,
		machine:        machine,
		saver:          saver,
		measureEntries: make(map[string]*MeasureEntry),
		onResetView:    onResetView,
	}

	sp.buildPlacement()
	sp.buildLinkage()
	measureBox := sp.buildMeasurements()
	perspectiveBox := sp.buildPerspective()

	sp.statusLabel = widget.NewLabel("")
	sp.statusLabel.Wrapping = fyne.TextWrapWord

	resetButton := widget.NewButton("Reset view", func() {
		sess.View.Reset()
		if sp.onResetView != nil {
			sp.onResetView()
		}
	})

	sp.container = container.NewVScroll(container.NewVBox(
		widget.NewLabelWithStyle("Points", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		sp.typeRadio,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Linkage", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		sp.linkSelect,
		sp.connectCheck,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Measurements", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		measureBox,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Wheels", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		perspectiveBox,
		widget.NewSeparator(),
		resetButton,
		sp.statusLabel,
	))

	sess.On(session.EventMeasuresChanged, func(interface{}) { sp.refreshMeasurements() })
	sess.On(session.EventGraphChanged, func(interface{}) { sp.refreshMeasurements() })
	sess.On(session.EventSelectionChanged, func(interface{}) { sp.refreshStroke() })
	sess.On(session.EventPerspectiveChanged, func(interface{}) { sp.refreshPerspective() })
	sess.On(session.EventStatus, func(interface{}) {
		sp.statusLabel.SetText(sp.sess.Status())
	})

	sp.refreshMeasurements()
	sp.refreshPerspective()
	return sp
}

// Container returns the panel for embedding in the window layout.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

func (sp *SidePanel) buildPlacement() {
	labels := make([]string, len(pointTypes))
	for i, pt := range pointTypes {
		labels[i] = pt.label
	}
	sp.typeRadio = widget.NewRadioGroup(labels, func(selected string) {
		for _, pt := range pointTypes {
			if pt.label == selected {
				sp.machine.SetType(pt.typ)
				return
			}
		}
		sp.machine.SetType("")
	})
}

// ClearArmedType unchecks the placement radio after a placement or escape
// disarms the active type.
func (sp *SidePanel) ClearArmedType() {
	if sp.sess.ActiveType == "" && sp.typeRadio.Selected != "" {
		sp.typeRadio.SetSelected("")
	}
}

func (sp *SidePanel) buildLinkage() {
	labels := make([]string, len(linkTypes))
	for i, lt := range linkTypes {
		labels[i] = lt.label
	}
	sp.linkSelect = widget.NewSelect(labels, func(selected string) {
		for _, lt := range linkTypes {
			if lt.label == selected {
				sp.machine.SetLinkType(lt.typ)
				return
			}
		}
	})
	sp.linkSelect.SetSelected("Bar")

	sp.connectCheck = widget.NewCheck("Connect points", func(on bool) {
		sp.machine.SetConnectMode(on)
	})
}

func (sp *SidePanel) buildMeasurements() fyne.CanvasObject {
	rows := container.NewVBox()

	for i := range sp.sess.Measures.Defs {
		def := sp.sess.Measures.Defs[i]
		entry := NewMeasureEntry()
		entry.SetPlaceHolder("mm")
		entry.OnChanged = func(string) {
			if sp.refreshing {
				return
			}
			sp.sess.Measures.Editing = def.ID
		}
		entry.OnSubmitted = func(text string) {
			sp.commitMeasurement(def.ID, text)
		}
		entry.OnFocusLost = func() {
			// Commit only an edit in progress; tabbing through an
			// untouched field must not change the scale source.
			if sp.sess.Measures.Editing == def.ID {
				sp.commitMeasurement(def.ID, entry.Text)
			}
		}
		sp.measureEntries[def.ID] = entry
		rows.Add(container.NewBorder(nil, nil, widget.NewLabel(def.Label), nil, entry))
	}

	sp.strokeEntry = widget.NewEntry()
	sp.strokeEntry.SetPlaceHolder("mm")
	sp.strokeEntry.OnSubmitted = func(text string) { sp.commitStroke(text) }
	rows.Add(container.NewBorder(nil, nil, widget.NewLabel("Shock stroke"), nil, sp.strokeEntry))

	sp.scaleLabel = widget.NewLabel("Not calibrated")
	rows.Add(sp.scaleLabel)
	return rows
}

// commitMeasurement parses the entered value and recalibrates from it. A
// rejected commit clears the field back to the last computed value.
func (sp *SidePanel) commitMeasurement(id, text string) {
	sp.sess.Measures.Editing = ""
	mm, err := measure.ParseInput(text)
	if err != nil {
		sp.refreshMeasurements()
		return
	}
	doc, err := sp.sess.Measures.Commit(id, mm, sp.sess.Graph)
	if err != nil {
		sp.sess.SetStatus("%v", err)
		sp.refreshMeasurements()
		return
	}
	sp.saver.SaveGeometry(doc)
	sp.sess.Emit(session.EventMeasuresChanged, nil)
}

// commitStroke updates the shock body's stroke. Unparseable input clears
// the stored stroke so a stale overlay never lingers.
func (sp *SidePanel) commitStroke(text string) {
	body := sp.sess.Graph.ShockBody()
	if body == nil {
		sp.sess.SetStatus("no shock body to set stroke on")
		return
	}
	if mm, err := measure.ParseInput(text); err == nil && mm > 0 {
		body.Stroke = &mm
	} else {
		body.Stroke = nil
		sp.strokeEntry.SetText("")
	}
	sp.saver.SaveBodies()
	sp.sess.Emit(session.EventGraphChanged, nil)
}

// refreshMeasurements pushes recomputed values into the entries, skipping
// the one being edited.
func (sp *SidePanel) refreshMeasurements() {
	sp.refreshing = true
	for id, entry := range sp.measureEntries {
		if id == sp.sess.Measures.Editing {
			continue
		}
		if mm, ok := sp.sess.Measures.Values[id]; ok {
			entry.SetText(measure.FormatValue(mm))
		} else {
			entry.SetText("")
		}
	}
	sp.refreshing = false
	if scale := sp.sess.Measures.ScaleMMPerPx; scale > 0 {
		sp.scaleLabel.SetText(fmt.Sprintf("Scale: %.4f mm/px (%s)", scale, sp.sess.Measures.ScaleSource))
	} else {
		sp.scaleLabel.SetText("Not calibrated")
	}
	sp.ClearArmedType()
	sp.refreshConnect()
}

// refreshConnect unchecks the connect box after the machine exits the
// mode, so re-checking it starts a fresh chain.
func (sp *SidePanel) refreshConnect() {
	if !sp.sess.ConnectMode && sp.connectCheck.Checked {
		sp.connectCheck.SetChecked(false)
	}
}

func (sp *SidePanel) refreshStroke() {
	body := sp.sess.Graph.ShockBody()
	if body == nil || body.Stroke == nil {
		sp.strokeEntry.SetText("")
		return
	}
	sp.strokeEntry.SetText(measure.FormatValue(*body.Stroke))
}

func (sp *SidePanel) buildPerspective() fyne.CanvasObject {
	sp.stageLabel = widget.NewLabel("")

	sp.perspectiveCheck = widget.NewCheck("Mark rim points", func(on bool) {
		sp.machine.SetPerspectiveMode(on)
		sp.refreshPerspective()
	})
	resetButton := widget.NewButton("Clear rim points", func() {
		sp.machine.ResetPerspective()
	})

	return container.NewVBox(sp.perspectiveCheck, sp.stageLabel, resetButton)
}

func (sp *SidePanel) refreshPerspective() {
	stage := sp.sess.Capture.Stage()
	sp.stageLabel.SetText(fmt.Sprintf("Capture: %s (%d points)", stage, len(sp.sess.Capture.Points)))
	if !sp.sess.PerspectiveMode && sp.perspectiveCheck.Checked {
		sp.perspectiveCheck.SetChecked(false)
	}
}

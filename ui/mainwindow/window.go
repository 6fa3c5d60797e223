// Package mainwindow assembles the application window.
package mainwindow

import (
	"context"
	"log"
	"time"

	"linkage-tracer/internal/config"
	"linkage-tracer/internal/interact"
	"linkage-tracer/internal/photo"
	"linkage-tracer/internal/session"
	"linkage-tracer/internal/store"
	"linkage-tracer/ui/canvas"
	"linkage-tracer/ui/panels"
	"linkage-tracer/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const loadTimeout = 15 * time.Second

// MainWindow owns the Fyne window and the wiring between the canvas, the
// side panel, and the persistence bridge.
type MainWindow struct {
	fyneApp fyne.App
	win     fyne.Window
	prefs   *prefs.Prefs

	sess    *session.Session
	bridge  *store.Bridge
	machine *interact.Machine
	canvas  *canvas.Canvas
	panel   *panels.SidePanel
}

// New builds the window for the configured bike.
func New(cfg *config.Config) *MainWindow {
	appPrefs := prefs.Load()

	bikeID := cfg.BikeID
	if bikeID == "" {
		bikeID = appPrefs.LastBikeID
	}

	sess := session.New(bikeID)
	client := store.NewClient(cfg.APIBaseURL, cfg.APIToken)
	bridge := &store.Bridge{Client: client, Session: sess}
	machine := interact.New(sess, bridge, nil)

	mw := &MainWindow{
		fyneApp: app.NewWithID("linkage-tracer"),
		prefs:   appPrefs,
		sess:    sess,
		bridge:  bridge,
		machine: machine,
	}

	mw.canvas = canvas.New(sess, machine)
	machine.Invalidate = mw.canvas.Invalidate
	mw.panel = panels.NewSidePanel(sess, machine, bridge, mw.canvas.Invalidate)

	sess.On(session.EventGraphChanged, func(interface{}) { mw.canvas.Invalidate() })
	sess.On(session.EventSelectionChanged, func(interface{}) { mw.canvas.Invalidate() })
	sess.On(session.EventMeasuresChanged, func(interface{}) { mw.canvas.Invalidate() })
	sess.On(session.EventPerspectiveChanged, func(interface{}) { mw.canvas.Invalidate() })

	mw.win = mw.fyneApp.NewWindow("Linkage Tracer")
	mw.win.SetContent(container.NewBorder(nil, nil, nil, mw.panel.Container(), mw.canvas))
	mw.restoreWindowSize()

	// Arrow and escape keys drive the machine unless a text entry has
	// focus.
	mw.win.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch mw.win.Canvas().Focused().(type) {
		case *widget.Entry, *panels.MeasureEntry:
			return
		}
		mw.canvas.TypedKey(ev)
	})

	mw.win.SetCloseIntercept(func() {
		mw.saveWindowSize()
		mw.prefs.LastBikeID = mw.sess.BikeID
		if err := mw.prefs.Save(); err != nil {
			log.Printf("failed to save preferences: %v", err)
		}
		mw.bridge.Wait()
		mw.win.Close()
	})

	if cfg.PhotoPath != "" {
		mw.loadPhoto(cfg.PhotoPath)
	}
	return mw
}

// ShowAndRun loads the stored annotations, shows the window and blocks
// until it closes.
func (mw *MainWindow) ShowAndRun() {
	if mw.sess.BikeID != "" {
		go mw.loadBike()
	}
	mw.win.ShowAndRun()
}

func (mw *MainWindow) loadBike() {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	if err := mw.bridge.Load(ctx); err != nil {
		log.Printf("load bike %s: %v", mw.sess.BikeID, err)
		mw.sess.SetStatus("load failed: %v", err)
		return
	}
	mw.sess.SetStatus("bike %s loaded", mw.sess.BikeID)
	mw.canvas.Invalidate()
}

func (mw *MainWindow) loadPhoto(path string) {
	p, err := photo.Load(path)
	if err != nil {
		log.Printf("load photo: %v", err)
		mw.sess.SetStatus("photo failed: %v", err)
		return
	}
	mw.canvas.SetPhoto(p)
	if p.Downscaled {
		log.Printf("photo %s downscaled to %dx%d", path, p.Width, p.Height)
	}
}

func (mw *MainWindow) restoreWindowSize() {
	w, h := mw.prefs.WindowWidth, mw.prefs.WindowHeight
	if w <= 0 || h <= 0 {
		w, h = 1280, 800
	}
	mw.win.Resize(fyne.NewSize(float32(w), float32(h)))
}

func (mw *MainWindow) saveWindowSize() {
	size := mw.win.Canvas().Size()
	mw.prefs.WindowWidth = float64(size.Width)
	mw.prefs.WindowHeight = float64(size.Height)
}

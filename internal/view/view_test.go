package view

import (
	"math"
	"testing"
	"time"
)

func newTestView() *View {
	v := New()
	v.SetImageSize(2000, 1500)
	v.SetViewport(1000, 600)
	v.Reset()
	return v
}

func TestResetFitToWidth(t *testing.T) {
	v := newTestView()
	if v.Scale != 0.5 {
		t.Errorf("fit-to-width scale: got %v, want 0.5", v.Scale)
	}
	if v.MinScale != 0.5 {
		t.Errorf("min scale: got %v, want 0.5", v.MinScale)
	}
	if v.Tx != 0 {
		t.Errorf("tx after reset: got %v, want 0", v.Tx)
	}
}

func TestInverseTransform(t *testing.T) {
	v := newTestView()
	v.ZoomAt(500, 300, 1.7)

	coords := [][2]float64{{0, 0}, {123.4, 567.8}, {2000, 1500}, {-5, 9}}
	for _, c := range coords {
		sx, sy := v.ImageToScreen(c[0], c[1])
		x, y := v.ScreenToImage(sx, sy)
		if math.Abs(x-c[0]) > 1e-9 || math.Abs(y-c[1]) > 1e-9 {
			t.Errorf("round trip (%v,%v) -> (%v,%v)", c[0], c[1], x, y)
		}
	}
}

func TestZoomAnchorsCursor(t *testing.T) {
	v := newTestView()
	sx, sy := 400.0, 250.0
	ix, iy := v.ScreenToImage(sx, sy)

	v.ZoomAt(sx, sy, 2.0)

	gx, gy := v.ImageToScreen(ix, iy)
	if math.Abs(gx-sx) > 1e-9 || math.Abs(gy-sy) > 1e-9 {
		t.Errorf("anchored point moved: (%v,%v) != (%v,%v)", gx, gy, sx, sy)
	}
}

func TestZoomClamping(t *testing.T) {
	v := newTestView()

	if hit := v.ZoomAt(500, 300, 100); hit {
		t.Error("zoom-in reported floor hit")
	}
	if v.Scale != MaxScale {
		t.Errorf("max clamp: got %v, want %v", v.Scale, MaxScale)
	}

	if hit := v.ZoomAt(500, 300, 0.01); !hit {
		t.Error("zoom below floor not reported")
	}
	if v.Scale != v.MinScale {
		t.Errorf("floor clamp: got %v, want %v", v.Scale, v.MinScale)
	}
}

func TestClampPanLocksSmallAxis(t *testing.T) {
	v := newTestView()
	// At min scale the scaled width equals the viewport width.
	v.PanBy(250, 0)
	if v.Tx != 0 {
		t.Errorf("horizontal pan not locked: tx=%v", v.Tx)
	}

	// Zoomed in, panning is free but may not expose a margin.
	v.ZoomAt(500, 300, 2)
	v.PanBy(1e6, 1e6)
	if v.Tx != 0 || v.Ty != 0 {
		t.Errorf("positive margin exposed: tx=%v ty=%v", v.Tx, v.Ty)
	}
	v.PanBy(-1e9, -1e9)
	wantTx := 1000 - 2000*2.0
	wantTy := 600 - 1500*2.0
	if v.Tx != wantTx || v.Ty != wantTy {
		t.Errorf("negative clamp: tx=%v ty=%v, want %v %v", v.Tx, v.Ty, wantTx, wantTy)
	}
}

func TestCenterAnimation(t *testing.T) {
	v := newTestView()
	v.ZoomAt(500, 300, 2)
	v.PanBy(-1e9, -1e9)

	start := time.Now()
	v.StartCenterAnimation(start)
	if !v.Animating() {
		t.Fatal("animation did not start")
	}

	if !v.StepAnimation(start.Add(100 * time.Millisecond)) {
		t.Fatal("animation finished too early")
	}
	midTx := v.Tx

	if v.StepAnimation(start.Add(400 * time.Millisecond)) {
		t.Fatal("animation still running after duration")
	}
	wantTx := (1000 - 2000*2.0) / 2
	if math.Abs(v.Tx-wantTx) > 1e-9 {
		t.Errorf("final tx: got %v, want %v", v.Tx, wantTx)
	}
	if midTx == wantTx {
		t.Error("mid-animation position already at target")
	}
}

func TestOpsWithoutDimensionsAreNoOps(t *testing.T) {
	v := New()
	v.Reset()
	v.PanBy(10, 10)
	if hit := v.ZoomAt(0, 0, 2); hit {
		t.Error("floor hit without dimensions")
	}
	if v.Scale != 1 || v.Tx != 0 || v.Ty != 0 {
		t.Errorf("state mutated without dimensions: %+v", v)
	}
}

package cubeview

import (
	"image/color"
	"testing"
)

func TestRecorderLimitKeepsNewestFrames(t *testing.T) {
	r := NewRecorder(10, 10)
	r.Limit = 2
	for i := 0; i < 5; i++ {
		r.Begin(Color{R: float64(i)})
		_ = r.End()
	}
	frames := r.Frames()
	if len(frames) != 2 {
		t.Fatalf("frames = %d, want 2", len(frames))
	}
	if frames[0].Clear.R != 3 || frames[1].Clear.R != 4 {
		t.Errorf("kept frames %v, %v", frames[0].Clear, frames[1].Clear)
	}
}

func TestRecorderFrameIndexCountsDroppedFrames(t *testing.T) {
	s, r := newTestScene(t)
	r.Limit = 1
	_ = s.Redraw(TriggerLoad)
	_ = s.Redraw(TriggerManual)
	if got := r.LastFrame().Calls[0].Frame; got != 1 {
		t.Errorf("frame index = %d, want 1", got)
	}
}

func TestRecorderReset(t *testing.T) {
	s, r := newTestScene(t)
	_ = s.Redraw(TriggerLoad)
	r.Reset()
	if len(r.Frames()) != 0 {
		t.Error("Reset kept frames")
	}
	if len(r.LastFrame().Calls) != 0 {
		t.Error("LastFrame of empty recorder has calls")
	}
}

func TestRasterizeClearOnly(t *testing.T) {
	r := NewRecorder(8, 8)
	r.Begin(ColorSky)
	_ = r.End()
	img := r.Rasterize(r.LastFrame())
	got := img.NRGBAAt(4, 4)
	want := ColorSky.RGBA()
	if got.R != want.R || got.G != want.G || got.B != want.B {
		t.Errorf("pixel = %v, want %v", got, want)
	}
}

func TestRasterizeDrawsCube(t *testing.T) {
	s, r := newTestScene(t)
	p := s.Params()
	p.Translation[0], p.Translation[1] = 200, 200
	if err := s.SetParams(p, TriggerLoad); err != nil {
		t.Fatal(err)
	}
	img := r.Rasterize(r.LastFrame())
	// Looking straight at the front face: its color (times a same-colored
	// texture) fills the center.
	// Sample off the sticker diagonals so one triangle covers the pixel.
	c := FaceColors[0]
	wantG := uint8(int(c[1]) * int(c[1]) / 255)
	got := img.NRGBAAt(205, 203)
	if diff(got.G, wantG) > 2 || got.A != 255 {
		t.Errorf("center pixel = %v, want green %d", got, wantG)
	}
	if corner := img.NRGBAAt(1, 1); corner != (color.NRGBA{128, 179, 255, 255}) {
		t.Errorf("corner pixel = %v, want clear color", corner)
	}
}

func diff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

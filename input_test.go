package cubeview

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// fakeInput is one tick of scripted input.
type fakeInput struct {
	just  map[ebiten.Key]bool
	held  map[ebiten.Key]int // press duration in ticks
	x, y  int
	mouse bool
}

func newFakeInput() *fakeInput {
	return &fakeInput{just: map[ebiten.Key]bool{}, held: map[ebiten.Key]int{}}
}

func (f *fakeInput) press(k ebiten.Key) *fakeInput {
	f.just[k] = true
	f.held[k] = 1
	return f
}

func (f *fakeInput) hold(k ebiten.Key, ticks int) *fakeInput {
	f.held[k] = ticks
	return f
}

func (f *fakeInput) JustPressed(k ebiten.Key) bool  { return f.just[k] }
func (f *fakeInput) Pressed(k ebiten.Key) bool      { return f.held[k] > 0 }
func (f *fakeInput) PressDuration(k ebiten.Key) int { return f.held[k] }
func (f *fakeInput) Cursor() (int, int)             { return f.x, f.y }
func (f *fakeInput) MousePressed() bool             { return f.mouse }

func newTestControls(t *testing.T) (*Controls, *Scene, *Recorder) {
	t.Helper()
	s, r := newTestScene(t)
	return NewControls(NewTransformSliders(s, 400, 400)), s, r
}

func TestControlsSelectSlider(t *testing.T) {
	c, s, _ := newTestControls(t)
	if err := c.Update(s, newFakeInput().press(ebiten.KeyDown)); err != nil {
		t.Fatal(err)
	}
	if c.Selected != 1 {
		t.Errorf("Selected = %d, want 1", c.Selected)
	}
	if err := c.Update(s, newFakeInput().press(ebiten.KeyUp)); err != nil {
		t.Fatal(err)
	}
	if err := c.Update(s, newFakeInput().press(ebiten.KeyUp)); err != nil {
		t.Fatal(err)
	}
	if c.Selected != len(c.Sliders)-1 {
		t.Errorf("Selected = %d, want wrap to %d", c.Selected, len(c.Sliders)-1)
	}
}

func TestControlsNudgeRedraws(t *testing.T) {
	c, s, r := newTestControls(t)
	c.Selected = 1 // y translation
	if err := c.Update(s, newFakeInput().press(ebiten.KeyRight)); err != nil {
		t.Fatal(err)
	}
	if got := s.Params().Translation[1]; got != 1 {
		t.Errorf("translation y = %g, want 1", got)
	}
	if n := len(r.Frames()); n != 1 {
		t.Errorf("frames = %d, want 1", n)
	}
}

func TestControlsKeyRepeat(t *testing.T) {
	c, s, _ := newTestControls(t)
	// Held but not yet repeating.
	if err := c.Update(s, newFakeInput().hold(ebiten.KeyRight, keyRepeatDelay)); err != nil {
		t.Fatal(err)
	}
	if got := c.Sliders[0].Value(); got != 0 {
		t.Errorf("value = %g before the repeat delay, want 0", got)
	}
	if err := c.Update(s, newFakeInput().hold(ebiten.KeyRight, keyRepeatDelay+keyRepeatInterval)); err != nil {
		t.Fatal(err)
	}
	if got := c.Sliders[0].Value(); got != 1 {
		t.Errorf("value = %g after the repeat delay, want 1", got)
	}
}

func TestRepeating(t *testing.T) {
	tests := []struct {
		ticks int
		want  bool
	}{
		{0, false},
		{1, true},
		{2, false},
		{keyRepeatDelay, false},
		{keyRepeatDelay + 1, false},
		{keyRepeatDelay + keyRepeatInterval, true},
		{keyRepeatDelay + 2*keyRepeatInterval, true},
	}
	for _, tt := range tests {
		in := newFakeInput().hold(ebiten.KeyLeft, tt.ticks)
		if got := repeating(in, ebiten.KeyLeft); got != tt.want {
			t.Errorf("repeating(%d ticks) = %v, want %v", tt.ticks, got, tt.want)
		}
	}
}

func TestControlsMoveKeys(t *testing.T) {
	c, s, _ := newTestControls(t)
	in := newFakeInput().press(ebiten.KeyR).hold(ebiten.KeyShift, 5)
	if err := c.Update(s, in); err != nil {
		t.Fatal(err)
	}
	if err := c.Update(s, newFakeInput().press(ebiten.KeyU).hold(ebiten.KeyControl, 5)); err != nil {
		t.Fatal(err)
	}
	if got := FormatMoves(s.History()); got != "R' U2" {
		t.Errorf("history = %q, want %q", got, "R' U2")
	}
}

func TestControlsRotationMoveSyncsSliders(t *testing.T) {
	c, s, _ := newTestControls(t)
	if err := c.Update(s, newFakeInput().press(ebiten.KeyY)); err != nil {
		t.Fatal(err)
	}
	// angleY is the fifth slider.
	if got := c.Sliders[4].Value(); got != 90 {
		t.Errorf("angleY slider = %g, want 90", got)
	}
}

func TestControlsScreenshotAndReload(t *testing.T) {
	c, s, _ := newTestControls(t)
	reloads := 0
	c.OnReload = func() { reloads++ }
	in := newFakeInput().press(ebiten.KeyP).press(ebiten.KeyC)
	if err := c.Update(s, in); err != nil {
		t.Fatal(err)
	}
	if s.PendingScreenshots() != 1 {
		t.Errorf("pending screenshots = %d, want 1", s.PendingScreenshots())
	}
	if reloads != 1 {
		t.Errorf("reloads = %d, want 1", reloads)
	}
}

func TestControlsDrag(t *testing.T) {
	c, s, _ := newTestControls(t)
	in := newFakeInput()
	in.mouse = true
	in.x = overlayTrackX + overlayTrackW/2
	in.y = overlayTop + overlayRowHeight*2 + 1 // third row: z translation
	if err := c.Update(s, in); err != nil {
		t.Fatal(err)
	}
	if c.Selected != 2 {
		t.Errorf("Selected = %d, want 2", c.Selected)
	}
	if got := s.Params().Translation[2]; got != 200 {
		t.Errorf("translation z = %g, want 200", got)
	}

	// The drag stays on its slider when the cursor leaves the row.
	in.y = overlayTop + 1
	in.x = overlayTrackX + overlayTrackW
	if err := c.Update(s, in); err != nil {
		t.Fatal(err)
	}
	if got := s.Params().Translation[2]; got != 400 {
		t.Errorf("translation z = %g, want 400", got)
	}
	if got := s.Params().Translation[0]; got != 0 {
		t.Errorf("translation x = %g, want 0", got)
	}
}

func TestSliderAt(t *testing.T) {
	if _, ok := sliderAt(0, 10, 9); ok {
		t.Error("hit left of the track")
	}
	if i, ok := sliderAt(overlayTrackX, overlayTop, 9); !ok || i != 0 {
		t.Errorf("sliderAt(first row) = %d, %v", i, ok)
	}
	if _, ok := sliderAt(overlayTrackX, overlayTop+overlayRowHeight*9, 9); ok {
		t.Error("hit below the last row")
	}
}

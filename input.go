package cubeview

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// --- Constants ---

const (
	keyRepeatDelay    = 24 // ticks before a held arrow key repeats
	keyRepeatInterval = 3  // ticks between repeats

	// Slider overlay layout, in screen pixels.
	overlayRowHeight = 16
	overlayTop       = 4
	overlayTrackX    = 110
	overlayTrackW    = 120
)

// moveKeys maps keys to move layers. Shift makes a move prime, Control a
// half turn.
var moveKeys = []struct {
	key   ebiten.Key
	layer byte
}{
	{ebiten.KeyF, 'F'}, {ebiten.KeyR, 'R'}, {ebiten.KeyU, 'U'},
	{ebiten.KeyB, 'B'}, {ebiten.KeyL, 'L'}, {ebiten.KeyD, 'D'},
	{ebiten.KeyM, 'M'}, {ebiten.KeyE, 'E'}, {ebiten.KeyS, 'S'},
	{ebiten.KeyX, 'x'}, {ebiten.KeyY, 'y'}, {ebiten.KeyZ, 'z'},
}

// --- Input sources ---

// InputSource is the per-tick input state Controls reads. ebitenInput reads
// the real devices; tests supply their own.
type InputSource interface {
	JustPressed(k ebiten.Key) bool
	Pressed(k ebiten.Key) bool
	PressDuration(k ebiten.Key) int
	Cursor() (x, y int)
	MousePressed() bool
}

type ebitenInput struct{}

func (ebitenInput) JustPressed(k ebiten.Key) bool  { return inpututil.IsKeyJustPressed(k) }
func (ebitenInput) Pressed(k ebiten.Key) bool      { return ebiten.IsKeyPressed(k) }
func (ebitenInput) PressDuration(k ebiten.Key) int { return inpututil.KeyPressDuration(k) }
func (ebitenInput) Cursor() (int, int)             { return ebiten.CursorPosition() }
func (ebitenInput) MousePressed() bool             { return ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) }

// --- Controls ---

// Controls maps keyboard and mouse input onto the transform sliders, moves
// and screenshots of a scene.
//
//	Up/Down or Tab    select slider
//	Left/Right        adjust selected slider (hold to repeat)
//	F R U B L D M E S x y z   apply move (Shift: prime, Ctrl: double)
//	P                 screenshot
//	C                 reload textures (OnReload)
//
// Dragging inside a slider track of the overlay sets that slider directly.
type Controls struct {
	Sliders  []*Slider
	Selected int

	// OnReload is called when the reload key is pressed.
	OnReload func()

	dragging int // slider index under an active drag, or -1
}

// NewControls returns controls over sliders with the first one selected.
func NewControls(sliders []*Slider) *Controls {
	return &Controls{Sliders: sliders, dragging: -1}
}

// Update reads one tick of input and applies it to scene. It must run on the
// goroutine that owns the scene.
func (c *Controls) Update(scene *Scene, in InputSource) error {
	if len(c.Sliders) > 0 {
		n := len(c.Sliders)
		switch {
		case in.JustPressed(ebiten.KeyDown), in.JustPressed(ebiten.KeyTab) && !in.Pressed(ebiten.KeyShift):
			c.Selected = (c.Selected + 1) % n
		case in.JustPressed(ebiten.KeyUp), in.JustPressed(ebiten.KeyTab):
			c.Selected = (c.Selected + n - 1) % n
		}
		if repeating(in, ebiten.KeyRight) {
			if err := c.Sliders[c.Selected].Nudge(1); err != nil {
				return err
			}
		}
		if repeating(in, ebiten.KeyLeft) {
			if err := c.Sliders[c.Selected].Nudge(-1); err != nil {
				return err
			}
		}
		if err := c.updateDrag(in); err != nil {
			return err
		}
	}

	if in.JustPressed(ebiten.KeyP) {
		scene.Screenshot("manual")
	}
	if in.JustPressed(ebiten.KeyC) && c.OnReload != nil {
		c.OnReload()
	}

	for _, mk := range moveKeys {
		if !in.JustPressed(mk.key) {
			continue
		}
		m := Move{
			Layer:  mk.layer,
			Double: in.Pressed(ebiten.KeyControl),
			Prime:  in.Pressed(ebiten.KeyShift),
		}
		if m.Double {
			m.Prime = false
		}
		if err := scene.Turn(m); err != nil {
			return err
		}
		SyncSliders(c.Sliders, scene.Params())
	}
	return nil
}

// repeating reports a key press on the first tick and then every
// keyRepeatInterval ticks once keyRepeatDelay has passed.
func repeating(in InputSource, k ebiten.Key) bool {
	d := in.PressDuration(k)
	if d == 1 {
		return true
	}
	return d > keyRepeatDelay && (d-keyRepeatDelay)%keyRepeatInterval == 0
}

func (c *Controls) updateDrag(in InputSource) error {
	if !in.MousePressed() {
		c.dragging = -1
		return nil
	}
	x, y := in.Cursor()
	if c.dragging < 0 {
		i, ok := sliderAt(x, y, len(c.Sliders))
		if !ok {
			return nil
		}
		c.dragging = i
		c.Selected = i
	}
	s := c.Sliders[c.dragging]
	t := float64(x-overlayTrackX) / overlayTrackW
	t = min(max(t, 0), 1)
	return s.SetValue(s.Min + t*(s.Max-s.Min))
}

// sliderAt returns the slider whose overlay track contains (x, y).
func sliderAt(x, y, n int) (int, bool) {
	if x < overlayTrackX || x > overlayTrackX+overlayTrackW || y < overlayTop {
		return 0, false
	}
	i := (y - overlayTop) / overlayRowHeight
	if i >= n {
		return 0, false
	}
	return i, true
}

package cubeview

import (
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

var (
	overlayTrackColor    = color.RGBA{0, 0, 0, 96}
	overlayFillColor     = color.RGBA{255, 255, 255, 160}
	overlaySelectedColor = color.RGBA{255, 220, 64, 200}
)

// Overlay draws the slider panel, FPS/TPS and the move history on top of
// the canvas. The FPS text refreshes about twice a second.
type Overlay struct {
	Visible bool

	stats string
	since float64
}

// NewOverlay returns a visible overlay.
func NewOverlay() *Overlay {
	return &Overlay{Visible: true}
}

// Update refreshes the FPS text.
func (o *Overlay) Update(dt float64) {
	o.since += dt
	if o.since < 0.5 && o.stats != "" {
		return
	}
	o.since = 0
	o.stats = fmt.Sprintf("FPS: %.1f  TPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS())
}

// Draw renders the overlay onto screen.
func (o *Overlay) Draw(screen *ebiten.Image, c *Controls, history []Move) {
	if !o.Visible {
		return
	}
	for i, s := range c.Sliders {
		y := overlayTop + i*overlayRowHeight
		label := s.Label
		if i == c.Selected {
			label = "> " + label
		}
		ebitenutil.DebugPrintAt(screen, label, 4, y)

		fillRect(screen, image.Rect(overlayTrackX, y+4, overlayTrackX+overlayTrackW, y+10), overlayTrackColor)
		if span := s.Max - s.Min; span > 0 {
			w := int(float64(overlayTrackW) * (s.Value() - s.Min) / span)
			clr := overlayFillColor
			if i == c.Selected {
				clr = overlaySelectedColor
			}
			fillRect(screen, image.Rect(overlayTrackX, y+4, overlayTrackX+w, y+10), clr)
		}
		ebitenutil.DebugPrintAt(screen, s.String(), overlayTrackX+overlayTrackW+6, y)
	}

	h := screen.Bounds().Dy()
	if len(history) > 0 {
		const shown = 12
		recent := history[max(0, len(history)-shown):]
		ebitenutil.DebugPrintAt(screen, "moves: "+FormatMoves(recent), 4, h-32)
	}
	ebitenutil.DebugPrintAt(screen, o.stats, 4, h-16)
}

func fillRect(dst *ebiten.Image, r image.Rectangle, clr color.Color) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	dst.SubImage(r).(*ebiten.Image).Fill(clr)
}

package cubeview

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
)

// Game runs a Viewer inside the ebiten game loop. The ebiten goroutine owns
// the scene: posted events, input, tweens and scripts are all applied from
// Update.
type Game struct {
	viewer   *Viewer
	canvas   *Canvas
	controls *Controls
	overlay  *Overlay
	input    InputSource
	ctx      context.Context

	// QuitWhenScriptDone ends the game once an attached script has finished
	// and its screenshots are written.
	QuitWhenScriptDone bool

	loaded bool
}

// NewGame wraps a viewer whose scene draws into canvas.
func NewGame(ctx context.Context, v *Viewer, canvas *Canvas) *Game {
	g := &Game{
		viewer:   v,
		canvas:   canvas,
		controls: NewControls(v.Sliders),
		overlay:  NewOverlay(),
		input:    ebitenInput{},
		ctx:      ctx,
	}
	g.controls.OnReload = func() { v.ReloadImages(ctx) }
	return g
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	s := g.viewer.Scene
	log := s.Logger()
	if !g.loaded {
		g.loaded = true
		if err := g.viewer.Load(); err != nil {
			log.Error("initial draw", "err", err)
		}
	}

	if err := s.ProcessEvents(); err != nil {
		log.Error("process events", "err", err)
	}
	SyncSliders(g.controls.Sliders, s.Params())
	if err := g.controls.Update(s, g.input); err != nil {
		log.Error("input", "err", err)
	}
	dt := 1 / float64(ebiten.TPS())
	if err := s.Update(dt); err != nil {
		log.Error("update", "err", err)
	}
	g.overlay.Update(dt)

	if g.QuitWhenScriptDone {
		if r := s.Script(); r != nil && r.Done() && s.PendingScreenshots() == 0 {
			return ebiten.Termination
		}
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	s := g.viewer.Scene
	screen.DrawImage(g.canvas.Image(), nil)
	if s.PendingScreenshots() > 0 {
		if _, err := s.FlushScreenshots(captureImage(g.canvas.Image())); err != nil {
			s.Logger().Error("screenshot", "err", err)
		}
	}
	g.overlay.Draw(screen, g.controls, s.History())
}

// Layout implements ebiten.Game. The canvas size is fixed by the config.
func (g *Game) Layout(_, _ int) (int, int) {
	return g.canvas.Size()
}

// RunOptions configures Run.
type RunOptions struct {
	// Logger defaults to slog.Default.
	Logger *slog.Logger
	// Progress reports image loading progress.
	Progress func(done, total int)
	// Setup runs before the loop starts; use it to attach scripts, observers
	// or a control server.
	Setup func(*Game) error
}

// Run loads the configured images, opens a window and runs the viewer until
// the window closes or ctx is cancelled.
func Run(ctx context.Context, cfg Config, opts RunOptions) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	images, err := LoadConfigImages(ctx, cfg, LoadOptions{Logger: opts.Logger, Progress: opts.Progress})
	if err != nil {
		return err
	}
	mode, err := ParseTextureMode(cfg.TextureMode)
	if err != nil {
		return err
	}
	canvas, err := NewCanvas(cfg.Width, cfg.Height, mode)
	if err != nil {
		return err
	}
	v, err := NewViewer(canvas, cfg, images, opts.Logger)
	if err != nil {
		return err
	}
	defer v.Scene.Close()

	g := NewGame(ctx, v, canvas)
	if opts.Setup != nil {
		if err := opts.Setup(g); err != nil {
			return err
		}
	}

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

// Viewer returns the viewer the game runs.
func (g *Game) Viewer() *Viewer {
	return g.viewer
}

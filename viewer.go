package cubeview

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
)

// Viewer bundles a scene holding the textured cube with the sliders that
// drive it.
type Viewer struct {
	Scene   *Scene
	Sliders []*Slider
	Config  Config
}

// NewViewer builds the cube on b from images (one per face) and configures
// a scene from cfg. Nothing is drawn until Load.
func NewViewer(b Backend, cfg Config, images []image.Image, logger *slog.Logger) (*Viewer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	drawables, err := BuildCube(b, images, cfg.CubeSize)
	if err != nil {
		return nil, err
	}
	s := NewScene(b)
	s.SetLogger(logger)
	s.ClearColor = cfg.Clear()
	s.Depth = cfg.Depth
	s.ScreenshotDir = cfg.ScreenshotDir
	s.SetDebugMode(cfg.Debug)
	s.SetTurnDuration(cfg.TurnDuration.Duration())
	s.params = cfg.InitialParams()
	s.Add(drawables...)

	return &Viewer{
		Scene:   s,
		Sliders: NewTransformSliders(s, cfg.Width, cfg.Height),
		Config:  cfg,
	}, nil
}

// Load performs the initial draw.
func (v *Viewer) Load() error {
	return v.Scene.Redraw(TriggerLoad)
}

// ReloadImages loads the configured sources again off the owning goroutine
// and posts the result as an images event. The load stops when ctx is done
// or the scene is closed.
func (v *Viewer) ReloadImages(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(v.Scene.Context(), cancel)
	go func() {
		defer cancel()
		defer stop()
		images, err := LoadImages(ctx, v.Config.ImageSources(), v.loadOptions())
		if err != nil {
			if errors.Is(err, context.Canceled) {
				v.Scene.Logger().Debug("reload images cancelled")
				return
			}
			v.Scene.Logger().Error("reload images", "err", err)
			return
		}
		if err := v.Scene.Post(ImagesEvent(images)); err != nil {
			v.Scene.Logger().Error("reload images", "err", err)
		}
	}()
}

func (v *Viewer) loadOptions() LoadOptions {
	return LoadOptions{
		Fallback:       v.Config.FallbackImage,
		MaxTextureSize: v.Config.MaxTextureSize,
		Logger:         v.Scene.Logger(),
	}
}

// LoadConfigImages loads the images named by cfg.
func LoadConfigImages(ctx context.Context, cfg Config, opts LoadOptions) ([]image.Image, error) {
	opts.Fallback = cfg.FallbackImage
	opts.MaxTextureSize = cfg.MaxTextureSize
	images, err := LoadImages(ctx, cfg.ImageSources(), opts)
	if err != nil {
		return nil, fmt.Errorf("load images: %w", err)
	}
	return images, nil
}

package cubeview

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Trigger identifies why a scene was redrawn.
type Trigger uint8

const (
	TriggerLoad   Trigger = iota // initial draw after images are loaded
	TriggerSlider                // translation, rotation or scale changed
	TriggerTurn                  // a move was applied
	TriggerTween                 // a rotation tween advanced
	TriggerScript                // a script step changed the scene
	TriggerImages                // textures were replaced
	TriggerManual                // explicit redraw request
)

var triggerNames = [...]string{"load", "slider", "turn", "tween", "script", "images", "manual"}

func (t Trigger) String() string {
	if int(t) < len(triggerNames) {
		return triggerNames[t]
	}
	return fmt.Sprintf("trigger(%d)", t)
}

// FrameStats describes one completed redraw.
type FrameStats struct {
	Frame    uint64
	Trigger  Trigger
	Draws    int
	Vertices int
	Params   TransformParameters
	Duration time.Duration
	Failed   int
}

const defaultEventQueueSize = 256

// Scene owns the shared transform parameters and an ordered list of
// drawables, and redraws all of them on every trigger.
//
// Scene state is owned by one goroutine (the UI goroutine). Other goroutines
// communicate through Post; the owner applies posted events in ProcessEvents.
type Scene struct {
	// ClearColor fills the viewport before each redraw.
	ClearColor Color
	// Depth is the projection depth passed to ComposeTransform.
	Depth float64

	backend   Backend
	params    TransformParameters
	drawables []*Drawable

	events chan Event
	closed atomic.Bool

	// ctx is cancelled by Close; background work for the scene derives
	// from it.
	ctx    context.Context
	cancel context.CancelFunc

	logger *slog.Logger
	debug  bool

	frame     uint64
	observers []func(FrameStats)

	mu   sync.Mutex // guards last
	last FrameStats

	// Moves and tweens (move.go, animation.go)
	turnDuration time.Duration
	tweens       []*RotationTween
	history      []Move

	// Screenshot labels waiting for the next presented frame.
	screenshotQueue []string
	ScreenshotDir   string

	runner *ScriptRunner
}

// NewScene creates an empty scene drawing through b with identity
// parameters.
func NewScene(b Backend) *Scene {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scene{
		ClearColor:    ColorSky,
		Depth:         DefaultDepth,
		backend:       b,
		params:        IdentityTransform(),
		events:        make(chan Event, defaultEventQueueSize),
		logger:        slog.Default(),
		ScreenshotDir: "screenshots",
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Context returns a context that is cancelled when the scene is closed.
func (s *Scene) Context() context.Context {
	return s.ctx
}

// Backend returns the backend the scene draws through.
func (s *Scene) Backend() Backend {
	return s.backend
}

// SetLogger replaces the scene logger. A nil logger restores slog.Default.
func (s *Scene) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	s.logger = l
}

// Logger returns the scene logger.
func (s *Scene) Logger() *slog.Logger {
	return s.logger
}

// SetDebugMode enables per-frame timing logs.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
}

// Add appends drawables. Draw order is insertion order.
func (s *Scene) Add(ds ...*Drawable) {
	s.drawables = append(s.drawables, ds...)
}

// Drawables returns the scene's drawables. The returned slice MUST NOT be
// mutated.
func (s *Scene) Drawables() []*Drawable {
	return s.drawables
}

// Params returns a copy of the current transform parameters.
func (s *Scene) Params() TransformParameters {
	return s.params
}

// OnFrame registers fn to be called on the owning goroutine after every
// redraw.
func (s *Scene) OnFrame(fn func(FrameStats)) {
	s.observers = append(s.observers, fn)
}

// Snapshot returns the stats of the last redraw. Safe for concurrent use.
func (s *Scene) Snapshot() FrameStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Redraw draws every drawable once, in insertion order, with the current
// parameters. A failing drawable does not stop the others; all errors are
// joined.
func (s *Scene) Redraw(trigger Trigger) error {
	if s.closed.Load() {
		return ErrSceneClosed
	}
	t0 := time.Now()

	var errs []error
	stats := FrameStats{Trigger: trigger, Params: s.params}

	s.backend.Begin(s.ClearColor)
	for _, d := range s.drawables {
		d.SetPosition(&s.params)
		if err := d.Draw(s.backend, s.Depth); err != nil {
			errs = append(errs, err)
			stats.Failed++
			continue
		}
		stats.Draws++
		stats.Vertices += d.geom.drawCount()
	}
	if err := s.backend.End(); err != nil {
		errs = append(errs, fmt.Errorf("end frame: %w", err))
	}

	s.frame++
	stats.Frame = s.frame
	stats.Duration = time.Since(t0)

	s.mu.Lock()
	s.last = stats
	s.mu.Unlock()

	if s.debug {
		s.debugLog(stats)
	}
	for _, fn := range s.observers {
		fn(stats)
	}
	return errors.Join(errs...)
}

// SetParams replaces all parameters and redraws.
func (s *Scene) SetParams(p TransformParameters, trigger Trigger) error {
	s.params = p
	return s.Redraw(trigger)
}

// SetTranslation sets one translation component and redraws.
func (s *Scene) SetTranslation(axis Axis, v float64) error {
	if axis > AxisZ {
		return ErrUnknownAxis
	}
	s.params.Translation[axis] = v
	return s.Redraw(TriggerSlider)
}

// SetRotationDegrees converts deg to radians, stores it and redraws.
func (s *Scene) SetRotationDegrees(axis Axis, deg float64) error {
	if axis > AxisZ {
		return ErrUnknownAxis
	}
	s.params.Rotation[axis] = DegreesToRadians(deg)
	return s.Redraw(TriggerSlider)
}

// SetScale sets one scale component and redraws. Zero and negative values
// are accepted.
func (s *Scene) SetScale(axis Axis, v float64) error {
	if axis > AxisZ {
		return ErrUnknownAxis
	}
	s.params.Scale[axis] = v
	return s.Redraw(TriggerSlider)
}

// ReplaceImages uploads new textures. Drawable i uses images[Geometry.Group].
func (s *Scene) ReplaceImages(images []image.Image) error {
	var errs []error
	for _, d := range s.drawables {
		g := d.geom.Group
		if g < 0 || g >= len(images) {
			errs = append(errs, fmt.Errorf("drawable %q: no image for group %d", d.Name(), g))
			continue
		}
		if err := d.SetImage(s.backend, images[g]); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	return s.Redraw(TriggerImages)
}

// Update advances tweens and the attached script runner by dt seconds. It
// redraws only when a tween moved.
func (s *Scene) Update(dt float64) error {
	var errs []error
	if s.runner != nil {
		if err := s.runner.step(s, dt); err != nil {
			errs = append(errs, err)
		}
	}
	if s.advanceTweens(dt) {
		if err := s.Redraw(TriggerTween); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close disposes every drawable. Further redraws and posts fail with
// ErrSceneClosed.
func (s *Scene) Close() {
	if s.closed.Swap(true) {
		return
	}
	s.cancel()
	for _, d := range s.drawables {
		d.Dispose()
	}
}

package cubeview

import (
	"context"
	"fmt"
	"time"
)

// HeadlessOptions configures RunHeadless.
type HeadlessOptions struct {
	// Script, when set, is played and the run ends once it is done.
	Script *ScriptRunner
	// TPS is the update rate. Defaults to 60.
	TPS int
	// MaxTicks, when positive, ends the run after that many updates.
	MaxTicks int
}

// RunHeadless drives v, whose scene must draw into r, without a window.
// Posted events, tweens and scripts are processed at opts.TPS; screenshots
// are written from the software rasterization of the last recorded frame.
// Without a script or MaxTicks it runs until ctx is cancelled.
func RunHeadless(ctx context.Context, v *Viewer, r *Recorder, opts HeadlessOptions) error {
	if opts.TPS <= 0 {
		opts.TPS = 60
	}
	s := v.Scene
	if opts.Script != nil {
		s.SetScript(opts.Script)
	}
	if err := v.Load(); err != nil {
		return fmt.Errorf("initial draw: %w", err)
	}

	dt := 1 / float64(opts.TPS)
	ticker := time.NewTicker(time.Second / time.Duration(opts.TPS))
	defer ticker.Stop()

	for tick := 0; opts.MaxTicks <= 0 || tick < opts.MaxTicks; tick++ {
		if err := s.ProcessEvents(); err != nil {
			s.Logger().Error("process events", "err", err)
		}
		if err := s.Update(dt); err != nil {
			return err
		}
		if s.PendingScreenshots() > 0 {
			if _, err := s.FlushScreenshots(r.Rasterize(r.LastFrame())); err != nil {
				return err
			}
		}
		if opts.Script != nil && opts.Script.Done() {
			return nil
		}
		// Scripts run as fast as possible; interactive runs are paced.
		if opts.Script != nil {
			if err := ctx.Err(); err != nil {
				return err
			}
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	return nil
}

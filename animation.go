package cubeview

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// RotationTween animates one rotation axis of a scene toward a target angle.
// The scene advances it from Update; callers normally never touch it.
type RotationTween struct {
	Axis  Axis
	From  float64
	To    float64
	tween *gween.Tween
	Done  bool
}

// newRotationTween eases from -> to over seconds using ease.InOutQuad.
func newRotationTween(axis Axis, from, to float64, seconds float32) *RotationTween {
	return &RotationTween{
		Axis:  axis,
		From:  from,
		To:    to,
		tween: gween.New(float32(from), float32(to), seconds, ease.InOutQuad),
	}
}

// Update advances the tween by dt seconds and returns the current angle.
// The final value is exactly To, not its float32 approximation.
func (t *RotationTween) Update(dt float32) float64 {
	if t.Done {
		return t.To
	}
	val, finished := t.tween.Update(dt)
	if finished {
		t.Done = true
		return t.To
	}
	return float64(val)
}

// startTween queues a rotation of delta radians on axis. A tween already
// running on the same axis is completed first so deltas accumulate.
func (s *Scene) startTween(axis Axis, delta float64) {
	for _, tw := range s.tweens {
		if tw.Axis == axis && !tw.Done {
			tw.Done = true
			s.params.Rotation[axis] = tw.To
		}
	}
	from := s.params.Rotation[axis]
	s.tweens = append(s.tweens, newRotationTween(axis, from, from+delta, float32(s.turnDuration.Seconds())))
}

// advanceTweens steps every active tween and reports whether any rotation
// changed. Finished tweens are dropped.
func (s *Scene) advanceTweens(dt float64) bool {
	if len(s.tweens) == 0 {
		return false
	}
	live := s.tweens[:0]
	for _, tw := range s.tweens {
		if tw.Done {
			continue
		}
		s.params.Rotation[tw.Axis] = tw.Update(float32(dt))
		if !tw.Done {
			live = append(live, tw)
		}
	}
	for i := len(live); i < len(s.tweens); i++ {
		s.tweens[i] = nil
	}
	s.tweens = live
	return true
}

// Tweening reports whether a rotation tween is running.
func (s *Scene) Tweening() bool {
	for _, tw := range s.tweens {
		if !tw.Done {
			return true
		}
	}
	return false
}

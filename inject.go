package cubeview

import (
	"context"
	"errors"
	"fmt"
	"image"
)

// EventKind identifies a posted scene event.
type EventKind uint8

const (
	EventTranslate EventKind = iota // Value is the new translation on Axis
	EventRotate                     // Value is the new rotation on Axis, in degrees
	EventScale                      // Value is the new scale on Axis
	EventTurn                       // Moves are applied in order
	EventParams                     // Params replaces all parameters
	EventImages                     // Images replace the textures
	EventRedraw                     // redraw with no change
	EventCall                       // Call runs on the owning goroutine
)

// Event is a change request queued with Scene.Post and applied by
// Scene.ProcessEvents on the owning goroutine.
type Event struct {
	Kind   EventKind
	Axis   Axis
	Value  float64
	Moves  []Move
	Params TransformParameters
	Images []image.Image
	Call   func(*Scene) error
	done   chan error
}

// TranslateEvent sets one translation component.
func TranslateEvent(axis Axis, v float64) Event {
	return Event{Kind: EventTranslate, Axis: axis, Value: v}
}

// RotateEvent sets one rotation component, given in degrees.
func RotateEvent(axis Axis, deg float64) Event {
	return Event{Kind: EventRotate, Axis: axis, Value: deg}
}

// ScaleEvent sets one scale component.
func ScaleEvent(axis Axis, v float64) Event {
	return Event{Kind: EventScale, Axis: axis, Value: v}
}

// TurnEvent applies moves.
func TurnEvent(moves ...Move) Event {
	return Event{Kind: EventTurn, Moves: moves}
}

// ImagesEvent replaces every texture.
func ImagesEvent(images []image.Image) Event {
	return Event{Kind: EventImages, Images: images}
}

// Post queues ev without blocking. Safe for concurrent use.
func (s *Scene) Post(ev Event) error {
	if s.closed.Load() {
		return ErrSceneClosed
	}
	select {
	case s.events <- ev:
		return nil
	default:
		return ErrEventQueueFull
	}
}

// Do runs fn on the goroutine that owns the scene, during its next
// ProcessEvents, and waits for the result. It returns ctx's error if the
// scene does not get to fn in time; fn may still run later.
func (s *Scene) Do(ctx context.Context, fn func(*Scene) error) error {
	done := make(chan error, 1)
	if err := s.Post(Event{Kind: EventCall, Call: fn, done: done}); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the number of queued events.
func (s *Scene) Pending() int {
	return len(s.events)
}

// ProcessEvents applies every queued event in order. Each event mutates the
// parameters and then redraws the scene.
func (s *Scene) ProcessEvents() error {
	var errs []error
	for {
		select {
		case ev := <-s.events:
			if err := s.apply(ev); err != nil {
				errs = append(errs, err)
			}
		default:
			return errors.Join(errs...)
		}
	}
}

func (s *Scene) apply(ev Event) error {
	switch ev.Kind {
	case EventTranslate:
		return s.SetTranslation(ev.Axis, ev.Value)
	case EventRotate:
		return s.SetRotationDegrees(ev.Axis, ev.Value)
	case EventScale:
		return s.SetScale(ev.Axis, ev.Value)
	case EventTurn:
		return s.Turn(ev.Moves...)
	case EventParams:
		return s.SetParams(ev.Params, TriggerSlider)
	case EventImages:
		return s.ReplaceImages(ev.Images)
	case EventRedraw:
		return s.Redraw(TriggerManual)
	case EventCall:
		err := ev.Call(s)
		if ev.done != nil {
			ev.done <- err
			return nil
		}
		return err
	default:
		return fmt.Errorf("cubeview: unknown event kind %d", ev.Kind)
	}
}

package cubeview

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPostAppliesInOrder(t *testing.T) {
	s, r := newTestScene(t)
	events := []Event{
		TranslateEvent(AxisX, 10),
		TranslateEvent(AxisX, 20),
		RotateEvent(AxisY, 90),
		ScaleEvent(AxisZ, 3),
	}
	for _, ev := range events {
		if err := s.Post(ev); err != nil {
			t.Fatal(err)
		}
	}
	if s.Pending() != len(events) {
		t.Errorf("pending = %d, want %d", s.Pending(), len(events))
	}
	if err := s.ProcessEvents(); err != nil {
		t.Fatal(err)
	}
	p := s.Params()
	assertNear(t, "translation x", p.Translation[0], 20)
	assertNear(t, "rotation y", p.Rotation[1], DegreesToRadians(90))
	assertNear(t, "scale z", p.Scale[2], 3)
	if len(r.Frames()) != len(events) {
		t.Errorf("frames = %d, want one per event", len(r.Frames()))
	}
	if s.Pending() != 0 {
		t.Errorf("pending = %d after drain", s.Pending())
	}
}

func TestPostQueueFull(t *testing.T) {
	s, _ := newTestScene(t)
	for i := 0; i < defaultEventQueueSize; i++ {
		if err := s.Post(Event{Kind: EventRedraw}); err != nil {
			t.Fatalf("post %d: %v", i, err)
		}
	}
	if err := s.Post(Event{Kind: EventRedraw}); !errors.Is(err, ErrEventQueueFull) {
		t.Errorf("err = %v, want ErrEventQueueFull", err)
	}
}

func TestPostAfterClose(t *testing.T) {
	s, _ := newTestScene(t)
	s.Close()
	if err := s.Post(Event{Kind: EventRedraw}); !errors.Is(err, ErrSceneClosed) {
		t.Errorf("err = %v, want ErrSceneClosed", err)
	}
}

func TestPostFromManyGoroutines(t *testing.T) {
	s, _ := newTestScene(t)
	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func() {
			for i := 0; i < 10; i++ {
				_ = s.Post(TranslateEvent(AxisX, float64(i)))
			}
			done <- struct{}{}
		}()
	}
	for g := 0; g < 8; g++ {
		<-done
	}
	if s.Pending() != 80 {
		t.Errorf("pending = %d, want 80", s.Pending())
	}
	if err := s.ProcessEvents(); err != nil {
		t.Fatal(err)
	}
}

func TestTurnEvent(t *testing.T) {
	s, _ := newTestScene(t)
	moves, _ := ParseMoves("R U'")
	_ = s.Post(TurnEvent(moves...))
	if err := s.ProcessEvents(); err != nil {
		t.Fatal(err)
	}
	if got := FormatMoves(s.History()); got != "R U'" {
		t.Errorf("history = %q", got)
	}
}

func TestDoRunsOnProcessEvents(t *testing.T) {
	s, _ := newTestScene(t)
	result := make(chan error, 1)
	go func() {
		result <- s.Do(context.Background(), func(*Scene) error {
			return errors.New("boom")
		})
	}()
	deadline := time.Now().Add(2 * time.Second)
	for s.Pending() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if err := s.ProcessEvents(); err != nil {
		t.Fatalf("ProcessEvents: %v (Do errors go to the caller)", err)
	}
	if err := <-result; err == nil || err.Error() != "boom" {
		t.Errorf("Do err = %v, want boom", err)
	}
}

func TestDoTimeout(t *testing.T) {
	s, _ := newTestScene(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := s.Do(ctx, func(*Scene) error { return nil })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

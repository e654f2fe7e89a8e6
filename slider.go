package cubeview

import (
	"math"
	"strconv"
)

// Slider is a numeric input with a range, step and display precision. It is
// the model behind one on-screen (or remote) slider; rendering is up to the
// caller.
type Slider struct {
	ID        string
	Label     string
	Min       float64
	Max       float64
	Step      float64
	Precision int

	// OnSlide is called with the new value whenever SetValue changes it.
	OnSlide func(v float64) error

	value float64
}

// NewSlider returns a slider with min 0, max 1, step 1 and precision 0.
func NewSlider(id, label string) *Slider {
	return &Slider{ID: id, Label: label, Min: 0, Max: 1, Step: 1}
}

// Value returns the current value.
func (s *Slider) Value() float64 {
	return s.value
}

// snap clamps v to [Min, Max], snaps it to the step grid anchored at Min and
// rounds it to Precision decimals.
func (s *Slider) snap(v float64) float64 {
	if math.IsNaN(v) {
		v = s.Min
	}
	v = math.Max(s.Min, math.Min(s.Max, v))
	if s.Step > 0 {
		v = s.Min + math.Round((v-s.Min)/s.Step)*s.Step
		v = math.Min(v, s.Max)
	}
	p := math.Pow(10, float64(s.Precision))
	return math.Round(v*p) / p
}

// SetValue stores v after clamping and snapping and notifies OnSlide when the
// stored value changed.
func (s *Slider) SetValue(v float64) error {
	v = s.snap(v)
	if v == s.value {
		return nil
	}
	s.value = v
	if s.OnSlide != nil {
		return s.OnSlide(v)
	}
	return nil
}

// init sets the value without notifying.
func (s *Slider) init(v float64) *Slider {
	s.value = s.snap(v)
	return s
}

// Nudge moves the value by n steps.
func (s *Slider) Nudge(n int) error {
	step := s.Step
	if step <= 0 {
		step = (s.Max - s.Min) / 100
	}
	return s.SetValue(s.value + float64(n)*step)
}

// String formats the value with the slider's precision.
func (s *Slider) String() string {
	return strconv.FormatFloat(s.value, 'f', s.Precision, 64)
}

// NewTransformSliders builds the nine transform sliders for a viewport of
// w x h pixels, initialized from the scene parameters. Each slider writes its
// component and redraws the scene. They must be driven from the goroutine
// that owns the scene.
func NewTransformSliders(scene *Scene, w, h int) []*Slider {
	p := scene.Params()
	deg := p.RotationDegrees()
	maxT := [3]float64{float64(w), float64(h), float64(h)}
	var out []*Slider
	for _, a := range []Axis{AxisX, AxisY, AxisZ} {
		s := NewSlider(a.String(), a.String())
		s.Max = maxT[a]
		s.OnSlide = func(v float64) error { return scene.SetTranslation(a, v) }
		out = append(out, s.init(p.Translation[a]))
	}
	for _, a := range []Axis{AxisX, AxisY, AxisZ} {
		s := NewSlider("angle"+a.upper(), "angle"+a.upper())
		s.Max = 360
		s.OnSlide = func(v float64) error { return scene.SetRotationDegrees(a, v) }
		out = append(out, s.init(normalizeDegrees(deg[a])))
	}
	for _, a := range []Axis{AxisX, AxisY, AxisZ} {
		s := NewSlider("scale"+a.upper(), "scale"+a.upper())
		s.Min, s.Max, s.Step, s.Precision = -5, 5, 0.01, 2
		s.OnSlide = func(v float64) error { return scene.SetScale(a, v) }
		out = append(out, s.init(p.Scale[a]))
	}
	return out
}

// SyncSliders reloads slider values from the scene parameters without
// notifying. Used after moves or remote changes alter the parameters.
func SyncSliders(sliders []*Slider, p TransformParameters) {
	deg := p.RotationDegrees()
	for i, s := range sliders {
		if i >= 9 {
			return
		}
		a := Axis(i % 3)
		switch i / 3 {
		case 0:
			s.init(p.Translation[a])
		case 1:
			s.init(normalizeDegrees(deg[a]))
		case 2:
			s.init(p.Scale[a])
		}
	}
}

// normalizeDegrees wraps d into [0, 360).
func normalizeDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

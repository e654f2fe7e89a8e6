package cubeview

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ScriptStep is a single action in a script.
//
//	translate, rotate, scale: set Axis to Value (rotate takes degrees)
//	turn:       apply Moves, e.g. "R U R' U'"
//	wait:       idle for Frames updates or Seconds
//	screenshot: capture the next presented frame as Label
type ScriptStep struct {
	Action  string  `json:"action" yaml:"action"`
	Axis    string  `json:"axis,omitempty" yaml:"axis,omitempty"`
	Value   float64 `json:"value,omitempty" yaml:"value,omitempty"`
	Moves   string  `json:"moves,omitempty" yaml:"moves,omitempty"`
	Label   string  `json:"label,omitempty" yaml:"label,omitempty"`
	Frames  int     `json:"frames,omitempty" yaml:"frames,omitempty"`
	Seconds float64 `json:"seconds,omitempty" yaml:"seconds,omitempty"`
}

// script is the top-level structure of a script file.
type script struct {
	Steps []ScriptStep `json:"steps" yaml:"steps"`
}

// ScriptRunner plays a script against a scene, one step per Update. Attach
// it with Scene.SetScript.
type ScriptRunner struct {
	steps     []ScriptStep
	cursor    int
	waitCount int
	waitTime  float64
	done      bool
}

// ParseScript parses a script. JSON is detected by a leading '{'; anything
// else is parsed as YAML.
func ParseScript(data []byte) (*ScriptRunner, error) {
	var sc script
	trimmed := strings.TrimSpace(string(data))
	var err error
	if strings.HasPrefix(trimmed, "{") {
		err = json.Unmarshal(data, &sc)
	} else {
		err = yaml.Unmarshal(data, &sc)
	}
	if err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i, st := range sc.Steps {
		if err := st.validate(); err != nil {
			return nil, fmt.Errorf("parse script: step %d: %w", i, err)
		}
	}
	return &ScriptRunner{steps: sc.Steps}, nil
}

// LoadScript reads and parses a script file.
func LoadScript(path string) (*ScriptRunner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script file: %w", err)
	}
	return ParseScript(data)
}

func (st ScriptStep) validate() error {
	switch st.Action {
	case "translate", "rotate", "scale":
		if _, err := ParseAxis(st.Axis); err != nil {
			return fmt.Errorf("%s: %w", st.Action, err)
		}
	case "turn":
		if _, err := ParseMoves(st.Moves); err != nil {
			return err
		}
	case "wait", "screenshot":
	default:
		return fmt.Errorf("unknown action %q", st.Action)
	}
	return nil
}

// SetScript attaches a runner to the scene. Scene.Update advances it.
func (s *Scene) SetScript(r *ScriptRunner) {
	s.runner = r
}

// Script returns the attached runner, or nil.
func (s *Scene) Script() *ScriptRunner {
	return s.runner
}

// Done reports whether every step has run.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// step runs at most one script step. Called from Scene.Update.
func (r *ScriptRunner) step(s *Scene, dt float64) error {
	if r.done {
		return nil
	}
	// Let posted events and running tweens settle before advancing.
	if s.Pending() > 0 || s.Tweening() {
		return nil
	}
	if r.waitCount > 0 {
		r.waitCount--
		return nil
	}
	if r.waitTime > 0 {
		r.waitTime -= dt
		return nil
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return nil
	}

	st := r.steps[r.cursor]
	r.cursor++

	var err error
	switch st.Action {
	case "translate", "rotate", "scale":
		err = r.applyComponent(s, st)
	case "turn":
		var moves []Move
		if moves, err = ParseMoves(st.Moves); err == nil {
			err = s.Turn(moves...)
		}
	case "screenshot":
		s.Screenshot(st.Label)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
		r.waitTime = st.Seconds
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && r.waitTime <= 0 {
		r.done = true
	}
	if err != nil {
		return fmt.Errorf("script step %d (%s): %w", r.cursor-1, st.Action, err)
	}
	return nil
}

func (r *ScriptRunner) applyComponent(s *Scene, st ScriptStep) error {
	axis, err := ParseAxis(st.Axis)
	if err != nil {
		return err
	}
	p := s.Params()
	switch st.Action {
	case "translate":
		p.Translation[axis] = st.Value
	case "rotate":
		p.Rotation[axis] = DegreesToRadians(st.Value)
	case "scale":
		p.Scale[axis] = st.Value
	}
	return s.SetParams(p, TriggerScript)
}

// ScreenshotLabels returns the sanitized labels of the script's screenshot
// steps in order.
func (r *ScriptRunner) ScreenshotLabels() []string {
	var out []string
	for _, st := range r.steps {
		if st.Action == "screenshot" {
			out = append(out, sanitizeLabel(st.Label))
		}
	}
	return out
}

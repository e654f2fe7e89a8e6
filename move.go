package cubeview

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// MoveKind groups moves by what they act on.
type MoveKind uint8

const (
	MoveFace     MoveKind = iota // F R U B L D: one outer layer
	MoveSlice                    // M E S: a middle layer
	MoveRotation                 // x y z: the whole cube
)

// Move is one turn in standard cube notation.
type Move struct {
	Layer  byte // one of FRUBLDMESxyz
	Prime  bool // counter-clockwise
	Double bool // half turn
}

// String formats the move in notation, e.g. "R'", "U2", "x".
func (m Move) String() string {
	s := string(m.Layer)
	switch {
	case m.Double:
		s += "2"
	case m.Prime:
		s += "'"
	}
	return s
}

// Kind reports whether the move turns a face, a slice or the whole cube.
func (m Move) Kind() MoveKind {
	switch m.Layer {
	case 'M', 'E', 'S':
		return MoveSlice
	case 'x', 'y', 'z':
		return MoveRotation
	default:
		return MoveFace
	}
}

// Angle returns the signed turn angle in radians.
func (m Move) Angle() float64 {
	a := math.Pi / 2
	if m.Double {
		a = math.Pi
	}
	if m.Prime {
		a = -a
	}
	return a
}

// rotationAxis maps x, y, z to the scene rotation axis.
func (m Move) rotationAxis() Axis {
	switch m.Layer {
	case 'y':
		return AxisY
	case 'z':
		return AxisZ
	default:
		return AxisX
	}
}

const (
	tokenMove = iota
)

var moveLexer *lexmachine.Lexer

func init() {
	moveLexer = lexmachine.NewLexer()
	moveLexer.Add([]byte("[FRUBLDMESxyz](2'?|2`?|'|`)?"), func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(tokenMove, string(m.Bytes), m), nil
	})
	moveLexer.Add([]byte("[ \t\r\n,]+"), func(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
		return nil, nil
	})
	if err := moveLexer.Compile(); err != nil {
		panic("cubeview: compile move lexer: " + err.Error())
	}
}

// ParseMove parses a single move such as "F", "R'", "U`" or "x2".
func ParseMove(s string) (Move, error) {
	moves, err := ParseMoves(s)
	if err != nil {
		return Move{}, err
	}
	if len(moves) != 1 {
		return Move{}, fmt.Errorf("%w: %q is not a single move", ErrUnknownMove, s)
	}
	return moves[0], nil
}

// ParseMoves parses a sequence of moves separated by spaces, tabs, newlines
// or commas. Separators are optional, so "RUR'U'" is four moves. Both ' and `
// mark a prime move; a trailing 2 marks a half turn, and a prime after the 2
// ("R2'") is accepted but ignored since a half turn has no direction.
func ParseMoves(text string) ([]Move, error) {
	scanner, err := moveLexer.Scanner([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("create move scanner: %w", err)
	}
	var moves []Move
	for tok, err, eos := scanner.Next(); !eos; tok, err, eos = scanner.Next() {
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnknownMove, err)
		}
		lexeme := string(tok.(*lexmachine.Token).Lexeme)
		m := Move{Layer: lexeme[0]}
		suffix := lexeme[1:]
		m.Double = strings.HasPrefix(suffix, "2")
		m.Prime = !m.Double && suffix != ""
		moves = append(moves, m)
	}
	return moves, nil
}

// FormatMoves joins moves with spaces.
func FormatMoves(moves []Move) string {
	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}

// Turn applies moves one at a time, redrawing after each. Whole-cube
// rotations change the scene rotation (tweened when a turn duration is set);
// face and slice moves are recorded and redrawn without changing geometry.
func (s *Scene) Turn(moves ...Move) error {
	var errs []error
	for _, m := range moves {
		s.history = append(s.history, m)
		if m.Kind() == MoveRotation {
			s.rotateCube(m.rotationAxis(), m.Angle())
		}
		s.logger.Debug("turn", "move", m.String(), "kind", m.Kind())
		if err := s.Redraw(TriggerTurn); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// History returns every move applied so far.
func (s *Scene) History() []Move {
	return append([]Move(nil), s.history...)
}

// SetTurnDuration sets how long whole-cube rotations take. Zero applies them
// instantly.
func (s *Scene) SetTurnDuration(d time.Duration) {
	s.turnDuration = d
}

func (s *Scene) rotateCube(axis Axis, delta float64) {
	if s.turnDuration <= 0 {
		s.params.Rotation[axis] += delta
		return
	}
	s.startTween(axis, delta)
}

package cubeview

import (
	"errors"
	"image/color"
	"strings"
)

// Color is a straight-alpha RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// ColorSky is the clear color the scene starts with.
var ColorSky = Color{0.5, 0.7, 1.0, 1.0}

// RGBA converts c to a premultiplied color.RGBA.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A)*255 + 0.5),
		G: uint8(clamp01(c.G*c.A)*255 + 0.5),
		B: uint8(clamp01(c.B*c.A)*255 + 0.5),
		A: uint8(clamp01(c.A)*255 + 0.5),
	}
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}

// Axis selects one component of a translation, rotation or scale triple.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// String returns "x", "y" or "z".
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "?"
	}
}

func (a Axis) upper() string {
	return strings.ToUpper(a.String())
}

// ParseAxis accepts "x", "y" or "z" (either case).
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x", "X":
		return AxisX, nil
	case "y", "Y":
		return AxisY, nil
	case "z", "Z":
		return AxisZ, nil
	}
	return 0, ErrUnknownAxis
}

const (
	// VerticesPerDraw is the vertex count of a single drawable draw call:
	// three quads of two triangles each.
	VerticesPerDraw = 3 * 3 * 2

	// FaceCount is the number of cube faces, and the number of images a cube
	// scene needs.
	FaceCount = 6

	// maxVertices is the largest vertex count addressable by uint16 indices.
	maxVertices = 1<<16 - 1
)

// Sentinel errors.
var (
	ErrNoTransform     = errors.New("cubeview: drawable has no transform parameters")
	ErrDisposed        = errors.New("cubeview: drawable is disposed")
	ErrEmptyViewport   = errors.New("cubeview: backend reports an empty viewport")
	ErrNilImage        = errors.New("cubeview: nil image")
	ErrUnknownAxis     = errors.New("cubeview: unknown axis")
	ErrEventQueueFull  = errors.New("cubeview: event queue is full")
	ErrTooManySources  = errors.New("cubeview: too many image sources")
	ErrUnknownMove     = errors.New("cubeview: unknown move")
	ErrSceneClosed     = errors.New("cubeview: scene is closed")
	ErrForeignTexture  = errors.New("cubeview: texture belongs to another backend")
	ErrInvalidGeometry = errors.New("cubeview: invalid geometry")
)

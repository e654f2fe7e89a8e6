package cubeview

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultDepth is the depth of the projection volume in pixels.
const DefaultDepth = 400

// TransformParameters is the translation, rotation and scale applied to every
// drawable in a scene. Rotation is in radians.
type TransformParameters struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Vec3
	Scale       mgl64.Vec3
}

// IdentityTransform returns parameters with zero translation and rotation and
// unit scale.
func IdentityTransform() TransformParameters {
	return TransformParameters{Scale: mgl64.Vec3{1, 1, 1}}
}

// Projection maps pixel space (origin top-left, Y down, Z in [-depth/2,
// depth/2]) to clip space.
//
//	| 2/w   0     0      -1 |
//	| 0    -2/h   0       1 |
//	| 0     0     2/depth 0 |
//	| 0     0     0       1 |
func Projection(width, height, depth float64) mgl64.Mat4 {
	return mgl64.Mat4{
		2 / width, 0, 0, 0,
		0, -2 / height, 0, 0,
		0, 0, 2 / depth, 0,
		-1, 1, 0, 1,
	}
}

// Model returns the model matrix for p.
//
// Composition order (each step post-multiplied):
//
//	Translate -> RotateX -> RotateY -> RotateZ -> Scale
func (p TransformParameters) Model() mgl64.Mat4 {
	m := mgl64.Translate3D(p.Translation[0], p.Translation[1], p.Translation[2])
	m = m.Mul4(mgl64.HomogRotate3DX(p.Rotation[0]))
	m = m.Mul4(mgl64.HomogRotate3DY(p.Rotation[1]))
	m = m.Mul4(mgl64.HomogRotate3DZ(p.Rotation[2]))
	return m.Mul4(mgl64.Scale3D(p.Scale[0], p.Scale[1], p.Scale[2]))
}

// ComposeTransform returns Projection(width, height, depth) · p.Model().
// Scale values are not validated: zero flattens, negative mirrors.
func ComposeTransform(width, height, depth float64, p TransformParameters) mgl64.Mat4 {
	return Projection(width, height, depth).Mul4(p.Model())
}

// DegreesToRadians converts an angle in degrees to radians.
func DegreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// RadiansToDegrees converts an angle in radians to degrees.
func RadiansToDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// RotationDegrees returns p.Rotation converted to degrees.
func (p TransformParameters) RotationDegrees() mgl64.Vec3 {
	return mgl64.Vec3{
		RadiansToDegrees(p.Rotation[0]),
		RadiansToDegrees(p.Rotation[1]),
		RadiansToDegrees(p.Rotation[2]),
	}
}

// ProjectVertex transforms a model-space point by m and maps the result to
// viewport pixels. depth is the clip-space z after the perspective divide;
// smaller values are closer to the viewer.
func ProjectVertex(m mgl64.Mat4, x, y, z, width, height float64) (sx, sy, depth float64) {
	c := m.Mul4x1(mgl64.Vec4{x, y, z, 1})
	w := c[3]
	if w != 0 && w != 1 {
		c[0] /= w
		c[1] /= w
		c[2] /= w
	}
	sx = (c[0] + 1) * 0.5 * width
	sy = (1 - c[1]) * 0.5 * height
	return sx, sy, c[2]
}

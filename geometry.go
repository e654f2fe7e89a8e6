package cubeview

import (
	"fmt"
	"image"
)

// StripsPerFace is the number of drawables each cube face is split into.
// Each strip holds three stickers, two triangles each.
const StripsPerFace = 3

// FaceNames are the cube faces in image order.
var FaceNames = [FaceCount]string{"F", "R", "U", "B", "L", "D"}

// FaceColors are the per-face vertex colors of the standard cube scheme.
var FaceColors = [FaceCount][3]uint8{
	{0, 155, 72},    // F green
	{183, 18, 52},   // R red
	{255, 255, 255}, // U white
	{0, 70, 173},    // B blue
	{255, 88, 0},    // L orange
	{255, 213, 0},   // D yellow
}

// faceFrame places a face: origin corner plus unit edge directions. Y points
// down, matching the pixel-space projection.
type faceFrame struct {
	origin [3]float32 // in units of half the edge
	u, v   [3]float32
}

var faceFrames = [FaceCount]faceFrame{
	{origin: [3]float32{-1, -1, -1}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 1, 0}}, // F  z=-h, nearest the viewer
	{origin: [3]float32{1, -1, -1}, u: [3]float32{0, 0, 1}, v: [3]float32{0, 1, 0}},  // R  x=+h
	{origin: [3]float32{-1, -1, 1}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 0, -1}}, // U  y=-h
	{origin: [3]float32{1, -1, 1}, u: [3]float32{-1, 0, 0}, v: [3]float32{0, 1, 0}},  // B  z=+h
	{origin: [3]float32{-1, -1, 1}, u: [3]float32{0, 0, -1}, v: [3]float32{0, 1, 0}}, // L  x=-h
	{origin: [3]float32{-1, 1, -1}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 0, 1}},  // D  y=+h
}

// quad corner offsets, in sticker units, for the two triangles of a sticker.
var quadCorners = [6][2]float32{{0, 0}, {1, 0}, {0, 1}, {0, 1}, {1, 0}, {1, 1}}

// CubeGeometry returns the geometry of a cube with edge size centered on the
// origin: FaceCount*StripsPerFace strips of VerticesPerDraw vertices each,
// face by face in FaceNames order. Strip s of a face maps onto the s-th
// horizontal third of that face's image.
func CubeGeometry(size float64) []Geometry {
	half := float32(size / 2)
	step := float32(size / StripsPerFace)
	out := make([]Geometry, 0, FaceCount*StripsPerFace)
	for f := 0; f < FaceCount; f++ {
		fr := faceFrames[f]
		for s := 0; s < StripsPerFace; s++ {
			out = append(out, stripGeometry(f, s, fr, half, step))
		}
	}
	return out
}

func stripGeometry(face, strip int, fr faceFrame, half, step float32) Geometry {
	g := Geometry{
		Name:      fmt.Sprintf("%s%d", FaceNames[face], strip),
		Positions: make([]float32, 0, VerticesPerDraw*3),
		Colors:    make([]uint8, 0, VerticesPerDraw*3),
		TexCoords: make([]float32, 0, VerticesPerDraw*2),
		Count:     VerticesPerDraw,
		Group:     face,
	}
	c := FaceColors[face]
	for sticker := 0; sticker < StripsPerFace; sticker++ {
		for _, q := range quadCorners {
			a := float32(sticker) + q[0] // along u, in sticker units
			b := float32(strip) + q[1]   // along v
			for k := 0; k < 3; k++ {
				p := fr.origin[k]*half + fr.u[k]*a*step + fr.v[k]*b*step
				g.Positions = append(g.Positions, p)
			}
			g.Colors = append(g.Colors, c[0], c[1], c[2])
			g.TexCoords = append(g.TexCoords, a/StripsPerFace, b/StripsPerFace)
		}
	}
	return g
}

// BuildCube creates the cube drawables on b, texturing face i with
// images[i]. On error every drawable created so far is disposed.
func BuildCube(b Backend, images []image.Image, size float64) ([]*Drawable, error) {
	if len(images) != FaceCount {
		return nil, fmt.Errorf("build cube: need %d images, got %d", FaceCount, len(images))
	}
	geoms := CubeGeometry(size)
	out := make([]*Drawable, 0, len(geoms))
	for _, g := range geoms {
		d, err := NewDrawable(b, g, images[g.Group])
		if err != nil {
			for _, done := range out {
				done.Dispose()
			}
			return nil, fmt.Errorf("build cube: %w", err)
		}
		out = append(out, d)
	}
	return out, nil
}

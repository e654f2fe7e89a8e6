package cubeview

import (
	"image"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

// TextureFilter selects how a texture is sampled.
type TextureFilter uint8

const (
	FilterNearest TextureFilter = iota // nearest texel, no interpolation
	FilterLinear                       // bilinear interpolation
)

// TextureWrap selects how texture coordinates outside [0, 1] are resolved.
type TextureWrap uint8

const (
	WrapClampToEdge TextureWrap = iota // repeat the edge texel
	WrapRepeat                         // tile the texture
)

// TextureOptions configures a texture upload.
type TextureOptions struct {
	Filter TextureFilter
	Wrap   TextureWrap
}

// Texture is an image uploaded to a backend. It is owned by the drawable
// that created it and must be disposed by that drawable.
type Texture interface {
	Size() (w, h int)
	Dispose()
}

// DrawCall is a single triangle-list draw. Slices are owned by the caller and
// are only valid for the duration of Backend.DrawTriangles.
type DrawCall struct {
	// Name identifies the drawable that issued the call.
	Name string
	// Vertices are in viewport pixels; SrcX/SrcY are texture pixels.
	Vertices []ebiten.Vertex
	Indices  []uint16
	// Depths holds the clip-space z of each vertex.
	Depths  []float32
	Texture Texture
	Matrix  mgl64.Mat4
}

// Backend is the rendering boundary. A frame is Begin, any number of
// DrawTriangles calls, then End.
type Backend interface {
	// Size returns the viewport size in pixels.
	Size() (w, h int)
	// NewTexture uploads img once. The returned texture lives until disposed.
	NewTexture(img image.Image, opts TextureOptions) (Texture, error)
	// Begin starts a frame and clears the viewport to bg.
	Begin(bg Color)
	// DrawTriangles issues one triangle-list draw.
	DrawTriangles(call DrawCall) error
	// End finishes the frame.
	End() error
}

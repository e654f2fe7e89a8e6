package cubeview

import (
	"cmp"
	"fmt"
	"image"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
)

// TextureMode selects how the canvas shader combines vertex color and
// texture.
type TextureMode uint8

const (
	TextureModulate  TextureMode = iota // vertex color * texture
	TextureColorOnly                    // vertex color only, texture ignored
)

// ParseTextureMode accepts "modulate" or "color".
func ParseTextureMode(s string) (TextureMode, error) {
	switch s {
	case "", "modulate":
		return TextureModulate, nil
	case "color":
		return TextureColorOnly, nil
	}
	return 0, fmt.Errorf("cubeview: unknown texture mode %q", s)
}

// String returns the config name of the mode.
func (m TextureMode) String() string {
	if m == TextureColorOnly {
		return "color"
	}
	return "modulate"
}

// ShaderError is returned when the canvas shader fails to compile. Log holds
// the compiler diagnostic.
type ShaderError struct {
	Log string
}

func (e *ShaderError) Error() string {
	return "cubeview: compile shader: " + e.Log
}

// meshShaderSrc samples the face texture in pixel units. Wrap and filter are
// emulated in the shader since DrawTrianglesShader has no sampler state.
const meshShaderSrc = `//kage:unit pixels
package main

var UseTexture float
var Linear float
var Repeat float

func wrap(p vec2) vec2 {
	o := imageSrc0Origin()
	s := imageSrc0Size()
	if Repeat > 0 {
		return o + mod(p-o, s)
	}
	return clamp(p, o+0.5, o+s-0.5)
}

func sample(p vec2) vec4 {
	if Linear == 0 {
		return imageSrc0UnsafeAt(wrap(p))
	}
	q := p - 0.5
	f := fract(q)
	b := floor(q) + 0.5
	c00 := imageSrc0UnsafeAt(wrap(b))
	c10 := imageSrc0UnsafeAt(wrap(b + vec2(1, 0)))
	c01 := imageSrc0UnsafeAt(wrap(b + vec2(0, 1)))
	c11 := imageSrc0UnsafeAt(wrap(b + vec2(1, 1)))
	return mix(mix(c00, c10, f.x), mix(c01, c11, f.x), f.y)
}

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	if UseTexture == 0 {
		return color
	}
	return sample(src) * color
}
`

// canvasTexture is a Texture backed by an ebiten image.
type canvasTexture struct {
	owner    *Canvas
	img      *ebiten.Image
	opts     TextureOptions
	disposed bool
}

func (t *canvasTexture) Size() (int, int) {
	b := t.img.Bounds()
	return b.Dx(), b.Dy()
}

func (t *canvasTexture) Dispose() {
	if t.disposed {
		return
	}
	t.disposed = true
	t.img.Deallocate()
	t.owner.textures--
}

// triangle is one triangle queued for depth-ordered submission.
type triangle struct {
	verts [3]ebiten.Vertex
	depth float32
	tex   *canvasTexture
	seq   int
}

// Canvas is a Backend that renders into a persistent offscreen ebiten image.
// Triangles from every draw call of a frame are queued, sorted back to front
// at End and submitted in texture batches, which stands in for a depth test.
type Canvas struct {
	target *ebiten.Image
	shader *ebiten.Shader
	mode   TextureMode

	tris     []triangle
	batchV   []ebiten.Vertex
	batchI   []uint16
	inFrame  bool
	textures int

	// stats of the last End
	submitted int
	batches   int
	clipped   int
}

// NewCanvas compiles the mesh shader and allocates a w x h target.
func NewCanvas(w, h int, mode TextureMode) (*Canvas, error) {
	shader, err := ebiten.NewShader([]byte(meshShaderSrc))
	if err != nil {
		return nil, &ShaderError{Log: err.Error()}
	}
	return &Canvas{
		target: ebiten.NewImage(w, h),
		shader: shader,
		mode:   mode,
	}, nil
}

// MustNewCanvas is like NewCanvas but panics if the shader does not compile.
func MustNewCanvas(w, h int, mode TextureMode) *Canvas {
	c, err := NewCanvas(w, h, mode)
	if err != nil {
		panic(err)
	}
	return c
}

// Image returns the render target.
func (c *Canvas) Image() *ebiten.Image {
	return c.target
}

// SetTextureMode changes how the shader combines color and texture.
func (c *Canvas) SetTextureMode(m TextureMode) {
	c.mode = m
}

// Resize reallocates the render target. Contents are lost.
func (c *Canvas) Resize(w, h int) {
	b := c.target.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return
	}
	c.target.Deallocate()
	c.target = ebiten.NewImage(w, h)
}

// Size implements Backend.
func (c *Canvas) Size() (int, int) {
	b := c.target.Bounds()
	return b.Dx(), b.Dy()
}

// NewTexture implements Backend.
func (c *Canvas) NewTexture(img image.Image, opts TextureOptions) (Texture, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("cubeview: empty image %v", b)
	}
	c.textures++
	return &canvasTexture{owner: c, img: ebiten.NewImageFromImage(img), opts: opts}, nil
}

// Begin implements Backend.
func (c *Canvas) Begin(bg Color) {
	c.target.Fill(bg.RGBA())
	c.tris = c.tris[:0]
	c.clipped = 0
	c.inFrame = true
}

// DrawTriangles implements Backend. Triangles entirely outside the depth
// range are dropped.
func (c *Canvas) DrawTriangles(call DrawCall) error {
	tex, ok := call.Texture.(*canvasTexture)
	if !ok || tex.owner != c {
		return ErrForeignTexture
	}
	if tex.disposed {
		return ErrDisposed
	}
	for i := 0; i+2 < len(call.Indices); i += 3 {
		i0, i1, i2 := call.Indices[i], call.Indices[i+1], call.Indices[i+2]
		d0, d1, d2 := call.Depths[i0], call.Depths[i1], call.Depths[i2]
		if outsideDepth(d0, d1, d2) {
			c.clipped++
			continue
		}
		c.tris = append(c.tris, triangle{
			verts: [3]ebiten.Vertex{call.Vertices[i0], call.Vertices[i1], call.Vertices[i2]},
			depth: (d0 + d1 + d2) / 3,
			tex:   tex,
			seq:   len(c.tris),
		})
	}
	return nil
}

func outsideDepth(d0, d1, d2 float32) bool {
	return (d0 > 1 && d1 > 1 && d2 > 1) || (d0 < -1 && d1 < -1 && d2 < -1)
}

// sortTriangles orders triangles back to front: larger depth first, ties in
// submission order.
func sortTriangles(tris []triangle) {
	slices.SortStableFunc(tris, func(a, b triangle) int {
		if a.depth != b.depth {
			return cmp.Compare(b.depth, a.depth)
		}
		return cmp.Compare(a.seq, b.seq)
	})
}

// End implements Backend. Sorted triangles sharing a texture are submitted
// in a single DrawTrianglesShader call.
func (c *Canvas) End() error {
	if !c.inFrame {
		return nil
	}
	c.inFrame = false
	sortTriangles(c.tris)

	c.submitted = len(c.tris)
	c.batches = 0

	for start := 0; start < len(c.tris); {
		tex := c.tris[start].tex
		end := start + 1
		for end < len(c.tris) && c.tris[end].tex == tex {
			end++
		}
		c.flush(c.tris[start:end], tex)
		start = end
	}
	return nil
}

func (c *Canvas) flush(tris []triangle, tex *canvasTexture) {
	c.batchV = c.batchV[:0]
	c.batchI = c.batchI[:0]
	for i := range tris {
		base := uint16(len(c.batchV))
		c.batchV = append(c.batchV, tris[i].verts[:]...)
		c.batchI = append(c.batchI, base, base+1, base+2)
		if len(c.batchV)+3 > maxVertices {
			c.submit(tex)
			c.batchV = c.batchV[:0]
			c.batchI = c.batchI[:0]
		}
	}
	if len(c.batchI) > 0 {
		c.submit(tex)
	}
}

func (c *Canvas) submit(tex *canvasTexture) {
	var op ebiten.DrawTrianglesShaderOptions
	op.Images[0] = tex.img
	op.Uniforms = map[string]any{
		"UseTexture": boolUniform(c.mode == TextureModulate),
		"Linear":     boolUniform(tex.opts.Filter == FilterLinear),
		"Repeat":     boolUniform(tex.opts.Wrap == WrapRepeat),
	}
	c.target.DrawTrianglesShader(c.batchV, c.batchI, c.shader, &op)
	c.batches++
}

func boolUniform(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

// LiveTextures returns the number of textures created and not yet disposed.
func (c *Canvas) LiveTextures() int {
	return c.textures
}

// LastFrameStats returns the submitted triangle, batch and depth-clipped
// triangle counts of the last frame.
func (c *Canvas) LastFrameStats() (triangles, batches, clipped int) {
	return c.submitted, c.batches, c.clipped
}

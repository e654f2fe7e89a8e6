package cubeview

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// Geometry is the static vertex data of a drawable.
type Geometry struct {
	Name string
	// Positions holds x, y, z per vertex.
	Positions []float32
	// Colors holds r, g, b per vertex, 0-255.
	Colors []uint8
	// TexCoords holds u, v per vertex in [0, 1].
	TexCoords []float32
	// Count is the number of vertices drawn per call. Zero means
	// VerticesPerDraw.
	Count int
	// Group is the index of the image this geometry is textured with.
	Group int
}

// VertexCount returns the number of vertices described by Positions.
func (g Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

func (g Geometry) drawCount() int {
	if g.Count == 0 {
		return VerticesPerDraw
	}
	return g.Count
}

// Validate checks that the attribute arrays agree on a vertex count and that
// the draw count fits inside it.
func (g Geometry) Validate() error {
	if len(g.Positions)%3 != 0 {
		return fmt.Errorf("%w: %d position components is not a multiple of 3", ErrInvalidGeometry, len(g.Positions))
	}
	n := g.VertexCount()
	if n > maxVertices {
		return fmt.Errorf("%w: %d vertices exceeds %d", ErrInvalidGeometry, n, maxVertices)
	}
	if len(g.Colors) != n*3 {
		return fmt.Errorf("%w: %d color components for %d vertices", ErrInvalidGeometry, len(g.Colors), n)
	}
	if len(g.TexCoords) != n*2 {
		return fmt.Errorf("%w: %d texcoord components for %d vertices", ErrInvalidGeometry, len(g.TexCoords), n)
	}
	count := g.drawCount()
	if count < 0 || count%3 != 0 || count > n {
		return fmt.Errorf("%w: draw count %d with %d vertices", ErrInvalidGeometry, count, n)
	}
	return nil
}

// clone returns a copy so later mutation of the caller's slices cannot leak
// into the drawable.
func (g Geometry) clone() Geometry {
	c := g
	c.Positions = append([]float32(nil), g.Positions...)
	c.Colors = append([]uint8(nil), g.Colors...)
	c.TexCoords = append([]float32(nil), g.TexCoords...)
	return c
}

// textureOptions are the sampling parameters every drawable texture uses.
var textureOptions = TextureOptions{Filter: FilterNearest, Wrap: WrapClampToEdge}

// Drawable is a piece of static geometry with one texture. Its texture and
// vertex buffers are allocated once and reused by every draw.
type Drawable struct {
	geom    Geometry
	image   image.Image
	texture Texture
	params  *TransformParameters

	// Per-drawable buffers. vertices holds SrcX/SrcY and colors set at
	// construction; Draw only rewrites DstX/DstY and depths.
	vertices []ebiten.Vertex
	indices  []uint16
	depths   []float32

	draws    uint64
	disposed bool
}

// NewDrawable validates g, uploads img to b and preallocates the vertex
// buffers.
func NewDrawable(b Backend, g Geometry, img image.Image) (*Drawable, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("drawable %q: %w", g.Name, err)
	}
	if img == nil {
		return nil, fmt.Errorf("drawable %q: %w", g.Name, ErrNilImage)
	}
	tex, err := b.NewTexture(img, textureOptions)
	if err != nil {
		return nil, fmt.Errorf("drawable %q: upload texture: %w", g.Name, err)
	}
	d := &Drawable{geom: g.clone(), image: img, texture: tex}
	d.rebuildBuffers()
	return d, nil
}

// Name returns the geometry name.
func (d *Drawable) Name() string {
	return d.geom.Name
}

// Geometry returns a copy of the drawable's geometry.
func (d *Drawable) Geometry() Geometry {
	return d.geom.clone()
}

// Image returns the source image of the drawable's texture.
func (d *Drawable) Image() image.Image {
	return d.image
}

// Draws returns how many draw calls the drawable has issued.
func (d *Drawable) Draws() uint64 {
	return d.draws
}

// SetPosition stores a reference to p. Later mutations of p are seen by the
// next Draw.
func (d *Drawable) SetPosition(p *TransformParameters) {
	d.params = p
}

// SetGeometry replaces the geometry. Buffers are reused when they are large
// enough.
func (d *Drawable) SetGeometry(g Geometry) error {
	if d.disposed {
		return ErrDisposed
	}
	if err := g.Validate(); err != nil {
		return fmt.Errorf("drawable %q: %w", g.Name, err)
	}
	d.geom = g.clone()
	d.rebuildBuffers()
	return nil
}

// SetImage uploads img as the new texture and disposes the old one.
func (d *Drawable) SetImage(b Backend, img image.Image) error {
	if d.disposed {
		return ErrDisposed
	}
	if img == nil {
		return fmt.Errorf("drawable %q: %w", d.geom.Name, ErrNilImage)
	}
	tex, err := b.NewTexture(img, textureOptions)
	if err != nil {
		return fmt.Errorf("drawable %q: upload texture: %w", d.geom.Name, err)
	}
	d.texture.Dispose()
	d.texture = tex
	d.image = img
	d.rebuildBuffers()
	return nil
}

// Dispose releases the texture. Further draws return ErrDisposed.
func (d *Drawable) Dispose() {
	if d.disposed {
		return
	}
	d.texture.Dispose()
	d.texture = nil
	d.disposed = true
}

// IsDisposed reports whether Dispose has been called.
func (d *Drawable) IsDisposed() bool {
	return d.disposed
}

// rebuildBuffers grows the buffers to the current vertex count (high-water
// mark, never shrinks) and fills in the attributes that do not depend on the
// transform.
func (d *Drawable) rebuildBuffers() {
	n := d.geom.VertexCount()
	if cap(d.vertices) < n {
		d.vertices = make([]ebiten.Vertex, n)
		d.depths = make([]float32, n)
	}
	d.vertices = d.vertices[:n]
	d.depths = d.depths[:n]

	count := d.geom.drawCount()
	if cap(d.indices) < count {
		d.indices = make([]uint16, count)
	}
	d.indices = d.indices[:count]
	for i := range d.indices {
		d.indices[i] = uint16(i)
	}

	tw, th := d.texture.Size()
	for i := 0; i < n; i++ {
		u := d.geom.TexCoords[i*2]
		v := d.geom.TexCoords[i*2+1]
		d.vertices[i] = ebiten.Vertex{
			SrcX:   u * float32(tw),
			SrcY:   v * float32(th),
			ColorR: float32(d.geom.Colors[i*3]) / 255,
			ColorG: float32(d.geom.Colors[i*3+1]) / 255,
			ColorB: float32(d.geom.Colors[i*3+2]) / 255,
			ColorA: 1,
		}
	}
}

// Draw composes the transform for the backend viewport, rewrites vertex
// positions in place and issues exactly one draw call.
func (d *Drawable) Draw(b Backend, depth float64) error {
	if d.disposed {
		return ErrDisposed
	}
	if d.params == nil {
		return ErrNoTransform
	}
	w, h := b.Size()
	if w <= 0 || h <= 0 {
		return ErrEmptyViewport
	}
	fw, fh := float64(w), float64(h)
	m := ComposeTransform(fw, fh, depth, *d.params)

	pos := d.geom.Positions
	for i := range d.vertices {
		x, y, z := float64(pos[i*3]), float64(pos[i*3+1]), float64(pos[i*3+2])
		sx, sy, sz := ProjectVertex(m, x, y, z, fw, fh)
		d.vertices[i].DstX = float32(sx)
		d.vertices[i].DstY = float32(sy)
		d.depths[i] = float32(sz)
	}

	err := b.DrawTriangles(DrawCall{
		Name:     d.geom.Name,
		Vertices: d.vertices,
		Indices:  d.indices,
		Depths:   d.depths,
		Texture:  d.texture,
		Matrix:   m,
	})
	if err != nil {
		return fmt.Errorf("drawable %q: %w", d.geom.Name, err)
	}
	d.draws++
	return nil
}

package cubeview

import (
	"image"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

// RecordedCall is a copy of one DrawCall seen by a Recorder.
type RecordedCall struct {
	Frame    int // zero-based index of the frame among all frames begun
	Name     string
	Vertices []ebiten.Vertex
	Depths   []float32
	Indices  int
	Matrix   mgl64.Mat4
	Texture  Texture
}

// RecordedFrame is one Begin/End pair.
type RecordedFrame struct {
	Clear Color
	Calls []RecordedCall
}

// Recorder is a Backend that keeps draw calls in memory instead of
// rendering them. Used for headless runs and tests.
type Recorder struct {
	// Limit, when positive, caps how many frames are kept; older frames are
	// dropped first.
	Limit int

	w, h int

	frames   []RecordedFrame
	inFrame  bool
	begun    int // frames begun, including dropped ones
	textures int // live texture count
	uploads  int
}

// NewRecorder creates a recorder with a w x h viewport.
func NewRecorder(w, h int) *Recorder {
	return &Recorder{w: w, h: h}
}

// Resize changes the reported viewport size.
func (r *Recorder) Resize(w, h int) {
	r.w, r.h = w, h
}

// Size implements Backend.
func (r *Recorder) Size() (int, int) {
	return r.w, r.h
}

type recordedTexture struct {
	owner    *Recorder
	img      image.Image
	w, h     int
	disposed bool
}

func (t *recordedTexture) Size() (int, int) {
	return t.w, t.h
}

func (t *recordedTexture) Dispose() {
	if t.disposed {
		return
	}
	t.disposed = true
	t.owner.textures--
}

// NewTexture implements Backend.
func (r *Recorder) NewTexture(img image.Image, _ TextureOptions) (Texture, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	b := img.Bounds()
	r.textures++
	r.uploads++
	return &recordedTexture{owner: r, img: img, w: b.Dx(), h: b.Dy()}, nil
}

// Begin implements Backend.
func (r *Recorder) Begin(bg Color) {
	if r.Limit > 0 && len(r.frames) >= r.Limit {
		n := copy(r.frames, r.frames[len(r.frames)-r.Limit+1:])
		clear(r.frames[n:])
		r.frames = r.frames[:n]
	}
	r.frames = append(r.frames, RecordedFrame{Clear: bg})
	r.begun++
	r.inFrame = true
}

// DrawTriangles implements Backend.
func (r *Recorder) DrawTriangles(call DrawCall) error {
	if !r.inFrame {
		r.Begin(Color{})
	}
	if t, ok := call.Texture.(*recordedTexture); !ok || t.owner != r {
		return ErrForeignTexture
	}
	f := &r.frames[len(r.frames)-1]
	f.Calls = append(f.Calls, RecordedCall{
		Frame:    r.begun - 1,
		Name:     call.Name,
		Vertices: append([]ebiten.Vertex(nil), call.Vertices...),
		Depths:   append([]float32(nil), call.Depths...),
		Indices:  len(call.Indices),
		Matrix:   call.Matrix,
		Texture:  call.Texture,
	})
	return nil
}

// End implements Backend.
func (r *Recorder) End() error {
	r.inFrame = false
	return nil
}

// Frames returns every recorded frame.
func (r *Recorder) Frames() []RecordedFrame {
	return r.frames
}

// LastFrame returns the most recent frame, or an empty frame if none.
func (r *Recorder) LastFrame() RecordedFrame {
	if len(r.frames) == 0 {
		return RecordedFrame{}
	}
	return r.frames[len(r.frames)-1]
}

// LiveTextures returns the number of textures created and not yet disposed.
func (r *Recorder) LiveTextures() int {
	return r.textures
}

// Uploads returns the total number of NewTexture calls.
func (r *Recorder) Uploads() int {
	return r.uploads
}

// Reset drops recorded frames.
func (r *Recorder) Reset() {
	r.frames = r.frames[:0]
}

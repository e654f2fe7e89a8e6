package cubeview

import (
	"cmp"
	"image"
	"image/color"
	"image/draw"
	"slices"

	"golang.org/x/image/vector"
)

type flatTriangle struct {
	pts   [3][2]float32
	fill  color.NRGBA
	depth float32
	seq   int
}

// Rasterize renders a recorded frame into an image in software: triangles
// are flat shaded with the mean vertex color times the texel at their
// centroid and painted back to front. It is a preview for headless runs,
// not a match for the GPU canvas.
func (r *Recorder) Rasterize(f RecordedFrame) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, r.w, r.h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(f.Clear.RGBA()), image.Point{}, draw.Src)

	var tris []flatTriangle
	for _, call := range f.Calls {
		tex, _ := call.Texture.(*recordedTexture)
		n := min(call.Indices, len(call.Vertices))
		for i := 0; i+2 < n; i += 3 {
			v := call.Vertices[i : i+3]
			d := call.Depths[i : i+3]
			if outsideDepth(d[0], d[1], d[2]) {
				continue
			}
			t := flatTriangle{depth: (d[0] + d[1] + d[2]) / 3, seq: len(tris)}
			var cr, cg, cb, sx, sy float32
			for k := range v {
				t.pts[k] = [2]float32{v[k].DstX, v[k].DstY}
				cr += v[k].ColorR / 3
				cg += v[k].ColorG / 3
				cb += v[k].ColorB / 3
				sx += v[k].SrcX / 3
				sy += v[k].SrcY / 3
			}
			t.fill = shade(cr, cg, cb, tex, sx, sy)
			tris = append(tris, t)
		}
	}
	slices.SortStableFunc(tris, func(a, b flatTriangle) int {
		if a.depth != b.depth {
			return cmp.Compare(b.depth, a.depth)
		}
		return cmp.Compare(a.seq, b.seq)
	})

	z := vector.NewRasterizer(r.w, r.h)
	for _, t := range tris {
		z.Reset(r.w, r.h)
		z.MoveTo(t.pts[0][0], t.pts[0][1])
		z.LineTo(t.pts[1][0], t.pts[1][1])
		z.LineTo(t.pts[2][0], t.pts[2][1])
		z.ClosePath()
		z.Draw(dst, dst.Bounds(), image.NewUniform(t.fill), image.Point{})
	}
	return dst
}

// shade multiplies a vertex color by the clamped nearest texel at (sx, sy).
func shade(r, g, b float32, tex *recordedTexture, sx, sy float32) color.NRGBA {
	if tex != nil && tex.img != nil && tex.w > 0 && tex.h > 0 {
		x := min(max(int(sx), 0), tex.w-1)
		y := min(max(int(sy), 0), tex.h-1)
		bounds := tex.img.Bounds()
		c := color.NRGBAModel.Convert(tex.img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
		r *= float32(c.R) / 255
		g *= float32(c.G) / 255
		b *= float32(c.B) / 255
	}
	return color.NRGBA{R: unit8(r), G: unit8(g), B: unit8(b), A: 255}
}

func unit8(v float32) uint8 {
	return uint8(min(max(v, 0), 1)*255 + 0.5)
}

package cubeview

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// ExportGLTF writes drawables as a glTF document. Each drawable becomes one
// mesh under a root node whose matrix is the model transform of p; the
// projection is not exported. Drawables sharing a source image share one
// material. binary selects GLB output.
func ExportGLTF(w io.Writer, drawables []*Drawable, p TransformParameters, binary bool) error {
	doc := gltf.NewDocument()
	doc.Samplers = append(doc.Samplers, &gltf.Sampler{
		Name:      "nearest_clamp",
		MinFilter: gltf.MinNearest,
		MagFilter: gltf.MagNearest,
		WrapS:     gltf.WrapClampToEdge,
		WrapT:     gltf.WrapClampToEdge,
	})

	root := &gltf.Node{Name: "cube", Matrix: mat4f32(p.Model())}
	rootIndex := uint32(len(doc.Nodes))
	doc.Nodes = append(doc.Nodes, root)
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, rootIndex)

	materials := make(map[image.Image]uint32)
	for _, d := range drawables {
		if d.IsDisposed() {
			return fmt.Errorf("export %q: %w", d.Name(), ErrDisposed)
		}
		mat, ok := materials[d.image]
		if !ok {
			var err error
			mat, err = writeMaterial(doc, d.Name(), d.image)
			if err != nil {
				return fmt.Errorf("export %q: %w", d.Name(), err)
			}
			materials[d.image] = mat
		}
		mesh := writeMesh(doc, d.geom, mat)
		root.Children = append(root.Children, uint32(len(doc.Nodes)))
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name: d.Name(),
			Mesh: gltf.Index(mesh),
		})
	}

	enc := gltf.NewEncoder(w)
	enc.AsBinary = binary
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode gltf: %w", err)
	}
	return nil
}

// ExportGLTF writes the scene's drawables with its current parameters.
func (s *Scene) ExportGLTF(w io.Writer, binary bool) error {
	return ExportGLTF(w, s.drawables, s.params, binary)
}

func writeMesh(doc *gltf.Document, g Geometry, material uint32) uint32 {
	n := g.drawCount()
	positions := make([][3]float32, n)
	colors := make([][4]uint8, n)
	uvs := make([][2]float32, n)
	indices := make([]uint32, n)
	for i := 0; i < n; i++ {
		positions[i] = [3]float32{g.Positions[i*3], g.Positions[i*3+1], g.Positions[i*3+2]}
		colors[i] = [4]uint8{g.Colors[i*3], g.Colors[i*3+1], g.Colors[i*3+2], 255}
		uvs[i] = [2]float32{g.TexCoords[i*2], g.TexCoords[i*2+1]}
		indices[i] = uint32(i)
	}
	indicesAccessor := modeler.WriteIndices(doc, indices)
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: g.Name,
		Primitives: []*gltf.Primitive{{
			Indices: &indicesAccessor,
			Attributes: map[string]uint32{
				"POSITION":   modeler.WritePosition(doc, positions),
				"COLOR_0":    modeler.WriteColor(doc, colors),
				"TEXCOORD_0": modeler.WriteTextureCoord(doc, uvs),
			},
			Material: gltf.Index(material),
		}},
	})
	return uint32(len(doc.Meshes) - 1)
}

func writeMaterial(doc *gltf.Document, name string, img image.Image) (uint32, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return 0, fmt.Errorf("encode texture: %w", err)
	}
	imageIndex, err := modeler.WriteImage(doc, name+"_image", "image/png", &buf)
	if err != nil {
		return 0, fmt.Errorf("write gltf image: %w", err)
	}
	textureIndex := uint32(len(doc.Textures))
	doc.Textures = append(doc.Textures, &gltf.Texture{
		Name:    name,
		Sampler: gltf.Index(0),
		Source:  gltf.Index(imageIndex),
	})
	doc.Materials = append(doc.Materials, &gltf.Material{
		Name:        name,
		DoubleSided: true,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorTexture: &gltf.TextureInfo{Index: textureIndex},
		},
	})
	return uint32(len(doc.Materials) - 1), nil
}

func mat4f32(m [16]float64) [16]float32 {
	var out [16]float32
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}

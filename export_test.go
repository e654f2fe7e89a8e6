package cubeview

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/qmuntal/gltf"
)

func TestExportGLTFBinary(t *testing.T) {
	s, _ := newTestScene(t)
	var buf bytes.Buffer
	if err := s.ExportGLTF(&buf, true); err != nil {
		t.Fatalf("ExportGLTF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("glTF")) {
		t.Fatalf("missing GLB magic: % x", buf.Bytes()[:4])
	}

	var doc gltf.Document
	if err := gltf.NewDecoder(bytes.NewReader(buf.Bytes())).Decode(&doc); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(doc.Meshes) != len(s.Drawables()) {
		t.Errorf("meshes = %d, want %d", len(doc.Meshes), len(s.Drawables()))
	}
	// Drawables on one face share their source image and so one material.
	if len(doc.Materials) != FaceCount {
		t.Errorf("materials = %d, want %d", len(doc.Materials), FaceCount)
	}
	if len(doc.Nodes) != len(s.Drawables())+1 {
		t.Fatalf("nodes = %d, want %d", len(doc.Nodes), len(s.Drawables())+1)
	}
	root := doc.Nodes[0]
	if root.Name != "cube" || len(root.Children) != len(s.Drawables()) {
		t.Errorf("root = %q with %d children", root.Name, len(root.Children))
	}
	if got := doc.Nodes[1].Name; got != "F0" {
		t.Errorf("first child = %q, want F0", got)
	}
	prim := doc.Meshes[0].Primitives[0]
	for _, attr := range []string{"POSITION", "COLOR_0", "TEXCOORD_0"} {
		if _, ok := prim.Attributes[attr]; !ok {
			t.Errorf("primitive missing %s", attr)
		}
	}
	if idx := doc.Accessors[*prim.Indices]; idx.Count != VerticesPerDraw {
		t.Errorf("index count = %d, want %d", idx.Count, VerticesPerDraw)
	}
}

func TestExportGLTFJSONCarriesModelMatrix(t *testing.T) {
	s, _ := newTestScene(t)
	p := IdentityTransform()
	p.Translation[0] = 12
	if err := s.SetParams(p, TriggerManual); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := s.ExportGLTF(&buf, false); err != nil {
		t.Fatalf("ExportGLTF: %v", err)
	}
	var raw struct {
		Nodes []struct {
			Name   string    `json:"name"`
			Matrix []float64 `json:"matrix"`
		} `json:"nodes"`
	}
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(raw.Nodes) == 0 || len(raw.Nodes[0].Matrix) != 16 {
		t.Fatalf("root node = %+v", raw.Nodes)
	}
	if got := raw.Nodes[0].Matrix[12]; got != 12 {
		t.Errorf("matrix translation x = %g, want 12", got)
	}
}

func TestExportGLTFDisposed(t *testing.T) {
	s, _ := newTestScene(t)
	s.Drawables()[3].Dispose()
	err := s.ExportGLTF(&bytes.Buffer{}, true)
	if !errors.Is(err, ErrDisposed) {
		t.Errorf("err = %v, want ErrDisposed", err)
	}
}

package cubeview

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"front view", "front_view"},
		{"a/b\\c", "a_b_c"},
		{"  ", "unlabeled"},
		{"", "unlabeled"},
		{"turn-1.5", "turn-1.5"},
		{"R'U", "R_U"},
	}
	for _, tt := range tests {
		if got := sanitizeLabel(tt.in); got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFlushScreenshots(t *testing.T) {
	s, _ := newTestScene(t)
	s.SetLogger(quietLogger())
	s.ScreenshotDir = filepath.Join(t.TempDir(), "shots")

	if paths, err := s.FlushScreenshots(testImage(2, 2, color.NRGBA{})); err != nil || paths != nil {
		t.Fatalf("empty queue: paths %v, err %v", paths, err)
	}

	s.Screenshot("front")
	s.Screenshot("front")
	if s.PendingScreenshots() != 2 {
		t.Fatalf("pending = %d, want 2", s.PendingScreenshots())
	}
	paths, err := s.FlushScreenshots(testImage(3, 2, color.NRGBA{10, 20, 30, 255}))
	if err != nil {
		t.Fatalf("FlushScreenshots: %v", err)
	}
	if len(paths) != 2 || paths[0] == paths[1] {
		t.Fatalf("paths = %v, want two distinct files", paths)
	}
	if s.PendingScreenshots() != 0 {
		t.Errorf("pending = %d after flush", s.PendingScreenshots())
	}
	for _, p := range paths {
		if !strings.Contains(filepath.Base(p), "_front") {
			t.Errorf("%s does not carry the label", p)
		}
		f, err := os.Open(p)
		if err != nil {
			t.Fatal(err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("decode %s: %v", p, err)
		}
		if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
			t.Errorf("%s bounds = %v", p, b)
		}
	}
}

func TestScreenshotDirDefault(t *testing.T) {
	s := NewScene(NewRecorder(10, 10))
	if s.ScreenshotDir != "screenshots" {
		t.Errorf("ScreenshotDir = %q, want screenshots", s.ScreenshotDir)
	}
}

package cubeview

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Screenshot queues a labeled capture of the next presented frame. Queued
// labels are written by FlushScreenshots as timestamped PNGs in
// ScreenshotDir.
func (s *Scene) Screenshot(label string) {
	s.screenshotQueue = append(s.screenshotQueue, label)
}

// PendingScreenshots returns the number of queued screenshots.
func (s *Scene) PendingScreenshots() int {
	return len(s.screenshotQueue)
}

// FlushScreenshots writes img once per queued label, empties the queue and
// returns the paths written. Repeated labels within one flush get a numeric
// suffix so no file is overwritten.
func (s *Scene) FlushScreenshots(img image.Image) ([]string, error) {
	if len(s.screenshotQueue) == 0 {
		return nil, nil
	}
	labels := s.screenshotQueue
	s.screenshotQueue = nil

	if err := os.MkdirAll(s.ScreenshotDir, 0o755); err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}

	stamp := time.Now().Format("20060102_150405")
	seen := make(map[string]int, len(labels))
	paths := make([]string, 0, len(labels))
	for _, label := range labels {
		name := stamp + "_" + sanitizeLabel(label)
		if n := seen[name]; n > 0 {
			seen[name]++
			name = fmt.Sprintf("%s_%d", name, n)
		} else {
			seen[name] = 1
		}
		path := filepath.Join(s.ScreenshotDir, name+".png")
		if err := writePNG(path, img); err != nil {
			return paths, fmt.Errorf("screenshot %q: %w", label, err)
		}
		s.logger.Info("screenshot", "label", label, "path", path)
		paths = append(paths, path)
	}
	return paths, nil
}

// captureImage copies the pixels of an ebiten image. ReadPixels yields
// premultiplied RGBA, which is image.RGBA's layout. Only valid while the
// game loop runs.
func captureImage(src *ebiten.Image) *image.RGBA {
	b := src.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	src.ReadPixels(img.Pix)
	return img
}

var pngEncoder = png.Encoder{CompressionLevel: png.BestSpeed}

// writePNG encodes img next to path and renames it into place, so readers
// never see a partial file.
func writePNG(path string, img image.Image) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".shot-*.png")
	if err != nil {
		return err
	}
	if err := pngEncoder.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encode png: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// sanitizeLabel keeps ASCII letters, digits, '-' and '.', maps everything
// else to '_', and names empty labels "unlabeled".
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, label)
}

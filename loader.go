package cubeview

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// MaxImageSources is the most sources LoadImages accepts, one per face.
const MaxImageSources = FaceCount

// DefaultFallback is the image substituted for a source that cannot be
// loaded.
const DefaultFallback = "resources/leaves.png"

// maxRemoteImageBytes bounds how much of a remote or data: image is read.
const maxRemoteImageBytes = 32 << 20

// LoadOptions configures LoadImages. The zero value is usable.
type LoadOptions struct {
	// Fallback replaces empty or failing sources. Defaults to
	// DefaultFallback.
	Fallback string
	// Client fetches http(s) sources. Defaults to http.DefaultClient.
	Client *http.Client
	// MaxTextureSize, when positive, downscales larger images so neither
	// side exceeds it.
	MaxTextureSize int
	// Progress is called after each source finishes. Calls are serialized.
	Progress func(done, total int)
	// Logger receives fallback warnings. Defaults to slog.Default.
	Logger *slog.Logger
}

func (o *LoadOptions) defaults() {
	if o.Fallback == "" {
		o.Fallback = DefaultFallback
	}
	if o.Client == nil {
		o.Client = http.DefaultClient
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// LoadImages loads every source concurrently and returns the decoded images
// in input order once all have finished. A source is a file path, a file://,
// http:// or https:// URL, or a data: URL. Empty sources and sources that
// fail to load or decode are replaced by the fallback image. Cancelling ctx
// aborts outstanding loads and returns ctx's error.
func LoadImages(ctx context.Context, sources []string, opts LoadOptions) ([]image.Image, error) {
	if len(sources) > MaxImageSources {
		return nil, fmt.Errorf("%w: %d sources, max %d", ErrTooManySources, len(sources), MaxImageSources)
	}
	opts.defaults()

	fallback := sync.OnceValues(func() (image.Image, error) {
		img, err := loadSource(ctx, opts.Client, opts.Fallback)
		if err != nil {
			return nil, fmt.Errorf("load fallback %q: %w", opts.Fallback, err)
		}
		return img, nil
	})

	var (
		mu   sync.Mutex
		done int
	)
	report := func() {
		if opts.Progress == nil {
			return
		}
		mu.Lock()
		done++
		opts.Progress(done, len(sources))
		mu.Unlock()
	}

	images := make([]image.Image, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			img, err := loadOrFallback(gctx, opts, src, i, fallback)
			if err != nil {
				return err
			}
			images[i] = downscale(img, opts.MaxTextureSize)
			report()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

func loadOrFallback(ctx context.Context, opts LoadOptions, src string, i int, fallback func() (image.Image, error)) (image.Image, error) {
	if strings.TrimSpace(src) == "" {
		opts.Logger.Warn("image source empty, using fallback", "index", i, "fallback", opts.Fallback)
		return fallback()
	}
	img, err := loadSource(ctx, opts.Client, src)
	if err == nil {
		return img, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	opts.Logger.Warn("image load failed, using fallback", "index", i, "source", redactSource(src), "err", err)
	return fallback()
}

// loadSource opens and decodes one source.
func loadSource(ctx context.Context, client *http.Client, src string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch {
	case strings.HasPrefix(src, "data:"):
		data, err := decodeDataURL(src)
		if err != nil {
			return nil, err
		}
		return decodeImage(bytes.NewReader(data))
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return fetchImage(ctx, client, src)
	case strings.HasPrefix(src, "file://"):
		u, err := url.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", src, err)
		}
		return openImage(u.Path)
	default:
		return openImage(src)
	}
}

func openImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeImage(f)
}

func fetchImage(ctx context.Context, client *http.Client, src string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %s", src, resp.Status)
	}
	return decodeImage(io.LimitReader(resp.Body, maxRemoteImageBytes))
}

func decodeImage(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// decodeDataURL returns the payload of a data: URL, base64 or percent
// encoded.
func decodeDataURL(src string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("data url: missing ','")
	}
	if len(payload) > maxRemoteImageBytes*4/3 {
		return nil, fmt.Errorf("data url: payload too large")
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("data url: %w", err)
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("data url: %w", err)
	}
	return []byte(s), nil
}

// redactSource shortens data: URLs for logging.
func redactSource(src string) string {
	if strings.HasPrefix(src, "data:") {
		meta, _, _ := strings.Cut(src, ",")
		return meta + ",..."
	}
	return src
}

// downscale shrinks img with nearest-neighbor sampling so neither side
// exceeds limit, keeping the aspect ratio.
func downscale(img image.Image, limit int) image.Image {
	if limit <= 0 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= limit && h <= limit {
		return img
	}
	nw, nh := limit, limit
	if w > h {
		nh = h * limit / w
	} else {
		nw = w * limit / h
	}
	dst := image.NewNRGBA(image.Rect(0, 0, max(nw, 1), max(nh, 1)))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

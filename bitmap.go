package molecule

import (
	"context"
	"fmt"
	_ "image/gif"  // register GIF decoding for bitmaps
	_ "image/jpeg" // register JPEG decoding for bitmaps
	_ "image/png"  // register PNG decoding for bitmaps
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	_ "golang.org/x/image/bmp"  // register BMP decoding for bitmaps
	_ "golang.org/x/image/webp" // register WebP decoding for bitmaps
)

// ImageLoader resolves a bitmap URL into an image. Loaders are called lazily,
// the first time a bitmap node is drawn or measured.
type ImageLoader interface {
	LoadImage(url string) (*ebiten.Image, error)
}

// ImageLoaderFunc adapts a plain function to ImageLoader.
type ImageLoaderFunc func(url string) (*ebiten.Image, error)

// LoadImage calls f(url).
func (f ImageLoaderFunc) LoadImage(url string) (*ebiten.Image, error) {
	return f(url)
}

// DefaultImageLoader loads plain file paths, file:// URLs, and http(s) URLs.
// Any format with a registered image decoder is accepted (PNG, JPEG, GIF,
// BMP, WebP).
//
// Loads run synchronously on the first Draw of a bitmap, so an http(s) image
// can stall that frame for up to the client timeout (10s by default).
type DefaultImageLoader struct {
	// Client is used for http(s) URLs. Nil means a client with a 10s timeout.
	Client *http.Client
}

const defaultHTTPTimeout = 10 * time.Second

// LoadImage implements ImageLoader.
func (l DefaultImageLoader) LoadImage(url string) (*ebiten.Image, error) {
	switch {
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return l.loadHTTP(url)
	case strings.HasPrefix(url, "file://"):
		return loadFile(strings.TrimPrefix(url, "file://"))
	default:
		return loadFile(url)
	}
}

func loadFile(path string) (*ebiten.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bitmap %s: %w", path, err)
	}
	defer f.Close()
	return decodeBitmap(f, path)
}

func decodeBitmap(r io.Reader, name string) (*ebiten.Image, error) {
	img, _, err := ebitenutil.NewImageFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("decode bitmap %s: %w", name, err)
	}
	return img, nil
}

func (l DefaultImageLoader) loadHTTP(url string) (*ebiten.Image, error) {
	client := l.Client
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("request bitmap %s: %w", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bitmap %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch bitmap %s: status %s", url, resp.Status)
	}
	return decodeBitmap(resp.Body, url)
}

// bitmapSource is the lazily-resolved image behind a bitmap node.
type bitmapSource struct {
	url    string
	loader ImageLoader
	img    *ebiten.Image
	tried  bool
	err    error
}

// resolve loads the image on first use. A failed load is logged once and
// never retried; the bitmap then draws nothing.
func (b *bitmapSource) resolve(logger *slog.Logger) *ebiten.Image {
	if b.tried {
		return b.img
	}
	b.tried = true
	if b.loader == nil {
		b.loader = DefaultImageLoader{}
	}
	b.img, b.err = b.loader.LoadImage(b.url)
	if b.err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("bitmap load failed", "url", b.url, "err", b.err)
	}
	return b.img
}

// NewBitmap creates a bitmap node showing the image at url. Nothing is loaded
// until the node is first drawn; a nil loader means DefaultImageLoader.
func NewBitmap(name, url string, loader ImageLoader) *Node {
	n := &Node{
		Name:   name,
		Type:   NodeTypeBitmap,
		bitmap: &bitmapSource{url: url, loader: loader},
	}
	nodeDefaults(n)
	return n
}

// NewBitmapFromImage creates a bitmap node around an already-loaded image.
func NewBitmapFromImage(name string, img *ebiten.Image) *Node {
	n := &Node{
		Name:   name,
		Type:   NodeTypeBitmap,
		bitmap: &bitmapSource{img: img, tried: true},
	}
	nodeDefaults(n)
	return n
}

// BitmapURL returns the URL a bitmap node was created with, or "".
func (n *Node) BitmapURL() string {
	if n.bitmap == nil {
		return ""
	}
	return n.bitmap.url
}

// BitmapErr returns the load error of a bitmap node, if loading was attempted
// and failed.
func (n *Node) BitmapErr() error {
	if n.bitmap == nil {
		return nil
	}
	return n.bitmap.err
}

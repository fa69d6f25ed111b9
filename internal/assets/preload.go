// Package assets resolves puzzle images and warms them before a board that
// uses them is shown. Only image headers are decoded; the renderer owns the
// pixels.
package assets

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/webp" // WebP decoder
)

// Info describes a loaded image.
type Info struct {
	Ref    string `json:"ref"`
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Preloader loads image headers from disk or HTTP and caches the result.
// It satisfies puzzle.Preloader.
type Preloader struct {
	root    string
	timeout time.Duration
	client  *http.Client
	logger  *log.Logger

	mu       sync.Mutex
	cache    map[string]Info
	inflight map[string]bool
	wg       sync.WaitGroup
}

// NewPreloader creates a preloader that resolves relative refs against root.
func NewPreloader(root string, timeout time.Duration, logger *log.Logger) *Preloader {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Preloader{
		root:     root,
		timeout:  timeout,
		client:   &http.Client{},
		logger:   logger,
		cache:    make(map[string]Info),
		inflight: make(map[string]bool),
	}
}

// Preload starts loading ref in the background and returns immediately.
// Cached and already loading refs are skipped.
func (p *Preloader) Preload(ref string) {
	p.mu.Lock()
	if _, ok := p.cache[ref]; ok || p.inflight[ref] {
		p.mu.Unlock()
		return
	}
	p.inflight[ref] = true
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		_, err := p.Load(ctx, ref)

		p.mu.Lock()
		delete(p.inflight, ref)
		p.mu.Unlock()

		if err != nil {
			p.logger.Warn("image preload failed", "image", ref, "error", err)
		}
	}()
}

// Load decodes the header of ref, caching successful results.
func (p *Preloader) Load(ctx context.Context, ref string) (Info, error) {
	if info, ok := p.Lookup(ref); ok {
		return info, nil
	}

	rc, err := p.open(ctx, ref)
	if err != nil {
		return Info{}, err
	}
	defer rc.Close()

	cfg, format, err := image.DecodeConfig(rc)
	if err != nil {
		return Info{}, fmt.Errorf("assets: cannot decode %s: %w", ref, err)
	}

	info := Info{Ref: ref, Format: format, Width: cfg.Width, Height: cfg.Height}
	p.mu.Lock()
	p.cache[ref] = info
	p.mu.Unlock()

	p.logger.Debug("image loaded", "image", ref, "format", format, "width", cfg.Width, "height", cfg.Height)
	return info, nil
}

// Lookup returns the cached info for ref.
func (p *Preloader) Lookup(ref string) (Info, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	info, ok := p.cache[ref]
	return info, ok
}

// Wait blocks until all background preloads have finished.
func (p *Preloader) Wait() {
	p.wg.Wait()
}

// Resolve returns the location ref is loaded from.
func (p *Preloader) Resolve(ref string) string {
	if isRemote(ref) || filepath.IsAbs(ref) || p.root == "" {
		return ref
	}
	return filepath.Join(p.root, ref)
}

func (p *Preloader) open(ctx context.Context, ref string) (io.ReadCloser, error) {
	loc := p.Resolve(ref)
	if !isRemote(loc) {
		f, err := os.Open(loc)
		if err != nil {
			return nil, fmt.Errorf("assets: cannot open %s: %w", loc, err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, fmt.Errorf("assets: cannot build request for %s: %w", loc, err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("assets: cannot fetch %s: %w", loc, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("assets: fetch %s: %s", loc, resp.Status)
	}
	return resp.Body, nil
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

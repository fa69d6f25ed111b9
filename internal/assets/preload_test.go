package assets

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"golang.org/x/image/bmp"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestPreloadFromDisk(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "img"), 0o755); err != nil {
		t.Fatal(err)
	}
	writePNG(t, filepath.Join(root, "img", "1.png"), 30, 20)

	p := NewPreloader(root, 0, nil)
	p.Preload("img/1.png")
	p.Wait()

	info, ok := p.Lookup("img/1.png")
	if !ok {
		t.Fatal("image was not cached")
	}
	if info.Format != "png" || info.Width != 30 || info.Height != 20 {
		t.Errorf("info = %+v", info)
	}
}

func TestPreloadBMP(t *testing.T) {
	root := t.TempDir()
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 4))); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "tile.bmp"), buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewPreloader(root, 0, nil)
	info, err := p.Load(context.Background(), "tile.bmp")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if info.Format != "bmp" || info.Width != 8 || info.Height != 4 {
		t.Errorf("info = %+v", info)
	}
}

func TestPreloadFailureIsNotCached(t *testing.T) {
	root := t.TempDir()
	p := NewPreloader(root, 0, nil)

	p.Preload("missing.png")
	p.Wait()
	if _, ok := p.Lookup("missing.png"); ok {
		t.Error("missing image must not be cached")
	}

	if err := os.WriteFile(filepath.Join(root, "junk.png"), []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Load(context.Background(), "junk.png"); err == nil {
		t.Error("expected decode error")
	}
}

func TestPreloadOverHTTP(t *testing.T) {
	var buf bytes.Buffer
	png.Encode(&buf, image.NewGray(image.Rect(0, 0, 12, 12)))

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/img/5.png" {
			http.NotFound(w, r)
			return
		}
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	p := NewPreloader("", 0, nil)
	ref := srv.URL + "/img/5.png"

	p.Preload(ref)
	p.Wait()
	p.Preload(ref) // cached, no second fetch
	p.Wait()

	info, ok := p.Lookup(ref)
	if !ok || info.Width != 12 {
		t.Errorf("info = %+v, ok = %v", info, ok)
	}
	if hits.Load() != 1 {
		t.Errorf("expected 1 fetch, got %d", hits.Load())
	}

	if _, err := p.Load(context.Background(), srv.URL+"/img/404.png"); err == nil {
		t.Error("expected error for 404")
	}
}

func TestResolve(t *testing.T) {
	p := NewPreloader("/srv/puzzle", 0, nil)
	tests := []struct {
		ref, want string
	}{
		{"assets/img/1.png", filepath.Join("/srv/puzzle", "assets/img/1.png")},
		{"/abs/2.png", "/abs/2.png"},
		{"https://cdn.example.com/3.png", "https://cdn.example.com/3.png"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			if got := p.Resolve(tt.ref); got != tt.want {
				t.Errorf("Resolve(%q) = %q, expected %q", tt.ref, got, tt.want)
			}
		})
	}
}

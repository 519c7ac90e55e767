package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adframe/mockup"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestFetcherImage(t *testing.T) {
	data := pngBytes(t, 12, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			_, _ = w.Write(data)
		case "/broken.png":
			_, _ = w.Write([]byte("not an image"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client())

	t.Run("decodes a served image", func(t *testing.T) {
		pm, err := f.Image(context.Background(), srv.URL+"/ok.png")
		if err != nil {
			t.Fatalf("Image: %v", err)
		}
		if pm.Width() != 12 || pm.Height() != 8 {
			t.Errorf("size = %dx%d, want 12x8", pm.Width(), pm.Height())
		}
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		if _, err := f.Image(context.Background(), srv.URL+"/gone.png"); err == nil {
			t.Error("err = nil, want status error")
		}
	})

	t.Run("undecodable body is an error", func(t *testing.T) {
		if _, err := f.Image(context.Background(), srv.URL+"/broken.png"); err == nil {
			t.Error("err = nil, want decode error")
		}
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := f.Image(ctx, srv.URL+"/ok.png"); err == nil {
			t.Error("err = nil, want context error")
		}
	})
}

func TestMemStore(t *testing.T) {
	store := NewMemStore()
	pm := mockup.NewPixmap(4, 4)
	store.Put("a.png", pm)

	got, err := store.Image(context.Background(), "a.png")
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	if got != pm {
		t.Error("stored pixmap not returned")
	}

	if _, err := store.Image(context.Background(), "missing.png"); !errors.Is(err, mockup.ErrAssetUnavailable) {
		t.Errorf("err = %v, want ErrAssetUnavailable", err)
	}
}

// fakeRecords serves a fixed set of creative records.
type fakeRecords map[string]*mockup.Creative

func (f fakeRecords) Creative(_ context.Context, id string) (*mockup.Creative, error) {
	c, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("no record %s", id)
	}
	return c, nil
}

func TestCreativeResolver(t *testing.T) {
	store := NewMemStore()
	store.Put("ads/summer.png", mockup.NewPixmap(8, 8))

	resolver := &CreativeResolver{
		Records: fakeRecords{
			"c1": {ID: "c1", ImageRef: "ads/summer.png"},
			"c2": {ID: "c2", ImageRef: "ads/missing.png"},
		},
		Images: store,
	}

	t.Run("resolves id through record to pixels", func(t *testing.T) {
		pm, err := resolver.Creative(context.Background(), "c1")
		if err != nil {
			t.Fatalf("Creative: %v", err)
		}
		if pm.Width() != 8 {
			t.Errorf("width = %d, want 8", pm.Width())
		}
	})

	t.Run("unknown record", func(t *testing.T) {
		_, err := resolver.Creative(context.Background(), "nope")
		if !errors.Is(err, mockup.ErrAssetUnavailable) {
			t.Errorf("err = %v, want ErrAssetUnavailable", err)
		}
	})

	t.Run("record with missing image", func(t *testing.T) {
		_, err := resolver.Creative(context.Background(), "c2")
		if !errors.Is(err, mockup.ErrAssetUnavailable) {
			t.Errorf("err = %v, want ErrAssetUnavailable", err)
		}
	})
}

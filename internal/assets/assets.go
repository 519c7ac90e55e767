// Package assets resolves image references to decoded pixel buffers.
// It covers the two asset kinds the compositor consumes: frame base
// photos (by URL or storage key) and creatives (by catalog id).
package assets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/adframe/mockup"
)

// DefaultFetchTimeout bounds one asset download.
const DefaultFetchTimeout = 15 * time.Second

// maxAssetBytes caps a single asset download. Frame photos are large
// but bounded; anything past this is a misconfigured reference.
const maxAssetBytes = 64 << 20

// Fetcher downloads and decodes images over HTTP. It implements
// mockup.ImageSource and is safe for concurrent use.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher. Pass nil to use a default client with
// DefaultFetchTimeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	return &Fetcher{client: client}
}

// Image downloads the image at the given URL and decodes it.
func (f *Fetcher) Image(ctx context.Context, ref string) (*mockup.Pixmap, error) {
	data, err := f.fetchBytes(ctx, ref)
	if err != nil {
		return nil, err
	}
	pm, err := mockup.DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("assets: %s: %w", ref, err)
	}
	mockup.Logger().Debug("asset fetched",
		slog.String("ref", ref),
		slog.Int("bytes", len(data)),
		slog.Int("width", pm.Width()),
		slog.Int("height", pm.Height()))
	return pm, nil
}

// fetchBytes performs the HTTP GET for an asset reference.
func (f *Fetcher) fetchBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("assets: build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("assets: fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("assets: fetch %s: status %d %s", url, resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes))
	if err != nil {
		return nil, fmt.Errorf("assets: read %s: %w", url, err)
	}
	return data, nil
}

// MemStore is an in-memory image store keyed by reference. It
// implements mockup.ImageSource and backs tests and the demo binary.
type MemStore struct {
	mu     sync.RWMutex
	images map[string]*mockup.Pixmap
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{images: make(map[string]*mockup.Pixmap)}
}

// Put stores a pixmap under the given reference.
func (s *MemStore) Put(ref string, pm *mockup.Pixmap) {
	s.mu.Lock()
	s.images[ref] = pm
	s.mu.Unlock()
}

// Image returns the pixmap stored under ref.
func (s *MemStore) Image(_ context.Context, ref string) (*mockup.Pixmap, error) {
	s.mu.RLock()
	pm, ok := s.images[ref]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", mockup.ErrAssetUnavailable, ref)
	}
	return pm, nil
}

// CreativeRecords looks creative records up by id. The sqlite catalog
// implements this; tests use small fakes.
type CreativeRecords interface {
	Creative(ctx context.Context, id string) (*mockup.Creative, error)
}

// CreativeResolver combines a record store and an image source into a
// mockup.CreativeSource: id → record → image reference → pixels.
type CreativeResolver struct {
	Records CreativeRecords
	Images  mockup.ImageSource
}

// Creative resolves a creative id to its decoded image.
func (r *CreativeResolver) Creative(ctx context.Context, id string) (*mockup.Pixmap, error) {
	rec, err := r.Records.Creative(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: creative %s: %v", mockup.ErrAssetUnavailable, id, err)
	}
	pm, err := r.Images.Image(ctx, rec.ImageRef)
	if err != nil {
		return nil, fmt.Errorf("%w: creative %s: %v", mockup.ErrAssetUnavailable, id, err)
	}
	return pm, nil
}

// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"sync"
)

// failer is the subset of testing.TB the fixtures need.
type failer interface {
	Helper()
	Fatalf(string, ...any)
}

// TinyPNG returns an in-memory PNG byte slice with the requested dimensions.
func TinyPNG(t failer, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// TinyJPEG returns an in-memory JPEG byte slice with the requested dimensions.
func TinyJPEG(t failer, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// MemStoreBase is the URL prefix the in-memory store serves objects under.
const MemStoreBase = "https://media.test/"

// MemStore is an in-memory object store for tests. It records puts and
// deletes so assertions can inspect what the media pipeline did.
type MemStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	Deleted []string
	PutErr  error
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{objects: make(map[string][]byte)}
}

func (m *MemStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return "", m.PutErr
	}
	m.objects[key] = data
	return MemStoreBase + key, nil
}

func (m *MemStore) Delete(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, ok := m.keyFor(url)
	if !ok {
		return nil
	}
	delete(m.objects, key)
	m.Deleted = append(m.Deleted, url)
	return nil
}

func (m *MemStore) KeyFor(url string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keyFor(url)
}

func (m *MemStore) keyFor(url string) (string, bool) {
	if !strings.HasPrefix(url, MemStoreBase) {
		return "", false
	}
	return strings.TrimPrefix(url, MemStoreBase), true
}

// Len returns the number of stored objects.
func (m *MemStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// Has reports whether an object is stored under the given URL.
func (m *MemStore) Has(url string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, ok := m.keyFor(url)
	if !ok {
		return false
	}
	_, ok = m.objects[key]
	return ok
}

package images

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/spf13/afero"
)

func TestGetDownloadsOnceThenServesFromDisk(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/w500/poster.jpg" {
			t.Errorf("unexpected CDN path %q", r.URL.Path)
		}
		w.Write([]byte("jpeg-bytes"))
	}))
	defer server.Close()

	service := NewService(afero.NewMemMapFs(), server.URL)

	data, contentType, err := service.Get(context.Background(), "w500", "/poster.jpg")
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Fatalf("unexpected bytes %q", data)
	}
	if contentType != "image/jpeg" {
		t.Fatalf("unexpected content type %q", contentType)
	}

	if _, _, err := service.Get(context.Background(), "w500", "/poster.jpg"); err != nil {
		t.Fatalf("second get: %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected one CDN fetch, got %d", hits.Load())
	}
}

func TestGetUnknownSizeFallsBackToDefault(t *testing.T) {
	var lastPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastPath = r.URL.Path
		w.Write([]byte("x"))
	}))
	defer server.Close()

	service := NewService(afero.NewMemMapFs(), server.URL)

	if _, _, err := service.Get(context.Background(), "w9999", "/poster.jpg"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if lastPath != "/w500/poster.jpg" {
		t.Fatalf("expected fallback to w500, got %q", lastPath)
	}
}

func TestGetMissingImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	service := NewService(afero.NewMemMapFs(), server.URL)

	_, _, err := service.Get(context.Background(), "w500", "/missing.jpg")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetRejectsEmptyPath(t *testing.T) {
	service := NewService(afero.NewMemMapFs(), "http://unused.example.com")

	for _, p := range []string{"", "/", "/.."} {
		if _, _, err := service.Get(context.Background(), "w500", p); err == nil {
			t.Fatalf("expected path %q to be rejected", p)
		}
	}
}

func TestContentTypes(t *testing.T) {
	cases := map[string]string{
		"w500/a.png":  "image/png",
		"w500/a.webp": "image/webp",
		"w500/a.svg":  "image/svg+xml",
		"w500/a.jpg":  "image/jpeg",
		"w500/a":      "image/jpeg",
	}
	for name, want := range cases {
		if got := contentTypeFor(name); got != want {
			t.Fatalf("contentTypeFor(%q) = %q, want %q", name, got, want)
		}
	}
}

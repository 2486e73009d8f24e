// Package images proxies poster and backdrop images from the provider's CDN
// and caches the bytes on disk, so repeat views never leave the box.
package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// ErrNotFound is returned when the CDN has no image at the requested path.
var ErrNotFound = errors.New("image not found")

var allowedSizes = map[string]bool{
	"w92":      true,
	"w154":     true,
	"w185":     true,
	"w342":     true,
	"w500":     true,
	"w780":     true,
	"original": true,
}

// Service fetches and caches provider CDN images.
type Service struct {
	fs         afero.Fs
	httpClient *http.Client
	baseURL    string
}

// NewService creates an image cache rooted at the given filesystem. Callers
// typically pass an afero.BasePathFs over the configured cache directory.
func NewService(fs afero.Fs, baseURL string) *Service {
	return &Service{
		fs:         fs,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// Get returns the image bytes and content type for a size and file path,
// downloading and caching on first request. The file path is the provider's
// own path segment, e.g. "/abc123.jpg".
func (s *Service) Get(ctx context.Context, size, filePath string) ([]byte, string, error) {
	if !allowedSizes[size] {
		size = "w500"
	}
	name, err := cacheName(size, filePath)
	if err != nil {
		return nil, "", err
	}

	if data, err := afero.ReadFile(s.fs, name); err == nil {
		return data, contentTypeFor(name), nil
	}

	data, err := s.download(ctx, size, filePath)
	if err != nil {
		return nil, "", err
	}

	if err := s.store(name, data); err != nil {
		// Serving beats caching. Log and return the bytes anyway.
		log.Printf("[images] cache write for %s failed: %v", name, err)
	}
	return data, contentTypeFor(name), nil
}

func (s *Service) download(ctx context.Context, size, filePath string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s/%s", s.baseURL, size, strings.TrimPrefix(filePath, "/"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image %s: unexpected status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read image body: %w", err)
	}
	return data, nil
}

func (s *Service) store(name string, data []byte) error {
	if dir := path.Dir(name); dir != "." {
		if err := s.fs.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return afero.WriteFile(s.fs, name, data, 0644)
}

// cacheName maps (size, provider file path) to an on-disk name, rejecting
// anything that would escape the cache root.
func cacheName(size, filePath string) (string, error) {
	base := path.Base(strings.TrimPrefix(filePath, "/"))
	if base == "" || base == "." || base == ".." || strings.Contains(base, string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid image path %q", filePath)
	}
	return path.Join(size, base), nil
}

func contentTypeFor(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		return "image/png"
	case ".svg":
		return "image/svg+xml"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

package services

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// PlaceholderPath is the request path of the reserved image used when a
// story has no uploaded picture. It is never a valid removal target.
const PlaceholderPath = "/assets/placeholder.png"

// AssetServiceProvider defines the interface for stored story images.
type AssetServiceProvider interface {
	Save(file io.Reader, originalName, contentType string) (string, error)
	Remove(name string) error
	PublicURL(r *http.Request, name string) string
	PlaceholderURL(r *http.Request) string
}

// AssetService stores uploaded images on the local filesystem under
// server-generated names.
type AssetService struct {
	uploadsDir string
}

// NewAssetService creates a new AssetService rooted at uploadsDir.
func NewAssetService(uploadsDir string) *AssetService {
	if err := os.MkdirAll(uploadsDir, 0755); err != nil {
		log.Error().Err(err).Str("dir", uploadsDir).Msg("Failed to create uploads directory")
	}
	return &AssetService{uploadsDir: uploadsDir}
}

// Save writes an uploaded image exactly once under a generated name and
// returns that name. Only the extension of the client-supplied filename is
// kept.
func (s *AssetService) Save(file io.Reader, originalName, contentType string) (string, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: got %s", ErrUnsupportedMedia, contentType)
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.New().String() + ext

	dst, err := os.Create(filepath.Join(s.uploadsDir, name))
	if err != nil {
		return "", fmt.Errorf("could not create upload file: %w", err)
	}

	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("could not write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", err
	}

	return name, nil
}

// Remove deletes a stored image by name. Removing an already-absent file
// reports ErrNotFound, which best-effort callers ignore. The placeholder is
// reserved and refused outright.
func (s *AssetService) Remove(name string) error {
	if name == "" || name == path.Base(PlaceholderPath) {
		return ErrReservedAsset
	}

	// Base() strips any path components a hostile reference could smuggle in.
	err := os.Remove(filepath.Join(s.uploadsDir, filepath.Base(name)))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: image %s", ErrNotFound, name)
		}
		return err
	}
	return nil
}

// PublicURL builds the externally reachable URL of a stored image from the
// live request, so the same build works across environments.
func (s *AssetService) PublicURL(r *http.Request, name string) string {
	return fmt.Sprintf("%s://%s/uploads/%s", requestScheme(r), r.Host, name)
}

// PlaceholderURL builds the reserved placeholder reference for the live
// request host.
func (s *AssetService) PlaceholderURL(r *http.Request) string {
	return fmt.Sprintf("%s://%s%s", requestScheme(r), r.Host, PlaceholderPath)
}

func requestScheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

// IsPlaceholder reports whether an image reference is the reserved
// placeholder (or empty, which the story flows treat the same way).
func IsPlaceholder(ref string) bool {
	return ref == "" || strings.HasSuffix(ref, PlaceholderPath)
}

// AssetNameFromURL extracts the stored filename from an image reference as
// issued by PublicURL.
func AssetNameFromURL(ref string) string {
	if u, err := url.Parse(ref); err == nil {
		return path.Base(u.Path)
	}
	return path.Base(ref)
}

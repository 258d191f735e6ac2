// Package imagesrc turns the image argument into a model.ImageSource.
package imagesrc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/facetrace/cli/src/model"
)

// MaxImageSize is the largest image the service accepts
const MaxImageSize = 10 * 1024 * 1024

// DownloadTimeout bounds a URL image download
const DownloadTimeout = 30 * time.Second

// browserUserAgent is sent when downloading URL images; some hosts refuse
// unknown clients
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Extensions lists the accepted image file extensions
var Extensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
}

// IsURL reports whether s has both a scheme and a host
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// SupportedExtensions returns the accepted extensions, sorted
func SupportedExtensions() []string {
	exts := make([]string, 0, len(Extensions))
	for ext := range Extensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Resolver resolves image arguments
type Resolver struct {
	HTTPClient *http.Client
	MaxSize    int64
}

// NewResolver creates a resolver with the default limits
func NewResolver() *Resolver {
	return &Resolver{
		HTTPClient: &http.Client{Timeout: DownloadTimeout},
		MaxSize:    MaxImageSize,
	}
}

// Resolve classifies arg as a URL or a file and validates it. URL images are
// downloaded once to check they are reachable and within the size limit, but
// are returned as a reference for the service to fetch.
func (r *Resolver) Resolve(ctx context.Context, arg string) (model.ImageSource, error) {
	if arg == "" {
		return nil, &model.ValidationError{Message: "No command or image provided"}
	}
	if IsURL(arg) {
		if _, err := r.Download(ctx, arg); err != nil {
			return nil, err
		}
		return model.URLImage{URL: arg}, nil
	}
	return r.ReadFile(arg)
}

// ReadFile loads and validates a local image
func (r *Resolver) ReadFile(path string) (model.FileImage, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.FileImage{}, &model.ValidationError{Message: fmt.Sprintf("Image not found: %s", path)}
		}
		return model.FileImage{}, fmt.Errorf("failed to stat image: %w", err)
	}
	if info.IsDir() {
		return model.FileImage{}, &model.ValidationError{Message: fmt.Sprintf("Image path is a directory: %s", path)}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !Extensions[ext] {
		return model.FileImage{}, &model.ValidationError{
			Message: fmt.Sprintf("Unsupported file format: %q (supported: %s)", ext, strings.Join(SupportedExtensions(), ", ")),
		}
	}
	if info.Size() > r.maxSize() {
		return model.FileImage{}, tooLarge()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return model.FileImage{}, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) == 0 {
		return model.FileImage{}, &model.ValidationError{Message: fmt.Sprintf("Image is empty: %s", path)}
	}
	return model.FileImage{Name: filepath.Base(path), Data: data}, nil
}

// Download fetches a URL image and enforces the size limit
func (r *Resolver) Download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &model.ValidationError{Message: fmt.Sprintf("Invalid image URL: %v", err)}
	}
	req.Header.Set("User-Agent", browserUserAgent)

	slog.Debug("downloading image", "url", rawURL)

	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &model.TransportError{Op: "image download", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.TransportError{
			Op:  "image download",
			Err: fmt.Errorf("failed to download image from URL (HTTP %d)", resp.StatusCode),
		}
	}

	// Read one byte past the limit to detect oversized bodies
	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxSize()+1))
	if err != nil {
		return nil, &model.TransportError{Op: "image download", Err: err}
	}
	if int64(len(data)) > r.maxSize() {
		return nil, tooLarge()
	}
	if len(data) == 0 {
		return nil, &model.ValidationError{Message: "Downloaded image is empty"}
	}

	slog.Debug("downloaded image", "url", rawURL, "bytes", len(data))
	return data, nil
}

func (r *Resolver) maxSize() int64 {
	if r.MaxSize <= 0 {
		return MaxImageSize
	}
	return r.MaxSize
}

func tooLarge() error {
	return &model.ValidationError{Message: "Image too large. Maximum size is 10MB"}
}

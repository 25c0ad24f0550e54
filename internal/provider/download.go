package provider

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"
)

// Download fetches the full-size image of meta into dest and returns its size.
// Nothing is left at dest unless the image passes validation.
func (w *Wallhaven) Download(ctx context.Context, meta ImageMeta, dest string) (int64, error) {
	if meta.Path == "" {
		return 0, fmt.Errorf("%w: wallpaper %s has no image URL", ErrUpstream, meta.ID)
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".wallhop-download-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		if _, err := os.Stat(tmpPath); err == nil {
			_ = os.Remove(tmpPath)
		}
	}()

	resp, err := w.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetHeader("Accept", "image/*").
		Get(meta.Path)
	if err != nil {
		return 0, classify(err)
	}
	body := resp.RawBody()
	defer func() { _ = body.Close() }()

	if resp.StatusCode() != http.StatusOK {
		return 0, fmt.Errorf("%w: download returned status %d", ErrUpstream, resp.StatusCode())
	}
	if ct := resp.Header().Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return 0, fmt.Errorf("%w: unexpected content type %q", ErrIntegrity, ct)
	}

	n, err := io.Copy(tmp, body)
	if err != nil {
		return 0, classify(err)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: empty response body", ErrIntegrity)
	}
	if n < w.minSize {
		return 0, fmt.Errorf("%w: %d bytes is below the minimum of %d", ErrIntegrity, n, w.minSize)
	}
	if err := tmp.Sync(); err != nil {
		return 0, fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := checkImage(tmpPath); err != nil {
		return 0, err
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return 0, fmt.Errorf("failed to move downloaded file: %w", err)
	}
	return n, nil
}

func checkImage(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open download: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, _, err := image.DecodeConfig(f); err != nil {
		return fmt.Errorf("%w: %v", ErrIntegrity, err)
	}
	return nil
}

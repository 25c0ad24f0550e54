// Package provider talks to the wallhaven search API.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"path"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://wallhaven.cc/api/v1"
	DefaultTimeout = 30 * time.Second

	// DefaultMinSize is the smallest download accepted as an image.
	DefaultMinSize = 10 * 1024
)

var (
	ErrTimeout   = errors.New("request timed out")
	ErrNetwork   = errors.New("network error")
	ErrUpstream  = errors.New("upstream error")
	ErrIntegrity = errors.New("downloaded file failed integrity check")
)

type Tag struct {
	Name string `json:"name"`
}

type ImageMeta struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	Path       string `json:"path"`
	Resolution string `json:"resolution"`
	FileType   string `json:"file_type"`
	FileSize   int64  `json:"file_size"`
	Category   string `json:"category"`
	Purity     string `json:"purity"`
	Tags       []Tag  `json:"tags"`
}

// Ext returns the file extension of the full-size image, with the dot.
func (m ImageMeta) Ext() string {
	if ext := path.Ext(m.Path); ext != "" {
		return strings.ToLower(ext)
	}
	switch m.FileType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

type Meta struct {
	CurrentPage int     `json:"current_page"`
	LastPage    int     `json:"last_page"`
	Total       int     `json:"total"`
	Seed        *string `json:"seed"`
}

type SearchResult struct {
	Data []ImageMeta `json:"data"`
	Meta Meta        `json:"meta"`
}

// SeedValue returns the seed reported by the API, or "".
func (r *SearchResult) SeedValue() string {
	if r == nil || r.Meta.Seed == nil {
		return ""
	}
	return *r.Meta.Seed
}

// Searcher is what the fetch pipeline needs from the API.
type Searcher interface {
	Search(ctx context.Context, values map[string]string) (*SearchResult, error)
	TagFor(ctx context.Context, id string) (string, error)
	Download(ctx context.Context, meta ImageMeta, dest string) (int64, error)
}

// classify maps transport errors onto ErrTimeout and ErrNetwork.
// Cancellation is passed through untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

// Package datasource produces the next wallpaper to apply, either from the
// wallhaven API or from a local folder.
package datasource

import (
	"errors"
	"fmt"

	"github.com/darkawower/wallhop/internal/provider"
)

var (
	// ErrUpstreamExhausted means a page past the first came back empty. The
	// fetch state for the query has been reset.
	ErrUpstreamExhausted = errors.New("no more results for this search")

	// ErrNoResults means the first page came back empty.
	ErrNoResults = fmt.Errorf("%w: search returned no results", provider.ErrUpstream)

	// ErrNoImages means the local folder holds no supported images.
	ErrNoImages = errors.New("no images found")
)

const (
	SourceWallhaven = "wallhaven"
	SourceLocal     = "local"
)

// Image is a wallpaper on disk, ready to apply.
type Image struct {
	Path       string
	Source     string
	ID         string
	Label      string
	Resolution string
	Size       int64
}

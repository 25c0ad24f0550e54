package datasource

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/darkawower/wallhop/internal/cache"
)

// LocalSource picks wallpapers from a folder on disk.
type LocalSource struct {
	dir       string
	recursive bool
	rng       *rand.Rand
}

func NewLocalSource(dir string, recursive bool) *LocalSource {
	return &LocalSource{
		dir:       dir,
		recursive: recursive,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ListImages returns every supported image in the folder, sorted by path.
func (s *LocalSource) ListImages(ctx context.Context) ([]Image, error) {
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("directory does not exist: %s", s.dir)
	}

	pattern := cache.ImagePattern
	if s.recursive {
		pattern = "**/" + pattern
	}

	var images []Image
	err := doublestar.GlobWalk(os.DirFS(s.dir), pattern, func(path string, _ os.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		images = append(images, Image{
			Path:   filepath.Join(s.dir, filepath.FromSlash(path)),
			Source: SourceLocal,
		})
		return nil
	}, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory: %w", err)
	}

	sort.Slice(images, func(i, j int) bool { return images[i].Path < images[j].Path })
	return images, nil
}

// PickRandom returns a random image other than exclude. exclude is only
// returned when it is the sole image.
func (s *LocalSource) PickRandom(ctx context.Context, exclude string) (*Image, error) {
	images, err := s.ListImages(ctx)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoImages, s.dir)
	}

	candidates := make([]Image, 0, len(images))
	for _, img := range images {
		if img.Path != exclude {
			candidates = append(candidates, img)
		}
	}
	if len(candidates) == 0 {
		candidates = images
	}

	img := candidates[s.rng.Intn(len(candidates))]
	if info, err := os.Stat(img.Path); err == nil {
		img.Size = info.Size()
	}
	return &img, nil
}

// Package cache tracks which remote wallpapers are already on disk and keeps
// the download directory to a bounded size.
package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"
)

// ErrAllDuplicate indicates every candidate is already downloaded.
var ErrAllDuplicate = errors.New("all results already downloaded")

// FilePrefix starts the name of every downloaded wallpaper.
const FilePrefix = "wallhaven-"

// ImagePattern matches supported image files in a single directory.
const ImagePattern = "*.{jpg,jpeg,png,webp,JPG,JPEG,PNG,WEBP}"

const downloadedPattern = FilePrefix + ImagePattern

// FileName builds the cache file name for a remote id. label is appended
// after an underscore when not empty.
func FileName(id, label, ext string) string {
	if ext == "" {
		ext = ".jpg"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	name := FilePrefix + id
	if label != "" {
		name += "_" + label
	}
	return name + strings.ToLower(ext)
}

// IDFromName extracts the remote id from a cache file name.
func IDFromName(name string) (string, bool) {
	base := filepath.Base(name)
	if !strings.HasPrefix(base, FilePrefix) {
		return "", false
	}
	rest := strings.TrimPrefix(base, FilePrefix)
	if i := strings.IndexAny(rest, "_."); i >= 0 {
		rest = rest[:i]
	}
	if rest == "" {
		return "", false
	}
	return rest, true
}

// DownloadedIDs scans dir for downloaded wallpapers. A missing directory is
// an empty set.
func DownloadedIDs(dir string) (map[string]struct{}, error) {
	ids := make(map[string]struct{})

	names, err := glob(dir, downloadedPattern)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if id, ok := IDFromName(name); ok {
			ids[id] = struct{}{}
		}
	}
	return ids, nil
}

// StartIndex picks where SelectUndownloaded begins: a random offset for random
// sorting, the top of the page otherwise.
func StartIndex(n int, random bool, rng *rand.Rand) int {
	if !random || n <= 1 || rng == nil {
		return 0
	}
	return rng.Intn(n)
}

// SelectUndownloaded scans ids cyclically from start, wrapping once, and
// returns the index of the first id not in downloaded.
func SelectUndownloaded(ids []string, downloaded map[string]struct{}, start int) (int, error) {
	n := len(ids)
	if n == 0 {
		return -1, ErrAllDuplicate
	}
	start = ((start % n) + n) % n

	for step := 0; step < n; step++ {
		i := (start + step) % n
		if _, ok := downloaded[ids[i]]; !ok {
			return i, nil
		}
	}
	return -1, ErrAllDuplicate
}

// Prune makes room for exactly one more image in dir by deleting the oldest
// images until keepLast-1 remain. keepLast 0 keeps everything.
func Prune(dir string, keepLast int) ([]string, error) {
	if keepLast <= 0 {
		return nil, nil
	}

	names, err := glob(dir, ImagePattern)
	if err != nil {
		return nil, err
	}
	if len(names) < keepLast {
		return nil, nil
	}

	type file struct {
		path string
		mod  int64
	}
	files := make([]file, 0, len(names))
	for _, name := range names {
		p := filepath.Join(dir, name)
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		files = append(files, file{path: p, mod: info.ModTime().UnixNano()})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].mod != files[j].mod {
			return files[i].mod < files[j].mod
		}
		return files[i].path < files[j].path
	})

	excess := len(files) - (keepLast - 1)
	var removed []string
	for _, f := range files[:max(excess, 0)] {
		if err := os.Remove(f.path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, fmt.Errorf("remove %s: %w", f.path, err)
		}
		removed = append(removed, f.path)
	}

	if len(removed) > 0 {
		log.Debug().Str("dir", dir).Int("removed", len(removed)).Int("keep", keepLast).Msg("cache pruned")
	}
	return removed, nil
}

// glob lists regular files in dir (not recursive) matching pattern.
func glob(dir, pattern string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat cache dir: %w", err)
	}

	names, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan cache dir: %w", err)
	}
	return names, nil
}

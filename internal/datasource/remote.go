package datasource

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"github.com/darkawower/wallhop/internal/cache"
	"github.com/darkawower/wallhop/internal/fetchstate"
	"github.com/darkawower/wallhop/internal/provider"
	"github.com/darkawower/wallhop/internal/query"
)

type RemoteOptions struct {
	Params   query.Params
	APIKey   string
	CacheDir string
	KeepLast int
	Rand     *rand.Rand
}

// RemoteSource fetches wallpapers page by page, resuming where the previous
// run for the same search stopped.
type RemoteSource struct {
	api   provider.Searcher
	state *fetchstate.Store
	opts  RemoteOptions
	rng   *rand.Rand
}

func NewRemoteSource(api provider.Searcher, state *fetchstate.Store, opts RemoteOptions) *RemoteSource {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RemoteSource{api: api, state: state, opts: opts, rng: rng}
}

// Fingerprint identifies the source's search parameters in the fetch state.
func (s *RemoteSource) Fingerprint() string {
	return query.Fingerprint(s.opts.Params)
}

// Fetch downloads one wallpaper not yet in the cache.
//
// cache.ErrAllDuplicate and ErrUpstreamExhausted are expected outcomes: the
// fetch state has already been moved on when they are returned.
func (s *RemoteSource) Fetch(ctx context.Context) (*Image, error) {
	params := s.opts.Params
	fp := s.Fingerprint()

	rec, err := s.state.Load(fp)
	if err != nil {
		return nil, err
	}

	logger := log.With().Str("fingerprint", fp).Int("page", rec.Page).Logger()
	logger.Debug().Str("seed", rec.Seed).Msg("searching")

	result, err := s.api.Search(ctx, params.Values(rec.Page, rec.Seed, s.opts.APIKey))
	if err != nil {
		return nil, err
	}

	if len(result.Data) == 0 {
		if rec.Page > 1 {
			logger.Info().Msg("search exhausted, starting over")
			if err := s.state.Reset(fp); err != nil {
				return nil, err
			}
			return nil, ErrUpstreamExhausted
		}
		return nil, ErrNoResults
	}

	seed := rec.Seed
	if params.Sorting == query.SortRandom {
		if v := result.SeedValue(); v != "" {
			seed = v
		}
	}

	if _, err := cache.Prune(s.opts.CacheDir, s.opts.KeepLast); err != nil {
		logger.Warn().Err(err).Msg("failed to prune cache")
	}

	downloaded, err := cache.DownloadedIDs(s.opts.CacheDir)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(result.Data))
	for i, m := range result.Data {
		ids[i] = m.ID
	}

	start := cache.StartIndex(len(ids), params.Sorting == query.SortRandom, s.rng)
	idx, err := cache.SelectUndownloaded(ids, downloaded, start)
	if errors.Is(err, cache.ErrAllDuplicate) {
		logger.Info().Int("candidates", len(ids)).Msg("every result already downloaded, advancing page")
		if err := s.state.Save(fp, rec.Page, seed); err != nil {
			return nil, err
		}
		if err := s.state.Advance(fp); err != nil {
			return nil, err
		}
		return nil, cache.ErrAllDuplicate
	}
	if err != nil {
		return nil, err
	}

	meta := result.Data[idx]
	label := s.label(ctx, meta.ID)
	dest := filepath.Join(s.opts.CacheDir, cache.FileName(meta.ID, label, meta.Ext()))

	size, err := s.api.Download(ctx, meta, dest)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", meta.ID, err)
	}

	if err := s.state.Save(fp, rec.Page+1, seed); err != nil {
		return nil, err
	}

	logger.Info().
		Str("id", meta.ID).
		Str("size", humanize.Bytes(uint64(size))).
		Str("path", dest).
		Msg("wallpaper downloaded")

	return &Image{
		Path:       dest,
		Source:     SourceWallhaven,
		ID:         meta.ID,
		Label:      label,
		Resolution: meta.Resolution,
		Size:       size,
	}, nil
}

// label names the download after the search terms. Queries made only of
// exclusions borrow the first tag of the picked wallpaper instead.
func (s *RemoteSource) label(ctx context.Context, id string) string {
	q := s.opts.Params.Parsed()
	if !q.ExclusionOnly() {
		return query.Sanitize(q.Label())
	}

	tag, err := s.api.TagFor(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("id", id).Msg("tag lookup failed, saving without label")
		return ""
	}
	return query.Sanitize(tag)
}

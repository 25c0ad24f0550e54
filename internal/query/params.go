package query

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/mitchellh/hashstructure/v2"
)

// ErrInvalid wraps every parameter validation failure.
var ErrInvalid = errors.New("invalid search parameter")

// Sorting modes accepted by the search API.
const (
	SortRelevance = "relevance"
	SortRandom    = "random"
	SortDateAdded = "date_added"
	SortViews     = "views"
	SortFavorites = "favorites"
	SortToplist   = "toplist"
)

var (
	sortings  = []string{SortRelevance, SortRandom, SortDateAdded, SortViews, SortFavorites, SortToplist}
	orders    = []string{"asc", "desc"}
	topRanges = []string{"1d", "3d", "1w", "1M", "3M", "6M", "1y"}

	resolutionRe = regexp.MustCompile(`^[1-9][0-9]*x[1-9][0-9]*$`)
	colorRe      = regexp.MustCompile(`^[0-9a-fA-F]{6}$`)
)

// Categories selects wallhaven content categories.
type Categories struct {
	General bool `toml:"general"`
	Anime   bool `toml:"anime"`
	People  bool `toml:"people"`
}

// Bitmask renders the categories as the API's three-digit mask.
func (c Categories) Bitmask() string {
	return bits(c.General, c.Anime, c.People)
}

// Purity selects wallhaven purity levels.
type Purity struct {
	SFW     bool `toml:"sfw"`
	Sketchy bool `toml:"sketchy"`
	NSFW    bool `toml:"nsfw"`
}

// Bitmask renders the purity levels as the API's three-digit mask.
func (p Purity) Bitmask() string {
	return bits(p.SFW, p.Sketchy, p.NSFW)
}

// Params are the search parameters that shape a result sequence.
type Params struct {
	Query       string     `toml:"query"`
	Categories  Categories `toml:"categories"`
	Purity      Purity     `toml:"purity"`
	Sorting     string     `toml:"sorting"`
	Order       string     `toml:"order"`
	TopRange    string     `toml:"top_range"`
	AtLeast     string     `toml:"atleast"`
	Resolutions []string   `toml:"resolutions"`
	Ratios      []string   `toml:"ratios"`
	Color       string     `toml:"color"`
}

// Parsed returns the parsed free-text query.
func (p Params) Parsed() Query {
	return Parse(p.Query)
}

// Validate checks every field. apiKey is required for NSFW results.
func (p Params) Validate(apiKey string) error {
	if !p.Categories.General && !p.Categories.Anime && !p.Categories.People {
		return fmt.Errorf("%w: at least one category is required", ErrInvalid)
	}
	if !p.Purity.SFW && !p.Purity.Sketchy && !p.Purity.NSFW {
		return fmt.Errorf("%w: at least one purity level is required", ErrInvalid)
	}
	if p.Purity.NSFW && apiKey == "" {
		return fmt.Errorf("%w: nsfw purity requires an API key", ErrInvalid)
	}
	if !slices.Contains(sortings, p.Sorting) {
		return fmt.Errorf("%w: sorting %q (must be one of %s)", ErrInvalid, p.Sorting, strings.Join(sortings, ", "))
	}
	if !slices.Contains(orders, p.Order) {
		return fmt.Errorf("%w: order %q (must be asc or desc)", ErrInvalid, p.Order)
	}
	if p.TopRange != "" && !slices.Contains(topRanges, p.TopRange) {
		return fmt.Errorf("%w: top range %q (must be one of %s)", ErrInvalid, p.TopRange, strings.Join(topRanges, ", "))
	}
	if p.AtLeast != "" && !resolutionRe.MatchString(p.AtLeast) {
		return fmt.Errorf("%w: minimum resolution %q (want WIDTHxHEIGHT)", ErrInvalid, p.AtLeast)
	}
	for _, r := range p.Resolutions {
		if !resolutionRe.MatchString(r) {
			return fmt.Errorf("%w: resolution %q (want WIDTHxHEIGHT)", ErrInvalid, r)
		}
	}
	for _, r := range p.Ratios {
		if r != "landscape" && r != "portrait" && !resolutionRe.MatchString(r) {
			return fmt.Errorf("%w: ratio %q (want WxH, landscape or portrait)", ErrInvalid, r)
		}
	}
	if p.Color != "" && !colorRe.MatchString(strings.TrimPrefix(p.Color, "#")) {
		return fmt.Errorf("%w: color %q (want 6 hex digits)", ErrInvalid, p.Color)
	}
	return nil
}

// Values renders the API query parameters for one page.
func (p Params) Values(page int, seed, apiKey string) map[string]string {
	v := map[string]string{
		"categories": p.Categories.Bitmask(),
		"purity":     p.Purity.Bitmask(),
		"sorting":    p.Sorting,
		"order":      p.Order,
		"page":       strconv.Itoa(max(page, 1)),
	}
	if q := p.Parsed().String(); q != "" {
		v["q"] = q
	}
	if p.Sorting == SortToplist && p.TopRange != "" {
		v["topRange"] = p.TopRange
	}
	if p.AtLeast != "" {
		v["atleast"] = p.AtLeast
	}
	if len(p.Resolutions) > 0 {
		v["resolutions"] = strings.Join(p.Resolutions, ",")
	}
	if len(p.Ratios) > 0 {
		v["ratios"] = strings.Join(p.Ratios, ",")
	}
	if p.Color != "" {
		v["colors"] = strings.ToLower(strings.TrimPrefix(p.Color, "#"))
	}
	if seed != "" && p.Sorting == SortRandom {
		v["seed"] = seed
	}
	if apiKey != "" {
		v["apikey"] = apiKey
	}
	return v
}

// normalized is the hashed shape of Params. List order does not matter and
// the top range only counts for toplist sorting.
type normalized struct {
	Query       string
	Categories  string
	Purity      string
	Sorting     string
	Order       string
	TopRange    string
	AtLeast     string
	Resolutions []string `hash:"set"`
	Ratios      []string `hash:"set"`
	Color       string
}

// Fingerprint returns a stable key for the result sequence p describes.
func Fingerprint(p Params) string {
	n := normalized{
		Query:       p.Parsed().Normalized(),
		Categories:  p.Categories.Bitmask(),
		Purity:      p.Purity.Bitmask(),
		Sorting:     p.Sorting,
		Order:       p.Order,
		AtLeast:     strings.ToLower(p.AtLeast),
		Resolutions: lowerAll(p.Resolutions),
		Ratios:      lowerAll(p.Ratios),
		Color:       strings.ToLower(strings.TrimPrefix(p.Color, "#")),
	}
	if p.Sorting == SortToplist {
		n.TopRange = p.TopRange
	}

	h, err := hashstructure.Hash(n, hashstructure.FormatV2, nil)
	if err != nil {
		return fmt.Sprintf("%x", n)
	}
	return fmt.Sprintf("%016x", h)
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func bits(a, b, c bool) string {
	out := []byte("000")
	for i, v := range []bool{a, b, c} {
		if v {
			out[i] = '1'
		}
	}
	return string(out)
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/darkawower/wallhop/internal/config"
	"github.com/darkawower/wallhop/internal/query"
)

// fetchFlags are the search flags of the root command.
type fetchFlags struct {
	query string

	general bool
	anime   bool
	people  bool

	sfw     bool
	sketchy bool
	nsfw    bool

	sorting     string
	order       string
	topRange    string
	atLeast     string
	resolutions []string
	ratios      []string
	color       string

	keep    int
	timeout int
	apiKey  string
	save    bool
}

func (f *fetchFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.query, "query", "", `search query, e.g. '+forest -people "misty lake"'`)

	fl.BoolVar(&f.general, "general", false, "include general wallpapers")
	fl.BoolVar(&f.anime, "anime", false, "include anime wallpapers")
	fl.BoolVar(&f.people, "people", false, "include wallpapers of people")

	fl.BoolVar(&f.sfw, "sfw", false, "include safe-for-work wallpapers")
	fl.BoolVar(&f.sketchy, "sketchy", false, "include sketchy wallpapers")
	fl.BoolVar(&f.nsfw, "nsfw", false, "include NSFW wallpapers (requires an API key)")

	fl.StringVar(&f.sorting, "sorting", "", "relevance|random|date_added|views|favorites|toplist")
	fl.StringVar(&f.order, "order", "", "asc|desc")
	fl.StringVar(&f.topRange, "top-range", "", "toplist range: 1d|3d|1w|1M|3M|6M|1y")
	fl.StringVar(&f.atLeast, "atleast", "", "minimum resolution, e.g. 1920x1080")
	fl.StringSliceVar(&f.resolutions, "resolutions", nil, "exact resolutions, comma separated")
	fl.StringSliceVar(&f.ratios, "ratios", nil, "aspect ratios, e.g. 16x9,21x9 or landscape")
	fl.StringVar(&f.color, "color", "", "dominant color as hex, e.g. 336600")

	fl.IntVar(&f.keep, "keep", 0, "number of downloads to keep in the cache (0 keeps all)")
	fl.IntVar(&f.timeout, "timeout", 0, "network timeout in seconds")
	fl.StringVar(&f.apiKey, "api-key", "", "wallhaven API key")
	fl.BoolVar(&f.save, "save", false, "save the given flags to the config file instead of fetching")
}

// overrides collects the flags given on the command line. Within the
// category and purity groups, giving any flag enables exactly the given ones.
func (f *fetchFlags) overrides(cmd *cobra.Command) config.Overrides {
	changed := cmd.Flags().Changed
	var o config.Overrides

	if changed("query") {
		o.Query = &f.query
	}
	if changed("general") || changed("anime") || changed("people") {
		o.Categories = &query.Categories{General: f.general, Anime: f.anime, People: f.people}
	}
	if changed("sfw") || changed("sketchy") || changed("nsfw") {
		o.Purity = &query.Purity{SFW: f.sfw, Sketchy: f.sketchy, NSFW: f.nsfw}
	}
	if changed("sorting") {
		o.Sorting = &f.sorting
	}
	if changed("order") {
		o.Order = &f.order
	}
	if changed("top-range") {
		o.TopRange = &f.topRange
	}
	if changed("atleast") {
		o.AtLeast = &f.atLeast
	}
	if changed("resolutions") {
		o.Resolutions = &f.resolutions
	}
	if changed("ratios") {
		o.Ratios = &f.ratios
	}
	if changed("color") {
		o.Color = &f.color
	}
	if changed("keep") {
		o.KeepLast = &f.keep
	}
	if changed("timeout") {
		o.TimeoutSeconds = &f.timeout
	}
	if changed("api-key") {
		o.APIKey = &f.apiKey
	}
	return o
}

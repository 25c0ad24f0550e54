package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	MinSize int64
}

type Wallhaven struct {
	client  *resty.Client
	baseURL string
	apiKey  string
	minSize int64
}

func NewWallhaven(opts Options) *Wallhaven {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MinSize <= 0 {
		opts.MinSize = DefaultMinSize
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "wallhop")

	return &Wallhaven{
		client:  client,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		minSize: opts.MinSize,
	}
}

func (w *Wallhaven) Name() string {
	return "wallhaven"
}

// Search requests one result page. values are the API query parameters.
func (w *Wallhaven) Search(ctx context.Context, values map[string]string) (*SearchResult, error) {
	resp, err := w.client.R().
		SetContext(ctx).
		SetQueryParams(values).
		Get(w.baseURL + "/search")
	if err != nil {
		return nil, classify(err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var result SearchResult
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("%w: malformed search response: %v", ErrUpstream, err)
	}
	return &result, nil
}

// TagFor returns the first tag of wallpaper id, or "" if it has none.
func (w *Wallhaven) TagFor(ctx context.Context, id string) (string, error) {
	req := w.client.R().SetContext(ctx)
	if w.apiKey != "" {
		req.SetQueryParam("apikey", w.apiKey)
	}

	resp, err := req.Get(w.baseURL + "/w/" + id)
	if err != nil {
		return "", classify(err)
	}
	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var result struct {
		Data ImageMeta `json:"data"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("%w: malformed wallpaper response: %v", ErrUpstream, err)
	}

	for _, tag := range result.Data.Tags {
		if tag.Name != "" {
			return tag.Name, nil
		}
	}
	return "", nil
}

func checkStatus(resp *resty.Response) error {
	switch code := resp.StatusCode(); {
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: rate limited by API", ErrUpstream)
	case code == http.StatusUnauthorized:
		return fmt.Errorf("%w: API key rejected", ErrUpstream)
	case code < 200 || code > 299:
		return fmt.Errorf("%w: API returned status %d", ErrUpstream, code)
	}
	return nil
}

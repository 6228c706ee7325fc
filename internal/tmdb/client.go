// Rewind - Media Server Year in Review
// Copyright 2026 J. Field (jmfield)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jmfield/rewind

/*
client.go - TMDB Search Client

This file implements a minimal client for The Movie Database search API,
used to enrich reports with poster artwork. Lookups are best-effort: a
failed or empty search returns nil, never an error the report layer would
have to abort on.

API Reference: https://developer.themoviedb.org/reference/intro/getting-started
*/

package tmdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/jmfield/rewind/internal/config"
	"github.com/jmfield/rewind/internal/logging"
	"github.com/jmfield/rewind/internal/metrics"
)

const (
	defaultBaseURL = "https://api.themoviedb.org/3"
	imageBaseURL   = "https://image.tmdb.org/t/p"

	// PosterSize is the TMDB size bucket used for report posters.
	PosterSize = "w342"
	// BackdropSize is the TMDB size bucket used for backdrops.
	BackdropSize = "w780"
)

// Media kinds accepted by FindPosterURL.
const (
	KindTV    = "tv"
	KindMovie = "movie"
)

// SearchResult is one entry from a TMDB search response. Movies carry Title,
// TV shows carry Name; the paths are relative and resolved by PosterURL and
// BackdropURL.
type SearchResult struct {
	ID           int    `json:"id"`
	Title        string `json:"title,omitempty"`
	Name         string `json:"name,omitempty"`
	PosterPath   string `json:"poster_path"`
	BackdropPath string `json:"backdrop_path"`
}

// searchResponse is the envelope returned by the search endpoints
type searchResponse struct {
	Results []SearchResult `json:"results"`
}

// Client provides access to the TMDB search API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new TMDB client. The limiter keeps lookup bursts from
// report generation under TMDB's rate ceiling.
func NewClient(cfg *config.TMDBConfig) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
	}
}

// SetBaseURL overrides the API base URL. Test hook only.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// SearchTV searches for a TV show by name. Returns the first result or nil
// when nothing matches.
func (c *Client) SearchTV(ctx context.Context, query string) (*SearchResult, error) {
	return c.search(ctx, "/search/tv", query)
}

// SearchMovie searches for a movie by name. Returns the first result or nil
// when nothing matches.
func (c *Client) SearchMovie(ctx context.Context, query string) (*SearchResult, error) {
	return c.search(ctx, "/search/movie", query)
}

// FindPosterURL searches for content by name and returns its poster URL.
// Returns empty string on miss or failure; artwork enrichment must never
// abort report generation.
func (c *Client) FindPosterURL(ctx context.Context, name, kind string) string {
	var (
		result *SearchResult
		err    error
	)
	switch kind {
	case KindTV:
		result, err = c.SearchTV(ctx, name)
	case KindMovie:
		result, err = c.SearchMovie(ctx, name)
	default:
		return ""
	}

	if err != nil {
		logging.Warn().Err(err).Str("name", name).Str("kind", kind).Msg("TMDB poster lookup failed")
		return ""
	}
	if result == nil {
		return ""
	}

	return result.PosterURL()
}

// PosterURL resolves the result's poster path against the TMDB image CDN.
// Returns empty string when the result has no poster.
func (r *SearchResult) PosterURL() string {
	if r == nil || r.PosterPath == "" {
		return ""
	}
	return imageBaseURL + "/" + PosterSize + r.PosterPath
}

// BackdropURL resolves the result's backdrop path against the TMDB image CDN.
func (r *SearchResult) BackdropURL() string {
	if r == nil || r.BackdropPath == "" {
		return ""
	}
	return imageBaseURL + "/" + BackdropSize + r.BackdropPath
}

// search performs a rate-limited search request and returns the first result
func (c *Client) search(ctx context.Context, endpoint, query string) (*SearchResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("tmdb api key not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("tmdb rate limiter wait failed: %w", err)
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", query)
	params.Set("page", "1")

	fullURL := c.baseURL + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.RecordUpstreamRequest("tmdb", "search", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("tmdb search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("tmdb search returned status %d (failed to read body)", resp.StatusCode)
		}
		return nil, fmt.Errorf("tmdb search returned status %d: %s", resp.StatusCode, string(body))
	}

	var envelope searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode tmdb search response: %w", err)
	}

	if len(envelope.Results) == 0 {
		return nil, nil
	}

	return &envelope.Results[0], nil
}

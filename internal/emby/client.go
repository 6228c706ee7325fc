// Rewind - Media Server Year in Review
// Copyright 2026 J. Field (jmfield)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jmfield/rewind

/*
client.go - Emby REST API Client

This file implements a REST API client for an Emby-compatible media server
with the Playback Reporting plugin installed. It provides methods to fetch
users, playback history, and library item metadata.

API Reference: https://dev.emby.media/doc/restapi/index.html
*/

package emby

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/jmfield/rewind/internal/config"
	"github.com/jmfield/rewind/internal/models"
)

// ErrUserNotFound is returned by FindUserByName when no user matches.
// Callers use it to distinguish an unknown username from an upstream failure.
var ErrUserNotFound = errors.New("emby user not found")

// itemFields is the Fields parameter sent with every Items request. It names
// exactly the metadata the aggregation needs; anything more bloats the
// response for large batches.
const itemFields = "Genres,SeriesId,SeriesName,ArtistItems,ProductionYear,IndexNumber"

// Client identity strings sent with every request.
const (
	clientName    = "Rewind"
	clientDevice  = "rewind"
	clientVersion = "1.0.0"
)

// ClientInterface defines the interface for Emby API operations.
// Both Client and CircuitBreakerClient implement this interface.
type ClientInterface interface {
	Ping(ctx context.Context) error
	GetUsers(ctx context.Context) ([]User, error)
	FindUserByName(ctx context.Context, username string) (*User, error)
	GetUserPlaybackActivity(ctx context.Context, userID string, days int) ([]models.PlaybackEvent, error)
	GetItems(ctx context.Context, userID string, ids []string) (map[string]models.CatalogItem, error)
	ImageURL(itemID string) string
	UserImageURL(userID string) string
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// Client provides access to the Emby REST API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// User represents an Emby user account
type User struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
}

// itemsResponse is the envelope returned by the Items endpoint
type itemsResponse struct {
	Items            []models.CatalogItem `json:"Items"`
	TotalRecordCount int                  `json:"TotalRecordCount"`
}

// NewClient creates a new Emby API client
//
// Parameters:
//   - cfg: Emby connection settings; URL is normalized (trailing slash removed)
//     and the API key is sent as X-Emby-Token on every request
func NewClient(cfg *config.EmbyConfig) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Ping tests connectivity to the Emby server
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.doRequest(ctx, "/System/Ping", nil)
	if err != nil {
		return fmt.Errorf("emby ping failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("emby ping returned status %d", resp.StatusCode)
	}

	return nil
}

// GetUsers retrieves all users from Emby
func (c *Client) GetUsers(ctx context.Context) ([]User, error) {
	resp, err := c.doRequest(ctx, "/Users", nil)
	if err != nil {
		return nil, fmt.Errorf("emby users request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("emby users returned status %d (failed to read body)", resp.StatusCode)
		}
		return nil, fmt.Errorf("emby users returned status %d: %s", resp.StatusCode, string(body))
	}

	var users []User
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("failed to decode emby users: %w", err)
	}

	return users, nil
}

// FindUserByName looks up a user by display name, case-insensitively.
// Returns ErrUserNotFound when no user matches.
func (c *Client) FindUserByName(ctx context.Context, username string) (*User, error) {
	users, err := c.GetUsers(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if strings.EqualFold(users[i].Name, username) {
			return &users[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUserNotFound, username)
}

// GetUserPlaybackActivity retrieves raw playback history for a user from the
// Playback Reporting plugin, covering the last `days` days. Rows arrive
// unordered; ordering and filtering are the aggregation's concern.
func (c *Client) GetUserPlaybackActivity(ctx context.Context, userID string, days int) ([]models.PlaybackEvent, error) {
	query := url.Values{}
	query.Set("user_id", userID)
	query.Set("days", strconv.Itoa(days))
	query.Set("aggregate_data", "false")

	resp, err := c.doRequest(ctx, "/user_usage_stats/UserPlaylist", query)
	if err != nil {
		return nil, fmt.Errorf("emby playback activity request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("emby playback activity returned status %d (failed to read body)", resp.StatusCode)
		}
		return nil, fmt.Errorf("emby playback activity returned status %d: %s", resp.StatusCode, string(body))
	}

	var events []models.PlaybackEvent
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("failed to decode emby playback activity: %w", err)
	}

	return events, nil
}

// GetItems fetches library metadata for a batch of item ids through the
// user-scoped Items endpoint, so the server applies the user's library
// permissions. Ids absent from the result are invisible to that user;
// the returned map simply lacks those keys.
func (c *Client) GetItems(ctx context.Context, userID string, ids []string) (map[string]models.CatalogItem, error) {
	if len(ids) == 0 {
		return map[string]models.CatalogItem{}, nil
	}

	query := url.Values{}
	query.Set("Ids", strings.Join(ids, ","))
	query.Set("Fields", itemFields)

	resp, err := c.doRequest(ctx, "/Users/"+url.PathEscape(userID)+"/Items", query)
	if err != nil {
		return nil, fmt.Errorf("emby items request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("emby items returned status %d (failed to read body)", resp.StatusCode)
		}
		return nil, fmt.Errorf("emby items returned status %d: %s", resp.StatusCode, string(body))
	}

	var envelope itemsResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode emby items: %w", err)
	}

	catalog := make(map[string]models.CatalogItem, len(envelope.Items))
	for i := range envelope.Items {
		catalog[envelope.Items[i].ID] = envelope.Items[i]
	}

	return catalog, nil
}

// ImageURL returns the browser-visible primary image URL for an item.
// The API key travels as a query parameter because these URLs are embedded
// in report payloads and fetched without headers.
func (c *Client) ImageURL(itemID string) string {
	if itemID == "" {
		return ""
	}
	query := url.Values{}
	query.Set("api_key", c.apiKey)
	query.Set("maxHeight", "400")
	query.Set("quality", "90")
	return c.baseURL + "/Items/" + url.PathEscape(itemID) + "/Images/Primary?" + query.Encode()
}

// UserImageURL returns the browser-visible avatar URL for a user.
func (c *Client) UserImageURL(userID string) string {
	if userID == "" {
		return ""
	}
	query := url.Values{}
	query.Set("api_key", c.apiKey)
	return c.baseURL + "/Users/" + url.PathEscape(userID) + "/Images/Primary?" + query.Encode()
}

// doRequest performs an HTTP GET request to the Emby API
func (c *Client) doRequest(ctx context.Context, endpoint string, query url.Values) (*http.Response, error) {
	fullURL := c.baseURL + endpoint
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set authorization header using API key
	req.Header.Set("X-Emby-Token", c.apiKey)
	req.Header.Set("X-Emby-Client", clientName)
	req.Header.Set("X-Emby-Device-Name", clientName)
	req.Header.Set("X-Emby-Device-Id", clientDevice)
	req.Header.Set("X-Emby-Client-Version", clientVersion)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}

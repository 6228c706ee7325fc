// Rewind - Media Server Year in Review
// Copyright 2026 J. Field (jmfield)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jmfield/rewind

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/jmfield/rewind/internal/config"
	"github.com/jmfield/rewind/internal/emby"
	"github.com/jmfield/rewind/internal/models"
	"github.com/jmfield/rewind/internal/stats"
)

type fakeEmby struct {
	users    []emby.User
	pingErr  error
	usersErr error
}

func (f *fakeEmby) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeEmby) GetUsers(ctx context.Context) ([]emby.User, error) {
	return f.users, f.usersErr
}

func (f *fakeEmby) FindUserByName(ctx context.Context, username string) (*emby.User, error) {
	for i := range f.users {
		if f.users[i].Name == username {
			return &f.users[i], nil
		}
	}
	return nil, emby.ErrUserNotFound
}

func (f *fakeEmby) GetUserPlaybackActivity(ctx context.Context, userID string, days int) ([]models.PlaybackEvent, error) {
	return nil, nil
}

func (f *fakeEmby) GetItems(ctx context.Context, userID string, ids []string) (map[string]models.CatalogItem, error) {
	return map[string]models.CatalogItem{}, nil
}

func (f *fakeEmby) ImageURL(itemID string) string { return "http://emby.local/item/" + itemID }

func (f *fakeEmby) UserImageURL(userID string) string { return "http://emby.local/user/" + userID }

type fakeReports struct {
	wrapped  *models.UserStats
	music    *models.FullMusicStats
	server   *models.ServerStats
	err      error
	gotRange string
}

func (f *fakeReports) UserWrapped(ctx context.Context, userID, username string, rng stats.TimeRange) (*models.UserStats, error) {
	f.gotRange = rng.String()
	return f.wrapped, f.err
}

func (f *fakeReports) UserMusic(ctx context.Context, userID string, rng stats.TimeRange) (*models.FullMusicStats, error) {
	f.gotRange = rng.String()
	return f.music, f.err
}

func (f *fakeReports) ServerStats(ctx context.Context) (*models.ServerStats, error) {
	return f.server, f.err
}

func testAPIConfig() *config.Config {
	return &config.Config{
		Emby: config.EmbyConfig{URL: "http://emby.local:8096", APIKey: "k"},
		Security: config.SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   1000,
			RateLimitWindow: time.Minute,
		},
		Cache: config.CacheConfig{PosterTTL: time.Hour},
	}
}

func testRouter(server emby.ClientInterface, reports ReportService) http.Handler {
	cfg := testAPIConfig()
	h := NewHandler(server, reports, cfg)
	h.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	return NewRouter(h, cfg)
}

// envelope mirrors models.APIResponse with a raw data payload for decoding.
type envelope struct {
	Status string           `json:"status"`
	Data   json.RawMessage  `json:"data"`
	Error  *models.APIError `json:"error"`
}

func doRequest(t *testing.T, router http.Handler, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return rec, env
}

func TestWrappedHappyPath(t *testing.T) {
	reports := &fakeReports{wrapped: &models.UserStats{UserID: "u1", Username: "Alice", Range: "2025", TotalMinutes: 42}}
	router := testRouter(&fakeEmby{users: []emby.User{{ID: "u1", Name: "Alice"}}}, reports)

	rec, env := doRequest(t, router, "/api/v1/users/u1/wrapped?range=2025")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if env.Status != "success" {
		t.Errorf("expected success status, got %q", env.Status)
	}
	if reports.gotRange != "2025" {
		t.Errorf("expected range 2025 passed through, got %q", reports.gotRange)
	}

	var report models.UserStats
	if err := json.Unmarshal(env.Data, &report); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if report.TotalMinutes != 42 || report.Username != "Alice" {
		t.Errorf("unexpected report payload: %+v", report)
	}
	if rec.Header().Get("ETag") == "" {
		t.Error("expected an ETag header")
	}
}

func TestWrappedDefaultRange(t *testing.T) {
	reports := &fakeReports{wrapped: &models.UserStats{}}
	router := testRouter(&fakeEmby{users: []emby.User{{ID: "u1", Name: "Alice"}}}, reports)

	rec, _ := doRequest(t, router, "/api/v1/users/u1/wrapped")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	// The injected clock pins "now" to 2025.
	if reports.gotRange != "2025" {
		t.Errorf("expected current-year default, got %q", reports.gotRange)
	}
}

func TestWrappedInvalidRange(t *testing.T) {
	router := testRouter(&fakeEmby{users: []emby.User{{ID: "u1", Name: "Alice"}}}, &fakeReports{})

	rec, env := doRequest(t, router, "/api/v1/users/u1/wrapped?range=20x5")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %+v", env.Error)
	}
}

func TestWrappedUnknownUser(t *testing.T) {
	router := testRouter(&fakeEmby{users: []emby.User{{ID: "u1", Name: "Alice"}}}, &fakeReports{})

	rec, env := doRequest(t, router, "/api/v1/users/nobody/wrapped?range=2025")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND, got %+v", env.Error)
	}
}

func TestMusicReport(t *testing.T) {
	reports := &fakeReports{music: &models.FullMusicStats{UserID: "u1", TotalMinutes: 300}}
	router := testRouter(&fakeEmby{users: []emby.User{{ID: "u1", Name: "Alice"}}}, reports)

	rec, env := doRequest(t, router, "/api/v1/users/u1/music?range=2025-03")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if reports.gotRange != "2025-03" {
		t.Errorf("expected month range passed through, got %q", reports.gotRange)
	}
	var music models.FullMusicStats
	if err := json.Unmarshal(env.Data, &music); err != nil {
		t.Fatalf("failed to decode music report: %v", err)
	}
	if music.TotalMinutes != 300 {
		t.Errorf("unexpected music payload: %+v", music)
	}
}

func TestServerStatsEndpoint(t *testing.T) {
	reports := &fakeReports{server: &models.ServerStats{TotalUsers: 7, TotalMinutes: 999}}
	router := testRouter(&fakeEmby{}, reports)

	rec, env := doRequest(t, router, "/api/v1/server/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var rollup models.ServerStats
	if err := json.Unmarshal(env.Data, &rollup); err != nil {
		t.Fatalf("failed to decode rollup: %v", err)
	}
	if rollup.TotalUsers != 7 {
		t.Errorf("unexpected rollup payload: %+v", rollup)
	}
}

func TestValidateUser(t *testing.T) {
	router := testRouter(&fakeEmby{users: []emby.User{{ID: "u1", Name: "Alice"}}}, &fakeReports{})

	rec, env := doRequest(t, router, "/api/v1/users/validate?username=Alice")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var result models.ValidateUserResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if !result.Valid || result.UserID != "u1" {
		t.Errorf("expected valid user u1, got %+v", result)
	}
	if result.ImageURL == "" {
		t.Error("expected an avatar URL for a valid user")
	}

	// Unknown usernames are a negative answer, not an error.
	rec, env = doRequest(t, router, "/api/v1/users/validate?username=Mallory")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for unknown user, got %d", rec.Code)
	}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if result.Valid || result.Error == "" {
		t.Errorf("expected invalid result with reason, got %+v", result)
	}

	rec, _ = doRequest(t, router, "/api/v1/users/validate")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing username, got %d", rec.Code)
	}
}

func TestRanges(t *testing.T) {
	router := testRouter(&fakeEmby{}, &fakeReports{})

	rec, env := doRequest(t, router, "/api/v1/ranges")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var ranges []models.TimeRangeOption
	if err := json.Unmarshal(env.Data, &ranges); err != nil {
		t.Fatalf("failed to decode ranges: %v", err)
	}
	// Current year, previous year, then months of the current year.
	if len(ranges) < 2 || ranges[0].Value != "2025" || ranges[1].Value != "2024" {
		t.Errorf("unexpected ranges: %+v", ranges)
	}
}

func TestHealthEndpoints(t *testing.T) {
	router := testRouter(&fakeEmby{}, &fakeReports{})

	rec, _ := doRequest(t, router, "/api/v1/health/live")
	if rec.Code != http.StatusOK {
		t.Errorf("expected live probe 200, got %d", rec.Code)
	}

	rec, _ = doRequest(t, router, "/api/v1/health/ready")
	if rec.Code != http.StatusOK {
		t.Errorf("expected ready probe 200, got %d", rec.Code)
	}

	rec, env := doRequest(t, router, "/api/v1/health")
	if rec.Code != http.StatusOK {
		t.Errorf("expected health 200, got %d", rec.Code)
	}
	var health map[string]interface{}
	if err := json.Unmarshal(env.Data, &health); err != nil {
		t.Fatalf("failed to decode health: %v", err)
	}
	if health["emby"] != "connected" {
		t.Errorf("expected connected upstream, got %v", health["emby"])
	}
}

func TestHealthReadyUpstreamDown(t *testing.T) {
	router := testRouter(&fakeEmby{pingErr: context.DeadlineExceeded}, &fakeReports{})

	rec, env := doRequest(t, router, "/api/v1/health/ready")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "SERVICE_UNAVAILABLE" {
		t.Errorf("expected SERVICE_UNAVAILABLE, got %+v", env.Error)
	}
}

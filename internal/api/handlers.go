// Rewind - Media Server Year in Review
// Copyright 2026 J. Field (jmfield)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jmfield/rewind

// Package api provides the HTTP handlers and routing for Rewind.
//
// Endpoints:
//   - GET /api/v1/health (+ /live, /ready)   - health and readiness probes
//   - GET /api/v1/ranges                     - selectable report periods
//   - GET /api/v1/users/validate             - username lookup
//   - GET /api/v1/users/{userID}/wrapped     - per-user wrapped report
//   - GET /api/v1/users/{userID}/music       - per-user full music report
//   - GET /api/v1/server/stats               - anonymous server-wide rollup
//   - GET /api/v1/images/proxy               - allow-listed image proxy
//   - GET /metrics                           - Prometheus metrics
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jmfield/rewind/internal/config"
	"github.com/jmfield/rewind/internal/emby"
	"github.com/jmfield/rewind/internal/logging"
	"github.com/jmfield/rewind/internal/models"
	"github.com/jmfield/rewind/internal/stats"
)

// ReportService is the report generation surface the handlers depend on.
// Satisfied by report.Generator.
type ReportService interface {
	UserWrapped(ctx context.Context, userID, username string, rng stats.TimeRange) (*models.UserStats, error)
	UserMusic(ctx context.Context, userID string, rng stats.TimeRange) (*models.FullMusicStats, error)
	ServerStats(ctx context.Context) (*models.ServerStats, error)
}

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	server    emby.ClientInterface
	reports   ReportService
	cfg       *config.Config
	proxy     *imageProxy
	startTime time.Time
	now       func() time.Time
}

// NewHandler creates the handler set.
func NewHandler(server emby.ClientInterface, reports ReportService, cfg *config.Config) *Handler {
	return &Handler{
		server:    server,
		reports:   reports,
		cfg:       cfg,
		proxy:     newImageProxy(cfg),
		startTime: time.Now(),
		now:       time.Now,
	}
}

// wrappedParams carries the validated inputs of the per-user report endpoints.
type wrappedParams struct {
	UserID string `validate:"required,max=64"`
	Range  string `validate:"required,timerange"`
}

// reportParams extracts and validates userID and range from the request.
// The range defaults to the current calendar year.
func (h *Handler) reportParams(r *http.Request) (wrappedParams, stats.TimeRange, *models.APIError) {
	params := wrappedParams{
		UserID: chi.URLParam(r, "userID"),
		Range:  r.URL.Query().Get("range"),
	}
	if params.Range == "" {
		params.Range = strconv.Itoa(h.now().Year())
	}

	if apiErr := validateRequest(&params); apiErr != nil {
		return params, stats.TimeRange{}, apiErr
	}

	return params, stats.ParseTimeRange(params.Range), nil
}

// resolveUser confirms the user exists on the server and returns it.
func (h *Handler) resolveUser(ctx context.Context, userID string) (*emby.User, error) {
	users, err := h.server.GetUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == userID {
			return &users[i], nil
		}
	}
	return nil, emby.ErrUserNotFound
}

// Wrapped returns the wrapped report for a user and range.
//
// Method: GET
// Path: /api/v1/users/{userID}/wrapped?range=2025
func (h *Handler) Wrapped(w http.ResponseWriter, r *http.Request) {
	params, rng, apiErr := h.reportParams(r)
	if apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	user, err := h.resolveUser(r.Context(), params.UserID)
	if err != nil {
		if errors.Is(err, emby.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Unknown user", nil)
			return
		}
		respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Media server unavailable", err)
		return
	}

	start := h.now()
	report, err := h.reports.UserWrapped(r.Context(), user.ID, user.Name, rng)
	if err != nil {
		respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Failed to generate wrapped report", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   report,
		Metadata: models.Metadata{
			Timestamp:   h.now(),
			QueryTimeMS: h.now().Sub(start).Milliseconds(),
		},
	})
}

// Music returns the standalone full music report for a user and range.
//
// Method: GET
// Path: /api/v1/users/{userID}/music?range=2025
func (h *Handler) Music(w http.ResponseWriter, r *http.Request) {
	params, rng, apiErr := h.reportParams(r)
	if apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	if _, err := h.resolveUser(r.Context(), params.UserID); err != nil {
		if errors.Is(err, emby.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Unknown user", nil)
			return
		}
		respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Media server unavailable", err)
		return
	}

	start := h.now()
	report, err := h.reports.UserMusic(r.Context(), params.UserID, rng)
	if err != nil {
		respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Failed to generate music report", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   report,
		Metadata: models.Metadata{
			Timestamp:   h.now(),
			QueryTimeMS: h.now().Sub(start).Milliseconds(),
		},
	})
}

// ServerStatsReport returns the anonymous server-wide rollup.
//
// Method: GET
// Path: /api/v1/server/stats
func (h *Handler) ServerStatsReport(w http.ResponseWriter, r *http.Request) {
	start := h.now()
	rollup, err := h.reports.ServerStats(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Failed to build server statistics", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   rollup,
		Metadata: models.Metadata{
			Timestamp:   h.now(),
			QueryTimeMS: h.now().Sub(start).Milliseconds(),
		},
	})
}

// validateUserParams carries the validated username query parameter.
type validateUserParams struct {
	Username string `validate:"required,max=128"`
}

// ValidateUser checks whether a username exists on the server.
// An unknown username is a valid negative answer, not an error response.
//
// Method: GET
// Path: /api/v1/users/validate?username=alice
func (h *Handler) ValidateUser(w http.ResponseWriter, r *http.Request) {
	params := validateUserParams{Username: r.URL.Query().Get("username")}
	if apiErr := validateRequest(&params); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	result := models.ValidateUserResult{}
	user, err := h.server.FindUserByName(r.Context(), params.Username)
	switch {
	case err == nil:
		result.Valid = true
		result.UserID = user.ID
		result.Username = user.Name
		result.ImageURL = h.server.UserImageURL(user.ID)
	case errors.Is(err, emby.ErrUserNotFound):
		result.Error = "user not found"
	default:
		respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Media server unavailable", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     result,
		Metadata: models.Metadata{Timestamp: h.now()},
	})
}

// Ranges lists the selectable report periods.
//
// Method: GET
// Path: /api/v1/ranges
func (h *Handler) Ranges(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     stats.AvailableTimeRanges(h.now()),
		Metadata: models.Metadata{Timestamp: h.now()},
	})
}

// Health reports overall service health including upstream connectivity.
//
// Method: GET
// Path: /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	embyStatus := "connected"
	if err := h.server.Ping(ctx); err != nil {
		logging.Warn().Err(err).Msg("Health check: media server unreachable")
		embyStatus = "unreachable"
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"status":         "healthy",
			"emby":           embyStatus,
			"uptime_seconds": int(time.Since(h.startTime).Seconds()),
		},
		Metadata: models.Metadata{Timestamp: h.now()},
	})
}

// HealthLive is the liveness probe. Always 200 while the process serves.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     map[string]string{"status": "alive"},
		Metadata: models.Metadata{Timestamp: h.now()},
	})
}

// HealthReady is the readiness probe. Fails when the media server cannot be
// reached, since every endpoint depends on it.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.server.Ping(ctx); err != nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Media server unreachable", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     map[string]string{"status": "ready"},
		Metadata: models.Metadata{Timestamp: h.now()},
	})
}

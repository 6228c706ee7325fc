// Rewind - Media Server Year in Review
// Copyright 2026 J. Field (jmfield)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jmfield/rewind

package emby

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/jmfield/rewind/internal/config"
	"github.com/jmfield/rewind/internal/logging"
	"github.com/jmfield/rewind/internal/metrics"
	"github.com/jmfield/rewind/internal/models"
)

// CircuitBreakerClient wraps Client with the circuit breaker pattern so a
// dead or slow media server sheds load fast instead of stacking timeouts.
//
// The breaker uses real time (via sony/gobreaker) for its interval and
// timeout calculations. Timing governs recovery, not data integrity; unit
// tests exercise the wrapped client directly.
type CircuitBreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[any]
	name   string
}

// Ensure CircuitBreakerClient implements ClientInterface
var _ ClientInterface = (*CircuitBreakerClient)(nil)

// NewCircuitBreakerClient creates an Emby client with circuit breaker.
// Configuration:
// - Max 3 concurrent requests in half-open state
// - 1 minute measurement window
// - 2 minute timeout before attempting recovery
// - Opens after 60% failure rate with minimum 10 requests
func NewCircuitBreakerClient(cfg *config.EmbyConfig) *CircuitBreakerClient {
	client := NewClient(cfg)
	cbName := "emby-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		// A missing username is a valid answer from a healthy server,
		// not an upstream fault.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrUserNotFound)
		},

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false // Need a minimum sample before tripping
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &CircuitBreakerClient{
		client: client,
		cb:     cb,
		name:   cbName,
	}
}

// execute wraps an Emby API call with circuit breaker protection and records
// upstream request metrics for the named operation.
func (cbc *CircuitBreakerClient) execute(operation string, fn func() (any, error)) (any, error) {
	start := time.Now()
	result, err := cbc.cb.Execute(fn)
	metrics.RecordUpstreamRequest("emby", operation, time.Since(start), err)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
			logging.Warn().Err(err).Str("operation", operation).Msg("[CIRCUIT BREAKER] Request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()

	return result, nil
}

// castResult safely type-casts the circuit breaker result with error checking
func castResult[T any](result any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Ping verifies connectivity with circuit breaker protection
func (cbc *CircuitBreakerClient) Ping(ctx context.Context) error {
	_, err := cbc.execute("ping", func() (any, error) {
		return nil, cbc.client.Ping(ctx)
	})
	return err
}

// GetUsers retrieves all users with circuit breaker protection
func (cbc *CircuitBreakerClient) GetUsers(ctx context.Context) ([]User, error) {
	return castResult[[]User](cbc.execute("get_users", func() (any, error) {
		return cbc.client.GetUsers(ctx)
	}))
}

// FindUserByName looks up a user by name with circuit breaker protection.
// ErrUserNotFound passes through unchanged so callers can map it to a 404.
func (cbc *CircuitBreakerClient) FindUserByName(ctx context.Context, username string) (*User, error) {
	return castResult[*User](cbc.execute("find_user", func() (any, error) {
		return cbc.client.FindUserByName(ctx, username)
	}))
}

// GetUserPlaybackActivity retrieves playback history with circuit breaker protection
func (cbc *CircuitBreakerClient) GetUserPlaybackActivity(ctx context.Context, userID string, days int) ([]models.PlaybackEvent, error) {
	return castResult[[]models.PlaybackEvent](cbc.execute("playback_activity", func() (any, error) {
		return cbc.client.GetUserPlaybackActivity(ctx, userID, days)
	}))
}

// GetItems retrieves catalog metadata with circuit breaker protection
func (cbc *CircuitBreakerClient) GetItems(ctx context.Context, userID string, ids []string) (map[string]models.CatalogItem, error) {
	return castResult[map[string]models.CatalogItem](cbc.execute("get_items", func() (any, error) {
		return cbc.client.GetItems(ctx, userID, ids)
	}))
}

// ImageURL builds a browser-visible item image URL. Pure string assembly,
// no breaker involvement.
func (cbc *CircuitBreakerClient) ImageURL(itemID string) string {
	return cbc.client.ImageURL(itemID)
}

// UserImageURL builds a browser-visible user avatar URL.
func (cbc *CircuitBreakerClient) UserImageURL(userID string) string {
	return cbc.client.UserImageURL(userID)
}

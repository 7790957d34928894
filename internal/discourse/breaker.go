// Aulasync - Moodle to Discourse Profile Synchronization
// Copyright 2026 Aulasync Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aulasync/aulasync

package discourse

import (
	"context"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/aulasync/aulasync/internal/config"
	"github.com/aulasync/aulasync/internal/logging"
	"github.com/aulasync/aulasync/internal/metrics"
)

// BreakerClient wraps Client with a circuit breaker so a failing or
// unreachable Discourse instance stops the batch from hammering it.
// The breaker uses real time for its recovery windows; tests exercise the
// wrapped client directly.
type BreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[any]
	name   string
}

// NewBreakerClient creates a Discourse client protected by a circuit
// breaker. The breaker opens after a 60% failure rate over at least 10
// requests, allows 3 trial requests when half-open, and waits 2 minutes
// before probing an open circuit.
func NewBreakerClient(cfg *config.DiscourseConfig) *BreakerClient {
	client := NewClient(cfg)
	cbName := "discourse-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			if failureRatio >= 0.6 {
				logging.Warn().Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("Opening Discourse circuit")
				return true
			}
			return false
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("from", from.String()).Str("to", to.String()).
				Msg("Discourse circuit state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &BreakerClient{client: client, cb: cb, name: cbName}
}

// stateToFloat maps breaker states onto the gauge encoding.
func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}

// FetchUser delegates through the breaker. Absence (nil, nil) counts as
// success; only transport and HTTP failures feed the failure rate.
func (b *BreakerClient) FetchUser(ctx context.Context, username string) (*User, error) {
	result, err := b.cb.Execute(func() (any, error) {
		return b.client.FetchUser(ctx, username)
	})
	if err != nil {
		return nil, err
	}
	user, _ := result.(*User)
	return user, nil
}

// ListActiveUsers delegates through the breaker.
func (b *BreakerClient) ListActiveUsers(ctx context.Context) ([]UserSummary, error) {
	result, err := b.cb.Execute(func() (any, error) {
		return b.client.ListActiveUsers(ctx)
	})
	if err != nil {
		return nil, err
	}
	users, _ := result.([]UserSummary)
	return users, nil
}

// CreateUser delegates through the breaker.
func (b *BreakerClient) CreateUser(ctx context.Context, user NewUser) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.client.CreateUser(ctx, user)
	})
	return err
}

// UpdateProfile delegates through the breaker.
func (b *BreakerClient) UpdateProfile(ctx context.Context, username string, fields map[string]string) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.client.UpdateProfile(ctx, username, fields)
	})
	return err
}

// UpdateBio delegates through the breaker.
func (b *BreakerClient) UpdateBio(ctx context.Context, username, bio string) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.client.UpdateBio(ctx, username, bio)
	})
	return err
}

// UpdateEmail delegates through the breaker.
func (b *BreakerClient) UpdateEmail(ctx context.Context, username, email string) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.client.UpdateEmail(ctx, username, email)
	})
	return err
}

// Verify delegates through the breaker.
func (b *BreakerClient) Verify(ctx context.Context, username string, expected map[string]string) (map[string]bool, error) {
	result, err := b.cb.Execute(func() (any, error) {
		return b.client.Verify(ctx, username, expected)
	})
	if err != nil {
		return nil, err
	}
	report, _ := result.(map[string]bool)
	return report, nil
}

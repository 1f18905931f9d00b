// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package reststore

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/danielhkuo/ballot-box/models"
	"github.com/danielhkuo/ballot-box/store"
)

// Config carries the connection settings for the hosted store.
type Config struct {
	// BaseURL is the REST root, e.g. https://project.example.com/rest/v1.
	BaseURL string
	// APIKey is sent as both the apikey header and the bearer token.
	APIKey string
	// MaxRetries caps retries per request. Zero selects DefaultMaxRetries;
	// a negative value disables retries entirely.
	MaxRetries int
	// RetryDelay is the first backoff pause; DefaultRetryDelay when zero.
	RetryDelay time.Duration
	// PollInterval is the change-feed cadence; store.DefaultPollInterval
	// when zero.
	PollInterval time.Duration
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Store talks to a hosted data service over its REST interface. It holds no
// state of its own: every consistency guarantee comes from the remote
// schema's constraints, so writes go out blind and conflicts come back as
// typed errors for callers to reconcile.
type Store struct {
	c      *client
	poller *store.VotePoller
}

var _ store.Store = (*Store)(nil)

// Open validates the configuration and builds the store. Nothing is sent to
// the remote service until the first call.
func Open(cfg Config) (*Store, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("rest store: base URL is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("rest store: invalid base URL %q", cfg.BaseURL)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("rest store: API key is required")
	}

	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = DefaultMaxRetries
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	httpc := cfg.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}

	s := &Store{c: &client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		httpc:      httpc,
	}}
	s.poller = store.NewVotePoller(s.ListVotes, cfg.PollInterval)
	return s, nil
}

// Close stops vote subscriptions. The remote service needs no teardown.
func (s *Store) Close() error {
	s.poller.Close()
	return nil
}

// SubscribeVotes polls the vote collection; the REST interface exposes no
// push channel to a server-side client.
func (s *Store) SubscribeVotes(electionID string, fn func(models.Vote)) func() {
	return s.poller.Subscribe(electionID, fn)
}

// eq builds the equality filter for one column.
func eq(value string) string {
	return "eq." + value
}

func now() time.Time {
	// The remote store keeps microseconds; truncating up front keeps values
	// comparable before and after a round-trip
	return time.Now().UTC().Truncate(time.Microsecond)
}
